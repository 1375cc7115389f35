package apperr

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type countingRecorder struct {
	counts map[string]int
}

func (r *countingRecorder) RecordError(severity string) {
	if r.counts == nil {
		r.counts = make(map[string]int)
	}
	r.counts[severity]++
}

func TestError_IsSentinel(t *testing.T) {
	cause := errors.New("connection reset")
	err := fmt.Errorf("loading guests: %w", Upstream("image search", cause))

	assert.ErrorIs(t, err, ErrUpstream)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "loading guests: image search request failed: connection reset", err.Error())
}

func TestRateLimited(t *testing.T) {
	err := RateLimited("slow down", 1500*time.Millisecond)

	assert.ErrorIs(t, err, ErrRateLimited)
	assert.Equal(t, http.StatusTooManyRequests, StatusOf(err))
	assert.Equal(t, map[string]int{"retry_after_seconds": 2}, err.Details)
	assert.Equal(t, map[string]int{"retry_after_seconds": 1}, RateLimited("x", 0).Details)
}

func TestClassify(t *testing.T) {
	t.Run("app error passes through", func(t *testing.T) {
		e := Validation("invalid input", map[string]string{"email": "required"})
		got := Classify(fmt.Errorf("wrapped: %w", e))
		assert.Same(t, e, got)
	})

	t.Run("record not found", func(t *testing.T) {
		got := Classify(gorm.ErrRecordNotFound)
		assert.Equal(t, http.StatusNotFound, got.Status)
		assert.ErrorIs(t, got, ErrNotFound)
	})

	t.Run("unknown error", func(t *testing.T) {
		got := Classify(errors.New("boom"))
		assert.Equal(t, http.StatusInternalServerError, got.Status)
		assert.Equal(t, SeverityHigh, got.Severity)
	})

	t.Run("nil", func(t *testing.T) {
		assert.Nil(t, Classify(nil))
		assert.Equal(t, http.StatusOK, StatusOf(nil))
	})
}

func TestHandle_RecordsAndReturnsError(t *testing.T) {
	rec := &countingRecorder{}
	h := NewHandler(nil, rec)

	err := h.Handle(context.Background(), Forbidden("nope"), Options{Operation: "delete guest"})

	assert.ErrorIs(t, err, ErrForbidden)
	assert.Equal(t, 1, rec.counts["medium"])
}

func TestHandle_SeverityOverride(t *testing.T) {
	rec := &countingRecorder{}
	h := NewHandler(nil, rec)

	_ = h.Handle(context.Background(), errors.New("disk full"), Options{Severity: SeverityCritical})

	assert.Equal(t, 1, rec.counts["critical"])
	assert.Zero(t, rec.counts["high"])
}

func TestHandle_RetryInvokedOnce(t *testing.T) {
	h := NewHandler(nil, nil)

	t.Run("retry succeeds", func(t *testing.T) {
		calls := 0
		err := h.Handle(context.Background(), errors.New("timeout"), Options{
			Operation: "save expense",
			Retry: func(ctx context.Context) error {
				calls++
				return nil
			},
		})
		assert.NoError(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("retry fails", func(t *testing.T) {
		calls := 0
		retryErr := errors.New("still failing")
		err := h.Handle(context.Background(), errors.New("timeout"), Options{
			Retry: func(ctx context.Context) error {
				calls++
				return retryErr
			},
		})
		assert.ErrorIs(t, err, retryErr)
		assert.Equal(t, 1, calls)
	})
}

func TestHandle_Nil(t *testing.T) {
	h := NewHandler(nil, nil)
	called := false
	err := h.Handle(context.Background(), nil, Options{Retry: func(context.Context) error {
		called = true
		return nil
	}})
	assert.NoError(t, err)
	assert.False(t, called)
}

func TestRespond(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantError  string
	}{
		{"validation", Validation("invalid input", map[string]string{"name": "required"}), http.StatusBadRequest, "validation_error", "invalid input"},
		{"not found", gorm.ErrRecordNotFound, http.StatusNotFound, "not_found", "resource not found"},
		{"conflict", Conflict("slug already taken"), http.StatusConflict, "conflict", "slug already taken"},
		{"internal hides message", errors.New("sql: database is locked"), http.StatusInternalServerError, "internal_error", "internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &countingRecorder{}
			h := NewHandler(nil, rec)

			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			h.Respond(c, tt.err, "test")

			assert.Equal(t, tt.wantStatus, w.Code)
			var body Response
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.wantCode, body.Code)
			assert.Equal(t, tt.wantError, body.Error)

			if tt.wantStatus >= 500 {
				assert.Equal(t, 1, rec.counts["high"])
			} else {
				assert.Empty(t, rec.counts)
			}
		})
	}
}

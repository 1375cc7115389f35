package functions

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/weddingplanner/internal/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := NewClient(config.Functions{BaseURL: srv.URL + "/", APIKey: "secret"})
	c.retryDelay = time.Millisecond
	return c
}

func TestClient_NotConfigured(t *testing.T) {
	c := NewClient(config.Functions{})
	assert.False(t, c.Configured())

	_, err := c.SearchImages(context.Background(), "flowers", 1, 10)
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestClient_CreateCheckoutSession(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/create-checkout-session", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req CheckoutRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, uint(5), req.UserID)
		assert.Equal(t, "premium", req.Plan)
		assert.Equal(t, "key-1", req.IdempotencyKey)

		json.NewEncoder(w).Encode(CheckoutSession{SessionID: "cs_1", URL: "https://pay.example.com/cs_1", AmountCents: 4900, Currency: "usd"})
	})

	session, err := c.CreateCheckoutSession(context.Background(), CheckoutRequest{UserID: 5, Plan: "premium", IdempotencyKey: "key-1"})
	require.NoError(t, err)
	assert.Equal(t, "cs_1", session.SessionID)
	assert.EqualValues(t, 4900, session.AmountCents)
}

func TestClient_VerifyPayment(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/verify-payment", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "cs_9", body["session_id"])
		w.Write([]byte(`{"session_id":"cs_9","paid":true,"status":"complete","amount_cents":4900,"currency":"usd"}`))
	})

	v, err := c.VerifyPayment(context.Background(), "cs_9")
	require.NoError(t, err)
	assert.True(t, v.Paid)
	assert.Equal(t, "complete", v.Status)
}

func TestClient_SearchImagesClampsPaging(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Query   string `json:"query"`
			Page    int    `json:"page"`
			PerPage int    `json:"per_page"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "boho arch", body.Query)
		assert.Equal(t, 1, body.Page)
		assert.Equal(t, 50, body.PerPage)
		w.Write([]byte(`{"query":"boho arch","page":1,"per_page":50,"total":0}`))
	})

	result, err := c.SearchImages(context.Background(), "boho arch", 0, 500)
	require.NoError(t, err)
	assert.NotNil(t, result.Images)
	assert.Empty(t, result.Images)
}

func TestClient_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(t *testing.T, err error)
	}{
		{"unauthorized", http.StatusUnauthorized, "", func(t *testing.T, err error) {
			assert.ErrorIs(t, err, ErrUnauthorized)
		}},
		{"bad request", http.StatusBadRequest, `{"error":"plan is required"}`, func(t *testing.T, err error) {
			var reqErr *RequestError
			require.True(t, errors.As(err, &reqErr))
			assert.Equal(t, "plan is required", reqErr.Message)
		}},
		{"rate limited", http.StatusTooManyRequests, "", func(t *testing.T, err error) {
			assert.ErrorIs(t, err, ErrRateLimited)
			assert.ErrorContains(t, err, "max retries exceeded")
		}},
		{"server error", http.StatusBadGateway, "", func(t *testing.T, err error) {
			var serverErr *ServerError
			require.True(t, errors.As(err, &serverErr))
			assert.Equal(t, http.StatusBadGateway, serverErr.StatusCode)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})
			_, err := c.VerifyPayment(context.Background(), "cs_1")
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestClient_RetriesOnlyRetryableErrors(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"session_id":"cs_1","paid":false,"status":"open"}`))
	})
	v, err := c.VerifyPayment(context.Background(), "cs_1")
	require.NoError(t, err)
	assert.False(t, v.Paid)
	assert.EqualValues(t, 3, calls.Load())

	var badCalls atomic.Int32
	c = newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		badCalls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	})
	_, err = c.VerifyPayment(context.Background(), "cs_1")
	require.Error(t, err)
	assert.EqualValues(t, 1, badCalls.Load())
}

func TestClient_RetryStopsOnCancel(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	c.retryDelay = time.Hour

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := c.VerifyPayment(ctx, "cs_1")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestBackoff(t *testing.T) {
	c := &Client{retryDelay: time.Second}
	assert.Equal(t, time.Second, c.backoff(1))
	assert.Equal(t, 2*time.Second, c.backoff(2))
	assert.Equal(t, maxRetryDelay, c.backoff(10))
}

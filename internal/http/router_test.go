package http

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/weddingplanner/internal/apperr"
	"github.com/mrlokans/weddingplanner/internal/audit"
	"github.com/mrlokans/weddingplanner/internal/database"
	dbaudit "github.com/mrlokans/weddingplanner/internal/database/audit"
	"github.com/mrlokans/weddingplanner/internal/database/blog"
	"github.com/mrlokans/weddingplanner/internal/database/settings"
	"github.com/mrlokans/weddingplanner/internal/database/uploads"
	"github.com/mrlokans/weddingplanner/internal/database/users"
	"github.com/mrlokans/weddingplanner/internal/database/visionboard"
	"github.com/mrlokans/weddingplanner/internal/database/websites"
	"github.com/mrlokans/weddingplanner/internal/database/wedding"
	"github.com/mrlokans/weddingplanner/internal/demo"
	"github.com/mrlokans/weddingplanner/internal/storage/providers/local"
)

// testEnv is a router in auth mode none backed by a fresh SQLite database.
type testEnv struct {
	db       *database.Database
	router   *gin.Engine
	auditor  *recordingAuditor
	events   *audit.Service
	wedding  *wedding.Repository
	board    *visionboard.Repository
	uploads  *uploads.Repository
	blog     *blog.Repository
	websites *websites.Repository
	users    *users.Repository
	settings *settings.Repository
}

func newTestEnv(t *testing.T, configure ...func(*RouterConfig)) *testEnv {
	t.Helper()

	db, err := database.NewDatabase(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	files, err := local.New(t.TempDir(), "/files")
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	env := &testEnv{
		db:       db,
		auditor:  &recordingAuditor{},
		events:   audit.NewService(dbaudit.NewRepository(db.DB), logger),
		wedding:  wedding.NewRepository(db.DB),
		board:    visionboard.NewRepository(db.DB),
		uploads:  uploads.NewRepository(db.DB),
		blog:     blog.NewRepository(db.DB),
		websites: websites.NewRepository(db.DB),
		users:    users.NewRepository(db.DB),
		settings: settings.NewRepository(db.DB),
	}

	cfg := RouterConfig{
		Version:     "test",
		Logger:      logger,
		Errors:      apperr.NewHandler(logger, nil),
		Health:      db,
		Profiles:    env.wedding,
		Budgets:     env.wedding,
		Guests:      env.wedding,
		Tables:      env.wedding,
		VisionBoard: env.board,
		Uploads:     env.uploads,
		Blog:        env.blog,
		Websites:    env.websites,
		Users:       env.users,
		Settings:    env.settings,
		AuditLog:    env.events,
		AllRSVPs:    env.websites,
		Dashboard: DashboardSources{
			Guests:   env.wedding,
			Websites: env.websites,
			Posts:    env.blog,
			Uploads:  env.uploads,
		},
		Auditor:            env.auditor,
		AuditRetentionDays: 90,
		Files:              files,
		FilesPath:          "/files",
		MaxUploadBytes:     5 << 20,
	}
	for _, fn := range configure {
		fn(&cfg)
	}
	env.router = NewRouter(cfg)
	return env
}

// do sends a JSON request and returns the recorder.
func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		if s, ok := body.(string); ok {
			r = bytes.NewBufferString(s)
		} else {
			data, err := json.Marshal(body)
			require.NoError(t, err)
			r = bytes.NewReader(data)
		}
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestRouter_HealthAndPing(t *testing.T) {
	env := newTestEnv(t)

	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/health", nil).Code)
	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/ping", nil).Code)
}

func TestRouter_SecurityHeaders(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/ping", nil)

	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.NotEmpty(t, w.Header().Get("X-Frame-Options"))
}

func TestRouter_UnknownRoute(t *testing.T) {
	env := newTestEnv(t)

	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/api/nope", nil).Code)
}

func TestRouter_RecoversFromPanic(t *testing.T) {
	env := newTestEnv(t)
	env.router.GET("/boom", func(c *gin.Context) { panic("kaboom") })

	w := env.do(t, http.MethodGet, "/boom", nil)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "internal", decode[ErrorResponse](t, w).Code)
}

func TestRouter_OptionalIntegrationsUnavailable(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/vision-board/search", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = env.do(t, http.MethodGet, "/api/admin/tasks/abc", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestRouter_DemoStatus(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/demo/status", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, decode[demo.Status](t, w).Enabled)
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

package demo

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/weddingplanner/internal/apperr"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(m *Middleware) *gin.Engine {
	router := gin.New()
	router.Use(m.Handler())
	ok := func(c *gin.Context) {
		if Enabled(c) {
			c.String(http.StatusOK, "demo")
			return
		}
		c.String(http.StatusOK, "OK")
	}
	router.Any("/api/guests", ok)
	router.POST("/api/auth/login", ok)
	router.POST("/api/public/websites/:slug/rsvp", ok)
	router.GET("/api/demo/status", m.StatusHandler)
	return router
}

func serve(router *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func TestMiddleware_IsEnabled(t *testing.T) {
	assert.True(t, NewMiddleware(Options{Enabled: true}).IsEnabled())
	assert.False(t, NewMiddleware(Options{}).IsEnabled())

	var m *Middleware
	assert.False(t, m.IsEnabled())
}

func TestMiddleware_SafeMethodsPass(t *testing.T) {
	router := newRouter(NewMiddleware(Options{Enabled: true}))

	for _, method := range []string{http.MethodGet, http.MethodHead, http.MethodOptions} {
		w := serve(router, method, "/api/guests")
		assert.Equal(t, http.StatusOK, w.Code, method)
		assert.Equal(t, "true", w.Header().Get(HeaderDemoMode))
	}
}

func TestMiddleware_BlocksWrites(t *testing.T) {
	router := newRouter(NewMiddleware(Options{Enabled: true}))

	for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete} {
		w := serve(router, method, "/api/guests")
		require.Equal(t, http.StatusForbidden, w.Code, method)

		var body apperr.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "demo_mode", body.Code)
		assert.Equal(t, map[string]any{"demo_mode": true}, body.Details)
	}
}

func TestMiddleware_WritablePaths(t *testing.T) {
	router := newRouter(NewMiddleware(Options{Enabled: true}))

	w := serve(router, http.MethodPost, "/api/auth/login")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "demo", w.Body.String())

	w = serve(router, http.MethodPost, "/api/public/websites/anna-and-ben/rsvp")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestMiddleware_DisabledAllowsEverything(t *testing.T) {
	router := newRouter(NewMiddleware(Options{}))

	w := serve(router, http.MethodDelete, "/api/guests")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", w.Body.String())
	assert.Empty(t, w.Header().Get(HeaderDemoMode))
}

func TestMiddleware_WritablePathMatching(t *testing.T) {
	m := NewMiddleware(Options{Enabled: true, Writable: []string{"/ping", "/api/auth/"}})

	tests := []struct {
		path string
		want bool
	}{
		{"/ping", true},
		{"/ping/extra", false},
		{"/api/auth/logout", true},
		{"/api/auth", false},
		{"/api/authx", false},
		{"/api/auth/../guests", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, m.writablePath(tt.path), tt.path)
	}
}

func TestMiddleware_StatusHandler(t *testing.T) {
	var status Status

	w := serve(newRouter(NewMiddleware(Options{})), http.MethodGet, "/api/demo/status")
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	assert.False(t, status.Enabled)
	assert.Empty(t, status.Notice)

	w = serve(newRouter(NewMiddleware(Options{Enabled: true, Notice: "demo@example.com / demo1234"})), http.MethodGet, "/api/demo/status")
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	assert.True(t, status.Enabled)
	assert.Equal(t, "demo@example.com / demo1234", status.Notice)
}

func TestMiddleware_NilIsDisabled(t *testing.T) {
	var m *Middleware
	w := serve(newRouter(m), http.MethodPost, "/api/guests")
	assert.Equal(t, http.StatusOK, w.Code)
}

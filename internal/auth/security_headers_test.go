package auth

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func headersFor(secure bool, req *http.Request) http.Header {
	router := gin.New()
	router.Use(SecurityHeaders(secure))
	router.NoRoute(func(c *gin.Context) { c.Status(http.StatusOK) })

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr.Header()
}

func TestSecurityHeaders_API(t *testing.T) {
	h := headersFor(false, httptest.NewRequest(http.MethodGet, "/api/guests", nil))

	assert.Equal(t, "DENY", h.Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", h.Get("X-Content-Type-Options"))
	assert.Equal(t, "strict-origin-when-cross-origin", h.Get("Referrer-Policy"))
	assert.Equal(t, "default-src 'none'; frame-ancestors 'none'", h.Get("Content-Security-Policy"))
	assert.Contains(t, h.Get("Permissions-Policy"), "camera=()")
}

func TestSecurityHeaders_PublicSite(t *testing.T) {
	csp := headersFor(false, httptest.NewRequest(http.MethodGet, "/w/anna-and-ben", nil)).Get("Content-Security-Policy")

	assert.Contains(t, csp, "style-src 'self' 'unsafe-inline'")
	assert.Contains(t, csp, "img-src 'self' data: https:")
	assert.Contains(t, csp, "form-action 'self'")
	assert.NotContains(t, csp, "unsafe-eval")
}

func TestSecurityHeaders_HSTS(t *testing.T) {
	tlsReq := func() *http.Request {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.TLS = &tls.ConnectionState{}
		return req
	}
	proxied := httptest.NewRequest(http.MethodGet, "/", nil)
	proxied.Header.Set("X-Forwarded-Proto", "HTTPS")

	assert.Empty(t, headersFor(true, httptest.NewRequest(http.MethodGet, "/", nil)).Get("Strict-Transport-Security"))
	assert.Empty(t, headersFor(false, tlsReq()).Get("Strict-Transport-Security"))
	assert.Equal(t, hstsValue, headersFor(true, tlsReq()).Get("Strict-Transport-Security"))
	assert.Equal(t, hstsValue, headersFor(true, proxied).Get("Strict-Transport-Security"))
}

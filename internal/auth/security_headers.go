package auth

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// PublicSitePrefix is where published wedding websites are served.
const PublicSitePrefix = "/w/"

// hstsValue is sent on TLS requests when secure mode is on.
const hstsValue = "max-age=31536000; includeSubDomains"

// Published sites embed their theme stylesheet inline and show couple and
// vision board photos from any https host. The JSON API needs neither.
var (
	apiCSP = directives(
		"default-src 'none'",
		"frame-ancestors 'none'",
	)
	siteCSP = directives(
		"default-src 'self'",
		"script-src 'self'",
		"style-src 'self' 'unsafe-inline'",
		"img-src 'self' data: https:",
		"font-src 'self' https:",
		"frame-ancestors 'none'",
		"form-action 'self'",
	)
	permissionsPolicy = strings.Join([]string{
		"camera=()", "microphone=()", "geolocation=()", "payment=()", "usb=()",
	}, ", ")
)

func directives(d ...string) string {
	return strings.Join(d, "; ")
}

// SecurityHeaders sets browser hardening headers on every response. Public
// site pages get a looser content policy than the API. With secure set,
// HTTPS requests (direct or behind a TLS-terminating proxy) also get HSTS.
func SecurityHeaders(secure bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("X-Frame-Options", "DENY")
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		h.Set("Permissions-Policy", permissionsPolicy)
		if strings.HasPrefix(c.Request.URL.Path, PublicSitePrefix) {
			h.Set("Content-Security-Policy", siteCSP)
		} else {
			h.Set("Content-Security-Policy", apiCSP)
		}
		if secure && (c.Request.TLS != nil || strings.EqualFold(c.GetHeader("X-Forwarded-Proto"), "https")) {
			h.Set("Strict-Transport-Security", hstsValue)
		}
		c.Next()
	}
}

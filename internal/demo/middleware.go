// Package demo turns an instance into a read-only showcase. Visitors can
// browse the seeded plan, sign in and answer the demo website's RSVP form;
// every other write is refused.
package demo

import (
	"net/http"
	"path"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/weddingplanner/internal/apperr"
)

// DefaultWritable lists the paths that accept writes in demo mode. An entry
// ending in "/" matches every path below it.
var DefaultWritable = []string{
	"/api/auth/",
	"/api/public/websites/",
}

const (
	// HeaderDemoMode is set to "true" on every response of a demo instance.
	HeaderDemoMode = "X-Demo-Mode"

	contextKey = "demo.enabled"
)

type Options struct {
	Enabled  bool
	Writable []string // nil means DefaultWritable
	Notice   string
}

// Middleware guards writes. A nil *Middleware behaves as disabled.
type Middleware struct {
	enabled  bool
	writable []string
	notice   string
}

func NewMiddleware(opts Options) *Middleware {
	writable := opts.Writable
	if writable == nil {
		writable = DefaultWritable
	}
	return &Middleware{enabled: opts.Enabled, writable: writable, notice: opts.Notice}
}

func (m *Middleware) IsEnabled() bool {
	return m != nil && m.enabled
}

// Handler rejects writes outside the writable paths with 403 demo_mode.
func (m *Middleware) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !m.IsEnabled() {
			c.Next()
			return
		}
		c.Set(contextKey, true)
		c.Header(HeaderDemoMode, "true")

		if isSafe(c.Request.Method) || m.writablePath(c.Request.URL.Path) {
			c.Next()
			return
		}
		c.AbortWithStatusJSON(http.StatusForbidden, apperr.Response{
			Error:   "this action is disabled in demo mode",
			Code:    "demo_mode",
			Details: map[string]bool{"demo_mode": true},
		})
	}
}

func isSafe(method string) bool {
	return method == http.MethodGet || method == http.MethodHead || method == http.MethodOptions
}

// writablePath matches against the cleaned path so dot segments cannot
// climb out of an allowed prefix.
func (m *Middleware) writablePath(p string) bool {
	p = path.Clean("/" + p)
	for _, w := range m.writable {
		prefix, ok := strings.CutSuffix(w, "/")
		switch {
		case !ok && p == w:
			return true
		case ok && strings.HasPrefix(p, prefix+"/"):
			return true
		}
	}
	return false
}

// Status is the body of GET /api/demo/status.
type Status struct {
	Enabled bool   `json:"enabled"`
	Message string `json:"message"`
	Notice  string `json:"notice,omitempty"`
}

// StatusHandler reports whether this instance is a demo.
func (m *Middleware) StatusHandler(c *gin.Context) {
	if !m.IsEnabled() {
		c.JSON(http.StatusOK, Status{Message: "demo mode is off"})
		return
	}
	c.JSON(http.StatusOK, Status{
		Enabled: true,
		Message: "demo mode is on: changes are disabled",
		Notice:  m.notice,
	})
}

// Enabled reports whether the request passed an enabled demo middleware.
func Enabled(c *gin.Context) bool {
	return c.GetBool(contextKey)
}

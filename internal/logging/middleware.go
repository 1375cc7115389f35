package logging

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
)

// UserIDFunc extracts the authenticated user id from the request, if any.
type UserIDFunc func(c *gin.Context) (uint, bool)

// RequestLogger logs every request once it has been handled.
// 5xx responses are logged at error level, 4xx at warn, everything else at info.
func RequestLogger(logger *slog.Logger, userID UserIDFunc) gin.HandlerFunc {
	if logger == nil {
		logger = slog.Default()
	}
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		attrs := []any{
			"method", c.Request.Method,
			"route", route,
			"path", c.Request.URL.Path,
			"status", status,
			"duration_ms", time.Since(start).Milliseconds(),
		}
		if userID != nil {
			if id, ok := userID(c); ok {
				attrs = append(attrs, "user_id", id)
			}
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, "error", c.Errors.String())
		}

		switch {
		case status >= 500:
			logger.ErrorContext(c.Request.Context(), "HTTP request failed", attrs...)
		case status >= 400:
			logger.WarnContext(c.Request.Context(), "HTTP request rejected", attrs...)
		default:
			logger.InfoContext(c.Request.Context(), "HTTP request", attrs...)
		}
	}
}

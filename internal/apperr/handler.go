package apperr

import (
	"context"
	"log/slog"

	"github.com/gin-gonic/gin"
)

// Recorder counts handled errors by severity.
type Recorder interface {
	RecordError(severity string)
}

// Response is the JSON body of every API error.
type Response struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`    // machine-readable error code
	Details any    `json:"details,omitempty"` // additional context (validation errors, etc.)
}

// Options describe the operation that failed.
type Options struct {
	Operation string
	Severity  Severity // overrides the severity carried by the error
	UserID    uint

	// Retry, when set, is invoked exactly once after the error is recorded.
	Retry func(ctx context.Context) error
}

// Handler records errors and optionally retries the failed operation once.
type Handler struct {
	logger   *slog.Logger
	recorder Recorder
}

func NewHandler(logger *slog.Logger, recorder Recorder) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, recorder: recorder}
}

// Handle records err. When opts.Retry is set its result is returned instead of err.
func (h *Handler) Handle(ctx context.Context, err error, opts Options) error {
	if err == nil {
		return nil
	}
	h.record(ctx, err, opts)
	if opts.Retry == nil {
		return err
	}

	retryErr := opts.Retry(ctx)
	if retryErr != nil {
		retryOpts := opts
		retryOpts.Operation = opts.Operation + " (retry)"
		h.record(ctx, retryErr, retryOpts)
		return retryErr
	}
	h.log().InfoContext(ctx, "Operation succeeded on retry", "operation", opts.Operation)
	return nil
}

// Respond writes err as a JSON error response. Server-side failures are recorded,
// and their message is not exposed to the client.
func (h *Handler) Respond(c *gin.Context, err error, operation string) {
	appErr := Classify(err)
	if appErr.Status >= 500 {
		h.record(c.Request.Context(), err, Options{Operation: operation, Severity: appErr.Severity})
	} else {
		h.log().DebugContext(c.Request.Context(), "Request failed",
			"operation", operation, "status", appErr.Status, "error", err)
	}

	c.AbortWithStatusJSON(appErr.Status, Response{
		Error:   appErr.Message,
		Code:    appErr.Code,
		Details: appErr.Details,
	})
}

func (h *Handler) record(ctx context.Context, err error, opts Options) {
	severity := opts.Severity
	if severity == "" {
		severity = Classify(err).Severity
	}

	attrs := []any{"operation", opts.Operation, "severity", string(severity), "error", err}
	if opts.UserID != 0 {
		attrs = append(attrs, "user_id", opts.UserID)
	}

	logger := h.log()
	switch severity {
	case SeverityLow:
		logger.DebugContext(ctx, "Operation failed", attrs...)
	case SeverityMedium:
		logger.WarnContext(ctx, "Operation failed", attrs...)
	case SeverityCritical:
		logger.ErrorContext(ctx, "Operation failed", append(attrs, "critical", true)...)
	default:
		logger.ErrorContext(ctx, "Operation failed", attrs...)
	}

	if h != nil && h.recorder != nil {
		h.recorder.RecordError(string(severity))
	}
}

func (h *Handler) log() *slog.Logger {
	if h == nil || h.logger == nil {
		return slog.Default()
	}
	return h.logger
}

// Package apperr is the single place where application errors are classified,
// recorded and turned into HTTP responses.
//
// Every error carries a severity label. The label only affects how the error
// is logged and counted; callers never branch on it.
package apperr

import (
	"errors"
	"math"
	"net/http"
	"time"

	"gorm.io/gorm"
)

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Sentinels for errors.Is checks. Every *Error wraps exactly one of them.
var (
	ErrValidation   = errors.New("validation failed")
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrConflict     = errors.New("conflict")
	ErrUpstream     = errors.New("upstream service failed")
	ErrUnavailable  = errors.New("service unavailable")
	ErrRateLimited  = errors.New("rate limited")
	ErrInternal     = errors.New("internal error")
)

// Error is a classified application error.
type Error struct {
	Code     string
	Message  string
	Status   int
	Severity Severity
	Details  any
	Err      error

	kind error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.kind != nil {
		errs = append(errs, e.kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// Validation reports invalid client input. details is typically a field -> message map.
func Validation(message string, details any) *Error {
	return &Error{
		Code:     "validation_error",
		Message:  message,
		Status:   http.StatusBadRequest,
		Severity: SeverityLow,
		Details:  details,
		kind:     ErrValidation,
	}
}

func NotFound(resource string) *Error {
	return &Error{
		Code:     "not_found",
		Message:  resource + " not found",
		Status:   http.StatusNotFound,
		Severity: SeverityLow,
		kind:     ErrNotFound,
	}
}

func Unauthorized(message string) *Error {
	return &Error{
		Code:     "unauthorized",
		Message:  message,
		Status:   http.StatusUnauthorized,
		Severity: SeverityLow,
		kind:     ErrUnauthorized,
	}
}

func Forbidden(message string) *Error {
	return &Error{
		Code:     "forbidden",
		Message:  message,
		Status:   http.StatusForbidden,
		Severity: SeverityMedium,
		kind:     ErrForbidden,
	}
}

func Conflict(message string) *Error {
	return &Error{
		Code:     "conflict",
		Message:  message,
		Status:   http.StatusConflict,
		Severity: SeverityLow,
		kind:     ErrConflict,
	}
}

// Upstream wraps a failure of an external collaborator (functions, AI model).
func Upstream(service string, err error) *Error {
	return &Error{
		Code:     "upstream_error",
		Message:  service + " request failed",
		Status:   http.StatusBadGateway,
		Severity: SeverityHigh,
		Err:      err,
		kind:     ErrUpstream,
	}
}

// RateLimited tells the client to back off for retryAfter.
func RateLimited(message string, retryAfter time.Duration) *Error {
	seconds := int(math.Ceil(retryAfter.Seconds()))
	if seconds < 1 {
		seconds = 1
	}
	return &Error{
		Code:     "rate_limited",
		Message:  message,
		Status:   http.StatusTooManyRequests,
		Severity: SeverityLow,
		Details:  map[string]int{"retry_after_seconds": seconds},
		kind:     ErrRateLimited,
	}
}

// Unavailable is returned when an optional integration is not configured.
func Unavailable(message string) *Error {
	return &Error{
		Code:     "unavailable",
		Message:  message,
		Status:   http.StatusServiceUnavailable,
		Severity: SeverityMedium,
		kind:     ErrUnavailable,
	}
}

func Internal(err error) *Error {
	return &Error{
		Code:     "internal_error",
		Message:  "internal server error",
		Status:   http.StatusInternalServerError,
		Severity: SeverityHigh,
		Err:      err,
		kind:     ErrInternal,
	}
}

// Classify turns any error into an *Error.
// gorm.ErrRecordNotFound becomes a 404, unknown errors become internal errors.
func Classify(err error) *Error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		e := NotFound("resource")
		e.Err = err
		return e
	}
	return Internal(err)
}

// StatusOf returns the HTTP status an error maps to.
func StatusOf(err error) int {
	if err == nil {
		return http.StatusOK
	}
	return Classify(err).Status
}

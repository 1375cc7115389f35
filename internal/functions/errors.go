package functions

import (
	"errors"
	"fmt"
)

// ErrNotConfigured is returned when no functions base URL is set.
var ErrNotConfigured = errors.New("serverless functions are not configured")

// ErrUnauthorized indicates the functions API key was rejected.
var ErrUnauthorized = errors.New("functions API key rejected")

// ErrRateLimited indicates the functions gateway is throttling requests.
var ErrRateLimited = errors.New("functions rate limit exceeded")

// ServerError represents a 5xx response from a function.
type ServerError struct {
	Function   string
	StatusCode int
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("function %s failed: HTTP %d", e.Function, e.StatusCode)
}

// RequestError is a 4xx response other than 401 and 429. Message is the
// function's own error text when it sent one.
type RequestError struct {
	Function   string
	StatusCode int
	Message    string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("function %s rejected request: HTTP %d: %s", e.Function, e.StatusCode, e.Message)
}

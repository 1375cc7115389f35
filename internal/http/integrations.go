package http

import (
	"errors"
	"net/http"

	"github.com/mrlokans/weddingplanner/internal/apperr"
	"github.com/mrlokans/weddingplanner/internal/functions"
	"github.com/mrlokans/weddingplanner/internal/gemini"
)

// integrationError maps failures of the serverless functions and the AI model
// onto API errors.
func integrationError(service string, err error) error {
	var reqErr *functions.RequestError
	switch {
	case errors.Is(err, functions.ErrNotConfigured), errors.Is(err, gemini.ErrNotConfigured):
		unavailable := apperr.Unavailable(service + " is not configured")
		unavailable.Err = err
		return unavailable
	case errors.Is(err, functions.ErrRateLimited):
		limited := apperr.Upstream(service, err)
		limited.Code = "rate_limited"
		limited.Status = http.StatusTooManyRequests
		limited.Message = service + " is busy, try again shortly"
		return limited
	case errors.As(err, &reqErr):
		rejected := apperr.Validation(service+" rejected the request", nil)
		if reqErr.Message != "" {
			rejected.Details = map[string]string{"reason": reqErr.Message}
		}
		rejected.Err = err
		return rejected
	case errors.Is(err, gemini.ErrUnknownKind):
		return apperr.Validation("invalid input", map[string]string{"kind": "is not a supported content kind"})
	}
	return apperr.Upstream(service, err)
}

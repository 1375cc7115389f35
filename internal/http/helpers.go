package http

import (
	"errors"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mrlokans/weddingplanner/internal/apperr"
	"github.com/mrlokans/weddingplanner/internal/audit"
	"github.com/mrlokans/weddingplanner/internal/auth"
)

const (
	defaultPageLimit = 25
	maxPageLimit     = 100
)

// GetUserID extracts the authenticated user's ID from the Gin context.
// Returns auth.DefaultUserID (0) when auth is disabled.
func GetUserID(c *gin.Context) uint {
	return auth.GetUserID(c)
}

// --- Response Types ---

// ErrorResponse is the standard error response format for all API errors.
type ErrorResponse = apperr.Response

// SuccessResponse is a standard success response with optional data.
type SuccessResponse struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// PaginatedResponse wraps paginated data with metadata.
type PaginatedResponse struct {
	Data       any   `json:"data"`
	Total      int64 `json:"total"`
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
	HasMore    bool  `json:"has_more"`
	TotalPages int   `json:"total_pages,omitempty"`
}

func newPaginatedResponse(data any, total int64, p pagination) PaginatedResponse {
	pages := int((total + int64(p.Limit) - 1) / int64(p.Limit))
	if pages < 1 {
		pages = 1
	}
	return PaginatedResponse{
		Data:       data,
		Total:      total,
		Limit:      p.Limit,
		Offset:     p.Offset,
		HasMore:    int64(p.Offset+p.Limit) < total,
		TotalPages: pages,
	}
}

// --- Error Response Helpers ---

// respondBadRequest sends a 400 Bad Request response.
func respondBadRequest(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{Error: message, Code: "bad_request"})
}

// notFoundAs names the missing resource when err is a missing row.
func notFoundAs(err error, resource string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		e := apperr.NotFound(resource)
		e.Err = err
		return e
	}
	return err
}

// --- Success Response Helpers ---

// respondCreated sends a 201 Created response with data.
func respondCreated(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, data)
}

// respondAccepted sends a 202 Accepted response (for async operations).
func respondAccepted(c *gin.Context, message string, data any) {
	c.JSON(http.StatusAccepted, SuccessResponse{Message: message, Data: data})
}

// --- Parameter Parsing ---

// parseIDParam extracts and validates an unsigned integer ID from URL parameters.
// Returns the parsed ID or responds with a 400 error and returns 0, false.
func parseIDParam(c *gin.Context, paramName string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(paramName), 10, 32)
	if err != nil || id == 0 {
		respondBadRequest(c, "invalid "+paramName)
		return 0, false
	}
	return uint(id), true
}

// parseOptionalQueryID parses an optional unsigned id query parameter.
func parseOptionalQueryID(c *gin.Context, name string) (*uint, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		respondBadRequest(c, "invalid "+name)
		return nil, false
	}
	v := uint(id)
	return &v, true
}

type pagination struct {
	Limit  int
	Offset int
	Page   int
}

// parsePagination reads limit with either page (1-based) or offset.
func parsePagination(c *gin.Context) pagination {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultPageLimit)))
	if limit < 1 || limit > maxPageLimit {
		limit = defaultPageLimit
	}
	p := pagination{Limit: limit, Page: 1}
	if raw := c.Query("page"); raw != "" {
		if page, err := strconv.Atoi(raw); err == nil && page > 1 {
			p.Page = page
		}
		p.Offset = (p.Page - 1) * limit
		return p
	}
	if offset, err := strconv.Atoi(c.Query("offset")); err == nil && offset > 0 {
		p.Offset = offset
		p.Page = offset/limit + 1
	}
	return p
}

// bindJSON decodes the request body into dst. Malformed bodies become a
// validation error.
func bindJSON(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperr.Validation("request body is required", nil)
		}
		return apperr.Validation("invalid request body", map[string]string{"body": err.Error()})
	}
	return nil
}

// clientInfo returns the caller's IP and user agent for audit records.
func clientInfo(c *gin.Context) (string, string) {
	return c.ClientIP(), c.Request.UserAgent()
}

func queryBool(c *gin.Context, name string) bool {
	v, _ := strconv.ParseBool(strings.TrimSpace(c.Query(name)))
	return v
}

// recordAction fills in the caller's identity and sends the action to the auditor.
func recordAction(a Auditor, c *gin.Context, action audit.Action) {
	if a == nil {
		return
	}
	if action.UserID == 0 {
		action.UserID = GetUserID(c)
	}
	action.IPAddress, action.UserAgent = clientInfo(c)
	a.Record(action)
}

// setRetryAfter writes the Retry-After header in whole seconds, rounding up.
func setRetryAfter(c *gin.Context, d time.Duration) {
	c.Header("Retry-After", strconv.Itoa(max(1, int(math.Ceil(d.Seconds())))))
}

package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/weddingplanner/internal/apperr"
	dbaudit "github.com/mrlokans/weddingplanner/internal/database/audit"
	"github.com/mrlokans/weddingplanner/internal/entities"
)

type AuditController struct {
	log    AuditLog
	errors *apperr.Handler
}

func NewAuditController(log AuditLog, errs *apperr.Handler) *AuditController {
	return &AuditController{log: log, errors: errs}
}

// GetAuditEvents returns paginated audit events, newest first.
// Filters: ?type=, ?status=, ?user_id=, ?action=, ?entity_type= with
// optional ?entity_id=, ?since= (RFC 3339).
func (ac *AuditController) GetAuditEvents(c *gin.Context) {
	p := parsePagination(c)
	filter := dbaudit.EventFilter{Limit: p.Limit, Offset: p.Offset}

	if raw := strings.ToLower(c.Query("type")); raw != "" {
		filter.EventType = entities.AuditEventType(raw)
		if !filter.EventType.Valid() {
			respondBadRequest(c, "invalid type")
			return
		}
	}
	if raw := strings.ToLower(c.Query("status")); raw != "" {
		filter.Status = entities.AuditStatus(raw)
		if !filter.Status.Valid() {
			respondBadRequest(c, "invalid status")
			return
		}
	}
	userID, ok := parseOptionalQueryID(c, "user_id")
	if !ok {
		return
	}
	if userID != nil {
		filter.UserID = *userID
	}
	filter.Action = strings.TrimSpace(c.Query("action"))
	filter.EntityType = strings.ToLower(strings.TrimSpace(c.Query("entity_type")))
	entityID, ok := parseOptionalQueryID(c, "entity_id")
	if !ok {
		return
	}
	if entityID != nil {
		if filter.EntityType == "" {
			respondBadRequest(c, "entity_id requires entity_type")
			return
		}
		filter.EntityID = *entityID
	}
	if raw := c.Query("since"); raw != "" {
		since, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			respondBadRequest(c, "invalid since")
			return
		}
		filter.Since = since
	}

	events, total, err := ac.log.ListEvents(filter)
	if err != nil {
		ac.errors.Respond(c, err, "list_audit_events")
		return
	}
	c.JSON(http.StatusOK, newPaginatedResponse(events, total, p))
}

// GetAuditEvent returns one event with its metadata decoded.
func (ac *AuditController) GetAuditEvent(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	event, err := ac.log.GetEvent(id)
	if err != nil {
		ac.errors.Respond(c, notFoundAs(err, "audit event"), "get_audit_event")
		return
	}
	metadata, err := event.MetadataMap()
	if err != nil {
		metadata = map[string]any{"raw": event.Metadata}
	}
	c.JSON(http.StatusOK, gin.H{"event": event, "metadata": metadata})
}

// GetEventTypes lists the event types with their counts over the last day.
func (ac *AuditController) GetEventTypes(c *gin.Context) {
	counts, err := ac.log.CountLastDay()
	if err != nil {
		ac.errors.Respond(c, err, "count_audit_events")
		return
	}
	types := entities.AuditEventTypes
	out := make([]gin.H, len(types))
	for i, t := range types {
		out[i] = gin.H{"type": t, "last_day": counts[t]}
	}
	c.JSON(http.StatusOK, gin.H{"event_types": out})
}

package entities

import (
	"encoding/json"
	"slices"
	"time"
)

// AuditEventType groups audit events by the area of the planner they touch.
type AuditEventType string

const (
	AuditEventAuth     AuditEventType = "auth"
	AuditEventBudget   AuditEventType = "budget"
	AuditEventGuest    AuditEventType = "guest"
	AuditEventWebsite  AuditEventType = "website"
	AuditEventBlog     AuditEventType = "blog"
	AuditEventUpload   AuditEventType = "upload"
	AuditEventPayment  AuditEventType = "payment"
	AuditEventAdmin    AuditEventType = "admin"
	AuditEventSettings AuditEventType = "settings"
)

// AuditEventTypes is every type in display order.
var AuditEventTypes = []AuditEventType{
	AuditEventAuth,
	AuditEventBudget,
	AuditEventGuest,
	AuditEventWebsite,
	AuditEventBlog,
	AuditEventUpload,
	AuditEventPayment,
	AuditEventAdmin,
	AuditEventSettings,
}

func (t AuditEventType) Valid() bool {
	return slices.Contains(AuditEventTypes, t)
}

type AuditStatus string

const (
	AuditStatusSuccess AuditStatus = "success"
	AuditStatusFailed  AuditStatus = "failed"
)

func (s AuditStatus) Valid() bool {
	return s == AuditStatusSuccess || s == AuditStatusFailed
}

// AuditEvent is one row of the append-only audit log. Rows are never
// updated; the retention job deletes them by age.
type AuditEvent struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	UserID      uint           `gorm:"index" json:"user_id"`
	EventType   AuditEventType `gorm:"index;size:50" json:"event_type"`
	Action      string         `gorm:"size:100" json:"action"` // guest_import, role_change, ...
	Description string         `gorm:"size:500" json:"description"`
	EntityType  string         `gorm:"size:50" json:"entity_type"`
	EntityID    *uint          `gorm:"index" json:"entity_id,omitempty"`
	Metadata    string         `gorm:"type:text" json:"metadata,omitempty"`
	IPAddress   string         `gorm:"size:45" json:"ip_address,omitempty"`
	UserAgent   string         `gorm:"size:500" json:"user_agent,omitempty"`
	Status      AuditStatus    `gorm:"size:20;index" json:"status"`
	ErrorMsg    string         `gorm:"size:500" json:"error_msg,omitempty"`
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`
}

func (AuditEvent) TableName() string {
	return "audit_events"
}

// SetMetadata stores md as JSON. An empty map clears the column.
func (e *AuditEvent) SetMetadata(md map[string]any) error {
	if len(md) == 0 {
		e.Metadata = ""
		return nil
	}
	raw, err := json.Marshal(md)
	if err != nil {
		return err
	}
	e.Metadata = string(raw)
	return nil
}

// MetadataMap decodes the JSON metadata column. Rows without metadata
// yield an empty map.
func (e *AuditEvent) MetadataMap() (map[string]any, error) {
	md := map[string]any{}
	if e.Metadata == "" {
		return md, nil
	}
	err := json.Unmarshal([]byte(e.Metadata), &md)
	return md, err
}

// Package audit records who changed what. Writes are asynchronous so a slow
// audit insert never delays the request that triggered it.
package audit

import (
	"log/slog"
	"sync"
	"time"

	"github.com/mrlokans/weddingplanner/internal/database/audit"
	"github.com/mrlokans/weddingplanner/internal/entities"
)

const maxTextLength = 500

// Store persists and queries audit events.
type Store interface {
	LogEvent(event *entities.AuditEvent) error
	ListEvents(filter audit.EventFilter) ([]entities.AuditEvent, int64, error)
	CountSince(since time.Time) (map[entities.AuditEventType]int64, error)
	DeleteOldEvents(olderThan time.Time) (int64, error)
	GetEventByID(id uint) (*entities.AuditEvent, error)
}

// Service provides high-level audit logging functionality.
type Service struct {
	store  Store
	logger *slog.Logger
	now    func() time.Time
	wg     sync.WaitGroup
}

func NewService(store Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, logger: logger, now: time.Now}
}

// Log records an event synchronously.
func (s *Service) Log(event *entities.AuditEvent) error {
	return s.store.LogEvent(event)
}

// LogAsync records an event in the background. Failures are logged, not returned.
func (s *Service) LogAsync(event *entities.AuditEvent) {
	if event.CreatedAt.IsZero() {
		event.CreatedAt = s.now()
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.store.LogEvent(event); err != nil {
			s.logger.Error("Failed to log audit event",
				"action", event.Action, "event_type", event.EventType, "error", err)
		}
	}()
}

// Wait blocks until every pending LogAsync write has finished.
func (s *Service) Wait() {
	s.wg.Wait()
}

// Action describes a user-initiated change.
type Action struct {
	UserID      uint
	EventType   entities.AuditEventType
	Action      string
	Description string
	EntityType  string
	EntityID    uint
	Metadata    map[string]any
	IPAddress   string
	UserAgent   string
	Err         error
}

// Record logs a as an event asynchronously.
func (s *Service) Record(a Action) {
	event := &entities.AuditEvent{
		UserID:      a.UserID,
		EventType:   a.EventType,
		Action:      a.Action,
		Description: truncate(a.Description, maxTextLength),
		EntityType:  a.EntityType,
		IPAddress:   a.IPAddress,
		UserAgent:   truncate(a.UserAgent, maxTextLength),
		Status:      entities.AuditStatusSuccess,
	}
	if a.EntityID != 0 {
		id := a.EntityID
		event.EntityID = &id
	}
	if err := event.SetMetadata(a.Metadata); err != nil {
		s.logger.Warn("dropping unencodable audit metadata", "action", a.Action, "error", err)
	}
	if a.Err != nil {
		event.Status = entities.AuditStatusFailed
		event.ErrorMsg = truncate(a.Err.Error(), maxTextLength)
	}

	s.LogAsync(event)
}

// LogAuth records an authentication event.
func (s *Service) LogAuth(userID uint, action, ipAddr, userAgent string, success bool) {
	event := &entities.AuditEvent{
		UserID:    userID,
		EventType: entities.AuditEventAuth,
		Action:    action,
		IPAddress: ipAddr,
		UserAgent: truncate(userAgent, maxTextLength),
		Status:    entities.AuditStatusSuccess,
	}
	if !success {
		event.Status = entities.AuditStatusFailed
	}

	s.LogAsync(event)
}

// LogGuestImport records a CSV guest import with its row counts.
func (s *Service) LogGuestImport(userID uint, imported, rejected int, err error) {
	s.Record(Action{
		UserID:      userID,
		EventType:   entities.AuditEventGuest,
		Action:      "guest_import",
		Description: "Imported guests from CSV",
		EntityType:  "guest",
		Metadata:    map[string]any{"imported": imported, "rejected": rejected},
		Err:         err,
	})
}

// LogAdmin records an administrative change to another user's account.
func (s *Service) LogAdmin(adminID uint, action string, targetUserID uint, metadata map[string]any) {
	s.Record(Action{
		UserID:     adminID,
		EventType:  entities.AuditEventAdmin,
		Action:     action,
		EntityType: "user",
		EntityID:   targetUserID,
		Metadata:   metadata,
	})
}

// ListEvents returns one page of events matching filter.
func (s *Service) ListEvents(filter audit.EventFilter) ([]entities.AuditEvent, int64, error) {
	return s.store.ListEvents(filter)
}

// GetEvent returns a single event by id.
func (s *Service) GetEvent(id uint) (*entities.AuditEvent, error) {
	return s.store.GetEventByID(id)
}

// CountLastDay returns per-type counts for the trailing 24 hours.
func (s *Service) CountLastDay() (map[entities.AuditEventType]int64, error) {
	return s.store.CountSince(s.now().Add(-24 * time.Hour))
}

// DeleteOldEvents removes events older than the retention duration.
func (s *Service) DeleteOldEvents(retention time.Duration) (int64, error) {
	return s.store.DeleteOldEvents(s.now().Add(-retention))
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

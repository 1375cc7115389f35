// Package audit stores the append-only audit log.
package audit

import (
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/weddingplanner/internal/entities"
)

const defaultListLimit = 50

// EventFilter narrows ListEvents. Zero values mean "any".
type EventFilter struct {
	UserID     uint
	EventType  entities.AuditEventType
	Status     entities.AuditStatus
	Action     string
	EntityType string
	EntityID   uint
	Since      time.Time
	Limit      int
	Offset     int
}

// scope applies the filter's conditions, leaving paging to the caller.
func (f EventFilter) scope(db *gorm.DB) *gorm.DB {
	conds := []struct {
		set   bool
		query string
		arg   any
	}{
		{f.UserID > 0, "user_id = ?", f.UserID},
		{f.EventType != "", "event_type = ?", f.EventType},
		{f.Status != "", "status = ?", f.Status},
		{f.Action != "", "action = ?", f.Action},
		{f.EntityType != "", "entity_type = ?", f.EntityType},
		{f.EntityID > 0, "entity_id = ?", f.EntityID},
		{!f.Since.IsZero(), "created_at > ?", f.Since},
	}
	for _, c := range conds {
		if c.set {
			db = db.Where(c.query, c.arg)
		}
	}
	return db
}

func (f EventFilter) page(db *gorm.DB) *gorm.DB {
	limit := f.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	return db.Limit(limit).Offset(max(f.Offset, 0))
}

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) LogEvent(event *entities.AuditEvent) error {
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}
	return r.db.Create(event).Error
}

// ListEvents returns one page of matching events, newest first, with the
// total number of matches.
func (r *Repository) ListEvents(filter EventFilter) ([]entities.AuditEvent, int64, error) {
	var total int64
	if err := r.db.Model(&entities.AuditEvent{}).Scopes(filter.scope).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var events []entities.AuditEvent
	err := r.db.Scopes(filter.scope, filter.page).
		Order("created_at DESC, id DESC").
		Find(&events).Error
	return events, total, err
}

// CountSince returns per-type counts of events created after since.
func (r *Repository) CountSince(since time.Time) (map[entities.AuditEventType]int64, error) {
	var rows []struct {
		EventType entities.AuditEventType
		Count     int64
	}
	err := r.db.Model(&entities.AuditEvent{}).
		Select("event_type, COUNT(*) AS count").
		Scopes(EventFilter{Since: since}.scope).
		Group("event_type").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[entities.AuditEventType]int64, len(rows))
	for _, row := range rows {
		counts[row.EventType] = row.Count
	}
	return counts, nil
}

// DeleteOldEvents removes events created before olderThan and returns how
// many went.
func (r *Repository) DeleteOldEvents(olderThan time.Time) (int64, error) {
	result := r.db.Where("created_at < ?", olderThan).Delete(&entities.AuditEvent{})
	return result.RowsAffected, result.Error
}

// GetEventByID returns gorm.ErrRecordNotFound for unknown ids.
func (r *Repository) GetEventByID(id uint) (*entities.AuditEvent, error) {
	var event entities.AuditEvent
	if err := r.db.First(&event, id).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

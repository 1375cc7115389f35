package tasks

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/mikestefanello/backlite"
)

// Housekeeping defaults, used when a task is enqueued without a window.
const (
	DefaultAuditRetentionDays  = 90
	DefaultCheckoutExpiryHours = 24
)

// AuditEventCleaner deletes audit events older than a retention window.
type AuditEventCleaner interface {
	DeleteOldEvents(retention time.Duration) (int64, error)
}

// CheckoutExpirer marks abandoned checkout sessions as expired.
type CheckoutExpirer interface {
	ExpireOpenBefore(cutoff time.Time) (int64, error)
}

// maintenanceQueue is shared by the cron-driven housekeeping jobs. Payloads
// of failed runs are kept for a day so admins can inspect them.
func maintenanceQueue(name string, timeout time.Duration) backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        name,
		MaxAttempts: 3,
		Backoff:     5 * time.Minute,
		Timeout:     timeout,
		Retention: &backlite.Retention{
			Duration: 24 * time.Hour,
			Data:     &backlite.RetainData{OnlyFailed: true},
		},
	}
}

func orDefault[T int | time.Duration](v, def T) T {
	if v <= 0 {
		return def
	}
	return v
}

// CleanupAuditEventsTask prunes the audit log.
type CleanupAuditEventsTask struct {
	RetentionDays int `json:"retention_days"`
}

func (t CleanupAuditEventsTask) Config() backlite.QueueConfig {
	return maintenanceQueue("cleanup_audit_events", 2*time.Minute)
}

func CleanupAuditEventsProcessor(cleaner AuditEventCleaner, logger *slog.Logger) backlite.QueueProcessor[CleanupAuditEventsTask] {
	return func(ctx context.Context, task CleanupAuditEventsTask) error {
		if cleaner == nil {
			return errors.New("audit event cleaner not configured")
		}
		days := orDefault(task.RetentionDays, DefaultAuditRetentionDays)
		deleted, err := cleaner.DeleteOldEvents(time.Duration(days) * 24 * time.Hour)
		if err != nil {
			return err
		}
		logger.Info("pruned audit log", "deleted", deleted, "retention_days", days)
		return nil
	}
}

// ExpireCheckoutSessionsTask expires checkout sessions left open for longer
// than OlderThanHours.
type ExpireCheckoutSessionsTask struct {
	OlderThanHours int `json:"older_than_hours"`
}

func (t ExpireCheckoutSessionsTask) Config() backlite.QueueConfig {
	return maintenanceQueue("expire_checkout_sessions", time.Minute)
}

func ExpireCheckoutSessionsProcessor(expirer CheckoutExpirer, logger *slog.Logger, now func() time.Time) backlite.QueueProcessor[ExpireCheckoutSessionsTask] {
	if now == nil {
		now = time.Now
	}
	return func(ctx context.Context, task ExpireCheckoutSessionsTask) error {
		if expirer == nil {
			return errors.New("checkout expirer not configured")
		}
		hours := orDefault(task.OlderThanHours, DefaultCheckoutExpiryHours)
		expired, err := expirer.ExpireOpenBefore(now().Add(-time.Duration(hours) * time.Hour))
		if err != nil {
			return err
		}
		if expired > 0 {
			logger.Info("expired stale checkout sessions", "expired", expired, "older_than_hours", hours)
		}
		return nil
	}
}

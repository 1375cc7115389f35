// Package scheduler enqueues periodic maintenance tasks on a cron schedule.
package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/robfig/cron/v3"

	"github.com/mrlokans/weddingplanner/internal/tasks"
)

const enqueueTimeout = 10 * time.Second

// Enqueuer adds a task to the background queue.
type Enqueuer interface {
	Enqueue(ctx context.Context, task backlite.Task) (string, error)
}

// Config controls what the cleanup run enqueues and when.
type Config struct {
	Schedule            string
	AuditRetentionDays  int
	CheckoutExpiryHours int
}

// CleanupScheduler enqueues the audit and checkout cleanup tasks on a schedule.
type CleanupScheduler struct {
	enqueuer Enqueuer
	config   Config
	logger   *slog.Logger

	mu      sync.RWMutex
	cron    *cron.Cron
	entryID cron.EntryID
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

func NewCleanupScheduler(enqueuer Enqueuer, cfg Config, logger *slog.Logger) *CleanupScheduler {
	if cfg.Schedule == "" {
		cfg.Schedule = DefaultCleanupSchedule
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CleanupScheduler{
		enqueuer: enqueuer,
		config:   cfg,
		logger:   logger.With("component", "scheduler"),
	}
}

// Start schedules the cleanup job. The scheduler stops when ctx is done or
// Stop is called.
func (s *CleanupScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}
	if s.enqueuer == nil {
		return errors.New("cleanup scheduler: no task queue")
	}
	schedule, err := ParseSchedule(s.config.Schedule)
	if err != nil {
		return err
	}

	s.cron = cron.New(cron.WithParser(parser))
	s.entryID = s.cron.Schedule(schedule.sched, cron.FuncJob(func() {
		if _, err := s.RunNow(context.Background()); err != nil {
			s.logger.Error("scheduled cleanup failed", "error", err)
		}
	}))

	var runCtx context.Context
	runCtx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	s.cron.Start()
	s.running = true

	s.logger.Info("cleanup scheduler started",
		"schedule", schedule.String(),
		"description", schedule.Describe(),
		"next_run", schedule.Next(time.Now()))

	go s.monitor(runCtx, s.cron, s.done)
	return nil
}

// monitor stops the cron runner once ctx ends and waits for a running job.
func (s *CleanupScheduler) monitor(ctx context.Context, c *cron.Cron, done chan struct{}) {
	defer close(done)
	<-ctx.Done()
	<-c.Stop().Done()

	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
	s.logger.Info("cleanup scheduler stopped")
}

// Stop halts the scheduler and waits for a running job to finish.
func (s *CleanupScheduler) Stop() {
	s.mu.RLock()
	cancel, done := s.cancel, s.done
	s.mu.RUnlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// RunNow enqueues both cleanup tasks immediately and returns their ids.
func (s *CleanupScheduler) RunNow(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, enqueueTimeout)
	defer cancel()

	var ids []string
	var errs []error
	for _, task := range []backlite.Task{
		tasks.CleanupAuditEventsTask{RetentionDays: s.config.AuditRetentionDays},
		tasks.ExpireCheckoutSessionsTask{OlderThanHours: s.config.CheckoutExpiryHours},
	} {
		id, err := s.enqueuer.Enqueue(ctx, task)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		ids = append(ids, id)
	}

	if len(ids) > 0 {
		s.logger.Info("enqueued cleanup tasks", "task_ids", ids)
	}
	return ids, errors.Join(errs...)
}

func (s *CleanupScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// NextRunTime returns when the next cleanup will be enqueued, or nil when
// the scheduler is not running.
func (s *CleanupScheduler) NextRunTime() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.running {
		return nil
	}
	for _, entry := range s.cron.Entries() {
		if entry.ID == s.entryID {
			t := entry.Next
			return &t
		}
	}
	return nil
}

// Package tasks runs background work on backlite queues backed by a dedicated
// SQLite database: thumbnail generation, vision board analysis and periodic
// cleanups.
package tasks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/mikestefanello/backlite"
)

// Enqueuer adds tasks to a queue and reports on them.
type Enqueuer interface {
	Enqueue(ctx context.Context, task backlite.Task) (string, error)
	Status(ctx context.Context, taskID string) (backlite.TaskStatus, error)
}

// Client owns the queue database and the backlite workers reading it.
type Client struct {
	queue  *backlite.Client
	db     *sql.DB
	cfg    Config
	logger *slog.Logger

	mu      sync.Mutex
	running bool
}

// TasksDBPath places the queue database next to the planner database:
// "data/wedding.db" becomes "data/wedding-tasks.db".
func TasksDBPath(mainDBPath string) string {
	ext := filepath.Ext(mainDBPath)
	return strings.TrimSuffix(mainDBPath, ext) + "-tasks" + ext
}

func openQueueDB(path string, workers int) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path+"?_journal=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}
	// Every worker holds a connection while it runs; the extra ones serve
	// enqueues and status lookups from HTTP handlers.
	db.SetMaxOpenConns(workers + 4)
	db.SetMaxIdleConns(workers + 1)
	db.SetConnMaxLifetime(time.Hour)
	return db, nil
}

// NewClient opens (and if needed creates) the queue database and installs
// the backlite schema. Register queues, then Start.
func NewClient(mainDBPath string, cfg Config, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "tasks")
	def := DefaultConfig()
	cfg.Workers = orDefault(cfg.Workers, def.Workers)
	cfg.ReleaseAfter = orDefault(cfg.ReleaseAfter, def.ReleaseAfter)
	cfg.CleanupInterval = orDefault(cfg.CleanupInterval, def.CleanupInterval)

	path := TasksDBPath(mainDBPath)
	db, err := openQueueDB(path, cfg.Workers)
	if err != nil {
		return nil, fmt.Errorf("open tasks database %s: %w", path, err)
	}

	queue, err := backlite.NewClient(backlite.ClientConfig{
		DB:              db,
		NumWorkers:      cfg.Workers,
		ReleaseAfter:    cfg.ReleaseAfter,
		CleanupInterval: cfg.CleanupInterval,
		Logger:          logger,
	})
	if err == nil {
		err = queue.Install()
	}
	if err != nil {
		return nil, errors.Join(fmt.Errorf("set up task queue: %w", err), db.Close())
	}

	return &Client{queue: queue, db: db, cfg: cfg, logger: logger}, nil
}

// Register adds queues. It must run before Start.
func (c *Client) Register(queues ...backlite.Queue) {
	for _, q := range queues {
		c.queue.Register(q)
	}
}

// Start launches the workers and returns. Later calls do nothing.
func (c *Client) Start(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		return
	}
	c.running = true
	c.queue.Start(ctx)
	c.logger.Info("task queue started", "workers", c.cfg.Workers)
}

// Stop waits for running tasks until ctx is done. It reports whether every
// worker finished in time.
func (c *Client) Stop(ctx context.Context) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.running {
		return true
	}
	c.running = false

	finished := c.queue.Stop(ctx)
	if finished {
		c.logger.Info("task queue stopped")
	} else {
		c.logger.Warn("task queue stop timed out, running tasks were abandoned")
	}
	return finished
}

// Close releases the queue database. Call it after Stop.
func (c *Client) Close() error {
	return c.db.Close()
}

// Ping checks the queue database.
func (c *Client) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

// Enqueue saves task and returns its id.
func (c *Client) Enqueue(ctx context.Context, task backlite.Task) (string, error) {
	name := task.Config().Name
	ids, err := c.queue.Add(task).Ctx(ctx).Save()
	switch {
	case err != nil:
		return "", fmt.Errorf("enqueue %s: %w", name, err)
	case len(ids) == 0:
		return "", fmt.Errorf("enqueue %s: no task id returned", name)
	}
	c.logger.Debug("task enqueued", "queue", name, "task_id", ids[0])
	return ids[0], nil
}

func (c *Client) Status(ctx context.Context, taskID string) (backlite.TaskStatus, error) {
	return c.queue.Status(ctx, taskID)
}

var statusNames = map[backlite.TaskStatus]string{
	backlite.TaskStatusPending:  "pending",
	backlite.TaskStatusRunning:  "running",
	backlite.TaskStatusSuccess:  "success",
	backlite.TaskStatusFailure:  "failure",
	backlite.TaskStatusNotFound: "not_found",
}

// StatusName is the API spelling of status.
func StatusName(status backlite.TaskStatus) string {
	if name, ok := statusNames[status]; ok {
		return name
	}
	return "unknown"
}

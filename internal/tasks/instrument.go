package tasks

import (
	"context"
	"log/slog"
	"time"

	"github.com/mikestefanello/backlite"
)

// Outcomes reported to a Recorder.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Recorder counts processed tasks per queue and outcome.
type Recorder interface {
	RecordTask(queue, outcome string)
}

// instrument wraps a processor so every run is logged and counted.
func instrument[T backlite.Task](logger *slog.Logger, rec Recorder, fn backlite.QueueProcessor[T]) backlite.QueueProcessor[T] {
	if logger == nil {
		logger = slog.Default()
	}
	return func(ctx context.Context, task T) error {
		queue := task.Config().Name
		start := time.Now()
		err := fn(ctx, task)

		outcome := OutcomeSuccess
		if err != nil {
			outcome = OutcomeFailure
			logger.Error("task failed", "queue", queue, "duration", time.Since(start), "error", err)
		} else {
			logger.Debug("task completed", "queue", queue, "duration", time.Since(start))
		}
		if rec != nil {
			rec.RecordTask(queue, outcome)
		}
		return err
	}
}

package tasks

import (
	"log/slog"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/weddingplanner/internal/gemini"
	"github.com/mrlokans/weddingplanner/internal/storage"
)

// Dependencies are the collaborators of the registered queues. A nil
// collaborator makes its tasks fail with a "not configured" error, except the
// analyzer whose absence is recorded on the item.
type Dependencies struct {
	Uploads       UploadThumbnailStore
	Files         storage.FileStore
	ThumbnailSize int
	VisionItems   VisionItemStore
	Images        ImageSource
	Analyzer      gemini.ImageAnalyzer
	AuditCleaner  AuditEventCleaner
	Checkouts     CheckoutExpirer
	Recorder      Recorder
	Logger        *slog.Logger
}

// Queues builds every application queue.
func Queues(d Dependencies) []backlite.Queue {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "tasks")

	return []backlite.Queue{
		backlite.NewQueue(instrument(logger, d.Recorder,
			GenerateThumbnailProcessor(d.Uploads, d.Files, d.ThumbnailSize, logger))),
		backlite.NewQueue(instrument(logger, d.Recorder,
			AnalyzeVisionItemProcessor(d.VisionItems, d.Images, d.Analyzer, logger))),
		backlite.NewQueue(instrument(logger, d.Recorder,
			CleanupAuditEventsProcessor(d.AuditCleaner, logger))),
		backlite.NewQueue(instrument(logger, d.Recorder,
			ExpireCheckoutSessionsProcessor(d.Checkouts, logger, nil))),
	}
}

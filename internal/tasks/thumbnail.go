package tasks

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mikestefanello/backlite"
	"gorm.io/gorm"

	"github.com/mrlokans/weddingplanner/internal/entities"
	"github.com/mrlokans/weddingplanner/internal/imageutil"
	"github.com/mrlokans/weddingplanner/internal/storage"
)

const thumbnailPrefix = "thumbnails"

// UploadThumbnailStore loads uploads and records their generated thumbnails.
type UploadThumbnailStore interface {
	GetUploadByID(id uint) (*entities.Upload, error)
	SetThumbnail(id uint, key, url string) error
}

// GenerateThumbnailTask renders a JPEG preview for an uploaded image.
type GenerateThumbnailTask struct {
	UploadID uint `json:"upload_id"`
}

func (t GenerateThumbnailTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "generate_thumbnail",
		MaxAttempts: 3,
		Backoff:     30 * time.Second,
		Timeout:     time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// GenerateThumbnailProcessor creates a processor function for GenerateThumbnailTask.
// Uploads that were deleted in the meantime, are not images or already have
// a thumbnail are skipped.
func GenerateThumbnailProcessor(uploads UploadThumbnailStore, files storage.FileStore, maxDim int, logger *slog.Logger) backlite.QueueProcessor[GenerateThumbnailTask] {
	if maxDim <= 0 {
		maxDim = imageutil.DefaultThumbnailSize
	}
	return func(ctx context.Context, task GenerateThumbnailTask) error {
		if uploads == nil || files == nil {
			return errors.New("thumbnail generation not configured")
		}

		upload, err := uploads.GetUploadByID(task.UploadID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Info("skipping thumbnail for missing upload", "upload_id", task.UploadID)
			return nil
		}
		if err != nil {
			return fmt.Errorf("load upload %d: %w", task.UploadID, err)
		}
		if !upload.IsImage() || upload.ThumbnailKey != "" {
			return nil
		}

		rc, err := files.Open(ctx, upload.StorageKey)
		if err != nil {
			return fmt.Errorf("open upload %d: %w", upload.ID, err)
		}
		thumb, err := imageutil.Thumbnail(rc, maxDim)
		rc.Close()
		if err != nil {
			if errors.Is(err, imageutil.ErrTooLarge) || errors.Is(err, imageutil.ErrUnsupportedFormat) {
				logger.Warn("cannot thumbnail upload", "upload_id", upload.ID, "error", err)
				return nil
			}
			return fmt.Errorf("thumbnail upload %d: %w", upload.ID, err)
		}

		key, err := files.Save(ctx, thumbnailPrefix, "image/jpeg", bytes.NewReader(thumb))
		if err != nil {
			return fmt.Errorf("store thumbnail: %w", err)
		}
		if err := uploads.SetThumbnail(upload.ID, key, files.URL(key)); err != nil {
			_ = files.Delete(ctx, key)
			return fmt.Errorf("record thumbnail: %w", err)
		}

		logger.Info("generated thumbnail", "upload_id", upload.ID, "bytes", len(thumb))
		return nil
	}
}

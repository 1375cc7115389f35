package tasks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/mikestefanello/backlite"
	"gorm.io/gorm"

	"github.com/mrlokans/weddingplanner/internal/entities"
	"github.com/mrlokans/weddingplanner/internal/gemini"
	"github.com/mrlokans/weddingplanner/internal/imageutil"
	"github.com/mrlokans/weddingplanner/internal/security"
	"github.com/mrlokans/weddingplanner/internal/storage"
	"github.com/mrlokans/weddingplanner/internal/visionboard"
)

const defaultMaxImageBytes = 10 << 20

// VisionItemStore is the part of the vision board repository the analysis
// task needs.
type VisionItemStore interface {
	GetItem(userID, id uint) (*entities.VisionBoardItem, error)
	GetPreferences(userID uint) (*entities.VisionBoardPreference, error)
	SetAnalysis(id uint, analysis *entities.VisionAnalysis, failure string) error
}

// ImageSource returns the image bytes and content type behind a vision item.
type ImageSource interface {
	Load(ctx context.Context, item *entities.VisionBoardItem) ([]byte, string, error)
}

// UploadLookup finds an owned upload.
type UploadLookup interface {
	GetUpload(userID, id uint) (*entities.Upload, error)
}

// ImageLoader reads uploaded images from the file store and downloads
// external ones.
type ImageLoader struct {
	Uploads  UploadLookup
	Files    storage.FileStore
	HTTP     *http.Client
	MaxBytes int64
}

func (l *ImageLoader) Load(ctx context.Context, item *entities.VisionBoardItem) ([]byte, string, error) {
	maxBytes := l.MaxBytes
	if maxBytes <= 0 {
		maxBytes = defaultMaxImageBytes
	}

	if item.UploadID != nil && l.Uploads != nil && l.Files != nil {
		upload, err := l.Uploads.GetUpload(item.UserID, *item.UploadID)
		if err != nil {
			return nil, "", fmt.Errorf("load upload %d: %w", *item.UploadID, err)
		}
		rc, err := l.Files.Open(ctx, upload.StorageKey)
		if err != nil {
			return nil, "", err
		}
		defer rc.Close()
		data, err := io.ReadAll(io.LimitReader(rc, maxBytes+1))
		if err != nil {
			return nil, "", err
		}
		if int64(len(data)) > maxBytes {
			return nil, "", imageutil.ErrTooLarge
		}
		return data, upload.ContentType, nil
	}

	if err := security.ValidateURL(item.ImageURL); err != nil {
		return nil, "", err
	}
	return imageutil.Fetch(ctx, l.HTTP, item.ImageURL, maxBytes)
}

// AnalyzeVisionItemTask asks the AI analyzer to describe a vision board image.
type AnalyzeVisionItemTask struct {
	ItemID uint `json:"item_id"`
	UserID uint `json:"user_id"`
}

func (t AnalyzeVisionItemTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "analyze_vision_item",
		MaxAttempts: 2,
		Backoff:     time.Minute,
		Timeout:     2 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// AnalyzeVisionItemProcessor creates a processor function for AnalyzeVisionItemTask.
// Failures are stored on the item so the board can show them; only transient
// errors are returned for a retry.
func AnalyzeVisionItemProcessor(items VisionItemStore, images ImageSource, analyzer gemini.ImageAnalyzer, logger *slog.Logger) backlite.QueueProcessor[AnalyzeVisionItemTask] {
	return func(ctx context.Context, task AnalyzeVisionItemTask) error {
		if items == nil || images == nil {
			return errors.New("vision analysis not configured")
		}

		item, err := items.GetItem(task.UserID, task.ItemID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Info("skipping analysis for missing item", "item_id", task.ItemID, "user_id", task.UserID)
			return nil
		}
		if err != nil {
			return fmt.Errorf("load item %d: %w", task.ItemID, err)
		}

		fail := func(reason error) error {
			if err := items.SetAnalysis(item.ID, nil, security.Truncate(reason.Error(), 500)); err != nil {
				return fmt.Errorf("record analysis failure: %w", err)
			}
			return nil
		}

		if analyzer == nil {
			return fail(gemini.ErrNotConfigured)
		}

		pref, err := items.GetPreferences(task.UserID)
		if err != nil {
			return fmt.Errorf("load preferences: %w", err)
		}

		data, mimeType, err := images.Load(ctx, item)
		if err != nil {
			logger.Warn("cannot load vision item image", "item_id", item.ID, "error", err)
			return fail(err)
		}

		analysis, err := analyzer.AnalyzeImage(ctx, data, mimeType, visionboard.AnalysisPrompt(*pref))
		if err != nil {
			if errors.Is(err, gemini.ErrNotConfigured) || errors.Is(err, gemini.ErrEmptyResponse) {
				return fail(err)
			}
			if ferr := fail(err); ferr != nil {
				return ferr
			}
			return fmt.Errorf("analyze item %d: %w", item.ID, err)
		}

		if err := items.SetAnalysis(item.ID, analysis, ""); err != nil {
			return fmt.Errorf("store analysis: %w", err)
		}
		logger.Info("analyzed vision item", "item_id", item.ID, "tags", len(analysis.Tags))
		return nil
	}
}

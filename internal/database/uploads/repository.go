// Package uploads provides database operations for uploaded file metadata.
// The file bytes themselves live in a storage.FileStore.
package uploads

import (
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/weddingplanner/internal/entities"
)

// Repository handles upload metadata database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new uploads repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) CreateUpload(upload *entities.Upload) error {
	return r.db.Create(upload).Error
}

func (r *Repository) GetUpload(userID, id uint) (*entities.Upload, error) {
	var upload entities.Upload
	if err := r.db.Where("id = ? AND user_id = ?", id, userID).First(&upload).Error; err != nil {
		return nil, err
	}
	return &upload, nil
}

// GetUploadByID loads an upload regardless of owner. Used by background tasks.
func (r *Repository) GetUploadByID(id uint) (*entities.Upload, error) {
	var upload entities.Upload
	if err := r.db.First(&upload, id).Error; err != nil {
		return nil, err
	}
	return &upload, nil
}

// ListUploads returns the user's uploads, newest first. An empty purpose lists all.
func (r *Repository) ListUploads(userID uint, purpose entities.UploadPurpose) ([]entities.Upload, error) {
	var uploads []entities.Upload
	q := r.db.Where("user_id = ?", userID)
	if purpose != "" {
		q = q.Where("purpose = ?", purpose)
	}
	err := q.Order("created_at DESC, id DESC").Find(&uploads).Error
	return uploads, err
}

func (r *Repository) DeleteUpload(userID, id uint) error {
	result := r.db.Where("id = ? AND user_id = ?", id, userID).Delete(&entities.Upload{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *Repository) SetThumbnail(id uint, key, url string) error {
	return r.db.Model(&entities.Upload{}).Where("id = ?", id).Updates(map[string]any{
		"thumbnail_key": key,
		"thumbnail_url": url,
	}).Error
}

// ListOrphans returns vision and cover uploads older than olderThan that no
// vision board item or blog post references.
func (r *Repository) ListOrphans(olderThan time.Time) ([]entities.Upload, error) {
	var uploads []entities.Upload
	err := r.db.
		Where("created_at < ?", olderThan).
		Where("purpose IN ?", []entities.UploadPurpose{entities.UploadPurposeVision, entities.UploadPurposeCover}).
		Where("id NOT IN (?)", r.db.Model(&entities.VisionBoardItem{}).Select("upload_id").Where("upload_id IS NOT NULL")).
		Where("url NOT IN (?)", r.db.Model(&entities.BlogPost{}).Select("cover_image_url")).
		Find(&uploads).Error
	return uploads, err
}

func (r *Repository) TotalSize() (int64, error) {
	var total int64
	err := r.db.Model(&entities.Upload{}).Select("COALESCE(SUM(size), 0)").Scan(&total).Error
	return total, err
}

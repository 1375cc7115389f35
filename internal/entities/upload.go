package entities

import "time"

type UploadPurpose string

const (
	UploadPurposeReceipt UploadPurpose = "receipt"
	UploadPurposePhoto   UploadPurpose = "photo"
	UploadPurposeVision  UploadPurpose = "vision"
	UploadPurposeCover   UploadPurpose = "cover"
)

func (p UploadPurpose) Valid() bool {
	switch p {
	case UploadPurposeReceipt, UploadPurposePhoto, UploadPurposeVision, UploadPurposeCover:
		return true
	}
	return false
}

type Upload struct {
	ID           uint          `gorm:"primaryKey" json:"id"`
	UserID       uint          `gorm:"index" json:"user_id"`
	StorageKey   string        `gorm:"uniqueIndex;size:255" json:"-"`
	Purpose      UploadPurpose `gorm:"size:20;index" json:"purpose"`
	ContentType  string        `gorm:"size:100" json:"content_type"`
	Size         int64         `json:"size"`
	URL          string        `gorm:"size:2048" json:"url"`
	ThumbnailKey string        `gorm:"size:255" json:"-"`
	ThumbnailURL string        `gorm:"size:2048" json:"thumbnail_url,omitempty"`
	OriginalName string        `gorm:"size:255" json:"original_name,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
}

func (Upload) TableName() string {
	return "uploads"
}

func (u *Upload) IsImage() bool {
	switch u.ContentType {
	case "image/jpeg", "image/png", "image/gif", "image/webp":
		return true
	}
	return false
}

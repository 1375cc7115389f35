package entities

import "time"

type VisionBoardPreference struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"uniqueIndex" json:"user_id"`
	Style     string    `gorm:"size:50" json:"style"`  // e.g. "boho", "classic"
	Season    string    `gorm:"size:20" json:"season"` // spring, summer, autumn, winter
	Colors    []string  `gorm:"serializer:json;type:text" json:"colors"`
	Themes    []string  `gorm:"serializer:json;type:text" json:"themes"`
	Keywords  string    `gorm:"size:500" json:"keywords,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (VisionBoardPreference) TableName() string {
	return "vision_board_preferences"
}

type VisionItemSource string

const (
	VisionSourceUpload VisionItemSource = "upload"
	VisionSourceSearch VisionItemSource = "search"
	VisionSourceLink   VisionItemSource = "link"
)

type AnalysisStatus string

const (
	AnalysisNone     AnalysisStatus = "none"
	AnalysisPending  AnalysisStatus = "pending"
	AnalysisComplete AnalysisStatus = "complete"
	AnalysisFailed   AnalysisStatus = "failed"
)

// VisionAnalysis is what the AI analyzer returns for an image.
type VisionAnalysis struct {
	Description string   `json:"description"`
	Style       string   `json:"style"`
	Colors      []string `json:"colors"`
	Tags        []string `json:"tags"`
	Suggestions []string `json:"suggestions"`
}

type VisionBoardItem struct {
	ID             uint             `gorm:"primaryKey" json:"id"`
	UserID         uint             `gorm:"index" json:"user_id"`
	UploadID       *uint            `gorm:"index" json:"upload_id,omitempty"`
	ImageURL       string           `gorm:"size:2048" json:"image_url"`
	ThumbnailURL   string           `gorm:"size:2048" json:"thumbnail_url,omitempty"`
	Source         VisionItemSource `gorm:"size:20" json:"source"`
	SourceURL      string           `gorm:"size:2048" json:"source_url,omitempty"`
	Caption        string           `gorm:"size:500" json:"caption,omitempty"`
	Category       string           `gorm:"size:50" json:"category,omitempty"`
	Position       int              `gorm:"index" json:"position"`
	Analysis       *VisionAnalysis  `gorm:"serializer:json;type:text" json:"analysis,omitempty"`
	AnalysisStatus AnalysisStatus   `gorm:"size:20;default:none" json:"analysis_status"`
	AnalysisError  string           `gorm:"size:500" json:"analysis_error,omitempty"`
	AnalyzedAt     *time.Time       `json:"analyzed_at,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

func (VisionBoardItem) TableName() string {
	return "vision_board_items"
}

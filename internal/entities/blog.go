package entities

import "time"

type PostStatus string

const (
	PostStatusDraft     PostStatus = "draft"
	PostStatusPublished PostStatus = "published"
	PostStatusArchived  PostStatus = "archived"
)

func (s PostStatus) Valid() bool {
	return s == PostStatusDraft || s == PostStatusPublished || s == PostStatusArchived
}

type BlogPost struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	AuthorID       uint       `gorm:"index" json:"author_id"`
	Title          string     `gorm:"size:200" json:"title"`
	Slug           string     `gorm:"uniqueIndex;size:100" json:"slug"`
	Excerpt        string     `gorm:"size:500" json:"excerpt"`
	Content        string     `gorm:"type:text" json:"content"` // Markdown source
	CoverImageURL  string     `gorm:"size:2048" json:"cover_image_url,omitempty"`
	Category       string     `gorm:"size:50;index" json:"category,omitempty"`
	Status         PostStatus `gorm:"size:20;default:draft;index" json:"status"`
	PublishedAt    *time.Time `gorm:"index" json:"published_at,omitempty"`
	ViewCount      int        `json:"view_count"`
	ReadingMinutes int        `json:"reading_minutes"`
	Tags           []BlogTag  `gorm:"many2many:blog_post_tags;" json:"tags"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func (BlogPost) TableName() string {
	return "blog_posts"
}

func (p *BlogPost) TagNames() []string {
	names := make([]string, len(p.Tags))
	for i, t := range p.Tags {
		names[i] = t.Name
	}
	return names
}

type BlogTag struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"uniqueIndex;size:50" json:"name"`
	CreatedAt time.Time `json:"-"`
}

func (BlogTag) TableName() string {
	return "blog_tags"
}

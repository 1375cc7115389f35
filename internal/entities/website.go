package entities

import "time"

type SectionType string

const (
	SectionHero     SectionType = "hero"
	SectionStory    SectionType = "story"
	SectionSchedule SectionType = "schedule"
	SectionTravel   SectionType = "travel"
	SectionRegistry SectionType = "registry"
	SectionGallery  SectionType = "gallery"
	SectionFAQ      SectionType = "faq"
	SectionRSVP     SectionType = "rsvp"
)

// WebsiteSection is one block of a wedding website, stored as JSON on the site row.
type WebsiteSection struct {
	Type     SectionType `json:"type"`
	Title    string      `json:"title"`
	Body     string      `json:"body"` // Markdown
	Visible  bool        `json:"visible"`
	Position int         `json:"position"`
}

type WeddingWebsite struct {
	ID           uint             `gorm:"primaryKey" json:"id"`
	UserID       uint             `gorm:"uniqueIndex" json:"user_id"`
	Slug         string           `gorm:"size:80;index" json:"slug"`
	Title        string           `gorm:"size:200" json:"title"`
	Theme        string           `gorm:"size:50" json:"theme"`
	Headline     string           `gorm:"size:200" json:"headline,omitempty"`
	Story        string           `gorm:"type:text" json:"story,omitempty"`
	EventDate    *time.Time       `json:"event_date,omitempty"`
	VenueName    string           `gorm:"size:200" json:"venue_name,omitempty"`
	VenueAddress string           `gorm:"size:500" json:"venue_address,omitempty"`
	Sections     []WebsiteSection `gorm:"serializer:json;type:text" json:"sections"`
	RSVPEnabled  bool             `gorm:"column:rsvp_enabled" json:"rsvp_enabled"`
	RSVPDeadline *time.Time       `gorm:"column:rsvp_deadline" json:"rsvp_deadline,omitempty"`
	IsPublished  bool             `gorm:"index" json:"is_published"`
	PublishedAt  *time.Time       `json:"published_at,omitempty"`
	ViewCount    int              `json:"view_count"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

func (WeddingWebsite) TableName() string {
	return "wedding_websites"
}

// RSVPResponse is a raw submission from the public RSVP form.
type RSVPResponse struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	WebsiteID      uint      `gorm:"index" json:"website_id"`
	GuestID        uint      `gorm:"index" json:"guest_id"`
	Name           string    `gorm:"size:200" json:"name"`
	Email          string    `gorm:"size:254" json:"email,omitempty"`
	Attending      bool      `json:"attending"`
	PartySize      int       `json:"party_size"`
	MealPreference string    `gorm:"size:50" json:"meal_preference,omitempty"`
	Message        string    `gorm:"size:1000" json:"message,omitempty"`
	CreatedAt      time.Time `gorm:"index" json:"created_at"`
}

func (RSVPResponse) TableName() string {
	return "rsvp_responses"
}

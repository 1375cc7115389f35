package entities

import (
	"strings"
	"time"
)

// WeddingProfile holds the couple's headline details. One per user.
type WeddingProfile struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	UserID        uint       `gorm:"uniqueIndex" json:"user_id"`
	PartnerOne    string     `gorm:"size:100" json:"partner_one"`
	PartnerTwo    string     `gorm:"size:100" json:"partner_two"`
	WeddingDate   *time.Time `json:"wedding_date,omitempty"`
	VenueName     string     `gorm:"size:200" json:"venue_name"`
	Location      string     `gorm:"size:200" json:"location"`
	GuestEstimate int        `json:"guest_estimate"`
	Style         string     `gorm:"size:50" json:"style"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func (WeddingProfile) TableName() string {
	return "wedding_profiles"
}

type Budget struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"uniqueIndex" json:"user_id"`
	TotalAmount float64   `json:"total_amount"`
	Currency    string    `gorm:"size:3;default:USD" json:"currency"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Budget) TableName() string {
	return "budgets"
}

type Expense struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	UserID        uint       `gorm:"index" json:"user_id"`
	Category      string     `gorm:"size:50;index" json:"category"`
	Vendor        string     `gorm:"size:100" json:"vendor"`
	Description   string     `gorm:"size:500" json:"description"`
	EstimatedCost float64    `json:"estimated_cost"`
	ActualCost    float64    `json:"actual_cost"`
	PaidAmount    float64    `json:"paid_amount"`
	DueDate       *time.Time `json:"due_date,omitempty"`
	ReceiptURL    string     `gorm:"size:2048" json:"receipt_url,omitempty"`
	Notes         string     `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func (Expense) TableName() string {
	return "expenses"
}

type RSVPStatus string

const (
	RSVPPending   RSVPStatus = "pending"
	RSVPAttending RSVPStatus = "attending"
	RSVPDeclined  RSVPStatus = "declined"
	RSVPMaybe     RSVPStatus = "maybe"
)

func (s RSVPStatus) Valid() bool {
	switch s {
	case RSVPPending, RSVPAttending, RSVPDeclined, RSVPMaybe:
		return true
	}
	return false
}

type Guest struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	UserID           uint       `gorm:"index" json:"user_id"`
	FirstName        string     `gorm:"size:100" json:"first_name"`
	LastName         string     `gorm:"size:100" json:"last_name"`
	Email            string     `gorm:"size:254;index" json:"email,omitempty"`
	Phone            string     `gorm:"size:32" json:"phone,omitempty"`
	Group            string     `gorm:"column:guest_group;size:50;index" json:"group,omitempty"` // e.g. "family", "work"
	Side             string     `gorm:"size:20" json:"side,omitempty"`                           // e.g. "bride", "groom", "both"
	RSVPStatus       RSVPStatus `gorm:"column:rsvp_status;size:20;default:pending;index" json:"rsvp_status"`
	MealPreference   string     `gorm:"size:50" json:"meal_preference,omitempty"`
	DietaryNotes     string     `gorm:"size:500" json:"dietary_notes,omitempty"`
	PlusOneAllowed   bool       `json:"plus_one_allowed"`
	PlusOneName      string     `gorm:"size:100" json:"plus_one_name,omitempty"`
	PlusOneAttending bool       `json:"plus_one_attending"`
	TableID          *uint      `gorm:"index" json:"table_id,omitempty"`
	Notes            string     `gorm:"type:text" json:"notes,omitempty"`
	RespondedAt      *time.Time `json:"responded_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

func (Guest) TableName() string {
	return "guests"
}

func (g Guest) FullName() string {
	return strings.TrimSpace(g.FirstName + " " + g.LastName)
}

type SeatingTable struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index" json:"user_id"`
	Name      string    `gorm:"size:100" json:"name"`
	Capacity  int       `json:"capacity"`
	Shape     string    `gorm:"size:20" json:"shape,omitempty"` // round, rectangle, square
	Notes     string    `gorm:"size:500" json:"notes,omitempty"`
	Guests    []Guest   `gorm:"foreignKey:TableID" json:"guests"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (SeatingTable) TableName() string {
	return "seating_tables"
}

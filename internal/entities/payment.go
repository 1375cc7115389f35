package entities

import "time"

type CheckoutStatus string

const (
	CheckoutOpen     CheckoutStatus = "open"
	CheckoutComplete CheckoutStatus = "complete"
	CheckoutExpired  CheckoutStatus = "expired"
)

// CheckoutSession mirrors a session created by the external checkout function.
type CheckoutSession struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	UserID      uint           `gorm:"index" json:"user_id"`
	SessionID   string         `gorm:"uniqueIndex;size:255" json:"session_id"`
	Plan        string         `gorm:"size:50" json:"plan"`
	AmountTotal int64          `json:"amount_total"` // minor units
	Currency    string         `gorm:"size:3" json:"currency"`
	Status      CheckoutStatus `gorm:"size:20;default:open;index" json:"status"`
	CheckoutURL string         `gorm:"size:2048" json:"checkout_url"`
	CompletedAt *time.Time     `json:"completed_at,omitempty"`
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

func (CheckoutSession) TableName() string {
	return "checkout_sessions"
}

package entities

import "time"

type UserRole string

const (
	UserRoleAdmin UserRole = "admin"
	UserRoleUser  UserRole = "user"
)

func (r UserRole) Valid() bool {
	return r == UserRoleAdmin || r == UserRoleUser
}

type SubscriptionTier string

const (
	SubscriptionFree    SubscriptionTier = "free"
	SubscriptionPremium SubscriptionTier = "premium"
)

func (t SubscriptionTier) Valid() bool {
	return t == SubscriptionFree || t == SubscriptionPremium
}

type User struct {
	ID                    uint             `gorm:"primaryKey" json:"id"`
	Username              string           `gorm:"uniqueIndex;size:64" json:"username"`
	Email                 string           `gorm:"uniqueIndex;size:254" json:"email"`
	PasswordHash          string           `gorm:"size:255" json:"-"`
	Role                  UserRole         `gorm:"size:20;default:user;index" json:"role"`
	SubscriptionTier      SubscriptionTier `gorm:"size:20;default:free;index" json:"subscription_tier"`
	SubscriptionExpiresAt *time.Time       `json:"subscription_expires_at,omitempty"`
	FailedLoginCount      int              `json:"-"`
	LockedUntil           *time.Time       `json:"-"`
	LastLoginAt           *time.Time       `json:"last_login_at,omitempty"`
	CreatedAt             time.Time        `json:"created_at"`
	UpdatedAt             time.Time        `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) IsAdmin() bool {
	return u.Role == UserRoleAdmin
}

// HasPremium reports whether the premium subscription is active at now.
// A premium tier without an expiry never lapses.
func (u *User) HasPremium(now time.Time) bool {
	if u.SubscriptionTier != SubscriptionPremium {
		return false
	}
	return u.SubscriptionExpiresAt == nil || now.Before(*u.SubscriptionExpiresAt)
}

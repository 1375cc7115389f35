// Package payments provides database operations for checkout sessions created
// through the external checkout function.
package payments

import (
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/weddingplanner/internal/entities"
)

// Repository handles checkout session database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new payments repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) CreateSession(session *entities.CheckoutSession) error {
	return r.db.Create(session).Error
}

// GetSession returns the user's session with the given external id.
func (r *Repository) GetSession(userID uint, sessionID string) (*entities.CheckoutSession, error) {
	var session entities.CheckoutSession
	err := r.db.Where("session_id = ? AND user_id = ?", sessionID, userID).First(&session).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// CompleteCheckout transitions an open session to complete and moves its
// user to tier in one transaction. extend returns the new expiry from the
// user's current subscription. It reports whether this call performed the
// transition; on error neither row changes.
func (r *Repository) CompleteCheckout(id uint, at time.Time, tier entities.SubscriptionTier, extend func(user *entities.User) time.Time) (bool, error) {
	transitioned := false
	err := r.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&entities.CheckoutSession{}).
			Where("id = ? AND status = ?", id, entities.CheckoutOpen).
			Updates(map[string]any{"status": entities.CheckoutComplete, "completed_at": at})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return nil
		}

		var session entities.CheckoutSession
		if err := tx.First(&session, id).Error; err != nil {
			return err
		}
		var user entities.User
		if err := tx.First(&user, session.UserID).Error; err != nil {
			return err
		}
		expiresAt := extend(&user)
		err := tx.Model(&entities.User{}).
			Where("id = ?", user.ID).
			Updates(map[string]any{"subscription_tier": tier, "subscription_expires_at": expiresAt}).Error
		if err != nil {
			return err
		}
		transitioned = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return transitioned, nil
}

// ExpireOpenBefore marks open sessions created before cutoff as expired.
func (r *Repository) ExpireOpenBefore(cutoff time.Time) (int64, error) {
	result := r.db.Model(&entities.CheckoutSession{}).
		Where("status = ? AND created_at < ?", entities.CheckoutOpen, cutoff).
		Update("status", entities.CheckoutExpired)
	return result.RowsAffected, result.Error
}

// RevenueByCurrency sums completed sessions, in minor units.
func (r *Repository) RevenueByCurrency() (map[string]int64, error) {
	var rows []struct {
		Currency string
		Total    int64
	}
	err := r.db.Model(&entities.CheckoutSession{}).
		Select("currency, SUM(amount_total) AS total").
		Where("status = ?", entities.CheckoutComplete).
		Group("currency").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	revenue := make(map[string]int64, len(rows))
	for _, row := range rows {
		revenue[row.Currency] = row.Total
	}
	return revenue, nil
}

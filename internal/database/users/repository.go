// Package users provides database operations for user accounts, roles and
// subscriptions.
//
// # Usage
//
//	repo := users.NewRepository(db)
//	user, err := repo.GetUserByLogin("anna@example.com")
package users

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/weddingplanner/internal/entities"
)

// ownedModels are removed together with their owner.
var ownedModels = []any{
	&entities.WeddingProfile{},
	&entities.Budget{},
	&entities.Expense{},
	&entities.Guest{},
	&entities.SeatingTable{},
	&entities.VisionBoardPreference{},
	&entities.VisionBoardItem{},
	&entities.Upload{},
	&entities.CheckoutSession{},
}

// Repository handles all user database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new users repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) CreateUser(user *entities.User) error {
	return r.db.Create(user).Error
}

func (r *Repository) GetUserByID(id uint) (*entities.User, error) {
	var user entities.User
	if err := r.db.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *Repository) GetUserByUsername(username string) (*entities.User, error) {
	var user entities.User
	if err := r.db.Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *Repository) GetUserByEmail(email string) (*entities.User, error) {
	var user entities.User
	if err := r.db.Where("LOWER(email) = ?", strings.ToLower(email)).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByLogin matches either the username or the email address.
func (r *Repository) GetUserByLogin(login string) (*entities.User, error) {
	var user entities.User
	err := r.db.Where("username = ? OR LOWER(email) = ?", login, strings.ToLower(login)).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// ExistsByUsernameOrEmail reports whether either identifier is already taken.
func (r *Repository) ExistsByUsernameOrEmail(username, email string) (bool, error) {
	var count int64
	err := r.db.Model(&entities.User{}).
		Where("username = ? OR LOWER(email) = ?", username, strings.ToLower(email)).
		Count(&count).Error
	return count > 0, err
}

// ListUsers returns users matching query (username or email substring), newest first.
func (r *Repository) ListUsers(query string, limit, offset int) ([]entities.User, int64, error) {
	var users []entities.User
	var total int64

	q := r.db.Model(&entities.User{})
	if query = strings.TrimSpace(query); query != "" {
		like := "%" + strings.ToLower(query) + "%"
		q = q.Where("LOWER(username) LIKE ? OR LOWER(email) LIKE ?", like, like)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	err := q.Order("created_at DESC, id DESC").Limit(limit).Offset(offset).Find(&users).Error
	return users, total, err
}

func (r *Repository) UpdateRole(id uint, role entities.UserRole) error {
	return r.updateColumns(id, map[string]any{"role": role})
}

func (r *Repository) UpdateSubscription(id uint, tier entities.SubscriptionTier, expiresAt *time.Time) error {
	return r.updateColumns(id, map[string]any{
		"subscription_tier":       tier,
		"subscription_expires_at": expiresAt,
	})
}

func (r *Repository) UpdatePasswordHash(id uint, hash string) error {
	return r.updateColumns(id, map[string]any{"password_hash": hash})
}

// RecordFailedLogin stores the failed attempt counter and optional lockout.
func (r *Repository) RecordFailedLogin(id uint, failedCount int, lockedUntil *time.Time) error {
	return r.updateColumns(id, map[string]any{
		"failed_login_count": failedCount,
		"locked_until":       lockedUntil,
	})
}

// RecordSuccessfulLogin resets the failure counter and stamps the login time.
func (r *Repository) RecordSuccessfulLogin(id uint, at time.Time) error {
	return r.updateColumns(id, map[string]any{
		"last_login_at":      at,
		"failed_login_count": 0,
		"locked_until":       nil,
	})
}

func (r *Repository) CountUsers() (int64, error) {
	var count int64
	err := r.db.Model(&entities.User{}).Count(&count).Error
	return count, err
}

func (r *Repository) CountByRole(role entities.UserRole) (int64, error) {
	var count int64
	err := r.db.Model(&entities.User{}).Where("role = ?", role).Count(&count).Error
	return count, err
}

// CountActivePremium counts premium users whose subscription has not expired at now.
func (r *Repository) CountActivePremium(now time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&entities.User{}).
		Where("subscription_tier = ?", entities.SubscriptionPremium).
		Where("subscription_expires_at IS NULL OR subscription_expires_at > ?", now).
		Count(&count).Error
	return count, err
}

// DeleteUser removes the user and every row they own.
func (r *Repository) DeleteUser(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(&entities.User{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		var websiteIDs []uint
		if err := tx.Model(&entities.WeddingWebsite{}).Where("user_id = ?", id).Pluck("id", &websiteIDs).Error; err != nil {
			return err
		}
		if len(websiteIDs) > 0 {
			if err := tx.Where("website_id IN ?", websiteIDs).Delete(&entities.RSVPResponse{}).Error; err != nil {
				return fmt.Errorf("failed to delete RSVP responses: %w", err)
			}
		}
		if err := tx.Where("user_id = ?", id).Delete(&entities.WeddingWebsite{}).Error; err != nil {
			return fmt.Errorf("failed to delete website: %w", err)
		}

		for _, model := range ownedModels {
			if err := tx.Where("user_id = ?", id).Delete(model).Error; err != nil {
				return fmt.Errorf("failed to delete %T: %w", model, err)
			}
		}
		return nil
	})
}

func (r *Repository) updateColumns(id uint, updates map[string]any) error {
	result := r.db.Model(&entities.User{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

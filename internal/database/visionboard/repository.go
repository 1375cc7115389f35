// Package visionboard provides database operations for vision board
// preferences and items.
package visionboard

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/weddingplanner/internal/database"
	"github.com/mrlokans/weddingplanner/internal/entities"
)

// Repository handles vision board database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new vision board repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetPreferences returns the stored preferences or empty preferences for userID.
func (r *Repository) GetPreferences(userID uint) (*entities.VisionBoardPreference, error) {
	var pref entities.VisionBoardPreference
	err := r.db.Where("user_id = ?", userID).First(&pref).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &entities.VisionBoardPreference{UserID: userID, Colors: []string{}, Themes: []string{}}, nil
	}
	if err != nil {
		return nil, err
	}
	return &pref, nil
}

func (r *Repository) SavePreferences(pref *entities.VisionBoardPreference) error {
	var existing entities.VisionBoardPreference
	err := r.db.Where("user_id = ?", pref.UserID).First(&existing).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		pref.ID = 0
		return r.db.Create(pref).Error
	case err != nil:
		return err
	}
	pref.ID = existing.ID
	pref.CreatedAt = existing.CreatedAt
	return database.UpdateOwned(r.db, pref, pref.UserID)
}

// ListItems returns the board in display order.
func (r *Repository) ListItems(userID uint) ([]entities.VisionBoardItem, error) {
	var items []entities.VisionBoardItem
	err := r.db.Where("user_id = ?", userID).Order("position ASC, id ASC").Find(&items).Error
	return items, err
}

func (r *Repository) GetItem(userID, id uint) (*entities.VisionBoardItem, error) {
	var item entities.VisionBoardItem
	if err := r.db.Where("id = ? AND user_id = ?", id, userID).First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// GetItemByID loads an item regardless of owner. Used by background tasks.
func (r *Repository) GetItemByID(id uint) (*entities.VisionBoardItem, error) {
	var item entities.VisionBoardItem
	if err := r.db.First(&item, id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// CreateItem appends the item at the end of the owner's board.
func (r *Repository) CreateItem(item *entities.VisionBoardItem) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&entities.VisionBoardItem{}).Where("user_id = ?", item.UserID).Count(&count).Error; err != nil {
			return err
		}
		item.Position = int(count)
		if item.AnalysisStatus == "" {
			item.AnalysisStatus = entities.AnalysisNone
		}
		return tx.Create(item).Error
	})
}

func (r *Repository) UpdateItem(item *entities.VisionBoardItem) error {
	return database.UpdateOwned(r.db, item, item.UserID)
}

// DeleteItem removes the item and closes the gap it leaves in the ordering.
func (r *Repository) DeleteItem(userID, id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Where("id = ? AND user_id = ?", id, userID).Delete(&entities.VisionBoardItem{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		var ids []uint
		if err := tx.Model(&entities.VisionBoardItem{}).Where("user_id = ?", userID).
			Order("position ASC, id ASC").Pluck("id", &ids).Error; err != nil {
			return err
		}
		return savePositions(tx, userID, ids)
	})
}

// SavePositions stores the order given by items in one transaction.
// Each item's Position field is written as-is.
func (r *Repository) SavePositions(userID uint, items []entities.VisionBoardItem) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		for _, item := range items {
			result := tx.Model(&entities.VisionBoardItem{}).
				Where("id = ? AND user_id = ?", item.ID, userID).
				UpdateColumn("position", item.Position)
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return gorm.ErrRecordNotFound
			}
		}
		return nil
	})
}

// SetAnalysisPending marks an item as queued for analysis.
func (r *Repository) SetAnalysisPending(userID, id uint) error {
	result := r.db.Model(&entities.VisionBoardItem{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(map[string]any{"analysis_status": entities.AnalysisPending, "analysis_error": ""})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// SetAnalysis stores a completed analysis, or the failure message when analysis is nil.
func (r *Repository) SetAnalysis(id uint, analysis *entities.VisionAnalysis, failure string) error {
	item := entities.VisionBoardItem{ID: id}
	now := time.Now()
	if analysis == nil {
		return r.db.Model(&item).Updates(map[string]any{
			"analysis_status": entities.AnalysisFailed,
			"analysis_error":  failure,
		}).Error
	}
	item.Analysis = analysis
	item.AnalysisStatus = entities.AnalysisComplete
	item.AnalyzedAt = &now
	return r.db.Model(&item).Select("analysis", "analysis_status", "analysis_error", "analyzed_at").Updates(&item).Error
}

func savePositions(tx *gorm.DB, userID uint, ids []uint) error {
	for i, id := range ids {
		if err := tx.Model(&entities.VisionBoardItem{}).
			Where("id = ? AND user_id = ?", id, userID).
			UpdateColumn("position", i).Error; err != nil {
			return err
		}
	}
	return nil
}

// Package settings persists the admin-editable runtime options. Rows only
// exist for keys that were set; a missing row means the built-in default.
package settings

import (
	"errors"
	"strconv"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mrlokans/weddingplanner/internal/entities"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetSetting returns gorm.ErrRecordNotFound for keys that were never set.
func (r *Repository) GetSetting(key string) (*entities.Setting, error) {
	var setting entities.Setting
	if err := r.db.Where("key = ?", key).Take(&setting).Error; err != nil {
		return nil, err
	}
	return &setting, nil
}

// GetBool parses a boolean setting. Unset and unparsable values yield
// fallback without an error.
func (r *Repository) GetBool(key string, fallback bool) (bool, error) {
	setting, err := r.GetSetting(key)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fallback, nil
	case err != nil:
		return fallback, err
	}
	if v, err := strconv.ParseBool(setting.Value); err == nil {
		return v, nil
	}
	return fallback, nil
}

// All returns the stored settings keyed by name.
func (r *Repository) All() (map[string]string, error) {
	var rows []entities.Setting
	if err := r.db.Select("key", "value").Find(&rows).Error; err != nil {
		return nil, err
	}
	values := make(map[string]string, len(rows))
	for _, row := range rows {
		values[row.Key] = row.Value
	}
	return values, nil
}

// SetSetting upserts key. An empty value removes it.
func (r *Repository) SetSetting(key, value string) error {
	return put(r.db, key, value)
}

// SetMany applies every value atomically with SetSetting's rules.
func (r *Repository) SetMany(values map[string]string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		for key, value := range values {
			if err := put(tx, key, value); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *Repository) DeleteSetting(key string) error {
	return r.db.Where("key = ?", key).Delete(&entities.Setting{}).Error
}

func put(db *gorm.DB, key, value string) error {
	if value == "" {
		return db.Where("key = ?", key).Delete(&entities.Setting{}).Error
	}
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entities.Setting{Key: key, Value: value}).Error
}

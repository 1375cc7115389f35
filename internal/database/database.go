package database

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/weddingplanner/internal/entities"
)

type Database struct {
	DB *gorm.DB
}

// Models lists every entity managed by AutoMigrate.
func Models() []any {
	return []any{
		&entities.User{},
		&entities.WeddingProfile{},
		&entities.Budget{},
		&entities.Expense{},
		&entities.SeatingTable{},
		&entities.Guest{},
		&entities.BlogTag{},
		&entities.BlogPost{},
		&entities.WeddingWebsite{},
		&entities.RSVPResponse{},
		&entities.VisionBoardPreference{},
		&entities.VisionBoardItem{},
		&entities.Upload{},
		&entities.CheckoutSession{},
		&entities.AuditEvent{},
		&entities.Setting{},
	}
}

func NewDatabase(dbPath string) (*Database, error) {
	db, err := gorm.Open(sqlite.Open(dsn(dbPath)), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(Models()...); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	slog.Info("Database initialized", "path", dbPath)

	return &Database{DB: db}, nil
}

// dsn enables WAL and a busy timeout so background workers and request
// handlers can share the file.
func dsn(path string) string {
	if path == ":memory:" || strings.Contains(path, "?") {
		return path
	}
	return path + "?_busy_timeout=5000&_journal_mode=WAL"
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (d *Database) Ping(ctx context.Context) error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// UpdateOwned writes every column of model except identity and ownership
// columns, scoped to rows owned by userID. It returns gorm.ErrRecordNotFound
// when no owned row matched.
func UpdateOwned(db *gorm.DB, model any, userID uint) error {
	result := db.Model(model).
		Where("user_id = ?", userID).
		Select("*").
		Omit("id", "user_id", "created_at", clause.Associations).
		Updates(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

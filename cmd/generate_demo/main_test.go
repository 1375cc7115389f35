package main

import (
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/weddingplanner/internal/database"
	"github.com/mrlokans/weddingplanner/internal/database/websites"
	"github.com/mrlokans/weddingplanner/internal/database/wedding"
	"github.com/mrlokans/weddingplanner/internal/entities"
)

func TestGenerate(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "demo", "demo.db")
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, generate(dbPath, now, logger))
	// A second run starts from scratch instead of duplicating rows.
	require.NoError(t, generate(dbPath, now, logger))

	db, err := database.NewDatabase(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	guests, err := wedding.NewRepository(db.DB).ListGuests(0, wedding.GuestFilter{})
	require.NoError(t, err)
	assert.Len(t, guests, len(demoGuests(now)))
	for _, g := range guests {
		if g.RSVPStatus == entities.RSVPAttending {
			assert.NotNil(t, g.TableID, g.FullName())
		} else {
			assert.Nil(t, g.TableID, g.FullName())
		}
	}

	site, err := websites.NewRepository(db.DB).GetBySlug("lizzy-and-darcy")
	require.NoError(t, err)
	assert.True(t, site.IsPublished)
	assert.Equal(t, "garden", site.Theme)

	var posts int64
	require.NoError(t, db.DB.Model(&entities.BlogPost{}).Where("status = ?", entities.PostStatusPublished).Count(&posts).Error)
	assert.Equal(t, int64(len(demoPosts())), posts)
}

package websites

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mrlokans/weddingplanner/internal/database"
	"github.com/mrlokans/weddingplanner/internal/entities"
)

func setupTestDB(t *testing.T) *Repository {
	t.Helper()
	db, err := database.NewDatabase(filepath.Join(t.TempDir(), "websites.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewRepository(db.DB)
}

func TestRepository_SaveAndLoad(t *testing.T) {
	repo := setupTestDB(t)

	site := &entities.WeddingWebsite{
		UserID: 1,
		Slug:   "anna-and-ben",
		Title:  "Anna & Ben",
		Theme:  "classic",
		Sections: []entities.WebsiteSection{
			{Type: entities.SectionHero, Title: "Welcome", Visible: true, Position: 0},
			{Type: entities.SectionStory, Title: "Our story", Body: "We met at a *wedding*.", Visible: true, Position: 1},
		},
	}
	require.NoError(t, repo.Save(site))

	loaded, err := repo.GetBySlug("anna-and-ben")
	require.NoError(t, err)
	require.Len(t, loaded.Sections, 2)
	assert.Equal(t, entities.SectionStory, loaded.Sections[1].Type)
	assert.Equal(t, "We met at a *wedding*.", loaded.Sections[1].Body)

	loaded.Title = "Anna and Ben"
	loaded.Sections = loaded.Sections[:1]
	require.NoError(t, repo.Save(loaded))

	mine, err := repo.GetByUser(1)
	require.NoError(t, err)
	assert.Equal(t, "Anna and Ben", mine.Title)
	assert.Len(t, mine.Sections, 1)

	_, err = repo.GetByUser(2)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	stolen := *mine
	stolen.UserID = 2
	assert.ErrorIs(t, repo.Save(&stolen), gorm.ErrRecordNotFound)
}

func TestRepository_SlugTaken(t *testing.T) {
	repo := setupTestDB(t)
	require.NoError(t, repo.Save(&entities.WeddingWebsite{UserID: 1, Slug: "our-day", Title: "Ours"}))

	taken, err := repo.SlugTaken("our-day", 2)
	require.NoError(t, err)
	assert.True(t, taken)

	taken, err = repo.SlugTaken("our-day", 1)
	require.NoError(t, err)
	assert.False(t, taken, "own slug is not taken")

	taken, err = repo.SlugTaken("free-slug", 2)
	require.NoError(t, err)
	assert.False(t, taken)
}

func TestRepository_SetPublished(t *testing.T) {
	repo := setupTestDB(t)
	require.NoError(t, repo.Save(&entities.WeddingWebsite{UserID: 1, Slug: "our-day", Title: "Ours"}))

	first := time.Now().Add(-time.Hour).Truncate(time.Second)
	site, err := repo.SetPublished(1, true, first)
	require.NoError(t, err)
	assert.True(t, site.IsPublished)

	_, err = repo.SetPublished(1, false, time.Now())
	require.NoError(t, err)
	site, err = repo.SetPublished(1, true, time.Now())
	require.NoError(t, err)
	require.NotNil(t, site.PublishedAt)
	assert.True(t, site.PublishedAt.Equal(first), "first publication date is kept")

	count, err := repo.CountPublished()
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	_, err = repo.SetPublished(9, true, time.Now())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepository_RSVPs(t *testing.T) {
	repo := setupTestDB(t)
	site := &entities.WeddingWebsite{UserID: 1, Slug: "our-day", Title: "Ours"}
	require.NoError(t, repo.Save(site))
	other := &entities.WeddingWebsite{UserID: 2, Slug: "their-day", Title: "Theirs"}
	require.NoError(t, repo.Save(other))

	require.NoError(t, repo.CreateRSVP(&entities.RSVPResponse{WebsiteID: site.ID, Name: "Carla", Attending: true, PartySize: 2}))
	require.NoError(t, repo.CreateRSVP(&entities.RSVPResponse{WebsiteID: site.ID, Name: "Dan"}))
	require.NoError(t, repo.CreateRSVP(&entities.RSVPResponse{WebsiteID: other.ID, Name: "Eve"}))

	mine, total, err := repo.ListRSVPs(site.ID, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, mine, 2)

	all, total, err := repo.ListAllRSVPs(10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, all, 3)
	assert.Equal(t, "Eve", all[0].Name)
	assert.Equal(t, "their-day", all[0].WebsiteSlug)
	assert.Equal(t, "Theirs", all[0].WebsiteTitle)

	require.NoError(t, repo.IncrementViews(site.ID))
	loaded, err := repo.GetByUser(1)
	require.NoError(t, err)
	assert.Equal(t, 1, loaded.ViewCount)
}

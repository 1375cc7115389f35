package settings

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mrlokans/weddingplanner/internal/database"
	"github.com/mrlokans/weddingplanner/internal/entities"
)

func setupTestRepo(t *testing.T) *Repository {
	t.Helper()
	db, err := database.NewDatabase(filepath.Join(t.TempDir(), "settings.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewRepository(db.DB)
}

func TestRepository_SetAndGet(t *testing.T) {
	repo := setupTestRepo(t)

	require.NoError(t, repo.SetSetting(entities.SettingKeyMaintenanceBanner, "Back soon"))
	require.NoError(t, repo.SetSetting(entities.SettingKeyMaintenanceBanner, "Back at noon"))

	setting, err := repo.GetSetting(entities.SettingKeyMaintenanceBanner)
	require.NoError(t, err)
	assert.Equal(t, "Back at noon", setting.Value)

	_, err = repo.GetSetting("missing")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	require.NoError(t, repo.DeleteSetting(entities.SettingKeyMaintenanceBanner))
	_, err = repo.GetSetting(entities.SettingKeyMaintenanceBanner)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepository_GetBool(t *testing.T) {
	repo := setupTestRepo(t)

	v, err := repo.GetBool(entities.SettingKeySignupEnabled, true)
	require.NoError(t, err)
	assert.True(t, v, "fallback when unset")

	require.NoError(t, repo.SetSetting(entities.SettingKeySignupEnabled, "false"))
	v, err = repo.GetBool(entities.SettingKeySignupEnabled, true)
	require.NoError(t, err)
	assert.False(t, v)

	require.NoError(t, repo.SetSetting(entities.SettingKeySignupEnabled, "maybe"))
	v, err = repo.GetBool(entities.SettingKeySignupEnabled, true)
	require.NoError(t, err)
	assert.True(t, v, "fallback when unparsable")
}

func TestRepository_SetManyAndAll(t *testing.T) {
	repo := setupTestRepo(t)

	require.NoError(t, repo.SetMany(map[string]string{
		entities.SettingKeySignupEnabled:  "true",
		entities.SettingKeyFeaturedPostID: "12",
	}))

	all, err := repo.All()
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"signup_enabled": "true", "featured_post_id": "12"}, all)
}

func TestRepository_EmptyValueRemovesKey(t *testing.T) {
	repo := setupTestRepo(t)
	require.NoError(t, repo.SetSetting(entities.SettingKeyMaintenanceBanner, "Back soon"))

	require.NoError(t, repo.SetMany(map[string]string{
		entities.SettingKeyMaintenanceBanner: "",
		entities.SettingKeySignupEnabled:     "false",
	}))

	all, err := repo.All()
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"signup_enabled": "false"}, all)
}

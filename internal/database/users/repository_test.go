package users

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

func setupTestDB(t *testing.T) (*Repository, *gorm.DB) {
	t.Helper()
	db, err := database.NewDatabase(filepath.Join(t.TempDir(), "users.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewRepository(db.DB), db.DB
}

func createUser(t *testing.T, repo *Repository, username, email string) *entities.User {
	t.Helper()
	user := &entities.User{Username: username, Email: email, PasswordHash: "hash"}
	require.NoError(t, repo.CreateUser(user))
	return user
}

func TestRepository_CreateUserDefaults(t *testing.T) {
	repo, _ := setupTestDB(t)

	user := createUser(t, repo, "anna", "anna@example.com")

	stored, err := repo.GetUserByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.UserRoleUser, stored.Role)
	assert.Equal(t, entities.SubscriptionFree, stored.SubscriptionTier)
}

func TestRepository_Lookups(t *testing.T) {
	repo, _ := setupTestDB(t)
	user := createUser(t, repo, "anna", "Anna@Example.com")

	byName, err := repo.GetUserByUsername("anna")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byName.ID)

	byEmail, err := repo.GetUserByEmail("anna@example.COM")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)

	byLogin, err := repo.GetUserByLogin("anna@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byLogin.ID)

	_, err = repo.GetUserByLogin("ben")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	exists, err := repo.ExistsByUsernameOrEmail("someone", "ANNA@example.com")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsByUsernameOrEmail("ben", "ben@example.com")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestRepository_ListUsers(t *testing.T) {
	repo, _ := setupTestDB(t)
	createUser(t, repo, "anna", "anna@example.com")
	createUser(t, repo, "ben", "ben@example.com")
	createUser(t, repo, "carla", "carla@wedding.org")

	all, total, err := repo.ListUsers("", 2, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, all, 2)

	matched, total, err := repo.ListUsers("EXAMPLE", 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, matched, 2)
}

func TestRepository_RoleAndSubscription(t *testing.T) {
	repo, _ := setupTestDB(t)
	user := createUser(t, repo, "anna", "anna@example.com")
	now := time.Now()

	require.NoError(t, repo.UpdateRole(user.ID, entities.UserRoleAdmin))
	admins, err := repo.CountByRole(entities.UserRoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, int64(1), admins)

	expires := now.Add(24 * time.Hour)
	require.NoError(t, repo.UpdateSubscription(user.ID, entities.SubscriptionPremium, &expires))

	stored, err := repo.GetUserByID(user.ID)
	require.NoError(t, err)
	assert.True(t, stored.HasPremium(now))

	premium, err := repo.CountActivePremium(now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), premium)

	premium, err = repo.CountActivePremium(now.Add(48 * time.Hour))
	require.NoError(t, err)
	assert.Zero(t, premium)

	assert.ErrorIs(t, repo.UpdateRole(999, entities.UserRoleAdmin), gorm.ErrRecordNotFound)
}

func TestRepository_LoginBookkeeping(t *testing.T) {
	repo, _ := setupTestDB(t)
	user := createUser(t, repo, "anna", "anna@example.com")

	locked := time.Now().Add(time.Hour)
	require.NoError(t, repo.RecordFailedLogin(user.ID, 5, &locked))

	stored, err := repo.GetUserByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, stored.FailedLoginCount)
	require.NotNil(t, stored.LockedUntil)

	require.NoError(t, repo.RecordSuccessfulLogin(user.ID, time.Now()))
	stored, err = repo.GetUserByID(user.ID)
	require.NoError(t, err)
	assert.Zero(t, stored.FailedLoginCount)
	assert.Nil(t, stored.LockedUntil)
	assert.NotNil(t, stored.LastLoginAt)
}

func TestRepository_DeleteUserRemovesOwnedRows(t *testing.T) {
	repo, db := setupTestDB(t)
	anna := createUser(t, repo, "anna", "anna@example.com")
	ben := createUser(t, repo, "ben", "ben@example.com")

	site := &entities.WeddingWebsite{UserID: anna.ID, Slug: "anna-and-ben", Title: "Anna & Ben"}
	require.NoError(t, db.Create(site).Error)
	require.NoError(t, db.Create(&entities.RSVPResponse{WebsiteID: site.ID, Name: "Guest"}).Error)
	require.NoError(t, db.Create(&entities.Guest{UserID: anna.ID, FirstName: "Aunt"}).Error)
	require.NoError(t, db.Create(&entities.Guest{UserID: ben.ID, FirstName: "Uncle"}).Error)
	require.NoError(t, db.Create(&entities.Expense{UserID: anna.ID, Category: "venue"}).Error)

	require.NoError(t, repo.DeleteUser(anna.ID))

	_, err := repo.GetUserByID(anna.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	var count int64
	db.Model(&entities.Guest{}).Count(&count)
	assert.Equal(t, int64(1), count, "only ben's guest remains")
	db.Model(&entities.Expense{}).Count(&count)
	assert.Zero(t, count)
	db.Model(&entities.RSVPResponse{}).Count(&count)
	assert.Zero(t, count)
	db.Model(&entities.WeddingWebsite{}).Count(&count)
	assert.Zero(t, count)

	assert.ErrorIs(t, repo.DeleteUser(anna.ID), gorm.ErrRecordNotFound)

	// The username can be registered again.
	createUser(t, repo, "anna", "anna@example.com")
}

package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/weddingplanner/internal/config"
	"github.com/mrlokans/weddingplanner/internal/entities"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func setupSessionManager(t *testing.T) *SessionManager {
	t.Helper()
	env := setupTestEnv(t, testConfig())

	sqlDB, err := env.db.DB.DB()
	require.NoError(t, err)

	sm, err := NewSessionManager(sqlDB, config.Auth{SessionLifetime: 24 * time.Hour})
	require.NoError(t, err)
	return sm
}

func TestNewSessionManager(t *testing.T) {
	sm := setupSessionManager(t)

	assert.Equal(t, sessionCookieName, sm.Cookie.Name)
	assert.True(t, sm.Cookie.HttpOnly)
	assert.False(t, sm.Cookie.Secure)
	assert.Equal(t, http.SameSiteLaxMode, sm.Cookie.SameSite)
	assert.Equal(t, 24*time.Hour, sm.Lifetime)
	assert.Equal(t, 12*time.Hour, sm.IdleTimeout)
}

func TestSessionManager_CreateAndRetrieveSession(t *testing.T) {
	sm := setupSessionManager(t)
	user := &entities.User{ID: 123, Username: "anna", PasswordHash: "hash-one"}

	handler := sm.LoadAndSave(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Zero(t, sm.GetUserID(r))
		require.NoError(t, sm.CreateSession(r, user))

		data := sm.GetSessionData(r)
		require.NotNil(t, data)
		assert.Equal(t, uint(123), data.UserID)
		assert.False(t, data.LoginAt.IsZero())
		assert.True(t, sm.Valid(r, user))
		w.WriteHeader(http.StatusOK)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.NotEmpty(t, rr.Result().Cookies())
}

func TestSessionManager_PasswordChangeInvalidates(t *testing.T) {
	sm := setupSessionManager(t)
	user := &entities.User{ID: 7, PasswordHash: "old-hash"}

	handler := sm.LoadAndSave(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, sm.CreateSession(r, user))
		changed := *user
		changed.PasswordHash = "new-hash"
		assert.False(t, sm.Valid(r, &changed))
		assert.True(t, sm.Valid(r, user))
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
}

func TestSessionManager_GinAdapterPersistsSession(t *testing.T) {
	sm := setupSessionManager(t)
	user := &entities.User{ID: 9, Username: "ben", PasswordHash: "hash"}

	router := gin.New()
	router.Use(sm.SessionLoadSave())
	router.POST("/login", func(c *gin.Context) {
		require.NoError(t, sm.CreateSession(c.Request, user))
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	router.POST("/logout", func(c *gin.Context) {
		require.NoError(t, sm.DestroySession(c.Request))
		c.Status(http.StatusNoContent)
	})
	router.GET("/whoami", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": sm.GetUserID(c.Request)})
	})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/login", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var sessionCookie *http.Cookie
	for _, c := range rr.Result().Cookies() {
		if c.Name == sessionCookieName {
			sessionCookie = c
		}
	}
	require.NotNil(t, sessionCookie)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.AddCookie(sessionCookie)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	assert.JSONEq(t, `{"user_id":9}`, rr.Body.String())

	req = httptest.NewRequest(http.MethodPost, "/logout", nil)
	req.AddCookie(sessionCookie)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusNoContent, rr.Code)

	req = httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.AddCookie(sessionCookie)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	assert.JSONEq(t, `{"user_id":0}`, rr.Body.String())
}

func TestSessionManager_UnauthenticatedRequest(t *testing.T) {
	sm := setupSessionManager(t)

	handler := sm.LoadAndSave(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Zero(t, sm.GetUserID(r))
		assert.Nil(t, sm.GetSessionData(r))
		assert.False(t, sm.Valid(r, &entities.User{ID: 1}))
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
}

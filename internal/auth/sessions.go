package auth

import (
	"bufio"
	"crypto/sha256"
	"crypto/subtle"
	"database/sql"
	"encoding/gob"
	"encoding/hex"
	"net"
	"net/http"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/gin-gonic/gin"

	"github.com/mrlokans/weddingplanner/internal/config"
	"github.com/mrlokans/weddingplanner/internal/entities"
)

const (
	sessionCookieName = "wp_session"

	keyUserID      = "uid"
	keyCredential  = "cred"
	keyLoginAt     = "login_at"
	defaultSession = 24 * time.Hour
)

func init() {
	gob.Register(time.Time{})
}

// SessionManager keeps browser sessions in the application database. A
// session remembers the user ID and a fingerprint of the password hash, so
// changing the password signs out every other browser.
type SessionManager struct {
	*scs.SessionManager
	store *sqlite3store.SQLite3Store
}

// NewSessionManager creates the sessions table when missing. sqlDB is the
// connection pool underneath GORM.
func NewSessionManager(sqlDB *sql.DB, cfg config.Auth) (*SessionManager, error) {
	if _, err := sqlDB.Exec(`CREATE TABLE IF NOT EXISTS sessions (
		token TEXT PRIMARY KEY,
		data BLOB NOT NULL,
		expiry REAL NOT NULL
	);
	CREATE INDEX IF NOT EXISTS sessions_expiry_idx ON sessions(expiry);`); err != nil {
		return nil, err
	}

	lifetime := cfg.SessionLifetime
	if lifetime <= 0 {
		lifetime = defaultSession
	}

	store := sqlite3store.New(sqlDB)
	sm := scs.New()
	sm.Store = store
	sm.Lifetime = lifetime
	sm.IdleTimeout = lifetime / 2
	sm.Cookie.Name = sessionCookieName
	sm.Cookie.Path = "/"
	sm.Cookie.HttpOnly = true
	sm.Cookie.Secure = cfg.SecureCookies
	// Lax keeps the session on the top-level redirect back from checkout.
	sm.Cookie.SameSite = http.SameSiteLaxMode

	return &SessionManager{SessionManager: sm, store: store}, nil
}

// Close stops the store's expired-session sweeper.
func (sm *SessionManager) Close() {
	sm.store.StopCleanup()
}

// credential is a short digest of the password hash. Only the digest goes
// into the session store.
func credential(user *entities.User) string {
	sum := sha256.Sum256([]byte(user.PasswordHash))
	return hex.EncodeToString(sum[:8])
}

// CreateSession signs user in on a fresh token.
func (sm *SessionManager) CreateSession(r *http.Request, user *entities.User) error {
	ctx := r.Context()
	if err := sm.RenewToken(ctx); err != nil {
		return err
	}
	sm.Put(ctx, keyUserID, int(user.ID))
	sm.Put(ctx, keyCredential, credential(user))
	sm.Put(ctx, keyLoginAt, time.Now().UTC())
	return nil
}

// DestroySession signs the browser out.
func (sm *SessionManager) DestroySession(r *http.Request) error {
	return sm.Destroy(r.Context())
}

// GetUserID returns the signed-in user, 0 when there is none.
func (sm *SessionManager) GetUserID(r *http.Request) uint {
	if id := sm.GetInt(r.Context(), keyUserID); id > 0 {
		return uint(id)
	}
	return 0
}

// Valid reports whether the session was created with user's current password.
func (sm *SessionManager) Valid(r *http.Request, user *entities.User) bool {
	stored := sm.GetString(r.Context(), keyCredential)
	return stored != "" && subtle.ConstantTimeCompare([]byte(stored), []byte(credential(user))) == 1
}

// SessionData describes the signed-in browser.
type SessionData struct {
	UserID  uint
	LoginAt time.Time
}

// GetSessionData returns nil when the request carries no session.
func (sm *SessionManager) GetSessionData(r *http.Request) *SessionData {
	userID := sm.GetUserID(r)
	if userID == 0 {
		return nil
	}
	loginAt, _ := sm.Get(r.Context(), keyLoginAt).(time.Time)
	return &SessionData{UserID: userID, LoginAt: loginAt}
}

// SessionLoadSave loads the session from the cookie and writes the cookie
// back before the first byte of the response. It must run before any
// handler touches the session.
func (sm *SessionManager) SessionLoadSave() gin.HandlerFunc {
	return func(c *gin.Context) {
		var token string
		if cookie, err := c.Request.Cookie(sm.Cookie.Name); err == nil {
			token = cookie.Value
		}
		ctx, err := sm.Load(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}
		c.Request = c.Request.WithContext(ctx)

		w := &sessionWriter{ResponseWriter: c.Writer, sm: sm, request: c.Request}
		c.Writer = w
		c.Next()
		// Handlers that never wrote a body still need the cookie.
		w.commit()
	}
}

// sessionWriter commits the session right before the headers go out.
type sessionWriter struct {
	gin.ResponseWriter
	sm        *SessionManager
	request   *http.Request
	committed bool
}

func (w *sessionWriter) commit() {
	if w.committed {
		return
	}
	w.committed = true

	ctx := w.request.Context()
	switch w.sm.Status(ctx) {
	case scs.Modified:
		token, expiry, err := w.sm.Commit(ctx)
		if err != nil {
			return
		}
		w.sm.WriteSessionCookie(ctx, w.ResponseWriter, token, expiry)
	case scs.Destroyed:
		w.sm.WriteSessionCookie(ctx, w.ResponseWriter, "", time.Time{})
	}
}

func (w *sessionWriter) WriteHeader(code int) {
	w.commit()
	w.ResponseWriter.WriteHeader(code)
}

func (w *sessionWriter) WriteHeaderNow() {
	w.commit()
	w.ResponseWriter.WriteHeaderNow()
}

func (w *sessionWriter) Write(b []byte) (int, error) {
	w.commit()
	return w.ResponseWriter.Write(b)
}

func (w *sessionWriter) WriteString(s string) (int, error) {
	w.commit()
	return w.ResponseWriter.WriteString(s)
}

func (w *sessionWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	return w.ResponseWriter.Hijack()
}

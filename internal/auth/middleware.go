package auth

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/weddingplanner/internal/apperr"
	"github.com/mrlokans/weddingplanner/internal/config"
	"github.com/mrlokans/weddingplanner/internal/entities"
)

// Paths reachable without a login. Entries ending in "/" match by prefix.
var defaultPublicPaths = []string{
	"/health",
	"/ping",
	"/metrics",
	"/favicon.ico",
	"/api/auth/login",
	"/api/auth/signup",
	"/api/auth/csrf",
	"/api/auth/status",
	"/api/demo/status",
	PublicSitePrefix,
	"/files/",
	"/api/public/",
	"/api/blog/",
}

var (
	errUnauthorized    = apperr.Response{Error: "authentication required", Code: "unauthorized"}
	errForbidden       = apperr.Response{Error: "insufficient permissions", Code: "forbidden"}
	errPremiumRequired = apperr.Response{Error: "premium subscription required", Code: "premium_required"}
)

// Middleware attaches the caller's Identity and guards routes by role and plan.
type Middleware struct {
	service     *Service
	tokens      *JWTManager
	sessions    *SessionManager
	mode        config.AuthMode
	publicPaths []string
	now         func() time.Time
}

// NewMiddleware builds the middleware. tokens and sessions may be nil to
// turn the matching login method off.
func NewMiddleware(service *Service, tokens *JWTManager, sessions *SessionManager, cfg config.Auth) *Middleware {
	return &Middleware{
		service:     service,
		tokens:      tokens,
		sessions:    sessions,
		mode:        cfg.Mode,
		publicPaths: defaultPublicPaths,
		now:         time.Now,
	}
}

func (m *Middleware) disabled() bool {
	return m.mode == config.AuthModeNone
}

// Handler authenticates every request. In auth mode none the caller is the
// implicit owner with admin rights. Otherwise a bearer token wins over a
// session cookie and anonymous callers only reach the public paths.
func (m *Middleware) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m.disabled() {
			setIdentity(c, Identity{UserID: DefaultUserID, Role: entities.UserRoleAdmin, Via: AuthTypeNone})
			c.Next()
			return
		}

		switch user, via := m.authenticate(c); {
		case user != nil:
			SetUserContext(c, user, via)
		case !matchesAny(c.Request.URL.Path, m.publicPaths):
			c.AbortWithStatusJSON(http.StatusUnauthorized, errUnauthorized)
			return
		}
		c.Next()
	}
}

func (m *Middleware) authenticate(c *gin.Context) (*entities.User, AuthType) {
	if user := m.fromBearer(c); user != nil {
		return user, AuthTypeBearer
	}
	if user := m.fromSession(c); user != nil {
		return user, AuthTypeSession
	}
	return nil, AuthTypeNone
}

// bearerToken extracts the token from "Authorization: Bearer <token>".
func bearerToken(c *gin.Context) string {
	scheme, token, ok := strings.Cut(c.GetHeader("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// fromBearer reloads the token's user so role and subscription changes
// apply before the token expires.
func (m *Middleware) fromBearer(c *gin.Context) *entities.User {
	token := bearerToken(c)
	if m.tokens == nil || token == "" {
		return nil
	}
	claims, err := m.tokens.Validate(token)
	if err != nil {
		return nil
	}
	user, err := m.service.GetUserByID(claims.UserID)
	if err != nil {
		return nil
	}
	return user
}

// fromSession also rejects sessions issued before the last password change.
func (m *Middleware) fromSession(c *gin.Context) *entities.User {
	if m.sessions == nil {
		return nil
	}
	userID := m.sessions.GetUserID(c.Request)
	if userID == 0 {
		return nil
	}
	user, err := m.service.GetUserByID(userID)
	if err != nil || !m.sessions.Valid(c.Request, user) {
		return nil
	}
	return user
}

func matchesAny(path string, patterns []string) bool {
	for _, p := range patterns {
		if prefix, ok := strings.CutSuffix(p, "/"); ok {
			if strings.HasPrefix(path, prefix+"/") {
				return true
			}
		} else if path == p {
			return true
		}
	}
	return false
}

// RequireAuth rejects anonymous callers on routes under a public prefix.
func (m *Middleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !m.disabled() && GetUser(c) == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errUnauthorized)
			return
		}
		c.Next()
	}
}

// RequireRole admits callers holding one of roles.
func (m *Middleware) RequireRole(roles ...entities.UserRole) gin.HandlerFunc {
	allowed := make(map[entities.UserRole]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		if _, ok := allowed[GetUserRole(c)]; !ok && !m.disabled() {
			c.AbortWithStatusJSON(http.StatusForbidden, errForbidden)
			return
		}
		c.Next()
	}
}

// RequirePremium gates paid features. Admins and the implicit owner pass.
func (m *Middleware) RequirePremium() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m.disabled() || IsAdmin(c) {
			c.Next()
			return
		}
		if user := GetUser(c); user == nil || !user.HasPremium(m.now()) {
			c.AbortWithStatusJSON(http.StatusForbidden, errPremiumRequired)
			return
		}
		c.Next()
	}
}

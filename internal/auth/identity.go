package auth

import (
	"github.com/gin-gonic/gin"

	"github.com/mrlokans/weddingplanner/internal/entities"
)

// AuthType records how a request was authenticated.
type AuthType string

const (
	AuthTypeNone    AuthType = "none"
	AuthTypeSession AuthType = "session"
	AuthTypeBearer  AuthType = "bearer"
)

// DefaultUserID owns all data when authentication is off.
const DefaultUserID = uint(0)

const identityKey = "auth.identity"

// Identity is the caller attached to a request by the middleware. User is
// nil in auth mode none.
type Identity struct {
	UserID uint
	Role   entities.UserRole
	User   *entities.User
	Via    AuthType
}

func setIdentity(c *gin.Context, id Identity) {
	c.Set(identityKey, id)
}

// SetUserContext attaches user as the caller.
func SetUserContext(c *gin.Context, user *entities.User, via AuthType) {
	setIdentity(c, Identity{UserID: user.ID, Role: user.Role, User: user, Via: via})
}

// CurrentIdentity returns the caller, if the middleware attached one.
func CurrentIdentity(c *gin.Context) (Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return Identity{}, false
	}
	id, ok := v.(Identity)
	return id, ok
}

func identity(c *gin.Context) Identity {
	id, _ := CurrentIdentity(c)
	return id
}

// GetUserID returns DefaultUserID for anonymous requests and in auth mode none.
func GetUserID(c *gin.Context) uint { return identity(c).UserID }

func GetUserRole(c *gin.Context) entities.UserRole { return identity(c).Role }

// GetUser returns the loaded user record, nil in auth mode none.
func GetUser(c *gin.Context) *entities.User { return identity(c).User }

func GetUsername(c *gin.Context) string {
	if u := GetUser(c); u != nil {
		return u.Username
	}
	return ""
}

func GetAuthType(c *gin.Context) AuthType {
	if id, ok := CurrentIdentity(c); ok {
		return id.Via
	}
	return AuthTypeNone
}

func IsAdmin(c *gin.Context) bool {
	return GetUserRole(c) == entities.UserRoleAdmin
}

// IsAuthenticated reports whether an identity is attached. Always true in
// auth mode none.
func IsAuthenticated(c *gin.Context) bool {
	_, ok := CurrentIdentity(c)
	return ok
}

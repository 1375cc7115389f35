package auth

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/weddingplanner/internal/apperr"
	"github.com/mrlokans/weddingplanner/internal/config"
	"github.com/mrlokans/weddingplanner/internal/entities"
	"github.com/mrlokans/weddingplanner/internal/ratelimit"
)

// EventLogger receives authentication events for the audit trail.
type EventLogger interface {
	LogAuth(userID uint, action, ipAddr, userAgent string, success bool)
}

// AuthController serves the JSON authentication endpoints.
type AuthController struct {
	service        *Service
	tokens         *JWTManager
	sessionManager *SessionManager
	limiter        *ratelimit.Limiter
	events         EventLogger
	errors         *apperr.Handler
	config         config.Auth
}

// NewAuthController wires the controller. sessionManager and events may be nil.
func NewAuthController(service *Service, tokens *JWTManager, sessionManager *SessionManager, events EventLogger, errs *apperr.Handler, cfg config.Auth) *AuthController {
	return &AuthController{
		service:        service,
		tokens:         tokens,
		sessionManager: sessionManager,
		limiter: ratelimit.New(ratelimit.Config{
			MaxAttempts: cfg.MaxLoginAttempts,
			Window:      cfg.RateLimitWindow,
			Lockout:     cfg.LockoutDuration,
		}),
		events:         events,
		errors:         errs,
		config:         cfg,
	}
}

// RegisterRoutes registers authentication routes under /api/auth.
func (ac *AuthController) RegisterRoutes(router gin.IRouter) {
	group := router.Group("/api/auth")
	group.GET("/status", ac.Status)
	group.GET("/csrf", ac.CSRFToken)
	group.POST("/signup", ac.Signup)
	group.POST("/login", ac.Login)
	group.POST("/logout", ac.Logout)
	group.GET("/me", ac.Me)
	group.POST("/password", ac.ChangePassword)
}

// Stop releases the rate limiter goroutine.
func (ac *AuthController) Stop() {
	if ac.limiter != nil {
		ac.limiter.Stop()
	}
}

type signupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Login    string `json:"login"`
	Username string `json:"username"` // accepted as an alias for login
	Password string `json:"password"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// SessionResponse is returned by signup and login.
type SessionResponse struct {
	User      *entities.User `json:"user"`
	Token     string         `json:"token"`
	ExpiresAt time.Time      `json:"expires_at"`
}

// StatusResponse describes how clients should authenticate.
type StatusResponse struct {
	AuthMode      config.AuthMode `json:"auth_mode"`
	SignupEnabled bool            `json:"signup_enabled"`
	HasUsers      bool            `json:"has_users"`
	Authenticated bool            `json:"authenticated"`
}

func (ac *AuthController) Status(c *gin.Context) {
	resp := StatusResponse{
		AuthMode:      ac.service.GetAuthMode(),
		Authenticated: IsAuthenticated(c),
	}
	if ac.service.IsAuthEnabled() {
		hasUsers, err := ac.service.HasUsers()
		if err != nil {
			ac.errors.Respond(c, err, "auth_status")
			return
		}
		allowed, err := ac.service.SignupAllowed()
		if err != nil {
			ac.errors.Respond(c, err, "auth_status")
			return
		}
		resp.HasUsers = hasUsers
		resp.SignupEnabled = allowed
	}
	c.JSON(http.StatusOK, resp)
}

// CSRFToken hands the gorilla/csrf token to single-page clients.
func (ac *AuthController) CSRFToken(c *gin.Context) {
	c.Header(CSRFTokenHeader, GetCSRFToken(c))
	c.JSON(http.StatusOK, gin.H{"csrf_token": GetCSRFToken(c)})
}

func (ac *AuthController) Signup(c *gin.Context) {
	if !ac.requireLocal(c) {
		return
	}

	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ac.errors.Respond(c, apperr.Validation("invalid request body", nil), "signup")
		return
	}

	user, err := ac.service.Signup(req.Username, req.Email, req.Password)
	if err != nil {
		ac.errors.Respond(c, classify(err), "signup")
		return
	}
	ac.logEvent(c, user.ID, "signup", true)

	ac.startSession(c, http.StatusCreated, user, "signup")
}

func (ac *AuthController) Login(c *gin.Context) {
	if !ac.requireLocal(c) {
		return
	}

	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ac.errors.Respond(c, apperr.Validation("invalid request body", nil), "login")
		return
	}
	login := req.Login
	if login == "" {
		login = req.Username
	}

	key := ratelimit.Key(c.ClientIP(), login)
	if allowed, retryAfter := ac.limiter.Allow(key); !allowed {
		c.Header("Retry-After", retryAfterSeconds(retryAfter))
		c.AbortWithStatusJSON(http.StatusTooManyRequests, apperr.Response{
			Error: "too many login attempts",
			Code:  "rate_limited",
		})
		return
	}

	user, err := ac.service.Authenticate(login, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) || errors.Is(err, ErrAccountLocked) {
			ac.limiter.Hit(key)
			ac.logEvent(c, 0, "login", false)
		}
		ac.errors.Respond(c, classify(err), "login")
		return
	}

	ac.limiter.Reset(key)
	ac.logEvent(c, user.ID, "login", true)

	ac.startSession(c, http.StatusOK, user, "login")
}

// startSession issues a JWT and, when sessions are enabled, a cookie session.
func (ac *AuthController) startSession(c *gin.Context, status int, user *entities.User, operation string) {
	token, expiresAt, err := ac.tokens.Generate(user)
	if err != nil {
		ac.errors.Respond(c, err, operation)
		return
	}

	if ac.sessionManager != nil {
		if err := ac.sessionManager.CreateSession(c.Request, user); err != nil {
			ac.errors.Respond(c, err, operation)
			return
		}
	}

	c.JSON(status, SessionResponse{User: user, Token: token, ExpiresAt: expiresAt})
}

// Logout destroys the cookie session. Bearer tokens simply expire.
func (ac *AuthController) Logout(c *gin.Context) {
	if ac.sessionManager != nil {
		if err := ac.sessionManager.DestroySession(c.Request); err != nil {
			ac.errors.Respond(c, err, "logout")
			return
		}
	}
	if userID := GetUserID(c); userID != DefaultUserID {
		ac.logEvent(c, userID, "logout", true)
	}
	c.Status(http.StatusNoContent)
}

// Me returns the current user. In auth mode none it describes the implicit user.
func (ac *AuthController) Me(c *gin.Context) {
	if !ac.service.IsAuthEnabled() {
		c.JSON(http.StatusOK, &entities.User{
			ID:               DefaultUserID,
			Username:         "owner",
			Role:             entities.UserRoleAdmin,
			SubscriptionTier: entities.SubscriptionPremium,
		})
		return
	}

	user := GetUser(c)
	if user == nil {
		ac.errors.Respond(c, apperr.Unauthorized("authentication required"), "me")
		return
	}
	c.JSON(http.StatusOK, user)
}

func (ac *AuthController) ChangePassword(c *gin.Context) {
	if !ac.requireLocal(c) {
		return
	}
	userID := GetUserID(c)
	if userID == DefaultUserID {
		ac.errors.Respond(c, apperr.Unauthorized("authentication required"), "change_password")
		return
	}

	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ac.errors.Respond(c, apperr.Validation("invalid request body", nil), "change_password")
		return
	}

	err := ac.service.ChangePassword(userID, req.CurrentPassword, req.NewPassword)
	ac.logEvent(c, userID, "password_change", err == nil)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidPassword):
			err = apperr.Validation("invalid input", map[string]string{"current_password": "is incorrect"})
		case errors.Is(err, ErrPasswordTooShort), errors.Is(err, ErrPasswordTooLong):
			err = apperr.Validation("invalid input", map[string]string{"new_password": err.Error()})
		}
		ac.errors.Respond(c, classify(err), "change_password")
		return
	}
	// Other browsers fall out on their next request; keep this one signed in.
	if ac.sessionManager != nil && GetAuthType(c) == AuthTypeSession {
		user, err := ac.service.GetUserByID(userID)
		if err == nil {
			err = ac.sessionManager.CreateSession(c.Request, user)
		}
		if err != nil {
			ac.errors.Respond(c, err, "change_password")
			return
		}
	}
	c.Status(http.StatusNoContent)
}

func (ac *AuthController) requireLocal(c *gin.Context) bool {
	if ac.service.IsAuthEnabled() {
		return true
	}
	ac.errors.Respond(c, apperr.Unavailable("authentication is disabled"), "auth")
	return false
}

func (ac *AuthController) logEvent(c *gin.Context, userID uint, action string, success bool) {
	if ac.events == nil {
		return
	}
	ac.events.LogAuth(userID, action, c.ClientIP(), c.Request.UserAgent(), success)
}

// classify maps auth sentinel errors onto API errors.
func classify(err error) error {
	field := func(name, msg string) error {
		return apperr.Validation("invalid input", map[string]string{name: msg})
	}

	switch {
	case errors.Is(err, ErrInvalidCredentials):
		return apperr.Unauthorized("invalid username or password")
	case errors.Is(err, ErrAccountLocked):
		locked := apperr.Forbidden("account is locked, try again later")
		locked.Code = "account_locked"
		return locked
	case errors.Is(err, ErrSignupDisabled):
		return apperr.Forbidden("signup is disabled")
	case errors.Is(err, ErrUserExists):
		return apperr.Conflict("username or email already registered")
	case errors.Is(err, ErrUserNotFound):
		return apperr.NotFound("user")
	case errors.Is(err, ErrUsernameRequired):
		return field("username", "is required")
	case errors.Is(err, ErrUsernameInvalid):
		return field("username", "must be 3-64 characters of letters, digits, underscore or hyphen")
	case errors.Is(err, ErrEmailRequired):
		return field("email", "is required")
	case errors.Is(err, ErrEmailInvalid):
		return field("email", "must be a valid email address")
	case errors.Is(err, ErrPasswordRequired):
		return field("password", "is required")
	case errors.Is(err, ErrPasswordTooShort):
		return field("password", ErrPasswordTooShort.Error())
	case errors.Is(err, ErrPasswordTooLong):
		return field("password", ErrPasswordTooLong.Error())
	}
	return err
}

func retryAfterSeconds(d time.Duration) string {
	seconds := int(d.Round(time.Second) / time.Second)
	if seconds < 1 {
		seconds = 1
	}
	return strconv.Itoa(seconds)
}

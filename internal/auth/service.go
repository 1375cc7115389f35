package auth

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/weddingplanner/internal/config"
	"github.com/mrlokans/weddingplanner/internal/entities"
	"github.com/mrlokans/weddingplanner/internal/security"
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{3,64}$`)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidRole        = errors.New("invalid role")
	ErrUsernameRequired   = errors.New("username is required")
	ErrEmailRequired      = errors.New("email is required")
	ErrPasswordRequired   = errors.New("password is required")
	ErrAccountLocked      = errors.New("account is locked due to too many failed login attempts")
	ErrUsernameInvalid    = errors.New("username must be 3-64 characters, alphanumeric and underscore/hyphen only")
	ErrEmailInvalid       = errors.New("invalid email format")
	ErrSignupDisabled     = errors.New("signup is disabled")
)

// UserStore is the slice of the users repository the auth service needs.
type UserStore interface {
	CreateUser(user *entities.User) error
	GetUserByID(id uint) (*entities.User, error)
	GetUserByLogin(login string) (*entities.User, error)
	ExistsByUsernameOrEmail(username, email string) (bool, error)
	UpdatePasswordHash(id uint, hash string) error
	RecordFailedLogin(id uint, failedCount int, lockedUntil *time.Time) error
	RecordSuccessfulLogin(id uint, at time.Time) error
	CountUsers() (int64, error)
}

// SettingsReader exposes runtime toggles stored in the settings table.
type SettingsReader interface {
	GetBool(key string, fallback bool) (bool, error)
}

// Service handles authentication and user management.
type Service struct {
	users    UserStore
	settings SettingsReader
	config   config.Auth
	now      func() time.Time

	// createMu serializes user creation so exactly one user becomes the first admin.
	createMu sync.Mutex
}

// NewService creates a new authentication service. settings may be nil.
func NewService(users UserStore, settings SettingsReader, cfg config.Auth) *Service {
	return &Service{
		users:    users,
		settings: settings,
		config:   cfg,
		now:      time.Now,
	}
}

// CreateUser creates a new user with password authentication.
func (s *Service) CreateUser(username, email, password string, role entities.UserRole) (*entities.User, error) {
	s.createMu.Lock()
	defer s.createMu.Unlock()

	return s.createUser(username, email, password, role)
}

// Signup registers a self-service account. The first account ever created
// becomes an admin; every later one is a regular user.
func (s *Service) Signup(username, email, password string) (*entities.User, error) {
	allowed, err := s.SignupAllowed()
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, ErrSignupDisabled
	}

	s.createMu.Lock()
	defer s.createMu.Unlock()

	count, err := s.users.CountUsers()
	if err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}
	role := entities.UserRoleUser
	if count == 0 {
		role = entities.UserRoleAdmin
	}
	return s.createUser(username, email, password, role)
}

// SignupAllowed combines the static config toggle with the admin-editable setting.
// An empty instance always accepts the first signup.
func (s *Service) SignupAllowed() (bool, error) {
	count, err := s.users.CountUsers()
	if err != nil {
		return false, fmt.Errorf("failed to count users: %w", err)
	}
	if count == 0 {
		return true, nil
	}
	if !s.config.SignupEnabled {
		return false, nil
	}
	if s.settings == nil {
		return true, nil
	}
	return s.settings.GetBool(entities.SettingKeySignupEnabled, true)
}

// checkNewUser normalizes signup input and returns the first rule it breaks.
func checkNewUser(username, email, password string, role entities.UserRole) (string, string, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))

	checks := []struct {
		failed bool
		err    error
	}{
		{username == "", ErrUsernameRequired},
		{email == "", ErrEmailRequired},
		{password == "", ErrPasswordRequired},
		{!usernamePattern.MatchString(username), ErrUsernameInvalid},
		{security.ValidateEmail(email) != nil, ErrEmailInvalid},
		{!role.Valid(), ErrInvalidRole},
	}
	for _, c := range checks {
		if c.failed {
			return "", "", c.err
		}
	}
	return username, email, ValidatePassword(password)
}

func (s *Service) createUser(username, email, password string, role entities.UserRole) (*entities.User, error) {
	username, email, err := checkNewUser(username, email, password, role)
	if err != nil {
		return nil, err
	}

	switch exists, err := s.users.ExistsByUsernameOrEmail(username, email); {
	case err != nil:
		return nil, fmt.Errorf("check existing user: %w", err)
	case exists:
		return nil, ErrUserExists
	}

	hash, err := HashPassword(password, s.config.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &entities.User{
		Username:         username,
		Email:            email,
		PasswordHash:     hash,
		Role:             role,
		SubscriptionTier: entities.SubscriptionFree,
	}
	if err := s.users.CreateUser(user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// Authenticate validates credentials and returns the user.
// The account is locked after MaxLoginAttempts consecutive failures.
func (s *Service) Authenticate(login, password string) (*entities.User, error) {
	user, err := s.users.GetUserByLogin(strings.TrimSpace(login))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	now := s.now()
	if user.LockedUntil != nil && now.Before(*user.LockedUntil) {
		return nil, ErrAccountLocked
	}

	if err := CheckPassword(password, user.PasswordHash); err != nil {
		if recordErr := s.recordFailedLogin(user, now); recordErr != nil {
			return nil, recordErr
		}
		if errors.Is(err, ErrInvalidPassword) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := s.users.RecordSuccessfulLogin(user.ID, now); err != nil {
		return nil, fmt.Errorf("failed to record login: %w", err)
	}
	// Upgrade hashes made under an older cost while the plaintext is at hand.
	if NeedsRehash(user.PasswordHash, s.config.BcryptCost) {
		if hash, err := HashPassword(password, s.config.BcryptCost); err == nil {
			if err := s.users.UpdatePasswordHash(user.ID, hash); err == nil {
				user.PasswordHash = hash
			}
		}
	}
	user.FailedLoginCount = 0
	user.LockedUntil = nil
	user.LastLoginAt = &now
	return user, nil
}

// recordFailedLogin increments the failure counter and locks the account at the threshold.
func (s *Service) recordFailedLogin(user *entities.User, now time.Time) error {
	// A lock that has run out starts a fresh count.
	if user.LockedUntil != nil {
		user.FailedLoginCount = 0
		user.LockedUntil = nil
	}
	user.FailedLoginCount++

	maxAttempts := s.config.MaxLoginAttempts
	if maxAttempts <= 0 {
		maxAttempts = 5
	}

	if user.FailedLoginCount >= maxAttempts {
		lockoutDuration := s.config.LockoutDuration
		if lockoutDuration <= 0 {
			lockoutDuration = 30 * time.Minute
		}
		lockedUntil := now.Add(lockoutDuration)
		user.LockedUntil = &lockedUntil
	}

	if err := s.users.RecordFailedLogin(user.ID, user.FailedLoginCount, user.LockedUntil); err != nil {
		return fmt.Errorf("failed to record failed login: %w", err)
	}
	return nil
}

// GetUserByID retrieves a user by their ID.
func (s *Service) GetUserByID(id uint) (*entities.User, error) {
	user, err := s.users.GetUserByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// ChangePassword updates a user's password after verifying the current one.
func (s *Service) ChangePassword(userID uint, oldPassword, newPassword string) error {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return err
	}

	if err := CheckPassword(oldPassword, user.PasswordHash); err != nil {
		return err
	}

	newHash, err := HashPassword(newPassword, s.config.BcryptCost)
	if err != nil {
		return err
	}
	return s.users.UpdatePasswordHash(user.ID, newHash)
}

// HasUsers returns true if any users exist in the database.
func (s *Service) HasUsers() (bool, error) {
	count, err := s.users.CountUsers()
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// IsAuthEnabled returns true if authentication is required.
func (s *Service) IsAuthEnabled() bool {
	return s.config.Mode == config.AuthModeLocal
}

// GetAuthMode returns the current authentication mode.
func (s *Service) GetAuthMode() config.AuthMode {
	return s.config.Mode
}

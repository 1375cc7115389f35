package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type AuthMode string

const (
	AuthModeNone  AuthMode = "none"  // Single-user mode, the implicit user gets admin rights
	AuthModeLocal AuthMode = "local" // Local user database with sessions and bearer tokens
)

type (
	Config struct {
		HTTP
		Global
		Database
		Log
		Auth
		Storage
		Functions
		Gemini
		Payments
		Tasks
		Audit
		Scheduler
		Metrics
		Demo
	}

	HTTP struct {
		Port          int32
		Host          string
		PublicBaseURL string // Used to build share links for published websites
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
	Database struct {
		Path string
	}
	Log struct {
		Level  string // debug, info, warn, error
		Format string // text (colored) or json
	}
	Auth struct {
		Mode            AuthMode
		SessionSecret   string
		SessionLifetime time.Duration
		JWTSecret       string
		JWTExpiry       time.Duration
		BcryptCost      int
		SecureCookies   bool // Set to false for local dev without HTTPS
		SignupEnabled   bool

		MaxLoginAttempts int           // Max failed attempts before lockout (default: 5)
		RateLimitWindow  time.Duration // Time window for counting attempts (default: 15m)
		LockoutDuration  time.Duration // How long to lock out (default: 30m)
	}
	Storage struct {
		Dir            string
		PublicPath     string // URL prefix the files are served under
		MaxUploadBytes int64
		ThumbnailSize  int
	}
	Functions struct {
		BaseURL string
		APIKey  string
		Timeout time.Duration
	}
	Gemini struct {
		APIKey string
		Model  string
	}
	Payments struct {
		SuccessURL  string
		CancelURL   string
		PremiumPlan string
	}
	Tasks struct {
		Enabled         bool
		Workers         int
		ReleaseAfter    time.Duration
		CleanupInterval time.Duration
	}
	Audit struct {
		RetentionDays int // Days to keep audit events (default: 90)
	}
	Scheduler struct {
		Enabled             bool
		CleanupSchedule     string // Cron format: "0 3 * * *" = daily at 03:00
		CheckoutExpiryHours int
	}
	Metrics struct {
		Enabled bool
	}
	Demo struct {
		Enabled bool   // Read-only demo: all writes outside of auth and RSVP are rejected
		Notice  string // Shown by /api/demo/status, e.g. sample login details
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8080)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("public_base_url", "http://localhost:8080")
	v.SetDefault("shutdown_timeout_in_seconds", 5)
	v.SetDefault("database_path", DefaultDatabasePath)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")

	// Auth defaults
	v.SetDefault("auth_mode", "none")
	v.SetDefault("auth_session_secret", "")      // Auto-generated if empty
	v.SetDefault("auth_session_lifetime", "24h") // 24 hours
	v.SetDefault("auth_jwt_secret", "")          // Falls back to the session secret
	v.SetDefault("auth_jwt_expiry", "168h")      // 7 days
	v.SetDefault("auth_bcrypt_cost", 12)
	v.SetDefault("auth_secure_cookies", true)
	v.SetDefault("auth_signup_enabled", true)
	v.SetDefault("auth_max_login_attempts", 5)
	v.SetDefault("auth_rate_limit_window", "15m")
	v.SetDefault("auth_lockout_duration", "30m")

	v.SetDefault("storage_dir", DefaultStorageDir)
	v.SetDefault("storage_public_path", "/files")
	v.SetDefault("storage_max_upload_bytes", 10<<20) // 10 MiB
	v.SetDefault("storage_thumbnail_size", 320)

	v.SetDefault("functions_base_url", "")
	v.SetDefault("functions_api_key", "")
	v.SetDefault("functions_timeout", "20s")

	v.SetDefault("gemini_api_key", "")
	v.SetDefault("gemini_model", DefaultGeminiModel)

	v.SetDefault("payments_success_url", "http://localhost:8080/payment/success")
	v.SetDefault("payments_cancel_url", "http://localhost:8080/payment/cancel")
	v.SetDefault("payments_premium_plan", "premium_yearly")

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 2)
	v.SetDefault("task_max_retries", 3)
	v.SetDefault("task_retry_delay", "30s")
	v.SetDefault("task_timeout", "2m")
	v.SetDefault("task_release_after", "10m")
	v.SetDefault("task_cleanup_interval", "1h")
	v.SetDefault("task_retention_duration", "24h")

	v.SetDefault("audit_retention_days", 90)

	v.SetDefault("scheduler_enabled", true)
	v.SetDefault("scheduler_cleanup_schedule", "0 3 * * *")
	v.SetDefault("scheduler_checkout_expiry_hours", 24)

	v.SetDefault("metrics_enabled", true)
	v.SetDefault("demo_mode", false)

	return &Config{
		HTTP: HTTP{
			Port:          v.GetInt32("PORT"),
			Host:          v.GetString("HOST"),
			PublicBaseURL: v.GetString("PUBLIC_BASE_URL"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Database: Database{
			Path: v.GetString("DATABASE_PATH"),
		},
		Log: Log{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
		Auth: Auth{
			Mode:             AuthMode(v.GetString("AUTH_MODE")),
			SessionSecret:    v.GetString("AUTH_SESSION_SECRET"),
			SessionLifetime:  v.GetDuration("AUTH_SESSION_LIFETIME"),
			JWTSecret:        v.GetString("AUTH_JWT_SECRET"),
			JWTExpiry:        v.GetDuration("AUTH_JWT_EXPIRY"),
			BcryptCost:       v.GetInt("AUTH_BCRYPT_COST"),
			SecureCookies:    v.GetBool("AUTH_SECURE_COOKIES"),
			SignupEnabled:    v.GetBool("AUTH_SIGNUP_ENABLED"),
			MaxLoginAttempts: v.GetInt("AUTH_MAX_LOGIN_ATTEMPTS"),
			RateLimitWindow:  v.GetDuration("AUTH_RATE_LIMIT_WINDOW"),
			LockoutDuration:  v.GetDuration("AUTH_LOCKOUT_DURATION"),
		},
		Storage: Storage{
			Dir:            v.GetString("STORAGE_DIR"),
			PublicPath:     v.GetString("STORAGE_PUBLIC_PATH"),
			MaxUploadBytes: v.GetInt64("STORAGE_MAX_UPLOAD_BYTES"),
			ThumbnailSize:  v.GetInt("STORAGE_THUMBNAIL_SIZE"),
		},
		Functions: Functions{
			BaseURL: v.GetString("FUNCTIONS_BASE_URL"),
			APIKey:  v.GetString("FUNCTIONS_API_KEY"),
			Timeout: v.GetDuration("FUNCTIONS_TIMEOUT"),
		},
		Gemini: Gemini{
			APIKey: v.GetString("GEMINI_API_KEY"),
			Model:  v.GetString("GEMINI_MODEL"),
		},
		Payments: Payments{
			SuccessURL:  v.GetString("PAYMENTS_SUCCESS_URL"),
			CancelURL:   v.GetString("PAYMENTS_CANCEL_URL"),
			PremiumPlan: v.GetString("PAYMENTS_PREMIUM_PLAN"),
		},
		Tasks: Tasks{
			Enabled:         v.GetBool("TASKS_ENABLED"),
			Workers:         v.GetInt("TASK_WORKERS"),
			ReleaseAfter:    v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval: v.GetDuration("TASK_CLEANUP_INTERVAL"),
		},
		Audit: Audit{
			RetentionDays: v.GetInt("AUDIT_RETENTION_DAYS"),
		},
		Scheduler: Scheduler{
			Enabled:             v.GetBool("SCHEDULER_ENABLED"),
			CleanupSchedule:     v.GetString("SCHEDULER_CLEANUP_SCHEDULE"),
			CheckoutExpiryHours: v.GetInt("SCHEDULER_CHECKOUT_EXPIRY_HOURS"),
		},
		Metrics: Metrics{
			Enabled: v.GetBool("METRICS_ENABLED"),
		},
		Demo: Demo{
			Enabled: v.GetBool("DEMO_MODE"),
			Notice:  v.GetString("DEMO_NOTICE"),
		},
	}
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	switch c.Auth.Mode {
	case AuthModeNone, AuthModeLocal:
	default:
		return fmt.Errorf("invalid AUTH_MODE %q: must be %q or %q", c.Auth.Mode, AuthModeNone, AuthModeLocal)
	}
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("invalid PORT %d", c.HTTP.Port)
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return fmt.Errorf("invalid LOG_FORMAT %q: must be text or json", c.Log.Format)
	}
	if c.Database.Path == "" {
		return errors.New("DATABASE_PATH must not be empty")
	}
	if c.Storage.MaxUploadBytes <= 0 {
		return errors.New("STORAGE_MAX_UPLOAD_BYTES must be positive")
	}
	if !strings.HasPrefix(c.Storage.PublicPath, "/") {
		return fmt.Errorf("STORAGE_PUBLIC_PATH %q must start with /", c.Storage.PublicPath)
	}
	if c.Tasks.Enabled && c.Tasks.Workers < 1 {
		return errors.New("TASK_WORKERS must be at least 1 when tasks are enabled")
	}
	if c.Audit.RetentionDays < 1 {
		return errors.New("AUDIT_RETENTION_DAYS must be at least 1")
	}
	return nil
}

package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig_Defaults(t *testing.T) {
	cfg := NewConfig()

	assert.Equal(t, int32(8080), cfg.HTTP.Port)
	assert.Equal(t, AuthModeNone, cfg.Auth.Mode)
	assert.Equal(t, DefaultDatabasePath, cfg.Database.Path)
	assert.Equal(t, "/files", cfg.Storage.PublicPath)
	assert.Equal(t, int64(10<<20), cfg.Storage.MaxUploadBytes)
	assert.Equal(t, 90, cfg.Audit.RetentionDays)
	assert.Equal(t, "0 3 * * *", cfg.Scheduler.CleanupSchedule)
	assert.True(t, cfg.Tasks.Enabled)
	require.NoError(t, cfg.Validate())
}

func TestNewConfig_ReadsEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("AUTH_MODE", "local")
	t.Setenv("AUTH_JWT_EXPIRY", "1h")
	t.Setenv("DEMO_MODE", "true")

	cfg := NewConfig()

	assert.Equal(t, int32(9090), cfg.HTTP.Port)
	assert.Equal(t, AuthModeLocal, cfg.Auth.Mode)
	assert.Equal(t, "1h0m0s", cfg.Auth.JWTExpiry.String())
	assert.True(t, cfg.Demo.Enabled)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown auth mode", func(c *Config) { c.Auth.Mode = "oauth" }},
		{"bad port", func(c *Config) { c.HTTP.Port = 0 }},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }},
		{"empty database path", func(c *Config) { c.Database.Path = "" }},
		{"no upload size", func(c *Config) { c.Storage.MaxUploadBytes = 0 }},
		{"relative public path", func(c *Config) { c.Storage.PublicPath = "files" }},
		{"no workers", func(c *Config) { c.Tasks.Workers = 0 }},
		{"no retention", func(c *Config) { c.Audit.RetentionDays = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

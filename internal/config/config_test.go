package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"API_PORT", "STORAGE_DRIVER", "UNKNOWN_ROLE_POLICY", "SUMMARY_CACHE_TTL", "CORS_ORIGINS", "VDCR_REMINDER_DAYS"} {
		t.Setenv(k, "")
	}

	cfg := Load()
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "postgres", cfg.StorageDriver)
	assert.Equal(t, "deny", cfg.UnknownRolePolicy)
	assert.Equal(t, 5*time.Minute, cfg.SummaryCacheTTL)
	assert.Equal(t, 7, cfg.VDCRReminderDays)
	assert.Equal(t, 60, cfg.DashboardPollSeconds)
	assert.Len(t, cfg.CORSOrigins, 2)
	assert.False(t, cfg.UsesMemoryStorage())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "Memory")
	t.Setenv("UNKNOWN_ROLE_POLICY", "ALLOW")
	t.Setenv("SUMMARY_CACHE_TTL", "30")
	t.Setenv("CORS_ORIGINS", " https://a.example.com , ,https://b.example.com")
	t.Setenv("JWT_EXPIRY", "not-a-number")
	t.Setenv("SMTP_USE_TLS", "yes")

	cfg := Load()
	assert.True(t, cfg.UsesMemoryStorage())
	assert.Equal(t, "allow", cfg.UnknownRolePolicy)
	assert.Equal(t, 30*time.Second, cfg.SummaryCacheTTL)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORSOrigins)
	assert.Equal(t, 24, cfg.JWTExpiry)
	assert.True(t, cfg.SMTPUseTLS)
}

func validConfig() *Config {
	return &Config{
		Environment:       "development",
		StorageDriver:     "memory",
		UnknownRolePolicy: "deny",
		JWTSecret:         defaultJWTSecret,
		DBMaxConns:        25,
		DBMinConns:        5,
		VDCRReminderDays:  7,
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"development defaults", func(c *Config) {}, ""},
		{"unknown driver", func(c *Config) { c.StorageDriver = "sqlite" }, "STORAGE_DRIVER"},
		{"unknown policy", func(c *Config) { c.UnknownRolePolicy = "maybe" }, "UNKNOWN_ROLE_POLICY"},
		{"pool min above max", func(c *Config) { c.DBMinConns = 30 }, "DB pool"},
		{"negative reminder", func(c *Config) { c.VDCRReminderDays = -1 }, "cannot be negative"},
		{"production default secret", func(c *Config) {
			c.Environment = "production"
			c.StorageDriver = "postgres"
		}, "JWT_SECRET"},
		{"production memory storage", func(c *Config) {
			c.Environment = "production"
			c.JWTSecret = "s3cret"
		}, "memory storage"},
		{"production ok", func(c *Config) {
			c.Environment = "production"
			c.JWTSecret = "s3cret"
			c.StorageDriver = "postgres"
		}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

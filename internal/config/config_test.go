package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		App: AppConfig{Env: "development", Host: "0.0.0.0", Port: "8080"},
		Auth: AuthConfig{
			SessionSecret:              "s3cret",
			SessionLifetimeHours:       720,
			SessionRenewalWindowHours:  24,
			PasswordAlgorithm:          "bcrypt",
			VerificationCodeTTLMinutes: 10,
		},
		Mail: MailConfig{Provider: "log", TimeoutSeconds: 10},
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("AUTH_SESSION_SECRET", "")
	t.Setenv("MAIL_PROVIDER", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 30*24*time.Hour, cfg.Auth.SessionLifetime())
	assert.Equal(t, 24*time.Hour, cfg.Auth.RenewalWindow())
	assert.Equal(t, 10*time.Minute, cfg.Auth.VerificationCodeTTL())
	assert.Equal(t, 5, cfg.Auth.VerificationMaxAttempts)
	assert.Equal(t, "session_token", cfg.Auth.CookieName)
	assert.False(t, cfg.Auth.CookieSecure)
	assert.Equal(t, "log", cfg.Mail.Provider)
	assert.Equal(t, 1, cfg.Mail.MaxRetries)
}

func TestLoad_ProductionRequiresSecret(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("AUTH_SESSION_SECRET", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AUTH_SESSION_SECRET")
}

func TestLoad_ProductionDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("AUTH_SESSION_SECRET", "a-real-secret")
	t.Setenv("AUTH_PASSWORD_ALGORITHM", "ARGON2ID")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.Auth.CookieSecure)
	assert.Equal(t, "argon2id", cfg.Auth.PasswordAlgorithm)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"valid", func(*Config) {}, ""},
		{"empty secret", func(c *Config) { c.Auth.SessionSecret = "" }, "AUTH_SESSION_SECRET"},
		{"zero lifetime", func(c *Config) { c.Auth.SessionLifetimeHours = 0 }, "AUTH_SESSION_LIFETIME_HOURS"},
		{"window not shorter", func(c *Config) { c.Auth.SessionRenewalWindowHours = 720 }, "AUTH_SESSION_RENEWAL_WINDOW_HOURS"},
		{"zero code ttl", func(c *Config) { c.Auth.VerificationCodeTTLMinutes = 0 }, "AUTH_VERIFICATION_CODE_TTL_MINUTES"},
		{"unknown algorithm", func(c *Config) { c.Auth.PasswordAlgorithm = "md5" }, "AUTH_PASSWORD_ALGORITHM"},
		{"unknown provider", func(c *Config) { c.Mail.Provider = "smtp" }, "MAIL_PROVIDER"},
		{"resend without key", func(c *Config) { c.Mail.Provider = "resend" }, "MAIL_RESEND_API_KEY"},
		{"zero mail timeout", func(c *Config) { c.Mail.TimeoutSeconds = 0 }, "MAIL_TIMEOUT_SECONDS"},
		{"admin email only", func(c *Config) { c.Admin.Email = "admin@example.com" }, "ADMIN_EMAIL"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(cfg)
			err := cfg.Validate()
			if tc.want == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestAppConfig(t *testing.T) {
	app := AppConfig{Host: "127.0.0.1", Port: "9000", RequestTimeoutSeconds: 5}
	assert.Equal(t, "127.0.0.1:9000", app.Addr())
	assert.Equal(t, 5*time.Second, app.RequestTimeout())

	app.RequestTimeoutSeconds = 0
	assert.Zero(t, app.RequestTimeout())
}

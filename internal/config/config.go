package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const defaultSessionSecret = "dev-secret"

// Config aggregates runtime configuration for the service.
type Config struct {
	App      AppConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Logger   LoggerConfig
	Auth     AuthConfig
	Mail     MailConfig
	Admin    AdminConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level  string
	Format string
}

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	SessionSecret              string
	SessionLifetimeHours       int
	SessionRenewalWindowHours  int
	PasswordAlgorithm          string
	BcryptCost                 int
	VerificationCodeTTLMinutes int
	VerificationMaxAttempts    int
	CodeResendCooldownSeconds  int
	CookieName                 string
	CookieSecure               bool
}

// MailConfig selects and configures the mail-delivery provider.
type MailConfig struct {
	Provider       string
	From           string
	ResendAPIKey   string
	TimeoutSeconds int
	MaxRetries     int
}

// AdminConfig optionally bootstraps an administrator account.
type AdminConfig struct {
	Email    string
	Password string
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	env := getEnv("APP_ENV", "development")

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "bookshelf-auth"),
			Env:                   env,
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: strings.ToLower(getEnv("LOG_FORMAT", "json")),
		},
		Auth: AuthConfig{
			SessionSecret:              getEnv("AUTH_SESSION_SECRET", defaultSessionSecret),
			SessionLifetimeHours:       getEnvAsInt("AUTH_SESSION_LIFETIME_HOURS", 30*24),
			SessionRenewalWindowHours:  getEnvAsInt("AUTH_SESSION_RENEWAL_WINDOW_HOURS", 24),
			PasswordAlgorithm:          strings.ToLower(getEnv("AUTH_PASSWORD_ALGORITHM", "bcrypt")),
			BcryptCost:                 getEnvAsInt("AUTH_BCRYPT_COST", 12),
			VerificationCodeTTLMinutes: getEnvAsInt("AUTH_VERIFICATION_CODE_TTL_MINUTES", 10),
			VerificationMaxAttempts:    getEnvAsInt("AUTH_VERIFICATION_MAX_ATTEMPTS", 5),
			CodeResendCooldownSeconds:  getEnvAsInt("AUTH_CODE_RESEND_COOLDOWN_SECONDS", 60),
			CookieName:                 getEnv("AUTH_COOKIE_NAME", "session_token"),
			CookieSecure:               getEnvAsBool("AUTH_COOKIE_SECURE", env == "production"),
		},
		Mail: MailConfig{
			Provider:       strings.ToLower(getEnv("MAIL_PROVIDER", "log")),
			From:           getEnv("MAIL_FROM", "onboarding@resend.dev"),
			ResendAPIKey:   os.Getenv("MAIL_RESEND_API_KEY"),
			TimeoutSeconds: getEnvAsInt("MAIL_TIMEOUT_SECONDS", 10),
			MaxRetries:     getEnvAsInt("MAIL_MAX_RETRIES", 1),
		},
		Admin: AdminConfig{
			Email:    os.Getenv("ADMIN_EMAIL"),
			Password: os.Getenv("ADMIN_PASSWORD"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the service cannot run safely with.
func (c *Config) Validate() error {
	var errs []error

	if c.App.Env == "production" && (c.Auth.SessionSecret == "" || c.Auth.SessionSecret == defaultSessionSecret) {
		errs = append(errs, errors.New("AUTH_SESSION_SECRET must be set in production"))
	}
	if c.Auth.SessionSecret == "" {
		errs = append(errs, errors.New("AUTH_SESSION_SECRET must not be empty"))
	}
	if c.Auth.SessionLifetimeHours <= 0 {
		errs = append(errs, errors.New("AUTH_SESSION_LIFETIME_HOURS must be positive"))
	}
	if c.Auth.SessionRenewalWindowHours <= 0 || c.Auth.SessionRenewalWindowHours >= c.Auth.SessionLifetimeHours {
		errs = append(errs, errors.New("AUTH_SESSION_RENEWAL_WINDOW_HOURS must be positive and shorter than the session lifetime"))
	}
	if c.Auth.VerificationCodeTTLMinutes <= 0 {
		errs = append(errs, errors.New("AUTH_VERIFICATION_CODE_TTL_MINUTES must be positive"))
	}
	switch c.Auth.PasswordAlgorithm {
	case "bcrypt", "argon2id":
	default:
		errs = append(errs, fmt.Errorf("unknown AUTH_PASSWORD_ALGORITHM %q", c.Auth.PasswordAlgorithm))
	}
	switch c.Mail.Provider {
	case "log":
	case "resend":
		if c.Mail.ResendAPIKey == "" {
			errs = append(errs, errors.New("MAIL_RESEND_API_KEY is required for the resend provider"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown MAIL_PROVIDER %q", c.Mail.Provider))
	}
	switch c.Logger.Format {
	case "", "json", "console":
	default:
		errs = append(errs, fmt.Errorf("unknown LOG_FORMAT %q", c.Logger.Format))
	}
	if c.Mail.TimeoutSeconds <= 0 {
		errs = append(errs, errors.New("MAIL_TIMEOUT_SECONDS must be positive"))
	}
	if (c.Admin.Email == "") != (c.Admin.Password == "") {
		errs = append(errs, errors.New("ADMIN_EMAIL and ADMIN_PASSWORD must be set together"))
	}

	return errors.Join(errs...)
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// SessionLifetime returns the lifetime of a freshly issued session token.
func (a AuthConfig) SessionLifetime() time.Duration {
	return time.Duration(a.SessionLifetimeHours) * time.Hour
}

// RenewalWindow returns the trailing period in which tokens are re-issued.
func (a AuthConfig) RenewalWindow() time.Duration {
	return time.Duration(a.SessionRenewalWindowHours) * time.Hour
}

// VerificationCodeTTL returns how long an issued code stays valid.
func (a AuthConfig) VerificationCodeTTL() time.Duration {
	return time.Duration(a.VerificationCodeTTLMinutes) * time.Minute
}

// ResendCooldown returns the minimum spacing between two code requests.
func (a AuthConfig) ResendCooldown() time.Duration {
	if a.CodeResendCooldownSeconds <= 0 {
		return 0
	}
	return time.Duration(a.CodeResendCooldownSeconds) * time.Second
}

// Timeout returns the per-attempt delivery bound.
func (m MailConfig) Timeout() time.Duration {
	return time.Duration(m.TimeoutSeconds) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}

// Package config provides application configuration management.
// Configuration is loaded from environment variables following 12-factor principles,
// optionally seeded from a local .env file.
package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Posture is the deployment mode gating security-sensitive defaults.
type Posture string

// Supported postures.
const (
	PostureProduction  Posture = "production"
	PostureDevelopment Posture = "development"
	PostureTest        Posture = "test"
)

// Valid reports whether p is a known posture.
func (p Posture) Valid() bool {
	switch p {
	case PostureProduction, PostureDevelopment, PostureTest:
		return true
	}
	return false
}

// Rate limit store backends.
const (
	RateLimitStoreMemory = "memory"
	RateLimitStoreRedis  = "redis"
)

var (
	// ErrInvalidPosture indicates APP_ENV holds an unknown value.
	ErrInvalidPosture = errors.New("APP_ENV must be one of production, development, test")
	// ErrMissingDatabase indicates no database connection settings were provided.
	ErrMissingDatabase = errors.New("DATABASE_URL or DB_HOST, DB_USER and DB_NAME must be set")
	// ErrRedisRequired indicates the redis rate limit store was selected without REDIS_URL.
	ErrRedisRequired = errors.New("REDIS_URL is required when RATE_LIMIT_STORE=redis")
)

// Config holds all application configuration.
// All fields are populated from environment variables.
type Config struct {
	// Application settings
	AppEnv Posture `env:"APP_ENV" envDefault:"development"`
	Port   int     `env:"PORT" envDefault:"3001"`

	// Database (PostgreSQL). DATABASE_URL wins over the discrete DB_* settings.
	DatabaseURL      string        `env:"DATABASE_URL"`
	DBHost           string        `env:"DB_HOST"`
	DBUser           string        `env:"DB_USER"`
	DBPassword       string        `env:"DB_PASSWORD"`
	DBName           string        `env:"DB_NAME"`
	DBPort           int           `env:"DB_PORT" envDefault:"5432"`
	DBMaxConns       int32         `env:"DB_MAX_CONNS" envDefault:"20"`
	DBAcquireTimeout time.Duration `env:"DB_ACQUIRE_TIMEOUT" envDefault:"2s"`
	DBIdleTimeout    time.Duration `env:"DB_IDLE_TIMEOUT" envDefault:"30s"`

	// Cache (Redis), optional
	RedisURL string `env:"REDIS_URL"`

	// Token signing
	JWTSecret string `env:"JWT_SECRET"`

	// Password hashing
	PasswordHashAlgorithm string `env:"PASSWORD_HASH_ALGORITHM" envDefault:"bcrypt"`
	BcryptCost            int    `env:"BCRYPT_COST" envDefault:"12"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Server timeouts
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"10s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`

	// Rate limiting
	RateLimitStore string `env:"RATE_LIMIT_STORE" envDefault:"memory"`

	// TrustProxy keys clients on X-Forwarded-For / X-Real-IP instead of the
	// socket address. Enable only behind a proxy that overwrites those headers.
	TrustProxy bool `env:"TRUST_PROXY" envDefault:"false"`

	// CORS configuration
	// Comma-separated list of allowed origins, "*" allows any origin.
	CORSAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*"`

	// Request body size limit in bytes (default 1MB)
	MaxRequestBodySize int64 `env:"MAX_REQUEST_BODY_SIZE" envDefault:"1048576"`
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == PostureDevelopment
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == PostureProduction
}

// IsTest returns true if running under the test posture.
func (c *Config) IsTest() bool {
	return c.AppEnv == PostureTest
}

// GetCORSAllowedOrigins parses the comma-separated origins string into a slice.
func (c *Config) GetCORSAllowedOrigins() []string {
	if c.CORSAllowedOrigins == "" {
		return nil
	}

	origins := strings.Split(c.CORSAllowedOrigins, ",")
	result := make([]string, 0, len(origins))

	for _, origin := range origins {
		trimmed := strings.TrimSpace(origin)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}

// DSN returns the PostgreSQL connection string.
// DATABASE_URL is returned as-is; otherwise a URL is assembled from DB_* settings.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}

	u := &url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(c.DBHost, strconv.Itoa(c.DBPort)),
		Path:   "/" + c.DBName,
	}
	if c.DBPassword != "" {
		u.User = url.UserPassword(c.DBUser, c.DBPassword)
	} else {
		u.User = url.User(c.DBUser)
	}

	return u.String()
}

// Validate checks cross-field constraints env tags cannot express.
func (c *Config) Validate() error {
	if !c.AppEnv.Valid() {
		return fmt.Errorf("%w: got %q", ErrInvalidPosture, c.AppEnv)
	}

	if c.DatabaseURL == "" && (c.DBHost == "" || c.DBUser == "" || c.DBName == "") {
		return ErrMissingDatabase
	}

	switch c.RateLimitStore {
	case RateLimitStoreMemory:
	case RateLimitStoreRedis:
		if c.RedisURL == "" {
			return ErrRedisRequired
		}
	default:
		return fmt.Errorf("RATE_LIMIT_STORE must be memory or redis, got %q", c.RateLimitStore)
	}

	if c.DBMaxConns < 1 {
		return fmt.Errorf("DB_MAX_CONNS must be positive, got %d", c.DBMaxConns)
	}

	return nil
}

// Load reads an optional .env file, parses environment variables and returns a Config.
// Returns an error if required variables are missing or invalid.
func Load() (*Config, error) {
	// A missing .env file is normal outside local development.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

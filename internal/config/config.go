// Package config loads service configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config is the full service configuration. Values come from CENTAVO_*
// environment variables.
type Config struct {
	App         AppConfig
	Database    DatabaseConfig
	JWT         JWTConfig
	Optimus     OptimusConfig
	Skynet      SkynetConfig
	Idempotency IdempotencyConfig
}

// AppConfig holds process-level settings.
type AppConfig struct {
	Env      string `envconfig:"APP_ENV" default:"development"`
	Port     string `envconfig:"APP_PORT" default:"8080"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	URL      string `envconfig:"DATABASE_URL" required:"true"`
	MaxConns int32  `envconfig:"DATABASE_MAX_CONNS" default:"25"`
	MinConns int32  `envconfig:"DATABASE_MIN_CONNS" default:"5"`
}

// JWTConfig holds token validation settings. Tokens are issued by the
// identity service; this process only validates them.
type JWTConfig struct {
	Secret string        `envconfig:"JWT_SECRET" required:"true"`
	Issuer string        `envconfig:"JWT_ISSUER" default:"centavo"`
	TTL    time.Duration `envconfig:"JWT_ACCESS_TTL" default:"15m"`
}

// OptimusConfig holds Optimus courier API settings. WebhookKeyHash is the
// bcrypt hash of the shared key Optimus sends on status pushes.
type OptimusConfig struct {
	BaseURL        string        `envconfig:"OPTIMUS_BASE_URL"`
	APIKey         string        `envconfig:"OPTIMUS_API_KEY"`
	Timeout        time.Duration `envconfig:"OPTIMUS_TIMEOUT" default:"10s"`
	WebhookKeyHash string        `envconfig:"OPTIMUS_WEBHOOK_KEY_HASH"`
}

// SkynetConfig holds Skynet courier API settings.
type SkynetConfig struct {
	BaseURL        string        `envconfig:"SKYNET_BASE_URL"`
	ClientID       string        `envconfig:"SKYNET_CLIENT_ID"`
	Secret         string        `envconfig:"SKYNET_SECRET"`
	Timeout        time.Duration `envconfig:"SKYNET_TIMEOUT" default:"10s"`
	WebhookKeyHash string        `envconfig:"SKYNET_WEBHOOK_KEY_HASH"`
}

// IdempotencyConfig controls the duplicate-request guard on mutating
// endpoints.
type IdempotencyConfig struct {
	Enabled bool          `envconfig:"IDEMPOTENCY_ENABLED" default:"false"`
	TTL     time.Duration `envconfig:"IDEMPOTENCY_TTL" default:"10m"`
}

// Load reads configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("centavo", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return &cfg, nil
}

// IsDevelopment reports whether the process runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.App.Env == "development"
}

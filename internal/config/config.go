// Package config handles application configuration from environment variables
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds all application configuration
type Config struct {
	Env  string `env:"APP_ENV" envDefault:"development"`
	Port string `env:"PORT" envDefault:"3001"`

	DatabaseURL string `env:"DATABASE_URL"`

	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`

	// AuthSecret signs and verifies bearer tokens.
	AuthSecret string `env:"AUTH_SECRET"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogPretty bool   `env:"LOG_PRETTY" envDefault:"false"`

	SMTPAddr  string `env:"SMTP_ADDR" envDefault:"localhost:1025"`
	EmailFrom string `env:"EMAIL_FROM" envDefault:"no-reply@minibnb.local"`

	Cache CacheConfig
}

// CacheConfig holds per-route response cache TTLs.
type CacheConfig struct {
	ListingsTTL     time.Duration `env:"CACHE_LISTINGS_TTL" envDefault:"5m"`
	ListingTTL      time.Duration `env:"CACHE_LISTING_TTL" envDefault:"1h"`
	AvailabilityTTL time.Duration `env:"CACHE_AVAILABILITY_TTL" envDefault:"5m"`
}

// Load reads configuration from environment variables
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// Validate ensures the settings a running server cannot do without are set.
func (c Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.AuthSecret == "" {
		return fmt.Errorf("AUTH_SECRET is required")
	}
	return nil
}

// IsDevelopment returns true outside of production deployments.
func (c Config) IsDevelopment() bool {
	return c.Env != "production"
}

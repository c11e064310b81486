// Package config loads server configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the full server configuration, populated from GRIDLOCK_*
// environment variables
type Config struct {
	// Host is the listen address (empty means all interfaces)
	Host string `env:"GRIDLOCK_HOST"`
	// Port is the listen port
	Port int `env:"GRIDLOCK_PORT" envDefault:"8080"`

	// Storage selects the backend: "memory" or "redis"
	Storage string `env:"GRIDLOCK_STORAGE" envDefault:"memory"`
	// RedisURL is the Redis connection URL (required for redis storage)
	RedisURL string `env:"GRIDLOCK_REDIS_URL" envDefault:"redis://localhost:6379"`

	// TokenSecret signs auth tokens; required
	TokenSecret string `env:"GRIDLOCK_TOKEN_SECRET"`
	// TokenTTL is how long issued tokens stay valid
	TokenTTL time.Duration `env:"GRIDLOCK_TOKEN_TTL" envDefault:"24h"`

	// LogLevel is the minimum level to log: debug, info, warn, error
	LogLevel string `env:"GRIDLOCK_LOG_LEVEL" envDefault:"info"`
}

// Load reads configuration from the environment
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	if cfg.TokenSecret == "" {
		return Config{}, errors.New("GRIDLOCK_TOKEN_SECRET is required")
	}
	return cfg, nil
}

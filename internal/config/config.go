// Package config loads server settings from the environment.
package config

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config carries everything the server needs at startup. DatabaseURL and
// RedisAddr are optional: without them the server runs on the seeded
// in-memory store with caching disabled, which is the dev/demo mode.
type Config struct {
	Port          int    `env:"PORT" envDefault:"8080"`
	AllowedOrigin string `env:"ALLOWED_ORIGIN" envDefault:"*"`

	DatabaseURL string `env:"DATABASE_URL"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	AuthSecret        string `env:"AUTH_SECRET" envDefault:"shop-monitor-dev-secret"`
	AccessTokenTTLMin int    `env:"ACCESS_TOKEN_TTL_MINUTES" envDefault:"480"`

	AnalyticsCacheTTLSec int `env:"ANALYTICS_CACHE_TTL_SECONDS" envDefault:"30"`
}

func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return Config{}, fmt.Errorf("invalid PORT %d", cfg.Port)
	}
	return cfg, nil
}

func (c Config) Address() string {
	return net.JoinHostPort("", strconv.Itoa(c.Port))
}

func (c Config) AccessTokenTTL() time.Duration {
	return time.Duration(c.AccessTokenTTLMin) * time.Minute
}

func (c Config) AnalyticsCacheTTL() time.Duration {
	return time.Duration(c.AnalyticsCacheTTLSec) * time.Second
}

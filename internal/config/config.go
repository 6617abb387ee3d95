// Package config loads application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"time"
)

// Default seed credential. The credential store is in-memory and re-seeded
// on every start; override via env for anything beyond local use.
const (
	defaultAdminUser     = "admin"
	defaultAdminPassword = "khatabook"
)

// Config holds runtime configuration sourced from env vars.
type Config struct {
	ListenAddr    string
	DBPath        string
	SessionTTL    time.Duration
	AdminUser     string
	AdminPassword string
}

// UsesDefaultPassword reports whether the seed credential is still the
// built-in default, so startup can log a warning.
func (c *Config) UsesDefaultPassword() bool {
	return c.AdminPassword == defaultAdminPassword
}

// Load reads configuration from the environment and returns a validated
// Config. Optional variables with defaults: KHATABOOK_LISTEN_ADDR
// (127.0.0.1:8080), KHATABOOK_DB_PATH (./data/khatabook.db),
// KHATABOOK_SESSION_TTL (168h), KHATABOOK_ADMIN_USER, KHATABOOK_ADMIN_PASSWORD.
func Load() (*Config, error) {
	cfg := &Config{
		ListenAddr:    fallback(os.Getenv("KHATABOOK_LISTEN_ADDR"), "127.0.0.1:8080"),
		DBPath:        fallback(os.Getenv("KHATABOOK_DB_PATH"), "./data/khatabook.db"),
		AdminUser:     fallback(os.Getenv("KHATABOOK_ADMIN_USER"), defaultAdminUser),
		AdminPassword: fallback(os.Getenv("KHATABOOK_ADMIN_PASSWORD"), defaultAdminPassword),
	}

	cfg.SessionTTL = 7 * 24 * time.Hour
	if v, ok := os.LookupEnv("KHATABOOK_SESSION_TTL"); ok {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("KHATABOOK_SESSION_TTL has invalid duration %q: %w", v, err)
		}
		if ttl <= 0 {
			return nil, fmt.Errorf("KHATABOOK_SESSION_TTL must be positive, got %q", v)
		}
		cfg.SessionTTL = ttl
	}

	return cfg, nil
}

func fallback(value, def string) string {
	if value == "" {
		return def
	}
	return value
}

// Package config loads runtime settings from the environment.
package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Environment names
const (
	EnvDev  = "dev"
	EnvProd = "prod"
)

type Config struct {
	Env      string // dev|prod
	HTTPAddr string
	DBPath   string
	LogLevel string
	BaseURL  string

	SentryDSN string
	Release   string

	CSRFKey          []byte
	ResetTokenSecret []byte

	RedisURL     string
	ResendAPIKey string
	EmailFrom    string
	EmailReplyTo string

	SeedSuperadminEmail    string
	SeedSuperadminPassword string

	SlowQuery          time.Duration
	SlowRequest        time.Duration
	RateLimitPerSecond int
}

// IsProd reports whether the service runs in production mode.
func (c *Config) IsProd() bool { return c.Env == EnvProd }

// Load reads an optional .env file and then the process environment.
// PRE: none
// POST: returns a Config with defaults applied; in prod, missing secrets are an error
func Load() (*Config, error) {
	// A missing .env file is normal outside local development.
	_ = godotenv.Load()
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a lookup function.
func FromEnv(lookup func(string) string) (*Config, error) {
	get := func(k, def string) string {
		if v := strings.TrimSpace(lookup(k)); v != "" {
			return v
		}
		return def
	}

	cfg := &Config{
		Env:                    strings.ToLower(get("APP_ENV", EnvDev)),
		HTTPAddr:               get("HTTP_ADDR", ":8080"),
		DBPath:                 get("DB_PATH", "cadetportal.db"),
		LogLevel:               get("LOG_LEVEL", "info"),
		BaseURL:                strings.TrimRight(get("BASE_URL", "http://localhost:8080"), "/"),
		SentryDSN:              lookup("SENTRY_DSN"),
		Release:                get("RELEASE", "dev"),
		RedisURL:               lookup("REDIS_URL"),
		ResendAPIKey:           lookup("RESEND_API_KEY"),
		EmailFrom:              get("EMAIL_FROM", "Cadet Portal <noreply@localhost>"),
		EmailReplyTo:           lookup("EMAIL_REPLY_TO"),
		SeedSuperadminEmail:    lookup("SEED_SUPERADMIN_EMAIL"),
		SeedSuperadminPassword: lookup("SEED_SUPERADMIN_PASSWORD"),
	}
	if cfg.Env != EnvDev && cfg.Env != EnvProd {
		return nil, fmt.Errorf("APP_ENV: unknown environment %q", cfg.Env)
	}

	var err error
	if cfg.SlowQuery, err = millis(get("SLOW_QUERY_MS", "50")); err != nil {
		return nil, fmt.Errorf("SLOW_QUERY_MS: %w", err)
	}
	if cfg.SlowRequest, err = millis(get("SLOW_REQUEST_MS", "200")); err != nil {
		return nil, fmt.Errorf("SLOW_REQUEST_MS: %w", err)
	}
	if cfg.RateLimitPerSecond, err = strconv.Atoi(get("RATE_LIMIT_PER_SECOND", "20")); err != nil {
		return nil, fmt.Errorf("RATE_LIMIT_PER_SECOND: %w", err)
	}

	if cfg.CSRFKey, err = csrfKey(lookup("CSRF_KEY"), cfg.IsProd()); err != nil {
		return nil, fmt.Errorf("CSRF_KEY: %w", err)
	}

	secret := lookup("RESET_TOKEN_SECRET")
	if secret == "" {
		if cfg.IsProd() {
			return nil, errors.New("RESET_TOKEN_SECRET: required in prod")
		}
		secret = "dev-reset-secret-change-me"
	}
	cfg.ResetTokenSecret = []byte(secret)

	return cfg, nil
}

func millis(s string) (time.Duration, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, fmt.Errorf("must be non-negative, got %d", n)
	}
	return time.Duration(n) * time.Millisecond, nil
}

func csrfKey(raw string, prod bool) ([]byte, error) {
	if raw == "" {
		if prod {
			return nil, errors.New("required in prod")
		}
		return []byte(strings.Repeat("d", 32)), nil
	}
	key, err := hex.DecodeString(raw)
	if err != nil {
		return nil, fmt.Errorf("must be hex: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("must decode to 32 bytes, got %d", len(key))
	}
	return key, nil
}

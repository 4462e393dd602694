// Package config loads application configuration from an optional TOML file
// and environment variables.
package config

import (
	"encoding/hex"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// Default endpoint URLs of the dashboard API.
const (
	DefaultSigninURL  = "https://learn.reboot01.com/api/auth/signin"
	DefaultGraphQLURL = "https://learn.reboot01.com/api/graphql-engine/v1/graphql"
)

// Config holds the application configuration.
type Config struct {
	ListenAddr       string
	DBPath           string
	SigninURL        string
	GraphQLURL       string
	SecretKey        []byte // 32-byte AES-256 key; nil when not configured.
	ActivityThrottle time.Duration
	LoginNotice      string // Markdown shown on the login page.

	// HealthcheckTimeout bounds the cmd/healthcheck probe.
	HealthcheckTimeout time.Duration
}

// fileConfig mirrors the TOML file layout. Empty fields leave defaults alone.
type fileConfig struct {
	ListenAddr       string `toml:"listen_addr"`
	DBPath           string `toml:"db_path"`
	SigninURL        string `toml:"signin_url"`
	GraphQLURL       string `toml:"graphql_url"`
	SecretKey        string `toml:"secret_key"`
	ActivityThrottle string `toml:"activity_throttle"`
	LoginNotice      string `toml:"login_notice"`

	HealthcheckTimeout string `toml:"healthcheck_timeout"`
}

// HasSecretKey returns true when credential sealing is enabled.
func (c *Config) HasSecretKey() bool {
	return c.SecretKey != nil
}

// Load builds a Config from defaults, then the TOML file named by
// STATPANEL_CONFIG (if set), then environment variables. Later sources win.
// Recognized variables: STATPANEL_LISTEN_ADDR (127.0.0.1:8080),
// STATPANEL_DB_PATH (statpanel.db), STATPANEL_SIGNIN_URL, STATPANEL_GRAPHQL_URL,
// STATPANEL_SECRET_KEY (64 hex chars, optional), STATPANEL_ACTIVITY_THROTTLE
// (1s), STATPANEL_LOGIN_NOTICE and STATPANEL_HEALTHCHECK_TIMEOUT (2s).
func Load() (*Config, error) {
	fc := fileConfig{
		ListenAddr:       "127.0.0.1:8080",
		DBPath:           "statpanel.db",
		SigninURL:        DefaultSigninURL,
		GraphQLURL:       DefaultGraphQLURL,
		ActivityThrottle: "1s",

		HealthcheckTimeout: "2s",
	}

	if path, ok := os.LookupEnv("STATPANEL_CONFIG"); ok && path != "" {
		if _, err := toml.DecodeFile(path, &fc); err != nil {
			return nil, fmt.Errorf("STATPANEL_CONFIG file %q: %w", path, err)
		}
	}

	overrideFromEnv(&fc.ListenAddr, "STATPANEL_LISTEN_ADDR")
	overrideFromEnv(&fc.DBPath, "STATPANEL_DB_PATH")
	overrideFromEnv(&fc.SigninURL, "STATPANEL_SIGNIN_URL")
	overrideFromEnv(&fc.GraphQLURL, "STATPANEL_GRAPHQL_URL")
	overrideFromEnv(&fc.SecretKey, "STATPANEL_SECRET_KEY")
	overrideFromEnv(&fc.ActivityThrottle, "STATPANEL_ACTIVITY_THROTTLE")
	overrideFromEnv(&fc.LoginNotice, "STATPANEL_LOGIN_NOTICE")
	overrideFromEnv(&fc.HealthcheckTimeout, "STATPANEL_HEALTHCHECK_TIMEOUT")

	throttle, err := time.ParseDuration(fc.ActivityThrottle)
	if err != nil {
		return nil, fmt.Errorf("STATPANEL_ACTIVITY_THROTTLE has invalid duration %q: %w", fc.ActivityThrottle, err)
	}
	if throttle < 0 {
		return nil, fmt.Errorf("STATPANEL_ACTIVITY_THROTTLE must not be negative, got %s", throttle)
	}

	healthTimeout, err := time.ParseDuration(fc.HealthcheckTimeout)
	if err != nil {
		return nil, fmt.Errorf("STATPANEL_HEALTHCHECK_TIMEOUT has invalid duration %q: %w", fc.HealthcheckTimeout, err)
	}
	if healthTimeout <= 0 {
		return nil, fmt.Errorf("STATPANEL_HEALTHCHECK_TIMEOUT must be positive, got %s", healthTimeout)
	}

	var secretKey []byte
	if fc.SecretKey != "" {
		secretKey, err = hex.DecodeString(fc.SecretKey)
		if err != nil {
			return nil, fmt.Errorf("STATPANEL_SECRET_KEY is not valid hex: %w", err)
		}
		if len(secretKey) != 32 {
			return nil, fmt.Errorf("STATPANEL_SECRET_KEY must be 64 hex chars (32 bytes), got %d bytes", len(secretKey))
		}
	}

	return &Config{
		ListenAddr:       fc.ListenAddr,
		DBPath:           fc.DBPath,
		SigninURL:        fc.SigninURL,
		GraphQLURL:       fc.GraphQLURL,
		SecretKey:        secretKey,
		ActivityThrottle: throttle,
		LoginNotice:      fc.LoginNotice,

		HealthcheckTimeout: healthTimeout,
	}, nil
}

func overrideFromEnv(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok {
		*dst = v
	}
}

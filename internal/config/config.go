// Copyright (c) 2026 Denis Korolev
// SPDX-License-Identifier: MIT

// Package config loads application configuration from environment variables.
package config

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// knownWeakSecrets contains default/example secrets that must be rejected.
var knownWeakSecrets = []string{
	"change-me-to-32-byte-secret-key!",
	"REPLACE_WITH_YOUR_OWN_SECRET_KEY!",
}

// MinSessionSecretLength is the minimum required length for the session
// secret used as the CSRF authentication key.
const MinSessionSecretLength = 32

// Config holds the application configuration loaded from environment variables.
type Config struct {
	ServerHost    string `env:"PACKSHELF_SERVER_HOST" envDefault:"localhost"`
	ServerPort    int    `env:"PACKSHELF_SERVER_PORT" envDefault:"8080"`
	DataDir       string `env:"PACKSHELF_DATA_DIR" envDefault:"./data"`
	DBFile        string `env:"PACKSHELF_DB_FILE" envDefault:"packshelf.db"`
	SessionSecret string `env:"PACKSHELF_SESSION_SECRET,required"`
	Env           string `env:"PACKSHELF_ENV" envDefault:"development"`
	LogLevel      string `env:"PACKSHELF_LOG_LEVEL" envDefault:"info"`

	// Session configuration
	SessionTTL time.Duration `env:"PACKSHELF_SESSION_TTL" envDefault:"168h"` // 7 days

	// Admin credential configuration
	AdminUsername        string `env:"PACKSHELF_ADMIN_USERNAME" envDefault:"admin"`
	AdminDefaultPassword string `env:"PACKSHELF_ADMIN_DEFAULT_PASSWORD" envDefault:"changeme"`
	MinPasswordLength    int    `env:"PACKSHELF_MIN_PASSWORD_LENGTH" envDefault:"10"`

	// Branding overrides for the public gallery
	SiteName    string `env:"PACKSHELF_SITE_NAME" envDefault:"Packshelf"`
	SiteTagline string `env:"PACKSHELF_SITE_TAGLINE" envDefault:"Curated download packs"`
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// DBPath returns the full path of the SQLite database file.
func (c Config) DBPath() string {
	return filepath.Join(c.DataDir, c.DBFile)
}

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if len(cfg.SessionSecret) < MinSessionSecretLength {
		return nil, fmt.Errorf("PACKSHELF_SESSION_SECRET must be at least %d bytes long, got %d bytes; "+
			"generate a secure secret with: openssl rand -base64 32",
			MinSessionSecretLength, len(cfg.SessionSecret))
	}

	for _, weak := range knownWeakSecrets {
		if cfg.SessionSecret == weak {
			return nil, fmt.Errorf("PACKSHELF_SESSION_SECRET is a known default value and must not be used; " +
				"generate a secure secret with: openssl rand -base64 32")
		}
	}

	if cfg.SessionTTL <= 0 {
		return nil, fmt.Errorf("PACKSHELF_SESSION_TTL must be positive, got %s", cfg.SessionTTL)
	}

	if cfg.MinPasswordLength < 8 {
		slog.Warn("PACKSHELF_MIN_PASSWORD_LENGTH below 8 is not recommended",
			"min_password_length", cfg.MinPasswordLength)
	}

	if !hasMinimumEntropy(cfg.SessionSecret) {
		slog.Warn("PACKSHELF_SESSION_SECRET has low character diversity; " +
			"consider generating a random secret with: openssl rand -base64 32")
	}

	return cfg, nil
}

// hasMinimumEntropy checks that a secret contains at least 3 character classes
// (lowercase, uppercase, digits, special characters).
func hasMinimumEntropy(s string) bool {
	charTypes := 0
	if strings.ContainsAny(s, "abcdefghijklmnopqrstuvwxyz") {
		charTypes++
	}
	if strings.ContainsAny(s, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") {
		charTypes++
	}
	if strings.ContainsAny(s, "0123456789") {
		charTypes++
	}
	if strings.ContainsAny(s, "!@#$%^&*()-_=+[]{}|;:,.<>?/~`'\"\\") {
		charTypes++
	}
	return charTypes >= 3
}

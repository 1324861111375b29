// Copyright (c) 2026 Denis Korolev
// SPDX-License-Identifier: MIT

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "x9K#mP2$vL8@nQ4!wR6&yT0*zU3^aB5%"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PACKSHELF_SESSION_SECRET", testSecret)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.ServerHost)
	assert.Equal(t, 8080, cfg.ServerPort)
	assert.Equal(t, "localhost:8080", cfg.ServerAddr())
	assert.Equal(t, 168*time.Hour, cfg.SessionTTL)
	assert.Equal(t, "admin", cfg.AdminUsername)
	assert.Equal(t, 10, cfg.MinPasswordLength)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoadMissingSecret(t *testing.T) {
	t.Setenv("PACKSHELF_SESSION_SECRET", "")

	_, err := Load()
	require.Error(t, err)
}

func TestLoadShortSecret(t *testing.T) {
	t.Setenv("PACKSHELF_SESSION_SECRET", "too-short")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least 32 bytes")
}

func TestLoadWeakSecretRejected(t *testing.T) {
	t.Setenv("PACKSHELF_SESSION_SECRET", "change-me-to-32-byte-secret-key!")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "known default value")
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PACKSHELF_SESSION_SECRET", testSecret)
	t.Setenv("PACKSHELF_SERVER_PORT", "9090")
	t.Setenv("PACKSHELF_DATA_DIR", "/var/lib/packshelf")
	t.Setenv("PACKSHELF_DB_FILE", "gallery.db")
	t.Setenv("PACKSHELF_SESSION_TTL", "24h")
	t.Setenv("PACKSHELF_ENV", "production")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.ServerPort)
	assert.Equal(t, "/var/lib/packshelf/gallery.db", cfg.DBPath())
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.False(t, cfg.IsDevelopment())
}

func TestLoadInvalidTTL(t *testing.T) {
	t.Setenv("PACKSHELF_SESSION_SECRET", testSecret)
	t.Setenv("PACKSHELF_SESSION_TTL", "-1h")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PACKSHELF_SESSION_TTL")
}

// Copyright (c) 2026 Denis Korolev
// SPDX-License-Identifier: MIT

package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dkorolev/packshelf/internal/store"
)

// Credential errors surfaced to handlers.
var (
	// ErrInvalidCredentials covers both unknown usernames and bad passwords
	// so callers cannot distinguish the two.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrPasswordTooShort is returned when a new password fails the
	// minimum-length policy.
	ErrPasswordTooShort = errors.New("password too short")
)

// Manager owns the single administrative credential record.
type Manager struct {
	queries     *store.Queries
	username    string
	minPassword int
}

// NewManager creates a credential manager for the configured admin username.
func NewManager(db *sql.DB, username string, minPasswordLength int) *Manager {
	return &Manager{
		queries:     store.New(db),
		username:    username,
		minPassword: minPasswordLength,
	}
}

// Username returns the configured admin username.
func (m *Manager) Username() string {
	return m.username
}

// MinPasswordLength returns the minimum accepted password length.
func (m *Manager) MinPasswordLength() int {
	return m.minPassword
}

// Reconcile purges credential records stored under any username other than
// the configured one. Run once at startup so the single-admin invariant
// holds after configuration changes.
func (m *Manager) Reconcile(ctx context.Context) error {
	purged, err := m.queries.DeleteCredentialsExcept(ctx, m.username)
	if err != nil {
		return fmt.Errorf("purging stale credentials: %w", err)
	}
	if purged > 0 {
		slog.Info("purged stale admin credentials", "count", purged, "kept", m.username)
	}
	return nil
}

// EnsureBootstrap makes sure a credential record exists. A missing record is
// created from the default password with rotation required. An existing
// record that still matches the default password is re-flagged as requiring
// rotation in case the flag drifted.
func (m *Manager) EnsureBootstrap(ctx context.Context, defaultPassword string) error {
	cred, err := m.queries.GetCredential(ctx, m.username)
	if errors.Is(err, sql.ErrNoRows) {
		hash, salt, err := DeriveHash(defaultPassword, "")
		if err != nil {
			return fmt.Errorf("deriving bootstrap hash: %w", err)
		}
		if err := m.queries.UpsertCredential(ctx, store.UpsertCredentialParams{
			Username:           m.username,
			PasswordHash:       hash,
			Salt:               salt,
			MustChangePassword: true,
			UpdatedAt:          time.Now(),
		}); err != nil {
			return fmt.Errorf("creating bootstrap credential: %w", err)
		}
		slog.Warn("created admin credential from default password; change it after first login",
			"username", m.username)
		return nil
	}
	if err != nil {
		return fmt.Errorf("loading credential: %w", err)
	}

	// Self-healing: if the stored password still equals the default but the
	// rotation flag was cleared, flag it again.
	if !cred.MustChangePassword && VerifyPassword(defaultPassword, cred.PasswordHash, cred.Salt) {
		if err := m.queries.SetMustChangePassword(ctx, m.username, true, time.Now()); err != nil {
			return fmt.Errorf("re-flagging default credential: %w", err)
		}
		slog.Warn("admin password still matches the default; rotation re-flagged",
			"username", m.username)
	}
	return nil
}

// Authenticate verifies a username/password pair and returns the credential
// record. Unknown usernames and wrong passwords both yield
// ErrInvalidCredentials.
func (m *Manager) Authenticate(ctx context.Context, username, password string) (store.AdminCredential, error) {
	cred, err := m.queries.GetCredential(ctx, username)
	if errors.Is(err, sql.ErrNoRows) {
		return store.AdminCredential{}, ErrInvalidCredentials
	}
	if err != nil {
		return store.AdminCredential{}, fmt.Errorf("loading credential: %w", err)
	}

	if !VerifyPassword(password, cred.PasswordHash, cred.Salt) {
		return store.AdminCredential{}, ErrInvalidCredentials
	}
	return cred, nil
}

// ChangePassword verifies the current password, applies the minimum-length
// policy to the new one, and stores the new hash with rotation cleared.
func (m *Manager) ChangePassword(ctx context.Context, current, next string) error {
	if _, err := m.Authenticate(ctx, m.username, current); err != nil {
		return err
	}

	if len(next) < m.minPassword {
		return fmt.Errorf("%w: minimum %d characters", ErrPasswordTooShort, m.minPassword)
	}

	hash, salt, err := DeriveHash(next, "")
	if err != nil {
		return fmt.Errorf("deriving hash: %w", err)
	}

	if err := m.queries.UpsertCredential(ctx, store.UpsertCredentialParams{
		Username:           m.username,
		PasswordHash:       hash,
		Salt:               salt,
		MustChangePassword: false,
		UpdatedAt:          time.Now(),
	}); err != nil {
		return fmt.Errorf("storing new credential: %w", err)
	}

	slog.Info("admin password changed", "username", m.username)
	return nil
}

// MustChangePassword reports whether the admin credential is still flagged
// for rotation.
func (m *Manager) MustChangePassword(ctx context.Context) (bool, error) {
	cred, err := m.queries.GetCredential(ctx, m.username)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return cred.MustChangePassword, nil
}

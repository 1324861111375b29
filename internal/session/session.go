// Copyright (c) 2026 Denis Korolev
// SPDX-License-Identifier: MIT

// Package session issues, validates, and revokes opaque server-side session
// tokens backed by the persistence store.
package session

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dkorolev/packshelf/internal/store"
)

// TokenBytes is the entropy of a session token. 32 bytes is well above the
// 128-bit floor for unguessable identifiers.
const TokenBytes = 32

// DefaultTTL is the session lifetime when none is configured.
const DefaultTTL = 7 * 24 * time.Hour

// ErrNotFound is returned by Lookup for missing or expired sessions.
var ErrNotFound = errors.New("session not found")

// Store is the narrow persistence interface the manager needs. Satisfied by
// *store.Queries; kept small so the access gate can be tested without a real
// HTTP stack or database.
type Store interface {
	CreateSession(ctx context.Context, arg store.CreateSessionParams) error
	GetSessionByID(ctx context.Context, id string) (store.Session, error)
	DeleteSession(ctx context.Context, id string) error
	DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error)
	ListSessions(ctx context.Context) ([]store.Session, error)
}

// Manager issues and validates session tokens.
type Manager struct {
	store Store
	ttl   time.Duration

	// now is swappable in tests.
	now func() time.Time
}

// New creates a session manager with the given TTL. A non-positive TTL falls
// back to DefaultTTL.
func New(s Store, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Manager{store: s, ttl: ttl, now: time.Now}
}

// TTL returns the configured session lifetime.
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Create generates a cryptographically random token, persists the session
// record with the client IP and user agent for audit, and returns it.
func (m *Manager) Create(ctx context.Context, ipAddress, userAgent string) (store.Session, error) {
	buf := make([]byte, TokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return store.Session{}, fmt.Errorf("generating session token: %w", err)
	}

	now := m.now()
	rec := store.CreateSessionParams{
		ID:        hex.EncodeToString(buf),
		IPAddress: ipAddress,
		UserAgent: userAgent,
		CreatedAt: now,
		ExpiresAt: now.Add(m.ttl),
	}
	if err := m.store.CreateSession(ctx, rec); err != nil {
		return store.Session{}, fmt.Errorf("persisting session: %w", err)
	}

	return store.Session{
		ID:        rec.ID,
		IPAddress: rec.IPAddress,
		UserAgent: rec.UserAgent,
		CreatedAt: rec.CreatedAt,
		ExpiresAt: rec.ExpiresAt,
	}, nil
}

// Lookup fetches a session by token. An expired record is deleted eagerly
// and reported as ErrNotFound (lazy expiry).
func (m *Manager) Lookup(ctx context.Context, id string) (store.Session, error) {
	if id == "" {
		return store.Session{}, ErrNotFound
	}

	rec, err := m.store.GetSessionByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Session{}, ErrNotFound
	}
	if err != nil {
		return store.Session{}, fmt.Errorf("loading session: %w", err)
	}

	if !rec.ExpiresAt.After(m.now()) {
		if err := m.store.DeleteSession(ctx, id); err != nil {
			slog.Error("failed to delete expired session", "error", err)
		}
		return store.Session{}, ErrNotFound
	}

	return rec, nil
}

// Revoke deletes a session. Revoking a nonexistent token is not an error.
func (m *Manager) Revoke(ctx context.Context, id string) error {
	if err := m.store.DeleteSession(ctx, id); err != nil {
		return fmt.Errorf("revoking session: %w", err)
	}
	return nil
}

// SweepExpired removes all expired session records. Best-effort: failures
// are logged and swallowed so housekeeping never aborts a request.
func (m *Manager) SweepExpired(ctx context.Context) {
	n, err := m.store.DeleteExpiredSessions(ctx, m.now())
	if err != nil {
		slog.Error("session sweep failed", "error", err)
		return
	}
	if n > 0 {
		slog.Debug("swept expired sessions", "count", n)
	}
}

// ListActive returns all non-expired sessions, newest first, for the admin
// dashboard audit view.
func (m *Manager) ListActive(ctx context.Context) ([]store.Session, error) {
	sessions, err := m.store.ListSessions(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}

	now := m.now()
	active := sessions[:0]
	for _, s := range sessions {
		if s.ExpiresAt.After(now) {
			active = append(active, s)
		}
	}
	return active, nil
}

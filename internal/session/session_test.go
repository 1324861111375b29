// Copyright (c) 2026 Denis Korolev
// SPDX-License-Identifier: MIT

package session

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkorolev/packshelf/internal/store"
)

func testManager(t *testing.T, ttl time.Duration) (*Manager, *store.Queries) {
	t.Helper()

	f, err := os.CreateTemp("", "packshelf-session-*.db")
	require.NoError(t, err)
	dbPath := f.Name()
	f.Close()

	db, err := store.NewDB(dbPath)
	require.NoError(t, err)
	require.NoError(t, store.Migrate(db))

	t.Cleanup(func() {
		db.Close()
		os.Remove(dbPath)
	})

	q := store.New(db)
	return New(q, ttl), q
}

func TestCreateAndLookup(t *testing.T) {
	m, _ := testManager(t, time.Hour)
	ctx := context.Background()

	sess, err := m.Create(ctx, "203.0.113.5", "test-agent/1.0")
	require.NoError(t, err)

	// 32 bytes hex-encoded
	assert.Len(t, sess.ID, TokenBytes*2)
	assert.True(t, sess.ExpiresAt.After(time.Now()), "expiry must be in the future at creation")

	found, err := m.Lookup(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, sess.ID, found.ID)
	assert.Equal(t, "203.0.113.5", found.IPAddress)
	assert.Equal(t, "test-agent/1.0", found.UserAgent)
}

func TestCreateUniqueTokens(t *testing.T) {
	m, _ := testManager(t, time.Hour)
	ctx := context.Background()

	seen := make(map[string]bool)
	for range 20 {
		sess, err := m.Create(ctx, "", "")
		require.NoError(t, err)
		assert.False(t, seen[sess.ID], "token repeated")
		seen[sess.ID] = true
	}
}

func TestLookupMissing(t *testing.T) {
	m, _ := testManager(t, time.Hour)

	_, err := m.Lookup(context.Background(), "no-such-token")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = m.Lookup(context.Background(), "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLookupLazyExpiry(t *testing.T) {
	m, q := testManager(t, time.Hour)
	ctx := context.Background()

	sess, err := m.Create(ctx, "", "")
	require.NoError(t, err)

	// Jump the clock past the expiry
	m.now = func() time.Time { return time.Now().Add(2 * time.Hour) }

	_, err = m.Lookup(ctx, sess.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	// The record must be gone from the store, not just hidden
	_, err = q.GetSessionByID(ctx, sess.ID)
	assert.True(t, errors.Is(err, sql.ErrNoRows), "expired session should be deleted eagerly")

	// Repeated lookups stay absent
	_, err = m.Lookup(ctx, sess.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRevokeIdempotent(t *testing.T) {
	m, _ := testManager(t, time.Hour)
	ctx := context.Background()

	sess, err := m.Create(ctx, "", "")
	require.NoError(t, err)

	require.NoError(t, m.Revoke(ctx, sess.ID))
	require.NoError(t, m.Revoke(ctx, sess.ID))
	require.NoError(t, m.Revoke(ctx, "never-existed"))

	_, err = m.Lookup(ctx, sess.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSweepExpired(t *testing.T) {
	m, q := testManager(t, time.Hour)
	ctx := context.Background()

	live, err := m.Create(ctx, "", "")
	require.NoError(t, err)

	require.NoError(t, q.CreateSession(ctx, store.CreateSessionParams{
		ID:        "stale-token",
		CreatedAt: time.Now().Add(-3 * time.Hour),
		ExpiresAt: time.Now().Add(-2 * time.Hour),
	}))

	m.SweepExpired(ctx)

	_, err = q.GetSessionByID(ctx, "stale-token")
	assert.True(t, errors.Is(err, sql.ErrNoRows))

	_, err = m.Lookup(ctx, live.ID)
	assert.NoError(t, err)
}

func TestListActive(t *testing.T) {
	m, q := testManager(t, time.Hour)
	ctx := context.Background()

	sess, err := m.Create(ctx, "198.51.100.7", "agent")
	require.NoError(t, err)

	require.NoError(t, q.CreateSession(ctx, store.CreateSessionParams{
		ID:        "expired-token",
		CreatedAt: time.Now().Add(-3 * time.Hour),
		ExpiresAt: time.Now().Add(-2 * time.Hour),
	}))

	active, err := m.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, sess.ID, active[0].ID)
}

func TestDefaultTTL(t *testing.T) {
	m, _ := testManager(t, 0)
	assert.Equal(t, DefaultTTL, m.TTL())
}

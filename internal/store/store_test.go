// Copyright (c) 2026 Denis Korolev
// SPDX-License-Identifier: MIT

package store

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"testing"
	"time"
)

// testDB creates a temporary test database.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	f, err := os.CreateTemp("", "packshelf-test-*.db")
	if err != nil {
		t.Fatalf("creating temp file: %v", err)
	}
	dbPath := f.Name()
	f.Close()

	db, err := NewDB(dbPath)
	if err != nil {
		os.Remove(dbPath)
		t.Fatalf("NewDB: %v", err)
	}

	if err := Migrate(db); err != nil {
		db.Close()
		os.Remove(dbPath)
		t.Fatalf("Migrate: %v", err)
	}

	t.Cleanup(func() {
		db.Close()
		os.Remove(dbPath)
	})

	return db
}

func createTestVideo(t *testing.T, q *Queries, title, slug string) Video {
	t.Helper()
	now := time.Now()
	v, err := q.CreateVideo(context.Background(), CreateVideoParams{
		Title:     title,
		Slug:      slug,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateVideo: %v", err)
	}
	return v
}

func TestCreateVideo(t *testing.T) {
	q := New(testDB(t))

	v := createTestVideo(t, q, "Intro Pack", "intro-pack")

	if v.ID == 0 {
		t.Error("video.ID should not be 0")
	}
	if v.Title != "Intro Pack" {
		t.Errorf("Title = %q, want %q", v.Title, "Intro Pack")
	}
	if v.Slug != "intro-pack" {
		t.Errorf("Slug = %q, want %q", v.Slug, "intro-pack")
	}
}

func TestCreateVideoDuplicateSlug(t *testing.T) {
	q := New(testDB(t))

	createTestVideo(t, q, "First", "same-slug")

	now := time.Now()
	_, err := q.CreateVideo(context.Background(), CreateVideoParams{
		Title:     "Second",
		Slug:      "same-slug",
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err == nil {
		t.Fatal("expected unique constraint error")
	}
	if !IsUniqueViolation(err) {
		t.Errorf("IsUniqueViolation(%v) = false, want true", err)
	}

	// The first row must remain untouched
	first, err := q.GetVideoBySlug(context.Background(), "same-slug")
	if err != nil {
		t.Fatalf("GetVideoBySlug: %v", err)
	}
	if first.Title != "First" {
		t.Errorf("Title = %q, want %q", first.Title, "First")
	}
}

func TestListVideosNewestFirst(t *testing.T) {
	db := testDB(t)
	q := New(db)
	ctx := context.Background()

	older := time.Now().Add(-time.Hour)
	newer := time.Now()

	if _, err := q.CreateVideo(ctx, CreateVideoParams{Title: "Old", Slug: "old", CreatedAt: older, UpdatedAt: older}); err != nil {
		t.Fatalf("CreateVideo: %v", err)
	}
	if _, err := q.CreateVideo(ctx, CreateVideoParams{Title: "New", Slug: "new", CreatedAt: newer, UpdatedAt: newer}); err != nil {
		t.Fatalf("CreateVideo: %v", err)
	}

	videos, err := q.ListVideos(ctx)
	if err != nil {
		t.Fatalf("ListVideos: %v", err)
	}
	if len(videos) != 2 {
		t.Fatalf("len(videos) = %d, want 2", len(videos))
	}
	if videos[0].Slug != "new" {
		t.Errorf("videos[0].Slug = %q, want %q", videos[0].Slug, "new")
	}
}

func TestUpdateVideoNotFound(t *testing.T) {
	q := New(testDB(t))

	err := q.UpdateVideo(context.Background(), UpdateVideoParams{
		ID:        999,
		Title:     "Ghost",
		Slug:      "ghost",
		UpdatedAt: time.Now(),
	})
	if !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("UpdateVideo error = %v, want sql.ErrNoRows", err)
	}
}

func TestDeleteVideoCascadesAssets(t *testing.T) {
	q := New(testDB(t))
	ctx := context.Background()

	v := createTestVideo(t, q, "With Assets", "with-assets")

	a, err := q.CreateAsset(ctx, CreateAssetParams{
		VideoID:   v.ID,
		Label:     "Source files",
		URL:       "https://example.com/files.zip",
		CreatedAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("CreateAsset: %v", err)
	}

	if err := q.DeleteVideo(ctx, v.ID); err != nil {
		t.Fatalf("DeleteVideo: %v", err)
	}

	if _, err := q.GetAssetByID(ctx, a.ID); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("GetAssetByID after cascade = %v, want sql.ErrNoRows", err)
	}
	assets, err := q.ListAssetsByVideoID(ctx, v.ID)
	if err != nil {
		t.Fatalf("ListAssetsByVideoID: %v", err)
	}
	if len(assets) != 0 {
		t.Errorf("len(assets) = %d, want 0", len(assets))
	}
}

func TestDeleteVideoCascadesOnSecondConnection(t *testing.T) {
	db := testDB(t)
	q := New(db)
	ctx := context.Background()

	v := createTestVideo(t, q, "Pooled", "pooled")
	a, err := q.CreateAsset(ctx, CreateAssetParams{
		VideoID:   v.ID,
		Label:     "Source files",
		URL:       "https://example.com/files.zip",
		CreatedAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("CreateAsset: %v", err)
	}

	// Hold the connection the setup ran on so the statements below are
	// forced onto a freshly opened one.
	pinned, err := db.Conn(ctx)
	if err != nil {
		t.Fatalf("Conn: %v", err)
	}
	defer pinned.Close()

	var fk int
	if err := db.QueryRowContext(ctx, "PRAGMA foreign_keys").Scan(&fk); err != nil {
		t.Fatalf("PRAGMA foreign_keys: %v", err)
	}
	if fk != 1 {
		t.Fatalf("foreign_keys = %d on second connection, want 1", fk)
	}

	if err := q.DeleteVideo(ctx, v.ID); err != nil {
		t.Fatalf("DeleteVideo: %v", err)
	}
	if _, err := q.GetAssetByID(ctx, a.ID); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("GetAssetByID after cascade = %v, want sql.ErrNoRows", err)
	}
}

func TestAssetOrdering(t *testing.T) {
	q := New(testDB(t))
	ctx := context.Background()

	v := createTestVideo(t, q, "Ordered", "ordered")

	now := time.Now()
	for i, label := range []string{"third", "first", "second"} {
		pos := []int64{2, 0, 1}[i]
		if _, err := q.CreateAsset(ctx, CreateAssetParams{
			VideoID: v.ID, Label: label, URL: "https://example.com/" + label, Position: pos, CreatedAt: now,
		}); err != nil {
			t.Fatalf("CreateAsset: %v", err)
		}
	}

	assets, err := q.ListAssetsByVideoID(ctx, v.ID)
	if err != nil {
		t.Fatalf("ListAssetsByVideoID: %v", err)
	}
	want := []string{"first", "second", "third"}
	for i, a := range assets {
		if a.Label != want[i] {
			t.Errorf("assets[%d].Label = %q, want %q", i, a.Label, want[i])
		}
	}
}

func TestNextAssetPosition(t *testing.T) {
	q := New(testDB(t))
	ctx := context.Background()

	v := createTestVideo(t, q, "Positions", "positions")

	pos, err := q.NextAssetPosition(ctx, v.ID)
	if err != nil {
		t.Fatalf("NextAssetPosition: %v", err)
	}
	if pos != 0 {
		t.Errorf("first position = %d, want 0", pos)
	}

	if _, err := q.CreateAsset(ctx, CreateAssetParams{
		VideoID: v.ID, Label: "one", URL: "https://example.com/1", Position: pos, CreatedAt: time.Now(),
	}); err != nil {
		t.Fatalf("CreateAsset: %v", err)
	}

	pos, err = q.NextAssetPosition(ctx, v.ID)
	if err != nil {
		t.Fatalf("NextAssetPosition: %v", err)
	}
	if pos != 1 {
		t.Errorf("second position = %d, want 1", pos)
	}
}

func TestSessionLifecycle(t *testing.T) {
	q := New(testDB(t))
	ctx := context.Background()

	now := time.Now()
	err := q.CreateSession(ctx, CreateSessionParams{
		ID:        "token-1",
		IPAddress: "203.0.113.9",
		UserAgent: "test-agent",
		CreatedAt: now,
		ExpiresAt: now.Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	s, err := q.GetSessionByID(ctx, "token-1")
	if err != nil {
		t.Fatalf("GetSessionByID: %v", err)
	}
	if s.IPAddress != "203.0.113.9" {
		t.Errorf("IPAddress = %q, want %q", s.IPAddress, "203.0.113.9")
	}

	if err := q.DeleteSession(ctx, "token-1"); err != nil {
		t.Fatalf("DeleteSession: %v", err)
	}
	// Idempotent delete
	if err := q.DeleteSession(ctx, "token-1"); err != nil {
		t.Fatalf("DeleteSession (repeat): %v", err)
	}

	if _, err := q.GetSessionByID(ctx, "token-1"); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("GetSessionByID after delete = %v, want sql.ErrNoRows", err)
	}
}

func TestDeleteExpiredSessions(t *testing.T) {
	q := New(testDB(t))
	ctx := context.Background()

	now := time.Now()
	_ = q.CreateSession(ctx, CreateSessionParams{ID: "live", CreatedAt: now, ExpiresAt: now.Add(time.Hour)})
	_ = q.CreateSession(ctx, CreateSessionParams{ID: "dead", CreatedAt: now.Add(-2 * time.Hour), ExpiresAt: now.Add(-time.Hour)})

	n, err := q.DeleteExpiredSessions(ctx, now)
	if err != nil {
		t.Fatalf("DeleteExpiredSessions: %v", err)
	}
	if n != 1 {
		t.Errorf("deleted = %d, want 1", n)
	}

	if _, err := q.GetSessionByID(ctx, "live"); err != nil {
		t.Errorf("live session should survive sweep: %v", err)
	}
}

func TestCredentialUpsertAndPurge(t *testing.T) {
	q := New(testDB(t))
	ctx := context.Background()

	now := time.Now()
	for _, u := range []string{"admin", "stale"} {
		if err := q.UpsertCredential(ctx, UpsertCredentialParams{
			Username:           u,
			PasswordHash:       "hash",
			Salt:               "salt",
			MustChangePassword: true,
			UpdatedAt:          now,
		}); err != nil {
			t.Fatalf("UpsertCredential(%q): %v", u, err)
		}
	}

	n, err := q.DeleteCredentialsExcept(ctx, "admin")
	if err != nil {
		t.Fatalf("DeleteCredentialsExcept: %v", err)
	}
	if n != 1 {
		t.Errorf("purged = %d, want 1", n)
	}

	if _, err := q.GetCredential(ctx, "stale"); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("GetCredential(stale) = %v, want sql.ErrNoRows", err)
	}

	c, err := q.GetCredential(ctx, "admin")
	if err != nil {
		t.Fatalf("GetCredential: %v", err)
	}
	if !c.MustChangePassword {
		t.Error("MustChangePassword should be true")
	}

	// Upsert replaces in place
	if err := q.UpsertCredential(ctx, UpsertCredentialParams{
		Username: "admin", PasswordHash: "hash2", Salt: "salt2", MustChangePassword: false, UpdatedAt: now,
	}); err != nil {
		t.Fatalf("UpsertCredential (update): %v", err)
	}
	c, err = q.GetCredential(ctx, "admin")
	if err != nil {
		t.Fatalf("GetCredential: %v", err)
	}
	if c.PasswordHash != "hash2" || c.MustChangePassword {
		t.Errorf("credential not updated: %+v", c)
	}
}

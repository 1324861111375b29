// Copyright (c) 2026 Denis Korolev
// SPDX-License-Identifier: MIT

package store

import (
	"context"
	"database/sql"
	"strings"
	"time"
)

// DBTX is the minimal query interface satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...any) *sql.Row
}

// Queries provides typed access to the packshelf schema.
type Queries struct {
	db DBTX
}

// New creates a Queries instance bound to the given database handle.
func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// IsUniqueViolation reports whether err is a SQLite UNIQUE constraint failure.
func IsUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// ---------------------------------------------------------------------------
// Videos
// ---------------------------------------------------------------------------

// CreateVideoParams holds the fields for creating a video.
type CreateVideoParams struct {
	Title        string
	Slug         string
	Description  string
	VideoURL     string
	ThumbnailURL string
	Tags         string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CreateVideo inserts a new video and returns the stored row.
func (q *Queries) CreateVideo(ctx context.Context, arg CreateVideoParams) (Video, error) {
	const query = `
		INSERT INTO videos (title, slug, description, video_url, thumbnail_url, tags, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id, title, slug, description, video_url, thumbnail_url, tags, created_at, updated_at`
	row := q.db.QueryRowContext(ctx, query,
		arg.Title, arg.Slug, arg.Description, arg.VideoURL, arg.ThumbnailURL, arg.Tags, arg.CreatedAt, arg.UpdatedAt)
	return scanVideo(row)
}

// GetVideoByID fetches a video by its numeric ID.
func (q *Queries) GetVideoByID(ctx context.Context, id int64) (Video, error) {
	const query = `
		SELECT id, title, slug, description, video_url, thumbnail_url, tags, created_at, updated_at
		FROM videos WHERE id = ?`
	return scanVideo(q.db.QueryRowContext(ctx, query, id))
}

// GetVideoBySlug fetches a video by its unique slug.
func (q *Queries) GetVideoBySlug(ctx context.Context, slug string) (Video, error) {
	const query = `
		SELECT id, title, slug, description, video_url, thumbnail_url, tags, created_at, updated_at
		FROM videos WHERE slug = ?`
	return scanVideo(q.db.QueryRowContext(ctx, query, slug))
}

// ListVideos returns all videos, newest first.
func (q *Queries) ListVideos(ctx context.Context) ([]Video, error) {
	const query = `
		SELECT id, title, slug, description, video_url, thumbnail_url, tags, created_at, updated_at
		FROM videos ORDER BY created_at DESC, id DESC`
	rows, err := q.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var videos []Video
	for rows.Next() {
		var v Video
		if err := rows.Scan(&v.ID, &v.Title, &v.Slug, &v.Description, &v.VideoURL,
			&v.ThumbnailURL, &v.Tags, &v.CreatedAt, &v.UpdatedAt); err != nil {
			return nil, err
		}
		videos = append(videos, v)
	}
	return videos, rows.Err()
}

// UpdateVideoParams holds the fields for updating a video.
type UpdateVideoParams struct {
	ID           int64
	Title        string
	Slug         string
	Description  string
	VideoURL     string
	ThumbnailURL string
	Tags         string
	UpdatedAt    time.Time
}

// UpdateVideo updates a video in place. Returns sql.ErrNoRows when the ID
// does not exist.
func (q *Queries) UpdateVideo(ctx context.Context, arg UpdateVideoParams) error {
	const query = `
		UPDATE videos
		SET title = ?, slug = ?, description = ?, video_url = ?, thumbnail_url = ?, tags = ?, updated_at = ?
		WHERE id = ?`
	res, err := q.db.ExecContext(ctx, query,
		arg.Title, arg.Slug, arg.Description, arg.VideoURL, arg.ThumbnailURL, arg.Tags, arg.UpdatedAt, arg.ID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DeleteVideo removes a video; owned assets cascade via the foreign key.
func (q *Queries) DeleteVideo(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM videos WHERE id = ?`, id)
	return err
}

func scanVideo(row *sql.Row) (Video, error) {
	var v Video
	err := row.Scan(&v.ID, &v.Title, &v.Slug, &v.Description, &v.VideoURL,
		&v.ThumbnailURL, &v.Tags, &v.CreatedAt, &v.UpdatedAt)
	return v, err
}

// ---------------------------------------------------------------------------
// Assets
// ---------------------------------------------------------------------------

// CreateAssetParams holds the fields for creating an asset.
type CreateAssetParams struct {
	VideoID   int64
	Label     string
	URL       string
	Filename  string
	Content   string
	Position  int64
	CreatedAt time.Time
}

// CreateAsset inserts a new asset and returns the stored row.
func (q *Queries) CreateAsset(ctx context.Context, arg CreateAssetParams) (VideoAsset, error) {
	const query = `
		INSERT INTO video_assets (video_id, label, url, filename, content, position, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING id, video_id, label, url, filename, content, position, created_at`
	row := q.db.QueryRowContext(ctx, query,
		arg.VideoID, arg.Label, arg.URL, arg.Filename, arg.Content, arg.Position, arg.CreatedAt)
	var a VideoAsset
	err := row.Scan(&a.ID, &a.VideoID, &a.Label, &a.URL, &a.Filename, &a.Content, &a.Position, &a.CreatedAt)
	return a, err
}

// GetAssetByID fetches an asset by its numeric ID.
func (q *Queries) GetAssetByID(ctx context.Context, id int64) (VideoAsset, error) {
	const query = `
		SELECT id, video_id, label, url, filename, content, position, created_at
		FROM video_assets WHERE id = ?`
	var a VideoAsset
	err := q.db.QueryRowContext(ctx, query, id).
		Scan(&a.ID, &a.VideoID, &a.Label, &a.URL, &a.Filename, &a.Content, &a.Position, &a.CreatedAt)
	return a, err
}

// ListAssetsByVideoID returns a video's assets ordered by position then ID.
func (q *Queries) ListAssetsByVideoID(ctx context.Context, videoID int64) ([]VideoAsset, error) {
	const query = `
		SELECT id, video_id, label, url, filename, content, position, created_at
		FROM video_assets WHERE video_id = ? ORDER BY position, id`
	rows, err := q.db.QueryContext(ctx, query, videoID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAssets(rows)
}

// ListAssets returns all assets grouped by video, ordered by position then ID.
func (q *Queries) ListAssets(ctx context.Context) ([]VideoAsset, error) {
	const query = `
		SELECT id, video_id, label, url, filename, content, position, created_at
		FROM video_assets ORDER BY video_id, position, id`
	rows, err := q.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAssets(rows)
}

// NextAssetPosition returns the next free sort position for a video's assets.
func (q *Queries) NextAssetPosition(ctx context.Context, videoID int64) (int64, error) {
	const query = `SELECT COALESCE(MAX(position) + 1, 0) FROM video_assets WHERE video_id = ?`
	var pos int64
	err := q.db.QueryRowContext(ctx, query, videoID).Scan(&pos)
	return pos, err
}

// DeleteAsset removes an asset. Deleting a nonexistent ID is not an error.
func (q *Queries) DeleteAsset(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM video_assets WHERE id = ?`, id)
	return err
}

func collectAssets(rows *sql.Rows) ([]VideoAsset, error) {
	var assets []VideoAsset
	for rows.Next() {
		var a VideoAsset
		if err := rows.Scan(&a.ID, &a.VideoID, &a.Label, &a.URL, &a.Filename,
			&a.Content, &a.Position, &a.CreatedAt); err != nil {
			return nil, err
		}
		assets = append(assets, a)
	}
	return assets, rows.Err()
}

// ---------------------------------------------------------------------------
// Sessions
// ---------------------------------------------------------------------------

// CreateSessionParams holds the fields for creating a session record.
type CreateSessionParams struct {
	ID        string
	IPAddress string
	UserAgent string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// CreateSession persists a new session record.
func (q *Queries) CreateSession(ctx context.Context, arg CreateSessionParams) error {
	const query = `
		INSERT INTO sessions (id, ip_address, user_agent, created_at, expires_at)
		VALUES (?, ?, ?, ?, ?)`
	_, err := q.db.ExecContext(ctx, query, arg.ID, arg.IPAddress, arg.UserAgent, arg.CreatedAt, arg.ExpiresAt)
	return err
}

// GetSessionByID fetches a session record by its token.
func (q *Queries) GetSessionByID(ctx context.Context, id string) (Session, error) {
	const query = `SELECT id, ip_address, user_agent, created_at, expires_at FROM sessions WHERE id = ?`
	var s Session
	err := q.db.QueryRowContext(ctx, query, id).
		Scan(&s.ID, &s.IPAddress, &s.UserAgent, &s.CreatedAt, &s.ExpiresAt)
	return s, err
}

// ListSessions returns all session records, newest first.
func (q *Queries) ListSessions(ctx context.Context) ([]Session, error) {
	const query = `SELECT id, ip_address, user_agent, created_at, expires_at FROM sessions ORDER BY created_at DESC`
	rows, err := q.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		var s Session
		if err := rows.Scan(&s.ID, &s.IPAddress, &s.UserAgent, &s.CreatedAt, &s.ExpiresAt); err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

// DeleteSession removes a session record. Idempotent.
func (q *Queries) DeleteSession(ctx context.Context, id string) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	return err
}

// DeleteExpiredSessions removes all sessions whose expiry has passed.
// Returns the number of rows removed.
func (q *Queries) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	res, err := q.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at < ?`, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ---------------------------------------------------------------------------
// Admin credentials
// ---------------------------------------------------------------------------

// GetCredential fetches the credential record for a username.
func (q *Queries) GetCredential(ctx context.Context, username string) (AdminCredential, error) {
	const query = `
		SELECT username, password_hash, salt, must_change_password, updated_at
		FROM admin_credentials WHERE username = ?`
	var c AdminCredential
	err := q.db.QueryRowContext(ctx, query, username).
		Scan(&c.Username, &c.PasswordHash, &c.Salt, &c.MustChangePassword, &c.UpdatedAt)
	return c, err
}

// UpsertCredentialParams holds the fields for writing a credential record.
type UpsertCredentialParams struct {
	Username           string
	PasswordHash       string
	Salt               string
	MustChangePassword bool
	UpdatedAt          time.Time
}

// UpsertCredential inserts or replaces the credential record for a username.
func (q *Queries) UpsertCredential(ctx context.Context, arg UpsertCredentialParams) error {
	const query = `
		INSERT INTO admin_credentials (username, password_hash, salt, must_change_password, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(username) DO UPDATE SET
			password_hash = excluded.password_hash,
			salt = excluded.salt,
			must_change_password = excluded.must_change_password,
			updated_at = excluded.updated_at`
	_, err := q.db.ExecContext(ctx, query,
		arg.Username, arg.PasswordHash, arg.Salt, arg.MustChangePassword, arg.UpdatedAt)
	return err
}

// SetMustChangePassword flips the rotation flag for a username.
func (q *Queries) SetMustChangePassword(ctx context.Context, username string, must bool, updatedAt time.Time) error {
	const query = `UPDATE admin_credentials SET must_change_password = ?, updated_at = ? WHERE username = ?`
	_, err := q.db.ExecContext(ctx, query, must, updatedAt, username)
	return err
}

// DeleteCredentialsExcept purges credential records under any other username.
// Keeps the system single-tenant after configuration changes.
func (q *Queries) DeleteCredentialsExcept(ctx context.Context, username string) (int64, error) {
	res, err := q.db.ExecContext(ctx, `DELETE FROM admin_credentials WHERE username != ?`, username)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

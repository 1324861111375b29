// Copyright (c) 2026 Denis Korolev
// SPDX-License-Identifier: MIT

package store

import "time"

// Video is a content item shown on the public gallery.
// Tags are stored comma-joined; the service layer owns the split/normalize.
type Video struct {
	ID           int64
	Title        string
	Slug         string
	Description  string
	VideoURL     string
	ThumbnailURL string
	Tags         string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// VideoAsset is a downloadable resource attached to a video. It carries
// either an external URL or inline content with a derived filename.
type VideoAsset struct {
	ID        int64
	VideoID   int64
	Label     string
	URL       string
	Filename  string
	Content   string
	Position  int64
	CreatedAt time.Time
}

// Session is a server-side session record keyed by an opaque token.
type Session struct {
	ID        string
	IPAddress string
	UserAgent string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// AdminCredential is the single administrative identity record.
type AdminCredential struct {
	Username           string
	PasswordHash       string
	Salt               string
	MustChangePassword bool
	UpdatedAt          time.Time
}

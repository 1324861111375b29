// Copyright (c) 2026 Denis Korolev
// SPDX-License-Identifier: MIT

// Package service implements the content operations behind the admin
// console: video CRUD, asset management, slug and tag normalization.
package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dkorolev/packshelf/internal/store"
	"github.com/dkorolev/packshelf/internal/util"
)

// ContentService owns validation and persistence of videos and their assets.
type ContentService struct {
	queries *store.Queries
}

// NewContentService creates a ContentService over the given database.
func NewContentService(db *sql.DB) *ContentService {
	return &ContentService{queries: store.New(db)}
}

// VideoInput carries the user-supplied fields for creating or updating a video.
type VideoInput struct {
	Title        string
	Slug         string
	Description  string
	VideoURL     string
	ThumbnailURL string
	Tags         string // raw comma-separated input
}

// VideoWithAssets is a video together with its ordered assets.
type VideoWithAssets struct {
	store.Video
	Assets []store.VideoAsset
}

// TagList returns the stored comma-joined tags as a slice for display.
func (v VideoWithAssets) TagList() []string {
	return ParseTags(v.Tags)
}

// AssetInput carries the user-supplied fields for attaching an asset.
type AssetInput struct {
	Label    string
	URL      string
	Filename string
	Content  string
}

// Create validates the input, derives a slug when none is supplied, and
// stores the video. Returns ErrValidation for an empty title and ErrConflict
// when the slug is already taken.
func (s *ContentService) Create(ctx context.Context, in VideoInput) (store.Video, error) {
	norm, err := s.normalize(in)
	if err != nil {
		return store.Video{}, err
	}

	now := time.Now()
	video, err := s.queries.CreateVideo(ctx, store.CreateVideoParams{
		Title:        norm.Title,
		Slug:         norm.Slug,
		Description:  norm.Description,
		VideoURL:     norm.VideoURL,
		ThumbnailURL: norm.ThumbnailURL,
		Tags:         norm.Tags,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if store.IsUniqueViolation(err) {
		return store.Video{}, fmt.Errorf("%w: slug %q is already taken", ErrConflict, norm.Slug)
	}
	if err != nil {
		return store.Video{}, fmt.Errorf("creating video: %w", err)
	}
	return video, nil
}

// Update applies the same validation as Create and bumps the modification
// timestamp. Returns ErrNotFound when the ID does not exist.
func (s *ContentService) Update(ctx context.Context, id int64, in VideoInput) (store.Video, error) {
	norm, err := s.normalize(in)
	if err != nil {
		return store.Video{}, err
	}

	err = s.queries.UpdateVideo(ctx, store.UpdateVideoParams{
		ID:           id,
		Title:        norm.Title,
		Slug:         norm.Slug,
		Description:  norm.Description,
		VideoURL:     norm.VideoURL,
		ThumbnailURL: norm.ThumbnailURL,
		Tags:         norm.Tags,
		UpdatedAt:    time.Now(),
	})
	if errors.Is(err, sql.ErrNoRows) {
		return store.Video{}, fmt.Errorf("%w: video %d", ErrNotFound, id)
	}
	if store.IsUniqueViolation(err) {
		return store.Video{}, fmt.Errorf("%w: slug %q is already taken", ErrConflict, norm.Slug)
	}
	if err != nil {
		return store.Video{}, fmt.Errorf("updating video: %w", err)
	}

	return s.queries.GetVideoByID(ctx, id)
}

// Delete removes a video; its assets cascade away with it. Deleting a
// missing ID is a no-op success.
func (s *ContentService) Delete(ctx context.Context, id int64) error {
	if err := s.queries.DeleteVideo(ctx, id); err != nil {
		return fmt.Errorf("deleting video: %w", err)
	}
	return nil
}

// Get returns a single video with its assets. Returns ErrNotFound for a
// missing ID.
func (s *ContentService) Get(ctx context.Context, id int64) (VideoWithAssets, error) {
	video, err := s.queries.GetVideoByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return VideoWithAssets{}, fmt.Errorf("%w: video %d", ErrNotFound, id)
	}
	if err != nil {
		return VideoWithAssets{}, fmt.Errorf("loading video: %w", err)
	}

	assets, err := s.queries.ListAssetsByVideoID(ctx, id)
	if err != nil {
		return VideoWithAssets{}, fmt.Errorf("loading assets: %w", err)
	}
	return VideoWithAssets{Video: video, Assets: assets}, nil
}

// List returns all videos newest-first, each with its assets ordered by
// position then ID.
func (s *ContentService) List(ctx context.Context) ([]VideoWithAssets, error) {
	videos, err := s.queries.ListVideos(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing videos: %w", err)
	}

	assets, err := s.queries.ListAssets(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing assets: %w", err)
	}

	byVideo := make(map[int64][]store.VideoAsset, len(videos))
	for _, a := range assets {
		byVideo[a.VideoID] = append(byVideo[a.VideoID], a)
	}

	result := make([]VideoWithAssets, 0, len(videos))
	for _, v := range videos {
		result = append(result, VideoWithAssets{Video: v, Assets: byVideo[v.ID]})
	}
	return result, nil
}

// AddAsset validates and attaches an asset to a video. The asset must carry
// a label and either an external URL or inline content; inline content gets
// a derived safe filename.
func (s *ContentService) AddAsset(ctx context.Context, videoID int64, in AssetInput) (store.VideoAsset, error) {
	label := strings.TrimSpace(in.Label)
	if label == "" {
		return store.VideoAsset{}, fmt.Errorf("%w: label is required", ErrValidation)
	}

	url := strings.TrimSpace(in.URL)
	if url == "" && in.Content == "" {
		return store.VideoAsset{}, fmt.Errorf("%w: an asset needs a URL or inline content", ErrValidation)
	}

	if _, err := s.queries.GetVideoByID(ctx, videoID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return store.VideoAsset{}, fmt.Errorf("%w: video %d", ErrNotFound, videoID)
		}
		return store.VideoAsset{}, fmt.Errorf("loading video: %w", err)
	}

	filename := ""
	if in.Content != "" {
		name := in.Filename
		if name == "" {
			name = label
		}
		filename = util.SafeFilename(name)
	}

	position, err := s.queries.NextAssetPosition(ctx, videoID)
	if err != nil {
		return store.VideoAsset{}, fmt.Errorf("computing asset position: %w", err)
	}

	asset, err := s.queries.CreateAsset(ctx, store.CreateAssetParams{
		VideoID:   videoID,
		Label:     label,
		URL:       url,
		Filename:  filename,
		Content:   in.Content,
		Position:  position,
		CreatedAt: time.Now(),
	})
	if err != nil {
		return store.VideoAsset{}, fmt.Errorf("creating asset: %w", err)
	}
	return asset, nil
}

// RemoveAsset deletes an asset. Idempotent.
func (s *ContentService) RemoveAsset(ctx context.Context, assetID int64) error {
	if err := s.queries.DeleteAsset(ctx, assetID); err != nil {
		return fmt.Errorf("deleting asset: %w", err)
	}
	return nil
}

// GetAsset returns an asset by ID. Returns ErrNotFound when missing.
func (s *ContentService) GetAsset(ctx context.Context, assetID int64) (store.VideoAsset, error) {
	asset, err := s.queries.GetAssetByID(ctx, assetID)
	if errors.Is(err, sql.ErrNoRows) {
		return store.VideoAsset{}, fmt.Errorf("%w: asset %d", ErrNotFound, assetID)
	}
	if err != nil {
		return store.VideoAsset{}, fmt.Errorf("loading asset: %w", err)
	}
	return asset, nil
}

// normalized holds validated, store-ready video fields.
type normalized struct {
	Title        string
	Slug         string
	Description  string
	VideoURL     string
	ThumbnailURL string
	Tags         string
}

// normalize validates the title, resolves the slug, normalizes tags, and
// runs the optional thumbnail enrichment.
func (s *ContentService) normalize(in VideoInput) (normalized, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return normalized{}, fmt.Errorf("%w: title is required", ErrValidation)
	}

	slug := strings.TrimSpace(in.Slug)
	if slug == "" {
		slug = util.Slugify(title)
		if slug == "" {
			// Title had no usable characters; fall back to a timestamp slug
			slug = fmt.Sprintf("video-%d", time.Now().Unix())
		}
	} else if !util.IsValidSlug(slug) {
		return normalized{}, fmt.Errorf("%w: slug may only contain lowercase letters, digits, and single hyphens", ErrValidation)
	}

	videoURL := strings.TrimSpace(in.VideoURL)
	thumbnailURL := strings.TrimSpace(in.ThumbnailURL)
	if thumbnailURL == "" && videoURL != "" {
		// Best-effort enrichment; an empty result just means no thumbnail
		thumbnailURL = util.ThumbnailFromVideoURL(videoURL)
	}

	return normalized{
		Title:        title,
		Slug:         slug,
		Description:  strings.TrimSpace(in.Description),
		VideoURL:     videoURL,
		ThumbnailURL: thumbnailURL,
		Tags:         JoinTags(ParseTags(in.Tags)),
	}, nil
}

// ParseTags splits raw comma-separated input into a normalized tag list:
// trimmed, lowercased, deduplicated, original order preserved.
func ParseTags(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	seen := make(map[string]bool)
	var tags []string
	for _, part := range strings.Split(raw, ",") {
		tag := strings.ToLower(strings.Join(strings.Fields(part), " "))
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		tags = append(tags, tag)
	}
	return tags
}

// JoinTags renders a tag list back into its stored comma-joined form.
func JoinTags(tags []string) string {
	return strings.Join(tags, ",")
}

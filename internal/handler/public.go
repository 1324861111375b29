// Copyright (c) 2026 Denis Korolev
// SPDX-License-Identifier: MIT

package handler

import (
	"errors"
	"log/slog"
	"mime"
	"net/http"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/dkorolev/packshelf/internal/render"
	"github.com/dkorolev/packshelf/internal/service"
)

// PublicHandler handles the unauthenticated surface: the gallery page, the
// JSON listing, and inline asset downloads.
type PublicHandler struct {
	content  *service.ContentService
	renderer *render.Renderer
}

// NewPublicHandler creates a PublicHandler.
func NewPublicHandler(cs *service.ContentService, renderer *render.Renderer) *PublicHandler {
	return &PublicHandler{content: cs, renderer: renderer}
}

// GalleryData holds data for the public gallery template.
type GalleryData struct {
	Videos []service.VideoWithAssets
	Query  string
}

// Gallery handles GET / with an optional ?q= filter over titles, tags, and
// descriptions.
func (h *PublicHandler) Gallery(w http.ResponseWriter, r *http.Request) {
	videos, err := h.content.List(r.Context())
	if err != nil {
		slog.Error("failed to list videos", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query != "" {
		videos = filterVideos(videos, query)
	}

	if err := h.renderer.Render(w, r, "public/gallery", render.TemplateData{
		Data: GalleryData{Videos: videos, Query: query},
	}); err != nil {
		slog.Error("render error", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// filterVideos keeps videos whose title, tags, or description contain the
// query, case-insensitively.
func filterVideos(videos []service.VideoWithAssets, query string) []service.VideoWithAssets {
	q := strings.ToLower(query)
	var matched []service.VideoWithAssets
	for _, v := range videos {
		haystack := strings.ToLower(v.Title + " " + v.Tags + " " + v.Description)
		if strings.Contains(haystack, q) {
			matched = append(matched, v)
		}
	}
	return matched
}

// apiAsset is the JSON shape of an asset. Inline content is never exposed;
// inline assets surface only their download path.
type apiAsset struct {
	ID          int64  `json:"id"`
	Label       string `json:"label"`
	URL         string `json:"url,omitempty"`
	Filename    string `json:"filename,omitempty"`
	DownloadURL string `json:"download_url,omitempty"`
	Position    int64  `json:"position"`
}

// apiVideo is the JSON shape of a video with its assets.
type apiVideo struct {
	ID           int64      `json:"id"`
	Title        string     `json:"title"`
	Slug         string     `json:"slug"`
	Description  string     `json:"description,omitempty"`
	VideoURL     string     `json:"video_url,omitempty"`
	ThumbnailURL string     `json:"thumbnail_url,omitempty"`
	Tags         []string   `json:"tags"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	Assets       []apiAsset `json:"assets"`
}

// APIVideos handles GET /api/videos.
func (h *PublicHandler) APIVideos(w http.ResponseWriter, r *http.Request) {
	videos, err := h.content.List(r.Context())
	if err != nil {
		slog.Error("failed to list videos", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	out := make([]apiVideo, 0, len(videos))
	for _, v := range videos {
		assets := make([]apiAsset, 0, len(v.Assets))
		for _, a := range v.Assets {
			item := apiAsset{
				ID:       a.ID,
				Label:    a.Label,
				URL:      a.URL,
				Position: a.Position,
			}
			if a.Content != "" {
				item.Filename = a.Filename
				item.DownloadURL = "/downloads/assets/" + strconv.FormatInt(a.ID, 10)
			}
			assets = append(assets, item)
		}

		tags := service.ParseTags(v.Tags)
		if tags == nil {
			tags = []string{}
		}

		out = append(out, apiVideo{
			ID:           v.ID,
			Title:        v.Title,
			Slug:         v.Slug,
			Description:  v.Description,
			VideoURL:     v.VideoURL,
			ThumbnailURL: v.ThumbnailURL,
			Tags:         tags,
			CreatedAt:    v.CreatedAt,
			UpdatedAt:    v.UpdatedAt,
			Assets:       assets,
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"videos":  out,
	})
}

// DownloadAsset handles GET /downloads/assets/{id}, streaming inline asset
// content as a file attachment. External-URL assets have nothing to stream
// and report 404.
func (h *PublicHandler) DownloadAsset(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		http.NotFound(w, r)
		return
	}

	asset, err := h.content.GetAsset(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		slog.Error("failed to load asset", "error", err, "asset_id", id)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if asset.Content == "" {
		http.NotFound(w, r)
		return
	}

	contentType := mime.TypeByExtension(path.Ext(asset.Filename))
	if contentType == "" {
		contentType = "text/plain; charset=utf-8"
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+asset.Filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(asset.Content)))
	_, _ = w.Write([]byte(asset.Content))
}

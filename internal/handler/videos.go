// Copyright (c) 2026 Denis Korolev
// SPDX-License-Identifier: MIT

package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/dkorolev/packshelf/internal/render"
	"github.com/dkorolev/packshelf/internal/service"
	"github.com/dkorolev/packshelf/internal/store"
)

// VideosHandler handles admin video and asset management routes.
type VideosHandler struct {
	content  *service.ContentService
	renderer *render.Renderer
}

// NewVideosHandler creates a VideosHandler.
func NewVideosHandler(cs *service.ContentService, renderer *render.Renderer) *VideosHandler {
	return &VideosHandler{content: cs, renderer: renderer}
}

// VideoFormData holds data for the video form template.
type VideoFormData struct {
	Video  *store.Video
	Assets []store.VideoAsset
	IsEdit bool
}

// NewForm handles GET /admin/videos/new.
func (h *VideosHandler) NewForm(w http.ResponseWriter, r *http.Request) {
	if err := h.renderer.Render(w, r, "admin/video_form", render.TemplateData{
		Title: "New video",
		Data:  VideoFormData{},
	}); err != nil {
		slog.Error("render error", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// EditForm handles GET /admin/videos/{id}/edit.
func (h *VideosHandler) EditForm(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		redirectWithError(w, r, "/admin", "Invalid video id")
		return
	}

	video, err := h.content.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			redirectWithError(w, r, "/admin", "Video not found")
			return
		}
		slog.Error("failed to load video", "error", err, "video_id", id)
		redirectWithError(w, r, "/admin", "Something went wrong, please try again")
		return
	}

	if err := h.renderer.Render(w, r, "admin/video_form", render.TemplateData{
		Title: "Edit video",
		Data:  VideoFormData{Video: &video.Video, Assets: video.Assets, IsEdit: true},
	}); err != nil {
		slog.Error("render error", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// videoInputFromForm collects the video fields from a parsed form.
func videoInputFromForm(r *http.Request) service.VideoInput {
	return service.VideoInput{
		Title:        r.FormValue("title"),
		Slug:         r.FormValue("slug"),
		Description:  r.FormValue("description"),
		VideoURL:     r.FormValue("video_url"),
		ThumbnailURL: r.FormValue("thumbnail_url"),
		Tags:         r.FormValue("tags"),
	}
}

// Create handles POST /admin/videos.
func (h *VideosHandler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		redirectWithError(w, r, "/admin/videos/new", "Invalid form data")
		return
	}

	video, err := h.content.Create(r.Context(), videoInputFromForm(r))
	if err != nil {
		if !errors.Is(err, service.ErrValidation) && !errors.Is(err, service.ErrConflict) {
			slog.Error("failed to create video", "error", err)
		}
		redirectWithError(w, r, "/admin/videos/new", userMessage(err))
		return
	}

	slog.Info("video created", "video_id", video.ID, "slug", video.Slug)
	redirectWithMessage(w, r, fmt.Sprintf("/admin/videos/%d/edit", video.ID), "Video created")
}

// Update handles POST /admin/videos/{id}.
func (h *VideosHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		redirectWithError(w, r, "/admin", "Invalid video id")
		return
	}

	if err := r.ParseForm(); err != nil {
		redirectWithError(w, r, fmt.Sprintf("/admin/videos/%d/edit", id), "Invalid form data")
		return
	}

	video, err := h.content.Update(r.Context(), id, videoInputFromForm(r))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			redirectWithError(w, r, "/admin", "Video not found")
			return
		}
		if !errors.Is(err, service.ErrValidation) && !errors.Is(err, service.ErrConflict) {
			slog.Error("failed to update video", "error", err, "video_id", id)
		}
		redirectWithError(w, r, fmt.Sprintf("/admin/videos/%d/edit", id), userMessage(err))
		return
	}

	slog.Info("video updated", "video_id", video.ID, "slug", video.Slug)
	redirectWithMessage(w, r, fmt.Sprintf("/admin/videos/%d/edit", id), "Video updated")
}

// Delete handles POST /admin/videos/{id}/delete. Assets cascade away with
// the video.
func (h *VideosHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		redirectWithError(w, r, "/admin", "Invalid video id")
		return
	}

	if err := h.content.Delete(r.Context(), id); err != nil {
		slog.Error("failed to delete video", "error", err, "video_id", id)
		redirectWithError(w, r, "/admin", "Something went wrong, please try again")
		return
	}

	slog.Info("video deleted", "video_id", id)
	redirectWithMessage(w, r, "/admin", "Video deleted")
}

// AddAsset handles POST /admin/videos/{id}/assets.
func (h *VideosHandler) AddAsset(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		redirectWithError(w, r, "/admin", "Invalid video id")
		return
	}
	formPath := fmt.Sprintf("/admin/videos/%d/edit", id)

	if err := r.ParseForm(); err != nil {
		redirectWithError(w, r, formPath, "Invalid form data")
		return
	}

	asset, err := h.content.AddAsset(r.Context(), id, service.AssetInput{
		Label:    r.FormValue("label"),
		URL:      r.FormValue("url"),
		Filename: r.FormValue("filename"),
		Content:  r.FormValue("content"),
	})
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			redirectWithError(w, r, "/admin", "Video not found")
			return
		}
		if !errors.Is(err, service.ErrValidation) {
			slog.Error("failed to add asset", "error", err, "video_id", id)
		}
		redirectWithError(w, r, formPath, userMessage(err))
		return
	}

	slog.Info("asset added", "asset_id", asset.ID, "video_id", id)
	redirectWithMessage(w, r, formPath, "Asset attached")
}

// DeleteAsset handles POST /admin/assets/{id}/delete. Idempotent.
func (h *VideosHandler) DeleteAsset(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		redirectWithError(w, r, "/admin", "Invalid asset id")
		return
	}

	// Resolve the owning video first so we can land back on its form
	redirect := "/admin"
	if asset, err := h.content.GetAsset(r.Context(), id); err == nil {
		redirect = fmt.Sprintf("/admin/videos/%d/edit", asset.VideoID)
	}

	if err := h.content.RemoveAsset(r.Context(), id); err != nil {
		slog.Error("failed to delete asset", "error", err, "asset_id", id)
		redirectWithError(w, r, redirect, "Something went wrong, please try again")
		return
	}

	slog.Info("asset deleted", "asset_id", id)
	redirectWithMessage(w, r, redirect, "Asset removed")
}

// Copyright (c) 2026 Denis Korolev
// SPDX-License-Identifier: MIT

package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/mileusna/useragent"

	"github.com/dkorolev/packshelf/internal/auth"
	"github.com/dkorolev/packshelf/internal/middleware"
	"github.com/dkorolev/packshelf/internal/render"
	"github.com/dkorolev/packshelf/internal/service"
	"github.com/dkorolev/packshelf/internal/session"
)

// loginFailureDelay flattens the observable timing difference between
// "unknown user" and "bad password" responses.
const loginFailureDelay = 150 * time.Millisecond

// AuthHandler handles the admin console entry points: login, logout,
// password rotation, the dashboard, and session revocation.
type AuthHandler struct {
	credentials *auth.Manager
	sessions    *session.Manager
	content     *service.ContentService
	renderer    *render.Renderer
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(cm *auth.Manager, sm *session.Manager, cs *service.ContentService, renderer *render.Renderer) *AuthHandler {
	return &AuthHandler{
		credentials: cm,
		sessions:    sm,
		content:     cs,
		renderer:    renderer,
	}
}

// sessionView is a row in the dashboard's active-sessions table.
type sessionView struct {
	ID        string
	CreatedAt time.Time
	ExpiresAt time.Time
	IPAddress string
	Client    string
	Current   bool
}

// DashboardData holds data for the admin dashboard template.
type DashboardData struct {
	Videos   []service.VideoWithAssets
	Sessions []sessionView
}

// Home handles GET /admin. Unauthenticated callers get the login page,
// pending-rotation sessions are sent to the password flow, active sessions
// get the dashboard.
func (h *AuthHandler) Home(w http.ResponseWriter, r *http.Request) {
	sess := middleware.GetSession(r)
	if sess == nil {
		if err := h.renderer.Render(w, r, "auth/login", render.TemplateData{Title: "Sign in"}); err != nil {
			slog.Error("render error", "error", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		}
		return
	}

	if middleware.IsPendingRotation(r) {
		http.Redirect(w, r, "/admin/password", http.StatusSeeOther)
		return
	}

	videos, err := h.content.List(r.Context())
	if err != nil {
		slog.Error("failed to list videos", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	active, err := h.sessions.ListActive(r.Context())
	if err != nil {
		slog.Error("failed to list sessions", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	views := make([]sessionView, 0, len(active))
	for _, s := range active {
		views = append(views, sessionView{
			ID:        s.ID,
			CreatedAt: s.CreatedAt,
			ExpiresAt: s.ExpiresAt,
			IPAddress: s.IPAddress,
			Client:    describeClient(s.UserAgent),
			Current:   s.ID == sess.ID,
		})
	}

	if err := h.renderer.Render(w, r, "admin/dashboard", render.TemplateData{
		Title: "Dashboard",
		Data:  DashboardData{Videos: videos, Sessions: views},
	}); err != nil {
		slog.Error("render error", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// describeClient renders a parsed user agent as "Browser on OS".
func describeClient(rawUA string) string {
	if rawUA == "" {
		return "unknown"
	}
	ua := useragent.Parse(rawUA)
	if ua.Name == "" {
		return "unknown"
	}
	if ua.OS == "" {
		return ua.Name
	}
	return ua.Name + " on " + ua.OS
}

// Login handles POST /admin/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		redirectWithError(w, r, "/admin", "Invalid form data")
		return
	}

	username := strings.TrimSpace(r.FormValue("username"))
	password := r.FormValue("password")

	if _, err := h.credentials.Authenticate(r.Context(), username, password); err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			time.Sleep(loginFailureDelay)
			slog.Warn("failed login attempt", "username", username, "ip", clientIP(r))
			redirectWithError(w, r, "/admin", "Invalid username or password")
			return
		}
		slog.Error("login failed", "error", err)
		redirectWithError(w, r, "/admin", "Something went wrong, please try again")
		return
	}

	ip, ua := clientInfo(r)
	sess, err := h.sessions.Create(r.Context(), ip, ua)
	if err != nil {
		slog.Error("failed to create session", "error", err)
		redirectWithError(w, r, "/admin", "Something went wrong, please try again")
		return
	}

	middleware.SetSessionCookie(w, r, sess.ID, h.sessions.TTL())
	slog.Info("admin logged in", "username", username, "ip", ip)
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

// Logout handles POST /admin/logout.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if sess := middleware.GetSession(r); sess != nil {
		if err := h.sessions.Revoke(r.Context(), sess.ID); err != nil {
			slog.Error("failed to revoke session", "error", err)
		}
	}
	middleware.ClearSessionCookie(w, r)
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

// PasswordData holds data for the password-change template.
type PasswordData struct {
	PendingRotation bool
	MinLength       int
}

// PasswordForm handles GET /admin/password. Reachable while rotation is
// still pending.
func (h *AuthHandler) PasswordForm(w http.ResponseWriter, r *http.Request) {
	if err := h.renderer.Render(w, r, "admin/password", render.TemplateData{
		Title: "Change password",
		Data: PasswordData{
			PendingRotation: middleware.IsPendingRotation(r),
			MinLength:       h.credentials.MinPasswordLength(),
		},
	}); err != nil {
		slog.Error("render error", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// PasswordSubmit handles POST /admin/password.
func (h *AuthHandler) PasswordSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		redirectWithError(w, r, "/admin/password", "Invalid form data")
		return
	}

	current := r.FormValue("current_password")
	next := r.FormValue("new_password")
	confirm := r.FormValue("confirm_password")

	if next != confirm {
		redirectWithError(w, r, "/admin/password", "New passwords do not match")
		return
	}

	if err := h.credentials.ChangePassword(r.Context(), current, next); err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidCredentials):
			redirectWithError(w, r, "/admin/password", "Current password is incorrect")
		case errors.Is(err, auth.ErrPasswordTooShort):
			redirectWithError(w, r, "/admin/password", err.Error())
		default:
			slog.Error("password change failed", "error", err)
			redirectWithError(w, r, "/admin/password", "Something went wrong, please try again")
		}
		return
	}

	slog.Info("admin password changed", "username", h.credentials.Username())
	redirectWithMessage(w, r, "/admin", "Password updated")
}

// RevokeSession handles POST /admin/sessions/{id}/delete, letting the admin
// log out other devices. Revoking the current session works too; the next
// request simply lands on the login page.
func (h *AuthHandler) RevokeSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		redirectWithError(w, r, "/admin", "Invalid session id")
		return
	}

	if err := h.sessions.Revoke(r.Context(), id); err != nil {
		slog.Error("failed to revoke session", "error", err)
		redirectWithError(w, r, "/admin", "Something went wrong, please try again")
		return
	}

	slog.Info("session revoked", "session_id", id)
	redirectWithMessage(w, r, "/admin", "Session revoked")
}

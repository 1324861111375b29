// Copyright (c) 2026 Denis Korolev
// SPDX-License-Identifier: MIT

// Package middleware provides HTTP middleware for session resolution,
// the admin access gate, CSRF protection, and request housekeeping.
package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/dkorolev/packshelf/internal/session"
	"github.com/dkorolev/packshelf/internal/store"
)

// SessionCookieName is the name of the session cookie.
const SessionCookieName = "packshelf_session"

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

// Context keys for session state.
const (
	ContextKeySession         ContextKey = "session"
	ContextKeyPendingRotation ContextKey = "pending_rotation"
)

// RotationChecker reports whether the admin credential still requires a
// password change. Satisfied by *auth.Manager; kept as an interface so the
// gate can be tested without a database.
type RotationChecker interface {
	MustChangePassword(ctx context.Context) (bool, error)
}

// WithSession resolves the session cookie into a session record and the
// credential rotation state, storing both in the request context. Requests
// without a valid session simply continue unauthenticated.
func WithSession(sm *session.Manager, cm RotationChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookieName)
			if err != nil || cookie.Value == "" {
				next.ServeHTTP(w, r)
				return
			}

			sess, err := sm.Lookup(r.Context(), cookie.Value)
			if errors.Is(err, session.ErrNotFound) {
				// Stale cookie: clear it so the browser stops sending it
				ClearSessionCookie(w, r)
				next.ServeHTTP(w, r)
				return
			}
			if err != nil {
				slog.Error("session lookup failed", "error", err)
				next.ServeHTTP(w, r)
				return
			}

			pending, err := cm.MustChangePassword(r.Context())
			if err != nil {
				slog.Error("failed to load credential state", "error", err)
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeySession, sess)
			ctx = context.WithValue(ctx, ContextKeyPendingRotation, pending)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetSession retrieves the current session from the request context.
// Returns nil when the request is unauthenticated.
func GetSession(r *http.Request) *store.Session {
	sess, ok := r.Context().Value(ContextKeySession).(store.Session)
	if !ok {
		return nil
	}
	return &sess
}

// IsPendingRotation reports whether the authenticated credential still
// requires a password change.
func IsPendingRotation(r *http.Request) bool {
	pending, ok := r.Context().Value(ContextKeyPendingRotation).(bool)
	return ok && pending
}

// RequireSession requires a valid session in any state. Unauthenticated
// requests are redirected to the admin login page.
func RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetSession(r) == nil {
			http.Redirect(w, r, "/admin", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireActive gates mutating routes: it requires a valid session whose
// credential is not pending rotation. Pending-rotation requests are sent to
// the password-change flow rather than permitted or rejected outright.
func RequireActive(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetSession(r) == nil {
			http.Redirect(w, r, "/admin", http.StatusSeeOther)
			return
		}
		if IsPendingRotation(r) {
			http.Redirect(w, r, "/admin/password", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// SetSessionCookie writes the session cookie. Secure is set when the
// request arrived over TLS.
func SetSessionCookie(w http.ResponseWriter, r *http.Request, id string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   r.TLS != nil,
	})
}

// ClearSessionCookie expires the session cookie immediately.
func ClearSessionCookie(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   r.TLS != nil,
	})
}

// Copyright (c) 2026 Denis Korolev
// SPDX-License-Identifier: MIT

// Package handler implements the HTTP surface: the public gallery and JSON
// API, the asset download endpoint, and the admin console.
package handler

import (
	"errors"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"

	"github.com/dkorolev/packshelf/internal/service"
)

// redirectWithError redirects with a human-readable failure message in the
// query string. Messages travel in the URL rather than server-side state.
func redirectWithError(w http.ResponseWriter, r *http.Request, path, message string) {
	http.Redirect(w, r, path+"?error="+url.QueryEscape(message), http.StatusSeeOther)
}

// redirectWithMessage redirects with a success message in the query string.
func redirectWithMessage(w http.ResponseWriter, r *http.Request, path, message string) {
	http.Redirect(w, r, path+"?message="+url.QueryEscape(message), http.StatusSeeOther)
}

// parseID extracts a positive numeric URL parameter.
func parseID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid id")
	}
	return id, nil
}

// clientIP extracts the client IP. chi's RealIP middleware has already
// folded proxy headers into RemoteAddr.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// maxUserAgentLen bounds what we persist for session audit.
const maxUserAgentLen = 256

// clientInfo returns the client IP and a length-capped user agent. The cap
// lands on a rune boundary so the stored value stays valid UTF-8.
func clientInfo(r *http.Request) (ip, userAgent string) {
	ua := r.UserAgent()
	if len(ua) > maxUserAgentLen {
		cut := maxUserAgentLen
		for cut > 0 && !utf8.RuneStart(ua[cut]) {
			cut--
		}
		ua = ua[:cut]
	}
	return clientIP(r), ua
}

// userMessage converts a service error into text safe to show the user.
// Store-level failures get a generic message so internals never leak.
func userMessage(err error) string {
	if errors.Is(err, service.ErrValidation) || errors.Is(err, service.ErrConflict) || errors.Is(err, service.ErrNotFound) {
		msg := err.Error()
		if _, detail, ok := strings.Cut(msg, ": "); ok {
			return detail
		}
		return msg
	}
	return "Something went wrong, please try again"
}

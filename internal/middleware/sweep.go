// Copyright (c) 2026 Denis Korolev
// SPDX-License-Identifier: MIT

package middleware

import (
	"net/http"

	"github.com/dkorolev/packshelf/internal/session"
)

// Sweep opportunistically removes expired sessions on each inbound request.
// Sweep failures are logged inside the manager and never abort the request.
func Sweep(sm *session.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sm.SweepExpired(r.Context())
			next.ServeHTTP(w, r)
		})
	}
}

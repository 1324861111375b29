// Copyright (c) 2026 Denis Korolev
// SPDX-License-Identifier: MIT

package handler

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/dkorolev/packshelf/internal/version"
)

// HealthHandler handles the /healthz liveness probe.
type HealthHandler struct {
	db        *sql.DB
	startTime time.Time
	instance  string
}

// NewHealthHandler creates a health handler with a per-boot instance ID.
func NewHealthHandler(db *sql.DB) *HealthHandler {
	return &HealthHandler{
		db:        db,
		startTime: time.Now(),
		instance:  uuid.NewString(),
	}
}

// HealthStatus is the /healthz response body.
type HealthStatus struct {
	Status   string `json:"status"`
	Version  string `json:"version"`
	Uptime   string `json:"uptime"`
	Instance string `json:"instance"`
}

// Health handles GET /healthz. A failed database ping reports degraded with
// 503 so load balancers stop routing here.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	code := http.StatusOK
	if err := h.db.PingContext(r.Context()); err != nil {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	writeJSON(w, code, HealthStatus{
		Status:   status,
		Version:  version.Get().Version,
		Uptime:   time.Since(h.startTime).Round(time.Second).String(),
		Instance: h.instance,
	})
}

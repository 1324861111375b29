// Copyright (c) 2026 Denis Korolev
// SPDX-License-Identifier: MIT

package handler

import (
	"database/sql"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/dkorolev/packshelf/internal/auth"
	"github.com/dkorolev/packshelf/internal/config"
	"github.com/dkorolev/packshelf/internal/middleware"
	"github.com/dkorolev/packshelf/internal/render"
	"github.com/dkorolev/packshelf/internal/service"
	"github.com/dkorolev/packshelf/internal/session"
)

// Login rate limit: one request per second with a small burst, per IP.
const (
	loginRateLimit = 1.0
	loginRateBurst = 5
)

// Server bundles the handlers and wires them into the route table.
type Server struct {
	cfg         *config.Config
	credentials *auth.Manager
	sessions    *session.Manager

	public      *PublicHandler
	authHandler *AuthHandler
	videos      *VideosHandler
	health      *HealthHandler
}

// NewServer creates the HTTP surface over the given dependencies.
func NewServer(cfg *config.Config, db *sql.DB, cm *auth.Manager, sm *session.Manager, renderer *render.Renderer) *Server {
	cs := service.NewContentService(db)

	return &Server{
		cfg:         cfg,
		credentials: cm,
		sessions:    sm,
		public:      NewPublicHandler(cs, renderer),
		authHandler: NewAuthHandler(cm, sm, cs, renderer),
		videos:      NewVideosHandler(cs, renderer),
		health:      NewHealthHandler(db),
	}
}

// Routes assembles the full route table with its middleware stack.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(chimw.GetHead)
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.Sweep(s.sessions))
	r.Use(middleware.WithSession(s.sessions, s.credentials))

	// Public surface
	r.Get("/", s.public.Gallery)
	r.Get("/api/videos", s.public.APIVideos)
	r.Get("/downloads/assets/{id}", s.public.DownloadAsset)
	r.Get("/healthz", s.health.Health)

	csrfProtect := middleware.CSRF(middleware.DefaultCSRFConfig(
		[]byte(s.cfg.SessionSecret), s.cfg.IsDevelopment(), s.cfg.ServerAddr()))
	loginLimiter := middleware.NewLoginRateLimiter(loginRateLimit, loginRateBurst)

	r.Route("/admin", func(r chi.Router) {
		r.Use(csrfProtect)

		r.Get("/", s.authHandler.Home)
		r.With(loginLimiter.Middleware()).Post("/login", s.authHandler.Login)

		// Reachable with any valid session, including pending rotation
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireSession)
			r.Post("/logout", s.authHandler.Logout)
			r.Get("/password", s.authHandler.PasswordForm)
			r.Post("/password", s.authHandler.PasswordSubmit)
		})

		// Mutating routes require an active (rotation-complete) session
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireActive)
			r.Get("/videos/new", s.videos.NewForm)
			r.Post("/videos", s.videos.Create)
			r.Get("/videos/{id}/edit", s.videos.EditForm)
			r.Post("/videos/{id}", s.videos.Update)
			r.Post("/videos/{id}/delete", s.videos.Delete)
			r.Post("/videos/{id}/assets", s.videos.AddAsset)
			r.Post("/assets/{id}/delete", s.videos.DeleteAsset)
			r.Post("/sessions/{id}/delete", s.authHandler.RevokeSession)
		})
	})

	return r
}

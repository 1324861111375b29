// Copyright (c) 2026 Denis Korolev
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/dkorolev/packshelf/internal/auth"
	"github.com/dkorolev/packshelf/internal/config"
	"github.com/dkorolev/packshelf/internal/handler"
	"github.com/dkorolev/packshelf/internal/render"
	"github.com/dkorolev/packshelf/internal/session"
	"github.com/dkorolev/packshelf/internal/store"
	"github.com/dkorolev/packshelf/internal/version"
	"github.com/dkorolev/packshelf/web"
)

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	showHelp := flag.Bool("help", false, "Show help information")
	flag.BoolVar(showHelp, "h", false, "Show help information (shorthand)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "packshelf - self-hosted download-pack gallery\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  PACKSHELF_SESSION_SECRET          CSRF/session key (required, min 32 bytes)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  PACKSHELF_SERVER_HOST             Listen host (default: localhost)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  PACKSHELF_SERVER_PORT             Listen port (default: 8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  PACKSHELF_DATA_DIR                Data directory (default: ./data)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  PACKSHELF_SESSION_TTL             Session lifetime (default: 168h)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  PACKSHELF_ADMIN_USERNAME          Admin username (default: admin)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  PACKSHELF_ADMIN_DEFAULT_PASSWORD  Bootstrap password (default: changeme)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  PACKSHELF_ENV                     development|production (default: development)\n")
	}

	flag.Parse()

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if *showVersion {
		_, _ = fmt.Printf("packshelf %s\n", version.Get())
		os.Exit(0)
	}

	if err := run(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Load .env if present (development)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logLevel := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	slog.Info("initializing database", "path", cfg.DBPath())
	db, err := store.NewDB(cfg.DBPath())
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer func(db *sql.DB) {
		if err := db.Close(); err != nil {
			slog.Error("error closing database connection", "error", err)
		}
	}(db)

	slog.Info("running database migrations")
	if err := store.Migrate(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	slog.Info("database ready")

	// Startup credential reconciliation: purge credentials under other
	// usernames, then make sure the configured admin exists.
	ctx := context.Background()
	credentials := auth.NewManager(db, cfg.AdminUsername, cfg.MinPasswordLength)
	if err := credentials.Reconcile(ctx); err != nil {
		return fmt.Errorf("reconciling credentials: %w", err)
	}
	if err := credentials.EnsureBootstrap(ctx, cfg.AdminDefaultPassword); err != nil {
		return fmt.Errorf("bootstrapping credentials: %w", err)
	}

	sessions := session.New(store.New(db), cfg.SessionTTL)
	slog.Info("session manager initialized", "ttl", cfg.SessionTTL)

	templatesFS, err := fs.Sub(web.Templates, "templates")
	if err != nil {
		return fmt.Errorf("getting templates fs: %w", err)
	}

	renderer, err := render.New(render.Config{
		TemplatesFS: templatesFS,
		SiteName:    cfg.SiteName,
		Tagline:     cfg.SiteTagline,
	})
	if err != nil {
		return fmt.Errorf("initializing renderer: %w", err)
	}
	slog.Info("template renderer initialized")

	server := handler.NewServer(cfg, db, credentials, sessions, renderer)

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           server.Routes(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env, "version", version.Get().Version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}

// Copyright (c) 2026 Denis Korolev
// SPDX-License-Identifier: MIT

package handler

import (
	"context"
	"database/sql"
	"io/fs"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dkorolev/packshelf/internal/auth"
	"github.com/dkorolev/packshelf/internal/config"
	"github.com/dkorolev/packshelf/internal/render"
	"github.com/dkorolev/packshelf/internal/session"
	"github.com/dkorolev/packshelf/internal/store"
	"github.com/dkorolev/packshelf/web"
)

const (
	testAdminUser       = "admin"
	testDefaultPassword = "changeme-now"
	testActivePassword  = "correct horse battery staple"
)

// testEnv is a fully wired application over a temp-file database.
type testEnv struct {
	srv *httptest.Server
	db  *sql.DB
	cfg *config.Config
}

// newTestEnv boots the full HTTP surface against a fresh database. The admin
// credential starts in its bootstrap (pending rotation) state.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := store.NewDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, store.Migrate(db))

	cfg := &config.Config{
		ServerHost:           "localhost",
		ServerPort:           8080,
		SessionSecret:        "x9K#mP2$vL8@nQ4!wR6&yT0*zU3^aB5%",
		Env:                  "development",
		SessionTTL:           time.Hour,
		AdminUsername:        testAdminUser,
		AdminDefaultPassword: testDefaultPassword,
		MinPasswordLength:    10,
		SiteName:             "Packshelf",
		SiteTagline:          "Curated download packs",
	}

	ctx := context.Background()
	credentials := auth.NewManager(db, cfg.AdminUsername, cfg.MinPasswordLength)
	require.NoError(t, credentials.Reconcile(ctx))
	require.NoError(t, credentials.EnsureBootstrap(ctx, cfg.AdminDefaultPassword))

	sessions := session.New(store.New(db), cfg.SessionTTL)

	templatesFS, err := fs.Sub(web.Templates, "templates")
	require.NoError(t, err)

	renderer, err := render.New(render.Config{
		TemplatesFS: templatesFS,
		SiteName:    cfg.SiteName,
		Tagline:     cfg.SiteTagline,
	})
	require.NoError(t, err)

	srv := httptest.NewServer(NewServer(cfg, db, credentials, sessions, renderer).Routes())
	t.Cleanup(srv.Close)

	return &testEnv{srv: srv, db: db, cfg: cfg}
}

// activateCredential replaces the bootstrap credential with one that does
// not require rotation.
func (e *testEnv) activateCredential(t *testing.T) {
	t.Helper()

	hash, salt, err := auth.DeriveHash(testActivePassword, "")
	require.NoError(t, err)

	require.NoError(t, store.New(e.db).UpsertCredential(context.Background(), store.UpsertCredentialParams{
		Username:           testAdminUser,
		PasswordHash:       hash,
		Salt:               salt,
		MustChangePassword: false,
		UpdatedAt:          time.Now(),
	}))
}

// client returns an HTTP client with its own cookie jar that does not follow
// redirects, so tests can assert on Location headers.
func (e *testEnv) client(t *testing.T) *http.Client {
	t.Helper()

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	return &http.Client{
		Jar: jar,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

// login posts the login form and asserts the redirect target.
func (e *testEnv) login(t *testing.T, c *http.Client, password, wantLocation string) {
	t.Helper()

	resp, err := c.PostForm(e.srv.URL+"/admin/login", url.Values{
		"username": {testAdminUser},
		"password": {password},
	})
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	loc, err := resp.Location()
	require.NoError(t, err)
	require.Equal(t, wantLocation, loc.Path)
}

// postForm posts a form and returns the response. Caller closes the body.
func (e *testEnv) postForm(t *testing.T, c *http.Client, path string, form url.Values) *http.Response {
	t.Helper()

	resp, err := c.PostForm(e.srv.URL+path, form)
	require.NoError(t, err)
	return resp
}

// get fetches a path and returns the response. Caller closes the body.
func (e *testEnv) get(t *testing.T, c *http.Client, path string) *http.Response {
	t.Helper()

	resp, err := c.Get(e.srv.URL + path)
	require.NoError(t, err)
	return resp
}

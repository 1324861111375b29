// Copyright (c) 2026 Denis Korolev
// SPDX-License-Identifier: MIT

package render

import (
	"io/fs"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkorolev/packshelf/web"
)

func testRenderer(t *testing.T) *Renderer {
	t.Helper()

	templatesFS, err := fs.Sub(web.Templates, "templates")
	require.NoError(t, err)

	r, err := New(Config{
		TemplatesFS: templatesFS,
		SiteName:    "Test Gallery",
		Tagline:     "downloads and such",
	})
	require.NoError(t, err)
	return r
}

type galleryData struct {
	Videos []any
	Query  string
}

func TestRenderGallery(t *testing.T) {
	r := testRenderer(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/", nil)

	err := r.Render(rec, req, "public/gallery", TemplateData{
		Title: "Home",
		Data:  galleryData{},
	})
	require.NoError(t, err)

	body := rec.Body.String()
	assert.Contains(t, body, "Test Gallery")
	assert.Contains(t, body, "downloads and such")
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
}

func TestRenderUnknownTemplate(t *testing.T) {
	r := testRenderer(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/", nil)

	err := r.Render(rec, req, "public/nope", TemplateData{})
	assert.Error(t, err)
}

func TestRenderFlashFromQuery(t *testing.T) {
	r := testRenderer(t)

	tests := []struct {
		name      string
		url       string
		wantFlash string
		wantClass string
	}{
		{"error param", "/?error=Something+failed", "Something failed", "flash error"},
		{"message param", "/?message=Saved", "Saved", "flash success"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest("GET", tt.url, nil)

			err := r.Render(rec, req, "public/gallery", TemplateData{Data: galleryData{}})
			require.NoError(t, err)

			body := rec.Body.String()
			assert.Contains(t, body, tt.wantFlash)
			assert.Contains(t, body, tt.wantClass)
		})
	}
}

func TestMarkdownSanitizesHTML(t *testing.T) {
	r := testRenderer(t)

	out := string(r.Markdown("**bold** <script>alert(1)</script>"))
	assert.Contains(t, out, "<strong>bold</strong>")
	assert.False(t, strings.Contains(out, "<script>"), "script tags must be stripped")
}

func TestMarkdownRendersLinks(t *testing.T) {
	r := testRenderer(t)

	out := string(r.Markdown("[docs](https://example.com)"))
	assert.Contains(t, out, `href="https://example.com"`)
}

// Copyright (c) 2026 Denis Korolev
// SPDX-License-Identifier: MIT

// Package util provides general-purpose utility functions including
// URL slug generation and safe filename derivation.
package util

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/mozillazg/go-unidecode"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	// slugRegex matches non-alphanumeric characters (except hyphens)
	slugRegex = regexp.MustCompile(`[^a-z0-9-]+`)
	// multipleHyphens matches multiple consecutive hyphens
	multipleHyphens = regexp.MustCompile(`-{2,}`)
)

// MaxSlugLength caps generated slugs to keep URLs manageable.
const MaxSlugLength = 80

// Slugify converts a string to a URL-friendly slug.
// It transliterates to ASCII, converts to lowercase, collapses runs of
// non-alphanumeric characters to single hyphens, and trims the result.
func Slugify(s string) string {
	// Transliterate non-Latin scripts to ASCII approximations first
	s = unidecode.Unidecode(s)

	// Normalize unicode characters (decompose accents)
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, s)

	// Convert to lowercase
	result = strings.ToLower(result)

	// Replace whitespace with hyphens
	result = strings.Join(strings.Fields(result), "-")

	// Collapse all remaining non-alphanumeric runs into hyphens
	result = slugRegex.ReplaceAllString(result, "-")
	result = multipleHyphens.ReplaceAllString(result, "-")

	// Trim hyphens from start and end
	result = strings.Trim(result, "-")

	if len(result) > MaxSlugLength {
		result = strings.Trim(result[:MaxSlugLength], "-")
	}

	return result
}

// IsValidSlug checks if a string is a valid slug format.
func IsValidSlug(s string) bool {
	if s == "" || len(s) > MaxSlugLength {
		return false
	}

	for _, r := range s {
		if !((r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-') {
			return false
		}
	}

	if s[0] == '-' || s[len(s)-1] == '-' {
		return false
	}

	return !strings.Contains(s, "--")
}

// Copyright (c) 2026 Denis Korolev
// SPDX-License-Identifier: MIT

package util

import (
	"path"
	"strings"
)

// MaxFilenameLength caps derived filenames for generated downloads.
const MaxFilenameLength = 100

// DefaultExtension is appended to derived filenames with no extension.
const DefaultExtension = ".txt"

// SafeFilename derives a filename safe to send as a download attachment.
// Path separators and control characters are stripped, the length is
// capped, and a default extension is appended when none is inferable.
// An empty or fully-stripped input yields "download.txt".
func SafeFilename(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r == '/' || r == '\\' || r == ':':
			// Path separators become hyphens so "a/b" stays readable
			b.WriteRune('-')
		case r < 0x20 || r == 0x7f:
			// Drop control characters
		case r == '"':
			// Would break the Content-Disposition header
		default:
			b.WriteRune(r)
		}
	}

	name = strings.TrimSpace(b.String())
	name = strings.Trim(name, ".")
	if name == "" {
		name = "download"
	}

	ext := path.Ext(name)
	if ext == "" || ext == name {
		ext = DefaultExtension
		name += ext
	}

	if len(name) > MaxFilenameLength {
		if len(ext) >= MaxFilenameLength {
			// An "extension" longer than the cap is not a real extension
			ext = DefaultExtension
		}
		base := strings.TrimSuffix(name, path.Ext(name))
		if len(base) > MaxFilenameLength-len(ext) {
			base = base[:MaxFilenameLength-len(ext)]
		}
		base = strings.TrimRight(base, ". ")
		if base == "" {
			base = "download"
		}
		name = base + ext
	}

	return name
}

// Copyright (c) 2026 Denis Korolev
// SPDX-License-Identifier: MIT

package util

import (
	"strings"
	"testing"
)

func TestSafeFilename(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "plain name keeps extension",
			input:    "links.md",
			expected: "links.md",
		},
		{
			name:     "no extension gets default",
			input:    "notes",
			expected: "notes.txt",
		},
		{
			name:     "path separators stripped",
			input:    "../etc/passwd",
			expected: "-etc-passwd.txt",
		},
		{
			name:     "windows separators stripped",
			input:    `C:\temp\file.txt`,
			expected: "C--temp-file.txt",
		},
		{
			name:     "control characters dropped",
			input:    "bad\x00\x1fname.txt",
			expected: "badname.txt",
		},
		{
			name:     "empty input",
			input:    "",
			expected: "download.txt",
		},
		{
			name:     "only dots",
			input:    "...",
			expected: "download.txt",
		},
		{
			name:     "extension longer than cap",
			input:    "data." + strings.Repeat("x", 150),
			expected: "data.txt",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := SafeFilename(tt.input)
			if result != tt.expected {
				t.Errorf("SafeFilename(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestSafeFilenameLengthCap(t *testing.T) {
	long := strings.Repeat("a", 300) + ".md"
	result := SafeFilename(long)
	if len(result) > MaxFilenameLength {
		t.Errorf("SafeFilename produced %d chars, cap is %d", len(result), MaxFilenameLength)
	}
	if !strings.HasSuffix(result, ".md") {
		t.Errorf("SafeFilename(%q) lost extension: %q", long, result)
	}
}

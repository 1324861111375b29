// Copyright (c) 2026 Denis Korolev
// SPDX-License-Identifier: MIT

package util

import (
	"net/url"
	"strings"
)

// ThumbnailFromVideoURL derives a thumbnail image URL from a known video
// platform link. Returns an empty string when no thumbnail can be inferred;
// callers treat that as "no enrichment", never as an error.
func ThumbnailFromVideoURL(videoURL string) string {
	u, err := url.Parse(videoURL)
	if err != nil || u.Host == "" {
		return ""
	}

	host := strings.TrimPrefix(strings.ToLower(u.Host), "www.")

	var videoID string
	switch host {
	case "youtube.com", "m.youtube.com", "youtube-nocookie.com":
		switch {
		case u.Path == "/watch":
			videoID = u.Query().Get("v")
		case strings.HasPrefix(u.Path, "/embed/"):
			videoID = strings.TrimPrefix(u.Path, "/embed/")
		case strings.HasPrefix(u.Path, "/shorts/"):
			videoID = strings.TrimPrefix(u.Path, "/shorts/")
		}
	case "youtu.be":
		videoID = strings.TrimPrefix(u.Path, "/")
	}

	videoID = strings.Trim(videoID, "/")
	if videoID == "" || !isVideoID(videoID) {
		return ""
	}

	return "https://img.youtube.com/vi/" + videoID + "/hqdefault.jpg"
}

// isVideoID reports whether s looks like a YouTube video identifier.
func isVideoID(s string) bool {
	if len(s) < 8 || len(s) > 16 {
		return false
	}
	for _, r := range s {
		if !((r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
			(r >= '0' && r <= '9') || r == '-' || r == '_') {
			return false
		}
	}
	return true
}

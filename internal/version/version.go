// Copyright (c) 2026 Denis Korolev
// SPDX-License-Identifier: MIT

// Package version provides build-time version information.
package version

import "fmt"

// Injected via -ldflags at build time.
var (
	Version   = "dev"     // semantic version from git tags (e.g. "v1.2.3")
	GitCommit = "unknown" // short git commit hash
	BuildTime = "unknown" // build timestamp in RFC3339 format
)

// Info bundles the build-time version fields.
type Info struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildTime string `json:"build_time"`
}

// Get returns the version information for this build.
func Get() Info {
	return Info{
		Version:   Version,
		GitCommit: GitCommit,
		BuildTime: BuildTime,
	}
}

// String renders the version in a single human-readable line.
func (i Info) String() string {
	return fmt.Sprintf("%s (commit %s, built %s)", i.Version, i.GitCommit, i.BuildTime)
}

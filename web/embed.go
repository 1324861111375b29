// Copyright (c) 2026 Denis Korolev
// SPDX-License-Identifier: MIT

package web

import "embed"

//go:embed all:templates
var Templates embed.FS

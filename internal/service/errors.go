// Copyright (c) 2026 Denis Korolev
// SPDX-License-Identifier: MIT

package service

import "errors"

// Error taxonomy for content operations. Handlers convert these into
// redirect-with-message responses or JSON error payloads.
var (
	// ErrValidation marks a missing or invalid required field. User-correctable.
	ErrValidation = errors.New("validation failed")
	// ErrConflict marks a uniqueness violation (duplicate slug).
	ErrConflict = errors.New("conflict")
	// ErrNotFound marks an operation on a missing ID.
	ErrNotFound = errors.New("not found")
)

// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package native

import "errors"

var (
	// ErrNoBackendAvailable is returned when no registered backend is available.
	ErrNoBackendAvailable = errors.New("native: no backend available")

	// ErrBackendNotFound is returned when a named backend is not registered.
	ErrBackendNotFound = errors.New("native: backend not found")

	// ErrBackendUnavailable is returned when a named backend is registered
	// but reports itself unavailable on this system.
	ErrBackendUnavailable = errors.New("native: backend not available")

	// ErrSyncUnsupported is returned by FenceSync when the context has no
	// sync objects.
	ErrSyncUnsupported = errors.New("native: sync objects not supported")
)

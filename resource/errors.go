// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package resource

import "errors"

var (
	// ErrUnsupportedCapability is returned when a request exceeds a probed
	// limit or needs an extension the device lacks. Nothing is registered.
	ErrUnsupportedCapability = errors.New("resource: unsupported capability")

	// ErrInvalidDescriptor is returned for malformed descriptors.
	ErrInvalidDescriptor = errors.New("resource: invalid descriptor")

	// ErrStaleHandle is returned for handles whose slot was reused.
	ErrStaleHandle = errors.New("resource: stale handle")

	// ErrResourceDestroyed is returned when operating on a destroyed resource.
	ErrResourceDestroyed = errors.New("resource: resource destroyed")

	// ErrRegistryClosed is returned after DestroyAll.
	ErrRegistryClosed = errors.New("resource: registry closed")
)

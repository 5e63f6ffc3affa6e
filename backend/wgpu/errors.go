// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import "errors"

var (
	// ErrDeviceLost is returned by calls made after Lose or Release.
	ErrDeviceLost = errors.New("wgpu: device lost")

	// ErrUnknownObject is returned when an id names no live object of the
	// expected kind.
	ErrUnknownObject = errors.New("wgpu: unknown object")

	// ErrNoColorAttachment is returned when reading a framebuffer without
	// color attachments.
	ErrNoColorAttachment = errors.New("wgpu: framebuffer has no color attachment")

	// ErrFormatMismatch is returned when a read format cannot be produced
	// from the framebuffer format.
	ErrFormatMismatch = errors.New("wgpu: read format does not match framebuffer")

	// ErrTimeout is returned when the GPU does not finish within the wait
	// timeout.
	ErrTimeout = errors.New("wgpu: timed out waiting for GPU")

	// ErrNoAdapter is returned when the backend exposes no adapter.
	ErrNoAdapter = errors.New("wgpu: no GPU adapter found")
)

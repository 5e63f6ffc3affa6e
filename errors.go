// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpudev

import (
	"errors"
	"fmt"

	"github.com/gogpu/gpudev/caps"
	"github.com/gogpu/gpudev/native"
	"github.com/gogpu/gpudev/resource"
)

var (
	// ErrInsufficientCapability is returned by New when the device misses a
	// mandatory minimum.
	ErrInsufficientCapability = caps.ErrInsufficientCapability

	// ErrUnsupportedCapability is returned when a request exceeds a probed
	// limit or needs a missing extension.
	ErrUnsupportedCapability = resource.ErrUnsupportedCapability

	// ErrConcurrentReadback is returned when an asynchronous readback is
	// requested while another one is in flight.
	ErrConcurrentReadback = errors.New("gpudev: concurrent readback rejected")

	// ErrUnsupportedReadFormat is returned by ReadPixels for destination
	// types the device cannot read into.
	ErrUnsupportedReadFormat = errors.New("gpudev: unsupported readPixels buffer type")

	// ErrBufferTooSmall is returned when a readback destination cannot hold
	// the requested rectangle.
	ErrBufferTooSmall = errors.New("gpudev: destination buffer too small")

	// ErrInvalidRectangle is returned when a readback rectangle has a
	// negative or unrepresentable size.
	ErrInvalidRectangle = errors.New("gpudev: invalid readback rectangle")

	// ErrContextLost is returned by resource creation and readback while the
	// context is lost.
	ErrContextLost = errors.New("gpudev: context lost")

	// ErrContextDestroyed is returned after Destroy.
	ErrContextDestroyed = errors.New("gpudev: context destroyed")
)

// NativeError is a device error caught by a debug context.
type NativeError struct {
	Op   string
	Code native.ErrorCode
}

func (e *NativeError) Error() string {
	return fmt.Sprintf("gpudev: %s: native error '%s' (%s)", e.Op, e.Code.Description(), e.Code)
}

// Is reports a lost-context native error as ErrContextLost.
func (e *NativeError) Is(target error) bool {
	return target == ErrContextLost && e.Code == native.ContextLostError
}

// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package caps probes the capabilities of a native device into an
// immutable Set.
//
// A Set is a plain value: it is rebuilt, never mutated, after a context is
// restored, and every rebuild carries a new epoch.
package caps

import (
	"errors"
	"fmt"

	"github.com/gogpu/gpudev/native"
)

// MinVertexTextureImageUnits is the mandatory minimum for
// Limits.MaxVertexTextureImageUnits. Vertex shaders sample positions,
// sizes and colors from textures, so fewer units cannot render.
const MinVertexTextureImageUnits = 8

// ErrInsufficientCapability is returned by Validate when a mandatory
// minimum is not met.
var ErrInsufficientCapability = errors.New("caps: insufficient capability")

// Limits are implementation limits of a device.
type Limits struct {
	MaxTextureSize             int
	Max3DTextureSize           int
	MaxRenderbufferSize        int
	MaxDrawBuffers             int
	MaxTextureImageUnits       int
	MaxVertexTextureImageUnits int
	MaxVertexAttribs           int
}

// Set is the probed capability record of one context epoch.
type Set struct {
	// Epoch increases every time the device is probed by the same context.
	Epoch uint64

	// Level is the API level of the context.
	Level native.Level

	Limits Limits

	extensions [native.ExtensionCount]bool
}

// coreInLevel2 lists extensions that are part of the Level2 core and need
// no separate extension on such contexts.
var coreInLevel2 = map[native.Extension]bool{
	native.ExtDrawBuffers:       true,
	native.ExtTextureFloat:      true,
	native.ExtTextureHalfFloat:  true,
	native.ExtIntegerTextures:   true,
	native.ExtSyncObjects:       true,
	native.ExtDepthTexture:      true,
	native.ExtInstancedArrays:   true,
	native.ExtVertexArrayObject: true,
}

// Probe inspects dev. It never fails: missing extensions are reported as
// absent and the limits that depend on them as 0.
func Probe(dev native.Device, epoch uint64) Set {
	s := Set{
		Epoch: epoch,
		Level: dev.Level(),
	}
	for _, ext := range native.Extensions() {
		s.extensions[ext] = dev.HasExtension(ext) ||
			(s.Level >= native.Level2 && coreInLevel2[ext])
	}

	s.Limits = Limits{
		MaxTextureSize:             dev.Parameter(native.ParamMaxTextureSize),
		MaxRenderbufferSize:        dev.Parameter(native.ParamMaxRenderbufferSize),
		MaxTextureImageUnits:       dev.Parameter(native.ParamMaxTextureImageUnits),
		MaxVertexTextureImageUnits: dev.Parameter(native.ParamMaxVertexTextureImageUnits),
		MaxVertexAttribs:           dev.Parameter(native.ParamMaxVertexAttribs),
	}
	if s.Level >= native.Level2 {
		s.Limits.Max3DTextureSize = dev.Parameter(native.ParamMax3DTextureSize)
	}
	if s.Has(native.ExtDrawBuffers) {
		s.Limits.MaxDrawBuffers = dev.Parameter(native.ParamMaxDrawBuffers)
	}
	return s
}

// Has reports whether an optional extension is usable.
func (s Set) Has(ext native.Extension) bool {
	if ext < 0 || int(ext) >= native.ExtensionCount {
		return false
	}
	return s.extensions[ext]
}

// Extensions returns the usable extensions in declaration order.
func (s Set) Extensions() []native.Extension {
	var out []native.Extension
	for _, ext := range native.Extensions() {
		if s.Has(ext) {
			out = append(out, ext)
		}
	}
	return out
}

// Validate checks the mandatory minimums.
func (s Set) Validate() error {
	if s.Limits.MaxVertexTextureImageUnits < MinVertexTextureImageUnits {
		return fmt.Errorf("%w: need MAX_VERTEX_TEXTURE_IMAGE_UNITS >= %d, have %d",
			ErrInsufficientCapability, MinVertexTextureImageUnits, s.Limits.MaxVertexTextureImageUnits)
	}
	return nil
}

// String returns a one-line summary for logging.
func (s Set) String() string {
	return fmt.Sprintf("Caps[epoch %d, %s, tex %d, 3d %d, rb %d, draw buffers %d, vtu %d, %d extensions]",
		s.Epoch, s.Level, s.Limits.MaxTextureSize, s.Limits.Max3DTextureSize,
		s.Limits.MaxRenderbufferSize, s.Limits.MaxDrawBuffers,
		s.Limits.MaxVertexTextureImageUnits, len(s.Extensions()))
}

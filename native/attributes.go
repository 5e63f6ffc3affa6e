// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package native

import "github.com/gogpu/gputypes"

// Power preference names accepted in Attributes.PowerPreference.
const (
	PowerDefault         = ""
	PowerHighPerformance = "high-performance"
	PowerLowPower        = "low-power"
)

// Attributes are context creation attributes negotiated with a backend.
type Attributes struct {
	// PreferredBackend names the backend tried first. Empty selects by priority.
	PreferredBackend string `toml:"preferred_backend"`

	// PreferLegacy asks for a Level1 context even when Level2 is available.
	PreferLegacy bool `toml:"prefer_legacy"`

	// Antialias requests a multisampled default framebuffer.
	Antialias bool `toml:"antialias"`

	// PreserveDrawingBuffer keeps the default framebuffer between frames.
	PreserveDrawingBuffer bool `toml:"preserve_drawing_buffer"`

	// PowerPreference is one of PowerDefault, PowerHighPerformance or PowerLowPower.
	PowerPreference string `toml:"power_preference"`

	// Width and Height size the default framebuffer.
	Width  int `toml:"width"`
	Height int `toml:"height"`
}

// DefaultAttributes returns attributes for a 1x1 high-performance context.
func DefaultAttributes() Attributes {
	return Attributes{
		PowerPreference: PowerHighPerformance,
		Width:           1,
		Height:          1,
	}
}

// Power converts PowerPreference to the gputypes value.
// Unknown names map to high performance.
func (a Attributes) Power() gputypes.PowerPreference {
	if a.PowerPreference == PowerLowPower {
		return gputypes.PowerPreferenceLowPower
	}
	return gputypes.PowerPreferenceHighPerformance
}

// Size returns the drawing buffer size, clamped to at least 1x1.
func (a Attributes) Size() (width, height int) {
	width, height = a.Width, a.Height
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	return width, height
}

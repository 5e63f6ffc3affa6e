// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package state caches the currently bound pipeline state so callers can
// skip redundant device calls.
//
// The Tracker never talks to the device. Every setter reports whether the
// value changed; the caller issues the device call only when it did.
package state

import "github.com/gogpu/gpudev/native"

// None is the sentinel for "nothing bound". Resource ids are never negative,
// so the first Set after Reset always reports a change.
const None int64 = -1

// Rect is a viewport or scissor rectangle.
type Rect struct {
	X, Y, Width, Height int
}

// Tracker is the state cache of one context. It is not safe for concurrent
// use; it belongs to the rendering goroutine.
type Tracker struct {
	program    int64
	material   int64
	renderItem int64

	enabled map[native.Capability]bool

	colorMask    [4]bool
	colorMaskSet bool
	depthMask    bool
	depthMaskSet bool
	clearColor   [4]float32
	clearSet     bool
	viewport     Rect
	viewportSet  bool
	scissor      Rect
	scissorSet   bool
}

// New returns a tracker in the reset state.
func New() *Tracker {
	t := &Tracker{}
	t.Reset()
	return t
}

// Reset forgets everything, so the next submission performs a full bind.
func (t *Tracker) Reset() {
	t.program = None
	t.material = None
	t.renderItem = None
	t.enabled = make(map[native.Capability]bool)
	t.colorMaskSet = false
	t.depthMaskSet = false
	t.clearSet = false
	t.viewportSet = false
	t.scissorSet = false
}

// CurrentProgram returns the bound program id or None.
func (t *Tracker) CurrentProgram() int64 { return t.program }

// CurrentMaterial returns the bound material id or None.
func (t *Tracker) CurrentMaterial() int64 { return t.material }

// CurrentRenderItem returns the bound render item id or None.
func (t *Tracker) CurrentRenderItem() int64 { return t.renderItem }

// SetCurrentProgram records the bound program and reports whether it changed.
func (t *Tracker) SetCurrentProgram(id int64) bool {
	return swap(&t.program, id)
}

// SetCurrentMaterial records the bound material and reports whether it changed.
func (t *Tracker) SetCurrentMaterial(id int64) bool {
	return swap(&t.material, id)
}

// SetCurrentRenderItem records the bound render item and reports whether it changed.
func (t *Tracker) SetCurrentRenderItem(id int64) bool {
	return swap(&t.renderItem, id)
}

func swap(cur *int64, id int64) bool {
	if *cur == id {
		return false
	}
	*cur = id
	return true
}

// Enable records c as enabled and reports whether the device call is needed.
func (t *Tracker) Enable(c native.Capability) bool {
	return t.setEnabled(c, true)
}

// Disable records c as disabled and reports whether the device call is needed.
func (t *Tracker) Disable(c native.Capability) bool {
	return t.setEnabled(c, false)
}

func (t *Tracker) setEnabled(c native.Capability, on bool) bool {
	if cur, ok := t.enabled[c]; ok && cur == on {
		return false
	}
	t.enabled[c] = on
	return true
}

// ColorMask records the color write mask.
func (t *Tracker) ColorMask(r, g, b, a bool) bool {
	m := [4]bool{r, g, b, a}
	if t.colorMaskSet && t.colorMask == m {
		return false
	}
	t.colorMask, t.colorMaskSet = m, true
	return true
}

// DepthMask records the depth write mask.
func (t *Tracker) DepthMask(on bool) bool {
	if t.depthMaskSet && t.depthMask == on {
		return false
	}
	t.depthMask, t.depthMaskSet = on, true
	return true
}

// ClearColor records the clear color.
func (t *Tracker) ClearColor(r, g, b, a float32) bool {
	c := [4]float32{r, g, b, a}
	if t.clearSet && t.clearColor == c {
		return false
	}
	t.clearColor, t.clearSet = c, true
	return true
}

// Viewport records the viewport.
func (t *Tracker) Viewport(r Rect) bool {
	if t.viewportSet && t.viewport == r {
		return false
	}
	t.viewport, t.viewportSet = r, true
	return true
}

// Scissor records the scissor box.
func (t *Tracker) Scissor(r Rect) bool {
	if t.scissorSet && t.scissor == r {
		return false
	}
	t.scissor, t.scissorSet = r, true
	return true
}

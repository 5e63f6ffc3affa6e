// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpudev

import "github.com/gogpu/gpudev/resource"

// Stats returns a snapshot of resource counts and draw statistics.
// It is safe for concurrent use.
func (c *Context) Stats() resource.Stats {
	return c.counter.Snapshot()
}

// CountDraw records a submitted draw.
func (c *Context) CountDraw(d resource.Draw) {
	c.counter.CountDraw(d)
}

// CountCulled records n render items skipped for reason.
func (c *Context) CountCulled(reason resource.CullReason, n int) {
	c.counter.CountCulled(reason, n)
}

// ResetDrawStats zeroes the per-frame draw, call and cull counters.
func (c *Context) ResetDrawStats() {
	c.counter.ResetDraws()
}

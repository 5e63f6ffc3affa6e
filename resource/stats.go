// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package resource

import "sync"

// Counts holds the number of live resources per kind.
type Counts struct {
	Attribute    int
	Elements     int
	Framebuffer  int
	Program      int
	Renderbuffer int
	Shader       int
	Texture      int
	CubeTexture  int
	VertexArray  int
	PixelPack    int
}

// Of returns the count for kind k.
func (c Counts) Of(k Kind) int {
	if p := c.field(k); p != nil {
		return *p
	}
	return 0
}

// Total returns the number of live resources of every kind.
func (c Counts) Total() int {
	n := 0
	for _, k := range Kinds() {
		n += c.Of(k)
	}
	return n
}

func (c *Counts) field(k Kind) *int {
	switch k {
	case KindAttribute:
		return &c.Attribute
	case KindElements:
		return &c.Elements
	case KindTexture:
		return &c.Texture
	case KindCubeTexture:
		return &c.CubeTexture
	case KindRenderbuffer:
		return &c.Renderbuffer
	case KindFramebuffer:
		return &c.Framebuffer
	case KindShader:
		return &c.Shader
	case KindProgram:
		return &c.Program
	case KindVertexArray:
		return &c.VertexArray
	case KindPixelPack:
		return &c.PixelPack
	}
	return nil
}

// CallCounts counts draw calls by entry point.
type CallCounts struct {
	DrawInstanced          int
	DrawInstancedBase      int
	MultiDrawInstancedBase int
	// Counts is the number of draws submitted through multi-draw calls.
	Counts int
}

// CullCounts counts render items skipped before submission.
type CullCounts struct {
	LOD       int
	Frustum   int
	Occlusion int
}

// Stats is a snapshot of resource and draw statistics.
type Stats struct {
	Resources Counts

	DrawCount          int
	InstanceCount      int
	InstancedDrawCount int

	Calls  CallCounts
	Culled CullCounts
}

// Call identifies the entry point of a draw.
type Call int

const (
	CallDrawInstanced Call = iota
	CallDrawInstancedBase
	CallMultiDrawInstancedBase
)

// Draw describes one submitted draw for accounting.
type Draw struct {
	Call Call
	// Count is the number of vertices or indices drawn per instance.
	Count     int
	Instances int
	// MultiCount is the number of draws packed into a multi-draw call.
	MultiCount int
}

// CullReason identifies why a render item was skipped.
type CullReason int

const (
	CullLOD CullReason = iota
	CullFrustum
	CullOcclusion
)

// Counter accumulates Stats. It is safe for concurrent use.
type Counter struct {
	mu sync.Mutex
	s  Stats
}

// NewCounter returns a zeroed counter.
func NewCounter() *Counter {
	return &Counter{}
}

// Snapshot returns a copy of the current statistics.
func (c *Counter) Snapshot() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.s
}

func (c *Counter) addResource(k Kind, delta int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if p := c.s.Resources.field(k); p != nil {
		*p += delta
	}
}

func (c *Counter) clearResources() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.s.Resources = Counts{}
}

// CountDraw records a draw.
func (c *Counter) CountDraw(d Draw) {
	instances := d.Instances
	if instances < 1 {
		instances = 1
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.s.DrawCount += d.Count
	c.s.InstanceCount += instances
	c.s.InstancedDrawCount += d.Count * instances
	switch d.Call {
	case CallDrawInstanced:
		c.s.Calls.DrawInstanced++
	case CallDrawInstancedBase:
		c.s.Calls.DrawInstancedBase++
	case CallMultiDrawInstancedBase:
		c.s.Calls.MultiDrawInstancedBase++
		c.s.Calls.Counts += d.MultiCount
	}
}

// CountCulled records n render items skipped for reason.
func (c *Counter) CountCulled(reason CullReason, n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch reason {
	case CullLOD:
		c.s.Culled.LOD += n
	case CullFrustum:
		c.s.Culled.Frustum += n
	case CullOcclusion:
		c.s.Culled.Occlusion += n
	}
}

// ResetDraws zeroes the per-frame draw, call and cull counters. Resource
// counts are kept.
func (c *Counter) ResetDraws() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.s = Stats{Resources: c.s.Resources}
}

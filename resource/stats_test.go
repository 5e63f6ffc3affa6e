// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package resource

import "testing"

func TestCounterDraws(t *testing.T) {
	c := NewCounter()
	c.CountDraw(Draw{Call: CallDrawInstanced, Count: 6, Instances: 10})
	c.CountDraw(Draw{Call: CallDrawInstancedBase, Count: 3})
	c.CountDraw(Draw{Call: CallMultiDrawInstancedBase, Count: 4, Instances: 2, MultiCount: 5})
	c.CountCulled(CullFrustum, 3)
	c.CountCulled(CullLOD, 1)
	c.CountCulled(CullOcclusion, 2)

	s := c.Snapshot()
	want := Stats{
		DrawCount:          13,
		InstanceCount:      13,
		InstancedDrawCount: 60 + 3 + 8,
		Calls:              CallCounts{DrawInstanced: 1, DrawInstancedBase: 1, MultiDrawInstancedBase: 1, Counts: 5},
		Culled:             CullCounts{LOD: 1, Frustum: 3, Occlusion: 2},
	}
	if s != want {
		t.Errorf("Snapshot() = %+v\nwant %+v", s, want)
	}
}

func TestResetDrawsKeepsResources(t *testing.T) {
	c := NewCounter()
	c.addResource(KindTexture, 2)
	c.CountDraw(Draw{Call: CallDrawInstanced, Count: 3})
	c.ResetDraws()

	s := c.Snapshot()
	if s.Resources.Texture != 2 {
		t.Errorf("texture count = %d, want 2", s.Resources.Texture)
	}
	if s.DrawCount != 0 || s.Calls != (CallCounts{}) {
		t.Errorf("draw counters not reset: %+v", s)
	}
}

func TestCountsTotal(t *testing.T) {
	c := Counts{Attribute: 1, Texture: 2, VertexArray: 3}
	if c.Total() != 6 {
		t.Errorf("Total() = %d, want 6", c.Total())
	}
	if c.Of(Kind(99)) != 0 {
		t.Error("unknown kind must count 0")
	}
}

// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpudev

import (
	"context"
	"errors"
	"image"
	"image/color"
	"math"
	"testing"
	"time"

	"github.com/gogpu/gpudev/sched"
)

// tickUntil runs scheduler ticks until fut settles or limit ticks ran.
func tickUntil(t *testing.T, s *sched.Scheduler, fut *sched.Future, limit int) int {
	t.Helper()
	ticks := 0
	for !fut.Settled() && ticks < limit {
		s.Tick()
		ticks++
	}
	if !fut.Settled() {
		t.Fatalf("future not settled after %d ticks", limit)
	}
	return ticks
}

func TestReadPixelsAsyncSingleFlight(t *testing.T) {
	c, dev := newTestContext(t)
	dev.SetFenceLatency(2)
	c.Clear(0, 1, 0, 1)

	first := make([]uint8, 4*4*4)
	f1 := c.ReadPixelsAsync(0, 0, 4, 4, first)
	if f1.Settled() {
		t.Fatal("native readback settled before any tick")
	}

	f2 := c.ReadPixelsAsync(0, 0, 4, 4, make([]uint8, 64))
	if !f2.Settled() || !errors.Is(f2.Err(), ErrConcurrentReadback) {
		t.Fatalf("second readback err = %v, want ErrConcurrentReadback", f2.Err())
	}

	tickUntil(t, c.Scheduler(), f1, 10)
	if err := f1.Err(); err != nil {
		t.Fatalf("first readback: %v", err)
	}
	if first[1] != 255 || first[0] != 0 || first[len(first)-1] != 255 {
		t.Errorf("pixels = %v, want green", first[:4])
	}

	f3 := c.ReadPixelsAsync(0, 0, 2, 2, make([]uint8, 16))
	tickUntil(t, c.Scheduler(), f3, 10)
	if err := f3.Err(); err != nil {
		t.Errorf("readback after the first resolved: %v", err)
	}
	if dev.Live("buffer") != 1 {
		t.Errorf("pixel-pack buffers = %d, want one reused buffer", dev.Live("buffer"))
	}
	if dev.PendingFences() != 0 {
		t.Error("readback fence not disposed")
	}
}

func TestReadPixelsAsyncInvalidRectangle(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
	}{
		{"negative width", -1, 1},
		{"negative height", 4, -4},
		{"overflowing size", math.MaxInt / 4, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, dev := newTestContext(t)
			before := dev.Calls()
			f := c.ReadPixelsAsync(0, 0, tt.width, tt.height, make([]uint8, 16))
			if !f.Settled() || !errors.Is(f.Err(), ErrInvalidRectangle) {
				t.Fatalf("err = %v, want ErrInvalidRectangle", f.Err())
			}
			if after := dev.Calls(); after != before {
				t.Errorf("device touched for a rejected rectangle: %+v", after)
			}

			next := c.ReadPixelsAsync(0, 0, 2, 2, make([]uint8, 16))
			tickUntil(t, c.Scheduler(), next, 5)
			if err := next.Err(); err != nil {
				t.Errorf("readback after a rejected rectangle: %v", err)
			}
		})
	}
}

func TestReadPixelsAsyncPackBufferRegistered(t *testing.T) {
	c, dev := newTestContext(t)

	tickUntil(t, c.Scheduler(), c.ReadPixelsAsync(0, 0, 2, 2, make([]uint8, 16)), 5)
	if got := c.Stats().Resources.PixelPack; got != 1 {
		t.Fatalf("pixel-pack resources = %d, want 1", got)
	}

	// A larger rectangle grows the same resource.
	tickUntil(t, c.Scheduler(), c.ReadPixelsAsync(0, 0, 8, 8, make([]uint8, 256)), 5)
	if got := c.Stats().Resources.PixelPack; got != 1 {
		t.Errorf("pixel-pack resources after growing = %d, want 1", got)
	}
	if dev.Live("buffer") != 1 {
		t.Errorf("native buffers = %d, want 1", dev.Live("buffer"))
	}

	c.Destroy(DestroyOptions{DoNotForceContextLoss: true})
	if dev.Live("buffer") != 0 {
		t.Error("pixel-pack buffer survived Destroy")
	}
}

func TestReadPixelsAsyncAcrossRestore(t *testing.T) {
	c, dev := newTestContext(t)
	dev.SetFenceLatency(100)
	f := c.ReadPixelsAsync(0, 0, 1, 1, make([]uint8, 4))

	c.SetContextLost()
	dev.Lose()
	dev.Restore()
	if err := c.HandleContextRestored(nil); err != nil {
		t.Fatal(err)
	}
	dev.SetFenceLatency(0)

	tickUntil(t, c.Scheduler(), f, 200)
	if !errors.Is(f.Err(), ErrContextLost) {
		t.Errorf("err = %v, want ErrContextLost", f.Err())
	}

	next := c.ReadPixelsAsync(0, 0, 1, 1, make([]uint8, 4))
	tickUntil(t, c.Scheduler(), next, 5)
	if err := next.Err(); err != nil {
		t.Errorf("readback after restore: %v", err)
	}
}

func TestReadPixelsAsyncAwait(t *testing.T) {
	c, dev := newTestContext(t)
	dev.SetFenceLatency(3)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := c.ReadPixelsAsync(0, 0, 1, 1, make([]uint8, 4)).Await(ctx); err != nil {
		t.Fatalf("Await: %v", err)
	}
}

func TestReadPixelsAsyncFallback(t *testing.T) {
	c, err := New(legacyDevice())
	if err != nil {
		t.Fatal(err)
	}
	f := c.ReadPixelsAsync(0, 0, 1, 1, make([]uint8, 4))
	if !f.Settled() || f.Err() != nil {
		t.Errorf("fallback readback: settled=%v err=%v", f.Settled(), f.Err())
	}
}

func TestReadPixelsAsyncLost(t *testing.T) {
	c, dev := newTestContext(t)
	dev.SetFenceLatency(100)
	f := c.ReadPixelsAsync(0, 0, 1, 1, make([]uint8, 4))
	c.Scheduler().Tick()

	c.SetContextLost()
	dev.Lose()
	tickUntil(t, c.Scheduler(), f, 2)
	if !errors.Is(f.Err(), ErrContextLost) {
		t.Errorf("err = %v, want ErrContextLost", f.Err())
	}

	if err := c.ReadPixelsAsync(0, 0, 1, 1, make([]uint8, 4)).Err(); !errors.Is(err, ErrContextLost) {
		t.Errorf("readback while lost err = %v, want ErrContextLost", err)
	}
}

func TestReadPixelsAsyncAfterRestore(t *testing.T) {
	c, dev := newTestContext(t)
	tickUntil(t, c.Scheduler(), c.ReadPixelsAsync(0, 0, 1, 1, make([]uint8, 4)), 5)

	c.SetContextLost()
	dev.Lose()
	dev.Restore()
	if err := c.HandleContextRestored(nil); err != nil {
		t.Fatal(err)
	}

	f := c.ReadPixelsAsync(0, 0, 1, 1, make([]uint8, 4))
	tickUntil(t, c.Scheduler(), f, 5)
	if err := f.Err(); err != nil {
		t.Errorf("readback after restore: %v", err)
	}
}

func TestWaitForGpuCommandsComplete(t *testing.T) {
	for _, n := range []int{0, 3, 20} {
		c, dev := newTestContext(t)
		dev.SetFenceLatency(n)
		fut := c.WaitForGpuCommandsComplete()
		if ticks := tickUntil(t, c.Scheduler(), fut, n+1); ticks != n+1 {
			t.Errorf("latency %d: resolved after %d ticks", n, ticks)
		}
	}
}

func TestWaitForGpuCommandsCompleteWhileLost(t *testing.T) {
	c, dev := newTestContext(t)
	c.SetContextLost()
	if fut := c.WaitForGpuCommandsComplete(); !fut.Settled() || fut.Err() != nil {
		t.Error("wait while lost must resolve immediately")
	}
	c.WaitForGpuCommandsCompleteSync()
	if dev.Calls().FenceSync != 0 || dev.Calls().ReadPixels != 0 {
		t.Error("lost context touched the device")
	}
}

func TestWaitForGpuCommandsCompleteSync(t *testing.T) {
	c, dev := newTestContext(t)
	c.WaitForGpuCommandsCompleteSync()
	if dev.Calls().ReadPixels != 1 {
		t.Errorf("ReadPixels calls = %d, want 1", dev.Calls().ReadPixels)
	}
}

func TestDrawingBufferPixelData(t *testing.T) {
	c, dev := newTestContext(t)
	dev.SetDrawingBufferSize(8, 4)
	c.Clear(0, 0, 1, 1)

	img, err := c.DrawingBufferPixelData()
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds() != image.Rect(0, 0, 8, 4) {
		t.Errorf("bounds = %v", img.Bounds())
	}
	if got := img.RGBAAt(7, 3); got != (color.RGBA{0, 0, 255, 255}) {
		t.Errorf("pixel = %v, want blue", got)
	}
}

func TestFlipY(t *testing.T) {
	// Two rows, bottom row first: bottom red, top white.
	buf := []uint8{
		255, 0, 0, 255,
		255, 255, 255, 255,
	}
	img := flipY(buf, 1, 2)
	if got := img.RGBAAt(0, 0); got != (color.RGBA{255, 255, 255, 255}) {
		t.Errorf("top = %v, want white", got)
	}
	if got := img.RGBAAt(0, 1); got != (color.RGBA{255, 0, 0, 255}) {
		t.Errorf("bottom = %v, want red", got)
	}
}

func TestThumbnail(t *testing.T) {
	tests := []struct {
		w, h, maxW, maxH int
		want             image.Rectangle
	}{
		{w: 200, h: 100, maxW: 50, maxH: 50, want: image.Rect(0, 0, 50, 25)},
		{w: 100, h: 200, maxW: 50, maxH: 50, want: image.Rect(0, 0, 25, 50)},
		{w: 10, h: 10, maxW: 50, maxH: 50, want: image.Rect(0, 0, 10, 10)},
	}
	for _, tt := range tests {
		src := image.NewRGBA(image.Rect(0, 0, tt.w, tt.h))
		if got := Thumbnail(src, tt.maxW, tt.maxH).Bounds(); got != tt.want {
			t.Errorf("Thumbnail(%dx%d, %d, %d) = %v, want %v", tt.w, tt.h, tt.maxW, tt.maxH, got, tt.want)
		}
	}
}

// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu_test

import (
	"context"
	"testing"
	"time"

	"github.com/gogpu/gpudev"
	"github.com/gogpu/gpudev/backend/wgpu"
	"github.com/gogpu/gpudev/native"
	"github.com/gogpu/gpudev/resource"
)

func newContext(t *testing.T) (*gpudev.Context, *wgpu.Device) {
	t.Helper()
	attrs := native.DefaultAttributes()
	attrs.Width, attrs.Height = 16, 16
	dev, err := wgpu.OpenNoop(attrs)
	if err != nil {
		t.Fatalf("OpenNoop: %v", err)
	}
	c, err := gpudev.New(dev)
	if err != nil {
		dev.Release()
		t.Fatalf("gpudev.New: %v", err)
	}
	t.Cleanup(func() { c.Destroy(gpudev.DestroyOptions{}) })
	return c, dev.(*wgpu.Device)
}

func TestContextOnNoop(t *testing.T) {
	c, _ := newContext(t)

	if c.Level() != native.Level2 {
		t.Errorf("Level() = %v, want Level2", c.Level())
	}
	if !c.Caps().Has(native.ExtSyncObjects) {
		t.Error("sync objects should be available")
	}

	rt, err := c.CreateRenderTarget(gpudev.RenderTargetDesc{Width: 8, Height: 8, Depth: true})
	if err != nil {
		t.Fatalf("CreateRenderTarget: %v", err)
	}
	rt.Bind()
	c.Clear(0, 0, 1, 1)

	dst := make([]uint8, 8*8*4)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := c.ReadPixelsAsync(0, 0, 8, 8, dst).Await(ctx); err != nil {
		t.Fatalf("ReadPixelsAsync: %v", err)
	}
	if err := c.WaitForGpuCommandsComplete().Await(ctx); err != nil {
		t.Fatalf("WaitForGpuCommandsComplete: %v", err)
	}

	floats := make([]float32, 8*8*4)
	if err := c.ReadPixels(0, 0, 8, 8, floats); err == nil {
		t.Error("reading an RGBA8 target as floats should fail")
	}
}

func TestContextRestoreOnNoop(t *testing.T) {
	c, dev := newContext(t)

	buf, err := c.Create(resource.BufferDesc{Label: "vertices", Size: 64})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	rt, err := c.CreateRenderTarget(gpudev.RenderTargetDesc{Width: 4, Height: 4})
	if err != nil {
		t.Fatalf("CreateRenderTarget: %v", err)
	}

	dev.Lose()
	c.SetContextLost()
	if !c.IsContextLost() {
		t.Fatal("context should be lost")
	}
	if err := c.HandleContextRestored(nil); err == nil {
		t.Fatal("restore must fail while the device is still lost")
	}

	dev.Restore()
	if err := c.HandleContextRestored(nil); err != nil {
		t.Fatalf("HandleContextRestored: %v", err)
	}
	if c.IsContextLost() {
		t.Fatal("context should be active after restore")
	}
	if buf.Native() == 0 {
		t.Error("buffer was not re-created")
	}
	if rt.Texture().Native() == 0 {
		t.Error("render target texture was not re-created")
	}
	if got := dev.Live(); got < 3 {
		t.Errorf("Live() = %d after restore, want at least 3", got)
	}
}

// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"testing"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"

	"github.com/gogpu/gpudev/native"
)

// hostProvider implements gpucontext.DeviceProvider and exposes HAL handles
// the way a host window does.
type hostProvider struct {
	device any
	queue  any
	format gputypes.TextureFormat
}

func (h *hostProvider) Device() gpucontext.Device             { return nil }
func (h *hostProvider) Queue() gpucontext.Queue               { return nil }
func (h *hostProvider) Adapter() gpucontext.Adapter           { return nil }
func (h *hostProvider) SurfaceFormat() gputypes.TextureFormat { return h.format }
func (h *hostProvider) HalDevice() any                        { return h.device }
func (h *hostProvider) HalQueue() any                         { return h.queue }

// plainProvider has no HAL accessors.
type plainProvider struct{}

func (plainProvider) Device() gpucontext.Device             { return nil }
func (plainProvider) Queue() gpucontext.Queue               { return nil }
func (plainProvider) Adapter() gpucontext.Adapter           { return nil }
func (plainProvider) SurfaceFormat() gputypes.TextureFormat { return gputypes.TextureFormatRGBA8Unorm }

func TestFromProvider(t *testing.T) {
	host := openNoop(t, native.DefaultAttributes())

	p := &hostProvider{device: host.device, queue: host.queue, format: gputypes.TextureFormatBGRA8Unorm}
	d, err := FromProvider(p, Config{Width: 8, Height: 8})
	if err != nil {
		t.Fatalf("FromProvider: %v", err)
	}
	if d.Name() != "provider" {
		t.Errorf("Name() = %q, want provider", d.Name())
	}
	if d.format != gputypes.TextureFormatBGRA8Unorm {
		t.Errorf("format = %v, want the surface format", d.format)
	}
	if w, h := d.DrawingBufferSize(); w != 8 || h != 8 {
		t.Errorf("DrawingBufferSize() = %dx%d, want 8x8", w, h)
	}

	if _, err := d.CreateBuffer(&native.BufferDesc{Label: "shared", Target: native.ArrayBuffer, Size: 16}); err != nil {
		t.Fatalf("CreateBuffer on a shared device: %v", err)
	}
	d.Release()

	// The host still owns its device.
	if host.device == nil || !host.usable() {
		t.Error("releasing a shared device must not release the host")
	}
}

func TestFromProviderErrors(t *testing.T) {
	host := openNoop(t, native.DefaultAttributes())

	tests := []struct {
		name     string
		provider gpucontext.DeviceProvider
	}{
		{"no HAL accessors", plainProvider{}},
		{"wrong device type", &hostProvider{device: "device", queue: host.queue}},
		{"wrong queue type", &hostProvider{device: host.device, queue: 42}},
		{"nil device", &hostProvider{queue: host.queue}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := FromProvider(tt.provider, Config{}); err == nil {
				t.Error("FromProvider should fail")
			}
		})
	}
}

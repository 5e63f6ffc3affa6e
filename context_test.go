// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpudev

import (
	"errors"
	"math"
	"testing"

	"github.com/gogpu/gpudev/native"
	"github.com/gogpu/gpudev/native/nativetest"
	"github.com/gogpu/gpudev/resource"
)

// newTestContext returns a Context on a fresh fake device.
func newTestContext(t *testing.T, opts ...Option) (*Context, *nativetest.Device) {
	t.Helper()
	dev := nativetest.New()
	c, err := New(dev, opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c, dev
}

// legacyDevice returns a Level1 device without integer textures or sync
// objects.
func legacyDevice() *nativetest.Device {
	dev := nativetest.New()
	dev.SetLevel(native.Level1)
	dev.SetExtension(native.ExtIntegerTextures, false)
	dev.SetExtension(native.ExtSyncObjects, false)
	return dev
}

func TestNewCapabilityMinimum(t *testing.T) {
	tests := []struct {
		units   int
		wantErr bool
	}{
		{units: 4, wantErr: true},
		{units: 7, wantErr: true},
		{units: 8, wantErr: false},
		{units: 16, wantErr: false},
	}
	for _, tt := range tests {
		dev := nativetest.New()
		dev.SetParam(native.ParamMaxVertexTextureImageUnits, tt.units)
		c, err := New(dev)
		if tt.wantErr {
			if !errors.Is(err, ErrInsufficientCapability) {
				t.Errorf("units=%d: err = %v, want ErrInsufficientCapability", tt.units, err)
			}
			if c != nil {
				t.Errorf("units=%d: got a context on failure", tt.units)
			}
			continue
		}
		if err != nil {
			t.Errorf("units=%d: unexpected error %v", tt.units, err)
		}
	}
}

func TestNewProvokingVertex(t *testing.T) {
	_, dev := newTestContext(t)
	if dev.ProvokingConvention() != native.FirstVertexConvention {
		t.Errorf("provoking vertex = %s, want first vertex", native.EnumName(uint32(dev.ProvokingConvention())))
	}

	dev = nativetest.New()
	dev.SetExtension(native.ExtProvokingVertex, false)
	if _, err := New(dev); err != nil {
		t.Fatal(err)
	}
	if dev.Calls().ProvokingVertex != 0 {
		t.Error("provoking vertex set without the extension")
	}
}

func TestLimitGetters(t *testing.T) {
	c, _ := newTestContext(t)
	if c.MaxTextureSize() != 4096 || c.Max3DTextureSize() != 256 || c.MaxRenderbufferSize() != 4096 ||
		c.MaxDrawBuffers() != 8 || c.MaxTextureImageUnits() != 16 {
		t.Errorf("limits = %+v", c.Caps().Limits)
	}
	if c.Level() != native.Level2 {
		t.Errorf("Level() = %s", c.Level())
	}
}

func TestClear(t *testing.T) {
	c, dev := newTestContext(t)
	dev.BindFramebuffer(3)

	c.Clear(1, 0, 0, 1)
	if dev.Calls().Clear != 1 {
		t.Fatalf("Clear calls = %d, want 1", dev.Calls().Clear)
	}
	if dev.BoundFramebuffer() != 0 {
		t.Error("Clear must target the default framebuffer")
	}
	if !dev.Enabled(native.CapScissorTest) {
		t.Error("scissor test not enabled")
	}

	px := make([]uint8, 4)
	if err := c.ReadPixels(0, 0, 1, 1, px); err != nil {
		t.Fatal(err)
	}
	if px[0] != 255 || px[1] != 0 || px[2] != 0 || px[3] != 255 {
		t.Errorf("pixel = %v, want red", px)
	}

	c.SetContextLost()
	c.Clear(0, 1, 0, 1)
	if dev.Calls().Clear != 1 {
		t.Error("Clear must be a no-op while lost")
	}
}

func TestReadPixelsFormats(t *testing.T) {
	tests := []struct {
		name    string
		dev     func() *nativetest.Device
		width   int
		height  int
		dst     any
		wantErr error
	}{
		{name: "uint8", dev: nativetest.New, dst: make([]uint8, 16)},
		{name: "float32", dev: nativetest.New, dst: make([]float32, 16)},
		{name: "int32", dev: nativetest.New, dst: make([]int32, 16)},
		{name: "int32 without integer textures", dev: legacyDevice, dst: make([]int32, 16), wantErr: ErrUnsupportedReadFormat},
		{name: "uint16", dev: nativetest.New, dst: make([]uint16, 16), wantErr: ErrUnsupportedReadFormat},
		{name: "nil", dev: nativetest.New, dst: nil, wantErr: ErrUnsupportedReadFormat},
		{name: "short buffer", dev: nativetest.New, dst: make([]uint8, 15), wantErr: ErrBufferTooSmall},
		{name: "negative width", dev: nativetest.New, width: -1, height: 1, dst: make([]uint8, 16), wantErr: ErrInvalidRectangle},
		{name: "negative height float32", dev: nativetest.New, width: 2, height: -2, dst: make([]float32, 16), wantErr: ErrInvalidRectangle},
		{name: "overflowing size", dev: nativetest.New, width: math.MaxInt / 2, height: 3, dst: make([]uint8, 16), wantErr: ErrInvalidRectangle},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dev := tt.dev()
			c, err := New(dev)
			if err != nil {
				t.Fatal(err)
			}
			c.Clear(0.5, 0.25, 1, 1)

			w, h := tt.width, tt.height
			if w == 0 && h == 0 {
				w, h = 2, 2
			}
			err = c.ReadPixels(0, 0, w, h, tt.dst)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				if dev.Calls().ReadPixels != 0 {
					t.Error("device read despite the rejected buffer")
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			switch buf := tt.dst.(type) {
			case []float32:
				if buf[0] != 0.5 || buf[1] != 0.25 || buf[15] != 1 {
					t.Errorf("float pixels = %v", buf[:4])
				}
			case []int32:
				if buf[2] != 1 || buf[3] != 1 {
					t.Errorf("int pixels = %v", buf[:4])
				}
			}
		})
	}
}

func TestReadPixelsWhileLostOrDestroyed(t *testing.T) {
	c, _ := newTestContext(t)
	c.SetContextLost()
	if err := c.ReadPixels(0, 0, 1, 1, make([]uint8, 4)); !errors.Is(err, ErrContextLost) {
		t.Errorf("lost: err = %v, want ErrContextLost", err)
	}

	c, _ = newTestContext(t)
	c.Destroy(DestroyOptions{})
	if err := c.ReadPixels(0, 0, 1, 1, make([]uint8, 4)); !errors.Is(err, ErrContextDestroyed) {
		t.Errorf("destroyed: err = %v, want ErrContextDestroyed", err)
	}
}

func TestDebugReportsNativeError(t *testing.T) {
	c, dev := newTestContext(t, WithDebug(true))
	dev.InjectError(native.InvalidOperation)

	err := c.ReadPixels(0, 0, 1, 1, make([]uint8, 4))
	var nerr *NativeError
	if !errors.As(err, &nerr) {
		t.Fatalf("err = %v, want *NativeError", err)
	}
	if nerr.Code != native.InvalidOperation || nerr.Op != "read pixels" {
		t.Errorf("NativeError = %+v", nerr)
	}
	if errors.Is(err, ErrContextLost) {
		t.Error("invalid operation must not match ErrContextLost")
	}

	dev.InjectError(native.ContextLostError)
	if _, err := c.Create(resource.BufferDesc{Size: 4}); !errors.Is(err, ErrContextLost) {
		t.Errorf("lost native error: err = %v, want ErrContextLost", err)
	}
	if got := c.Stats().Resources.Attribute; got != 0 {
		t.Errorf("failed create left %d buffers", got)
	}
}

func TestNonDebugIgnoresNativeErrors(t *testing.T) {
	c, dev := newTestContext(t)
	dev.InjectError(native.OutOfMemory)
	if err := c.ReadPixels(0, 0, 1, 1, make([]uint8, 4)); err != nil {
		t.Errorf("non-debug context reported %v", err)
	}
}

func TestCreateWhileLost(t *testing.T) {
	c, _ := newTestContext(t)
	c.SetContextLost()

	if _, err := c.Create(resource.BufferDesc{}); !errors.Is(err, ErrContextLost) {
		t.Errorf("Create err = %v, want ErrContextLost", err)
	}
	if _, err := c.CreateRenderTarget(RenderTargetDesc{Width: 4, Height: 4}); !errors.Is(err, ErrContextLost) {
		t.Errorf("CreateRenderTarget err = %v, want ErrContextLost", err)
	}
	if c.Stats().Resources.Total() != 0 {
		t.Error("resources registered while lost")
	}
}

func TestPixelRatio(t *testing.T) {
	c, _ := newTestContext(t, WithDevicePixelRatio(2), WithPixelScale(1.5))
	if got := c.PixelRatio(); got != 3 {
		t.Errorf("PixelRatio() = %v, want 3", got)
	}
	c.SetPixelScale(0)
	if got := c.PixelRatio(); got != 2 {
		t.Errorf("PixelRatio() with zero scale = %v, want 2", got)
	}
}

func TestStatsPassthrough(t *testing.T) {
	c, _ := newTestContext(t)
	c.CountDraw(resource.Draw{Call: resource.CallDrawInstanced, Count: 3, Instances: 2})
	c.CountCulled(resource.CullFrustum, 4)

	s := c.Stats()
	if s.DrawCount != 3 || s.InstancedDrawCount != 6 || s.Culled.Frustum != 4 {
		t.Errorf("Stats() = %+v", s)
	}
	c.ResetDrawStats()
	if s := c.Stats(); s.DrawCount != 0 || s.Culled.Frustum != 0 {
		t.Errorf("after ResetDrawStats: %+v", s)
	}
}

func TestNamed(t *testing.T) {
	n := NewNamed[int]()
	n.Set("b", 2)
	n.Set("a", 1)
	if v, ok := n.Get("a"); !ok || v != 1 {
		t.Errorf("Get(a) = %d, %v", v, ok)
	}
	if names := n.Names(); len(names) != 2 || names[0] != "a" || names[1] != "b" {
		t.Errorf("Names() = %v", names)
	}
	n.Delete("a")
	if _, ok := n.Get("a"); ok || n.Len() != 1 {
		t.Error("Delete(a) failed")
	}
	n.Clear()
	if n.Len() != 0 {
		t.Error("Clear failed")
	}
}

// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpudev

import (
	"fmt"
	"image"
	"math"
	"unsafe"

	"github.com/gogpu/gpudev/internal/glog"
	"github.com/gogpu/gpudev/native"
	"github.com/gogpu/gpudev/resource"
	"github.com/gogpu/gpudev/sched"
	"github.com/gogpu/gpudev/state"
)

// components returns the number of RGBA components in a width x height
// rectangle.
func components(width, height int) (int, error) {
	if width < 0 || height < 0 {
		return 0, fmt.Errorf("%w: %dx%d", ErrInvalidRectangle, width, height)
	}
	// Room for four components of up to four bytes each.
	if width > 0 && height > math.MaxInt/16/width {
		return 0, fmt.Errorf("%w: %dx%d overflows", ErrInvalidRectangle, width, height)
	}
	return width * height * 4, nil
}

// readTarget maps a destination slice to a read format and its raw bytes.
func (c *Context) readTarget(width, height int, dst any) (native.ReadFormat, []byte, error) {
	n, err := components(width, height)
	if err != nil {
		return 0, nil, err
	}
	switch buf := dst.(type) {
	case []uint8:
		if len(buf) < n {
			return 0, nil, fmt.Errorf("%w: need %d bytes, have %d", ErrBufferTooSmall, n, len(buf))
		}
		return native.ReadRGBA8, buf[:n], nil
	case []float32:
		if len(buf) < n {
			return 0, nil, fmt.Errorf("%w: need %d floats, have %d", ErrBufferTooSmall, n, len(buf))
		}
		if n == 0 {
			return native.ReadRGBA32F, nil, nil
		}
		//nolint:gosec // G103: reinterpreting float32 storage as bytes in host order
		return native.ReadRGBA32F, unsafe.Slice((*byte)(unsafe.Pointer(&buf[0])), n*4), nil
	case []int32:
		if !c.Caps().Has(native.ExtIntegerTextures) {
			return 0, nil, fmt.Errorf("%w: int32 readback needs %s", ErrUnsupportedReadFormat, native.ExtIntegerTextures)
		}
		if len(buf) < n {
			return 0, nil, fmt.Errorf("%w: need %d ints, have %d", ErrBufferTooSmall, n, len(buf))
		}
		if n == 0 {
			return native.ReadRGBA32I, nil, nil
		}
		//nolint:gosec // G103: reinterpreting int32 storage as bytes in host order
		return native.ReadRGBA32I, unsafe.Slice((*byte)(unsafe.Pointer(&buf[0])), n*4), nil
	}
	return 0, nil, fmt.Errorf("%w: %T", ErrUnsupportedReadFormat, dst)
}

// ReadPixels synchronously reads a rectangle of the bound framebuffer into
// dst. A []uint8 receives RGBA8, a []float32 RGBA32F and a []int32 RGBA32I
// (integer textures only). Any other type fails with
// ErrUnsupportedReadFormat.
func (c *Context) ReadPixels(x, y, width, height int, dst any) error {
	if err := c.checkUsable(); err != nil {
		return err
	}
	format, raw, err := c.readTarget(width, height, dst)
	if err != nil {
		return err
	}
	if err := c.dev.ReadPixels(x, y, width, height, format, raw); err != nil {
		return fmt.Errorf("gpudev: read pixels: %w", err)
	}
	return c.checkError("read pixels")
}

// ReadPixelsAsync reads a rectangle of the bound framebuffer into dst
// without stalling the render loop. Only one asynchronous readback may be
// in flight; another request fails with ErrConcurrentReadback.
//
// With sync objects the pixels go through a pixel-pack buffer held in the
// resource registry and are copied into dst once a fence signals. Otherwise the read
// is synchronous and the returned future has already settled.
func (c *Context) ReadPixelsAsync(x, y, width, height int, dst []uint8) *sched.Future {
	if err := c.checkUsable(); err != nil {
		return sched.Rejected(c.sched, err)
	}
	if !c.fences.Supported() {
		return settled(c.sched, c.ReadPixels(x, y, width, height, dst))
	}

	n, err := components(width, height)
	if err != nil {
		return sched.Rejected(c.sched, err)
	}
	if len(dst) < n {
		return sched.Rejected(c.sched, fmt.Errorf("%w: need %d bytes, have %d", ErrBufferTooSmall, n, len(dst)))
	}

	c.readMu.Lock()
	if c.reading {
		c.readMu.Unlock()
		return sched.Rejected(c.sched, ErrConcurrentReadback)
	}
	pack, err := c.packBufferLocked(n)
	if err != nil {
		c.readMu.Unlock()
		return sched.Rejected(c.sched, fmt.Errorf("gpudev: pixel-pack buffer: %w", err))
	}
	c.reading = true
	c.readMu.Unlock()

	// A restore in between invalidates the pending read.
	epoch := c.Caps().Epoch
	pbo := pack.Native()

	fut, settle := sched.NewFuture(c.sched)
	finish := func(err error) {
		c.readMu.Lock()
		c.reading = false
		c.readMu.Unlock()
		settle(err)
	}

	c.dev.BindBuffer(native.PixelPackBuffer, pbo)
	err = c.dev.ReadPixelsToBuffer(x, y, width, height, native.ReadRGBA8, pbo)
	c.dev.BindBuffer(native.PixelPackBuffer, 0)
	if err != nil {
		finish(fmt.Errorf("gpudev: read pixels async: %w", err))
		return fut
	}

	copyOut := func() {
		if c.IsContextLost() || c.Caps().Epoch != epoch {
			finish(ErrContextLost)
			return
		}
		c.dev.BindBuffer(native.PixelPackBuffer, pbo)
		err := c.dev.GetBufferSubData(pbo, 0, dst[:n])
		c.dev.BindBuffer(native.PixelPackBuffer, 0)
		if err != nil {
			err = fmt.Errorf("gpudev: read pixels async: %w", err)
		}
		finish(err)
	}

	f, err := c.fences.Insert()
	if err != nil {
		glog.Logger().Warn("gpudev: readback fence failed, flushing", "err", err)
		c.fences.WaitSync()
		copyOut()
		return fut
	}
	c.fences.Poll(f, copyOut)
	return fut
}

// packBufferLocked returns the pixel-pack buffer, creating it or growing it
// to hold at least size bytes. Must be called with readMu held.
func (c *Context) packBufferLocked(size int) (*resource.Resource, error) {
	if c.packBuffer == nil || c.packBuffer.Destroyed() {
		res, err := c.registry.Create(resource.PixelPackDesc{Label: "pixel-pack", Size: size})
		if err != nil {
			return nil, err
		}
		c.packBuffer = res
		return res, nil
	}
	if desc, ok := c.packBuffer.Descriptor().(resource.PixelPackDesc); ok && desc.Size < size {
		desc.Size = size
		if err := c.registry.Redefine(c.packBuffer, desc); err != nil {
			return nil, err
		}
	}
	return c.packBuffer, nil
}

func settled(s *sched.Scheduler, err error) *sched.Future {
	if err != nil {
		return sched.Rejected(s, err)
	}
	return sched.Resolved(s)
}

// WaitForGpuCommandsComplete returns a future that resolves once every
// previously issued command has completed. While the context is lost it
// resolves immediately.
func (c *Context) WaitForGpuCommandsComplete() *sched.Future {
	if c.checkUsable() != nil {
		return sched.Resolved(c.sched)
	}
	return c.fences.Wait()
}

// WaitForGpuCommandsCompleteSync forces a flush with a one-pixel readback
// of the default framebuffer. This is a best-effort barrier.
func (c *Context) WaitForGpuCommandsCompleteSync() {
	if c.checkUsable() != nil {
		return
	}
	c.fences.WaitSync()
}

// DrawingBufferPixelData reads the whole default framebuffer. The image is
// flipped so that its first row is the top of the drawing buffer.
func (c *Context) DrawingBufferPixelData() (*image.RGBA, error) {
	if err := c.checkUsable(); err != nil {
		return nil, err
	}
	w, h := c.dev.DrawingBufferSize()
	buf := make([]uint8, w*h*4)

	c.UnbindFramebuffer()
	c.setViewport(state.Rect{Width: w, Height: h})
	if err := c.ReadPixels(0, 0, w, h, buf); err != nil {
		return nil, err
	}
	return flipY(buf, w, h), nil
}

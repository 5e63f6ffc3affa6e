// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/gpudev/native"
)

// copyPitchAlignment is the required BytesPerRow alignment of
// texture-to-buffer copies.
const copyPitchAlignment = 256

// convertFunc expands one texel into one pixel of a read format.
type convertFunc func(dst, src []byte)

// texelSize returns the bytes per texel of the formats that can be read back.
func texelSize(f gputypes.TextureFormat) int {
	switch f {
	case gputypes.TextureFormatR8Unorm:
		return 1
	case gputypes.TextureFormatRGBA8Unorm, gputypes.TextureFormatBGRA8Unorm:
		return 4
	case gputypes.TextureFormatRGBA16Float:
		return 8
	case gputypes.TextureFormatRGBA32Float, gputypes.TextureFormatRGBA32Sint:
		return 16
	}
	return 0
}

// converter returns how texels of src are read as format, or false when the
// combination is not readable.
func converter(src gputypes.TextureFormat, format native.ReadFormat) (convertFunc, bool) {
	switch format {
	case native.ReadRGBA8:
		switch src {
		case gputypes.TextureFormatRGBA8Unorm:
			return func(dst, s []byte) { copy(dst[:4], s[:4]) }, true
		case gputypes.TextureFormatBGRA8Unorm:
			return func(dst, s []byte) { dst[0], dst[1], dst[2], dst[3] = s[2], s[1], s[0], s[3] }, true
		case gputypes.TextureFormatR8Unorm:
			return func(dst, s []byte) { dst[0], dst[1], dst[2], dst[3] = 0, 0, 0, s[0] }, true
		}
	case native.ReadRGBA32F:
		switch src {
		case gputypes.TextureFormatRGBA32Float:
			return func(dst, s []byte) { copy(dst[:16], s[:16]) }, true
		case gputypes.TextureFormatRGBA16Float:
			return func(dst, s []byte) {
				for c := 0; c < 4; c++ {
					h := binary.LittleEndian.Uint16(s[c*2:])
					binary.LittleEndian.PutUint32(dst[c*4:], math.Float32bits(halfToFloat(h)))
				}
			}, true
		}
	case native.ReadRGBA32I:
		if src == gputypes.TextureFormatRGBA32Sint {
			return func(dst, s []byte) { copy(dst[:16], s[:16]) }, true
		}
	}
	return nil, false
}

// halfToFloat widens an IEEE 754 binary16 value.
func halfToFloat(h uint16) float32 {
	sign := uint32(h>>15) << 31
	exp := uint32(h>>10) & 0x1f
	mant := uint32(h) & 0x3ff
	switch {
	case exp == 0 && mant == 0:
		return math.Float32frombits(sign)
	case exp == 0:
		// subnormal: renormalize
		e := uint32(127 - 15 + 1)
		for mant&0x400 == 0 {
			mant <<= 1
			e--
		}
		mant &= 0x3ff
		return math.Float32frombits(sign | e<<23 | mant<<13)
	case exp == 0x1f:
		return math.Float32frombits(sign | 0xff<<23 | mant<<13)
	}
	return math.Float32frombits(sign | (exp+127-15)<<23 | mant<<13)
}

// readLayout describes a texture copied into a staging buffer.
type readLayout struct {
	width       int
	height      int
	texel       int
	bytesPerRow int
}

func (l readLayout) size() uint64 {
	return uint64(l.bytesPerRow) * uint64(l.height)
}

// crop writes the rectangle (x, y, width, height) of raw into dst, bottom
// row first. Pixels outside the texture are left untouched.
func (l readLayout) crop(raw []byte, x, y, width, height int, conv convertFunc, bpp int, dst []byte) {
	for j := 0; j < height; j++ {
		row := l.height - 1 - (y + j)
		if row < 0 || row >= l.height {
			continue
		}
		for i := 0; i < width; i++ {
			col := x + i
			if col < 0 || col >= l.width {
				continue
			}
			src := raw[row*l.bytesPerRow+col*l.texel:]
			conv(dst[(j*width+i)*bpp:], src)
		}
	}
}

// copyOut encodes a copy of att into a new staging buffer and submits it.
// Must be called with d.mu held.
func (d *Device) copyOut(att *object) (hal.Buffer, readLayout, *submission, error) {
	texel := texelSize(att.format)
	layout := readLayout{
		width:       att.width,
		height:      att.height,
		texel:       texel,
		bytesPerRow: int(alignUp(uint64(att.width*texel), copyPitchAlignment)),
	}
	staging, err := d.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "readback-staging",
		Size:  layout.size(),
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, layout, nil, fmt.Errorf("create staging buffer: %w", err)
	}

	sub, err := d.encode("readback", func(enc hal.CommandEncoder) {
		enc.TransitionTextures([]hal.TextureBarrier{{
			Texture: att.texture,
			Usage: hal.TextureUsageTransition{
				OldUsage: gputypes.TextureUsageRenderAttachment,
				NewUsage: gputypes.TextureUsageCopySrc,
			},
		}})
		enc.CopyTextureToBuffer(att.texture, staging, []hal.BufferTextureCopy{{
			BufferLayout: hal.ImageDataLayout{
				BytesPerRow:  uint32(layout.bytesPerRow),
				RowsPerImage: uint32(layout.height),
			},
			TextureBase: hal.ImageCopyTexture{Texture: att.texture},
			Size: hal.Extent3D{
				Width:              uint32(layout.width),
				Height:             uint32(layout.height),
				DepthOrArrayLayers: 1,
			},
		}})
		enc.TransitionTextures([]hal.TextureBarrier{{
			Texture: att.texture,
			Usage: hal.TextureUsageTransition{
				OldUsage: gputypes.TextureUsageCopySrc,
				NewUsage: gputypes.TextureUsageRenderAttachment,
			},
		}})
	})
	if err != nil {
		d.device.DestroyBuffer(staging)
		return nil, layout, nil, err
	}
	return staging, layout, sub, nil
}

// readSource validates a readback of the bound framebuffer and returns its
// first color attachment. Must be called with d.mu held.
func (d *Device) readSource(width, height int, format native.ReadFormat) (*object, convertFunc, error) {
	if width < 0 || height < 0 {
		d.record(native.InvalidValue)
		return nil, nil, fmt.Errorf("wgpu: negative readback size %dx%d", width, height)
	}
	color, _, err := d.attachments()
	if err == nil && len(color) == 0 {
		err = ErrNoColorAttachment
	}
	if err != nil {
		d.record(native.InvalidFramebufferOperation)
		return nil, nil, fmt.Errorf("wgpu: readback: %w", err)
	}
	att := color[0]
	conv, ok := converter(att.format, format)
	if !ok {
		d.record(native.InvalidOperation)
		return nil, nil, fmt.Errorf("%w: %s from %v", ErrFormatMismatch, format, att.format)
	}
	return att, conv, nil
}

// ReadPixels copies the bound framebuffer to a staging buffer and blocks
// until the copy completes.
func (d *Device) ReadPixels(x, y, width, height int, format native.ReadFormat, dst []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.usable() {
		return ErrDeviceLost
	}
	att, conv, err := d.readSource(width, height, format)
	if err != nil {
		return err
	}
	bpp := format.BytesPerPixel()
	if len(dst) < width*height*bpp {
		d.record(native.InvalidOperation)
		return fmt.Errorf("wgpu: readback needs %d bytes, have %d", width*height*bpp, len(dst))
	}

	staging, layout, sub, err := d.copyOut(att)
	if err != nil {
		d.record(native.OutOfMemory)
		return fmt.Errorf("wgpu: readback: %w", err)
	}
	defer d.device.DestroyBuffer(staging)

	if err := d.wait(sub); err != nil {
		return fmt.Errorf("wgpu: readback: %w", err)
	}
	raw := make([]byte, layout.size())
	if err := d.queue.ReadBuffer(staging, 0, raw); err != nil {
		return fmt.Errorf("wgpu: read staging buffer: %w", err)
	}
	layout.crop(raw, x, y, width, height, conv, bpp, dst)
	return nil
}

// packRead is a pixel-pack readback waiting to be resolved into the shadow
// of its buffer.
type packRead struct {
	staging hal.Buffer
	sub     *submission
	layout  readLayout
	conv    convertFunc
	bpp     int
	x, y    int
	width   int
	height  int
}

// ReadPixelsToBuffer schedules a copy of the bound framebuffer into buf and
// returns without waiting. The pixels land in the buffer when it is next
// read with GetBufferSubData.
func (d *Device) ReadPixelsToBuffer(x, y, width, height int, format native.ReadFormat, buf native.ObjectID) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.usable() {
		return ErrDeviceLost
	}
	o, ok := d.lookup(buf, kindBuffer)
	if !ok {
		d.record(native.InvalidOperation)
		return fmt.Errorf("wgpu: pixel pack buffer %d: %w", buf, ErrUnknownObject)
	}
	att, conv, err := d.readSource(width, height, format)
	if err != nil {
		return err
	}
	bpp := format.BytesPerPixel()
	if len(o.data) < width*height*bpp {
		d.record(native.InvalidOperation)
		return fmt.Errorf("wgpu: pixel pack buffer %q holds %d bytes, need %d", o.label, len(o.data), width*height*bpp)
	}

	staging, layout, sub, err := d.copyOut(att)
	if err != nil {
		d.record(native.OutOfMemory)
		return fmt.Errorf("wgpu: readback: %w", err)
	}
	if o.pack != nil {
		o.pack.sub.pinned = false
		d.device.DestroyBuffer(o.pack.staging)
	}
	sub.pinned = true
	o.pack = &packRead{
		staging: staging,
		sub:     sub,
		layout:  layout,
		conv:    conv,
		bpp:     bpp,
		x:       x,
		y:       y,
		width:   width,
		height:  height,
	}
	return nil
}

// resolvePack waits for the pending readback of o and writes it into the
// shadow. Must be called with d.mu held.
func (d *Device) resolvePack(o *object) error {
	p := o.pack
	o.pack = nil
	p.sub.pinned = false
	defer d.device.DestroyBuffer(p.staging)

	if err := d.wait(p.sub); err != nil {
		return fmt.Errorf("wgpu: pixel pack: %w", err)
	}
	raw := make([]byte, p.layout.size())
	if err := d.queue.ReadBuffer(p.staging, 0, raw); err != nil {
		return fmt.Errorf("wgpu: read staging buffer: %w", err)
	}
	p.layout.crop(raw, p.x, p.y, p.width, p.height, p.conv, p.bpp, o.data)
	return nil
}

// GetBufferSubData copies the shadow of a buffer into dst, resolving a
// pending pixel-pack readback first.
func (d *Device) GetBufferSubData(id native.ObjectID, offset int, dst []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.usable() {
		return ErrDeviceLost
	}
	o, ok := d.lookup(id, kindBuffer)
	if !ok {
		d.record(native.InvalidOperation)
		return fmt.Errorf("wgpu: buffer %d: %w", id, ErrUnknownObject)
	}
	if o.pack != nil {
		if err := d.resolvePack(o); err != nil {
			return err
		}
	}
	if offset < 0 || offset+len(dst) > len(o.data) {
		d.record(native.InvalidValue)
		return fmt.Errorf("wgpu: buffer %q: range [%d, %d) outside %d bytes",
			o.label, offset, offset+len(dst), len(o.data))
	}
	copy(dst, o.data[offset:])
	return nil
}

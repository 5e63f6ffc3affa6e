// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"log/slog"
	"sync"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/gpudev/internal/glog"
	"github.com/gogpu/gpudev/native"
)

func logger() *slog.Logger { return glog.Logger() }

// Config configures a Device wrapping an existing HAL device.
type Config struct {
	// Name identifies the device in logs.
	Name string

	// Limits are the limits the device was opened with.
	// Zero selects gputypes.DefaultLimits.
	Limits gputypes.Limits

	// Width and Height size the default framebuffer. Values below 1 are
	// clamped to 1.
	Width  int
	Height int

	// Format is the default framebuffer format. Undefined selects RGBA8Unorm.
	Format gputypes.TextureFormat

	// Legacy reports a Level1 context without sync objects or integer
	// textures.
	Legacy bool
}

// Device is a native.Device backed by a HAL device and queue.
//
// Device serializes every call with a mutex. HAL objects are destroyed by
// DeleteObject, on Lose and on Release.
type Device struct {
	mu sync.Mutex

	device   hal.Device
	queue    hal.Queue
	instance hal.Instance
	owned    bool

	name   string
	level  native.Level
	limits gputypes.Limits
	format gputypes.TextureFormat
	width  int
	height int

	nextID   uint64
	objects  map[native.ObjectID]*object
	fences   map[native.FenceID]*submission
	inflight []*submission

	errors   []native.ErrorCode
	lost     bool
	released bool

	framebuffer  native.ObjectID
	renderbuffer native.ObjectID
	buffers      map[native.BufferTarget]native.ObjectID
	textures     map[int]native.ObjectID
	attribs      map[int]native.ObjectID
	enabled      map[native.Capability]bool
	colorMask    [4]bool
	depthMask    bool
	clearColor   gputypes.Color
	viewport     [4]int
	scissor      [4]int
	provoking    native.ProvokingVertex

	// screen backs framebuffer zero. Created on first use.
	screen *object
}

var _ native.Device = (*Device)(nil)

// New wraps a HAL device and queue. The caller keeps ownership of both:
// Release frees the objects created through the Device but not the device.
func New(device hal.Device, queue hal.Queue, cfg Config) *Device {
	d := newDevice(device, queue, cfg)
	logger().Debug("wgpu: device wrapped", "name", d.name, "level", d.level)
	return d
}

func newDevice(device hal.Device, queue hal.Queue, cfg Config) *Device {
	limits := cfg.Limits
	if limits.MaxTextureDimension2D == 0 {
		limits = gputypes.DefaultLimits()
	}
	format := cfg.Format
	if format == gputypes.TextureFormatUndefined {
		format = gputypes.TextureFormatRGBA8Unorm
	}
	width, height := native.Attributes{Width: cfg.Width, Height: cfg.Height}.Size()
	level := native.Level2
	if cfg.Legacy {
		level = native.Level1
	}
	return &Device{
		device:    device,
		queue:     queue,
		name:      cfg.Name,
		level:     level,
		limits:    limits,
		format:    format,
		width:     width,
		height:    height,
		objects:   make(map[native.ObjectID]*object),
		fences:    make(map[native.FenceID]*submission),
		buffers:   make(map[native.BufferTarget]native.ObjectID),
		textures:  make(map[int]native.ObjectID),
		attribs:   make(map[int]native.ObjectID),
		enabled:   make(map[native.Capability]bool),
		colorMask: [4]bool{true, true, true, true},
		depthMask: true,
		viewport:  [4]int{0, 0, width, height},
		scissor:   [4]int{0, 0, width, height},
		provoking: native.LastVertexConvention,
	}
}

// Name returns the adapter or provider name the device was opened from.
func (d *Device) Name() string { return d.name }

// Level reports Level2 unless the device was opened with PreferLegacy.
func (d *Device) Level() native.Level { return d.level }

// Parameter maps native limits onto the HAL limits.
func (d *Device) Parameter(p native.Param) int {
	l := d.limits
	switch p {
	case native.ParamMaxTextureSize, native.ParamMaxRenderbufferSize:
		return int(l.MaxTextureDimension2D)
	case native.ParamMax3DTextureSize:
		if d.level < native.Level2 {
			return 0
		}
		return int(l.MaxTextureDimension3D)
	case native.ParamMaxDrawBuffers:
		return int(l.MaxColorAttachments)
	case native.ParamMaxTextureImageUnits, native.ParamMaxVertexTextureImageUnits:
		return int(l.MaxSampledTexturesPerShaderStage)
	case native.ParamMaxVertexAttribs:
		return int(l.MaxVertexAttributes)
	}
	return 0
}

// HasExtension reports the features a HAL device always provides. Level1
// devices hide sync objects and integer textures; the provoking vertex,
// multi-draw and timer query extensions are never exposed.
func (d *Device) HasExtension(ext native.Extension) bool {
	switch ext {
	case native.ExtProvokingVertex, native.ExtMultiDraw, native.ExtTimerQuery:
		return false
	case native.ExtSyncObjects, native.ExtIntegerTextures:
		return d.level >= native.Level2
	}
	return ext >= 0 && int(ext) < native.ExtensionCount
}

// IsContextLost reports whether Lose or Release was called.
func (d *Device) IsContextLost() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lost
}

// Error returns and clears the oldest recorded error.
// Lose records ContextLostError.
func (d *Device) Error() native.ErrorCode {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.errors) == 0 {
		return native.NoError
	}
	code := d.errors[0]
	d.errors = d.errors[1:]
	return code
}

func (d *Device) record(code native.ErrorCode) {
	d.errors = append(d.errors, code)
}

// DrawingBufferSize returns the size of framebuffer zero.
func (d *Device) DrawingBufferSize() (int, int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.width, d.height
}

// Resize changes the size of framebuffer zero. Its contents are discarded.
func (d *Device) Resize(width, height int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.width, d.height = native.Attributes{Width: width, Height: height}.Size()
	if d.screen != nil {
		d.destroyObject(d.screen)
		d.screen = nil
	}
}

// Lose simulates a context loss: every object and fence is destroyed and
// subsequent calls fail until Restore.
func (d *Device) Lose() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.lost {
		return
	}
	d.lost = true
	d.record(native.ContextLostError)
	d.teardown()
	logger().Warn("wgpu: device lost", "name", d.name)
}

// Restore makes a lost device usable again. It has no effect after Release.
func (d *Device) Restore() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.released || !d.lost {
		return
	}
	d.lost = false
	logger().Info("wgpu: device restored", "name", d.name)
}

// Release frees every GPU object. Devices opened by this package also
// destroy their HAL device and instance.
func (d *Device) Release() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.released {
		return
	}
	d.teardown()
	d.released = true
	d.lost = true
	if d.owned {
		d.device.Destroy()
		if d.instance != nil {
			d.instance.Destroy()
		}
	}
	d.device = nil
	d.queue = nil
	d.instance = nil
	logger().Debug("wgpu: device released", "name", d.name)
}

// teardown destroys all HAL state. Must be called with d.mu held.
func (d *Device) teardown() {
	d.reap(true)
	clear(d.fences)
	for id, o := range d.objects {
		d.destroyObject(o)
		delete(d.objects, id)
	}
	if d.screen != nil {
		d.destroyObject(d.screen)
		d.screen = nil
	}
	d.framebuffer = 0
	d.renderbuffer = 0
	clear(d.buffers)
	clear(d.textures)
	clear(d.attribs)
}

// usable reports whether the device can take commands.
// Must be called with d.mu held.
func (d *Device) usable() bool {
	return !d.released && !d.lost
}

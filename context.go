// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpudev

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/gogpu/gpudev/caps"
	"github.com/gogpu/gpudev/fence"
	"github.com/gogpu/gpudev/internal/glog"
	"github.com/gogpu/gpudev/native"
	"github.com/gogpu/gpudev/resource"
	"github.com/gogpu/gpudev/sched"
	"github.com/gogpu/gpudev/state"
)

// Context owns a native device and all GPU bookkeeping for it.
type Context struct {
	dev  native.Device
	opts contextOptions

	tracker  *state.Tracker
	counter  *resource.Counter
	registry *resource.Registry
	sched    *sched.Scheduler
	fences   *fence.Facility

	// mu serializes lifecycle transitions: restore and destroy.
	mu        sync.Mutex
	lost      atomic.Bool
	destroyed atomic.Bool

	capsMu sync.RWMutex
	caps   caps.Set

	scaleMu    sync.RWMutex
	pixelScale float64

	targetsMu sync.Mutex
	targets   []*RenderTarget

	readMu     sync.Mutex
	packBuffer *resource.Resource
	reading    bool

	restoreMu   sync.Mutex
	start       time.Time
	lastRestore RestoreEvent
	listeners   map[uint64]func(RestoreEvent)
	nextID      uint64

	// Framebuffers, Textures and ComputeRenderables are caller-managed
	// named collections for reuse across frames.
	Framebuffers       *Named[*resource.Resource]
	Textures           *Named[*resource.Resource]
	ComputeRenderables *Named[any]
}

// New creates a Context for dev.
//
// It probes the device and fails with ErrInsufficientCapability when a
// mandatory minimum is not met. When the provoking-vertex extension is
// available the first-vertex convention is selected.
func New(dev native.Device, opts ...Option) (*Context, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	set := caps.Probe(dev, 1)
	if err := set.Validate(); err != nil {
		return nil, err
	}

	s := o.scheduler
	if s == nil {
		s = sched.New()
	}
	counter := resource.NewCounter()

	c := &Context{
		dev:                dev,
		opts:               o,
		tracker:            state.New(),
		counter:            counter,
		registry:           resource.NewRegistry(dev, set, counter),
		sched:              s,
		fences:             fence.New(dev, s, set.Has(native.ExtSyncObjects)),
		caps:               set,
		pixelScale:         o.pixelScale,
		start:              time.Now(),
		listeners:          make(map[uint64]func(RestoreEvent)),
		Framebuffers:       NewNamed[*resource.Resource](),
		Textures:           NewNamed[*resource.Resource](),
		ComputeRenderables: NewNamed[any](),
	}
	c.lastRestore = RestoreEvent{Epoch: set.Epoch}
	c.applyProvokingVertex(set)

	glog.Logger().Info("gpudev: context created", "caps", set.String())
	return c, nil
}

func (c *Context) applyProvokingVertex(set caps.Set) {
	// Flat-shaded attributes are written identically for the first and
	// last vertex, and the first-vertex convention is the cheaper one.
	if set.Has(native.ExtProvokingVertex) {
		c.dev.ProvokingVertex(native.FirstVertexConvention)
	}
}

// Device returns the native device.
func (c *Context) Device() native.Device { return c.dev }

// Caps returns the capability set of the current epoch.
func (c *Context) Caps() caps.Set {
	c.capsMu.RLock()
	defer c.capsMu.RUnlock()
	return c.caps
}

// State returns the state tracker.
func (c *Context) State() *state.Tracker { return c.tracker }

// Resources returns the resource registry.
func (c *Context) Resources() *resource.Registry { return c.registry }

// Scheduler returns the scheduler that drives fence polling.
func (c *Context) Scheduler() *sched.Scheduler { return c.sched }

// Level returns the API level of the device.
func (c *Context) Level() native.Level { return c.Caps().Level }

func (c *Context) MaxTextureSize() int       { return c.Caps().Limits.MaxTextureSize }
func (c *Context) Max3DTextureSize() int     { return c.Caps().Limits.Max3DTextureSize }
func (c *Context) MaxRenderbufferSize() int  { return c.Caps().Limits.MaxRenderbufferSize }
func (c *Context) MaxDrawBuffers() int       { return c.Caps().Limits.MaxDrawBuffers }
func (c *Context) MaxTextureImageUnits() int { return c.Caps().Limits.MaxTextureImageUnits }

// PixelRatio returns the device pixel ratio multiplied by the pixel scale.
func (c *Context) PixelRatio() float64 {
	dpr := c.opts.devicePixelRatio
	if dpr <= 0 {
		dpr = 1
	}
	c.scaleMu.RLock()
	scale := c.pixelScale
	c.scaleMu.RUnlock()
	if scale <= 0 {
		scale = 1
	}
	return dpr * scale
}

// SetPixelScale changes the pixel scale.
func (c *Context) SetPixelScale(scale float64) {
	c.scaleMu.Lock()
	c.pixelScale = scale
	c.scaleMu.Unlock()
}

// checkUsable reports ErrContextDestroyed or ErrContextLost.
func (c *Context) checkUsable() error {
	if c.destroyed.Load() {
		return ErrContextDestroyed
	}
	if c.IsContextLost() {
		return ErrContextLost
	}
	return nil
}

// checkError reports the pending device error of a debug context.
func (c *Context) checkError(op string) error {
	if !c.opts.debug {
		return nil
	}
	if code := c.dev.Error(); code != native.NoError {
		return &NativeError{Op: op, Code: code}
	}
	return nil
}

// Create creates a resource through the registry.
func (c *Context) Create(desc resource.Descriptor) (*resource.Resource, error) {
	if err := c.checkUsable(); err != nil {
		return nil, err
	}
	res, err := c.registry.Create(desc)
	if err != nil {
		return nil, err
	}
	if err := c.checkError("create " + desc.Kind().String()); err != nil {
		res.Destroy()
		return nil, err
	}
	return res, nil
}

// UnbindFramebuffer binds the default framebuffer.
func (c *Context) UnbindFramebuffer() {
	c.dev.BindFramebuffer(0)
}

// Clear clears color and depth of the whole default framebuffer. It does
// nothing while the context is lost or destroyed.
func (c *Context) Clear(r, g, b, a float32) {
	if c.checkUsable() != nil {
		return
	}
	w, h := c.dev.DrawingBufferSize()
	full := state.Rect{Width: w, Height: h}

	c.UnbindFramebuffer()
	if c.tracker.Enable(native.CapScissorTest) {
		c.dev.SetEnabled(native.CapScissorTest, true)
	}
	if c.tracker.DepthMask(true) {
		c.dev.DepthMask(true)
	}
	if c.tracker.ColorMask(true, true, true, true) {
		c.dev.ColorMask(true, true, true, true)
	}
	if c.tracker.ClearColor(r, g, b, a) {
		c.dev.ClearColor(r, g, b, a)
	}
	c.setViewport(full)
	if c.tracker.Scissor(full) {
		c.dev.Scissor(full.X, full.Y, full.Width, full.Height)
	}
	c.dev.Clear(native.ClearColorBit | native.ClearDepthBit)
}

func (c *Context) setViewport(r state.Rect) {
	if c.tracker.Viewport(r) {
		c.dev.Viewport(r.X, r.Y, r.Width, r.Height)
	}
}

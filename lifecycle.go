// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpudev

import (
	"errors"
	"fmt"
	"time"

	"github.com/gogpu/gpudev/caps"
	"github.com/gogpu/gpudev/internal/glog"
	"github.com/gogpu/gpudev/native"
)

// Lifecycle is the state of a Context.
type Lifecycle int

const (
	Active Lifecycle = iota
	Lost
	Destroyed
)

// String returns the string representation of a Lifecycle.
func (l Lifecycle) String() string {
	switch l {
	case Active:
		return "Active"
	case Lost:
		return "Lost"
	case Destroyed:
		return "Destroyed"
	default:
		return fmt.Sprintf("Lifecycle(%d)", int(l))
	}
}

// RestoreEvent is emitted after a successful restore.
type RestoreEvent struct {
	// Timestamp is the time since the Context was created. It strictly
	// increases from one restore to the next.
	Timestamp time.Duration
	// Epoch is the capability epoch the context was restored into.
	Epoch uint64
}

// DestroyOptions controls Destroy.
type DestroyOptions struct {
	// DoNotForceContextLoss keeps the device alive instead of asking it to
	// release its GPU memory immediately.
	DoNotForceContextLoss bool
}

// IsContextLost reports whether the context is lost, either because the
// device says so or because SetContextLost was called.
func (c *Context) IsContextLost() bool {
	return c.lost.Load() || c.dev.IsContextLost()
}

// Lifecycle returns the current lifecycle state.
func (c *Context) Lifecycle() Lifecycle {
	switch {
	case c.destroyed.Load():
		return Destroyed
	case c.IsContextLost():
		return Lost
	default:
		return Active
	}
}

// SetContextLost records a loss notification from the host and resets the
// state tracker. The flag is only cleared by HandleContextRestored.
func (c *Context) SetContextLost() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.destroyed.Load() {
		return
	}
	if !c.lost.Swap(true) {
		c.tracker.Reset()
		glog.Logger().Info("gpudev: context lost")
	}
}

// OnRestore registers fn to be called after every successful restore, on
// the goroutine that called HandleContextRestored. The returned function
// unregisters it.
func (c *Context) OnRestore(fn func(RestoreEvent)) (cancel func()) {
	c.restoreMu.Lock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = fn
	c.restoreMu.Unlock()

	return func() {
		c.restoreMu.Lock()
		delete(c.listeners, id)
		c.restoreMu.Unlock()
	}
}

// LastRestore returns the most recent restore event. Before the first
// restore its Timestamp is zero.
func (c *Context) LastRestore() RestoreEvent {
	c.restoreMu.Lock()
	defer c.restoreMu.Unlock()
	return c.lastRestore
}

// HandleContextRestored rebuilds the context after the device came back.
//
// Under the lifecycle lock it re-probes the capabilities with a new epoch,
// resets the state tracker, re-creates all registry resources and render
// targets, re-arms the fence facility and runs extraResets. The lost flag
// is then cleared and, after the lock is released, every OnRestore
// callback receives the new RestoreEvent.
//
// Failures to re-create individual resources are returned joined; the
// context is restored regardless.
func (c *Context) HandleContextRestored(extraResets func()) error {
	c.mu.Lock()

	if c.destroyed.Load() {
		c.mu.Unlock()
		return ErrContextDestroyed
	}
	if c.dev.IsContextLost() {
		c.mu.Unlock()
		return fmt.Errorf("%w: device still reports loss", ErrContextLost)
	}

	set := caps.Probe(c.dev, c.Caps().Epoch+1)
	if err := set.Validate(); err != nil {
		c.mu.Unlock()
		return err
	}
	c.capsMu.Lock()
	c.caps = set
	c.capsMu.Unlock()

	c.tracker.Reset()

	var errs []error
	if err := c.registry.Reset(set); err != nil {
		errs = append(errs, err)
	}
	for _, rt := range c.RenderTargets() {
		if err := rt.restore(); err != nil {
			errs = append(errs, err)
		}
	}

	c.fences.Rearm(set.Has(native.ExtSyncObjects))
	c.applyProvokingVertex(set)

	if extraResets != nil {
		extraResets()
	}
	c.lost.Store(false)

	c.restoreMu.Lock()
	ev := RestoreEvent{Timestamp: time.Since(c.start), Epoch: set.Epoch}
	if ev.Timestamp <= c.lastRestore.Timestamp {
		ev.Timestamp = c.lastRestore.Timestamp + 1
	}
	c.lastRestore = ev
	listeners := make([]func(RestoreEvent), 0, len(c.listeners))
	for _, fn := range c.listeners {
		listeners = append(listeners, fn)
	}
	c.restoreMu.Unlock()

	c.mu.Unlock()

	glog.Logger().Info("gpudev: context restored", "epoch", ev.Epoch, "errors", len(errs))
	for _, fn := range listeners {
		fn(ev)
	}
	return errors.Join(errs...)
}

// Destroy releases every resource owned by the Context, unbinds all
// texture units and vertex attributes, and unless suppressed asks the
// device to release its GPU memory immediately. Calling it more than once
// has no effect.
func (c *Context) Destroy(opts DestroyOptions) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.destroyed.Swap(true) {
		return
	}

	c.targetsMu.Lock()
	c.targets = nil
	c.targetsMu.Unlock()

	c.registry.DestroyAll()

	c.readMu.Lock()
	c.packBuffer = nil
	c.readMu.Unlock()

	c.unbindResources()

	c.Framebuffers.Clear()
	c.Textures.Clear()
	c.ComputeRenderables.Clear()

	if !opts.DoNotForceContextLoss {
		c.dev.Release()
	}
	glog.Logger().Info("gpudev: context destroyed", "released", !opts.DoNotForceContextLoss)
}

// unbindResources leaves no texture, buffer or framebuffer bound so the
// driver can free them.
func (c *Context) unbindResources() {
	set := c.Caps()

	targets := []native.TextureTarget{native.Texture2D, native.TextureCubeMap}
	if set.Level >= native.Level2 {
		targets = append(targets, native.Texture2DArray, native.Texture3D)
	}
	for unit := 0; unit < set.Limits.MaxTextureImageUnits; unit++ {
		for _, target := range targets {
			c.dev.BindTexture(unit, target, 0)
		}
	}

	// Point every attribute at the smallest possible buffer so none keeps
	// a destroyed buffer alive.
	if buf, err := c.dev.CreateBuffer(&native.BufferDesc{Label: "unbind", Target: native.ArrayBuffer, Size: 4}); err == nil {
		c.dev.BindBuffer(native.ArrayBuffer, buf)
		for i := 0; i < set.Limits.MaxVertexAttribs; i++ {
			c.dev.VertexAttribPointer(i, buf)
		}
		c.dev.DeleteObject(buf)
	} else {
		glog.Logger().Warn("gpudev: unbind buffer", "err", err)
	}

	c.dev.BindBuffer(native.ArrayBuffer, 0)
	c.dev.BindBuffer(native.ElementArrayBuffer, 0)
	c.dev.BindRenderbuffer(0)
	c.UnbindFramebuffer()
}

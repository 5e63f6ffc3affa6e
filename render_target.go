// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpudev

import (
	"fmt"
	"sync"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/gpudev/internal/glog"
	"github.com/gogpu/gpudev/resource"
	"github.com/gogpu/gpudev/state"
)

// TexelType is the component type of a render target.
type TexelType int

const (
	TexelUbyte TexelType = iota
	TexelFloat
	TexelFp16
	TexelInt32
)

// String returns the string representation of a TexelType.
func (t TexelType) String() string {
	switch t {
	case TexelUbyte:
		return "ubyte"
	case TexelFloat:
		return "float"
	case TexelFp16:
		return "fp16"
	case TexelInt32:
		return "int32"
	default:
		return fmt.Sprintf("TexelType(%d)", int(t))
	}
}

// TexelFormat is the channel layout of a render target.
type TexelFormat int

const (
	FormatRGBA TexelFormat = iota
	FormatAlpha
)

// RenderTargetDesc describes an offscreen render target.
type RenderTargetDesc struct {
	Width  int
	Height int
	// Depth attaches a depth renderbuffer.
	Depth  bool
	Type   TexelType
	Filter gputypes.FilterMode
	Format TexelFormat
}

// TextureFormat returns the color texture format of the target.
func (d RenderTargetDesc) TextureFormat() gputypes.TextureFormat {
	switch d.Type {
	case TexelFloat:
		return gputypes.TextureFormatRGBA32Float
	case TexelFp16:
		return gputypes.TextureFormatRGBA16Float
	case TexelInt32:
		return gputypes.TextureFormatRGBA32Sint
	}
	if d.Format == FormatAlpha {
		return gputypes.TextureFormatR8Unorm
	}
	return gputypes.TextureFormatRGBA8Unorm
}

func (d RenderTargetDesc) textureDesc() resource.TextureDesc {
	return resource.TextureDesc{
		Label:  "render-target-color",
		Width:  d.Width,
		Height: d.Height,
		Format: d.TextureFormat(),
		Filter: d.Filter,
	}
}

func (d RenderTargetDesc) depthDesc() resource.RenderbufferDesc {
	return resource.RenderbufferDesc{
		Label:  "render-target-depth",
		Width:  d.Width,
		Height: d.Height,
		Format: gputypes.TextureFormatDepth24PlusStencil8,
	}
}

// RenderTarget is an offscreen color texture with a framebuffer and an
// optional depth renderbuffer. While alive it is tracked by its Context and
// re-created on restore.
type RenderTarget struct {
	ctx *Context

	mu          sync.Mutex
	desc        RenderTargetDesc
	texture     *resource.Resource
	depth       *resource.Resource
	framebuffer *resource.Resource
	destroyed   bool
}

// CreateRenderTarget creates a render target and adds it to the live set.
func (c *Context) CreateRenderTarget(desc RenderTargetDesc) (*RenderTarget, error) {
	if err := c.checkUsable(); err != nil {
		return nil, err
	}
	if ext, ok := resource.RenderFormatExtension(desc.TextureFormat()); ok && !c.Caps().Has(ext) {
		return nil, fmt.Errorf("%w: rendering to %s texels needs %s", ErrUnsupportedCapability, desc.Type, ext)
	}

	rt := &RenderTarget{ctx: c, desc: desc}
	if err := rt.create(); err != nil {
		return nil, err
	}
	if err := c.checkError("create render target"); err != nil {
		rt.release()
		return nil, err
	}

	c.targetsMu.Lock()
	c.targets = append(c.targets, rt)
	c.targetsMu.Unlock()

	glog.Logger().Debug("gpudev: render target created",
		"width", desc.Width, "height", desc.Height, "depth", desc.Depth, "type", desc.Type.String())
	return rt, nil
}

// RenderTargets returns the live render targets in creation order.
func (c *Context) RenderTargets() []*RenderTarget {
	c.targetsMu.Lock()
	defer c.targetsMu.Unlock()
	out := make([]*RenderTarget, len(c.targets))
	copy(out, c.targets)
	return out
}

func (c *Context) removeTarget(rt *RenderTarget) {
	c.targetsMu.Lock()
	defer c.targetsMu.Unlock()
	for i, t := range c.targets {
		if t == rt {
			c.targets = append(c.targets[:i], c.targets[i+1:]...)
			return
		}
	}
}

func (rt *RenderTarget) create() error {
	reg := rt.ctx.registry

	tex, err := reg.Create(rt.desc.textureDesc())
	if err != nil {
		return err
	}
	rt.texture = tex

	fb := resource.FramebufferDesc{Label: "render-target", Color: []resource.Handle{tex.Handle()}}
	if rt.desc.Depth {
		depth, err := reg.Create(rt.desc.depthDesc())
		if err != nil {
			rt.release()
			return err
		}
		rt.depth = depth
		fb.Depth = depth.Handle()
	}

	framebuffer, err := reg.Create(fb)
	if err != nil {
		rt.release()
		return err
	}
	rt.framebuffer = framebuffer
	return nil
}

// release destroys the owned resources. Dependents go first.
func (rt *RenderTarget) release() {
	for _, r := range []*resource.Resource{rt.framebuffer, rt.depth, rt.texture} {
		if r != nil {
			r.Destroy()
		}
	}
}

// Desc returns the current shape of the target.
func (rt *RenderTarget) Desc() RenderTargetDesc {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.desc
}

// Width returns the width in pixels.
func (rt *RenderTarget) Width() int { return rt.Desc().Width }

// Height returns the height in pixels.
func (rt *RenderTarget) Height() int { return rt.Desc().Height }

// Texture returns the color texture.
func (rt *RenderTarget) Texture() *resource.Resource { return rt.texture }

// Framebuffer returns the framebuffer.
func (rt *RenderTarget) Framebuffer() *resource.Resource { return rt.framebuffer }

// DepthRenderbuffer returns the depth renderbuffer, or nil.
func (rt *RenderTarget) DepthRenderbuffer() *resource.Resource { return rt.depth }

// Bind makes the target the current framebuffer and sets the viewport to
// cover it.
func (rt *RenderTarget) Bind() {
	d := rt.Desc()
	rt.ctx.dev.BindFramebuffer(rt.framebuffer.Native())
	rt.ctx.setViewport(state.Rect{Width: d.Width, Height: d.Height})
}

// SetSize changes the size of the target, discarding its contents. While
// the context is lost only the new size is recorded; it is applied on
// restore.
func (rt *RenderTarget) SetSize(width, height int) error {
	rt.mu.Lock()
	if rt.destroyed {
		rt.mu.Unlock()
		return resource.ErrResourceDestroyed
	}
	if rt.desc.Width == width && rt.desc.Height == height {
		rt.mu.Unlock()
		return nil
	}
	prev := rt.desc
	rt.desc.Width, rt.desc.Height = width, height
	rt.mu.Unlock()

	if rt.ctx.IsContextLost() {
		return nil
	}
	if err := rt.Reset(); err != nil {
		rt.mu.Lock()
		rt.desc = prev
		rt.mu.Unlock()
		return err
	}
	return nil
}

// Reset re-creates the storage of the target with its current shape. The
// contents are undefined afterwards.
func (rt *RenderTarget) Reset() error {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	if rt.destroyed {
		return resource.ErrResourceDestroyed
	}
	return rt.resetLocked()
}

// restore runs after the registry re-created every resource. Only a shape
// changed by SetSize while lost needs new storage.
func (rt *RenderTarget) restore() error {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	if rt.destroyed {
		return nil
	}
	if cur, ok := rt.texture.Descriptor().(resource.TextureDesc); ok && cur == rt.desc.textureDesc() {
		return nil
	}
	return rt.resetLocked()
}

func (rt *RenderTarget) resetLocked() error {
	reg := rt.ctx.registry
	if err := reg.Redefine(rt.texture, rt.desc.textureDesc()); err != nil {
		return fmt.Errorf("gpudev: reset render target: %w", err)
	}
	if rt.depth != nil {
		if err := reg.Redefine(rt.depth, rt.desc.depthDesc()); err != nil {
			return fmt.Errorf("gpudev: reset render target: %w", err)
		}
	}
	fb := resource.FramebufferDesc{Label: "render-target", Color: []resource.Handle{rt.texture.Handle()}}
	if rt.depth != nil {
		fb.Depth = rt.depth.Handle()
	}
	if err := reg.Redefine(rt.framebuffer, fb); err != nil {
		return fmt.Errorf("gpudev: reset render target: %w", err)
	}
	return nil
}

// Destroy destroys the target and removes it from the live set. Calling it
// more than once has no effect.
func (rt *RenderTarget) Destroy() {
	rt.mu.Lock()
	if rt.destroyed {
		rt.mu.Unlock()
		return
	}
	rt.destroyed = true
	rt.mu.Unlock()

	rt.release()
	rt.ctx.removeTarget(rt)
}

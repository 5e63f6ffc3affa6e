// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"fmt"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/gpudev/native"
)

// waitTimeout bounds blocking fence waits.
const waitTimeout = 5 * time.Second

// submission is a command buffer in flight. Pinned submissions keep their
// fence alive after completion until the pin is dropped.
type submission struct {
	cmd    hal.CommandBuffer
	fence  hal.Fence
	pinned bool
}

// submit queues cmd with its own fence. The command buffer is freed by reap.
// Must be called with d.mu held.
func (d *Device) submit(cmd hal.CommandBuffer) (*submission, error) {
	fence, err := d.device.CreateFence()
	if err != nil {
		d.device.FreeCommandBuffer(cmd)
		return nil, fmt.Errorf("create fence: %w", err)
	}
	if err := d.queue.Submit([]hal.CommandBuffer{cmd}, fence, 1); err != nil {
		d.device.DestroyFence(fence)
		d.device.FreeCommandBuffer(cmd)
		return nil, fmt.Errorf("submit: %w", err)
	}
	s := &submission{cmd: cmd, fence: fence}
	d.inflight = append(d.inflight, s)
	return s, nil
}

// done polls s without blocking. A fence error counts as completion.
func (d *Device) done(s *submission) bool {
	ok, err := d.device.Wait(s.fence, 1, 0)
	return ok || err != nil
}

// wait blocks until s completes or waitTimeout passes.
func (d *Device) wait(s *submission) error {
	ok, err := d.device.Wait(s.fence, 1, waitTimeout)
	if err != nil {
		return fmt.Errorf("wait for fence: %w", err)
	}
	if !ok {
		return ErrTimeout
	}
	return nil
}

// reap frees finished, unpinned submissions. With force every submission
// is waited on and freed. Must be called with d.mu held.
func (d *Device) reap(force bool) {
	kept := d.inflight[:0]
	for _, s := range d.inflight {
		if force {
			if _, err := d.device.Wait(s.fence, 1, waitTimeout); err != nil {
				logger().Warn("wgpu: wait for submission", "error", err)
			}
		} else if s.pinned || !d.done(s) {
			kept = append(kept, s)
			continue
		}
		d.device.DestroyFence(s.fence)
		d.device.FreeCommandBuffer(s.cmd)
	}
	clear(d.inflight[len(kept):])
	d.inflight = kept
}

// encode records a command buffer with fn and submits it.
// Must be called with d.mu held.
func (d *Device) encode(label string, fn func(enc hal.CommandEncoder)) (*submission, error) {
	d.reap(false)
	enc, err := d.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: label})
	if err != nil {
		return nil, fmt.Errorf("create command encoder: %w", err)
	}
	if err := enc.BeginEncoding(label); err != nil {
		return nil, fmt.Errorf("begin encoding: %w", err)
	}
	fn(enc)
	cmd, err := enc.EndEncoding()
	if err != nil {
		return nil, fmt.Errorf("end encoding: %w", err)
	}
	return d.submit(cmd)
}

// screenTarget returns the image behind framebuffer zero, creating it on
// first use. Must be called with d.mu held.
func (d *Device) screenTarget() (*object, error) {
	if d.screen != nil {
		return d.screen, nil
	}
	o := &object{
		kind:   kindRenderbuffer,
		label:  "default-framebuffer",
		format: d.format,
		width:  d.width,
		height: d.height,
		layers: 1,
	}
	usage := gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageCopySrc | gputypes.TextureUsageTextureBinding
	if err := d.createImage(o, gputypes.TextureDimension2D, usage); err != nil {
		return nil, err
	}
	d.screen = o
	return o, nil
}

// attachments resolves the bound framebuffer. Must be called with d.mu held.
func (d *Device) attachments() (color []*object, depth *object, err error) {
	if d.framebuffer == 0 {
		screen, err := d.screenTarget()
		if err != nil {
			return nil, nil, err
		}
		return []*object{screen}, nil, nil
	}
	fb, ok := d.lookup(d.framebuffer, kindFramebuffer)
	if !ok {
		return nil, nil, ErrUnknownObject
	}
	for _, id := range fb.color {
		att, ok := d.lookup(id, kindTexture, kindRenderbuffer)
		if !ok || att.view == nil {
			return nil, nil, fmt.Errorf("color attachment %d: %w", id, ErrUnknownObject)
		}
		color = append(color, att)
	}
	if fb.depth != 0 {
		att, ok := d.lookup(fb.depth, kindRenderbuffer, kindTexture)
		if !ok || att.view == nil {
			return nil, nil, fmt.Errorf("depth attachment %d: %w", fb.depth, ErrUnknownObject)
		}
		depth = att
	}
	return color, depth, nil
}

// BindFramebuffer selects the framebuffer used by Clear and readbacks.
// Zero selects the default framebuffer.
func (d *Device) BindFramebuffer(id native.ObjectID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.usable() {
		return
	}
	if _, ok := d.lookup(id, kindFramebuffer); id != 0 && !ok {
		d.record(native.InvalidOperation)
		return
	}
	d.framebuffer = id
}

// BindRenderbuffer selects the current renderbuffer.
func (d *Device) BindRenderbuffer(id native.ObjectID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.usable() {
		return
	}
	if _, ok := d.lookup(id, kindRenderbuffer); id != 0 && !ok {
		d.record(native.InvalidOperation)
		return
	}
	d.renderbuffer = id
}

// BindBuffer binds a buffer to target. Zero unbinds.
func (d *Device) BindBuffer(target native.BufferTarget, id native.ObjectID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.usable() {
		return
	}
	if id == 0 {
		delete(d.buffers, target)
		return
	}
	if _, ok := d.lookup(id, kindBuffer); !ok {
		d.record(native.InvalidOperation)
		return
	}
	d.buffers[target] = id
}

// BindTexture binds a texture to a texture unit. Zero unbinds.
func (d *Device) BindTexture(unit int, _ native.TextureTarget, id native.ObjectID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.usable() {
		return
	}
	if unit < 0 || unit >= int(d.limits.MaxSampledTexturesPerShaderStage) {
		d.record(native.InvalidValue)
		return
	}
	if id == 0 {
		delete(d.textures, unit)
		return
	}
	if _, ok := d.lookup(id, kindTexture); !ok {
		d.record(native.InvalidOperation)
		return
	}
	d.textures[unit] = id
}

// VertexAttribPointer points an attribute at a vertex buffer. Zero detaches.
func (d *Device) VertexAttribPointer(index int, buf native.ObjectID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.usable() {
		return
	}
	if index < 0 || index >= int(d.limits.MaxVertexAttributes) {
		d.record(native.InvalidValue)
		return
	}
	if buf == 0 {
		delete(d.attribs, index)
		return
	}
	if _, ok := d.lookup(buf, kindBuffer); !ok {
		d.record(native.InvalidOperation)
		return
	}
	d.attribs[index] = buf
}

func (d *Device) SetEnabled(c native.Capability, enabled bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.enabled[c] = enabled
}

func (d *Device) ColorMask(r, g, b, a bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.colorMask = [4]bool{r, g, b, a}
}

func (d *Device) DepthMask(enabled bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.depthMask = enabled
}

func (d *Device) ClearColor(r, g, b, a float32) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.clearColor = gputypes.Color{R: float64(r), G: float64(g), B: float64(b), A: float64(a)}
}

func (d *Device) Viewport(x, y, width, height int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.viewport = [4]int{x, y, width, height}
}

func (d *Device) Scissor(x, y, width, height int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.scissor = [4]int{x, y, width, height}
}

// ProvokingVertex is accepted but has no effect: HAL pipelines always use
// the first vertex and the extension is never advertised.
func (d *Device) ProvokingVertex(convention native.ProvokingVertex) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.provoking = convention
}

// Clear clears the attachments of the bound framebuffer selected by mask.
// Color is skipped when every channel is masked and depth when the depth
// mask is off. The scissor rectangle is ignored.
func (d *Device) Clear(mask native.ClearMask) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.usable() {
		return
	}
	color, depth, err := d.attachments()
	if err != nil {
		d.record(native.InvalidFramebufferOperation)
		logger().Warn("wgpu: clear: incomplete framebuffer", "error", err)
		return
	}

	load := func(on bool) gputypes.LoadOp {
		if on {
			return gputypes.LoadOpClear
		}
		return gputypes.LoadOpLoad
	}
	clearColor := mask&native.ClearColorBit != 0 && d.colorMask != [4]bool{}
	clearDepth := mask&native.ClearDepthBit != 0 && d.depthMask
	clearStencil := mask&native.ClearStencilBit != 0

	desc := &hal.RenderPassDescriptor{Label: "clear"}
	for _, att := range color {
		desc.ColorAttachments = append(desc.ColorAttachments, hal.RenderPassColorAttachment{
			View:       att.view,
			LoadOp:     load(clearColor),
			StoreOp:    gputypes.StoreOpStore,
			ClearValue: d.clearColor,
		})
	}
	if depth != nil {
		ds := &hal.RenderPassDepthStencilAttachment{
			View:            depth.view,
			DepthLoadOp:     load(clearDepth),
			DepthStoreOp:    gputypes.StoreOpStore,
			DepthClearValue: 1.0,
		}
		if depth.format == gputypes.TextureFormatDepth24PlusStencil8 {
			ds.StencilLoadOp = load(clearStencil)
			ds.StencilStoreOp = gputypes.StoreOpStore
		}
		desc.DepthStencilAttachment = ds
	}

	_, err = d.encode("clear", func(enc hal.CommandEncoder) {
		enc.BeginRenderPass(desc).End()
	})
	if err != nil {
		d.record(native.OutOfMemory)
		logger().Warn("wgpu: clear failed", "error", err)
	}
}

// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/gpudev/native"
)

type objectKind int

const (
	kindBuffer objectKind = iota
	kindTexture
	kindRenderbuffer
	kindFramebuffer
	kindShader
	kindProgram
	kindVertexArray
)

var kindNames = [...]string{
	kindBuffer:       "buffer",
	kindTexture:      "texture",
	kindRenderbuffer: "renderbuffer",
	kindFramebuffer:  "framebuffer",
	kindShader:       "shader",
	kindProgram:      "program",
	kindVertexArray:  "vertex array",
}

func (k objectKind) String() string { return kindNames[k] }

// object is a native object and the HAL state behind it.
type object struct {
	id    native.ObjectID
	kind  objectKind
	label string

	// buffers
	buffer hal.Buffer
	target native.BufferTarget
	data   []byte
	pack   *packRead

	// textures and renderbuffers
	texture hal.Texture
	view    hal.TextureView
	format  gputypes.TextureFormat
	width   int
	height  int
	layers  int

	// framebuffers
	color []native.ObjectID
	depth native.ObjectID

	// shaders and programs
	module   hal.ShaderModule
	stage    native.ShaderStage
	vertex   native.ObjectID
	fragment native.ObjectID
}

// add registers o under a fresh id. Must be called with d.mu held.
func (d *Device) add(o *object) native.ObjectID {
	d.nextID++
	o.id = native.ObjectID(d.nextID)
	d.objects[o.id] = o
	return o.id
}

// lookup returns the object named by id if it has one of the given kinds.
func (d *Device) lookup(id native.ObjectID, kinds ...objectKind) (*object, bool) {
	o, ok := d.objects[id]
	if !ok {
		return nil, false
	}
	for _, k := range kinds {
		if o.kind == k {
			return o, true
		}
	}
	return nil, false
}

// destroyObject releases the HAL state of o. Must be called with d.mu held.
func (d *Device) destroyObject(o *object) {
	if o.pack != nil {
		o.pack.sub.pinned = false
		d.device.DestroyBuffer(o.pack.staging)
		o.pack = nil
	}
	if o.buffer != nil {
		d.device.DestroyBuffer(o.buffer)
		o.buffer = nil
	}
	if o.view != nil {
		d.device.DestroyTextureView(o.view)
		o.view = nil
	}
	if o.texture != nil {
		d.device.DestroyTexture(o.texture)
		o.texture = nil
	}
	if o.module != nil {
		d.device.DestroyShaderModule(o.module)
		o.module = nil
	}
}

func bufferUsage(target native.BufferTarget) gputypes.BufferUsage {
	switch target {
	case native.PixelPackBuffer:
		return gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst
	case native.ElementArrayBuffer:
		return gputypes.BufferUsageIndex | gputypes.BufferUsageCopyDst | gputypes.BufferUsageCopySrc
	}
	return gputypes.BufferUsageVertex | gputypes.BufferUsageCopyDst | gputypes.BufferUsageCopySrc
}

// allocBuffer creates the HAL buffer for o with room for size bytes.
func (d *Device) allocBuffer(o *object, size int) error {
	if size < 0 {
		d.record(native.InvalidValue)
		return fmt.Errorf("wgpu: buffer %q: negative size %d", o.label, size)
	}
	if uint64(size) > d.limits.MaxBufferSize {
		d.record(native.OutOfMemory)
		return fmt.Errorf("wgpu: buffer %q: size %d exceeds %d", o.label, size, d.limits.MaxBufferSize)
	}
	buf, err := d.device.CreateBuffer(&hal.BufferDescriptor{
		Label: o.label,
		Size:  alignUp(uint64(max(size, 4)), 4),
		Usage: bufferUsage(o.target),
	})
	if err != nil {
		d.record(native.OutOfMemory)
		return fmt.Errorf("wgpu: create buffer %q: %w", o.label, err)
	}
	o.buffer = buf
	o.data = make([]byte, size)
	return nil
}

// CreateBuffer creates a buffer for desc.Target with a zeroed CPU shadow.
func (d *Device) CreateBuffer(desc *native.BufferDesc) (native.ObjectID, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.usable() {
		return 0, ErrDeviceLost
	}
	o := &object{kind: kindBuffer, label: desc.Label, target: desc.Target}
	if err := d.allocBuffer(o, desc.Size); err != nil {
		return 0, err
	}
	return d.add(o), nil
}

// BufferData reallocates a buffer. Previous contents and pending pixel-pack
// readbacks are discarded.
func (d *Device) BufferData(id native.ObjectID, size int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.usable() {
		return
	}
	o, ok := d.lookup(id, kindBuffer)
	if !ok {
		d.record(native.InvalidOperation)
		return
	}
	d.destroyObject(o)
	if err := d.allocBuffer(o, size); err != nil {
		logger().Warn("wgpu: buffer reallocation failed", "buffer", o.label, "error", err)
	}
}

func (d *Device) maxExtent(dim gputypes.TextureDimension) int {
	if dim == gputypes.TextureDimension3D {
		return int(d.limits.MaxTextureDimension3D)
	}
	return int(d.limits.MaxTextureDimension2D)
}

// createImage backs a texture or renderbuffer object with a HAL texture and
// a default view.
func (d *Device) createImage(o *object, dim gputypes.TextureDimension, usage gputypes.TextureUsage) error {
	limit := d.maxExtent(dim)
	if o.width < 1 || o.height < 1 || o.layers < 1 || o.width > limit || o.height > limit {
		d.record(native.InvalidValue)
		return fmt.Errorf("wgpu: %s %q: invalid size %dx%dx%d (max %d)",
			o.kind, o.label, o.width, o.height, o.layers, limit)
	}
	tex, err := d.device.CreateTexture(&hal.TextureDescriptor{
		Label: o.label,
		Size: hal.Extent3D{
			Width:              uint32(o.width),
			Height:             uint32(o.height),
			DepthOrArrayLayers: uint32(o.layers),
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     dim,
		Format:        o.format,
		Usage:         usage,
	})
	if err != nil {
		d.record(native.OutOfMemory)
		return fmt.Errorf("wgpu: create %s %q: %w", o.kind, o.label, err)
	}
	view, err := d.device.CreateTextureView(tex, &hal.TextureViewDescriptor{Label: o.label})
	if err != nil {
		d.device.DestroyTexture(tex)
		d.record(native.OutOfMemory)
		return fmt.Errorf("wgpu: create %s view %q: %w", o.kind, o.label, err)
	}
	o.texture = tex
	o.view = view
	return nil
}

// CreateTexture creates a sampled texture. 2D and cube textures can also be
// rendered to and read back.
func (d *Device) CreateTexture(desc *native.TextureDesc) (native.ObjectID, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.usable() {
		return 0, ErrDeviceLost
	}
	if isIntegerFormat(desc.Format) && !d.HasExtension(native.ExtIntegerTextures) {
		d.record(native.InvalidEnum)
		return 0, fmt.Errorf("wgpu: texture %q: integer formats need Level2", desc.Label)
	}

	o := &object{
		kind:   kindTexture,
		label:  desc.Label,
		format: desc.Format,
		width:  desc.Width,
		height: desc.Height,
		layers: 1,
	}
	dim := gputypes.TextureDimension2D
	usage := gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst | gputypes.TextureUsageCopySrc
	switch desc.Target {
	case native.Texture3D:
		dim = gputypes.TextureDimension3D
		o.layers = desc.Depth
	case native.Texture2DArray:
		o.layers = desc.Depth
		usage |= gputypes.TextureUsageRenderAttachment
	case native.TextureCubeMap:
		o.layers = 6
		usage |= gputypes.TextureUsageRenderAttachment
	default:
		usage |= gputypes.TextureUsageRenderAttachment
	}
	if err := d.createImage(o, dim, usage); err != nil {
		return 0, err
	}
	return d.add(o), nil
}

// CreateRenderbuffer creates a render-only image. Color renderbuffers can be
// read back; depth renderbuffers cannot.
func (d *Device) CreateRenderbuffer(desc *native.RenderbufferDesc) (native.ObjectID, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.usable() {
		return 0, ErrDeviceLost
	}
	o := &object{
		kind:   kindRenderbuffer,
		label:  desc.Label,
		format: desc.Format,
		width:  desc.Width,
		height: desc.Height,
		layers: 1,
	}
	usage := gputypes.TextureUsageRenderAttachment
	if !isDepthFormat(desc.Format) {
		usage |= gputypes.TextureUsageCopySrc
	}
	if err := d.createImage(o, gputypes.TextureDimension2D, usage); err != nil {
		return 0, err
	}
	return d.add(o), nil
}

// CreateFramebuffer records an attachment list. Attachments must be live
// textures or renderbuffers of equal size.
func (d *Device) CreateFramebuffer(desc *native.FramebufferDesc) (native.ObjectID, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.usable() {
		return 0, ErrDeviceLost
	}
	if len(desc.Color) > int(d.limits.MaxColorAttachments) {
		d.record(native.InvalidValue)
		return 0, fmt.Errorf("wgpu: framebuffer %q: %d color attachments exceed %d",
			desc.Label, len(desc.Color), d.limits.MaxColorAttachments)
	}
	ids := append([]native.ObjectID(nil), desc.Color...)
	if desc.Depth != 0 {
		ids = append(ids, desc.Depth)
	}
	width, height := -1, -1
	for _, id := range ids {
		att, ok := d.lookup(id, kindTexture, kindRenderbuffer)
		if !ok || att.view == nil {
			d.record(native.InvalidOperation)
			return 0, fmt.Errorf("wgpu: framebuffer %q: attachment %d: %w", desc.Label, id, ErrUnknownObject)
		}
		if width < 0 {
			width, height = att.width, att.height
		} else if att.width != width || att.height != height {
			d.record(native.InvalidFramebufferOperation)
			return 0, fmt.Errorf("wgpu: framebuffer %q: attachment sizes differ", desc.Label)
		}
	}
	o := &object{
		kind:   kindFramebuffer,
		label:  desc.Label,
		color:  append([]native.ObjectID(nil), desc.Color...),
		depth:  desc.Depth,
		width:  width,
		height: height,
	}
	return d.add(o), nil
}

// CreateProgram links two compiled shaders of matching stages.
func (d *Device) CreateProgram(desc *native.ProgramDesc) (native.ObjectID, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.usable() {
		return 0, ErrDeviceLost
	}
	vs, okv := d.lookup(desc.Vertex, kindShader)
	fs, okf := d.lookup(desc.Fragment, kindShader)
	if !okv || !okf || vs.stage != native.VertexShader || fs.stage != native.FragmentShader {
		d.record(native.InvalidOperation)
		return 0, fmt.Errorf("wgpu: program %q: need a vertex and a fragment shader", desc.Label)
	}
	o := &object{kind: kindProgram, label: desc.Label, vertex: desc.Vertex, fragment: desc.Fragment}
	return d.add(o), nil
}

// CreateVertexArray creates an attribute binding set.
func (d *Device) CreateVertexArray(label string) (native.ObjectID, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.usable() {
		return 0, ErrDeviceLost
	}
	return d.add(&object{kind: kindVertexArray, label: label}), nil
}

// DeleteObject destroys an object and unbinds it everywhere.
func (d *Device) DeleteObject(id native.ObjectID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	o, ok := d.objects[id]
	if !ok {
		return
	}
	delete(d.objects, id)
	if d.device != nil {
		d.destroyObject(o)
	}
	if d.framebuffer == id {
		d.framebuffer = 0
	}
	if d.renderbuffer == id {
		d.renderbuffer = 0
	}
	for t, b := range d.buffers {
		if b == id {
			delete(d.buffers, t)
		}
	}
	for u, tex := range d.textures {
		if tex == id {
			delete(d.textures, u)
		}
	}
	for i, b := range d.attribs {
		if b == id {
			delete(d.attribs, i)
		}
	}
}

// Live returns the number of live objects.
func (d *Device) Live() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.objects)
}

func alignUp(v, a uint64) uint64 {
	return (v + a - 1) &^ (a - 1)
}

func isDepthFormat(f gputypes.TextureFormat) bool {
	switch f {
	case gputypes.TextureFormatDepth24PlusStencil8,
		gputypes.TextureFormatDepth24Plus,
		gputypes.TextureFormatDepth32Float:
		return true
	}
	return false
}

func isIntegerFormat(f gputypes.TextureFormat) bool {
	return f == gputypes.TextureFormatRGBA32Sint || f == gputypes.TextureFormatRGBA32Uint
}

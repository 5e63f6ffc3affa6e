// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package resource

import (
	"fmt"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/gpudev/caps"
	"github.com/gogpu/gpudev/native"
)

// Descriptor describes a resource to create. The concrete descriptor types
// of this package are the only implementations.
type Descriptor interface {
	// Kind returns the kind of resource the descriptor creates.
	Kind() Kind

	validate(s caps.Set) error
	create(dev native.Device, resolve resolver) (native.ObjectID, error)
}

// resolver maps a handle to the native object currently backing it.
type resolver func(Handle) (native.ObjectID, error)

// BufferDesc describes an attribute or element buffer.
type BufferDesc struct {
	Label string
	// Elements selects an index buffer instead of a vertex attribute buffer.
	Elements bool
	Size     int
}

func (d BufferDesc) Kind() Kind {
	if d.Elements {
		return KindElements
	}
	return KindAttribute
}

func (d BufferDesc) validate(caps.Set) error {
	if d.Size < 0 {
		return fmt.Errorf("%w: negative buffer size %d", ErrInvalidDescriptor, d.Size)
	}
	return nil
}

func (d BufferDesc) create(dev native.Device, _ resolver) (native.ObjectID, error) {
	target := native.ArrayBuffer
	if d.Elements {
		target = native.ElementArrayBuffer
	}
	return dev.CreateBuffer(&native.BufferDesc{Label: d.Label, Target: target, Size: d.Size})
}

// PixelPackDesc describes a buffer that receives asynchronous pixel
// readbacks.
type PixelPackDesc struct {
	Label string
	Size  int
}

func (d PixelPackDesc) Kind() Kind { return KindPixelPack }

func (d PixelPackDesc) validate(s caps.Set) error {
	if d.Size < 0 {
		return fmt.Errorf("%w: negative buffer size %d", ErrInvalidDescriptor, d.Size)
	}
	if !s.Has(native.ExtSyncObjects) {
		return fmt.Errorf("%w: pixel-pack buffers need %s", ErrUnsupportedCapability, native.ExtSyncObjects)
	}
	return nil
}

func (d PixelPackDesc) create(dev native.Device, _ resolver) (native.ObjectID, error) {
	return dev.CreateBuffer(&native.BufferDesc{Label: d.Label, Target: native.PixelPackBuffer, Size: d.Size})
}

// TextureDesc describes a 2D, 3D or cube texture. Depth above 1 makes a 3D
// texture; Cube makes a cube map with square faces and no depth.
type TextureDesc struct {
	Label  string
	Width  int
	Height int
	Depth  int
	Cube   bool
	Format gputypes.TextureFormat
	Filter gputypes.FilterMode
}

func (d TextureDesc) Kind() Kind {
	if d.Cube {
		return KindCubeTexture
	}
	return KindTexture
}

func (d TextureDesc) depth() int {
	if d.Depth < 1 {
		return 1
	}
	return d.Depth
}

func (d TextureDesc) target() native.TextureTarget {
	switch {
	case d.Cube:
		return native.TextureCubeMap
	case d.depth() > 1:
		return native.Texture3D
	default:
		return native.Texture2D
	}
}

func (d TextureDesc) validate(s caps.Set) error {
	if d.Width <= 0 || d.Height <= 0 {
		return fmt.Errorf("%w: texture size %dx%d", ErrInvalidDescriptor, d.Width, d.Height)
	}
	if d.Cube && d.Width != d.Height {
		return fmt.Errorf("%w: cube faces must be square, got %dx%d", ErrInvalidDescriptor, d.Width, d.Height)
	}
	if d.Cube && d.Depth > 1 {
		return fmt.Errorf("%w: cube texture with depth %d", ErrInvalidDescriptor, d.Depth)
	}
	if d.depth() > 1 {
		limit := s.Limits.Max3DTextureSize
		if d.Width > limit || d.Height > limit || d.depth() > limit {
			return fmt.Errorf("%w: 3D texture %dx%dx%d exceeds max 3D texture size %d",
				ErrUnsupportedCapability, d.Width, d.Height, d.depth(), limit)
		}
	} else if d.Width > s.Limits.MaxTextureSize || d.Height > s.Limits.MaxTextureSize {
		return fmt.Errorf("%w: texture %dx%d exceeds max texture size %d",
			ErrUnsupportedCapability, d.Width, d.Height, s.Limits.MaxTextureSize)
	}
	if ext, ok := TextureFormatExtension(d.Format); ok && !s.Has(ext) {
		return fmt.Errorf("%w: texture format %v needs %s", ErrUnsupportedCapability, d.Format, ext)
	}
	return nil
}

func (d TextureDesc) create(dev native.Device, _ resolver) (native.ObjectID, error) {
	return dev.CreateTexture(&native.TextureDesc{
		Label:  d.Label,
		Target: d.target(),
		Width:  d.Width,
		Height: d.Height,
		Depth:  d.depth(),
		Format: d.Format,
		Filter: d.Filter,
	})
}

// RenderbufferDesc describes a renderbuffer.
type RenderbufferDesc struct {
	Label  string
	Width  int
	Height int
	Format gputypes.TextureFormat
}

func (d RenderbufferDesc) Kind() Kind { return KindRenderbuffer }

func (d RenderbufferDesc) validate(s caps.Set) error {
	if d.Width <= 0 || d.Height <= 0 {
		return fmt.Errorf("%w: renderbuffer size %dx%d", ErrInvalidDescriptor, d.Width, d.Height)
	}
	if d.Width > s.Limits.MaxRenderbufferSize || d.Height > s.Limits.MaxRenderbufferSize {
		return fmt.Errorf("%w: renderbuffer %dx%d exceeds max renderbuffer size %d",
			ErrUnsupportedCapability, d.Width, d.Height, s.Limits.MaxRenderbufferSize)
	}
	if ext, ok := RenderFormatExtension(d.Format); ok && !s.Has(ext) {
		return fmt.Errorf("%w: renderbuffer format %v needs %s", ErrUnsupportedCapability, d.Format, ext)
	}
	return nil
}

func (d RenderbufferDesc) create(dev native.Device, _ resolver) (native.ObjectID, error) {
	return dev.CreateRenderbuffer(&native.RenderbufferDesc{
		Label:  d.Label,
		Width:  d.Width,
		Height: d.Height,
		Format: d.Format,
	})
}

// FramebufferDesc describes a framebuffer. Color attachments are textures
// and Depth, when set, is a renderbuffer, all from the same registry.
type FramebufferDesc struct {
	Label string
	Color []Handle
	Depth Handle
}

func (d FramebufferDesc) Kind() Kind { return KindFramebuffer }

func (d FramebufferDesc) validate(s caps.Set) error {
	if n := len(d.Color); n > 1 {
		if !s.Has(native.ExtDrawBuffers) {
			return fmt.Errorf("%w: %d color attachments need %s",
				ErrUnsupportedCapability, n, native.ExtDrawBuffers)
		}
		if n > s.Limits.MaxDrawBuffers {
			return fmt.Errorf("%w: %d color attachments exceed max draw buffers %d",
				ErrUnsupportedCapability, n, s.Limits.MaxDrawBuffers)
		}
	}
	return nil
}

func (d FramebufferDesc) create(dev native.Device, resolve resolver) (native.ObjectID, error) {
	desc := native.FramebufferDesc{Label: d.Label}
	for _, h := range d.Color {
		id, err := resolve(h)
		if err != nil {
			return 0, fmt.Errorf("color attachment: %w", err)
		}
		desc.Color = append(desc.Color, id)
	}
	if !d.Depth.IsZero() {
		id, err := resolve(d.Depth)
		if err != nil {
			return 0, fmt.Errorf("depth attachment: %w", err)
		}
		desc.Depth = id
	}
	return dev.CreateFramebuffer(&desc)
}

// ShaderDesc describes a shader stage in WGSL.
type ShaderDesc struct {
	Label  string
	Stage  native.ShaderStage
	Source string
}

func (d ShaderDesc) Kind() Kind { return KindShader }

func (d ShaderDesc) validate(caps.Set) error {
	if d.Stage != native.VertexShader && d.Stage != native.FragmentShader {
		return fmt.Errorf("%w: unknown shader stage %s", ErrInvalidDescriptor, native.EnumName(uint32(d.Stage)))
	}
	return nil
}

func (d ShaderDesc) create(dev native.Device, _ resolver) (native.ObjectID, error) {
	return dev.CreateShader(&native.ShaderDesc{Label: d.Label, Stage: d.Stage, Source: d.Source})
}

// ProgramDesc links two shaders of the same registry.
type ProgramDesc struct {
	Label    string
	Vertex   Handle
	Fragment Handle
}

func (d ProgramDesc) Kind() Kind { return KindProgram }

func (d ProgramDesc) validate(caps.Set) error {
	if d.Vertex.IsZero() || d.Fragment.IsZero() {
		return fmt.Errorf("%w: program needs vertex and fragment shaders", ErrInvalidDescriptor)
	}
	return nil
}

func (d ProgramDesc) create(dev native.Device, resolve resolver) (native.ObjectID, error) {
	vs, err := resolve(d.Vertex)
	if err != nil {
		return 0, fmt.Errorf("vertex shader: %w", err)
	}
	fs, err := resolve(d.Fragment)
	if err != nil {
		return 0, fmt.Errorf("fragment shader: %w", err)
	}
	return dev.CreateProgram(&native.ProgramDesc{Label: d.Label, Vertex: vs, Fragment: fs})
}

// VertexArrayDesc describes a vertex array object.
type VertexArrayDesc struct {
	Label string
}

func (d VertexArrayDesc) Kind() Kind { return KindVertexArray }

func (d VertexArrayDesc) validate(s caps.Set) error {
	if !s.Has(native.ExtVertexArrayObject) {
		return fmt.Errorf("%w: vertex arrays need %s", ErrUnsupportedCapability, native.ExtVertexArrayObject)
	}
	return nil
}

func (d VertexArrayDesc) create(dev native.Device, _ resolver) (native.ObjectID, error) {
	return dev.CreateVertexArray(d.Label)
}

// TextureFormatExtension returns the extension needed to sample from a
// texture of format f, if any.
func TextureFormatExtension(f gputypes.TextureFormat) (native.Extension, bool) {
	switch f {
	case gputypes.TextureFormatRGBA32Float:
		return native.ExtTextureFloat, true
	case gputypes.TextureFormatRGBA16Float:
		return native.ExtTextureHalfFloat, true
	case gputypes.TextureFormatRGBA32Sint, gputypes.TextureFormatRGBA32Uint:
		return native.ExtIntegerTextures, true
	case gputypes.TextureFormatDepth24Plus, gputypes.TextureFormatDepth24PlusStencil8,
		gputypes.TextureFormatDepth32Float:
		return native.ExtDepthTexture, true
	}
	return 0, false
}

// RenderFormatExtension returns the extension needed to render into
// format f, if any.
func RenderFormatExtension(f gputypes.TextureFormat) (native.Extension, bool) {
	switch f {
	case gputypes.TextureFormatRGBA32Float:
		return native.ExtColorBufferFloat, true
	case gputypes.TextureFormatRGBA16Float:
		return native.ExtColorBufferHalfFloat, true
	}
	return 0, false
}

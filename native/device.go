// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package native

import "github.com/gogpu/gputypes"

// ObjectID identifies a native object owned by a Device.
// The zero value means "no object" and unbinds when passed to Bind calls.
type ObjectID uint64

// FenceID identifies a native sync object.
type FenceID uint64

// Device is a native graphics context.
//
// Implementations are driven from a single rendering goroutine and need not
// be safe for concurrent use. Object creation after the context was lost
// may either fail or return placeholder ids; gpudev never relies on either.
type Device interface {
	// Level reports the API level of the context.
	Level() Level

	// Parameter returns an implementation limit. Unknown parameters return 0.
	Parameter(p Param) int

	// HasExtension reports whether an optional extension is usable.
	HasExtension(ext Extension) bool

	// IsContextLost reports whether the driver has lost the context.
	IsContextLost() bool

	// Error returns and clears the oldest recorded error.
	Error() ErrorCode

	// DrawingBufferSize returns the size of the default framebuffer.
	DrawingBufferSize() (width, height int)

	CreateBuffer(desc *BufferDesc) (ObjectID, error)
	CreateTexture(desc *TextureDesc) (ObjectID, error)
	CreateRenderbuffer(desc *RenderbufferDesc) (ObjectID, error)
	CreateFramebuffer(desc *FramebufferDesc) (ObjectID, error)
	CreateShader(desc *ShaderDesc) (ObjectID, error)
	CreateProgram(desc *ProgramDesc) (ObjectID, error)
	CreateVertexArray(label string) (ObjectID, error)

	// DeleteObject releases an object of any kind. Unknown ids are ignored.
	DeleteObject(id ObjectID)

	BindFramebuffer(id ObjectID)
	BindRenderbuffer(id ObjectID)
	BindBuffer(target BufferTarget, id ObjectID)
	BindTexture(unit int, target TextureTarget, id ObjectID)

	// VertexAttribPointer points attribute index at buf with the smallest
	// possible layout (one float, tightly packed).
	VertexAttribPointer(index int, buf ObjectID)

	SetEnabled(c Capability, enabled bool)
	ColorMask(r, g, b, a bool)
	DepthMask(enabled bool)
	ClearColor(r, g, b, a float32)
	Viewport(x, y, width, height int)
	Scissor(x, y, width, height int)
	Clear(mask ClearMask)

	// ProvokingVertex selects the provoking vertex convention. Only called
	// when ExtProvokingVertex is available.
	ProvokingVertex(convention ProvokingVertex)

	// BufferData reallocates the storage of a buffer to size bytes.
	BufferData(id ObjectID, size int)

	// ReadPixels synchronously reads a rectangle of the bound framebuffer.
	ReadPixels(x, y, width, height int, format ReadFormat, dst []byte) error

	// ReadPixelsToBuffer schedules a readback of the bound framebuffer into
	// a pixel-pack buffer without waiting for it.
	ReadPixelsToBuffer(x, y, width, height int, format ReadFormat, buf ObjectID) error

	// GetBufferSubData copies buffer contents into dst.
	GetBufferSubData(id ObjectID, offset int, dst []byte) error

	// FenceSync inserts a fence after all previously submitted commands.
	// Returns ErrSyncUnsupported when sync objects are unavailable.
	FenceSync() (FenceID, error)

	// SyncSignaled polls a fence without blocking.
	SyncSignaled(id FenceID) bool

	DeleteSync(id FenceID)

	// Release asks the context to free its GPU memory immediately.
	// The device is unusable afterwards.
	Release()
}

// BufferDesc describes a buffer.
type BufferDesc struct {
	Label  string
	Target BufferTarget
	Size   int
}

// TextureDesc describes a texture. Depth is the layer count for 3D and
// array textures and 1 otherwise.
type TextureDesc struct {
	Label  string
	Target TextureTarget
	Width  int
	Height int
	Depth  int
	Format gputypes.TextureFormat
	Filter gputypes.FilterMode
}

// RenderbufferDesc describes a renderbuffer.
type RenderbufferDesc struct {
	Label  string
	Width  int
	Height int
	Format gputypes.TextureFormat
}

// FramebufferDesc describes a framebuffer and its attachments.
// Depth may be zero for a color-only framebuffer.
type FramebufferDesc struct {
	Label string
	Color []ObjectID
	Depth ObjectID
}

// ShaderDesc describes a shader stage. Source is WGSL.
type ShaderDesc struct {
	Label  string
	Stage  ShaderStage
	Source string
}

// ProgramDesc links a vertex and a fragment shader.
type ProgramDesc struct {
	Label    string
	Vertex   ObjectID
	Fragment ObjectID
}

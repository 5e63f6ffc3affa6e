// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package native

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Level is the API level of a context.
type Level int

const (
	// Level1 is the baseline feature level (WebGL 1 / GLES 2 class).
	Level1 Level = 1
	// Level2 adds integer textures, sync objects, vertex arrays and
	// instancing to the core (WebGL 2 / GLES 3 class).
	Level2 Level = 2
)

// String returns the string representation of a Level.
func (l Level) String() string {
	switch l {
	case Level1:
		return "Level1"
	case Level2:
		return "Level2"
	default:
		return fmt.Sprintf("Level(%d)", int(l))
	}
}

// Param is an implementation limit queried with Device.Parameter.
type Param uint32

const (
	ParamMaxTextureSize             Param = 0x0D33
	ParamMax3DTextureSize           Param = 0x8073
	ParamMaxRenderbufferSize        Param = 0x84E8
	ParamMaxDrawBuffers             Param = 0x8824
	ParamMaxTextureImageUnits       Param = 0x8872
	ParamMaxVertexTextureImageUnits Param = 0x8B4C
	ParamMaxVertexAttribs           Param = 0x8869
)

// Extension is an optional context feature.
type Extension int

const (
	ExtDrawBuffers Extension = iota
	ExtProvokingVertex
	ExtColorBufferFloat
	ExtColorBufferHalfFloat
	ExtTextureFloat
	ExtTextureHalfFloat
	ExtIntegerTextures
	ExtSyncObjects
	ExtDepthTexture
	ExtInstancedArrays
	ExtVertexArrayObject
	ExtMultiDraw
	ExtTimerQuery
	ExtLoseContext

	extensionCount
)

// ExtensionCount is the number of known extensions.
const ExtensionCount = int(extensionCount)

var extensionNames = [extensionCount]string{
	ExtDrawBuffers:          "WEBGL_draw_buffers",
	ExtProvokingVertex:      "WEBGL_provoking_vertex",
	ExtColorBufferFloat:     "EXT_color_buffer_float",
	ExtColorBufferHalfFloat: "EXT_color_buffer_half_float",
	ExtTextureFloat:         "OES_texture_float",
	ExtTextureHalfFloat:     "OES_texture_half_float",
	ExtIntegerTextures:      "integer_textures",
	ExtSyncObjects:          "sync_objects",
	ExtDepthTexture:         "WEBGL_depth_texture",
	ExtInstancedArrays:      "ANGLE_instanced_arrays",
	ExtVertexArrayObject:    "OES_vertex_array_object",
	ExtMultiDraw:            "WEBGL_multi_draw",
	ExtTimerQuery:           "EXT_disjoint_timer_query",
	ExtLoseContext:          "WEBGL_lose_context",
}

// Extensions lists every known extension in declaration order.
func Extensions() []Extension {
	all := make([]Extension, extensionCount)
	for i := range all {
		all[i] = Extension(i)
	}
	return all
}

// String returns the conventional extension name.
func (e Extension) String() string {
	if e >= 0 && e < extensionCount {
		return extensionNames[e]
	}
	return fmt.Sprintf("Extension(%d)", int(e))
}

// ErrorCode is a native error reported by Device.Error.
type ErrorCode uint32

const (
	NoError                     ErrorCode = 0
	InvalidEnum                 ErrorCode = 0x0500
	InvalidValue                ErrorCode = 0x0501
	InvalidOperation            ErrorCode = 0x0502
	OutOfMemory                 ErrorCode = 0x0505
	InvalidFramebufferOperation ErrorCode = 0x0506
	ContextLostError            ErrorCode = 0x9242
)

// Description returns a short human-readable description of the error.
func (c ErrorCode) Description() string {
	switch c {
	case NoError:
		return "no error"
	case InvalidEnum:
		return "invalid enum"
	case InvalidValue:
		return "invalid value"
	case InvalidOperation:
		return "invalid operation"
	case InvalidFramebufferOperation:
		return "invalid framebuffer operation"
	case OutOfMemory:
		return "out of memory"
	case ContextLostError:
		return "context lost"
	}
	return "unknown error"
}

// String returns the enum name of the error code.
func (c ErrorCode) String() string {
	return EnumName(uint32(c))
}

// Capability is a pipeline toggle set with Device.SetEnabled.
type Capability uint32

const (
	CapCullFace    Capability = 0x0B44
	CapDepthTest   Capability = 0x0B71
	CapBlend       Capability = 0x0BE2
	CapScissorTest Capability = 0x0C11
)

// ClearMask selects the buffers cleared by Device.Clear.
type ClearMask uint32

const (
	ClearDepthBit   ClearMask = 0x0100
	ClearStencilBit ClearMask = 0x0400
	ClearColorBit   ClearMask = 0x4000
)

// BufferTarget is a buffer binding point.
type BufferTarget uint32

const (
	ArrayBuffer        BufferTarget = 0x8892
	ElementArrayBuffer BufferTarget = 0x8893
	PixelPackBuffer    BufferTarget = 0x88EB
)

// TextureTarget is a texture binding point.
type TextureTarget uint32

const (
	Texture2D      TextureTarget = 0x0DE1
	Texture3D      TextureTarget = 0x806F
	TextureCubeMap TextureTarget = 0x8513
	Texture2DArray TextureTarget = 0x8C1A
)

// ShaderStage is a programmable pipeline stage.
type ShaderStage uint32

const (
	FragmentShader ShaderStage = 0x8B30
	VertexShader   ShaderStage = 0x8B31
)

// ProvokingVertex is a flat-shading vertex convention.
type ProvokingVertex uint32

const (
	FirstVertexConvention ProvokingVertex = 0x8E4D
	LastVertexConvention  ProvokingVertex = 0x8E4E
)

// ReadFormat is the pixel format of a readback.
type ReadFormat int

const (
	// ReadRGBA8 reads four unsigned bytes per pixel.
	ReadRGBA8 ReadFormat = iota
	// ReadRGBA32F reads four 32-bit floats per pixel.
	ReadRGBA32F
	// ReadRGBA32I reads four 32-bit signed integers per pixel.
	ReadRGBA32I
)

// BytesPerPixel returns the size of one pixel in the format.
func (f ReadFormat) BytesPerPixel() int {
	switch f {
	case ReadRGBA32F, ReadRGBA32I:
		return 16
	default:
		return 4
	}
}

// String returns the string representation of a ReadFormat.
func (f ReadFormat) String() string {
	switch f {
	case ReadRGBA8:
		return "RGBA8"
	case ReadRGBA32F:
		return "RGBA32F"
	case ReadRGBA32I:
		return "RGBA32I"
	default:
		return fmt.Sprintf("ReadFormat(%d)", int(f))
	}
}

// enumTable lists token names for diagnostics. Several names may share a
// value; EnumName reports all of them.
var enumTable = []struct {
	name  string
	value uint32
}{
	{"NO_ERROR", 0},
	{"NONE", 0},
	{"ZERO", 0},
	{"ONE", 1},
	{"INVALID_ENUM", 0x0500},
	{"INVALID_VALUE", 0x0501},
	{"INVALID_OPERATION", 0x0502},
	{"OUT_OF_MEMORY", 0x0505},
	{"INVALID_FRAMEBUFFER_OPERATION", 0x0506},
	{"CONTEXT_LOST_WEBGL", 0x9242},
	{"CULL_FACE", 0x0B44},
	{"DEPTH_TEST", 0x0B71},
	{"BLEND", 0x0BE2},
	{"SCISSOR_TEST", 0x0C11},
	{"DEPTH_BUFFER_BIT", 0x0100},
	{"STENCIL_BUFFER_BIT", 0x0400},
	{"COLOR_BUFFER_BIT", 0x4000},
	{"ARRAY_BUFFER", 0x8892},
	{"ELEMENT_ARRAY_BUFFER", 0x8893},
	{"PIXEL_PACK_BUFFER", 0x88EB},
	{"TEXTURE_2D", 0x0DE1},
	{"TEXTURE_3D", 0x806F},
	{"TEXTURE_CUBE_MAP", 0x8513},
	{"TEXTURE_2D_ARRAY", 0x8C1A},
	{"FRAGMENT_SHADER", 0x8B30},
	{"VERTEX_SHADER", 0x8B31},
	{"FIRST_VERTEX_CONVENTION_WEBGL", 0x8E4D},
	{"LAST_VERTEX_CONVENTION_WEBGL", 0x8E4E},
	{"MAX_TEXTURE_SIZE", 0x0D33},
	{"MAX_3D_TEXTURE_SIZE", 0x8073},
	{"MAX_RENDERBUFFER_SIZE", 0x84E8},
	{"MAX_DRAW_BUFFERS", 0x8824},
	{"MAX_TEXTURE_IMAGE_UNITS", 0x8872},
	{"MAX_VERTEX_TEXTURE_IMAGE_UNITS", 0x8B4C},
	{"MAX_VERTEX_ATTRIBS", 0x8869},
	{"FRAMEBUFFER_COMPLETE", 0x8CD5},
	{"FRAMEBUFFER_INCOMPLETE_ATTACHMENT", 0x8CD6},
	{"FRAMEBUFFER_INCOMPLETE_MISSING_ATTACHMENT", 0x8CD7},
	{"FRAMEBUFFER_INCOMPLETE_DIMENSIONS", 0x8CD9},
	{"FRAMEBUFFER_UNSUPPORTED", 0x8CDD},
	{"SYNC_GPU_COMMANDS_COMPLETE", 0x9117},
	{"UNSIGNALED", 0x9118},
	{"SIGNALED", 0x9119},
	{"UNSIGNED_BYTE", 0x1401},
	{"INT", 0x1404},
	{"FLOAT", 0x1406},
	{"HALF_FLOAT", 0x140B},
	{"RGBA", 0x1908},
	{"RGBA_INTEGER", 0x8D99},
	{"NEAREST", 0x2600},
	{"LINEAR", 0x2601},
}

var (
	enumNamesOnce sync.Once
	enumNames     map[uint32][]string
)

// EnumName returns the token name(s) for a native enum value, joined with
// " | " when several tokens share the value, or the hex value when unknown.
// It is meant for debug logging only.
func EnumName(value uint32) string {
	enumNamesOnce.Do(func() {
		enumNames = make(map[uint32][]string, len(enumTable))
		for _, e := range enumTable {
			enumNames[e.value] = append(enumNames[e.value], e.name)
		}
		for _, names := range enumNames {
			sort.Strings(names)
		}
	})
	if names, ok := enumNames[value]; ok {
		return strings.Join(names, " | ")
	}
	return fmt.Sprintf("0x%x", value)
}

// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package resource

import "fmt"

// Kind is the type of a GPU resource.
//
// Kinds are declared in restore order: a kind only depends on kinds
// declared before it.
type Kind int

const (
	KindAttribute Kind = iota
	KindElements
	KindTexture
	KindCubeTexture
	KindRenderbuffer
	KindFramebuffer
	KindShader
	KindProgram
	KindVertexArray
	KindPixelPack

	kindCount
)

// Kinds lists every kind in restore order.
func Kinds() []Kind {
	all := make([]Kind, kindCount)
	for i := range all {
		all[i] = Kind(i)
	}
	return all
}

var kindNames = [kindCount]string{
	KindAttribute:    "attribute",
	KindElements:     "elements",
	KindTexture:      "texture",
	KindCubeTexture:  "cubeTexture",
	KindRenderbuffer: "renderbuffer",
	KindFramebuffer:  "framebuffer",
	KindShader:       "shader",
	KindProgram:      "program",
	KindVertexArray:  "vertexArray",
	KindPixelPack:    "pixelPack",
}

// String returns the string representation of a Kind.
func (k Kind) String() string {
	if k >= 0 && k < kindCount {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

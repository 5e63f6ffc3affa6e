// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package wgpu implements native.Device on the gogpu/wgpu HAL.
//
// Importing the package registers two backends with the native registry:
//
//	import _ "github.com/gogpu/gpudev/backend/wgpu"
//
//   - "vulkan" (priority 100) opens a hardware adapter, choosing a discrete
//     or integrated GPU according to Attributes.PowerPreference.
//   - "noop" (priority 0) accepts every call and draws nothing. It is always
//     available and is what tests and headless tools fall back to.
//
// A host that already owns a device (for example a gogpu application) can
// share it through FromProvider instead of opening a second one.
//
// # Object Model
//
// Buffers, textures and renderbuffers map onto HAL buffers and textures.
// Framebuffers are attachment lists resolved when a render pass begins.
// Shaders are WGSL compiled to SPIR-V with naga at creation time; programs
// pair two compiled modules. Vertex arrays carry no GPU state.
//
// Every buffer keeps a CPU shadow so GetBufferSubData never maps GPU memory.
// Pixel-pack readbacks copy into a staging buffer that is resolved into the
// shadow the first time the pack buffer is read.
//
// # Coordinates
//
// Rectangles passed to ReadPixels use a bottom-left origin and rows are
// returned bottom-up, matching the conventions of the native interface.
package wgpu

// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package native defines the surface gpudev consumes from an underlying
// graphics context.
//
// A backend implements [Device] once per drawing surface. The interface is
// deliberately narrow: parameter and extension queries for capability
// probing, object creation keyed by descriptors, a handful of pipeline state
// setters, pixel readback and sync objects. Everything above it (state
// caching, resource bookkeeping, loss recovery) lives in gpudev.
//
// Backends register themselves with [Register] and are negotiated through
// [Open] using context [Attributes]:
//
//	dev, err := native.Open(native.Attributes{
//	    PreferredBackend: "vulkan",
//	    Width:            1280,
//	    Height:           720,
//	})
//
// Numeric enum values follow the OpenGL ES / WebGL token space so that
// [EnumName] can be used to render diagnostics from any backend.
package native

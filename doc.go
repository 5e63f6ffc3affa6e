// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package gpudev manages a native GPU device context and the lifecycle of
// everything allocated on it.
//
// # Overview
//
// A Context wraps one native.Device. It probes the device capabilities
// once, validates the mandatory minimums, and from then on is the single
// place where GPU resources are created, counted, synchronized, read back
// and destroyed. When the driver loses the device, the Context is marked
// lost; once the device comes back, HandleContextRestored re-probes it and
// re-creates every tracked resource with the same shape.
//
// # Quick Start
//
//	dev, err := native.Open(native.DefaultAttributes())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	ctx, err := gpudev.New(dev, gpudev.WithPixelScale(2))
//	if err != nil {
//	    log.Fatal(err) // e.g. gpudev.ErrInsufficientCapability
//	}
//	defer ctx.Destroy(gpudev.DestroyOptions{})
//
//	rt, err := ctx.CreateRenderTarget(gpudev.RenderTargetDesc{Width: 256, Height: 256, Depth: true})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	rt.Bind()
//	ctx.Clear(0, 0, 0, 1)
//
//	// Wait for the GPU without blocking the render loop.
//	fut := ctx.WaitForGpuCommandsComplete()
//	for !fut.Settled() {
//	    ctx.Scheduler().Tick()
//	}
//
// # Threading
//
// Rendering methods belong to one goroutine, the one that also calls
// Scheduler().Tick. Stats, IsContextLost, Caps and Lifecycle are safe from
// any goroutine.
//
// # Sub-packages
//
//   - native: the device interface, backend registry and diagnostics
//   - caps: capability probing
//   - state: redundant state-change elision
//   - resource: resource registry and statistics
//   - fence, sched: GPU synchronization and the tick scheduler
//   - backend/hal: a native.Device on top of gogpu/wgpu
package gpudev

// Version information
const (
	// Version is the current version of the library
	Version = "0.1.0"

	// VersionMajor is the major version
	VersionMajor = 0

	// VersionMinor is the minor version
	VersionMinor = 1

	// VersionPatch is the patch version
	VersionPatch = 0
)

// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package resource is the single factory and owner of GPU resources.
//
// Every buffer, texture, renderbuffer, framebuffer, shader, program and
// vertex array of a context is created through a Registry, counted in its
// Stats, validated against the probed capability Set before any native
// call, and re-created with the same shape when the context is restored.
//
//	reg := resource.NewRegistry(dev, set, resource.NewCounter())
//	tex, err := reg.Create(resource.TextureDesc{Width: 256, Height: 256})
//	if err != nil {
//	    return err
//	}
//	defer tex.Destroy()
package resource

// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package resource

import "github.com/gogpu/gpudev/native"

// Resource is a GPU object owned by a Registry.
type Resource struct {
	reg    *Registry
	handle Handle
	kind   Kind

	// Guarded by reg.mu.
	desc      Descriptor
	id        native.ObjectID
	epoch     uint64
	destroyed bool
}

// Handle returns the registry handle of the resource.
func (r *Resource) Handle() Handle { return r.handle }

// Kind returns the resource kind.
func (r *Resource) Kind() Kind { return r.kind }

// Native returns the native object currently backing the resource, or 0
// once destroyed.
func (r *Resource) Native() native.ObjectID {
	r.reg.mu.Lock()
	defer r.reg.mu.Unlock()
	if r.destroyed {
		return 0
	}
	return r.id
}

// Descriptor returns the descriptor the current storage was created from.
func (r *Resource) Descriptor() Descriptor {
	r.reg.mu.Lock()
	defer r.reg.mu.Unlock()
	return r.desc
}

// Epoch returns the capability epoch the current storage belongs to.
func (r *Resource) Epoch() uint64 {
	r.reg.mu.Lock()
	defer r.reg.mu.Unlock()
	return r.epoch
}

// Destroyed reports whether Destroy was called.
func (r *Resource) Destroyed() bool {
	r.reg.mu.Lock()
	defer r.reg.mu.Unlock()
	return r.destroyed
}

// Destroy deletes the native object and releases the slot. Calling it more
// than once has no effect.
func (r *Resource) Destroy() {
	r.reg.destroy(r)
}

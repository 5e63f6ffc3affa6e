// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package resource

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gogpu/gpudev/caps"
	"github.com/gogpu/gpudev/internal/glog"
	"github.com/gogpu/gpudev/native"
)

// Handle addresses a resource slot in a Registry. The zero Handle refers to
// nothing. A handle goes stale once its resource is destroyed and the slot
// is reused.
type Handle struct {
	index      uint32 // slot index + 1
	generation uint32
}

// IsZero reports whether h refers to nothing.
func (h Handle) IsZero() bool { return h.index == 0 }

// String returns a debug representation of the handle.
func (h Handle) String() string {
	if h.IsZero() {
		return "Handle(none)"
	}
	return fmt.Sprintf("Handle(%d@%d)", h.index-1, h.generation)
}

type slot struct {
	res        *Resource
	generation uint32
}

// Registry owns every GPU resource of a context. Resources live in an
// arena of slots addressed by generation-tagged handles.
//
// Registry is safe for concurrent use.
type Registry struct {
	mu sync.Mutex

	dev     native.Device
	caps    caps.Set
	epoch   uint64
	counter *Counter

	slots []slot
	free  []uint32

	closed bool
}

// NewRegistry creates a registry for dev. Resource counts are accumulated
// into counter, which may be shared with draw accounting.
func NewRegistry(dev native.Device, set caps.Set, counter *Counter) *Registry {
	if counter == nil {
		counter = NewCounter()
	}
	return &Registry{
		dev:     dev,
		caps:    set,
		epoch:   set.Epoch,
		counter: counter,
	}
}

// Epoch returns the capability epoch resources are currently created in.
func (r *Registry) Epoch() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.epoch
}

// Stats returns a snapshot of the shared statistics.
func (r *Registry) Stats() Stats {
	return r.counter.Snapshot()
}

// Create validates desc against the probed capabilities and creates the
// native object. On any failure nothing is registered and the counters are
// untouched.
func (r *Registry) Create(desc Descriptor) (*Resource, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, ErrRegistryClosed
	}
	if err := desc.validate(r.caps); err != nil {
		return nil, err
	}
	id, err := desc.create(r.dev, r.resolveLocked)
	if err != nil {
		return nil, fmt.Errorf("resource: create %s: %w", desc.Kind(), err)
	}

	res := &Resource{
		reg:   r,
		kind:  desc.Kind(),
		desc:  desc,
		id:    id,
		epoch: r.epoch,
	}
	res.handle = r.allocLocked(res)
	r.counter.addResource(res.kind, 1)

	glog.Logger().Debug("resource: created",
		"kind", res.kind.String(), "handle", res.handle.String(), "epoch", res.epoch)
	return res, nil
}

func (r *Registry) allocLocked(res *Resource) Handle {
	var idx uint32
	if n := len(r.free); n > 0 {
		idx = r.free[n-1]
		r.free = r.free[:n-1]
	} else {
		//nolint:gosec // G115: slot count never approaches 2^32
		idx = uint32(len(r.slots))
		r.slots = append(r.slots, slot{})
	}
	r.slots[idx].res = res
	return Handle{index: idx + 1, generation: r.slots[idx].generation}
}

func (r *Registry) lookupLocked(h Handle) (*Resource, error) {
	if h.IsZero() || int(h.index) > len(r.slots) {
		return nil, fmt.Errorf("%w: %s", ErrStaleHandle, h)
	}
	s := r.slots[h.index-1]
	if s.generation != h.generation || s.res == nil {
		return nil, fmt.Errorf("%w: %s", ErrStaleHandle, h)
	}
	return s.res, nil
}

func (r *Registry) resolveLocked(h Handle) (native.ObjectID, error) {
	res, err := r.lookupLocked(h)
	if err != nil {
		return 0, err
	}
	return res.id, nil
}

// Lookup returns the live resource addressed by h.
func (r *Registry) Lookup(h Handle) (*Resource, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lookupLocked(h)
}

// Redefine replaces the storage of res with a new object described by
// desc, which must be of the same kind. Counters are unchanged.
func (r *Registry) Redefine(res *Resource, desc Descriptor) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrRegistryClosed
	}
	if res.destroyed {
		return ErrResourceDestroyed
	}
	if desc.Kind() != res.kind {
		return fmt.Errorf("%w: cannot redefine %s as %s", ErrInvalidDescriptor, res.kind, desc.Kind())
	}
	if err := desc.validate(r.caps); err != nil {
		return err
	}
	id, err := desc.create(r.dev, r.resolveLocked)
	if err != nil {
		return fmt.Errorf("resource: redefine %s: %w", res.kind, err)
	}
	r.dev.DeleteObject(res.id)
	res.id = id
	res.desc = desc
	res.epoch = r.epoch
	return nil
}

func (r *Registry) destroy(res *Resource) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.destroyLocked(res)
}

func (r *Registry) destroyLocked(res *Resource) {
	if res.destroyed {
		return
	}
	res.destroyed = true
	r.dev.DeleteObject(res.id)

	idx := res.handle.index - 1
	r.slots[idx].res = nil
	r.slots[idx].generation++
	r.free = append(r.free, idx)

	r.counter.addResource(res.kind, -1)
}

// Live returns the live resources of kind k in creation slot order.
func (r *Registry) Live(k Kind) []*Resource {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*Resource
	for _, s := range r.slots {
		if s.res != nil && s.res.kind == k {
			out = append(out, s.res)
		}
	}
	return out
}

// DestroyAll destroys every live resource and closes the registry.
// Later calls are no-ops.
func (r *Registry) DestroyAll() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return
	}
	// Dependents first, so no object is deleted while still attached.
	kinds := Kinds()
	for i := len(kinds) - 1; i >= 0; i-- {
		for _, s := range r.slots {
			if s.res != nil && s.res.kind == kinds[i] {
				r.destroyLocked(s.res)
			}
		}
	}
	r.closed = true
	r.counter.clearResources()
}

// Reset re-creates empty native storage of the same shape for every live
// resource after a context restore. Kinds are processed in declaration
// order so attachments exist before the framebuffers that use them.
// Failures are collected; the affected resources keep a zero native id.
func (r *Registry) Reset(set caps.Set) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrRegistryClosed
	}
	r.caps = set
	r.epoch = set.Epoch

	var errs []error
	for _, k := range Kinds() {
		for _, s := range r.slots {
			res := s.res
			if res == nil || res.kind != k {
				continue
			}
			// Storage from before the loss is gone with the old context.
			id, err := res.desc.create(r.dev, r.resolveLocked)
			if err != nil {
				errs = append(errs, fmt.Errorf("resource: reset %s %s: %w", k, res.handle, err))
				id = 0
			}
			res.id = id
			res.epoch = r.epoch
		}
	}
	glog.Logger().Debug("resource: registry reset", "epoch", r.epoch, "errors", len(errs))
	return errors.Join(errs...)
}

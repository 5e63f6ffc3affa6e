// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package native

import (
	"fmt"
	"sort"
	"sync"
)

// Factory opens a Device for the given attributes.
type Factory func(attrs Attributes) (Device, error)

// BackendEntry is a registered backend.
type BackendEntry struct {
	// Name is the unique identifier for this backend.
	Name string

	// Priority determines selection order (higher = preferred).
	//   - 100: hardware backends (Vulkan, Metal, D3D12)
	//   - 0: null backends that accept every call and draw nothing
	Priority int

	// Factory opens devices.
	Factory Factory

	// Available reports if the backend can be used on this system.
	Available func() bool
}

var globalRegistry = NewRegistry()

// Registry holds registered backends.
//
// Backends register themselves from init functions:
//
//	func init() {
//	    native.Register("vulkan", 100, openVulkan, vulkanAvailable)
//	}
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*BackendEntry
}

// NewRegistry creates an empty registry.
// Most code should use the global registry via Register and Open.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]*BackendEntry)}
}

// Register adds a backend to the global registry.
// If available is nil, the backend is assumed always available.
// Registering an existing name replaces the previous entry.
func Register(name string, priority int, factory Factory, available func() bool) {
	globalRegistry.Register(name, priority, factory, available)
}

// Unregister removes a backend from the global registry.
func Unregister(name string) {
	globalRegistry.Unregister(name)
}

// Backends returns the names of available backends, highest priority first.
func Backends() []string {
	return globalRegistry.Available()
}

// Open negotiates a Device from the global registry.
func Open(attrs Attributes) (Device, error) {
	return globalRegistry.Open(attrs)
}

// OpenByName opens a device from a named backend of the global registry.
func OpenByName(name string, attrs Attributes) (Device, error) {
	return globalRegistry.OpenByName(name, attrs)
}

// Register adds a backend to this registry.
func (r *Registry) Register(name string, priority int, factory Factory, available func() bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if available == nil {
		available = func() bool { return true }
	}
	r.entries[name] = &BackendEntry{
		Name:      name,
		Priority:  priority,
		Factory:   factory,
		Available: available,
	}
}

// Unregister removes a backend from this registry.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, name)
}

// Available returns names of available backends sorted by priority.
func (r *Registry) Available() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sortedNames()
}

// Open tries attrs.PreferredBackend first, then every other available
// backend in priority order, and returns the first device that opens.
// When nothing opens, the last factory error is returned.
func (r *Registry) Open(attrs Attributes) (Device, error) {
	if attrs.PreferredBackend != "" {
		dev, err := r.OpenByName(attrs.PreferredBackend, attrs)
		if err == nil {
			return dev, nil
		}
		logger().Info("native: preferred backend failed, negotiating",
			"backend", attrs.PreferredBackend, "error", err)
	}

	r.mu.RLock()
	names := r.sortedNames()
	r.mu.RUnlock()

	var lastErr error
	for _, name := range names {
		if name == attrs.PreferredBackend {
			continue
		}
		dev, err := r.OpenByName(name, attrs)
		if err == nil {
			return dev, nil
		}
		lastErr = err
	}
	if lastErr != nil {
		return nil, lastErr
	}
	return nil, ErrNoBackendAvailable
}

// OpenByName opens a device from a specific backend.
func (r *Registry) OpenByName(name string, attrs Attributes) (Device, error) {
	r.mu.RLock()
	entry, ok := r.entries[name]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrBackendNotFound, name)
	}
	if !entry.Available() {
		return nil, fmt.Errorf("%w: %s", ErrBackendUnavailable, name)
	}
	dev, err := entry.Factory(attrs)
	if err != nil {
		return nil, fmt.Errorf("native: open %s: %w", name, err)
	}
	return dev, nil
}

// sortedNames returns available backend names sorted by priority (highest
// first, ties by name). Must be called with lock held.
func (r *Registry) sortedNames() []string {
	entries := make([]*BackendEntry, 0, len(r.entries))
	for _, e := range r.entries {
		if e.Available() {
			entries = append(entries, e)
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Priority != entries[j].Priority {
			return entries[i].Priority > entries[j].Priority
		}
		return entries[i].Name < entries[j].Name
	})

	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name
	}
	return names
}

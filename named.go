// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpudev

import (
	"sort"
	"sync"
)

// Named is a string-keyed collection for reusing objects across frames.
// It is safe for concurrent use.
type Named[T any] struct {
	mu    sync.RWMutex
	items map[string]T
}

// NewNamed returns an empty collection.
func NewNamed[T any]() *Named[T] {
	return &Named[T]{items: make(map[string]T)}
}

// Get returns the item stored under name.
func (n *Named[T]) Get(name string) (T, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	v, ok := n.items[name]
	return v, ok
}

// Set stores v under name, replacing any previous item.
func (n *Named[T]) Set(name string, v T) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.items[name] = v
}

// Delete removes the item stored under name.
func (n *Named[T]) Delete(name string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.items, name)
}

// Names returns the stored names in sorted order.
func (n *Named[T]) Names() []string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	names := make([]string, 0, len(n.items))
	for k := range n.items {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of stored items.
func (n *Named[T]) Len() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.items)
}

// Clear removes every item.
func (n *Named[T]) Clear() {
	n.mu.Lock()
	defer n.mu.Unlock()
	clear(n.items)
}

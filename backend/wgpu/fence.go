// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"fmt"

	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/gpudev/native"
)

// FenceSync submits an empty command buffer and returns a fence that
// signals once every earlier submission has completed.
func (d *Device) FenceSync() (native.FenceID, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.usable() {
		return 0, ErrDeviceLost
	}
	if d.level < native.Level2 {
		return 0, native.ErrSyncUnsupported
	}
	sub, err := d.encode("fence", func(hal.CommandEncoder) {})
	if err != nil {
		return 0, fmt.Errorf("wgpu: fence: %w", err)
	}
	sub.pinned = true
	d.nextID++
	id := native.FenceID(d.nextID)
	d.fences[id] = sub
	return id, nil
}

// SyncSignaled polls a fence. Unknown fences and fences of a lost device
// report signaled so callers never wait forever.
func (d *Device) SyncSignaled(id native.FenceID) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	sub, ok := d.fences[id]
	if !ok || !d.usable() {
		return true
	}
	return d.done(sub)
}

// DeleteSync releases a fence. Unknown ids are ignored.
func (d *Device) DeleteSync(id native.FenceID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if sub, ok := d.fences[id]; ok {
		sub.pinned = false
		delete(d.fences, id)
	}
}

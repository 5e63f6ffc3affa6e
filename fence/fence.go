// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package fence waits for previously issued GPU commands to complete.
//
// With sync objects the Facility inserts a native fence and polls it once
// per scheduler tick. Without them it forces a flush by reading back one
// pixel of the default framebuffer. The readback is a best-effort flush:
// most drivers serialize it behind earlier work, but it is not a strict
// completion barrier the way a fence is.
package fence

import (
	"fmt"
	"sync"

	"github.com/gogpu/gpudev/native"
)

// State is the lifecycle state of a Fence.
type State int

const (
	Pending State = iota
	Signaled
	Disposed
)

// String returns the string representation of a State.
func (s State) String() string {
	switch s {
	case Pending:
		return "Pending"
	case Signaled:
		return "Signaled"
	case Disposed:
		return "Disposed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Fence is a native sync object.
type Fence struct {
	dev native.Device

	mu    sync.Mutex
	id    native.FenceID
	state State
}

// State returns the current state.
func (f *Fence) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Poll checks the fence without blocking and reports whether it signaled.
// A disposed fence reports true.
func (f *Fence) Poll() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch f.state {
	case Signaled, Disposed:
		return true
	}
	if f.dev.SyncSignaled(f.id) {
		f.state = Signaled
		return true
	}
	return false
}

// Dispose deletes the native sync object. Calling it more than once has no
// effect.
func (f *Fence) Dispose() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == Disposed {
		return
	}
	f.dev.DeleteSync(f.id)
	f.state = Disposed
}

// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package fence

import (
	"sync"

	"github.com/gogpu/gpudev/internal/glog"
	"github.com/gogpu/gpudev/native"
	"github.com/gogpu/gpudev/sched"
)

// Facility issues and polls fences for one device.
type Facility struct {
	dev   native.Device
	sched *sched.Scheduler

	mu        sync.Mutex
	supported bool

	fallbackOnce sync.Once
}

// New returns a facility for dev. supported selects the native fence path;
// it is normally caps.Set.Has(native.ExtSyncObjects).
func New(dev native.Device, s *sched.Scheduler, supported bool) *Facility {
	return &Facility{dev: dev, sched: s, supported: supported}
}

// Supported reports whether native fences are used.
func (f *Facility) Supported() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.supported
}

// Rearm updates the fence path after the device was re-probed.
func (f *Facility) Rearm(supported bool) {
	f.mu.Lock()
	f.supported = supported
	f.mu.Unlock()
}

// Insert creates a fence after all previously issued commands.
func (f *Facility) Insert() (*Fence, error) {
	id, err := f.dev.FenceSync()
	if err != nil {
		return nil, err
	}
	return &Fence{dev: f.dev, id: id}, nil
}

// Wait returns a future that resolves once every previously issued command
// has completed. On the native path the fence is polled once per scheduler
// tick and disposed before the future resolves. Without sync objects, or
// when fence creation fails, the fallback flush runs and the returned
// future is already resolved.
func (f *Facility) Wait() *sched.Future {
	if !f.Supported() {
		f.flush()
		return sched.Resolved(f.sched)
	}

	fence, err := f.Insert()
	if err != nil {
		glog.Logger().Warn("fence: creation failed, using readback flush", "err", err)
		f.flush()
		return sched.Resolved(f.sched)
	}

	fut, settle := sched.NewFuture(f.sched)
	f.Poll(fence, func() { settle(nil) })
	return fut
}

// Poll arms a task that polls fence once per tick. When it signals, or the
// device is lost, the fence is disposed and done runs.
func (f *Facility) Poll(fence *Fence, done func()) {
	polls := 0
	var poll func()
	poll = func() {
		polls++
		if fence.Poll() || f.dev.IsContextLost() {
			fence.Dispose()
			glog.Logger().Debug("fence: signaled", "polls", polls)
			done()
			return
		}
		f.sched.SetImmediate(poll)
	}
	f.sched.SetImmediate(poll)
}

// WaitSync forces a flush with a synchronous one-pixel readback.
func (f *Facility) WaitSync() {
	f.readback()
}

func (f *Facility) flush() {
	f.fallbackOnce.Do(func() {
		glog.Logger().Info("fence: sync objects unavailable, waiting with a pixel readback")
	})
	f.readback()
}

func (f *Facility) readback() {
	var px [4]byte
	f.dev.BindFramebuffer(0)
	if err := f.dev.ReadPixels(0, 0, 1, 1, native.ReadRGBA8, px[:]); err != nil {
		glog.Logger().Warn("fence: flush readback failed", "err", err)
	}
}

// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package sched provides the cooperative tick scheduler that drives GPU
// polling, and the Future type returned by asynchronous operations.
//
// Work never runs inline: SetImmediate queues a task for the next Tick, and
// a task that wants to run again re-arms itself. This keeps polling loops
// from monopolizing the rendering goroutine.
package sched

import "sync"

// Scheduler is a queue of tasks run on Tick. It is safe for concurrent
// use; tasks run on the goroutine that calls Tick.
type Scheduler struct {
	mu    sync.Mutex
	queue []func()
}

// New returns an empty scheduler.
func New() *Scheduler {
	return &Scheduler{}
}

// SetImmediate queues fn for the next Tick.
func (s *Scheduler) SetImmediate(fn func()) {
	s.mu.Lock()
	s.queue = append(s.queue, fn)
	s.mu.Unlock()
}

// Tick runs the tasks queued before the call and returns how many ran.
// Tasks queued while ticking wait for the next Tick.
func (s *Scheduler) Tick() int {
	s.mu.Lock()
	batch := s.queue
	s.queue = nil
	s.mu.Unlock()

	for _, fn := range batch {
		fn()
	}
	return len(batch)
}

// Pending returns the number of queued tasks.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

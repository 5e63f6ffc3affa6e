// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package sched

import (
	"context"
	"runtime"
	"sync"
)

// Future is the eventual outcome of an asynchronous operation. It settles
// exactly once, with a nil error on success.
type Future struct {
	sched *Scheduler
	done  chan struct{}

	mu        sync.Mutex
	err       error
	settled   bool
	callbacks []func(error)
}

// NewFuture returns a pending future and the function that settles it.
// Only the first call to settle has an effect. Await on the future pumps s.
func NewFuture(s *Scheduler) (*Future, func(error)) {
	f := &Future{sched: s, done: make(chan struct{})}
	return f, f.settle
}

// Resolved returns a future that already succeeded.
func Resolved(s *Scheduler) *Future {
	f, settle := NewFuture(s)
	settle(nil)
	return f
}

// Rejected returns a future that already failed with err.
func Rejected(s *Scheduler, err error) *Future {
	f, settle := NewFuture(s)
	settle(err)
	return f
}

func (f *Future) settle(err error) {
	f.mu.Lock()
	if f.settled {
		f.mu.Unlock()
		return
	}
	f.settled = true
	f.err = err
	cbs := f.callbacks
	f.callbacks = nil
	close(f.done)
	f.mu.Unlock()

	for _, cb := range cbs {
		cb(err)
	}
}

// Done returns a channel closed when the future settles.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Settled reports whether the future has settled.
func (f *Future) Settled() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// Err returns the outcome once settled, and nil while pending.
func (f *Future) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

// Then registers fn to run with the outcome. If the future has already
// settled fn runs immediately, otherwise it runs on the goroutine that
// settles it.
func (f *Future) Then(fn func(error)) {
	f.mu.Lock()
	if !f.settled {
		f.callbacks = append(f.callbacks, fn)
		f.mu.Unlock()
		return
	}
	err := f.err
	f.mu.Unlock()
	fn(err)
}

// Await blocks until the future settles or ctx is done, running scheduler
// ticks while it waits. Cancelling ctx only stops waiting: the operation
// keeps going and settles on a later tick.
func (f *Future) Await(ctx context.Context) error {
	for {
		select {
		case <-f.done:
			return f.Err()
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if f.sched == nil || f.sched.Tick() == 0 {
			runtime.Gosched()
		}
	}
}

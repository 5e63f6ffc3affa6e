// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpudev

import (
	"testing"

	"github.com/gogpu/gpudev/sched"
)

func TestDefaultOptions(t *testing.T) {
	o := defaultOptions()
	if o.pixelScale != 1 || o.devicePixelRatio != 1 {
		t.Errorf("defaults = %+v", o)
	}
	if o.debug || o.scheduler != nil {
		t.Errorf("defaults = %+v", o)
	}
}

func TestWithScheduler(t *testing.T) {
	s := sched.New()
	c, _ := newTestContext(t, WithScheduler(s))
	if c.Scheduler() != s {
		t.Error("WithScheduler ignored")
	}

	c, _ = newTestContext(t)
	if c.Scheduler() == nil {
		t.Error("default scheduler missing")
	}
}

func TestWithDebug(t *testing.T) {
	c, _ := newTestContext(t, WithDebug(true))
	if !c.opts.debug {
		t.Error("WithDebug(true) ignored")
	}
}

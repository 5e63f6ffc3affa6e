// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpudev

import "github.com/gogpu/gpudev/sched"

// Option configures a Context during creation.
//
// Example:
//
//	ctx, err := gpudev.New(dev,
//	    gpudev.WithPixelScale(2),
//	    gpudev.WithDebug(true),
//	)
type Option func(*contextOptions)

// contextOptions holds optional configuration for Context creation.
type contextOptions struct {
	pixelScale       float64
	devicePixelRatio float64
	debug            bool
	scheduler        *sched.Scheduler
}

// defaultOptions returns the default context options.
func defaultOptions() contextOptions {
	return contextOptions{
		pixelScale:       1,
		devicePixelRatio: 1,
	}
}

// WithPixelScale sets the initial pixel scale. Values <= 0 mean 1.
func WithPixelScale(scale float64) Option {
	return func(o *contextOptions) {
		o.pixelScale = scale
	}
}

// WithDevicePixelRatio sets the ratio of physical to logical pixels of the
// surface. Values <= 0 mean 1.
func WithDevicePixelRatio(ratio float64) Option {
	return func(o *contextOptions) {
		o.devicePixelRatio = ratio
	}
}

// WithDebug makes the Context check the device error state after each
// operation and report failures as *NativeError.
func WithDebug(debug bool) Option {
	return func(o *contextOptions) {
		o.debug = debug
	}
}

// WithScheduler shares a scheduler with other components instead of
// creating one.
func WithScheduler(s *sched.Scheduler) Option {
	return func(o *contextOptions) {
		o.scheduler = s
	}
}

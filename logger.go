// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpudev

import (
	"log/slog"

	"github.com/gogpu/gpudev/internal/glog"
)

// SetLogger configures the logger for gpudev and all its sub-packages.
// By default, gpudev produces no log output. Call SetLogger to enable logging.
//
// SetLogger is safe for concurrent use: it stores the new logger atomically.
// Pass nil to disable logging (restore default silent behavior).
//
// Log levels used by gpudev:
//   - [slog.LevelDebug]: resource creation, fence polling, registry resets
//   - [slog.LevelInfo]: lifecycle events (context created, lost, restored,
//     destroyed) and the first fallback fence
//   - [slog.LevelWarn]: non-fatal issues (fence creation failure, readback
//     flush failure)
//
// Example:
//
//	gpudev.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	glog.SetLogger(l)
}

// Logger returns the current logger used by gpudev.
//
// Logger is safe for concurrent use.
func Logger() *slog.Logger {
	return glog.Logger()
}

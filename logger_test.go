// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpudev

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/gogpu/gpudev/internal/glog"
)

func TestLoggerDefaultSilent(t *testing.T) {
	l := Logger()
	if l == nil {
		t.Fatal("Logger() returned nil")
	}
	for _, level := range []slog.Level{slog.LevelDebug, slog.LevelInfo, slog.LevelWarn} {
		if l.Enabled(context.Background(), level) {
			t.Errorf("default logger should not be enabled for %v", level)
		}
	}
}

func TestSetLoggerSharedWithSubpackages(t *testing.T) {
	orig := Logger()
	t.Cleanup(func() { SetLogger(orig) })

	var buf bytes.Buffer
	custom := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	SetLogger(custom)

	if Logger() != custom || glog.Logger() != custom {
		t.Fatal("custom logger not shared")
	}
}

func TestLifecycleLogging(t *testing.T) {
	orig := Logger()
	t.Cleanup(func() { SetLogger(orig) })

	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, nil)))

	c, _ := newTestContext(t)
	c.SetContextLost()
	c.SetContextLost()
	if err := c.HandleContextRestored(nil); err != nil {
		t.Fatal(err)
	}
	c.Destroy(DestroyOptions{})

	out := buf.String()
	for _, msg := range []string{"context created", "context lost", "context restored", "context destroyed"} {
		if !strings.Contains(out, msg) {
			t.Errorf("log output missing %q:\n%s", msg, out)
		}
	}
	if n := strings.Count(out, "context lost"); n != 1 {
		t.Errorf("loss logged %d times, want 1", n)
	}
}

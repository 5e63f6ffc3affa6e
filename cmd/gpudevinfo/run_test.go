// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package main

import (
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gogpu/gpudev/native"
)

func noopConfig(legacy bool) fileConfig {
	cfg := fileConfig{Attributes: native.DefaultAttributes()}
	cfg.Attributes.PreferredBackend = "noop"
	cfg.Attributes.PreferLegacy = legacy
	cfg.Attributes.Width, cfg.Attributes.Height = 8, 8
	return cfg
}

func TestRun(t *testing.T) {
	tests := []struct {
		name   string
		legacy bool
		opts   options
	}{
		{name: "probe only"},
		{name: "lose and restore", opts: options{lose: true}},
		{name: "legacy level", legacy: true},
		{name: "screenshot", opts: options{output: "shot.png"}},
		{name: "thumbnail", opts: options{output: "thumb.png", thumb: 4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := tt.opts
			if opts.output != "" {
				opts.output = filepath.Join(t.TempDir(), opts.output)
			}
			if err := run(noopConfig(tt.legacy), opts); err != nil {
				t.Fatalf("run: %v", err)
			}
			if opts.output == "" {
				return
			}
			f, err := os.Open(opts.output)
			if err != nil {
				t.Fatal(err)
			}
			defer f.Close()
			img, err := png.Decode(f)
			if err != nil {
				t.Fatalf("screenshot is not a PNG: %v", err)
			}
			want := 8
			if opts.thumb > 0 {
				want = opts.thumb
			}
			if b := img.Bounds(); b.Dx() != want || b.Dy() != want {
				t.Errorf("screenshot %dx%d, want %dx%d", b.Dx(), b.Dy(), want, want)
			}
		})
	}
}

func TestRunReturnsErrors(t *testing.T) {
	out := filepath.Join(t.TempDir(), "missing", "shot.png")
	err := run(noopConfig(false), options{output: out})
	if err == nil {
		t.Fatal("run with an unwritable output succeeded")
	}
	if !strings.HasPrefix(err.Error(), "screenshot:") {
		t.Errorf("err = %v, want a screenshot error", err)
	}
}

// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gogpu/gpudev/native"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "attrs.toml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
[attributes]
preferred_backend = "noop"
prefer_legacy = true
power_preference = "low-power"
width = 640

[report]
language = "de"
`)
	cfg := fileConfig{Attributes: native.DefaultAttributes()}
	if err := loadConfig(path, &cfg); err != nil {
		t.Fatalf("loadConfig: %v", err)
	}

	a := cfg.Attributes
	if a.PreferredBackend != "noop" || !a.PreferLegacy || a.PowerPreference != native.PowerLowPower {
		t.Errorf("attributes = %+v", a)
	}
	if a.Width != 640 {
		t.Errorf("Width = %d, want 640", a.Width)
	}
	if a.Height != 1 {
		t.Errorf("Height = %d, want default 1", a.Height)
	}
	if cfg.Report.Language != "de" {
		t.Errorf("Language = %q, want de", cfg.Report.Language)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unknown key", "[attributes]\nantialiasing = true\n"},
		{"bad power", "[attributes]\npower_preference = \"turbo\"\n"},
		{"bad syntax", "[attributes\n"},
		{"wrong type", "[attributes]\nwidth = \"wide\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := fileConfig{Attributes: native.DefaultAttributes()}
			if err := loadConfig(writeConfig(t, tt.body), &cfg); err == nil {
				t.Error("loadConfig should fail")
			}
		})
	}

	cfg := fileConfig{}
	if err := loadConfig(filepath.Join(t.TempDir(), "missing.toml"), &cfg); err == nil {
		t.Error("missing file should fail")
	}
}

// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package caps

import (
	"errors"
	"testing"

	"github.com/gogpu/gpudev/native"
	"github.com/gogpu/gpudev/native/nativetest"
)

func TestProbeLimits(t *testing.T) {
	dev := nativetest.New()
	dev.SetParam(native.ParamMaxTextureSize, 8192)

	s := Probe(dev, 3)
	if s.Epoch != 3 {
		t.Errorf("Epoch = %d, want 3", s.Epoch)
	}
	if s.Level != native.Level2 {
		t.Errorf("Level = %v, want Level2", s.Level)
	}
	if s.Limits.MaxTextureSize != 8192 {
		t.Errorf("MaxTextureSize = %d, want 8192", s.Limits.MaxTextureSize)
	}
	if s.Limits.MaxDrawBuffers != 8 {
		t.Errorf("MaxDrawBuffers = %d, want 8", s.Limits.MaxDrawBuffers)
	}
	if s.Limits.Max3DTextureSize != 256 {
		t.Errorf("Max3DTextureSize = %d, want 256", s.Limits.Max3DTextureSize)
	}
}

func TestProbeMissingExtensionsDegrade(t *testing.T) {
	dev := nativetest.New()
	dev.SetLevel(native.Level1)
	for _, ext := range native.Extensions() {
		dev.SetExtension(ext, false)
	}

	s := Probe(dev, 1)
	if got := s.Extensions(); len(got) != 0 {
		t.Errorf("Extensions() = %v, want none", got)
	}
	if s.Limits.MaxDrawBuffers != 0 {
		t.Errorf("MaxDrawBuffers = %d, want 0 without draw buffers", s.Limits.MaxDrawBuffers)
	}
	if s.Limits.Max3DTextureSize != 0 {
		t.Errorf("Max3DTextureSize = %d, want 0 on Level1", s.Limits.Max3DTextureSize)
	}
}

func TestProbeLevel2Core(t *testing.T) {
	dev := nativetest.New()
	dev.SetExtension(native.ExtIntegerTextures, false)
	dev.SetExtension(native.ExtProvokingVertex, false)

	s := Probe(dev, 1)
	if !s.Has(native.ExtIntegerTextures) {
		t.Error("integer textures are core in Level2")
	}
	if s.Has(native.ExtProvokingVertex) {
		t.Error("provoking vertex is never core")
	}
	if s.Has(native.Extension(-1)) || s.Has(native.Extension(native.ExtensionCount)) {
		t.Error("out of range extension reported present")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		units   int
		wantErr bool
	}{
		{"below minimum", 4, true},
		{"at minimum", 8, false},
		{"above minimum", 16, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dev := nativetest.New()
			dev.SetParam(native.ParamMaxVertexTextureImageUnits, tt.units)
			err := Probe(dev, 1).Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInsufficientCapability) {
				t.Errorf("error = %v, want ErrInsufficientCapability", err)
			}
		})
	}
}

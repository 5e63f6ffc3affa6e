// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"encoding/binary"
	"fmt"

	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/gpudev/native"
)

// CompileWGSL compiles WGSL source to SPIR-V words.
func CompileWGSL(source string) ([]uint32, error) {
	spirv, err := naga.Compile(source)
	if err != nil {
		return nil, fmt.Errorf("compile shader: %w", err)
	}
	if len(spirv)%4 != 0 {
		return nil, fmt.Errorf("compile shader: SPIR-V length %d is not a multiple of 4", len(spirv))
	}
	words := make([]uint32, len(spirv)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(spirv[i*4:])
	}
	return words, nil
}

// CreateShader compiles a WGSL stage into a shader module. Compilation
// errors are returned and recorded as InvalidValue.
func (d *Device) CreateShader(desc *native.ShaderDesc) (native.ObjectID, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.usable() {
		return 0, ErrDeviceLost
	}
	if desc.Stage != native.VertexShader && desc.Stage != native.FragmentShader {
		d.record(native.InvalidEnum)
		return 0, fmt.Errorf("wgpu: shader %q: unknown stage %s", desc.Label, native.EnumName(uint32(desc.Stage)))
	}
	words, err := CompileWGSL(desc.Source)
	if err != nil {
		d.record(native.InvalidValue)
		return 0, fmt.Errorf("wgpu: shader %q: %w", desc.Label, err)
	}
	module, err := d.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  desc.Label,
		Source: hal.ShaderSource{SPIRV: words},
	})
	if err != nil {
		d.record(native.OutOfMemory)
		return 0, fmt.Errorf("wgpu: create shader module %q: %w", desc.Label, err)
	}
	return d.add(&object{kind: kindShader, label: desc.Label, module: module, stage: desc.Stage}), nil
}

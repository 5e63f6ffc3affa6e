// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"errors"
	"fmt"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"
	_ "github.com/gogpu/wgpu/hal/vulkan"

	"github.com/gogpu/gpudev/native"
)

// Backend names registered with the native registry.
const (
	BackendVulkan = "vulkan"
	BackendNoop   = "noop"
)

func init() {
	native.Register(BackendVulkan, 100, OpenVulkan, vulkanAvailable)
	native.Register(BackendNoop, 0, OpenNoop, nil)
}

func vulkanAvailable() bool {
	_, ok := hal.GetBackend(gputypes.BackendVulkan)
	return ok
}

// OpenVulkan opens a hardware adapter through the Vulkan HAL.
func OpenVulkan(attrs native.Attributes) (native.Device, error) {
	backend, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return nil, errors.New("wgpu: vulkan backend not available")
	}
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create instance: %w", err)
	}
	d, err := openInstance(instance, attrs)
	if err != nil {
		return nil, err
	}
	return d, nil
}

// OpenNoop opens the null HAL device, which accepts every command and
// draws nothing.
func OpenNoop(attrs native.Attributes) (native.Device, error) {
	api := noop.API{}
	instance, err := api.CreateInstance(nil)
	if err != nil {
		return nil, fmt.Errorf("wgpu: create noop instance: %w", err)
	}
	d, err := openInstance(instance, attrs)
	if err != nil {
		return nil, err
	}
	return d, nil
}

// openInstance opens the adapter of instance preferred by attrs. The
// returned device owns the instance.
func openInstance(instance hal.Instance, attrs native.Attributes) (*Device, error) {
	adapters := instance.EnumerateAdapters(nil)
	selected := selectAdapter(adapters, attrs.Power())
	if selected == nil {
		instance.Destroy()
		return nil, ErrNoAdapter
	}

	limits := gputypes.DefaultLimits()
	opened, err := selected.Adapter.Open(gputypes.Features(0), limits)
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("wgpu: open device: %w", err)
	}

	if attrs.Antialias {
		logger().Debug("wgpu: antialias requested; default framebuffer is single-sampled")
	}
	d := newDevice(opened.Device, opened.Queue, Config{
		Name:   selected.Info.Name,
		Limits: limits,
		Width:  attrs.Width,
		Height: attrs.Height,
		Legacy: attrs.PreferLegacy,
	})
	d.instance = instance
	d.owned = true
	logger().Info("wgpu: device opened",
		"adapter", selected.Info.Name,
		"type", selected.Info.DeviceType,
		"level", d.level)
	return d, nil
}

// selectAdapter picks the discrete GPU for high performance and the
// integrated GPU for low power, falling back to the first adapter.
func selectAdapter(adapters []hal.ExposedAdapter, power gputypes.PowerPreference) *hal.ExposedAdapter {
	if len(adapters) == 0 {
		return nil
	}
	order := []gputypes.DeviceType{gputypes.DeviceTypeDiscreteGPU, gputypes.DeviceTypeIntegratedGPU}
	if power == gputypes.PowerPreferenceLowPower {
		order[0], order[1] = order[1], order[0]
	}
	for _, want := range order {
		for i := range adapters {
			if adapters[i].Info.DeviceType == want {
				return &adapters[i]
			}
		}
	}
	return &adapters[0]
}

// FromProvider shares the device of a host application. The provider must
// expose HalDevice() any and HalQueue() any returning hal.Device and
// hal.Queue. The host keeps ownership of the device.
//
// When cfg.Format is undefined the provider's surface format is used for
// the default framebuffer.
func FromProvider(provider gpucontext.DeviceProvider, cfg Config) (*Device, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, errors.New("wgpu: provider does not expose HAL types")
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, errors.New("wgpu: provider HalDevice is not hal.Device")
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, errors.New("wgpu: provider HalQueue is not hal.Queue")
	}
	if cfg.Format == gputypes.TextureFormatUndefined {
		cfg.Format = provider.SurfaceFormat()
	}
	if cfg.Name == "" {
		cfg.Name = "provider"
	}
	return New(device, queue, cfg), nil
}

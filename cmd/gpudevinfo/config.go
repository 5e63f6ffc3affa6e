// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/gogpu/gpudev/native"
)

// fileConfig is the layout of the optional attributes file:
//
//	[attributes]
//	preferred_backend = "vulkan"
//	power_preference = "low-power"
//	width = 640
//	height = 480
//
//	[report]
//	language = "de"
type fileConfig struct {
	Attributes native.Attributes `toml:"attributes"`
	Report     struct {
		Language string `toml:"language"`
	} `toml:"report"`
}

// loadConfig reads path over the defaults in cfg. Unknown keys are errors.
func loadConfig(path string, cfg *fileConfig) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return fmt.Errorf("config %s: %s", path, strict.String())
		}
		return fmt.Errorf("config %s: %w", path, err)
	}
	switch cfg.Attributes.PowerPreference {
	case native.PowerDefault, native.PowerHighPerformance, native.PowerLowPower:
	default:
		return fmt.Errorf("config %s: unknown power_preference %q", path, cfg.Attributes.PowerPreference)
	}
	return nil
}

// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package native

import (
	"log/slog"

	"github.com/gogpu/gpudev/internal/glog"
)

func logger() *slog.Logger { return glog.Logger() }

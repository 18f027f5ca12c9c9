//go:build !nogpu

package gpu

import (
	"log/slog"

	"github.com/gogpu/cellgrid"
)

// slogger returns the shared logger tagged with component=gpu.
// All logging in internal/gpu goes through this function.
func slogger() *slog.Logger { return cellgrid.ComponentLogger("gpu") }

// Package cellgrid runs a grid cellular automaton on the GPU.
//
// # Overview
//
// A square canvas is split into a near-square grid of cells, sized so that
// the realized cell count never exceeds the requested one. Each cell holds a
// palette index. One compute step per frame reads the current state buffer
// and writes the next one; a render pass then draws one instanced quad per
// cell from the buffer that was just written.
//
// This package holds the host-side arithmetic shared by every stage:
//   - Grid sizing: [ComputeGrid] and [GridSpec]
//   - Palette generation: [GeneratePalette]
//   - Initial state and double-buffer parity: [InitialStates], [StepFor]
//   - The uniform block layout: [SimParams]
//   - Work-group sizing and device limit checks: [WorkgroupCount], [CheckLimits]
//   - Startup configuration: [Config]
//
// GPU resources live in internal/gpu, the frame loop in internal/frame, and
// the compute rules in the kernel package.
//
// # Quick Start
//
//	grid, err := cellgrid.ComputeGrid(900, 900, 1000, 3)
//	if err != nil {
//	    return err
//	}
//	rng := rand.New(rand.NewPCG(seed, seed))
//	palette := cellgrid.GeneratePalette(int(grid.ColorCount), rng)
//	states := cellgrid.InitialStates(grid, rng)
//
// # Double Buffering
//
// Two state buffers alternate roles by frame parity. For frame n the compute
// pass reads buffer n%2 and writes buffer (n+1)%2, and the render pass reads
// the written buffer. No buffer is read and written by different stages in
// the same frame; submission order on the device queue is the only
// synchronization.
package cellgrid

// Version is the current version of the module.
const Version = "0.1.0"

//go:build !nogpu

// Package gpu runs the cellular automaton on a WebGPU device.
//
// It uses the gogpu/wgpu Pure Go WebGPU implementation (zero CGO), which
// selects Vulkan, Metal, DX12, GLES or the software rasterizer depending on
// the platform.
//
// # Architecture Overview
//
//	Context ─┬─ StateStore   two cell-state buffers, uniform block, bind groups
//	         ├─ ComputeStage rule pipeline, one dispatch per frame
//	         ├─ RenderStage  instanced quad draw, one instance per cell
//	         └─ Surface      swapchain adapter for the frame driver
//
// Simulation ties the stages together and implements the frame pipeline:
// frame n dispatches the rule reading buffer n%2 and writing buffer
// (n+1)%2, then draws buffer (n+1)%2. Compute and render are separate queue
// submissions so the draw always observes the finished step.
//
// # Headless Use
//
// Simulation.Run advances generations without a surface and
// Simulation.ReadState copies the current generation back to host memory
// through a staging buffer.
package gpu

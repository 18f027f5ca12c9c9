//go:build !nogpu

package gpu

import (
	"fmt"

	"github.com/gogpu/wgpu"

	"github.com/gogpu/cellgrid"
	"github.com/gogpu/cellgrid/kernel"
)

// ComputeStage is the rule pipeline. One Encode records one generation.
type ComputeStage struct {
	shader   *wgpu.ShaderModule
	layout   *wgpu.PipelineLayout
	pipeline *wgpu.ComputePipeline
	groups   uint32
	perGroup uint32
}

// NewComputeStage verifies rule against the kernel interface and the device
// limits, then builds its pipeline over the store's bind group layout.
func NewComputeStage(device *wgpu.Device, store *StateStore, rule kernel.Rule, cellsPerGroup uint32) (*ComputeStage, error) {
	src := rule.Source(cellsPerGroup)
	if err := kernel.Verify(src, cellsPerGroup); err != nil {
		return nil, fmt.Errorf("gpu: rule %q: %w", rule.Name, err)
	}
	grid := store.Grid()
	if err := cellgrid.CheckLimits(grid, cellsPerGroup, device.Limits()); err != nil {
		return nil, err
	}
	groups, err := cellgrid.WorkgroupCount(grid.TotalCells, cellsPerGroup)
	if err != nil {
		return nil, err
	}

	c := &ComputeStage{groups: groups, perGroup: cellsPerGroup}
	ok := false
	defer func() {
		if !ok {
			c.Release()
		}
	}()

	c.shader, err = device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: "rule-" + rule.Name,
		WGSL:  src,
	})
	if err != nil {
		return nil, fmt.Errorf("gpu: compile rule %q: %w", rule.Name, err)
	}
	c.layout, err = device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            "cell-step-pl",
		BindGroupLayouts: []*wgpu.BindGroupLayout{store.Layout()},
	})
	if err != nil {
		return nil, fmt.Errorf("gpu: create compute pipeline layout: %w", err)
	}
	c.pipeline, err = device.CreateComputePipeline(&wgpu.ComputePipelineDescriptor{
		Label:      "cell-step",
		Layout:     c.layout,
		Module:     c.shader,
		EntryPoint: kernel.EntryPoint,
	})
	if err != nil {
		return nil, fmt.Errorf("gpu: create compute pipeline: %w", err)
	}

	slogger().Debug("gpu: compute stage ready",
		"rule", rule.Name, "cells_per_group", cellsPerGroup, "workgroups", groups)
	ok = true
	return c, nil
}

// Workgroups returns the dispatch size along x.
func (c *ComputeStage) Workgroups() uint32 { return c.groups }

// Encode records the compute pass of frame: it reads the store's buffer
// frame%2 and writes buffer (frame+1)%2.
func (c *ComputeStage) Encode(enc *wgpu.CommandEncoder, store *StateStore, frame uint64) error {
	step := store.Step(frame)
	pass, err := enc.BeginComputePass(nil)
	if err != nil {
		return fmt.Errorf("gpu: begin compute pass: %w", err)
	}
	pass.SetPipeline(c.pipeline)
	pass.SetBindGroup(0, step.BindGroup(), nil)
	pass.Dispatch(c.groups, 1, 1)
	if err := pass.End(); err != nil {
		return fmt.Errorf("gpu: end compute pass: %w", err)
	}
	return nil
}

// Release frees the pipeline objects.
func (c *ComputeStage) Release() {
	if c.pipeline != nil {
		c.pipeline.Release()
		c.pipeline = nil
	}
	if c.layout != nil {
		c.layout.Release()
		c.layout = nil
	}
	if c.shader != nil {
		c.shader.Release()
		c.shader = nil
	}
}

//go:build !nogpu

package gpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu"

	"github.com/gogpu/cellgrid"
)

// StateStore owns the two cell-state buffers, the uniform block and the two
// compute bind groups of a grid.
//
// Bind group i reads buffers[i] and writes buffers[1-i], so frame n uses
// group n%2 and the state of generation n+1 ends up in buffers[(n+1)%2].
type StateStore struct {
	device  *wgpu.Device
	grid    cellgrid.GridSpec
	size    uint64
	buffers [2]*wgpu.Buffer
	uniform *wgpu.Buffer
	layout  *wgpu.BindGroupLayout
	groups  [2]*wgpu.BindGroup
}

// StepBinding is the resource view of one compute step. Src is bound
// read-only; Dst is the only buffer the step writes.
type StepBinding struct {
	Frame uint64

	group *wgpu.BindGroup
	src   *wgpu.Buffer
	dst   *wgpu.Buffer
}

// Src returns the buffer read by the step.
func (b StepBinding) Src() *wgpu.Buffer { return b.src }

// Dst returns the buffer written by the step.
func (b StepBinding) Dst() *wgpu.Buffer { return b.dst }

// BindGroup returns the compute bind group of the step.
func (b StepBinding) BindGroup() *wgpu.BindGroup { return b.group }

// NewStateStore uploads initial to both state buffers and the grid's
// parameters to the uniform buffer. len(initial) must equal the grid's cell
// count.
func NewStateStore(device *wgpu.Device, grid cellgrid.GridSpec, initial []uint32) (*StateStore, error) {
	if uint32(len(initial)) != grid.TotalCells {
		return nil, fmt.Errorf("gpu: %d initial states for %d cells", len(initial), grid.TotalCells)
	}
	s := &StateStore{device: device, grid: grid, size: grid.StateBytes()}
	ok := false
	defer func() {
		if !ok {
			s.Release()
		}
	}()

	data := cellgrid.StatesBytes(initial)
	for i := range s.buffers {
		buf, err := device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: fmt.Sprintf("cell-states-%c", 'a'+i),
			Size:  s.size,
			Usage: wgpu.BufferUsageVertex | wgpu.BufferUsageStorage | wgpu.BufferUsageCopyDst | wgpu.BufferUsageCopySrc,
		})
		if err != nil {
			return nil, fmt.Errorf("gpu: create state buffer %d: %w", i, err)
		}
		s.buffers[i] = buf
		if err := device.Queue().WriteBuffer(buf, 0, data); err != nil {
			return nil, fmt.Errorf("gpu: upload state buffer %d: %w", i, err)
		}
	}

	var err error
	s.uniform, err = device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "sim-params",
		Size:  cellgrid.UniformBufferSize(),
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("gpu: create uniform buffer: %w", err)
	}
	if err := device.Queue().WriteBuffer(s.uniform, 0, cellgrid.ParamsFor(grid).Bytes()); err != nil {
		return nil, fmt.Errorf("gpu: upload params: %w", err)
	}

	s.layout, err = device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "cell-step-bgl",
		Entries: []wgpu.BindGroupLayoutEntry{
			{Binding: 0, Visibility: wgpu.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform, MinBindingSize: cellgrid.SimParamsSize}},
			{Binding: 1, Visibility: wgpu.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeReadOnlyStorage}},
			{Binding: 2, Visibility: wgpu.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeStorage}},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("gpu: create step layout: %w", err)
	}

	for i := range s.groups {
		s.groups[i], err = device.CreateBindGroup(&wgpu.BindGroupDescriptor{
			Label:  fmt.Sprintf("cell-step-%d", i),
			Layout: s.layout,
			Entries: []wgpu.BindGroupEntry{
				{Binding: 0, Buffer: s.uniform, Size: cellgrid.UniformBufferSize()},
				{Binding: 1, Buffer: s.buffers[i], Size: s.size},
				{Binding: 2, Buffer: s.buffers[1-i], Size: s.size},
			},
		})
		if err != nil {
			return nil, fmt.Errorf("gpu: create step bind group %d: %w", i, err)
		}
	}

	slogger().Debug("gpu: state store ready", "cells", grid.TotalCells, "bytes", s.size)
	ok = true
	return s, nil
}

// Grid returns the grid the store was created for.
func (s *StateStore) Grid() cellgrid.GridSpec { return s.grid }

// Layout returns the compute bind group layout.
func (s *StateStore) Layout() *wgpu.BindGroupLayout { return s.layout }

// Uniform returns the uniform buffer holding SimParams.
func (s *StateStore) Uniform() *wgpu.Buffer { return s.uniform }

// Size returns the byte size of one state buffer.
func (s *StateStore) Size() uint64 { return s.size }

// Step returns the resources of the compute step of frame.
func (s *StateStore) Step(frame uint64) StepBinding {
	st := cellgrid.StepFor(frame)
	return StepBinding{
		Frame: frame,
		group: s.groups[st.Src],
		src:   s.buffers[st.Src],
		dst:   s.buffers[st.Dst],
	}
}

// Drawn returns the buffer rendered in frame: the one its compute step
// wrote.
func (s *StateStore) Drawn(frame uint64) *wgpu.Buffer {
	return s.buffers[cellgrid.NextIndex(frame)]
}

// Current returns the buffer holding the newest generation after frames
// completed steps.
func (s *StateStore) Current(frames uint64) *wgpu.Buffer {
	return s.buffers[cellgrid.CurrentIndex(frames)]
}

// Release frees all GPU resources. It is safe to call on a partly built
// store.
func (s *StateStore) Release() {
	for i, g := range s.groups {
		if g != nil {
			g.Release()
			s.groups[i] = nil
		}
	}
	if s.layout != nil {
		s.layout.Release()
		s.layout = nil
	}
	if s.uniform != nil {
		s.uniform.Release()
		s.uniform = nil
	}
	for i, b := range s.buffers {
		if b != nil {
			b.Release()
			s.buffers[i] = nil
		}
	}
}

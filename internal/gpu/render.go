//go:build !nogpu

package gpu

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu"

	"github.com/gogpu/cellgrid"
	"github.com/gogpu/cellgrid/kernel"
)

// quadVertices is a unit quad as two triangles in clip space.
var quadVertices = [12]float32{
	-1, -1, 1, -1, -1, 1,
	-1, 1, 1, -1, 1, 1,
}

// QuadVertices returns the cell quad scaled so that min(cellsX, cellsY)
// cells span the clip-space square.
func QuadVertices(grid cellgrid.GridSpec) []float32 {
	scale := float32(1)
	if side := grid.MinSide(); side > 0 {
		scale = 1 / float32(side)
	}
	v := make([]float32, len(quadVertices))
	for i, x := range quadVertices {
		v[i] = x * scale
	}
	return v
}

func float32Bytes(v []float32) []byte {
	b := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(b[i*4:], math.Float32bits(f))
	}
	return b
}

// RenderOptions configures the draw pass.
type RenderOptions struct {
	// Format is the render target format.
	Format gputypes.TextureFormat

	// Clear clears the target to ClearColor before drawing. Otherwise the
	// previous contents are loaded.
	Clear      bool
	ClearColor gputypes.Color
}

// RenderStage draws one instanced quad per cell, colored by the palette.
type RenderStage struct {
	opts      RenderOptions
	total     uint32
	palette   *wgpu.Buffer
	quad      *wgpu.Buffer
	shader    *wgpu.ShaderModule
	bgLayout  *wgpu.BindGroupLayout
	plLayout  *wgpu.PipelineLayout
	pipeline  *wgpu.RenderPipeline
	bindGroup *wgpu.BindGroup
}

// NewRenderStage uploads the palette and quad and builds the draw pipeline
// for the given target format.
func NewRenderStage(device *wgpu.Device, store *StateStore, palette cellgrid.Palette, opts RenderOptions) (*RenderStage, error) {
	src := kernel.DrawSource()
	if err := kernel.VerifyDraw(src); err != nil {
		return nil, fmt.Errorf("gpu: draw shader: %w", err)
	}
	grid := store.Grid()
	if uint32(palette.Len()) < grid.ColorCount {
		return nil, fmt.Errorf("gpu: palette has %d colors, grid needs %d", palette.Len(), grid.ColorCount)
	}

	r := &RenderStage{opts: opts, total: grid.TotalCells}
	ok := false
	defer func() {
		if !ok {
			r.Release()
		}
	}()

	var err error
	paletteBytes := palette.Bytes()
	r.palette, err = device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "palette",
		Size:  uint64(len(paletteBytes)),
		Usage: wgpu.BufferUsageStorage | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("gpu: create palette buffer: %w", err)
	}
	if err := device.Queue().WriteBuffer(r.palette, 0, paletteBytes); err != nil {
		return nil, fmt.Errorf("gpu: upload palette: %w", err)
	}

	quadBytes := float32Bytes(QuadVertices(grid))
	r.quad, err = device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "cell-quad",
		Size:  uint64(len(quadBytes)),
		Usage: wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("gpu: create quad buffer: %w", err)
	}
	if err := device.Queue().WriteBuffer(r.quad, 0, quadBytes); err != nil {
		return nil, fmt.Errorf("gpu: upload quad: %w", err)
	}

	r.shader, err = device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{Label: "cell-draw", WGSL: src})
	if err != nil {
		return nil, fmt.Errorf("gpu: compile draw shader: %w", err)
	}

	r.bgLayout, err = device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "cell-draw-bgl",
		Entries: []wgpu.BindGroupLayoutEntry{
			{Binding: 0, Visibility: wgpu.ShaderStageVertex | wgpu.ShaderStageFragment, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform, MinBindingSize: cellgrid.SimParamsSize}},
			{Binding: 1, Visibility: wgpu.ShaderStageVertex | wgpu.ShaderStageFragment, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeReadOnlyStorage}},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("gpu: create draw layout: %w", err)
	}
	r.plLayout, err = device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            "cell-draw-pl",
		BindGroupLayouts: []*wgpu.BindGroupLayout{r.bgLayout},
	})
	if err != nil {
		return nil, fmt.Errorf("gpu: create draw pipeline layout: %w", err)
	}

	r.pipeline, err = device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  "cell-draw",
		Layout: r.plLayout,
		Vertex: wgpu.VertexState{
			Module:     r.shader,
			EntryPoint: kernel.VertexEntryPoint,
			Buffers: []wgpu.VertexBufferLayout{
				{
					ArrayStride: 4,
					StepMode:    gputypes.VertexStepModeInstance,
					Attributes:  []gputypes.VertexAttribute{{Format: gputypes.VertexFormatUint32, Offset: 0, ShaderLocation: 0}},
				},
				{
					ArrayStride: 8,
					StepMode:    gputypes.VertexStepModeVertex,
					Attributes:  []gputypes.VertexAttribute{{Format: gputypes.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 1}},
				},
			},
		},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleList,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{Count: 1, Mask: 0xFFFFFFFF},
		Fragment: &wgpu.FragmentState{
			Module:     r.shader,
			EntryPoint: kernel.FragmentEntryPoint,
			Targets: []gputypes.ColorTargetState{
				{Format: opts.Format, WriteMask: gputypes.ColorWriteMaskAll},
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("gpu: create draw pipeline: %w", err)
	}

	r.bindGroup, err = device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "cell-draw",
		Layout: r.bgLayout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: store.Uniform(), Size: cellgrid.UniformBufferSize()},
			{Binding: 1, Buffer: r.palette, Size: uint64(len(paletteBytes))},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("gpu: create draw bind group: %w", err)
	}

	slogger().Debug("gpu: render stage ready", "format", opts.Format, "clear", opts.Clear)
	ok = true
	return r, nil
}

// LoadOp returns the color attachment load operation.
func (r *RenderStage) LoadOp() gputypes.LoadOp {
	if r.opts.Clear {
		return gputypes.LoadOpClear
	}
	return gputypes.LoadOpLoad
}

// Encode records the draw pass of frame into view. It draws the buffer the
// frame's compute step wrote.
func (r *RenderStage) Encode(enc *wgpu.CommandEncoder, view *wgpu.TextureView, store *StateStore, frame uint64) error {
	pass, err := enc.BeginRenderPass(&wgpu.RenderPassDescriptor{
		Label: "cell-draw",
		ColorAttachments: []wgpu.RenderPassColorAttachment{{
			View:       view,
			LoadOp:     r.LoadOp(),
			StoreOp:    gputypes.StoreOpStore,
			ClearValue: r.opts.ClearColor,
		}},
	})
	if err != nil {
		return fmt.Errorf("gpu: begin render pass: %w", err)
	}
	pass.SetPipeline(r.pipeline)
	pass.SetBindGroup(0, r.bindGroup, nil)
	pass.SetVertexBuffer(0, store.Drawn(frame), 0)
	pass.SetVertexBuffer(1, r.quad, 0)
	pass.Draw(6, r.total, 0, 0)
	if err := pass.End(); err != nil {
		return fmt.Errorf("gpu: end render pass: %w", err)
	}
	return nil
}

// Release frees the draw resources.
func (r *RenderStage) Release() {
	if r.bindGroup != nil {
		r.bindGroup.Release()
		r.bindGroup = nil
	}
	if r.pipeline != nil {
		r.pipeline.Release()
		r.pipeline = nil
	}
	if r.plLayout != nil {
		r.plLayout.Release()
		r.plLayout = nil
	}
	if r.bgLayout != nil {
		r.bgLayout.Release()
		r.bgLayout = nil
	}
	if r.shader != nil {
		r.shader.Release()
		r.shader = nil
	}
	if r.quad != nil {
		r.quad.Release()
		r.quad = nil
	}
	if r.palette != nil {
		r.palette.Release()
		r.palette = nil
	}
}

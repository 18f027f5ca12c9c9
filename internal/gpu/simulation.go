//go:build !nogpu

package gpu

import (
	"context"
	"fmt"
	"time"

	"github.com/gogpu/wgpu"

	"github.com/gogpu/cellgrid"
	"github.com/gogpu/cellgrid/internal/frame"
	"github.com/gogpu/cellgrid/kernel"
)

// readbackTimeout bounds a staging buffer map.
const readbackTimeout = 5 * time.Second

// SimulationConfig describes a simulation to build on a Context.
type SimulationConfig struct {
	Grid          cellgrid.GridSpec
	Rule          kernel.Rule
	CellsPerGroup uint32
	Palette       cellgrid.Palette
	Initial       []uint32

	// Render configures the draw pass. Ignored when the simulation has no
	// surface.
	Render RenderOptions
}

// Simulation is the GPU side of one session. It implements
// frame.Pipeline[*SurfaceFrame].
type Simulation struct {
	ctx     *Context
	store   *StateStore
	compute *ComputeStage
	render  *RenderStage
	staging *wgpu.Buffer
}

var _ frame.Pipeline[*SurfaceFrame] = (*Simulation)(nil)

// NewSimulation uploads the initial state and builds the compute stage, plus
// the render stage when cfg.Render.Format is set.
func NewSimulation(ctx *Context, cfg SimulationConfig) (*Simulation, error) {
	s := &Simulation{ctx: ctx}
	ok := false
	defer func() {
		if !ok {
			s.Release()
		}
	}()

	device := ctx.Device()
	var err error
	s.store, err = NewStateStore(device, cfg.Grid, cfg.Initial)
	if err != nil {
		return nil, err
	}
	s.compute, err = NewComputeStage(device, s.store, cfg.Rule, cfg.CellsPerGroup)
	if err != nil {
		return nil, err
	}
	if cfg.Render.Format != 0 {
		s.render, err = NewRenderStage(device, s.store, cfg.Palette, cfg.Render)
		if err != nil {
			return nil, err
		}
	}

	slogger().Info("gpu: simulation ready",
		"grid", cfg.Grid.String(),
		"rule", cfg.Rule.Name,
		"workgroups", s.compute.Workgroups())
	ok = true
	return s, nil
}

// Store returns the state store.
func (s *Simulation) Store() *StateStore { return s.store }

// Compute submits the compute step of frame.
func (s *Simulation) Compute(frame uint64) error {
	enc, err := s.ctx.Device().CreateCommandEncoder(nil)
	if err != nil {
		return fmt.Errorf("gpu: create encoder: %w", err)
	}
	if err := s.compute.Encode(enc, s.store, frame); err != nil {
		enc.DiscardEncoding()
		return err
	}
	return s.submit(enc)
}

// Render submits the draw of frame into target.
func (s *Simulation) Render(target *SurfaceFrame, frame uint64) error {
	return s.RenderView(target.View(), frame)
}

// RenderView submits the draw of frame into an arbitrary view of the render
// format, such as an offscreen texture.
func (s *Simulation) RenderView(view *wgpu.TextureView, frame uint64) error {
	if s.render == nil {
		return fmt.Errorf("gpu: simulation has no render stage")
	}
	enc, err := s.ctx.Device().CreateCommandEncoder(nil)
	if err != nil {
		return fmt.Errorf("gpu: create encoder: %w", err)
	}
	if err := s.render.Encode(enc, view, s.store, frame); err != nil {
		enc.DiscardEncoding()
		return err
	}
	return s.submit(enc)
}

func (s *Simulation) submit(enc *wgpu.CommandEncoder) error {
	cmds, err := enc.Finish()
	if err != nil {
		return fmt.Errorf("gpu: finish encoder: %w", err)
	}
	if _, err := s.ctx.Queue().Submit(cmds); err != nil {
		return fmt.Errorf("gpu: submit: %w", err)
	}
	return nil
}

// Run advances the simulation from generation first by n steps without
// rendering. It returns the number of the next generation.
func (s *Simulation) Run(ctx context.Context, first, n uint64) (uint64, error) {
	for f := first; f < first+n; f++ {
		if err := ctx.Err(); err != nil {
			return f, err
		}
		if err := s.Compute(f); err != nil {
			return f, err
		}
	}
	return first + n, nil
}

// ReadState copies generation frames back to host memory. After frames
// completed steps the newest generation lives in buffer frames%2.
func (s *Simulation) ReadState(ctx context.Context, frames uint64) ([]uint32, error) {
	size := s.store.Size()
	if s.staging == nil {
		var err error
		s.staging, err = s.ctx.Device().CreateBuffer(&wgpu.BufferDescriptor{
			Label: "cell-states-staging",
			Size:  size,
			Usage: wgpu.BufferUsageCopyDst | wgpu.BufferUsageMapRead,
		})
		if err != nil {
			return nil, fmt.Errorf("gpu: create staging buffer: %w", err)
		}
	}

	enc, err := s.ctx.Device().CreateCommandEncoder(nil)
	if err != nil {
		return nil, fmt.Errorf("gpu: create encoder: %w", err)
	}
	enc.CopyBufferToBuffer(s.store.Current(frames), 0, s.staging, 0, size)
	if err := s.submit(enc); err != nil {
		return nil, err
	}

	readCtx, cancel := context.WithTimeout(ctx, readbackTimeout)
	defer cancel()
	if err := s.staging.Map(readCtx, wgpu.MapModeRead, 0, size); err != nil {
		return nil, fmt.Errorf("gpu: map staging buffer: %w", err)
	}
	rng, err := s.staging.MappedRange(0, size)
	if err != nil {
		_ = s.staging.Unmap()
		return nil, fmt.Errorf("gpu: staging mapped range: %w", err)
	}
	states := cellgrid.StatesFromBytes(rng.Bytes())
	if err := s.staging.Unmap(); err != nil {
		return nil, fmt.Errorf("gpu: unmap staging buffer: %w", err)
	}
	return states, nil
}

// Release frees every GPU resource of the simulation. The Context is not
// released.
func (s *Simulation) Release() {
	if s.staging != nil {
		s.staging.Release()
		s.staging = nil
	}
	if s.render != nil {
		s.render.Release()
		s.render = nil
	}
	if s.compute != nil {
		s.compute.Release()
		s.compute = nil
	}
	if s.store != nil {
		s.store.Release()
		s.store = nil
	}
}

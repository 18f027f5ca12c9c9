//go:build !nogpu

package gpu

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu"

	"github.com/gogpu/cellgrid/internal/frame"
)

// SurfaceFrame is one acquired swapchain image and its render view.
type SurfaceFrame struct {
	texture *wgpu.SurfaceTexture
	view    *wgpu.TextureView
}

// View returns the render target view.
func (f *SurfaceFrame) View() *wgpu.TextureView { return f.view }

func (f *SurfaceFrame) release() {
	if f.view != nil {
		f.view.Release()
		f.view = nil
	}
}

// Surface adapts a configured window surface to the frame driver.
type Surface struct {
	ctx    *Context
	config wgpu.SurfaceConfiguration

	// suboptimal is set while acquired images report a suboptimal swapchain.
	suboptimal bool
}

var _ frame.Surface[*SurfaceFrame] = (*Surface)(nil)

// NewSurface selects a surface format and configures the window surface of
// ctx at width x height with FIFO presentation.
func NewSurface(ctx *Context, width, height uint32) (*Surface, error) {
	if !ctx.HasSurface() {
		return nil, ErrNoSurface
	}
	// Some backends only report capabilities once the surface has been
	// configured; fall back to the format every backend presents.
	format := gputypes.TextureFormatBGRA8UnormSrgb
	if caps, err := ctx.SurfaceCapabilities(); err != nil {
		slogger().Warn("gpu: no surface capabilities, assuming default format", "format", format, "err", err)
	} else if f, err := ChooseSurfaceFormat(caps.Formats); err != nil {
		slogger().Warn("gpu: surface reports no formats, assuming default", "format", format)
	} else {
		format = f
	}

	s := &Surface{
		ctx: ctx,
		config: wgpu.SurfaceConfiguration{
			Width:       width,
			Height:      height,
			Format:      format,
			Usage:       wgpu.TextureUsageRenderAttachment,
			PresentMode: wgpu.PresentModeFifo,
			AlphaMode:   gputypes.CompositeAlphaModeOpaque,
		},
	}
	if err := s.Reconfigure(); err != nil {
		return nil, err
	}
	slogger().Info("gpu: surface configured", "width", width, "height", height, "format", format)
	return s, nil
}

// Format returns the configured texture format.
func (s *Surface) Format() gputypes.TextureFormat { return s.config.Format }

// Reconfigure re-applies the surface configuration. It recreates the
// swapchain after the surface became outdated or was lost.
func (s *Surface) Reconfigure() error {
	if err := s.ctx.surface.Configure(s.ctx.device, &s.config); err != nil {
		return fmt.Errorf("gpu: configure surface: %w", err)
	}
	s.suboptimal = false
	return nil
}

// Acquire returns the next swapchain image. Native errors are classified
// into the frame driver's acquisition errors.
func (s *Surface) Acquire() (*SurfaceFrame, error) {
	tex, suboptimal, err := s.ctx.surface.GetCurrentTexture()
	if err != nil {
		return nil, classifyAcquire(err)
	}
	s.noteSuboptimal(suboptimal)
	view, err := tex.CreateView(nil)
	if err != nil {
		s.ctx.surface.DiscardTexture()
		return nil, fmt.Errorf("gpu: create surface view: %w", err)
	}
	return &SurfaceFrame{texture: tex, view: view}, nil
}

// Present shows f and releases its view.
func (s *Surface) Present(f *SurfaceFrame) error {
	defer f.release()
	if err := s.ctx.surface.Present(f.texture); err != nil {
		return classifyAcquire(err)
	}
	return nil
}

// Discard drops f without presenting it.
func (s *Surface) Discard(f *SurfaceFrame) {
	f.release()
	s.ctx.surface.DiscardTexture()
}

// Release unconfigures the surface. The surface itself is owned by the
// Context.
func (s *Surface) Release() {
	if s.ctx.surface != nil {
		s.ctx.surface.Unconfigure()
	}
}

// noteSuboptimal warns when the swapchain turns suboptimal and logs at debug
// level while it stays so.
func (s *Surface) noteSuboptimal(suboptimal bool) {
	switch {
	case suboptimal && !s.suboptimal:
		slogger().Warn("gpu: surface is suboptimal")
	case suboptimal:
		slogger().Debug("gpu: surface still suboptimal")
	case s.suboptimal:
		slogger().Info("gpu: surface no longer suboptimal")
	}
	s.suboptimal = suboptimal
}

func classifyAcquire(err error) error {
	switch {
	case errors.Is(err, wgpu.ErrTimeout):
		return fmt.Errorf("%w: %w", frame.ErrTimeout, err)
	case errors.Is(err, wgpu.ErrSurfaceOutdated), errors.Is(err, wgpu.ErrSurfaceLost):
		return fmt.Errorf("%w: %w", frame.ErrStale, err)
	case errors.Is(err, wgpu.ErrOutOfMemory):
		return fmt.Errorf("%w: %w", frame.ErrOutOfMemory, err)
	default:
		return err
	}
}

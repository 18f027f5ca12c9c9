package window

import (
	"errors"
	"fmt"

	"github.com/gogpu/gpucontext"

	"github.com/gogpu/cellgrid"
	"github.com/gogpu/cellgrid/internal/frame"
)

// ErrResize is returned by Poll once the window was resized. The surface
// and grid are fixed for the lifetime of a session.
var ErrResize = errors.New("window: resize is not supported")

// Controls is the input state machine of the viewer:
//
//	Escape   quit
//	S        toggle pause
//	Space    advance one frame while paused
//
// It has no dependency on the windowing system so that it can be driven by
// tests and by any EventSource.
type Controls struct {
	width, height int

	paused bool
	step   bool
	quit   bool
	fatal  error
}

// NewControls returns running controls for a window of the given size.
func NewControls(width, height int) *Controls {
	return &Controls{width: width, height: height}
}

// Paused reports whether continuous redraw is paused.
func (c *Controls) Paused() bool { return c.paused }

// KeyPress applies a key press.
func (c *Controls) KeyPress(key gpucontext.Key, _ gpucontext.Modifiers) {
	switch key {
	case gpucontext.KeyEscape:
		c.quit = true
	case gpucontext.KeyS:
		c.paused = !c.paused
		c.step = false
		cellgrid.Logger().Info("window: redraw toggled", "paused", c.paused)
	case gpucontext.KeySpace:
		if c.paused {
			c.step = true
		}
	}
}

// Resize records a size change. Any size other than the initial one is
// fatal.
func (c *Controls) Resize(width, height int) {
	if width == c.width && height == c.height {
		return
	}
	if c.fatal == nil {
		c.fatal = fmt.Errorf("%w: %dx%d -> %dx%d", ErrResize, c.width, c.height, width, height)
	}
}

// Close records a close request.
func (c *Controls) Close() { c.quit = true }

// RequestStep asks for one frame while paused. It is a no-op while running.
func (c *Controls) RequestStep() {
	if c.paused {
		c.step = true
	}
}

// Next reports whether a frame should be produced now. A fatal condition
// wins over a close request, which wins over pause.
func (c *Controls) Next() (bool, error) {
	switch {
	case c.fatal != nil:
		return false, c.fatal
	case c.quit:
		return false, frame.ErrClosed
	case !c.paused:
		return true, nil
	case c.step:
		c.step = false
		return true, nil
	default:
		return false, nil
	}
}

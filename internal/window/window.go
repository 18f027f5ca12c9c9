//go:build !nogpu

// Package window opens the viewer window and turns its events into frame
// requests.
//
// GLFW must be driven from the main OS thread; importing this package locks
// the main goroutine to it.
package window

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/gogpu/gpucontext"

	"github.com/gogpu/cellgrid"
	"github.com/gogpu/cellgrid/internal/frame"
)

// Title is the window title.
const Title = "SAXRUMFEX"

// ErrUnsupportedPlatform is returned by NativeHandles where no WebGPU
// surface can be created from a GLFW window.
var ErrUnsupportedPlatform = errors.New("window: native surface handles not supported on this platform")

func init() {
	runtime.LockOSThread()
}

// Window is a fixed-size GLFW window without a client API. It implements
// gpucontext.WindowProvider and frame.Events.
type Window struct {
	win      *glfw.Window
	controls *Controls
	onKey    []func(gpucontext.Key, gpucontext.Modifiers)
}

var (
	_ gpucontext.WindowProvider = (*Window)(nil)
	_ frame.Events              = (*Window)(nil)
	_ frame.Waker               = (*Window)(nil)
)

// Open initializes GLFW and creates a non-resizable size x size window. The
// window stays hidden until Show is called.
func Open(size int) (*Window, error) {
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("window: init glfw: %w", err)
	}
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	glfw.WindowHint(glfw.Resizable, glfw.False)
	glfw.WindowHint(glfw.Visible, glfw.False)

	win, err := glfw.CreateWindow(size, size, Title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("window: create: %w", err)
	}

	w := &Window{win: win, controls: NewControls(size, size)}
	win.SetKeyCallback(func(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, mods glfw.ModifierKey) {
		if action != glfw.Press {
			return
		}
		k, m := translateKey(key), translateMods(mods)
		w.controls.KeyPress(k, m)
		for _, fn := range w.onKey {
			fn(k, m)
		}
	})
	win.SetSizeCallback(func(_ *glfw.Window, width, height int) {
		w.controls.Resize(width, height)
	})
	win.SetCloseCallback(func(*glfw.Window) {
		w.controls.Close()
	})

	cellgrid.Logger().Info("window: created", "size", size, "scale", w.ScaleFactor())
	return w, nil
}

// Show makes the window visible.
func (w *Window) Show() {
	w.win.Show()
	cellgrid.Logger().Debug("window: shown")
}

// Visible reports whether the window is shown.
func (w *Window) Visible() bool {
	return w.win.GetAttrib(glfw.Visible) == glfw.True
}

// OnKeyPress registers fn to be called for every key press after the
// built-in controls have handled it.
func (w *Window) OnKeyPress(fn func(gpucontext.Key, gpucontext.Modifiers)) {
	w.onKey = append(w.onKey, fn)
}

// Controls returns the input state machine.
func (w *Window) Controls() *Controls { return w.controls }

// Size returns the client area in screen coordinates.
func (w *Window) Size() (int, int) { return w.win.GetSize() }

// FramebufferSize returns the client area in pixels.
func (w *Window) FramebufferSize() (int, int) { return w.win.GetFramebufferSize() }

// ScaleFactor returns the content scale of the window.
func (w *Window) ScaleFactor() float64 {
	x, _ := w.win.GetContentScale()
	if x <= 0 {
		return 1
	}
	return float64(x)
}

// RequestRedraw asks for one frame while paused and wakes the event loop.
func (w *Window) RequestRedraw() {
	w.controls.RequestStep()
	glfw.PostEmptyEvent()
}

// Wake makes a Poll blocked in WaitEvents return. It is safe to call from
// any goroutine.
func (w *Window) Wake() { glfw.PostEmptyEvent() }

// Poll processes window events. While paused it blocks until an event
// arrives.
func (w *Window) Poll() (bool, error) {
	if w.controls.Paused() {
		glfw.WaitEvents()
	} else {
		glfw.PollEvents()
	}
	return w.controls.Next()
}

// Close destroys the window and terminates GLFW.
func (w *Window) Close() {
	if w.win != nil {
		w.win.Destroy()
		w.win = nil
	}
	glfw.Terminate()
}

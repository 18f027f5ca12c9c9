//go:build !nogpu && (linux || freebsd || netbsd || openbsd) && wayland

package window

import (
	"unsafe"

	"github.com/go-gl/glfw/v3.3/glfw"
)

// NativeHandles returns the wl_display* and wl_surface* for surface
// creation.
func (w *Window) NativeHandles() (display, window uintptr, err error) {
	return uintptr(unsafe.Pointer(glfw.GetWaylandDisplay())), uintptr(unsafe.Pointer(w.win.GetWaylandWindow())), nil
}

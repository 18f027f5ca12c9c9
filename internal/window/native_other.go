//go:build !nogpu && !windows && !linux && !freebsd && !netbsd && !openbsd

package window

// NativeHandles is not available here: GLFW exposes an NSWindow on macOS
// while the surface needs its content view.
func (w *Window) NativeHandles() (display, window uintptr, err error) {
	return 0, 0, ErrUnsupportedPlatform
}

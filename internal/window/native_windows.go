//go:build !nogpu && windows

package window

import "unsafe"

// NativeHandles returns the HWND for surface creation. Windows surfaces need
// no display handle.
func (w *Window) NativeHandles() (display, window uintptr, err error) {
	return 0, uintptr(unsafe.Pointer(w.win.GetWin32Window())), nil
}

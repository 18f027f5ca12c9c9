//go:build !nogpu

package window

import (
	"testing"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/gogpu/gpucontext"
)

func TestTranslateKey(t *testing.T) {
	tests := []struct {
		in   glfw.Key
		want gpucontext.Key
	}{
		{glfw.KeyS, gpucontext.KeyS},
		{glfw.KeyA, gpucontext.KeyA},
		{glfw.KeyZ, gpucontext.KeyZ},
		{glfw.Key7, gpucontext.Key7},
		{glfw.KeyF12, gpucontext.KeyF12},
		{glfw.KeyEscape, gpucontext.KeyEscape},
		{glfw.KeySpace, gpucontext.KeySpace},
		{glfw.KeyLeft, gpucontext.KeyLeft},
		{glfw.KeyKP5, gpucontext.KeyUnknown},
	}
	for _, tt := range tests {
		if got := translateKey(tt.in); got != tt.want {
			t.Errorf("translateKey(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestTranslateMods(t *testing.T) {
	got := translateMods(glfw.ModShift | glfw.ModSuper)
	if got != gpucontext.ModShift|gpucontext.ModSuper {
		t.Errorf("translateMods = %b, want shift|super", got)
	}
	if translateMods(0) != 0 {
		t.Error("translateMods(0) != 0")
	}
}

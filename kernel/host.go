package kernel

import (
	"errors"
	"fmt"
)

// ErrNoHostStep is returned by Rule.StepHost for rules registered without a
// host implementation.
var ErrNoHostStep = errors.New("kernel: rule has no host implementation")

// HostStepFunc advances one generation on the CPU. It reads src and writes
// every element of dst; both hold cellsX*cellsY states.
type HostStepFunc func(cellsX, cellsY, colors uint32, src, dst []uint32)

// WithHost returns a copy of r that can also be stepped on the CPU. The host
// step must produce exactly what the WGSL program produces.
func (r Rule) WithHost(fn HostStepFunc) Rule {
	r.host = fn
	return r
}

// StepHost advances src by one generation into dst on the CPU.
func (r Rule) StepHost(cellsX, cellsY, colors uint32, src, dst []uint32) error {
	if r.host == nil {
		return fmt.Errorf("%w: %q", ErrNoHostStep, r.Name)
	}
	n := int(cellsX) * int(cellsY)
	if len(src) != n || len(dst) != n {
		return fmt.Errorf("kernel: host step of %dx%d grid with %d source and %d destination cells",
			cellsX, cellsY, len(src), len(dst))
	}
	if colors == 0 {
		return fmt.Errorf("kernel: host step with zero colors")
	}
	r.host(cellsX, cellsY, colors, src, dst)
	return nil
}

// neighbours returns the indices of the eight torus neighbours of cell i.
func neighbours(cellsX, cellsY uint32, i int) [8]int {
	w, h := int(cellsX), int(cellsY)
	x, y := i%w, i/w
	var out [8]int
	k := 0
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			out[k] = ((y+dy+h)%h)*w + (x+dx+w)%w
			k++
		}
	}
	return out
}

func cyclicHost(cellsX, cellsY, colors uint32, src, dst []uint32) {
	for i, state := range src {
		next := (state + 1) % colors
		dst[i] = state
		for _, j := range neighbours(cellsX, cellsY, i) {
			if src[j] == next {
				dst[i] = next
				break
			}
		}
	}
}

func lifeHost(cellsX, cellsY, colors uint32, src, dst []uint32) {
	last := colors - 1
	for i, state := range src {
		n := 0
		for _, j := range neighbours(cellsX, cellsY, i) {
			if src[j] != 0 {
				n++
			}
		}
		var next uint32
		switch {
		case state != 0 && (n == 2 || n == 3):
			next = min(state+1, last)
		case state == 0 && n == 3:
			next = min(1, last)
		}
		dst[i] = next
	}
}

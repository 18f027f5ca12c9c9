package kernel

import (
	"errors"
	"slices"
	"testing"
)

func TestNeighboursWrap(t *testing.T) {
	// 3x3 grid, corner cell 0 sees every other cell.
	got := neighbours(3, 3, 0)
	s := got[:]
	slices.Sort(s)
	want := []int{1, 2, 3, 4, 5, 6, 7, 8}
	if !slices.Equal(s, want) {
		t.Errorf("neighbours(3,3,0) = %v, want %v", s, want)
	}

	// 4x2 grid, cell 5 (x=1,y=1): rows wrap onto each other.
	got = neighbours(4, 2, 5)
	s = got[:]
	slices.Sort(s)
	want = []int{0, 0, 1, 1, 2, 2, 4, 6}
	if !slices.Equal(s, want) {
		t.Errorf("neighbours(4,2,5) = %v, want %v", s, want)
	}
}

func TestCyclicHost(t *testing.T) {
	r, _ := Lookup("cyclic")
	tests := []struct {
		name   string
		w, h   uint32
		colors uint32
		src    []uint32
		want   []uint32
	}{
		{
			name: "uniform grid is stable",
			w:    3, h: 3, colors: 3,
			src:  []uint32{1, 1, 1, 1, 1, 1, 1, 1, 1},
			want: []uint32{1, 1, 1, 1, 1, 1, 1, 1, 1},
		},
		{
			name: "successor spreads to every neighbour",
			w:    3, h: 3, colors: 3,
			src:  []uint32{0, 0, 0, 0, 1, 0, 0, 0, 0},
			want: []uint32{1, 1, 1, 1, 1, 1, 1, 1, 1},
		},
		{
			name: "wraps from last color to zero",
			w:    4, h: 1, colors: 3,
			src:  []uint32{2, 0, 1, 1},
			want: []uint32{0, 1, 1, 2},
		},
		{
			name: "single color never changes",
			w:    2, h: 2, colors: 1,
			src:  []uint32{0, 0, 0, 0},
			want: []uint32{0, 0, 0, 0},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dst := make([]uint32, len(tt.src))
			if err := r.StepHost(tt.w, tt.h, tt.colors, tt.src, dst); err != nil {
				t.Fatal(err)
			}
			if !slices.Equal(dst, tt.want) {
				t.Errorf("StepHost() = %v, want %v", dst, tt.want)
			}
		})
	}
}

func TestLifeHostBlinker(t *testing.T) {
	r, _ := Lookup("life")
	// Horizontal blinker in a 5x5 torus.
	src := make([]uint32, 25)
	src[11], src[12], src[13] = 1, 1, 1
	dst := make([]uint32, 25)
	if err := r.StepHost(5, 5, 4, src, dst); err != nil {
		t.Fatal(err)
	}
	want := make([]uint32, 25)
	want[7], want[17] = 1, 1 // born
	want[12] = 2             // survivor ages
	if !slices.Equal(dst, want) {
		t.Errorf("blinker step = %v, want %v", dst, want)
	}
}

func TestStepHostErrors(t *testing.T) {
	r, _ := Lookup("cyclic")
	if err := r.StepHost(2, 2, 3, make([]uint32, 3), make([]uint32, 4)); err == nil {
		t.Error("StepHost(short src) = nil, want error")
	}
	if err := r.StepHost(2, 2, 0, make([]uint32, 4), make([]uint32, 4)); err == nil {
		t.Error("StepHost(zero colors) = nil, want error")
	}
	bare := NewRule("bare", "", "fn main() {}")
	if err := bare.StepHost(1, 1, 1, []uint32{0}, []uint32{0}); !errors.Is(err, ErrNoHostStep) {
		t.Errorf("StepHost(no host) = %v, want ErrNoHostStep", err)
	}
}

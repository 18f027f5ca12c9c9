package cellgrid

import (
	"encoding/binary"
	"math/rand/v2"
	"testing"
)

func TestBufferParity(t *testing.T) {
	for frame := uint64(0); frame < 64; frame++ {
		cur, next := CurrentIndex(frame), NextIndex(frame)
		if cur == next {
			t.Fatalf("frame %d: CurrentIndex == NextIndex == %d", frame, cur)
		}
		if cur != 0 && cur != 1 {
			t.Fatalf("CurrentIndex(%d) = %d, want 0 or 1", frame, cur)
		}
		if frame >= 1 && cur != NextIndex(frame-1) {
			t.Errorf("CurrentIndex(%d) = %d, want NextIndex(%d) = %d", frame, cur, frame-1, NextIndex(frame-1))
		}
	}
}

func TestBufferParityLargeFrame(t *testing.T) {
	const frame = ^uint64(0)
	if CurrentIndex(frame) == NextIndex(frame) {
		t.Errorf("CurrentIndex(%d) == NextIndex(%d)", frame, frame)
	}
}

func TestStepFor(t *testing.T) {
	tests := []struct {
		frame    uint64
		src, dst int
	}{
		{0, 0, 1},
		{1, 1, 0},
		{2, 0, 1},
		{101, 1, 0},
	}
	for _, tt := range tests {
		got := StepFor(tt.frame)
		if got.Src != tt.src || got.Dst != tt.dst || got.Frame != tt.frame {
			t.Errorf("StepFor(%d) = %+v, want src=%d dst=%d", tt.frame, got, tt.src, tt.dst)
		}
	}
}

func TestInitialStates(t *testing.T) {
	g := GridSpec{CellsX: 31, CellsY: 31, TotalCells: 961, ColorCount: 3}
	states := InitialStates(g, rand.New(rand.NewPCG(3, 4)))
	if len(states) != int(g.TotalCells) {
		t.Fatalf("len(InitialStates()) = %d, want %d", len(states), g.TotalCells)
	}
	seen := make(map[uint32]bool)
	for i, s := range states {
		if s >= g.ColorCount {
			t.Fatalf("states[%d] = %d, want < %d", i, s, g.ColorCount)
		}
		seen[s] = true
	}
	if len(seen) != 3 {
		t.Errorf("InitialStates() used %d distinct colors, want 3", len(seen))
	}
}

func TestInitialStatesSeeded(t *testing.T) {
	g := GridSpec{CellsX: 10, CellsY: 10, TotalCells: 100, ColorCount: 5}
	a := InitialStates(g, rand.New(rand.NewPCG(9, 9)))
	b := InitialStates(g, rand.New(rand.NewPCG(9, 9)))
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("seeded states differ at %d", i)
		}
	}
}

func TestInitialStatesNoColors(t *testing.T) {
	g := GridSpec{CellsX: 2, CellsY: 2, TotalCells: 4}
	for i, s := range InitialStates(g, rand.New(rand.NewPCG(1, 1))) {
		if s != 0 {
			t.Errorf("states[%d] = %d, want 0", i, s)
		}
	}
}

func TestStatesBytesRoundTrip(t *testing.T) {
	in := []uint32{0, 1, 2, 0xDEADBEEF}
	b := StatesBytes(in)
	if len(b) != 16 {
		t.Fatalf("len(StatesBytes()) = %d, want 16", len(b))
	}
	if got := binary.LittleEndian.Uint32(b[12:]); got != 0xDEADBEEF {
		t.Errorf("StatesBytes()[3] = %#x, want 0xdeadbeef", got)
	}
	out := StatesFromBytes(append(b, 0xFF))
	if len(out) != len(in) {
		t.Fatalf("len(StatesFromBytes()) = %d, want %d", len(out), len(in))
	}
	for i := range in {
		if out[i] != in[i] {
			t.Errorf("StatesFromBytes()[%d] = %d, want %d", i, out[i], in[i])
		}
	}
}

func TestSimParamsBytes(t *testing.T) {
	g, err := ComputeGrid(900, 900, 1000, 3)
	if err != nil {
		t.Fatal(err)
	}
	b := ParamsFor(g).Bytes()
	if len(b) != SimParamsSize {
		t.Fatalf("len(Bytes()) = %d, want %d", len(b), SimParamsSize)
	}
	want := []uint32{900, 900, 29, 31, 31, 961, 3}
	for i, w := range want {
		if got := binary.LittleEndian.Uint32(b[i*4:]); got != w {
			t.Errorf("field %d = %d, want %d", i, got, w)
		}
	}
	if got := UniformBufferSize(); got != 32 {
		t.Errorf("UniformBufferSize() = %d, want 32", got)
	}
}

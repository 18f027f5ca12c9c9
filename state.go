package cellgrid

import (
	"encoding/binary"
	"math/rand/v2"
)

// InitialStates draws a uniformly random palette index in [0, ColorCount)
// for every cell. Both GPU state buffers are filled from the same slice so
// they start out identical.
func InitialStates(g GridSpec, rng *rand.Rand) []uint32 {
	states := make([]uint32, g.TotalCells)
	if g.ColorCount == 0 {
		return states
	}
	for i := range states {
		states[i] = rng.Uint32N(g.ColorCount)
	}
	return states
}

// StatesBytes encodes cell states as little-endian u32 values.
func StatesBytes(states []uint32) []byte {
	b := make([]byte, len(states)*4)
	for i, s := range states {
		binary.LittleEndian.PutUint32(b[i*4:], s)
	}
	return b
}

// StatesFromBytes decodes a state buffer read back from the device.
// Trailing bytes that do not form a full u32 are ignored.
func StatesFromBytes(b []byte) []uint32 {
	states := make([]uint32, len(b)/4)
	for i := range states {
		states[i] = binary.LittleEndian.Uint32(b[i*4:])
	}
	return states
}

// CurrentIndex returns which of the two state buffers is read in frame.
func CurrentIndex(frame uint64) int { return int(frame % 2) }

// NextIndex returns which of the two state buffers is written in frame.
func NextIndex(frame uint64) int { return int((frame + 1) % 2) }

// Step names the buffer roles of one frame. Src is only ever read and Dst
// only ever written by the compute pass; the render pass then reads Dst.
type Step struct {
	Frame uint64
	Src   int
	Dst   int
}

// StepFor returns the buffer roles for frame.
func StepFor(frame uint64) Step {
	return Step{Frame: frame, Src: CurrentIndex(frame), Dst: NextIndex(frame)}
}

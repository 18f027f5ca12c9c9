package cellgrid

import (
	"encoding/binary"
	"math"
	"math/rand/v2"
)

// Palette is a flat table of RGB triples, one per cell state.
// Channel values lie in [0, 1).
type Palette []float32

// GeneratePalette draws colorCount random colors from rng.
// The result has exactly colorCount*3 values. With a seeded rng the output is
// reproducible; the generator is never taken from global state.
func GeneratePalette(colorCount int, rng *rand.Rand) Palette {
	if colorCount <= 0 {
		return Palette{}
	}
	p := make(Palette, colorCount*3)
	for i := range p {
		p[i] = rng.Float32()
	}
	return p
}

// Len returns the number of colors.
func (p Palette) Len() int { return len(p) / 3 }

// Color returns the RGB triple of color i.
func (p Palette) Color(i int) [3]float32 {
	return [3]float32{p[i*3], p[i*3+1], p[i*3+2]}
}

// RGBA8 returns color i as 8-bit channels with opaque alpha.
func (p Palette) RGBA8(i int) (r, g, b, a uint8) {
	c := p.Color(i)
	return unorm8(c[0]), unorm8(c[1]), unorm8(c[2]), 0xFF
}

// Bytes returns the palette as little-endian f32 values, the layout of the
// read-only storage buffer bound to the draw shader.
func (p Palette) Bytes() []byte {
	buf := make([]byte, len(p)*4)
	for i, v := range p {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}

func unorm8(v float32) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 1:
		return 0xFF
	}
	return uint8(v*255 + 0.5)
}

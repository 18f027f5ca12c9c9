package cellgrid

import "encoding/binary"

// SimParamsSize is the byte size of the uniform block: seven u32 fields.
const SimParamsSize = 7 * 4

// SimParams mirrors the uniform block shared by the compute and draw
// shaders. Field order is part of the kernel interface and must match the
// WGSL struct declaration.
type SimParams struct {
	Width      uint32
	Height     uint32
	CellSize   uint32
	CellsX     uint32
	CellsY     uint32
	TotalCells uint32
	ColorCount uint32
}

// ParamsFor builds the uniform block for a grid.
func ParamsFor(g GridSpec) SimParams {
	return SimParams{
		Width:      g.CanvasWidth,
		Height:     g.CanvasHeight,
		CellSize:   g.CellSize,
		CellsX:     g.CellsX,
		CellsY:     g.CellsY,
		TotalCells: g.TotalCells,
		ColorCount: g.ColorCount,
	}
}

// Bytes encodes the block as little-endian u32 values in declaration order.
func (p SimParams) Bytes() []byte {
	b := make([]byte, SimParamsSize)
	for i, v := range [...]uint32{p.Width, p.Height, p.CellSize, p.CellsX, p.CellsY, p.TotalCells, p.ColorCount} {
		binary.LittleEndian.PutUint32(b[i*4:], v)
	}
	return b
}

// UniformBufferSize is the allocation size for the uniform buffer: the block
// size rounded up to a 16-byte multiple.
func UniformBufferSize() uint64 {
	return (SimParamsSize + 15) &^ 15
}

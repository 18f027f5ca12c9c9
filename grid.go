package cellgrid

import (
	"fmt"
	"math"
)

// GridSpec describes how a canvas is split into cells.
// It is computed once at startup and never changes afterwards.
type GridSpec struct {
	CanvasWidth  uint32
	CanvasHeight uint32

	// CellSize is the side of one square cell in pixels.
	CellSize uint32

	CellsX     uint32
	CellsY     uint32
	TotalCells uint32

	// ColorCount is the number of palette entries; cell states lie in
	// [0, ColorCount).
	ColorCount uint32
}

// ComputeGrid fits a grid of square cells to a canvas so that the number of
// cells is as close to requested as possible without exceeding it.
//
// The cell side is the square root of the ideal per-cell area, rounded up.
// Rounding up biases toward fewer, larger cells, which keeps
// CellsX*CellsY <= requested. The bound is checked regardless and a
// violation is reported as ErrGridInvariant.
//
// The result may hold zero cells for degenerate canvases (for example a
// 1000x1 strip); pipeline creation rejects such grids with ErrEmptyGrid.
func ComputeGrid(canvasWidth, canvasHeight, requested, colors uint32) (GridSpec, error) {
	if requested == 0 {
		return GridSpec{}, ErrZeroCells
	}
	if canvasWidth == 0 || canvasHeight == 0 {
		return GridSpec{}, fmt.Errorf("%w: got %dx%d", ErrEmptyCanvas, canvasWidth, canvasHeight)
	}

	area := float64(canvasWidth) * float64(canvasHeight)
	size := uint32(math.Ceil(math.Sqrt(area / float64(requested))))
	if size == 0 {
		size = 1
	}

	cx := canvasWidth / size
	cy := canvasHeight / size
	total := uint64(cx) * uint64(cy)
	if total > uint64(requested) {
		return GridSpec{}, fmt.Errorf("%w: %dx%d cells of %dpx for %d requested",
			ErrGridInvariant, cx, cy, size, requested)
	}

	return GridSpec{
		CanvasWidth:  canvasWidth,
		CanvasHeight: canvasHeight,
		CellSize:     size,
		CellsX:       cx,
		CellsY:       cy,
		TotalCells:   uint32(total),
		ColorCount:   colors,
	}, nil
}

// Index returns the linear index of the cell at column x, row y.
// Rows are laid out top to bottom.
func (g GridSpec) Index(x, y uint32) uint32 {
	return y*g.CellsX + x
}

// Coords is the inverse of Index.
func (g GridSpec) Coords(i uint32) (x, y uint32) {
	return i % g.CellsX, i / g.CellsX
}

// MinSide returns min(CellsX, CellsY), the divisor used to scale the
// instanced quad so cells tile without overlap.
func (g GridSpec) MinSide() uint32 {
	return min(g.CellsX, g.CellsY)
}

// StateBytes returns the size in bytes of one cell state buffer.
func (g GridSpec) StateBytes() uint64 {
	return uint64(g.TotalCells) * 4
}

// String implements fmt.Stringer.
func (g GridSpec) String() string {
	return fmt.Sprintf("GridSpec[%dx%d canvas, %dpx cells, %dx%d=%d cells, %d colors]",
		g.CanvasWidth, g.CanvasHeight, g.CellSize, g.CellsX, g.CellsY, g.TotalCells, g.ColorCount)
}

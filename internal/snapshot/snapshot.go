// Package snapshot turns a generation of cell states into an image.
//
// The grid is first rendered at one pixel per cell, top-left origin, cell i
// at column i%CellsX and row i/CellsX, then scaled to the canvas with
// nearest-neighbour sampling so every cell stays a flat square.
package snapshot

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"
	"os"

	xdraw "golang.org/x/image/draw"

	"github.com/gogpu/cellgrid"
)

// ErrStateCount is returned when the number of states does not match the
// grid.
var ErrStateCount = errors.New("snapshot: state count does not match grid")

// Options controls rendering.
type Options struct {
	// Width and Height are the output size. Zero means the grid's canvas
	// size.
	Width, Height int

	// SRGB encodes palette values with the sRGB transfer function, matching
	// what an sRGB surface shows on screen.
	SRGB bool
}

// Cells renders states at one pixel per cell.
func Cells(g cellgrid.GridSpec, p cellgrid.Palette, states []uint32, srgb bool) (*image.RGBA, error) {
	if uint32(len(states)) != g.TotalCells {
		return nil, fmt.Errorf("%w: %d states for %s", ErrStateCount, len(states), g)
	}
	if p.Len() == 0 {
		return nil, fmt.Errorf("snapshot: empty palette")
	}
	colors := make([]color.RGBA, p.Len())
	for i := range colors {
		r, gr, b, a := p.RGBA8(i)
		if srgb {
			c := p.Color(i)
			r, gr, b = encodeSRGB(c[0]), encodeSRGB(c[1]), encodeSRGB(c[2])
		}
		colors[i] = color.RGBA{R: r, G: gr, B: b, A: a}
	}

	img := image.NewRGBA(image.Rect(0, 0, int(g.CellsX), int(g.CellsY)))
	for i, s := range states {
		x, y := g.Coords(uint32(i))
		img.SetRGBA(int(x), int(y), colors[int(s)%len(colors)])
	}
	return img, nil
}

// Render renders states scaled to the output size.
func Render(g cellgrid.GridSpec, p cellgrid.Palette, states []uint32, opts Options) (*image.RGBA, error) {
	cells, err := Cells(g, p, states, opts.SRGB)
	if err != nil {
		return nil, err
	}
	w, h := opts.Width, opts.Height
	if w == 0 {
		w = int(g.CanvasWidth)
	}
	if h == 0 {
		h = int(g.CanvasHeight)
	}
	if w == cells.Bounds().Dx() && h == cells.Bounds().Dy() {
		return cells, nil
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.NearestNeighbor.Scale(dst, dst.Bounds(), cells, cells.Bounds(), xdraw.Src, nil)
	return dst, nil
}

// Encode writes img as PNG.
func Encode(w io.Writer, img image.Image) error {
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("snapshot: encode png: %w", err)
	}
	return nil
}

// WriteFile renders states and writes them to path as PNG.
func WriteFile(path string, g cellgrid.GridSpec, p cellgrid.Palette, states []uint32, opts Options) error {
	img, err := Render(g, p, states, opts)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}
	if err := Encode(f, img); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}
	cellgrid.Logger().Info("snapshot: written", "path", path, "width", img.Bounds().Dx(), "height", img.Bounds().Dy())
	return nil
}

// encodeSRGB applies the sRGB transfer function to a linear value in [0,1].
func encodeSRGB(v float32) uint8 {
	l := float64(v)
	switch {
	case l <= 0:
		return 0
	case l >= 1:
		return 0xFF
	case l <= 0.0031308:
		l *= 12.92
	default:
		l = 1.055*math.Pow(l, 1/2.4) - 0.055
	}
	return uint8(l*255 + 0.5)
}

package main

import (
	"fmt"
	"io"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/gogpu/cellgrid"
)

// summary describes a finished session.
type summary struct {
	grid    cellgrid.GridSpec
	rule    string
	seed    uint64
	frames  uint64
	elapsed time.Duration
}

// write prints the summary with grouped digits.
func (s summary) write(w io.Writer) {
	p := message.NewPrinter(language.English)
	p.Fprintf(w, "grid     %d x %d cells of %d px (%d cells, %d colors)\n",
		s.grid.CellsX, s.grid.CellsY, s.grid.CellSize, s.grid.TotalCells, s.grid.ColorCount)
	p.Fprintf(w, "rule     %s, seed %d\n", s.rule, s.seed)
	p.Fprintf(w, "frames   %d in %v", s.frames, s.elapsed.Round(time.Millisecond))
	if s.elapsed > 0 && s.frames > 0 {
		p.Fprintf(w, " (%.1f fps)", float64(s.frames)/s.elapsed.Seconds())
	}
	fmt.Fprintln(w)
}

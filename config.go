package cellgrid

import (
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Config holds the startup configuration of a session.
type Config struct {
	// WindowSize is the side of the square canvas in pixels.
	WindowSize uint32

	// CellNumber is the requested cell count. The realized grid may hold
	// fewer cells, never more.
	CellNumber uint32

	// ColorNumber is the palette size.
	ColorNumber uint32

	// CellsPerGroup is the compute work-group size.
	CellsPerGroup uint32

	// Rule names the compute kernel, see the kernel package.
	Rule string

	// Seed seeds the palette and initial state generator. Zero picks a
	// random seed.
	Seed uint64

	// FrameInterval caps the redraw rate. Zero disables pacing.
	FrameInterval time.Duration

	// Clear makes every frame clear the surface before drawing. By default
	// the previous contents are loaded.
	Clear bool

	// Headless runs Steps compute steps without a window and writes a PNG
	// snapshot to Output.
	Headless bool
	Steps    uint64
	Output   string

	// MetricsAddr, when set, serves Prometheus metrics on /metrics.
	MetricsAddr string

	// LogLevel is one of debug, info, warn, error.
	LogLevel string
}

// DefaultConfig returns the default configuration: a 900px window with
// 1000 requested cells in 3 colors, paced at 60 frames per second.
func DefaultConfig() Config {
	return Config{
		WindowSize:    900,
		CellNumber:    1000,
		ColorNumber:   3,
		CellsPerGroup: DefaultCellsPerGroup,
		Rule:          "cyclic",
		FrameInterval: time.Second / 60,
		Steps:         100,
		Output:        "cellgrid.png",
		LogLevel:      "warn",
	}
}

// WithWindowSize returns a copy of c with the given canvas side.
func (c Config) WithWindowSize(px uint32) Config {
	c.WindowSize = px
	return c
}

// WithCells returns a copy of c with the given requested cell count.
func (c Config) WithCells(n uint32) Config {
	c.CellNumber = n
	return c
}

// WithColors returns a copy of c with the given palette size.
func (c Config) WithColors(n uint32) Config {
	c.ColorNumber = n
	return c
}

// WithRule returns a copy of c using the named kernel.
func (c Config) WithRule(name string) Config {
	c.Rule = name
	return c
}

// WithSeed returns a copy of c with a fixed generator seed.
func (c Config) WithSeed(seed uint64) Config {
	c.Seed = seed
	return c
}

// Validate reports the first invalid field, wrapped in ErrInvalidConfig.
func (c Config) Validate() error {
	switch {
	case c.WindowSize == 0:
		return fmt.Errorf("%w: window size must be positive", ErrInvalidConfig)
	case c.CellNumber == 0:
		return fmt.Errorf("%w: %w", ErrInvalidConfig, ErrZeroCells)
	case c.ColorNumber == 0:
		return fmt.Errorf("%w: color number must be positive", ErrInvalidConfig)
	case c.CellsPerGroup == 0:
		return fmt.Errorf("%w: cells per group must be positive", ErrInvalidConfig)
	case c.Rule == "":
		return fmt.Errorf("%w: rule name is empty", ErrInvalidConfig)
	case c.FrameInterval < 0:
		return fmt.Errorf("%w: frame interval %v is negative", ErrInvalidConfig, c.FrameInterval)
	case c.Headless && c.Steps == 0:
		return fmt.Errorf("%w: headless mode needs at least one step", ErrInvalidConfig)
	case c.Headless && c.Output == "":
		return fmt.Errorf("%w: headless mode needs an output path", ErrInvalidConfig)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// ParseLevel maps a level name to a slog.Level.
func ParseLevel(name string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.ToUpper(strings.TrimSpace(name)))); err != nil {
		return 0, fmt.Errorf("unknown log level %q", name)
	}
	return l, nil
}

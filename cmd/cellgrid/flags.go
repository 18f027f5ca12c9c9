package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/gogpu/cellgrid"
)

// envPrefix prefixes the environment variable of every flag: -cell-number
// falls back to CELLGRID_CELL_NUMBER.
const envPrefix = "CELLGRID_"

const defaultFPS = 60

// options are the command-line settings that are not part of the session
// configuration.
type options struct {
	verify    bool
	listRules bool
}

// envName returns the environment variable consulted for a flag.
func envName(flagName string) string {
	return envPrefix + strings.ToUpper(strings.ReplaceAll(flagName, "-", "_"))
}

// parseConfig parses args into a validated configuration. Flags not given on
// the command line are taken from the environment through lookup.
func parseConfig(args []string, lookup func(string) (string, bool), stderr io.Writer) (cellgrid.Config, options, error) {
	def := cellgrid.DefaultConfig()
	fs := flag.NewFlagSet("cellgrid", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var (
		windowSize    = fs.Uint("window-size", uint(def.WindowSize), "side of the square window in pixels")
		cellNumber    = fs.Uint("cell-number", uint(def.CellNumber), "requested number of cells (the grid never holds more)")
		colorNumber   = fs.Uint("color-number", uint(def.ColorNumber), "number of cell states")
		cellsPerGroup = fs.Uint("cells-per-group", uint(def.CellsPerGroup), "compute work-group size")
		rule          = fs.String("rule", def.Rule, "automaton rule (see -list-rules)")
		seed          = fs.Uint64("seed", def.Seed, "generator seed, 0 for random")
		fps           = fs.Float64("fps", defaultFPS, "frame rate cap, 0 for uncapped")
		clearFrame    = fs.Bool("clear", def.Clear, "clear the surface every frame instead of loading it")
		headless      = fs.Bool("headless", def.Headless, "run without a window and write a PNG snapshot")
		steps         = fs.Uint64("steps", def.Steps, "generations to simulate in headless mode")
		output        = fs.String("output", def.Output, "snapshot path in headless mode")
		metricsAddr   = fs.String("metrics-addr", def.MetricsAddr, "serve Prometheus metrics on this address")
		logLevel      = fs.String("log-level", def.LogLevel, "log level: debug, info, warn, error")
		opts          options
	)
	fs.BoolVar(&opts.verify, "verify", false, "in headless mode, check the GPU result against the host reference step")
	fs.BoolVar(&opts.listRules, "list-rules", false, "list the available rules and exit")

	if err := fs.Parse(args); err != nil {
		return cellgrid.Config{}, opts, err
	}
	if err := applyEnv(fs, lookup); err != nil {
		return cellgrid.Config{}, opts, err
	}

	cfg := def
	for _, u := range []struct {
		name string
		v    uint
		dst  *uint32
	}{
		{"window-size", *windowSize, &cfg.WindowSize},
		{"cell-number", *cellNumber, &cfg.CellNumber},
		{"color-number", *colorNumber, &cfg.ColorNumber},
		{"cells-per-group", *cellsPerGroup, &cfg.CellsPerGroup},
	} {
		if u.v > math.MaxUint32 {
			return cellgrid.Config{}, opts, fmt.Errorf("%w: -%s %d out of range", cellgrid.ErrInvalidConfig, u.name, u.v)
		}
		*u.dst = uint32(u.v)
	}
	interval, err := frameInterval(*fps)
	if err != nil {
		return cellgrid.Config{}, opts, err
	}
	cfg.Rule = *rule
	cfg.Seed = *seed
	cfg.FrameInterval = interval
	cfg.Clear = *clearFrame
	cfg.Headless = *headless
	cfg.Steps = *steps
	cfg.Output = *output
	cfg.MetricsAddr = *metricsAddr
	cfg.LogLevel = *logLevel

	if err := cfg.Validate(); err != nil {
		return cellgrid.Config{}, opts, err
	}
	if opts.verify && !cfg.Headless {
		return cellgrid.Config{}, opts, fmt.Errorf("%w: -verify requires -headless", cellgrid.ErrInvalidConfig)
	}
	return cfg, opts, nil
}

// applyEnv sets every flag that was not given on the command line from its
// environment variable, if present.
func applyEnv(fs *flag.FlagSet, lookup func(string) (string, bool)) error {
	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	var errs []error
	fs.VisitAll(func(f *flag.Flag) {
		if set[f.Name] {
			return
		}
		name := envName(f.Name)
		v, ok := lookup(name)
		if !ok {
			return
		}
		if err := fs.Set(f.Name, v); err != nil {
			errs = append(errs, fmt.Errorf("%w: %s=%q: %w", cellgrid.ErrInvalidConfig, name, v, err))
		}
	})
	return errors.Join(errs...)
}

// frameInterval converts a frame rate cap to the pacing interval.
func frameInterval(fps float64) (time.Duration, error) {
	switch {
	case math.IsNaN(fps) || fps < 0:
		return 0, fmt.Errorf("%w: -fps %v must not be negative", cellgrid.ErrInvalidConfig, fps)
	case fps == 0:
		return 0, nil
	}
	return time.Duration(float64(time.Second) / fps), nil
}

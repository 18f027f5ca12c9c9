//go:build !nogpu

// Command cellgrid runs a cellular automaton on the GPU and draws it in a
// window, one compute step per frame.
//
// Usage:
//
//	cellgrid [flags]
//
// Keys: S pauses and resumes, Space advances one frame while paused, Escape
// quits. With -headless no window is opened; the simulation runs -steps
// generations and writes a PNG snapshot to -output.
//
// Every flag can also be set through the environment: -cell-number falls
// back to CELLGRID_CELL_NUMBER. Flags given on the command line win.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu"

	"github.com/gogpu/cellgrid"
	"github.com/gogpu/cellgrid/internal/frame"
	"github.com/gogpu/cellgrid/internal/gpu"
	"github.com/gogpu/cellgrid/internal/metrics"
	"github.com/gogpu/cellgrid/internal/snapshot"
	"github.com/gogpu/cellgrid/internal/window"
	"github.com/gogpu/cellgrid/kernel"
)

// resizeMessage is printed when the window is resized.
const resizeMessage = "[FATAL]: App does not support resize."

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// session is everything derived from the configuration before the GPU is
// touched.
type session struct {
	cfg     cellgrid.Config
	grid    cellgrid.GridSpec
	rule    kernel.Rule
	seed    uint64
	palette cellgrid.Palette
	initial []uint32
	metrics *metrics.Recorder
}

func run(args []string, stdout, stderr io.Writer) int {
	cfg, opts, err := parseConfig(args, os.LookupEnv, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintf(stderr, "cellgrid: %v\n", err)
		return 2
	}

	level, _ := cellgrid.ParseLevel(cfg.LogLevel)
	cellgrid.SetLogger(slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level})))
	log := cellgrid.Logger()

	if opts.listRules {
		for _, name := range kernel.Names() {
			r, _ := kernel.Lookup(name)
			fmt.Fprintf(stdout, "%-8s %s\n", r.Name, r.Summary)
		}
		return 0
	}

	s, err := newSession(cfg)
	if err != nil {
		log.Error("configuration rejected", "err", err)
		fmt.Fprintf(stderr, "cellgrid: %v\n", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if cfg.MetricsAddr != "" {
		s.metrics = metrics.NewRecorder()
		s.metrics.SetGrid(s.grid)
		srv := s.metrics.NewServer(cfg.MetricsAddr)
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("metrics server failed", "addr", cfg.MetricsAddr, "err", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
		log.Info("serving metrics", "addr", cfg.MetricsAddr)
	}

	start := time.Now()
	var frames uint64
	if cfg.Headless {
		frames, err = runHeadless(ctx, s, opts.verify)
	} else {
		frames, err = runWindowed(ctx, s)
	}
	switch {
	case errors.Is(err, window.ErrResize):
		fmt.Fprintln(stderr, resizeMessage)
		return 1
	case err != nil:
		log.Error("session failed", "frames", frames, "err", err)
		fmt.Fprintf(stderr, "cellgrid: %v\n", err)
		return 1
	}

	summary{
		grid:    s.grid,
		rule:    s.rule.Name,
		seed:    s.seed,
		frames:  frames,
		elapsed: time.Since(start),
	}.write(stdout)
	return 0
}

// newSession resolves the rule and grid and draws the palette and initial
// generation.
func newSession(cfg cellgrid.Config) (*session, error) {
	rule, err := kernel.Lookup(cfg.Rule)
	if err != nil {
		return nil, err
	}
	grid, err := cellgrid.ComputeGrid(cfg.WindowSize, cfg.WindowSize, cfg.CellNumber, cfg.ColorNumber)
	if err != nil {
		return nil, err
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	palette := cellgrid.GeneratePalette(int(grid.ColorCount), rng)
	initial := cellgrid.InitialStates(grid, rng)

	cellgrid.Logger().Info("grid chosen", "grid", grid.String(), "rule", rule.Name, "seed", seed)
	return &session{
		cfg:     cfg,
		grid:    grid,
		rule:    rule,
		seed:    seed,
		palette: palette,
		initial: initial,
	}, nil
}

// runWindowed opens the window and drives frames until it is closed. The
// window is shown only once the GPU pipeline has been built, so device and
// contract errors are reported before anything appears on screen.
func runWindowed(ctx context.Context, s *session) (uint64, error) {
	win, err := window.Open(int(s.cfg.WindowSize))
	if err != nil {
		return 0, err
	}
	defer win.Close()

	display, handle, err := win.NativeHandles()
	if err != nil {
		return 0, err
	}
	gctx, err := gpu.Open(gpu.Options{
		Display:         display,
		Window:          handle,
		PowerPreference: wgpu.PowerPreferenceHighPerformance,
	})
	if err != nil {
		return 0, err
	}
	defer gctx.Release()

	fbw, fbh := win.FramebufferSize()
	surf, err := gpu.NewSurface(gctx, uint32(fbw), uint32(fbh))
	if err != nil {
		return 0, err
	}
	defer surf.Release()

	sim, err := gpu.NewSimulation(gctx, gpu.SimulationConfig{
		Grid:          s.grid,
		Rule:          s.rule,
		CellsPerGroup: s.cfg.CellsPerGroup,
		Palette:       s.palette,
		Initial:       s.initial,
		Render: gpu.RenderOptions{
			Format:     surf.Format(),
			Clear:      s.cfg.Clear,
			ClearColor: gputypes.Color{A: 1},
		},
	})
	if err != nil {
		return 0, err
	}
	defer func() {
		if err := gctx.WaitIdle(); err != nil {
			cellgrid.Logger().Warn("release simulation", "err", err)
		}
		sim.Release()
	}()
	win.Show()

	var driverOpts []frame.Option
	if s.metrics != nil {
		driverOpts = append(driverOpts, frame.WithObserver(s.metrics))
	}
	driver := frame.NewDriver[*gpu.SurfaceFrame](surf, sim, driverOpts...)
	err = driver.Run(ctx, win, frame.NewPacer(s.cfg.FrameInterval))
	return driver.Frames(), err
}

// runHeadless advances the simulation without a window and writes the final
// generation to the output file.
func runHeadless(ctx context.Context, s *session, verify bool) (uint64, error) {
	gctx, err := gpu.Open(gpu.Options{})
	if err != nil {
		return 0, err
	}
	defer gctx.Release()

	sim, err := gpu.NewSimulation(gctx, gpu.SimulationConfig{
		Grid:          s.grid,
		Rule:          s.rule,
		CellsPerGroup: s.cfg.CellsPerGroup,
		Initial:       s.initial,
	})
	if err != nil {
		return 0, err
	}
	defer sim.Release()

	frames, err := sim.Run(ctx, 0, s.cfg.Steps)
	if err != nil {
		return frames, err
	}
	states, err := sim.ReadState(ctx, frames)
	if err != nil {
		return frames, err
	}
	if verify {
		if err := verifyHost(s, frames, states); err != nil {
			return frames, err
		}
	}
	if err := snapshot.WriteFile(s.cfg.Output, s.grid, s.palette, states, snapshot.Options{SRGB: true}); err != nil {
		return frames, err
	}
	return frames, nil
}

// verifyHost replays frames generations with the rule's host step and
// compares the result with the device state.
func verifyHost(s *session, frames uint64, got []uint32) error {
	want := slices.Clone(s.initial)
	next := make([]uint32, len(want))
	for range frames {
		if err := s.rule.StepHost(s.grid.CellsX, s.grid.CellsY, s.grid.ColorCount, want, next); err != nil {
			return err
		}
		want, next = next, want
	}
	diff := 0
	for i := range want {
		if got[i] != want[i] {
			diff++
		}
	}
	if diff > 0 {
		return fmt.Errorf("verify: %d of %d cells differ from the host step after %d generations", diff, len(want), frames)
	}
	cellgrid.Logger().Info("verify: device matches host step", "generations", frames)
	return nil
}

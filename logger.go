package cellgrid

import (
	"log/slog"
	"sync/atomic"
)

var discard = slog.New(slog.DiscardHandler)

var current atomic.Pointer[slog.Logger]

func init() {
	current.Store(discard)
}

// SetLogger sets the logger used by cellgrid and its sub-packages. Nothing is
// logged until SetLogger is called; nil restores the silent default.
//
// Levels:
//   - [slog.LevelDebug]: buffer sizes, bind group selection, acquire retries
//   - [slog.LevelInfo]: adapter selected, grid chosen, surface configured
//   - [slog.LevelWarn]: suboptimal surface, release errors
//
// Example:
//
//	cellgrid.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = discard
	}
	current.Store(l)
}

// Logger returns the current logger. It is safe for concurrent use.
func Logger() *slog.Logger {
	return current.Load()
}

// ComponentLogger returns the current logger tagged with a component
// attribute.
func ComponentLogger(component string) *slog.Logger {
	return current.Load().With("component", component)
}

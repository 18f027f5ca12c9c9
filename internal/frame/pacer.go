package frame

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/gogpu/cellgrid"
)

// Pacer limits the frame rate. The zero value and a nil *Pacer never block.
type Pacer struct {
	limiter *rate.Limiter
}

// NewPacer returns a Pacer that admits one frame per interval. An interval
// of zero or less disables pacing.
func NewPacer(interval time.Duration) *Pacer {
	if interval <= 0 {
		return &Pacer{}
	}
	return &Pacer{limiter: rate.NewLimiter(rate.Every(interval), 1)}
}

// Wait blocks until the next frame is due or ctx is done.
func (p *Pacer) Wait(ctx context.Context) error {
	if p == nil || p.limiter == nil {
		return ctx.Err()
	}
	return p.limiter.Wait(ctx)
}

// Events is the window event source consumed by Run.
type Events interface {
	// Poll processes pending window events. It reports whether a new frame
	// should be produced; a paused window returns false until it is resumed
	// or single-stepped. A non-nil error ends the loop.
	Poll() (redraw bool, err error)
}

// Waker is implemented by event sources whose Poll may block. Wake makes a
// blocked Poll return; it may be called from any goroutine.
type Waker interface {
	Wake()
}

// ErrClosed is returned by Events.Poll when the user closed the window.
var ErrClosed = errors.New("frame: window closed")

// Run produces frames until ctx is done, the window is closed or a frame
// fails. Closing the window or cancelling ctx ends the loop without error.
// If events implements Waker, cancelling ctx wakes a blocked Poll.
func (d *Driver[T]) Run(ctx context.Context, events Events, pacer *Pacer) error {
	log := cellgrid.ComponentLogger("frame")
	if w, ok := events.(Waker); ok {
		stop := context.AfterFunc(ctx, w.Wake)
		defer stop()
	}
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		redraw, err := events.Poll()
		if errors.Is(err, ErrClosed) {
			log.Info("frame: window closed", "frames", d.frames)
			return nil
		}
		if err != nil {
			return fmt.Errorf("frame: events: %w", err)
		}
		if !redraw {
			continue
		}
		if err := pacer.Wait(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("frame: pacer: %w", err)
		}
		if err := d.Frame(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
	}
}

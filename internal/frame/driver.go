// Package frame drives the per-frame compute, render and present sequence.
//
// A Driver owns the frame counter. Each call to Frame dispatches one compute
// step from buffer frame%2 into buffer (frame+1)%2, acquires a surface
// image, renders the freshly written buffer into it and presents it. Only
// surface acquisition is retried; every other failure ends the session.
package frame

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gogpu/cellgrid"
)

// Acquisition errors. Surface implementations wrap their native errors with
// these so that the Driver can apply its retry policy.
var (
	// ErrTimeout marks a transient acquisition failure. Retried once.
	ErrTimeout = errors.New("frame: surface acquire timed out")

	// ErrStale marks an outdated or lost surface. The surface is
	// reconfigured and acquisition retried once.
	ErrStale = errors.New("frame: surface outdated or lost")

	// ErrOutOfMemory marks an unrecoverable device condition.
	ErrOutOfMemory = errors.New("frame: out of memory")
)

var (
	// ErrShutdown is returned by Frame when the session must end in an
	// orderly way (out of memory).
	ErrShutdown = errors.New("frame: shutdown")

	// ErrAcquire is returned by Frame when acquisition failed after the
	// retry policy was applied.
	ErrAcquire = errors.New("frame: surface acquire failed")
)

// Surface is a presentable target producing images of type T.
type Surface[T any] interface {
	// Acquire returns the next image to render into.
	Acquire() (T, error)

	// Reconfigure recreates the swapchain after ErrStale.
	Reconfigure() error

	// Present shows a rendered image.
	Present(T) error

	// Discard drops an acquired image without presenting it.
	Discard(T)
}

// Pipeline records and submits the GPU work of one frame.
type Pipeline[T any] interface {
	// Compute advances the simulation: reads buffer frame%2 and writes
	// buffer (frame+1)%2.
	Compute(frame uint64) error

	// Render draws buffer (frame+1)%2 into target.
	Render(target T, frame uint64) error
}

// State is the position of the Driver within a frame.
type State uint8

// Frame states.
const (
	Idle State = iota
	ComputeDispatched
	Rendered
	Presented
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Idle:
		return "Idle"
	case ComputeDispatched:
		return "ComputeDispatched"
	case Rendered:
		return "Rendered"
	case Presented:
		return "Presented"
	default:
		return fmt.Sprintf("State(%d)", s)
	}
}

// Driver sequences frames over a Surface and a Pipeline.
//
// Driver is not safe for concurrent use; it is meant to be driven from the
// thread that owns the window.
type Driver[T any] struct {
	surface  Surface[T]
	pipeline Pipeline[T]
	observer Observer
	now      func() time.Time

	frames uint64
	state  State
}

// Option configures a Driver.
type Option func(*options)

type options struct {
	observer Observer
	now      func() time.Time
}

// WithObserver reports frame and acquisition outcomes to o.
func WithObserver(o Observer) Option {
	return func(opts *options) {
		opts.observer = o
	}
}

// WithClock overrides the clock used to time frames.
func WithClock(now func() time.Time) Option {
	return func(opts *options) {
		opts.now = now
	}
}

// NewDriver creates a Driver starting at frame 0.
func NewDriver[T any](s Surface[T], p Pipeline[T], opts ...Option) *Driver[T] {
	o := options{observer: nopObserver{}, now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return &Driver[T]{
		surface:  s,
		pipeline: p,
		observer: o.observer,
		now:      o.now,
	}
}

// Frames returns the number of presented frames, which is also the index of
// the next frame.
func (d *Driver[T]) Frames() uint64 { return d.frames }

// State returns the state reached by the last call to Frame.
func (d *Driver[T]) State() State { return d.state }

// Frame produces one frame. On success the state is Presented and the frame
// counter has advanced. A failed frame is never presented and leaves the
// counter unchanged.
func (d *Driver[T]) Frame(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	start := d.now()
	d.state = Idle
	step := cellgrid.StepFor(d.frames)
	log := cellgrid.ComponentLogger("frame")

	if err := d.pipeline.Compute(step.Frame); err != nil {
		d.observer.ObserveFrame(OutcomeFailed, d.now().Sub(start))
		return fmt.Errorf("frame %d: compute: %w", step.Frame, err)
	}
	d.state = ComputeDispatched

	target, err := d.acquire()
	if err != nil {
		d.observer.ObserveFrame(OutcomeFailed, d.now().Sub(start))
		return fmt.Errorf("frame %d: %w", step.Frame, err)
	}

	if err := d.pipeline.Render(target, step.Frame); err != nil {
		d.surface.Discard(target)
		d.observer.ObserveFrame(OutcomeDiscarded, d.now().Sub(start))
		return fmt.Errorf("frame %d: render: %w", step.Frame, err)
	}
	d.state = Rendered

	if err := d.surface.Present(target); err != nil {
		d.observer.ObserveFrame(OutcomeFailed, d.now().Sub(start))
		return fmt.Errorf("frame %d: present: %w", step.Frame, err)
	}
	d.frames++
	d.state = Presented
	d.observer.ObserveFrame(OutcomePresented, d.now().Sub(start))

	log.Debug("frame: presented", "frame", step.Frame, "src", step.Src, "dst", step.Dst)
	return nil
}

// acquire applies the acquisition policy: a timeout is retried once, a stale
// surface is reconfigured and retried once, and out-of-memory ends the
// session.
func (d *Driver[T]) acquire() (T, error) {
	var zero T
	log := cellgrid.ComponentLogger("frame")

	target, err := d.surface.Acquire()
	if err == nil {
		d.observer.ObserveAcquire(AcquireOK)
		return target, nil
	}

	switch {
	case errors.Is(err, ErrTimeout):
		log.Debug("frame: acquire timed out, retrying", "err", err)
		d.observer.ObserveAcquire(AcquireTimeoutRetry)
		target, err = d.surface.Acquire()
	case errors.Is(err, ErrStale):
		log.Debug("frame: surface stale, reconfiguring", "err", err)
		d.observer.ObserveAcquire(AcquireReconfigure)
		if rerr := d.surface.Reconfigure(); rerr != nil {
			return zero, fmt.Errorf("%w: reconfigure: %w", ErrAcquire, rerr)
		}
		target, err = d.surface.Acquire()
	}

	switch {
	case err == nil:
		return target, nil
	case errors.Is(err, ErrOutOfMemory):
		d.observer.ObserveAcquire(AcquireOutOfMemory)
		return zero, fmt.Errorf("%w: %w", ErrShutdown, err)
	default:
		return zero, fmt.Errorf("%w: %w", ErrAcquire, err)
	}
}

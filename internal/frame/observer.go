package frame

import "time"

// Outcome is the result of one call to Driver.Frame.
type Outcome uint8

// Frame outcomes.
const (
	OutcomePresented Outcome = iota
	OutcomeDiscarded
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomePresented:
		return "presented"
	case OutcomeDiscarded:
		return "discarded"
	default:
		return "failed"
	}
}

// AcquireOutcome is the result of the first acquisition attempt of a frame.
type AcquireOutcome uint8

// Acquisition outcomes.
const (
	AcquireOK AcquireOutcome = iota
	AcquireTimeoutRetry
	AcquireReconfigure
	AcquireOutOfMemory
)

func (a AcquireOutcome) String() string {
	switch a {
	case AcquireOK:
		return "ok"
	case AcquireTimeoutRetry:
		return "timeout_retry"
	case AcquireReconfigure:
		return "reconfigure"
	default:
		return "out_of_memory"
	}
}

// Observer receives frame telemetry. Implementations must be cheap; they are
// called on the render thread.
type Observer interface {
	ObserveAcquire(AcquireOutcome)
	ObserveFrame(o Outcome, d time.Duration)
}

type nopObserver struct{}

func (nopObserver) ObserveAcquire(AcquireOutcome)       {}
func (nopObserver) ObserveFrame(Outcome, time.Duration) {}

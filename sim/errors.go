package sim

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyEventList is reported when a primitive would leave no process scheduled.
	ErrEmptyEventList = errors.New("event list is empty")
	// ErrIdleProcess is reported when the event time of an unscheduled process is requested.
	ErrIdleProcess = errors.New("process is not scheduled")
	// ErrNotRunning is reported when a primitive is called outside a process body.
	ErrNotRunning = errors.New("no process is running")
	// ErrRunActive is returned by Run when the session already drives a run.
	ErrRunActive = errors.New("simulation run already active")
	// ErrForeignProcess is returned when a process belongs to another session.
	ErrForeignProcess = errors.New("process belongs to another simulation")
	// ErrTerminated is returned when a terminated process is used as main.
	ErrTerminated = errors.New("process is terminated")
)

// KernelError describes a failed primitive. It aborts the run it occurs in;
// Run returns it to the caller.
type KernelError struct {
	Op      string  // primitive or query that failed
	Process string  // process that was running, if any
	Time    float64 // simulated time of the failure
	Err     error
}

func (e *KernelError) Error() string {
	if e.Process == "" {
		return fmt.Sprintf("%s at t=%g: %v", e.Op, e.Time, e.Err)
	}
	return fmt.Sprintf("%s by %s at t=%g: %v", e.Op, e.Process, e.Time, e.Err)
}

func (e *KernelError) Unwrap() error { return e.Err }

// unwindSignal is the panic value raised at a suspension point while the
// termination cascade runs. The body wrapper treats it as a normal return.
type unwindSignal struct{}

// asError converts a recovered panic value from a process body into an error.
func asError(p *Process, r any) error {
	switch v := r.(type) {
	case *KernelError:
		return v
	case error:
		return fmt.Errorf("process %s: %w", p, v)
	default:
		return fmt.Errorf("process %s panicked: %v", p, v)
	}
}

package sim

import "fmt"

// Actor supplies the life cycle of a process. Actions runs inside the
// process's own execution context and suspends only at the scheduling
// primitives of the owning Simulation.
type Actor interface {
	Actions()
}

// ActorFunc adapts an ordinary function to the Actor interface.
type ActorFunc func()

// Actions calls f.
func (f ActorFunc) Actions() { f() }

// Process is a simulated entity with a sequential life cycle.
//
// A process is created detached. It becomes scheduled when activated, passive
// when it leaves the event list, and terminated once its Actions return or
// are unwound. Besides its event-list position a process can be a member of
// one WaitQueue; the two memberships are independent.
type Process struct {
	sim   *Simulation
	actor Actor
	name  string
	seq   int64

	// event list links; suc == nil means unscheduled
	pred, suc  *Process
	evTime     float64
	terminated bool

	// execution context, acquired when the process first runs
	co *coroutine

	// wait queue links
	qpred, qsuc *Process
	queue       *WaitQueue
}

// Name returns the name given at creation.
func (p *Process) Name() string { return p.name }

// Actor returns the Actor supplied at creation, so model code can get back
// to its own type:
//
//	car := line.First().Actor().(*Car)
func (p *Process) Actor() Actor { return p.actor }

// Simulation returns the session the process belongs to.
func (p *Process) Simulation() *Simulation { return p.sim }

// Scheduled reports whether the process is in the event list.
func (p *Process) Scheduled() bool { return p.suc != nil }

// Idle reports whether the process is not in the event list.
func (p *Process) Idle() bool { return p.suc == nil }

// Terminated reports whether the process has finished its life cycle.
func (p *Process) Terminated() bool { return p.terminated }

// EvTime returns the event time of a scheduled process. Asking for the event
// time of an idle process is an error: inside a run it aborts the run, which
// then reports ErrIdleProcess.
func (p *Process) EvTime() float64 {
	if p.Idle() {
		p.sim.abort("EvTime", ErrIdleProcess)
	}
	return p.evTime
}

// NextEv returns the process scheduled after p, or nil.
func (p *Process) NextEv() *Process {
	if p.Idle() {
		return nil
	}
	return p.sim.events.next(p)
}

func (p *Process) String() string {
	if p == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%s#%d", p.name, p.seq)
}

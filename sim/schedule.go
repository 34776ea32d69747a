package sim

import (
	"fmt"

	"github.com/janburian/procsim/sim/trace"
)

type activationMode int

const (
	modeDirect activationMode = iota
	modeAt
	modeDelay
	modeBefore
	modeAfter
)

type activation struct {
	mode  activationMode
	t     float64
	ref   *Process
	prior bool
}

func (a activation) String() string {
	switch a.mode {
	case modeAt:
		return fmt.Sprintf("at %g", a.t)
	case modeDelay:
		return fmt.Sprintf("delay %g", a.t)
	case modeBefore:
		return "before " + a.ref.String()
	case modeAfter:
		return "after " + a.ref.String()
	default:
		return "direct"
	}
}

// ActivateOption selects where Activate and Reactivate place a process.
// When several timing options are given the last one wins.
type ActivateOption func(*activation)

// At schedules the process at time t, or now if t lies in the past. The
// current process reactivating itself with Prior at or before now stays put.
func At(t float64) ActivateOption {
	return func(a *activation) {
		a.mode, a.t, a.ref = modeAt, t, nil
	}
}

// Delay schedules the process d time units from now.
func Delay(d float64) ActivateOption {
	return func(a *activation) {
		a.mode, a.t, a.ref = modeDelay, d, nil
	}
}

// Before places the process immediately in front of q, at q's event time.
func Before(q *Process) ActivateOption {
	return func(a *activation) {
		a.mode, a.ref = modeBefore, q
	}
}

// After places the process immediately behind q, at q's event time.
func After(q *Process) ActivateOption {
	return func(a *activation) {
		a.mode, a.ref = modeAfter, q
	}
}

// Prior makes At and Delay place the process in front of processes with the
// same event time instead of behind them.
func Prior() ActivateOption {
	return func(a *activation) {
		a.prior = true
	}
}

// Hold suspends the current process for t units of simulated time. A
// non-positive t keeps its event time. Control passes on only if another
// process is due no later than the new event time.
func (s *Simulation) Hold(t float64) {
	s.checkpoint("Hold")
	cur := s.events.first()
	if cur == nil {
		s.abort("Hold", ErrEmptyEventList)
	}
	if t > 0 {
		cur.evTime += t
	}
	s.stats.Holds++
	s.record(trace.OpHold, cur, nil, fmt.Sprintf("until %g", cur.evTime))
	if next := s.events.next(cur); next != nil && next.evTime <= cur.evTime {
		s.events.remove(cur)
		s.events.insertAfter(cur, s.events.position(cur.evTime, false))
		s.resumeCurrent()
	}
}

// Passivate takes the current process out of the event list and passes
// control to the next one.
func (s *Simulation) Passivate() {
	s.checkpoint("Passivate")
	cur := s.events.first()
	s.events.remove(cur)
	s.record(trace.OpPassivate, cur, nil, "")
	if s.events.empty() {
		s.abort("Passivate", ErrEmptyEventList)
	}
	s.resumeCurrent()
}

// Wait puts the current process at the back of q, then passivates it.
func (s *Simulation) Wait(q *WaitQueue) {
	s.checkpoint("Wait")
	if q == nil {
		panic("Wait: queue must not be nil")
	}
	cur := s.events.first()
	if cur != nil {
		cur.Into(q)
	}
	s.events.remove(cur)
	s.record(trace.OpWait, cur, nil, fmt.Sprintf("queue length %d", q.Len()))
	if s.events.empty() {
		s.abort("Wait", ErrEmptyEventList)
	}
	s.resumeCurrent()
}

// Cancel takes p out of the event list. It does nothing when p is nil,
// idle or terminated. Cancelling the current process passes control to the
// next one.
func (s *Simulation) Cancel(p *Process) {
	s.checkpoint("Cancel")
	s.cancel("Cancel", p)
}

func (s *Simulation) cancel(op string, p *Process) {
	if p == nil || p.Idle() || p.terminated {
		return
	}
	if p.sim != s {
		s.abort(op, ErrForeignProcess)
	}
	cur := s.events.first()
	s.events.remove(p)
	s.record(trace.OpCancel, s.running, p, "")
	if p != cur {
		return
	}
	if s.events.empty() {
		s.abort(op, ErrEmptyEventList)
	}
	s.resumeCurrent()
}

// Activate schedules an idle process. Without options it becomes the
// current process at once. It does nothing when p is nil, terminated or
// already scheduled.
func (s *Simulation) Activate(p *Process, opts ...ActivateOption) {
	s.checkpoint("Activate")
	s.activate("Activate", false, p, opts)
}

// Reactivate schedules p like Activate, moving it if it is already
// scheduled. Reactivating relative to an idle process cancels p.
func (s *Simulation) Reactivate(p *Process, opts ...ActivateOption) {
	s.checkpoint("Reactivate")
	s.activate("Reactivate", true, p, opts)
}

func (s *Simulation) activate(op string, reac bool, x *Process, opts []ActivateOption) {
	if x == nil || x.terminated {
		return
	}
	if x.sim != s {
		s.abort(op, ErrForeignProcess)
	}
	if !reac && x.Scheduled() {
		return
	}
	var a activation
	for _, opt := range opts {
		opt(&a)
	}

	cur := s.events.first()
	now := s.events.now()
	var pred *Process
	var t float64
	switch a.mode {
	case modeDirect:
		if x == cur {
			return
		}
		s.events.remove(x)
		pred, t = s.events.sentinel(), now
	case modeAt, modeDelay:
		t = a.t
		if a.mode == modeDelay {
			t += now
		}
		if t <= now {
			if a.prior && x == cur {
				return
			}
			t = now
		}
		s.events.remove(x)
		pred = s.events.position(t, a.prior)
	case modeBefore, modeAfter:
		y := a.ref
		if y == nil || y.Idle() {
			if reac {
				s.cancel(op, x)
			}
			return
		}
		if y.sim != s {
			s.abort(op, ErrForeignProcess)
		}
		if x == y {
			return
		}
		s.events.remove(x)
		t = y.evTime
		if a.mode == modeBefore {
			pred = y.pred
		} else {
			pred = y
		}
	}

	x.evTime = t
	s.events.insertAfter(x, pred)
	s.stats.Activations++
	s.metrics.RecordActivation(s.ctx, op)
	s.record(trace.OpActivate, s.running, x, a.String())
	s.log.Debugf("[t=%010.3f] %s %s %s (t=%g)", now, op, x, a, t)
	if s.events.first() != cur {
		s.resumeCurrent()
	}
}

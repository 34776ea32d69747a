package sim

import (
	"github.com/janburian/procsim/sim/trace"
)

// lifecycle is the task an execution context runs for p: the actions of p
// followed by its termination. It returns the context that receives control
// afterwards.
func (s *Simulation) lifecycle(p *Process) (*coroutine, bool) {
	unwound, err := s.perform(p)
	return s.finish(p, unwound, err)
}

// perform runs the actions of p. Unwinding counts as a normal return;
// panics raised while the cascade runs are logged and dropped.
func (s *Simulation) perform(p *Process) (unwound bool, err error) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		if _, ok := r.(unwindSignal); ok {
			unwound = true
			return
		}
		if s.terminating {
			s.log.Warnf("[t=%010.3f] dropping panic of %s during shutdown: %v", s.events.now(), p, r)
			unwound = true
			return
		}
		err = asError(p, r)
	}()
	p.actor.Actions()
	return false, nil
}

// finish terminates p inside its own context and picks the context to hand
// control to next: the coordinator while the cascade runs, the new head
// after a normal completion, or the driver once the run is over.
func (s *Simulation) finish(p *Process, unwound bool, err error) (*coroutine, bool) {
	p.terminated = true
	delete(s.registry, p)
	s.events.remove(p)
	s.stats.Terminated++
	if unwound {
		s.stats.Unwound++
		s.record(trace.OpUnwind, p, nil, "")
	} else {
		s.record(trace.OpTerminate, p, nil, "")
	}
	s.metrics.RecordTermination(s.ctx, unwound)
	s.log.Debugf("[t=%010.3f] %s terminated", s.events.now(), p)

	co := p.co
	p.co = nil

	if s.terminating {
		coord := s.events.first()
		s.running = coord
		return coord.co, s.pool.release(co)
	}

	if err != nil {
		s.fail(err)
	} else if p != s.main {
		if head := s.events.first(); head != nil {
			// Releasing first lets head start on this very goroutine.
			retire := s.pool.release(co)
			s.noteHandoff(p, head)
			s.running = head
			return s.contextOf(head), retire
		}
		s.fail(s.kernelError("terminate", ErrEmptyEventList))
	}

	p.co = co
	s.shutdown(p)
	p.co = nil
	s.running = nil
	return s.driver, s.pool.release(co)
}

// fail records the first failure of the run.
func (s *Simulation) fail(err error) {
	s.record(trace.OpFail, s.running, nil, err.Error())
	if s.err == nil {
		s.err = err
	}
}

// shutdown is the termination cascade. It runs in the context of coord, the
// process that ended the run, and terminates every other process of the
// session in creation order. Started processes are resumed one at a time and
// unwind from their suspension point; the others are marked terminated.
func (s *Simulation) shutdown(coord *Process) {
	s.endTime = coord.evTime
	s.terminating = true
	s.record(trace.OpShutdown, coord, nil, "")
	s.log.Debugf("[t=%010.3f] shutdown by %s, %d live processes", s.endTime, coord, len(s.registry))

	s.events.clear()
	s.events.insertAfter(coord, s.events.sentinel())

	// Unwinding actions may create processes; drain until nothing is left.
	for len(s.registry) > 0 {
		pending := s.liveProcesses()
		clear(s.registry)
		for _, q := range pending {
			if q.terminated {
				continue
			}
			if q.co == nil {
				q.terminated = true
				s.events.remove(q)
				s.stats.Terminated++
				s.stats.Unwound++
				s.metrics.RecordTermination(s.ctx, true)
				s.record(trace.OpTerminate, q, nil, "never started")
				continue
			}
			s.running = q
			transfer(coord.co, q.co)
		}
	}

	s.running = coord
	s.events.remove(coord)
	s.main = nil
	s.terminating = false
}

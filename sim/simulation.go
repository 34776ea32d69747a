package sim

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/janburian/procsim/sim/observability"
	"github.com/janburian/procsim/sim/trace"
)

// Stats counts kernel activity of a Simulation across all its runs.
type Stats struct {
	Runs        int     // completed calls to Run
	Created     int     // processes created with NewProcess
	Activations int     // activate/reactivate calls that placed a process
	Holds       int     // Hold calls
	Handoffs    int     // transfers of control between processes
	Terminated  int     // processes that finished their life cycle
	Unwound     int     // of which ended by the shutdown cascade
	FinalTime   float64 // simulated time at the end of the last run
}

// Simulation is one independent simulation session: an event list, the
// registry of live processes, and the execution contexts running them.
//
// Everything a process body does happens while it holds the single flow of
// control of its session, so the session needs no locking. Distinct
// sessions may run concurrently in different goroutines.
type Simulation struct {
	id  string
	cfg Config
	log *logrus.Entry

	events      *eventList
	registry    map[*Process]struct{}
	main        *Process
	terminating bool
	nextSeq     int64

	// run state
	active  bool
	ctx     context.Context
	driver  *coroutine
	running *Process
	err     error
	endTime float64

	pool    *ContextPool
	ownPool bool
	trace   *trace.SimulationTrace
	metrics observability.MetricsRecorder
	spans   observability.SpanManager
	stats   Stats
}

// NewSimulation creates a session. It panics if cfg is invalid.
func NewSimulation(cfg Config) *Simulation {
	if err := cfg.Validate(); err != nil {
		panic(fmt.Sprintf("NewSimulation: %v", err))
	}
	s := &Simulation{
		id:       uuid.NewString(),
		cfg:      cfg,
		events:   newEventList(),
		registry: make(map[*Process]struct{}),
		pool:     cfg.Pool,
		metrics:  cfg.Metrics,
		spans:    cfg.Spans,
	}
	if s.pool == nil {
		s.pool = NewContextPool(cfg.MaxIdleContexts)
		s.ownPool = true
	}
	if s.metrics == nil {
		s.metrics = observability.NoopMetrics{}
	}
	if s.spans == nil {
		s.spans = observability.NoopSpanManager{}
	}
	if trace.IsValidTraceLevel(cfg.TraceLevel) && trace.TraceLevel(cfg.TraceLevel) == trace.TraceLevelEvents {
		s.trace = trace.NewSimulationTrace(trace.TraceConfig{
			Level:     trace.TraceLevelEvents,
			MaxEvents: cfg.TraceMaxEvents,
		})
	}
	s.log = logrus.WithField("run", s.id)
	return s
}

// NewProcess creates a detached process owned by s. It panics if actor is nil.
func (s *Simulation) NewProcess(name string, actor Actor) *Process {
	if actor == nil {
		panic("NewProcess: actor must not be nil")
	}
	s.nextSeq++
	p := &Process{
		sim:   s,
		actor: actor,
		name:  name,
		seq:   s.nextSeq,
	}
	s.registry[p] = struct{}{}
	s.stats.Created++
	return p
}

// Run drives a simulation whose main process is main. It starts main at
// time 0 and returns once main has finished and every other process of the
// session has been terminated, or once the run failed.
//
// A failing primitive, a panicking body, or the cancellation of ctx aborts
// the run; Run then reports the first failure. Misuse detected before the
// run starts is reported without touching any process.
func (s *Simulation) Run(ctx context.Context, main *Process) error {
	switch {
	case s.active:
		return ErrRunActive
	case main == nil:
		return fmt.Errorf("run: %w: main process is nil", ErrNotRunning)
	case main.sim != s:
		return fmt.Errorf("run %s: %w", main, ErrForeignProcess)
	case main.terminated:
		return fmt.Errorf("run %s: %w", main, ErrTerminated)
	}
	if ctx == nil {
		ctx = context.Background()
	}

	ctx, span := s.spans.StartRunSpan(ctx, s.id, main.name)
	start := time.Now()
	s.active = true
	s.ctx = ctx
	s.err = nil
	s.endTime = 0
	s.main = main
	s.registry[main] = struct{}{}
	s.log.Infof("[t=%010.3f] run started, main %s", 0.0, main)

	main.evTime = 0
	s.events.insertAfter(main, s.events.sentinel())
	s.driver = newDriver()
	s.running = main
	transfer(s.driver, s.contextOf(main))

	err := s.err
	s.stats.Runs++
	s.stats.FinalTime = s.endTime
	s.record(trace.OpEnd, nil, nil, "")
	s.active = false
	s.running = nil
	s.driver = nil
	s.metrics.RecordRun(ctx, err == nil, s.endTime, time.Since(start))
	s.spans.EndSpan(span, s.endTime, err)
	s.ctx = nil
	if err != nil {
		s.log.Warnf("[t=%010.3f] run failed: %v", s.endTime, err)
	} else {
		s.log.Infof("[t=%010.3f] run ended", s.endTime)
	}
	return err
}

// Close stops the parked execution contexts of the session's own pool. A
// pool supplied through Config.Pool is left to its owner.
func (s *Simulation) Close() {
	if s.ownPool {
		s.pool.Close()
	}
}

// ID returns the unique identifier of the session.
func (s *Simulation) ID() string { return s.id }

// Current returns the process at the head of the event list, or nil.
func (s *Simulation) Current() *Process { return s.events.first() }

// Time returns the simulated time: the event time of the current process,
// or 0 when nothing is scheduled.
func (s *Simulation) Time() float64 { return s.events.now() }

// Main returns the main process of the active run, or nil.
func (s *Simulation) Main() *Process { return s.main }

// Running returns the process whose actions are executing, or nil outside
// a run. It differs from Current only while the shutdown cascade unwinds
// processes.
func (s *Simulation) Running() *Process { return s.running }

// Stats returns a snapshot of the kernel counters.
func (s *Simulation) Stats() Stats { return s.stats }

// Pool returns the context pool the session draws from.
func (s *Simulation) Pool() *ContextPool { return s.pool }

// Trace returns the scheduling trace, or nil when tracing is disabled.
func (s *Simulation) Trace() *trace.SimulationTrace { return s.trace }

// Scheduled returns the scheduled processes from head to tail.
func (s *Simulation) Scheduled() []*Process {
	out := make([]*Process, 0, s.events.len())
	for p := s.events.first(); p != nil; p = s.events.next(p) {
		out = append(out, p)
	}
	return out
}

// contextOf returns the execution context of p, acquiring one from the pool
// the first time p runs.
func (s *Simulation) contextOf(p *Process) *coroutine {
	if p.co == nil {
		p.co = s.pool.acquire(func() (*coroutine, bool) {
			return s.lifecycle(p)
		})
		s.record(trace.OpStart, p, nil, "")
	}
	return p.co
}

// resumeCurrent hands control from the running process to the head of the
// event list and parks the caller until it is resumed. A resumed process
// unwinds when the shutdown cascade is under way.
func (s *Simulation) resumeCurrent() {
	from := s.running
	next := s.events.first()
	if next == from {
		return
	}
	s.noteHandoff(from, next)
	s.running = next
	transfer(from.co, s.contextOf(next))
	if s.terminating {
		panic(unwindSignal{})
	}
}

func (s *Simulation) noteHandoff(from, next *Process) {
	s.stats.Handoffs++
	s.metrics.RecordHandoff(s.ctx)
	s.record(trace.OpHandoff, from, next, "")
	s.log.Debugf("[t=%010.3f] %s -> %s", s.events.now(), from, next)
}

// checkpoint runs at the start of every primitive.
func (s *Simulation) checkpoint(op string) {
	if s.terminating {
		panic(unwindSignal{})
	}
	if s.running == nil {
		s.abort(op, ErrNotRunning)
	}
	if err := s.ctx.Err(); err != nil {
		s.abort(op, err)
	}
}

func (s *Simulation) kernelError(op string, err error) *KernelError {
	ke := &KernelError{Op: op, Time: s.events.now(), Err: err}
	if s.running != nil {
		ke.Process = s.running.String()
		if s.events.empty() {
			ke.Time = s.running.evTime
		}
	}
	return ke
}

// abort fails the calling primitive. Inside a process body the panic ends
// the body and with it the run.
func (s *Simulation) abort(op string, err error) {
	panic(s.kernelError(op, err))
}

func (s *Simulation) record(op trace.Op, p, target *Process, detail string) {
	if !s.trace.Enabled() {
		return
	}
	rec := trace.EventRecord{Time: s.events.now(), Op: op, Detail: detail}
	if p != nil {
		rec.Process = p.String()
	}
	if target != nil {
		rec.Target = target.String()
	}
	s.trace.Record(rec)
}

// liveProcesses returns the registry ordered by creation.
func (s *Simulation) liveProcesses() []*Process {
	out := make([]*Process, 0, len(s.registry))
	for p := range s.registry {
		out = append(out, p)
	}
	slices.SortFunc(out, func(a, b *Process) int { return cmp.Compare(a.seq, b.seq) })
	return out
}

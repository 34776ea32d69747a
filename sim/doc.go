// Package sim provides a process-interaction discrete-event simulation kernel.
//
// # Reading Guide
//
// Start with these files to understand the kernel:
//   - process.go: Process life cycle (detached → scheduled → passive → terminated)
//   - eventlist.go: the time-ordered event list; its head is the current process
//   - schedule.go: Hold, Passivate, Wait, Cancel, Activate and Reactivate
//   - termination.go: the shutdown cascade run when the main process finishes
//   - coroutine.go: pooled goroutines used as parkable execution contexts
//
// # Model
//
// A model defines process types by implementing Actor. Each process body runs
// in its own execution context and decides explicitly when to yield by calling
// one of the scheduling primitives on its Simulation. Exactly one body runs at
// any instant; all concurrency is interleaving over simulated time.
//
//	s := sim.NewSimulation(sim.DefaultConfig())
//	defer s.Close()
//	main := s.NewProcess("main", sim.ActorFunc(func() {
//	    s.Activate(s.NewProcess("worker", worker))
//	    s.Hold(100)
//	}))
//	if err := s.Run(ctx, main); err != nil { ... }
//
// When the main process returns, every other live process is unwound and the
// run ends. Bodies must not recover the unwind panic raised at their
// suspension points.
//
// # Sub-packages
//   - sim/trace: scheduling trace records
//   - sim/observability: OpenTelemetry metrics and run spans
//   - sim/random: random-variate streams for models
//   - sim/report: SQLite store of run summaries
package sim

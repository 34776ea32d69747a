package sim

import "sync"

// DefaultMaxIdleContexts is the number of parked execution contexts a pool
// keeps for reuse when no limit is configured.
const DefaultMaxIdleContexts = 64

// coroutine is an execution context: a goroutine that runs application code
// only while it holds the single logical flow of control.
//
// A context is woken through its single-slot wake channel. The goroutine
// behind a pooled context runs one task per acquisition; the task returns the
// context that receives control next and whether the goroutine retires after
// handing it over. Contexts without a goroutine (the driver parked in Run)
// only ever wait on wake.
type coroutine struct {
	wake chan struct{}
	task func() (next *coroutine, retire bool)
}

func newDriver() *coroutine {
	return &coroutine{wake: make(chan struct{}, 1)}
}

// run is the goroutine loop of a pooled context.
func (c *coroutine) run() {
	for range c.wake {
		task := c.task
		if task == nil {
			return
		}
		c.task = nil
		next, retire := task()
		next.wake <- struct{}{}
		if retire {
			return
		}
	}
}

// transfer hands control to next and parks from until a later transfer names
// it again. A transfer to oneself is a no-op.
func transfer(from, next *coroutine) {
	if from == next {
		return
	}
	next.wake <- struct{}{}
	<-from.wake
}

// PoolStats reports execution context usage of a ContextPool.
type PoolStats struct {
	Spawned int // goroutines started
	Reused  int // acquisitions served from idle contexts
	Idle    int // contexts currently parked in the pool
	Retired int // goroutines that exited because the pool was full or closed
}

// ContextPool recycles execution contexts between processes. Processes only
// need a context while they are alive, so a terminated process returns its
// context for the next process to start.
//
// A pool may be shared by several Simulations; its methods are safe for
// concurrent use.
type ContextPool struct {
	mu      sync.Mutex
	idle    []*coroutine
	maxIdle int
	closed  bool
	stats   PoolStats
}

// NewContextPool creates a pool keeping at most maxIdle parked contexts.
// A non-positive maxIdle selects DefaultMaxIdleContexts.
func NewContextPool(maxIdle int) *ContextPool {
	if maxIdle <= 0 {
		maxIdle = DefaultMaxIdleContexts
	}
	return &ContextPool{maxIdle: maxIdle}
}

// acquire returns a context that will run task when it is next woken.
func (p *ContextPool) acquire(task func() (*coroutine, bool)) *coroutine {
	p.mu.Lock()
	defer p.mu.Unlock()
	if n := len(p.idle); n > 0 {
		c := p.idle[n-1]
		p.idle = p.idle[:n-1]
		c.task = task
		p.stats.Reused++
		return c
	}
	c := &coroutine{wake: make(chan struct{}, 1), task: task}
	p.stats.Spawned++
	go c.run()
	return c
}

// release returns a context whose task is finishing. It is called from the
// context's own goroutine, before its final handoff, and reports whether the
// goroutine must exit instead of parking.
func (p *ContextPool) release(c *coroutine) (retire bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed || len(p.idle) >= p.maxIdle {
		p.stats.Retired++
		return true
	}
	p.idle = append(p.idle, c)
	return false
}

// Stats returns a snapshot of the pool counters.
func (p *ContextPool) Stats() PoolStats {
	p.mu.Lock()
	defer p.mu.Unlock()
	st := p.stats
	st.Idle = len(p.idle)
	return st
}

// Close stops every parked context. Contexts still owned by live processes
// retire when their process terminates.
func (p *ContextPool) Close() {
	p.mu.Lock()
	idle := p.idle
	p.idle = nil
	p.closed = true
	p.stats.Retired += len(idle)
	p.mu.Unlock()
	for _, c := range idle {
		c.task = nil
		c.wake <- struct{}{}
	}
}

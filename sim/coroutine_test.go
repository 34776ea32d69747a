package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransfer_PingPong(t *testing.T) {
	// GIVEN a driver and one pooled context that logs and yields back
	pool := NewContextPool(4)
	defer pool.Close()
	driver := newDriver()
	var log []string

	var worker *coroutine
	worker = pool.acquire(func() (*coroutine, bool) {
		log = append(log, "worker 1")
		transfer(worker, driver)
		log = append(log, "worker 2")
		return driver, pool.release(worker)
	})

	// WHEN control is passed back and forth
	log = append(log, "driver 1")
	transfer(driver, worker)
	log = append(log, "driver 2")
	transfer(driver, worker)
	log = append(log, "driver 3")

	// THEN exactly one side ran at a time, in handoff order
	assert.Equal(t, []string{"driver 1", "worker 1", "driver 2", "worker 2", "driver 3"}, log)
	st := pool.Stats()
	assert.Equal(t, 1, st.Spawned)
	assert.Equal(t, 1, st.Idle)
}

func TestTransfer_ToSelfIsNoop(t *testing.T) {
	c := newDriver()
	transfer(c, c)
	assert.Len(t, c.wake, 0)
}

func TestContextPool_ReusesReleasedContexts(t *testing.T) {
	pool := NewContextPool(2)
	defer pool.Close()
	driver := newDriver()

	runOnce := func() *coroutine {
		var c *coroutine
		c = pool.acquire(func() (*coroutine, bool) {
			return driver, pool.release(c)
		})
		transfer(driver, c)
		return c
	}

	first := runOnce()
	second := runOnce()

	assert.Same(t, first, second)
	st := pool.Stats()
	assert.Equal(t, 1, st.Spawned)
	assert.Equal(t, 1, st.Reused)
}

func TestContextPool_RetiresBeyondMaxIdle(t *testing.T) {
	// GIVEN a pool keeping one idle context and two live contexts
	pool := NewContextPool(1)
	defer pool.Close()
	driver := newDriver()

	var a, b *coroutine
	a = pool.acquire(func() (*coroutine, bool) {
		transfer(a, b)
		return driver, pool.release(a)
	})
	b = pool.acquire(func() (*coroutine, bool) {
		return a, pool.release(b)
	})

	// WHEN both finish
	transfer(driver, a)

	// THEN the first release is kept and the second retires
	st := pool.Stats()
	assert.Equal(t, 2, st.Spawned)
	assert.Equal(t, 1, st.Idle)
	assert.Equal(t, 1, st.Retired)
}

func TestContextPool_Close(t *testing.T) {
	pool := NewContextPool(0)
	driver := newDriver()
	var c *coroutine
	c = pool.acquire(func() (*coroutine, bool) {
		return driver, pool.release(c)
	})
	transfer(driver, c)
	require.Equal(t, 1, pool.Stats().Idle)

	pool.Close()

	st := pool.Stats()
	assert.Equal(t, 0, st.Idle)
	assert.Equal(t, 1, st.Retired)

	// contexts released after Close retire at once
	var d *coroutine
	d = pool.acquire(func() (*coroutine, bool) {
		return driver, pool.release(d)
	})
	transfer(driver, d)
	assert.Equal(t, 2, pool.Stats().Retired)
	assert.Equal(t, 0, pool.Stats().Idle)
}

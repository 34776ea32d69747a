package cablecar

import (
	"context"
	"os"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/janburian/procsim/sim"
	"github.com/janburian/procsim/sim/trace"
)

func TestMain(m *testing.M) {
	if os.Getenv("DEBUG_TESTS") == "" {
		logrus.SetLevel(logrus.WarnLevel)
	}
	os.Exit(m.Run())
}

func runCablecar(t *testing.T, cfg Config, kernel sim.Config) (Result, *sim.Simulation) {
	t.Helper()
	m, err := New(cfg, kernel)
	require.NoError(t, err)
	t.Cleanup(m.Close)
	res, err := m.Run(context.Background())
	require.NoError(t, err)
	return res, m.Simulation()
}

func TestConfig_Period(t *testing.T) {
	// 4000 m / 30 cabins * 0.4 s/m
	assert.InDelta(t, 53.333, DefaultConfig().Period(), 0.001)
}

func TestCablecar_Defaults(t *testing.T) {
	// GIVEN the default station
	cfg := DefaultConfig()

	// WHEN the model runs
	res, s := runCablecar(t, cfg, sim.DefaultConfig())

	// THEN cabins arrived every period until the end of the arrival window
	wantCars := int(cfg.SimPeriod/cfg.Period()) + 1
	assert.Equal(t, wantCars, res.CarsGenerated)

	// AND skiers arrived and boarded, never more than arrived
	assert.Greater(t, res.SkiersArrived, 0)
	assert.Greater(t, res.SkiersServed, 0)
	assert.LessOrEqual(t, res.SkiersServed, res.SkiersArrived)
	assert.GreaterOrEqual(t, res.AvgWait, 0.0)
	assert.GreaterOrEqual(t, res.MaxQueue, 1)
	assert.Equal(t, cfg.SimPeriod+cfg.DrainTime, res.SimTime)

	// AND waiting skiers and parked cabins were reaped by the cascade
	st := s.Stats()
	assert.Equal(t, st.Created, st.Terminated)
	assert.Nil(t, s.Current())
}

func TestCablecar_SameSeed_SameResult(t *testing.T) {
	a, _ := runCablecar(t, DefaultConfig(), sim.DefaultConfig())
	b, _ := runCablecar(t, DefaultConfig(), sim.DefaultConfig())
	assert.Equal(t, a, b)
}

func TestCablecar_Trace_RecordsBoarding(t *testing.T) {
	kernel := sim.DefaultConfig()
	kernel.TraceLevel = string(trace.TraceLevelEvents)

	_, s := runCablecar(t, DefaultConfig(), kernel)

	summary := trace.Summarize(s.Trace())
	require.NotNil(t, summary)
	assert.Greater(t, summary.OpDistribution[trace.OpHold], 0)
	assert.Greater(t, summary.Handoffs, 0)
	assert.Equal(t, s.Stats().Terminated, summary.Terminations+summary.Unwound)
}

func TestCablecar_Values(t *testing.T) {
	r := Result{CarsGenerated: 12, SkiersArrived: 50, SkiersServed: 48, AvgWait: 30, MaxQueue: 7}
	v := r.Values()
	assert.Equal(t, 12.0, v["cars_generated"])
	assert.Equal(t, 48.0, v["skiers_served"])
	assert.Equal(t, 7.0, v["max_queue"])
}

func TestConfig_Validate(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())

	cfg := DefaultConfig()
	cfg.Cars = 0
	cfg.SkierRate = 0
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cars must be >= 1")
	assert.Contains(t, err.Error(), "skier_rate must be > 0")
}

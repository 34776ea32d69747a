package carwash

import (
	"context"
	"os"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/janburian/procsim/sim"
)

func TestMain(m *testing.M) {
	if os.Getenv("DEBUG_TESTS") == "" {
		logrus.SetLevel(logrus.WarnLevel)
	}
	os.Exit(m.Run())
}

func runCarwash(t *testing.T, cfg Config) (Result, *sim.Simulation) {
	t.Helper()
	m, err := New(cfg, sim.DefaultConfig())
	require.NoError(t, err)
	t.Cleanup(m.Close)
	res, err := m.Run(context.Background())
	require.NoError(t, err)
	return res, m.Simulation()
}

func TestCarwash_Defaults_CompleteAndReapEverything(t *testing.T) {
	// GIVEN the classic one-washer configuration
	cfg := DefaultConfig()

	// WHEN the model runs
	res, s := runCarwash(t, cfg)

	// THEN cars were served, each taking at least one wash
	assert.Greater(t, res.Customers, 0)
	assert.GreaterOrEqual(t, res.AvgElapsed, cfg.WashTime)
	assert.GreaterOrEqual(t, res.MaxQueue, 1)
	assert.Equal(t, cfg.SimPeriod+cfg.DrainTime, res.SimTime)

	// AND the cascade terminated every process, leaving nothing scheduled
	st := s.Stats()
	assert.Equal(t, st.Created, st.Terminated)
	assert.Nil(t, s.Current())
	assert.Nil(t, s.Main())
}

func TestCarwash_SameSeed_SameResult(t *testing.T) {
	a, _ := runCarwash(t, DefaultConfig())
	b, _ := runCarwash(t, DefaultConfig())
	assert.Equal(t, a, b)
}

func TestCarwash_MoreWashers_NoSlowerService(t *testing.T) {
	// GIVEN identical arrivals
	one := DefaultConfig()
	two := DefaultConfig()
	two.Washers = 2

	// WHEN served by one and by two washers
	r1, _ := runCarwash(t, one)
	r2, _ := runCarwash(t, two)

	// THEN the same cars get washed, no slower with the extra washer
	assert.Equal(t, r1.Customers, r2.Customers)
	assert.LessOrEqual(t, r2.AvgElapsed, r1.AvgElapsed+1e-9)
	assert.LessOrEqual(t, r2.MaxQueue, r1.MaxQueue)
}

func TestCarwash_Values(t *testing.T) {
	r := Result{Customers: 4, AvgElapsed: 12.5, MaxQueue: 2}
	assert.Equal(t, map[string]float64{"customers": 4, "avg_elapsed": 12.5, "max_queue": 2}, r.Values())
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no washers", func(c *Config) { c.Washers = 0 }},
		{"zero period", func(c *Config) { c.SimPeriod = 0 }},
		{"zero wash time", func(c *Config) { c.WashTime = 0 }},
		{"negative interarrival", func(c *Config) { c.MeanInterarrival = -1 }},
		{"negative drain", func(c *Config) { c.DrainTime = -1 }},
	}
	require.NoError(t, DefaultConfig().Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
			_, err := New(cfg, sim.DefaultConfig())
			assert.Error(t, err)
		})
	}
}

func TestCarwash_CancelledContext_Fails(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	m, err := New(DefaultConfig(), sim.DefaultConfig())
	require.NoError(t, err)
	defer m.Close()

	_, err = m.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

// Package carwash models a car wash: cars arrive at random, queue in a
// waiting line, and are washed by a fixed crew of washers who rest in a
// tearoom while the line is empty.
package carwash

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/janburian/procsim/sim"
	"github.com/janburian/procsim/sim/random"
)

// Name identifies the model in presets and stored results.
const Name = "carwash"

// Config holds the model parameters.
type Config struct {
	Washers          int     `yaml:"washers"`
	SimPeriod        float64 `yaml:"sim_period"`        // cars arrive until this time
	WashTime         float64 `yaml:"wash_time"`         // time to wash one car
	MeanInterarrival float64 `yaml:"mean_interarrival"` // mean time between arrivals
	DrainTime        float64 `yaml:"drain_time"`        // time after SimPeriod before the report
	Seed             int64   `yaml:"seed"`
}

// DefaultConfig returns the classic one-washer setup.
func DefaultConfig() Config {
	return Config{
		Washers:          1,
		SimPeriod:        200,
		WashTime:         10,
		MeanInterarrival: 11,
		DrainTime:        1_000_000,
		Seed:             5,
	}
}

// Validate checks the parameters.
func (c Config) Validate() error {
	var errs []error
	if c.Washers < 1 {
		errs = append(errs, fmt.Errorf("washers must be >= 1, got %d", c.Washers))
	}
	if c.SimPeriod <= 0 {
		errs = append(errs, fmt.Errorf("sim_period must be > 0, got %g", c.SimPeriod))
	}
	if c.WashTime <= 0 {
		errs = append(errs, fmt.Errorf("wash_time must be > 0, got %g", c.WashTime))
	}
	if c.MeanInterarrival <= 0 {
		errs = append(errs, fmt.Errorf("mean_interarrival must be > 0, got %g", c.MeanInterarrival))
	}
	if c.DrainTime < 0 {
		errs = append(errs, fmt.Errorf("drain_time must be >= 0, got %g", c.DrainTime))
	}
	return errors.Join(errs...)
}

// Result summarizes a run.
type Result struct {
	Customers  int     // cars washed
	AvgElapsed float64 // mean time from arrival to leaving
	MaxQueue   int     // longest waiting line seen
	SimTime    float64 // simulated time at the report
}

// Values returns the result as named values for storage.
func (r Result) Values() map[string]float64 {
	return map[string]float64{
		"customers":   float64(r.Customers),
		"avg_elapsed": r.AvgElapsed,
		"max_queue":   float64(r.MaxQueue),
	}
}

// Model is one car wash simulation.
type Model struct {
	cfg     Config
	sim     *sim.Simulation
	streams *random.Partitioned

	tearoom     sim.WaitQueue
	waitingLine sim.WaitQueue

	customers   int
	throughTime float64
	maxLength   int
	result      Result
}

// New builds a model on a fresh simulation session.
func New(cfg Config, kernel sim.Config) (*Model, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("carwash config: %w", err)
	}
	if err := kernel.Validate(); err != nil {
		return nil, fmt.Errorf("kernel config: %w", err)
	}
	return &Model{
		cfg:     cfg,
		sim:     sim.NewSimulation(kernel),
		streams: random.NewPartitioned(cfg.Seed),
	}, nil
}

// Simulation returns the session the model runs on.
func (m *Model) Simulation() *sim.Simulation { return m.sim }

// Close releases the session.
func (m *Model) Close() { m.sim.Close() }

// Run executes the model to completion.
func (m *Model) Run(ctx context.Context) (Result, error) {
	main := m.sim.NewProcess("carwash", sim.ActorFunc(m.actions))
	if err := m.sim.Run(ctx, main); err != nil {
		return Result{}, err
	}
	return m.result, nil
}

func (m *Model) actions() {
	for i := 0; i < m.cfg.Washers; i++ {
		w := &washer{m: m}
		w.proc = m.sim.NewProcess(fmt.Sprintf("washer-%d", i+1), w)
		w.proc.Into(&m.tearoom)
	}
	m.sim.Activate(m.sim.NewProcess("generator", &generator{m: m}))
	m.sim.Hold(m.cfg.SimPeriod + m.cfg.DrainTime)

	m.result = Result{
		Customers: m.customers,
		MaxQueue:  m.maxLength,
		SimTime:   m.sim.Time(),
	}
	if m.customers > 0 {
		m.result.AvgElapsed = m.throughTime / float64(m.customers)
	}
	logrus.Infof("%d car washer simulation: %d cars, avg elapsed %.2f, max queue %d",
		m.cfg.Washers, m.result.Customers, m.result.AvgElapsed, m.result.MaxQueue)
}

type car struct {
	m    *Model
	proc *sim.Process
}

func (c *car) Actions() {
	m := c.m
	entry := m.sim.Time()
	c.proc.Into(&m.waitingLine)
	m.maxLength = max(m.maxLength, m.waitingLine.Len())
	if !m.tearoom.Empty() {
		m.sim.Activate(m.tearoom.First())
	}
	m.sim.Passivate()
	m.customers++
	m.throughTime += m.sim.Time() - entry
}

type washer struct {
	m    *Model
	proc *sim.Process
}

func (w *washer) Actions() {
	m := w.m
	for {
		w.proc.Out()
		for !m.waitingLine.Empty() {
			served := m.waitingLine.First()
			served.Out()
			m.sim.Hold(m.cfg.WashTime)
			m.sim.Activate(served)
		}
		m.sim.Wait(&m.tearoom)
	}
}

type generator struct {
	m *Model
}

func (g *generator) Actions() {
	m := g.m
	arrivals := m.streams.ForSubsystem("arrivals")
	for m.sim.Time() <= m.cfg.SimPeriod {
		c := &car{m: m}
		c.proc = m.sim.NewProcess("car", c)
		m.sim.Activate(c.proc)
		m.sim.Hold(arrivals.Negexp(1 / m.cfg.MeanInterarrival))
	}
}

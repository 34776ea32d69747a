// Package cablecar models the lower station of a cable car: cabins arrive
// at a fixed period and wait in the station for a while, skiers queue and
// board the first cabin one at a time.
package cablecar

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/janburian/procsim/sim"
	"github.com/janburian/procsim/sim/random"
)

// Name identifies the model in presets and stored results.
const Name = "cablecar"

// Config holds the model parameters. Times are in seconds.
type Config struct {
	Cars           int     `yaml:"cars"`            // cabins on the rope
	Capacity       int     `yaml:"capacity"`        // seats per cabin
	RopeLength     float64 `yaml:"rope_length"`     // metres
	TimeConstant   float64 `yaml:"time_constant"`   // seconds per metre of cabin spacing
	TimeInStation  float64 `yaml:"time_in_station"` // how long a cabin can be boarded
	SkierRate      float64 `yaml:"skier_rate"`      // skier arrivals per second
	BoardingMean   float64 `yaml:"boarding_mean"`   // mean boarding time
	BoardingStdDev float64 `yaml:"boarding_stddev"` // boarding time deviation
	SimPeriod      float64 `yaml:"sim_period"`      // arrivals stop after this time
	DrainTime      float64 `yaml:"drain_time"`      // time after SimPeriod before the report
	Seed           int64   `yaml:"seed"`
}

// DefaultConfig returns a 30 cabin setup.
func DefaultConfig() Config {
	return Config{
		Cars:           30,
		Capacity:       6,
		RopeLength:     4000,
		TimeConstant:   0.4,
		TimeInStation:  40,
		SkierRate:      5.0 / 60,
		BoardingMean:   5,
		BoardingStdDev: 0.5,
		SimPeriod:      600,
		DrainTime:      10_000,
		Seed:           9,
	}
}

// Validate checks the parameters.
func (c Config) Validate() error {
	var errs []error
	if c.Cars < 1 {
		errs = append(errs, fmt.Errorf("cars must be >= 1, got %d", c.Cars))
	}
	if c.Capacity < 1 {
		errs = append(errs, fmt.Errorf("capacity must be >= 1, got %d", c.Capacity))
	}
	if c.RopeLength <= 0 || c.TimeConstant <= 0 {
		errs = append(errs, fmt.Errorf("rope_length and time_constant must be > 0, got %g and %g", c.RopeLength, c.TimeConstant))
	}
	if c.TimeInStation < 0 {
		errs = append(errs, fmt.Errorf("time_in_station must be >= 0, got %g", c.TimeInStation))
	}
	if c.SkierRate <= 0 {
		errs = append(errs, fmt.Errorf("skier_rate must be > 0, got %g", c.SkierRate))
	}
	if c.BoardingMean < 0 || c.BoardingStdDev < 0 {
		errs = append(errs, fmt.Errorf("boarding_mean and boarding_stddev must be >= 0, got %g and %g", c.BoardingMean, c.BoardingStdDev))
	}
	if c.SimPeriod <= 0 {
		errs = append(errs, fmt.Errorf("sim_period must be > 0, got %g", c.SimPeriod))
	}
	if c.DrainTime < 0 {
		errs = append(errs, fmt.Errorf("drain_time must be >= 0, got %g", c.DrainTime))
	}
	return errors.Join(errs...)
}

// Period is the time between two cabins reaching the station.
func (c Config) Period() float64 {
	return c.RopeLength / float64(c.Cars) * c.TimeConstant
}

// Result summarizes a run.
type Result struct {
	CarsGenerated int     // cabins that reached the station
	SkiersArrived int     // skiers that joined the queue
	SkiersServed  int     // skiers that boarded
	AvgWait       float64 // mean time from joining the queue to boarding
	MaxQueue      int     // longest skier queue seen
	SimTime       float64 // simulated time at the report
}

// Values returns the result as named values for storage.
func (r Result) Values() map[string]float64 {
	return map[string]float64{
		"cars_generated": float64(r.CarsGenerated),
		"skiers_arrived": float64(r.SkiersArrived),
		"skiers_served":  float64(r.SkiersServed),
		"avg_wait":       r.AvgWait,
		"max_queue":      float64(r.MaxQueue),
	}
}

// Model is one cable car simulation.
type Model struct {
	cfg     Config
	sim     *sim.Simulation
	streams *random.Partitioned

	cars   sim.WaitQueue // cabins in the station, first boards
	skiers sim.WaitQueue

	carsGenerated int
	arrived       int
	served        int
	throughTime   float64
	maxLength     int
	result        Result
}

// New builds a model on a fresh simulation session.
func New(cfg Config, kernel sim.Config) (*Model, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("cablecar config: %w", err)
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
	main := m.sim.NewProcess("cablecar", sim.ActorFunc(m.actions))
	if err := m.sim.Run(ctx, main); err != nil {
		return Result{}, err
	}
	return m.result, nil
}

func (m *Model) actions() {
	m.sim.Activate(m.sim.NewProcess("car-generator", &carGenerator{m: m}))
	m.sim.Activate(m.sim.NewProcess("skier-generator", &skierGenerator{m: m}))
	m.sim.Hold(m.cfg.SimPeriod + m.cfg.DrainTime)

	m.result = Result{
		CarsGenerated: m.carsGenerated,
		SkiersArrived: m.arrived,
		SkiersServed:  m.served,
		MaxQueue:      m.maxLength,
		SimTime:       m.sim.Time(),
	}
	if m.served > 0 {
		m.result.AvgWait = m.throughTime / float64(m.served)
	}
	logrus.Infof("%d cable cars simulation: %d cabins, %d/%d skiers boarded, avg wait %.2f, max queue %d",
		m.cfg.Cars, m.result.CarsGenerated, m.result.SkiersServed, m.result.SkiersArrived,
		m.result.AvgWait, m.result.MaxQueue)
}

type cableCar struct {
	m         *Model
	proc      *sim.Process
	remaining int
}

func (c *cableCar) Actions() {
	m := c.m
	c.proc.Into(&m.cars)
	m.sim.Activate(m.skiers.First())
	m.sim.Hold(m.cfg.TimeInStation)
	if c.remaining > 0 && !m.skiers.Empty() {
		// Boarding continues; the skier taking the last seat sends us off.
		m.sim.Passivate()
	}
	c.proc.Out()
}

type skier struct {
	m    *Model
	proc *sim.Process
}

func (s *skier) Actions() {
	m := s.m
	entry := m.sim.Time()
	s.proc.Into(&m.skiers)
	m.arrived++
	m.maxLength = max(m.maxLength, m.skiers.Len())

	for m.cars.Empty() || m.skiers.First() != s.proc {
		m.sim.Passivate()
	}

	car := m.cars.First().Actor().(*cableCar)
	car.remaining--
	if car.remaining == 0 {
		car.proc.Out()
	}
	m.sim.Hold(m.boardingTime())
	s.proc.Out()
	m.served++
	m.throughTime += m.sim.Time() - entry

	if car.remaining == 0 {
		m.sim.Reactivate(car.proc)
	}
	m.sim.Activate(m.skiers.First())
}

func (m *Model) boardingTime() float64 {
	t := m.streams.ForSubsystem("boarding").Normal(m.cfg.BoardingMean, m.cfg.BoardingStdDev)
	return math.Max(t, 0)
}

type skierGenerator struct {
	m *Model
}

func (g *skierGenerator) Actions() {
	m := g.m
	arrivals := m.streams.ForSubsystem("arrivals")
	for m.sim.Time() <= m.cfg.SimPeriod {
		s := &skier{m: m}
		s.proc = m.sim.NewProcess("skier", s)
		m.sim.Activate(s.proc)
		m.sim.Hold(arrivals.Negexp(m.cfg.SkierRate))
	}
}

type carGenerator struct {
	m *Model
}

func (g *carGenerator) Actions() {
	m := g.m
	period := m.cfg.Period()
	for m.sim.Time() <= m.cfg.SimPeriod {
		c := &cableCar{m: m, remaining: m.cfg.Capacity}
		c.proc = m.sim.NewProcess(fmt.Sprintf("car-%d", m.carsGenerated+1), c)
		m.sim.Activate(c.proc)
		m.carsGenerated++
		m.sim.Hold(period)
	}
}

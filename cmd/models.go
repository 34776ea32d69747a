package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/janburian/procsim/models/cablecar"
	"github.com/janburian/procsim/models/carwash"
	"github.com/janburian/procsim/sim"
)

// modelRun is a built model ready to run, independent of which model it is.
type modelRun struct {
	name   string
	seed   int64
	params any
	sim    *sim.Simulation
	run    func(ctx context.Context) (map[string]float64, float64, error)
	close  func()
}

// buildModel resolves the preset of the selected model, applies the flags
// the user set explicitly, and builds the model on a session configured
// with kernel.
func buildModel(cmd *cobra.Command, presets Presets, kernel sim.Config) (*modelRun, error) {
	flags := cmd.Flags()
	switch modelName {
	case carwash.Name:
		cfg, err := presets.carwashPreset(presetFlag)
		if err != nil {
			return nil, err
		}
		if flags.Changed("seed") {
			cfg.Seed = seed
		}
		if flags.Changed("sim-period") {
			cfg.SimPeriod = simPeriod
		}
		if flags.Changed("washers") {
			cfg.Washers = washers
		}
		m, err := carwash.New(cfg, kernel)
		if err != nil {
			return nil, err
		}
		return &modelRun{
			name:   carwash.Name,
			seed:   cfg.Seed,
			params: cfg,
			sim:    m.Simulation(),
			run: func(ctx context.Context) (map[string]float64, float64, error) {
				res, err := m.Run(ctx)
				return res.Values(), res.SimTime, err
			},
			close: m.Close,
		}, nil

	case cablecar.Name:
		cfg, err := presets.cablecarPreset(presetFlag)
		if err != nil {
			return nil, err
		}
		if flags.Changed("seed") {
			cfg.Seed = seed
		}
		if flags.Changed("sim-period") {
			cfg.SimPeriod = simPeriod
		}
		if flags.Changed("cars") {
			cfg.Cars = cars
		}
		if flags.Changed("capacity") {
			cfg.Capacity = capacity
		}
		m, err := cablecar.New(cfg, kernel)
		if err != nil {
			return nil, err
		}
		return &modelRun{
			name:   cablecar.Name,
			seed:   cfg.Seed,
			params: cfg,
			sim:    m.Simulation(),
			run: func(ctx context.Context) (map[string]float64, float64, error) {
				res, err := m.Run(ctx)
				return res.Values(), res.SimTime, err
			},
			close: m.Close,
		}, nil

	default:
		return nil, fmt.Errorf("unknown model %q; valid options: %s, %s", modelName, carwash.Name, cablecar.Name)
	}
}

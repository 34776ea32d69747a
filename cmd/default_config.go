package cmd

import (
	"bytes"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/janburian/procsim/models/cablecar"
	"github.com/janburian/procsim/models/carwash"
	"github.com/janburian/procsim/sim"
)

// defaultsFilePath is where model presets are looked up.
var defaultsFilePath = "defaults.yaml"

// Presets represents the full defaults.yaml structure.
// All top-level sections must be listed to satisfy KnownFields(true) strict parsing.
type Presets struct {
	Version  string                     `yaml:"version"`
	Kernel   *sim.Config                `yaml:"kernel"`
	Carwash  map[string]carwash.Config  `yaml:"carwash"`
	Cablecar map[string]cablecar.Config `yaml:"cablecar"`
}

// loadPresets parses a presets file with strict field checking: typos must
// cause errors.
func loadPresets(path string) (Presets, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Presets{}, fmt.Errorf("reading defaults file %s: %w", path, err)
	}
	var p Presets
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&p); err != nil {
		return Presets{}, fmt.Errorf("parsing defaults YAML %s: %w", path, err)
	}
	if p.Kernel != nil {
		if err := p.Kernel.Validate(); err != nil {
			return Presets{}, fmt.Errorf("defaults YAML %s: kernel: %w", path, err)
		}
	}
	return p, nil
}

// kernelConfig returns the preset kernel settings, or the built-in ones.
func (p Presets) kernelConfig() sim.Config {
	if p.Kernel == nil {
		return sim.DefaultConfig()
	}
	return *p.Kernel
}

// carwashPreset returns the named car wash preset. An empty name selects
// "default", falling back to the built-in configuration when the file has
// no such entry.
func (p Presets) carwashPreset(name string) (carwash.Config, error) {
	if cfg, ok := p.Carwash[presetName(name)]; ok {
		return cfg, nil
	}
	if presetName(name) == "default" {
		return carwash.DefaultConfig(), nil
	}
	return carwash.Config{}, fmt.Errorf("unknown carwash preset %q; available: %v", name, sortedKeys(p.Carwash))
}

// cablecarPreset is carwashPreset for the cable car model.
func (p Presets) cablecarPreset(name string) (cablecar.Config, error) {
	if cfg, ok := p.Cablecar[presetName(name)]; ok {
		return cfg, nil
	}
	if presetName(name) == "default" {
		return cablecar.DefaultConfig(), nil
	}
	return cablecar.Config{}, fmt.Errorf("unknown cablecar preset %q; available: %v", name, sortedKeys(p.Cablecar))
}

func presetName(name string) string {
	if name == "" {
		return "default"
	}
	return name
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

package sim

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/janburian/procsim/sim/observability"
	"github.com/janburian/procsim/sim/trace"
)

// Config groups the kernel settings of a Simulation.
//
// The yaml fields can be loaded from a file with LoadConfig; the remaining
// fields are wired in code.
type Config struct {
	// MaxIdleContexts bounds the parked execution contexts kept for reuse
	// (0 = DefaultMaxIdleContexts). Ignored when Pool is set.
	MaxIdleContexts int `yaml:"max_idle_contexts"`
	// TraceLevel selects scheduling trace collection ("none" or "events").
	TraceLevel string `yaml:"trace_level"`
	// TraceMaxEvents caps the recorded trace (0 = unlimited).
	TraceMaxEvents int `yaml:"trace_max_events"`

	// Pool shares execution contexts between sessions. A session never
	// closes a pool it did not create.
	Pool *ContextPool `yaml:"-"`
	// Metrics receives kernel metrics (nil = no-op).
	Metrics observability.MetricsRecorder `yaml:"-"`
	// Spans opens one span per run (nil = no-op).
	Spans observability.SpanManager `yaml:"-"`
}

// DefaultConfig returns the settings used by the CLI when no file is given.
func DefaultConfig() Config {
	return Config{
		MaxIdleContexts: DefaultMaxIdleContexts,
		TraceLevel:      string(trace.TraceLevelNone),
	}
}

// Validate checks the yaml-settable fields.
func (c Config) Validate() error {
	if c.MaxIdleContexts < 0 {
		return fmt.Errorf("max_idle_contexts must be >= 0, got %d", c.MaxIdleContexts)
	}
	if c.TraceMaxEvents < 0 {
		return fmt.Errorf("trace_max_events must be >= 0, got %d", c.TraceMaxEvents)
	}
	if c.TraceLevel != "" && !trace.IsValidTraceLevel(c.TraceLevel) {
		return fmt.Errorf("unknown trace_level %q; valid options: none, events", c.TraceLevel)
	}
	return nil
}

// LoadConfig reads a kernel config from a YAML file. Unknown keys are
// rejected.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading kernel config: %w", err)
	}
	cfg := DefaultConfig()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("parsing kernel config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

package trace

import (
	"encoding/json"
	"fmt"
	"io"
)

// TraceLevel controls the verbosity of scheduling traces.
type TraceLevel string

const (
	// TraceLevelNone disables tracing (zero overhead).
	TraceLevelNone TraceLevel = "none"
	// TraceLevelEvents captures every scheduling primitive, handoff and termination.
	TraceLevelEvents TraceLevel = "events"
)

// validTraceLevels maps accepted trace level strings.
var validTraceLevels = map[TraceLevel]bool{
	TraceLevelNone:   true,
	TraceLevelEvents: true,
	"":               true, // empty defaults to none
}

// IsValidTraceLevel returns true if the given level string is a recognized trace level.
func IsValidTraceLevel(level string) bool {
	return validTraceLevels[TraceLevel(level)]
}

// TraceConfig controls trace collection behavior.
type TraceConfig struct {
	Level TraceLevel
	// MaxEvents bounds the number of kept records; 0 keeps everything.
	MaxEvents int
}

// SimulationTrace collects scheduling records during one or more runs of a simulation.
type SimulationTrace struct {
	Config  TraceConfig
	Events  []EventRecord
	Dropped int // records discarded because MaxEvents was reached
	seq     int
}

// NewSimulationTrace creates a SimulationTrace ready for recording.
func NewSimulationTrace(config TraceConfig) *SimulationTrace {
	return &SimulationTrace{
		Config: config,
		Events: make([]EventRecord, 0),
	}
}

// Enabled reports whether records are collected. Safe on a nil trace.
func (st *SimulationTrace) Enabled() bool {
	return st != nil && st.Config.Level == TraceLevelEvents
}

// Record appends a record, assigning its sequence number.
func (st *SimulationTrace) Record(record EventRecord) {
	if !st.Enabled() {
		return
	}
	st.seq++
	record.Seq = st.seq
	if st.Config.MaxEvents > 0 && len(st.Events) >= st.Config.MaxEvents {
		st.Dropped++
		return
	}
	st.Events = append(st.Events, record)
}

// WriteJSON writes the records as JSON lines.
func (st *SimulationTrace) WriteJSON(w io.Writer) error {
	if st == nil {
		return nil
	}
	enc := json.NewEncoder(w)
	for i := range st.Events {
		if err := enc.Encode(&st.Events[i]); err != nil {
			return fmt.Errorf("writing trace record %d: %w", st.Events[i].Seq, err)
		}
	}
	return nil
}

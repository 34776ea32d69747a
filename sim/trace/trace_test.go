package trace

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestSimulationTrace_Record_AppendsWithSequence(t *testing.T) {
	// GIVEN a trace configured for events
	st := NewSimulationTrace(TraceConfig{Level: TraceLevelEvents})

	// WHEN two records are added
	st.Record(EventRecord{Time: 0, Op: OpStart, Process: "main#1"})
	st.Record(EventRecord{Time: 2.5, Op: OpHold, Process: "main#1", Detail: "until 2.5"})

	// THEN both are kept in order with increasing sequence numbers
	if len(st.Events) != 2 {
		t.Fatalf("expected 2 records, got %d", len(st.Events))
	}
	if st.Events[0].Seq != 1 || st.Events[1].Seq != 2 {
		t.Errorf("expected seq 1,2, got %d,%d", st.Events[0].Seq, st.Events[1].Seq)
	}
	if st.Events[1].Op != OpHold {
		t.Errorf("expected op hold, got %s", st.Events[1].Op)
	}
}

func TestSimulationTrace_Disabled_RecordsNothing(t *testing.T) {
	st := NewSimulationTrace(TraceConfig{Level: TraceLevelNone})
	st.Record(EventRecord{Op: OpStart})
	if len(st.Events) != 0 {
		t.Errorf("expected no records at level none, got %d", len(st.Events))
	}

	var nilTrace *SimulationTrace
	if nilTrace.Enabled() {
		t.Error("nil trace must report disabled")
	}
	nilTrace.Record(EventRecord{Op: OpStart}) // must not panic
}

func TestSimulationTrace_MaxEvents_DropsOverflow(t *testing.T) {
	st := NewSimulationTrace(TraceConfig{Level: TraceLevelEvents, MaxEvents: 2})
	for i := 0; i < 5; i++ {
		st.Record(EventRecord{Op: OpHold})
	}
	if len(st.Events) != 2 {
		t.Fatalf("expected 2 kept records, got %d", len(st.Events))
	}
	if st.Dropped != 3 {
		t.Errorf("expected 3 dropped, got %d", st.Dropped)
	}
}

func TestSimulationTrace_WriteJSON_OneObjectPerLine(t *testing.T) {
	st := NewSimulationTrace(TraceConfig{Level: TraceLevelEvents})
	st.Record(EventRecord{Time: 1, Op: OpHandoff, Process: "a#1", Target: "b#2"})
	st.Record(EventRecord{Time: 1, Op: OpTerminate, Process: "b#2"})

	var buf bytes.Buffer
	if err := st.WriteJSON(&buf); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), buf.String())
	}
	var rec EventRecord
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("line 1 is not JSON: %v", err)
	}
	if rec.Target != "b#2" || rec.Op != OpHandoff {
		t.Errorf("unexpected first record %+v", rec)
	}
	if strings.Contains(lines[1], "target") {
		t.Errorf("empty target must be omitted: %s", lines[1])
	}
}

func TestIsValidTraceLevel(t *testing.T) {
	for level, want := range map[string]bool{"": true, "none": true, "events": true, "decisions": false} {
		if got := IsValidTraceLevel(level); got != want {
			t.Errorf("IsValidTraceLevel(%q) = %v, want %v", level, got, want)
		}
	}
}

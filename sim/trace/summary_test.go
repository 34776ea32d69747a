package trace

import (
	"testing"
)

func TestSummarize_NilTrace_ReturnsZeroSummary(t *testing.T) {
	s := Summarize(nil)
	if s == nil {
		t.Fatal("expected non-nil summary")
	}
	if s.TotalEvents != 0 || len(s.OpDistribution) != 0 {
		t.Errorf("expected empty summary, got %+v", s)
	}
}

func TestSummarize_CountsByOp(t *testing.T) {
	// GIVEN a trace of a short run
	st := NewSimulationTrace(TraceConfig{Level: TraceLevelEvents})
	for _, r := range []EventRecord{
		{Time: 0, Op: OpStart, Process: "main#1"},
		{Time: 0, Op: OpActivate, Process: "main#1", Target: "w#2"},
		{Time: 0, Op: OpHandoff, Process: "main#1", Target: "w#2"},
		{Time: 0, Op: OpStart, Process: "w#2"},
		{Time: 0, Op: OpPassivate, Process: "w#2"},
		{Time: 0, Op: OpHandoff, Process: "w#2", Target: "main#1"},
		{Time: 4, Op: OpTerminate, Process: "main#1"},
		{Time: 4, Op: OpShutdown, Process: "main#1"},
		{Time: 4, Op: OpUnwind, Process: "w#2"},
	} {
		st.Record(r)
	}

	// WHEN summarized
	s := Summarize(st)

	// THEN counts, processes and final time are aggregated
	if s.TotalEvents != 9 {
		t.Errorf("TotalEvents = %d, want 9", s.TotalEvents)
	}
	if s.Handoffs != 2 || s.Terminations != 1 || s.Unwound != 1 {
		t.Errorf("handoffs/terminations/unwound = %d/%d/%d, want 2/1/1", s.Handoffs, s.Terminations, s.Unwound)
	}
	if s.UniqueProcesses != 2 {
		t.Errorf("UniqueProcesses = %d, want 2", s.UniqueProcesses)
	}
	if s.FinalTime != 4 {
		t.Errorf("FinalTime = %g, want 4", s.FinalTime)
	}
	if s.OpDistribution[OpStart] != 2 {
		t.Errorf("OpDistribution[start] = %d, want 2", s.OpDistribution[OpStart])
	}
	if s.HandoffsReceived["w#2"] != 1 || s.HandoffsReceived["main#1"] != 1 {
		t.Errorf("unexpected HandoffsReceived %v", s.HandoffsReceived)
	}
}

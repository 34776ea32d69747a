package trace

// TraceSummary aggregates statistics from a SimulationTrace.
type TraceSummary struct {
	TotalEvents      int
	Handoffs         int
	Terminations     int
	Unwound          int
	UniqueProcesses  int
	FinalTime        float64
	OpDistribution   map[Op]int
	HandoffsReceived map[string]int // process → number of times it received control
}

// Summarize computes aggregate statistics from a SimulationTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(st *SimulationTrace) *TraceSummary {
	summary := &TraceSummary{
		OpDistribution:   make(map[Op]int),
		HandoffsReceived: make(map[string]int),
	}
	if st == nil {
		return summary
	}

	processes := make(map[string]bool)
	summary.TotalEvents = len(st.Events)
	for _, e := range st.Events {
		summary.OpDistribution[e.Op]++
		if e.Process != "" {
			processes[e.Process] = true
		}
		if e.Time > summary.FinalTime {
			summary.FinalTime = e.Time
		}
		switch e.Op {
		case OpHandoff:
			summary.Handoffs++
			if e.Target != "" {
				summary.HandoffsReceived[e.Target]++
			}
		case OpTerminate:
			summary.Terminations++
		case OpUnwind:
			summary.Unwound++
		}
	}
	summary.UniqueProcesses = len(processes)

	return summary
}

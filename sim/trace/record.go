// Package trace provides scheduling-trace recording for simulation runs.
// It has no dependencies on sim and stores plain data types only.
package trace

// Op names a traced kernel operation.
type Op string

const (
	OpStart     Op = "start"     // a process got its execution context and began its actions
	OpActivate  Op = "activate"  // activate or reactivate placed a process
	OpHold      Op = "hold"      // current process held
	OpPassivate Op = "passivate" // current process left the event list
	OpWait      Op = "wait"      // current process joined a queue and went passive
	OpCancel    Op = "cancel"    // a process was taken out of the event list
	OpHandoff   Op = "handoff"   // control moved between execution contexts
	OpTerminate Op = "terminate" // a process finished its life cycle
	OpUnwind    Op = "unwind"    // a process was unwound by the shutdown cascade
	OpShutdown  Op = "shutdown"  // the shutdown cascade began
	OpFail      Op = "fail"      // the run failed
	OpEnd       Op = "end"       // run finished
)

// EventRecord captures a single kernel operation.
type EventRecord struct {
	Seq     int     `json:"seq"`
	Time    float64 `json:"time"`
	Op      Op      `json:"op"`
	Process string  `json:"process,omitempty"` // process performing or subject to the op
	Target  string  `json:"target,omitempty"`  // second process involved (handoff destination, before/after reference)
	Detail  string  `json:"detail,omitempty"`
}

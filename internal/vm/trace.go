package vm

// TraceStrategy is the black-box native trace compiler interface
// (spec.md §4.5, out of scope: "the VM exposes two hooks ... and the trace
// compiler is otherwise a black box"). The Machine stores the installed
// strategy (SetTraceStrategy), but its OP_FOR_COUNT/OP_FOR_COUNT_STEP/
// OP_FOR_LOOP handlers do not call these hooks, so every loop is
// interpreted whichever strategy is installed; a compliant VM
// must behave identically whether or not a real trace compiler is plugged
// in, so the zero value here is a permanently-cold, always-miss strategy.
type TraceStrategy interface {
	// Counter is called once per loop-header execution and returns true
	// once the header is considered "hot".
	Counter(headerIP int) (hot bool)
	// Lookup returns a compiled trace handle for headerIP, or nil if none
	// exists.
	Lookup(headerIP int) interface{}
	// Run executes a compiled trace handle for iterationCount iterations
	// starting from the frame base bp, returning the new instruction
	// pointer to resume interpretation at.
	Run(handle interface{}, bp int, iterationCount int) int
}

// nullTraceStrategy never reports a loop header as hot and never has a
// compiled trace to look up, so every loop is always interpreted. This is
// the contractually valid "no trace compiler plugged in" implementation
// (spec.md §1: the trace compiler is a black-box external collaborator).
type nullTraceStrategy struct{}

func (nullTraceStrategy) Counter(headerIP int) bool          { return false }
func (nullTraceStrategy) Lookup(headerIP int) interface{}    { return nil }
func (nullTraceStrategy) Run(handle interface{}, bp, n int) int {
	panic("vm: Run called on null trace strategy; Lookup should never return non-nil")
}

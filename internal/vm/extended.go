package vm

import "github.com/vexlang/vex/internal/chunk"

// execExtended implements the secondary opcode space introduced by
// OP_EXTENDED (spec.md §4.3): debugger hooks and the explicit GC trigger,
// none of which belong in the hot primary-opcode switch.
func (m *Machine) execExtended(sub chunk.ExtOp) error {
	switch sub {
	case chunk.ExtDebugBreak:
		if m.debug {
			m.traceInstruction()
		}
	case chunk.ExtGCCollect:
		m.collectGarbage()
	case chunk.ExtAssert:
		cond := m.pop()
		if !cond.Truthy() {
			return m.runtimeErrorf("assertion failed")
		}
	default:
		return m.runtimeErrorf("unknown extended opcode %d", sub)
	}
	return nil
}

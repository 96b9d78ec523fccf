package vm

import "github.com/vexlang/vex/internal/object"

// execCallBuiltin implements OP_CALL_BUILTIN packed (spec.md §4's builtin
// dispatch group): the packed uint16 operand splits into a builtin table
// index (high byte) and the argument count actually pushed by the caller
// (low byte). A mismatch against the table's declared arity is a malformed
// call, not a Vex-level exception (spec.md §7).
func (m *Machine) execCallBuiltin(packed int) error {
	id := packed >> 8
	argc := packed & 0xFF

	if id < 0 || id >= len(builtinTable) {
		return m.runtimeErrorf("unknown builtin id %d", id)
	}
	entry := builtinTable[id]
	if argc != entry.arity {
		return m.runtimeErrorf("builtin '%s' expects %d argument(s), got %d", entry.name, entry.arity, argc)
	}

	args := make([]object.Value, argc)
	copy(args, m.stack[m.sp-argc:m.sp])
	m.sp -= argc

	result, err := entry.fn(m, args)
	if err != nil {
		return wrapRuntimeError(err, m.stackTrace(), "builtin '%s' failed", entry.name)
	}
	return m.push(result)
}

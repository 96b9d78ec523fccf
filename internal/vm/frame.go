package vm

import "github.com/vexlang/vex/internal/object"

// CallFrame is one activation record (spec.md §4.2). It names either a bare
// Function or a Closure wrapping one; Fn is always non-nil so code_start and
// arity lookups don't need a branch.
type CallFrame struct {
	Fn      *object.Function
	Closure *object.Closure // nil for a plain (non-closing) function call
	IP       int            // instruction pointer into the shared chunk
	BP       int            // base slot pointer: frame's slot 0 is the callee itself
	IsInit   bool
	Gen      *object.Generator // non-nil when this frame is a resumed generator body
}

// Handler is one entry of the exception-handler stack (spec.md §4.8).
type Handler struct {
	CatchIP         int
	SavedSP         int
	SavedFrameCount int
}

// captureUpvalue implements the open-upvalue protocol's capture(slot)
// (spec.md §4.2): find-or-insert into the decreasing-location linked list,
// ordered by Slot (spec.md §3.3).
func (m *Machine) captureUpvalue(slot int) *object.Upvalue {
	var prev *object.Upvalue
	cur := m.openUpvalues
	for cur != nil && cur.Slot > slot {
		prev = cur
		cur = cur.NextOpen
	}
	if cur != nil && cur.Slot == slot {
		return cur
	}
	created := m.heap.NewUpvalue(slot, &m.stack[slot])
	created.NextOpen = cur
	if prev == nil {
		m.openUpvalues = created
	} else {
		prev.NextOpen = created
	}
	return created
}

// closeUpvalues implements close(boundary) (spec.md §4.2): every open
// upvalue whose Slot >= boundary is closed and unlinked.
func (m *Machine) closeUpvalues(boundary int) {
	for m.openUpvalues != nil && m.openUpvalues.Slot >= boundary {
		uv := m.openUpvalues
		uv.Close()
		m.openUpvalues = uv.NextOpen
		uv.NextOpen = nil
	}
}

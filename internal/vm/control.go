package vm

import (
	"github.com/vexlang/vex/internal/chunk"
	"github.com/vexlang/vex/internal/object"
)

// execFusedCompareJump implements the fused comparison-and-jump opcodes
// (spec.md §4.5): pop two operands, compare, consume the jump offset, and
// leave no boolean on the stack.
func (m *Machine) execFusedCompareJump(op chunk.Op) error {
	f := m.frame()
	offset := m.readUint16()
	b, a := m.pop(), m.pop()
	if !a.IsNumber() || !b.IsNumber() {
		return m.runtimeErrorf("operands of '%s' must be numeric, got %s and %s", op, a.TypeName(), b.TypeName())
	}
	an, bn := a.AsNumber(), b.AsNumber()
	var cond bool
	switch op {
	case chunk.OpLtJmpFalse:
		cond = an < bn
	case chunk.OpLeJmpFalse:
		cond = an <= bn
	case chunk.OpGtJmpFalse:
		cond = an > bn
	case chunk.OpGeJmpFalse:
		cond = an >= bn
	case chunk.OpEqJmpFalse:
		cond = object.Equal(a, b)
	case chunk.OpNeqJmpFalse:
		cond = !object.Equal(a, b)
	}
	if !cond {
		f.IP += int(offset)
	}
	return nil
}

func (m *Machine) execFusedCompareJumpII(op chunk.Op) {
	f := m.frame()
	offset := m.readUint16()
	b, a := m.pop(), m.pop()
	ai, bi := a.AsInt(), b.AsInt()
	var cond bool
	switch op {
	case chunk.OpLtJmpFalseII:
		cond = ai < bi
	case chunk.OpLeJmpFalseII:
		cond = ai <= bi
	case chunk.OpGtJmpFalseII:
		cond = ai > bi
	case chunk.OpGeJmpFalseII:
		cond = ai >= bi
	case chunk.OpEqJmpFalseII:
		cond = ai == bi
	}
	if !cond {
		f.IP += int(offset)
	}
}

// execForCount implements OP_FOR_COUNT (spec.md §4.5): raw-integer counted
// loop, step +1, exclusive end.
func (m *Machine) execForCount() {
	f := m.frame()
	counterSlot := int(m.readByte())
	endSlot := int(m.readByte())
	varSlot := int(m.readByte())
	offset := m.readUint16()

	counter := m.stack[f.BP+counterSlot].AsInt()
	end := m.stack[f.BP+endSlot].AsInt()
	if counter >= end {
		f.IP += int(offset)
		return
	}
	m.stack[f.BP+varSlot] = object.Int(counter)
	m.stack[f.BP+counterSlot] = object.Int(counter + 1)
}

// execForCountStep implements OP_FOR_COUNT_STEP (spec.md §4.5, §8 law 12):
// sign-aware inclusive termination; step 0 terminates immediately.
func (m *Machine) execForCountStep() {
	f := m.frame()
	counterSlot := int(m.readByte())
	endSlot := int(m.readByte())
	stepSlot := int(m.readByte())
	varSlot := int(m.readByte())
	offset := m.readUint16()

	counter := m.stack[f.BP+counterSlot].AsInt()
	end := m.stack[f.BP+endSlot].AsInt()
	step := m.stack[f.BP+stepSlot].AsInt()

	done := step == 0 ||
		(step > 0 && counter > end) ||
		(step < 0 && counter < end)
	if done {
		f.IP += int(offset)
		return
	}
	m.stack[f.BP+varSlot] = object.Int(counter)
	m.stack[f.BP+counterSlot] = object.Int(counter + step)
}

// execForLoop implements OP_FOR_LOOP (spec.md §4.5): polymorphic iteration
// over Range (advance current), Array (advance index), and String (advance
// byte offset, one-character substring per step).
func (m *Machine) execForLoop() error {
	f := m.frame()
	iterSlot := int(m.readByte())
	idxSlot := int(m.readByte())
	varSlot := int(m.readByte())
	offset := m.readUint16()

	iterVal := m.stack[f.BP+iterSlot]
	if !iterVal.IsObj() {
		return m.runtimeErrorf("for-loop target is not iterable: %s", iterVal.TypeName())
	}
	o := iterVal.AsObj()

	if r, ok := object.AsRange(o); ok {
		v, more := r.Next()
		if !more {
			f.IP += int(offset)
			return nil
		}
		m.stack[f.BP+varSlot] = object.Int(v)
		return nil
	}

	idx := m.stack[f.BP+idxSlot].AsInt()

	if arr, ok := object.AsArray(o); ok {
		if int(idx) >= len(arr.Elements) {
			f.IP += int(offset)
			return nil
		}
		m.stack[f.BP+varSlot] = arr.Elements[idx]
		m.stack[f.BP+idxSlot] = object.Int(idx + 1)
		return nil
	}

	if s, ok := object.AsString(o); ok {
		if int(idx) >= len(s.Value) {
			f.IP += int(offset)
			return nil
		}
		r, size := decodeRune(s.Value[idx:])
		sub := m.heap.NewString(string(r))
		m.stack[f.BP+varSlot] = object.Obj(&sub.Obj)
		m.stack[f.BP+idxSlot] = object.Int(idx + int32(size))
		return nil
	}

	return m.runtimeErrorf("for-loop target is not iterable: %s", object.TypeName(o))
}

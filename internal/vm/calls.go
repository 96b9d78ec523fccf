package vm

import (
	"github.com/vexlang/vex/internal/object"
)

// calleeAt returns the Value at stack depth `depth`; with depth argc that
// is the callee slot, which call then resolves to a Class (constructor),
// BoundMethod, Closure or Function.
func (m *Machine) calleeAt(depth int) object.Value {
	return m.peek(depth)
}

// call implements OP_CALL (spec.md §4.6): the callee may be a plain
// function, a closure, a class (construction, §4.7), or a bound method.
func (m *Machine) call(argc int) error {
	callee := m.calleeAt(argc)
	if !callee.IsObj() {
		return m.runtimeErrorf("value is not callable: %s", callee.TypeName())
	}
	o := callee.AsObj()

	if cls, ok := object.AsClass(o); ok {
		return m.construct(cls, argc)
	}
	if bm, ok := object.AsBoundMethod(o); ok {
		// Replace the BoundMethod on the stack with its receiver, so the
		// frame's slot 0 is the receiver as the callee convention expects.
		m.stack[m.sp-1-argc] = bm.Receiver
		return m.invokeClosure(bm.Method, argc, false)
	}
	if cl, ok := object.AsClosure(o); ok {
		return m.invokeClosure(cl, argc, false)
	}
	if fn, ok := object.AsFunction(o); ok {
		return m.invokeFunction(fn, nil, argc, false)
	}
	return m.runtimeErrorf("value is not callable: %s", object.TypeName(o))
}

func (m *Machine) invokeClosure(cl *object.Closure, argc int, isInit bool) error {
	return m.invokeFunction(cl.Fn, cl, argc, isInit)
}

func (m *Machine) invokeFunction(fn *object.Function, cl *object.Closure, argc int, isInit bool) error {
	if argc != fn.Arity {
		return m.runtimeErrorf("function '%s' expects %d argument(s), got %d", fn.Name, fn.Arity, argc)
	}
	if m.frameCount >= framesCapacity {
		return m.runtimeErrorf("call-frame stack overflow")
	}
	bp := m.sp - argc - 1
	// Reserve local slots beyond the arguments.
	for m.sp < bp+1+fn.LocalsCount {
		m.stack[m.sp] = object.Nil
		m.sp++
	}
	m.frames[m.frameCount] = CallFrame{Fn: fn, Closure: cl, IP: fn.CodeStart, BP: bp, IsInit: isInit}
	m.frameCount++
	return nil
}

// tailCall implements OP_TAIL_CALL (spec.md §4.6, §8 laws 8): instead of
// pushing a new frame, close upvalues above the current base, slide the
// callee+args down to the current frame's base, and jump in place.
func (m *Machine) tailCall(argc int) error {
	callee := m.calleeAt(argc)
	if !callee.IsObj() {
		return m.runtimeErrorf("value is not callable: %s", callee.TypeName())
	}
	o := callee.AsObj()

	var fn *object.Function
	var cl *object.Closure
	if c, ok := object.AsClosure(o); ok {
		cl, fn = c, c.Fn
	} else if plain, ok := object.AsFunction(o); ok {
		fn = plain
	} else {
		// Classes/bound methods in tail position are uncommon; fall back
		// to a regular call (still correct, just not frame-reusing).
		return m.call(argc)
	}
	if argc != fn.Arity {
		return m.runtimeErrorf("function '%s' expects %d argument(s), got %d", fn.Name, fn.Arity, argc)
	}

	f := m.frame()
	m.closeUpvalues(f.BP)

	srcBase := m.sp - argc - 1
	copy(m.stack[f.BP:f.BP+argc+1], m.stack[srcBase:srcBase+argc+1])
	m.sp = f.BP + argc + 1
	for m.sp < f.BP+1+fn.LocalsCount {
		m.stack[m.sp] = object.Nil
		m.sp++
	}

	f.Fn = fn
	f.Closure = cl
	f.IP = fn.CodeStart
	return nil
}

// doReturn implements OP_RETURN (spec.md §4.6). Returns done=true when the
// top-level frame has returned, signaling Run to stop.
func (m *Machine) doReturn() (bool, error) {
	result := m.pop()
	f := m.frame()
	if f.IsInit {
		result = m.stack[f.BP]
	}
	m.closeUpvalues(f.BP)

	m.frameCount--
	m.sp = f.BP

	if m.frameCount == 0 {
		m.push(result)
		return true, nil
	}
	if err := m.push(result); err != nil {
		return true, err
	}
	return false, nil
}

// makeClosure implements OP_CLOSURE (spec.md §4.6): materialize a closure
// over the referenced function, capturing each upvalue either from the
// current frame's locals or from the enclosing closure's own upvalues.
func (m *Machine) makeClosure() {
	f := m.frame()
	idx := int(m.readByte())
	fnVal := m.chunk.Constants[idx]
	fn, _ := object.AsFunction(fnVal.AsObj())

	upvalues := make([]*object.Upvalue, fn.UpvalueCount)
	for i := 0; i < fn.UpvalueCount; i++ {
		isLocal := m.readByte()
		index := int(m.readByte())
		if isLocal != 0 {
			upvalues[i] = m.captureUpvalue(f.BP + index)
		} else {
			upvalues[i] = f.Closure.Upvalues[index]
		}
	}
	cl := m.heap.NewClosure(fn, upvalues)
	m.push(object.Obj(&cl.Obj))
}

package vm

import "github.com/vexlang/vex/internal/object"

// execMakeGenerator implements OP_GENERATOR (spec.md §4.9): allocates a
// Generator wrapping the closure atop the stack. The closure's body is not
// run until the first OP_GEN_NEXT/OP_GEN_SEND.
func (m *Machine) execMakeGenerator() error {
	v := m.pop()
	if !v.IsObj() {
		return m.runtimeErrorf("generator source must be a closure")
	}
	cl, ok := object.AsClosure(v.AsObj())
	if !ok {
		return m.runtimeErrorf("generator source must be a closure, got %s", object.TypeName(v.AsObj()))
	}
	g := m.heap.NewGenerator(cl)
	return m.push(object.Obj(&g.Obj))
}

// execGenResume implements both OP_GEN_NEXT and OP_GEN_SEND (spec.md §4.9):
// resume by pushing a frame that restores the generator's saved IP and
// locals (or starts fresh, on first resume), running until the next yield
// or return. Unlike the teacher's source, which the spec flags as an
// incomplete yield-passthrough, this performs a real suspend/resume by
// running a nested dispatch loop bounded to the generator's own frame.
func (m *Machine) execGenResume(sent object.Value) error {
	genVal := m.pop()
	if !genVal.IsObj() {
		return m.runtimeErrorf("not a generator")
	}
	g, ok := object.AsGenerator(genVal.AsObj())
	if !ok {
		return m.runtimeErrorf("not a generator: %s", object.TypeName(genVal.AsObj()))
	}
	if g.State == object.GenClosed {
		return m.push(object.Nil)
	}
	if g.State == object.GenRunning {
		return m.runtimeErrorf("generator is already running")
	}

	if m.frameCount >= framesCapacity {
		return m.runtimeErrorf("call-frame stack overflow")
	}

	bp := m.sp
	ip := g.Closure.Fn.CodeStart
	if g.State == object.GenSuspended {
		ip = g.SavedIP
		for _, v := range g.SavedLocals {
			m.stack[m.sp] = v
			m.sp++
		}
	} else {
		for i := 0; i < g.Closure.Fn.LocalsCount; i++ {
			m.stack[m.sp] = object.Nil
			m.sp++
		}
	}
	g.SentValue = sent
	g.State = object.GenRunning

	depth := m.frameCount
	m.frames[m.frameCount] = CallFrame{Fn: g.Closure.Fn, Closure: g.Closure, IP: ip, BP: bp, Gen: g}
	m.frameCount++

	// Run until this generator's frame (and anything it calls) unwinds
	// back below depth: either a yield (handled in execYield, which pops
	// the frame itself) or a normal return of the generator body.
	for m.frameCount > depth {
		if m.debug {
			m.traceInstruction()
		}
		done, err := m.step()
		if err != nil {
			return err
		}
		if done {
			break
		}
	}

	// If the loop exited because the generator body returned normally
	// (not via yield), doReturn already pushed the return value and the
	// generator is done.
	if g.State == object.GenRunning {
		g.State = object.GenClosed
	}
	return nil
}

// execYield implements OP_YIELD (spec.md §4.9): saves IP and the frame's
// live locals into the generator, pops the frame, and pushes the yielded
// value for the resumer.
func (m *Machine) execYield() error {
	f := m.frame()
	if f.Gen == nil {
		return m.runtimeErrorf("'yield' used outside of a generator")
	}
	yielded := m.pop()
	g := f.Gen

	g.SavedIP = f.IP
	g.SavedLocals = append([]object.Value(nil), m.stack[f.BP:m.sp]...)
	g.State = object.GenSuspended

	m.closeUpvalues(f.BP)
	m.sp = f.BP
	m.frameCount--
	return m.push(yielded)
}

// execSettle implements OP_RESOLVE / OP_REJECT (spec.md §4.9): pops a
// result value and the promise beneath it, transitioning state.
func (m *Machine) execSettle(state object.PromiseState) {
	result := m.pop()
	pVal := m.pop()
	p, ok := object.AsPromise(pVal.AsObj())
	if !ok {
		return
	}
	if p.State != object.PromisePending {
		return
	}
	p.State = state
	p.Result = result
}

// execAwait implements OP_AWAIT (spec.md §4.9): synchronous unwrap. A
// RESOLVED promise yields its result; REJECTED raises an exception (via
// the normal throw path); PENDING yields nil (no scheduler in the core).
func (m *Machine) execAwait() error {
	v := m.pop()
	if !v.IsObj() {
		return m.push(v)
	}
	p, ok := object.AsPromise(v.AsObj())
	if !ok {
		return m.push(v)
	}
	switch p.State {
	case object.PromiseResolved:
		return m.push(p.Result)
	case object.PromiseRejected:
		if err := m.push(p.Result); err != nil {
			return err
		}
		return m.execThrow()
	default:
		return m.push(object.Nil)
	}
}

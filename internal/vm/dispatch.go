package vm

import (
	"fmt"

	"github.com/vexlang/vex/internal/chunk"
	"github.com/vexlang/vex/internal/object"
)

// readByte/readUint16 decode the operand at the current frame's IP and
// advance it (spec.md §4.3: 1-byte slot/count operands, big-endian 2-byte
// jump/constant operands).
func (m *Machine) readByte() byte {
	f := m.frame()
	b := m.chunk.Code[f.IP]
	f.IP++
	return b
}

func (m *Machine) readUint16() uint16 {
	f := m.frame()
	v := m.chunk.ReadUint16(f.IP)
	f.IP += 2
	return v
}

func (m *Machine) readConstant() object.Value {
	return m.chunk.Constants[m.readByte()]
}

func (m *Machine) readConstantLong() object.Value {
	return m.chunk.Constants[m.readUint16()]
}

// dispatch is the sequential fetch-decode-execute loop (spec.md §4.3).
func (m *Machine) dispatch() error {
	for {
		if m.debug {
			m.traceInstruction()
		}
		done, err := m.step()
		if err != nil {
			return err
		}
		if done {
			return nil
		}
	}
}

// step executes a single instruction at the current frame's IP. It returns
// done=true when the top-level program has finished (OP_HALT, or OP_RETURN
// unwinding frame 0) so dispatch can stop; execGenResume reuses step to run
// a generator body inside its own bounded loop.
func (m *Machine) step() (bool, error) {
	f := m.frame()
	op := chunk.Op(m.readByte())

	switch op {
	case chunk.OpConstant:
		if err := m.push(m.readConstant()); err != nil {
			return false, m.runtimeErrorf("%s", err)
		}

	case chunk.OpConstantLong:
		if err := m.push(m.readConstantLong()); err != nil {
			return false, m.runtimeErrorf("%s", err)
		}

	case chunk.OpNil:
		m.push(object.Nil)
	case chunk.OpTrue:
		m.push(object.True)
	case chunk.OpFalse:
		m.push(object.False)
	case chunk.OpPop:
		m.pop()
	case chunk.OpDup:
		m.push(m.peek(0))

	case chunk.OpGetLocal:
		slot := int(m.readByte())
		m.push(m.stack[f.BP+slot])
	case chunk.OpSetLocal:
		slot := int(m.readByte())
		m.stack[f.BP+slot] = m.peek(0)

	case chunk.OpGetGlobal:
		name, ok := object.AsString(m.readConstantLong().AsObj())
		if !ok {
			return false, m.runtimeErrorf("internal error: global name is not a string")
		}
		v, found := m.globals.Get(name.Value)
		if !found {
			return false, m.runtimeErrorf("undefined global '%s'", name.Value)
		}
		m.push(v)
	case chunk.OpSetGlobal:
		name, _ := object.AsString(m.readConstantLong().AsObj())
		if _, found := m.globals.Get(name.Value); !found {
			return false, m.runtimeErrorf("undefined global '%s'", name.Value)
		}
		m.globals.Set(name.Value, m.peek(0))
	case chunk.OpDefineGlobal:
		name, _ := object.AsString(m.readConstantLong().AsObj())
		m.globals.Set(name.Value, m.pop())

	case chunk.OpGetUpvalue:
		slot := int(m.readByte())
		m.push(f.Closure.Upvalues[slot].Get())
	case chunk.OpSetUpvalue:
		slot := int(m.readByte())
		f.Closure.Upvalues[slot].Set(m.peek(0))
	case chunk.OpCloseUpvalue:
		m.closeUpvalues(m.sp - 1)
		m.pop()

	case chunk.OpAdd, chunk.OpSub, chunk.OpMul, chunk.OpDiv, chunk.OpMod, chunk.OpPow,
		chunk.OpBAnd, chunk.OpBOr, chunk.OpBXor, chunk.OpShl, chunk.OpShr:
		if err := m.execArith(op); err != nil {
			return false, err
		}
	case chunk.OpAddII, chunk.OpSubII, chunk.OpMulII:
		m.execArithII(op)

	case chunk.OpNegate:
		v := m.pop()
		if v.IsInt() {
			m.push(object.Int(-v.AsInt()))
		} else if v.IsFloat() {
			m.push(object.Float(-v.AsFloat()))
		} else {
			return false, m.runtimeErrorf("operand of unary '-' must be numeric, got %s", v.TypeName())
		}
	case chunk.OpNot:
		m.push(object.Bool(!m.pop().Truthy()))
	case chunk.OpBNot:
		v := m.pop()
		m.push(object.Int(^v.AsInt32Coerced()))

	case chunk.OpEq:
		b, a := m.pop(), m.pop()
		m.push(object.Bool(object.Equal(a, b)))
	case chunk.OpNeq:
		b, a := m.pop(), m.pop()
		m.push(object.Bool(!object.Equal(a, b)))
	case chunk.OpLt, chunk.OpLe, chunk.OpGt, chunk.OpGe:
		if err := m.execCompare(op); err != nil {
			return false, err
		}
	case chunk.OpLtII, chunk.OpLeII, chunk.OpGtII, chunk.OpGeII, chunk.OpEqII:
		m.execCompareII(op)

	case chunk.OpJump:
		offset := m.readUint16()
		f.IP += int(offset)
	case chunk.OpJumpIfFalse:
		offset := m.readUint16()
		if !m.peek(0).Truthy() {
			f.IP += int(offset)
		}
	case chunk.OpJumpIfTrue:
		offset := m.readUint16()
		if m.peek(0).Truthy() {
			f.IP += int(offset)
		}
	case chunk.OpLoop:
		offset := m.readUint16()
		f.IP -= int(offset)

	case chunk.OpLtJmpFalse, chunk.OpLeJmpFalse, chunk.OpGtJmpFalse, chunk.OpGeJmpFalse,
		chunk.OpEqJmpFalse, chunk.OpNeqJmpFalse:
		if err := m.execFusedCompareJump(op); err != nil {
			return false, err
		}
	case chunk.OpLtJmpFalseII, chunk.OpLeJmpFalseII, chunk.OpGtJmpFalseII,
		chunk.OpGeJmpFalseII, chunk.OpEqJmpFalseII:
		m.execFusedCompareJumpII(op)

	case chunk.OpForCount:
		m.execForCount()
	case chunk.OpForCountStep:
		m.execForCountStep()
	case chunk.OpForLoop:
		if err := m.execForLoop(); err != nil {
			return false, err
		}

	case chunk.OpMakeArray:
		count := int(m.readByte())
		elems := make([]object.Value, count)
		copy(elems, m.stack[m.sp-count:m.sp])
		m.sp -= count
		arr := m.heap.NewArray(elems)
		m.push(object.Obj(&arr.Obj))
	case chunk.OpMakeDict:
		count := int(m.readByte())
		d := m.heap.NewDict()
		base := m.sp - count*2
		for i := 0; i < count; i++ {
			k := m.stack[base+i*2]
			v := m.stack[base+i*2+1]
			ks, ok := object.AsString(k.AsObj())
			if !ok {
				return false, m.runtimeErrorf("dict keys must be strings")
			}
			d.Set(ks.Value, v)
		}
		m.sp = base
		m.push(object.Obj(&d.Obj))
	case chunk.OpMakeRange:
		end := m.pop()
		start := m.pop()
		if !start.IsInt() || !end.IsInt() {
			return false, m.runtimeErrorf("range bounds must be integers")
		}
		r := m.heap.NewRange(start.AsInt(), end.AsInt())
		m.push(object.Obj(&r.Obj))
	case chunk.OpIndexGet:
		if err := m.execIndexGet(); err != nil {
			return false, err
		}
	case chunk.OpIndexSet:
		if err := m.execIndexSet(); err != nil {
			return false, err
		}

	case chunk.OpCall:
		argc := int(m.readByte())
		if err := m.call(argc); err != nil {
			return false, err
		}
	case chunk.OpTailCall:
		argc := int(m.readByte())
		if err := m.tailCall(argc); err != nil {
			return false, err
		}
	case chunk.OpReturn:
		done, err := m.doReturn()
		if err != nil {
			return false, err
		}
		if done {
			return true, nil
		}
	case chunk.OpClosure:
		m.makeClosure()

	case chunk.OpClass:
		idx := int(m.readByte())
		name, _ := object.AsString(m.chunk.Constants[idx].AsObj())
		cls := m.heap.NewClass(name.Value)
		m.push(object.Obj(&cls.Obj))
	case chunk.OpInherit:
		if err := m.execInherit(); err != nil {
			return false, err
		}
	case chunk.OpMethod:
		m.execMethod()
	case chunk.OpField:
		m.execField()
	case chunk.OpSetStatic:
		m.execSetStatic()
	case chunk.OpGetField:
		if err := m.execGetField(); err != nil {
			return false, err
		}
	case chunk.OpSetField:
		if err := m.execSetField(); err != nil {
			return false, err
		}
	case chunk.OpGetFieldIC:
		if err := m.execGetFieldIC(); err != nil {
			return false, err
		}
	case chunk.OpSetFieldIC:
		if err := m.execSetFieldIC(); err != nil {
			return false, err
		}
	case chunk.OpGetFieldPIC:
		if err := m.execGetFieldPIC(); err != nil {
			return false, err
		}
	case chunk.OpSetFieldPIC:
		if err := m.execSetFieldPIC(); err != nil {
			return false, err
		}
	case chunk.OpInvoke:
		if err := m.execInvoke(false); err != nil {
			return false, err
		}
	case chunk.OpInvokeIC:
		if err := m.execInvokeIC(); err != nil {
			return false, err
		}
	case chunk.OpGetSuper:
		if err := m.execGetSuper(); err != nil {
			return false, err
		}
	case chunk.OpSuperInvoke:
		if err := m.execInvoke(true); err != nil {
			return false, err
		}

	case chunk.OpTry:
		offset := m.readUint16()
		if m.handlerCount >= handlerCapMax {
			return false, m.runtimeErrorf("exception handler stack overflow")
		}
		m.handlers[m.handlerCount] = Handler{CatchIP: f.IP + int(offset), SavedSP: m.sp, SavedFrameCount: m.frameCount}
		m.handlerCount++
	case chunk.OpTryEnd:
		m.handlerCount--
	case chunk.OpThrow:
		if err := m.execThrow(); err != nil {
			return false, err
		}
	case chunk.OpCatch:
		m.push(m.exception)
		m.exception = object.Nil

	case chunk.OpGenerator:
		if err := m.execMakeGenerator(); err != nil {
			return false, err
		}
	case chunk.OpGenNext:
		if err := m.execGenResume(object.Nil); err != nil {
			return false, err
		}
	case chunk.OpGenSend:
		sent := m.pop()
		if err := m.execGenResume(sent); err != nil {
			return false, err
		}
	case chunk.OpYield:
		if err := m.execYield(); err != nil {
			return false, err
		}
	case chunk.OpPromise:
		p := m.heap.NewPromise()
		m.push(object.Obj(&p.Obj))
	case chunk.OpResolve:
		m.execSettle(object.PromiseResolved)
	case chunk.OpReject:
		m.execSettle(object.PromiseRejected)
	case chunk.OpAwait:
		if err := m.execAwait(); err != nil {
			return false, err
		}

	case chunk.OpCallBuiltin:
		packed := m.readUint16()
		if err := m.execCallBuiltin(int(packed)); err != nil {
			return false, err
		}

	case chunk.OpPrint:
		fmt.Fprintln(m.stdout, m.pop().String())

	case chunk.OpHalt:
		return true, nil

	case chunk.OpExtended:
		sub := chunk.ExtOp(m.readByte())
		if err := m.execExtended(sub); err != nil {
			return false, err
		}

	default:
		return false, m.runtimeErrorf("unknown opcode %d", op)
	}

	return false, nil
}

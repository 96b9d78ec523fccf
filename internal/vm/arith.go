package vm

import (
	"math"

	"github.com/vexlang/vex/internal/chunk"
	"github.com/vexlang/vex/internal/object"
)

// execArith implements spec.md §4.4's coercing arithmetic opcodes.
// OP_ADD on two strings concatenates; on two integers it stays integer;
// otherwise both operands widen to double.
func (m *Machine) execArith(op chunk.Op) error {
	b, a := m.pop(), m.pop()

	if op == chunk.OpAdd && a.IsObj() && b.IsObj() {
		as, aok := object.AsString(a.AsObj())
		bs, bok := object.AsString(b.AsObj())
		if aok && bok {
			s := m.heap.NewString(as.Value + bs.Value)
			return m.push(object.Obj(&s.Obj))
		}
	}

	if !a.IsNumber() || !b.IsNumber() {
		return m.runtimeErrorf("operands of '%s' must be numeric, got %s and %s", op, a.TypeName(), b.TypeName())
	}

	switch op {
	case chunk.OpAdd, chunk.OpSub, chunk.OpMul:
		if a.IsInt() && b.IsInt() {
			return m.push(object.Int(intOp(op, a.AsInt(), b.AsInt())))
		}
		return m.push(object.Float(floatOp(op, a.AsNumber(), b.AsNumber())))
	case chunk.OpDiv:
		if a.IsInt() && b.IsInt() {
			if b.AsInt() == 0 {
				return m.runtimeErrorf("division by zero")
			}
			return m.push(object.Int(a.AsInt() / b.AsInt()))
		}
		return m.push(object.Float(a.AsNumber() / b.AsNumber()))
	case chunk.OpMod:
		ai, bi := a.AsInt32Coerced(), b.AsInt32Coerced()
		if bi == 0 {
			return m.runtimeErrorf("modulo by zero")
		}
		return m.push(object.Int(ai % bi))
	case chunk.OpPow:
		return m.push(object.Float(math.Pow(a.AsNumber(), b.AsNumber())))
	case chunk.OpBAnd:
		return m.push(object.Int(a.AsInt32Coerced() & b.AsInt32Coerced()))
	case chunk.OpBOr:
		return m.push(object.Int(a.AsInt32Coerced() | b.AsInt32Coerced()))
	case chunk.OpBXor:
		return m.push(object.Int(a.AsInt32Coerced() ^ b.AsInt32Coerced()))
	case chunk.OpShl:
		return m.push(object.Int(a.AsInt32Coerced() << uint(b.AsInt32Coerced()&31)))
	case chunk.OpShr:
		return m.push(object.Int(a.AsInt32Coerced() >> uint(b.AsInt32Coerced()&31)))
	}
	return m.runtimeErrorf("unreachable arithmetic opcode %s", op)
}

func intOp(op chunk.Op, a, b int32) int32 {
	switch op {
	case chunk.OpAdd:
		return a + b
	case chunk.OpSub:
		return a - b
	case chunk.OpMul:
		return a * b
	}
	return 0
}

func floatOp(op chunk.Op, a, b float64) float64 {
	switch op {
	case chunk.OpAdd:
		return a + b
	case chunk.OpSub:
		return a - b
	case chunk.OpMul:
		return a * b
	}
	return 0
}

// execArithII implements the non-coercing integer-specialized variants
// (spec.md §3.3, §4.4): no type checks, undefined-but-memory-safe on a
// violated precondition.
func (m *Machine) execArithII(op chunk.Op) {
	b, a := m.pop(), m.pop()
	ai, bi := a.AsInt(), b.AsInt()
	switch op {
	case chunk.OpAddII:
		m.push(object.Int(ai + bi))
	case chunk.OpSubII:
		m.push(object.Int(ai - bi))
	case chunk.OpMulII:
		m.push(object.Int(ai * bi))
	}
}

// execCompare implements spec.md §4.4's relational comparisons, which
// coerce both operands to numeric.
func (m *Machine) execCompare(op chunk.Op) error {
	b, a := m.pop(), m.pop()
	if !a.IsNumber() || !b.IsNumber() {
		return m.runtimeErrorf("operands of '%s' must be numeric, got %s and %s", op, a.TypeName(), b.TypeName())
	}
	an, bn := a.AsNumber(), b.AsNumber()
	m.push(object.Bool(compareNum(op, an, bn)))
	return nil
}

func compareNum(op chunk.Op, a, b float64) bool {
	switch op {
	case chunk.OpLt:
		return a < b
	case chunk.OpLe:
		return a <= b
	case chunk.OpGt:
		return a > b
	case chunk.OpGe:
		return a >= b
	}
	return false
}

func (m *Machine) execCompareII(op chunk.Op) {
	b, a := m.pop(), m.pop()
	ai, bi := a.AsInt(), b.AsInt()
	var result bool
	switch op {
	case chunk.OpLtII:
		result = ai < bi
	case chunk.OpLeII:
		result = ai <= bi
	case chunk.OpGtII:
		result = ai > bi
	case chunk.OpGeII:
		result = ai >= bi
	case chunk.OpEqII:
		result = ai == bi
	}
	m.push(object.Bool(result))
}

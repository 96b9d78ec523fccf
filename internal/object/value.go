package object

import (
	"fmt"
	"math"
)

// Kind identifies which variant of the tagged union a Value currently holds.
type Kind uint8

const (
	KindNil Kind = iota
	KindBool
	KindInt
	KindFloat
	KindObj
)

// Value is Vex's universal runtime value. spec.md §3.1 describes it as a
// NaN-boxed 64-bit word; this tagged struct is the Design Notes' explicitly
// sanctioned equivalent ("an equivalent enum ... is compliant if all
// invariants hold"). It is small, trivially copyable, and every predicate in
// §3.1 and law in §8.1 holds for it.
type Value struct {
	kind Kind
	num  uint64 // bool (0/1), int32 (low 32 bits, sign-extended on read), or float64 bits
	obj  *Obj
}

var Nil = Value{kind: KindNil}

var (
	True  = Value{kind: KindBool, num: 1}
	False = Value{kind: KindBool, num: 0}
)

func Bool(b bool) Value {
	if b {
		return True
	}
	return False
}

// Int constructs an integer Value, per §3.1's "32-bit signed integer,
// packed inside the quiet-NaN payload".
func Int(i int32) Value { return Value{kind: KindInt, num: uint64(uint32(i))} }

func Float(f float64) Value { return Value{kind: KindFloat, num: math.Float64bits(f)} }

// Obj constructs a heap-object-reference Value. A nil pointer collapses to
// Nil so IsObj() callers never observe a nil Obj pointer.
func Obj(o *Obj) Value {
	if o == nil {
		return Nil
	}
	return Value{kind: KindObj, obj: o}
}

func (v Value) Kind() Kind     { return v.kind }
func (v Value) IsNil() bool    { return v.kind == KindNil }
func (v Value) IsBool() bool   { return v.kind == KindBool }
func (v Value) IsInt() bool    { return v.kind == KindInt }
func (v Value) IsFloat() bool  { return v.kind == KindFloat }
func (v Value) IsNumber() bool { return v.kind == KindInt || v.kind == KindFloat }
func (v Value) IsObj() bool    { return v.kind == KindObj }

func (v Value) AsBool() bool     { return v.num != 0 }
func (v Value) AsInt() int32     { return int32(uint32(v.num)) }
func (v Value) AsFloat() float64 { return math.Float64frombits(v.num) }
func (v Value) AsObj() *Obj      { return v.obj }

// AsNumber widens Int/Float to float64 for the coercing arithmetic and
// comparison opcodes of spec.md §4.4.
func (v Value) AsNumber() float64 {
	if v.kind == KindInt {
		return float64(v.AsInt())
	}
	return v.AsFloat()
}

// AsInt32Coerced truncates a number to int32 for the bitwise/modulo
// opcodes. Non-numeric operands yield 0 rather than panicking: those
// opcodes are only ever emitted by the compiler over numeric operands, and
// the spec treats violations of that precondition as "undefined but not
// crashing" (§3.3, §9).
func (v Value) AsInt32Coerced() int32 {
	switch v.kind {
	case KindInt:
		return v.AsInt()
	case KindFloat:
		return int32(int64(v.AsFloat()))
	default:
		return 0
	}
}

// Truthy implements spec.md §3.1: nil and false are falsey, 0 and 0.0 are
// falsey, everything else is truthy.
func (v Value) Truthy() bool {
	switch v.kind {
	case KindNil:
		return false
	case KindBool:
		return v.AsBool()
	case KindInt:
		return v.AsInt() != 0
	case KindFloat:
		return v.AsFloat() != 0
	case KindObj:
		return true
	}
	return false
}

// Equal implements spec.md §4.4's OP_EQ semantics: string equality is
// by-value, numeric equality crosses int/double, everything else is
// identity (bitwise Value identity for primitives, pointer identity for
// heap objects).
func Equal(a, b Value) bool {
	if a.kind == KindNil || b.kind == KindNil {
		return a.kind == b.kind
	}
	if a.IsNumber() && b.IsNumber() {
		if a.kind == KindInt && b.kind == KindInt {
			return a.AsInt() == b.AsInt()
		}
		return a.AsNumber() == b.AsNumber()
	}
	if a.kind == KindBool && b.kind == KindBool {
		return a.AsBool() == b.AsBool()
	}
	if a.kind != b.kind {
		return false
	}
	if a.kind == KindObj {
		if as, ok := AsString(a.obj); ok {
			if bs, ok := AsString(b.obj); ok {
				return as.Value == bs.Value
			}
			return false
		}
		return a.obj == b.obj
	}
	return false
}

// String renders a Value the way the print builtin and string-concat
// opcode do.
func (v Value) String() string {
	switch v.kind {
	case KindNil:
		return "nil"
	case KindBool:
		if v.AsBool() {
			return "true"
		}
		return "false"
	case KindInt:
		return fmt.Sprintf("%d", v.AsInt())
	case KindFloat:
		return fmt.Sprintf("%g", v.AsFloat())
	case KindObj:
		return Describe(v.obj)
	}
	return "<invalid>"
}

// TypeName returns the dynamic type name used in runtime-type-error
// messages (spec.md §7).
func (v Value) TypeName() string {
	switch v.kind {
	case KindNil:
		return "nil"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindObj:
		return TypeName(v.obj)
	}
	return "invalid"
}

package chunk

import (
	"bytes"
	"strings"
	"testing"

	"github.com/vexlang/vex/internal/object"
)

func TestWriteUint16RoundTrips(t *testing.T) {
	c := New()
	c.WriteUint16(0x1234, 1)
	if got := c.ReadUint16(0); got != 0x1234 {
		t.Fatalf("ReadUint16 = %#x, want %#x", got, 0x1234)
	}
}

func TestAddConstantDedupesScalars(t *testing.T) {
	c := New()
	a := c.AddConstant(object.Int(7))
	b := c.AddConstant(object.Int(7))
	if a != b {
		t.Errorf("expected equal int constants to share an index, got %d and %d", a, b)
	}
	n := c.AddConstant(object.Int(8))
	if n == a {
		t.Errorf("expected distinct int constants to get distinct indices")
	}
}

func TestAddConstantNeverDedupesObjects(t *testing.T) {
	h := object.NewHeap()
	c := New()
	s1 := h.NewString("hi")
	s2 := h.NewString("hi")
	a := c.AddConstant(object.Obj(&s1.Obj))
	b := c.AddConstant(object.Obj(&s2.Obj))
	if a == b {
		t.Errorf("expected distinct string objects to get distinct constant indices")
	}
}

func TestEmitConstantUsesLongFormPastByteRange(t *testing.T) {
	c := New()
	for i := 0; i < 256; i++ {
		c.AddConstant(object.Int(int32(i + 1000)))
	}
	c.EmitConstant(object.Int(9999), 1)
	if Op(c.Code[len(c.Code)-3]) != OpConstantLong {
		t.Fatalf("expected OP_CONSTANT_LONG once the pool exceeds 256 entries")
	}
}

func TestEmitConstantUsesShortFormInByteRange(t *testing.T) {
	c := New()
	c.EmitConstant(object.Int(1), 1)
	if Op(c.Code[0]) != OpConstant {
		t.Fatalf("expected OP_CONSTANT for a small pool, got %v", Op(c.Code[0]))
	}
}

func TestDisassembleJump(t *testing.T) {
	c := New()
	c.WriteOp(OpJumpIfFalse, 1)
	c.WriteUint16(3, 1)
	c.WriteOp(OpPop, 1)
	c.WriteOp(OpPop, 1)
	c.WriteOp(OpPop, 1)

	var buf bytes.Buffer
	Disassemble(&buf, c, "test")
	out := buf.String()
	if !strings.Contains(out, "JUMP_IF_FALSE") {
		t.Errorf("expected disassembly to mention JUMP_IF_FALSE, got: %s", out)
	}
	if !strings.Contains(out, "-> 0006") {
		t.Errorf("expected jump target 0006 in disassembly, got: %s", out)
	}
}

func TestDisassembleClosureAccountsForUpvalues(t *testing.T) {
	h := object.NewHeap()
	c := New()
	fn := h.NewFunction(object.Function{Name: "f", UpvalueCount: 2})
	idx := c.AddConstant(object.Obj(&fn.Obj))

	c.WriteOp(OpClosure, 1)
	c.Write(byte(idx), 1)
	c.WriteUint16(1, 1) // 2-byte (isLocal, index) pair for the first upvalue
	c.WriteUint16(0, 1) // 2-byte (isLocal, index) pair for the second upvalue
	c.WriteOp(OpHalt, 1)

	next := DisassembleInstruction(&bytes.Buffer{}, c, 0)
	// offset + 2 (opcode + 1-byte index) + 2 upvalues * 2 bytes each = 6
	if next != 6 {
		t.Fatalf("expected OP_CLOSURE to span 6 bytes with 2 upvalues, got %d", next)
	}
}

func TestLineAtOutOfRange(t *testing.T) {
	c := New()
	c.WriteOp(OpNil, 5)
	if c.LineAt(0) != 5 {
		t.Errorf("expected line 5, got %d", c.LineAt(0))
	}
	if c.LineAt(99) != -1 {
		t.Errorf("expected -1 for an out-of-range offset, got %d", c.LineAt(99))
	}
}

func TestOpWidthMatchesClosureAndGeneratorExecContract(t *testing.T) {
	// OP_CLOSURE and OP_GENERATOR need opcode-specific decoding rather than
	// Width(), since OP_CLOSURE's true length depends on the referenced
	// function's upvalue count and OP_GENERATOR reads zero operand bytes
	// despite sharing a byte-layout family with OP_CLASS.
	if OpGenerator.Width() != 0 {
		t.Errorf("OP_GENERATOR reads no operand bytes, Width() = %d", OpGenerator.Width())
	}
}

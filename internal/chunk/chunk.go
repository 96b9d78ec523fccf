package chunk

import "github.com/vexlang/vex/internal/object"

// Chunk is one compiled program, shared by all of its function bodies
// (each Function starts at its own CodeStart offset): a byte-addressed
// instruction stream, a line number per byte for error reporting (spec.md §4.1's
// requirement that runtime errors carry source positions), and the pool
// of constants the instruction stream indexes into.
//
// This generalizes the teacher's bytecode.Bytecode, which stored a slice
// of structured instructions; spec.md's opcode/operand-width rules need a
// raw byte buffer instead, so Chunk plays the same role with a different
// shape.
type Chunk struct {
	Code      []byte
	Lines     []int
	Constants []object.Value

	// NumICSlots / NumPICSlots size the per-chunk inline-cache arrays the
	// VM allocates alongside this chunk (spec.md §4.7). Each OP_GET_FIELD_IC
	// / OP_GET_FIELD_PIC site gets a dedicated slot, assigned by the
	// compiler as it emits those opcodes.
	NumICSlots  int
	NumPICSlots int
}

func New() *Chunk {
	return &Chunk{}
}

// Write appends one instruction byte at the given source line.
func (c *Chunk) Write(b byte, line int) int {
	c.Code = append(c.Code, b)
	c.Lines = append(c.Lines, line)
	return len(c.Code) - 1
}

// WriteOp appends an opcode byte.
func (c *Chunk) WriteOp(op Op, line int) int {
	return c.Write(byte(op), line)
}

// WriteUint16 appends a big-endian 2-byte operand, per spec.md §6.2.
func (c *Chunk) WriteUint16(v uint16, line int) {
	c.Write(byte(v>>8), line)
	c.Write(byte(v), line)
}

// ReadUint16 decodes a big-endian 2-byte operand starting at offset.
func (c *Chunk) ReadUint16(offset int) uint16 {
	return uint16(c.Code[offset])<<8 | uint16(c.Code[offset+1])
}

// AddConstant interns a value into the constant pool and returns its
// index. Unlike the teacher's compiler, which never deduplicates, this
// deduplicates small immutable constants (nil, booleans, numbers) so
// repeated literals don't bloat the pool; string/object constants are
// always appended fresh since equal-valued strings may still need
// distinct identity downstream (e.g. interned vs. not is not guaranteed).
func (c *Chunk) AddConstant(v object.Value) int {
	if !v.IsObj() {
		for i, existing := range c.Constants {
			if object.Equal(existing, v) {
				return i
			}
		}
	}
	c.Constants = append(c.Constants, v)
	return len(c.Constants) - 1
}

// EmitConstant writes whichever of OP_CONSTANT / OP_CONSTANT_LONG fits the
// constant's pool index (spec.md §6.2: indices 0-255 use the 1-byte form,
// larger indices use the 2-byte form).
func (c *Chunk) EmitConstant(v object.Value, line int) {
	idx := c.AddConstant(v)
	if idx <= 0xFF {
		c.WriteOp(OpConstant, line)
		c.Write(byte(idx), line)
		return
	}
	c.WriteOp(OpConstantLong, line)
	c.WriteUint16(uint16(idx), line)
}

// LineAt returns the source line recorded for the instruction at offset.
func (c *Chunk) LineAt(offset int) int {
	if offset < 0 || offset >= len(c.Lines) {
		return -1
	}
	return c.Lines[offset]
}

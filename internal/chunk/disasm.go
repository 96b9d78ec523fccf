package chunk

import (
	"fmt"
	"io"

	"github.com/vexlang/vex/internal/object"
)

// Disassemble writes a human-readable listing of every instruction in c to
// w, generalizing the teacher's pkg/bytecode disassembler (invoked from
// cmd/smog's "disassemble" subcommand) to the new byte-buffer Chunk shape.
func Disassemble(w io.Writer, c *Chunk, name string) {
	fmt.Fprintf(w, "== %s ==\n", name)
	for offset := 0; offset < len(c.Code); {
		offset = disassembleInstruction(w, c, offset)
	}
}

// DisassembleInstruction prints the single instruction at offset, returning
// the offset of the following instruction. Exposed for the VM's instruction
// tracer, which disassembles on the fly at the live IP rather than a static
// listing.
func DisassembleInstruction(w io.Writer, c *Chunk, offset int) int {
	return disassembleInstruction(w, c, offset)
}

func disassembleInstruction(w io.Writer, c *Chunk, offset int) int {
	fmt.Fprintf(w, "%04d ", offset)
	if offset > 0 && c.Lines[offset] == c.Lines[offset-1] {
		fmt.Fprint(w, "   | ")
	} else {
		fmt.Fprintf(w, "%4d ", c.Lines[offset])
	}

	op := Op(c.Code[offset])
	switch op {
	case OpConstant:
		idx := int(c.Code[offset+1])
		fmt.Fprintf(w, "%-18s %4d '%s'\n", op, idx, constantRepr(c, idx))
		return offset + 2
	case OpConstantLong:
		idx := int(c.ReadUint16(offset + 1))
		fmt.Fprintf(w, "%-18s %4d '%s'\n", op, idx, constantRepr(c, idx))
		return offset + 3
	case OpForCount:
		fmt.Fprintf(w, "%-18s counter=%d end=%d var=%d -> %04d\n",
			op, c.Code[offset+1], c.Code[offset+2], c.Code[offset+3],
			offset+6+int(c.ReadUint16(offset+4)))
		return offset + 6
	case OpForCountStep:
		fmt.Fprintf(w, "%-18s counter=%d end=%d step=%d var=%d -> %04d\n",
			op, c.Code[offset+1], c.Code[offset+2], c.Code[offset+3], c.Code[offset+4],
			offset+7+int(c.ReadUint16(offset+5)))
		return offset + 7
	case OpForLoop:
		fmt.Fprintf(w, "%-18s iter=%d idx=%d var=%d -> %04d\n",
			op, c.Code[offset+1], c.Code[offset+2], c.Code[offset+3],
			offset+6+int(c.ReadUint16(offset+4)))
		return offset + 6
	case OpJump, OpJumpIfFalse, OpJumpIfTrue, OpLoop,
		OpLtJmpFalse, OpLeJmpFalse, OpGtJmpFalse, OpGeJmpFalse, OpEqJmpFalse, OpNeqJmpFalse,
		OpLtJmpFalseII, OpLeJmpFalseII, OpGtJmpFalseII, OpGeJmpFalseII, OpEqJmpFalseII:
		jump := int(c.ReadUint16(offset + 1))
		sign := 1
		if op == OpLoop {
			sign = -1
		}
		fmt.Fprintf(w, "%-18s %4d -> %04d\n", op, offset, offset+3+sign*jump)
		return offset + 3
	case OpInvoke, OpSuperInvoke:
		idx := int(c.ReadUint16(offset + 1))
		argc := c.Code[offset+3]
		fmt.Fprintf(w, "%-18s (%d args) %4d '%s'\n", op, argc, idx, constantRepr(c, idx))
		return offset + 4
	case OpClosure:
		idx := int(c.Code[offset+1])
		upvalueCount := 0
		if idx >= 0 && idx < len(c.Constants) && c.Constants[idx].IsObj() {
			if fn, ok := object.AsFunction(c.Constants[idx].AsObj()); ok {
				upvalueCount = fn.UpvalueCount
			}
		}
		fmt.Fprintf(w, "%-18s %4d '%s' (%d upvalue(s))\n", op, idx, constantRepr(c, idx), upvalueCount)
		return offset + 2 + upvalueCount*2
	default:
		w2 := op.Width()
		if w2 == 0 {
			fmt.Fprintf(w, "%s\n", op)
			return offset + 1
		}
		fmt.Fprintf(w, "%-18s operand bytes=% x\n", op, c.Code[offset+1:offset+1+w2])
		return offset + 1 + w2
	}
}

func constantRepr(c *Chunk, idx int) string {
	if idx < 0 || idx >= len(c.Constants) {
		return "<out of range>"
	}
	return c.Constants[idx].String()
}

package compiler

import "github.com/vexlang/vex/internal/chunk"

// emitJump writes op followed by a placeholder 2-byte offset, returning
// the offset of the placeholder's first byte for a later patchJump.
func (c *Compiler) emitJump(op chunk.Op, line int) int {
	c.emit(op, line)
	pos := len(c.chunk.Code)
	c.emitUint16(0xFFFF, line)
	return pos
}

// patchJump backfills the placeholder at pos with the distance from just
// past the placeholder to the current end of the chunk.
func (c *Compiler) patchJump(pos int) {
	target := len(c.chunk.Code)
	offset := target - (pos + 2)
	c.chunk.Code[pos] = byte(offset >> 8)
	c.chunk.Code[pos+1] = byte(offset)
}

// emitLoop writes OP_LOOP with a backward offset to loopStart.
func (c *Compiler) emitLoop(loopStart int, line int) {
	c.emit(chunk.OpLoop, line)
	offset := len(c.chunk.Code) + 2 - loopStart
	c.emitUint16(uint16(offset), line)
}

package compiler

import (
	"github.com/vexlang/vex/internal/chunk"
	"github.com/vexlang/vex/internal/object"
	"github.com/vexlang/vex/pkg/ast"
)

func (c *Compiler) compileIf(s *ast.IfStatement) {
	c.compileExpression(s.Condition)
	thenJump := c.emitJump(chunk.OpJumpIfFalse, 0)
	c.emit(chunk.OpPop, 0)

	c.compileStatement(s.Then)

	elseJump := c.emitJump(chunk.OpJump, 0)
	c.patchJump(thenJump)
	c.emit(chunk.OpPop, 0)

	if s.Else != nil {
		c.compileStatement(s.Else)
	}
	c.patchJump(elseJump)
}

func (c *Compiler) compileWhile(s *ast.WhileStatement) {
	loopStart := len(c.chunk.Code)
	loop := c.pushLoop()

	c.compileExpression(s.Condition)
	exitJump := c.emitJump(chunk.OpJumpIfFalse, 0)
	c.emit(chunk.OpPop, 0)

	c.compileStatement(s.Body)

	for _, pos := range loop.continues {
		c.patchJump(pos)
	}
	c.emitLoop(loopStart, 0)

	c.patchJump(exitJump)
	c.emit(chunk.OpPop, 0)
	for _, pos := range loop.breaks {
		c.patchJump(pos)
	}
	c.popLoop()
}

// compileFor handles `for x in iterable { ... }` (spec.md §4.5): a
// literal a..b range compiles to the raw-integer OP_FOR_COUNT family, any
// other iterable expression to the polymorphic OP_FOR_LOOP over the
// Range/Array/String it evaluates to.
func (c *Compiler) compileFor(s *ast.ForStatement) {
	c.beginScope()
	defer c.endScope()

	if rng, ok := s.Iterable.(*ast.RangeLiteral); ok {
		c.compileForCount(s, rng)
		return
	}

	c.compileExpression(s.Iterable)
	iterSlot := c.declareLocal("")
	c.emit(chunk.OpSetLocal, 0)
	c.emitByte(byte(iterSlot), 0)
	c.emit(chunk.OpPop, 0)

	idxSlot := c.declareLocal("")
	c.chunk.EmitConstant(object.Int(0), 0)
	c.emit(chunk.OpSetLocal, 0)
	c.emitByte(byte(idxSlot), 0)
	c.emit(chunk.OpPop, 0)

	varSlot := c.declareLocal(s.Var)
	c.emit(chunk.OpNil, 0)
	c.emit(chunk.OpSetLocal, 0)
	c.emitByte(byte(varSlot), 0)
	c.emit(chunk.OpPop, 0)

	loop := c.pushLoop()
	loopStart := len(c.chunk.Code)

	c.emit(chunk.OpForLoop, 0)
	c.emitByte(byte(iterSlot), 0)
	c.emitByte(byte(idxSlot), 0)
	c.emitByte(byte(varSlot), 0)
	exitPos := len(c.chunk.Code)
	c.emitUint16(0xFFFF, 0)

	c.compileStatement(s.Body)

	for _, pos := range loop.continues {
		c.patchJump(pos)
	}
	c.emitLoop(loopStart, 0)

	offset := len(c.chunk.Code) - (exitPos + 2)
	c.chunk.Code[exitPos] = byte(offset >> 8)
	c.chunk.Code[exitPos+1] = byte(offset)

	for _, pos := range loop.breaks {
		c.patchJump(pos)
	}
	c.popLoop()
}

// compileForCount lowers `for x in a..b { ... }` straight to OP_FOR_COUNT,
// skipping Range allocation entirely.
func (c *Compiler) compileForCount(s *ast.ForStatement, rng *ast.RangeLiteral) {
	c.compileExpression(rng.Start)
	counterSlot := c.declareLocal("")
	c.emit(chunk.OpSetLocal, 0)
	c.emitByte(byte(counterSlot), 0)
	c.emit(chunk.OpPop, 0)

	c.compileExpression(rng.End)
	endSlot := c.declareLocal("")
	c.emit(chunk.OpSetLocal, 0)
	c.emitByte(byte(endSlot), 0)
	c.emit(chunk.OpPop, 0)

	varSlot := c.declareLocal(s.Var)
	c.emit(chunk.OpNil, 0)
	c.emit(chunk.OpSetLocal, 0)
	c.emitByte(byte(varSlot), 0)
	c.emit(chunk.OpPop, 0)

	loop := c.pushLoop()
	loopStart := len(c.chunk.Code)

	c.emit(chunk.OpForCount, 0)
	c.emitByte(byte(counterSlot), 0)
	c.emitByte(byte(endSlot), 0)
	c.emitByte(byte(varSlot), 0)
	exitPos := len(c.chunk.Code)
	c.emitUint16(0xFFFF, 0)

	c.compileStatement(s.Body)

	for _, pos := range loop.continues {
		c.patchJump(pos)
	}
	c.emitLoop(loopStart, 0)

	offset := len(c.chunk.Code) - (exitPos + 2)
	c.chunk.Code[exitPos] = byte(offset >> 8)
	c.chunk.Code[exitPos+1] = byte(offset)

	for _, pos := range loop.breaks {
		c.patchJump(pos)
	}
	c.popLoop()
}

func (c *Compiler) compileBreak() {
	loop := c.currentLoop()
	if loop == nil {
		c.errorf("'break' used outside of a loop")
		return
	}
	pos := c.emitJump(chunk.OpJump, 0)
	loop.breaks = append(loop.breaks, pos)
}

func (c *Compiler) compileContinue() {
	loop := c.currentLoop()
	if loop == nil {
		c.errorf("'continue' used outside of a loop")
		return
	}
	pos := c.emitJump(chunk.OpJump, 0)
	loop.continues = append(loop.continues, pos)
}

// compileTry lowers try/catch onto OP_TRY/OP_TRY_END/OP_CATCH (spec.md
// §4.8): OP_TRY's operand jumps to the catch handler, which starts by
// pushing the caught exception via OP_CATCH.
func (c *Compiler) compileTry(s *ast.TryStatement) {
	tryPos := c.emitJump(chunk.OpTry, 0)

	c.compileStatement(s.Body)
	c.emit(chunk.OpTryEnd, 0)
	doneJump := c.emitJump(chunk.OpJump, 0)

	c.patchJump(tryPos)
	c.beginScope()
	c.emit(chunk.OpCatch, 0)
	if s.CatchName != "" {
		slot := c.declareLocal(s.CatchName)
		c.emit(chunk.OpSetLocal, 0)
		c.emitByte(byte(slot), 0)
		c.emit(chunk.OpPop, 0)
	} else {
		c.emit(chunk.OpPop, 0)
	}
	if s.Catch != nil {
		for _, st := range s.Catch.Statements {
			c.compileStatement(st)
		}
	}
	c.endScope()

	c.patchJump(doneJump)
}

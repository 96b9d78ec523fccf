package compiler

import (
	"github.com/vexlang/vex/internal/chunk"
	"github.com/vexlang/vex/internal/object"
	"github.com/vexlang/vex/pkg/ast"
)

// compileFunction compiles fn's body inline in the shared chunk: an
// OP_JUMP skips the body during ordinary fall-through execution, so
// CodeStart can simply be "wherever the jump lands after". isMethod binds
// an implicit `self` to slot 0 (spec.md §4.7) instead of leaving it unused
// the way a plain function call does.
//
// Leaves the resulting closure value on top of the operand stack.
func (c *Compiler) compileFunction(fn *ast.FunctionLiteral, isMethod bool) {
	skip := c.emitJump(chunk.OpJump, 0)
	codeStart := len(c.chunk.Code)

	fs := c.pushFuncScope(fn.Name)
	if isMethod {
		fs.locals = append(fs.locals, localVar{name: "self", slot: 0, depth: 0})
	}
	for _, p := range fn.Params {
		c.declareLocal(p)
	}

	for _, st := range fn.Body {
		c.compileStatement(st)
	}
	// Implicit `return nil` if the body falls off the end.
	c.emit(chunk.OpNil, 0)
	c.emit(chunk.OpReturn, 0)

	c.patchJump(skip)

	compiled := c.popFuncScope()

	obj := c.heap.NewFunction(object.Function{
		Name:         fn.Name,
		Arity:        len(fn.Params),
		LocalsCount:  compiled.nextSlot,
		UpvalueCount: len(compiled.upvalues),
		CodeStart:    codeStart,
	})
	idx := c.chunk.AddConstant(object.Obj(&obj.Obj))

	c.emit(chunk.OpClosure, 0)
	c.emitByte(byte(idx), 0)
	for _, uv := range compiled.upvalues {
		if uv.isLocal {
			c.emitByte(1, 0)
		} else {
			c.emitByte(0, 0)
		}
		c.emitByte(byte(uv.index), 0)
	}

	if fn.IsGenerator {
		c.emit(chunk.OpGenerator, 0)
	}
}

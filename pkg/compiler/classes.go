package compiler

import (
	"github.com/vexlang/vex/internal/chunk"
	"github.com/vexlang/vex/pkg/ast"
)

// compileClass lowers a class declaration to OP_CLASS plus a chain of
// OP_INHERIT/OP_FIELD/OP_METHOD that all leave the class value on top of
// the stack so they can be chained (spec.md §4.7), grounded on
// internal/vm/classes.go's execInherit/execMethod/execField stack
// contracts: OP_INHERIT expects the superclass below the new class, so the
// superclass must be pushed first.
func (c *Compiler) compileClass(s *ast.ClassStatement) {
	if s.SuperName != "" {
		c.resolveIdentifier(s.SuperName, 0)
	}

	nameIdx := c.nameConstantIndex(s.Name)
	c.emit(chunk.OpClass, 0)
	c.emitByte(byte(nameIdx), 0)

	if s.SuperName != "" {
		c.emit(chunk.OpInherit, 0)
	}

	for _, field := range s.Fields {
		c.emit(chunk.OpField, 0)
		c.emitNameConstant(field, 0)
	}

	for _, method := range s.Methods {
		c.compileFunction(method, true)
		c.emit(chunk.OpMethod, 0)
		c.emitNameConstant(method.Name, 0)
	}

	for name, val := range s.StaticVals {
		c.compileExpression(val)
		c.emit(chunk.OpSetStatic, 0)
		c.emitNameConstant(name, 0)
	}

	c.defineVariable(s.Name)
}

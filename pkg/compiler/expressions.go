package compiler

import (
	"github.com/vexlang/vex/internal/chunk"
	"github.com/vexlang/vex/internal/object"
	"github.com/vexlang/vex/internal/vm"
	"github.com/vexlang/vex/pkg/ast"
)

var infixOps = map[string]chunk.Op{
	"+": chunk.OpAdd, "-": chunk.OpSub, "*": chunk.OpMul, "/": chunk.OpDiv,
	"%": chunk.OpMod, "**": chunk.OpPow,
	"&": chunk.OpBAnd, "|": chunk.OpBOr, "^": chunk.OpBXor,
	"<<": chunk.OpShl, ">>": chunk.OpShr,
	"==": chunk.OpEq, "!=": chunk.OpNeq,
	"<": chunk.OpLt, "<=": chunk.OpLe, ">": chunk.OpGt, ">=": chunk.OpGe,
}

// intII mirrors infixOps for the subset of operators with an
// integer-specialized opcode (§3.3, §4.4); only used when both operands
// are proven integer literals at compile time.
var intII = map[string]chunk.Op{
	"+": chunk.OpAddII, "-": chunk.OpSubII, "*": chunk.OpMulII,
	"<": chunk.OpLtII, "<=": chunk.OpLeII, ">": chunk.OpGtII, ">=": chunk.OpGeII,
	"==": chunk.OpEqII,
}

func isIntLiteral(e ast.Expression) bool {
	_, ok := e.(*ast.IntegerLiteral)
	return ok
}

// compileExpression is the central expression dispatch: every ast.Expression
// variant emits whatever sequence leaves exactly one value on the stack.
func (c *Compiler) compileExpression(expr ast.Expression) {
	switch e := expr.(type) {
	case *ast.Identifier:
		c.resolveIdentifier(e.Name, 0)

	case *ast.IntegerLiteral:
		c.chunk.EmitConstant(object.Int(e.Value), 0)
	case *ast.FloatLiteral:
		c.chunk.EmitConstant(object.Float(e.Value), 0)
	case *ast.StringLiteral:
		s := c.heap.NewString(e.Value)
		c.chunk.EmitConstant(object.Obj(&s.Obj), 0)
	case *ast.BoolLiteral:
		if e.Value {
			c.emit(chunk.OpTrue, 0)
		} else {
			c.emit(chunk.OpFalse, 0)
		}
	case *ast.NilLiteral:
		c.emit(chunk.OpNil, 0)

	case *ast.ArrayLiteral:
		for _, el := range e.Elements {
			c.compileExpression(el)
		}
		c.emit(chunk.OpMakeArray, 0)
		c.emitByte(byte(len(e.Elements)), 0)

	case *ast.DictLiteral:
		for i := range e.Keys {
			if _, ok := e.Keys[i].(*ast.StringLiteral); !ok {
				c.errorf("dict keys must be string literals")
			}
			c.compileExpression(e.Keys[i])
			c.compileExpression(e.Values[i])
		}
		c.emit(chunk.OpMakeDict, 0)
		c.emitByte(byte(len(e.Keys)), 0)

	case *ast.RangeLiteral:
		c.compileExpression(e.Start)
		c.compileExpression(e.End)
		c.emit(chunk.OpMakeRange, 0)

	case *ast.PrefixExpr:
		c.compileExpression(e.Operand)
		switch e.Operator {
		case "-":
			c.emit(chunk.OpNegate, 0)
		case "!":
			c.emit(chunk.OpNot, 0)
		case "~":
			c.emit(chunk.OpBNot, 0)
		default:
			c.errorf("unknown prefix operator %q", e.Operator)
		}

	case *ast.InfixExpr:
		c.compileExpression(e.Left)
		c.compileExpression(e.Right)
		if op, ok := intII[e.Operator]; ok && isIntLiteral(e.Left) && isIntLiteral(e.Right) {
			c.emit(op, 0)
			return
		}
		op, ok := infixOps[e.Operator]
		if !ok {
			c.errorf("unknown infix operator %q", e.Operator)
			return
		}
		c.emit(op, 0)

	case *ast.LogicalExpr:
		c.compileLogical(e)

	case *ast.AssignExpr:
		c.compileAssign(e)

	case *ast.CallExpr:
		c.compileCall(e)

	case *ast.IndexExpr:
		c.compileExpression(e.Receiver)
		c.compileExpression(e.Index)
		c.emit(chunk.OpIndexGet, 0)

	case *ast.FieldExpr:
		c.compileExpression(e.Receiver)
		slot := c.icSlots
		c.icSlots++
		c.emit(chunk.OpGetFieldIC, 0)
		c.emitByte(byte(slot), 0)
		c.emitNameConstant(e.Name, 0)

	case *ast.MethodCallExpr:
		c.compileExpression(e.Receiver)
		for _, a := range e.Args {
			c.compileExpression(a)
		}
		slot := c.icSlots
		c.icSlots++
		c.emit(chunk.OpInvokeIC, 0)
		c.emitNameConstant(e.Name, 0)
		c.emitByte(byte(len(e.Args)), 0)
		c.emitByte(byte(slot), 0)

	case *ast.SuperCallExpr:
		c.resolveIdentifier("self", 0)
		for _, a := range e.Args {
			c.compileExpression(a)
		}
		c.emit(chunk.OpSuperInvoke, 0)
		c.emitNameConstant(e.Name, 0)
		c.emitByte(byte(len(e.Args)), 0)

	case *ast.FunctionLiteral:
		c.compileFunction(e, false)

	case *ast.YieldExpr:
		if e.Value != nil {
			c.compileExpression(e.Value)
		} else {
			c.emit(chunk.OpNil, 0)
		}
		c.emit(chunk.OpYield, 0)

	case *ast.AwaitExpr:
		c.compileExpression(e.Value)
		c.emit(chunk.OpAwait, 0)

	default:
		c.errorf("unknown expression type %T", expr)
	}
}

// compileLogical emits short-circuiting jumps for && / and and || / or,
// rather than the plain boolean opcodes InfixExpr uses, since the right
// operand must not be evaluated when the left side already decides the
// result.
func (c *Compiler) compileLogical(e *ast.LogicalExpr) {
	c.compileExpression(e.Left)
	switch e.Operator {
	case "&&", "and":
		jump := c.emitJump(chunk.OpJumpIfFalse, 0)
		c.emit(chunk.OpPop, 0)
		c.compileExpression(e.Right)
		c.patchJump(jump)
	case "||", "or":
		jump := c.emitJump(chunk.OpJumpIfTrue, 0)
		c.emit(chunk.OpPop, 0)
		c.compileExpression(e.Right)
		c.patchJump(jump)
	default:
		c.errorf("unknown logical operator %q", e.Operator)
	}
}

// compileAssign dispatches on the assignment target's shape: a bare name,
// an index target (`a[i] = v`), or a field target (`a.f = v`).
func (c *Compiler) compileAssign(e *ast.AssignExpr) {
	switch t := e.Target.(type) {
	case *ast.Identifier:
		c.compileExpression(e.Value)
		c.assignIdentifier(t.Name, 0)
	case *ast.IndexExpr:
		c.compileExpression(t.Receiver)
		c.compileExpression(t.Index)
		c.compileExpression(e.Value)
		c.emit(chunk.OpIndexSet, 0)
	case *ast.FieldExpr:
		c.compileExpression(t.Receiver)
		c.compileExpression(e.Value)
		slot := c.icSlots
		c.icSlots++
		c.emit(chunk.OpSetFieldIC, 0)
		c.emitByte(byte(slot), 0)
		c.emitNameConstant(t.Name, 0)
	default:
		c.errorf("invalid assignment target %T", e.Target)
	}
}

// compileCall resolves callee as a builtin trampoline when its name names
// one and isn't shadowed by a local/upvalue binding, falling back to a
// plain OP_CALL over whatever value the callee expression produces
// (spec.md §4.6's call dispatch over function/closure/class/bound-method).
func (c *Compiler) compileCall(e *ast.CallExpr) {
	if ident, ok := e.Callee.(*ast.Identifier); ok {
		_, isLocal := resolveLocal(c.cur, ident.Name)
		_, isUpvalue := resolveUpvalue(c.cur, ident.Name)
		if !isLocal && !isUpvalue {
			if id, ok := vm.BuiltinIndexByName(ident.Name); ok {
				for _, a := range e.Args {
					c.compileExpression(a)
				}
				c.emit(chunk.OpCallBuiltin, 0)
				c.emitUint16(uint16(id<<8|len(e.Args)), 0)
				return
			}
		}
	}

	c.compileExpression(e.Callee)
	for _, a := range e.Args {
		c.compileExpression(a)
	}
	c.emit(chunk.OpCall, 0)
	c.emitByte(byte(len(e.Args)), 0)
}

// compileTailCall handles `return <call>;` (spec.md §4.6, law #8): a call
// directly in tail position reuses the current frame via OP_TAIL_CALL
// instead of pushing a new one and returning through it, so a self-recursive
// function runs in bounded stack space. A builtin callee has no closure
// frame to reuse, so it falls back to an ordinary call followed by a plain
// return.
func (c *Compiler) compileTailCall(e *ast.CallExpr) {
	if ident, ok := e.Callee.(*ast.Identifier); ok {
		_, isLocal := resolveLocal(c.cur, ident.Name)
		_, isUpvalue := resolveUpvalue(c.cur, ident.Name)
		if !isLocal && !isUpvalue {
			if _, ok := vm.BuiltinIndexByName(ident.Name); ok {
				c.compileCall(e)
				c.emit(chunk.OpReturn, 0)
				return
			}
		}
	}

	c.compileExpression(e.Callee)
	for _, a := range e.Args {
		c.compileExpression(a)
	}
	c.emit(chunk.OpTailCall, 0)
	c.emitByte(byte(len(e.Args)), 0)
}

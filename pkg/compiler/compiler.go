// Package compiler walks a pkg/ast tree and emits bytecode into a single
// internal/chunk.Chunk, generalizing the teacher's flat instruction-slice
// compiler (pkg/compiler/compiler.go) to the opcode set, inline caches,
// and fused control-flow/iteration instructions internal/chunk defines.
//
// A Chunk is shared by every function in the program: a function body is
// compiled inline at the point its literal is reached, preceded by a jump
// that skips over the body during ordinary top-to-bottom execution, so
// Function.CodeStart can be a plain offset into that one chunk rather than
// a chunk of its own.
package compiler

import (
	"fmt"

	"github.com/vexlang/vex/internal/chunk"
	"github.com/vexlang/vex/internal/object"
	"github.com/vexlang/vex/pkg/ast"
)

// Compiler holds the chunk under construction and the stack of function
// scopes currently being compiled (innermost last).
type Compiler struct {
	heap  *object.Heap
	chunk *chunk.Chunk
	cur   *funcScope

	icSlots  int
	picSlots int

	errors []string
}

// New creates a compiler that allocates string/function constants onto h,
// the same heap the eventual Machine.Run will sweep (spec.md §9's
// requirement that chunk constants are a GC root).
func New(h *object.Heap) *Compiler {
	return &Compiler{heap: h, chunk: chunk.New()}
}

func (c *Compiler) errorf(format string, args ...interface{}) {
	c.errors = append(c.errors, fmt.Sprintf(format, args...))
}

// Compile compiles a whole program into the shared chunk and returns the
// synthetic top-level entry function.
func (c *Compiler) Compile(program *ast.Program) (*chunk.Chunk, *object.Function, error) {
	c.cur = &funcScope{isTopLevel: true, nextSlot: 1}

	start := len(c.chunk.Code)
	for _, stmt := range program.Statements {
		c.compileStatement(stmt)
	}
	c.chunk.WriteOp(chunk.OpHalt, 0)

	c.chunk.NumICSlots = c.icSlots
	c.chunk.NumPICSlots = c.picSlots

	if len(c.errors) > 0 {
		return nil, nil, fmt.Errorf("compile errors: %v", c.errors)
	}

	entry := c.heap.NewFunction(object.Function{
		Name:        "<script>",
		Arity:       0,
		LocalsCount: c.cur.nextSlot,
		CodeStart:   start,
	})
	return c.chunk, entry, nil
}

func (c *Compiler) emit(op chunk.Op, line int) int {
	return c.chunk.WriteOp(op, line)
}

func (c *Compiler) emitByte(b byte, line int) {
	c.chunk.Write(b, line)
}

func (c *Compiler) emitUint16(v uint16, line int) {
	c.chunk.WriteUint16(v, line)
}

// emitNameConstant adds name to the constant pool and writes it as the
// fixed 2-byte operand every field/method/global opcode expects (spec.md
// §4's readConstantLong-based name resolution).
func (c *Compiler) emitNameConstant(name string, line int) {
	s := c.heap.NewString(name)
	idx := c.chunk.AddConstant(object.Obj(&s.Obj))
	c.emitUint16(uint16(idx), line)
}

func (c *Compiler) nameConstantIndex(name string) int {
	s := c.heap.NewString(name)
	return c.chunk.AddConstant(object.Obj(&s.Obj))
}

func (c *Compiler) compileStatement(stmt ast.Statement) {
	switch s := stmt.(type) {
	case *ast.ExprStatement:
		c.compileExprStatement(s)
	case *ast.LetStatement:
		c.compileExpression(s.Value)
		c.defineVariable(s.Name)
	case *ast.ReturnStatement:
		if call, ok := s.Value.(*ast.CallExpr); ok {
			c.compileTailCall(call)
		} else {
			if s.Value != nil {
				c.compileExpression(s.Value)
			} else {
				c.emit(chunk.OpNil, 0)
			}
			c.emit(chunk.OpReturn, 0)
		}
	case *ast.PrintStatement:
		c.compileExpression(s.Value)
		c.emit(chunk.OpPrint, 0)
	case *ast.BlockStatement:
		c.beginScope()
		for _, st := range s.Statements {
			c.compileStatement(st)
		}
		c.endScope()
	case *ast.IfStatement:
		c.compileIf(s)
	case *ast.WhileStatement:
		c.compileWhile(s)
	case *ast.ForStatement:
		c.compileFor(s)
	case *ast.BreakStatement:
		c.compileBreak()
	case *ast.ContinueStatement:
		c.compileContinue()
	case *ast.TryStatement:
		c.compileTry(s)
	case *ast.ThrowStatement:
		c.compileExpression(s.Value)
		c.emit(chunk.OpThrow, 0)
	case *ast.ClassStatement:
		c.compileClass(s)
	case *ast.ImportStatement:
		// Import resolution is a source-level preprocessing pass
		// (internal/imports), already expanded by the time the compiler
		// sees a program; a bare import statement left in the tree by a
		// standalone parse (e.g. in a test) is a no-op here.
	default:
		c.errorf("unknown statement type %T", stmt)
	}
}

// compileExprStatement handles the `fn name(...) {...}` declaration form,
// which is parsed as an ExprStatement wrapping a named FunctionLiteral,
// and otherwise compiles the expression for its side effect and discards
// the result.
func (c *Compiler) compileExprStatement(s *ast.ExprStatement) {
	if fn, ok := s.Expr.(*ast.FunctionLiteral); ok && fn.Name != "" {
		c.compileFunction(fn, false)
		c.defineVariable(fn.Name)
		return
	}
	c.compileExpression(s.Expr)
	c.emit(chunk.OpPop, 0)
}

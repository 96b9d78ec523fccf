// Package ast defines the Abstract Syntax Tree nodes produced by pkg/parser
// and consumed by pkg/compiler.
package ast

// Node is the interface every AST node implements.
type Node interface {
	TokenLiteral() string
}

// Expression is a node that produces a value.
type Expression interface {
	Node
	expressionNode()
}

// Statement is a node executed for effect.
type Statement interface {
	Node
	statementNode()
}

// Program is the root node: a source file's top-level statement list.
type Program struct {
	Statements []Statement
}

func (p *Program) TokenLiteral() string {
	if len(p.Statements) > 0 {
		return p.Statements[0].TokenLiteral()
	}
	return ""
}

// Identifier names a variable, a function, or a field.
type Identifier struct {
	Name string
}

func (i *Identifier) TokenLiteral() string { return i.Name }
func (i *Identifier) expressionNode()      {}

// IntegerLiteral is a literal 32-bit integer (spec.md §3.1's Int tag).
type IntegerLiteral struct {
	Value int32
}

func (n *IntegerLiteral) TokenLiteral() string { return "int" }
func (n *IntegerLiteral) expressionNode()      {}

// FloatLiteral is a literal double.
type FloatLiteral struct {
	Value float64
}

func (n *FloatLiteral) TokenLiteral() string { return "float" }
func (n *FloatLiteral) expressionNode()      {}

// StringLiteral is a literal string, already escape-processed by the lexer.
type StringLiteral struct {
	Value string
}

func (n *StringLiteral) TokenLiteral() string { return "string" }
func (n *StringLiteral) expressionNode()      {}

// BoolLiteral is `true` or `false`.
type BoolLiteral struct {
	Value bool
}

func (n *BoolLiteral) TokenLiteral() string { return "bool" }
func (n *BoolLiteral) expressionNode()      {}

// NilLiteral is `nil`.
type NilLiteral struct{}

func (n *NilLiteral) TokenLiteral() string { return "nil" }
func (n *NilLiteral) expressionNode()      {}

// ArrayLiteral is `[a, b, c]`.
type ArrayLiteral struct {
	Elements []Expression
}

func (n *ArrayLiteral) TokenLiteral() string { return "[" }
func (n *ArrayLiteral) expressionNode()      {}

// DictLiteral is `{k: v, ...}`; keys are string-literal expressions (the
// compiler rejects anything else, matching spec.md §3.2's string-keyed Dict).
type DictLiteral struct {
	Keys   []Expression
	Values []Expression
}

func (n *DictLiteral) TokenLiteral() string { return "{" }
func (n *DictLiteral) expressionNode()      {}

// RangeLiteral is `start..end`.
type RangeLiteral struct {
	Start, End Expression
}

func (n *RangeLiteral) TokenLiteral() string { return ".." }
func (n *RangeLiteral) expressionNode()      {}

// PrefixExpr is a unary operator applied to an operand: `-x`, `!x`, `~x`.
type PrefixExpr struct {
	Operator string
	Operand  Expression
}

func (n *PrefixExpr) TokenLiteral() string { return n.Operator }
func (n *PrefixExpr) expressionNode()      {}

// InfixExpr is a binary operator expression.
type InfixExpr struct {
	Operator    string
	Left, Right Expression
}

func (n *InfixExpr) TokenLiteral() string { return n.Operator }
func (n *InfixExpr) expressionNode()      {}

// LogicalExpr is `&&`/`||`, kept distinct from InfixExpr so the compiler
// emits short-circuiting jumps instead of an arithmetic opcode.
type LogicalExpr struct {
	Operator    string
	Left, Right Expression
}

func (n *LogicalExpr) TokenLiteral() string { return n.Operator }
func (n *LogicalExpr) expressionNode()      {}

// AssignExpr is `target = value`; Target is an Identifier, IndexExpr, or
// FieldExpr.
type AssignExpr struct {
	Target Expression
	Value  Expression
}

func (n *AssignExpr) TokenLiteral() string { return "=" }
func (n *AssignExpr) expressionNode()      {}

// CallExpr is `callee(args...)`.
type CallExpr struct {
	Callee Expression
	Args   []Expression
}

func (n *CallExpr) TokenLiteral() string { return "(" }
func (n *CallExpr) expressionNode()      {}

// IndexExpr is `receiver[index]`.
type IndexExpr struct {
	Receiver Expression
	Index    Expression
}

func (n *IndexExpr) TokenLiteral() string { return "[" }
func (n *IndexExpr) expressionNode()      {}

// FieldExpr is `receiver.name`.
type FieldExpr struct {
	Receiver Expression
	Name     string
}

func (n *FieldExpr) TokenLiteral() string { return "." }
func (n *FieldExpr) expressionNode()      {}

// MethodCallExpr is `receiver.name(args...)`, kept distinct from a FieldExpr
// wrapped in a CallExpr so the compiler can emit OP_INVOKE / OP_INVOKE_IC
// (spec.md §4.7) instead of a get-then-call pair.
type MethodCallExpr struct {
	Receiver Expression
	Name     string
	Args     []Expression
}

func (n *MethodCallExpr) TokenLiteral() string { return "." }
func (n *MethodCallExpr) expressionNode()      {}

// SuperCallExpr is `super.name(args...)`.
type SuperCallExpr struct {
	Name string
	Args []Expression
}

func (n *SuperCallExpr) TokenLiteral() string { return "super" }
func (n *SuperCallExpr) expressionNode()      {}

// FunctionLiteral is an `fn(params) { body }` expression, compiled to a
// Closure (spec.md §3.2). IsGenerator marks a body containing `yield`.
type FunctionLiteral struct {
	Name        string // empty for an anonymous function expression
	Params      []string
	Body        []Statement
	IsGenerator bool
}

func (n *FunctionLiteral) TokenLiteral() string { return "fn" }
func (n *FunctionLiteral) expressionNode()      {}

// YieldExpr is `yield value` inside a generator function.
type YieldExpr struct {
	Value Expression
}

func (n *YieldExpr) TokenLiteral() string { return "yield" }
func (n *YieldExpr) expressionNode()      {}

// AwaitExpr is `await value`.
type AwaitExpr struct {
	Value Expression
}

func (n *AwaitExpr) TokenLiteral() string { return "await" }
func (n *AwaitExpr) expressionNode()      {}

// ExprStatement wraps an expression evaluated for its side effect.
type ExprStatement struct {
	Expr Expression
}

func (n *ExprStatement) TokenLiteral() string { return n.Expr.TokenLiteral() }
func (n *ExprStatement) statementNode()       {}

// LetStatement declares a local (or, at top level, a global).
type LetStatement struct {
	Name  string
	Value Expression
}

func (n *LetStatement) TokenLiteral() string { return "let" }
func (n *LetStatement) statementNode()       {}

// ReturnStatement is `return expr` (expr nil for a bare `return`).
type ReturnStatement struct {
	Value Expression
}

func (n *ReturnStatement) TokenLiteral() string { return "return" }
func (n *ReturnStatement) statementNode()       {}

// PrintStatement is `print expr`, compiled to OP_PRINT.
type PrintStatement struct {
	Value Expression
}

func (n *PrintStatement) TokenLiteral() string { return "print" }
func (n *PrintStatement) statementNode()       {}

// BlockStatement is a `{ ... }` statement list introducing a new scope.
type BlockStatement struct {
	Statements []Statement
}

func (n *BlockStatement) TokenLiteral() string { return "{" }
func (n *BlockStatement) statementNode()       {}

// IfStatement is `if cond { ... } else { ... }`; Else is nil when absent,
// or another *IfStatement for an `else if` chain.
type IfStatement struct {
	Condition Expression
	Then      *BlockStatement
	Else      Statement
}

func (n *IfStatement) TokenLiteral() string { return "if" }
func (n *IfStatement) statementNode()       {}

// WhileStatement is `while cond { ... }`.
type WhileStatement struct {
	Condition Expression
	Body      *BlockStatement
}

func (n *WhileStatement) TokenLiteral() string { return "while" }
func (n *WhileStatement) statementNode()       {}

// ForStatement is `for name in iterable { ... }`, compiled using the fused
// iteration opcodes when the iterable is a literal range or count
// (spec.md §4's OP_FOR_COUNT/OP_FOR_COUNT_STEP/OP_FOR_LOOP group).
type ForStatement struct {
	Var      string
	Iterable Expression
	Body     *BlockStatement
}

func (n *ForStatement) TokenLiteral() string { return "for" }
func (n *ForStatement) statementNode()       {}

// BreakStatement is `break`.
type BreakStatement struct{}

func (n *BreakStatement) TokenLiteral() string { return "break" }
func (n *BreakStatement) statementNode()       {}

// ContinueStatement is `continue`.
type ContinueStatement struct{}

func (n *ContinueStatement) TokenLiteral() string { return "continue" }
func (n *ContinueStatement) statementNode()       {}

// TryStatement is `try { ... } catch name { ... }`.
type TryStatement struct {
	Body      *BlockStatement
	CatchName string
	Catch     *BlockStatement
}

func (n *TryStatement) TokenLiteral() string { return "try" }
func (n *TryStatement) statementNode()       {}

// ThrowStatement is `throw expr`.
type ThrowStatement struct {
	Value Expression
}

func (n *ThrowStatement) TokenLiteral() string { return "throw" }
func (n *ThrowStatement) statementNode()       {}

// ClassStatement is `class Name [: Super] { fields & methods }`.
type ClassStatement struct {
	Name       string
	SuperName  string // empty when there is no superclass
	Fields     []string
	Methods    []*FunctionLiteral
	StaticVals map[string]Expression
}

func (n *ClassStatement) TokenLiteral() string { return "class" }
func (n *ClassStatement) statementNode()       {}

// ImportStatement is `import "path"` or `from "path" import a, b`
// (spec.md §6.3). Names is nil for a bare whole-module import.
type ImportStatement struct {
	Path  string
	Names []string
}

func (n *ImportStatement) TokenLiteral() string { return "import" }
func (n *ImportStatement) statementNode()       {}

package parser

import (
	"testing"

	"github.com/vexlang/vex/pkg/ast"
)

func TestParseIntegerLiteral(t *testing.T) {
	program, err := New("42;").Parse()
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(program.Statements) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(program.Statements))
	}
	stmt, ok := program.Statements[0].(*ast.ExprStatement)
	if !ok {
		t.Fatalf("expected ExpressionStatement, got %T", program.Statements[0])
	}
	intLit, ok := stmt.Expr.(*ast.IntegerLiteral)
	if !ok {
		t.Fatalf("expected IntegerLiteral, got %T", stmt.Expr)
	}
	if intLit.Value != 42 {
		t.Errorf("expected 42, got %d", intLit.Value)
	}
}

func TestParseFloatLiteral(t *testing.T) {
	program, err := New("3.14;").Parse()
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	stmt := program.Statements[0].(*ast.ExprStatement)
	floatLit, ok := stmt.Expr.(*ast.FloatLiteral)
	if !ok {
		t.Fatalf("expected FloatLiteral, got %T", stmt.Expr)
	}
	if floatLit.Value != 3.14 {
		t.Errorf("expected 3.14, got %f", floatLit.Value)
	}
}

func TestParseStringLiteral(t *testing.T) {
	program, err := New(`"hello";`).Parse()
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	stmt := program.Statements[0].(*ast.ExprStatement)
	strLit, ok := stmt.Expr.(*ast.StringLiteral)
	if !ok {
		t.Fatalf("expected StringLiteral, got %T", stmt.Expr)
	}
	if strLit.Value != "hello" {
		t.Errorf("expected %q, got %q", "hello", strLit.Value)
	}
}

func TestParseBoolLiterals(t *testing.T) {
	for _, tt := range []struct {
		input    string
		expected bool
	}{
		{"true;", true},
		{"false;", false},
	} {
		program, err := New(tt.input).Parse()
		if err != nil {
			t.Fatalf("Parse(%q) returned error: %v", tt.input, err)
		}
		stmt := program.Statements[0].(*ast.ExprStatement)
		boolLit, ok := stmt.Expr.(*ast.BoolLiteral)
		if !ok {
			t.Fatalf("expected BoolLiteral, got %T", stmt.Expr)
		}
		if boolLit.Value != tt.expected {
			t.Errorf("expected %v, got %v", tt.expected, boolLit.Value)
		}
	}
}

func TestParseNilLiteral(t *testing.T) {
	program, err := New("nil;").Parse()
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	stmt := program.Statements[0].(*ast.ExprStatement)
	if _, ok := stmt.Expr.(*ast.NilLiteral); !ok {
		t.Fatalf("expected NilLiteral, got %T", stmt.Expr)
	}
}

func TestParseIdentifier(t *testing.T) {
	program, err := New("counter;").Parse()
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	stmt := program.Statements[0].(*ast.ExprStatement)
	ident, ok := stmt.Expr.(*ast.Identifier)
	if !ok {
		t.Fatalf("expected Identifier, got %T", stmt.Expr)
	}
	if ident.Name != "counter" {
		t.Errorf("expected %q, got %q", "counter", ident.Name)
	}
}

func TestParseMultipleStatements(t *testing.T) {
	program, err := New(`42; "hello"; true;`).Parse()
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(program.Statements) != 3 {
		t.Fatalf("expected 3 statements, got %d", len(program.Statements))
	}
	if _, ok := program.Statements[0].(*ast.ExprStatement).Expr.(*ast.IntegerLiteral); !ok {
		t.Errorf("expected IntegerLiteral first, got %T", program.Statements[0])
	}
	if _, ok := program.Statements[1].(*ast.ExprStatement).Expr.(*ast.StringLiteral); !ok {
		t.Errorf("expected StringLiteral second, got %T", program.Statements[1])
	}
	if _, ok := program.Statements[2].(*ast.ExprStatement).Expr.(*ast.BoolLiteral); !ok {
		t.Errorf("expected BoolLiteral third, got %T", program.Statements[2])
	}
}

func TestParseNegativeNumber(t *testing.T) {
	program, err := New("-17;").Parse()
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	stmt := program.Statements[0].(*ast.ExprStatement)
	prefix, ok := stmt.Expr.(*ast.PrefixExpr)
	if !ok {
		t.Fatalf("expected PrefixExpr, got %T", stmt.Expr)
	}
	if prefix.Operator != "-" {
		t.Errorf("expected operator '-', got %q", prefix.Operator)
	}
	intLit, ok := prefix.Operand.(*ast.IntegerLiteral)
	if !ok || intLit.Value != 17 {
		t.Fatalf("expected operand 17, got %#v", prefix.Operand)
	}
}

func TestParseWithComments(t *testing.T) {
	program, err := New("// a leading comment\n42;").Parse()
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(program.Statements) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(program.Statements))
	}
	stmt := program.Statements[0].(*ast.ExprStatement)
	if intLit, ok := stmt.Expr.(*ast.IntegerLiteral); !ok || intLit.Value != 42 {
		t.Fatalf("expected IntegerLiteral 42, got %#v", stmt.Expr)
	}
}

func TestParseInfixPrecedence(t *testing.T) {
	program, err := New("1 + 2 * 3;").Parse()
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	stmt := program.Statements[0].(*ast.ExprStatement)
	add, ok := stmt.Expr.(*ast.InfixExpr)
	if !ok || add.Operator != "+" {
		t.Fatalf("expected top-level '+', got %#v", stmt.Expr)
	}
	mul, ok := add.Right.(*ast.InfixExpr)
	if !ok || mul.Operator != "*" {
		t.Fatalf("expected '*' nested on the right, got %#v", add.Right)
	}
}

func TestParseIfElse(t *testing.T) {
	program, err := New(`if (x > 0) { print x; } else { print 0; }`).Parse()
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if _, ok := program.Statements[0].(*ast.IfStatement); !ok {
		t.Fatalf("expected IfStatement, got %T", program.Statements[0])
	}
}

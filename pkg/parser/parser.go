// Package parser implements Vex's recursive-descent/Pratt parser: it turns
// a lexer.Token stream into the pkg/ast tree pkg/compiler walks.
//
// The parser keeps the teacher's two-token lookahead design (curTok/peekTok)
// and its accumulate-don't-abort error strategy, generalized from a
// Smalltalk message-send grammar to an expression-precedence C-like one.
package parser

import (
	"fmt"
	"strconv"

	"github.com/vexlang/vex/pkg/ast"
	"github.com/vexlang/vex/pkg/lexer"
)

// precedence levels, lowest to highest.
const (
	precLowest int = iota
	precAssign
	precOr
	precAnd
	precBitOr
	precBitXor
	precBitAnd
	precEquality
	precComparison
	precShift
	precRange
	precAdditive
	precMultiplicative
	precPower
	precUnary
	precCall
)

var precedences = map[lexer.TokenType]int{
	lexer.TokenAssign:    precAssign,
	lexer.TokenOr:        precOr,
	lexer.TokenPipePipe:  precOr,
	lexer.TokenAnd:       precAnd,
	lexer.TokenAmpAmp:    precAnd,
	lexer.TokenPipe:      precBitOr,
	lexer.TokenCaret:     precBitXor,
	lexer.TokenAmp:       precBitAnd,
	lexer.TokenEqEq:      precEquality,
	lexer.TokenNotEq:     precEquality,
	lexer.TokenLess:      precComparison,
	lexer.TokenLessEq:    precComparison,
	lexer.TokenGreater:   precComparison,
	lexer.TokenGreaterEq: precComparison,
	lexer.TokenShl:       precShift,
	lexer.TokenShr:       precShift,
	lexer.TokenDotDot:    precRange,
	lexer.TokenPlus:      precAdditive,
	lexer.TokenMinus:     precAdditive,
	lexer.TokenStar:      precMultiplicative,
	lexer.TokenSlash:     precMultiplicative,
	lexer.TokenPercent:   precMultiplicative,
	lexer.TokenStarStar:  precPower,
	lexer.TokenLParen:    precCall,
	lexer.TokenLBracket:  precCall,
	lexer.TokenDot:       precCall,
}

// Parser is stateful and single-use: create one per source file or REPL
// line, as the teacher's parser does.
type Parser struct {
	l       *lexer.Lexer
	curTok  lexer.Token
	peekTok lexer.Token
	errors  []string
}

func New(input string) *Parser {
	p := &Parser{l: lexer.New(input)}
	p.nextToken()
	p.nextToken()
	return p
}

func (p *Parser) nextToken() {
	p.curTok = p.peekTok
	p.peekTok = p.l.NextToken()
}

func (p *Parser) addError(format string, args ...interface{}) {
	p.errors = append(p.errors, fmt.Sprintf("line %d: %s", p.curTok.Line, fmt.Sprintf(format, args...)))
}

func (p *Parser) Errors() []string { return p.errors }

func (p *Parser) expect(tt lexer.TokenType) bool {
	if p.curTok.Type != tt {
		p.addError("expected %s, got %s", tt, p.curTok.Type)
		return false
	}
	return true
}

func (p *Parser) expectPeek(tt lexer.TokenType) bool {
	if p.peekTok.Type != tt {
		p.addError("expected %s, got %s", tt, p.peekTok.Type)
		return false
	}
	p.nextToken()
	return true
}

func (p *Parser) peekPrecedence() int {
	if pr, ok := precedences[p.peekTok.Type]; ok {
		return pr
	}
	return precLowest
}

// Parse parses the whole source file.
func (p *Parser) Parse() (*ast.Program, error) {
	program := &ast.Program{}
	for p.curTok.Type != lexer.TokenEOF {
		if stmt := p.parseStatement(); stmt != nil {
			program.Statements = append(program.Statements, stmt)
		}
		p.nextToken()
	}
	if len(p.errors) > 0 {
		return program, fmt.Errorf("parser errors: %v", p.errors)
	}
	return program, nil
}

func (p *Parser) parseStatement() ast.Statement {
	switch p.curTok.Type {
	case lexer.TokenLet:
		return p.parseLetStatement()
	case lexer.TokenReturn:
		return p.parseReturnStatement()
	case lexer.TokenPrint:
		return p.parsePrintStatement()
	case lexer.TokenIf:
		return p.parseIfStatement()
	case lexer.TokenWhile:
		return p.parseWhileStatement()
	case lexer.TokenFor:
		return p.parseForStatement()
	case lexer.TokenBreak:
		return &ast.BreakStatement{}
	case lexer.TokenContinue:
		return &ast.ContinueStatement{}
	case lexer.TokenTry:
		return p.parseTryStatement()
	case lexer.TokenThrow:
		return p.parseThrowStatement()
	case lexer.TokenClass:
		return p.parseClassStatement()
	case lexer.TokenImport, lexer.TokenFrom:
		return p.parseImportStatement()
	case lexer.TokenLBrace:
		return p.parseBlockStatement()
	case lexer.TokenSemicolon:
		return nil
	default:
		expr := p.parseExpression(precLowest)
		if expr == nil {
			return nil
		}
		if p.peekTok.Type == lexer.TokenSemicolon {
			p.nextToken()
		}
		return &ast.ExprStatement{Expr: expr}
	}
}

func (p *Parser) parseLetStatement() ast.Statement {
	if !p.expectPeek(lexer.TokenIdentifier) {
		return nil
	}
	name := p.curTok.Literal
	if !p.expectPeek(lexer.TokenAssign) {
		return nil
	}
	p.nextToken()
	value := p.parseExpression(precLowest)
	if p.peekTok.Type == lexer.TokenSemicolon {
		p.nextToken()
	}
	return &ast.LetStatement{Name: name, Value: value}
}

func (p *Parser) parseReturnStatement() ast.Statement {
	if p.peekTok.Type == lexer.TokenSemicolon || p.peekTok.Type == lexer.TokenRBrace {
		p.nextToken()
		return &ast.ReturnStatement{}
	}
	p.nextToken()
	value := p.parseExpression(precLowest)
	if p.peekTok.Type == lexer.TokenSemicolon {
		p.nextToken()
	}
	return &ast.ReturnStatement{Value: value}
}

func (p *Parser) parsePrintStatement() ast.Statement {
	p.nextToken()
	value := p.parseExpression(precLowest)
	if p.peekTok.Type == lexer.TokenSemicolon {
		p.nextToken()
	}
	return &ast.PrintStatement{Value: value}
}

func (p *Parser) parseBlockStatement() *ast.BlockStatement {
	block := &ast.BlockStatement{}
	p.nextToken() // consume {
	for p.curTok.Type != lexer.TokenRBrace && p.curTok.Type != lexer.TokenEOF {
		if stmt := p.parseStatement(); stmt != nil {
			block.Statements = append(block.Statements, stmt)
		}
		p.nextToken()
	}
	return block
}

func (p *Parser) parseIfStatement() ast.Statement {
	p.nextToken()
	cond := p.parseExpression(precLowest)
	if !p.expectPeek(lexer.TokenLBrace) {
		return nil
	}
	then := p.parseBlockStatement()
	stmt := &ast.IfStatement{Condition: cond, Then: then}
	if p.peekTok.Type == lexer.TokenElse {
		p.nextToken()
		if p.peekTok.Type == lexer.TokenIf {
			p.nextToken()
			stmt.Else = p.parseIfStatement()
		} else if p.expectPeek(lexer.TokenLBrace) {
			stmt.Else = p.parseBlockStatement()
		}
	}
	return stmt
}

func (p *Parser) parseWhileStatement() ast.Statement {
	p.nextToken()
	cond := p.parseExpression(precLowest)
	if !p.expectPeek(lexer.TokenLBrace) {
		return nil
	}
	body := p.parseBlockStatement()
	return &ast.WhileStatement{Condition: cond, Body: body}
}

func (p *Parser) parseForStatement() ast.Statement {
	if !p.expectPeek(lexer.TokenIdentifier) {
		return nil
	}
	name := p.curTok.Literal
	if !p.expectPeek(lexer.TokenIn) {
		return nil
	}
	p.nextToken()
	iterable := p.parseExpression(precLowest)
	if !p.expectPeek(lexer.TokenLBrace) {
		return nil
	}
	body := p.parseBlockStatement()
	return &ast.ForStatement{Var: name, Iterable: iterable, Body: body}
}

func (p *Parser) parseTryStatement() ast.Statement {
	if !p.expectPeek(lexer.TokenLBrace) {
		return nil
	}
	body := p.parseBlockStatement()
	stmt := &ast.TryStatement{Body: body}
	if p.expectPeek(lexer.TokenCatch) {
		if p.expectPeek(lexer.TokenIdentifier) {
			stmt.CatchName = p.curTok.Literal
		}
		if p.expectPeek(lexer.TokenLBrace) {
			stmt.Catch = p.parseBlockStatement()
		}
	}
	return stmt
}

func (p *Parser) parseThrowStatement() ast.Statement {
	p.nextToken()
	value := p.parseExpression(precLowest)
	if p.peekTok.Type == lexer.TokenSemicolon {
		p.nextToken()
	}
	return &ast.ThrowStatement{Value: value}
}

func (p *Parser) parseImportStatement() ast.Statement {
	if p.curTok.Type == lexer.TokenFrom {
		if !p.expectPeek(lexer.TokenString) {
			return nil
		}
		path := p.curTok.Literal
		if !p.expectPeek(lexer.TokenImport) {
			return nil
		}
		var names []string
		if !p.expectPeek(lexer.TokenIdentifier) {
			return nil
		}
		names = append(names, p.curTok.Literal)
		for p.peekTok.Type == lexer.TokenComma {
			p.nextToken()
			if !p.expectPeek(lexer.TokenIdentifier) {
				return nil
			}
			names = append(names, p.curTok.Literal)
		}
		if p.peekTok.Type == lexer.TokenSemicolon {
			p.nextToken()
		}
		return &ast.ImportStatement{Path: path, Names: names}
	}

	if !p.expectPeek(lexer.TokenString) {
		return nil
	}
	path := p.curTok.Literal
	if p.peekTok.Type == lexer.TokenSemicolon {
		p.nextToken()
	}
	return &ast.ImportStatement{Path: path}
}

func (p *Parser) parseClassStatement() ast.Statement {
	if !p.expectPeek(lexer.TokenIdentifier) {
		return nil
	}
	stmt := &ast.ClassStatement{Name: p.curTok.Literal, StaticVals: map[string]ast.Expression{}}

	if p.peekTok.Type == lexer.TokenColon {
		p.nextToken()
		if !p.expectPeek(lexer.TokenIdentifier) {
			return nil
		}
		stmt.SuperName = p.curTok.Literal
	}

	if !p.expectPeek(lexer.TokenLBrace) {
		return nil
	}
	p.nextToken()

	for p.curTok.Type != lexer.TokenRBrace && p.curTok.Type != lexer.TokenEOF {
		switch p.curTok.Type {
		case lexer.TokenFn:
			if fn := p.parseFunctionLiteral(); fn != nil {
				stmt.Methods = append(stmt.Methods, fn.(*ast.FunctionLiteral))
			}
		case lexer.TokenLet:
			if !p.expectPeek(lexer.TokenIdentifier) {
				return nil
			}
			name := p.curTok.Literal
			stmt.Fields = append(stmt.Fields, name)
			if p.peekTok.Type == lexer.TokenAssign {
				p.nextToken()
				p.nextToken()
				stmt.StaticVals[name] = p.parseExpression(precLowest)
			}
			if p.peekTok.Type == lexer.TokenSemicolon {
				p.nextToken()
			}
		default:
			p.addError("unexpected token in class body: %s", p.curTok.Type)
		}
		p.nextToken()
	}
	return stmt
}

// parseExpression is the Pratt-parser entry point: parse a prefix
// expression then repeatedly fold in infix operators whose precedence
// exceeds minPrec.
func (p *Parser) parseExpression(minPrec int) ast.Expression {
	left := p.parsePrefix()
	if left == nil {
		return nil
	}

	for p.peekTok.Type != lexer.TokenSemicolon && minPrec < p.peekPrecedence() {
		switch p.peekTok.Type {
		case lexer.TokenLParen:
			p.nextToken()
			left = p.parseCallExpr(left)
		case lexer.TokenLBracket:
			p.nextToken()
			left = p.parseIndexExpr(left)
		case lexer.TokenDot:
			p.nextToken()
			left = p.parseFieldOrMethodExpr(left)
		case lexer.TokenAssign:
			p.nextToken()
			p.nextToken()
			value := p.parseExpression(precAssign - 1)
			left = &ast.AssignExpr{Target: left, Value: value}
		case lexer.TokenAnd, lexer.TokenAmpAmp, lexer.TokenOr, lexer.TokenPipePipe:
			op := p.peekTok.Literal
			prec := p.peekPrecedence()
			p.nextToken()
			p.nextToken()
			right := p.parseExpression(prec)
			left = &ast.LogicalExpr{Operator: op, Left: left, Right: right}
		case lexer.TokenDotDot:
			p.nextToken()
			p.nextToken()
			end := p.parseExpression(precRange)
			left = &ast.RangeLiteral{Start: left, End: end}
		default:
			op := p.peekTok.Literal
			prec := p.peekPrecedence()
			p.nextToken()
			p.nextToken()
			right := p.parseExpression(prec)
			left = &ast.InfixExpr{Operator: op, Left: left, Right: right}
		}
	}
	return left
}

func (p *Parser) parsePrefix() ast.Expression {
	switch p.curTok.Type {
	case lexer.TokenInteger:
		v, err := strconv.ParseInt(p.curTok.Literal, 10, 32)
		if err != nil {
			p.addError("invalid integer literal %q", p.curTok.Literal)
			return nil
		}
		return &ast.IntegerLiteral{Value: int32(v)}
	case lexer.TokenFloat:
		v, err := strconv.ParseFloat(p.curTok.Literal, 64)
		if err != nil {
			p.addError("invalid float literal %q", p.curTok.Literal)
			return nil
		}
		return &ast.FloatLiteral{Value: v}
	case lexer.TokenString:
		return &ast.StringLiteral{Value: p.curTok.Literal}
	case lexer.TokenTrue:
		return &ast.BoolLiteral{Value: true}
	case lexer.TokenFalse:
		return &ast.BoolLiteral{Value: false}
	case lexer.TokenNil:
		return &ast.NilLiteral{}
	case lexer.TokenIdentifier:
		return &ast.Identifier{Name: p.curTok.Literal}
	case lexer.TokenMinus:
		p.nextToken()
		operand := p.parseExpression(precUnary)
		return &ast.PrefixExpr{Operator: "-", Operand: operand}
	case lexer.TokenBang, lexer.TokenNot:
		p.nextToken()
		operand := p.parseExpression(precUnary)
		return &ast.PrefixExpr{Operator: "!", Operand: operand}
	case lexer.TokenTilde:
		p.nextToken()
		operand := p.parseExpression(precUnary)
		return &ast.PrefixExpr{Operator: "~", Operand: operand}
	case lexer.TokenLParen:
		p.nextToken()
		expr := p.parseExpression(precLowest)
		if !p.expectPeek(lexer.TokenRParen) {
			return nil
		}
		return expr
	case lexer.TokenLBracket:
		return p.parseArrayLiteral()
	case lexer.TokenLBrace:
		return p.parseDictLiteral()
	case lexer.TokenFn:
		return p.parseFunctionLiteral()
	case lexer.TokenSuper:
		return p.parseSuperCallExpr()
	case lexer.TokenYield:
		p.nextToken()
		value := p.parseExpression(precLowest)
		return &ast.YieldExpr{Value: value}
	case lexer.TokenAwait:
		p.nextToken()
		value := p.parseExpression(precUnary)
		return &ast.AwaitExpr{Value: value}
	default:
		p.addError("unexpected token %s", p.curTok.Type)
		return nil
	}
}

func (p *Parser) parseExpressionList(end lexer.TokenType) []ast.Expression {
	var list []ast.Expression
	if p.peekTok.Type == end {
		p.nextToken()
		return list
	}
	p.nextToken()
	list = append(list, p.parseExpression(precLowest))
	for p.peekTok.Type == lexer.TokenComma {
		p.nextToken()
		p.nextToken()
		list = append(list, p.parseExpression(precLowest))
	}
	if !p.expectPeek(end) {
		return nil
	}
	return list
}

func (p *Parser) parseCallExpr(callee ast.Expression) ast.Expression {
	args := p.parseExpressionList(lexer.TokenRParen)
	return &ast.CallExpr{Callee: callee, Args: args}
}

func (p *Parser) parseIndexExpr(receiver ast.Expression) ast.Expression {
	p.nextToken()
	index := p.parseExpression(precLowest)
	if !p.expectPeek(lexer.TokenRBracket) {
		return nil
	}
	return &ast.IndexExpr{Receiver: receiver, Index: index}
}

func (p *Parser) parseFieldOrMethodExpr(receiver ast.Expression) ast.Expression {
	if !p.expectPeek(lexer.TokenIdentifier) {
		return nil
	}
	name := p.curTok.Literal
	if p.peekTok.Type == lexer.TokenLParen {
		p.nextToken()
		args := p.parseExpressionList(lexer.TokenRParen)
		return &ast.MethodCallExpr{Receiver: receiver, Name: name, Args: args}
	}
	return &ast.FieldExpr{Receiver: receiver, Name: name}
}

func (p *Parser) parseSuperCallExpr() ast.Expression {
	if !p.expectPeek(lexer.TokenDot) {
		return nil
	}
	if !p.expectPeek(lexer.TokenIdentifier) {
		return nil
	}
	name := p.curTok.Literal
	if !p.expectPeek(lexer.TokenLParen) {
		return nil
	}
	args := p.parseExpressionList(lexer.TokenRParen)
	return &ast.SuperCallExpr{Name: name, Args: args}
}

func (p *Parser) parseArrayLiteral() ast.Expression {
	elements := p.parseExpressionList(lexer.TokenRBracket)
	return &ast.ArrayLiteral{Elements: elements}
}

func (p *Parser) parseDictLiteral() ast.Expression {
	dict := &ast.DictLiteral{}
	if p.peekTok.Type == lexer.TokenRBrace {
		p.nextToken()
		return dict
	}
	for {
		p.nextToken()
		key := p.parseExpression(precLowest)
		if !p.expectPeek(lexer.TokenColon) {
			return nil
		}
		p.nextToken()
		value := p.parseExpression(precLowest)
		dict.Keys = append(dict.Keys, key)
		dict.Values = append(dict.Values, value)
		if p.peekTok.Type != lexer.TokenComma {
			break
		}
		p.nextToken()
	}
	if !p.expectPeek(lexer.TokenRBrace) {
		return nil
	}
	return dict
}

// parseFunctionLiteral parses `fn name(params) { body }` or the anonymous
// `fn(params) { body }` expression form; a `yield` found by containsYield
// marks the compiled Function as a generator (spec.md §4.9). That scan
// looks at expression statements, let initializers, assignment values,
// binary operands, and the blocks of if/else, while, for, try/catch and
// nested braces. It does not look inside return, print or throw
// statements, an `else if` branch, or any other kind of expression.
func (p *Parser) parseFunctionLiteral() ast.Expression {
	fn := &ast.FunctionLiteral{}
	if p.peekTok.Type == lexer.TokenIdentifier {
		p.nextToken()
		fn.Name = p.curTok.Literal
	}
	if !p.expectPeek(lexer.TokenLParen) {
		return nil
	}
	if p.peekTok.Type != lexer.TokenRParen {
		p.nextToken()
		fn.Params = append(fn.Params, p.curTok.Literal)
		for p.peekTok.Type == lexer.TokenComma {
			p.nextToken()
			p.nextToken()
			fn.Params = append(fn.Params, p.curTok.Literal)
		}
	}
	if !p.expectPeek(lexer.TokenRParen) {
		return nil
	}
	if !p.expectPeek(lexer.TokenLBrace) {
		return nil
	}
	block := p.parseBlockStatement()
	fn.Body = block.Statements
	fn.IsGenerator = containsYield(fn.Body)
	return fn
}

func containsYield(stmts []ast.Statement) bool {
	for _, s := range stmts {
		switch n := s.(type) {
		case *ast.ExprStatement:
			if exprContainsYield(n.Expr) {
				return true
			}
		case *ast.LetStatement:
			if exprContainsYield(n.Value) {
				return true
			}
		case *ast.IfStatement:
			if containsYield(n.Then.Statements) {
				return true
			}
			if blk, ok := n.Else.(*ast.BlockStatement); ok && containsYield(blk.Statements) {
				return true
			}
		case *ast.WhileStatement:
			if containsYield(n.Body.Statements) {
				return true
			}
		case *ast.ForStatement:
			if containsYield(n.Body.Statements) {
				return true
			}
		case *ast.BlockStatement:
			if containsYield(n.Statements) {
				return true
			}
		case *ast.TryStatement:
			if containsYield(n.Body.Statements) {
				return true
			}
			if n.Catch != nil && containsYield(n.Catch.Statements) {
				return true
			}
		}
	}
	return false
}

func exprContainsYield(e ast.Expression) bool {
	switch n := e.(type) {
	case *ast.YieldExpr:
		return true
	case *ast.AssignExpr:
		return exprContainsYield(n.Value)
	case *ast.InfixExpr:
		return exprContainsYield(n.Left) || exprContainsYield(n.Right)
	}
	return false
}

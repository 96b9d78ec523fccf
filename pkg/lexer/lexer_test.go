package lexer

import "testing"

func TestNextToken_Punctuation(t *testing.T) {
	input := `( ) { } [ ] , ; : . ..`

	tests := []struct {
		expectedType    TokenType
		expectedLiteral string
	}{
		{TokenLParen, "("},
		{TokenRParen, ")"},
		{TokenLBrace, "{"},
		{TokenRBrace, "}"},
		{TokenLBracket, "["},
		{TokenRBracket, "]"},
		{TokenComma, ","},
		{TokenSemicolon, ";"},
		{TokenColon, ":"},
		{TokenDot, "."},
		{TokenDotDot, ".."},
		{TokenEOF, ""},
	}

	l := New(input)
	for i, tt := range tests {
		tok := l.NextToken()
		if tok.Type != tt.expectedType {
			t.Fatalf("tests[%d] - type wrong. expected=%v, got=%v (%q)", i, tt.expectedType, tok.Type, tok.Literal)
		}
		if tok.Literal != tt.expectedLiteral {
			t.Fatalf("tests[%d] - literal wrong. expected=%q, got=%q", i, tt.expectedLiteral, tok.Literal)
		}
	}
}

func TestNextToken_Operators(t *testing.T) {
	input := `+ - * ** / % ~ ^ & && | || < <= << > >= >> = == !=`

	tests := []TokenType{
		TokenPlus, TokenMinus, TokenStar, TokenStarStar, TokenSlash, TokenPercent,
		TokenTilde, TokenCaret, TokenAmp, TokenAmpAmp, TokenPipe, TokenPipePipe,
		TokenLess, TokenLessEq, TokenShl, TokenGreater, TokenGreaterEq, TokenShr,
		TokenAssign, TokenEqEq, TokenNotEq,
	}

	l := New(input)
	for i, expected := range tests {
		tok := l.NextToken()
		if tok.Type != expected {
			t.Fatalf("tests[%d] - type wrong. expected=%v, got=%v (%q)", i, expected, tok.Type, tok.Literal)
		}
	}
}

func TestNextToken_Keywords(t *testing.T) {
	input := "fn let if else while for in break continue return print true false nil class super try catch throw yield await import from and or not"

	tests := []TokenType{
		TokenFn, TokenLet, TokenIf, TokenElse, TokenWhile, TokenFor, TokenIn,
		TokenBreak, TokenContinue, TokenReturn, TokenPrint, TokenTrue, TokenFalse,
		TokenNil, TokenClass, TokenSuper, TokenTry, TokenCatch, TokenThrow,
		TokenYield, TokenAwait, TokenImport, TokenFrom, TokenAnd, TokenOr, TokenNot,
	}

	l := New(input)
	for i, expected := range tests {
		tok := l.NextToken()
		if tok.Type != expected {
			t.Fatalf("tests[%d] - expected keyword %v, got %v (%q)", i, expected, tok.Type, tok.Literal)
		}
	}
}

func TestNextToken_Identifier(t *testing.T) {
	l := New("counter_1")
	tok := l.NextToken()
	if tok.Type != TokenIdentifier || tok.Literal != "counter_1" {
		t.Fatalf("expected identifier 'counter_1', got %v %q", tok.Type, tok.Literal)
	}
}

func TestNextToken_Numbers(t *testing.T) {
	tests := []struct {
		input    string
		wantType TokenType
		wantLit  string
	}{
		{"42", TokenInteger, "42"},
		{"3.14", TokenFloat, "3.14"},
	}
	for _, tt := range tests {
		l := New(tt.input)
		tok := l.NextToken()
		if tok.Type != tt.wantType || tok.Literal != tt.wantLit {
			t.Fatalf("NextToken(%q) = %v %q, want %v %q", tt.input, tok.Type, tok.Literal, tt.wantType, tt.wantLit)
		}
	}
}

func TestNextToken_String(t *testing.T) {
	l := New(`"hello\nworld"`)
	tok := l.NextToken()
	if tok.Type != TokenString {
		t.Fatalf("expected string token, got %v", tok.Type)
	}
	if tok.Literal != "hello\nworld" {
		t.Fatalf("expected escape-processed literal, got %q", tok.Literal)
	}
}

func TestNextToken_SkipsComments(t *testing.T) {
	input := "// a line comment\n/* a block\ncomment */ 7"
	l := New(input)
	tok := l.NextToken()
	if tok.Type != TokenInteger || tok.Literal != "7" {
		t.Fatalf("expected integer 7 after comments, got %v %q", tok.Type, tok.Literal)
	}
}

func TestNextToken_IllegalCharacter(t *testing.T) {
	l := New("@")
	tok := l.NextToken()
	if tok.Type != TokenIllegal {
		t.Fatalf("expected illegal token, got %v", tok.Type)
	}
}

func TestNextToken_LineTracking(t *testing.T) {
	l := New("1\n2\n3")
	var lines []int
	for {
		tok := l.NextToken()
		if tok.Type == TokenEOF {
			break
		}
		lines = append(lines, tok.Line)
	}
	want := []int{1, 2, 3}
	if len(lines) != len(want) {
		t.Fatalf("expected %d tokens, got %d", len(want), len(lines))
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("token %d: expected line %d, got %d", i, want[i], lines[i])
		}
	}
}

package lexer

import (
	"testing"

	"github.com/ember-lang/ember/internal/token"
)

func TestLexerBasicTokens(t *testing.T) {
	input := `
fun add(a, b) {
  var c = a + b;
  if (c >= 10 and a != b) {
    return c;
  }
}
`

	expected := []token.Type{
		token.Fun, token.Ident, token.LParen, token.Ident, token.Comma, token.Ident, token.RParen, token.LBrace,
		token.Var, token.Ident, token.Equal, token.Ident, token.Plus, token.Ident, token.Semicolon,
		token.If, token.LParen, token.Ident, token.GreaterEqual, token.Number, token.And, token.Ident, token.BangEqual, token.Ident, token.RParen, token.LBrace,
		token.Return, token.Ident, token.Semicolon,
		token.RBrace,
		token.RBrace,
		token.EOF,
	}

	l := New(input)
	for i, typ := range expected {
		tok := l.NextToken()
		if tok.Type != typ {
			t.Fatalf("token %d: expected %v, got %v (%q)", i, typ, tok.Type, tok.Literal)
		}
	}
}

func TestLexerStringLiteral(t *testing.T) {
	l := New(`"hello world"`)
	tok := l.NextToken()
	if tok.Type != token.String || tok.Literal != "hello world" {
		t.Fatalf("expected string literal, got %v %q", tok.Type, tok.Literal)
	}
	if l.NextToken().Type != token.EOF {
		t.Fatalf("expected EOF after string")
	}
}

func TestLexerUnterminatedString(t *testing.T) {
	l := New(`"oops`)
	tok := l.NextToken()
	if tok.Type != token.Illegal {
		t.Fatalf("expected illegal token for unterminated string, got %v", tok.Type)
	}
}

func TestLexerNumberLiteral(t *testing.T) {
	l := New(`3.14 42`)
	tok := l.NextToken()
	if tok.Type != token.Number || tok.Literal != "3.14" {
		t.Fatalf("expected 3.14, got %v %q", tok.Type, tok.Literal)
	}
	tok = l.NextToken()
	if tok.Type != token.Number || tok.Literal != "42" {
		t.Fatalf("expected 42, got %v %q", tok.Type, tok.Literal)
	}
}

func TestLexerComments(t *testing.T) {
	input := "// line comment\nvar a = 1;"
	expected := []token.Type{token.Var, token.Ident, token.Equal, token.Number, token.Semicolon, token.EOF}
	l := New(input)
	for i, typ := range expected {
		tok := l.NextToken()
		if tok.Type != typ {
			t.Fatalf("token %d: expected %v, got %v (%q)", i, typ, tok.Type, tok.Literal)
		}
	}
}

func TestLexerClassSyntax(t *testing.T) {
	input := `class Cake < Pastry { bake() { return this.temp; } }`
	expected := []token.Type{
		token.Class, token.Ident, token.Less, token.Ident, token.LBrace,
		token.Ident, token.LParen, token.RParen, token.LBrace,
		token.Return, token.This, token.Dot, token.Ident, token.Semicolon,
		token.RBrace, token.RBrace, token.EOF,
	}
	l := New(input)
	for i, typ := range expected {
		tok := l.NextToken()
		if tok.Type != typ {
			t.Fatalf("token %d: expected %v, got %v (%q)", i, typ, tok.Type, tok.Literal)
		}
	}
}

func TestLexerTernaryAndIndexing(t *testing.T) {
	input := `arr[0] = (n > 0) ? "pos" : "neg";`
	expected := []token.Type{
		token.Ident, token.LBracket, token.Number, token.RBracket, token.Equal,
		token.LParen, token.Ident, token.Greater, token.Number, token.RParen,
		token.Question, token.String, token.Colon, token.String, token.Semicolon,
		token.EOF,
	}
	l := New(input)
	for i, typ := range expected {
		tok := l.NextToken()
		if tok.Type != typ {
			t.Fatalf("token %d: expected %v, got %v (%q)", i, typ, tok.Type, tok.Literal)
		}
	}
}

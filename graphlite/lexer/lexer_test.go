package lexer

import (
	"testing"

	"github.com/mwatts/graphlite/token"
)

func kinds(t *testing.T, toks []token.Token) []token.Kind {
	t.Helper()
	out := make([]token.Kind, len(toks))
	for i, tok := range toks {
		out[i] = tok.Kind
	}
	return out
}

func TestTokenizeBasicMatch(t *testing.T) {
	toks, err := Tokenize("MATCH (a:Person)-[r:KNOWS]->(b) WHERE a.age < 30 RETURN a.name")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if toks[len(toks)-1].Kind != token.EOF {
		t.Fatalf("expected trailing EOF, got %v", toks[len(toks)-1])
	}
	want := []token.Kind{
		token.MATCH, token.LParen, token.Ident, token.Colon, token.Ident, token.RParen,
		token.ArrowRight, token.LBracket, token.Ident, token.Colon, token.Ident, token.RBracket,
		token.LParen, token.Ident, token.RParen,
		token.WHERE, token.Ident, token.Dot, token.Ident, token.Lt, token.IntLit,
		token.RETURN, token.Ident, token.Dot, token.Ident,
		token.EOF,
	}
	got := kinds(t, toks)
	if len(got) != len(want) {
		t.Fatalf("token count mismatch: got %d want %d (%v)", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("token %d: got %v want %v", i, got[i], want[i])
		}
	}
}

func TestTokenizeNegativeFloatNotSplit(t *testing.T) {
	toks, err := Tokenize("-12.3")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(toks) != 2 || toks[0].Kind != token.FloatLit || toks[0].Text != "-12.3" {
		t.Fatalf("expected single FloatLit -12.3, got %+v", toks)
	}
}

func TestTokenizeKeywordWordBoundary(t *testing.T) {
	toks, err := Tokenize("MATCHES matches_helper")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if toks[0].Kind != token.MATCHES {
		t.Fatalf("expected MATCHES keyword, got %v", toks[0])
	}
	if toks[1].Kind != token.Ident || toks[1].Text != "matches_helper" {
		t.Fatalf("expected identifier matches_helper, got %+v", toks[1])
	}
}

func TestTokenizeVectorLiteral(t *testing.T) {
	toks, err := Tokenize("[1.0, 2.0, 3.0]")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if toks[0].Kind != token.VectorLit {
		t.Fatalf("expected VectorLit, got %+v", toks[0])
	}
}

func TestTokenizeBacktickIdentifier(t *testing.T) {
	toks, err := Tokenize("MATCH (`my var`:Person)")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	found := false
	for _, tk := range toks {
		if tk.Kind == token.BacktickIdent && tk.Text == "my var" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected backtick identifier 'my var', got %+v", toks)
	}
}

func TestTokenizeBacktickEscape(t *testing.T) {
	toks, err := Tokenize("`a``b`")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if toks[0].Kind != token.BacktickIdent || toks[0].Text != "a`b" {
		t.Fatalf("expected escaped backtick identifier, got %+v", toks[0])
	}
}

func TestTokenizeStringEscapes(t *testing.T) {
	toks, err := Tokenize(`"hello\nworld"`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if toks[0].Kind != token.StringLit || toks[0].Text != "hello\nworld" {
		t.Fatalf("unexpected token: %+v", toks[0])
	}
}

func TestTokenizeParameterAndOperators(t *testing.T) {
	toks, err := Tokenize("$name <> $other <= $third")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []token.Kind{token.Variable, token.NotEq, token.Variable, token.LtEq, token.Variable, token.EOF}
	got := kinds(t, toks)
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("token %d: got %v want %v (%+v)", i, got[i], want[i], toks)
		}
	}
}

func TestTokenizeMultiCharOperatorsBeforeSingle(t *testing.T) {
	toks, err := Tokenize("a =~ b ~= c || d")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []token.Kind{token.Ident, token.RegexMatch, token.Ident, token.FuzzyEq, token.Ident, token.Concat, token.Ident, token.EOF}
	got := kinds(t, toks)
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("token %d: got %v want %v", i, got[i], want[i])
		}
	}
}

func TestTokenizeProgressInvariant(t *testing.T) {
	// A pathological run of comments and whitespace must still terminate.
	_, err := Tokenize("   // comment\n /* block */  \t\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestTokenizeIllegalCharacter(t *testing.T) {
	_, err := Tokenize("MATCH (a) # bad")
	if err == nil {
		t.Fatalf("expected lex error for '#'")
	}
	if _, ok := err.(*LexError); !ok {
		t.Fatalf("expected *LexError, got %T", err)
	}
}

// Package lexer tokenizes GQL source text into a flat token stream for the
// recursive-descent parser.
//
// File organization:
//   - lexer.go: Lexer struct, main scan loop and the step-ordered dispatch
//   - literals.go: numeric, string, backtick-identifier and vector literals
//   - error.go: LexError
//
// Start with Tokenize() to understand the scan loop.
package lexer

import (
	"strings"
	"unicode"

	"github.com/mwatts/graphlite/token"
)

// Lexer performs a single forward pass over GQL source text.
type Lexer struct {
	input string
	pos   int
	line  int
	col   int
}

func New(input string) *Lexer {
	return &Lexer{input: input, line: 1, col: 1}
}

// Tokenize scans the entire input and returns the token stream terminated by
// an EOF sentinel, or a LexError describing the remaining unscanned slice.
func Tokenize(input string) ([]token.Token, error) {
	l := New(input)
	var out []token.Token
	for {
		tok, err := l.next()
		if err != nil {
			return nil, err
		}
		out = append(out, tok)
		if tok.Kind == token.EOF {
			return out, nil
		}
	}
}

func (l *Lexer) eof() bool { return l.pos >= len(l.input) }

func (l *Lexer) peekByte() byte {
	if l.eof() {
		return 0
	}
	return l.input[l.pos]
}

func (l *Lexer) peekByteAt(offset int) byte {
	p := l.pos + offset
	if p >= len(l.input) {
		return 0
	}
	return l.input[p]
}

func (l *Lexer) advanceN(n int) {
	for i := 0; i < n && !l.eof(); i++ {
		if l.input[l.pos] == '\n' {
			l.line++
			l.col = 1
		} else {
			l.col++
		}
		l.pos++
	}
}

func (l *Lexer) mark() (int, int, int) { return l.pos, l.line, l.col }

func (l *Lexer) tok(kind token.Kind, text string, offset, line, col int) token.Token {
	return token.Token{Kind: kind, Text: text, Offset: offset, Line: line, Column: col}
}

// next produces a single token, following the fixed step order in §4.1: the
// main loop is the progress invariant's enforcement point -- every step that
// succeeds must consume at least one byte (checked below), and a step that
// can legally consume zero bytes (whitespace) must itself guarantee
// progress or report EOF.
func (l *Lexer) next() (token.Token, error) {
	for {
		if l.eof() {
			off, ln, cl := l.mark()
			return l.tok(token.EOF, "", off, ln, cl), nil
		}

		before := l.pos
		consumed, err := l.skipWhitespaceAndComments()
		if err != nil {
			return token.Token{}, err
		}
		if consumed {
			continue
		}
		if l.pos == before && l.eof() {
			off, ln, cl := l.mark()
			return l.tok(token.EOF, "", off, ln, cl), nil
		}
		break
	}

	off, ln, cl := l.mark()
	start := l.pos

	if tk, ok, err := l.tryParameter(off, ln, cl); err != nil {
		return token.Token{}, err
	} else if ok {
		return l.requireProgress(tk, start)
	}

	if tk, ok := l.tryVectorLiteral(off, ln, cl); ok {
		return l.requireProgress(tk, start)
	}

	if tk, ok, err := l.tryNumber(off, ln, cl); err != nil {
		return token.Token{}, err
	} else if ok {
		return l.requireProgress(tk, start)
	}

	if tk, ok, err := l.tryBacktickIdent(off, ln, cl); err != nil {
		return token.Token{}, err
	} else if ok {
		return l.requireProgress(tk, start)
	}

	if tk, ok, err := l.tryStringLiteral(off, ln, cl); err != nil {
		return token.Token{}, err
	} else if ok {
		return l.requireProgress(tk, start)
	}

	if tk, ok := l.tryOperatorOrKeyword(off, ln, cl); ok {
		return l.requireProgress(tk, start)
	}

	if tk, ok := l.tryIdentifier(off, ln, cl); ok {
		return l.requireProgress(tk, start)
	}

	return token.Token{}, &LexError{Remaining: l.input[l.pos:], Offset: l.pos, Line: l.line, Column: l.col}
}

func (l *Lexer) requireProgress(tk token.Token, start int) (token.Token, error) {
	if l.pos == start {
		return token.Token{}, &LexError{Remaining: l.input[l.pos:], Offset: l.pos, Line: l.line, Column: l.col}
	}
	return tk, nil
}

// skipWhitespaceAndComments consumes leading whitespace, "//" line comments
// and "/* */" block comments. Returns whether anything was consumed.
func (l *Lexer) skipWhitespaceAndComments() (bool, error) {
	consumedAny := false
	for !l.eof() {
		ch := l.peekByte()
		if unicode.IsSpace(rune(ch)) {
			l.advanceN(1)
			consumedAny = true
			continue
		}
		if ch == '/' && l.peekByteAt(1) == '/' {
			for !l.eof() && l.peekByte() != '\n' {
				l.advanceN(1)
			}
			consumedAny = true
			continue
		}
		if ch == '/' && l.peekByteAt(1) == '*' {
			l.advanceN(2)
			for {
				if l.eof() {
					return consumedAny, &LexError{Remaining: l.input[l.pos:], Offset: l.pos, Line: l.line, Column: l.col, Message: "unterminated block comment"}
				}
				if l.peekByte() == '*' && l.peekByteAt(1) == '/' {
					l.advanceN(2)
					break
				}
				l.advanceN(1)
			}
			consumedAny = true
			continue
		}
		break
	}
	return consumedAny, nil
}

func isIdentStart(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isIdentCont(ch byte) bool {
	return isIdentStart(ch) || (ch >= '0' && ch <= '9')
}

func (l *Lexer) tryParameter(off, ln, cl int) (token.Token, bool, error) {
	if l.peekByte() != '$' {
		return token.Token{}, false, nil
	}
	start := l.pos
	l.advanceN(1)
	if !isIdentStart(l.peekByte()) {
		return token.Token{}, false, &LexError{Remaining: l.input[start:], Offset: start, Line: ln, Column: cl, Message: "expected identifier after '$'"}
	}
	nameStart := l.pos
	for !l.eof() && isIdentCont(l.peekByte()) {
		l.advanceN(1)
	}
	return l.tok(token.Variable, l.input[nameStart:l.pos], off, ln, cl), true, nil
}

func (l *Lexer) tryIdentifier(off, ln, cl int) (token.Token, bool) {
	if !isIdentStart(l.peekByte()) {
		return token.Token{}, false
	}
	start := l.pos
	for !l.eof() && isIdentCont(l.peekByte()) {
		l.advanceN(1)
	}
	return l.tok(token.Ident, l.input[start:l.pos], off, ln, cl), true
}

// tryOperatorOrKeyword handles steps 9-11: multi-char operators before
// single-char ones, then keyword/boolean/null literals with a
// word-boundary check, then bare punctuation.
func (l *Lexer) tryOperatorOrKeyword(off, ln, cl int) (token.Token, bool) {
	// Multi-char operators, longest first.
	multi := []struct {
		s string
		k token.Kind
	}{
		{"<->", token.ArrowBoth},
		{"||", token.Concat},
		{"!=", token.NotEq},
		{"<>", token.NotEq},
		{"<=", token.LtEq},
		{">=", token.GtEq},
		{"=~", token.RegexMatch},
		{"~=", token.FuzzyEq},
		{"->", token.ArrowRight},
		{"<-", token.ArrowLeft},
	}
	for _, m := range multi {
		if strings.HasPrefix(l.input[l.pos:], m.s) {
			l.advanceN(len(m.s))
			return l.tok(m.k, m.s, off, ln, cl), true
		}
	}

	if isIdentStart(l.peekByte()) {
		start := l.pos
		for !l.eof() && isIdentCont(l.peekByte()) {
			l.advanceN(1)
		}
		word := l.input[start:l.pos]
		upper := strings.ToUpper(word)
		switch upper {
		case "TRUE":
			return l.tok(token.BoolLit, "true", off, ln, cl), true
		case "FALSE":
			return l.tok(token.BoolLit, "false", off, ln, cl), true
		case "NULL":
			return l.tok(token.NullLit, "null", off, ln, cl), true
		}
		if k, ok := token.Lookup(upper); ok {
			return l.tok(k, upper, off, ln, cl), true
		}
		// Not a keyword: rewind, let tryIdentifier handle it.
		l.pos, l.line, l.col = start, ln, cl
		return token.Token{}, false
	}

	single := map[byte]token.Kind{
		'+': token.Plus, '-': token.Minus, '*': token.Star, '/': token.Slash,
		'%': token.Percent, '^': token.Caret, '=': token.Eq, '<': token.Lt,
		'>': token.Gt, '(': token.LParen, ')': token.RParen,
		'[': token.LBracket, ']': token.RBracket, '{': token.LBrace, '}': token.RBrace,
		',': token.Comma, ':': token.Colon, ';': token.Semicolon, '.': token.Dot,
		'?': token.Question,
	}
	ch := l.peekByte()
	if k, ok := single[ch]; ok {
		l.advanceN(1)
		return l.tok(k, string(ch), off, ln, cl), true
	}
	return token.Token{}, false
}

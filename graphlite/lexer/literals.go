package lexer

import (
	"strings"

	"github.com/mwatts/graphlite/token"
)

func isDigit(ch byte) bool { return ch >= '0' && ch <= '9' }

// tryVectorLiteral recognizes "[num, num, ...]" eagerly (step 4), ahead of
// treating '[' as a bare bracket, so list-of-numbers vector literals are
// never confused with list constructor syntax that mixes non-numeric
// elements.
func (l *Lexer) tryVectorLiteral(off, ln, cl int) (token.Token, bool) {
	if l.peekByte() != '[' {
		return token.Token{}, false
	}
	save := l.pos
	saveLine, saveCol := l.line, l.col
	l.advanceN(1)

	var sb strings.Builder
	sb.WriteByte('[')
	sawOne := false
	for {
		for !l.eof() && (l.peekByte() == ' ' || l.peekByte() == '\t' || l.peekByte() == '\n') {
			l.advanceN(1)
		}
		if l.eof() {
			l.pos, l.line, l.col = save, saveLine, saveCol
			return token.Token{}, false
		}
		if l.peekByte() == ']' {
			if !sawOne {
				l.pos, l.line, l.col = save, saveLine, saveCol
				return token.Token{}, false
			}
			l.advanceN(1)
			sb.WriteByte(']')
			return l.tok(token.VectorLit, sb.String(), off, ln, cl), true
		}
		numStart := l.pos
		if l.peekByte() == '-' {
			l.advanceN(1)
		}
		digits := false
		for !l.eof() && isDigit(l.peekByte()) {
			l.advanceN(1)
			digits = true
		}
		if l.peekByte() == '.' {
			l.advanceN(1)
			for !l.eof() && isDigit(l.peekByte()) {
				l.advanceN(1)
				digits = true
			}
		}
		if !digits {
			l.pos, l.line, l.col = save, saveLine, saveCol
			return token.Token{}, false
		}
		sb.WriteString(l.input[numStart:l.pos])
		sawOne = true
		for !l.eof() && (l.peekByte() == ' ' || l.peekByte() == '\t') {
			l.advanceN(1)
		}
		if l.peekByte() == ',' {
			l.advanceN(1)
			sb.WriteByte(',')
			continue
		}
		if l.peekByte() == ']' {
			continue
		}
		l.pos, l.line, l.col = save, saveLine, saveCol
		return token.Token{}, false
	}
}

// tryNumber handles step 5: float before integer, so "-12.3" lexes as a
// single FloatLit rather than Minus, IntLit, Dot, IntLit.
func (l *Lexer) tryNumber(off, ln, cl int) (token.Token, bool, error) {
	start := l.pos
	p := l.pos
	neg := false
	if p < len(l.input) && l.input[p] == '-' {
		neg = true
		p++
	}
	digitStart := p
	for p < len(l.input) && isDigit(l.input[p]) {
		p++
	}
	if p == digitStart {
		return token.Token{}, false, nil
	}
	isFloat := false
	if p < len(l.input) && l.input[p] == '.' && p+1 < len(l.input) && isDigit(l.input[p+1]) {
		isFloat = true
		p++
		for p < len(l.input) && isDigit(l.input[p]) {
			p++
		}
	}
	if p < len(l.input) && (l.input[p] == 'e' || l.input[p] == 'E') {
		q := p + 1
		if q < len(l.input) && (l.input[q] == '+' || l.input[q] == '-') {
			q++
		}
		if q < len(l.input) && isDigit(l.input[q]) {
			isFloat = true
			p = q
			for p < len(l.input) && isDigit(l.input[p]) {
				p++
			}
		}
	}
	_ = neg
	text := l.input[start:p]
	l.advanceN(p - start)
	if isFloat {
		return l.tok(token.FloatLit, text, off, ln, cl), true, nil
	}
	return l.tok(token.IntLit, text, off, ln, cl), true, nil
}

// tryBacktickIdent handles step 6: `` `` `` is the escape for a literal
// backtick inside a backtick-delimited identifier.
func (l *Lexer) tryBacktickIdent(off, ln, cl int) (token.Token, bool, error) {
	if l.peekByte() != '`' {
		return token.Token{}, false, nil
	}
	start := l.pos
	l.advanceN(1)
	var sb strings.Builder
	for {
		if l.eof() {
			return token.Token{}, false, &LexError{Remaining: l.input[start:], Offset: start, Line: ln, Column: cl, Message: "unterminated backtick identifier"}
		}
		if l.peekByte() == '`' {
			if l.peekByteAt(1) == '`' {
				sb.WriteByte('`')
				l.advanceN(2)
				continue
			}
			l.advanceN(1)
			break
		}
		sb.WriteByte(l.peekByte())
		l.advanceN(1)
	}
	return l.tok(token.BacktickIdent, sb.String(), off, ln, cl), true, nil
}

// tryStringLiteral handles step 7: double or single quoted, backslash escapes.
func (l *Lexer) tryStringLiteral(off, ln, cl int) (token.Token, bool, error) {
	quote := l.peekByte()
	if quote != '"' && quote != '\'' {
		return token.Token{}, false, nil
	}
	start := l.pos
	l.advanceN(1)
	var sb strings.Builder
	for {
		if l.eof() {
			return token.Token{}, false, &LexError{Remaining: l.input[start:], Offset: start, Line: ln, Column: cl, Message: "unterminated string literal"}
		}
		ch := l.peekByte()
		if ch == quote {
			l.advanceN(1)
			break
		}
		if ch == '\\' {
			l.advanceN(1)
			if l.eof() {
				return token.Token{}, false, &LexError{Remaining: l.input[start:], Offset: start, Line: ln, Column: cl, Message: "unterminated escape sequence"}
			}
			esc := l.peekByte()
			switch esc {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case 'r':
				sb.WriteByte('\r')
			case '\\':
				sb.WriteByte('\\')
			case '"':
				sb.WriteByte('"')
			case '\'':
				sb.WriteByte('\'')
			default:
				sb.WriteByte(esc)
			}
			l.advanceN(1)
			continue
		}
		sb.WriteByte(ch)
		l.advanceN(1)
	}
	return l.tok(token.StringLit, sb.String(), off, ln, cl), true, nil
}

// Package parser implements a hand-written recursive-descent parser that
// turns a GQL token stream into a typed ast.Document.
//
// File organization:
//   - parser.go: Parser struct, token cursor helpers, top-level dispatch
//   - clauses.go: MATCH/WHERE/WITH/RETURN/UNWIND/GROUP BY/ORDER BY/LIMIT
//   - expression.go: precedence-climbing expression parser
//   - pattern.go: path pattern / node / edge parsing
//   - ddl.go: catalog DDL, session, transaction, index, procedure statements
//
// Start with Parse() in parser.go to follow the statement dispatch.
package parser

import (
	"strconv"

	"github.com/mwatts/graphlite/ast"
	"github.com/mwatts/graphlite/lexer"
	"github.com/mwatts/graphlite/token"
)

// Parser holds the token cursor. Each top-level entry point is selected by
// the leading keyword in Parse.
type Parser struct {
	toks []token.Token
	pos  int
}

// Parse tokenizes and parses a single GQL statement into a Document.
func Parse(source string) (*ast.Document, error) {
	toks, err := lexer.Tokenize(source)
	if err != nil {
		return nil, err
	}
	p := &Parser{toks: toks}
	return p.parseDocument()
}

func (p *Parser) cur() token.Token  { return p.toks[p.pos] }
func (p *Parser) peekN(n int) token.Token {
	if p.pos+n >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.pos+n]
}
func (p *Parser) advance() token.Token {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *Parser) at(k token.Kind) bool { return p.cur().Kind == k }

func (p *Parser) accept(k token.Kind) (token.Token, bool) {
	if p.at(k) {
		return p.advance(), true
	}
	return token.Token{}, false
}

func (p *Parser) expect(k token.Kind) (token.Token, error) {
	if p.at(k) {
		return p.advance(), nil
	}
	return token.Token{}, p.errExpected(k.String())
}

func (p *Parser) errExpected(expected ...string) error {
	c := p.cur()
	return &ParseError{Offset: c.Offset, Line: c.Line, Column: c.Column, Got: c, Expected: expected}
}

// identName accepts an Ident, backtick identifier, or keyword used as an
// identifier (GQL keywords are not fully reserved in property/label/alias
// position).
func (p *Parser) identName() (string, bool) {
	switch p.cur().Kind {
	case token.Ident, token.BacktickIdent:
		t := p.advance()
		return t.Text, true
	}
	if k := p.cur().Kind; k >= token.MATCH && k <= token.UNIQUE {
		t := p.advance()
		return t.Text, true
	}
	return "", false
}

func (p *Parser) parseDocument() (*ast.Document, error) {
	stmt, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	return &ast.Document{Statement: stmt}, nil
}

// parseStatement dispatches on the leading keyword (§4.2).
func (p *Parser) parseStatement() (ast.Statement, error) {
	switch p.cur().Kind {
	case token.AT:
		return p.parseAtLocation()
	case token.SESSION:
		return p.parseSessionStatement()
	case token.START, token.COMMIT, token.ROLLBACK:
		return p.parseTransactionStatement()
	case token.CREATE, token.DROP:
		if p.peekIsIndexDDL() {
			return p.parseIndexStatement()
		}
		return p.parseCatalogStatement()
	case token.CALL:
		return p.parseCallStatement()
	case token.DECLARE:
		return p.parseDeclare()
	case token.SELECT:
		return p.parseSelectStatement()
	case token.MATCH:
		return p.parseMatchPrefixedStatement()
	case token.INSERT:
		stmt, err := p.parseInsertStatement(nil)
		if err != nil {
			return nil, err
		}
		return stmt, nil
	case token.SET, token.REMOVE, token.DELETE, token.DETACH:
		return p.parseBareDataStatement()
	default:
		q, err := p.parseQuery()
		if err != nil {
			return nil, err
		}
		return &ast.QueryStatement{Query: q}, nil
	}
}

func (p *Parser) peekIsIndexDDL() bool {
	return p.peekN(1).Kind == token.INDEX || (p.peekN(1).Kind == token.UNIQUE && p.peekN(2).Kind == token.INDEX)
}

// parseMatchPrefixedStatement handles "MATCH ... DELETE/SET/REMOVE/INSERT"
// which is a DataStatement, not a Query-with-mutation (§4.2), versus plain
// "MATCH ... RETURN ..." which is a Query.
func (p *Parser) parseMatchPrefixedStatement() (ast.Statement, error) {
	save := p.pos
	match, err := p.parseMatchClause()
	if err != nil {
		return nil, err
	}
	var where ast.Expression
	if _, ok := p.accept(token.WHERE); ok {
		where, err = p.parseExpression()
		if err != nil {
			return nil, err
		}
	}
	var with *ast.WithClause
	for p.at(token.WITH) {
		with, err = p.parseWithClause()
		if err != nil {
			return nil, err
		}
	}
	switch p.cur().Kind {
	case token.INSERT:
		stmt, err := p.parseInsertStatement(match.Patterns)
		if err != nil {
			return nil, err
		}
		if ds, ok := stmt.(*ast.DataStatement); ok {
			ds.Where, ds.With = where, with
		}
		return stmt, nil
	case token.SET:
		return p.parseSetStatement(match.Patterns, where, with)
	case token.REMOVE:
		return p.parseRemoveStatement(match.Patterns, where, with)
	case token.DETACH, token.DELETE:
		return p.parseDeleteStatement(match.Patterns, where, with)
	default:
		// Not a mutation: rewind and parse as a full Query instead.
		p.pos = save
		q, err := p.parseQuery()
		if err != nil {
			return nil, err
		}
		return &ast.QueryStatement{Query: q}, nil
	}
}

func (p *Parser) parseBareDataStatement() (ast.Statement, error) {
	switch p.cur().Kind {
	case token.INSERT:
		return p.parseInsertStatement(nil)
	case token.SET:
		return p.parseSetStatement(nil, nil, nil)
	case token.REMOVE:
		return p.parseRemoveStatement(nil, nil, nil)
	case token.DETACH, token.DELETE:
		return p.parseDeleteStatement(nil, nil, nil)
	}
	return nil, p.errExpected("INSERT", "SET", "REMOVE", "DELETE", "DETACH")
}

func (p *Parser) parseAtLocation() (ast.Statement, error) {
	p.advance() // AT
	ref, ok := p.identName()
	if !ok {
		return nil, p.errExpected("graph reference")
	}
	inner, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	return &ast.AtLocation{GraphRef: ref, Inner: inner}, nil
}

func (p *Parser) parseDeclare() (ast.Statement, error) {
	p.advance() // DECLARE
	name, ok := p.identName()
	if !ok {
		return nil, p.errExpected("identifier")
	}
	typeName := ""
	if tn, ok := p.identName(); ok {
		typeName = tn
	}
	return &ast.Declare{Name: name, Type: typeName}, nil
}

func (p *Parser) parseIntLiteral() (int, error) {
	t, err := p.expect(token.IntLit)
	if err != nil {
		return 0, err
	}
	n, convErr := strconv.Atoi(t.Text)
	if convErr != nil {
		return 0, &ParseError{Offset: t.Offset, Line: t.Line, Column: t.Column, Got: t, Expected: []string{"integer"}}
	}
	return n, nil
}

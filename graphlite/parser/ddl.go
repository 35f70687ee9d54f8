package parser

import (
	"github.com/mwatts/graphlite/ast"
	"github.com/mwatts/graphlite/token"
)

// parseCallStatement parses "CALL proc(args) [YIELD col, ...] [WHERE pred]".
// The WHERE is only legal with YIELD present and is left to the validator to
// confirm it references only YIELDed columns (§4.2).
func (p *Parser) parseCallStatement() (ast.Statement, error) {
	p.advance() // CALL
	name, ok := p.identName()
	if !ok {
		return nil, p.errExpected("procedure name")
	}
	stmt := &ast.CallStatement{Procedure: name}
	if _, err := p.expect(token.LParen); err != nil {
		return nil, err
	}
	for !p.at(token.RParen) {
		arg, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		stmt.Args = append(stmt.Args, arg)
		if _, ok := p.accept(token.Comma); !ok {
			break
		}
	}
	if _, err := p.expect(token.RParen); err != nil {
		return nil, err
	}
	if _, ok := p.accept(token.YIELD); ok {
		for {
			name, ok := p.identName()
			if !ok {
				return nil, p.errExpected("column name")
			}
			stmt.Yield = append(stmt.Yield, name)
			if _, ok := p.accept(token.Comma); !ok {
				break
			}
		}
	}
	if _, ok := p.accept(token.WHERE); ok {
		where, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		stmt.Where = where
	}
	return stmt, nil
}

// parseSessionStatement parses "SESSION SET key = expr | RESET [key] | CLOSE".
func (p *Parser) parseSessionStatement() (ast.Statement, error) {
	p.advance() // SESSION
	switch p.cur().Kind {
	case token.SET:
		p.advance()
		key, ok := p.identName()
		if !ok {
			return nil, p.errExpected("session key")
		}
		if _, err := p.expect(token.Eq); err != nil {
			return nil, err
		}
		value, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		return &ast.SessionStatement{Kind: ast.SessionSet, Key: key, Value: value}, nil
	case token.RESET:
		p.advance()
		key := ""
		if name, ok := p.identName(); ok {
			key = name
		}
		return &ast.SessionStatement{Kind: ast.SessionReset, Key: key}, nil
	case token.CLOSE:
		p.advance()
		return &ast.SessionStatement{Kind: ast.SessionClose}, nil
	}
	return nil, p.errExpected("SET", "RESET", "CLOSE")
}

// parseTransactionStatement parses "START TRANSACTION [READ ONLY|READ WRITE]
// [isolation-level-name]", "COMMIT", or "ROLLBACK"; the isolation level is
// a bare identifier with no ISOLATION LEVEL keywords before it.
func (p *Parser) parseTransactionStatement() (ast.Statement, error) {
	switch p.cur().Kind {
	case token.COMMIT:
		p.advance()
		return &ast.TransactionStatement{Kind: ast.TxnCommit}, nil
	case token.ROLLBACK:
		p.advance()
		return &ast.TransactionStatement{Kind: ast.TxnRollback}, nil
	case token.START:
		p.advance()
		if _, err := p.expect(token.TRANSACTION); err != nil {
			return nil, err
		}
		stmt := &ast.TransactionStatement{Kind: ast.TxnStart}
		switch {
		case p.at(token.READ):
			p.advance()
			if _, ok := p.accept(token.ONLY); ok {
				stmt.AccessMode = "READ ONLY"
			} else if _, err := p.expect(token.WRITE); err == nil {
				stmt.AccessMode = "READ WRITE"
			} else {
				return nil, err
			}
		}
		if name, ok := p.identName(); ok {
			stmt.IsolationLvl = name
		}
		return stmt, nil
	}
	return nil, p.errExpected("START TRANSACTION", "COMMIT", "ROLLBACK")
}

// parseCatalogPath parses "name" or "/schema/name" (§4.3: 1-2 segments).
func (p *Parser) parseCatalogPath() (ast.CatalogPath, error) {
	var segs []string
	leadingSlash := p.at(token.Slash)
	if leadingSlash {
		p.advance()
	}
	for {
		name, ok := p.identName()
		if !ok {
			return ast.CatalogPath{}, p.errExpected("path segment")
		}
		segs = append(segs, name)
		if _, ok := p.accept(token.Slash); !ok {
			break
		}
	}
	return ast.CatalogPath{Segments: segs}, nil
}

// parseCatalogStatement parses CREATE/DROP SCHEMA/GRAPH/GRAPH TYPE/
// PROCEDURE/USER/ROLE.
func (p *Parser) parseCatalogStatement() (ast.Statement, error) {
	verb := ast.VerbCreate
	if p.at(token.DROP) {
		verb = ast.VerbDrop
	}
	p.advance() // CREATE | DROP

	stmt := &ast.CatalogStatement{Verb: verb}
	switch p.cur().Kind {
	case token.SCHEMA:
		p.advance()
		stmt.Object = ast.ObjSchema
	case token.GRAPH:
		p.advance()
		if _, ok := p.accept(token.TYPE); ok {
			stmt.Object = ast.ObjGraphType
		} else {
			stmt.Object = ast.ObjGraph
		}
	case token.PROCEDURE:
		p.advance()
		stmt.Object = ast.ObjProcedure
	case token.USER:
		p.advance()
		stmt.Object = ast.ObjUser
	case token.ROLE:
		p.advance()
		stmt.Object = ast.ObjRole
	default:
		return nil, p.errExpected("SCHEMA", "GRAPH", "GRAPH TYPE", "PROCEDURE", "USER", "ROLE")
	}

	if verb == ast.VerbCreate {
		if _, ok := p.accept(token.IF); ok {
			if _, err := p.expect(token.NOT); err != nil {
				return nil, err
			}
			if _, err := p.expect(token.EXISTS); err != nil {
				return nil, err
			}
			stmt.IfNotExist = true
		}
	} else {
		if _, ok := p.accept(token.IF); ok {
			if _, err := p.expect(token.EXISTS); err != nil {
				return nil, err
			}
			stmt.IfExists = true
		}
	}

	path, err := p.parseCatalogPath()
	if err != nil {
		return nil, err
	}
	stmt.Path = path

	if stmt.Object == ast.ObjProcedure && verb == ast.VerbCreate {
		if _, err := p.expect(token.LParen); err != nil {
			return nil, err
		}
		for !p.at(token.RParen) {
			pname, ok := p.identName()
			if !ok {
				return nil, p.errExpected("parameter name")
			}
			ptype, ok := p.identName()
			if !ok {
				return nil, p.errExpected("parameter type")
			}
			stmt.ProcedureParams = append(stmt.ProcedureParams, ast.ProcedureParam{Name: pname, Type: ptype})
			if _, ok := p.accept(token.Comma); !ok {
				break
			}
		}
		if _, err := p.expect(token.RParen); err != nil {
			return nil, err
		}
		if p.at(token.LBrace) {
			body, err := p.parseProcedureBody()
			if err != nil {
				return nil, err
			}
			stmt.ProcedureBody = body
		}
	}
	return stmt, nil
}

func (p *Parser) parseProcedureBody() (*ast.ProcedureBody, error) {
	if _, err := p.expect(token.LBrace); err != nil {
		return nil, err
	}
	body := &ast.ProcedureBody{}
	for !p.at(token.RBrace) {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		body.Statements = append(body.Statements, stmt)
		if _, ok := p.accept(token.Semicolon); !ok {
			break
		}
	}
	if _, err := p.expect(token.RBrace); err != nil {
		return nil, err
	}
	return body, nil
}

// parseIndexStatement parses "CREATE [UNIQUE] INDEX name ON :Label(prop, ...)"
// or "DROP INDEX name".
func (p *Parser) parseIndexStatement() (ast.Statement, error) {
	verb := ast.VerbCreate
	if p.at(token.DROP) {
		verb = ast.VerbDrop
	}
	p.advance() // CREATE | DROP
	stmt := &ast.IndexStatement{Verb: verb}
	if _, ok := p.accept(token.UNIQUE); ok {
		stmt.IsUnique = true
	}
	if _, err := p.expect(token.INDEX); err != nil {
		return nil, err
	}
	name, ok := p.identName()
	if !ok {
		return nil, p.errExpected("index name")
	}
	stmt.Name = name
	if verb == ast.VerbDrop {
		return stmt, nil
	}
	if _, err := p.expect(token.ON); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.Colon); err != nil {
		return nil, err
	}
	label, ok := p.identName()
	if !ok {
		return nil, p.errExpected("label")
	}
	stmt.OnLabel = label
	if _, err := p.expect(token.LParen); err != nil {
		return nil, err
	}
	for {
		prop, ok := p.identName()
		if !ok {
			return nil, p.errExpected("property name")
		}
		stmt.OnProps = append(stmt.OnProps, prop)
		if _, ok := p.accept(token.Comma); !ok {
			break
		}
	}
	if _, err := p.expect(token.RParen); err != nil {
		return nil, err
	}
	return stmt, nil
}

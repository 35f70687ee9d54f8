package parser

import (
	"github.com/mwatts/graphlite/ast"
	"github.com/mwatts/graphlite/token"
)

// parseMatchClause parses "MATCH pattern [, pattern ...]" including a
// leading OPTIONAL qualifier.
func (p *Parser) parseMatchClause() (*ast.MatchClause, error) {
	optional := false
	if _, ok := p.accept(token.OPTIONAL); ok {
		optional = true
	}
	if _, err := p.expect(token.MATCH); err != nil {
		return nil, err
	}
	var patterns []*ast.PathPattern
	for {
		pat, err := p.parsePathPattern()
		if err != nil {
			return nil, err
		}
		patterns = append(patterns, pat)
		if _, ok := p.accept(token.Comma); !ok {
			break
		}
	}
	return &ast.MatchClause{Patterns: patterns, Optional: optional}, nil
}

// parsePathPattern parses one comma-separated pattern, including an
// optional path-type qualifier and path variable assignment.
func (p *Parser) parsePathPattern() (*ast.PathPattern, error) {
	pathType := ast.PathWalk
	switch p.cur().Kind {
	case token.WALK:
		p.advance()
	case token.TRAIL:
		pathType = ast.PathTrail
		p.advance()
	case token.ACYCLIC:
		pathType = ast.PathAcyclic
		p.advance()
		if _, err := p.expect(token.PATH); err != nil {
			return nil, err
		}
	case token.SIMPLE:
		pathType = ast.PathSimple
		p.advance()
		if _, err := p.expect(token.PATH); err != nil {
			return nil, err
		}
	}

	variable := ""
	if p.cur().Kind == token.Ident && p.peekN(1).Kind == token.Eq {
		variable = p.advance().Text
		p.advance() // =
	}

	var elements []ast.PatternElement
	node, err := p.parseNodeElement()
	if err != nil {
		return nil, err
	}
	elements = append(elements, ast.PatternElement{Node: node})

	for p.cur().Kind == token.Minus || p.cur().Kind == token.ArrowLeft || p.cur().Kind == token.ArrowBoth {
		edge, err := p.parseEdgeElement()
		if err != nil {
			return nil, err
		}
		elements = append(elements, ast.PatternElement{Edge: edge})
		node, err := p.parseNodeElement()
		if err != nil {
			return nil, err
		}
		elements = append(elements, ast.PatternElement{Node: node})
	}

	return &ast.PathPattern{Type: pathType, Variable: variable, Elements: elements}, nil
}

func (p *Parser) parseNodeElement() (*ast.NodeElement, error) {
	if _, err := p.expect(token.LParen); err != nil {
		return nil, err
	}
	n := &ast.NodeElement{}
	if name, ok := p.identName(); ok {
		n.Variable = name
	}
	for {
		if _, ok := p.accept(token.Colon); !ok {
			break
		}
		label, ok := p.identName()
		if !ok {
			return nil, p.errExpected("label")
		}
		n.Labels = append(n.Labels, label)
	}
	if p.at(token.LBrace) {
		props, err := p.parsePropertyMap()
		if err != nil {
			return nil, err
		}
		n.Properties = props
	}
	if _, err := p.expect(token.RParen); err != nil {
		return nil, err
	}
	return n, nil
}

// parseEdgeElement parses one of:  -[...]->  <-[...]-  <-[...]->  -[...]-
func (p *Parser) parseEdgeElement() (*ast.EdgeElement, error) {
	e := &ast.EdgeElement{Direction: ast.DirUndirected}
	if _, ok := p.accept(token.ArrowBoth); ok {
		e.Direction = ast.DirBoth
		return e, nil
	}
	leftArrow := false
	if _, ok := p.accept(token.ArrowLeft); ok {
		leftArrow = true
	} else if _, err := p.expect(token.Minus); err != nil {
		return nil, err
	}

	if p.at(token.LBracket) {
		p.advance()
		if name, ok := p.identName(); ok {
			e.Variable = name
		}
		for {
			if _, ok := p.accept(token.Colon); !ok {
				break
			}
			label, ok := p.identName()
			if !ok {
				return nil, p.errExpected("label")
			}
			e.Labels = append(e.Labels, label)
		}
		if p.at(token.LBrace) {
			if p.braceIsQuantifier() {
				q, err := p.parseBraceQuantifier()
				if err != nil {
					return nil, err
				}
				e.Quantifier = q
			} else {
				props, err := p.parsePropertyMap()
				if err != nil {
					return nil, err
				}
				e.Properties = props
				if p.at(token.LBrace) {
					q, err := p.parseBraceQuantifier()
					if err != nil {
						return nil, err
					}
					e.Quantifier = q
				}
			}
		}
		if _, ok := p.accept(token.Question); ok {
			e.Quantifier = &ast.Quantifier{Kind: ast.QuantOptional}
		} else if _, ok := p.accept(token.Star); ok {
			e.Quantifier = &ast.Quantifier{Kind: ast.QuantAtLeast, Min: 0, Max: -1}
		}
		if _, err := p.expect(token.RBracket); err != nil {
			return nil, err
		}
	}

	if leftArrow {
		if _, ok := p.accept(token.ArrowRight); ok {
			e.Direction = ast.DirBoth
		} else if _, err := p.expect(token.Minus); err != nil {
			return nil, err
		} else {
			e.Direction = ast.DirIncoming
		}
	} else if _, ok := p.accept(token.ArrowRight); ok {
		e.Direction = ast.DirOutgoing
	} else if _, err := p.expect(token.Minus); err != nil {
		return nil, err
	}
	return e, nil
}

// braceIsQuantifier peeks past the current '{' to tell a brace quantifier
// ({n}, {m,n}, {n,}, {,n}) apart from a property map ({key: value, ...}):
// a quantifier starts with an int literal or a bare comma, a property map
// starts with an identifier followed by ':'.
func (p *Parser) braceIsQuantifier() bool {
	switch p.peekN(1).Kind {
	case token.IntLit, token.Comma:
		return true
	default:
		return false
	}
}

// parseBraceQuantifier parses {n}, {m,n}, {n,} or {,n} into a Quantifier.
func (p *Parser) parseBraceQuantifier() (*ast.Quantifier, error) {
	if _, err := p.expect(token.LBrace); err != nil {
		return nil, err
	}
	if _, ok := p.accept(token.Comma); ok {
		max, err := p.parseIntLiteral()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RBrace); err != nil {
			return nil, err
		}
		return &ast.Quantifier{Kind: ast.QuantAtMost, Min: 0, Max: max}, nil
	}
	first, err := p.parseIntLiteral()
	if err != nil {
		return nil, err
	}
	if _, ok := p.accept(token.Comma); ok {
		if p.at(token.RBrace) {
			p.advance()
			return &ast.Quantifier{Kind: ast.QuantAtLeast, Min: first, Max: -1}, nil
		}
		max, err := p.parseIntLiteral()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RBrace); err != nil {
			return nil, err
		}
		return &ast.Quantifier{Kind: ast.QuantRange, Min: first, Max: max}, nil
	}
	if _, err := p.expect(token.RBrace); err != nil {
		return nil, err
	}
	return &ast.Quantifier{Kind: ast.QuantExact, Min: first, Max: first}, nil
}

func (p *Parser) parsePropertyMap() (*ast.PropertyMap, error) {
	if _, err := p.expect(token.LBrace); err != nil {
		return nil, err
	}
	m := &ast.PropertyMap{}
	for !p.at(token.RBrace) {
		key, ok := p.identName()
		if !ok {
			return nil, p.errExpected("property key")
		}
		if _, err := p.expect(token.Colon); err != nil {
			return nil, err
		}
		val, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		m.Entries = append(m.Entries, ast.PropertyEntry{Key: key, Value: val})
		if _, ok := p.accept(token.Comma); !ok {
			break
		}
	}
	if _, err := p.expect(token.RBrace); err != nil {
		return nil, err
	}
	return m, nil
}

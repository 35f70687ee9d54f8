package parser

import (
	"github.com/mwatts/graphlite/ast"
	"github.com/mwatts/graphlite/token"
)

// parseQuery is the top-level query dispatcher (§4.2): it builds one
// QuerySegment/standalone form at a time and wraps the result in Limited
// when a trailing ORDER BY/LIMIT follows a completed query, then folds in
// any left-associative set operations.
func (p *Parser) parseQuery() (ast.Query, error) {
	q, err := p.parseQueryPrimary()
	if err != nil {
		return nil, err
	}
	q, err = p.parseTrailingOrderLimit(q)
	if err != nil {
		return nil, err
	}
	for {
		var kind ast.SetOperationKind
		switch p.cur().Kind {
		case token.UNION:
			kind = ast.SetUnion
		case token.INTERSECT:
			kind = ast.SetIntersect
		case token.EXCEPT:
			kind = ast.SetExcept
		default:
			return q, nil
		}
		p.advance()
		all := false
		if _, ok := p.accept(token.ALL); ok {
			all = true
		}
		right, err := p.parseQueryPrimary()
		if err != nil {
			return nil, err
		}
		right, err = p.parseTrailingOrderLimit(right)
		if err != nil {
			return nil, err
		}
		q = &ast.SetOperation{Kind: kind, All: all, Left: q, Right: right}
	}
}

// parseTrailingOrderLimit wraps q in Query::Limited if a trailing ORDER
// BY/LIMIT/OFFSET follows (only legal once a query already produced its own
// terminal RETURN/WITH projection).
func (p *Parser) parseTrailingOrderLimit(q ast.Query) (ast.Query, error) {
	if !p.at(token.ORDER) && !p.at(token.LIMIT) && !p.at(token.OFFSET) {
		return q, nil
	}
	orderBy, limit, offset, err := p.parseOrderLimitOffset()
	if err != nil {
		return nil, err
	}
	return &ast.Limited{Input: q, OrderBy: orderBy, Limit: limit, Offset: offset}, nil
}

// parseQueryPrimary parses one query form with no trailing set-operation or
// Limited wrapping: LET/FOR/FILTER/UNWIND prefix chains, a WITH pipeline, or
// a single MATCH...RETURN (Basic), or a standalone RETURN.
func (p *Parser) parseQueryPrimary() (ast.Query, error) {
	switch p.cur().Kind {
	case token.LET:
		return p.parseLet()
	case token.FOR:
		return p.parseFor()
	case token.FILTER:
		return p.parseFilter()
	case token.UNWIND:
		return p.parseUnwindQuery()
	case token.RETURN:
		return p.parseReturnQuery()
	case token.MATCH, token.OPTIONAL:
		return p.parseMatchLedQuery()
	case token.LParen:
		// A parenthesized sub-query used to scope a set operation.
		p.advance()
		q, err := p.parseQuery()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RParen); err != nil {
			return nil, err
		}
		return q, nil
	}
	return nil, p.errExpected("MATCH", "RETURN", "WITH", "UNWIND", "LET", "FOR", "FILTER")
}

func (p *Parser) parseLet() (ast.Query, error) {
	p.advance() // LET
	name, ok := p.identName()
	if !ok {
		return nil, p.errExpected("identifier")
	}
	if _, err := p.expect(token.Eq); err != nil {
		return nil, err
	}
	value, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	next, err := p.parseQuery()
	if err != nil {
		return nil, err
	}
	return &ast.Let{Variable: name, Value: value, Next: next}, nil
}

func (p *Parser) parseFor() (ast.Query, error) {
	p.advance() // FOR
	name, ok := p.identName()
	if !ok {
		return nil, p.errExpected("identifier")
	}
	if _, err := p.expect(token.IN); err != nil {
		return nil, err
	}
	coll, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	next, err := p.parseQuery()
	if err != nil {
		return nil, err
	}
	return &ast.For{Variable: name, Collection: coll, Next: next}, nil
}

func (p *Parser) parseFilter() (ast.Query, error) {
	p.advance() // FILTER
	if _, ok := p.accept(token.WHERE); ok {
		// optional leading WHERE keyword for readability; FILTER <expr> also
		// accepted directly.
	}
	pred, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	next, err := p.parseQuery()
	if err != nil {
		return nil, err
	}
	return &ast.Filter{Predicate: pred, Next: next}, nil
}

func (p *Parser) parseUnwindClause() (*ast.UnwindClause, error) {
	p.advance() // UNWIND
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.AS); err != nil {
		return nil, err
	}
	name, ok := p.identName()
	if !ok {
		return nil, p.errExpected("identifier")
	}
	return &ast.UnwindClause{Expr: expr, Variable: name}, nil
}

// parseUnwindQuery handles UNWIND as a standalone query form (no preceding
// MATCH). A MATCH-embedded UNWIND is parsed inline by parseMatchLedQuery.
func (p *Parser) parseUnwindQuery() (ast.Query, error) {
	clause, err := p.parseUnwindClause()
	if err != nil {
		return nil, err
	}
	next, err := p.parseQuery()
	if err != nil {
		return nil, err
	}
	return &ast.Unwind{Clause: clause, Next: next}, nil
}

// parseReturnQuery handles a standalone RETURN with no preceding MATCH.
func (p *Parser) parseReturnQuery() (ast.Query, error) {
	items, distinct, orderBy, limit, offset, err := p.parseReturnClause()
	if err != nil {
		return nil, err
	}
	return &ast.Return{Items: items, Distinct: distinct, OrderBy: orderBy, Limit: limit, Offset: offset}, nil
}

// parseMatchLedQuery parses a MATCH clause and everything that can follow
// it: either a terminating RETURN (Basic) or one or more WITH-introduced
// QuerySegments terminated by RETURN (WithQuery, §4.2).
func (p *Parser) parseMatchLedQuery() (ast.Query, error) {
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
	var unwind *ast.UnwindClause
	var unwindWhere ast.Expression
	if p.at(token.UNWIND) {
		unwind, err = p.parseUnwindClause()
		if err != nil {
			return nil, err
		}
		if _, ok := p.accept(token.WHERE); ok {
			unwindWhere, err = p.parseExpression()
			if err != nil {
				return nil, err
			}
		}
	}

	if !p.at(token.WITH) {
		items, distinct, groupBy, having, orderBy, limit, offset, err := p.parseReturnWithGroupBy()
		if err != nil {
			return nil, err
		}
		return &ast.Basic{
			Match: match, Where: where, Return: items, Distinct: distinct,
			GroupBy: groupBy, Having: having, OrderBy: orderBy, Limit: limit, Offset: offset,
		}, nil
	}

	segments := []ast.QuerySegment{{Match: match, Where: where, Unwind: unwind, UnwindWhere: unwindWhere}}
	var final *ast.Basic
	for {
		with, err := p.parseWithClause()
		if err != nil {
			return nil, err
		}
		segments[len(segments)-1].With = with

		if p.at(token.MATCH) || p.at(token.OPTIONAL) {
			nextMatch, err := p.parseMatchClause()
			if err != nil {
				return nil, err
			}
			var nextWhere ast.Expression
			if _, ok := p.accept(token.WHERE); ok {
				nextWhere, err = p.parseExpression()
				if err != nil {
					return nil, err
				}
			}
			var nextUnwind *ast.UnwindClause
			var nextUnwindWhere ast.Expression
			if p.at(token.UNWIND) {
				nextUnwind, err = p.parseUnwindClause()
				if err != nil {
					return nil, err
				}
				if _, ok := p.accept(token.WHERE); ok {
					nextUnwindWhere, err = p.parseExpression()
					if err != nil {
						return nil, err
					}
				}
			}
			segments = append(segments, ast.QuerySegment{Match: nextMatch, Where: nextWhere, Unwind: nextUnwind, UnwindWhere: nextUnwindWhere})
			continue
		}

		if p.at(token.WITH) {
			continue
		}

		items, distinct, groupBy, having, orderBy, limit, offset, err := p.parseReturnWithGroupBy()
		if err != nil {
			return nil, err
		}
		final = &ast.Basic{Return: items, Distinct: distinct, GroupBy: groupBy, Having: having, OrderBy: orderBy, Limit: limit, Offset: offset}
		break
	}
	return &ast.WithQuery{Segments: segments, Final: final}, nil
}

// parseWithClause parses one WITH stage: items, optional DISTINCT, and the
// post-projection WHERE/ORDER BY/LIMIT (§4.2: these operate over the
// post-WITH binding table, not the preceding MATCH's rows).
func (p *Parser) parseWithClause() (*ast.WithClause, error) {
	if _, err := p.expect(token.WITH); err != nil {
		return nil, err
	}
	distinct := false
	if _, ok := p.accept(token.DISTINCT); ok {
		distinct = true
	}
	items, err := p.parseReturnItems()
	if err != nil {
		return nil, err
	}
	w := &ast.WithClause{Items: items, Distinct: distinct}
	if _, ok := p.accept(token.WHERE); ok {
		w.Where, err = p.parseExpression()
		if err != nil {
			return nil, err
		}
	}
	orderBy, limit, offset, err := p.parseOrderLimitOffset()
	if err != nil {
		return nil, err
	}
	w.OrderBy, w.Limit, w.Offset = orderBy, limit, offset
	return w, nil
}

// parseReturnClause parses "RETURN [DISTINCT] items [ORDER BY] [LIMIT] [OFFSET]".
func (p *Parser) parseReturnClause() ([]ast.ReturnItem, bool, []ast.OrderItem, ast.Expression, ast.Expression, error) {
	if _, err := p.expect(token.RETURN); err != nil {
		return nil, false, nil, nil, nil, err
	}
	distinct := false
	if _, ok := p.accept(token.DISTINCT); ok {
		distinct = true
	}
	items, err := p.parseReturnItems()
	if err != nil {
		return nil, false, nil, nil, nil, err
	}
	orderBy, limit, offset, err := p.parseOrderLimitOffset()
	if err != nil {
		return nil, false, nil, nil, nil, err
	}
	return items, distinct, orderBy, limit, offset, nil
}

// parseReturnWithGroupBy parses "RETURN [DISTINCT] items [GROUP BY ...]
// [HAVING ...] [ORDER BY] [LIMIT] [OFFSET]" for the Basic query form.
func (p *Parser) parseReturnWithGroupBy() ([]ast.ReturnItem, bool, []ast.Expression, ast.Expression, []ast.OrderItem, ast.Expression, ast.Expression, error) {
	if _, err := p.expect(token.RETURN); err != nil {
		return nil, false, nil, nil, nil, nil, nil, err
	}
	distinct := false
	if _, ok := p.accept(token.DISTINCT); ok {
		distinct = true
	}
	items, err := p.parseReturnItems()
	if err != nil {
		return nil, false, nil, nil, nil, nil, nil, err
	}
	var groupBy []ast.Expression
	if _, ok := p.accept(token.GROUP); ok {
		if _, err := p.expect(token.BY); err != nil {
			return nil, false, nil, nil, nil, nil, nil, err
		}
		for {
			e, err := p.parseExpression()
			if err != nil {
				return nil, false, nil, nil, nil, nil, nil, err
			}
			groupBy = append(groupBy, e)
			if _, ok := p.accept(token.Comma); !ok {
				break
			}
		}
	}
	var having ast.Expression
	if _, ok := p.accept(token.HAVING); ok {
		having, err = p.parseExpression()
		if err != nil {
			return nil, false, nil, nil, nil, nil, nil, err
		}
	}
	orderBy, limit, offset, err := p.parseOrderLimitOffset()
	if err != nil {
		return nil, false, nil, nil, nil, nil, nil, err
	}
	return items, distinct, groupBy, having, orderBy, limit, offset, nil
}

func (p *Parser) parseReturnItems() ([]ast.ReturnItem, error) {
	var items []ast.ReturnItem
	for {
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		alias := ""
		if _, ok := p.accept(token.AS); ok {
			name, ok := p.identName()
			if !ok {
				return nil, p.errExpected("alias")
			}
			alias = name
		}
		items = append(items, ast.ReturnItem{Expr: expr, Alias: alias})
		if _, ok := p.accept(token.Comma); !ok {
			break
		}
	}
	return items, nil
}

func (p *Parser) parseOrderLimitOffset() ([]ast.OrderItem, ast.Expression, ast.Expression, error) {
	var orderBy []ast.OrderItem
	if _, ok := p.accept(token.ORDER); ok {
		if _, err := p.expect(token.BY); err != nil {
			return nil, nil, nil, err
		}
		for {
			item, err := p.parseOrderItem()
			if err != nil {
				return nil, nil, nil, err
			}
			orderBy = append(orderBy, item)
			if _, ok := p.accept(token.Comma); !ok {
				break
			}
		}
	}
	var limit, offset ast.Expression
	if _, ok := p.accept(token.LIMIT); ok {
		e, err := p.parseExpression()
		if err != nil {
			return nil, nil, nil, err
		}
		limit = e
	}
	if _, ok := p.accept(token.OFFSET); ok {
		e, err := p.parseExpression()
		if err != nil {
			return nil, nil, nil, err
		}
		offset = e
	}
	return orderBy, limit, offset, nil
}

func (p *Parser) parseOrderItem() (ast.OrderItem, error) {
	expr, err := p.parseExpression()
	if err != nil {
		return ast.OrderItem{}, err
	}
	item := ast.OrderItem{Expr: expr, Direction: ast.OrderAsc}
	switch {
	case p.at(token.ASC):
		p.advance()
	case p.at(token.DESC):
		p.advance()
		item.Direction = ast.OrderDesc
	}
	if _, ok := p.accept(token.NULLS); ok {
		switch {
		case p.at(token.FIRST):
			p.advance()
			item.Nulls = ast.NullsFirst
		case p.at(token.LAST):
			p.advance()
			item.Nulls = ast.NullsLast
		default:
			return ast.OrderItem{}, p.errExpected("FIRST", "LAST")
		}
	}
	return item, nil
}

// parseInsertStatement parses "[MATCH ...] INSERT pattern [, pattern ...]".
func (p *Parser) parseInsertStatement(matchPatterns []*ast.PathPattern) (ast.Statement, error) {
	if _, err := p.expect(token.INSERT); err != nil {
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
	return &ast.DataStatement{Kind: ast.DataInsert, Match: matchPatterns, InsertPath: patterns}, nil
}

// parseSetStatement parses "[MATCH ... [WHERE ...] [WITH ...]] SET item, ...".
func (p *Parser) parseSetStatement(matchPatterns []*ast.PathPattern, where ast.Expression, with *ast.WithClause) (ast.Statement, error) {
	if _, err := p.expect(token.SET); err != nil {
		return nil, err
	}
	var items []ast.SetItem
	for {
		item, err := p.parseSetItem()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
		if _, ok := p.accept(token.Comma); !ok {
			break
		}
	}
	return &ast.DataStatement{Kind: ast.DataSet, Match: matchPatterns, Where: where, With: with, SetItems: items}, nil
}

func (p *Parser) parseSetItem() (ast.SetItem, error) {
	name, ok := p.identName()
	if !ok {
		return ast.SetItem{}, p.errExpected("variable")
	}
	if _, ok := p.accept(token.Colon); ok {
		label, ok := p.identName()
		if !ok {
			return ast.SetItem{}, p.errExpected("label")
		}
		return ast.SetItem{Variable: name, Label: label}, nil
	}
	property := ""
	if _, ok := p.accept(token.Dot); ok {
		prop, ok := p.identName()
		if !ok {
			return ast.SetItem{}, p.errExpected("property name")
		}
		property = prop
	}
	if _, err := p.expect(token.Eq); err != nil {
		return ast.SetItem{}, err
	}
	value, err := p.parseExpression()
	if err != nil {
		return ast.SetItem{}, err
	}
	return ast.SetItem{Variable: name, Property: property, Value: value}, nil
}

// parseRemoveStatement parses "[MATCH ... [WHERE ...] [WITH ...]] REMOVE item, ...".
func (p *Parser) parseRemoveStatement(matchPatterns []*ast.PathPattern, where ast.Expression, with *ast.WithClause) (ast.Statement, error) {
	if _, err := p.expect(token.REMOVE); err != nil {
		return nil, err
	}
	var items []ast.RemoveItem
	for {
		item, err := p.parseRemoveItem()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
		if _, ok := p.accept(token.Comma); !ok {
			break
		}
	}
	return &ast.DataStatement{Kind: ast.DataRemove, Match: matchPatterns, Where: where, With: with, RemoveItems: items}, nil
}

func (p *Parser) parseRemoveItem() (ast.RemoveItem, error) {
	name, ok := p.identName()
	if !ok {
		return ast.RemoveItem{}, p.errExpected("variable")
	}
	if _, ok := p.accept(token.Colon); ok {
		label, ok := p.identName()
		if !ok {
			return ast.RemoveItem{}, p.errExpected("label")
		}
		return ast.RemoveItem{Variable: name, Label: label}, nil
	}
	if _, ok := p.accept(token.Dot); ok {
		prop, ok := p.identName()
		if !ok {
			return ast.RemoveItem{}, p.errExpected("property name")
		}
		return ast.RemoveItem{Variable: name, Property: prop}, nil
	}
	return ast.RemoveItem{Variable: name}, nil
}

// parseDeleteStatement parses "[MATCH ... [WHERE ...] [WITH ...]] [DETACH] DELETE var, ...".
func (p *Parser) parseDeleteStatement(matchPatterns []*ast.PathPattern, where ast.Expression, with *ast.WithClause) (ast.Statement, error) {
	detach := false
	if _, ok := p.accept(token.DETACH); ok {
		detach = true
	}
	if _, err := p.expect(token.DELETE); err != nil {
		return nil, err
	}
	var vars []string
	for {
		name, ok := p.identName()
		if !ok {
			return nil, p.errExpected("variable")
		}
		vars = append(vars, name)
		if _, ok := p.accept(token.Comma); !ok {
			break
		}
	}
	return &ast.DataStatement{Kind: ast.DataDelete, Match: matchPatterns, Where: where, With: with, DeleteVars: vars, Detach: detach}, nil
}

// parseSelectStatement parses "SELECT items FROM graph-expr [MATCH ...] [WHERE ...] [ORDER BY] [LIMIT]".
func (p *Parser) parseSelectStatement() (ast.Statement, error) {
	p.advance() // SELECT
	distinct := false
	if _, ok := p.accept(token.DISTINCT); ok {
		distinct = true
	}
	var items []ast.SelectItem
	for {
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		alias := ""
		if _, ok := p.accept(token.AS); ok {
			name, ok := p.identName()
			if !ok {
				return nil, p.errExpected("alias")
			}
			alias = name
		}
		items = append(items, ast.SelectItem{Expr: expr, Alias: alias})
		if _, ok := p.accept(token.Comma); !ok {
			break
		}
	}
	if _, err := p.expect(token.FROM); err != nil {
		return nil, err
	}
	graphExpr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	stmt := &ast.SelectStatement{Items: items, Distinct: distinct, GraphExpr: graphExpr}
	if p.at(token.MATCH) || p.at(token.OPTIONAL) {
		stmt.Match, err = p.parseMatchClause()
		if err != nil {
			return nil, err
		}
	}
	if _, ok := p.accept(token.WHERE); ok {
		stmt.Where, err = p.parseExpression()
		if err != nil {
			return nil, err
		}
	}
	stmt.OrderBy, stmt.Limit, stmt.Offset, err = p.parseOrderLimitOffset()
	if err != nil {
		return nil, err
	}
	return stmt, nil
}

package parser

import (
	"strconv"
	"strings"

	"github.com/mwatts/graphlite"
	"github.com/mwatts/graphlite/ast"
	"github.com/mwatts/graphlite/token"
)

// parseVectorText re-parses the lexer's eagerly-matched VectorLit text
// ("[1.0, 2.0, 3.0]") into its numeric elements.
func parseVectorText(text string) ([]ast.Expression, error) {
	inner := strings.TrimSuffix(strings.TrimPrefix(strings.TrimSpace(text), "["), "]")
	inner = strings.TrimSpace(inner)
	if inner == "" {
		return nil, nil
	}
	parts := strings.Split(inner, ",")
	elems := make([]ast.Expression, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		f, err := strconv.ParseFloat(part, 64)
		if err != nil {
			return nil, err
		}
		elems = append(elems, &ast.Literal{Kind: ast.LitFloat, Float: f})
	}
	return elems, nil
}

// parseExpression is the entry point; precedence climbs from OR (loosest)
// down to primary (tightest) through one function per level, the standard
// shape for a hand-written recursive-descent expression grammar.
func (p *Parser) parseExpression() (ast.Expression, error) {
	return p.parseOr()
}

func (p *Parser) parseOr() (ast.Expression, error) {
	left, err := p.parseXor()
	if err != nil {
		return nil, err
	}
	for {
		if _, ok := p.accept(token.OR); ok {
			right, err := p.parseXor()
			if err != nil {
				return nil, err
			}
			left = &ast.Binary{Op: ast.OpOr, Left: left, Right: right}
			continue
		}
		return left, nil
	}
}

func (p *Parser) parseXor() (ast.Expression, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for {
		if _, ok := p.accept(token.XOR); ok {
			right, err := p.parseAnd()
			if err != nil {
				return nil, err
			}
			left = &ast.Binary{Op: ast.OpXor, Left: left, Right: right}
			continue
		}
		return left, nil
	}
}

func (p *Parser) parseAnd() (ast.Expression, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	for {
		if _, ok := p.accept(token.AND); ok {
			right, err := p.parseNot()
			if err != nil {
				return nil, err
			}
			left = &ast.Binary{Op: ast.OpAnd, Left: left, Right: right}
			continue
		}
		return left, nil
	}
}

func (p *Parser) parseNot() (ast.Expression, error) {
	if _, ok := p.accept(token.NOT); ok {
		if p.at(token.EXISTS) {
			inner, err := p.parseExistsSubquery()
			if err != nil {
				return nil, err
			}
			return &ast.NotExistsSubquery{Query: inner.(*ast.ExistsSubquery).Query}, nil
		}
		operand, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return &ast.Unary{Op: ast.OpNot, Operand: operand}, nil
	}
	return p.parseComparison()
}

// parseComparison handles all the predicate forms: the ordinary comparison
// operators, IN/NOT IN, CONTAINS/STARTS WITH/ENDS WITH/LIKE/MATCHES, IS
// [NOT] NULL/TRUE/FALSE, quantified comparisons and EXISTS/IN subqueries.
// Each non-comparison predicate applies at most once per level; the
// ordinary comparison operators chain left-associatively (a < b = c).
func (p *Parser) parseComparison() (ast.Expression, error) {
	left, err := p.parseConcat()
	if err != nil {
		return nil, err
	}

	if quant, ok, err := p.tryQuantifiedComparison(left); err != nil {
		return nil, err
	} else if ok {
		return quant, nil
	}

	if _, ok := p.accept(token.IS); ok {
		return p.finishIsPredicate(left)
	}

	negate := false
	if _, ok := p.accept(token.NOT); ok {
		negate = true
	}

	switch {
	case p.at(token.IN):
		p.advance()
		if p.at(token.LParen) && p.peekIsSubqueryStart() {
			p.advance()
			q, err := p.parseQuery()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(token.RParen); err != nil {
				return nil, err
			}
			if negate {
				return &ast.NotInSubquery{Expr: left, Query: q}, nil
			}
			return &ast.InSubquery{Expr: left, Query: q}, nil
		}
		right, err := p.parseConcat()
		if err != nil {
			return nil, err
		}
		op := ast.OpIn
		if negate {
			op = ast.OpNotIn
		}
		return &ast.Binary{Op: op, Left: left, Right: right}, nil
	case p.at(token.CONTAINS):
		p.advance()
		right, err := p.parseConcat()
		if err != nil {
			return nil, err
		}
		return wrapNegated(&ast.Binary{Op: ast.OpContains, Left: left, Right: right}, negate), nil
	case p.at(token.STARTS):
		p.advance()
		if _, err := p.expect(token.WITH); err != nil {
			return nil, err
		}
		right, err := p.parseConcat()
		if err != nil {
			return nil, err
		}
		return wrapNegated(&ast.Binary{Op: ast.OpStartsWith, Left: left, Right: right}, negate), nil
	case p.at(token.ENDS):
		p.advance()
		if _, err := p.expect(token.WITH); err != nil {
			return nil, err
		}
		right, err := p.parseConcat()
		if err != nil {
			return nil, err
		}
		return wrapNegated(&ast.Binary{Op: ast.OpEndsWith, Left: left, Right: right}, negate), nil
	case p.at(token.LIKE):
		p.advance()
		right, err := p.parseConcat()
		if err != nil {
			return nil, err
		}
		return wrapNegated(&ast.Binary{Op: ast.OpLike, Left: left, Right: right}, negate), nil
	case p.at(token.MATCHES):
		p.advance()
		right, err := p.parseConcat()
		if err != nil {
			return nil, err
		}
		return wrapNegated(&ast.Binary{Op: ast.OpMatches, Left: left, Right: right}, negate), nil
	case p.at(token.WITHIN):
		p.advance()
		right, err := p.parseConcat()
		if err != nil {
			return nil, err
		}
		return wrapNegated(&ast.Binary{Op: ast.OpWithin, Left: left, Right: right}, negate), nil
	}

	if negate {
		// A bare NOT we consumed speculatively but didn't use belongs to a
		// caller-level NOT; there is none at this precedence, so this is
		// actually malformed input -- report it plainly.
		return nil, p.errExpected("IN", "CONTAINS", "STARTS WITH", "ENDS WITH", "LIKE", "MATCHES", "WITHIN")
	}

	for {
		var op ast.BinaryOp
		switch p.cur().Kind {
		case token.Eq:
			op = ast.OpEq
		case token.NotEq:
			op = ast.OpNotEq
		case token.Lt:
			op = ast.OpLt
		case token.LtEq:
			op = ast.OpLtEq
		case token.Gt:
			op = ast.OpGt
		case token.GtEq:
			op = ast.OpGtEq
		case token.RegexMatch:
			op = ast.OpRegexMatch
		case token.FuzzyEq:
			op = ast.OpFuzzyEq
		default:
			return left, nil
		}
		p.advance()
		right, err := p.parseConcat()
		if err != nil {
			return nil, err
		}
		left = &ast.Binary{Op: op, Left: left, Right: right}
	}
}

func wrapNegated(b *ast.Binary, negate bool) ast.Expression {
	if !negate {
		return b
	}
	return &ast.Unary{Op: ast.OpNot, Operand: b}
}

func (p *Parser) finishIsPredicate(operand ast.Expression) (ast.Expression, error) {
	negate := false
	if _, ok := p.accept(token.NOT); ok {
		negate = true
	}
	switch {
	case p.at(token.NULLWORD) || p.at(token.NullLit):
		p.advance()
		kind := ast.IsNull
		if negate {
			kind = ast.IsNotNull
		}
		return &ast.IsPredicate{Operand: operand, Kind: kind}, nil
	case p.at(token.BoolLit):
		t := p.advance()
		isTrueLit := t.Text == "true"
		var kind ast.IsPredicateKind
		switch {
		case isTrueLit && !negate:
			kind = ast.IsTrue
		case isTrueLit && negate:
			kind = ast.IsNotTrue
		case !isTrueLit && !negate:
			kind = ast.IsFalse
		default:
			kind = ast.IsNotFalse
		}
		return &ast.IsPredicate{Operand: operand, Kind: kind}, nil
	}
	return nil, p.errExpected("NULL", "TRUE", "FALSE")
}

// tryQuantifiedComparison handles "left op ANY|ALL|SOME (collection-expr)".
func (p *Parser) tryQuantifiedComparison(left ast.Expression) (ast.Expression, bool, error) {
	save := p.pos
	var op ast.BinaryOp
	switch p.cur().Kind {
	case token.Eq:
		op = ast.OpEq
	case token.NotEq:
		op = ast.OpNotEq
	case token.Lt:
		op = ast.OpLt
	case token.LtEq:
		op = ast.OpLtEq
	case token.Gt:
		op = ast.OpGt
	case token.GtEq:
		op = ast.OpGtEq
	default:
		return nil, false, nil
	}
	next := p.peekN(1)
	var kind ast.QuantifiedComparisonKind
	switch {
	case next.Kind == token.ALL:
		kind = ast.QuantAll
	case next.Kind == token.Ident && next.Text == "ANY":
		kind = ast.QuantAny
	case next.Kind == token.Ident && next.Text == "SOME":
		kind = ast.QuantSome
	default:
		return nil, false, nil
	}
	p.advance() // operator
	p.advance() // ANY/ALL/SOME
	collection, err := p.parseConcat()
	if err != nil {
		p.pos = save
		return nil, false, nil
	}
	return &ast.QuantifiedComparison{Kind: kind, Op: op, Left: left, Collection: collection}, true, nil
}

func (p *Parser) peekIsSubqueryStart() bool {
	switch p.peekN(1).Kind {
	case token.MATCH, token.SELECT, token.WITH, token.UNWIND, token.LET, token.FOR, token.FILTER, token.RETURN:
		return true
	}
	return false
}

func (p *Parser) parseConcat() (ast.Expression, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	for {
		if _, ok := p.accept(token.Concat); ok {
			right, err := p.parseAdditive()
			if err != nil {
				return nil, err
			}
			left = &ast.Binary{Op: ast.OpConcat, Left: left, Right: right}
			continue
		}
		return left, nil
	}
}

func (p *Parser) parseAdditive() (ast.Expression, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for {
		var op ast.BinaryOp
		switch p.cur().Kind {
		case token.Plus:
			op = ast.OpAdd
		case token.Minus:
			op = ast.OpSub
		default:
			return left, nil
		}
		p.advance()
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = &ast.Binary{Op: op, Left: left, Right: right}
	}
}

func (p *Parser) parseMultiplicative() (ast.Expression, error) {
	left, err := p.parsePower()
	if err != nil {
		return nil, err
	}
	for {
		var op ast.BinaryOp
		switch p.cur().Kind {
		case token.Star:
			op = ast.OpMul
		case token.Slash:
			op = ast.OpDiv
		case token.Percent:
			op = ast.OpMod
		default:
			return left, nil
		}
		p.advance()
		right, err := p.parsePower()
		if err != nil {
			return nil, err
		}
		left = &ast.Binary{Op: op, Left: left, Right: right}
	}
}

// parsePower is right-associative: 2^3^2 == 2^(3^2).
func (p *Parser) parsePower() (ast.Expression, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	if _, ok := p.accept(token.Caret); ok {
		right, err := p.parsePower()
		if err != nil {
			return nil, err
		}
		return &ast.Binary{Op: ast.OpPow, Left: left, Right: right}, nil
	}
	return left, nil
}

func (p *Parser) parseUnary() (ast.Expression, error) {
	if _, ok := p.accept(token.Minus); ok {
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.Unary{Op: ast.OpNeg, Operand: operand}, nil
	}
	if _, ok := p.accept(token.Plus); ok {
		return p.parseUnary()
	}
	return p.parsePostfix()
}

// parsePostfix handles property access (.) and array index ([...]) after a
// primary expression.
func (p *Parser) parsePostfix() (ast.Expression, error) {
	expr, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.at(token.Dot):
			p.advance()
			name, ok := p.identName()
			if !ok {
				return nil, p.errExpected("property name")
			}
			expr = &ast.PropertyAccess{Object: expr, Property: name}
		case p.at(token.LBracket):
			p.advance()
			idx, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(token.RBracket); err != nil {
				return nil, err
			}
			expr = &ast.ArrayIndex{Collection: expr, Index: idx}
		default:
			return expr, nil
		}
	}
}

func (p *Parser) parsePrimary() (ast.Expression, error) {
	switch p.cur().Kind {
	case token.IntLit:
		t := p.advance()
		n, err := strconv.ParseInt(t.Text, 10, 64)
		if err != nil {
			return nil, &ParseError{Offset: t.Offset, Line: t.Line, Column: t.Column, Got: t, Expected: []string{"integer"}}
		}
		return &ast.Literal{Kind: ast.LitInt, Int: n}, nil
	case token.FloatLit:
		t := p.advance()
		f, err := strconv.ParseFloat(t.Text, 64)
		if err != nil {
			return nil, &ParseError{Offset: t.Offset, Line: t.Line, Column: t.Column, Got: t, Expected: []string{"float"}}
		}
		return &ast.Literal{Kind: ast.LitFloat, Float: f}, nil
	case token.StringLit:
		t := p.advance()
		return &ast.Literal{Kind: ast.LitString, Str: t.Text}, nil
	case token.BoolLit:
		t := p.advance()
		return &ast.Literal{Kind: ast.LitBool, Bool: t.Text == "true"}, nil
	case token.NullLit:
		p.advance()
		return &ast.Literal{Kind: ast.LitNull}, nil
	case token.VectorLit:
		return p.parseVectorLiteral()
	case token.Variable:
		t := p.advance()
		return &ast.Parameter{Name: t.Text}, nil
	case token.LParen:
		return p.parseParenOrPattern()
	case token.LBracket:
		return p.parseListLiteral()
	case token.CASE:
		return p.parseCase()
	case token.CAST:
		return p.parseCast()
	case token.EXISTS:
		return p.parseExistsSubquery()
	case token.PATH:
		if p.peekN(1).Kind != token.LParen {
			t := p.advance()
			return &ast.Variable{Name: t.Text}, nil
		}
		return p.parsePathConstructor()
	case token.BacktickIdent:
		t := p.advance()
		return &ast.Variable{Name: t.Text}, nil
	case token.Ident:
		return p.parseIdentOrCall()
	}
	return nil, p.errExpected("expression")
}

func (p *Parser) parseVectorLiteral() (ast.Expression, error) {
	t := p.advance()
	// The lexer already validated the [n, n, ...] shape; re-lex its text
	// into float elements.
	elems, err := parseVectorText(t.Text)
	if err != nil {
		return nil, &ParseError{Offset: t.Offset, Line: t.Line, Column: t.Column, Got: t, Expected: []string{"vector literal"}}
	}
	return &ast.Literal{Kind: ast.LitVector, Elems: elems}, nil
}

func (p *Parser) parseListLiteral() (ast.Expression, error) {
	if _, err := p.expect(token.LBracket); err != nil {
		return nil, err
	}
	var elems []ast.Expression
	for !p.at(token.RBracket) {
		e, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		elems = append(elems, e)
		if _, ok := p.accept(token.Comma); !ok {
			break
		}
	}
	if _, err := p.expect(token.RBracket); err != nil {
		return nil, err
	}
	return &ast.Literal{Kind: ast.LitList, Elems: elems}, nil
}

// parseParenOrPattern disambiguates "(expr)" from a pattern used as an
// expression, e.g. inside EXISTS( (a)-->(b) ): a pattern always opens with a
// node element whose following token is a label/brace/close-paren/edge
// start, never an operator -- but the unambiguous signal is that a bare
// parenthesized expression never contains a top-level "-[" or "->" or "<-"
// sequence immediately after its own close paren. We resolve this the
// simple way: try a path pattern first when the contents look node-shaped
// (variable/labels/props followed by an edge arrow), falling back to a
// plain parenthesized expression.
func (p *Parser) parseParenOrPattern() (ast.Expression, error) {
	save := p.pos
	if looksLikePatternHead(p) {
		pat, err := p.parsePathPattern()
		if err == nil {
			return &ast.PatternExpr{Pattern: pat}, nil
		}
		p.pos = save
	}
	p.advance() // (
	inner, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RParen); err != nil {
		return nil, err
	}
	return inner, nil
}

// looksLikePatternHead scans past a balanced "(...)" to see whether an edge
// element follows, which only happens in pattern position.
func looksLikePatternHead(p *Parser) bool {
	depth := 0
	i := p.pos
	for {
		t := p.peekN(i - p.pos)
		switch t.Kind {
		case token.LParen:
			depth++
		case token.RParen:
			depth--
			if depth == 0 {
				nxt := p.peekN(i - p.pos + 1)
				return nxt.Kind == token.Minus || nxt.Kind == token.ArrowLeft || nxt.Kind == token.ArrowBoth
			}
		case token.EOF:
			return false
		}
		i++
		if i-p.pos > 4096 {
			return false
		}
	}
}

func (p *Parser) parseCase() (ast.Expression, error) {
	p.advance() // CASE
	c := &ast.Case{}
	if !p.at(token.WHEN) {
		operand, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		c.Operand = operand
	}
	for p.at(token.WHEN) {
		p.advance()
		when, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.THEN); err != nil {
			return nil, err
		}
		then, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		c.Whens = append(c.Whens, ast.CaseBranch{When: when, Then: then})
	}
	if _, ok := p.accept(token.ELSE); ok {
		elseExpr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		c.Else = elseExpr
	}
	if _, err := p.expect(token.END); err != nil {
		return nil, err
	}
	return c, nil
}

func (p *Parser) parseCast() (ast.Expression, error) {
	p.advance() // CAST
	if _, err := p.expect(token.LParen); err != nil {
		return nil, err
	}
	value, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.AS); err != nil {
		return nil, err
	}
	target, err := p.parseTypeSpec()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RParen); err != nil {
		return nil, err
	}
	return &ast.Cast{Value: value, Target: target}, nil
}

// parseTypeSpec parses a type name used in CAST ... AS position.
func (p *Parser) parseTypeSpec() (graphlite.TypeSpec, error) {
	name, ok := p.identName()
	if !ok {
		return graphlite.TypeSpec{}, p.errExpected("type name")
	}
	kind, ok := typeKindByName[upperASCII(name)]
	if !ok {
		return graphlite.TypeSpec{}, &ParseError{Offset: p.cur().Offset, Line: p.cur().Line, Column: p.cur().Column, Got: p.cur(), Expected: []string{"type name"}}
	}
	spec := graphlite.Simple(kind)
	if p.at(token.LParen) {
		p.advance()
		n1, err := p.parseIntLiteral()
		if err != nil {
			return graphlite.TypeSpec{}, err
		}
		if _, ok := p.accept(token.Comma); ok {
			n2, err := p.parseIntLiteral()
			if err != nil {
				return graphlite.TypeSpec{}, err
			}
			spec.Precision, spec.Scale = n1, n2
		} else {
			spec.Max = n1
		}
		if _, err := p.expect(token.RParen); err != nil {
			return graphlite.TypeSpec{}, err
		}
	}
	return spec, nil
}

var typeKindByName = map[string]graphlite.TypeKind{
	"BOOLEAN": graphlite.TypeBoolean, "BOOL": graphlite.TypeBoolean,
	"STRING": graphlite.TypeString, "VARCHAR": graphlite.TypeString,
	"BYTES": graphlite.TypeBytes,
	"DECIMAL": graphlite.TypeDecimal, "NUMERIC": graphlite.TypeDecimal,
	"INTEGER": graphlite.TypeInteger, "INT": graphlite.TypeInteger,
	"BIGINT": graphlite.TypeBigInt, "SMALLINT": graphlite.TypeSmallInt,
	"INT128": graphlite.TypeInt128, "INT256": graphlite.TypeInt256,
	"FLOAT": graphlite.TypeFloat, "FLOAT32": graphlite.TypeFloat32,
	"REAL": graphlite.TypeReal, "DOUBLE": graphlite.TypeDouble,
	"VECTOR": graphlite.TypeVector,
	"DATE": graphlite.TypeDate, "TIME": graphlite.TypeTime,
	"TIMESTAMP": graphlite.TypeTimestamp,
	"DURATION":  graphlite.TypeDuration,
	"REFERENCE": graphlite.TypeReference, "PATH": graphlite.TypePath,
	"LIST": graphlite.TypeList, "RECORD": graphlite.TypeRecord,
	"GRAPH": graphlite.TypeGraph,
}

func upperASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'a' && c <= 'z' {
			b[i] = c - 'a' + 'A'
		}
	}
	return string(b)
}

// parsePathConstructor parses "PATH(elem, elem, ...)" (§4.3: elements must
// be scalar-convertible, checked by the validator).
func (p *Parser) parsePathConstructor() (ast.Expression, error) {
	p.advance() // PATH
	if _, err := p.expect(token.LParen); err != nil {
		return nil, err
	}
	pc := &ast.PathConstructor{}
	for !p.at(token.RParen) {
		e, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		pc.Elements = append(pc.Elements, e)
		if _, ok := p.accept(token.Comma); !ok {
			break
		}
	}
	if _, err := p.expect(token.RParen); err != nil {
		return nil, err
	}
	return pc, nil
}

func (p *Parser) parseExistsSubquery() (ast.Expression, error) {
	p.advance() // EXISTS
	if _, err := p.expect(token.LParen); err != nil {
		return nil, err
	}
	if p.at(token.MATCH) {
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
		if _, err := p.expect(token.RParen); err != nil {
			return nil, err
		}
		return &ast.ExistsSubquery{Query: &ast.Basic{Match: match, Where: where}}, nil
	}
	q, err := p.parseQuery()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RParen); err != nil {
		return nil, err
	}
	return &ast.ExistsSubquery{Query: q}, nil
}

// parseIdentOrCall resolves a bare identifier into a function call,
// temporal literal constructor, or a plain variable reference.
func (p *Parser) parseIdentOrCall() (ast.Expression, error) {
	t := p.advance()
	upper := upperASCII(t.Text)
	if p.at(token.LParen) {
		if lit, ok, err := p.tryTemporalConstructor(upper); err != nil {
			return nil, err
		} else if ok {
			return lit, nil
		}
		return p.finishFunctionCall(t.Text)
	}
	return &ast.Variable{Name: t.Text}, nil
}

// tryTemporalConstructor recognizes DATETIME(...)/DATE(...)/TIME(...)/
// DURATION(...)/TIME_WINDOW(...) literal forms (§4.3 temporal literals).
func (p *Parser) tryTemporalConstructor(upperName string) (ast.Expression, bool, error) {
	switch upperName {
	case "DATETIME", "DATE", "TIME", "ZONED_DATETIME", "LOCAL_DATETIME":
		p.advance() // (
		t, err := p.expect(token.StringLit)
		if err != nil {
			return nil, false, err
		}
		if _, err := p.expect(token.RParen); err != nil {
			return nil, false, err
		}
		return &ast.Literal{Kind: ast.LitDateTime, Str: t.Text}, true, nil
	case "DURATION":
		p.advance() // (
		t, err := p.expect(token.StringLit)
		if err != nil {
			return nil, false, err
		}
		if _, err := p.expect(token.RParen); err != nil {
			return nil, false, err
		}
		return &ast.Literal{Kind: ast.LitDuration, Str: t.Text}, true, nil
	case "TIME_WINDOW":
		p.advance() // (
		start, err := p.parseExpression()
		if err != nil {
			return nil, false, err
		}
		if _, err := p.expect(token.Comma); err != nil {
			return nil, false, err
		}
		end, err := p.parseExpression()
		if err != nil {
			return nil, false, err
		}
		if _, err := p.expect(token.RParen); err != nil {
			return nil, false, err
		}
		return &ast.Literal{Kind: ast.LitTimeWindow, Elems: []ast.Expression{start, end}}, true, nil
	}
	return nil, false, nil
}

func (p *Parser) finishFunctionCall(name string) (ast.Expression, error) {
	if _, err := p.expect(token.LParen); err != nil {
		return nil, err
	}
	call := &ast.FunctionCall{Name: name}
	if p.at(token.Star) {
		p.advance()
		call.Star = true
		if _, err := p.expect(token.RParen); err != nil {
			return nil, err
		}
		return call, nil
	}
	if _, ok := p.accept(token.DISTINCT); ok {
		call.Qualifier = ast.QualifierDistinct
	} else if _, ok := p.accept(token.ALL); ok {
		call.Qualifier = ast.QualifierAll
	}
	for !p.at(token.RParen) {
		arg, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		call.Args = append(call.Args, arg)
		if _, ok := p.accept(token.Comma); !ok {
			break
		}
	}
	if _, err := p.expect(token.RParen); err != nil {
		return nil, err
	}
	return call, nil
}

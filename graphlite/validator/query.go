package validator

import "github.com/mwatts/graphlite/ast"

func (c *checker) checkQuery(q ast.Query, outer *scope) {
	switch qq := q.(type) {
	case *ast.Basic:
		c.checkBasic(qq, outer)
	case *ast.SetOperation:
		c.checkQuery(qq.Left, outer)
		c.checkQuery(qq.Right, outer)
	case *ast.Limited:
		c.checkQuery(qq.Input, outer)
		for _, o := range qq.OrderBy {
			c.checkExpr(o.Expr, outer)
		}
	case *ast.WithQuery:
		c.checkWithQuery(qq, outer)
	case *ast.Unwind:
		s := outer.child()
		c.checkExpr(qq.Clause.Expr, outer)
		s.declare(qq.Clause.Variable)
		c.checkQuery(qq.Next, s)
	case *ast.Let:
		s := outer.child()
		c.checkExpr(qq.Value, outer)
		s.declare(qq.Variable)
		c.checkQuery(qq.Next, s)
	case *ast.For:
		s := outer.child()
		c.checkExpr(qq.Collection, outer)
		s.declare(qq.Variable)
		c.checkQuery(qq.Next, s)
	case *ast.Filter:
		c.checkExpr(qq.Predicate, outer)
		c.checkQuery(qq.Next, outer)
	case *ast.Return:
		if len(qq.Items) == 0 {
			c.fail(Structural, "RETURN must project at least one item")
		}
		for _, it := range qq.Items {
			c.checkExpr(it.Expr, outer)
		}
		for _, o := range qq.OrderBy {
			c.checkExpr(o.Expr, outer)
		}
	case *ast.MutationPipeline:
		c.checkDataStatement(qq.Statement, outer)
	}
}

func (c *checker) checkBasic(b *ast.Basic, outer *scope) {
	c.checkMatchClause(b.Match)
	s := outer.child()
	s.declareMatch(b.Match)

	if b.Where != nil {
		c.checkExpr(b.Where, s)
	}
	if len(b.Return) == 0 {
		c.fail(Structural, "RETURN must project at least one item")
	}
	for _, it := range b.Return {
		c.checkExpr(it.Expr, s)
	}
	s.declareReturnItems(b.Return)

	hasAggregate := false
	for _, it := range b.Return {
		if c.containsAggregate(it.Expr) {
			hasAggregate = true
		}
	}
	if b.Having != nil {
		if len(b.GroupBy) == 0 && !hasAggregate {
			c.fail(Structural, "HAVING requires GROUP BY or an aggregate in RETURN")
		}
		c.checkExpr(b.Having, s)
	}
	for _, g := range b.GroupBy {
		c.checkExpr(g, s)
	}
	for _, o := range b.OrderBy {
		c.checkExpr(o.Expr, s)
	}
}

func (c *checker) checkWithQuery(wq *ast.WithQuery, outer *scope) {
	s := outer
	for i := range wq.Segments {
		seg := &wq.Segments[i]
		c.checkMatchClause(seg.Match)
		s = s.child()
		s.declareMatch(seg.Match)
		if seg.Where != nil {
			c.checkExpr(seg.Where, s)
		}
		if seg.Unwind != nil {
			c.checkExpr(seg.Unwind.Expr, s)
			s.declare(seg.Unwind.Variable)
			if seg.UnwindWhere != nil {
				c.checkExpr(seg.UnwindWhere, s)
			}
		}
		if seg.With == nil {
			c.fail(Structural, "WITH pipeline segment is missing its WITH clause")
			continue
		}
		for _, it := range seg.With.Items {
			c.checkExpr(it.Expr, s)
		}
		next := newScope()
		next.declareReturnItems(seg.With.Items)
		if seg.With.Where != nil {
			c.checkExpr(seg.With.Where, s)
		}
		for _, o := range seg.With.OrderBy {
			c.checkExpr(o.Expr, s)
		}
		s = next
	}
	if wq.Final == nil {
		c.fail(Structural, "WITH pipeline must end in a RETURN")
		return
	}
	c.checkBasicNoMatch(wq.Final, s)
}

// checkBasicNoMatch validates a WithQuery's terminating Basic, which reuses
// Basic's shape but has no MATCH clause of its own: its scope is the
// preceding WITH's output.
func (c *checker) checkBasicNoMatch(b *ast.Basic, s *scope) {
	if len(b.Return) == 0 {
		c.fail(Structural, "RETURN must project at least one item")
	}
	for _, it := range b.Return {
		c.checkExpr(it.Expr, s)
	}
	hasAggregate := false
	for _, it := range b.Return {
		if c.containsAggregate(it.Expr) {
			hasAggregate = true
		}
	}
	if b.Having != nil {
		if len(b.GroupBy) == 0 && !hasAggregate {
			c.fail(Structural, "HAVING requires GROUP BY or an aggregate in RETURN")
		}
		c.checkExpr(b.Having, s)
	}
	for _, g := range b.GroupBy {
		c.checkExpr(g, s)
	}
	for _, o := range b.OrderBy {
		c.checkExpr(o.Expr, s)
	}
}

func (c *checker) checkMatchClause(m *ast.MatchClause) {
	if m == nil {
		c.fail(Structural, "MATCH must have at least one pattern")
		return
	}
	if len(m.Patterns) == 0 {
		c.fail(Structural, "MATCH must have at least one pattern")
	}
	for _, p := range m.Patterns {
		c.checkPathPattern(p)
	}
}

func (c *checker) checkPathPattern(p *ast.PathPattern) {
	if len(p.Elements) == 0 {
		c.fail(Structural, "pattern must contain at least one node")
		return
	}
	if p.Elements[0].Node == nil || p.Elements[len(p.Elements)-1].Node == nil {
		c.fail(Structural, "pattern must start and end with a node")
	}
	for i, el := range p.Elements {
		wantNode := i%2 == 0
		if wantNode && el.Node == nil {
			c.fail(Structural, "pattern element %d must be a node", i)
		}
		if !wantNode && el.Edge == nil {
			c.fail(Structural, "pattern element %d must be an edge", i)
		}
	}
}

func (c *checker) checkSelectStatement(st *ast.SelectStatement, outer *scope) {
	if len(st.Items) == 0 {
		c.fail(Structural, "SELECT must project at least one item")
	}
	s := outer.child()
	if st.Match != nil {
		c.checkMatchClause(st.Match)
		s.declareMatch(st.Match)
	}
	for _, it := range st.Items {
		c.checkExpr(it.Expr, s)
	}
	if st.Where != nil {
		c.checkExpr(st.Where, s)
	}
	for _, o := range st.OrderBy {
		c.checkExpr(o.Expr, s)
	}
}

func (c *checker) checkDataStatement(st *ast.DataStatement, outer *scope) {
	s := outer.child()
	for _, p := range st.Match {
		c.checkPathPattern(p)
		s.declareMatch(&ast.MatchClause{Patterns: []*ast.PathPattern{p}})
	}
	if st.Where != nil {
		c.checkExpr(st.Where, s)
	}
	if st.With != nil {
		for _, it := range st.With.Items {
			c.checkExpr(it.Expr, s)
		}
		s.declareReturnItems(st.With.Items)
		if st.With.Where != nil {
			c.checkExpr(st.With.Where, s)
		}
	}
	switch st.Kind {
	case ast.DataInsert:
		if len(st.InsertPath) == 0 {
			c.fail(Structural, "INSERT must specify at least one pattern")
		}
		for _, p := range st.InsertPath {
			c.checkPathPattern(p)
		}
	case ast.DataSet:
		if len(st.SetItems) == 0 {
			c.fail(Structural, "SET must specify at least one item")
		}
		for _, item := range st.SetItems {
			if !s.has(item.Variable) && !c.hasGraphContext {
				c.fail(Semantic, "SET references undeclared variable %q", item.Variable)
			}
			if item.Value != nil {
				c.checkExpr(item.Value, s)
			}
		}
	case ast.DataRemove:
		if len(st.RemoveItems) == 0 {
			c.fail(Structural, "REMOVE must specify at least one item")
		}
		for _, item := range st.RemoveItems {
			if !s.has(item.Variable) && !c.hasGraphContext {
				c.fail(Semantic, "REMOVE references undeclared variable %q", item.Variable)
			}
		}
	case ast.DataDelete:
		if len(st.DeleteVars) == 0 {
			c.fail(Structural, "DELETE must specify at least one variable")
		}
		for _, v := range st.DeleteVars {
			if !s.has(v) && !c.hasGraphContext {
				c.fail(Semantic, "DELETE references undeclared variable %q", v)
			}
		}
	}
}

// containsAggregate reports whether expr contains a call to a registered
// aggregate function anywhere in its tree, used for HAVING's "implicit
// GROUP BY via aggregate presence" rule (§4.3).
func (c *checker) containsAggregate(expr ast.Expression) bool {
	found := false
	walkExpr(expr, func(e ast.Expression) {
		if fc, ok := e.(*ast.FunctionCall); ok && c.registry.IsAggregateName(fc.Name) {
			found = true
		}
	})
	return found
}

package validator

import "github.com/mwatts/graphlite/ast"

// scope tracks every variable name declared by an enclosing MATCH/WITH/
// LET/FOR/UNWIND clause, consulted by the expression walker's scope check
// (§4.3: "all variables in WHERE/RETURN/ORDER/GROUP are declared ...").
type scope struct {
	names map[string]bool
}

func newScope() *scope {
	return &scope{names: map[string]bool{}}
}

// child returns a copy a nested clause can extend without mutating outer:
// a WITH segment's bindings must not leak backward into the MATCH that fed
// it, but must be visible to everything after it in the pipeline.
func (s *scope) child() *scope {
	c := newScope()
	for n := range s.names {
		c.names[n] = true
	}
	return c
}

func (s *scope) declare(name string) {
	if name != "" {
		s.names[name] = true
	}
}

func (s *scope) declareMatch(m *ast.MatchClause) {
	if m == nil {
		return
	}
	for _, p := range m.Patterns {
		for _, v := range p.Variables() {
			s.declare(v)
		}
		s.declare(p.Variable)
	}
}

func (s *scope) declareReturnItems(items []ast.ReturnItem) {
	for _, it := range items {
		if it.Alias != "" {
			s.declare(it.Alias)
		} else if v, ok := it.Expr.(*ast.Variable); ok {
			s.declare(v.Name)
		}
	}
}

func (s *scope) has(name string) bool {
	return s.names[name]
}

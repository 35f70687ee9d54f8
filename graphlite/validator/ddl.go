package validator

import "github.com/mwatts/graphlite/ast"

// checkCallStatement validates CALL proc(args) [YIELD cols] [WHERE pred]
// per §4.3. Procedure existence is a catalog lookup, and this package has no
// catalog handle of its own (Validate's signature carries only the document
// and hasGraphContext, matching §4.3's stated contract) — that check runs
// later, when the statement reaches a component bound to the catalog. Here
// we check what the document's own text can prove: YIELD aliases are
// pairwise distinct, WHERE only references a YIELDed column, and every
// argument expression is itself well-formed.
func (c *checker) checkCallStatement(st *ast.CallStatement, outer *scope) {
	if st.Procedure == "" {
		c.fail(Structural, "CALL must name a procedure")
	}
	for _, a := range st.Args {
		c.checkExpr(a, outer)
	}

	seen := make(map[string]bool, len(st.Yield))
	for _, y := range st.Yield {
		if seen[y] {
			c.fail(Semantic, "YIELD alias %q is declared more than once", y)
		}
		seen[y] = true
	}

	if st.Where != nil {
		if len(st.Yield) > 0 {
			yielded := newScope()
			for _, y := range st.Yield {
				yielded.declare(y)
			}
			c.checkExpr(st.Where, yielded)
		} else {
			c.checkExpr(st.Where, outer)
		}
	}
}

// checkCatalogStatement validates CREATE/DROP SCHEMA/GRAPH/GRAPH
// TYPE/PROCEDURE/USER/ROLE path shape: non-empty segments, 1-2 segments
// ("name" or "/schema/name"), per §4.3.
func (c *checker) checkCatalogStatement(st *ast.CatalogStatement) {
	segs := st.Path.Segments
	if len(segs) == 0 {
		c.fail(Structural, "catalog path must have at least one segment")
		return
	}
	if len(segs) > 2 {
		c.fail(Structural, "catalog path must be 1-2 segments (name or /schema/name), got %d", len(segs))
	}
	for i, s := range segs {
		if s == "" {
			c.fail(Structural, "catalog path segment %d is empty", i)
		}
	}
	if st.Object == ast.ObjProcedure && st.ProcedureBody != nil {
		inner := newScope()
		for _, p := range st.ProcedureParams {
			inner.declare(p.Name)
		}
		for _, s := range st.ProcedureBody.Statements {
			c.checkStatement(s, inner)
		}
	}
}

// checkIndexStatement validates CREATE/DROP INDEX shape: a name, and for
// CREATE, a target label and at least one property.
func (c *checker) checkIndexStatement(st *ast.IndexStatement) {
	if st.Name == "" {
		c.fail(Structural, "index statement must have a name")
	}
	if st.Verb == ast.VerbCreate {
		if st.OnLabel == "" {
			c.fail(Structural, "CREATE INDEX must name a target label")
		}
		if len(st.OnProps) == 0 {
			c.fail(Structural, "CREATE INDEX must name at least one property")
		}
	}
}

package validator

import (
	"strings"

	"github.com/mwatts/graphlite/ast"
)

func (c *checker) checkExpr(e ast.Expression, s *scope) {
	if e == nil {
		return
	}
	switch ex := e.(type) {
	case *ast.Binary:
		c.checkExpr(ex.Left, s)
		c.checkExpr(ex.Right, s)
	case *ast.Unary:
		c.checkExpr(ex.Operand, s)
	case *ast.FunctionCall:
		c.checkFunctionCall(ex, s)
	case *ast.PropertyAccess:
		c.checkExpr(ex.Object, s)
	case *ast.Variable:
		if !s.has(ex.Name) && !c.hasGraphContext {
			c.fail(Semantic, "undeclared variable %q", ex.Name)
		}
	case *ast.Parameter:
		// session parameters resolve outside the document's own scope
	case *ast.Literal:
		c.checkLiteral(ex)
	case *ast.Case:
		c.checkCase(ex, s)
	case *ast.PathConstructor:
		c.checkPathConstructor(ex, s)
	case *ast.Cast:
		c.checkExpr(ex.Value, s)
	case *ast.Subquery:
		c.checkQuery(ex.Query, s)
	case *ast.ExistsSubquery:
		c.checkQuery(ex.Query, s)
	case *ast.NotExistsSubquery:
		c.checkQuery(ex.Query, s)
	case *ast.InSubquery:
		c.checkExpr(ex.Expr, s)
		c.checkQuery(ex.Query, s)
	case *ast.NotInSubquery:
		c.checkExpr(ex.Expr, s)
		c.checkQuery(ex.Query, s)
	case *ast.QuantifiedComparison:
		c.checkExpr(ex.Left, s)
		c.checkExpr(ex.Collection, s)
	case *ast.IsPredicate:
		c.checkExpr(ex.Operand, s)
	case *ast.PatternExpr:
		c.checkPathPattern(ex.Pattern)
	case *ast.ArrayIndex:
		c.checkExpr(ex.Collection, s)
		c.checkExpr(ex.Index, s)
	}
}

func (c *checker) checkFunctionCall(fc *ast.FunctionCall, s *scope) {
	if !fc.Star {
		if err := c.registry.Validate(fc.Name, len(fc.Args)); err != nil {
			c.fail(Semantic, "%s", err.Error())
		}
	}
	for _, a := range fc.Args {
		c.checkExpr(a, s)
	}
}

func (c *checker) checkCase(ce *ast.Case, s *scope) {
	if len(ce.Whens) == 0 {
		c.fail(Structural, "CASE must have at least one WHEN branch")
	}
	if ce.Operand != nil {
		c.checkExpr(ce.Operand, s)
	}
	for _, w := range ce.Whens {
		c.checkExpr(w.When, s)
		c.checkExpr(w.Then, s)
	}
	if ce.Else != nil {
		c.checkExpr(ce.Else, s)
	}
}

func (c *checker) checkPathConstructor(pc *ast.PathConstructor, s *scope) {
	for _, el := range pc.Elements {
		if lit, ok := el.(*ast.Literal); ok && lit.Kind == ast.LitList {
			c.fail(Type, "PATH constructor elements must be scalar-convertible")
		}
		c.checkExpr(el, s)
	}
}

// checkLiteral applies §4.3's temporal literal shape rules: these run at
// validation time because the parser accepts any string body for a
// DATETIME/DURATION constructor and defers shape checking here.
func (c *checker) checkLiteral(lit *ast.Literal) {
	switch lit.Kind {
	case ast.LitDateTime:
		if !strings.Contains(lit.Str, "T") {
			c.fail(Type, "DATETIME literal %q must contain a 'T' date/time separator", lit.Str)
		}
	case ast.LitDuration:
		if !strings.HasPrefix(lit.Str, "P") {
			c.fail(Type, "DURATION literal %q must start with 'P'", lit.Str)
		}
	case ast.LitTimeWindow:
		// The validator confirms only the bound count; the a <= b order of
		// the bounds is not checked here, and the executor does not evaluate
		// TIME_WINDOW literals.
		if len(lit.Elems) != 2 {
			c.fail(Structural, "TIME_WINDOW requires exactly two bounds")
		}
	}
}

func walkExpr(e ast.Expression, visit func(ast.Expression)) {
	if e == nil {
		return
	}
	visit(e)
	switch ex := e.(type) {
	case *ast.Binary:
		walkExpr(ex.Left, visit)
		walkExpr(ex.Right, visit)
	case *ast.Unary:
		walkExpr(ex.Operand, visit)
	case *ast.FunctionCall:
		for _, a := range ex.Args {
			walkExpr(a, visit)
		}
	case *ast.PropertyAccess:
		walkExpr(ex.Object, visit)
	case *ast.Case:
		walkExpr(ex.Operand, visit)
		for _, w := range ex.Whens {
			walkExpr(w.When, visit)
			walkExpr(w.Then, visit)
		}
		walkExpr(ex.Else, visit)
	case *ast.PathConstructor:
		for _, el := range ex.Elements {
			walkExpr(el, visit)
		}
	case *ast.Cast:
		walkExpr(ex.Value, visit)
	case *ast.QuantifiedComparison:
		walkExpr(ex.Left, visit)
		walkExpr(ex.Collection, visit)
	case *ast.IsPredicate:
		walkExpr(ex.Operand, visit)
	case *ast.ArrayIndex:
		walkExpr(ex.Collection, visit)
		walkExpr(ex.Index, visit)
	}
}

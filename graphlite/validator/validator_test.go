package validator

import (
	"testing"

	"github.com/mwatts/graphlite/ast"
	"github.com/mwatts/graphlite/function"
	"github.com/mwatts/graphlite/parser"
)

func mustParse(t *testing.T, src string) *ast.Document {
	t.Helper()
	doc, err := parser.Parse(src)
	if err != nil {
		t.Fatalf("Parse(%q) error = %v", src, err)
	}
	return doc
}

func hasKind(errs []*Error, k Kind) bool {
	for _, e := range errs {
		if e.Kind == k {
			return true
		}
	}
	return false
}

func TestValidateWellFormedQueryPasses(t *testing.T) {
	doc := mustParse(t, `MATCH (a:Person)-[:KNOWS]->(b:Person) WHERE a.age > 30 RETURN a, b.name ORDER BY a.age`)
	if errs := Validate(doc, false); errs != nil {
		t.Fatalf("expected no errors, got %v", errs)
	}
}

func TestValidateUndeclaredVariableInReturn(t *testing.T) {
	doc := &ast.Document{Statement: &ast.QueryStatement{Query: &ast.Basic{
		Match: &ast.MatchClause{Patterns: []*ast.PathPattern{{
			Elements: []ast.PatternElement{{Node: &ast.NodeElement{Variable: "a"}}},
		}}},
		Return: []ast.ReturnItem{{Expr: &ast.Variable{Name: "ghost"}}},
	}}}
	errs := Validate(doc, false)
	if !hasKind(errs, Semantic) {
		t.Fatalf("expected a Semantic error for undeclared variable, got %v", errs)
	}
}

func TestValidateHasGraphContextRelaxesScopeCheck(t *testing.T) {
	doc := &ast.Document{Statement: &ast.QueryStatement{Query: &ast.Basic{
		Match: &ast.MatchClause{Patterns: []*ast.PathPattern{{
			Elements: []ast.PatternElement{{Node: &ast.NodeElement{Variable: "a"}}},
		}}},
		Return: []ast.ReturnItem{{Expr: &ast.Variable{Name: "ghost"}}},
	}}}
	if errs := Validate(doc, true); errs != nil {
		t.Fatalf("expected hasGraphContext=true to suppress the scope error, got %v", errs)
	}
}

func TestValidateEmptyReturnIsStructural(t *testing.T) {
	doc := &ast.Document{Statement: &ast.QueryStatement{Query: &ast.Basic{
		Match: &ast.MatchClause{Patterns: []*ast.PathPattern{{
			Elements: []ast.PatternElement{{Node: &ast.NodeElement{Variable: "a"}}},
		}}},
	}}}
	errs := Validate(doc, false)
	if !hasKind(errs, Structural) {
		t.Fatalf("expected a Structural error for empty RETURN, got %v", errs)
	}
}

func TestValidatePatternMustStartAndEndWithNode(t *testing.T) {
	doc := &ast.Document{Statement: &ast.QueryStatement{Query: &ast.Basic{
		Match: &ast.MatchClause{Patterns: []*ast.PathPattern{{
			Elements: []ast.PatternElement{{Edge: &ast.EdgeElement{}}},
		}}},
		Return: []ast.ReturnItem{{Expr: &ast.Literal{Kind: ast.LitInt, Int: 1}}},
	}}}
	errs := Validate(doc, false)
	if !hasKind(errs, Structural) {
		t.Fatalf("expected a Structural error for an edge-only pattern, got %v", errs)
	}
}

func TestValidateHavingWithoutGroupByOrAggregateFails(t *testing.T) {
	doc := mustParse(t, `MATCH (a:Person) RETURN a.name HAVING a.name = 'x'`)
	errs := Validate(doc, false)
	if !hasKind(errs, Structural) {
		t.Fatalf("expected a Structural error for HAVING without GROUP BY/aggregate, got %v", errs)
	}
}

func TestValidateHavingWithAggregatePasses(t *testing.T) {
	doc := mustParse(t, `MATCH (a:Person) RETURN a.dept, COUNT(a) AS c HAVING COUNT(a) > 1`)
	if errs := Validate(doc, false); errs != nil {
		t.Fatalf("expected no errors, got %v", errs)
	}
}

func TestValidateUnknownFunctionArityIsSemantic(t *testing.T) {
	doc := mustParse(t, `MATCH (a:Person) RETURN SUBSTRING(a.name)`)
	errs := Validate(doc, false)
	if !hasKind(errs, Semantic) {
		t.Fatalf("expected a Semantic error for a bad SUBSTRING arity, got %v", errs)
	}
}

func TestValidateCaseRequiresAtLeastOneWhen(t *testing.T) {
	doc := &ast.Document{Statement: &ast.QueryStatement{Query: &ast.Basic{
		Match: &ast.MatchClause{Patterns: []*ast.PathPattern{{
			Elements: []ast.PatternElement{{Node: &ast.NodeElement{Variable: "a"}}},
		}}},
		Return: []ast.ReturnItem{{Expr: &ast.Case{}}},
	}}}
	errs := Validate(doc, false)
	if !hasKind(errs, Structural) {
		t.Fatalf("expected a Structural error for a CASE with no WHEN, got %v", errs)
	}
}

func TestValidateDateTimeLiteralShape(t *testing.T) {
	good := &ast.Literal{Kind: ast.LitDateTime, Str: "2024-01-01T00:00:00Z"}
	bad := &ast.Literal{Kind: ast.LitDateTime, Str: "2024-01-01"}

	c := &checker{registry: function.DefaultRegistry}
	c.checkLiteral(good)
	if len(c.errs) != 0 {
		t.Fatalf("expected no errors for a well-formed DATETIME, got %v", c.errs)
	}
	c.checkLiteral(bad)
	if !hasKind(c.errs, Type) {
		t.Fatalf("expected a Type error for a DATETIME missing 'T', got %v", c.errs)
	}
}

func TestValidateDurationLiteralShape(t *testing.T) {
	c := &checker{registry: function.DefaultRegistry}
	c.checkLiteral(&ast.Literal{Kind: ast.LitDuration, Str: "1 day"})
	if !hasKind(c.errs, Type) {
		t.Fatalf("expected a Type error for a DURATION not starting with 'P', got %v", c.errs)
	}
}

func TestValidateTimeWindowRequiresTwoBounds(t *testing.T) {
	c := &checker{registry: function.DefaultRegistry}
	c.checkLiteral(&ast.Literal{Kind: ast.LitTimeWindow, Elems: []ast.Expression{&ast.Literal{Kind: ast.LitInt, Int: 1}}})
	if !hasKind(c.errs, Structural) {
		t.Fatalf("expected a Structural error for a one-bound TIME_WINDOW, got %v", c.errs)
	}
}

func TestValidateCallYieldDuplicateAlias(t *testing.T) {
	doc := mustParse(t, `CALL shortest_path(a, b) YIELD length, length WHERE length < 5`)
	errs := Validate(doc, true)
	if !hasKind(errs, Semantic) {
		t.Fatalf("expected a Semantic error for duplicate YIELD aliases, got %v", errs)
	}
}

func TestValidateCallWhereMustReferenceYieldedColumn(t *testing.T) {
	doc := mustParse(t, `CALL shortest_path(a, b) YIELD length WHERE path = 1`)
	errs := Validate(doc, false)
	if !hasKind(errs, Semantic) {
		t.Fatalf("expected a Semantic error for WHERE referencing a non-YIELDed column, got %v", errs)
	}
}

func TestValidateCatalogPathSegmentCount(t *testing.T) {
	doc := mustParse(t, `CREATE GRAPH IF NOT EXISTS /schema1/social`)
	if errs := Validate(doc, false); errs != nil {
		t.Fatalf("expected a well-formed 2-segment path to pass, got %v", errs)
	}

	doc2 := &ast.Document{Statement: &ast.CatalogStatement{
		Object: ast.ObjGraph,
		Path:   ast.CatalogPath{Segments: []string{"a", "b", "c"}},
	}}
	errs := Validate(doc2, false)
	if !hasKind(errs, Structural) {
		t.Fatalf("expected a Structural error for a 3-segment catalog path, got %v", errs)
	}
}

func TestValidateCreateIndexRequiresLabelAndProps(t *testing.T) {
	doc := mustParse(t, `CREATE UNIQUE INDEX person_name ON :Person(name)`)
	if errs := Validate(doc, false); errs != nil {
		t.Fatalf("expected a well-formed CREATE INDEX to pass, got %v", errs)
	}

	doc2 := &ast.Document{Statement: &ast.IndexStatement{Verb: ast.VerbCreate, Name: "idx"}}
	errs := Validate(doc2, false)
	if !hasKind(errs, Structural) {
		t.Fatalf("expected a Structural error for CREATE INDEX missing label/props, got %v", errs)
	}
}

func TestValidateAccumulatesMultipleErrors(t *testing.T) {
	doc := &ast.Document{Statement: &ast.QueryStatement{Query: &ast.Basic{
		Match: &ast.MatchClause{},
	}}}
	errs := Validate(doc, false)
	if len(errs) < 2 {
		t.Fatalf("expected at least 2 accumulated errors (empty MATCH, empty RETURN), got %v", errs)
	}
}

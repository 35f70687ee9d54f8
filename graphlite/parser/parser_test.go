package parser

import (
	"testing"

	"github.com/mwatts/graphlite"
	"github.com/mwatts/graphlite/ast"
)

func mustParse(t *testing.T, src string) *ast.Document {
	t.Helper()
	doc, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse(%q) error = %v", src, err)
	}
	return doc
}

func TestParseBasicMatchReturn(t *testing.T) {
	doc := mustParse(t, `MATCH (a:Person)-[r:KNOWS]->(b:Person) WHERE a.age > 30 RETURN a, b ORDER BY a.age DESC LIMIT 10`)
	stmt, ok := doc.Statement.(*ast.QueryStatement)
	if !ok {
		t.Fatalf("expected QueryStatement, got %T", doc.Statement)
	}
	basic, ok := stmt.Query.(*ast.Basic)
	if !ok {
		t.Fatalf("expected Basic query, got %T", stmt.Query)
	}
	if len(basic.Match.Patterns) != 1 {
		t.Fatalf("expected 1 pattern, got %d", len(basic.Match.Patterns))
	}
	pat := basic.Match.Patterns[0]
	if len(pat.Elements) != 3 {
		t.Fatalf("expected 3 pattern elements, got %d", len(pat.Elements))
	}
	if pat.Elements[1].Edge.Direction != ast.DirOutgoing {
		t.Fatalf("expected outgoing edge, got %v", pat.Elements[1].Edge.Direction)
	}
	if basic.Where == nil {
		t.Fatal("expected WHERE clause")
	}
	if len(basic.Return) != 2 {
		t.Fatalf("expected 2 return items, got %d", len(basic.Return))
	}
	if len(basic.OrderBy) != 1 || basic.OrderBy[0].Direction != ast.OrderDesc {
		t.Fatalf("expected descending order by, got %+v", basic.OrderBy)
	}
	if basic.Limit == nil {
		t.Fatal("expected LIMIT")
	}
}

func TestParseCommaSeparatedPatterns(t *testing.T) {
	doc := mustParse(t, `MATCH (a)-[:KNOWS]->(b), (b)-[:WORKS_AT]->(c) RETURN a, c`)
	basic := doc.Statement.(*ast.QueryStatement).Query.(*ast.Basic)
	if len(basic.Match.Patterns) != 2 {
		t.Fatalf("expected 2 patterns, got %d", len(basic.Match.Patterns))
	}
}

func TestParseEdgeQuantifiers(t *testing.T) {
	tests := []struct {
		name   string
		src    string
		kind   ast.QuantifierKind
		min    int
		max    int
	}{
		{"exact", `MATCH (a)-[:LINK{3}]->(b) RETURN a`, ast.QuantExact, 3, 3},
		{"range", `MATCH (a)-[:LINK{2,5}]->(b) RETURN a`, ast.QuantRange, 2, 5},
		{"at-least", `MATCH (a)-[:LINK{2,}]->(b) RETURN a`, ast.QuantAtLeast, 2, -1},
		{"at-most", `MATCH (a)-[:LINK{,5}]->(b) RETURN a`, ast.QuantAtMost, 0, 5},
		{"optional", `MATCH (a)-[:LINK?]->(b) RETURN a`, ast.QuantOptional, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := mustParse(t, tt.src)
			basic := doc.Statement.(*ast.QueryStatement).Query.(*ast.Basic)
			edge := basic.Match.Patterns[0].Elements[1].Edge
			if edge.Quantifier == nil {
				t.Fatal("expected a quantifier")
			}
			if edge.Quantifier.Kind != tt.kind {
				t.Fatalf("expected kind %v, got %v", tt.kind, edge.Quantifier.Kind)
			}
			if tt.kind != ast.QuantOptional {
				if edge.Quantifier.Min != tt.min || edge.Quantifier.Max != tt.max {
					t.Fatalf("expected min=%d max=%d, got min=%d max=%d", tt.min, tt.max, edge.Quantifier.Min, edge.Quantifier.Max)
				}
			}
		})
	}
}

func TestParseEdgeDirections(t *testing.T) {
	tests := []struct {
		src  string
		want ast.Direction
	}{
		{`MATCH (a)-[:L]->(b) RETURN a`, ast.DirOutgoing},
		{`MATCH (a)<-[:L]-(b) RETURN a`, ast.DirIncoming},
		{`MATCH (a)<-[:L]->(b) RETURN a`, ast.DirBoth},
		{`MATCH (a)-[:L]-(b) RETURN a`, ast.DirUndirected},
	}
	for _, tt := range tests {
		doc := mustParse(t, tt.src)
		basic := doc.Statement.(*ast.QueryStatement).Query.(*ast.Basic)
		got := basic.Match.Patterns[0].Elements[1].Edge.Direction
		if got != tt.want {
			t.Errorf("%q: expected direction %v, got %v", tt.src, tt.want, got)
		}
	}
}

func TestParseMatchDeleteIsDataStatement(t *testing.T) {
	doc := mustParse(t, `MATCH (a:Person) DETACH DELETE a`)
	stmt, ok := doc.Statement.(*ast.DataStatement)
	if !ok {
		t.Fatalf("expected DataStatement, got %T", doc.Statement)
	}
	if stmt.Kind != ast.DataDelete || !stmt.Detach {
		t.Fatalf("expected DETACH DELETE, got %+v", stmt)
	}
	if len(stmt.DeleteVars) != 1 || stmt.DeleteVars[0] != "a" {
		t.Fatalf("unexpected delete vars: %v", stmt.DeleteVars)
	}
}

func TestParseMatchSetIsDataStatement(t *testing.T) {
	doc := mustParse(t, `MATCH (a:Person) SET a.age = 31, a:Verified`)
	stmt := doc.Statement.(*ast.DataStatement)
	if stmt.Kind != ast.DataSet {
		t.Fatalf("expected DataSet, got %v", stmt.Kind)
	}
	if len(stmt.SetItems) != 2 {
		t.Fatalf("expected 2 set items, got %d", len(stmt.SetItems))
	}
	if stmt.SetItems[0].Property != "age" {
		t.Fatalf("expected property assignment, got %+v", stmt.SetItems[0])
	}
	if stmt.SetItems[1].Label != "Verified" {
		t.Fatalf("expected label assignment, got %+v", stmt.SetItems[1])
	}
}

func TestParseBareInsert(t *testing.T) {
	doc := mustParse(t, `INSERT (a:Person {name: "Ada"})-[:KNOWS]->(b:Person {name: "Lin"})`)
	stmt := doc.Statement.(*ast.DataStatement)
	if stmt.Kind != ast.DataInsert {
		t.Fatalf("expected DataInsert, got %v", stmt.Kind)
	}
	if len(stmt.InsertPath) != 1 {
		t.Fatalf("expected 1 insert pattern, got %d", len(stmt.InsertPath))
	}
}

func TestParseWithPipeline(t *testing.T) {
	doc := mustParse(t, `MATCH (a:Person)-[r:KNOWS]->(b) WITH a, COUNT(r) AS degree WHERE degree > 1 RETURN a, degree ORDER BY degree DESC`)
	stmt, ok := doc.Statement.(*ast.QueryStatement)
	if !ok {
		t.Fatalf("expected QueryStatement, got %T", doc.Statement)
	}
	wq, ok := stmt.Query.(*ast.WithQuery)
	if !ok {
		t.Fatalf("expected WithQuery, got %T", stmt.Query)
	}
	if len(wq.Segments) != 1 {
		t.Fatalf("expected 1 segment, got %d", len(wq.Segments))
	}
	with := wq.Segments[0].With
	if with == nil || len(with.Items) != 2 {
		t.Fatalf("expected 2 WITH items, got %+v", with)
	}
	if with.Where == nil {
		t.Fatal("expected WITH WHERE clause")
	}
	if wq.Final == nil || len(wq.Final.Return) != 2 {
		t.Fatalf("expected final RETURN with 2 items, got %+v", wq.Final)
	}
}

func TestParseSetOperationsAssociateLeft(t *testing.T) {
	doc := mustParse(t, `RETURN 1 AS x UNION RETURN 2 AS x UNION ALL RETURN 3 AS x`)
	stmt := doc.Statement.(*ast.QueryStatement)
	top, ok := stmt.Query.(*ast.SetOperation)
	if !ok {
		t.Fatalf("expected SetOperation, got %T", stmt.Query)
	}
	if top.Kind != ast.SetUnion || !top.All {
		t.Fatalf("expected the outer operator to be UNION ALL, got kind=%v all=%v", top.Kind, top.All)
	}
	if _, ok := top.Left.(*ast.SetOperation); !ok {
		t.Fatalf("expected left-associative nesting, got %T", top.Left)
	}
}

func TestParseUnwind(t *testing.T) {
	doc := mustParse(t, `UNWIND ["a", "b", "c"] AS x RETURN x`)
	stmt := doc.Statement.(*ast.QueryStatement)
	uw, ok := stmt.Query.(*ast.Unwind)
	if !ok {
		t.Fatalf("expected Unwind, got %T", stmt.Query)
	}
	if uw.Clause.Variable != "x" {
		t.Fatalf("expected variable x, got %q", uw.Clause.Variable)
	}
	lit, ok := uw.Clause.Expr.(*ast.Literal)
	if !ok || lit.Kind != ast.LitList || len(lit.Elems) != 3 {
		t.Fatalf("expected a 3-element list literal, got %+v", uw.Clause.Expr)
	}
}

func TestParseUnwindNumericVectorLiteral(t *testing.T) {
	doc := mustParse(t, `UNWIND [1, 2, 3] AS x RETURN x`)
	stmt := doc.Statement.(*ast.QueryStatement)
	uw := stmt.Query.(*ast.Unwind)
	lit, ok := uw.Clause.Expr.(*ast.Literal)
	if !ok || lit.Kind != ast.LitVector || len(lit.Elems) != 3 {
		t.Fatalf("expected a 3-element vector literal (eager numeric bracket match), got %+v", uw.Clause.Expr)
	}
}

func TestParseCallWithYieldAndWhere(t *testing.T) {
	doc := mustParse(t, `CALL shortest_path(a, b) YIELD length, path WHERE length < 5`)
	stmt, ok := doc.Statement.(*ast.CallStatement)
	if !ok {
		t.Fatalf("expected CallStatement, got %T", doc.Statement)
	}
	if stmt.Procedure != "shortest_path" {
		t.Fatalf("expected procedure name, got %q", stmt.Procedure)
	}
	if len(stmt.Yield) != 2 {
		t.Fatalf("expected 2 yield columns, got %v", stmt.Yield)
	}
	if stmt.Where == nil {
		t.Fatal("expected WHERE clause")
	}
}

func TestParseCreateGraphIfNotExists(t *testing.T) {
	doc := mustParse(t, `CREATE GRAPH IF NOT EXISTS /schema1/social`)
	stmt, ok := doc.Statement.(*ast.CatalogStatement)
	if !ok {
		t.Fatalf("expected CatalogStatement, got %T", doc.Statement)
	}
	if stmt.Object != ast.ObjGraph || !stmt.IfNotExist {
		t.Fatalf("unexpected statement: %+v", stmt)
	}
	if len(stmt.Path.Segments) != 2 {
		t.Fatalf("expected 2 path segments, got %v", stmt.Path.Segments)
	}
}

func TestParseCreateUniqueIndex(t *testing.T) {
	doc := mustParse(t, `CREATE UNIQUE INDEX person_name ON :Person(name)`)
	stmt := doc.Statement.(*ast.IndexStatement)
	if !stmt.IsUnique || stmt.OnLabel != "Person" || len(stmt.OnProps) != 1 {
		t.Fatalf("unexpected statement: %+v", stmt)
	}
}

func TestParseStartTransactionReadOnly(t *testing.T) {
	doc := mustParse(t, `START TRANSACTION READ ONLY`)
	stmt := doc.Statement.(*ast.TransactionStatement)
	if stmt.Kind != ast.TxnStart || stmt.AccessMode != "READ ONLY" {
		t.Fatalf("unexpected statement: %+v", stmt)
	}
}

func TestParseExpressionPrecedence(t *testing.T) {
	doc := mustParse(t, `RETURN 1 + 2 * 3 AS x`)
	ret := doc.Statement.(*ast.QueryStatement).Query.(*ast.Return)
	bin, ok := ret.Items[0].Expr.(*ast.Binary)
	if !ok || bin.Op != ast.OpAdd {
		t.Fatalf("expected a top-level addition, got %+v", ret.Items[0].Expr)
	}
	rhs, ok := bin.Right.(*ast.Binary)
	if !ok || rhs.Op != ast.OpMul {
		t.Fatalf("expected multiplication to bind tighter, got %+v", bin.Right)
	}
}

func TestParsePowerIsRightAssociative(t *testing.T) {
	doc := mustParse(t, `RETURN 2 ^ 3 ^ 2 AS x`)
	ret := doc.Statement.(*ast.QueryStatement).Query.(*ast.Return)
	bin := ret.Items[0].Expr.(*ast.Binary)
	if bin.Op != ast.OpPow {
		t.Fatalf("expected OpPow, got %v", bin.Op)
	}
	if _, ok := bin.Right.(*ast.Binary); !ok {
		t.Fatalf("expected right-associative nesting, got %+v", bin.Right)
	}
	if _, ok := bin.Left.(*ast.Literal); !ok {
		t.Fatalf("expected left operand to be a plain literal, got %+v", bin.Left)
	}
}

func TestParseCaseExpression(t *testing.T) {
	doc := mustParse(t, `RETURN CASE WHEN a.age < 18 THEN "minor" WHEN a.age < 65 THEN "adult" ELSE "senior" END AS bucket`)
	ret := doc.Statement.(*ast.QueryStatement).Query.(*ast.Return)
	c, ok := ret.Items[0].Expr.(*ast.Case)
	if !ok {
		t.Fatalf("expected Case, got %T", ret.Items[0].Expr)
	}
	if c.Operand != nil {
		t.Fatal("expected a searched CASE with nil operand")
	}
	if len(c.Whens) != 2 || c.Else == nil {
		t.Fatalf("unexpected case shape: %+v", c)
	}
}

func TestParseCast(t *testing.T) {
	doc := mustParse(t, `RETURN CAST(a.age AS STRING) AS s`)
	ret := doc.Statement.(*ast.QueryStatement).Query.(*ast.Return)
	cast, ok := ret.Items[0].Expr.(*ast.Cast)
	if !ok {
		t.Fatalf("expected Cast, got %T", ret.Items[0].Expr)
	}
	if cast.Target.Kind != graphlite.TypeString {
		t.Fatalf("expected STRING target, got %v", cast.Target)
	}
}

func TestParseExistsSubquery(t *testing.T) {
	doc := mustParse(t, `MATCH (a) WHERE EXISTS(MATCH (a)-[:KNOWS]->(b)) RETURN a`)
	basic := doc.Statement.(*ast.QueryStatement).Query.(*ast.Basic)
	if _, ok := basic.Where.(*ast.ExistsSubquery); !ok {
		t.Fatalf("expected ExistsSubquery, got %T", basic.Where)
	}
}

func TestParseNotExistsSubquery(t *testing.T) {
	doc := mustParse(t, `MATCH (a) WHERE NOT EXISTS(MATCH (a)-[:KNOWS]->(b)) RETURN a`)
	basic := doc.Statement.(*ast.QueryStatement).Query.(*ast.Basic)
	if _, ok := basic.Where.(*ast.NotExistsSubquery); !ok {
		t.Fatalf("expected NotExistsSubquery, got %T", basic.Where)
	}
}

func TestParseQuantifiedComparison(t *testing.T) {
	doc := mustParse(t, `RETURN 5 > ALL [1, 2, 3] AS x`)
	ret := doc.Statement.(*ast.QueryStatement).Query.(*ast.Return)
	qc, ok := ret.Items[0].Expr.(*ast.QuantifiedComparison)
	if !ok {
		t.Fatalf("expected QuantifiedComparison, got %T", ret.Items[0].Expr)
	}
	if qc.Kind != ast.QuantAll || qc.Op != ast.OpGt {
		t.Fatalf("unexpected quantified comparison: %+v", qc)
	}
}

func TestParseIsNullPredicate(t *testing.T) {
	doc := mustParse(t, `MATCH (a) WHERE a.age IS NOT NULL RETURN a`)
	basic := doc.Statement.(*ast.QueryStatement).Query.(*ast.Basic)
	pred, ok := basic.Where.(*ast.IsPredicate)
	if !ok || pred.Kind != ast.IsNotNull {
		t.Fatalf("expected IS NOT NULL, got %+v", basic.Where)
	}
}

func TestParseAggregateFunctionCall(t *testing.T) {
	doc := mustParse(t, `MATCH (a) RETURN COUNT(DISTINCT a.name) AS n, COUNT(*) AS total`)
	basic := doc.Statement.(*ast.QueryStatement).Query.(*ast.Basic)
	first := basic.Return[0].Expr.(*ast.FunctionCall)
	if first.Name != "COUNT" || first.Qualifier != ast.QualifierDistinct {
		t.Fatalf("unexpected call: %+v", first)
	}
	second := basic.Return[1].Expr.(*ast.FunctionCall)
	if !second.Star {
		t.Fatalf("expected COUNT(*) with Star set, got %+v", second)
	}
}

func TestParseVectorLiteral(t *testing.T) {
	doc := mustParse(t, `RETURN [1.0, 2.5, -3.0] AS v`)
	ret := doc.Statement.(*ast.QueryStatement).Query.(*ast.Return)
	lit, ok := ret.Items[0].Expr.(*ast.Literal)
	if !ok || lit.Kind != ast.LitVector || len(lit.Elems) != 3 {
		t.Fatalf("expected a 3-element vector literal, got %+v", ret.Items[0].Expr)
	}
}

func TestParseFirstErrorStopsParsing(t *testing.T) {
	_, err := Parse(`MATCH (a) RETURN`)
	if err == nil {
		t.Fatal("expected a parse error for a RETURN with no items")
	}
	pe, ok := err.(*ParseError)
	if !ok {
		t.Fatalf("expected *ParseError, got %T", err)
	}
	if len(pe.Expected) == 0 {
		t.Fatal("expected a non-empty expected-token set")
	}
}

package logical

import (
	"testing"

	"github.com/mwatts/graphlite/ast"
	"github.com/mwatts/graphlite/parser"
)

func mustPlan(t *testing.T, src string) *Plan {
	t.Helper()
	doc, err := parser.Parse(src)
	if err != nil {
		t.Fatalf("Parse(%q) error = %v", src, err)
	}
	qs, ok := doc.Statement.(*ast.QueryStatement)
	if !ok {
		t.Fatalf("expected a QueryStatement, got %T", doc.Statement)
	}
	plan, err := Plan(qs.Query)
	if err != nil {
		t.Fatalf("Plan error = %v", err)
	}
	return plan
}

func TestTranslateSinglePatternChain(t *testing.T) {
	plan := mustPlan(t, `MATCH (a:Person)-[r:KNOWS]->(b:Person) RETURN a, b`)
	proj, ok := plan.Root.(*Project)
	if !ok {
		t.Fatalf("expected root Project, got %T", plan.Root)
	}
	expand, ok := proj.Input.(*Expand)
	if !ok {
		t.Fatalf("expected Expand under Project, got %T", proj.Input)
	}
	if _, ok := expand.Input.(*NodeScan); !ok {
		t.Fatalf("expected NodeScan under Expand, got %T", expand.Input)
	}
	if plan.Variables["a"].EntityType != EntityNode || plan.Variables["r"].EntityType != EntityEdge {
		t.Fatalf("unexpected variable info: %+v", plan.Variables)
	}
}

func TestTranslateCommaSeparatedPatternsShareVariable(t *testing.T) {
	plan := mustPlan(t, `MATCH (a)-[:KNOWS]->(b), (b)-[:WORKS_AT]->(c) RETURN a, c`)
	proj := plan.Root.(*Project)
	// the shared variable b leads the second pattern, so it chains via Expand,
	// not a Join
	if _, ok := proj.Input.(*Expand); !ok {
		t.Fatalf("expected chained Expand for shared-variable patterns, got %T", proj.Input)
	}
}

func TestTranslateDisjointPatternsCrossJoin(t *testing.T) {
	plan := mustPlan(t, `MATCH (a), (z) RETURN a, z`)
	proj := plan.Root.(*Project)
	join, ok := proj.Input.(*Join)
	if !ok || join.Kind != JoinCross {
		t.Fatalf("expected a Cross join for disjoint patterns, got %+v", proj.Input)
	}
}

func TestTranslateWhereBecomesFilter(t *testing.T) {
	plan := mustPlan(t, `MATCH (a:Person) WHERE a.age > 30 RETURN a`)
	proj := plan.Root.(*Project)
	if _, ok := proj.Input.(*Filter); !ok {
		t.Fatalf("expected Filter under Project, got %T", proj.Input)
	}
}

func TestTranslateAggregateWithoutGroupByUsesImplicitKeys(t *testing.T) {
	plan := mustPlan(t, `MATCH (a:Person) RETURN a.dept, COUNT(a)`)
	proj := plan.Root.(*Project)
	agg, ok := proj.Input.(*Aggregate)
	if !ok {
		t.Fatalf("expected Aggregate under Project, got %T", proj.Input)
	}
	if len(agg.GroupBy) != 1 {
		t.Fatalf("expected 1 implicit grouping key, got %d", len(agg.GroupBy))
	}
}

func TestTranslateHavingWrapsAggregate(t *testing.T) {
	plan := mustPlan(t, `MATCH (a:Person) RETURN a.dept, COUNT(a) AS c HAVING COUNT(a) > 1`)
	proj := plan.Root.(*Project)
	having, ok := proj.Input.(*Having)
	if !ok {
		t.Fatalf("expected Having under Project, got %T", proj.Input)
	}
	if _, ok := having.Input.(*Aggregate); !ok {
		t.Fatalf("expected Aggregate under Having, got %T", having.Input)
	}
}

func TestTranslateNoMatchStartsFromSingleRow(t *testing.T) {
	plan := mustPlan(t, `RETURN 1 AS x`)
	proj := plan.Root.(*Project)
	if _, ok := proj.Input.(*SingleRow); !ok {
		t.Fatalf("expected SingleRow under Project, got %T", proj.Input)
	}
}

func TestTranslateSetOperation(t *testing.T) {
	plan := mustPlan(t, `MATCH (a) RETURN a UNION MATCH (b) RETURN b`)
	if _, ok := plan.Root.(*SetOp); !ok {
		t.Fatalf("expected root SetOp, got %T", plan.Root)
	}
}

func TestTranslateQuantifiedEdgeBecomesPathTraversal(t *testing.T) {
	plan := mustPlan(t, `MATCH (a)-[:LINK{1,3}]->(b) RETURN a, b`)
	proj := plan.Root.(*Project)
	if _, ok := proj.Input.(*PathTraversal); !ok {
		t.Fatalf("expected PathTraversal for a quantified edge, got %T", proj.Input)
	}
}

func TestPredicatePushdownThroughSetOp(t *testing.T) {
	root := &Filter{
		Input: &SetOp{
			Kind: SetOpUnion,
			Left: &NodeScan{Variable: "a"}, Right: &NodeScan{Variable: "b"},
		},
		Predicate: &ast.Binary{},
	}
	rewritten := pushdownPredicates(root)
	setOp, ok := rewritten.(*SetOp)
	if !ok {
		t.Fatalf("expected predicate pushed down to a SetOp of Filters, got %T", rewritten)
	}
	if _, ok := setOp.Left.(*Filter); !ok {
		t.Fatalf("expected Filter on SetOp.Left, got %T", setOp.Left)
	}
	if _, ok := setOp.Right.(*Filter); !ok {
		t.Fatalf("expected Filter on SetOp.Right, got %T", setOp.Right)
	}
}

package physical

import (
	"testing"

	"github.com/mwatts/graphlite/ast"
	"github.com/mwatts/graphlite/parser"
	"github.com/mwatts/graphlite/planner/logical"
)

func mustLogicalPlan(t *testing.T, src string) *logical.Plan {
	t.Helper()
	doc, err := parser.Parse(src)
	if err != nil {
		t.Fatalf("Parse(%q) error = %v", src, err)
	}
	qs := doc.Statement.(*ast.QueryStatement)
	plan, err := logical.Plan(qs.Query)
	if err != nil {
		t.Fatalf("logical.Plan error = %v", err)
	}
	return plan
}

func TestNodeScanWithLabelBecomesIndexScan(t *testing.T) {
	lp := mustLogicalPlan(t, `MATCH (a:Person) RETURN a`)
	pp := Plan(lp.Root)
	proj := pp.Root
	scan := leaf(proj)
	if scan.Op != NodeIndexScan {
		t.Fatalf("expected NodeIndexScan for a labeled scan, got %v", scan.Op)
	}
	if scan.EstimatedRows != baseNodeScanRows/10 {
		t.Fatalf("expected rows reduced 10x, got %v", scan.EstimatedRows)
	}
}

func TestNodeScanWithoutLabelBecomesSeqScan(t *testing.T) {
	lp := mustLogicalPlan(t, `MATCH (a) RETURN a`)
	pp := Plan(lp.Root)
	scan := leaf(pp.Root)
	if scan.Op != NodeSeqScan {
		t.Fatalf("expected NodeSeqScan for an unlabeled scan, got %v", scan.Op)
	}
}

func TestAvoidIndexScanDegradesToSeqScan(t *testing.T) {
	lp := mustLogicalPlan(t, `MATCH (a:Person) RETURN a`)
	pp := Plan(lp.Root)
	AvoidIndexScan(pp.Root)
	scan := leaf(pp.Root)
	if scan.Op != NodeSeqScan {
		t.Fatalf("expected avoid_index_scan to degrade to NodeSeqScan, got %v", scan.Op)
	}
	if scan.EstimatedCost != scan.EstimatedRows*0.1 {
		t.Fatalf("expected rebased cost rows*0.1, got %v", scan.EstimatedCost)
	}
}

func TestAggregateOperatorSelectionBySize(t *testing.T) {
	lp := mustLogicalPlan(t, `MATCH (a:Person) RETURN a.dept, COUNT(a)`)
	pp := Plan(lp.Root)
	agg := findOp(pp.Root, func(n *Node) bool { return n.Op == SortAggregate || n.Op == HashAggregate })
	if agg == nil {
		t.Fatal("expected an Aggregate operator in the plan")
	}
	if agg.Op != SortAggregate {
		t.Fatalf("expected SortAggregate for a small input, got %v", agg.Op)
	}
}

func TestPathTraversalCostScalesWithStrictness(t *testing.T) {
	walk := &logical.PathTraversal{Input: &logical.NodeScan{Variable: "a"}, Min: 1, Max: 3, PathType: ast.PathWalk}
	acyclic := &logical.PathTraversal{Input: &logical.NodeScan{Variable: "a"}, Min: 1, Max: 3, PathType: ast.PathAcyclic}

	walkNode := translate(walk)
	acyclicNode := translate(acyclic)
	if acyclicNode.EstimatedCost <= walkNode.EstimatedCost {
		t.Fatalf("expected ACYCLIC cost (%v) to exceed WALK cost (%v)", acyclicNode.EstimatedCost, walkNode.EstimatedCost)
	}
}

func TestJoinSelectionNestedLoopForSmallInputs(t *testing.T) {
	join := &logical.Join{Kind: logical.JoinInner, Left: &logical.NodeScan{Variable: "a", Labels: []string{"Person"}}, Right: &logical.NodeScan{Variable: "b", Labels: []string{"Person"}}}
	node := translateJoin(join)
	if node.Op != NestedLoopJoin {
		t.Fatalf("expected NestedLoopJoin for two small labeled scans, got %v", node.Op)
	}
}

func leaf(n *Node) *Node {
	for len(n.Children) > 0 {
		n = n.Children[0]
	}
	return n
}

func findOp(n *Node, pred func(*Node) bool) *Node {
	if pred(n) {
		return n
	}
	for _, c := range n.Children {
		if found := findOp(c, pred); found != nil {
			return found
		}
	}
	return nil
}

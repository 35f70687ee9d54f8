package physical

import (
	"math"

	"github.com/mwatts/graphlite/ast"
	"github.com/mwatts/graphlite/planner/logical"
)

const (
	baseNodeScanRows  = 1000.0
	hashJoinThreshold = 10000.0
	hashExpandRows    = 10000.0
	externalSortRows  = 100000.0
	expandFanout      = 5.0
	sortCostFactor    = 1.0
)

// Plan chooses physical operators for root and estimates every node's rows
// and cost per §4.5's operator-selection rules.
func Plan(root logical.Node) *Plan {
	return &Plan{Root: translate(root)}
}

func translate(n logical.Node) *Node {
	switch node := n.(type) {
	case *logical.NodeScan:
		return translateNodeScan(node)
	case *logical.EdgeScan:
		return translateEdgeScan(node)
	case *logical.Expand:
		return translateExpand(node)
	case *logical.PathTraversal:
		return translatePathTraversal(node)
	case *logical.Filter:
		input := translate(node.Input)
		return &Node{Op: FilterOp, Logical: n, Children: []*Node{input}, EstimatedRows: input.EstimatedRows, EstimatedCost: input.EstimatedCost + input.EstimatedRows*0.01}
	case *logical.Project:
		input := translate(node.Input)
		rows := input.EstimatedRows
		if node.Distinct {
			rows *= 0.5
		}
		return &Node{Op: ProjectOp, Logical: n, Children: []*Node{input}, EstimatedRows: rows, EstimatedCost: input.EstimatedCost + input.EstimatedRows*0.01}
	case *logical.Aggregate:
		input := translate(node.Input)
		op := SortAggregate
		if input.EstimatedRows > hashExpandRows {
			op = HashAggregate
		}
		rows := 1.0
		if len(node.GroupBy) > 0 {
			rows = math.Max(1, input.EstimatedRows*0.1)
		}
		return &Node{Op: op, Logical: n, Children: []*Node{input}, EstimatedRows: rows, EstimatedCost: input.EstimatedCost + input.EstimatedRows*1.5}
	case *logical.Having:
		input := translate(node.Input)
		return &Node{Op: HavingOp, Logical: n, Children: []*Node{input}, EstimatedRows: input.EstimatedRows * 0.5, EstimatedCost: input.EstimatedCost + input.EstimatedRows*0.01}
	case *logical.Distinct:
		input := translate(node.Input)
		return &Node{Op: DistinctOp, Logical: n, Children: []*Node{input}, EstimatedRows: input.EstimatedRows * 0.7, EstimatedCost: input.EstimatedCost + input.EstimatedRows}
	case *logical.Sort:
		input := translate(node.Input)
		op := InMemorySort
		if input.EstimatedRows > externalSortRows {
			op = ExternalSort
		}
		n2 := math.Max(1, input.EstimatedRows)
		cost := input.EstimatedCost + n2*math.Log2(n2)*sortCostFactor
		return &Node{Op: op, Logical: n, Children: []*Node{input}, EstimatedRows: input.EstimatedRows, EstimatedCost: cost}
	case *logical.Limit:
		input := translate(node.Input)
		rows := input.EstimatedRows
		if c, ok := node.Count.(*ast.Literal); ok && c.Kind == ast.LitInt && float64(c.Int) < rows {
			rows = float64(c.Int)
		}
		return &Node{Op: LimitOp, Logical: n, Children: []*Node{input}, EstimatedRows: rows, EstimatedCost: input.EstimatedCost}
	case *logical.Join:
		return translateJoin(node)
	case *logical.SetOp:
		left := translate(node.Left)
		right := translate(node.Right)
		op := UnionOp
		if node.Kind == logical.SetOpIntersect {
			op = IntersectOp
		} else if node.Kind == logical.SetOpExcept {
			op = ExceptOp
		}
		rows := left.EstimatedRows + right.EstimatedRows
		return &Node{Op: op, Logical: n, Children: []*Node{left, right}, EstimatedRows: rows, EstimatedCost: left.EstimatedCost + right.EstimatedCost}
	case *logical.SingleRow:
		return &Node{Op: SingleRowOp, Logical: n, EstimatedRows: 1, EstimatedCost: 0.01}
	case *logical.Mutation:
		var children []*Node
		rows := 1.0
		cost := 1.0
		if node.Input != nil {
			input := translate(node.Input)
			children = []*Node{input}
			rows = input.EstimatedRows
			cost = input.EstimatedCost
		}
		return &Node{Op: MutationOp, Logical: n, Children: children, EstimatedRows: rows, EstimatedCost: cost + rows}
	case *logical.ExistsSubquery:
		return translateSubquery(ExistsSubqueryOp, n, node.Outer, node.Query)
	case *logical.NotExistsSubquery:
		return translateSubquery(NotExistsSubqueryOp, n, node.Outer, node.Query)
	case *logical.InSubquery:
		return translateSubquery(InSubqueryOp, n, node.Outer, node.Query)
	case *logical.NotInSubquery:
		return translateSubquery(NotInSubqueryOp, n, node.Outer, node.Query)
	case *logical.ScalarSubquery:
		return translateSubquery(ScalarSubqueryOp, n, node.Outer, node.Query)
	case *logical.WithQueryNode:
		input := translate(node.Input)
		return &Node{Op: WithQueryOp, Logical: n, Children: []*Node{input}, EstimatedRows: input.EstimatedRows, EstimatedCost: input.EstimatedCost + input.EstimatedRows}
	case *logical.Unwind:
		input := translate(node.Input)
		rows := input.EstimatedRows * 3 // unwind fans rows out; 3 is a rough default list-length guess
		return &Node{Op: UnwindOp, Logical: n, Children: []*Node{input}, EstimatedRows: rows, EstimatedCost: input.EstimatedCost + rows*0.01}
	case *logical.LetBinding:
		input := translate(node.Input)
		return &Node{Op: LetOp, Logical: n, Children: []*Node{input}, EstimatedRows: input.EstimatedRows, EstimatedCost: input.EstimatedCost}
	case *logical.ForEach:
		input := translate(node.Input)
		rows := input.EstimatedRows * 3
		return &Node{Op: ForEachOp, Logical: n, Children: []*Node{input}, EstimatedRows: rows, EstimatedCost: input.EstimatedCost + rows*0.01}
	case *logical.GenericFunction:
		var children []*Node
		rows := 10.0
		cost := 1.0
		if node.Input != nil {
			input := translate(node.Input)
			children = []*Node{input}
			rows = input.EstimatedRows
			cost = input.EstimatedCost
		}
		return &Node{Op: GenericFunctionOp, Logical: n, Children: children, EstimatedRows: rows, EstimatedCost: cost + rows}
	}
	return &Node{Op: SingleRowOp, Logical: n, EstimatedRows: 1, EstimatedCost: 0.01}
}

func translateNodeScan(node *logical.NodeScan) *Node {
	rows := baseNodeScanRows
	op := NodeSeqScan
	cost := rows
	if len(node.Labels) > 0 {
		op = NodeIndexScan
		rows /= 10
		cost = rows * 2
	}
	return &Node{Op: op, Logical: node, EstimatedRows: rows, EstimatedCost: cost}
}

func translateEdgeScan(node *logical.EdgeScan) *Node {
	rows := baseNodeScanRows
	op := EdgeSeqScan
	cost := rows
	if len(node.Labels) > 0 {
		op = EdgeIndexScan
		rows /= 10
		cost = rows * 2
	}
	return &Node{Op: op, Logical: node, EstimatedRows: rows, EstimatedCost: cost}
}

func translateExpand(node *logical.Expand) *Node {
	input := translate(node.Input)
	op := IndexedExpand
	if input.EstimatedRows > hashExpandRows {
		op = HashExpand
	}
	rows := input.EstimatedRows * expandFanout
	return &Node{Op: op, Logical: node, Children: []*Node{input}, EstimatedRows: rows, EstimatedCost: input.EstimatedCost + rows}
}

func translatePathTraversal(node *logical.PathTraversal) *Node {
	input := translate(node.Input)
	strictness := map[ast.PathType]float64{
		ast.PathWalk: 1, ast.PathTrail: 2, ast.PathSimple: 3, ast.PathAcyclic: 4,
	}[node.PathType]
	if strictness == 0 {
		strictness = 1
	}
	hops := float64(node.Max)
	if node.Max < 0 {
		hops = 5 // unbounded traversal: a conservative default depth estimate
	}
	rows := input.EstimatedRows * expandFanout * hops
	cost := (input.EstimatedCost + rows) * strictness
	return &Node{Op: PathTraversalOp, Logical: node, Children: []*Node{input}, EstimatedRows: rows, EstimatedCost: cost}
}

func translateJoin(node *logical.Join) *Node {
	left := translate(node.Left)
	right := translate(node.Right)

	var op Operator
	switch {
	case left.EstimatedRows > hashJoinThreshold && right.EstimatedRows > hashJoinThreshold:
		op = SortMergeJoin
	case left.EstimatedRows > 1000 || right.EstimatedRows > 1000:
		op = HashJoinOp
	default:
		op = NestedLoopJoin
	}
	if node.Kind == logical.JoinCross {
		op = NestedLoopJoin
	}

	rows := left.EstimatedRows * right.EstimatedRows
	if node.Kind != logical.JoinCross {
		smaller := math.Min(left.EstimatedRows, right.EstimatedRows)
		rows = math.Max(left.EstimatedRows, right.EstimatedRows) * math.Max(1, smaller*0.1)
	}
	cost := left.EstimatedCost + right.EstimatedCost + rows
	return &Node{Op: op, Logical: node, Children: []*Node{left, right}, EstimatedRows: rows, EstimatedCost: cost}
}

func translateSubquery(op Operator, logicalNode logical.Node, outer, inner logical.Node) *Node {
	var children []*Node
	rows := 1.0
	cost := 1.0
	if outer != nil {
		o := translate(outer)
		children = append(children, o)
		rows = o.EstimatedRows
		cost = o.EstimatedCost
	}
	in := translate(inner)
	children = append(children, in)
	return &Node{
		Op: op, Logical: logicalNode, Children: children,
		EstimatedRows: rows, EstimatedCost: cost + in.EstimatedCost,
		Optimized: op == ExistsSubqueryOp || op == NotExistsSubqueryOp,
	}
}

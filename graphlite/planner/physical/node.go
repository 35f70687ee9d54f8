// Package physical implements GraphLite's physical planner (§4.5): given a
// logical.Plan, it chooses concrete operators, estimates row counts and
// costs, and optionally degrades index-based operators via the
// avoid_index_scan post-pass.
package physical

import "github.com/mwatts/graphlite/planner/logical"

// Operator is the physical algebra's operator choice. Unlike the logical
// package (one Go type per node kind, mirroring the ast package), the
// physical tree carries mostly cost/cardinality bookkeeping on top of the
// logical node it was chosen for, so one Node type with an Operator tag and
// a reference back to its logical.Node holds everything the executor and
// the avoid_index_scan pass need, without a parallel struct per operator.
type Operator uint8

const (
	NodeSeqScan Operator = iota
	NodeIndexScan
	EdgeSeqScan
	EdgeIndexScan
	HashExpand
	IndexedExpand
	PathTraversalOp
	FilterOp
	ProjectOp
	HashAggregate
	SortAggregate
	HavingOp
	DistinctOp
	InMemorySort
	ExternalSort
	LimitOp
	NestedLoopJoin
	HashJoinOp
	SortMergeJoin
	GraphIndexScan // degrades to NodeSeqScan under avoid_index_scan
	IndexJoin      // degrades to NestedLoopJoin under avoid_index_scan
	UnionOp
	IntersectOp
	ExceptOp
	SingleRowOp
	MutationOp
	ExistsSubqueryOp
	NotExistsSubqueryOp
	InSubqueryOp
	NotInSubqueryOp
	ScalarSubqueryOp
	WithQueryOp
	UnwindOp
	LetOp
	ForEachOp
	GenericFunctionOp
)

func (o Operator) String() string {
	names := [...]string{
		"NodeSeqScan", "NodeIndexScan", "EdgeSeqScan", "EdgeIndexScan",
		"HashExpand", "IndexedExpand", "PathTraversal", "Filter", "Project",
		"HashAggregate", "SortAggregate", "Having", "Distinct", "InMemorySort",
		"ExternalSort", "Limit", "NestedLoopJoin", "HashJoin", "SortMergeJoin",
		"GraphIndexScan", "IndexJoin", "Union", "Intersect", "Except",
		"SingleRow", "Mutation", "ExistsSubquery", "NotExistsSubquery",
		"InSubquery", "NotInSubquery", "ScalarSubquery", "WithQuery", "Unwind",
		"Let", "ForEach", "GenericFunction",
	}
	if int(o) < len(names) {
		return names[o]
	}
	return "Unknown"
}

// Node is one physical-plan node: the chosen operator, its cost estimates,
// a back-reference to the logical node it was derived from (for attributes
// the executor needs — labels, direction, predicates, ...), and children.
type Node struct {
	Op            Operator
	EstimatedRows float64
	EstimatedCost float64
	Logical       logical.Node
	Children      []*Node

	// Optimized marks a subquery node eligible for short-circuit evaluation
	// (§4.5): EXISTS/NOT EXISTS may stop at the first matching row.
	Optimized bool
}

// Plan is the physical planner's output: a Node tree plus its root summary
// (the root's own EstimatedRows/EstimatedCost double as that summary).
type Plan struct {
	Root *Node
}

// Package logical implements GraphLite's logical planner (§4.4): it turns a
// validated ast.Query into a tree of LogicalNode, applying the
// pattern-connectivity optimizer and the RETURN/GROUP BY/HAVING translation
// rules along the way.
package logical

import "github.com/mwatts/graphlite/ast"

// Node is the logical algebra's tagged union. Every variant is a distinct
// Go type implementing Node, mirroring how the ast package models its own
// tagged unions (Statement, Query, Expression).
type Node interface {
	logicalNode()
}

// EntityType classifies a variable bound by a pattern.
type EntityType uint8

const (
	EntityNode EntityType = iota
	EntityEdge
)

// VariableInfo is what the planner knows statically about a bound variable:
// its entity type, the labels a pattern constrained it to, and the
// properties an Expand/Filter referenced (informational, consumed by the
// physical planner's index-scan heuristics).
type VariableInfo struct {
	EntityType         EntityType
	Labels             []string
	RequiredProperties []string
}

// NodeScan matches every node carrying Labels (or every node, if Labels is
// empty) into Variable.
type NodeScan struct {
	Variable string
	Labels   []string
}

func (*NodeScan) logicalNode() {}

// EdgeScan matches every edge carrying Labels into Variable, independent of
// any node traversal (used by standalone edge-variable patterns).
type EdgeScan struct {
	Variable string
	Labels   []string
}

func (*EdgeScan) logicalNode() {}

// Expand walks from the rows bound by Input across an edge into To,
// preserving direction; it is MATCH's one-hop step.
type Expand struct {
	Input        Node
	FromVariable string
	EdgeVariable string
	EdgeLabels   []string
	ToVariable   string
	ToLabels     []string
	Direction    ast.Direction
	Properties   *ast.PropertyMap
}

func (*Expand) logicalNode() {}

// PathTraversal is a quantified edge ({n}/{m,n}/*/+/?) expanded as a single
// variable-length hop rather than a fixed chain of Expands.
type PathTraversal struct {
	Input        Node
	FromVariable string
	EdgeVariable string
	EdgeLabels   []string
	ToVariable   string
	ToLabels     []string
	Direction    ast.Direction
	Min, Max     int // Max == -1 means unbounded
	PathType     ast.PathType
}

func (*PathTraversal) logicalNode() {}

// Filter keeps only the rows of Input for which Predicate evaluates true.
type Filter struct {
	Input     Node
	Predicate ast.Expression
}

func (*Filter) logicalNode() {}

// Project evaluates Items against each row of Input, producing the
// RETURN-shaped output row.
type Project struct {
	Input    Node
	Items    []ast.ReturnItem
	Distinct bool
}

func (*Project) logicalNode() {}

// Aggregate groups Input's rows by GroupBy and evaluates Aggregates per
// group, per §4.4's RETURN/GROUP BY translation.
type Aggregate struct {
	Input      Node
	GroupBy    []ast.Expression
	Aggregates []ast.ReturnItem
}

func (*Aggregate) logicalNode() {}

// Having filters Aggregate's groups by Predicate, alias-resolved against the
// aggregate's own output names.
type Having struct {
	Input     Node
	Predicate ast.Expression
}

func (*Having) logicalNode() {}

// Distinct deduplicates Input's rows by their full projected tuple.
type Distinct struct {
	Input Node
}

func (*Distinct) logicalNode() {}

// Sort orders Input's rows by Items.
type Sort struct {
	Input Node
	Items []ast.OrderItem
}

func (*Sort) logicalNode() {}

// Limit caps Input's rows to Count, optionally skipping Offset first.
type Limit struct {
	Input  Node
	Count  ast.Expression
	Offset ast.Expression
}

func (*Limit) logicalNode() {}

// JoinKind is one of the supported join algebra types (§4.4).
type JoinKind uint8

const (
	JoinInner JoinKind = iota
	JoinLeftOuter
	JoinRightOuter
	JoinFullOuter
	JoinCross
	JoinLeftSemi
	JoinLeftAnti
)

// Join combines Left and Right; Condition is nil for a natural join on
// same-named variables or for Cross (no condition at all).
type Join struct {
	Kind      JoinKind
	Condition ast.Expression
	Left      Node
	Right     Node
}

func (*Join) logicalNode() {}

// SetOpKind is Union/Intersect/Except.
type SetOpKind uint8

const (
	SetOpUnion SetOpKind = iota
	SetOpIntersect
	SetOpExcept
)

// SetOp combines Left and Right with set semantics; All mirrors UNION ALL
// vs UNION (dedup).
type SetOp struct {
	Kind  SetOpKind
	All   bool
	Left  Node
	Right Node
}

func (*SetOp) logicalNode() {}

// SingleRow is the synthetic one-row input a standalone RETURN (no MATCH)
// projects over.
type SingleRow struct{}

func (*SingleRow) logicalNode() {}

// MutationKind is Insert/Update/Delete.
type MutationKind uint8

const (
	MutationInsert MutationKind = iota
	MutationUpdate
	MutationDelete
)

// Mutation wraps a DataStatement's translated effect: Input supplies the
// surviving rows (nil for a bare INSERT with no preceding MATCH), the
// executor applies Statement per row.
type Mutation struct {
	Kind      MutationKind
	Input     Node
	Statement *ast.DataStatement
}

func (*Mutation) logicalNode() {}

// ExistsSubquery/NotExistsSubquery/InSubquery/NotInSubquery/ScalarSubquery
// wrap a nested query for correlated-subquery evaluation in expression
// position; Outer is the enclosing plan they correlate against (nil at the
// outermost query).
type ExistsSubquery struct {
	Outer Node
	Query Node
}

func (*ExistsSubquery) logicalNode() {}

type NotExistsSubquery struct {
	Outer Node
	Query Node
}

func (*NotExistsSubquery) logicalNode() {}

type InSubquery struct {
	Outer Node
	Expr  ast.Expression
	Query Node
}

func (*InSubquery) logicalNode() {}

type NotInSubquery struct {
	Outer Node
	Expr  ast.Expression
	Query Node
}

func (*NotInSubquery) logicalNode() {}

type ScalarSubquery struct {
	Outer Node
	Query Node
}

func (*ScalarSubquery) logicalNode() {}

// WithQueryNode is an opaque container the executor's WITH-clause processor
// handles specially rather than through the generic algebra (§4.6).
type WithQueryNode struct {
	Segments []ast.QuerySegment
	Final    *ast.Basic
	Input    Node
}

func (*WithQueryNode) logicalNode() {}

// Unwind expands Expr into one row per element, binding each to Variable.
type Unwind struct {
	Input    Node
	Expr     ast.Expression
	Variable string
}

func (*Unwind) logicalNode() {}

// LetBinding evaluates Value once and binds it to Variable ahead of the
// rest of the pipeline (GQL LET; not part of §4.4's enumerated algebra, but
// the AST supports it and it fits the same shape as Unwind/ForEach).
type LetBinding struct {
	Input    Node
	Variable string
	Value    ast.Expression
}

func (*LetBinding) logicalNode() {}

// ForEach iterates Collection, binding each element to Variable before the
// rest of the pipeline runs (GQL FOR, distinct from Unwind in binding a
// whole record per iteration rather than flattening a list column).
type ForEach struct {
	Input      Node
	Variable   string
	Collection ast.Expression
}

func (*ForEach) logicalNode() {}

// GenericFunction wraps a CALL proc(args) [YIELD cols] invocation that does
// not otherwise fit the algebra (procedure calls are opaque to the planner,
// §4.3/§6).
type GenericFunction struct {
	Input     Node
	Procedure string
	Args      []ast.Expression
	Yield     []string
	Where     ast.Expression
}

func (*GenericFunction) logicalNode() {}

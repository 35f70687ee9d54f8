package ast

// Query is the tagged union of the query forms in §3: Basic, SetOperation,
// Limited, WithQuery, MutationPipeline, Let, For, Filter, Return, Unwind.
type Query interface {
	queryNode()
}

// OrderDirection is ASC (default) or DESC.
type OrderDirection uint8

const (
	OrderAsc OrderDirection = iota
	OrderDesc
)

// NullsOrder controls NULLS FIRST/LAST; NullsDefault defers to the
// direction's natural placement (nulls last ascending, first descending).
type NullsOrder uint8

const (
	NullsDefault NullsOrder = iota
	NullsFirst
	NullsLast
)

type OrderItem struct {
	Expr      Expression
	Direction OrderDirection
	Nulls     NullsOrder
}

// ReturnItem is one projected expression with an optional alias.
type ReturnItem struct {
	Expr  Expression
	Alias string
}

// Basic is MATCH [WHERE] RETURN [GROUP BY] [HAVING] [ORDER BY] [LIMIT].
type Basic struct {
	Match    *MatchClause
	Where    Expression
	Return   []ReturnItem
	Distinct bool
	GroupBy  []Expression
	Having   Expression
	OrderBy  []OrderItem
	Limit    Expression
	Offset   Expression
}

func (*Basic) queryNode() {}

// SetOperationKind is UNION/INTERSECT/EXCEPT, with an ALL flag carried
// alongside (UNION vs UNION ALL etc).
type SetOperationKind uint8

const (
	SetUnion SetOperationKind = iota
	SetIntersect
	SetExcept
)

// SetOperation associates left: (((A op B) op C) op D).
type SetOperation struct {
	Kind  SetOperationKind
	All   bool
	Left  Query
	Right Query
}

func (*SetOperation) queryNode() {}

// Limited wraps a predecessor query with a trailing ORDER BY/LIMIT that
// applies to its result, not just its final branch (§4.2).
type Limited struct {
	Input   Query
	OrderBy []OrderItem
	Limit   Expression
	Offset  Expression
}

func (*Limited) queryNode() {}

// QuerySegment is one MATCH [WHERE] WITH [WHERE] [UNWIND [WHERE]] stage of a
// WITH pipeline.
type QuerySegment struct {
	Match       *MatchClause
	Where       Expression
	With        *WithClause
	Unwind      *UnwindClause
	UnwindWhere Expression
}

// WithQuery is a pipeline of QuerySegments terminated by a final RETURN.
type WithQuery struct {
	Segments []QuerySegment
	Final    *Basic // the terminating RETURN, reusing Basic's projection/order/limit shape
}

func (*WithQuery) queryNode() {}

// WithClause is one WITH stage: items, optional WHERE/ORDER BY/LIMIT
// evaluated over the post-WITH binding table.
type WithClause struct {
	Items    []ReturnItem
	Distinct bool
	Where    Expression
	OrderBy  []OrderItem
	Limit    Expression
	Offset   Expression
}

// UnwindClause expands a list-valued expression into one row per element.
type UnwindClause struct {
	Expr     Expression
	Variable string
}

// Unwind as a standalone query form (UNWIND ... RETURN ...).
type Unwind struct {
	Clause *UnwindClause
	Next   Query
}

func (*Unwind) queryNode() {}

// Let binds a variable to an expression ahead of the rest of the pipeline.
type Let struct {
	Variable string
	Value    Expression
	Next     Query
}

func (*Let) queryNode() {}

// For iterates a collection, binding each element before the rest of the
// pipeline runs (GQL's FOR, distinct from UNWIND in binding a record).
type For struct {
	Variable   string
	Collection Expression
	Next       Query
}

func (*For) queryNode() {}

// Filter is a standalone predicate stage (FILTER WHERE ...).
type Filter struct {
	Predicate Expression
	Next      Query
}

func (*Filter) queryNode() {}

// Return is a standalone RETURN with no preceding MATCH (starts from a
// single synthetic row).
type Return struct {
	Items    []ReturnItem
	Distinct bool
	OrderBy  []OrderItem
	Limit    Expression
	Offset   Expression
}

func (*Return) queryNode() {}

// MutationPipeline wraps a DataStatement so it can appear where a Query is
// expected (e.g. inside a WITH pipeline continuation).
type MutationPipeline struct {
	Statement *DataStatement
}

func (*MutationPipeline) queryNode() {}

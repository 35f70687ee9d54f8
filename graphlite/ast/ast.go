// Package ast defines the typed syntax tree produced by the parser and
// consumed by the validator and logical planner.
//
// File organization:
//   - ast.go: Document, Statement variants and the top-level dispatch
//   - expr.go: Expression variants and operators
//   - pattern.go: path/node/edge pattern elements and quantifiers
//   - query.go: Query variants, QuerySegment, WITH/ORDER/GROUP clauses
//   - catalog.go: DDL, session, transaction, index and procedure statements
//   - format.go: a debug formatter
package ast

// Document wraps exactly one top-level Statement (§3).
type Document struct {
	Statement Statement
}

// Statement is the tagged union of everything that can appear at the top
// level of a GQL program.
type Statement interface {
	statementNode()
}

// QueryStatement wraps a Query as a standalone statement.
type QueryStatement struct{ Query Query }

func (*QueryStatement) statementNode() {}

// SelectStatement is the SELECT ... FROM graph-expression [MATCH ...] form.
type SelectStatement struct {
	Items     []SelectItem
	Distinct  bool
	GraphExpr Expression
	Match     *MatchClause
	Where     Expression
	OrderBy   []OrderItem
	Limit     Expression
	Offset    Expression
}

func (*SelectStatement) statementNode() {}

type SelectItem struct {
	Expr  Expression
	Alias string
}

// CallStatement is CALL proc(args) [YIELD cols] [WHERE pred].
type CallStatement struct {
	Procedure string
	Args      []Expression
	Yield     []string
	Where     Expression
}

func (*CallStatement) statementNode() {}

// DataStatement covers INSERT/SET/REMOVE/DELETE and their MATCH-prefixed
// forms (§4.2: a bare "MATCH ... DELETE ..." is a DataStatement, not a
// Query-with-mutation).
type DataStatement struct {
	Kind       DataStatementKind
	Match      []*PathPattern // preceding MATCH patterns, nil if none
	Where      Expression
	With       *WithClause
	InsertPath []*PathPattern // INSERT pattern(s)
	SetItems   []SetItem
	RemoveItems []RemoveItem
	DeleteVars []string
	Detach     bool
}

type DataStatementKind uint8

const (
	DataInsert DataStatementKind = iota
	DataSet
	DataRemove
	DataDelete
)

func (*DataStatement) statementNode() {}

// SetItem is one of: property assignment (var.prop = expr), whole-variable
// assignment (var = expr), or label assignment (var :Label).
type SetItem struct {
	Variable string
	Property string // "" for whole-variable or label assignment
	Label    string // "" unless this is a label assignment
	Value    Expression
}

// RemoveItem mirrors SetItem's three forms for REMOVE.
type RemoveItem struct {
	Variable string
	Property string
	Label    string
}

// SessionStatement covers SESSION SET/RESET/CLOSE.
type SessionStatement struct {
	Kind  SessionKind
	Key   string
	Value Expression
}

type SessionKind uint8

const (
	SessionSet SessionKind = iota
	SessionReset
	SessionClose
)

func (*SessionStatement) statementNode() {}

// TransactionStatement covers START TRANSACTION/COMMIT/ROLLBACK.
type TransactionStatement struct {
	Kind         TxnKind
	AccessMode   string // READ ONLY / READ WRITE, "" if unspecified
	IsolationLvl string // "", host-defined token otherwise
}

type TxnKind uint8

const (
	TxnStart TxnKind = iota
	TxnCommit
	TxnRollback
)

func (*TransactionStatement) statementNode() {}

// Declare/Let/Next/AtLocation/ProcedureBody are catalog/procedure forms; see
// catalog.go.

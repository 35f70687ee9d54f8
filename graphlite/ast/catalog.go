package ast

// CatalogObjectKind names the kind of object a DDL statement targets.
type CatalogObjectKind uint8

const (
	ObjSchema CatalogObjectKind = iota
	ObjGraph
	ObjGraphType
	ObjType
	ObjUser
	ObjRole
	ObjProcedure
)

// CatalogVerb is CREATE or DROP.
type CatalogVerb uint8

const (
	VerbCreate CatalogVerb = iota
	VerbDrop
)

// CatalogPath is a 1-2 segment path, either "name" or "/schema/name" (§4.3).
type CatalogPath struct {
	Segments []string
}

// CatalogStatement is the DDL family: CREATE/DROP SCHEMA/GRAPH/GRAPH
// TYPE/PROCEDURE/USER/ROLE.
type CatalogStatement struct {
	Verb       CatalogVerb
	Object     CatalogObjectKind
	Path       CatalogPath
	IfNotExist bool
	IfExists   bool

	// Procedure-only fields.
	ProcedureParams []ProcedureParam
	ProcedureBody   *ProcedureBody
}

func (*CatalogStatement) statementNode() {}

type ProcedureParam struct {
	Name string
	Type string
}

// ProcedureBody is the procedure's statement sequence, each run in order.
type ProcedureBody struct {
	Statements []Statement
}

func (*ProcedureBody) statementNode() {}

// IndexStatement covers CREATE/DROP INDEX; the core only parses this, index
// implementations are an external collaborator (§1).
type IndexStatement struct {
	Verb     CatalogVerb
	Name     string
	OnLabel  string
	OnProps  []string
	IsUnique bool
}

func (*IndexStatement) statementNode() {}

// Declare introduces a host-visible binding-table parameter.
type Declare struct {
	Name string
	Type string
}

func (*Declare) statementNode() {}

// Next advances to the next statement in a multi-statement script context;
// carried as a statement so the parser can surface a sequencing marker
// without inventing a enclosing block construct.
type Next struct{}

func (*Next) statementNode() {}

// AtLocation is "AT graph-reference" prefixing a statement to select the
// graph it runs against.
type AtLocation struct {
	GraphRef string
	Inner    Statement
}

func (*AtLocation) statementNode() {}

// Package catalog defines the external catalog interface (§6): schemas,
// graphs, users, roles and procedures all live outside the core's own
// state, and the interface only asks whether they exist. Catalog DDL
// statements (CREATE/DROP SCHEMA/GRAPH/...) are never applied by the core:
// it parses and validates them, and the engine rejects them as needing a
// host binding. Nothing in the interface mutates a catalog.
package catalog

// Catalog is the minimal existence-check surface. The engine and validator
// in this module do not call it. A host may back this with a real schema registry; an
// embedding-only caller can use NewStatic to hand the core a fixed set of
// names known up front.
type Catalog interface {
	IsSystemProcedure(name string) bool

	SchemaExists(path string) bool
	GraphExists(path string) bool
	UserExists(name string) bool
	RoleExists(name string) bool
	ProcedureExists(name string) bool
}

// Static is a fixed-membership Catalog, adequate for embedding and for
// tests: every existence check is a set lookup, and system procedures are
// named explicitly rather than discovered.
type Static struct {
	SystemProcedures map[string]bool
	Schemas          map[string]bool
	Graphs           map[string]bool
	Users            map[string]bool
	Roles            map[string]bool
	Procedures       map[string]bool
}

// NewStatic returns an empty Static catalog ready for its maps to be
// populated (or left nil; every existence check treats a nil map as empty).
func NewStatic() *Static {
	return &Static{}
}

func (s *Static) IsSystemProcedure(name string) bool { return s.SystemProcedures[name] }
func (s *Static) SchemaExists(path string) bool       { return s.Schemas[path] }
func (s *Static) GraphExists(path string) bool        { return s.Graphs[path] }
func (s *Static) UserExists(name string) bool         { return s.Users[name] }
func (s *Static) RoleExists(name string) bool         { return s.Roles[name] }
func (s *Static) ProcedureExists(name string) bool    { return s.Procedures[name] }

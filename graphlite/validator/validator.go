// Package validator implements the GQL semantic validator: the pass that
// runs between parsing and logical planning, checking structural shape,
// variable scope, function signatures, and catalog/DDL path shape (§4.3).
// Unlike the parser, it never stops at the first problem: every check runs
// and all failures are returned together.
package validator

import (
	"fmt"

	"github.com/mwatts/graphlite/ast"
	"github.com/mwatts/graphlite/function"
)

// Kind classifies a ValidationError's origin, mirrored from §4.3's
// {Structural, Semantic, Type, Syntax} taxonomy.
type Kind uint8

const (
	Structural Kind = iota
	Semantic
	Type
	Syntax
)

func (k Kind) String() string {
	switch k {
	case Structural:
		return "Structural"
	case Semantic:
		return "Semantic"
	case Type:
		return "Type"
	case Syntax:
		return "Syntax"
	}
	return "Unknown"
}

// Error is one accumulated validation failure.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func newErr(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// checker accumulates errors across one Validate call and carries the
// registry/context that every check needs. A *checker is the receiver for
// every check method, split across this file and query.go/expr.go/ddl.go.
type checker struct {
	errs            []*Error
	registry        *function.Registry
	hasGraphContext bool
}

func (c *checker) fail(kind Kind, format string, args ...interface{}) {
	c.errs = append(c.errs, newErr(kind, format, args...))
}

// Validate runs every §4.3 check against doc and returns the accumulated
// errors, or nil if the document is valid. hasGraphContext relaxes the
// variable-scope check: a session bound to a graph may expose implicit
// bindings the document's own MATCH/WITH/LET/UNWIND clauses never declare.
func Validate(doc *ast.Document, hasGraphContext bool) []*Error {
	c := &checker{registry: function.DefaultRegistry, hasGraphContext: hasGraphContext}
	c.checkStatement(doc.Statement, newScope())
	if len(c.errs) == 0 {
		return nil
	}
	return c.errs
}

func (c *checker) checkStatement(s ast.Statement, outer *scope) {
	switch st := s.(type) {
	case *ast.QueryStatement:
		c.checkQuery(st.Query, outer)
	case *ast.SelectStatement:
		c.checkSelectStatement(st, outer)
	case *ast.CallStatement:
		c.checkCallStatement(st, outer)
	case *ast.DataStatement:
		c.checkDataStatement(st, outer)
	case *ast.CatalogStatement:
		c.checkCatalogStatement(st)
	case *ast.IndexStatement:
		c.checkIndexStatement(st)
	case *ast.TransactionStatement, *ast.SessionStatement, *ast.Declare, *ast.Next:
		// no structural/semantic shape to validate beyond what the parser
		// already enforces
	case *ast.AtLocation:
		c.checkStatement(st.Inner, outer)
	}
}

// Package session holds the process-wide state a running query sees:
// current schema/graph, time zone, named parameters and (when one is
// open) the active transaction context (§6's "Session" glue layer).
package session

import (
	"time"

	"github.com/mwatts/graphlite"
	"github.com/mwatts/graphlite/ast"
	"github.com/mwatts/graphlite/txn"
)

// Session is the mutable state SESSION SET/RESET/CLOSE and START
// TRANSACTION/COMMIT/ROLLBACK act on. It is not safe for concurrent use by
// more than one in-flight statement, matching the executor's own
// one-query-at-a-time contract.
type Session struct {
	Schema string
	Graph  string
	TZ     *time.Location

	// Params holds every named session parameter ($x), regardless of
	// whether it was bound to a plain value, a graph reference, or a
	// binding table; the executor only ever reads Value-kind parameters
	// out of it — a graph- or binding-table-valued
	// parameter is resolved by the host before a query reaches the core.
	Params map[string]graphlite.Value

	Txn *txn.Context
}

// New returns a Session with UTC as its default time zone and no schema,
// graph or parameters set.
func New() *Session {
	return &Session{TZ: time.UTC, Params: map[string]graphlite.Value{}}
}

// Apply executes a SESSION statement against the session (§4.2). SET
// requires an evaluated value, passed in by the caller because assigning
// $params inside a SET requires the expression evaluator the session
// package does not itself depend on.
func (s *Session) Apply(st *ast.SessionStatement, value graphlite.Value) error {
	switch st.Kind {
	case ast.SessionSet:
		return s.set(st.Key, value)
	case ast.SessionReset:
		return s.reset(st.Key)
	case ast.SessionClose:
		s.Reset()
		return nil
	}
	return graphlite.NewError(graphlite.ErrExecution, "session: unsupported SESSION statement kind %d", st.Kind)
}

func (s *Session) set(key string, value graphlite.Value) error {
	switch key {
	case "SCHEMA":
		s.Schema = value.String()
	case "GRAPH":
		s.Graph = value.String()
	case "TIME ZONE", "TIMEZONE":
		loc, err := time.LoadLocation(value.String())
		if err != nil {
			return graphlite.NewError(graphlite.ErrExecution, "session: unknown time zone %q: %v", value.String(), err)
		}
		s.TZ = loc
	default:
		s.Params[key] = value
	}
	return nil
}

// reset restores one session property (or, for "" / "ALL", everything) to
// its default.
func (s *Session) reset(key string) error {
	switch key {
	case "", "ALL":
		s.Reset()
	case "SCHEMA":
		s.Schema = ""
	case "GRAPH":
		s.Graph = ""
	case "TIME ZONE", "TIMEZONE":
		s.TZ = time.UTC
	default:
		delete(s.Params, key)
	}
	return nil
}

// Reset restores schema, graph, time zone and every parameter to their
// defaults. An open transaction is left untouched — SESSION CLOSE does not
// implicitly commit or roll back (§4.7 leaves that to explicit
// COMMIT/ROLLBACK).
func (s *Session) Reset() {
	s.Schema = ""
	s.Graph = ""
	s.TZ = time.UTC
	s.Params = map[string]graphlite.Value{}
}

// InTransaction reports whether a transaction is currently open.
func (s *Session) InTransaction() bool {
	return s.Txn != nil && s.Txn.Status() == txn.Active
}

// HasGraphContext reports whether a current graph is set, the validator's
// signal for whether graph-scoped pattern matching is legal (§4.3).
func (s *Session) HasGraphContext() bool {
	return s.Graph != ""
}

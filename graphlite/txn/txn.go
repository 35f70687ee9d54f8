// Package txn implements GraphLite's transaction/undo contract (§4.7): a
// flat (no savepoints), single-writer transaction context that accumulates
// an undo log as mutations are applied, and can roll the graph back to its
// pre-transaction state by replaying that log in reverse.
package txn

import (
	"fmt"
	"strings"

	"github.com/mwatts/graphlite"
	"github.com/mwatts/graphlite/store"
)

// OpKind tags what an UndoOperation reverses.
type OpKind uint8

const (
	UndoInsertNode OpKind = iota
	UndoInsertEdge
	UndoRemoveNode
	UndoRemoveEdge
	UndoUpdateNode
	UndoUpdateEdge
)

// UndoOperation records enough state to reverse one store mutation. Reverses
// act on a snapshot taken before the mutation was applied, so replaying them
// is safe even if the graph has progressed since (§4.7: idempotent against
// duplicate delete).
type UndoOperation struct {
	Kind OpKind

	NodeID string
	EdgeID string

	// NodeBefore/EdgeBefore hold the pre-mutation snapshot for
	// UndoUpdateNode/UndoUpdateEdge/UndoRemoveNode/UndoRemoveEdge; nil for
	// UndoInsertNode/UndoInsertEdge, whose reverse is simply a delete.
	NodeBefore *graphlite.Node
	EdgeBefore *graphlite.Edge
}

// apply performs the reverse of the recorded mutation against cache.
func (op UndoOperation) apply(cache store.GraphCache) error {
	switch op.Kind {
	case UndoInsertNode:
		return cache.RemoveNode(op.NodeID)
	case UndoInsertEdge:
		return cache.RemoveEdge(op.EdgeID)
	case UndoRemoveNode:
		if op.NodeBefore == nil {
			return nil
		}
		if _, ok := cache.GetNode(op.NodeBefore.ID); ok {
			return cache.UpdateNode(op.NodeBefore)
		}
		return cache.InsertNode(op.NodeBefore)
	case UndoRemoveEdge:
		if op.EdgeBefore == nil {
			return nil
		}
		if _, ok := cache.GetEdge(op.EdgeBefore.ID); ok {
			return cache.UpdateEdge(op.EdgeBefore)
		}
		return cache.InsertEdge(op.EdgeBefore)
	case UndoUpdateNode:
		if op.NodeBefore == nil {
			return nil
		}
		return cache.UpdateNode(op.NodeBefore)
	case UndoUpdateEdge:
		if op.EdgeBefore == nil {
			return nil
		}
		return cache.UpdateEdge(op.EdgeBefore)
	}
	return fmt.Errorf("txn: unknown undo op kind %d", op.Kind)
}

// Status is a Context's lifecycle state.
type Status uint8

const (
	Active Status = iota
	Committed
	RolledBack
)

// Context is one transaction's undo log plus the isolation/access-mode
// tokens START TRANSACTION parsed. Enforcement of isolation level is the
// external store's responsibility (§4.7); the core only stores the token
// and enforces READ ONLY by rejecting any mutation.
type Context struct {
	AccessMode   string
	IsolationLvl string
	status       Status
	undo         []UndoOperation
}

// Begin opens a new transaction context from a parsed START TRANSACTION's
// access mode and isolation level tokens (either may be "").
func Begin(accessMode, isolationLvl string) *Context {
	return &Context{AccessMode: accessMode, IsolationLvl: isolationLvl, status: Active}
}

// ReadOnly reports whether this context was opened READ ONLY.
func (c *Context) ReadOnly() bool {
	return strings.EqualFold(strings.TrimSpace(c.AccessMode), "READ ONLY")
}

// Status returns the context's current lifecycle state.
func (c *Context) Status() Status {
	return c.status
}

// Record appends an undo operation to the log, rejecting it outright if the
// context is READ ONLY (§4.7: "READ ONLY transactions reject any operation
// that would append an undo op").
func (c *Context) Record(op UndoOperation) error {
	if c.status != Active {
		return fmt.Errorf("txn: cannot record a mutation on a %v transaction", c.status)
	}
	if c.ReadOnly() {
		return fmt.Errorf("txn: transaction is READ ONLY")
	}
	c.undo = append(c.undo, op)
	return nil
}

// Commit empties the undo log and marks the context Committed.
func (c *Context) Commit() error {
	if c.status != Active {
		return fmt.Errorf("txn: cannot commit a %v transaction", c.status)
	}
	c.undo = nil
	c.status = Committed
	return nil
}

// Rollback applies every undo operation in reverse insertion order against
// cache, then marks the context RolledBack. A rollback failure is fatal
// (§7): the caller is left with a context whose remaining undo ops were
// never replayed, and should surface the error rather than retry silently.
func (c *Context) Rollback(cache store.GraphCache) error {
	if c.status != Active {
		return fmt.Errorf("txn: cannot roll back a %v transaction", c.status)
	}
	for i := len(c.undo) - 1; i >= 0; i-- {
		if err := c.undo[i].apply(cache); err != nil {
			return fmt.Errorf("txn: rollback failed at undo op %d: %w", i, err)
		}
	}
	c.undo = nil
	c.status = RolledBack
	return nil
}

func (s Status) String() string {
	switch s {
	case Active:
		return "Active"
	case Committed:
		return "Committed"
	case RolledBack:
		return "RolledBack"
	}
	return "Unknown"
}

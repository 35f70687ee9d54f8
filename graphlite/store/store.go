// Package store defines the GraphCache interface the core consumes (§6) and
// provides two implementations: an in-memory default (store/memory) and an
// optional BadgerDB-backed persistent adapter (store/badgerstore).
package store

import "github.com/mwatts/graphlite"

// GraphCache is the minimal storage surface the executor and physical
// planner consume. Every method is synchronous and total except where Err
// is explicitly documented (§6): the core never retries or backs off, a
// non-nil error aborts the enclosing operation.
type GraphCache interface {
	GetNode(id string) (*graphlite.Node, bool)
	GetEdge(id string) (*graphlite.Edge, bool)
	AllNodes() []*graphlite.Node
	AllEdges() []*graphlite.Edge

	InsertNode(n *graphlite.Node) error
	InsertEdge(e *graphlite.Edge) error
	UpdateNode(n *graphlite.Node) error
	UpdateEdge(e *graphlite.Edge) error
	RemoveNode(id string) error
	RemoveEdge(id string) error

	// NodesByLabel and EdgesByLabel back the physical planner's label-scan
	// and index-scan operators; a store with no label index may satisfy
	// these by filtering AllNodes/AllEdges.
	NodesByLabel(label string) []*graphlite.Node
	EdgesByLabel(label string) []*graphlite.Edge

	// IncidentEdges returns every edge touching nodeID, used by DETACH
	// DELETE and by MATCH's edge-expansion operators.
	IncidentEdges(nodeID string) []*graphlite.Edge
}

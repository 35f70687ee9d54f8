// Package memory is GraphLite's default GraphCache: an in-process map-backed
// store with label indices, adequate for embedding and for the executor's
// test suite. It carries no persistence and no concurrency control beyond a
// single mutex (§5: a session either owns its own store or relies on the
// store for any cross-session synchronization).
package memory

import (
	"fmt"
	"sync"

	"github.com/mwatts/graphlite"
)

// Store is a mutex-guarded in-memory GraphCache.
type Store struct {
	mu sync.RWMutex

	nodes map[string]*graphlite.Node
	edges map[string]*graphlite.Edge

	nodesByLabel map[string]map[string]struct{} // label -> node id set
	edgesByLabel map[string]map[string]struct{} // label -> edge id set
	incident     map[string]map[string]struct{} // node id -> incident edge id set
}

func New() *Store {
	return &Store{
		nodes:        make(map[string]*graphlite.Node),
		edges:        make(map[string]*graphlite.Edge),
		nodesByLabel: make(map[string]map[string]struct{}),
		edgesByLabel: make(map[string]map[string]struct{}),
		incident:     make(map[string]map[string]struct{}),
	}
}

func (s *Store) GetNode(id string) (*graphlite.Node, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.nodes[id]
	return n, ok
}

func (s *Store) GetEdge(id string) (*graphlite.Edge, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.edges[id]
	return e, ok
}

func (s *Store) AllNodes() []*graphlite.Node {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*graphlite.Node, 0, len(s.nodes))
	for _, n := range s.nodes {
		out = append(out, n)
	}
	return out
}

func (s *Store) AllEdges() []*graphlite.Edge {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*graphlite.Edge, 0, len(s.edges))
	for _, e := range s.edges {
		out = append(out, e)
	}
	return out
}

func (s *Store) InsertNode(n *graphlite.Node) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.nodes[n.ID]; exists {
		return fmt.Errorf("node %q already exists", n.ID)
	}
	s.nodes[n.ID] = n
	s.indexNodeLabels(n)
	return nil
}

func (s *Store) InsertEdge(e *graphlite.Edge) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.edges[e.ID]; exists {
		return fmt.Errorf("edge %q already exists", e.ID)
	}
	if _, ok := s.nodes[e.From]; !ok {
		return fmt.Errorf("edge %q references missing from-node %q", e.ID, e.From)
	}
	if _, ok := s.nodes[e.To]; !ok {
		return fmt.Errorf("edge %q references missing to-node %q", e.ID, e.To)
	}
	s.edges[e.ID] = e
	s.indexEdge(e)
	return nil
}

func (s *Store) UpdateNode(n *graphlite.Node) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.nodes[n.ID]
	if !ok {
		return fmt.Errorf("node %q does not exist", n.ID)
	}
	s.unindexNodeLabels(old)
	s.nodes[n.ID] = n
	s.indexNodeLabels(n)
	return nil
}

func (s *Store) UpdateEdge(e *graphlite.Edge) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.edges[e.ID]
	if !ok {
		return fmt.Errorf("edge %q does not exist", e.ID)
	}
	s.unindexEdge(old)
	s.edges[e.ID] = e
	s.indexEdge(e)
	return nil
}

func (s *Store) RemoveNode(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.nodes[id]
	if !ok {
		return nil // rollback's undo ops are tolerant of duplicate delete (§4.7)
	}
	if incident := s.incident[id]; len(incident) > 0 {
		return fmt.Errorf("node %q has %d incident edge(s); DETACH required", id, len(incident))
	}
	s.unindexNodeLabels(n)
	delete(s.nodes, id)
	delete(s.incident, id)
	return nil
}

func (s *Store) RemoveEdge(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.edges[id]
	if !ok {
		return nil
	}
	s.unindexEdge(e)
	delete(s.edges, id)
	return nil
}

func (s *Store) NodesByLabel(label string) []*graphlite.Node {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := s.nodesByLabel[label]
	out := make([]*graphlite.Node, 0, len(ids))
	for id := range ids {
		out = append(out, s.nodes[id])
	}
	return out
}

func (s *Store) EdgesByLabel(label string) []*graphlite.Edge {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := s.edgesByLabel[label]
	out := make([]*graphlite.Edge, 0, len(ids))
	for id := range ids {
		out = append(out, s.edges[id])
	}
	return out
}

func (s *Store) IncidentEdges(nodeID string) []*graphlite.Edge {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := s.incident[nodeID]
	out := make([]*graphlite.Edge, 0, len(ids))
	for id := range ids {
		out = append(out, s.edges[id])
	}
	return out
}

func (s *Store) indexNodeLabels(n *graphlite.Node) {
	for _, l := range n.LabelList() {
		if s.nodesByLabel[l] == nil {
			s.nodesByLabel[l] = make(map[string]struct{})
		}
		s.nodesByLabel[l][n.ID] = struct{}{}
	}
}

func (s *Store) unindexNodeLabels(n *graphlite.Node) {
	for _, l := range n.LabelList() {
		delete(s.nodesByLabel[l], n.ID)
	}
}

func (s *Store) indexEdge(e *graphlite.Edge) {
	if s.edgesByLabel[e.Label] == nil {
		s.edgesByLabel[e.Label] = make(map[string]struct{})
	}
	s.edgesByLabel[e.Label][e.ID] = struct{}{}

	for _, nodeID := range []string{e.From, e.To} {
		if s.incident[nodeID] == nil {
			s.incident[nodeID] = make(map[string]struct{})
		}
		s.incident[nodeID][e.ID] = struct{}{}
	}
}

func (s *Store) unindexEdge(e *graphlite.Edge) {
	delete(s.edgesByLabel[e.Label], e.ID)
	delete(s.incident[e.From], e.ID)
	delete(s.incident[e.To], e.ID)
}

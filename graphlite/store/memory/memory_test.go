package memory

import (
	"testing"

	"github.com/mwatts/graphlite"
)

func person(id, name string) *graphlite.Node {
	n := graphlite.NewEmptyNode(id)
	n.AddLabel("Person")
	n.Properties["name"] = graphlite.NewString(name)
	return n
}

func TestInsertAndGetNode(t *testing.T) {
	s := New()
	n := person("n1", "Ada")
	if err := s.InsertNode(n); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, ok := s.GetNode("n1")
	if !ok || got.Properties["name"].Str != "Ada" {
		t.Fatalf("expected to find n1 with name Ada, got %+v, ok=%v", got, ok)
	}
}

func TestInsertDuplicateNodeFails(t *testing.T) {
	s := New()
	s.InsertNode(person("n1", "Ada"))
	if err := s.InsertNode(person("n1", "Bea")); err == nil {
		t.Fatal("expected an error inserting a duplicate node id")
	}
}

func TestInsertEdgeRequiresExistingEndpoints(t *testing.T) {
	s := New()
	s.InsertNode(person("n1", "Ada"))
	e := graphlite.NewEmptyEdge("e1", "n1", "n2", "KNOWS")
	if err := s.InsertEdge(e); err == nil {
		t.Fatal("expected an error for an edge referencing a missing node")
	}
}

func TestNodesByLabel(t *testing.T) {
	s := New()
	s.InsertNode(person("n1", "Ada"))
	other := graphlite.NewEmptyNode("n2")
	other.AddLabel("Company")
	s.InsertNode(other)

	people := s.NodesByLabel("Person")
	if len(people) != 1 || people[0].ID != "n1" {
		t.Fatalf("expected exactly n1 for label Person, got %+v", people)
	}
}

func TestRemoveNodeWithIncidentEdgesFails(t *testing.T) {
	s := New()
	s.InsertNode(person("n1", "Ada"))
	s.InsertNode(person("n2", "Bea"))
	s.InsertEdge(graphlite.NewEmptyEdge("e1", "n1", "n2", "KNOWS"))

	if err := s.RemoveNode("n1"); err == nil {
		t.Fatal("expected removing a node with an incident edge to fail without DETACH")
	}
	if err := s.RemoveEdge("e1"); err != nil {
		t.Fatalf("unexpected error removing edge: %v", err)
	}
	if err := s.RemoveNode("n1"); err != nil {
		t.Fatalf("expected node removal to succeed once edges are gone: %v", err)
	}
}

func TestRemoveNodeIsIdempotent(t *testing.T) {
	s := New()
	if err := s.RemoveNode("missing"); err != nil {
		t.Fatalf("expected removing a non-existent node to be a no-op, got %v", err)
	}
}

func TestIncidentEdges(t *testing.T) {
	s := New()
	s.InsertNode(person("n1", "Ada"))
	s.InsertNode(person("n2", "Bea"))
	s.InsertEdge(graphlite.NewEmptyEdge("e1", "n1", "n2", "KNOWS"))

	inc := s.IncidentEdges("n2")
	if len(inc) != 1 || inc[0].ID != "e1" {
		t.Fatalf("expected n2 to have one incident edge e1, got %+v", inc)
	}
}

func TestUpdateNodeReindexesLabels(t *testing.T) {
	s := New()
	n := person("n1", "Ada")
	s.InsertNode(n)

	updated := n.Clone()
	updated.RemoveLabel("Person")
	updated.AddLabel("Robot")
	if err := s.UpdateNode(updated); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(s.NodesByLabel("Person")) != 0 {
		t.Fatal("expected n1 to no longer be indexed under Person")
	}
	if len(s.NodesByLabel("Robot")) != 1 {
		t.Fatal("expected n1 to be indexed under Robot")
	}
}

package txn

import (
	"testing"

	"github.com/mwatts/graphlite"
	"github.com/mwatts/graphlite/store/memory"
)

func TestReadOnlyRejectsMutationRecord(t *testing.T) {
	c := Begin("READ ONLY", "")
	err := c.Record(UndoOperation{Kind: UndoInsertNode, NodeID: "n1"})
	if err == nil {
		t.Fatal("expected READ ONLY transaction to reject an undo-op record")
	}
}

func TestCommitEmptiesUndoLog(t *testing.T) {
	c := Begin("READ WRITE", "")
	if err := c.Record(UndoOperation{Kind: UndoInsertNode, NodeID: "n1"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := c.Commit(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Status() != Committed {
		t.Fatalf("expected Committed, got %v", c.Status())
	}
	if len(c.undo) != 0 {
		t.Fatal("expected undo log to be emptied on commit")
	}
}

func TestRollbackReversesInsertNode(t *testing.T) {
	s := memory.New()
	n := graphlite.NewEmptyNode("n1")
	if err := s.InsertNode(n); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	c := Begin("READ WRITE", "")
	if err := c.Record(UndoOperation{Kind: UndoInsertNode, NodeID: "n1"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := c.Rollback(s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := s.GetNode("n1"); ok {
		t.Fatal("expected rollback to remove the inserted node")
	}
}

func TestRollbackReversesRemoveNode(t *testing.T) {
	s := memory.New()
	n := graphlite.NewEmptyNode("n1")
	n.Properties["name"] = graphlite.NewString("Ada")
	s.InsertNode(n)

	c := Begin("READ WRITE", "")
	snapshot := n.Clone()
	if err := s.RemoveNode("n1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := c.Record(UndoOperation{Kind: UndoRemoveNode, NodeID: "n1", NodeBefore: snapshot}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := c.Rollback(s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, ok := s.GetNode("n1")
	if !ok || got.Properties["name"].Str != "Ada" {
		t.Fatalf("expected rollback to restore n1, got %+v, ok=%v", got, ok)
	}
}

func TestRollbackIsOrderedLastInFirstUndone(t *testing.T) {
	s := memory.New()
	a := graphlite.NewEmptyNode("a")
	b := graphlite.NewEmptyNode("b")
	s.InsertNode(a)

	c := Begin("READ WRITE", "")
	c.Record(UndoOperation{Kind: UndoInsertNode, NodeID: "a"})
	s.InsertNode(b)
	s.InsertEdge(graphlite.NewEmptyEdge("e1", "a", "b", "KNOWS"))
	c.Record(UndoOperation{Kind: UndoInsertNode, NodeID: "b"})
	c.Record(UndoOperation{Kind: UndoInsertEdge, EdgeID: "e1"})

	if err := c.Rollback(s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := s.GetNode("a"); ok {
		t.Fatal("expected a to be removed")
	}
	if _, ok := s.GetNode("b"); ok {
		t.Fatal("expected b to be removed")
	}
}

func TestRollbackIsIdempotentAgainstAlreadyDeletedNode(t *testing.T) {
	s := memory.New()
	n := graphlite.NewEmptyNode("n1")
	s.InsertNode(n)

	c := Begin("READ WRITE", "")
	c.Record(UndoOperation{Kind: UndoInsertNode, NodeID: "n1"})
	s.RemoveNode("n1") // simulate the graph progressing before rollback runs

	if err := c.Rollback(s); err != nil {
		t.Fatalf("expected a duplicate-delete rollback to be tolerated, got %v", err)
	}
}

func TestReadOnlyDetection(t *testing.T) {
	tests := []struct {
		mode string
		want bool
	}{
		{"READ ONLY", true},
		{"read only", true},
		{"READ WRITE", false},
		{"", false},
	}
	for _, tt := range tests {
		c := Begin(tt.mode, "")
		if got := c.ReadOnly(); got != tt.want {
			t.Errorf("Begin(%q).ReadOnly() = %v, want %v", tt.mode, got, tt.want)
		}
	}
}

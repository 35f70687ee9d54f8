package catalog

import "testing"

func TestStaticExistenceChecks(t *testing.T) {
	c := NewStatic()
	c.SystemProcedures = map[string]bool{"shortest_path": true}
	c.Graphs = map[string]bool{"/schema1/social": true}

	if !c.IsSystemProcedure("shortest_path") {
		t.Error("expected shortest_path to be a system procedure")
	}
	if c.IsSystemProcedure("my_proc") {
		t.Error("expected my_proc to not be a system procedure")
	}
	if !c.GraphExists("/schema1/social") {
		t.Error("expected /schema1/social to exist")
	}
	if c.GraphExists("/schema1/missing") {
		t.Error("expected /schema1/missing to not exist")
	}
}

func TestStaticNilMapsAreEmpty(t *testing.T) {
	c := NewStatic()
	if c.UserExists("anyone") || c.RoleExists("any") || c.ProcedureExists("any") || c.SchemaExists("any") {
		t.Error("expected every existence check to report false on a zero-value Static")
	}
}

package store

import "testing"

func TestCreateEdgeDefaultsAndConflict(t *testing.T) {
	db, _ := OpenMemory()
	defer db.Close()
	a := newTestAgent(t, db, "edge-agent")

	e := &Edge{AgentID: a.ID, SourceType: "fact", SourceID: "fact_a", TargetType: "fact", TargetID: "fact_b", Relation: "relates_to"}
	if err := db.CreateEdge(e); err != nil {
		t.Fatalf("CreateEdge: %v", err)
	}
	if e.Weight != 1.0 {
		t.Errorf("Weight = %f, want 1.0", e.Weight)
	}

	dup := &Edge{AgentID: a.ID, SourceType: "fact", SourceID: "fact_a", TargetType: "fact", TargetID: "fact_b", Relation: "relates_to"}
	if err := db.CreateEdge(dup); err != ErrConflict {
		t.Errorf("expected ErrConflict on duplicate triple, got %v", err)
	}
}

func TestDeleteEdgeNotFound(t *testing.T) {
	db, _ := OpenMemory()
	defer db.Close()
	a := newTestAgent(t, db, "edge-agent-2")

	if err := db.DeleteEdge(a.ID, "edge_nonexistent"); err != ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestEdgesTouchingCombinesInAndOut(t *testing.T) {
	db, _ := OpenMemory()
	defer db.Close()
	a := newTestAgent(t, db, "edge-agent-3")

	out := &Edge{AgentID: a.ID, SourceType: "fact", SourceID: "node-x", TargetType: "fact", TargetID: "node-y", Relation: "supports"}
	if err := db.CreateEdge(out); err != nil {
		t.Fatalf("CreateEdge: %v", err)
	}
	in := &Edge{AgentID: a.ID, SourceType: "fact", SourceID: "node-z", TargetType: "fact", TargetID: "node-x", Relation: "contradicts"}
	if err := db.CreateEdge(in); err != nil {
		t.Fatalf("CreateEdge: %v", err)
	}

	touching, err := db.EdgesTouching(a.ID, "fact", "node-x")
	if err != nil {
		t.Fatalf("EdgesTouching: %v", err)
	}
	if len(touching) != 2 {
		t.Errorf("len = %d, want 2", len(touching))
	}
}

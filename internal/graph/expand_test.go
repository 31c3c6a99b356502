package graph

import (
	"testing"

	"github.com/hexmem/hexmem/internal/store"
)

func TestExpandOneHopSkipsDanglingEdges(t *testing.T) {
	db, err := store.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	defer db.Close()
	a := &store.Agent{Slug: "expand-agent", DisplayName: "Expand Agent"}
	if err := db.CreateAgent(a); err != nil {
		t.Fatalf("CreateAgent: %v", err)
	}

	f := &store.Fact{AgentID: a.ID, Content: "root fact for expansion"}
	if err := db.CreateFact(f); err != nil {
		t.Fatalf("CreateFact: %v", err)
	}

	// Edge to a target id that doesn't resolve to any row — dangling by construction.
	if err := db.CreateEdge(&store.Edge{
		AgentID: a.ID, SourceType: "fact", SourceID: f.ID,
		TargetType: "fact", TargetID: "fact_ghost", Relation: "relates_to",
	}); err != nil {
		t.Fatalf("CreateEdge: %v", err)
	}

	e := &Expander{DB: db}
	related, err := e.ExpandOneHop(a.ID, "fact", f.ID)
	if err != nil {
		t.Fatalf("ExpandOneHop: %v", err)
	}
	if len(related) != 0 {
		t.Errorf("expected dangling edge to be skipped, got %d related items", len(related))
	}
}

func TestExpandOneHopResolvesRealNeighbors(t *testing.T) {
	db, err := store.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	defer db.Close()
	a := &store.Agent{Slug: "expand-agent-2", DisplayName: "Expand Agent 2"}
	if err := db.CreateAgent(a); err != nil {
		t.Fatalf("CreateAgent: %v", err)
	}

	root := &store.Fact{AgentID: a.ID, Content: "root fact"}
	if err := db.CreateFact(root); err != nil {
		t.Fatalf("CreateFact: %v", err)
	}
	neighbor := &store.Fact{AgentID: a.ID, Content: "neighbor fact"}
	if err := db.CreateFact(neighbor); err != nil {
		t.Fatalf("CreateFact: %v", err)
	}
	if err := db.CreateEdge(&store.Edge{
		AgentID: a.ID, SourceType: "fact", SourceID: root.ID,
		TargetType: "fact", TargetID: neighbor.ID, Relation: "relates_to", Weight: 0.8,
	}); err != nil {
		t.Fatalf("CreateEdge: %v", err)
	}

	e := &Expander{DB: db}
	related, err := e.ExpandOneHop(a.ID, "fact", root.ID)
	if err != nil {
		t.Fatalf("ExpandOneHop: %v", err)
	}
	if len(related) != 1 {
		t.Fatalf("len(related) = %d, want 1", len(related))
	}
	if related[0].NeighborID != neighbor.ID || related[0].NeighborContent != "neighbor fact" {
		t.Errorf("related[0] = %+v, want neighbor %q", related[0], neighbor.ID)
	}
	if related[0].Direction != "outgoing" {
		t.Errorf("Direction = %q, want outgoing", related[0].Direction)
	}
}

package store

import (
	"database/sql"
	"testing"
)

func TestResolvePolicyAgentOverrideBeatsGlobalDefault(t *testing.T) {
	db, _ := OpenMemory()
	defer db.Close()
	a := newTestAgent(t, db, "policy-agent")

	global, err := db.ResolvePolicy(a.ID, "fact")
	if err != nil {
		t.Fatalf("ResolvePolicy (before override): %v", err)
	}

	override := &DecayPolicy{
		AgentID:     sql.NullString{String: a.ID, Valid: true},
		MemoryType:  "fact",
		TTLDays:     sql.NullInt64{Int64: 3, Valid: true},
		AccessBoost: 2.0,
		MinAccesses: 1,
	}
	if err := db.UpsertAgentPolicy(override); err != nil {
		t.Fatalf("UpsertAgentPolicy: %v", err)
	}

	resolved, err := db.ResolvePolicy(a.ID, "fact")
	if err != nil {
		t.Fatalf("ResolvePolicy (after override): %v", err)
	}
	if resolved.TTLDays.Int64 != 3 {
		t.Errorf("TTLDays = %v, want 3", resolved.TTLDays)
	}
	if resolved.TTLDays == global.TTLDays {
		t.Error("expected override to differ from global default")
	}
}

func TestUpsertAgentPolicyReplacesOnConflict(t *testing.T) {
	db, _ := OpenMemory()
	defer db.Close()
	a := newTestAgent(t, db, "policy-agent-2")

	p := &DecayPolicy{
		AgentID:     sql.NullString{String: a.ID, Valid: true},
		MemoryType:  "task",
		TTLDays:     sql.NullInt64{Int64: 10, Valid: true},
		AccessBoost: 1.0,
		MinAccesses: 2,
	}
	if err := db.UpsertAgentPolicy(p); err != nil {
		t.Fatalf("UpsertAgentPolicy: %v", err)
	}

	p.TTLDays = sql.NullInt64{Int64: 20, Valid: true}
	if err := db.UpsertAgentPolicy(p); err != nil {
		t.Fatalf("UpsertAgentPolicy (replace): %v", err)
	}

	resolved, err := db.ResolvePolicy(a.ID, "task")
	if err != nil {
		t.Fatalf("ResolvePolicy: %v", err)
	}
	if resolved.TTLDays.Int64 != 20 {
		t.Errorf("TTLDays = %v, want 20 after replace", resolved.TTLDays)
	}
}

func TestListPoliciesForAgentIncludesGlobalsAndOverrides(t *testing.T) {
	db, _ := OpenMemory()
	defer db.Close()
	a := newTestAgent(t, db, "policy-agent-3")

	override := &DecayPolicy{
		AgentID:     sql.NullString{String: a.ID, Valid: true},
		MemoryType:  "event",
		TTLDays:     sql.NullInt64{Int64: 5, Valid: true},
		AccessBoost: 1.0,
		MinAccesses: 1,
	}
	if err := db.UpsertAgentPolicy(override); err != nil {
		t.Fatalf("UpsertAgentPolicy: %v", err)
	}

	list, err := db.ListPoliciesForAgent(a.ID)
	if err != nil {
		t.Fatalf("ListPoliciesForAgent: %v", err)
	}
	if len(list) == 0 {
		t.Fatal("expected at least the global default rows")
	}
	foundOverride := false
	for _, p := range list {
		if p.AgentID.Valid && p.AgentID.String == a.ID && p.MemoryType == "event" {
			foundOverride = true
		}
	}
	if !foundOverride {
		t.Error("expected agent-specific override in list")
	}
}

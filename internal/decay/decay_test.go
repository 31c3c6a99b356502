package decay

import (
	"testing"
	"time"

	"github.com/hexmem/hexmem/internal/store"
)

func newTestEngine(t *testing.T) (*Engine, *store.DB, *store.Agent) {
	t.Helper()
	db, err := store.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	a := &store.Agent{Slug: "decay-agent", DisplayName: "Decay Agent"}
	if err := db.CreateAgent(a); err != nil {
		t.Fatalf("CreateAgent: %v", err)
	}
	return New(db, nil), db, a
}

func daysAgoMillis(days int) int64 {
	return time.Now().Add(-time.Duration(days) * 24 * time.Hour).UnixMilli()
}

func TestSweepTransitionsActiveToCoolingPastTTL(t *testing.T) {
	e, db, a := newTestEngine(t)

	f := &store.Fact{AgentID: a.ID, Content: "an old fact past its ttl"}
	if err := db.CreateFact(f); err != nil {
		t.Fatalf("CreateFact: %v", err)
	}
	// fact's global default ttl_days is 60; backdate created_at well past it.
	if _, err := db.Exec(`UPDATE facts SET created_at = ? WHERE id = ?`, daysAgoMillis(90), f.ID); err != nil {
		t.Fatalf("backdate fact: %v", err)
	}

	stats, err := e.Sweep(a.ID)
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if stats.TransitionedToCooling != 1 {
		t.Errorf("TransitionedToCooling = %d, want 1", stats.TransitionedToCooling)
	}

	got, err := db.GetFact(a.ID, f.ID)
	if err != nil {
		t.Fatalf("GetFact: %v", err)
	}
	if got.DecayStatus != "cooling" {
		t.Errorf("DecayStatus = %q, want cooling", got.DecayStatus)
	}
}

func TestSweepImmuneItemsCountedNotTransitioned(t *testing.T) {
	e, db, a := newTestEngine(t)

	f := &store.Fact{AgentID: a.ID, Content: "a frequently accessed old fact"}
	if err := db.CreateFact(f); err != nil {
		t.Fatalf("CreateFact: %v", err)
	}
	if _, err := db.Exec(`UPDATE facts SET created_at = ?, access_count = 5 WHERE id = ?`, daysAgoMillis(90), f.ID); err != nil {
		t.Fatalf("backdate and bump access: %v", err)
	}

	stats, err := e.Sweep(a.ID)
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if stats.ImmuneItems != 1 {
		t.Errorf("ImmuneItems = %d, want 1", stats.ImmuneItems)
	}
	if stats.TransitionedToCooling != 0 {
		t.Errorf("TransitionedToCooling = %d, want 0 (item should be immune)", stats.TransitionedToCooling)
	}

	got, err := db.GetFact(a.ID, f.ID)
	if err != nil {
		t.Fatalf("GetFact: %v", err)
	}
	if got.DecayStatus != "active" {
		t.Errorf("DecayStatus = %q, want active (immune item must not transition)", got.DecayStatus)
	}
}

func TestSweepCoolingToArchivedPastCutoff(t *testing.T) {
	e, db, a := newTestEngine(t)

	f := &store.Fact{AgentID: a.ID, Content: "a cooling fact ready to archive"}
	if err := db.CreateFact(f); err != nil {
		t.Fatalf("CreateFact: %v", err)
	}
	if _, err := db.Exec(`UPDATE facts SET decay_status = 'cooling', updated_at = ? WHERE id = ?`, daysAgoMillis(45), f.ID); err != nil {
		t.Fatalf("set cooling: %v", err)
	}

	stats, err := e.Sweep(a.ID)
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if stats.TransitionedToArchived != 1 {
		t.Errorf("TransitionedToArchived = %d, want 1", stats.TransitionedToArchived)
	}

	got, err := db.GetFact(a.ID, f.ID)
	if err != nil {
		t.Fatalf("GetFact: %v", err)
	}
	if got.DecayStatus != "archived" {
		t.Errorf("DecayStatus = %q, want archived", got.DecayStatus)
	}
}

func TestSweepDecisionsDoNotDecayByDefault(t *testing.T) {
	e, db, a := newTestEngine(t)

	d := &store.Decision{AgentID: a.ID, Title: "old decision", DecisionText: "keep as is"}
	if err := db.CreateDecision(d); err != nil {
		t.Fatalf("CreateDecision: %v", err)
	}
	if _, err := db.Exec(`UPDATE decisions SET created_at = ? WHERE id = ?`, daysAgoMillis(9999), d.ID); err != nil {
		t.Fatalf("backdate decision: %v", err)
	}

	if _, err := e.Sweep(a.ID); err != nil {
		t.Fatalf("Sweep: %v", err)
	}

	got, err := db.GetDecision(a.ID, d.ID)
	if err != nil {
		t.Fatalf("GetDecision: %v", err)
	}
	if got.DecayStatus != "active" {
		t.Errorf("DecayStatus = %q, want active (decisions have no default TTL)", got.DecayStatus)
	}
}

func TestReviveResetsToActiveAndBumpsAccess(t *testing.T) {
	e, db, a := newTestEngine(t)

	f := &store.Fact{AgentID: a.ID, Content: "an archived fact to revive"}
	if err := db.CreateFact(f); err != nil {
		t.Fatalf("CreateFact: %v", err)
	}
	if _, err := db.Exec(`UPDATE facts SET decay_status = 'archived' WHERE id = ?`, f.ID); err != nil {
		t.Fatalf("archive fact: %v", err)
	}

	if err := e.Revive("facts", f.ID); err != nil {
		t.Fatalf("Revive: %v", err)
	}

	got, err := db.GetFact(a.ID, f.ID)
	if err != nil {
		t.Fatalf("GetFact: %v", err)
	}
	if got.DecayStatus != "active" {
		t.Errorf("DecayStatus = %q, want active", got.DecayStatus)
	}
	if got.AccessCount != 1 {
		t.Errorf("AccessCount = %d, want 1", got.AccessCount)
	}
}

func TestSweepAllAgentsWhenAgentIDEmpty(t *testing.T) {
	e, db, _ := newTestEngine(t)

	other := &store.Agent{Slug: "decay-agent-2", DisplayName: "Other Agent"}
	if err := db.CreateAgent(other); err != nil {
		t.Fatalf("CreateAgent: %v", err)
	}
	f := &store.Fact{AgentID: other.ID, Content: "another agent's old fact"}
	if err := db.CreateFact(f); err != nil {
		t.Fatalf("CreateFact: %v", err)
	}
	if _, err := db.Exec(`UPDATE facts SET created_at = ? WHERE id = ?`, daysAgoMillis(90), f.ID); err != nil {
		t.Fatalf("backdate fact: %v", err)
	}

	stats, err := e.Sweep("")
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if stats.TransitionedToCooling != 1 {
		t.Errorf("TransitionedToCooling = %d, want 1 (sweep across all agents)", stats.TransitionedToCooling)
	}
}

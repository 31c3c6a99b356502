package store

import "testing"

func newTestAgent(t *testing.T, db *DB, slug string) *Agent {
	t.Helper()
	a := &Agent{Slug: slug, DisplayName: "Test Agent"}
	if err := db.CreateAgent(a); err != nil {
		t.Fatalf("CreateAgent: %v", err)
	}
	return a
}

func TestCreateAgentRejectsBadSlug(t *testing.T) {
	db, _ := OpenMemory()
	defer db.Close()

	a := &Agent{Slug: "abc!", DisplayName: "Bad Slug"}
	if err := db.CreateAgent(a); err == nil {
		t.Error("expected error for slug containing '!'")
	}

	good := &Agent{Slug: "a-b_c", DisplayName: "Good Slug"}
	if err := db.CreateAgent(good); err != nil {
		t.Errorf("unexpected error for valid slug: %v", err)
	}
}

func TestCreateAgentDuplicateSlugConflict(t *testing.T) {
	db, _ := OpenMemory()
	defer db.Close()

	newTestAgent(t, db, "dup-agent")
	err := db.CreateAgent(&Agent{Slug: "dup-agent", DisplayName: "Second"})
	if err != ErrConflict {
		t.Errorf("expected ErrConflict, got %v", err)
	}
}

func TestResolveAgentIDBySlugOrID(t *testing.T) {
	db, _ := OpenMemory()
	defer db.Close()

	a := newTestAgent(t, db, "resolvable")

	byID, err := db.ResolveAgentID(a.ID)
	if err != nil || byID != a.ID {
		t.Errorf("resolve by ID: got %q, %v", byID, err)
	}

	bySlug, err := db.ResolveAgentID("resolvable")
	if err != nil || bySlug != a.ID {
		t.Errorf("resolve by slug: got %q, %v", bySlug, err)
	}

	// Second lookup should hit the slug cache.
	bySlugAgain, err := db.ResolveAgentID("resolvable")
	if err != nil || bySlugAgain != a.ID {
		t.Errorf("cached resolve by slug: got %q, %v", bySlugAgain, err)
	}
}

func TestPatchCoreMemoryMergeAndDelete(t *testing.T) {
	db, _ := OpenMemory()
	defer db.Close()

	a := &Agent{Slug: "patchable", DisplayName: "Test Agent", CoreMemory: `{"name":"bot","likes":"go"}`}
	if err := db.CreateAgent(a); err != nil {
		t.Fatalf("CreateAgent: %v", err)
	}

	merged, err := db.PatchCoreMemory(a.ID, []byte(`{"likes":null,"mood":"curious"}`))
	if err != nil {
		t.Fatalf("PatchCoreMemory: %v", err)
	}
	if containsAny(merged, `"likes"`) {
		t.Errorf("expected likes key removed, got %s", merged)
	}
	if !containsAny(merged, `"mood":"curious"`) {
		t.Errorf("expected mood field present, got %s", merged)
	}
	if !containsAny(merged, `"name":"bot"`) {
		t.Errorf("expected name field preserved, got %s", merged)
	}
}

func TestCountsForAgent(t *testing.T) {
	db, _ := OpenMemory()
	defer db.Close()

	a := newTestAgent(t, db, "counted")
	if err := db.CreateFact(&Fact{AgentID: a.ID, Content: "the sky is blue"}); err != nil {
		t.Fatalf("CreateFact: %v", err)
	}

	counts, err := db.CountsForAgent(a.ID)
	if err != nil {
		t.Fatalf("CountsForAgent: %v", err)
	}
	if counts.Facts != 1 {
		t.Errorf("Facts = %d, want 1", counts.Facts)
	}
}

package store

import "testing"

func TestCreateProjectRejectsBadSlug(t *testing.T) {
	db, _ := OpenMemory()
	defer db.Close()
	a := newTestAgent(t, db, "project-agent")

	if err := db.CreateProject(&Project{AgentID: a.ID, Slug: "Bad Slug!", Name: "x"}); err == nil {
		t.Error("expected error for invalid slug")
	}
}

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Website v2":        "website-v2",
		"  Q3 Launch!!  ":   "q3-launch",
		"already-a-slug":    "already-a-slug",
		"___":               "",
		"Ops & Reliability": "ops-reliability",
	}
	for name, want := range cases {
		if got := Slugify(name); got != want {
			t.Errorf("Slugify(%q) = %q, want %q", name, got, want)
		}
	}
}

func TestCreateProjectDuplicateSlugPerAgentConflict(t *testing.T) {
	db, _ := OpenMemory()
	defer db.Close()
	a := newTestAgent(t, db, "project-agent-2")

	if err := db.CreateProject(&Project{AgentID: a.ID, Slug: "website-v2", Name: "Website v2"}); err != nil {
		t.Fatalf("CreateProject: %v", err)
	}
	err := db.CreateProject(&Project{AgentID: a.ID, Slug: "website-v2", Name: "Dup"})
	if err != ErrConflict {
		t.Errorf("expected ErrConflict, got %v", err)
	}
}

func TestCreateProjectSameSlugDifferentAgentsOK(t *testing.T) {
	db, _ := OpenMemory()
	defer db.Close()
	a1 := newTestAgent(t, db, "project-agent-3")
	a2 := newTestAgent(t, db, "project-agent-4")

	if err := db.CreateProject(&Project{AgentID: a1.ID, Slug: "shared-slug", Name: "A1's project"}); err != nil {
		t.Fatalf("CreateProject (a1): %v", err)
	}
	if err := db.CreateProject(&Project{AgentID: a2.ID, Slug: "shared-slug", Name: "A2's project"}); err != nil {
		t.Errorf("expected success for same slug under different agent, got %v", err)
	}
}

func TestResolveProjectIDBySlugOrID(t *testing.T) {
	db, _ := OpenMemory()
	defer db.Close()
	a := newTestAgent(t, db, "project-agent-5")

	p := &Project{AgentID: a.ID, Slug: "resolvable-proj", Name: "Resolvable"}
	if err := db.CreateProject(p); err != nil {
		t.Fatalf("CreateProject: %v", err)
	}

	byID, err := db.ResolveProjectID(a.ID, p.ID)
	if err != nil || byID != p.ID {
		t.Errorf("resolve by ID: got %q, %v", byID, err)
	}
	bySlug, err := db.ResolveProjectID(a.ID, "resolvable-proj")
	if err != nil || bySlug != p.ID {
		t.Errorf("resolve by slug: got %q, %v", bySlug, err)
	}
}

func TestUpdateProjectStatus(t *testing.T) {
	db, _ := OpenMemory()
	defer db.Close()
	a := newTestAgent(t, db, "project-agent-6")

	p := &Project{AgentID: a.ID, Slug: "archivable", Name: "Archivable"}
	if err := db.CreateProject(p); err != nil {
		t.Fatalf("CreateProject: %v", err)
	}
	if err := db.UpdateProjectStatus(p.ID, "archived"); err != nil {
		t.Fatalf("UpdateProjectStatus: %v", err)
	}

	got, err := db.GetProject(a.ID, p.ID)
	if err != nil {
		t.Fatalf("GetProject: %v", err)
	}
	if got.Status != "archived" {
		t.Errorf("Status = %q, want archived", got.Status)
	}
}

func TestDeleteProject(t *testing.T) {
	db, _ := OpenMemory()
	defer db.Close()
	a := newTestAgent(t, db, "project-agent-delete")

	p := &Project{AgentID: a.ID, Slug: "deletable-project", Name: "deletable project"}
	if err := db.CreateProject(p); err != nil {
		t.Fatalf("CreateProject: %v", err)
	}
	if err := db.DeleteProject(a.ID, p.ID); err != nil {
		t.Fatalf("DeleteProject: %v", err)
	}
	if _, err := db.GetProject(a.ID, p.ID); err != ErrNotFound {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

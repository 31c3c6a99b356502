package store

import (
	"database/sql"
	"testing"
)

func TestCreateTaskDefaults(t *testing.T) {
	db, _ := OpenMemory()
	defer db.Close()
	a := newTestAgent(t, db, "task-agent")

	task := &Task{AgentID: a.ID, Title: "write tests"}
	if err := db.CreateTask(task); err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if task.Status != "not_started" {
		t.Errorf("Status = %q, want not_started", task.Status)
	}
	if task.Priority != 50 {
		t.Errorf("Priority = %d, want 50", task.Priority)
	}
}

func TestCreateTaskRejectsInvalidStatus(t *testing.T) {
	db, _ := OpenMemory()
	defer db.Close()
	a := newTestAgent(t, db, "task-agent-2")

	task := &Task{AgentID: a.ID, Title: "bad status", Status: "in_limbo"}
	if err := db.CreateTask(task); err == nil {
		t.Error("expected error for invalid status")
	}
}

func TestUpdateTaskStatusRejectsInvalid(t *testing.T) {
	db, _ := OpenMemory()
	defer db.Close()
	a := newTestAgent(t, db, "task-agent-3")

	task := &Task{AgentID: a.ID, Title: "transition me"}
	if err := db.CreateTask(task); err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if err := db.UpdateTaskStatus(task.ID, "complete"); err != nil {
		t.Errorf("expected valid transition to succeed, got %v", err)
	}
	if err := db.UpdateTaskStatus(task.ID, "not_a_status"); err == nil {
		t.Error("expected error for invalid status transition")
	}
}

func TestListTasksFiltersByProjectAndStatus(t *testing.T) {
	db, _ := OpenMemory()
	defer db.Close()
	a := newTestAgent(t, db, "task-agent-4")

	p := &Project{AgentID: a.ID, Slug: "proj-a", Name: "Project A"}
	if err := db.CreateProject(p); err != nil {
		t.Fatalf("CreateProject: %v", err)
	}

	inProject := &Task{AgentID: a.ID, ProjectID: sql.NullString{String: p.ID, Valid: true}, Title: "scoped task"}
	if err := db.CreateTask(inProject); err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	unscoped := &Task{AgentID: a.ID, Title: "unscoped task"}
	if err := db.CreateTask(unscoped); err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if err := db.UpdateTaskStatus(inProject.ID, "complete"); err != nil {
		t.Fatalf("UpdateTaskStatus: %v", err)
	}

	scoped, err := db.ListTasks(a.ID, p.ID, "")
	if err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	if len(scoped) != 1 || scoped[0].ID != inProject.ID {
		t.Errorf("expected 1 task scoped to project, got %d", len(scoped))
	}

	completed, err := db.ListTasks(a.ID, "", "complete")
	if err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	if len(completed) != 1 || completed[0].ID != inProject.ID {
		t.Errorf("expected 1 completed task, got %d", len(completed))
	}
}

func TestDeleteTask(t *testing.T) {
	db, _ := OpenMemory()
	defer db.Close()
	a := newTestAgent(t, db, "task-agent-delete")

	task := &Task{AgentID: a.ID, Title: "deletable task"}
	if err := db.CreateTask(task); err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if err := db.DeleteTask(a.ID, task.ID); err != nil {
		t.Fatalf("DeleteTask: %v", err)
	}
	if _, err := db.GetTask(a.ID, task.ID); err != ErrNotFound {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

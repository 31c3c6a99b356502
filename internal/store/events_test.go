package store

import "testing"

func TestCreateEventDefaults(t *testing.T) {
	db, _ := OpenMemory()
	defer db.Close()
	a := newTestAgent(t, db, "event-agent")

	e := &Event{AgentID: a.ID, Title: "deploy finished", EventType: "deploy"}
	if err := db.CreateEvent(e); err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}
	if e.Severity != "info" {
		t.Errorf("Severity = %q, want info", e.Severity)
	}
	if e.OccurredAt == 0 {
		t.Error("expected OccurredAt to default to now")
	}
}

func TestCreateEventRejectsInvalidSeverity(t *testing.T) {
	db, _ := OpenMemory()
	defer db.Close()
	a := newTestAgent(t, db, "event-agent-2")

	e := &Event{AgentID: a.ID, Title: "bad severity", EventType: "incident", Severity: "catastrophic"}
	if err := db.CreateEvent(e); err == nil {
		t.Error("expected error for invalid severity")
	}
}

func TestResolveEventSetsOutcome(t *testing.T) {
	db, _ := OpenMemory()
	defer db.Close()
	a := newTestAgent(t, db, "event-agent-3")

	e := &Event{AgentID: a.ID, Title: "outage", EventType: "incident", Severity: "critical"}
	if err := db.CreateEvent(e); err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}
	if err := db.ResolveEvent(e.ID, "mitigated via rollback"); err != nil {
		t.Fatalf("ResolveEvent: %v", err)
	}

	got, err := db.GetEvent(a.ID, e.ID)
	if err != nil {
		t.Fatalf("GetEvent: %v", err)
	}
	if !got.ResolvedAt.Valid {
		t.Error("expected ResolvedAt to be set")
	}
	if !got.Outcome.Valid || got.Outcome.String != "mitigated via rollback" {
		t.Errorf("Outcome = %v, want mitigated via rollback", got.Outcome)
	}
}

func TestListEventsFiltersBySeverity(t *testing.T) {
	db, _ := OpenMemory()
	defer db.Close()
	a := newTestAgent(t, db, "event-agent-4")

	if err := db.CreateEvent(&Event{AgentID: a.ID, Title: "info event", EventType: "note", Severity: "info"}); err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}
	if err := db.CreateEvent(&Event{AgentID: a.ID, Title: "critical event", EventType: "incident", Severity: "critical"}); err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}

	critical, err := db.ListEvents(a.ID, "", "critical")
	if err != nil {
		t.Fatalf("ListEvents: %v", err)
	}
	if len(critical) != 1 || critical[0].Severity != "critical" {
		t.Errorf("expected 1 critical event, got %d", len(critical))
	}
}

func TestDeleteEvent(t *testing.T) {
	db, _ := OpenMemory()
	defer db.Close()
	a := newTestAgent(t, db, "event-agent-delete")

	e := &Event{AgentID: a.ID, Title: "deletable event", EventType: "note", Severity: "info"}
	if err := db.CreateEvent(e); err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}
	if err := db.DeleteEvent(a.ID, e.ID); err != nil {
		t.Fatalf("DeleteEvent: %v", err)
	}
	if _, err := db.GetEvent(a.ID, e.ID); err != ErrNotFound {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

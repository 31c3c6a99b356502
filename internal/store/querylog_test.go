package store

import "testing"

func TestLogQueryDefaultsMetadata(t *testing.T) {
	db, _ := OpenMemory()
	defer db.Close()
	a := newTestAgent(t, db, "qlog-agent")

	e := &QueryLogEntry{AgentID: a.ID, Endpoint: "recall", QueryText: "deploy status", LatencyMS: 12}
	if err := db.LogQuery(e); err != nil {
		t.Fatalf("LogQuery: %v", err)
	}
	if e.Metadata != "{}" {
		t.Errorf("Metadata = %q, want {}", e.Metadata)
	}
}

func TestPruneQueryLogDeletesOlderRows(t *testing.T) {
	db, _ := OpenMemory()
	defer db.Close()
	a := newTestAgent(t, db, "qlog-agent-2")

	if err := db.LogQuery(&QueryLogEntry{AgentID: a.ID, Endpoint: "search", QueryText: "q"}); err != nil {
		t.Fatalf("LogQuery: %v", err)
	}

	n, err := db.PruneQueryLog(nowMillis() + 1000)
	if err != nil {
		t.Fatalf("PruneQueryLog: %v", err)
	}
	if n != 1 {
		t.Errorf("pruned = %d, want 1", n)
	}

	remaining, err := db.ListRecentQueries(a.ID, 0)
	if err != nil {
		t.Fatalf("ListRecentQueries: %v", err)
	}
	if len(remaining) != 0 {
		t.Errorf("expected 0 remaining rows, got %d", len(remaining))
	}
}

func TestStatsForAgentAggregatesByEndpoint(t *testing.T) {
	db, _ := OpenMemory()
	defer db.Close()
	a := newTestAgent(t, db, "qlog-agent-3")

	if err := db.LogQuery(&QueryLogEntry{AgentID: a.ID, Endpoint: "recall", QueryText: "a", LatencyMS: 10}); err != nil {
		t.Fatalf("LogQuery: %v", err)
	}
	if err := db.LogQuery(&QueryLogEntry{AgentID: a.ID, Endpoint: "recall", QueryText: "b", LatencyMS: 20}); err != nil {
		t.Fatalf("LogQuery: %v", err)
	}
	if err := db.LogQuery(&QueryLogEntry{AgentID: a.ID, Endpoint: "search", QueryText: "c", LatencyMS: 30}); err != nil {
		t.Fatalf("LogQuery: %v", err)
	}

	stats, err := db.StatsForAgent(a.ID)
	if err != nil {
		t.Fatalf("StatsForAgent: %v", err)
	}
	if stats.TotalQueries != 3 {
		t.Errorf("TotalQueries = %d, want 3", stats.TotalQueries)
	}
	if stats.QueriesByType["recall"] != 2 {
		t.Errorf("recall count = %d, want 2", stats.QueriesByType["recall"])
	}
	if stats.QueriesByType["search"] != 1 {
		t.Errorf("search count = %d, want 1", stats.QueriesByType["search"])
	}
}

package analytics

import (
	"testing"

	"github.com/hexmem/hexmem/internal/store"
)

func newTestLogger(t *testing.T) (*Logger, *store.DB, *store.Agent) {
	t.Helper()
	db, err := store.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	a := &store.Agent{Slug: "analytics-agent", DisplayName: "Analytics Agent"}
	if err := db.CreateAgent(a); err != nil {
		t.Fatalf("CreateAgent: %v", err)
	}
	return &Logger{DB: db}, db, a
}

func TestLogAppendsQueryRow(t *testing.T) {
	l, db, a := newTestLogger(t)

	l.Log(a.ID, "recall", "find my project status", 15, 200)

	rows, err := db.ListRecentQueries(a.ID, 0)
	if err != nil {
		t.Fatalf("ListRecentQueries: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("len(rows) = %d, want 1", len(rows))
	}
	if rows[0].Endpoint != "recall" || rows[0].LatencyMS != 15 {
		t.Errorf("row = %+v, want endpoint recall and latency 15", rows[0])
	}
}

func TestBuildSummaryAggregatesStatsAndRecent(t *testing.T) {
	l, _, a := newTestLogger(t)

	l.Log(a.ID, "recall", "q1", 10, 200)
	l.Log(a.ID, "search", "q2", 20, 200)

	summary, err := l.BuildSummary(a.ID)
	if err != nil {
		t.Fatalf("BuildSummary: %v", err)
	}
	if summary.Stats.TotalQueries != 2 {
		t.Errorf("TotalQueries = %d, want 2", summary.Stats.TotalQueries)
	}
	if len(summary.Recent) != 2 {
		t.Errorf("len(Recent) = %d, want 2", len(summary.Recent))
	}
}

func TestStartPruneTickerPrunesImmediatelyOnCall(t *testing.T) {
	l, db, a := newTestLogger(t)

	entry := &store.QueryLogEntry{AgentID: a.ID, Endpoint: "recall", QueryText: "stale entry"}
	if err := db.LogQuery(entry); err != nil {
		t.Fatalf("LogQuery: %v", err)
	}
	// Backdate well past the prune retention window.
	if _, err := db.Exec(`UPDATE query_log SET created_at = 0 WHERE id = ?`, entry.ID); err != nil {
		t.Fatalf("backdate query log row: %v", err)
	}

	stop := l.StartPruneTicker()
	defer stop()

	remaining, err := db.ListRecentQueries(a.ID, 0)
	if err != nil {
		t.Fatalf("ListRecentQueries: %v", err)
	}
	if len(remaining) != 0 {
		t.Errorf("expected stale row pruned immediately on start, got %d remaining", len(remaining))
	}
}

package store

import "testing"

func TestOpenMemory(t *testing.T) {
	db, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	defer db.Close()

	if db.Path != ":memory:" {
		t.Errorf("Path = %q, want :memory:", db.Path)
	}
	if err := db.Ping(); err != nil {
		t.Errorf("Ping: %v", err)
	}
}

func TestMigrationsApplied(t *testing.T) {
	db, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	defer db.Close()

	tables := []string{
		"agents", "sessions", "session_messages", "facts", "decisions",
		"projects", "tasks", "events", "memory_edges", "decay_policies",
		"api_keys", "query_log", "_migrations",
	}
	for _, table := range tables {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&name)
		if err != nil {
			t.Errorf("table %q not found: %v", table, err)
		}
	}
}

func TestMigrationsIdempotentOnReopen(t *testing.T) {
	db, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	defer db.Close()

	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM _migrations`).Scan(&count); err != nil {
		t.Fatalf("count migrations: %v", err)
	}
	if err := db.migrate(); err != nil {
		t.Fatalf("re-migrate: %v", err)
	}
	var count2 int
	if err := db.QueryRow(`SELECT COUNT(*) FROM _migrations`).Scan(&count2); err != nil {
		t.Fatalf("count migrations: %v", err)
	}
	if count != count2 {
		t.Errorf("migration count changed on re-migrate: %d -> %d", count, count2)
	}
}

func TestSeededDecayPolicies(t *testing.T) {
	db, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	defer db.Close()

	p, err := db.ResolvePolicy("nonexistent-agent", "decision")
	if err != nil {
		t.Fatalf("ResolvePolicy: %v", err)
	}
	if p.TTLDays.Valid {
		t.Errorf("decision default policy should have NULL ttl_days, got %v", p.TTLDays)
	}
}

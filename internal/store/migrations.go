package store

import "fmt"

type migration struct {
	Name string
	SQL  string
}

// migrations apply in order; the ledger records each by Name so re-running
// Open against an already-migrated database is a no-op (idempotent on restart).
var migrations = []migration{
	{
		Name: "0001_agents",
		SQL: `
CREATE TABLE agents (
    id           TEXT PRIMARY KEY,
    slug         TEXT NOT NULL UNIQUE,
    display_name TEXT NOT NULL,
    description  TEXT,
    core_memory  TEXT NOT NULL DEFAULT '{}',
    config       TEXT NOT NULL DEFAULT '{}',
    created_at   INTEGER NOT NULL,
    updated_at   INTEGER NOT NULL
);
`,
	},
	{
		Name: "0002_sessions",
		SQL: `
CREATE TABLE sessions (
    id          TEXT PRIMARY KEY,
    agent_id    TEXT NOT NULL REFERENCES agents(id),
    external_id TEXT,
    metadata    TEXT NOT NULL DEFAULT '{}',
    started_at  INTEGER NOT NULL,
    ended_at    INTEGER,
    summary     TEXT
);
CREATE INDEX idx_sessions_agent ON sessions(agent_id);
`,
	},
	{
		Name: "0003_session_messages",
		SQL: `
CREATE TABLE session_messages (
    id               TEXT PRIMARY KEY,
    session_id       TEXT NOT NULL REFERENCES sessions(id),
    agent_id         TEXT NOT NULL REFERENCES agents(id),
    role             TEXT NOT NULL CHECK (role IN ('user','assistant','system','tool')),
    content          TEXT NOT NULL,
    embedding        BLOB,
    embedding_model  TEXT,
    decay_status     TEXT NOT NULL DEFAULT 'active' CHECK (decay_status IN ('active','cooling','archived')),
    access_count     INTEGER NOT NULL DEFAULT 0,
    last_accessed_at INTEGER,
    created_at       INTEGER NOT NULL
);
CREATE INDEX idx_messages_session ON session_messages(session_id, created_at);
CREATE INDEX idx_messages_agent_status ON session_messages(agent_id, decay_status);
`,
	},
	{
		Name: "0004_facts",
		SQL: `
CREATE TABLE facts (
    id               TEXT PRIMARY KEY,
    agent_id         TEXT NOT NULL REFERENCES agents(id),
    content          TEXT NOT NULL,
    subject          TEXT,
    confidence       REAL NOT NULL DEFAULT 1.0,
    source           TEXT,
    tags             TEXT NOT NULL DEFAULT '[]',
    embedding        BLOB,
    embedding_model  TEXT,
    valid_from       INTEGER NOT NULL,
    valid_until      INTEGER,
    superseded_by    TEXT,
    session_id       TEXT REFERENCES sessions(id),
    decay_status     TEXT NOT NULL DEFAULT 'active' CHECK (decay_status IN ('active','cooling','archived')),
    access_count     INTEGER NOT NULL DEFAULT 0,
    last_accessed_at INTEGER,
    created_at       INTEGER NOT NULL,
    updated_at       INTEGER NOT NULL
);
CREATE INDEX idx_facts_agent_status ON facts(agent_id, decay_status);
`,
	},
	{
		Name: "0005_decisions",
		SQL: `
CREATE TABLE decisions (
    id               TEXT PRIMARY KEY,
    agent_id         TEXT NOT NULL REFERENCES agents(id),
    title            TEXT NOT NULL,
    decision         TEXT NOT NULL,
    rationale        TEXT,
    alternatives     TEXT NOT NULL DEFAULT '[]',
    context          TEXT,
    session_id       TEXT REFERENCES sessions(id),
    tags             TEXT NOT NULL DEFAULT '[]',
    embedding        BLOB,
    embedding_model  TEXT,
    decay_status     TEXT NOT NULL DEFAULT 'active' CHECK (decay_status IN ('active','cooling','archived')),
    access_count     INTEGER NOT NULL DEFAULT 0,
    last_accessed_at INTEGER,
    created_at       INTEGER NOT NULL,
    updated_at       INTEGER NOT NULL
);
CREATE INDEX idx_decisions_agent_status ON decisions(agent_id, decay_status);
`,
	},
	{
		Name: "0006_projects",
		SQL: `
CREATE TABLE projects (
    id          TEXT PRIMARY KEY,
    agent_id    TEXT NOT NULL REFERENCES agents(id),
    slug        TEXT NOT NULL,
    name        TEXT NOT NULL,
    description TEXT,
    status      TEXT NOT NULL DEFAULT 'active' CHECK (status IN ('active','paused','completed','archived')),
    tags        TEXT NOT NULL DEFAULT '[]',
    embedding   BLOB,
    metadata    TEXT NOT NULL DEFAULT '{}',
    created_at  INTEGER NOT NULL,
    updated_at  INTEGER NOT NULL,
    UNIQUE (agent_id, slug)
);
`,
	},
	{
		Name: "0007_tasks",
		SQL: `
CREATE TABLE tasks (
    id               TEXT PRIMARY KEY,
    agent_id         TEXT NOT NULL REFERENCES agents(id),
    project_id       TEXT REFERENCES projects(id),
    title            TEXT NOT NULL,
    description      TEXT,
    status           TEXT NOT NULL DEFAULT 'not_started'
                     CHECK (status IN ('not_started','in_progress','blocked','complete','cancelled')),
    priority         INTEGER NOT NULL DEFAULT 50 CHECK (priority BETWEEN 1 AND 100),
    assignee         TEXT,
    due_date         INTEGER,
    blocked_by       TEXT,
    session_id       TEXT REFERENCES sessions(id),
    tags             TEXT NOT NULL DEFAULT '[]',
    embedding        BLOB,
    embedding_model  TEXT,
    decay_status     TEXT NOT NULL DEFAULT 'active' CHECK (decay_status IN ('active','cooling','archived')),
    access_count     INTEGER NOT NULL DEFAULT 0,
    last_accessed_at INTEGER,
    created_at       INTEGER NOT NULL,
    updated_at       INTEGER NOT NULL
);
CREATE INDEX idx_tasks_agent_status ON tasks(agent_id, decay_status);
CREATE INDEX idx_tasks_project ON tasks(project_id);
`,
	},
	{
		Name: "0008_events",
		SQL: `
CREATE TABLE events (
    id               TEXT PRIMARY KEY,
    agent_id         TEXT NOT NULL REFERENCES agents(id),
    project_id       TEXT REFERENCES projects(id),
    title            TEXT NOT NULL,
    event_type       TEXT NOT NULL,
    description      TEXT,
    outcome          TEXT,
    caused_by        TEXT,
    severity         TEXT NOT NULL DEFAULT 'info' CHECK (severity IN ('info','warning','critical')),
    session_id       TEXT REFERENCES sessions(id),
    tags             TEXT NOT NULL DEFAULT '[]',
    embedding        BLOB,
    embedding_model  TEXT,
    occurred_at      INTEGER NOT NULL,
    resolved_at      INTEGER,
    decay_status     TEXT NOT NULL DEFAULT 'active' CHECK (decay_status IN ('active','cooling','archived')),
    access_count     INTEGER NOT NULL DEFAULT 0,
    last_accessed_at INTEGER,
    created_at       INTEGER NOT NULL,
    updated_at       INTEGER NOT NULL
);
CREATE INDEX idx_events_agent_status ON events(agent_id, decay_status);
CREATE INDEX idx_events_project ON events(project_id);
`,
	},
	{
		Name: "0009_edges",
		SQL: `
CREATE TABLE memory_edges (
    id          TEXT PRIMARY KEY,
    agent_id    TEXT NOT NULL REFERENCES agents(id),
    source_type TEXT NOT NULL,
    source_id   TEXT NOT NULL,
    target_type TEXT NOT NULL,
    target_id   TEXT NOT NULL,
    relation    TEXT NOT NULL,
    weight      REAL NOT NULL DEFAULT 1.0,
    metadata    TEXT NOT NULL DEFAULT '{}',
    created_at  INTEGER NOT NULL,
    updated_at  INTEGER NOT NULL,
    UNIQUE (agent_id, source_type, source_id, target_type, target_id, relation)
);
CREATE INDEX idx_edges_source ON memory_edges(agent_id, source_type, source_id);
CREATE INDEX idx_edges_target ON memory_edges(agent_id, target_type, target_id);
`,
	},
	{
		Name: "0010_decay_policies",
		SQL: `
CREATE TABLE decay_policies (
    id            TEXT PRIMARY KEY,
    agent_id      TEXT REFERENCES agents(id),
    memory_type   TEXT NOT NULL,
    ttl_days      INTEGER,
    access_boost  REAL NOT NULL DEFAULT 0,
    min_accesses  INTEGER NOT NULL DEFAULT 3,
    UNIQUE (agent_id, memory_type)
);
-- Global defaults (agent_id NULL): decisions and tasks do not decay by default.
INSERT INTO decay_policies (id, agent_id, memory_type, ttl_days, access_boost, min_accesses) VALUES
    ('dp_default_session_message', NULL, 'session_message', 30, 0, 3),
    ('dp_default_fact',            NULL, 'fact',            60, 0, 3),
    ('dp_default_decision',        NULL, 'decision',        NULL, 0, 3),
    ('dp_default_task',            NULL, 'task',            NULL, 0, 3),
    ('dp_default_event',           NULL, 'event',           90, 0, 3);
`,
	},
	{
		Name: "0011_api_keys",
		SQL: `
CREATE TABLE api_keys (
    id            TEXT PRIMARY KEY,
    key_hash      TEXT NOT NULL UNIQUE,
    key_prefix    TEXT NOT NULL,
    name          TEXT NOT NULL,
    agent_id      TEXT REFERENCES agents(id),
    permissions   TEXT NOT NULL DEFAULT '[]',
    rate_limit    INTEGER NOT NULL DEFAULT 0,
    expires_at    INTEGER,
    last_used_at  INTEGER,
    revoked_at    INTEGER,
    created_at    INTEGER NOT NULL
);
`,
	},
	{
		Name: "0012_query_log",
		SQL: `
CREATE TABLE query_log (
    id         TEXT PRIMARY KEY,
    agent_id   TEXT,
    endpoint   TEXT NOT NULL,
    query_text TEXT,
    latency_ms INTEGER NOT NULL,
    metadata   TEXT NOT NULL DEFAULT '{}',
    created_at INTEGER NOT NULL
);
CREATE INDEX idx_query_log_created ON query_log(created_at);
`,
	},
}

func (db *DB) migrate() error {
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS _migrations (
			name       TEXT PRIMARY KEY,
			applied_at INTEGER NOT NULL
		)
	`); err != nil {
		return fmt.Errorf("create _migrations: %w", err)
	}

	for _, m := range migrations {
		var count int
		if err := db.QueryRow("SELECT COUNT(*) FROM _migrations WHERE name = ?", m.Name).Scan(&count); err != nil {
			return fmt.Errorf("check migration %s: %w", m.Name, err)
		}
		if count > 0 {
			continue
		}

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %s: %w", m.Name, err)
		}

		if _, err := tx.Exec(m.SQL); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %s: %w", m.Name, err)
		}
		if _, err := tx.Exec("INSERT INTO _migrations (name, applied_at) VALUES (?, ?)", m.Name, nowMillis()); err != nil {
			tx.Rollback()
			return fmt.Errorf("record migration %s: %w", m.Name, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %s: %w", m.Name, err)
		}
	}
	return nil
}

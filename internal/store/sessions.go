package store

import (
	"database/sql"
	"fmt"
)

// Session is a bounded window of interaction with an agent, the unit that
// session_messages and extraction group against (§3).
type Session struct {
	ID         string
	AgentID    string
	ExternalID string
	Metadata   string // JSON object text
	StartedAt  int64
	EndedAt    sql.NullInt64
	Summary    sql.NullString
}

// CreateSession starts a new session for an agent.
func (db *DB) CreateSession(s *Session) error {
	if s.Metadata == "" {
		s.Metadata = "{}"
	}
	s.ID = NewID("session")
	s.StartedAt = nowMillis()

	_, err := db.Exec(`
		INSERT INTO sessions (id, agent_id, external_id, metadata, started_at)
		VALUES (?, ?, ?, ?, ?)
	`, s.ID, s.AgentID, nullIfEmpty(s.ExternalID), s.Metadata, s.StartedAt)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

// GetSession returns a session by id.
func (db *DB) GetSession(id string) (*Session, error) {
	var s Session
	var ext sql.NullString
	err := db.QueryRow(`
		SELECT id, agent_id, external_id, metadata, started_at, ended_at, summary
		FROM sessions WHERE id = ?
	`, id).Scan(&s.ID, &s.AgentID, &ext, &s.Metadata, &s.StartedAt, &s.EndedAt, &s.Summary)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	s.ExternalID = ext.String
	return &s, nil
}

// EndSession marks a session ended and records its summary, generated by
// the extraction pipeline at session-close time (§4.3).
func (db *DB) EndSession(id, summary string) error {
	_, err := db.Exec(`
		UPDATE sessions SET ended_at = ?, summary = ? WHERE id = ?
	`, nowMillis(), summary, id)
	if err != nil {
		return fmt.Errorf("end session: %w", err)
	}
	return nil
}

// ListSessions returns sessions for an agent, most recent first.
func (db *DB) ListSessions(agentID string, limit int) ([]Session, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.Query(`
		SELECT id, agent_id, external_id, metadata, started_at, ended_at, summary
		FROM sessions WHERE agent_id = ? ORDER BY started_at DESC LIMIT ?
	`, agentID, limit)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var out []Session
	for rows.Next() {
		var s Session
		var ext sql.NullString
		if err := rows.Scan(&s.ID, &s.AgentID, &ext, &s.Metadata, &s.StartedAt, &s.EndedAt, &s.Summary); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		s.ExternalID = ext.String
		out = append(out, s)
	}
	return out, rows.Err()
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

package store

import (
	"database/sql"
	"fmt"
)

// Event is a timestamped occurrence — an incident, a milestone, a notable
// side effect — optionally attached to a project (§3).
type Event struct {
	ID             string
	AgentID        string
	ProjectID      sql.NullString
	Title          string
	EventType      string
	Description    sql.NullString
	Outcome        sql.NullString
	CausedBy       sql.NullString
	Severity       string
	SessionID      sql.NullString
	Tags           string // JSON array text
	Embedding      []byte
	EmbeddingModel sql.NullString
	OccurredAt     int64
	ResolvedAt     sql.NullInt64
	DecayStatus    string
	AccessCount    int
	LastAccessedAt sql.NullInt64
	CreatedAt      int64
	UpdatedAt      int64
}

var validSeverities = map[string]bool{"info": true, "warning": true, "critical": true}

// CreateEvent inserts a new event.
func (db *DB) CreateEvent(e *Event) error {
	if e.Severity == "" {
		e.Severity = "info"
	}
	if !validSeverities[e.Severity] {
		return fmt.Errorf("invalid severity %q", e.Severity)
	}
	if e.Tags == "" {
		e.Tags = "[]"
	}
	now := nowMillis()
	e.ID = NewID("event")
	e.CreatedAt, e.UpdatedAt = now, now
	if e.OccurredAt == 0 {
		e.OccurredAt = now
	}
	e.DecayStatus = "active"

	_, err := db.Exec(`
		INSERT INTO events (id, agent_id, project_id, title, event_type, description, outcome, caused_by,
		                    severity, session_id, tags, occurred_at, decay_status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 'active', ?, ?)
	`, e.ID, e.AgentID, e.ProjectID, e.Title, e.EventType, e.Description, e.Outcome, e.CausedBy,
		e.Severity, e.SessionID, e.Tags, e.OccurredAt, e.CreatedAt, e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create event: %w", err)
	}
	return nil
}

// GetEvent returns an event by id, scoped to an agent.
func (db *DB) GetEvent(agentID, id string) (*Event, error) {
	ev := &Event{}
	err := db.QueryRow(`
		SELECT id, agent_id, project_id, title, event_type, description, outcome, caused_by, severity,
		       session_id, tags, embedding, embedding_model, occurred_at, resolved_at, decay_status,
		       access_count, last_accessed_at, created_at, updated_at
		FROM events WHERE agent_id = ? AND id = ?
	`, agentID, id).Scan(&ev.ID, &ev.AgentID, &ev.ProjectID, &ev.Title, &ev.EventType, &ev.Description,
		&ev.Outcome, &ev.CausedBy, &ev.Severity, &ev.SessionID, &ev.Tags, &ev.Embedding, &ev.EmbeddingModel,
		&ev.OccurredAt, &ev.ResolvedAt, &ev.DecayStatus, &ev.AccessCount, &ev.LastAccessedAt,
		&ev.CreatedAt, &ev.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get event: %w", err)
	}
	return ev, nil
}

// SetEventEmbedding persists a computed embedding for an event.
func (db *DB) SetEventEmbedding(id string, vec []byte, model string) error {
	_, err := db.Exec(`UPDATE events SET embedding = ?, embedding_model = ? WHERE id = ?`, vec, model, id)
	if err != nil {
		return fmt.Errorf("set event embedding: %w", err)
	}
	return nil
}

// ResolveEvent stamps resolved_at and an outcome on an event.
func (db *DB) ResolveEvent(id, outcome string) error {
	now := nowMillis()
	_, err := db.Exec(`UPDATE events SET resolved_at = ?, outcome = ?, updated_at = ? WHERE id = ?`,
		now, outcome, now, id)
	if err != nil {
		return fmt.Errorf("resolve event: %w", err)
	}
	return nil
}

// DeleteEvent removes an event by id, scoped to an agent.
func (db *DB) DeleteEvent(agentID, id string) error {
	res, err := db.Exec(`DELETE FROM events WHERE agent_id = ? AND id = ?`, agentID, id)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListEvents returns events for an agent, optionally filtered by project and/or severity.
func (db *DB) ListEvents(agentID, projectID, severity string) ([]Event, error) {
	query := `
		SELECT id, agent_id, project_id, title, event_type, description, outcome, caused_by, severity,
		       session_id, tags, embedding, embedding_model, occurred_at, resolved_at, decay_status,
		       access_count, last_accessed_at, created_at, updated_at
		FROM events WHERE agent_id = ?`
	args := []any{agentID}
	if projectID != "" {
		query += " AND project_id = ?"
		args = append(args, projectID)
	}
	if severity != "" {
		query += " AND severity = ?"
		args = append(args, severity)
	}
	query += " ORDER BY occurred_at DESC"

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var ev Event
		if err := rows.Scan(&ev.ID, &ev.AgentID, &ev.ProjectID, &ev.Title, &ev.EventType, &ev.Description,
			&ev.Outcome, &ev.CausedBy, &ev.Severity, &ev.SessionID, &ev.Tags, &ev.Embedding, &ev.EmbeddingModel,
			&ev.OccurredAt, &ev.ResolvedAt, &ev.DecayStatus, &ev.AccessCount, &ev.LastAccessedAt,
			&ev.CreatedAt, &ev.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}

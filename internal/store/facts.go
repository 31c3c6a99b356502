package store

import (
	"database/sql"
	"fmt"
)

// Fact is a durable, independently verifiable statement about the world or
// the agent's domain, superseding or superseded-by other facts over time (§3).
type Fact struct {
	ID             string
	AgentID        string
	Content        string
	Subject        sql.NullString
	Confidence     float64
	Source         sql.NullString
	Tags           string // JSON array text
	Embedding      []byte
	EmbeddingModel sql.NullString
	ValidFrom      int64
	ValidUntil     sql.NullInt64
	SupersededBy   sql.NullString
	SessionID      sql.NullString
	DecayStatus    string
	AccessCount    int
	LastAccessedAt sql.NullInt64
	CreatedAt      int64
	UpdatedAt      int64
}

// CreateFact inserts a new fact. Confidence defaults to 1.0 and tags to "[]".
func (db *DB) CreateFact(f *Fact) error {
	if f.Tags == "" {
		f.Tags = "[]"
	}
	if f.Confidence == 0 {
		f.Confidence = 1.0
	}
	now := nowMillis()
	f.ID = NewID("fact")
	f.CreatedAt, f.UpdatedAt = now, now
	if f.ValidFrom == 0 {
		f.ValidFrom = now
	}
	f.DecayStatus = "active"

	_, err := db.Exec(`
		INSERT INTO facts (id, agent_id, content, subject, confidence, source, tags,
		                   valid_from, session_id, decay_status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 'active', ?, ?)
	`, f.ID, f.AgentID, f.Content, f.Subject, f.Confidence, f.Source, f.Tags,
		f.ValidFrom, f.SessionID, f.CreatedAt, f.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create fact: %w", err)
	}
	return nil
}

// GetFact returns a fact by id, scoped to an agent.
func (db *DB) GetFact(agentID, id string) (*Fact, error) {
	f := &Fact{}
	err := db.QueryRow(`
		SELECT id, agent_id, content, subject, confidence, source, tags, embedding, embedding_model,
		       valid_from, valid_until, superseded_by, session_id, decay_status, access_count,
		       last_accessed_at, created_at, updated_at
		FROM facts WHERE agent_id = ? AND id = ?
	`, agentID, id).Scan(&f.ID, &f.AgentID, &f.Content, &f.Subject, &f.Confidence, &f.Source, &f.Tags,
		&f.Embedding, &f.EmbeddingModel, &f.ValidFrom, &f.ValidUntil, &f.SupersededBy, &f.SessionID,
		&f.DecayStatus, &f.AccessCount, &f.LastAccessedAt, &f.CreatedAt, &f.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get fact: %w", err)
	}
	return f, nil
}

// SetFactEmbedding persists a computed embedding for a fact.
func (db *DB) SetFactEmbedding(id string, vec []byte, model string) error {
	_, err := db.Exec(`UPDATE facts SET embedding = ?, embedding_model = ? WHERE id = ?`, vec, model, id)
	if err != nil {
		return fmt.Errorf("set fact embedding: %w", err)
	}
	return nil
}

// SupersedeFact marks oldID superseded by newID and sets valid_until, used
// when a new fact contradicts or refines a prior one (§4.4 dedup/supersede path).
func (db *DB) SupersedeFact(oldID, newID string) error {
	_, err := db.Exec(`UPDATE facts SET superseded_by = ?, valid_until = ?, updated_at = ? WHERE id = ?`,
		newID, nowMillis(), nowMillis(), oldID)
	if err != nil {
		return fmt.Errorf("supersede fact: %w", err)
	}
	return nil
}

// DeleteFact removes a fact by id, scoped to an agent.
func (db *DB) DeleteFact(agentID, id string) error {
	res, err := db.Exec(`DELETE FROM facts WHERE agent_id = ? AND id = ?`, agentID, id)
	if err != nil {
		return fmt.Errorf("delete fact: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListFactsForDedup returns active facts for an agent eligible as dedup
// candidates, optionally scoped by subject to narrow the comparison set.
func (db *DB) ListFactsForDedup(agentID, subject string) ([]Fact, error) {
	query := `
		SELECT id, agent_id, content, subject, confidence, source, tags, embedding, embedding_model,
		       valid_from, valid_until, superseded_by, session_id, decay_status, access_count,
		       last_accessed_at, created_at, updated_at
		FROM facts WHERE agent_id = ? AND decay_status != 'archived' AND superseded_by IS NULL`
	args := []any{agentID}
	if subject != "" {
		query += " AND subject = ?"
		args = append(args, subject)
	}
	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list facts for dedup: %w", err)
	}
	defer rows.Close()

	var out []Fact
	for rows.Next() {
		var f Fact
		if err := rows.Scan(&f.ID, &f.AgentID, &f.Content, &f.Subject, &f.Confidence, &f.Source, &f.Tags,
			&f.Embedding, &f.EmbeddingModel, &f.ValidFrom, &f.ValidUntil, &f.SupersededBy, &f.SessionID,
			&f.DecayStatus, &f.AccessCount, &f.LastAccessedAt, &f.CreatedAt, &f.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan fact: %w", err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

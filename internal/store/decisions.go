package store

import (
	"database/sql"
	"fmt"
)

// Decision is a recorded choice with its rationale and rejected
// alternatives — decays slowest of the type hierarchy by default, per the
// seeded 0010_decay_policies row with ttl_days NULL (§3, §4.9).
type Decision struct {
	ID             string
	AgentID        string
	Title          string
	DecisionText   string
	Rationale      sql.NullString
	Alternatives   string // JSON array text
	Context        sql.NullString
	SessionID      sql.NullString
	Tags           string // JSON array text
	Embedding      []byte
	EmbeddingModel sql.NullString
	DecayStatus    string
	AccessCount    int
	LastAccessedAt sql.NullInt64
	CreatedAt      int64
	UpdatedAt      int64
}

// CreateDecision inserts a new decision record.
func (db *DB) CreateDecision(d *Decision) error {
	if d.Alternatives == "" {
		d.Alternatives = "[]"
	}
	if d.Tags == "" {
		d.Tags = "[]"
	}
	now := nowMillis()
	d.ID = NewID("decision")
	d.CreatedAt, d.UpdatedAt = now, now
	d.DecayStatus = "active"

	_, err := db.Exec(`
		INSERT INTO decisions (id, agent_id, title, decision, rationale, alternatives, context,
		                       session_id, tags, decay_status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 'active', ?, ?)
	`, d.ID, d.AgentID, d.Title, d.DecisionText, d.Rationale, d.Alternatives, d.Context,
		d.SessionID, d.Tags, d.CreatedAt, d.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create decision: %w", err)
	}
	return nil
}

// GetDecision returns a decision by id, scoped to an agent.
func (db *DB) GetDecision(agentID, id string) (*Decision, error) {
	d := &Decision{}
	err := db.QueryRow(`
		SELECT id, agent_id, title, decision, rationale, alternatives, context, session_id, tags,
		       embedding, embedding_model, decay_status, access_count, last_accessed_at, created_at, updated_at
		FROM decisions WHERE agent_id = ? AND id = ?
	`, agentID, id).Scan(&d.ID, &d.AgentID, &d.Title, &d.DecisionText, &d.Rationale, &d.Alternatives,
		&d.Context, &d.SessionID, &d.Tags, &d.Embedding, &d.EmbeddingModel, &d.DecayStatus,
		&d.AccessCount, &d.LastAccessedAt, &d.CreatedAt, &d.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get decision: %w", err)
	}
	return d, nil
}

// SetDecisionEmbedding persists a computed embedding for a decision.
func (db *DB) SetDecisionEmbedding(id string, vec []byte, model string) error {
	_, err := db.Exec(`UPDATE decisions SET embedding = ?, embedding_model = ? WHERE id = ?`, vec, model, id)
	if err != nil {
		return fmt.Errorf("set decision embedding: %w", err)
	}
	return nil
}

// UpdateDecisionRationale patches a decision's rationale, context, and tags
// in place — the body (title/decision) stays append-only (§3).
func (db *DB) UpdateDecisionRationale(id string, rationale, context sql.NullString, tags string) error {
	_, err := db.Exec(`UPDATE decisions SET rationale = ?, context = ?, tags = ?, updated_at = ? WHERE id = ?`,
		rationale, context, tags, nowMillis(), id)
	if err != nil {
		return fmt.Errorf("update decision rationale: %w", err)
	}
	return nil
}

// DeleteDecision removes a decision by id, scoped to an agent.
func (db *DB) DeleteDecision(agentID, id string) error {
	res, err := db.Exec(`DELETE FROM decisions WHERE agent_id = ? AND id = ?`, agentID, id)
	if err != nil {
		return fmt.Errorf("delete decision: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListDecisions returns recent decisions for an agent.
func (db *DB) ListDecisions(agentID string, limit int) ([]Decision, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.Query(`
		SELECT id, agent_id, title, decision, rationale, alternatives, context, session_id, tags,
		       embedding, embedding_model, decay_status, access_count, last_accessed_at, created_at, updated_at
		FROM decisions WHERE agent_id = ? ORDER BY created_at DESC LIMIT ?
	`, agentID, limit)
	if err != nil {
		return nil, fmt.Errorf("list decisions: %w", err)
	}
	defer rows.Close()

	var out []Decision
	for rows.Next() {
		var d Decision
		if err := rows.Scan(&d.ID, &d.AgentID, &d.Title, &d.DecisionText, &d.Rationale, &d.Alternatives,
			&d.Context, &d.SessionID, &d.Tags, &d.Embedding, &d.EmbeddingModel, &d.DecayStatus,
			&d.AccessCount, &d.LastAccessedAt, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan decision: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

package store

import (
	"database/sql"
	"fmt"
)

// SessionMessage is a single turn within a session — the most granular and
// fastest-decaying memory item in the type hierarchy (§3).
type SessionMessage struct {
	ID             string
	SessionID      string
	AgentID        string
	Role           string
	Content        string
	Embedding      []byte
	EmbeddingModel sql.NullString
	DecayStatus    string
	AccessCount    int
	LastAccessedAt sql.NullInt64
	CreatedAt      int64
}

var validRoles = map[string]bool{"user": true, "assistant": true, "system": true, "tool": true}

// AddMessage appends a message to a session. Embedding fields are left
// empty here; the ingest pipeline sets them with SetMessageEmbedding right
// after the insert (§4.5).
func (db *DB) AddMessage(m *SessionMessage) error {
	if !validRoles[m.Role] {
		return fmt.Errorf("invalid role %q", m.Role)
	}
	m.ID = NewID("msg")
	m.CreatedAt = nowMillis()
	m.DecayStatus = "active"

	_, err := db.Exec(`
		INSERT INTO session_messages (id, session_id, agent_id, role, content, decay_status, created_at)
		VALUES (?, ?, ?, ?, ?, 'active', ?)
	`, m.ID, m.SessionID, m.AgentID, m.Role, m.Content, m.CreatedAt)
	if err != nil {
		return fmt.Errorf("add message: %w", err)
	}
	return nil
}

// SetMessageEmbedding persists a computed embedding for a message.
func (db *DB) SetMessageEmbedding(id string, vec []byte, model string) error {
	_, err := db.Exec(`
		UPDATE session_messages SET embedding = ?, embedding_model = ? WHERE id = ?
	`, vec, model, id)
	if err != nil {
		return fmt.Errorf("set message embedding: %w", err)
	}
	return nil
}

// GetMessage returns a single session message by id.
func (db *DB) GetMessage(id string) (*SessionMessage, error) {
	var m SessionMessage
	err := db.QueryRow(`
		SELECT id, session_id, agent_id, role, content, embedding, embedding_model,
		       decay_status, access_count, last_accessed_at, created_at
		FROM session_messages WHERE id = ?
	`, id).Scan(&m.ID, &m.SessionID, &m.AgentID, &m.Role, &m.Content, &m.Embedding,
		&m.EmbeddingModel, &m.DecayStatus, &m.AccessCount, &m.LastAccessedAt, &m.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get message: %w", err)
	}
	return &m, nil
}

// ListMessages returns a session's messages in chronological order.
func (db *DB) ListMessages(sessionID string) ([]SessionMessage, error) {
	rows, err := db.Query(`
		SELECT id, session_id, agent_id, role, content, embedding, embedding_model,
		       decay_status, access_count, last_accessed_at, created_at
		FROM session_messages WHERE session_id = ? ORDER BY created_at
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	var out []SessionMessage
	for rows.Next() {
		var m SessionMessage
		if err := rows.Scan(&m.ID, &m.SessionID, &m.AgentID, &m.Role, &m.Content, &m.Embedding,
			&m.EmbeddingModel, &m.DecayStatus, &m.AccessCount, &m.LastAccessedAt, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// TouchAccess increments access_count and stamps last_accessed_at for a
// memory row, used by recall paths to feed the decay immunity rule (§4.9:
// "items accessed at least min_accesses times are immune to TTL expiry").
func (db *DB) TouchAccess(table, id string) error {
	if !validMemoryTable(table) {
		return fmt.Errorf("invalid table %q", table)
	}
	_, err := db.Exec(`UPDATE `+table+` SET access_count = access_count + 1, last_accessed_at = ? WHERE id = ?`,
		nowMillis(), id)
	if err != nil {
		return fmt.Errorf("touch access on %s: %w", table, err)
	}
	return nil
}

var memoryTables = map[string]bool{
	"session_messages": true,
	"facts":             true,
	"decisions":         true,
	"tasks":              true,
	"events":             true,
}

func validMemoryTable(t string) bool {
	return memoryTables[t]
}

package store

import (
	"database/sql"
	"fmt"
)

// Edge is a directed, typed relation between two memory items, stored in
// the memory_edges table. The table name never leaves this package — the
// HTTP layer's /api/v1/edges responses use this Edge struct's JSON tags,
// never the table name itself (§9: internal/external naming separation).
type Edge struct {
	ID         string  `json:"id"`
	AgentID    string  `json:"agent_id"`
	SourceType string  `json:"source_type"`
	SourceID   string  `json:"source_id"`
	TargetType string  `json:"target_type"`
	TargetID   string  `json:"target_id"`
	Relation   string  `json:"relation"`
	Weight     float64 `json:"weight"`
	Metadata   string  `json:"metadata"` // JSON object text
	CreatedAt  int64   `json:"created_at"`
	UpdatedAt  int64   `json:"updated_at"`
}

// CreateEdge inserts a relation between two memory items. Returns
// ErrConflict if the (source, target, relation) triple already exists for
// the agent — callers should treat that as idempotent success.
func (db *DB) CreateEdge(e *Edge) error {
	if e.Weight == 0 {
		e.Weight = 1.0
	}
	if e.Metadata == "" {
		e.Metadata = "{}"
	}
	now := nowMillis()
	e.ID = NewID("edge")
	e.CreatedAt, e.UpdatedAt = now, now

	_, err := db.Exec(`
		INSERT INTO memory_edges (id, agent_id, source_type, source_id, target_type, target_id,
		                          relation, weight, metadata, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, e.ID, e.AgentID, e.SourceType, e.SourceID, e.TargetType, e.TargetID, e.Relation,
		e.Weight, e.Metadata, e.CreatedAt, e.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return fmt.Errorf("create edge: %w", err)
	}
	return nil
}

// DeleteEdge removes an edge by id, scoped to an agent.
func (db *DB) DeleteEdge(agentID, id string) error {
	res, err := db.Exec(`DELETE FROM memory_edges WHERE agent_id = ? AND id = ?`, agentID, id)
	if err != nil {
		return fmt.Errorf("delete edge: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// EdgesFrom returns the outgoing edges of a memory item — the first hop of
// the one-hop graph expansion used by hybrid recall (§4.8).
func (db *DB) EdgesFrom(agentID, sourceType, sourceID string) ([]Edge, error) {
	rows, err := db.Query(`
		SELECT id, agent_id, source_type, source_id, target_type, target_id, relation, weight, metadata, created_at, updated_at
		FROM memory_edges WHERE agent_id = ? AND source_type = ? AND source_id = ?
	`, agentID, sourceType, sourceID)
	if err != nil {
		return nil, fmt.Errorf("edges from: %w", err)
	}
	return scanEdges(rows)
}

// EdgesTo returns the incoming edges of a memory item.
func (db *DB) EdgesTo(agentID, targetType, targetID string) ([]Edge, error) {
	rows, err := db.Query(`
		SELECT id, agent_id, source_type, source_id, target_type, target_id, relation, weight, metadata, created_at, updated_at
		FROM memory_edges WHERE agent_id = ? AND target_type = ? AND target_id = ?
	`, agentID, targetType, targetID)
	if err != nil {
		return nil, fmt.Errorf("edges to: %w", err)
	}
	return scanEdges(rows)
}

// EdgesTouching returns both the outgoing and incoming edges of a memory
// item in a single one-hop neighborhood, used by the edge-listing endpoint
// to return a node's edges regardless of direction (§4.8). Recall's graph
// expansion calls EdgesFrom and EdgesTo separately.
func (db *DB) EdgesTouching(agentID, nodeType, nodeID string) ([]Edge, error) {
	out, err := db.EdgesFrom(agentID, nodeType, nodeID)
	if err != nil {
		return nil, err
	}
	in, err := db.EdgesTo(agentID, nodeType, nodeID)
	if err != nil {
		return nil, err
	}
	return append(out, in...), nil
}

func scanEdges(rows *sql.Rows) ([]Edge, error) {
	defer rows.Close()
	var out []Edge
	for rows.Next() {
		var e Edge
		if err := rows.Scan(&e.ID, &e.AgentID, &e.SourceType, &e.SourceID, &e.TargetType, &e.TargetID,
			&e.Relation, &e.Weight, &e.Metadata, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan edge: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

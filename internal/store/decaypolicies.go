package store

import (
	"database/sql"
	"fmt"
)

// DecayPolicy controls how long a memory_type lives before it transitions
// from active -> cooling -> archived. A NULL agent_id row is the global
// default for that type; an agent-specific row overrides it (§4.9).
type DecayPolicy struct {
	ID          string
	AgentID     sql.NullString
	MemoryType  string
	TTLDays     sql.NullInt64
	AccessBoost float64
	MinAccesses int
}

// ResolvePolicy returns the most-specific policy for (agentID, memoryType):
// an agent-specific row if one exists, else the global NULL-agent default.
func (db *DB) ResolvePolicy(agentID, memoryType string) (*DecayPolicy, error) {
	p, err := db.scanPolicy(db.QueryRow(`
		SELECT id, agent_id, memory_type, ttl_days, access_boost, min_accesses
		FROM decay_policies WHERE agent_id = ? AND memory_type = ?
	`, agentID, memoryType))
	if err == nil {
		return p, nil
	}
	if err != ErrNotFound {
		return nil, err
	}
	return db.scanPolicy(db.QueryRow(`
		SELECT id, agent_id, memory_type, ttl_days, access_boost, min_accesses
		FROM decay_policies WHERE agent_id IS NULL AND memory_type = ?
	`, memoryType))
}

func (db *DB) scanPolicy(row *sql.Row) (*DecayPolicy, error) {
	var p DecayPolicy
	err := row.Scan(&p.ID, &p.AgentID, &p.MemoryType, &p.TTLDays, &p.AccessBoost, &p.MinAccesses)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan decay policy: %w", err)
	}
	return &p, nil
}

// UpsertAgentPolicy creates or replaces an agent-specific override for a
// memory type. No HTTP route calls it.
func (db *DB) UpsertAgentPolicy(p *DecayPolicy) error {
	if p.ID == "" {
		p.ID = NewID("dp")
	}
	_, err := db.Exec(`
		INSERT INTO decay_policies (id, agent_id, memory_type, ttl_days, access_boost, min_accesses)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (agent_id, memory_type) DO UPDATE SET
			ttl_days = excluded.ttl_days,
			access_boost = excluded.access_boost,
			min_accesses = excluded.min_accesses
	`, p.ID, p.AgentID, p.MemoryType, p.TTLDays, p.AccessBoost, p.MinAccesses)
	if err != nil {
		return fmt.Errorf("upsert decay policy: %w", err)
	}
	return nil
}

// ListPoliciesForAgent returns the global defaults plus any agent-specific
// overrides, letting the caller show the effective policy set for an agent.
func (db *DB) ListPoliciesForAgent(agentID string) ([]DecayPolicy, error) {
	rows, err := db.Query(`
		SELECT id, agent_id, memory_type, ttl_days, access_boost, min_accesses
		FROM decay_policies WHERE agent_id IS NULL OR agent_id = ?
		ORDER BY memory_type, agent_id IS NULL DESC
	`, agentID)
	if err != nil {
		return nil, fmt.Errorf("list decay policies: %w", err)
	}
	defer rows.Close()

	var out []DecayPolicy
	for rows.Next() {
		var p DecayPolicy
		if err := rows.Scan(&p.ID, &p.AgentID, &p.MemoryType, &p.TTLDays, &p.AccessBoost, &p.MinAccesses); err != nil {
			return nil, fmt.Errorf("scan decay policy: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

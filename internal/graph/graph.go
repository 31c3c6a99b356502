// Package graph implements edge CRUD and one-hop neighborhood expansion
// over the store's memory_edges table (§4.8). The teacher has no typed
// graph of its own; this is modeled after the spec's closed variant-type
// guidance, reusing the teacher's upsert-on-conflict idiom
// (`store.UpsertNode`/`SaveVector`) for the edge upsert.
package graph

import (
	"time"

	"github.com/hexmem/hexmem/internal/store"
)

// Edge is the external shape of a memory_edges row — deliberately never
// named "memory_edges" here or in any HTTP response (§9: internal table
// names must not leak as API vocabulary).
type Edge struct {
	ID         string         `json:"id"`
	AgentID    string         `json:"agent_id"`
	SourceType string         `json:"source_type"`
	SourceID   string         `json:"source_id"`
	TargetType string         `json:"target_type"`
	TargetID   string         `json:"target_id"`
	Relation   string         `json:"relation"`
	Weight     float64        `json:"weight"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	CreatedAt  int64          `json:"created_at"`
	UpdatedAt  int64          `json:"updated_at"`
}

// Graph provides edge operations over a store.
type Graph struct {
	DB *store.DB
}

// Upsert creates an edge, or updates weight/metadata if the
// (source,target,relation) 5-tuple already exists (I5, §4.8, P4).
func (g *Graph) Upsert(e *store.Edge) error {
	if err := g.DB.CreateEdge(e); err != nil {
		if err == store.ErrConflict {
			return g.updateExisting(e)
		}
		return err
	}
	return nil
}

func (g *Graph) updateExisting(e *store.Edge) error {
	existing, err := g.findExact(e.AgentID, e.SourceType, e.SourceID, e.TargetType, e.TargetID, e.Relation)
	if err != nil {
		return err
	}
	e.ID = existing.ID
	_, err = g.DB.Exec(`UPDATE memory_edges SET weight = ?, metadata = ?, updated_at = ? WHERE id = ?`,
		e.Weight, e.Metadata, time.Now().UnixMilli(), e.ID)
	return err
}

func (g *Graph) findExact(agentID, srcType, srcID, dstType, dstID, relation string) (*store.Edge, error) {
	edges, err := g.DB.EdgesFrom(agentID, srcType, srcID)
	if err != nil {
		return nil, err
	}
	for i := range edges {
		if edges[i].TargetType == dstType && edges[i].TargetID == dstID && edges[i].Relation == relation {
			return &edges[i], nil
		}
	}
	return nil, store.ErrNotFound
}

// Delete removes an edge by id (idempotent-safe: 404 if already gone, per §4.8).
func (g *Graph) Delete(agentID, id string) error {
	return g.DB.DeleteEdge(agentID, id)
}

// NodeView is the bidirectional view of a node's edges (§4.8).
type NodeView struct {
	Outgoing []store.Edge `json:"outgoing"`
	Incoming []store.Edge `json:"incoming"`
	Total    int          `json:"total"`
}

// Node returns a node's outgoing and incoming edges without deduplicating
// a rare self-edge across directions, per §4.8.
func (g *Graph) Node(agentID, nodeType, nodeID string) (*NodeView, error) {
	out, err := g.DB.EdgesFrom(agentID, nodeType, nodeID)
	if err != nil {
		return nil, err
	}
	in, err := g.DB.EdgesTo(agentID, nodeType, nodeID)
	if err != nil {
		return nil, err
	}
	return &NodeView{Outgoing: out, Incoming: in, Total: len(out) + len(in)}, nil
}

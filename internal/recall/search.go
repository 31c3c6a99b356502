package recall

import (
	"context"
	"sort"

	"github.com/hexmem/hexmem/internal/store"
)

// SearchRequest is a direct vector search call (§4.7).
type SearchRequest struct {
	Query     string
	AgentID   string
	Types     []string
	Limit     int
	Threshold float64
}

// NewSearchRequest fills in §4.7's documented defaults.
func NewSearchRequest(query, agentID string) SearchRequest {
	return SearchRequest{Query: query, AgentID: agentID, Limit: 20, Threshold: 0.3}
}

// Search returns rows whose cosine similarity to the embedded query
// exceeds threshold, merged across types and sorted descending — no
// lexical or recency blending, unlike Recall (§4.7).
func (p *Planner) Search(ctx context.Context, req SearchRequest) ([]Result, error) {
	if req.AgentID == "" {
		return nil, ErrMissingAgent
	}
	if p.Embedder == nil {
		return nil, ErrEmbedderUnavailable
	}
	if req.Limit <= 0 || req.Limit > 100 {
		req.Limit = 20
	}
	if req.Threshold == 0 {
		req.Threshold = 0.3
	}

	queryVec, err := p.Embedder.Embed(ctx, req.Query)
	if err != nil {
		return nil, ErrEmbedderUnavailable
	}

	rows, err := p.DB.ActiveRows(req.AgentID, req.Types)
	if err != nil {
		return nil, err
	}

	var results []Result
	for _, r := range rows {
		if len(r.Embedding) == 0 {
			continue
		}
		vec := store.DecodeEmbedding(r.Embedding)
		sim := 1 - store.CosineDistance(queryVec, vec)
		if sim <= req.Threshold {
			continue
		}
		simCopy := sim
		results = append(results, Result{
			ID: r.ID, Type: r.Type, Content: r.Content, Score: sim,
			Signals: Signals{Semantic: &simCopy}, CreatedAt: r.CreatedAt,
		})
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if len(results) > req.Limit {
		results = results[:req.Limit]
	}
	return results, nil
}

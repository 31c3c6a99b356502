// Package recall implements the hybrid recall planner (§4.6) and the
// direct vector search path (§4.7), grounded on the teacher's
// `engine.Find`/`engine.Search` fan-out-then-merge structure.
package recall

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/hexmem/hexmem/internal/embedding"
	"github.com/hexmem/hexmem/internal/graph"
	"github.com/hexmem/hexmem/internal/store"
)

// ErrMissingAgent is returned when agent_id is absent (§8 B1).
var ErrMissingAgent = errors.New("agent_id is required")

// ErrEmbedderUnavailable is returned by Search when no embedder is configured (§4.7, B3).
var ErrEmbedderUnavailable = errors.New("embedder unavailable")

const (
	defaultLimit          = 20
	defaultSemanticWeight = 0.7
	defaultKeywordWeight  = 0.2
	defaultRecencyWeight  = 0.1
	lexicalThreshold      = 0.1
	maxAge                = 90 * 24 * time.Hour
	expansionDepthCount   = 5
	graphBoostWeight      = 0.1
)

// Signals holds the per-arm scores that fed a result's final score (§8 P1).
type Signals struct {
	Semantic   *float64 `json:"semantic,omitempty"`
	Keyword    *float64 `json:"keyword,omitempty"`
	Recency    *float64 `json:"recency,omitempty"`
	GraphBoost *float64 `json:"graph_boost,omitempty"`
}

// Result is one recall hit, matching §6's recall response shape.
type Result struct {
	ID        string         `json:"id"`
	Type      string         `json:"type"`
	Content   string         `json:"content"`
	Score     float64        `json:"score"`
	Signals   Signals        `json:"signals"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	CreatedAt int64          `json:"created_at"`
	Related   []Result       `json:"related,omitempty"`
}

// Request is a recall call's parameters, with spec defaults applied by NewRequest.
type Request struct {
	Query           string
	AgentID         string
	Types           []string
	Limit           int
	SemanticWeight  float64
	KeywordWeight   float64
	RecencyWeight   float64
	IncludeRelated  bool
}

// NewRequest fills in §4.6's documented defaults.
func NewRequest(query, agentID string) Request {
	return Request{
		Query:          query,
		AgentID:        agentID,
		Limit:          defaultLimit,
		SemanticWeight: defaultSemanticWeight,
		KeywordWeight:  defaultKeywordWeight,
		RecencyWeight:  defaultRecencyWeight,
		IncludeRelated: true,
	}
}

// Response is recall's full return value (§6).
type Response struct {
	Results []Result `json:"results"`
	Total   int      `json:"total"`
	Query   string   `json:"query"`
	Weights Weights  `json:"weights"`
}

// Weights echoes the weights actually used (§8 scenario 3).
type Weights struct {
	Semantic float64 `json:"semantic"`
	Keyword  float64 `json:"keyword"`
	Recency  float64 `json:"recency"`
}

// Planner executes recall and direct search against the store.
type Planner struct {
	DB       *store.DB
	Embedder embedding.Embedder
}

// Recall runs the full hybrid pipeline: embed → fan-out semantic+lexical →
// merge → recency → weighted rerank → top-K → one-hop expansion → access
// bump (§4.6).
func (p *Planner) Recall(ctx context.Context, req Request) (*Response, error) {
	if req.AgentID == "" {
		return nil, ErrMissingAgent
	}
	if req.Limit <= 0 {
		req.Limit = defaultLimit
	}

	rows, err := p.DB.ActiveRows(req.AgentID, req.Types)
	if err != nil {
		return nil, err
	}

	// Best-effort query embedding; B2 — on failure the semantic arm is simply skipped.
	var queryVec []float32
	if p.Embedder != nil {
		if vec, embErr := p.Embedder.Embed(ctx, req.Query); embErr == nil {
			queryVec = vec
		}
	}

	merged := make(map[string]*candidate, len(rows))
	for i := range rows {
		r := &rows[i]
		merged[r.ID] = &candidate{row: r}
	}

	// Semantic arm: up to L rows, non-null embedding, ascending cosine distance.
	if queryVec != nil {
		type scored struct {
			id  string
			sim float64
		}
		var hits []scored
		for _, r := range rows {
			if len(r.Embedding) == 0 {
				continue
			}
			vec := store.DecodeEmbedding(r.Embedding)
			sim := 1 - store.CosineDistance(queryVec, vec)
			hits = append(hits, scored{r.ID, sim})
		}
		sort.Slice(hits, func(i, j int) bool { return hits[i].sim > hits[j].sim })
		if len(hits) > req.Limit {
			hits = hits[:req.Limit]
		}
		for _, h := range hits {
			sim := h.sim
			merged[h.id].semantic = &sim
		}
	}

	// Lexical arm: up to L rows, trigram similarity on canonical content > 0.1.
	{
		type scored struct {
			id  string
			sim float64
		}
		var hits []scored
		for _, r := range rows {
			sim := store.TrigramSimilarity(req.Query, r.Content)
			if sim > lexicalThreshold {
				hits = append(hits, scored{r.ID, sim})
			}
		}
		sort.Slice(hits, func(i, j int) bool { return hits[i].sim > hits[j].sim })
		if len(hits) > req.Limit {
			hits = hits[:req.Limit]
		}
		for _, h := range hits {
			sim := h.sim
			merged[h.id].keyword = &sim
		}
	}

	now := time.Now().UnixMilli()
	var scoredList []*candidate
	for _, c := range merged {
		if c.semantic == nil && c.keyword == nil {
			continue // never matched by either arm
		}
		age := time.Duration(now-c.row.CreatedAt) * time.Millisecond
		recency := 0.0
		if age >= 0 {
			recency = 1 - float64(age)/float64(maxAge)
			if recency < 0 {
				recency = 0
			}
		}
		c.recency = recency

		score := req.RecencyWeight * recency
		if c.semantic != nil {
			score += req.SemanticWeight * *c.semantic
		}
		if c.keyword != nil {
			score += req.KeywordWeight * *c.keyword
		}
		c.score = score
		scoredList = append(scoredList, c)
	}

	sort.Slice(scoredList, func(i, j int) bool { return scoredList[i].score > scoredList[j].score })
	if len(scoredList) > req.Limit {
		scoredList = scoredList[:req.Limit]
	}

	results := make([]Result, len(scoredList))
	for i, c := range scoredList {
		results[i] = c.toResult()
		// Access accounting: best-effort, swallow failures (§4.6, §7 rule 4).
		_ = p.DB.TouchAccess(c.row.Table, c.row.ID)
	}

	if req.IncludeRelated {
		g := &graph.Expander{DB: p.DB}
		for i := range results {
			if i >= expansionDepthCount {
				break
			}
			related, err := g.ExpandOneHop(req.AgentID, results[i].Type, results[i].ID)
			if err == nil && len(related) > 0 {
				results[i].Related = toRecallRelated(related)
			}
		}
	}

	return &Response{
		Results: results,
		Total:   len(results),
		Query:   req.Query,
		Weights: Weights{Semantic: req.SemanticWeight, Keyword: req.KeywordWeight, Recency: req.RecencyWeight},
	}, nil
}

type candidate struct {
	row      *store.MemoryRow
	semantic *float64
	keyword  *float64
	recency  float64
	score    float64
}

func (c *candidate) toResult() Result {
	return Result{
		ID:        c.row.ID,
		Type:      c.row.Type,
		Content:   c.row.Content,
		Score:     c.score,
		CreatedAt: c.row.CreatedAt,
		Signals: Signals{
			Semantic: c.semantic,
			Keyword:  c.keyword,
			Recency:  ptr(c.recency),
		},
	}
}

func ptr(f float64) *float64 { return &f }

func toRecallRelated(edges []graph.RelatedItem) []Result {
	out := make([]Result, len(edges))
	for i, e := range edges {
		boost := e.Weight
		out[i] = Result{
			ID:      e.NeighborID,
			Type:    e.NeighborType,
			Content: e.NeighborContent,
			Score:   e.Weight,
			Signals: Signals{GraphBoost: &boost},
			Metadata: map[string]any{
				"relation":  e.Relation,
				"direction": e.Direction,
			},
		}
	}
	return out
}

package server

import (
	"net/http"
	"time"

	"github.com/hexmem/hexmem/internal/recall"
)

func (s *Server) handleRecall(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req struct {
		Query          string   `json:"query"`
		AgentID        string   `json:"agent_id"`
		Types          []string `json:"types"`
		Limit          int      `json:"limit"`
		SemanticWeight *float64 `json:"semantic_weight"`
		KeywordWeight  *float64 `json:"keyword_weight"`
		RecencyWeight  *float64 `json:"recency_weight"`
		IncludeRelated *bool    `json:"include_related"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.AgentID == "" {
		writeStoreErr(w, recall.ErrMissingAgent)
		return
	}
	agentID, err := s.db.ResolveAgentID(req.AgentID)
	if err != nil {
		writeStoreErr(w, err)
		return
	}

	planReq := recall.NewRequest(req.Query, agentID)
	planReq.Types = req.Types
	if req.Limit > 0 {
		planReq.Limit = req.Limit
	}
	if req.SemanticWeight != nil {
		planReq.SemanticWeight = *req.SemanticWeight
	}
	if req.KeywordWeight != nil {
		planReq.KeywordWeight = *req.KeywordWeight
	}
	if req.RecencyWeight != nil {
		planReq.RecencyWeight = *req.RecencyWeight
	}
	if req.IncludeRelated != nil {
		planReq.IncludeRelated = *req.IncludeRelated
	}

	resp, err := s.planner.Recall(r.Context(), planReq)
	status := http.StatusOK
	if err != nil {
		writeStoreErr(w, err)
		status = http.StatusBadRequest
	} else {
		writeJSON(w, http.StatusOK, resp)
	}

	if s.analytics != nil {
		s.analytics.Log(agentID, "recall", req.Query, time.Since(start).Milliseconds(), status)
	}
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req struct {
		Query     string   `json:"query"`
		AgentID   string   `json:"agent_id"`
		Types     []string `json:"types"`
		Limit     int      `json:"limit"`
		Threshold float64  `json:"threshold"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.AgentID == "" {
		writeStoreErr(w, recall.ErrMissingAgent)
		return
	}
	agentID, err := s.db.ResolveAgentID(req.AgentID)
	if err != nil {
		writeStoreErr(w, err)
		return
	}

	searchReq := recall.NewSearchRequest(req.Query, agentID)
	searchReq.Types = req.Types
	if req.Limit > 0 {
		searchReq.Limit = req.Limit
	}
	if req.Threshold > 0 {
		searchReq.Threshold = req.Threshold
	}

	results, err := s.planner.Search(r.Context(), searchReq)
	status := http.StatusOK
	if err != nil {
		writeStoreErr(w, err)
		status = http.StatusServiceUnavailable
	} else {
		writeJSON(w, http.StatusOK, map[string]any{
			"results": results,
			"total":   len(results),
			"query":   req.Query,
		})
	}

	if s.analytics != nil {
		s.analytics.Log(agentID, "search", req.Query, time.Since(start).Milliseconds(), status)
	}
}

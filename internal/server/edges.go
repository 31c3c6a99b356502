package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hexmem/hexmem/internal/store"
)

func (s *Server) handleCreateEdge(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AgentID    string  `json:"agent_id"`
		SourceType string  `json:"source_type"`
		SourceID   string  `json:"source_id"`
		TargetType string  `json:"target_type"`
		TargetID   string  `json:"target_id"`
		Relation   string  `json:"relation"`
		Weight     float64 `json:"weight"`
		Metadata   string  `json:"metadata"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.SourceType == "" || req.SourceID == "" || req.TargetType == "" || req.TargetID == "" || req.Relation == "" {
		writeError(w, http.StatusBadRequest, "source_type, source_id, target_type, target_id, relation required")
		return
	}
	agentID, err := s.db.ResolveAgentID(req.AgentID)
	if err != nil {
		writeStoreErr(w, err)
		return
	}

	e := &store.Edge{
		AgentID: agentID, SourceType: req.SourceType, SourceID: req.SourceID,
		TargetType: req.TargetType, TargetID: req.TargetID, Relation: req.Relation,
		Weight: req.Weight, Metadata: req.Metadata,
	}
	if err := s.graph.Upsert(e); err != nil {
		writeStoreErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, e)
}

func (s *Server) handleListEdges(w http.ResponseWriter, r *http.Request) {
	agentID, err := s.db.ResolveAgentID(r.URL.Query().Get("agent_id"))
	if err != nil {
		writeStoreErr(w, err)
		return
	}
	nodeType := r.URL.Query().Get("type")
	nodeID := r.URL.Query().Get("id")
	if nodeType == "" || nodeID == "" {
		writeError(w, http.StatusBadRequest, "type and id query params required")
		return
	}
	edges, err := s.db.EdgesTouching(agentID, nodeType, nodeID)
	if err != nil {
		writeStoreErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"edges": edges})
}

func (s *Server) handleDeleteEdge(w http.ResponseWriter, r *http.Request) {
	agentID, err := s.db.ResolveAgentID(r.URL.Query().Get("agent_id"))
	if err != nil {
		writeStoreErr(w, err)
		return
	}
	id := chi.URLParam(r, "id")
	if err := s.graph.Delete(agentID, id); err != nil {
		writeStoreErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleNodeGraph(w http.ResponseWriter, r *http.Request) {
	agentID, err := s.db.ResolveAgentID(r.URL.Query().Get("agent_id"))
	if err != nil {
		writeStoreErr(w, err)
		return
	}
	nodeType := chi.URLParam(r, "type")
	nodeID := chi.URLParam(r, "id")
	view, err := s.graph.Node(agentID, nodeType, nodeID)
	if err != nil {
		writeStoreErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

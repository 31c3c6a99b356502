package server

import (
	"database/sql"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/hexmem/hexmem/internal/store"
)

func (s *Server) handleCreateDecision(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AgentID      string   `json:"agent_id"`
		Title        string   `json:"title"`
		Decision     string   `json:"decision"`
		Rationale    string   `json:"rationale"`
		Alternatives []string `json:"alternatives"`
		Context      string   `json:"context"`
		Tags         []string `json:"tags"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Title == "" || req.Decision == "" {
		writeError(w, http.StatusBadRequest, "title and decision required")
		return
	}
	agentID, err := s.db.ResolveAgentID(req.AgentID)
	if err != nil {
		writeStoreErr(w, err)
		return
	}

	d := &store.Decision{AgentID: agentID, Title: req.Title, DecisionText: req.Decision}
	if req.Rationale != "" {
		d.Rationale = sql.NullString{String: req.Rationale, Valid: true}
	}
	if req.Context != "" {
		d.Context = sql.NullString{String: req.Context, Valid: true}
	}
	d.Alternatives, _ = marshalStrings(req.Alternatives)
	d.Tags, _ = marshalStrings(req.Tags)

	created, conflict, err := s.pipeline.CreateDecision(r.Context(), agentID, d, true)
	if err != nil {
		writeStoreErr(w, err)
		return
	}
	if conflict != nil {
		writeConflict(w, conflict)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleListDecisions(w http.ResponseWriter, r *http.Request) {
	agentID, err := s.db.ResolveAgentID(r.URL.Query().Get("agent_id"))
	if err != nil {
		writeStoreErr(w, err)
		return
	}
	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 {
			limit = n
		}
	}
	decisions, err := s.db.ListDecisions(agentID, limit)
	if err != nil {
		writeStoreErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"decisions": decisions})
}

func (s *Server) handleGetDecision(w http.ResponseWriter, r *http.Request) {
	agentID, err := s.db.ResolveAgentID(r.URL.Query().Get("agent_id"))
	if err != nil {
		writeStoreErr(w, err)
		return
	}
	d, err := s.db.GetDecision(agentID, chi.URLParam(r, "id"))
	if err != nil {
		writeStoreErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// handleUpdateDecision patches rationale/context/tags; the decision's title
// and decision text remain append-only once recorded (§3).
func (s *Server) handleUpdateDecision(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req struct {
		AgentID   string   `json:"agent_id"`
		Rationale string   `json:"rationale"`
		Context   string   `json:"context"`
		Tags      []string `json:"tags"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	agentID, err := s.db.ResolveAgentID(req.AgentID)
	if err != nil {
		writeStoreErr(w, err)
		return
	}
	existing, err := s.db.GetDecision(agentID, id)
	if err != nil {
		writeStoreErr(w, err)
		return
	}
	rationale := existing.Rationale
	if req.Rationale != "" {
		rationale = sql.NullString{String: req.Rationale, Valid: true}
	}
	context := existing.Context
	if req.Context != "" {
		context = sql.NullString{String: req.Context, Valid: true}
	}
	tags := existing.Tags
	if req.Tags != nil {
		tags, _ = marshalStrings(req.Tags)
	}
	if err := s.db.UpdateDecisionRationale(id, rationale, context, tags); err != nil {
		writeStoreErr(w, err)
		return
	}
	updated, err := s.db.GetDecision(agentID, id)
	if err != nil {
		writeStoreErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteDecision(w http.ResponseWriter, r *http.Request) {
	agentID, err := s.db.ResolveAgentID(r.URL.Query().Get("agent_id"))
	if err != nil {
		writeStoreErr(w, err)
		return
	}
	if err := s.db.DeleteDecision(agentID, chi.URLParam(r, "id")); err != nil {
		writeStoreErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

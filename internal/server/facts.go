package server

import (
	"database/sql"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hexmem/hexmem/internal/store"
)

func (s *Server) handleCreateFact(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AgentID    string   `json:"agent_id"`
		Content    string   `json:"content"`
		Subject    string   `json:"subject"`
		Confidence float64  `json:"confidence"`
		Source     string   `json:"source"`
		Tags       []string `json:"tags"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Content == "" {
		writeError(w, http.StatusBadRequest, "content required")
		return
	}
	agentID, err := s.db.ResolveAgentID(req.AgentID)
	if err != nil {
		writeStoreErr(w, err)
		return
	}

	f := &store.Fact{AgentID: agentID, Content: req.Content, Confidence: req.Confidence}
	if req.Subject != "" {
		f.Subject = sql.NullString{String: req.Subject, Valid: true}
	}
	if req.Source != "" {
		f.Source = sql.NullString{String: req.Source, Valid: true}
	}
	f.Tags, _ = marshalStrings(req.Tags)

	created, conflict, err := s.pipeline.CreateFact(r.Context(), agentID, f, true)
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

func (s *Server) handleListFacts(w http.ResponseWriter, r *http.Request) {
	agentID, err := s.db.ResolveAgentID(r.URL.Query().Get("agent_id"))
	if err != nil {
		writeStoreErr(w, err)
		return
	}
	rows, err := s.db.ActiveRows(agentID, []string{"fact"})
	if err != nil {
		writeStoreErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"facts": rows})
}

func (s *Server) handleGetFact(w http.ResponseWriter, r *http.Request) {
	agentID, err := s.db.ResolveAgentID(r.URL.Query().Get("agent_id"))
	if err != nil {
		writeStoreErr(w, err)
		return
	}
	f, err := s.db.GetFact(agentID, chi.URLParam(r, "id"))
	if err != nil {
		writeStoreErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

// handleSupersedeFact marks the path fact as superseded by a new fact
// supplied in the body, the write side of the fact-revision relation (§3).
func (s *Server) handleSupersedeFact(w http.ResponseWriter, r *http.Request) {
	oldID := chi.URLParam(r, "id")
	var req struct {
		AgentID string `json:"agent_id"`
		Content string `json:"content"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	agentID, err := s.db.ResolveAgentID(req.AgentID)
	if err != nil {
		writeStoreErr(w, err)
		return
	}

	newFact := &store.Fact{AgentID: agentID, Content: req.Content}
	created, conflict, err := s.pipeline.CreateFact(r.Context(), agentID, newFact, false)
	if err != nil {
		writeStoreErr(w, err)
		return
	}
	if conflict != nil {
		writeConflict(w, conflict)
		return
	}
	if err := s.db.SupersedeFact(oldID, created.ID); err != nil {
		writeStoreErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, created)
}

func (s *Server) handleDeleteFact(w http.ResponseWriter, r *http.Request) {
	agentID, err := s.db.ResolveAgentID(r.URL.Query().Get("agent_id"))
	if err != nil {
		writeStoreErr(w, err)
		return
	}
	if err := s.db.DeleteFact(agentID, chi.URLParam(r, "id")); err != nil {
		writeStoreErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

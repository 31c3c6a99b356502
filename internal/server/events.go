package server

import (
	"database/sql"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hexmem/hexmem/internal/store"
)

func (s *Server) handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AgentID     string   `json:"agent_id"`
		ProjectID   string   `json:"project_id"`
		Title       string   `json:"title"`
		EventType   string   `json:"event_type"`
		Description string   `json:"description"`
		CausedBy    string   `json:"caused_by"`
		Severity    string   `json:"severity"`
		Tags        []string `json:"tags"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Title == "" || req.EventType == "" {
		writeError(w, http.StatusBadRequest, "title and event_type required")
		return
	}
	agentID, err := s.db.ResolveAgentID(req.AgentID)
	if err != nil {
		writeStoreErr(w, err)
		return
	}

	e := &store.Event{AgentID: agentID, Title: req.Title, EventType: req.EventType, Severity: req.Severity}
	if req.Description != "" {
		e.Description = sql.NullString{String: req.Description, Valid: true}
	}
	if req.CausedBy != "" {
		e.CausedBy = sql.NullString{String: req.CausedBy, Valid: true}
	}
	if req.ProjectID != "" {
		projectID, err := s.db.ResolveProjectID(agentID, req.ProjectID)
		if err != nil {
			writeStoreErr(w, err)
			return
		}
		e.ProjectID = sql.NullString{String: projectID, Valid: true}
	}
	e.Tags, _ = marshalStrings(req.Tags)

	created, conflict, err := s.pipeline.CreateEvent(r.Context(), agentID, e, true)
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

func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	agentID, err := s.db.ResolveAgentID(r.URL.Query().Get("agent_id"))
	if err != nil {
		writeStoreErr(w, err)
		return
	}
	projectID := r.URL.Query().Get("project_id")
	severity := r.URL.Query().Get("severity")
	events, err := s.db.ListEvents(agentID, projectID, severity)
	if err != nil {
		writeStoreErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": events})
}

func (s *Server) handleGetEvent(w http.ResponseWriter, r *http.Request) {
	agentID, err := s.db.ResolveAgentID(r.URL.Query().Get("agent_id"))
	if err != nil {
		writeStoreErr(w, err)
		return
	}
	e, err := s.db.GetEvent(agentID, chi.URLParam(r, "id"))
	if err != nil {
		writeStoreErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) handleResolveEvent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req struct {
		Outcome string `json:"outcome"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := s.db.ResolveEvent(id, req.Outcome); err != nil {
		writeStoreErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": id, "outcome": req.Outcome})
}

func (s *Server) handleDeleteEvent(w http.ResponseWriter, r *http.Request) {
	agentID, err := s.db.ResolveAgentID(r.URL.Query().Get("agent_id"))
	if err != nil {
		writeStoreErr(w, err)
		return
	}
	if err := s.db.DeleteEvent(agentID, chi.URLParam(r, "id")); err != nil {
		writeStoreErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

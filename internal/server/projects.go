package server

import (
	"database/sql"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hexmem/hexmem/internal/store"
)

// Projects never participate in dedup (§4.5) — they are created directly
// against the store, with no pipeline involvement.
func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AgentID     string   `json:"agent_id"`
		Slug        string   `json:"slug"`
		Name        string   `json:"name"`
		Description string   `json:"description"`
		Tags        []string `json:"tags"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name required")
		return
	}
	agentID, err := s.db.ResolveAgentID(req.AgentID)
	if err != nil {
		writeStoreErr(w, err)
		return
	}

	slug := req.Slug
	if slug == "" {
		slug = store.Slugify(req.Name)
	}
	if slug == "" {
		writeError(w, http.StatusBadRequest, "name does not derive a valid slug")
		return
	}

	p := &store.Project{AgentID: agentID, Slug: slug, Name: req.Name}
	if req.Description != "" {
		p.Description = sql.NullString{String: req.Description, Valid: true}
	}
	p.Tags, _ = marshalStrings(req.Tags)

	if err := s.db.CreateProject(p); err != nil {
		if err == store.ErrConflict {
			writeError(w, http.StatusConflict, "slug already exists for this agent")
			return
		}
		writeStoreErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	agentID, err := s.db.ResolveAgentID(r.URL.Query().Get("agent_id"))
	if err != nil {
		writeStoreErr(w, err)
		return
	}
	status := r.URL.Query().Get("status")
	projects, err := s.db.ListProjects(agentID, status)
	if err != nil {
		writeStoreErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"projects": projects})
}

func (s *Server) handleGetProject(w http.ResponseWriter, r *http.Request) {
	agentID, err := s.db.ResolveAgentID(r.URL.Query().Get("agent_id"))
	if err != nil {
		writeStoreErr(w, err)
		return
	}
	projectID, err := s.db.ResolveProjectID(agentID, chi.URLParam(r, "id"))
	if err != nil {
		writeStoreErr(w, err)
		return
	}
	p, err := s.db.GetProject(agentID, projectID)
	if err != nil {
		writeStoreErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleUpdateProjectStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req struct {
		Status string `json:"status"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := s.db.UpdateProjectStatus(id, req.Status); err != nil {
		writeStoreErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": id, "status": req.Status})
}

func (s *Server) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	agentID, err := s.db.ResolveAgentID(r.URL.Query().Get("agent_id"))
	if err != nil {
		writeStoreErr(w, err)
		return
	}
	if err := s.db.DeleteProject(agentID, chi.URLParam(r, "id")); err != nil {
		writeStoreErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

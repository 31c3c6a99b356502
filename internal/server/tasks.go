package server

import (
	"database/sql"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hexmem/hexmem/internal/store"
)

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AgentID     string   `json:"agent_id"`
		ProjectID   string   `json:"project_id"`
		Title       string   `json:"title"`
		Description string   `json:"description"`
		Priority    int      `json:"priority"`
		Assignee    string   `json:"assignee"`
		DueDate     int64    `json:"due_date"`
		Tags        []string `json:"tags"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Title == "" {
		writeError(w, http.StatusBadRequest, "title required")
		return
	}
	agentID, err := s.db.ResolveAgentID(req.AgentID)
	if err != nil {
		writeStoreErr(w, err)
		return
	}

	t := &store.Task{AgentID: agentID, Title: req.Title, Priority: req.Priority}
	if req.Description != "" {
		t.Description = sql.NullString{String: req.Description, Valid: true}
	}
	if req.Assignee != "" {
		t.Assignee = sql.NullString{String: req.Assignee, Valid: true}
	}
	if req.DueDate != 0 {
		t.DueDate = sql.NullInt64{Int64: req.DueDate, Valid: true}
	}
	if req.ProjectID != "" {
		projectID, err := s.db.ResolveProjectID(agentID, req.ProjectID)
		if err != nil {
			writeStoreErr(w, err)
			return
		}
		t.ProjectID = sql.NullString{String: projectID, Valid: true}
	}
	t.Tags, _ = marshalStrings(req.Tags)

	created, conflict, err := s.pipeline.CreateTask(r.Context(), agentID, t, true)
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

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	agentID, err := s.db.ResolveAgentID(r.URL.Query().Get("agent_id"))
	if err != nil {
		writeStoreErr(w, err)
		return
	}
	projectID := r.URL.Query().Get("project_id")
	status := r.URL.Query().Get("status")
	tasks, err := s.db.ListTasks(agentID, projectID, status)
	if err != nil {
		writeStoreErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tasks": tasks})
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	agentID, err := s.db.ResolveAgentID(r.URL.Query().Get("agent_id"))
	if err != nil {
		writeStoreErr(w, err)
		return
	}
	t, err := s.db.GetTask(agentID, chi.URLParam(r, "id"))
	if err != nil {
		writeStoreErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleUpdateTaskStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req struct {
		Status string `json:"status"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := s.db.UpdateTaskStatus(id, req.Status); err != nil {
		writeStoreErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": id, "status": req.Status})
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	agentID, err := s.db.ResolveAgentID(r.URL.Query().Get("agent_id"))
	if err != nil {
		writeStoreErr(w, err)
		return
	}
	if err := s.db.DeleteTask(agentID, chi.URLParam(r, "id")); err != nil {
		writeStoreErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

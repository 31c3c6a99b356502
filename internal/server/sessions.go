package server

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/hexmem/hexmem/internal/store"
)

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AgentID    string `json:"agent_id"`
		ExternalID string `json:"external_id"`
		Metadata   string `json:"metadata"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	agentID, err := s.db.ResolveAgentID(req.AgentID)
	if err != nil {
		writeStoreErr(w, err)
		return
	}

	sess := &store.Session{AgentID: agentID, ExternalID: req.ExternalID, Metadata: req.Metadata}
	if err := s.db.CreateSession(sess); err != nil {
		writeStoreErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sess)
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
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
	sessions, err := s.db.ListSessions(agentID, limit)
	if err != nil {
		writeStoreErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"sessions": sessions})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	sess, err := s.db.GetSession(id)
	if err != nil {
		writeStoreErr(w, err)
		return
	}
	messages, err := s.db.ListMessages(id)
	if err != nil {
		writeStoreErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"session":       sess,
		"message_count": len(messages),
	})
}

func (s *Server) handleAddMessage(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")

	var req struct {
		Role     string `json:"role"`
		Content  string `json:"content"`
		Metadata string `json:"metadata"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Content == "" {
		writeError(w, http.StatusBadRequest, "content required")
		return
	}
	if req.Role == "" {
		req.Role = "user"
	}

	result, err := s.pipeline.AddMessage(r.Context(), sessionID, req.Role, req.Content, req.Metadata)
	if err != nil {
		writeStoreErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func (s *Server) handleListMessages(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")
	messages, err := s.db.ListMessages(sessionID)
	if err != nil {
		writeStoreErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"messages": messages})
}

func (s *Server) handleEndSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")
	sess, err := s.pipeline.EndSession(r.Context(), sessionID)
	if err != nil {
		writeStoreErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

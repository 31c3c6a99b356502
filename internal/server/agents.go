package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hexmem/hexmem/internal/store"
)

func (s *Server) handleCreateAgent(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Slug        string `json:"slug"`
		DisplayName string `json:"display_name"`
		Description string `json:"description"`
		CoreMemory  string `json:"core_memory"`
		Config      string `json:"config"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Slug == "" || req.DisplayName == "" {
		writeError(w, http.StatusBadRequest, "slug and display_name required")
		return
	}

	a := &store.Agent{
		Slug:        req.Slug,
		DisplayName: req.DisplayName,
		Description: req.Description,
		CoreMemory:  req.CoreMemory,
		Config:      req.Config,
	}
	if err := s.db.CreateAgent(a); err != nil {
		if err == store.ErrConflict {
			writeError(w, http.StatusConflict, "slug already exists")
			return
		}
		writeStoreErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

func (s *Server) handleListAgents(w http.ResponseWriter, r *http.Request) {
	agents, err := s.db.ListAgents()
	if err != nil {
		writeStoreErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"agents": agents})
}

func (s *Server) handleGetAgent(w http.ResponseWriter, r *http.Request) {
	idOrSlug := chi.URLParam(r, "id")
	agentID, err := s.db.ResolveAgentID(idOrSlug)
	if err != nil {
		writeStoreErr(w, err)
		return
	}
	a, err := s.db.GetAgent(agentID)
	if err != nil {
		writeStoreErr(w, err)
		return
	}
	counts, err := s.db.CountsForAgent(agentID)
	if err != nil {
		writeStoreErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"agent": a, "counts": counts})
}

func (s *Server) handleUpdateAgent(w http.ResponseWriter, r *http.Request) {
	idOrSlug := chi.URLParam(r, "id")
	agentID, err := s.db.ResolveAgentID(idOrSlug)
	if err != nil {
		writeStoreErr(w, err)
		return
	}
	a, err := s.db.GetAgent(agentID)
	if err != nil {
		writeStoreErr(w, err)
		return
	}

	var req struct {
		DisplayName *string `json:"display_name"`
		Description *string `json:"description"`
		Config      *string `json:"config"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.DisplayName != nil {
		a.DisplayName = *req.DisplayName
	}
	if req.Description != nil {
		a.Description = *req.Description
	}
	if req.Config != nil {
		a.Config = *req.Config
	}
	if err := s.db.UpdateAgent(a); err != nil {
		writeStoreErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (s *Server) handlePatchCoreMemory(w http.ResponseWriter, r *http.Request) {
	idOrSlug := chi.URLParam(r, "id")
	agentID, err := s.db.ResolveAgentID(idOrSlug)
	if err != nil {
		writeStoreErr(w, err)
		return
	}

	patch, err := readRawBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "read body failed")
		return
	}

	merged, err := s.db.PatchCoreMemory(agentID, patch)
	if err != nil {
		writeStoreErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"core_memory": merged})
}

func (s *Server) handleCreateKey(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string   `json:"name"`
		AgentID     string   `json:"agent_id"`
		Permissions []string `json:"permissions"`
		RateLimit   int      `json:"rate_limit"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name required")
		return
	}
	if len(req.Permissions) == 0 {
		req.Permissions = []string{"read", "write"}
	}
	permsJSON, _ := marshalStrings(req.Permissions)

	k := &store.APIKey{
		Name:        req.Name,
		Permissions: permsJSON,
		RateLimit:   req.RateLimit,
	}
	if req.AgentID != "" {
		agentID, err := s.db.ResolveAgentID(req.AgentID)
		if err != nil {
			writeStoreErr(w, err)
			return
		}
		k.AgentID.String, k.AgentID.Valid = agentID, true
	}

	raw, err := s.db.CreateAPIKey(k)
	if err != nil {
		writeStoreErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"key": raw, "id": k.ID, "key_prefix": k.KeyPrefix})
}

func (s *Server) handleListKeys(w http.ResponseWriter, r *http.Request) {
	agentID := r.URL.Query().Get("agent_id")
	keys, err := s.db.ListAPIKeys(agentID)
	if err != nil {
		writeStoreErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"keys": keys})
}

func (s *Server) handleRevokeKey(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.db.RevokeAPIKey(id); err != nil {
		writeStoreErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

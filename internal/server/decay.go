package server

import "net/http"

func (s *Server) handleDecayStatus(w http.ResponseWriter, r *http.Request) {
	agentID, err := s.db.ResolveAgentID(r.URL.Query().Get("agent_id"))
	if err != nil {
		writeStoreErr(w, err)
		return
	}
	counts, err := s.db.CountsForAgent(agentID)
	if err != nil {
		writeStoreErr(w, err)
		return
	}
	policies, err := s.db.ListPoliciesForAgent(agentID)
	if err != nil {
		writeStoreErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"counts": counts, "policies": policies})
}

func (s *Server) handleDecaySweep(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AgentID string `json:"agent_id"`
	}
	// Body is optional — an empty agent_id sweeps every agent (§4.9).
	_ = decodeJSONOptional(r, &req)

	agentID := ""
	if req.AgentID != "" {
		resolved, err := s.db.ResolveAgentID(req.AgentID)
		if err != nil {
			writeStoreErr(w, err)
			return
		}
		agentID = resolved
	}

	stats, err := s.decay.Sweep(agentID)
	if err != nil {
		writeStoreErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

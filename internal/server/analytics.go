package server

import "net/http"

func (s *Server) handleAnalyticsQueries(w http.ResponseWriter, r *http.Request) {
	agentID := r.URL.Query().Get("agent_id")
	if agentID != "" {
		resolved, err := s.db.ResolveAgentID(agentID)
		if err != nil {
			writeStoreErr(w, err)
			return
		}
		agentID = resolved
	}

	summary, err := s.analytics.BuildSummary(agentID)
	if err != nil {
		writeStoreErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

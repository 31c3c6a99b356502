// Package analytics implements the best-effort query log (§4.10),
// grounded on rcliao-agent-memory's store/stats.go aggregate-counts shape.
package analytics

import (
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/hexmem/hexmem/internal/store"
)

const pruneRetentionDays = 30

// Logger appends query_log rows and never lets a logging failure affect
// the request that triggered it (§4.10, §7 propagation rule 4).
type Logger struct {
	DB  *store.DB
	Zap *zap.SugaredLogger
}

// Log appends one analytics row, swallowing any error.
func (l *Logger) Log(agentID, endpoint, queryText string, latencyMS int64, statusCode int) {
	metadata := map[string]any{"method": "POST", "status_code": statusCode}
	metaBytes, err := json.Marshal(metadata)
	metaJSON := "{}"
	if err == nil {
		metaJSON = string(metaBytes)
	}
	entry := &store.QueryLogEntry{
		AgentID:   agentID,
		Endpoint:  endpoint,
		QueryText: queryText,
		LatencyMS: latencyMS,
		Metadata:  metaJSON,
	}
	if err := l.DB.LogQuery(entry); err != nil && l.Zap != nil {
		l.Zap.Warnw("analytics: log query failed", "endpoint", endpoint, "err", err)
	}
}

// Summary is the response shape for GET /api/v1/analytics/queries.
type Summary struct {
	Stats  *store.QueryStats     `json:"stats"`
	Recent []store.QueryLogEntry `json:"recent,omitempty"`
}

// BuildSummary assembles the analytics summary for an agent (or all
// agents, if agentID is "").
func (l *Logger) BuildSummary(agentID string) (*Summary, error) {
	stats, err := l.DB.StatsForAgent(agentID)
	if err != nil {
		return nil, err
	}
	recent, err := l.DB.ListRecentQueries(agentID, 20)
	if err != nil {
		return nil, err
	}
	return &Summary{Stats: stats, Recent: recent}, nil
}

// StartPruneTicker deletes query_log rows older than 30 days, immediately
// and then every 6 hours, stopping when the returned stop func is called.
func (l *Logger) StartPruneTicker() (stop func()) {
	stopCh := make(chan struct{})
	prune := func() {
		cutoff := time.Now().Add(-pruneRetentionDays * 24 * time.Hour).UnixMilli()
		n, err := l.DB.PruneQueryLog(cutoff)
		if err != nil {
			if l.Zap != nil {
				l.Zap.Warnw("analytics: prune failed", "err", err)
			}
			return
		}
		if n > 0 && l.Zap != nil {
			l.Zap.Infow("analytics: pruned query log", "rows", n)
		}
	}

	prune()
	go func() {
		ticker := time.NewTicker(6 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				prune()
			case <-stopCh:
				return
			}
		}
	}()

	return func() { close(stopCh) }
}

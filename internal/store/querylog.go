package store

import (
	"database/sql"
	"fmt"
)

// QueryLogEntry records one recall/search request for analytics (§4.10).
type QueryLogEntry struct {
	ID         string
	AgentID    string
	Endpoint   string
	QueryText  string
	LatencyMS  int64
	Metadata   string // JSON object text
	CreatedAt  int64
}

// LogQuery appends an analytics row. Failures are not fatal to the request
// that triggered them, so callers should log and swallow errors from this.
func (db *DB) LogQuery(e *QueryLogEntry) error {
	if e.Metadata == "" {
		e.Metadata = "{}"
	}
	e.ID = NewID("qlog")
	e.CreatedAt = nowMillis()

	_, err := db.Exec(`
		INSERT INTO query_log (id, agent_id, endpoint, query_text, latency_ms, metadata, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, e.ID, e.AgentID, e.Endpoint, e.QueryText, e.LatencyMS, e.Metadata, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("log query: %w", err)
	}
	return nil
}

// PruneQueryLog deletes analytics rows older than cutoffMillis, run by the
// periodic prune ticker (§4.10) to bound the table's growth.
func (db *DB) PruneQueryLog(cutoffMillis int64) (int64, error) {
	res, err := db.Exec(`DELETE FROM query_log WHERE created_at < ?`, cutoffMillis)
	if err != nil {
		return 0, fmt.Errorf("prune query log: %w", err)
	}
	return res.RowsAffected()
}

// ListRecentQueries returns the most recent analytics rows, optionally
// scoped to an agent, for the analytics summary endpoint (§6).
func (db *DB) ListRecentQueries(agentID string, limit int) ([]QueryLogEntry, error) {
	if limit <= 0 {
		limit = 20
	}
	query := `SELECT id, agent_id, endpoint, query_text, latency_ms, metadata, created_at FROM query_log`
	var args []any
	if agentID != "" {
		query += " WHERE agent_id = ?"
		args = append(args, agentID)
	}
	query += " ORDER BY created_at DESC LIMIT ?"
	args = append(args, limit)

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list recent queries: %w", err)
	}
	defer rows.Close()

	var out []QueryLogEntry
	for rows.Next() {
		var e QueryLogEntry
		var agentID sql.NullString
		var queryText sql.NullString
		if err := rows.Scan(&e.ID, &agentID, &e.Endpoint, &queryText, &e.LatencyMS, &e.Metadata, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan query log row: %w", err)
		}
		e.AgentID = agentID.String
		e.QueryText = queryText.String
		out = append(out, e)
	}
	return out, rows.Err()
}

// QueryStats summarizes recent query volume and latency for an agent,
// surfaced on the stats endpoint (§6).
type QueryStats struct {
	TotalQueries  int64
	AvgLatencyMS  float64
	QueriesByType map[string]int64
}

// StatsForAgent aggregates query_log rows for an agent over the full
// retained window (bounded by the prune ticker's cutoff).
func (db *DB) StatsForAgent(agentID string) (*QueryStats, error) {
	stats := &QueryStats{QueriesByType: map[string]int64{}}

	err := db.QueryRow(`SELECT COUNT(*), COALESCE(AVG(latency_ms), 0) FROM query_log WHERE agent_id = ?`, agentID).
		Scan(&stats.TotalQueries, &stats.AvgLatencyMS)
	if err != nil {
		return nil, fmt.Errorf("stats totals: %w", err)
	}

	rows, err := db.Query(`SELECT endpoint, COUNT(*) FROM query_log WHERE agent_id = ? GROUP BY endpoint`, agentID)
	if err != nil {
		return nil, fmt.Errorf("stats by endpoint: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var endpoint string
		var count int64
		if err := rows.Scan(&endpoint, &count); err != nil {
			return nil, fmt.Errorf("scan stats row: %w", err)
		}
		stats.QueriesByType[endpoint] = count
	}
	return stats, rows.Err()
}

// Package decay implements the active→cooling→archived lifecycle sweep
// (§4.9), grounded on the teacher's `engine.DecayAllNodes`/
// `StartDecayTimer` ticker pattern, generalized from a single half-life
// formula to per-(agent,type) policy resolution.
package decay

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/hexmem/hexmem/internal/store"
)

// Stats summarizes one sweep's effect (§4.9).
type Stats struct {
	TransitionedToCooling  int `json:"transitioned_to_cooling"`
	TransitionedToArchived int `json:"transitioned_to_archived"`
	ImmuneItems            int `json:"immune_items"`
}

func (a *Stats) add(b Stats) {
	a.TransitionedToCooling += b.TransitionedToCooling
	a.TransitionedToArchived += b.TransitionedToArchived
	a.ImmuneItems += b.ImmuneItems
}

var sweepTables = []struct {
	Type      string
	Table     string
	TimeField string // created_at or occurred_at, used for the TTL clock
}{
	{"session_message", "session_messages", "created_at"},
	{"fact", "facts", "created_at"},
	{"decision", "decisions", "created_at"},
	{"task", "tasks", "created_at"},
	{"event", "events", "occurred_at"},
}

const coolingToArchivedDays = 30

// Engine runs manual and scheduled decay sweeps.
type Engine struct {
	DB     *store.DB
	Log    *zap.SugaredLogger
	stopCh chan struct{}
}

// New creates a decay engine.
func New(db *store.DB, log *zap.SugaredLogger) *Engine {
	return &Engine{DB: db, Log: log, stopCh: make(chan struct{})}
}

// Sweep runs the two-phase transition over every memory table, optionally
// scoped to one agent. Passing "" sweeps every agent.
func (e *Engine) Sweep(agentID string) (Stats, error) {
	var total Stats
	agents, err := e.agentScope(agentID)
	if err != nil {
		return total, err
	}

	for _, aid := range agents {
		for _, t := range sweepTables {
			policy, err := e.DB.ResolvePolicy(aid, t.Type)
			if err != nil {
				if e.Log != nil {
					e.Log.Warnw("decay: resolve policy failed", "agent_id", aid, "type", t.Type, "err", err)
				}
				continue
			}
			stats, err := e.sweepTable(aid, t.Table, t.TimeField, policy)
			if err != nil {
				if e.Log != nil {
					e.Log.Warnw("decay: sweep table failed", "table", t.Table, "err", err)
				}
				continue
			}
			total.add(stats)
		}
	}
	return total, nil
}

func (e *Engine) agentScope(agentID string) ([]string, error) {
	if agentID != "" {
		return []string{agentID}, nil
	}
	agents, err := e.DB.ListAgents()
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(agents))
	for i, a := range agents {
		ids[i] = a.ID
	}
	return ids, nil
}

func (e *Engine) sweepTable(agentID, table, timeField string, policy *store.DecayPolicy) (Stats, error) {
	var stats Stats
	now := time.Now().UnixMilli()

	// Immune: active rows already past min_accesses (reported regardless of TTL state, §4.9).
	if err := e.DB.QueryRow(
		`SELECT COUNT(*) FROM `+table+` WHERE agent_id = ? AND decay_status = 'active' AND access_count >= ?`,
		agentID, policy.MinAccesses,
	).Scan(&stats.ImmuneItems); err != nil {
		return stats, fmt.Errorf("count immune: %w", err)
	}

	if policy.TTLDays.Valid {
		ttlCutoff := now - policy.TTLDays.Int64*24*int64(time.Hour/time.Millisecond)
		res, err := e.DB.Exec(
			`UPDATE `+table+` SET decay_status = 'cooling', updated_at = ?
			 WHERE agent_id = ? AND decay_status = 'active' AND access_count < ?
			   AND ((last_accessed_at IS NULL AND `+timeField+` < ?) OR last_accessed_at < ?)`,
			now, agentID, policy.MinAccesses, ttlCutoff, ttlCutoff,
		)
		if err != nil {
			return stats, fmt.Errorf("active->cooling: %w", err)
		}
		n, _ := res.RowsAffected()
		stats.TransitionedToCooling = int(n)
	}

	archiveCutoff := now - coolingToArchivedDays*24*int64(time.Hour/time.Millisecond)
	res, err := e.DB.Exec(
		`UPDATE `+table+` SET decay_status = 'archived', updated_at = ?
		 WHERE agent_id = ? AND decay_status = 'cooling' AND updated_at < ?`,
		now, agentID, archiveCutoff,
	)
	if err != nil {
		return stats, fmt.Errorf("cooling->archived: %w", err)
	}
	n, _ := res.RowsAffected()
	stats.TransitionedToArchived = int(n)

	return stats, nil
}

// Revive moves a cooling/archived item back to active, bumping its access
// accounting as if it had just been read (§4.11).
func (e *Engine) Revive(table, id string) error {
	now := time.Now().UnixMilli()
	_, err := e.DB.Exec(
		`UPDATE `+table+` SET decay_status = 'active', access_count = access_count + 1, last_accessed_at = ? WHERE id = ?`,
		now, id,
	)
	return err
}

// StartTicker runs a sweep immediately and then every hour, stopping on Stop.
func (e *Engine) StartTicker() {
	if stats, err := e.Sweep(""); err != nil {
		if e.Log != nil {
			e.Log.Warnw("decay: startup sweep failed", "err", err)
		}
	} else if e.Log != nil {
		e.Log.Infow("decay: startup sweep complete", "cooling", stats.TransitionedToCooling, "archived", stats.TransitionedToArchived)
	}

	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if stats, err := e.Sweep(""); err != nil {
					if e.Log != nil {
						e.Log.Warnw("decay: scheduled sweep failed", "err", err)
					}
				} else if e.Log != nil {
					e.Log.Infow("decay: scheduled sweep complete", "cooling", stats.TransitionedToCooling, "archived", stats.TransitionedToArchived)
				}
			case <-e.stopCh:
				return
			}
		}
	}()
}

// Stop shuts down the decay ticker goroutine.
func (e *Engine) Stop() {
	close(e.stopCh)
}

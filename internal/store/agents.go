package store

import (
	"database/sql"
	"fmt"
	"regexp"
	"strings"
)

// SlugPattern is the accepted format for agent and project slugs (§6).
var SlugPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

var slugNonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify derives a project slug from a display name (§3 I4): lowercase,
// runs of non-alphanumerics collapsed to a single "-", leading/trailing
// "-" trimmed.
func Slugify(name string) string {
	s := slugNonAlphanumeric.ReplaceAllString(strings.ToLower(name), "-")
	return strings.Trim(s, "-")
}

// Agent is a named principal owning a private memory namespace.
type Agent struct {
	ID          string
	Slug        string
	DisplayName string
	Description string
	CoreMemory  string // JSON object text
	Config      string // JSON object text
	CreatedAt   int64
	UpdatedAt   int64
}

// ErrNotFound is returned by lookups that find no matching row.
var ErrNotFound = fmt.Errorf("not found")

// ErrConflict is returned on unique-constraint violations the caller should
// surface as 409 (e.g. a duplicate agent slug).
var ErrConflict = fmt.Errorf("conflict")

// CreateAgent inserts a new agent. Returns ErrConflict if the slug is taken.
func (db *DB) CreateAgent(a *Agent) error {
	if !SlugPattern.MatchString(a.Slug) {
		return fmt.Errorf("invalid slug %q", a.Slug)
	}
	if a.CoreMemory == "" {
		a.CoreMemory = "{}"
	}
	if a.Config == "" {
		a.Config = "{}"
	}
	now := nowMillis()
	a.ID = NewID("agent")
	a.CreatedAt, a.UpdatedAt = now, now

	_, err := db.Exec(`
		INSERT INTO agents (id, slug, display_name, description, core_memory, config, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, a.ID, a.Slug, a.DisplayName, a.Description, a.CoreMemory, a.Config, a.CreatedAt, a.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return fmt.Errorf("create agent: %w", err)
	}
	db.cachePut("agent_slug:"+a.Slug, a.ID)
	return nil
}

// ResolveAgentID resolves a UUID/ULID or slug to a canonical agent id,
// consulting (and populating) the slug cache on the slug path.
func (db *DB) ResolveAgentID(idOrSlug string) (string, error) {
	if _, err := db.GetAgent(idOrSlug); err == nil {
		return idOrSlug, nil
	}
	if id, ok := db.cacheGet("agent_slug:" + idOrSlug); ok {
		return id, nil
	}
	a, err := db.GetAgentBySlug(idOrSlug)
	if err != nil {
		return "", err
	}
	db.cachePut("agent_slug:"+idOrSlug, a.ID)
	return a.ID, nil
}

// GetAgent returns an agent by id.
func (db *DB) GetAgent(id string) (*Agent, error) {
	return db.scanAgent(db.QueryRow(`
		SELECT id, slug, display_name, description, core_memory, config, created_at, updated_at
		FROM agents WHERE id = ?
	`, id))
}

// GetAgentBySlug returns an agent by slug.
func (db *DB) GetAgentBySlug(slug string) (*Agent, error) {
	return db.scanAgent(db.QueryRow(`
		SELECT id, slug, display_name, description, core_memory, config, created_at, updated_at
		FROM agents WHERE slug = ?
	`, slug))
}

func (db *DB) scanAgent(row *sql.Row) (*Agent, error) {
	var a Agent
	var desc sql.NullString
	err := row.Scan(&a.ID, &a.Slug, &a.DisplayName, &desc, &a.CoreMemory, &a.Config, &a.CreatedAt, &a.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan agent: %w", err)
	}
	a.Description = desc.String
	return &a, nil
}

// ListAgents returns all agents ordered by creation time.
func (db *DB) ListAgents() ([]Agent, error) {
	rows, err := db.Query(`
		SELECT id, slug, display_name, description, core_memory, config, created_at, updated_at
		FROM agents ORDER BY created_at
	`)
	if err != nil {
		return nil, fmt.Errorf("list agents: %w", err)
	}
	defer rows.Close()

	var agents []Agent
	for rows.Next() {
		var a Agent
		var desc sql.NullString
		if err := rows.Scan(&a.ID, &a.Slug, &a.DisplayName, &desc, &a.CoreMemory, &a.Config, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan agent: %w", err)
		}
		a.Description = desc.String
		agents = append(agents, a)
	}
	return agents, rows.Err()
}

// UpdateAgent updates display_name/description/config (partial; empty
// string fields are treated as "leave unchanged" by the caller, which
// pre-fills them from the existing row before calling this).
func (db *DB) UpdateAgent(a *Agent) error {
	a.UpdatedAt = nowMillis()
	_, err := db.Exec(`
		UPDATE agents SET display_name = ?, description = ?, config = ?, updated_at = ?
		WHERE id = ?
	`, a.DisplayName, a.Description, a.Config, a.UpdatedAt, a.ID)
	if err != nil {
		return fmt.Errorf("update agent: %w", err)
	}
	return nil
}

// PatchCoreMemory applies a JSON merge-patch (null-stripping) to the
// agent's core_memory atomically within a single statement round trip.
func (db *DB) PatchCoreMemory(agentID string, patchJSON []byte) (string, error) {
	a, err := db.GetAgent(agentID)
	if err != nil {
		return "", err
	}
	merged, err := MergePatch([]byte(a.CoreMemory), patchJSON)
	if err != nil {
		return "", fmt.Errorf("merge core memory: %w", err)
	}
	now := nowMillis()
	if _, err := db.Exec(`UPDATE agents SET core_memory = ?, updated_at = ? WHERE id = ?`, string(merged), now, agentID); err != nil {
		return "", fmt.Errorf("patch core memory: %w", err)
	}
	return string(merged), nil
}

// AgentCounts holds per-table row counts for an agent, surfaced on the
// agent detail endpoint.
type AgentCounts struct {
	SessionMessages int `json:"session_messages"`
	Facts           int `json:"facts"`
	Decisions       int `json:"decisions"`
	Tasks           int `json:"tasks"`
	Events          int `json:"events"`
	Projects        int `json:"projects"`
}

// CountsForAgent returns row counts across every memory table for an agent.
func (db *DB) CountsForAgent(agentID string) (AgentCounts, error) {
	var c AgentCounts
	queries := []struct {
		table string
		dest  *int
	}{
		{"session_messages", &c.SessionMessages},
		{"facts", &c.Facts},
		{"decisions", &c.Decisions},
		{"tasks", &c.Tasks},
		{"events", &c.Events},
		{"projects", &c.Projects},
	}
	for _, q := range queries {
		if err := db.QueryRow(`SELECT COUNT(*) FROM `+q.table+` WHERE agent_id = ?`, agentID).Scan(q.dest); err != nil {
			return c, fmt.Errorf("count %s: %w", q.table, err)
		}
	}
	return c, nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	// modernc.org/sqlite wraps the underlying sqlite3 error text; it does not
	// expose a typed error code through database/sql, so we match on the
	// driver's message the way the teacher's store package already treats
	// SQLite errors as opaque strings from Exec/QueryRow.
	msg := err.Error()
	return containsAny(msg, "UNIQUE constraint failed", "constraint failed: UNIQUE")
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if len(s) >= len(sub) {
			for i := 0; i+len(sub) <= len(s); i++ {
				if s[i:i+len(sub)] == sub {
					return true
				}
			}
		}
	}
	return false
}

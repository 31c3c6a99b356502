package store

import (
	"database/sql"
	"fmt"
)

// Project groups tasks and events under a named initiative, scoped unique
// by (agent_id, slug) so two agents may each have their own "website-v2" (§3).
type Project struct {
	ID          string
	AgentID     string
	Slug        string
	Name        string
	Description sql.NullString
	Status      string
	Tags        string // JSON array text
	Embedding   []byte
	Metadata    string // JSON object text
	CreatedAt   int64
	UpdatedAt   int64
}

// CreateProject inserts a new project. Returns ErrConflict if the
// (agent_id, slug) pair already exists.
func (db *DB) CreateProject(p *Project) error {
	if !SlugPattern.MatchString(p.Slug) {
		return fmt.Errorf("invalid slug %q", p.Slug)
	}
	if p.Status == "" {
		p.Status = "active"
	}
	if p.Tags == "" {
		p.Tags = "[]"
	}
	if p.Metadata == "" {
		p.Metadata = "{}"
	}
	now := nowMillis()
	p.ID = NewID("project")
	p.CreatedAt, p.UpdatedAt = now, now

	_, err := db.Exec(`
		INSERT INTO projects (id, agent_id, slug, name, description, status, tags, metadata, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, p.ID, p.AgentID, p.Slug, p.Name, p.Description, p.Status, p.Tags, p.Metadata, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return fmt.Errorf("create project: %w", err)
	}
	db.cachePut("project_slug:"+p.AgentID+":"+p.Slug, p.ID)
	return nil
}

// ResolveProjectID resolves a project id or (agent-scoped) slug to its id.
func (db *DB) ResolveProjectID(agentID, idOrSlug string) (string, error) {
	key := "project_slug:" + agentID + ":" + idOrSlug
	if id, ok := db.cacheGet(key); ok {
		return id, nil
	}
	if p, err := db.GetProject(agentID, idOrSlug); err == nil {
		return p.ID, nil
	}
	p, err := db.GetProjectBySlug(agentID, idOrSlug)
	if err != nil {
		return "", err
	}
	db.cachePut(key, p.ID)
	return p.ID, nil
}

// GetProject returns a project by id, scoped to an agent.
func (db *DB) GetProject(agentID, id string) (*Project, error) {
	return db.scanProject(db.QueryRow(`
		SELECT id, agent_id, slug, name, description, status, tags, embedding, metadata, created_at, updated_at
		FROM projects WHERE agent_id = ? AND id = ?
	`, agentID, id))
}

// GetProjectBySlug returns a project by its agent-scoped slug.
func (db *DB) GetProjectBySlug(agentID, slug string) (*Project, error) {
	return db.scanProject(db.QueryRow(`
		SELECT id, agent_id, slug, name, description, status, tags, embedding, metadata, created_at, updated_at
		FROM projects WHERE agent_id = ? AND slug = ?
	`, agentID, slug))
}

func (db *DB) scanProject(row *sql.Row) (*Project, error) {
	var p Project
	err := row.Scan(&p.ID, &p.AgentID, &p.Slug, &p.Name, &p.Description, &p.Status, &p.Tags,
		&p.Embedding, &p.Metadata, &p.CreatedAt, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan project: %w", err)
	}
	return &p, nil
}

// ListProjects returns projects for an agent, optionally filtered by status.
func (db *DB) ListProjects(agentID, status string) ([]Project, error) {
	query := `
		SELECT id, agent_id, slug, name, description, status, tags, embedding, metadata, created_at, updated_at
		FROM projects WHERE agent_id = ?`
	args := []any{agentID}
	if status != "" {
		query += " AND status = ?"
		args = append(args, status)
	}
	query += " ORDER BY updated_at DESC"

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var out []Project
	for rows.Next() {
		var p Project
		if err := rows.Scan(&p.ID, &p.AgentID, &p.Slug, &p.Name, &p.Description, &p.Status, &p.Tags,
			&p.Embedding, &p.Metadata, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// UpdateProjectStatus transitions a project's lifecycle status.
func (db *DB) UpdateProjectStatus(id, status string) error {
	_, err := db.Exec(`UPDATE projects SET status = ?, updated_at = ? WHERE id = ?`, status, nowMillis(), id)
	if err != nil {
		return fmt.Errorf("update project status: %w", err)
	}
	return nil
}

// DeleteProject removes a project by id, scoped to an agent.
func (db *DB) DeleteProject(agentID, id string) error {
	res, err := db.Exec(`DELETE FROM projects WHERE agent_id = ? AND id = ?`, agentID, id)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

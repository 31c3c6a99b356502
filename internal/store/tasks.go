package store

import (
	"database/sql"
	"fmt"
)

// Task is actionable work, optionally attached to a project (§3).
type Task struct {
	ID             string
	AgentID        string
	ProjectID      sql.NullString
	Title          string
	Description    sql.NullString
	Status         string
	Priority       int
	Assignee       sql.NullString
	DueDate        sql.NullInt64
	BlockedBy      sql.NullString
	SessionID      sql.NullString
	Tags           string // JSON array text
	Embedding      []byte
	EmbeddingModel sql.NullString
	DecayStatus    string
	AccessCount    int
	LastAccessedAt sql.NullInt64
	CreatedAt      int64
	UpdatedAt      int64
}

var validTaskStatuses = map[string]bool{
	"not_started": true, "in_progress": true, "blocked": true, "complete": true, "cancelled": true,
}

// CreateTask inserts a new task.
func (db *DB) CreateTask(t *Task) error {
	if t.Status == "" {
		t.Status = "not_started"
	}
	if !validTaskStatuses[t.Status] {
		return fmt.Errorf("invalid task status %q", t.Status)
	}
	if t.Priority == 0 {
		t.Priority = 50
	}
	if t.Tags == "" {
		t.Tags = "[]"
	}
	now := nowMillis()
	t.ID = NewID("task")
	t.CreatedAt, t.UpdatedAt = now, now
	t.DecayStatus = "active"

	_, err := db.Exec(`
		INSERT INTO tasks (id, agent_id, project_id, title, description, status, priority, assignee,
		                   due_date, blocked_by, session_id, tags, decay_status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 'active', ?, ?)
	`, t.ID, t.AgentID, t.ProjectID, t.Title, t.Description, t.Status, t.Priority, t.Assignee,
		t.DueDate, t.BlockedBy, t.SessionID, t.Tags, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

// GetTask returns a task by id, scoped to an agent.
func (db *DB) GetTask(agentID, id string) (*Task, error) {
	t := &Task{}
	err := db.QueryRow(`
		SELECT id, agent_id, project_id, title, description, status, priority, assignee, due_date,
		       blocked_by, session_id, tags, embedding, embedding_model, decay_status, access_count,
		       last_accessed_at, created_at, updated_at
		FROM tasks WHERE agent_id = ? AND id = ?
	`, agentID, id).Scan(&t.ID, &t.AgentID, &t.ProjectID, &t.Title, &t.Description, &t.Status, &t.Priority,
		&t.Assignee, &t.DueDate, &t.BlockedBy, &t.SessionID, &t.Tags, &t.Embedding, &t.EmbeddingModel,
		&t.DecayStatus, &t.AccessCount, &t.LastAccessedAt, &t.CreatedAt, &t.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

// SetTaskEmbedding persists a computed embedding for a task.
func (db *DB) SetTaskEmbedding(id string, vec []byte, model string) error {
	_, err := db.Exec(`UPDATE tasks SET embedding = ?, embedding_model = ? WHERE id = ?`, vec, model, id)
	if err != nil {
		return fmt.Errorf("set task embedding: %w", err)
	}
	return nil
}

// UpdateTaskStatus transitions a task's status.
func (db *DB) UpdateTaskStatus(id, status string) error {
	if !validTaskStatuses[status] {
		return fmt.Errorf("invalid task status %q", status)
	}
	_, err := db.Exec(`UPDATE tasks SET status = ?, updated_at = ? WHERE id = ?`, status, nowMillis(), id)
	if err != nil {
		return fmt.Errorf("update task status: %w", err)
	}
	return nil
}

// DeleteTask removes a task by id, scoped to an agent.
func (db *DB) DeleteTask(agentID, id string) error {
	res, err := db.Exec(`DELETE FROM tasks WHERE agent_id = ? AND id = ?`, agentID, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListTasks returns tasks for an agent, optionally filtered by project and/or status.
func (db *DB) ListTasks(agentID, projectID, status string) ([]Task, error) {
	query := `
		SELECT id, agent_id, project_id, title, description, status, priority, assignee, due_date,
		       blocked_by, session_id, tags, embedding, embedding_model, decay_status, access_count,
		       last_accessed_at, created_at, updated_at
		FROM tasks WHERE agent_id = ?`
	args := []any{agentID}
	if projectID != "" {
		query += " AND project_id = ?"
		args = append(args, projectID)
	}
	if status != "" {
		query += " AND status = ?"
		args = append(args, status)
	}
	query += " ORDER BY priority DESC, created_at DESC"

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var out []Task
	for rows.Next() {
		var t Task
		if err := rows.Scan(&t.ID, &t.AgentID, &t.ProjectID, &t.Title, &t.Description, &t.Status, &t.Priority,
			&t.Assignee, &t.DueDate, &t.BlockedBy, &t.SessionID, &t.Tags, &t.Embedding, &t.EmbeddingModel,
			&t.DecayStatus, &t.AccessCount, &t.LastAccessedAt, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

package store

import "fmt"

// MemoryRow is the closed-variant view of a memory item used by recall and
// dedup: every concrete type (fact, decision, task, event, session_message)
// is projected into this shared shape so the recall planner and dedup
// scanner can iterate one value table instead of dispatching on type name
// (§9: "model as a tagged variant with a small value table... rather than
// dynamic dispatch on strings").
type MemoryRow struct {
	ID          string
	Type        string
	Table       string
	Content     string // canonical content per §4.4's formula
	Embedding   []byte
	AccessCount int
	CreatedAt   int64 // created_at, or occurred_at for events
}

// itemTypes is the closed set of recall/dedup-eligible memory types and the
// table each lives in.
var itemTypes = []struct {
	Name  string
	Table string
}{
	{"session_message", "session_messages"},
	{"fact", "facts"},
	{"decision", "decisions"},
	{"task", "tasks"},
	{"event", "events"},
}

// ValidItemTypes returns the names of the closed item-type set, used to
// validate a `types` filter on recall/search requests.
func ValidItemTypes() []string {
	names := make([]string, len(itemTypes))
	for i, t := range itemTypes {
		names[i] = t.Name
	}
	return names
}

func filteredTypes(types []string) []struct{ Name, Table string } {
	if len(types) == 0 {
		out := make([]struct{ Name, Table string }, len(itemTypes))
		copy(out, itemTypes)
		return out
	}
	want := make(map[string]bool, len(types))
	for _, t := range types {
		want[t] = true
	}
	var out []struct{ Name, Table string }
	for _, t := range itemTypes {
		if want[t.Name] {
			out = append(out, t)
		}
	}
	return out
}

// ActiveRows returns every active row across the given item types (or all
// types if nil/empty), scoped to an agent, projected into the canonical
// MemoryRow shape the recall planner and dedup scanner share. Per I3, only
// active rows participate — cooling/archived items are excluded here and
// remain reachable only by direct id lookup.
func (db *DB) ActiveRows(agentID string, types []string) ([]MemoryRow, error) {
	var out []MemoryRow
	for _, t := range filteredTypes(types) {
		rows, err := db.activeRowsForTable(agentID, t.Name, t.Table)
		if err != nil {
			return nil, err
		}
		out = append(out, rows...)
	}
	return out, nil
}

// FetchItemContent returns a human-readable content string for any node
// type that can appear as an edge endpoint, including "session" (edges
// link memory items to the session they were derived in, and §4.8 requires
// graph expansion to be able to resolve any neighbor, not just the five
// recall-eligible types). Returns ErrNotFound if the row is gone — callers
// on the expansion path must treat that as a dangling edge and skip it
// rather than fail the whole request (§4.8: "callers must handle dangling
// edges gracefully").
func (db *DB) FetchItemContent(agentID, itemType, id string) (string, error) {
	switch itemType {
	case "fact":
		f, err := db.GetFact(agentID, id)
		if err != nil {
			return "", err
		}
		return f.Content, nil
	case "decision":
		d, err := db.GetDecision(agentID, id)
		if err != nil {
			return "", err
		}
		return d.Title + ": " + d.DecisionText, nil
	case "task":
		t, err := db.GetTask(agentID, id)
		if err != nil {
			return "", err
		}
		return t.Title, nil
	case "event":
		e, err := db.GetEvent(agentID, id)
		if err != nil {
			return "", err
		}
		return e.Title, nil
	case "session_message":
		m, err := db.GetMessage(id)
		if err != nil {
			return "", err
		}
		return m.Content, nil
	case "session":
		s, err := db.GetSession(id)
		if err != nil {
			return "", err
		}
		if s.Summary.Valid {
			return s.Summary.String, nil
		}
		return "session " + s.ID, nil
	default:
		return "", ErrNotFound
	}
}

func (db *DB) activeRowsForTable(agentID, typeName, table string) ([]MemoryRow, error) {
	var query string
	switch typeName {
	case "decision":
		query = `SELECT id, title, decision, embedding, access_count, created_at FROM decisions WHERE agent_id = ? AND decay_status = 'active'`
	case "session_message":
		query = `SELECT id, content, embedding, access_count, created_at FROM session_messages WHERE agent_id = ? AND decay_status = 'active'`
	case "fact":
		query = `SELECT id, content, embedding, access_count, created_at FROM facts WHERE agent_id = ? AND decay_status = 'active'`
	case "task":
		query = `SELECT id, title, embedding, access_count, created_at FROM tasks WHERE agent_id = ? AND decay_status = 'active'`
	case "event":
		query = `SELECT id, title, embedding, access_count, occurred_at FROM events WHERE agent_id = ? AND decay_status = 'active'`
	default:
		return nil, fmt.Errorf("unknown item type %q", typeName)
	}

	rows, err := db.Query(query, agentID)
	if err != nil {
		return nil, fmt.Errorf("active rows for %s: %w", table, err)
	}
	defer rows.Close()

	var out []MemoryRow
	for rows.Next() {
		m := MemoryRow{Type: typeName, Table: table}
		if typeName == "decision" {
			var title, decision string
			if err := rows.Scan(&m.ID, &title, &decision, &m.Embedding, &m.AccessCount, &m.CreatedAt); err != nil {
				return nil, fmt.Errorf("scan %s row: %w", table, err)
			}
			m.Content = title + ": " + decision
		} else {
			if err := rows.Scan(&m.ID, &m.Content, &m.Embedding, &m.AccessCount, &m.CreatedAt); err != nil {
				return nil, fmt.Errorf("scan %s row: %w", table, err)
			}
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// Package ingest implements HexMem's ingestion pipeline: message
// persistence, context assembly, extraction, per-item storage, and
// derivation-edge creation (§4.5), grounded on the teacher's
// `engine.ExtractSession`/`extractMemories` orchestration.
package ingest

import (
	"context"
	"database/sql"

	"go.uber.org/zap"

	"github.com/hexmem/hexmem/internal/embedding"
	"github.com/hexmem/hexmem/internal/extraction"
	"github.com/hexmem/hexmem/internal/store"
)

// Pipeline wires the store to the pluggable embedding/extraction/
// summarization capabilities, composed at construction time the way §9
// directs ("model as a construction-time composition root passed into the
// ingestion, recall, and decay components by interface").
type Pipeline struct {
	DB         *store.DB
	Embedder   embedding.Embedder
	Extractor  extraction.Extractor
	Summarizer extraction.Summarizer
	Log        *zap.SugaredLogger
}

// ExtractedCounts tallies how many of each type the extractor produced and
// this pipeline persisted for a single addMessage call.
type ExtractedCounts struct {
	Facts     int `json:"facts"`
	Decisions int `json:"decisions"`
	Tasks     int `json:"tasks"`
	Events    int `json:"events"`
}

// AddMessageResult is addMessage's return value (§4.5 step 7).
type AddMessageResult struct {
	Message   store.SessionMessage
	Extracted ExtractedCounts
}

// AddMessage persists a session message and runs the best-effort
// extraction pipeline over it.
func (p *Pipeline) AddMessage(ctx context.Context, sessionID, role, content, metadata string) (*AddMessageResult, error) {
	sess, err := p.DB.GetSession(sessionID)
	if err != nil {
		return nil, err
	}

	msg := &store.SessionMessage{
		SessionID: sessionID,
		AgentID:   sess.AgentID,
		Role:      role,
		Content:   content,
	}

	// Best-effort embed (§4.5 step 2): failure never blocks persistence (§7 propagation rule 1).
	var embVec []float32
	if p.Embedder != nil {
		if vec, embErr := p.Embedder.Embed(ctx, content); embErr == nil {
			embVec = vec
		} else if p.Log != nil {
			p.Log.Warnw("ingest: embed message failed, persisting without embedding", "session_id", sessionID, "err", embErr)
		}
	}

	if err := p.DB.AddMessage(msg); err != nil {
		return nil, err
	}
	if embVec != nil {
		if err := p.DB.SetMessageEmbedding(msg.ID, store.EncodeEmbedding(embVec), p.Embedder.Model()); err != nil && p.Log != nil {
			p.Log.Warnw("ingest: persist message embedding failed", "message_id", msg.ID, "err", err)
		}
	}

	result := &AddMessageResult{Message: *msg}

	// Assemble tail context: 4 most recent prior messages, oldest-first (§4.5 step 4).
	priorMessages, err := p.DB.ListMessages(sessionID)
	if err != nil {
		if p.Log != nil {
			p.Log.Warnw("ingest: assemble context failed", "session_id", sessionID, "err", err)
		}
		return result, nil
	}
	recentContext := tailContext(priorMessages, msg.ID, 4)

	if p.Extractor == nil {
		return result, nil
	}
	candidates, err := p.Extractor.Extract(ctx, content, recentContext)
	if err != nil {
		if p.Log != nil {
			p.Log.Warnw("ingest: extraction failed, proceeding with empty extraction", "session_id", sessionID, "err", err)
		}
		return result, nil
	}

	for _, c := range candidates {
		if storeErr := p.storeExtracted(ctx, sess.AgentID, sessionID, c); storeErr != nil {
			if p.Log != nil {
				p.Log.Warnw("ingest: store extracted candidate failed", "type", c.Type, "err", storeErr)
			}
			continue
		}
		switch c.Type {
		case "fact":
			result.Extracted.Facts++
		case "decision":
			result.Extracted.Decisions++
		case "task":
			result.Extracted.Tasks++
		case "event":
			result.Extracted.Events++
		}
	}

	return result, nil
}

// tailContext returns the up-to-n most recent messages preceding excludeID,
// oldest-first, as plain content strings.
func tailContext(messages []store.SessionMessage, excludeID string, n int) []string {
	var prior []store.SessionMessage
	for _, m := range messages {
		if m.ID == excludeID {
			continue
		}
		prior = append(prior, m)
	}
	if len(prior) > n {
		prior = prior[len(prior)-n:]
	}
	out := make([]string, len(prior))
	for i, m := range prior {
		out[i] = m.Content
	}
	return out
}

// storeExtracted persists one extracted candidate without dedup rejection
// (extraction is authoritative per §4.5 step 6) and links it to the
// originating session with a derivation edge.
func (p *Pipeline) storeExtracted(ctx context.Context, agentID, sessionID string, c extraction.Candidate) error {
	switch c.Type {
	case "fact":
		f := &store.Fact{AgentID: agentID, Content: c.Content, Confidence: c.Confidence,
			SessionID: sql.NullString{String: sessionID, Valid: true}}
		if c.Subject != "" {
			f.Subject = sql.NullString{String: c.Subject, Valid: true}
		}
		if c.Source != "" {
			f.Source = sql.NullString{String: c.Source, Valid: true}
		}
		f.Tags = tagsJSON(c.Tags)
		_, _, err := p.CreateFact(ctx, agentID, f, false)
		if err != nil {
			return err
		}
		return p.DB.CreateEdge(&store.Edge{AgentID: agentID, SourceType: "fact", SourceID: f.ID,
			TargetType: "session", TargetID: sessionID, Relation: "derived_from"})

	case "decision":
		d := &store.Decision{AgentID: agentID, Title: truncate(c.Content, 120), DecisionText: c.Content,
			SessionID: sql.NullString{String: sessionID, Valid: true}}
		if c.Rationale != "" {
			d.Rationale = sql.NullString{String: c.Rationale, Valid: true}
		}
		d.Alternatives = tagsJSON(c.Alternatives)
		d.Tags = tagsJSON(c.Tags)
		_, _, err := p.CreateDecision(ctx, agentID, d, false)
		if err != nil {
			return err
		}
		return p.DB.CreateEdge(&store.Edge{AgentID: agentID, SourceType: "decision", SourceID: d.ID,
			TargetType: "session", TargetID: sessionID, Relation: "decided_in"})

	case "task":
		priority := c.Priority
		if priority == 0 {
			priority = 50
		}
		t := &store.Task{AgentID: agentID, Title: truncate(c.Content, 120), Priority: priority,
			SessionID: sql.NullString{String: sessionID, Valid: true}}
		t.Tags = tagsJSON(c.Tags)
		_, _, err := p.CreateTask(ctx, agentID, t, false)
		if err != nil {
			return err
		}
		return p.DB.CreateEdge(&store.Edge{AgentID: agentID, SourceType: "task", SourceID: t.ID,
			TargetType: "session", TargetID: sessionID, Relation: "derived_from"})

	case "event":
		eventType := c.EventType
		if eventType == "" {
			eventType = "discovery"
		}
		severity := c.Severity
		if severity == "" {
			severity = "info"
		}
		e := &store.Event{AgentID: agentID, Title: truncate(c.Content, 120), EventType: eventType,
			Severity: severity, SessionID: sql.NullString{String: sessionID, Valid: true}}
		e.Tags = tagsJSON(c.Tags)
		_, _, err := p.CreateEvent(ctx, agentID, e, false)
		if err != nil {
			return err
		}
		return p.DB.CreateEdge(&store.Edge{AgentID: agentID, SourceType: "event", SourceID: e.ID,
			TargetType: "session", TargetID: sessionID, Relation: "derived_from"})
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

func tagsJSON(tags []string) string {
	if len(tags) == 0 {
		return "[]"
	}
	out := "["
	for i, t := range tags {
		if i > 0 {
			out += ","
		}
		out += `"` + t + `"`
	}
	return out + "]"
}

// bestEffortEmbed embeds text, swallowing failures per §7 propagation rule 1.
func (p *Pipeline) bestEffortEmbed(ctx context.Context, text string) []float32 {
	if p.Embedder == nil {
		return nil
	}
	vec, err := p.Embedder.Embed(ctx, text)
	if err != nil {
		if p.Log != nil {
			p.Log.Warnw("ingest: embed failed, item will have no embedding", "err", err)
		}
		return nil
	}
	return vec
}

package ingest

import (
	"context"

	"github.com/hexmem/hexmem/internal/dedup"
	"github.com/hexmem/hexmem/internal/store"
)

// checkDedup runs the §4.4 two-stage pipeline for a direct write. It
// returns the embedding it computed along the way (if the semantic stage
// ran) so a subsequent insert on a dedup miss doesn't re-embed the same text.
func (p *Pipeline) checkDedup(ctx context.Context, agentID, itemType, content string) (*dedup.Result, []float32) {
	candidates, err := p.DB.ActiveRows(agentID, []string{itemType})
	if err != nil {
		// §7 propagation rule 3: dedup failure falls through to semantic stage;
		// with no candidates to compare against, that stage also reports no match.
		return nil, nil
	}
	if r, ok := dedup.MatchSyntactic(content, candidates); ok {
		return r, nil
	}
	vec := p.bestEffortEmbed(ctx, content)
	if r, ok := dedup.MatchSemantic(vec, candidates); ok {
		return r, vec
	}
	return nil, vec
}

// CreateFact stores a fact. When dedupCheck is true (direct write API), a
// §4.4 match short-circuits the insert and is returned as the second value.
func (p *Pipeline) CreateFact(ctx context.Context, agentID string, f *store.Fact, dedupCheck bool) (*store.Fact, *dedup.Result, error) {
	var vec []float32
	if dedupCheck {
		if r, v := p.checkDedup(ctx, agentID, "fact", f.Content); r != nil {
			return nil, r, nil
		} else {
			vec = v
		}
	}
	if vec == nil {
		vec = p.bestEffortEmbed(ctx, f.Content)
	}
	if err := p.DB.CreateFact(f); err != nil {
		return nil, nil, err
	}
	if vec != nil {
		_ = p.DB.SetFactEmbedding(f.ID, store.EncodeEmbedding(vec), p.Embedder.Model())
	}
	return f, nil, nil
}

// CreateDecision stores a decision; canonical content is "{title}: {decision}" (§4.4).
func (p *Pipeline) CreateDecision(ctx context.Context, agentID string, d *store.Decision, dedupCheck bool) (*store.Decision, *dedup.Result, error) {
	canonical := d.Title + ": " + d.DecisionText
	var vec []float32
	if dedupCheck {
		if r, v := p.checkDedup(ctx, agentID, "decision", canonical); r != nil {
			return nil, r, nil
		} else {
			vec = v
		}
	}
	if vec == nil {
		vec = p.bestEffortEmbed(ctx, canonical)
	}
	if err := p.DB.CreateDecision(d); err != nil {
		return nil, nil, err
	}
	if vec != nil {
		_ = p.DB.SetDecisionEmbedding(d.ID, store.EncodeEmbedding(vec), p.Embedder.Model())
	}
	return d, nil, nil
}

// CreateTask stores a task; canonical content is its title (§4.4).
func (p *Pipeline) CreateTask(ctx context.Context, agentID string, t *store.Task, dedupCheck bool) (*store.Task, *dedup.Result, error) {
	var vec []float32
	if dedupCheck {
		if r, v := p.checkDedup(ctx, agentID, "task", t.Title); r != nil {
			return nil, r, nil
		} else {
			vec = v
		}
	}
	if vec == nil {
		vec = p.bestEffortEmbed(ctx, t.Title)
	}
	if err := p.DB.CreateTask(t); err != nil {
		return nil, nil, err
	}
	if vec != nil {
		_ = p.DB.SetTaskEmbedding(t.ID, store.EncodeEmbedding(vec), p.Embedder.Model())
	}
	return t, nil, nil
}

// CreateEvent stores an event; canonical content is its title (§4.4).
func (p *Pipeline) CreateEvent(ctx context.Context, agentID string, e *store.Event, dedupCheck bool) (*store.Event, *dedup.Result, error) {
	var vec []float32
	if dedupCheck {
		if r, v := p.checkDedup(ctx, agentID, "event", e.Title); r != nil {
			return nil, r, nil
		} else {
			vec = v
		}
	}
	if vec == nil {
		vec = p.bestEffortEmbed(ctx, e.Title)
	}
	if err := p.DB.CreateEvent(e); err != nil {
		return nil, nil, err
	}
	if vec != nil {
		_ = p.DB.SetEventEmbedding(e.ID, store.EncodeEmbedding(vec), p.Embedder.Model())
	}
	return e, nil, nil
}

// EndSession summarizes (best-effort) and marks a session ended. Returns
// InvalidArgument-equivalent (ErrAlreadyEnded) if already ended (§4.11, P6).
func (p *Pipeline) EndSession(ctx context.Context, sessionID string) (*store.Session, error) {
	sess, err := p.DB.GetSession(sessionID)
	if err != nil {
		return nil, err
	}
	if sess.EndedAt.Valid {
		return nil, ErrAlreadyEnded
	}

	summary := ""
	if p.Summarizer != nil {
		messages, err := p.DB.ListMessages(sessionID)
		if err == nil {
			contents := make([]string, len(messages))
			for i, m := range messages {
				contents[i] = m.Content
			}
			if s, sumErr := p.Summarizer.Summarize(ctx, contents); sumErr == nil {
				summary = s
			} else if p.Log != nil {
				p.Log.Warnw("ingest: summarize failed, ending session with empty summary", "session_id", sessionID, "err", sumErr)
			}
		}
	}

	if err := p.DB.EndSession(sessionID, summary); err != nil {
		return nil, err
	}
	return p.DB.GetSession(sessionID)
}

// Package extraction turns raw session content into structured memory
// candidates (facts, decisions, tasks, events) and session summaries.
package extraction

import (
	"context"
	"strings"
	"unicode"
)

// Content size limits, following the teacher's approximate token→char
// conversion (1 token ≈ 4 chars).
const (
	maxContentChars = 4000
	minContentChars = 8
)

// Candidate is a single proposed memory item pulled out of session content.
// Most fields are per-type (§4.3): Confidence/Source apply to facts;
// Rationale/Alternatives to decisions; Priority to tasks;
// EventType/Severity to events. An implementation leaves a field at its
// zero value when its type doesn't use it; storeExtracted falls back to
// the type's own default in that case.
type Candidate struct {
	Type    string // "fact" | "decision" | "task" | "event"
	Content string
	Subject string
	Tags    []string

	// Fact-only.
	Confidence float64
	Source     string

	// Decision-only.
	Rationale    string
	Alternatives []string

	// Task-only.
	Priority int

	// Event-only.
	EventType string
	Severity  string
}

// Extractor pulls structured memory candidates out of raw text, given the
// current message and up to 4 preceding messages of context (§4.3). The
// capability is pluggable (an LLM-backed implementation is the obvious
// production swap-in) the same way the teacher keeps `llm.Client`
// pluggable behind an interface rather than hard-coding a provider.
type Extractor interface {
	Extract(ctx context.Context, currentMessage string, recentContext []string) ([]Candidate, error)
}

// Summarizer condenses a session transcript into a short summary string,
// stored on Session.Summary at session-close time.
type Summarizer interface {
	Summarize(ctx context.Context, messages []string) (string, error)
}

// RuleExtractor is the self-contained default: it splits text into
// sentences and classifies each by surface cues, requiring no external
// service so the module builds and tests standalone. It is intentionally
// conservative — it under-extracts rather than hallucinates structure a
// real LLM-backed Extractor would infer from context.
type RuleExtractor struct{}

func (RuleExtractor) Extract(_ context.Context, currentMessage string, _ []string) ([]Candidate, error) {
	var out []Candidate
	for _, sentence := range splitSentences(currentMessage) {
		sentence = strings.TrimSpace(sentence)
		if len(sentence) < minContentChars {
			continue
		}
		if len(sentence) > maxContentChars {
			sentence = truncateClean(sentence, maxContentChars)
		}

		lower := strings.ToLower(sentence)
		switch {
		case containsAny(lower, "we decided", "we will use", "decision:", "going with"):
			out = append(out, Candidate{Type: "decision", Content: sentence, Rationale: rationaleClause(sentence)})
		case containsAny(lower, "todo", "need to", "we should", "task:"):
			out = append(out, Candidate{Type: "task", Content: sentence, Priority: taskPriority(lower)})
		case containsAny(lower, "error", "failed", "crashed", "incident", "outage"):
			out = append(out, Candidate{Type: "event", Content: sentence, EventType: "incident", Severity: eventSeverity(lower)})
		case containsAny(lower, " is ", " are ", " was ", " were ", "always", "never"):
			out = append(out, Candidate{Type: "fact", Content: sentence, Confidence: 0.8})
		}
	}
	return out, nil
}

// RuleSummarizer joins the first and last message of a session into a
// terse summary — a placeholder strategy good enough to populate
// Session.Summary without an external call.
type RuleSummarizer struct{}

func (RuleSummarizer) Summarize(_ context.Context, messages []string) (string, error) {
	if len(messages) == 0 {
		return "", nil
	}
	first := truncateClean(strings.TrimSpace(messages[0]), 200)
	if len(messages) == 1 {
		return first, nil
	}
	last := truncateClean(strings.TrimSpace(messages[len(messages)-1]), 200)
	return first + " ... " + last, nil
}

func splitSentences(text string) []string {
	var sentences []string
	var cur strings.Builder
	for _, r := range text {
		cur.WriteRune(r)
		if r == '.' || r == '!' || r == '?' || r == '\n' {
			sentences = append(sentences, cur.String())
			cur.Reset()
		}
	}
	if cur.Len() > 0 {
		sentences = append(sentences, cur.String())
	}
	return sentences
}

// rationaleClause pulls the "because ..." clause out of a decision sentence,
// if present, as a cheap stand-in for a real rationale extraction.
func rationaleClause(sentence string) string {
	lower := strings.ToLower(sentence)
	if i := strings.Index(lower, "because"); i >= 0 {
		return strings.TrimSpace(strings.Trim(sentence[i+len("because"):], " .!?\n"))
	}
	return ""
}

// taskPriority bumps the default priority for sentences carrying urgency cues.
func taskPriority(lower string) int {
	if containsAny(lower, "urgent", "asap", "critical", "immediately") {
		return 80
	}
	return 50
}

// eventSeverity maps surface cues to §3's severity enum.
func eventSeverity(lower string) string {
	if containsAny(lower, "crashed", "outage", "down") {
		return "critical"
	}
	if containsAny(lower, "failed", "error") {
		return "warning"
	}
	return "info"
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// truncateClean truncates s to maxLen, cutting at the last word boundary.
func truncateClean(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	truncated := s[:maxLen]
	if idx := strings.LastIndexFunc(truncated, unicode.IsSpace); idx > maxLen-40 {
		truncated = truncated[:idx]
	}
	return strings.TrimSpace(truncated)
}

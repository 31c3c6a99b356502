package extraction

import (
	"context"
	"strings"
	"testing"
)

func extractTypes(t *testing.T, candidates []Candidate) []string {
	t.Helper()
	var types []string
	for _, c := range candidates {
		types = append(types, c.Type)
	}
	return types
}

func TestRuleExtractorClassifiesDecision(t *testing.T) {
	var r RuleExtractor
	got, err := r.Extract(context.Background(), "We decided to use SQLite for storage.", nil)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	types := extractTypes(t, got)
	if !containsType(types, "decision") {
		t.Errorf("types = %v, want decision", types)
	}
}

func TestRuleExtractorClassifiesTask(t *testing.T) {
	var r RuleExtractor
	got, err := r.Extract(context.Background(), "We need to write more integration tests.", nil)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	types := extractTypes(t, got)
	if !containsType(types, "task") {
		t.Errorf("types = %v, want task", types)
	}
}

func TestRuleExtractorClassifiesEvent(t *testing.T) {
	var r RuleExtractor
	got, err := r.Extract(context.Background(), "The deploy crashed during the rollout.", nil)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	types := extractTypes(t, got)
	if !containsType(types, "event") {
		t.Errorf("types = %v, want event", types)
	}
}

func TestRuleExtractorClassifiesFact(t *testing.T) {
	var r RuleExtractor
	got, err := r.Extract(context.Background(), "The API is stateless by design.", nil)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	types := extractTypes(t, got)
	if !containsType(types, "fact") {
		t.Errorf("types = %v, want fact", types)
	}
}

func TestRuleExtractorSkipsShortSentences(t *testing.T) {
	var r RuleExtractor
	got, err := r.Extract(context.Background(), "ok.", nil)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no candidates for a too-short sentence, got %v", got)
	}
}

func TestRuleExtractorTruncatesLongContent(t *testing.T) {
	var r RuleExtractor
	long := "We decided to use " + strings.Repeat("x", maxContentChars+500) + " as our storage backend."
	got, err := r.Extract(context.Background(), long, nil)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	for _, c := range got {
		if len(c.Content) > maxContentChars {
			t.Errorf("content length %d exceeds maxContentChars %d", len(c.Content), maxContentChars)
		}
	}
}

func TestRuleExtractorSetsEventSeverity(t *testing.T) {
	var r RuleExtractor
	got, err := r.Extract(context.Background(), "The deploy crashed during the rollout.", nil)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	for _, c := range got {
		if c.Type == "event" && c.Severity != "critical" {
			t.Errorf("Severity = %q, want critical", c.Severity)
		}
	}
}

func TestRuleExtractorSetsDecisionRationale(t *testing.T) {
	var r RuleExtractor
	got, err := r.Extract(context.Background(), "We decided to use SQLite because it needs no separate server.", nil)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	for _, c := range got {
		if c.Type == "decision" && c.Rationale == "" {
			t.Errorf("expected a non-empty rationale extracted from the because-clause")
		}
	}
}

func TestRuleSummarizerEmptyMessages(t *testing.T) {
	var s RuleSummarizer
	got, err := s.Summarize(context.Background(), nil)
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if got != "" {
		t.Errorf("got %q, want empty string", got)
	}
}

func TestRuleSummarizerSingleMessage(t *testing.T) {
	var s RuleSummarizer
	got, err := s.Summarize(context.Background(), []string{"hello there"})
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if got != "hello there" {
		t.Errorf("got %q, want %q", got, "hello there")
	}
}

func TestRuleSummarizerJoinsFirstAndLast(t *testing.T) {
	var s RuleSummarizer
	got, err := s.Summarize(context.Background(), []string{"first message", "middle message", "last message"})
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if !strings.Contains(got, "first message") || !strings.Contains(got, "last message") {
		t.Errorf("got %q, want both first and last message", got)
	}
	if strings.Contains(got, "middle message") {
		t.Errorf("got %q, middle message should be dropped", got)
	}
}

func containsType(types []string, want string) bool {
	for _, t := range types {
		if t == want {
			return true
		}
	}
	return false
}

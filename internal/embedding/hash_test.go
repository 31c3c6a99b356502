package embedding

import (
	"context"
	"math"
	"testing"
)

func TestHashEmbedderDeterministic(t *testing.T) {
	h := NewHashEmbedder(64)
	a, err := h.Embed(context.Background(), "the quick brown fox")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	b, err := h.Embed(context.Background(), "the quick brown fox")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("embedding not deterministic at index %d: %f != %f", i, a[i], b[i])
		}
	}
}

func TestHashEmbedderL2Normalized(t *testing.T) {
	h := NewHashEmbedder(64)
	vec, err := h.Embed(context.Background(), "vectors should be unit length after normalization")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	norm = math.Sqrt(norm)
	if math.Abs(norm-1.0) > 1e-5 {
		t.Errorf("norm = %f, want ~1.0", norm)
	}
}

func TestHashEmbedderEmptyTextReturnsZeroVector(t *testing.T) {
	h := NewHashEmbedder(32)
	vec, err := h.Embed(context.Background(), "")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	for i, v := range vec {
		if v != 0 {
			t.Errorf("vec[%d] = %f, want 0 for empty input", i, v)
		}
	}
}

func TestHashEmbedderDefaultsDims(t *testing.T) {
	h := NewHashEmbedder(0)
	if h.Dimensions() != 256 {
		t.Errorf("Dimensions = %d, want 256 default", h.Dimensions())
	}
}

func TestTokenizeDropsSingleCharNoise(t *testing.T) {
	tokens := tokenize("a big dog runs to a store")
	for _, tok := range tokens {
		if len(tok) <= 1 {
			t.Errorf("unexpected single-char token %q", tok)
		}
	}
	if len(tokens) == 0 {
		t.Error("expected some multi-char tokens")
	}
}

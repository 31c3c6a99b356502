// Package dedup implements the two-stage duplicate check run before a new
// memory item is persisted (§4.4): a cheap syntactic screen runs first over
// the full candidate set; only when it finds nothing does the semantic
// stage embed and compare by cosine similarity.
package dedup

import (
	"github.com/hexmem/hexmem/internal/store"
)

// SyntacticThreshold is the minimum trigram similarity for a syntactic match.
const SyntacticThreshold = 0.6

// SemanticThreshold is the minimum cosine similarity for a semantic match.
const SemanticThreshold = 0.92

// Result is a dedup hit: the matched row's id, the similarity that cleared
// the threshold, and which stage found it.
type Result struct {
	ExistingID string
	Similarity float64
	Stage      string // "syntactic" | "semantic"
}

// MatchSyntactic scans candidates' canonical content for the top trigram
// match, returning it if it clears SyntacticThreshold. This mirrors the
// teacher's own pairwise-scan Dedup (`engine.Dedup` clusters by cosine
// threshold over a candidate slice) generalized to trigram similarity as
// the cheap first pass.
func MatchSyntactic(newContent string, candidates []store.MemoryRow) (*Result, bool) {
	var best *store.MemoryRow
	bestSim := -1.0
	for i := range candidates {
		sim := store.TrigramSimilarity(newContent, candidates[i].Content)
		if sim > bestSim {
			best, bestSim = &candidates[i], sim
		}
	}
	if best == nil || bestSim < SyntacticThreshold {
		return nil, false
	}
	return &Result{ExistingID: best.ID, Similarity: bestSim, Stage: "syntactic"}, true
}

// MatchSemantic scans candidates' embeddings for the top cosine match,
// returning it if it clears SemanticThreshold. Candidates with no
// embedding are skipped — I2 requires the semantic path ignore null-
// embedding rows entirely.
func MatchSemantic(newEmbedding []float32, candidates []store.MemoryRow) (*Result, bool) {
	if len(newEmbedding) == 0 {
		return nil, false
	}
	var best *store.MemoryRow
	bestSim := -1.0
	for i := range candidates {
		if len(candidates[i].Embedding) == 0 {
			continue
		}
		vec := store.DecodeEmbedding(candidates[i].Embedding)
		sim := 1 - store.CosineDistance(newEmbedding, vec)
		if sim > bestSim {
			best, bestSim = &candidates[i], sim
		}
	}
	if best == nil || bestSim < SemanticThreshold {
		return nil, false
	}
	return &Result{ExistingID: best.ID, Similarity: bestSim, Stage: "semantic"}, true
}

// Check runs the full two-stage pipeline: syntactic first, semantic only on
// a syntactic miss (§4.4 step 2: "If stage 1 finds no match and an embedder
// is available..."). newEmbedding may be nil if embedding failed or no
// embedder is configured, in which case only the syntactic stage runs.
func Check(newContent string, newEmbedding []float32, candidates []store.MemoryRow) (*Result, bool) {
	if r, ok := MatchSyntactic(newContent, candidates); ok {
		return r, true
	}
	return MatchSemantic(newEmbedding, candidates)
}

package embedding

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
)

// HashEmbedder is the offline default: a deterministic bag-of-words
// embedding using feature hashing into a fixed-width vector, L2-normalized.
// It needs no external service and no pre-built vocabulary (unlike the
// corpus-fitted TF-IDF approach), which is what makes it suitable as the
// zero-config default and the embedder tests run against.
type HashEmbedder struct {
	dims int
}

// NewHashEmbedder returns a HashEmbedder with the given vector width.
func NewHashEmbedder(dims int) *HashEmbedder {
	if dims <= 0 {
		dims = 256
	}
	return &HashEmbedder{dims: dims}
}

func (h *HashEmbedder) Model() string  { return "hash-fnv32" }
func (h *HashEmbedder) Dimensions() int { return h.dims }

// Embed hashes each token into a bucket, accumulates signed counts (the
// sign resolved from a second hash bit, the standard feature-hashing trick
// to reduce collision bias), then L2-normalizes.
func (h *HashEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	vec := make([]float32, h.dims)
	tokens := tokenize(text)
	if len(tokens) == 0 {
		return vec, nil
	}

	for _, tok := range tokens {
		sum := fnv.New32a()
		sum.Write([]byte(tok))
		hv := sum.Sum32()
		bucket := int(hv % uint32(h.dims))
		if (hv>>31)&1 == 0 {
			vec[bucket]++
		} else {
			vec[bucket]--
		}
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm == 0 {
		return vec, nil
	}
	norm = math.Sqrt(norm)
	for i, v := range vec {
		vec[i] = float32(float64(v) / norm)
	}
	return vec, nil
}

// tokenize splits text into lowercase tokens of ASCII letters, digits, '-'
// and '_', dropping
// single-character noise the way the teacher's tokenizer does.
func tokenize(text string) []string {
	text = strings.ToLower(text)
	var tokens []string
	var cur strings.Builder
	for _, r := range text {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			cur.WriteRune(r)
		} else {
			if cur.Len() > 1 {
				tokens = append(tokens, cur.String())
			}
			cur.Reset()
		}
	}
	if cur.Len() > 1 {
		tokens = append(tokens, cur.String())
	}
	return tokens
}

// Package embedding generates vector representations of memory content.
package embedding

import "context"

// Embedder turns text into a fixed-dimension vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Model() string
	Dimensions() int
}

// EmbedBatch embeds a slice of texts sequentially. Most Embedder
// implementations have no native batch endpoint worth wiring, so every
// Embedder, HTTPEmbedder included, goes through this plain loop.
func EmbedBatch(ctx context.Context, e Embedder, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		vec, err := e.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

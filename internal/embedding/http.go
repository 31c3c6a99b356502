package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HTTPEmbedder calls a pluggable external embedding provider over HTTP,
// speaking the Ollama-style /api/embed contract (request: {model, input},
// response: {embeddings: [[...]]}) that the teacher's OllamaEmbedder
// targets. Any provider exposing that shape — a local Ollama instance or
// a compatible gateway — can sit behind this adapter.
type HTTPEmbedder struct {
	baseURL string
	model   string
	dims    int
	client  *http.Client
}

// NewHTTPEmbedder builds an HTTP-backed embedder.
func NewHTTPEmbedder(baseURL, model string, dims int) *HTTPEmbedder {
	return &HTTPEmbedder{
		baseURL: baseURL,
		model:   model,
		dims:    dims,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (h *HTTPEmbedder) Model() string  { return h.model }
func (h *HTTPEmbedder) Dimensions() int { return h.dims }

// Embed posts text to the provider's embed endpoint and returns the first
// result vector, narrowed from float64 to the store's float32 wire format.
func (h *HTTPEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	reqBody, err := json.Marshal(map[string]any{
		"model": h.model,
		"input": text,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal embed request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.baseURL+"/api/embed", bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("create embed request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embed provider request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read embed response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("embed provider status %d: %s", resp.StatusCode, body)
	}

	var result struct {
		Embeddings [][]float64 `json:"embeddings"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("decode embed response: %w", err)
	}
	if len(result.Embeddings) == 0 {
		return nil, fmt.Errorf("embed provider returned no embeddings")
	}

	vec := make([]float32, len(result.Embeddings[0]))
	for i, v := range result.Embeddings[0] {
		vec[i] = float32(v)
	}
	h.dims = len(vec)
	return vec, nil
}

// Probe checks whether the provider is reachable and the model responds,
// used by hexmemd to fall back to HashEmbedder at startup when the configured
// HTTP provider does not respond.
func Probe(baseURL, model string) bool {
	client := &http.Client{Timeout: 3 * time.Second}
	body, _ := json.Marshal(map[string]any{"model": model, "input": "probe"})
	resp, err := client.Post(baseURL+"/api/embed", "application/json", bytes.NewReader(body))
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

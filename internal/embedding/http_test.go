package embedding

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHTTPEmbedderEmbedParsesFirstVector(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Model string `json:"model"`
			Input string `json:"input"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Model != "test-model" {
			t.Errorf("model = %q, want test-model", req.Model)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"embeddings": [][]float64{{0.5, -0.5, 1.0}},
		})
	}))
	defer srv.Close()

	e := NewHTTPEmbedder(srv.URL, "test-model", 3)
	vec, err := e.Embed(context.Background(), "hello world")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if len(vec) != 3 {
		t.Fatalf("len = %d, want 3", len(vec))
	}
	if vec[0] != 0.5 || vec[1] != -0.5 || vec[2] != 1.0 {
		t.Errorf("vec = %v, want [0.5 -0.5 1.0]", vec)
	}
}

func TestHTTPEmbedderNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("provider down"))
	}))
	defer srv.Close()

	e := NewHTTPEmbedder(srv.URL, "test-model", 3)
	if _, err := e.Embed(context.Background(), "hello"); err == nil {
		t.Error("expected error on non-200 status")
	}
}

func TestHTTPEmbedderEmptyEmbeddingsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"embeddings": [][]float64{}})
	}))
	defer srv.Close()

	e := NewHTTPEmbedder(srv.URL, "test-model", 3)
	if _, err := e.Embed(context.Background(), "hello"); err == nil {
		t.Error("expected error for empty embeddings response")
	}
}

func TestProbeReturnsFalseOnUnreachable(t *testing.T) {
	if Probe("http://127.0.0.1:1", "test-model") {
		t.Error("expected Probe to fail against unreachable host")
	}
}

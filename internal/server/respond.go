package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/hexmem/hexmem/internal/auth"
	"github.com/hexmem/hexmem/internal/dedup"
	"github.com/hexmem/hexmem/internal/ingest"
	"github.com/hexmem/hexmem/internal/recall"
	"github.com/hexmem/hexmem/internal/store"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		json.NewEncoder(w).Encode(body)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeConflict(w http.ResponseWriter, res *dedup.Result) {
	writeJSON(w, http.StatusConflict, map[string]any{
		"error":      "duplicate",
		"existing_id": res.ExistingID,
		"similarity":  res.Similarity,
	})
}

// writeStoreErr maps a store/domain error to the HTTP status table in §7.
func writeStoreErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, store.ErrConflict):
		writeError(w, http.StatusConflict, "conflict")
	case errors.Is(err, auth.ErrUnauthenticated):
		writeError(w, http.StatusUnauthorized, "unauthenticated")
	case errors.Is(err, auth.ErrPermissionDenied):
		writeError(w, http.StatusForbidden, "permission denied")
	case errors.Is(err, recall.ErrMissingAgent):
		writeError(w, http.StatusBadRequest, "agent_id required")
	case errors.Is(err, recall.ErrEmbedderUnavailable):
		writeError(w, http.StatusServiceUnavailable, "embedder not configured")
	case errors.Is(err, ingest.ErrAlreadyEnded):
		writeError(w, http.StatusBadRequest, "session already ended")
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return false
	}
	return true
}

// decodeJSONOptional decodes a request body that may legitimately be empty
// (e.g. a POST with no parameters). An empty body is not an error.
func decodeJSONOptional(r *http.Request, dst any) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func readRawBody(r *http.Request) ([]byte, error) {
	return io.ReadAll(r.Body)
}

func marshalStrings(v []string) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "[]", err
	}
	return string(b), nil
}

package store

import (
	"crypto/rand"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// entropy is a package-level ULID entropy source. ulid.Monotonic is safe for
// concurrent use per the library's own documentation (it guards its internal
// counter), so a single shared source is fine across goroutines.
var entropy = ulid.Monotonic(rand.Reader, 0)

// NewID generates a new lexicographically-sortable identifier for the given
// entity kind, e.g. NewID("fact") -> "fact_01hq1z3c2e8y1jf5w6n7p8q9r0".
// The kind prefix makes ids self-describing in logs and API responses while
// the ULID suffix keeps them sortable by creation time.
func NewID(kind string) string {
	return kind + "_" + strings.ToLower(ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String())
}

func nowMillis() int64 {
	return time.Now().UnixMilli()
}

// randomSecret returns raw API key material (returned to the caller exactly
// once, never persisted — only its SHA-256 hash is stored). Two concatenated
// random UUIDs give ample entropy without pulling in a dedicated CSRNG-string
// helper the pack doesn't otherwise use.
func randomSecret() string {
	a, err := uuid.NewRandom()
	if err != nil {
		panic("store: crypto/rand unavailable: " + err.Error())
	}
	b, err := uuid.NewRandom()
	if err != nil {
		panic("store: crypto/rand unavailable: " + err.Error())
	}
	return strings.ReplaceAll(a.String(), "-", "") + strings.ReplaceAll(b.String(), "-", "")
}

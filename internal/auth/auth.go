// Package auth implements HexMem's bearer-token authentication contract
// (§6): API keys are SHA-256-hashed and matched against `key_hash`, or a
// single configured development key grants unscoped {read,write,admin}.
package auth

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/hexmem/hexmem/internal/store"
)

// ErrUnauthenticated covers missing/invalid/revoked/expired tokens (401).
var ErrUnauthenticated = errors.New("unauthenticated")

// ErrPermissionDenied covers a valid token lacking a required permission (403).
var ErrPermissionDenied = errors.New("permission denied")

// Principal is the authenticated caller for one request.
type Principal struct {
	KeyID       string
	AgentID     string // empty means unscoped (dev key or agent-less API key)
	Permissions map[string]bool
}

// HasPermission reports whether the principal holds the named permission.
func (p *Principal) HasPermission(perm string) bool {
	return p.Permissions[perm]
}

// Authenticator validates bearer tokens against the store and an optional
// development key.
type Authenticator struct {
	DB       *store.DB
	DevKey   string // if set and matched, grants unscoped read/write/admin
}

// Authenticate parses the Authorization header value (already stripped of
// the "Bearer " prefix by the caller) and returns the resulting principal.
func (a *Authenticator) Authenticate(token string) (*Principal, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrUnauthenticated
	}

	if a.DevKey != "" && token == a.DevKey {
		return &Principal{
			Permissions: map[string]bool{"read": true, "write": true, "admin": true},
		}, nil
	}

	raw := strings.TrimPrefix(token, "hexmem_")
	key, err := a.DB.AuthenticateKey(raw)
	if err != nil {
		return nil, ErrUnauthenticated
	}

	perms, err := parsePermissions(key.Permissions)
	if err != nil {
		perms = map[string]bool{"read": true}
	}

	return &Principal{
		KeyID:       key.ID,
		AgentID:     key.AgentID.String,
		Permissions: perms,
	}, nil
}

// Require returns ErrPermissionDenied if the principal lacks perm.
func Require(p *Principal, perm string) error {
	if !p.HasPermission(perm) {
		return ErrPermissionDenied
	}
	return nil
}

func parsePermissions(permsJSON string) (map[string]bool, error) {
	var list []string
	if err := json.Unmarshal([]byte(permsJSON), &list); err != nil {
		return nil, err
	}
	out := make(map[string]bool, len(list))
	for _, p := range list {
		out[p] = true
	}
	return out, nil
}

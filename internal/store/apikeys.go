package store

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
)

// APIKey is a bearer credential scoped to zero or more agents (a NULL
// agent_id key can act on any agent it's been granted permissions for,
// per the permission model in §7). Only the hash is ever persisted; the
// raw secret is returned once, at creation time.
type APIKey struct {
	ID          string
	KeyHash     string
	KeyPrefix   string
	Name        string
	AgentID     sql.NullString
	Permissions string // JSON array text, e.g. ["read","write","admin"]
	RateLimit   int
	ExpiresAt   sql.NullInt64
	LastUsedAt  sql.NullInt64
	RevokedAt   sql.NullInt64
	CreatedAt   int64
}

// HashKey computes the stored digest for a raw API key secret. Plain
// SHA-256 is sufficient here — the secret is high-entropy (two random
// UUIDs, 244 random bits, via randomSecret), so this isn't a password-hashing problem
// requiring a slow KDF like bcrypt/argon2.
func HashKey(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// CreateAPIKey generates a new raw secret, stores its hash, and returns
// the raw secret — the only time it is ever available in plaintext.
func (db *DB) CreateAPIKey(k *APIKey) (rawKey string, err error) {
	if k.Permissions == "" {
		k.Permissions = `["read"]`
	}
	raw := randomSecret()
	k.ID = NewID("key")
	k.KeyHash = HashKey(raw)
	k.KeyPrefix = raw[:8]
	k.CreatedAt = nowMillis()

	_, err = db.Exec(`
		INSERT INTO api_keys (id, key_hash, key_prefix, name, agent_id, permissions, rate_limit, expires_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, k.ID, k.KeyHash, k.KeyPrefix, k.Name, k.AgentID, k.Permissions, k.RateLimit, k.ExpiresAt, k.CreatedAt)
	if err != nil {
		return "", fmt.Errorf("create api key: %w", err)
	}
	return "hexmem_" + raw, nil
}

// AuthenticateKey looks up an API key by its raw secret's hash, rejecting
// revoked or expired keys, and stamps last_used_at on success.
func (db *DB) AuthenticateKey(raw string) (*APIKey, error) {
	hash := HashKey(raw)
	k := &APIKey{}
	err := db.QueryRow(`
		SELECT id, key_hash, key_prefix, name, agent_id, permissions, rate_limit, expires_at, last_used_at, revoked_at, created_at
		FROM api_keys WHERE key_hash = ?
	`, hash).Scan(&k.ID, &k.KeyHash, &k.KeyPrefix, &k.Name, &k.AgentID, &k.Permissions, &k.RateLimit,
		&k.ExpiresAt, &k.LastUsedAt, &k.RevokedAt, &k.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("authenticate key: %w", err)
	}
	if k.RevokedAt.Valid {
		return nil, fmt.Errorf("key revoked")
	}
	now := nowMillis()
	if k.ExpiresAt.Valid && k.ExpiresAt.Int64 < now {
		return nil, fmt.Errorf("key expired")
	}
	if _, err := db.Exec(`UPDATE api_keys SET last_used_at = ? WHERE id = ?`, now, k.ID); err != nil {
		return nil, fmt.Errorf("stamp key usage: %w", err)
	}
	return k, nil
}

// RevokeAPIKey marks a key unusable without deleting its audit row.
func (db *DB) RevokeAPIKey(id string) error {
	_, err := db.Exec(`UPDATE api_keys SET revoked_at = ? WHERE id = ?`, nowMillis(), id)
	if err != nil {
		return fmt.Errorf("revoke api key: %w", err)
	}
	return nil
}

// ListAPIKeys returns key metadata (never the hash or raw secret) for an
// optional agent scope; passing "" lists keys across all agents.
func (db *DB) ListAPIKeys(agentID string) ([]APIKey, error) {
	query := `
		SELECT id, key_hash, key_prefix, name, agent_id, permissions, rate_limit, expires_at, last_used_at, revoked_at, created_at
		FROM api_keys`
	var args []any
	if agentID != "" {
		query += " WHERE agent_id = ?"
		args = append(args, agentID)
	}
	query += " ORDER BY created_at DESC"

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list api keys: %w", err)
	}
	defer rows.Close()

	var out []APIKey
	for rows.Next() {
		var k APIKey
		if err := rows.Scan(&k.ID, &k.KeyHash, &k.KeyPrefix, &k.Name, &k.AgentID, &k.Permissions, &k.RateLimit,
			&k.ExpiresAt, &k.LastUsedAt, &k.RevokedAt, &k.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan api key: %w", err)
		}
		out = append(out, k)
	}
	return out, rows.Err()
}

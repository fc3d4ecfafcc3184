package auth

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// SessionMetadata is the opaque per-session record: enough to show the
// user a "your devices" view, nothing that grants access by itself.
type SessionMetadata struct {
	UserAgent string `json:"ua,omitempty"`
	IP        string `json:"ip,omitempty"`
}

// SessionStore tracks which refresh-token jtis are currently valid per
// user. Existence of the entry is the sole proof of validity: a signed
// refresh token without a matching entry is dead.
type SessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSessionStore builds a store whose entries expire with the refresh
// credential lifetime.
func NewSessionStore(client *redis.Client, refreshTTL time.Duration) *SessionStore {
	return &SessionStore{client: client, ttl: refreshTTL}
}

// Store writes the session entry. Must be called in the same logical
// step as issuing the refresh token for the same jti: a token without a
// session is permanently unusable.
func (s *SessionStore) Store(ctx context.Context, userID, jti string, meta SessionMetadata) error {
	payload, err := json.Marshal(meta)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, refreshSessionKey(userID, jti), payload, s.ttl).Err()
}

// Has reports whether the session entry exists. Absence means the
// refresh token is revoked or expired even if its signature verifies.
func (s *SessionStore) Has(ctx context.Context, userID, jti string) (bool, error) {
	n, err := s.client.Exists(ctx, refreshSessionKey(userID, jti)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Delete removes a single session. Used during rotation and single
// session logout.
func (s *SessionStore) Delete(ctx context.Context, userID, jti string) error {
	return s.client.Del(ctx, refreshSessionKey(userID, jti)).Err()
}

// DeleteAll removes every session for the user via a cursor scan. Not
// atomic with respect to concurrent logins: a session created while the
// scan runs may survive. Acceptable for small per-user session counts.
func (s *SessionStore) DeleteAll(ctx context.Context, userID string) error {
	var cursor uint64
	for {
		keys, next, err := s.client.Scan(ctx, cursor, refreshSessionPattern(userID), 100).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := s.client.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}

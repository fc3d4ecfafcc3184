package auth

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "github.com/spec-kit/teamchat-service/pkg/util"
)

// DenylistGuard tracks access-token jtis revoked before their natural
// expiry. Store errors are returned to the caller so the request path
// can fail closed: silently admitting a potentially revoked token would
// defeat the guard.
type DenylistGuard struct {
	client *redis.Client
}

// NewDenylistGuard builds the guard.
func NewDenylistGuard(client *redis.Client) *DenylistGuard {
	return &DenylistGuard{client: client}
}

// Revoke inserts a denylist entry that lives exactly as long as the
// token would have. expiresAt must come from the token's own exp claim.
func (g *DenylistGuard) Revoke(ctx context.Context, jti string, expiresAt time.Time) error {
	if jti == "" || expiresAt.IsZero() {
		return apperrors.NewValidationError("token missing jti or expiry", nil)
	}
	ttl := time.Until(expiresAt)
	if ttl < 0 {
		ttl = 0
	}
	if ttl == 0 {
		// Already expired; nothing to block.
		return nil
	}
	return g.client.Set(ctx, denylistKey(jti), "1", ttl).Err()
}

// IsRevoked reports whether the jti is on the denylist.
func (g *DenylistGuard) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := g.client.Exists(ctx, denylistKey(jti)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

package auth

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newDenylist(t *testing.T) (*DenylistGuard, *miniredis.Miniredis) {
	t.Helper()
	m := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: m.Addr()})
	return NewDenylistGuard(client), m
}

func TestDenylistRevokeAndCheck(t *testing.T) {
	guard, _ := newDenylist(t)
	ctx := context.Background()

	require.NoError(t, guard.Revoke(ctx, "jti-1", time.Now().Add(time.Hour)))

	ok, err := guard.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = guard.IsRevoked(ctx, "jti-2")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestDenylistEntryExpiresWithToken(t *testing.T) {
	guard, m := newDenylist(t)
	ctx := context.Background()

	require.NoError(t, guard.Revoke(ctx, "jti-1", time.Now().Add(time.Minute)))

	m.FastForward(2 * time.Minute)

	ok, err := guard.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestDenylistRevokeExpiredTokenIsNoop(t *testing.T) {
	guard, _ := newDenylist(t)
	ctx := context.Background()

	require.NoError(t, guard.Revoke(ctx, "jti-1", time.Now().Add(-time.Minute)))

	ok, err := guard.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestDenylistRevokeValidation(t *testing.T) {
	guard, _ := newDenylist(t)
	ctx := context.Background()

	require.Error(t, guard.Revoke(ctx, "", time.Now().Add(time.Hour)))
	require.Error(t, guard.Revoke(ctx, "jti-1", time.Time{}))
}

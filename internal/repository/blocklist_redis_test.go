package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBlocklist(t *testing.T) (*RedisBlocklist, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisBlocklist(client), mr
}

func TestRedisBlocklist_Revoke(t *testing.T) {
	bl, mr := newBlocklist(t)
	ctx := context.Background()

	ok, err := bl.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, bl.Revoke(ctx, "jti-1", time.Now().Add(time.Minute)))
	ok, err = bl.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, ok)

	mr.FastForward(2 * time.Minute)
	ok, err = bl.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, ok, "entry expires with the token")
}

func TestRedisBlocklist_RevokeExpired(t *testing.T) {
	bl, mr := newBlocklist(t)
	require.NoError(t, bl.Revoke(context.Background(), "old", time.Now().Add(-time.Second)))
	assert.False(t, mr.Exists(revokedKeyPrefix+"old"))
}

func TestRedisBlocklist_Unavailable(t *testing.T) {
	bl, mr := newBlocklist(t)
	mr.Close()

	_, err := bl.IsRevoked(context.Background(), "jti")
	assert.Error(t, err)
}

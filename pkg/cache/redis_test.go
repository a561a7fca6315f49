package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T, opts ...RedisOption) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	c := NewRedisCacheFromClient(client, opts...)
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestRedisCache_RoundTrip(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestRedis(t)

	_, hit, err := c.Get(ctx, "layout:1")
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, c.Set(ctx, "layout:1", []byte(`{"lines":[]}`), TTLLayout))
	assert.True(t, mr.Exists(DefaultRedisPrefix+"layout:1"))

	data, hit, err := c.Get(ctx, "layout:1")
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, `{"lines":[]}`, string(data))

	require.NoError(t, c.Delete(ctx, "layout:1"))
	_, hit, err = c.Get(ctx, "layout:1")
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestRedisCache_TTL(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestRedis(t)

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))
	assert.Equal(t, time.Minute, mr.TTL(DefaultRedisPrefix+"k"))

	mr.FastForward(2 * time.Minute)
	_, hit, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, c.Set(ctx, "forever", []byte("v"), 0))
	assert.Equal(t, time.Duration(0), mr.TTL(DefaultRedisPrefix+"forever"))
}

func TestRedisCache_Prefix(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestRedis(t, WithRedisPrefix("test:"))

	require.NoError(t, c.Set(ctx, "k", []byte("v"), 0))
	assert.True(t, mr.Exists("test:k"))
	assert.False(t, mr.Exists(DefaultRedisPrefix+"k"))
}

func TestRedisCache_WrongTypeNotRetried(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestRedis(t)

	_, err := mr.Lpush(DefaultRedisPrefix+"list", "x")
	require.NoError(t, err)

	_, _, err = c.Get(ctx, "list")
	require.Error(t, err)
	assert.False(t, IsRetryable(err))
}

func TestRedisCache_Unreachable(t *testing.T) {
	defer func(d time.Duration) { backoffBase = d }(backoffBase)
	backoffBase = time.Millisecond

	ctx := context.Background()
	c, mr := newTestRedis(t)
	mr.Close()

	_, _, err := c.Get(ctx, "k")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNetwork)
	assert.True(t, IsRetryable(err))
}

func TestNewRedisCache(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)

	c, err := NewRedisCache(ctx, mr.Addr(), "", 0)
	require.NoError(t, err)
	require.NoError(t, c.Close())

	addr := mr.Addr()
	mr.Close()
	_, err = NewRedisCache(ctx, addr, "", 0)
	assert.ErrorIs(t, err, ErrNetwork)
}

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedis(t *testing.T) (*Redis, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c := NewRedisWithClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}), DefaultConfig())
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func backends(t *testing.T) map[string]Cache {
	mem := NewMemory(DefaultConfig())
	t.Cleanup(func() { _ = mem.Close() })
	r, _ := setupRedis(t)
	return map[string]Cache{"memory": mem, "redis": r}
}

func TestCache_RoundTrip(t *testing.T) {
	for name, c := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, err := c.Get(ctx, "post:hello")
			assert.True(t, IsCacheMiss(err))

			require.NoError(t, c.Set(ctx, "post:hello", []byte(`{"slug":"hello"}`), time.Minute))
			got, err := c.Get(ctx, "post:hello")
			require.NoError(t, err)
			assert.Equal(t, `{"slug":"hello"}`, string(got))

			require.NoError(t, c.Delete(ctx, "post:hello"))
			_, err = c.Get(ctx, "post:hello")
			assert.True(t, IsCacheMiss(err))
		})
	}
}

func TestMemory_Expiry(t *testing.T) {
	m := NewMemory(DefaultConfig())
	defer m.Close()

	now := time.Unix(1_700_000_000, 0)
	m.now = func() time.Time { return now }

	ctx := context.Background()
	require.NoError(t, m.Set(ctx, "k", []byte("v"), time.Second))
	require.NoError(t, m.Set(ctx, "forever", []byte("v"), -1))

	now = now.Add(2 * time.Second)
	_, err := m.Get(ctx, "k")
	assert.True(t, IsCacheMiss(err))

	m.evictExpired()
	m.mu.RLock()
	assert.Len(t, m.items, 1)
	m.mu.RUnlock()

	_, err = m.Get(ctx, "forever")
	assert.NoError(t, err)
}

func TestMemory_CopiesValues(t *testing.T) {
	m := NewMemory(DefaultConfig())
	defer m.Close()
	ctx := context.Background()

	value := []byte("abc")
	require.NoError(t, m.Set(ctx, "k", value, 0))
	value[0] = 'x'

	got, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))
}

func TestMemory_CancelledContext(t *testing.T) {
	m := NewMemory(DefaultConfig())
	defer m.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, m.Set(ctx, "k", nil, 0), context.Canceled)
}

func TestRedis_PrefixAndTTL(t *testing.T) {
	c, mr := setupRedis(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), 0))
	assert.True(t, mr.Exists("pagemeta:k"))
	assert.Equal(t, DefaultConfig().DefaultTTL, mr.TTL("pagemeta:k"))

	mr.FastForward(10 * time.Minute)
	_, err := c.Get(ctx, "k")
	assert.True(t, IsCacheMiss(err))
}

func TestNewRedis_ConnectionError(t *testing.T) {
	_, err := NewRedis(context.Background(), RedisOptions{Addr: "127.0.0.1:1"}, DefaultConfig())
	assert.Error(t, err)
}

func TestNewRedis_Connects(t *testing.T) {
	mr := miniredis.RunT(t)
	c, err := NewRedis(context.Background(), RedisOptions{Addr: mr.Addr()}, DefaultConfig())
	require.NoError(t, err)
	assert.NoError(t, c.Close())
}

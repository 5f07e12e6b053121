package commands

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conduit-lang/pagemeta/internal/config"
	"github.com/conduit-lang/pagemeta/internal/web/ratelimit"
)

func TestNewLimiter(t *testing.T) {
	ctx := context.Background()

	t.Run("disabled", func(t *testing.T) {
		limiter, err := newLimiter(ctx, &config.Config{})
		require.NoError(t, err)
		assert.Nil(t, limiter)
	})

	t.Run("in process", func(t *testing.T) {
		cfg := &config.Config{
			Server: config.ServerConfig{RateLimit: 5, RateWindow: time.Minute},
			Store:  config.StoreConfig{Backend: config.BackendMemory},
		}
		limiter, err := newLimiter(ctx, cfg)
		require.NoError(t, err)
		tb, ok := limiter.(*ratelimit.TokenBucket)
		require.True(t, ok)
		assert.NoError(t, tb.Close())
	})

	t.Run("shared through redis", func(t *testing.T) {
		mr := miniredis.RunT(t)
		cfg := &config.Config{
			Server: config.ServerConfig{RateLimit: 5, RateWindow: time.Minute},
			Store:  config.StoreConfig{Backend: config.BackendRedis, RedisAddr: mr.Addr()},
		}
		limiter, err := newLimiter(ctx, cfg)
		require.NoError(t, err)
		rl, ok := limiter.(limiterCloser)
		require.True(t, ok)

		d, err := rl.Allow(ctx, "127.0.0.1")
		require.NoError(t, err)
		assert.True(t, d.Allowed)
		assert.True(t, mr.Exists("pagemeta:ratelimit:127.0.0.1"))
		assert.NoError(t, rl.Close())
	})

	t.Run("redis unreachable", func(t *testing.T) {
		mr := miniredis.RunT(t)
		addr := mr.Addr()
		mr.Close()

		cfg := &config.Config{
			Server: config.ServerConfig{RateLimit: 5, RateWindow: time.Minute},
			Store:  config.StoreConfig{Backend: config.BackendRedis, RedisAddr: addr},
		}
		_, err := newLimiter(ctx, cfg)
		assert.ErrorContains(t, err, "rate limiting")
	})
}

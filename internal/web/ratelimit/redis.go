package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// slidingWindow keeps one sorted set entry per admitted request, scored in
// unix milliseconds. It trims the set to the window and admits the request
// when fewer than limit entries remain. Returns {allowed, count, oldest}.
var slidingWindow = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window_start = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])
local ttl = tonumber(ARGV[4])

redis.call('ZREMRANGEBYSCORE', key, 0, window_start)
local count = redis.call('ZCARD', key)
local allowed = 0
if count < limit then
	redis.call('ZADD', key, now, ARGV[5])
	count = count + 1
	allowed = 1
end
redis.call('PEXPIRE', key, ttl)

local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
if oldest[2] then
	return {allowed, count, oldest[2]}
end
return {allowed, count, ARGV[1]}
`)

// Redis is a sliding window limiter shared by every server instance
// pointing at the same Redis.
type Redis struct {
	client *redis.Client
	limit  int
	window time.Duration
	prefix string
}

// NewRedis creates a Redis limiter. Keys are stored under prefix.
func NewRedis(client *redis.Client, limit int, window time.Duration, prefix string) (*Redis, error) {
	if client == nil {
		return nil, errors.New("redis client is required")
	}
	if limit <= 0 {
		return nil, errors.New("limit must be greater than 0")
	}
	if window <= 0 {
		return nil, errors.New("window must be greater than 0")
	}
	return &Redis{client: client, limit: limit, window: window, prefix: prefix}, nil
}

// Allow records the request for key if the window has room
func (r *Redis) Allow(ctx context.Context, key string) (*Decision, error) {
	now := time.Now()
	res, err := slidingWindow.Run(ctx, r.client, []string{r.prefix + key},
		now.UnixMilli(),
		now.Add(-r.window).UnixMilli(),
		r.limit,
		r.window.Milliseconds(),
		uuid.NewString(),
	).Slice()
	if err != nil {
		return nil, fmt.Errorf("redis rate limit check failed: %w", err)
	}
	if len(res) != 3 {
		return nil, errors.New("unexpected redis script result")
	}

	allowed, ok1 := res[0].(int64)
	count, ok2 := res[1].(int64)
	oldestRaw, ok3 := res[2].(string)
	if !ok1 || !ok2 || !ok3 {
		return nil, errors.New("unexpected redis script result")
	}
	oldest, err := strconv.ParseFloat(oldestRaw, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid window start from redis: %w", err)
	}

	remaining := r.limit - int(count)
	if remaining < 0 {
		remaining = 0
	}
	return &Decision{
		Limit:     r.limit,
		Remaining: remaining,
		ResetAt:   time.UnixMilli(int64(oldest)).Add(r.window),
		Allowed:   allowed == 1,
	}, nil
}

package ratelimit

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

var windowScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
local ttl = redis.call("PTTL", KEYS[1])
return {current, ttl}
`)

// RedisLimiter shares the window across instances. Redis failures degrade to
// the in-memory fallback rather than failing the request.
type RedisLimiter struct {
	Client   redis.Scripter
	Window   time.Duration
	Limit    int
	Prefix   string
	Fallback *InMemoryLimiter
}

func NewRedis(client redis.Scripter, limit int, window time.Duration) *RedisLimiter {
	if window <= 0 {
		window = time.Minute
	}
	if limit <= 0 {
		limit = 1
	}
	return &RedisLimiter{
		Client:   client,
		Window:   window,
		Limit:    limit,
		Prefix:   "rl:login:",
		Fallback: NewInMemory(limit, window),
	}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) Decision {
	if l.Client == nil {
		return l.Fallback.Allow(ctx, key)
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	res, err := windowScript.Run(ctx, l.Client, []string{l.Prefix + key}, l.Window.Milliseconds()).Int64Slice()
	if err != nil || len(res) < 2 {
		slog.Warn("redis rate limiter unavailable, using in-memory window", slog.Any("error", err))
		return l.Fallback.Allow(ctx, key)
	}
	ttl := time.Duration(res[1]) * time.Millisecond
	if ttl < 0 {
		ttl = l.Window
	}
	return decide(int(res[0]), l.Limit, time.Now().UTC().Add(ttl))
}

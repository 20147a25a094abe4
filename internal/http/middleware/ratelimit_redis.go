package middleware

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Counter keys live under their own namespace so the limiter can share a
// Redis database with other state (sessions, caches) without collisions.
const rateLimitKeyPrefix = "devsync:ratelimit:"

const defaultRedisBudget = 250 * time.Millisecond

const rateLimitScript = `
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
if current > tonumber(ARGV[2]) then
  return 0
end
return 1
`

// RedisLimiter shares rate-limit windows across instances. It fails open:
// any Redis error, including exceeding the per-call budget, lets the
// request through.
type RedisLimiter struct {
	client *redis.Client
	script *redis.Script
	budget time.Duration
}

func NewRedisLimiter(client *redis.Client) *RedisLimiter {
	if client == nil {
		return nil
	}
	return &RedisLimiter{
		client: client,
		script: redis.NewScript(rateLimitScript),
		budget: defaultRedisBudget,
	}
}

// WithBudget adjusts how long a single limiter check may hold up a request
// before failing open.
func (l *RedisLimiter) WithBudget(budget time.Duration) *RedisLimiter {
	if l != nil && budget > 0 {
		l.budget = budget
	}
	return l
}

func (l *RedisLimiter) Allow(key string, limit int, window time.Duration) bool {
	if l == nil || l.client == nil {
		return true
	}
	if key == "" || limit <= 0 || window <= 0 {
		return true
	}
	ttl := window.Milliseconds()
	if ttl <= 0 {
		ttl = 1
	}
	ctx, cancel := context.WithTimeout(context.Background(), l.budget)
	defer cancel()
	allowed, err := l.script.Run(ctx, l.client, []string{rateLimitKeyPrefix + key}, ttl, limit).Int64()
	if err != nil {
		return true
	}
	return allowed == 1
}

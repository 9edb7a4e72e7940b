package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// The expiry is set only on the first hit, so the window starts with the
// first request and every later hit in it shares the same deadline.
var fixedWindowScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return {current, redis.call("PTTL", KEYS[1])}
`)

// Redis is a fixed-window counter shared by every server process that
// points at the same Redis.
type Redis struct {
	client *redis.Client
	policy Policy
	prefix string
}

// NewRedis creates a shared limiter. Keys are stored under prefix.
func NewRedis(client *redis.Client, policy Policy, prefix string) *Redis {
	return &Redis{client: client, policy: policy, prefix: prefix}
}

func (r *Redis) Allow(ctx context.Context, key string) (Decision, error) {
	res, err := fixedWindowScript.Run(ctx, r.client, []string{r.prefix + key}, r.policy.Window.Milliseconds()).Int64Slice()
	if err != nil {
		return Decision{}, fmt.Errorf("rate limit script failed: %w", err)
	}
	if len(res) != 2 {
		return Decision{}, fmt.Errorf("rate limit script returned %d values", len(res))
	}

	count, ttlMillis := int(res[0]), res[1]
	if count > r.policy.Limit {
		retry := time.Duration(ttlMillis) * time.Millisecond
		if retry <= 0 {
			retry = r.policy.Window
		}
		return Decision{Allowed: false, RetryAfter: retry}, nil
	}

	return Decision{Allowed: true, Remaining: r.policy.Limit - count}, nil
}

// NewRedisClient parses a redis:// URL and checks the connection.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return client, nil
}

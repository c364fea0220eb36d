package inflight

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"bgv/pkg/platform/sentinel"
)

const leaseKeyPrefix = "bgv:inflight:"

// releaseScript deletes the lease only if this holder still owns it.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLease claims keys with SET NX and a TTL, so a crashed holder frees
// the key once the TTL lapses.
type RedisLease struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisLease(client *redis.Client, ttl time.Duration) *RedisLease {
	return &RedisLease{client: client, ttl: ttl}
}

func (l *RedisLease) Acquire(ctx context.Context, key Key) (func(context.Context) error, error) {
	redisKey := leaseKeyPrefix + key.String()
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, redisKey, token, l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire lease %s: %w: %w", key, sentinel.ErrUnavailable, err)
	}
	if !ok {
		return nil, fmt.Errorf("verification %s in flight: %w", key, sentinel.ErrConflict)
	}
	return func(ctx context.Context) error {
		return releaseScript.Run(ctx, l.client, []string{redisKey}, token).Err()
	}, nil
}

package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the key only while it still carries our token
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Redis is a Locker shared by every replica pointing at the same server.
// The lease expires after TTL so a crashed holder cannot block later runs.
type Redis struct {
	Client *redis.Client
	Key    string
	TTL    time.Duration
}

// NewRedis creates a Redis-backed lease
func NewRedis(client *redis.Client, key string, ttl time.Duration) *Redis {
	return &Redis{Client: client, Key: key, TTL: ttl}
}

// Acquire implements Locker
func (r *Redis) Acquire(ctx context.Context) (func(context.Context) error, error) {
	token := uuid.NewString()

	ok, err := r.Client.SetNX(ctx, r.Key, token, r.TTL).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire lease %s: %w", r.Key, err)
	}
	if !ok {
		return nil, ErrHeld
	}

	return func(ctx context.Context) error {
		if err := releaseScript.Run(ctx, r.Client, []string{r.Key}, token).Err(); err != nil && err != redis.Nil {
			return fmt.Errorf("failed to release lease %s: %w", r.Key, err)
		}
		return nil
	}, nil
}

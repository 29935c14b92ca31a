package repository

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const cooldownKeyPrefix = "auth:code-cooldown:"

// CooldownRepository throttles repeated actions per key.
type CooldownRepository interface {
	// Acquire claims the key for ttl. It returns false when the key is
	// still held by an earlier claim.
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	// Release drops a claim early.
	Release(ctx context.Context, key string) error
}

type redisCooldownRepository struct {
	client *redis.Client
}

// NewCooldownRepository returns a Redis-backed implementation.
func NewCooldownRepository(client *redis.Client) CooldownRepository {
	return &redisCooldownRepository{client: client}
}

func (r *redisCooldownRepository) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return r.client.SetNX(ctx, cooldownKeyPrefix+key, 1, ttl).Result()
}

func (r *redisCooldownRepository) Release(ctx context.Context, key string) error {
	return r.client.Del(ctx, cooldownKeyPrefix+key).Err()
}

package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisAttemptStore counts login attempts per key inside a fixed window.
// The window starts on the first attempt and the key expires with it.
type RedisAttemptStore struct {
	client *redis.Client
}

func NewRedisAttemptStore(client *redis.Client) *RedisAttemptStore {
	return &RedisAttemptStore{
		client: client,
	}
}

func (r *RedisAttemptStore) Hit(ctx context.Context, key string, window time.Duration) (int64, error) {
	pipe := r.client.TxPipeline()
	incr := pipe.Incr(ctx, "attempt:"+key)
	pipe.ExpireNX(ctx, "attempt:"+key, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return incr.Val(), nil
}

func (r *RedisAttemptStore) Reset(ctx context.Context, key string) error {
	return r.client.Del(ctx, "attempt:"+key).Err()
}

package preview

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "preview:"

// RedisStore stages previews in Redis hashes that expire after ttl, so several
// web instances can share them.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{client: client, ttl: ttl}
}

func redisKey(h Handle) string {
	return redisKeyPrefix + h.ID
}

func (r *RedisStore) Acquire(ctx context.Context, name, contentType string, data []byte) (Handle, error) {
	h := newHandle()
	key := redisKey(h)

	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, map[string]any{
			"name":         name,
			"content_type": contentType,
			"data":         data,
		})
		pipe.Expire(ctx, key, r.ttl)
		return nil
	})
	if err != nil {
		return Handle{}, fmt.Errorf("stage preview in redis: %w", err)
	}

	return h, nil
}

func (r *RedisStore) Release(ctx context.Context, h Handle) error {
	if err := r.client.Del(ctx, redisKey(h)).Err(); err != nil {
		return fmt.Errorf("release preview %s: %w", h.ID, err)
	}
	return nil
}

func (r *RedisStore) Open(ctx context.Context, h Handle) (*Object, error) {
	fields, err := r.client.HGetAll(ctx, redisKey(h)).Result()
	if err != nil {
		return nil, fmt.Errorf("read preview %s: %w", h.ID, err)
	}
	if len(fields) == 0 {
		return nil, ErrNotFound
	}

	return &Object{
		Name:        fields["name"],
		ContentType: fields["content_type"],
		Data:        []byte(fields["data"]),
	}, nil
}

func (r *RedisStore) URL(_ context.Context, h Handle) (string, error) {
	return localURL(h), nil
}

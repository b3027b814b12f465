package archive

import (
	"context"
	"time"

	"github.com/eleven-am/streamplay/internal/shared"
	"github.com/redis/go-redis/v9"
)

const defaultBlobTTL = 24 * time.Hour

type RedisStore struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewRedisStore(redisClient *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = defaultBlobTTL
	}
	return &RedisStore{redis: redisClient, ttl: ttl}
}

func (s *RedisStore) Put(ctx context.Context, id string, data []byte) error {
	return s.redis.Set(ctx, BlobKey(id), data, s.ttl).Err()
}

func (s *RedisStore) Get(ctx context.Context, id string) ([]byte, error) {
	data, err := s.redis.Get(ctx, BlobKey(id)).Bytes()
	if err == redis.Nil {
		return nil, shared.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.redis.Ping(ctx).Err()
}

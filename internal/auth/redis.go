package auth

import (
	"context"
	"time"

	"github.com/adisurya/campushub/internal"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

const sessionKeyPrefix = "session:"

// RedisStore backs sessions with redis so multiple instances share one
// session space. TTL refresh on Resolve gives the same inactivity-window
// semantics as the in-memory store.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Create(ctx context.Context, username string) (string, error) {
	token := uuid.NewString()
	if err := s.client.Set(ctx, sessionKeyPrefix+token, username, s.ttl).Err(); err != nil {
		return "", internal.NewInternalError("session store unavailable", err)
	}
	return token, nil
}

func (s *RedisStore) Resolve(ctx context.Context, token string) (string, error) {
	key := sessionKeyPrefix + token
	username, err := s.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", internal.ErrUnauthenticated
	}
	if err != nil {
		return "", internal.NewInternalError("session store unavailable", err)
	}
	if err := s.client.Expire(ctx, key, s.ttl).Err(); err != nil {
		return "", internal.NewInternalError("session store unavailable", err)
	}
	return username, nil
}

func (s *RedisStore) Delete(ctx context.Context, token string) error {
	if err := s.client.Del(ctx, sessionKeyPrefix+token).Err(); err != nil {
		return internal.NewInternalError("session store unavailable", err)
	}
	return nil
}

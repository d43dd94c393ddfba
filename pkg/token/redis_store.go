package token

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStore persists tokens in Redis, one key per integration record.
// Entries are stored without a Redis TTL: expiry is the cache's decision,
// and a stale record must stay readable so its expiry can be inspected.
type RedisStore struct {
	redis         *redis.Client
	integrationID string
}

// NewRedisStore creates a Redis-backed store for the given integration ID.
func NewRedisStore(redisClient *redis.Client, integrationID string) *RedisStore {
	if redisClient == nil {
		panic("redis client cannot be nil")
	}
	return &RedisStore{
		redis:         redisClient,
		integrationID: integrationID,
	}
}

// key generates the Redis key for this integration's token.
func (s *RedisStore) key() string {
	return "integration:token:" + s.integrationID
}

// Load retrieves the persisted token. A missing key yields a zero Token, not
// an error: "never minted" and "expired" both resolve to a refresh upstream.
func (s *RedisStore) Load(ctx context.Context) (Token, error) {
	data, err := s.redis.Get(ctx, s.key()).Bytes()
	if err != nil {
		if err == redis.Nil {
			return Token{}, nil
		}
		return Token{}, fmt.Errorf("redis get: %w", err)
	}

	var tok Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return Token{}, fmt.Errorf("unmarshal token record: %w", err)
	}

	return tok, nil
}

// Save persists the token.
func (s *RedisStore) Save(ctx context.Context, tok Token) error {
	data, err := json.Marshal(tok)
	if err != nil {
		return fmt.Errorf("marshal token record: %w", err)
	}

	if err := s.redis.Set(ctx, s.key(), data, 0).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}

	return nil
}

package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/williamhatcher/harmonyAuth/internal/identity"
)

// schemaVersion guards the cached encoding. Bumping it invalidates
// every existing entry on read, which then resolves as a miss.
const schemaVersion = 1

// envelope is the stored value: a versioned JSON wrapper around the
// resolved identity. The key is the raw token string.
type envelope struct {
	Version  int               `json:"v"`
	Identity identity.Identity `json:"identity"`
}

type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a Redis-backed token cache.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (r *RedisStore) Get(ctx context.Context, token string) (*identity.Identity, error) {
	val, err := r.client.Get(ctx, token).Result()
	if err == redis.Nil {
		return nil, nil // not cached
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	var env envelope
	if err := json.Unmarshal([]byte(val), &env); err != nil || env.Version != schemaVersion {
		// Undecodable or stale-schema entries read as misses; the
		// resolver will refetch and overwrite them.
		return nil, nil
	}

	return &env.Identity, nil
}

func (r *RedisStore) Set(ctx context.Context, token string, id *identity.Identity, ttl time.Duration) error {
	if token == "" {
		return fmt.Errorf("cache: missing token key")
	}
	if ttl <= 0 {
		return fmt.Errorf("cache: ttl must be positive")
	}

	data, err := json.Marshal(envelope{Version: schemaVersion, Identity: *id})
	if err != nil {
		return fmt.Errorf("cache: failed to marshal: %w", err)
	}

	if err := r.client.Set(ctx, token, data, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, token string) error {
	if err := r.client.Del(ctx, token).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

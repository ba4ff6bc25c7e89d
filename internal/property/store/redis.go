package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"propflow/internal/property"
)

const redisKeyPrefix = "property:"

// RedisStore persists canonical properties as JSON values keyed by
// deterministic id. No TTL: the subsystem never deletes, so records live
// until overwritten by the next ingestion.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore constructs a Redis-backed property store.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// FindByID fetches one property by its deterministic id.
func (s *RedisStore) FindByID(ctx context.Context, id string) (*property.Property, error) {
	payload, err := s.client.Get(ctx, redisKeyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find property: %w", err)
	}

	var p property.Property
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, fmt.Errorf("decode property %s: %w", id, err)
	}
	return &p, nil
}

// Insert stores a new property.
func (s *RedisStore) Insert(ctx context.Context, p *property.Property) error {
	return s.set(ctx, p)
}

// Update overwrites an existing property. Redis SET is already last-write-
// wins, so insert and update share the same write path.
func (s *RedisStore) Update(ctx context.Context, p *property.Property) error {
	return s.set(ctx, p)
}

func (s *RedisStore) set(ctx context.Context, p *property.Property) error {
	payload, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode property %s: %w", p.ID, err)
	}
	if err := s.client.Set(ctx, redisKeyPrefix+p.ID, payload, 0).Err(); err != nil {
		return fmt.Errorf("store property %s: %w", p.ID, err)
	}
	return nil
}

// Health checks the Redis connection.
func (s *RedisStore) Health(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/layer-3/teller/ports"
	"github.com/redis/go-redis/v9"
)

// RedisStore is a Redis implementation of the AttemptStore interface
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore creates a new Redis store
func NewRedisStore(client *redis.Client) ports.AttemptStore {
	return &RedisStore{
		client: client,
		prefix: "teller:pin_attempts:",
	}
}

// RecordFailure increments the counter and refreshes its expiry atomically
func (s *RedisStore) RecordFailure(ctx context.Context, card string, ttl time.Duration) (int, error) {
	key := s.prefix + card

	var incr *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		pipe.Expire(ctx, key, ttl)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to record pin failure: %w", err)
	}

	return int(incr.Val()), nil
}

// Failures returns the current failure count
func (s *RedisStore) Failures(ctx context.Context, card string) (int, error) {
	n, err := s.client.Get(ctx, s.prefix+card).Int()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read pin failures: %w", err)
	}

	return n, nil
}

// Clear removes the counter
func (s *RedisStore) Clear(ctx context.Context, card string) error {
	if err := s.client.Del(ctx, s.prefix+card).Err(); err != nil {
		return fmt.Errorf("failed to clear pin failures: %w", err)
	}

	return nil
}

// Package idempotency remembers which resource a client-supplied key produced,
// so a retried request returns the first result instead of creating another.
package idempotency

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix = "voicebill:idem:"
	pending   = "\x00pending"
)

// ErrInProgress is returned while the first request holding a key is still running.
var ErrInProgress = errors.New("request with this idempotency key is in progress")

type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

func New(rdb *redis.Client, ttl time.Duration) *Store {
	return &Store{rdb: rdb, ttl: ttl}
}

func redisKey(scope, key string) string {
	return keyPrefix + scope + ":" + key
}

// Reserve claims key within scope. It returns "" when the caller now owns the
// key, or the result recorded by an earlier request.
func (s *Store) Reserve(ctx context.Context, scope, key string) (string, error) {
	ok, err := s.rdb.SetNX(ctx, redisKey(scope, key), pending, s.ttl).Result()
	if err != nil {
		return "", fmt.Errorf("reserving idempotency key: %w", err)
	}

	if ok {
		return "", nil
	}

	val, err := s.rdb.Get(ctx, redisKey(scope, key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrInProgress
		}

		return "", fmt.Errorf("reading idempotency key: %w", err)
	}

	if val == pending {
		return "", ErrInProgress
	}

	return val, nil
}

// Complete records the result for a reserved key.
func (s *Store) Complete(ctx context.Context, scope, key, result string) error {
	if err := s.rdb.Set(ctx, redisKey(scope, key), result, s.ttl).Err(); err != nil {
		return fmt.Errorf("completing idempotency key: %w", err)
	}

	return nil
}

// Release frees a reserved key after the request failed, so it can be retried.
func (s *Store) Release(ctx context.Context, scope, key string) error {
	if err := s.rdb.Del(ctx, redisKey(scope, key)).Err(); err != nil {
		return fmt.Errorf("releasing idempotency key: %w", err)
	}

	return nil
}

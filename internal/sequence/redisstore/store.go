// Package redisstore keeps invoice counters in Redis hashes.
package redisstore

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix   = "voicebill:sequence:"
	fieldValue  = "value"
	fieldPrefix = "prefix"
)

type Store struct {
	rdb *redis.Client
}

func New(rdb *redis.Client) *Store {
	return &Store{rdb: rdb}
}

func key(accountID string) string {
	return keyPrefix + accountID
}

// Increment runs HINCRBY and HGET in one MULTI/EXEC block so the returned
// prefix belongs to the same snapshot as the value.
func (s *Store) Increment(ctx context.Context, accountID string) (int64, string, error) {
	var (
		incr *redis.IntCmd
		get  *redis.StringCmd
	)

	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.HIncrBy(ctx, key(accountID), fieldValue, 1)
		get = pipe.HGet(ctx, key(accountID), fieldPrefix)

		return nil
	})
	if err != nil && !errors.Is(err, redis.Nil) {
		return 0, "", fmt.Errorf("incrementing sequence: %w", err)
	}

	value, err := incr.Result()
	if err != nil {
		return 0, "", fmt.Errorf("incrementing sequence: %w", err)
	}

	prefix, err := get.Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return 0, "", fmt.Errorf("reading sequence prefix: %w", err)
	}

	return value, prefix, nil
}

func (s *Store) Current(ctx context.Context, accountID string) (int64, string, error) {
	vals, err := s.rdb.HMGet(ctx, key(accountID), fieldValue, fieldPrefix).Result()
	if err != nil {
		return 0, "", fmt.Errorf("getting sequence: %w", err)
	}

	var (
		value  int64
		prefix string
	)

	if v, ok := vals[0].(string); ok {
		value, err = strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, "", fmt.Errorf("parsing sequence value: %w", err)
		}
	}

	if p, ok := vals[1].(string); ok {
		prefix = p
	}

	return value, prefix, nil
}

func (s *Store) SetPrefix(ctx context.Context, accountID, prefix string) error {
	if err := s.rdb.HSet(ctx, key(accountID), fieldPrefix, prefix).Err(); err != nil {
		return fmt.Errorf("setting sequence prefix: %w", err)
	}

	return nil
}

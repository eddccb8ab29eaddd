package store

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"stressbox/pkg/redis"
)

// RedisStore persists keys in Redis under the client's namespace
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore wraps an established Redis client
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Get returns the value stored under key
func (s *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := s.client.Get(ctx, s.client.KeyBuilder.BuildKey(key))
	if errors.Is(err, redis.ErrNil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get %s: %w", key, err)
	}
	return val, true, nil
}

// Put stores value under key without expiry
func (s *RedisStore) Put(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, s.client.KeyBuilder.BuildKey(key), value, 0); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// List scans for keys starting with prefix. SCAN order is arbitrary, so
// the result is sorted to give every backend the same enumeration order.
func (s *RedisStore) List(ctx context.Context, prefix string) ([]string, error) {
	kb := s.client.KeyBuilder
	raw, err := s.client.ScanKeys(ctx, kb.MatchPrefix(prefix))
	if err != nil {
		return nil, fmt.Errorf("redis scan %s: %w", prefix, err)
	}

	keys := make([]string, 0, len(raw))
	for _, k := range raw {
		keys = append(keys, kb.StripKey(k))
	}
	sort.Strings(keys)
	return keys, nil
}

// Incr uses INCR, which is atomic on the server
func (s *RedisStore) Incr(ctx context.Context, key string) (int64, error) {
	n, err := s.client.Incr(ctx, s.client.KeyBuilder.BuildKey(key))
	if err != nil {
		return 0, fmt.Errorf("redis incr %s: %w", key, err)
	}
	return n, nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Health(ctx)
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

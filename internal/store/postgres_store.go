package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"

	"stressbox/pkg/database"
	"stressbox/pkg/redis"
)

const (
	queryGet  = `SELECT value FROM kv_store WHERE key = $1`
	queryPut  = `INSERT INTO kv_store (key, value, updated_at) VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`
	queryList = `SELECT key FROM kv_store WHERE starts_with(key, $1) ORDER BY key`
	// Non-numeric values restart from zero, matching the read-modify-write path.
	queryIncr = `INSERT INTO kv_store (key, value, updated_at) VALUES ($1, '1', NOW())
		ON CONFLICT (key) DO UPDATE SET
			value = (CASE WHEN kv_store.value ~ '^-?[0-9]+$' THEN kv_store.value::bigint ELSE 0 END + 1)::text,
			updated_at = NOW()
		RETURNING value`
)

// PostgresStore keeps keys in the kv_store table (see cmd/migrate)
type PostgresStore struct {
	db   *database.PostgresDB
	keys *redis.KeyBuilder
}

// NewPostgresStore wraps an established connection pool. Keys are namespaced
// the same way as in Redis so both backends hold identical key sets.
func NewPostgresStore(db *database.PostgresDB, namespace string) *PostgresStore {
	return &PostgresStore{db: db, keys: redis.NewKeyBuilder(namespace)}
}

// Get returns the value stored under key
func (s *PostgresStore) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.Pool.QueryRow(ctx, queryGet, s.keys.BuildKey(key)).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get %s: %w", key, err)
	}
	return value, true, nil
}

// Put upserts value under key
func (s *PostgresStore) Put(ctx context.Context, key, value string) error {
	if _, err := s.db.Pool.Exec(ctx, queryPut, s.keys.BuildKey(key), value); err != nil {
		return fmt.Errorf("failed to put %s: %w", key, err)
	}
	return nil
}

// List returns the keys starting with prefix, ordered by key
func (s *PostgresStore) List(ctx context.Context, prefix string) ([]string, error) {
	rows, err := s.db.Pool.Query(ctx, queryList, s.keys.BuildKey(prefix))
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", prefix, err)
	}

	keys, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to read keys for %s: %w", prefix, err)
	}
	for i, key := range keys {
		keys[i] = s.keys.StripKey(key)
	}
	if keys == nil {
		keys = []string{}
	}
	return keys, nil
}

// Incr increments the counter in a single upsert statement
func (s *PostgresStore) Incr(ctx context.Context, key string) (int64, error) {
	var raw string
	if err := s.db.Pool.QueryRow(ctx, queryIncr, s.keys.BuildKey(key)).Scan(&raw); err != nil {
		return 0, fmt.Errorf("failed to increment %s: %w", key, err)
	}
	return strconv.ParseInt(raw, 10, 64)
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.Health(ctx)
}

func (s *PostgresStore) Close() error {
	s.db.Close()
	return nil
}

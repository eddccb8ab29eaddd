package store

import "context"

// NullStore stands in when no store is configured: reads find nothing and
// writes are dropped, so tracking degrades to a no-op and stats to zeros.
type NullStore struct{}

// NewNullStore creates a store that persists nothing
func NewNullStore() *NullStore {
	return &NullStore{}
}

func (NullStore) Get(context.Context, string) (string, bool, error) { return "", false, nil }

func (NullStore) Put(context.Context, string, string) error { return nil }

func (NullStore) List(context.Context, string) ([]string, error) { return []string{}, nil }

func (NullStore) Ping(context.Context) error { return nil }

func (NullStore) Close() error { return nil }

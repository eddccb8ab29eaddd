package database

// KVTable holds the key-value pairs of the Postgres store backend
const KVTable = "kv_store"

// CreateKVTableSQL creates the key-value table. Values are opaque text:
// JSON visitor records and decimal counters.
const CreateKVTableSQL = `
CREATE TABLE IF NOT EXISTS kv_store (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// DropKVTableSQL drops the key-value table
const DropKVTableSQL = `DROP TABLE IF EXISTS kv_store`

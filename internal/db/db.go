package db

import (
	"context"
	"time"
)

// KeyPrefix namespaces every key the service writes.
const KeyPrefix = "chatdesk:"

// Store is the database facade used by the wiring code. Consumers depend on
// the narrow sub-interfaces.
type Store interface {
	Pinger
	KVStore
	CounterStore
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// KVItem is one key/value pair for pipelined writes.
type KVItem struct {
	Key   string
	Value []byte
}

// KVStore provides simple key-value operations.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	// MGet returns one entry per key, nil where the key is missing.
	MGet(ctx context.Context, keys []string) ([][]byte, error)
	MSetWithTTL(ctx context.Context, items []KVItem, ttl time.Duration) error
}

// CounterStore provides atomic counters.
type CounterStore interface {
	IncrBy(ctx context.Context, key string, val int64) error
	// Expire sets a TTL. With nx it only applies to keys without one.
	Expire(ctx context.Context, key string, ttl time.Duration, nx bool) error
}

// Package store defines the byte-oriented key-value contract shared caches
// are built on. The in-process driver lives in store/memory, the Redis
// driver in store/redis.
package store

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors for store operations.
var (
	ErrKeyNotFound = errors.New("store: key not found")
)

// Op constants map to the underlying command names for error context.
const (
	OpGet  = "GET"
	OpSet  = "SET"
	OpDel  = "DEL"
	OpScan = "SCAN"
)

// Error wraps an underlying error with the operation name for diagnostics.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }

// KV provides simple byte-valued key-value operations. Get returns
// ErrKeyNotFound for absent or expired keys.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

// Scanner lists keys matching a glob pattern. Drivers that cannot enumerate
// keys may omit it; callers should feature-detect with a type assertion.
type Scanner interface {
	Scan(ctx context.Context, pattern string) ([]string, error)
}

// Store is the full driver contract.
type Store interface {
	KV
	Scanner
	Close()
}

// Package memory provides an in-process store.Store backed by the sharded
// LRU cache. It is the default driver when no external store is configured.
package memory

import (
	"context"
	"path"
	"time"

	"github.com/hirelens/matchdex/internal/cache"
	"github.com/hirelens/matchdex/internal/store"
)

// Compile-time check: Store implements store.Store.
var _ store.Store = (*Store)(nil)

// Store is an in-memory key-value store with LRU eviction and TTL expiry.
type Store struct {
	c *cache.Cache[[]byte]
}

// NewStore creates a memory store holding at most capacity entries.
// defaultTTL applies to Set; zero disables expiry.
func NewStore(capacity int, defaultTTL time.Duration) *Store {
	return &Store{c: cache.New[[]byte](capacity, defaultTTL)}
}

// Get returns a copy of the value at key, or store.ErrKeyNotFound.
func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	v, ok := s.c.Get(key)
	if !ok {
		return nil, store.ErrKeyNotFound
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

// Set stores a copy of value with the store default TTL.
func (s *Store) Set(_ context.Context, key string, value []byte) error {
	s.c.Set(key, cloneBytes(value))
	return nil
}

// SetWithTTL stores a copy of value with a per-key expiration.
func (s *Store) SetWithTTL(_ context.Context, key string, value []byte, ttl time.Duration) error {
	s.c.SetWithTTL(key, cloneBytes(value), ttl)
	return nil
}

// Del removes a key.
func (s *Store) Del(_ context.Context, key string) error {
	s.c.Delete(key)
	return nil
}

// Scan returns keys matching a glob pattern, * matching any sequence.
func (s *Store) Scan(_ context.Context, pattern string) ([]string, error) {
	var keys []string
	for _, k := range s.c.Keys() {
		ok, err := path.Match(pattern, k)
		if err != nil {
			return nil, &store.Error{Op: store.OpScan, Err: err}
		}
		if ok {
			keys = append(keys, k)
		}
	}
	return keys, nil
}

// Flush drops every entry.
func (s *Store) Flush() {
	s.c.Flush()
}

// Stats exposes the underlying cache counters.
func (s *Store) Stats() cache.Stats {
	return s.c.Stats()
}

// Close is a no-op for the memory driver.
func (s *Store) Close() {}

func cloneBytes(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

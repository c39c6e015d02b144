// Package cache provides a concurrency-safe LRU cache with TTL expiry.
// Keys are partitioned across shards so hot paths contend on a shard mutex,
// not a global one. An expired entry is never served, even on a key hit.
package cache

import (
	"container/list"
	"hash/fnv"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultShards is the shard count used by New.
const DefaultShards = 16

// Stats is a point-in-time counter snapshot.
type Stats struct {
	Hits        int64
	Misses      int64
	Evictions   int64
	Expirations int64
	Entries     int
	Capacity    int
}

// HitRate returns hits / (hits + misses), 0 for an unused cache.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

type entry[V any] struct {
	key        string
	value      V
	insertedAt time.Time
	expiresAt  time.Time // zero = no expiry
}

type shard[V any] struct {
	mu       sync.Mutex
	items    map[string]*list.Element
	order    *list.List // front = most recently used
	capacity int
}

// Cache is a sharded LRU+TTL cache.
type Cache[V any] struct {
	shards []*shard[V]
	ttl    time.Duration
	now    func() time.Time

	hits        atomic.Int64
	misses      atomic.Int64
	evictions   atomic.Int64
	expirations atomic.Int64
	capacity    int
}

// New creates a cache with DefaultShards shards. A ttl of zero disables expiry.
func New[V any](capacity int, ttl time.Duration) *Cache[V] {
	return NewSharded[V](capacity, ttl, DefaultShards)
}

// NewSharded creates a cache with an explicit shard count. Capacity is
// distributed evenly across shards; each shard holds at least one entry.
func NewSharded[V any](capacity int, ttl time.Duration, shards int) *Cache[V] {
	if capacity < 1 {
		capacity = 1
	}
	if shards < 1 {
		shards = 1
	}
	if shards > capacity {
		shards = capacity
	}
	perShard := (capacity + shards - 1) / shards

	c := &Cache[V]{
		shards:   make([]*shard[V], shards),
		ttl:      ttl,
		now:      time.Now,
		capacity: capacity,
	}
	for i := range c.shards {
		c.shards[i] = &shard[V]{
			items:    make(map[string]*list.Element),
			order:    list.New(),
			capacity: perShard,
		}
	}
	return c
}

func (c *Cache[V]) shardFor(key string) *shard[V] {
	if len(c.shards) == 1 {
		return c.shards[0]
	}
	h := fnv.New32a()
	h.Write([]byte(key))
	return c.shards[h.Sum32()%uint32(len(c.shards))]
}

// Get returns the live value for key and marks it recently used.
// Expired entries are dropped and reported as misses.
func (c *Cache[V]) Get(key string) (V, bool) {
	var zero V
	s := c.shardFor(key)

	s.mu.Lock()
	el, ok := s.items[key]
	if !ok {
		s.mu.Unlock()
		c.misses.Add(1)
		return zero, false
	}
	e := el.Value.(*entry[V])
	if !e.expiresAt.IsZero() && c.now().After(e.expiresAt) {
		s.order.Remove(el)
		delete(s.items, key)
		s.mu.Unlock()
		c.expirations.Add(1)
		c.misses.Add(1)
		return zero, false
	}
	s.order.MoveToFront(el)
	v := e.value
	s.mu.Unlock()

	c.hits.Add(1)
	return v, true
}

// Set stores value under key with the cache default TTL, refreshing recency
// and expiry for existing keys. The least-recently-used entry of the shard is
// evicted when it is full.
func (c *Cache[V]) Set(key string, value V) {
	c.SetWithTTL(key, value, c.ttl)
}

// SetWithTTL stores value under key with a per-entry TTL. A ttl of zero
// disables expiry for this entry regardless of the cache default.
func (c *Cache[V]) SetWithTTL(key string, value V, ttl time.Duration) {
	now := c.now()
	var expires time.Time
	if ttl > 0 {
		expires = now.Add(ttl)
	}

	s := c.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	if el, ok := s.items[key]; ok {
		e := el.Value.(*entry[V])
		e.value = value
		e.insertedAt = now
		e.expiresAt = expires
		s.order.MoveToFront(el)
		return
	}

	if s.order.Len() >= s.capacity {
		oldest := s.order.Back()
		if oldest != nil {
			s.order.Remove(oldest)
			delete(s.items, oldest.Value.(*entry[V]).key)
			c.evictions.Add(1)
		}
	}

	s.items[key] = s.order.PushFront(&entry[V]{
		key:        key,
		value:      value,
		insertedAt: now,
		expiresAt:  expires,
	})
}

// Delete removes key if present and reports whether it was there.
func (c *Cache[V]) Delete(key string) bool {
	s := c.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	el, ok := s.items[key]
	if !ok {
		return false
	}
	s.order.Remove(el)
	delete(s.items, key)
	return true
}

// Flush drops every entry. Counters are preserved.
func (c *Cache[V]) Flush() {
	for _, s := range c.shards {
		s.mu.Lock()
		s.items = make(map[string]*list.Element)
		s.order.Init()
		s.mu.Unlock()
	}
}

// Len returns the number of held entries. Entries past their TTL that have
// not been touched since expiring are still counted until collected by Get.
func (c *Cache[V]) Len() int {
	n := 0
	for _, s := range c.shards {
		s.mu.Lock()
		n += s.order.Len()
		s.mu.Unlock()
	}
	return n
}

// Keys returns the keys of all held entries in no particular order.
func (c *Cache[V]) Keys() []string {
	keys := make([]string, 0, c.Len())
	for _, s := range c.shards {
		s.mu.Lock()
		for el := s.order.Front(); el != nil; el = el.Next() {
			keys = append(keys, el.Value.(*entry[V]).key)
		}
		s.mu.Unlock()
	}
	return keys
}

// Stats returns a counter snapshot.
func (c *Cache[V]) Stats() Stats {
	return Stats{
		Hits:        c.hits.Load(),
		Misses:      c.misses.Load(),
		Evictions:   c.evictions.Load(),
		Expirations: c.expirations.Load(),
		Entries:     c.Len(),
		Capacity:    c.capacity,
	}
}

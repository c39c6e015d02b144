// Package resultcache stores ranked match reports keyed by a digest of the
// job, candidate pool, and weight preset. A hit replays the stored results
// exactly as computed, so repeated matching of an unchanged pool costs one
// store lookup instead of a full scoring pass.
package resultcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/hirelens/matchdex/internal/domain"
	"github.com/hirelens/matchdex/internal/domain/match"
	"github.com/hirelens/matchdex/internal/store"
)

// Key prefix carries a schema version: a codec change bumps it and strands
// old entries instead of misreading them.
var cacheKeyPrefix = domain.KeyPrefix + "match:v1:"

// DefaultTTL bounds how long a ranked list may be replayed.
const DefaultTTL = time.Hour

// kv is the consumer interface for the result cache. Scan and Del serve
// Flush, which walks the key namespace.
type kv interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, key string) error
	Scan(ctx context.Context, pattern string) ([]string, error)
}

// Cache is the fingerprint-keyed match report cache.
type Cache struct {
	store      kv
	ttl        time.Duration
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// New creates a result cache.
// cacheTotal is a counter vec with label "result" ("hit"/"miss"), passed
// explicitly; ttl <= 0 selects DefaultTTL.
func New(s kv, ttl time.Duration, cacheTotal *prometheus.CounterVec, logger *zap.Logger) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{store: s, ttl: ttl, cacheTotal: cacheTotal, logger: logger}
}

// Key digests the (job, pool, weights) fingerprints into one cache key.
// Any change to a scoring input changes at least one fingerprint, so stale
// entries can never be addressed.
func (c *Cache) Key(jobPrint, poolPrint, weightsPrint string) string {
	h := sha256.New()
	h.Write([]byte(jobPrint))
	h.Write([]byte{0})
	h.Write([]byte(poolPrint))
	h.Write([]byte{0})
	h.Write([]byte(weightsPrint))
	return cacheKeyPrefix + hex.EncodeToString(h.Sum(nil))
}

// Get replays the cached report for key, flagged as a cache hit and carrying
// the key as its fingerprint. A store outage degrades to a miss; an entry
// that fails to decode is corruption and surfaces as a fatal error.
func (c *Cache) Get(ctx context.Context, key string) (match.Report, bool, error) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, store.ErrKeyNotFound) {
			c.logger.Warn("Failed to get cached match report", zap.String("key", key), zap.Error(err))
		}
		c.incCache("miss")
		return match.Report{}, false, nil
	}

	var row entryRow
	if err := json.Unmarshal(data, &row); err != nil {
		return match.Report{}, false, fmt.Errorf("cached match report %s: %v: %w", key, err, domain.ErrCacheCorruption)
	}

	results := make([]match.Result, 0, len(row.Results))
	for _, r := range row.Results {
		results = append(results, resultFromRow(r))
	}
	failures := make([]match.Failure, 0, len(row.Failures))
	for _, f := range row.Failures {
		failures = append(failures, failureFromRow(f))
	}

	c.incCache("hit")
	return match.NewReport(row.JobID, results, failures, key, true), true, nil
}

// Put stores a computed report under key. Failures to store are logged and
// swallowed: the report was already computed, a cold cache only costs the
// next caller a recompute.
func (c *Cache) Put(ctx context.Context, key string, report match.Report) {
	row := entryRow{
		JobID:   report.JobID(),
		Results: make([]resultRow, 0, len(report.Results())),
	}
	for _, r := range report.Results() {
		row.Results = append(row.Results, resultToRow(r))
	}
	for _, f := range report.Failures() {
		row.Failures = append(row.Failures, failureToRow(f))
	}

	data, err := json.Marshal(row)
	if err != nil {
		c.logger.Warn("Failed to encode match report", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.store.SetWithTTL(ctx, key, data, c.ttl); err != nil {
		c.logger.Warn("Failed to cache match report", zap.String("key", key), zap.Error(err))
	}
}

// Flush removes every cached report. Called when the weight preset changes,
// since results computed under the old weights are no longer comparable.
func (c *Cache) Flush(ctx context.Context) error {
	keys, err := c.store.Scan(ctx, cacheKeyPrefix+"*")
	if err != nil {
		return fmt.Errorf("scan result cache: %w", err)
	}
	for _, key := range keys {
		if err := c.store.Del(ctx, key); err != nil {
			return fmt.Errorf("flush result cache key %s: %w", key, err)
		}
	}
	return nil
}

func (c *Cache) incCache(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}

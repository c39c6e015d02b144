package embcache

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/hirelens/matchdex/internal/domain"
	"github.com/hirelens/matchdex/internal/store"
)

var cacheKeyPrefix = domain.KeyPrefix + "emb:"

// DefaultTTL bounds how long a cached embedding is trusted. Embeddings are
// content-addressed and the encoder is deterministic, so the TTL mostly
// guards against provider model swaps.
const DefaultTTL = 24 * time.Hour

// kv is the consumer interface for the embedding cache.
type kv interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// CachedEncoder caches embeddings in a key-value store, keyed by a sha256
// digest of the input text. Lookups and inserts never overlap the inner
// encoder call, so a cold key blocks nothing but its own caller; concurrent
// misses on the same key encode redundantly and the last write wins.
type CachedEncoder struct {
	inner      domain.Encoder
	store      kv
	ttl        time.Duration
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

var (
	_ domain.Encoder      = (*CachedEncoder)(nil)
	_ domain.BatchEncoder = (*CachedEncoder)(nil)
)

// New creates a caching decorator around inner.
// cacheTotal is a counter vec with label "result" ("hit"/"miss"), passed
// explicitly; ttl <= 0 selects DefaultTTL.
func New(
	inner domain.Encoder,
	s kv,
	ttl time.Duration,
	cacheTotal *prometheus.CounterVec,
	logger *zap.Logger,
) *CachedEncoder {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &CachedEncoder{
		inner:      inner,
		store:      s,
		ttl:        ttl,
		cacheTotal: cacheTotal,
		logger:     logger,
	}
}

// Encode returns a cached vector or calls the inner encoder.
// Cache hit: TotalTokens = 0 (no real tokens consumed).
// Cache miss: full EncodeResult from inner.
func (c *CachedEncoder) Encode(ctx context.Context, text string) (domain.EncodeResult, error) {
	key := c.cacheKey(text)

	vec, ok, err := c.getFromCache(ctx, key)
	if err != nil {
		return domain.EncodeResult{}, err
	}
	if ok {
		c.incCache("hit")
		return domain.EncodeResult{Vector: vec}, nil
	}

	c.incCache("miss")

	result, err := c.inner.Encode(ctx, text)
	if err != nil {
		return domain.EncodeResult{}, fmt.Errorf("encode text: %w", err)
	}

	c.putToCache(ctx, key, result.Vector)
	return result, nil
}

// BatchEncode resolves each text against the cache first and sends only the
// misses to the inner encoder in one batch. Token usage reflects misses only.
func (c *CachedEncoder) BatchEncode(ctx context.Context, texts []string) (domain.BatchEncodeResult, error) {
	if len(texts) == 0 {
		return domain.BatchEncodeResult{}, nil
	}

	vectors := make([][]float32, len(texts))
	keys := make([]string, len(texts))
	var missIdx []int

	for i, text := range texts {
		keys[i] = c.cacheKey(text)
		vec, ok, err := c.getFromCache(ctx, keys[i])
		if err != nil {
			return domain.BatchEncodeResult{}, err
		}
		if ok {
			c.incCache("hit")
			vectors[i] = vec
			continue
		}
		c.incCache("miss")
		missIdx = append(missIdx, i)
	}

	if len(missIdx) == 0 {
		return domain.BatchEncodeResult{Vectors: vectors}, nil
	}

	missing := make([]string, len(missIdx))
	for j, i := range missIdx {
		missing[j] = texts[i]
	}

	encoded, err := c.encodeBatch(ctx, missing)
	if err != nil {
		return domain.BatchEncodeResult{}, fmt.Errorf("encode batch: %w", err)
	}
	if len(encoded.Vectors) != len(missing) {
		return domain.BatchEncodeResult{}, fmt.Errorf("encoder returned %d vectors for %d texts: %w",
			len(encoded.Vectors), len(missing), domain.ErrEncoder)
	}

	for j, i := range missIdx {
		vectors[i] = encoded.Vectors[j]
		c.putToCache(ctx, keys[i], encoded.Vectors[j])
	}

	return domain.BatchEncodeResult{
		Vectors:      vectors,
		PromptTokens: encoded.PromptTokens,
		TotalTokens:  encoded.TotalTokens,
	}, nil
}

func (c *CachedEncoder) encodeBatch(ctx context.Context, texts []string) (domain.BatchEncodeResult, error) {
	if be, ok := c.inner.(domain.BatchEncoder); ok {
		return be.BatchEncode(ctx, texts)
	}
	return domain.BatchFallback(ctx, c.inner, texts)
}

func (c *CachedEncoder) incCache(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}

func (c *CachedEncoder) cacheKey(text string) string {
	h := sha256.Sum256([]byte(text))
	return cacheKeyPrefix + hex.EncodeToString(h[:])
}

// getFromCache returns (vector, true) on a usable hit and (nil, false) on a
// miss. Store outages degrade to a miss; undecodable payloads do not. A key
// this cache wrote holding bytes it cannot read back means the store is
// corrupt, and every other entry is suspect.
func (c *CachedEncoder) getFromCache(ctx context.Context, key string) ([]float32, bool, error) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, store.ErrKeyNotFound) {
			c.logger.Warn("Failed to get cached embedding", zap.String("key", key), zap.Error(err))
		}
		return nil, false, nil
	}
	if len(data) == 0 {
		return nil, false, nil
	}

	vec, err := bytesToVector(data)
	if err != nil {
		return nil, false, fmt.Errorf("cached embedding %s: %v: %w", key, err, domain.ErrCacheCorruption)
	}

	return vec, true, nil
}

func (c *CachedEncoder) putToCache(ctx context.Context, key string, vec []float32) {
	if len(vec) == 0 {
		return
	}
	data := vectorToCacheBytes(vec)
	if err := c.store.SetWithTTL(ctx, key, data, c.ttl); err != nil {
		c.logger.Warn("Failed to cache embedding", zap.String("key", key), zap.Error(err))
	}
}

func vectorToCacheBytes(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

func bytesToVector(data []byte) ([]float32, error) {
	if len(data)%4 != 0 {
		return nil, fmt.Errorf("invalid embedding cache data: len=%d (not multiple of 4)", len(data))
	}
	vec := make([]float32, len(data)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return vec, nil
}

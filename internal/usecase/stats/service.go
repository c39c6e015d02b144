// Package stats reports engine statistics: cache effectiveness, index
// occupancy and the active scoring configuration, collected into one
// immutable snapshot.
package stats

import (
	"context"

	"github.com/hirelens/matchdex/internal/cache"
	"github.com/hirelens/matchdex/internal/index"
)

// Snapshot is a point-in-time view of engine state.
type Snapshot struct {
	embedding      cache.Stats
	results        cache.Stats
	indexSize      int
	indexDim       int
	indexMode      index.Mode
	workers        int
	weightsVersion string
}

// NewSnapshot creates a snapshot.
func NewSnapshot(embedding, results cache.Stats, indexSize, indexDim int, indexMode index.Mode, workers int, weightsVersion string) Snapshot {
	return Snapshot{
		embedding:      embedding,
		results:        results,
		indexSize:      indexSize,
		indexDim:       indexDim,
		indexMode:      indexMode,
		workers:        workers,
		weightsVersion: weightsVersion,
	}
}

// EmbeddingCache returns the embedding-cache counters.
func (s Snapshot) EmbeddingCache() cache.Stats { return s.embedding }

// ResultCache returns the result-cache counters.
func (s Snapshot) ResultCache() cache.Stats { return s.results }

// IndexSize returns the number of indexed candidate vectors.
func (s Snapshot) IndexSize() int { return s.indexSize }

// IndexDim returns the index embedding dimension, 0 without an index.
func (s Snapshot) IndexDim() int { return s.indexDim }

// IndexMode returns the index search mode, empty without an index.
func (s Snapshot) IndexMode() index.Mode { return s.indexMode }

// Workers returns the scoring worker pool size.
func (s Snapshot) Workers() int { return s.workers }

// WeightsVersion returns the active weight preset version.
func (s Snapshot) WeightsVersion() string { return s.weightsVersion }

// Service collects engine statistics.
type Service struct {
	embedding CounterSource
	results   CounterSource
	idx       IndexReader
	wr        WeightsReader
	workers   int
}

// New creates a Service. Any collaborator can be nil; its section of the
// snapshot reads zero.
func New(embedding, results CounterSource, idx IndexReader, wr WeightsReader) *Service {
	return &Service{embedding: embedding, results: results, idx: idx, wr: wr}
}

// WithWorkers sets the reported worker pool size.
func (s *Service) WithWorkers(n int) *Service {
	s.workers = n
	return s
}

// Snapshot collects current counters from every wired source.
func (s *Service) Snapshot(_ context.Context) Snapshot {
	var emb, res cache.Stats
	if s.embedding != nil {
		emb = s.embedding.Stats()
	}
	if s.results != nil {
		res = s.results.Stats()
	}

	var size, dim int
	var mode index.Mode
	if s.idx != nil {
		size = s.idx.Len()
		dim = s.idx.Dim()
		mode = s.idx.Mode()
	}

	var version string
	if s.wr != nil {
		version = s.wr.CurrentWeights().Version
	}

	return NewSnapshot(emb, res, size, dim, mode, s.workers, version)
}

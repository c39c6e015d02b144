// Package index provides in-memory nearest-neighbor search over candidate
// embeddings. Vectors are L2-normalized on insert so cosine similarity
// reduces to a dot product. Writes serialize behind the write lock; readers
// share the read lock and never observe a partial update.
package index

import (
	"fmt"
	"sort"
	"sync"

	"github.com/hirelens/matchdex/internal/domain"
)

// Mode selects the search strategy.
type Mode string

// Search modes.
const (
	// ModeExact scans every stored vector.
	ModeExact Mode = "exact"
	// ModeApprox probes an inverted-file clustering, trading a small recall
	// loss for sub-linear scans on large pools.
	ModeApprox Mode = "approx"
)

// Hit is one search result.
type Hit struct {
	ID         string
	Similarity float64
}

// Config holds index construction parameters.
type Config struct {
	// Dim is the fixed embedding dimension. Required.
	Dim int
	// Mode defaults to ModeExact.
	Mode Mode
	// NProbe is how many nearest clusters an approximate search inspects.
	NProbe int
	// ApproxMinSize is the pool size below which approximate mode falls
	// back to an exact scan.
	ApproxMinSize int
	// Seed fixes cluster initialization so rebuilds are reproducible.
	Seed int64
}

// Approximate-mode defaults.
const (
	DefaultNProbe        = 3
	DefaultApproxMinSize = 500
)

func (c Config) withDefaults() Config {
	if c.Mode == "" {
		c.Mode = ModeExact
	}
	if c.NProbe <= 0 {
		c.NProbe = DefaultNProbe
	}
	if c.ApproxMinSize <= 0 {
		c.ApproxMinSize = DefaultApproxMinSize
	}
	if c.Seed == 0 {
		c.Seed = 1
	}
	return c
}

// Validate checks construction parameters.
func (c Config) Validate() error {
	if c.Dim < 1 {
		return fmt.Errorf("index dimension %d must be positive: %w", c.Dim, domain.ErrConfiguration)
	}
	if c.Mode != ModeExact && c.Mode != ModeApprox {
		return fmt.Errorf("unknown index mode %q: %w", c.Mode, domain.ErrConfiguration)
	}
	return nil
}

// Index stores normalized vectors keyed by candidate id.
type Index struct {
	cfg Config

	mu   sync.RWMutex
	ids  []string
	vecs [][]float32
	pos  map[string]int
	ivf  *ivfState // built lazily in approximate mode, nil until then
}

// New creates an empty index of fixed dimension.
func New(cfg Config) (*Index, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Index{cfg: cfg, pos: make(map[string]int)}, nil
}

// Dim returns the fixed embedding dimension.
func (x *Index) Dim() int { return x.cfg.Dim }

// Mode returns the configured search mode.
func (x *Index) Mode() Mode { return x.cfg.Mode }

// Len returns the number of stored vectors.
func (x *Index) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.ids)
}

// Contains reports whether id is indexed.
func (x *Index) Contains(id string) bool {
	x.mu.RLock()
	defer x.mu.RUnlock()
	_, ok := x.pos[id]
	return ok
}

// Add upserts a vector under id, storing an L2-normalized copy. Re-adding
// an id replaces its vector.
func (x *Index) Add(id string, vec []float32) error {
	if id == "" {
		return fmt.Errorf("index add: id is required: %w", domain.ErrValidation)
	}
	if len(vec) != x.cfg.Dim {
		return fmt.Errorf("index add %s: got %d dimensions, want %d: %w",
			id, len(vec), x.cfg.Dim, domain.ErrInvalidDimension)
	}
	normalized := domain.Normalize(vec)

	x.mu.Lock()
	defer x.mu.Unlock()

	if p, ok := x.pos[id]; ok {
		x.vecs[p] = normalized
		if x.ivf != nil {
			x.ivf.updatePos(p, normalized)
		}
		return nil
	}

	p := len(x.ids)
	x.ids = append(x.ids, id)
	x.vecs = append(x.vecs, normalized)
	x.pos[id] = p

	if x.ivf != nil {
		x.ivf.insertPos(p, normalized)
		// Enough growth since the last build distorts the clustering;
		// drop it so the next search rebuilds.
		if len(x.ids) >= 2*x.ivf.builtLen {
			x.ivf = nil
		}
	}
	return nil
}

// Remove deletes id and reports whether it was present.
func (x *Index) Remove(id string) bool {
	x.mu.Lock()
	defer x.mu.Unlock()

	p, ok := x.pos[id]
	if !ok {
		return false
	}

	last := len(x.ids) - 1
	if x.ivf != nil {
		x.ivf.removeSwap(p, last)
	}
	if p != last {
		x.ids[p] = x.ids[last]
		x.vecs[p] = x.vecs[last]
		x.pos[x.ids[p]] = p
	}
	x.ids = x.ids[:last]
	x.vecs = x.vecs[:last]
	delete(x.pos, id)
	return true
}

// Search returns the k nearest ids by cosine similarity, descending, ties
// broken by ascending id. k above the pool size returns everything.
func (x *Index) Search(query []float32, k int) ([]Hit, error) {
	if k <= 0 {
		return nil, fmt.Errorf("index search: k=%d must be positive: %w", k, domain.ErrValidation)
	}
	if len(query) != x.cfg.Dim {
		return nil, fmt.Errorf("index search: got %d dimensions, want %d: %w",
			len(query), x.cfg.Dim, domain.ErrInvalidDimension)
	}
	q := domain.Normalize(query)

	if x.cfg.Mode == ModeApprox {
		x.ensureClustering()
	}

	x.mu.RLock()
	defer x.mu.RUnlock()

	if x.cfg.Mode == ModeApprox && x.ivf != nil && len(x.ids) >= x.cfg.ApproxMinSize {
		return x.searchApprox(q, k), nil
	}
	return x.searchExact(q, k), nil
}

// searchExact scans every vector. Caller holds at least the read lock.
func (x *Index) searchExact(q []float32, k int) []Hit {
	hits := make([]Hit, len(x.ids))
	for i, vec := range x.vecs {
		hits[i] = Hit{ID: x.ids[i], Similarity: domain.Dot(q, vec)}
	}
	return topK(hits, k)
}

// searchApprox scans only the vectors in the probed clusters.
func (x *Index) searchApprox(q []float32, k int) []Hit {
	var hits []Hit
	for _, c := range x.ivf.nearestCentroids(q, x.cfg.NProbe) {
		for _, p := range x.ivf.lists[c] {
			hits = append(hits, Hit{ID: x.ids[p], Similarity: domain.Dot(q, x.vecs[p])})
		}
	}
	return topK(hits, k)
}

// ensureClustering builds the inverted file when approximate search needs
// one. Double-checked around the lock upgrade since several searches can
// race here.
func (x *Index) ensureClustering() {
	x.mu.RLock()
	ready := x.ivf != nil || len(x.ids) < x.cfg.ApproxMinSize
	x.mu.RUnlock()
	if ready {
		return
	}

	x.mu.Lock()
	defer x.mu.Unlock()
	if x.ivf != nil || len(x.ids) < x.cfg.ApproxMinSize {
		return
	}
	x.ivf = buildIVF(x.vecs, x.cfg.Seed)
}

func topK(hits []Hit, k int) []Hit {
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Similarity != hits[j].Similarity {
			return hits[i].Similarity > hits[j].Similarity
		}
		return hits[i].ID < hits[j].ID
	})
	if k < len(hits) {
		hits = hits[:k]
	}
	return hits
}

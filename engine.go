// Package matchdex scores and ranks candidate profiles against job
// requirements. An Engine owns the embedding cache, the shortlist index,
// the tiered skill matcher, the scoring pipeline and the result cache;
// callers hand it plain candidate and job records and get back ranked,
// explainable reports.
package matchdex

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/hirelens/matchdex/internal/config"
	"github.com/hirelens/matchdex/internal/domain"
	"github.com/hirelens/matchdex/internal/domain/weights"
	"github.com/hirelens/matchdex/internal/index"
	"github.com/hirelens/matchdex/internal/metrics"
	"github.com/hirelens/matchdex/internal/ranking"
	"github.com/hirelens/matchdex/internal/repository/embcache"
	"github.com/hirelens/matchdex/internal/repository/resultcache"
	"github.com/hirelens/matchdex/internal/skills"
	"github.com/hirelens/matchdex/internal/store"
	"github.com/hirelens/matchdex/internal/store/memory"
	"github.com/hirelens/matchdex/internal/store/redis"
	matchuc "github.com/hirelens/matchdex/internal/usecase/match"
	"github.com/hirelens/matchdex/internal/usecase/stats"
)

const defaultReadinessTimeout = 10 * time.Second

// Engine is the matchdex entry point. It is safe for concurrent use; one
// engine is meant to serve a whole process.
type Engine struct {
	logger *zap.Logger

	matchSvc *matchuc.Service
	statsSvc *stats.Service
	resCache *resultcache.Cache
	idx      *lazyIndex
	watcher  *config.Watcher

	mu      sync.RWMutex
	weights weights.Weights

	shortlistK int
	closers    []func()
}

// New assembles an engine from options. Every option has a default: a bare
// New() yields an in-memory engine scoring with DefaultWeights and no
// encoder, so semantic scoring runs off the embeddings callers supply.
func New(opts ...Option) (*Engine, error) {
	cfg := defaultEngineConfig()
	for _, o := range opts {
		o(cfg)
	}
	return newEngine(cfg)
}

// NewFromConfig builds an engine from a YAML configuration file. Extra
// options apply on top, so a deployment can keep provider credentials in
// the file and attach a logger or custom encoder in code.
func NewFromConfig(path string, opts ...Option) (*Engine, error) {
	fileCfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	base, err := optionsFromConfig(fileCfg)
	if err != nil {
		return nil, err
	}
	return New(append(base, opts...)...)
}

func optionsFromConfig(cfg config.Config) ([]Option, error) {
	active, err := cfg.ActiveWeights()
	if err != nil {
		return nil, err
	}
	opts := []Option{
		WithWeights(fromDomainWeights(active)),
		WithThresholds(cfg.Matcher.FuzzyThreshold, cfg.Matcher.SemanticThreshold),
		WithTiers(cfg.Tiers.S, cfg.Tiers.A, cfg.Tiers.B, cfg.Tiers.C),
		WithCacheCapacity(cfg.Cache.EmbeddingCapacity, cfg.Cache.ResultCapacity),
		WithCacheTTL(
			time.Duration(cfg.Cache.EmbeddingTTLSec)*time.Second,
			time.Duration(cfg.Cache.ResultTTLSec)*time.Second,
		),
		WithWorkers(cfg.Pool.Workers),
		WithIndexMode(IndexMode(cfg.Index.Mode)),
		WithIndexTuning(cfg.Index.NProbe, cfg.Index.ApproxMinSize),
	}
	if len(cfg.Matcher.Aliases) > 0 {
		opts = append(opts, WithAliases(cfg.Matcher.Aliases))
	}
	if cfg.Weights.File != "" {
		opts = append(opts, WithWeightsFile(cfg.Weights.File))
	}
	switch cfg.Encoder.Provider {
	case "openai":
		opts = append(opts, WithOpenAIEncoder(OpenAIConfig{
			APIKey:            cfg.Encoder.APIKey,
			BaseURL:           cfg.Encoder.BaseURL,
			Model:             cfg.Encoder.Model,
			Dimensions:        cfg.Encoder.Dimensions,
			Timeout:           time.Duration(cfg.Encoder.TimeoutSec) * time.Second,
			RequestsPerMinute: cfg.Encoder.RequestsPerMinute,
			Burst:             cfg.Encoder.Burst,
			DisableBreaker:    cfg.Encoder.DisableBreaker,
		}))
	case "gemini":
		opts = append(opts, WithGeminiEncoder(context.Background(), GeminiConfig{
			APIKey:     cfg.Encoder.APIKey,
			Model:      cfg.Encoder.Model,
			Dimensions: cfg.Encoder.Dimensions,
			Timeout:    time.Duration(cfg.Encoder.TimeoutSec) * time.Second,
		}))
	}
	if cfg.Store.Driver == "redis" {
		opts = append(opts, WithRedisCache(RedisConfig{
			Addrs:    cfg.Store.Addrs,
			Username: cfg.Store.Username,
			Password: cfg.Store.Password,
			DB:       cfg.Store.DB,
		}))
	}
	return opts, nil
}

func newEngine(cfg *engineConfig) (*Engine, error) {
	logger := cfg.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	if cfg.weightsFile != "" {
		w, err := config.LoadWeightsFile(cfg.weightsFile)
		if err != nil {
			return nil, fmt.Errorf("matchdex: weights file: %w", err)
		}
		cfg.weights = w
	}
	if err := cfg.weights.Validate(); err != nil {
		return nil, err
	}
	if cfg.index.Mode != index.ModeExact && cfg.index.Mode != index.ModeApprox {
		return nil, fmt.Errorf("matchdex: unknown index mode %q: %w", cfg.index.Mode, domain.ErrConfiguration)
	}

	aliases := skills.DefaultAliases()
	if len(cfg.aliases) > 0 {
		extra, err := skills.FromPairs(cfg.aliases)
		if err != nil {
			return nil, err
		}
		if aliases, err = aliases.Merge(extra); err != nil {
			return nil, err
		}
	}

	e := &Engine{
		logger:     logger,
		weights:    cfg.weights,
		shortlistK: cfg.shortlistK,
	}
	ok := false
	defer func() {
		if !ok {
			e.Close()
		}
	}()

	// The memory driver keeps two stores so each cache evicts and counts
	// independently; Redis shares one connection, keys are namespaced.
	var embKV, resKV store.Store
	var embCounters, resCounters stats.CounterSource
	if cfg.redis != nil {
		rs, err := redis.NewStore(redis.Config{
			Addrs:    cfg.redis.Addrs,
			Username: cfg.redis.Username,
			Password: cfg.redis.Password,
			DB:       cfg.redis.DB,
		})
		if err != nil {
			return nil, fmt.Errorf("matchdex: create redis store: %w", err)
		}
		e.closers = append(e.closers, rs.Close)
		if err := rs.WaitForReady(context.Background(), defaultReadinessTimeout); err != nil {
			return nil, fmt.Errorf("matchdex: redis not ready: %w", err)
		}
		embKV, resKV = rs, rs
	} else {
		embStore := memory.NewStore(cfg.embCapacity, cfg.embTTL)
		resStore := memory.NewStore(cfg.resCapacity, cfg.resTTL)
		e.closers = append(e.closers, embStore.Close, resStore.Close)
		embKV, resKV = embStore, resStore
		embCounters, resCounters = embStore, resStore
	}

	// Encoder chain: the provider behind the content-addressed cache.
	var enc domain.Encoder
	if cfg.buildEncoder != nil {
		base, err := cfg.buildEncoder(logger)
		if err != nil {
			return nil, fmt.Errorf("matchdex: create encoder: %w", err)
		}
		enc = embcache.New(base, embKV, cfg.embTTL, metrics.EmbeddingCacheTotal, logger)
	}

	matcher, err := skills.NewMatcher(aliases, cfg.matcher, enc)
	if err != nil {
		return nil, err
	}
	ranker, err := ranking.New(cfg.tiers)
	if err != nil {
		return nil, err
	}

	e.idx = newLazyIndex(cfg.index)
	if cfg.index.Dim != 0 {
		if _, err := e.idx.ensure(cfg.index.Dim); err != nil {
			return nil, err
		}
	}

	e.resCache = resultcache.New(resKV, cfg.resTTL, metrics.ResultCacheTotal, logger)
	e.matchSvc = matchuc.New(matcher, ranker, e.idx, e.resCache, enc).WithWorkers(cfg.workers)
	e.statsSvc = stats.New(embCounters, resCounters, e.idx, weightsSource{e}).WithWorkers(cfg.workers)

	if cfg.weightsFile != "" {
		w := config.NewWatcher(cfg.weightsFile, config.DefaultDebounce, func(next weights.Weights) {
			e.swapWeights(context.Background(), next)
		}, logger)
		if err := w.Start(); err != nil {
			return nil, fmt.Errorf("matchdex: watch weights file: %w", err)
		}
		e.watcher = w
	}

	if cfg.registerer != nil {
		if err := metrics.Register(cfg.registerer); err != nil {
			return nil, fmt.Errorf("matchdex: %w", err)
		}
	}

	logger.Info("Engine ready",
		zap.String("weights_version", cfg.weights.Version),
		zap.Int("workers", cfg.workers),
		zap.String("index_mode", string(cfg.index.Mode)),
		zap.Bool("encoder", enc != nil),
		zap.Bool("redis", cfg.redis != nil))
	ok = true
	return e, nil
}

// Match scores every candidate in pool against job and returns the ranked
// report. Candidates that cannot be scored land in Report.Failures and
// never fail the batch; a malformed job or configuration aborts the call
// with a StageError. Identical (job, pool, weights) inputs replay from the
// result cache.
func (e *Engine) Match(ctx context.Context, job *Job, pool []Candidate) (*Report, error) {
	return e.match(ctx, job, pool, nil)
}

// MatchFiltered is Match with a filter narrowing the ranked view. The
// unfiltered report is what lands in the result cache, so one computation
// serves differently filtered calls.
func (e *Engine) MatchFiltered(ctx context.Context, job *Job, pool []Candidate, f *Filter) (*Report, error) {
	return e.match(ctx, job, pool, f)
}

func (e *Engine) match(ctx context.Context, job *Job, pool []Candidate, f *Filter) (*Report, error) {
	if job == nil {
		return nil, domain.NewStageError("", "", domain.StageValidate,
			fmt.Errorf("job is required: %w", domain.ErrValidation))
	}
	dj, err := toDomainJob(job)
	if err != nil {
		return nil, domain.NewStageError("", job.ID, domain.StageValidate, err)
	}
	rf, err := toRankingFilter(f)
	if err != nil {
		return nil, domain.NewStageError("", job.ID, domain.StageValidate, err)
	}

	// Candidates that fail translation are isolated here the same way the
	// pipeline isolates scoring failures.
	dp := make([]domain.CandidateProfile, 0, len(pool))
	var skipped []Failure
	for i := range pool {
		cand, err := toDomainCandidate(&pool[i])
		if err != nil {
			skipped = append(skipped, Failure{
				CandidateID: pool[i].ID,
				Stage:       domain.StageValidate,
				Error:       err.Error(),
			})
			continue
		}
		dp = append(dp, cand)
	}

	rep, err := e.matchSvc.Match(ctx, dj, dp, matchuc.Options{
		Weights:    e.weightsFor(job),
		Filter:     rf,
		ShortlistK: e.shortlistK,
	})
	if err != nil {
		return nil, err
	}

	out := fromReport(rep)
	out.Failures = append(out.Failures, skipped...)
	return out, nil
}

// weightsFor resolves the preset one call scores under: the job override
// when present, the engine's live preset otherwise.
func (e *Engine) weightsFor(job *Job) weights.Weights {
	if job.Weights != nil {
		return toDomainWeights(*job.Weights)
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.weights
}

// Shortlist returns the k indexed candidates nearest the job embedding,
// most similar first, ties broken by ascending id. Only candidates indexed
// through IndexPool or an earlier shortlisted Match are visible.
func (e *Engine) Shortlist(_ context.Context, job *Job, k int) ([]Hit, error) {
	if k <= 0 {
		return nil, fmt.Errorf("matchdex: shortlist k=%d must be positive: %w", k, domain.ErrValidation)
	}
	if job == nil || len(job.Embedding) == 0 {
		return nil, fmt.Errorf("matchdex: shortlist needs a job embedding: %w", domain.ErrValidation)
	}
	hits, err := e.idx.Search(job.Embedding, k)
	if err != nil {
		return nil, fmt.Errorf("matchdex: shortlist: %w", err)
	}
	return fromHits(hits), nil
}

// IndexPool adds every embedded candidate to the shortlist index so later
// Shortlist and shortlisted Match calls search a warm index. Candidates
// without an embedding are skipped. Returns how many vectors were indexed;
// per-candidate errors are joined, and an error never undoes earlier adds.
func (e *Engine) IndexPool(ctx context.Context, pool []Candidate) (int, error) {
	indexed := 0
	var errs []error
	for i := range pool {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		c := &pool[i]
		if len(c.Embedding) == 0 {
			continue
		}
		if c.ID == "" {
			errs = append(errs, fmt.Errorf("candidate[%d]: id is required: %w", i, domain.ErrValidation))
			continue
		}
		if err := e.idx.Add(c.ID, c.Embedding); err != nil {
			errs = append(errs, fmt.Errorf("candidate %s: %w", c.ID, err))
			continue
		}
		indexed++
	}
	metrics.IndexedCandidates.Set(float64(e.idx.Len()))
	return indexed, errors.Join(errs...)
}

// RemoveCandidate drops a candidate's vector from the shortlist index and
// reports whether it was present. Cached reports keep the candidate until
// they expire; FlushCache retires them immediately.
func (e *Engine) RemoveCandidate(id string) bool {
	removed := e.idx.Remove(id)
	if removed {
		metrics.IndexedCandidates.Set(float64(e.idx.Len()))
	}
	return removed
}

// UpdateWeights swaps the live scoring preset. In-flight Match calls finish
// under the preset they started with; the result cache is flushed since its
// entries are keyed by the outgoing preset's fingerprint and would only
// hold dead space.
func (e *Engine) UpdateWeights(ctx context.Context, w Weights) error {
	dw := toDomainWeights(w)
	if err := dw.Validate(); err != nil {
		return err
	}
	e.swapWeights(ctx, dw)
	return nil
}

func (e *Engine) swapWeights(ctx context.Context, next weights.Weights) {
	e.mu.Lock()
	prev := e.weights
	e.weights = next
	e.mu.Unlock()

	if err := e.resCache.Flush(ctx); err != nil {
		e.logger.Warn("Result cache flush after weight swap failed", zap.Error(err))
	}
	metrics.WeightUpdatesTotal.Inc()
	e.logger.Info("Scoring weights updated",
		zap.String("from", prev.Version),
		zap.String("to", next.Version))
}

// CurrentWeights returns the live scoring preset.
func (e *Engine) CurrentWeights() Weights {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return fromDomainWeights(e.weights)
}

// FlushCache drops every cached match report. Embedding cache entries stay:
// they are content-addressed and only cost provider calls to rebuild.
func (e *Engine) FlushCache(ctx context.Context) error {
	return e.resCache.Flush(ctx)
}

// Stats returns a point-in-time view of cache effectiveness, index
// occupancy and the active configuration.
func (e *Engine) Stats(ctx context.Context) Stats {
	return fromSnapshot(e.statsSvc.Snapshot(ctx))
}

// Close stops the weights watcher and releases store connections. The
// engine must not be used after Close.
func (e *Engine) Close() {
	if e.watcher != nil {
		e.watcher.Stop()
	}
	for _, c := range e.closers {
		c()
	}
}

// weightsSource adapts the engine's preset holder to the stats reader.
type weightsSource struct{ e *Engine }

func (s weightsSource) CurrentWeights() weights.Weights {
	s.e.mu.RLock()
	defer s.e.mu.RUnlock()
	return s.e.weights
}

// lazyIndex defers index construction until the first vector arrives so an
// engine built without WithIndexDim adopts whatever width its embeddings
// turn out to have.
type lazyIndex struct {
	cfg index.Config

	mu  sync.RWMutex
	idx *index.Index
}

func newLazyIndex(cfg index.Config) *lazyIndex {
	if cfg.Mode == "" {
		cfg.Mode = index.ModeExact
	}
	return &lazyIndex{cfg: cfg}
}

// ensure returns the built index, constructing it with dim on first need.
// Double-checked around the lock upgrade since concurrent adds race here.
func (l *lazyIndex) ensure(dim int) (*index.Index, error) {
	l.mu.RLock()
	idx := l.idx
	l.mu.RUnlock()
	if idx != nil {
		return idx, nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.idx == nil {
		cfg := l.cfg
		cfg.Dim = dim
		built, err := index.New(cfg)
		if err != nil {
			return nil, err
		}
		l.idx = built
	}
	return l.idx, nil
}

func (l *lazyIndex) get() *index.Index {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.idx
}

func (l *lazyIndex) Add(id string, vec []float32) error {
	dim := l.cfg.Dim
	if dim == 0 {
		dim = len(vec)
	}
	idx, err := l.ensure(dim)
	if err != nil {
		return err
	}
	return idx.Add(id, vec)
}

// Search answers against the built index; an unbuilt index matches nothing.
func (l *lazyIndex) Search(query []float32, k int) ([]index.Hit, error) {
	idx := l.get()
	if idx == nil {
		return nil, nil
	}
	return idx.Search(query, k)
}

func (l *lazyIndex) Remove(id string) bool {
	idx := l.get()
	if idx == nil {
		return false
	}
	return idx.Remove(id)
}

func (l *lazyIndex) Len() int {
	idx := l.get()
	if idx == nil {
		return 0
	}
	return idx.Len()
}

// Dim reports the index dimension, 0 until one is fixed or inferred.
func (l *lazyIndex) Dim() int {
	if idx := l.get(); idx != nil {
		return idx.Dim()
	}
	return l.cfg.Dim
}

func (l *lazyIndex) Mode() index.Mode {
	return l.cfg.Mode
}

// adaptEncoder wraps a public Encoder for the pipeline, mapping foreign
// errors onto the engine taxonomy so a failing custom provider degrades
// scoring instead of failing candidates. Native batching is kept when the
// provider has it.
func adaptEncoder(enc Encoder) domain.Encoder {
	base := encoderAdapter{inner: enc}
	if b, ok := enc.(BatchEncoder); ok {
		return &batchEncoderAdapter{encoderAdapter: base, batch: b}
	}
	return &base
}

type encoderAdapter struct {
	inner Encoder
}

func (a *encoderAdapter) Encode(ctx context.Context, text string) (domain.EncodeResult, error) {
	r, err := a.inner.Encode(ctx, text)
	if err != nil {
		return domain.EncodeResult{}, classifyEncodeErr(err)
	}
	return domain.EncodeResult{
		Vector:       r.Vector,
		PromptTokens: r.PromptTokens,
		TotalTokens:  r.TotalTokens,
	}, nil
}

type batchEncoderAdapter struct {
	encoderAdapter
	batch BatchEncoder
}

func (a *batchEncoderAdapter) BatchEncode(ctx context.Context, texts []string) (domain.BatchEncodeResult, error) {
	r, err := a.batch.BatchEncode(ctx, texts)
	if err != nil {
		return domain.BatchEncodeResult{}, classifyEncodeErr(err)
	}
	return domain.BatchEncodeResult{
		Vectors:      r.Vectors,
		PromptTokens: r.PromptTokens,
		TotalTokens:  r.TotalTokens,
	}, nil
}

func classifyEncodeErr(err error) error {
	switch {
	case errors.Is(err, domain.ErrEncoder),
		errors.Is(err, domain.ErrEncoderTimeout),
		errors.Is(err, context.Canceled):
		return err
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("encode: %v: %w", err, domain.ErrEncoderTimeout)
	default:
		return fmt.Errorf("encode: %v: %w", err, domain.ErrEncoder)
	}
}

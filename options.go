package matchdex

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/hirelens/matchdex/internal/domain"
	"github.com/hirelens/matchdex/internal/domain/weights"
	"github.com/hirelens/matchdex/internal/encoder/gemini"
	"github.com/hirelens/matchdex/internal/encoder/openai"
	"github.com/hirelens/matchdex/internal/index"
	"github.com/hirelens/matchdex/internal/ranking"
	"github.com/hirelens/matchdex/internal/repository/embcache"
	"github.com/hirelens/matchdex/internal/repository/resultcache"
	"github.com/hirelens/matchdex/internal/skills"
	"github.com/hirelens/matchdex/internal/usecase/match"
)

// Option configures the engine.
type Option func(*engineConfig)

type engineConfig struct {
	logger *zap.Logger

	weights     weights.Weights
	weightsFile string

	matcher skills.Config
	aliases map[string]string // extra variant -> canonical pairs
	tiers   ranking.Tiers

	embCapacity int
	embTTL      time.Duration
	resCapacity int
	resTTL      time.Duration
	redis       *RedisConfig

	workers    int
	shortlistK int
	index      index.Config // Dim 0 = inferred from the first indexed vector

	// buildEncoder constructs the configured provider at New time, once the
	// logger is settled. Nil runs the engine lexical-only.
	buildEncoder func(logger *zap.Logger) (domain.Encoder, error)

	registerer prometheus.Registerer
}

func defaultEngineConfig() *engineConfig {
	return &engineConfig{
		weights:     weights.Default(),
		matcher:     skills.DefaultConfig(),
		tiers:       ranking.DefaultTiers(),
		embCapacity: 10000,
		embTTL:      embcache.DefaultTTL,
		resCapacity: 1000,
		resTTL:      resultcache.DefaultTTL,
		workers:     match.DefaultWorkers,
		index:       index.Config{Mode: index.ModeExact},
	}
}

// OpenAIConfig configures the OpenAI-compatible embedding provider. It also
// serves providers exposing the same API surface behind a custom BaseURL.
type OpenAIConfig struct {
	APIKey  string
	BaseURL string // empty targets the OpenAI API
	Model   string // embedding model name, e.g. "text-embedding-3-small"
	// Dimensions requests reduced-dimension embeddings; zero keeps the
	// model's native width.
	Dimensions int
	// Timeout is the per-call deadline; zero selects a 10 second default.
	Timeout time.Duration
	// RequestsPerMinute throttles outbound calls; zero disables the limiter.
	RequestsPerMinute int
	Burst             int
	// DisableBreaker turns the circuit breaker off (on by default).
	DisableBreaker bool
}

// GeminiConfig configures the Gemini embedding provider.
type GeminiConfig struct {
	APIKey     string
	Model      string // defaults to "gemini-embedding-001"
	Dimensions int
	// Timeout is the per-call deadline; zero selects a 10 second default.
	Timeout time.Duration
}

// RedisConfig points both caches at a Redis deployment, sharing cached
// embeddings and reports across engine instances.
type RedisConfig struct {
	Addrs    []string
	Username string
	Password string
	DB       int
}

// WithLogger sets the engine logger. Defaults to a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *engineConfig) {
		c.logger = l
	}
}

// WithWeights sets the scoring preset. Defaults to DefaultWeights.
func WithWeights(w Weights) Option {
	return func(c *engineConfig) {
		c.weights = toDomainWeights(w)
	}
}

// WithWeightsFile loads the scoring preset from a YAML file and live-reloads
// it on change. The file holds one preset: version plus the four factor
// weights. Overrides WithWeights; a malformed file fails New, a malformed
// reload keeps the previous preset.
func WithWeightsFile(path string) Option {
	return func(c *engineConfig) {
		c.weightsFile = path
	}
}

// WithThresholds sets the skill cascade cutoffs: the minimum fuzzy ratio in
// (0,100] and the minimum semantic cosine in (0,1]. Defaults: 85 and 0.70.
func WithThresholds(fuzzy, semantic float64) Option {
	return func(c *engineConfig) {
		c.matcher.FuzzyThreshold = fuzzy
		c.matcher.SemanticThreshold = semantic
	}
}

// WithAliases merges extra variant -> canonical skill name pairs over the
// built-in alias table. A variant claimed by two canonicals fails New.
func WithAliases(pairs map[string]string) Option {
	return func(c *engineConfig) {
		c.aliases = pairs
	}
}

// WithTiers sets the lower score bound of each quality tier. The bounds
// must descend strictly; D covers everything below c. Defaults to
// S 85, A 75, B 65, C 50.
func WithTiers(s, a, b, c float64) Option {
	return func(cfg *engineConfig) {
		cfg.tiers = ranking.Tiers{S: s, A: a, B: b, C: c}
	}
}

// WithCacheCapacity sets the in-memory entry limits of the embedding and
// result caches. Defaults: 10000 and 1000. Ignored under WithRedisCache.
func WithCacheCapacity(embedding, result int) Option {
	return func(c *engineConfig) {
		if embedding > 0 {
			c.embCapacity = embedding
		}
		if result > 0 {
			c.resCapacity = result
		}
	}
}

// WithCacheTTL sets the lifetimes of cached embeddings and reports.
// Defaults: 24 hours and one hour.
func WithCacheTTL(embedding, result time.Duration) Option {
	return func(c *engineConfig) {
		if embedding > 0 {
			c.embTTL = embedding
		}
		if result > 0 {
			c.resTTL = result
		}
	}
}

// WithRedisCache backs both caches with Redis instead of process memory.
// Cached embeddings and reports survive restarts and are shared across
// engine instances; Stats cache sections read zero since the driver keeps
// no local counters.
func WithRedisCache(cfg RedisConfig) Option {
	return func(c *engineConfig) {
		c.redis = &cfg
	}
}

// WithWorkers sets the scoring worker pool size. Defaults to 8.
func WithWorkers(n int) Option {
	return func(c *engineConfig) {
		if n > 0 {
			c.workers = n
		}
	}
}

// WithShortlist caps every Match call at scoring the k candidates nearest
// the job embedding. Candidates without an embedding bypass the shortlist.
// Zero (the default) scores the whole pool.
func WithShortlist(k int) Option {
	return func(c *engineConfig) {
		c.shortlistK = k
	}
}

// WithIndexMode selects the shortlist search strategy. Defaults to
// IndexExact.
func WithIndexMode(mode IndexMode) Option {
	return func(c *engineConfig) {
		c.index.Mode = index.Mode(mode)
	}
}

// WithIndexDim fixes the index embedding dimension. Without it the engine
// adopts the dimension of the first indexed vector.
func WithIndexDim(dim int) Option {
	return func(c *engineConfig) {
		c.index.Dim = dim
	}
}

// WithIndexTuning adjusts approximate search: nprobe is how many nearest
// clusters a search inspects, approxMinSize the pool size below which
// approximate mode falls back to an exact scan. Defaults: 3 and 500.
func WithIndexTuning(nprobe, approxMinSize int) Option {
	return func(c *engineConfig) {
		c.index.NProbe = nprobe
		c.index.ApproxMinSize = approxMinSize
	}
}

// WithEncoder sets a custom embedding provider. It powers the semantic
// skill tier and bonus-skill relevance; without any encoder the engine
// runs lexical-only. Wins over WithOpenAIEncoder and WithGeminiEncoder.
func WithEncoder(enc Encoder) Option {
	return func(c *engineConfig) {
		c.buildEncoder = func(*zap.Logger) (domain.Encoder, error) {
			return adaptEncoder(enc), nil
		}
	}
}

// WithOpenAIEncoder builds the OpenAI-compatible embedding provider with
// deadline, retry, rate limiting and a circuit breaker.
func WithOpenAIEncoder(cfg OpenAIConfig) Option {
	return func(c *engineConfig) {
		c.buildEncoder = func(logger *zap.Logger) (domain.Encoder, error) {
			return openai.NewEncoder(&openai.Config{
				APIKey:            cfg.APIKey,
				BaseURL:           cfg.BaseURL,
				Model:             cfg.Model,
				Dimensions:        cfg.Dimensions,
				Timeout:           cfg.Timeout,
				RequestsPerMinute: cfg.RequestsPerMinute,
				Burst:             cfg.Burst,
				DisableBreaker:    cfg.DisableBreaker,
				Logger:            logger,
			}), nil
		}
	}
}

// WithGeminiEncoder builds the Gemini embedding provider. ctx bounds
// provider client construction during New.
func WithGeminiEncoder(ctx context.Context, cfg GeminiConfig) Option {
	return func(c *engineConfig) {
		c.buildEncoder = func(logger *zap.Logger) (domain.Encoder, error) {
			return gemini.NewEncoder(ctx, &gemini.Config{
				APIKey:     cfg.APIKey,
				Model:      cfg.Model,
				Dimensions: cfg.Dimensions,
				Timeout:    cfg.Timeout,
				Logger:     logger,
			})
		}
	}
}

// WithMetrics registers the engine's Prometheus collectors (encoder,
// caches, matching pipeline) on the given registerer. Pass nil to disable
// (the default). The collectors are process-wide; engines sharing a
// registry share them.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(c *engineConfig) {
		c.registerer = reg
	}
}

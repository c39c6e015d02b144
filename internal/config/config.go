// Package config loads the engine configuration from YAML, expands
// environment references, fills defaults and validates everything before a
// single component is built from it.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hirelens/matchdex/internal/domain"
	"github.com/hirelens/matchdex/internal/domain/weights"
	"github.com/hirelens/matchdex/internal/ranking"
	"github.com/hirelens/matchdex/internal/skills"
)

// Config holds the matchdex engine configuration.
type Config struct {
	Weights WeightsConfig `yaml:"weights"`
	Matcher MatcherConfig `yaml:"matcher"`
	Tiers   ranking.Tiers `yaml:"tiers"`
	Cache   CacheConfig   `yaml:"cache"`
	Pool    PoolConfig    `yaml:"pool"`
	Index   IndexConfig   `yaml:"index"`
	Encoder EncoderConfig `yaml:"encoder"`
	Store   StoreConfig   `yaml:"store"`
	Logging LoggingConfig `yaml:"logging"`
}

// WeightsConfig selects the active scoring preset.
type WeightsConfig struct {
	// Active names the preset to score with (default: "default").
	Active string `yaml:"active"`
	// Presets merge over the built-in table; a preset here shadows a
	// built-in with the same name.
	Presets map[string]weights.Weights `yaml:"presets"`
	// File points at a standalone preset file reloaded live by the watcher.
	File string `yaml:"file"`
}

// MatcherConfig holds the skill cascade thresholds.
type MatcherConfig struct {
	FuzzyThreshold    float64           `yaml:"fuzzy_threshold"`    // minimum fuzzy ratio (default: 85)
	SemanticThreshold float64           `yaml:"semantic_threshold"` // minimum cosine (default: 0.70)
	Aliases           map[string]string `yaml:"aliases"`            // extra variant -> canonical pairs
}

// CacheConfig holds cache capacities and TTLs.
type CacheConfig struct {
	EmbeddingCapacity int `yaml:"embedding_capacity"`
	EmbeddingTTLSec   int `yaml:"embedding_ttl_sec"`
	ResultCapacity    int `yaml:"result_capacity"`
	ResultTTLSec      int `yaml:"result_ttl_sec"`
}

// PoolConfig holds scoring worker pool settings.
type PoolConfig struct {
	Workers int `yaml:"workers"`
}

// IndexConfig holds candidate index settings.
type IndexConfig struct {
	Mode          string `yaml:"mode"` // exact, approx (default: exact)
	NProbe        int    `yaml:"nprobe"`
	ApproxMinSize int    `yaml:"approx_min_size"`
}

// EncoderConfig holds embedding provider settings. An empty provider runs
// the engine lexical-only.
type EncoderConfig struct {
	Provider          string `yaml:"provider"` // openai, gemini
	Model             string `yaml:"model"`
	Dimensions        int    `yaml:"dimensions"`
	BaseURL           string `yaml:"base_url"`
	APIKey            string `yaml:"api_key"`
	TimeoutSec        int    `yaml:"timeout_sec"`
	RequestsPerMinute int    `yaml:"requests_per_minute"` // 0 disables the limiter
	Burst             int    `yaml:"burst"`
	DisableBreaker    bool   `yaml:"disable_breaker"`
}

// StoreConfig holds cache store backend settings.
type StoreConfig struct {
	Driver   string   `yaml:"driver"` // memory, redis (default: memory)
	Addrs    []string `yaml:"addrs"`
	Username string   `yaml:"username"`
	Password string   `yaml:"password"`
	DB       int      `yaml:"db"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// Load reads a configuration file, expands ${VAR} references, applies
// defaults and validates.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}

	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Default returns the configuration used when no file is provided.
func Default() Config {
	var cfg Config
	cfg.ApplyDefaults()
	return cfg
}

// LoadWeightsFile reads a standalone weights preset: one yaml document with
// the version and the four factor weights. Used for the watched preset file.
func LoadWeightsFile(path string) (weights.Weights, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return weights.Weights{}, fmt.Errorf("read weights %s: %w", path, err)
	}

	var w weights.Weights
	if err := yaml.Unmarshal(expandEnvVars(data), &w); err != nil {
		return weights.Weights{}, fmt.Errorf("parse weights %s: %w", path, err)
	}
	if err := w.Validate(); err != nil {
		return weights.Weights{}, err
	}
	return w, nil
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.Weights.Active == "" {
		c.Weights.Active = "default"
	}
	if c.Matcher.FuzzyThreshold <= 0 {
		c.Matcher.FuzzyThreshold = skills.DefaultConfig().FuzzyThreshold
	}
	if c.Matcher.SemanticThreshold <= 0 {
		c.Matcher.SemanticThreshold = skills.DefaultConfig().SemanticThreshold
	}
	if c.Tiers == (ranking.Tiers{}) {
		c.Tiers = ranking.DefaultTiers()
	}
	if c.Cache.EmbeddingCapacity <= 0 {
		c.Cache.EmbeddingCapacity = 10000
	}
	if c.Cache.EmbeddingTTLSec <= 0 {
		c.Cache.EmbeddingTTLSec = 86400
	}
	if c.Cache.ResultCapacity <= 0 {
		c.Cache.ResultCapacity = 1000
	}
	if c.Cache.ResultTTLSec <= 0 {
		c.Cache.ResultTTLSec = 3600
	}
	if c.Pool.Workers <= 0 {
		c.Pool.Workers = 8
	}
	if c.Index.Mode == "" {
		c.Index.Mode = "exact"
	}
	if c.Store.Driver == "" {
		c.Store.Driver = "memory"
	}
}

// Validate checks the configuration for correctness. Call after
// ApplyDefaults; zero values the defaults would have filled are rejected.
func (c *Config) Validate() error {
	if _, err := c.ActiveWeights(); err != nil {
		return err
	}
	for name, w := range c.Weights.Presets {
		if err := w.Validate(); err != nil {
			return fmt.Errorf("weights preset %q: %w", name, err)
		}
	}
	if c.Matcher.FuzzyThreshold <= 0 || c.Matcher.FuzzyThreshold > 100 {
		return fmt.Errorf("matcher.fuzzy_threshold %v outside (0,100]: %w",
			c.Matcher.FuzzyThreshold, domain.ErrConfiguration)
	}
	if c.Matcher.SemanticThreshold <= 0 || c.Matcher.SemanticThreshold > 1 {
		return fmt.Errorf("matcher.semantic_threshold %v outside (0,1]: %w",
			c.Matcher.SemanticThreshold, domain.ErrConfiguration)
	}
	if err := c.Tiers.Validate(); err != nil {
		return fmt.Errorf("tiers: %w", err)
	}
	if c.Cache.EmbeddingCapacity < 1 || c.Cache.ResultCapacity < 1 {
		return fmt.Errorf("cache capacities %d/%d must be positive: %w",
			c.Cache.EmbeddingCapacity, c.Cache.ResultCapacity, domain.ErrConfiguration)
	}
	if c.Cache.EmbeddingTTLSec < 0 || c.Cache.ResultTTLSec < 0 {
		return fmt.Errorf("cache TTLs %d/%d must not be negative: %w",
			c.Cache.EmbeddingTTLSec, c.Cache.ResultTTLSec, domain.ErrConfiguration)
	}
	if c.Pool.Workers < 1 {
		return fmt.Errorf("pool.workers %d must be positive: %w", c.Pool.Workers, domain.ErrConfiguration)
	}
	switch c.Index.Mode {
	case "exact", "approx":
	default:
		return fmt.Errorf("index.mode must be \"exact\" or \"approx\", got %q: %w",
			c.Index.Mode, domain.ErrConfiguration)
	}
	if c.Index.NProbe < 0 || c.Index.ApproxMinSize < 0 {
		return fmt.Errorf("index.nprobe %d and index.approx_min_size %d must not be negative: %w",
			c.Index.NProbe, c.Index.ApproxMinSize, domain.ErrConfiguration)
	}
	switch c.Encoder.Provider {
	case "", "openai", "gemini":
	default:
		return fmt.Errorf("encoder.provider must be \"openai\" or \"gemini\", got %q: %w",
			c.Encoder.Provider, domain.ErrConfiguration)
	}
	if c.Encoder.Dimensions < 0 || c.Encoder.TimeoutSec < 0 ||
		c.Encoder.RequestsPerMinute < 0 || c.Encoder.Burst < 0 {
		return fmt.Errorf("encoder settings must not be negative: %w", domain.ErrConfiguration)
	}
	switch c.Store.Driver {
	case "memory":
	case "redis":
		if len(c.Store.Addrs) == 0 {
			return fmt.Errorf("store.addrs is required for the redis driver: %w", domain.ErrConfiguration)
		}
	default:
		return fmt.Errorf("store.driver must be \"memory\" or \"redis\", got %q: %w",
			c.Store.Driver, domain.ErrConfiguration)
	}
	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level %q unknown: %w", c.Logging.Level, domain.ErrConfiguration)
	}
	return nil
}

// Presets returns the built-in preset table with the config overrides
// merged in.
func (c *Config) Presets() map[string]weights.Weights {
	table := map[string]weights.Weights{
		"default":      weights.Default(),
		"no-education": weights.NoEducation(),
	}
	for name, w := range c.Weights.Presets {
		table[name] = w
	}
	return table
}

// ActiveWeights resolves the preset named by weights.active.
func (c *Config) ActiveWeights() (weights.Weights, error) {
	name := c.Weights.Active
	if name == "" {
		name = "default"
	}
	w, ok := c.Presets()[name]
	if !ok {
		return weights.Weights{}, fmt.Errorf("weights preset %q not defined: %w", name, domain.ErrConfiguration)
	}
	return w, nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}

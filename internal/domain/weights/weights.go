// Package weights defines the versioned factor-weight configuration used to
// compose the final match score. Weight sets are explicit values: the engine
// never mutates a default in place, so two runs against the same version are
// reproducible.
package weights

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math"

	"github.com/hirelens/matchdex/internal/domain"
)

// Epsilon is the tolerance for the sum-to-one weight invariant.
const Epsilon = 1e-6

// Weights is one versioned weight preset. All four factors must be in [0,1]
// and sum to 1 within Epsilon.
type Weights struct {
	Version    string  `yaml:"version" json:"version"`
	Skill      float64 `yaml:"skill" json:"skill"`
	Experience float64 `yaml:"experience" json:"experience"`
	Education  float64 `yaml:"education" json:"education"`
	Semantic   float64 `yaml:"semantic" json:"semantic"`
}

// Default returns the canonical preset. The source material carried two
// conflicting presets (with and without an education term); the
// education-inclusive one is canonical, the other ships as NoEducation.
func Default() Weights {
	return Weights{
		Version:    "v1",
		Skill:      0.40,
		Experience: 0.30,
		Education:  0.10,
		Semantic:   0.20,
	}
}

// NoEducation returns the alternative preset without an education term,
// for pools where degree data is unreliable or absent.
func NoEducation() Weights {
	return Weights{
		Version:    "v1-noedu",
		Skill:      0.45,
		Experience: 0.30,
		Education:  0,
		Semantic:   0.25,
	}
}

// Validate checks the sum-to-one invariant and per-factor ranges.
func (w Weights) Validate() error {
	if w.Version == "" {
		return fmt.Errorf("weights version is required: %w", domain.ErrConfiguration)
	}
	for _, f := range []struct {
		name string
		val  float64
	}{
		{"skill", w.Skill},
		{"experience", w.Experience},
		{"education", w.Education},
		{"semantic", w.Semantic},
	} {
		if math.IsNaN(f.val) || f.val < 0 || f.val > 1 {
			return fmt.Errorf("weight %s=%.4f outside [0,1]: %w", f.name, f.val, domain.ErrConfiguration)
		}
	}
	if sum := w.Skill + w.Experience + w.Education + w.Semantic; math.Abs(sum-1.0) > Epsilon {
		return fmt.Errorf("weights sum to %.6f, want 1.0±%g: %w", sum, Epsilon, domain.ErrConfiguration)
	}
	return nil
}

// Fingerprint returns a stable digest of the preset, version included.
func (w Weights) Fingerprint() string {
	h := sha256.New()
	h.Write([]byte(w.Version))
	var buf [8]byte
	for _, f := range []float64{w.Skill, w.Experience, w.Education, w.Semantic} {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(f))
		h.Write(buf[:])
	}
	return hex.EncodeToString(h.Sum(nil))
}

// WithoutSemantic redistributes the semantic weight across the remaining
// factors, keeping their relative proportions. Used for degraded scoring when
// the semantic factor cannot be computed. The returned version is tagged so
// degraded results are distinguishable from regular ones.
func (w Weights) WithoutSemantic() Weights {
	rest := w.Skill + w.Experience + w.Education
	if rest <= 0 {
		// Semantic-only preset: fall back to skill-only rather than divide by zero.
		return Weights{Version: w.Version + "+degraded", Skill: 1}
	}
	scale := 1.0 / rest
	return Weights{
		Version:    w.Version + "+degraded",
		Skill:      w.Skill * scale,
		Experience: w.Experience * scale,
		Education:  w.Education * scale,
		Semantic:   0,
	}
}

// Package ranking orders scored candidates, buckets them into quality tiers
// and applies result filters.
package ranking

import (
	"fmt"

	"github.com/hirelens/matchdex/internal/domain"
	"github.com/hirelens/matchdex/internal/domain/match"
)

// Tiers holds the lower score bound of each quality tier. D covers
// everything below C, so the four bounds partition [0,100] exhaustively.
type Tiers struct {
	S float64 `yaml:"s" json:"s"`
	A float64 `yaml:"a" json:"a"`
	B float64 `yaml:"b" json:"b"`
	C float64 `yaml:"c" json:"c"`
}

// DefaultTiers returns the standard partition: S[85,100], A[75,85),
// B[65,75), C[50,65), D[0,50).
func DefaultTiers() Tiers {
	return Tiers{S: 85, A: 75, B: 65, C: 50}
}

// Validate checks that the bounds form a strictly descending partition
// within (0,100].
func (t Tiers) Validate() error {
	if !(t.S > t.A && t.A > t.B && t.B > t.C && t.C > 0) {
		return fmt.Errorf("tier bounds S=%v A=%v B=%v C=%v must be strictly descending and positive: %w",
			t.S, t.A, t.B, t.C, domain.ErrConfiguration)
	}
	if t.S > 100 {
		return fmt.Errorf("tier bound S=%v above 100: %w", t.S, domain.ErrConfiguration)
	}
	return nil
}

// For buckets a final score. Bounds are inclusive at the lower edge.
func (t Tiers) For(score float64) match.Tier {
	switch {
	case score >= t.S:
		return match.TierS
	case score >= t.A:
		return match.TierA
	case score >= t.B:
		return match.TierB
	case score >= t.C:
		return match.TierC
	default:
		return match.TierD
	}
}

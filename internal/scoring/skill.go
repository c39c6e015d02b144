// Package scoring holds the factor scorers and the weighted composer. Every
// scorer is a pure function over validated inputs returning a value in
// [0,100]; missing optional data maps to documented neutral defaults, never
// to NaN.
package scoring

import (
	"github.com/hirelens/matchdex/internal/domain"
	"github.com/hirelens/matchdex/internal/domain/match"
)

// Bonus skill scoring constants.
const (
	// BonusPerSkill is added per extra candidate skill relevant to the job.
	BonusPerSkill = 2.5
	// BonusCap limits the total bonus.
	BonusCap = 10.0
	// BonusRelevanceMin is the minimum cosine similarity between an extra
	// skill and the job embedding for the skill to count as relevant.
	BonusRelevanceMin = 0.60
)

// SkillScore computes the skill factor: coverage of the required skills
// weighted by importance, plus a capped bonus for relevant extras.
//
// Base = 100 × Σ(strength×weight) / Σ(weight) with must-have weight 1.0 and
// nice-to-have weight 0.5; an unmatched requirement contributes strength 0.
// An empty requirement list scores 100. relevantBonus is the number of bonus
// skills found semantically relevant to the job; callers without semantic
// context pass 0.
func SkillScore(required []domain.RequiredSkill, report match.SkillReport, relevantBonus int) float64 {
	if len(required) == 0 {
		return 100
	}

	strengths := make(map[string]float64, len(report.Matched()))
	for _, sm := range report.Matched() {
		strengths[sm.Required()] = sm.Strength()
	}

	var num, den float64
	for _, req := range required {
		w := req.Weight()
		den += w
		num += strengths[req.Name] * w
	}
	if den == 0 {
		return 100
	}

	base := 100 * num / den
	bonus := BonusPerSkill * float64(relevantBonus)
	if bonus > BonusCap {
		bonus = BonusCap
	}
	return Clamp(base+bonus, 0, 100)
}

// Clamp bounds v to [lo,hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

package scoring

import (
	"math"

	"github.com/hirelens/matchdex/internal/domain/match"
	"github.com/hirelens/matchdex/internal/domain/weights"
)

// FactorScores carries the four raw factor scores into composition.
type FactorScores struct {
	Skill      float64
	Experience float64
	Education  float64
	Semantic   float64
}

// Compose folds factor scores into an unranked match.Result. Contribution
// per factor = score × weight; the final score is their sum, clamped to
// [0,100].
//
// A non-empty degradedReason marks the semantic factor as unavailable: its
// breakdown row is kept with score and weight 0 and the remaining weights
// are renormalized to sum 1, so degraded candidates stay comparable with
// each other on the surviving factors.
func Compose(candidateID, jobID string, factors FactorScores, w weights.Weights, skills match.SkillReport, degradedReason string) (match.Result, error) {
	if err := w.Validate(); err != nil {
		return match.Result{}, err
	}

	effective := w
	semantic := sanitize(factors.Semantic)
	if degradedReason != "" {
		effective = w.WithoutSemantic()
		semantic = 0
	}

	rows := []match.Breakdown{
		match.NewBreakdown(match.FactorSkill, sanitize(factors.Skill), effective.Skill),
		match.NewBreakdown(match.FactorExperience, sanitize(factors.Experience), effective.Experience),
		match.NewBreakdown(match.FactorEducation, sanitize(factors.Education), effective.Education),
		match.NewBreakdown(match.FactorSemantic, semantic, effective.Semantic),
	}

	var final float64
	for _, row := range rows {
		final += row.Contribution()
	}
	return match.New(candidateID, jobID, Clamp(final, 0, 100), rows, skills, degradedReason), nil
}

// sanitize bounds a factor score to [0,100] and flattens NaN to 0.
func sanitize(score float64) float64 {
	if math.IsNaN(score) {
		return 0
	}
	return Clamp(score, 0, 100)
}

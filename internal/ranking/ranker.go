package ranking

import (
	"sort"

	"github.com/hirelens/matchdex/internal/domain/match"
)

// Ranker orders results and attaches tier and percentile.
type Ranker struct {
	tiers Tiers
}

// New creates a ranker over a validated tier partition.
func New(tiers Tiers) (*Ranker, error) {
	if err := tiers.Validate(); err != nil {
		return nil, err
	}
	return &Ranker{tiers: tiers}, nil
}

// Rank sorts by final score descending with ties broken by ascending
// candidate id, then annotates each result with its tier and percentile.
// Percentile = share of candidates scoring strictly lower, so equal scores
// share a percentile. The input slice is not modified.
func (r *Ranker) Rank(results []match.Result) []match.Result {
	ranked := make([]match.Result, len(results))
	copy(ranked, results)

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].FinalScore() != ranked[j].FinalScore() {
			return ranked[i].FinalScore() > ranked[j].FinalScore()
		}
		return ranked[i].CandidateID() < ranked[j].CandidateID()
	})

	total := len(ranked)
	if total == 0 {
		return ranked
	}

	scores := make([]float64, total)
	for i, res := range ranked {
		scores[i] = res.FinalScore()
	}
	sort.Float64s(scores)

	for i, res := range ranked {
		lower := sort.SearchFloat64s(scores, res.FinalScore())
		percentile := float64(lower) / float64(total) * 100
		ranked[i] = res.WithRank(r.tiers.For(res.FinalScore()), percentile)
	}
	return ranked
}

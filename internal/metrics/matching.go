package metrics

import "github.com/prometheus/client_golang/prometheus"

// Matching pipeline Prometheus metrics.
var (
	MatchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "matchdex",
			Name:      "match_requests_total",
			Help:      "Total match requests by outcome",
		},
		[]string{"status"}, // "ok" / "degraded" / "error"
	)

	MatchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "matchdex",
			Name:      "match_duration_seconds",
			Help:      "End-to-end match request duration in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"source"}, // "computed" / "cache"
	)

	CandidatesScoredTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "matchdex",
			Name:      "candidates_scored_total",
			Help:      "Total candidates scored across all match requests",
		},
	)

	CandidateFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "matchdex",
			Name:      "candidate_failures_total",
			Help:      "Per-candidate scoring failures by pipeline stage",
		},
		[]string{"stage"},
	)

	SkillMatchTierTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "matchdex",
			Name:      "skill_match_tier_total",
			Help:      "Skill matches resolved per cascade tier",
		},
		[]string{"tier"}, // "exact" / "alias" / "fuzzy" / "semantic"
	)

	MatchScoreDistribution = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "matchdex",
			Name:      "match_score",
			Help:      "Distribution of final match scores",
			Buckets:   []float64{10, 20, 30, 40, 50, 65, 75, 85, 95, 100},
		},
	)

	ResultCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "matchdex",
			Name:      "result_cache_total",
			Help:      "Match result cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)

	IndexedCandidates = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "matchdex",
			Name:      "indexed_candidates",
			Help:      "Candidates currently held in the vector index",
		},
	)

	WeightUpdatesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "matchdex",
			Name:      "weight_updates_total",
			Help:      "Scoring weight preset swaps, manual and watcher-driven",
		},
	)
)

func matchingCollectors() []prometheus.Collector {
	return []prometheus.Collector{
		MatchRequestsTotal,
		MatchDuration,
		CandidatesScoredTotal,
		CandidateFailuresTotal,
		SkillMatchTierTotal,
		MatchScoreDistribution,
		ResultCacheTotal,
		IndexedCandidates,
		WeightUpdatesTotal,
	}
}

// Package match runs the scoring pipeline: validate, probe the report
// cache, shortlist, score the pool on a worker pool, rank, filter, store.
// Scoring distinct candidates shares no mutable state, so the pool is
// embarrassingly parallel; ranking is the synchronization barrier.
package match

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/hirelens/matchdex/internal/domain"
	dommatch "github.com/hirelens/matchdex/internal/domain/match"
	"github.com/hirelens/matchdex/internal/domain/weights"
	"github.com/hirelens/matchdex/internal/metrics"
	"github.com/hirelens/matchdex/internal/ranking"
	"github.com/hirelens/matchdex/internal/scoring"
)

// DefaultWorkers is the scoring pool size used when none is configured.
const DefaultWorkers = 8

// Degraded-scoring reasons. Fixed strings keep reports reproducible.
const (
	reasonCandidateEmbedding = "candidate embedding missing"
	reasonJobEmbedding       = "job embedding missing"
	reasonEncoderTimeout     = "encoder timeout"
	reasonEncoderError       = "encoder error"
)

// Options adjusts one Match call.
type Options struct {
	// Weights is the preset to score under.
	Weights weights.Weights
	// Filter narrows the ranked results; nil keeps everything.
	Filter *ranking.Filter
	// ShortlistK limits scoring to the K nearest candidates by embedding
	// when positive and smaller than the pool.
	ShortlistK int
	// SkipCache bypasses the report cache for this call.
	SkipCache bool
}

// Service scores candidate pools against jobs.
type Service struct {
	matcher SkillMatcher
	ranker  *ranking.Ranker
	idx     CandidateIndex // nil disables shortlisting
	cache   ReportCache    // nil disables report caching
	enc     domain.Encoder // nil disables bonus-skill relevance
	workers int
}

// New creates a match service. idx, cache and enc may be nil to disable
// shortlisting, report caching and bonus-skill relevance respectively.
func New(matcher SkillMatcher, ranker *ranking.Ranker, idx CandidateIndex, cache ReportCache, enc domain.Encoder) *Service {
	return &Service{
		matcher: matcher,
		ranker:  ranker,
		idx:     idx,
		cache:   cache,
		enc:     enc,
		workers: DefaultWorkers,
	}
}

// WithWorkers configures the scoring pool size.
func (s *Service) WithWorkers(n int) *Service {
	if n > 0 {
		s.workers = n
	}
	return s
}

// Match scores every candidate in pool against job and returns the ranked
// report. Malformed job, weight or filter configuration aborts the call;
// per-candidate failures are isolated into the report. The report is
// deterministic for identical inputs regardless of worker count.
func (s *Service) Match(ctx context.Context, job *domain.JobRequirement, pool []domain.CandidateProfile, opts Options) (dommatch.Report, error) {
	start := time.Now()

	if err := job.Validate(); err != nil {
		return s.abort(job.ID, domain.StageValidate, err)
	}
	if err := opts.Weights.Validate(); err != nil {
		return s.abort(job.ID, domain.StageValidate, err)
	}
	if err := opts.Filter.Validate(); err != nil {
		return s.abort(job.ID, domain.StageValidate, err)
	}

	var key string
	if s.cache != nil && !opts.SkipCache {
		key = s.cache.Key(job.Fingerprint(), domain.PoolFingerprint(pool), opts.Weights.Fingerprint())
		cached, ok, err := s.cache.Get(ctx, key)
		if err != nil {
			return s.abort(job.ID, domain.StageCache, err)
		}
		if ok {
			metrics.MatchRequestsTotal.WithLabelValues(statusOf(cached)).Inc()
			metrics.MatchDuration.WithLabelValues("cache").Observe(time.Since(start).Seconds())
			return applyFilter(cached, pool, opts.Filter), nil
		}
	}

	scored := pool
	var failures []dommatch.Failure
	if s.idx != nil && opts.ShortlistK > 0 && opts.ShortlistK < len(pool) && len(job.Embedding) > 0 {
		var err error
		scored, failures, err = s.shortlist(job, pool, opts.ShortlistK)
		if err != nil {
			return s.abort(job.ID, domain.StageShortlist, err)
		}
	}

	outcomes := s.scorePool(ctx, job, scored, opts.Weights)
	if err := ctx.Err(); err != nil {
		metrics.MatchRequestsTotal.WithLabelValues("error").Inc()
		return dommatch.Report{}, err
	}

	results := make([]dommatch.Result, 0, len(outcomes))
	for _, o := range outcomes {
		switch {
		case o.scored:
			results = append(results, o.result)
			metrics.CandidatesScoredTotal.Inc()
			metrics.MatchScoreDistribution.Observe(o.result.FinalScore())
		case o.failed:
			failures = append(failures, o.failure)
		}
	}
	for _, f := range failures {
		metrics.CandidateFailuresTotal.WithLabelValues(string(f.Stage())).Inc()
	}

	report := dommatch.NewReport(job.ID, s.ranker.Rank(results), failures, key, false)

	if s.cache != nil && !opts.SkipCache {
		s.cache.Put(ctx, key, report)
	}

	metrics.MatchRequestsTotal.WithLabelValues(statusOf(report)).Inc()
	metrics.MatchDuration.WithLabelValues("computed").Observe(time.Since(start).Seconds())
	return applyFilter(report, pool, opts.Filter), nil
}

func (s *Service) abort(jobID string, stage domain.Stage, err error) (dommatch.Report, error) {
	metrics.MatchRequestsTotal.WithLabelValues("error").Inc()
	return dommatch.Report{}, domain.NewStageError("", jobID, stage, err)
}

func statusOf(report dommatch.Report) string {
	if report.DegradedCount() > 0 {
		return "degraded"
	}
	return "ok"
}

// shortlist upserts the pool's embeddings into the index and keeps the k
// nearest candidates. Candidates without an embedding bypass the shortlist:
// they cannot be indexed, but they can still be scored on the degraded path.
func (s *Service) shortlist(job *domain.JobRequirement, pool []domain.CandidateProfile, k int) ([]domain.CandidateProfile, []dommatch.Failure, error) {
	var failures []dommatch.Failure
	unindexable := make(map[string]bool)
	for i := range pool {
		c := &pool[i]
		if len(c.Embedding) == 0 {
			continue
		}
		if err := s.idx.Add(c.ID, c.Embedding); err != nil {
			failures = append(failures, dommatch.NewFailure(c.ID, domain.StageShortlist, err))
			unindexable[c.ID] = true
		}
	}
	metrics.IndexedCandidates.Set(float64(s.idx.Len()))

	hits, err := s.idx.Search(job.Embedding, k)
	if err != nil {
		return nil, nil, err
	}
	selected := make(map[string]bool, len(hits))
	for _, h := range hits {
		selected[h.ID] = true
	}

	subset := make([]domain.CandidateProfile, 0, k)
	for i := range pool {
		c := &pool[i]
		if unindexable[c.ID] {
			continue
		}
		if selected[c.ID] || len(c.Embedding) == 0 {
			subset = append(subset, *c)
		}
	}
	return subset, failures, nil
}

// outcome is one candidate's pipeline verdict. Neither flag set means the
// candidate was skipped by cancellation.
type outcome struct {
	result  dommatch.Result
	failure dommatch.Failure
	scored  bool
	failed  bool
}

// scorePool fans the pool out to a bounded worker pool. Each worker writes
// its outcome to the candidate's own slot, so assembly order is input order
// whatever the interleaving.
func (s *Service) scorePool(ctx context.Context, job *domain.JobRequirement, pool []domain.CandidateProfile, w weights.Weights) []outcome {
	outcomes := make([]outcome, len(pool))

	workers := s.workers
	if workers > len(pool) {
		workers = len(pool)
	}
	if workers < 1 {
		workers = 1
	}

	jobs := make(chan int, workers*2)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				if ctx.Err() != nil {
					continue
				}
				outcomes[idx] = s.scoreCandidate(ctx, job, &pool[idx], w)
			}
		}()
	}

feed:
	for i := range pool {
		select {
		case <-ctx.Done():
			break feed
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	return outcomes
}

// scoreCandidate runs one candidate through validation, skill matching,
// factor scoring and composition. Encoder failures never fail the
// candidate: scoring proceeds on the non-semantic factors with the result
// flagged degraded.
func (s *Service) scoreCandidate(ctx context.Context, job *domain.JobRequirement, cand *domain.CandidateProfile, w weights.Weights) outcome {
	if err := cand.Validate(); err != nil {
		return failed(cand.ID, domain.StageValidate, err)
	}

	var degradedReason string
	switch {
	case len(cand.Embedding) == 0:
		degradedReason = reasonCandidateEmbedding
	case len(job.Embedding) == 0:
		degradedReason = reasonJobEmbedding
	}

	skillReport, err := s.matcher.MatchSkills(ctx, job.Skills, cand.Skills, true)
	if err != nil {
		if ctx.Err() != nil {
			return failed(cand.ID, domain.StageSkills, err)
		}
		// The cascade already resolved what it could without the semantic
		// tier; the same encoder cannot serve the semantic factor either.
		if degradedReason == "" {
			degradedReason = encoderReason(err)
		}
	}

	relevantBonus := 0
	if degradedReason == "" && s.enc != nil && len(skillReport.Bonus()) > 0 {
		relevantBonus, err = scoring.CountRelevantBonus(ctx, s.enc, skillReport.Bonus(), job.Embedding)
		if err != nil {
			switch {
			case ctx.Err() != nil:
				return failed(cand.ID, domain.StageScore, err)
			case errors.Is(err, domain.ErrEncoder) || errors.Is(err, domain.ErrEncoderTimeout):
				degradedReason = encoderReason(err)
				relevantBonus = 0
			default:
				return failed(cand.ID, domain.StageScore, err)
			}
		}
	}

	factors := scoring.FactorScores{
		Skill:      scoring.SkillScore(job.Skills, skillReport, relevantBonus),
		Experience: scoring.ExperienceScore(job, cand),
		Education:  scoring.EducationScore(job, cand),
	}
	if degradedReason == "" {
		factors.Semantic, err = scoring.SemanticScore(cand.Embedding, job.Embedding)
		if err != nil {
			return failed(cand.ID, domain.StageScore, err)
		}
	}

	res, err := scoring.Compose(cand.ID, job.ID, factors, w, skillReport, degradedReason)
	if err != nil {
		return failed(cand.ID, domain.StageScore, err)
	}
	return outcome{result: res, scored: true}
}

func failed(candidateID string, stage domain.Stage, err error) outcome {
	return outcome{failure: dommatch.NewFailure(candidateID, stage, err), failed: true}
}

func encoderReason(err error) string {
	if errors.Is(err, domain.ErrEncoderTimeout) {
		return reasonEncoderTimeout
	}
	return reasonEncoderError
}

// applyFilter narrows the ranked view. Tier and percentile stay as computed
// over the full pool; the cache holds the unfiltered report, so the same
// cached entry serves differently filtered calls.
func applyFilter(report dommatch.Report, pool []domain.CandidateProfile, f *ranking.Filter) dommatch.Report {
	if f == nil {
		return report
	}
	byID := make(map[string]*domain.CandidateProfile, len(pool))
	for i := range pool {
		byID[pool[i].ID] = &pool[i]
	}

	kept := make([]dommatch.Result, 0, len(report.Results()))
	for _, res := range report.Results() {
		cand, ok := byID[res.CandidateID()]
		if !ok {
			continue
		}
		if f.Matches(res, cand) {
			kept = append(kept, res)
		}
	}
	return dommatch.NewReport(report.JobID(), kept, report.Failures(), report.Fingerprint(), report.CacheHit())
}

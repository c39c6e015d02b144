package match

import "github.com/hirelens/matchdex/internal/domain"

// Failure is one candidate the pipeline could not score.
type Failure struct {
	candidateID string
	stage       domain.Stage
	err         error
}

// NewFailure creates a per-candidate failure record.
func NewFailure(candidateID string, stage domain.Stage, err error) Failure {
	return Failure{candidateID: candidateID, stage: stage, err: err}
}

// CandidateID returns the failed candidate's id.
func (f Failure) CandidateID() string { return f.candidateID }

// Stage returns the pipeline stage that failed.
func (f Failure) Stage() domain.Stage { return f.stage }

// Err returns the underlying error.
func (f Failure) Err() error { return f.err }

// Report is the outcome of matching one pool against one job: the ranked
// results plus per-candidate failures, so callers can present partial results
// with a warning instead of failing the whole batch.
type Report struct {
	jobID       string
	results     []Result
	failures    []Failure
	fingerprint string
	cacheHit    bool
}

// NewReport creates a match report.
func NewReport(jobID string, results []Result, failures []Failure, fingerprint string, cacheHit bool) Report {
	return Report{
		jobID:       jobID,
		results:     results,
		failures:    failures,
		fingerprint: fingerprint,
		cacheHit:    cacheHit,
	}
}

// JobID returns the matched job's id.
func (r Report) JobID() string { return r.jobID }

// Results returns the ranked results, best first. Read-only.
func (r Report) Results() []Result { return r.results }

// Failures returns candidates that could not be scored. Read-only.
func (r Report) Failures() []Failure { return r.failures }

// Fingerprint returns the (job, pool, weights) cache key digest.
func (r Report) Fingerprint() string { return r.fingerprint }

// CacheHit reports whether the ranked list was served from the result cache.
func (r Report) CacheHit() bool { return r.cacheHit }

// DegradedCount returns how many results were scored without the semantic factor.
func (r Report) DegradedCount() int {
	n := 0
	for _, res := range r.results {
		if res.Degraded() {
			n++
		}
	}
	return n
}

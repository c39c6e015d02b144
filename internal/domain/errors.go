package domain

import (
	"errors"
	"fmt"
)

// KeyPrefix namespaces every cache/store key the engine writes.
const KeyPrefix = "matchdex:"

var (
	// ErrValidation signals a malformed candidate or job record.
	ErrValidation = errors.New("validation failed")
	// ErrConfiguration signals an invalid engine configuration (weights, tiers, options).
	ErrConfiguration = errors.New("invalid configuration")
	// ErrEncoder signals a failed text encoding call.
	ErrEncoder = errors.New("encoder error")
	// ErrEncoderTimeout signals an encoder call that missed its deadline.
	ErrEncoderTimeout = errors.New("encoder timeout")
	// ErrInvalidDimension signals an embedding length mismatch.
	ErrInvalidDimension = errors.New("invalid vector dimension")
	// ErrCacheCorruption signals a broken cache invariant. Always fatal.
	ErrCacheCorruption = errors.New("cache corruption")
	// ErrNotFound signals a missing candidate or cache entry.
	ErrNotFound = errors.New("not found")
)

// Stage names a pipeline step for error attribution.
type Stage string

// Pipeline stages carried by StageError.
const (
	StageValidate  Stage = "validate"
	StageEncode    Stage = "encode"
	StageShortlist Stage = "shortlist"
	StageSkills    Stage = "skills"
	StageScore     Stage = "score"
	StageRank      Stage = "rank"
	StageCache     Stage = "cache"
)

// StageError attributes a failure to a candidate, a job, and a pipeline stage
// so callers can log a partial-results warning instead of a hard failure.
type StageError struct {
	CandidateID string
	JobID       string
	Stage       Stage
	Err         error
}

func (e *StageError) Error() string {
	if e.CandidateID == "" {
		return fmt.Sprintf("job %s: stage %s: %v", e.JobID, e.Stage, e.Err)
	}
	return fmt.Sprintf("candidate %s, job %s: stage %s: %v", e.CandidateID, e.JobID, e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// NewStageError wraps err with candidate/job/stage attribution.
func NewStageError(candidateID, jobID string, stage Stage, err error) error {
	return &StageError{CandidateID: candidateID, JobID: jobID, Stage: stage, Err: err}
}

package matchdex

import "github.com/hirelens/matchdex/internal/domain"

// Sentinel errors returned by the engine. Match them with errors.Is.
var (
	// ErrValidation signals a malformed candidate or job record.
	ErrValidation = domain.ErrValidation
	// ErrConfiguration signals an invalid engine configuration
	// (weights, tiers, thresholds, options).
	ErrConfiguration = domain.ErrConfiguration
	// ErrEncoder signals a failed embedding request.
	ErrEncoder = domain.ErrEncoder
	// ErrEncoderTimeout signals an embedding request that missed its deadline.
	ErrEncoderTimeout = domain.ErrEncoderTimeout
	// ErrInvalidDimension signals an embedding length mismatch.
	ErrInvalidDimension = domain.ErrInvalidDimension
	// ErrCacheCorruption signals a broken cache invariant. Always fatal.
	ErrCacheCorruption = domain.ErrCacheCorruption
	// ErrNotFound signals a missing candidate or cache entry.
	ErrNotFound = domain.ErrNotFound
)

// Stage names a pipeline step for error attribution.
type Stage = domain.Stage

// Pipeline stages carried by StageError.
const (
	StageValidate  = domain.StageValidate
	StageEncode    = domain.StageEncode
	StageShortlist = domain.StageShortlist
	StageSkills    = domain.StageSkills
	StageScore     = domain.StageScore
	StageRank      = domain.StageRank
	StageCache     = domain.StageCache
)

// StageError attributes a failure to a candidate, a job, and a pipeline
// stage. Per-candidate failures surface in Report.Failures; request-level
// aborts are returned from Match and can be unpacked with errors.As:
//
//	var se *matchdex.StageError
//	if errors.As(err, &se) {
//		log.Printf("stage %s failed for job %s", se.Stage, se.JobID)
//	}
type StageError = domain.StageError

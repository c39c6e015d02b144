package match

import (
	"context"

	"github.com/hirelens/matchdex/internal/domain"
	dommatch "github.com/hirelens/matchdex/internal/domain/match"
	"github.com/hirelens/matchdex/internal/index"
)

// SkillMatcher resolves a job's required skills against a candidate's
// skill set through the tiered cascade.
type SkillMatcher interface {
	MatchSkills(
		ctx context.Context, required []domain.RequiredSkill,
		candidate []domain.Skill, semantic bool,
	) (dommatch.SkillReport, error)
}

// CandidateIndex answers nearest-neighbor queries over candidate embeddings
// for shortlisting.
type CandidateIndex interface {
	Add(id string, vec []float32) error
	Search(query []float32, k int) ([]index.Hit, error)
	Len() int
}

// ReportCache replays ranked reports keyed by the (job, pool, weights)
// fingerprint digest.
type ReportCache interface {
	Key(jobPrint, poolPrint, weightsPrint string) string
	Get(ctx context.Context, key string) (dommatch.Report, bool, error)
	Put(ctx context.Context, key string, report dommatch.Report)
}

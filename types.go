package matchdex

import (
	"context"

	"github.com/hirelens/matchdex/internal/domain/weights"
)

// Tier is a discrete quality bucket derived from the final score.
type Tier string

// Quality tiers, best first.
const (
	TierS Tier = "S"
	TierA Tier = "A"
	TierB Tier = "B"
	TierC Tier = "C"
	TierD Tier = "D"
)

// IndexMode selects the shortlist search strategy.
type IndexMode string

// Index mode constants.
const (
	// IndexExact scans every stored vector.
	IndexExact IndexMode = "exact"
	// IndexApprox probes a k-means clustering, trading a small recall loss
	// for sub-linear scans on large pools.
	IndexApprox IndexMode = "approx"
)

// Skill cascade tiers reported in SkillMatch.Tier, strongest first.
const (
	MatchExact    = "exact"
	MatchAlias    = "alias"
	MatchFuzzy    = "fuzzy"
	MatchSemantic = "semantic"
)

// Factor names reported in FactorScore.Factor.
const (
	FactorSkill      = "skill"
	FactorExperience = "experience"
	FactorEducation  = "education"
	FactorSemantic   = "semantic"
)

// Candidate is one profile as the upstream parsing layer produces it.
// The engine never mutates a candidate.
type Candidate struct {
	ID     string           `json:"id"`
	Skills []CandidateSkill `json:"skills,omitempty"`
	// Experience entries are summed for the experience factor; entries
	// without a duration keep the total unknown.
	Experience []ExperienceEntry `json:"experience,omitempty"`
	Education  []EducationEntry  `json:"education,omitempty"`
	// Embedding is the profile text embedding. Candidates without one are
	// scored on the lexical factors only and flagged degraded.
	Embedding []float32 `json:"embedding,omitempty"`
	// Quality is the upstream parse quality in [0,100].
	Quality float64 `json:"quality,omitempty"`
}

// CandidateSkill is one extracted skill.
type CandidateSkill struct {
	Name string `json:"name"`
	// Proficiency is self-reported in [0,1]; zero means unknown.
	Proficiency float64 `json:"proficiency,omitempty"`
	// Confidence is the extraction confidence in [0,1]; zero means unknown.
	Confidence float64 `json:"confidence,omitempty"`
}

// ExperienceEntry is one employment entry.
type ExperienceEntry struct {
	Title   string `json:"title,omitempty"`
	Company string `json:"company,omitempty"`
	// Months is the entry duration. Nil means unknown, which is distinct
	// from zero.
	Months *int `json:"months,omitempty"`
}

// EducationEntry is one degree entry.
type EducationEntry struct {
	// Level is a degree level: "high_school", "associate", "bachelor",
	// "master" or "doctorate". Common synonyms ("bsc", "phd", ...) are
	// accepted; empty means none.
	Level string `json:"level"`
	Field string `json:"field,omitempty"`
}

// Job is one vacancy as the upstream layer produces it.
type Job struct {
	ID     string     `json:"id"`
	Skills []JobSkill `json:"skills,omitempty"`
	// MinYears is the minimum required experience in years; zero means no
	// requirement.
	MinYears float64 `json:"min_years,omitempty"`
	// Seniority is a career level: "intern", "junior", "mid", "senior",
	// "lead" or "principal". Empty means no requirement.
	Seniority string `json:"seniority,omitempty"`
	// Education is the minimum degree level, same names as
	// EducationEntry.Level. Empty means no requirement.
	Education string `json:"education,omitempty"`
	// Embedding is the vacancy text embedding. Without one, every result
	// for this job is scored degraded and shortlisting is skipped.
	Embedding []float32 `json:"embedding,omitempty"`
	// Weights overrides the engine preset for calls scoring this job.
	Weights *Weights `json:"weights,omitempty"`
}

// JobSkill is one required skill. Must-have skills carry full weight in the
// skill score; nice-to-have skills half weight.
type JobSkill struct {
	Name     string `json:"name"`
	MustHave bool   `json:"must_have,omitempty"`
}

// Weights is a versioned scoring preset. The four factor weights must sum
// to one. The version participates in result-cache keys, so bumping it
// retires every cached report scored under the old preset.
type Weights struct {
	Version    string  `json:"version" yaml:"version"`
	Skill      float64 `json:"skill" yaml:"skill"`
	Experience float64 `json:"experience" yaml:"experience"`
	Education  float64 `json:"education" yaml:"education"`
	Semantic   float64 `json:"semantic" yaml:"semantic"`
}

// DefaultWeights returns the standard preset: skill 0.40, experience 0.30,
// education 0.10, semantic 0.20.
func DefaultWeights() Weights {
	return fromDomainWeights(weights.Default())
}

// NoEducationWeights returns the preset for roles where degrees carry no
// signal: skill 0.45, experience 0.30, education 0, semantic 0.25.
func NoEducationWeights() Weights {
	return fromDomainWeights(weights.NoEducation())
}

// Report is the outcome of matching one candidate pool against one job.
type Report struct {
	JobID string `json:"job_id"`
	// Results are ranked best first: descending score, ties broken by
	// ascending candidate id.
	Results []MatchResult `json:"results"`
	// Failures lists candidates that could not be scored. A failed
	// candidate never fails the batch.
	Failures []Failure `json:"failures,omitempty"`
	// Fingerprint is the (job, pool, weights) digest the report is cached
	// under.
	Fingerprint string `json:"fingerprint,omitempty"`
	// CacheHit reports whether the ranked list was replayed from the
	// result cache.
	CacheHit bool `json:"cache_hit"`
}

// DegradedCount returns how many results were scored without the semantic
// factor.
func (r *Report) DegradedCount() int {
	n := 0
	for i := range r.Results {
		if r.Results[i].Degraded {
			n++
		}
	}
	return n
}

// MatchResult is one candidate's scoring outcome against one job.
type MatchResult struct {
	CandidateID string  `json:"candidate_id"`
	JobID       string  `json:"job_id"`
	Score       float64 `json:"score"`
	Tier        Tier    `json:"tier"`
	// Percentile is the share of the scored pool strictly below this
	// candidate, in [0,100).
	Percentile float64 `json:"percentile"`
	// Factors break the score down per dimension.
	Factors []FactorScore `json:"factors"`
	// MatchedSkills pairs each resolved requirement with the candidate
	// skill that satisfied it.
	MatchedSkills []SkillMatch `json:"matched_skills,omitempty"`
	// MissingSkills lists must-have requirements nothing matched.
	MissingSkills []string `json:"missing_skills,omitempty"`
	// BonusSkills lists candidate skills beyond the requirements.
	BonusSkills []string `json:"bonus_skills,omitempty"`
	// Degraded marks a score computed without the semantic factor, with
	// the remaining weights renormalized.
	Degraded       bool   `json:"degraded,omitempty"`
	DegradedReason string `json:"degraded_reason,omitempty"`
}

// FactorScore is one factor's contribution to the final score.
type FactorScore struct {
	Factor string  `json:"factor"`
	Score  float64 `json:"score"`
	Weight float64 `json:"weight"`
	// Contribution is Score times Weight.
	Contribution float64 `json:"contribution"`
}

// SkillMatch pairs one required skill with the candidate skill that
// resolved it.
type SkillMatch struct {
	Required  string `json:"required"`
	Candidate string `json:"candidate"`
	// Tier is the cascade tier that produced the match: MatchExact,
	// MatchAlias, MatchFuzzy or MatchSemantic.
	Tier string `json:"tier"`
	// Strength is the match strength in (0,1].
	Strength float64 `json:"strength"`
	MustHave bool    `json:"must_have"`
}

// Failure is one candidate the pipeline could not score.
type Failure struct {
	CandidateID string `json:"candidate_id"`
	Stage       Stage  `json:"stage"`
	Error       string `json:"error"`
}

// Hit is one shortlist result.
type Hit struct {
	CandidateID string  `json:"candidate_id"`
	Similarity  float64 `json:"similarity"`
}

// CacheStats are point-in-time counters for one cache.
type CacheStats struct {
	Hits        int64   `json:"hits"`
	Misses      int64   `json:"misses"`
	Evictions   int64   `json:"evictions"`
	Expirations int64   `json:"expirations"`
	Entries     int     `json:"entries"`
	Capacity    int     `json:"capacity"`
	HitRate     float64 `json:"hit_rate"`
}

// Stats is a point-in-time view of engine state. Cache sections read zero
// when the backing store cannot count locally (the Redis driver).
type Stats struct {
	EmbeddingCache CacheStats `json:"embedding_cache"`
	ResultCache    CacheStats `json:"result_cache"`
	IndexSize      int        `json:"index_size"`
	IndexDim       int        `json:"index_dim"`
	IndexMode      IndexMode  `json:"index_mode"`
	Workers        int        `json:"workers"`
	WeightsVersion string     `json:"weights_version"`
}

// Encoder vectorizes text through an embedding provider. Implementations
// must be safe for concurrent use and deterministic for identical input.
type Encoder interface {
	Encode(ctx context.Context, text string) (EncodeResult, error)
}

// BatchEncoder is implemented by encoders with a native multi-text
// endpoint. The engine batches semantic skill lookups through it when
// available and falls back to sequential Encode calls otherwise.
type BatchEncoder interface {
	BatchEncode(ctx context.Context, texts []string) (BatchEncodeResult, error)
}

// EncodeResult carries one embedding and its token usage.
type EncodeResult struct {
	Vector       []float32
	PromptTokens int
	TotalTokens  int
}

// BatchEncodeResult carries one embedding per input text and aggregate
// token usage.
type BatchEncodeResult struct {
	Vectors      [][]float32
	PromptTokens int
	TotalTokens  int
}

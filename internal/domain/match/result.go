// Package match defines the immutable scoring outcome values. A Result is a
// standalone value keyed by candidate id: it holds no reference back to the
// profile it was scored from, so cached results never pin session data.
package match

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

// Factor names one scoring dimension.
type Factor string

// Scoring factors.
const (
	FactorSkill      Factor = "skill"
	FactorExperience Factor = "experience"
	FactorEducation  Factor = "education"
	FactorSemantic   Factor = "semantic"
)

// Breakdown is one factor's contribution to the final score.
type Breakdown struct {
	factor       Factor
	score        float64
	weight       float64
	contribution float64
}

// NewBreakdown creates a factor breakdown row. Contribution = score × weight.
func NewBreakdown(factor Factor, score, weight float64) Breakdown {
	return Breakdown{factor: factor, score: score, weight: weight, contribution: score * weight}
}

// Factor returns the scoring dimension.
func (b Breakdown) Factor() Factor { return b.factor }

// Score returns the factor score in [0,100].
func (b Breakdown) Score() float64 { return b.score }

// Weight returns the factor weight applied.
func (b Breakdown) Weight() float64 { return b.weight }

// Contribution returns score × weight.
func (b Breakdown) Contribution() float64 { return b.contribution }

// MatchTier names the cascade tier that resolved a skill pair.
type MatchTier string

// Skill match tiers in cascade priority order.
const (
	MatchExact    MatchTier = "exact"
	MatchAlias    MatchTier = "alias"
	MatchFuzzy    MatchTier = "fuzzy"
	MatchSemantic MatchTier = "semantic"
)

// Priority returns the cascade rank of the tier. Lower is stronger.
func (t MatchTier) Priority() int {
	switch t {
	case MatchExact:
		return 0
	case MatchAlias:
		return 1
	case MatchFuzzy:
		return 2
	case MatchSemantic:
		return 3
	default:
		return 4
	}
}

// SkillMatch pairs one required skill with the candidate skill that resolved it.
type SkillMatch struct {
	required  string
	candidate string
	tier      MatchTier
	strength  float64
	mustHave  bool
}

// NewSkillMatch creates a resolved skill pair.
func NewSkillMatch(required, candidate string, tier MatchTier, strength float64, mustHave bool) SkillMatch {
	return SkillMatch{required: required, candidate: candidate, tier: tier, strength: strength, mustHave: mustHave}
}

// Required returns the job-side skill name.
func (m SkillMatch) Required() string { return m.required }

// Candidate returns the candidate-side skill name.
func (m SkillMatch) Candidate() string { return m.candidate }

// Tier returns the cascade tier that produced the match.
func (m SkillMatch) Tier() MatchTier { return m.tier }

// Strength returns the match strength in (0,1].
func (m SkillMatch) Strength() float64 { return m.strength }

// MustHave reports whether the required skill was a must-have.
func (m SkillMatch) MustHave() bool { return m.mustHave }

// SkillReport is the full skill-matching outcome for one candidate.
type SkillReport struct {
	matched []SkillMatch
	missing []string // unmatched must-have skills
	bonus   []string // candidate skills not required for the job
}

// NewSkillReport creates a skill report.
func NewSkillReport(matched []SkillMatch, missing, bonus []string) SkillReport {
	return SkillReport{matched: matched, missing: missing, bonus: bonus}
}

// Matched returns the resolved skill pairs. Read-only.
func (r SkillReport) Matched() []SkillMatch { return r.matched }

// Missing returns unmatched must-have skill names. Read-only.
func (r SkillReport) Missing() []string { return r.missing }

// Bonus returns extra candidate skills not in the requirements. Read-only.
func (r SkillReport) Bonus() []string { return r.bonus }

// Result is one candidate's scoring outcome against one job.
// Immutable once produced; WithRank returns an amended copy.
type Result struct {
	candidateID    string
	jobID          string
	finalScore     float64
	breakdown      []Breakdown
	skills         SkillReport
	tier           Tier
	percentile     float64
	degradedReason string
}

// New creates an unranked result. Tier and percentile are attached by the
// ranker via WithRank once the whole pool is scored.
func New(candidateID, jobID string, finalScore float64, breakdown []Breakdown, skills SkillReport, degradedReason string) Result {
	return Result{
		candidateID:    candidateID,
		jobID:          jobID,
		finalScore:     finalScore,
		breakdown:      breakdown,
		skills:         skills,
		degradedReason: degradedReason,
	}
}

// WithRank returns a copy carrying tier and percentile.
func (r Result) WithRank(tier Tier, percentile float64) Result {
	r.tier = tier
	r.percentile = percentile
	return r
}

// CandidateID returns the scored candidate's id.
func (r Result) CandidateID() string { return r.candidateID }

// JobID returns the job the candidate was scored against.
func (r Result) JobID() string { return r.jobID }

// FinalScore returns the weighted composite score in [0,100].
func (r Result) FinalScore() float64 { return r.finalScore }

// Breakdown returns the per-factor rows. Read-only.
func (r Result) Breakdown() []Breakdown { return r.breakdown }

// FactorScore returns one factor's score and whether the factor was present.
func (r Result) FactorScore(f Factor) (float64, bool) {
	for _, b := range r.breakdown {
		if b.factor == f {
			return b.score, true
		}
	}
	return 0, false
}

// Skills returns the skill-matching report.
func (r Result) Skills() SkillReport { return r.skills }

// Tier returns the quality bucket.
func (r Result) Tier() Tier { return r.tier }

// Percentile returns the candidate's standing in the scored pool:
// (count strictly lower) / total × 100.
func (r Result) Percentile() float64 { return r.percentile }

// Degraded reports whether the result was produced without the semantic factor.
func (r Result) Degraded() bool { return r.degradedReason != "" }

// DegradedReason returns why the result is degraded, empty when it is not.
func (r Result) DegradedReason() string { return r.degradedReason }

package resultcache

import (
	"errors"

	"github.com/hirelens/matchdex/internal/domain"
	"github.com/hirelens/matchdex/internal/domain/match"
)

// Serialized rows mirror the immutable match values field for field. Scores
// and weights survive the JSON round trip bit-identically (encoding/json
// emits the shortest float form that parses back to the same value), so a
// replayed result compares equal to the originally computed one.

type breakdownRow struct {
	Factor string  `json:"factor"`
	Score  float64 `json:"score"`
	Weight float64 `json:"weight"`
}

type skillMatchRow struct {
	Required  string  `json:"required"`
	Candidate string  `json:"candidate"`
	Tier      string  `json:"tier"`
	Strength  float64 `json:"strength"`
	MustHave  bool    `json:"must_have"`
}

// Slice fields deliberately omit omitempty: nil and empty marshal differently
// (null vs []) and both survive the round trip as-is, keeping replayed values
// deep-equal to the originals.
type resultRow struct {
	CandidateID    string          `json:"candidate_id"`
	JobID          string          `json:"job_id"`
	FinalScore     float64         `json:"final_score"`
	Breakdown      []breakdownRow  `json:"breakdown"`
	Matched        []skillMatchRow `json:"matched"`
	Missing        []string        `json:"missing"`
	Bonus          []string        `json:"bonus"`
	Tier           string          `json:"tier"`
	Percentile     float64         `json:"percentile"`
	DegradedReason string          `json:"degraded_reason,omitempty"`
}

type failureRow struct {
	CandidateID string `json:"candidate_id"`
	Stage       string `json:"stage"`
	Message     string `json:"message"`
}

type entryRow struct {
	JobID    string       `json:"job_id"`
	Results  []resultRow  `json:"results"`
	Failures []failureRow `json:"failures"`
}

func resultToRow(r match.Result) resultRow {
	skills := r.Skills()
	row := resultRow{
		CandidateID:    r.CandidateID(),
		JobID:          r.JobID(),
		FinalScore:     r.FinalScore(),
		Missing:        skills.Missing(),
		Bonus:          skills.Bonus(),
		Tier:           string(r.Tier()),
		Percentile:     r.Percentile(),
		DegradedReason: r.DegradedReason(),
	}
	if src := r.Breakdown(); src != nil {
		row.Breakdown = make([]breakdownRow, 0, len(src))
		for _, b := range src {
			row.Breakdown = append(row.Breakdown, breakdownRow{
				Factor: string(b.Factor()),
				Score:  b.Score(),
				Weight: b.Weight(),
			})
		}
	}
	if src := skills.Matched(); src != nil {
		row.Matched = make([]skillMatchRow, 0, len(src))
		for _, m := range src {
			row.Matched = append(row.Matched, skillMatchRow{
				Required:  m.Required(),
				Candidate: m.Candidate(),
				Tier:      string(m.Tier()),
				Strength:  m.Strength(),
				MustHave:  m.MustHave(),
			})
		}
	}
	return row
}

func resultFromRow(row resultRow) match.Result {
	var breakdown []match.Breakdown
	if row.Breakdown != nil {
		breakdown = make([]match.Breakdown, 0, len(row.Breakdown))
		for _, b := range row.Breakdown {
			breakdown = append(breakdown, match.NewBreakdown(match.Factor(b.Factor), b.Score, b.Weight))
		}
	}
	var matched []match.SkillMatch
	if row.Matched != nil {
		matched = make([]match.SkillMatch, 0, len(row.Matched))
		for _, m := range row.Matched {
			matched = append(matched, match.NewSkillMatch(
				m.Required, m.Candidate, match.MatchTier(m.Tier), m.Strength, m.MustHave))
		}
	}
	skills := match.NewSkillReport(matched, row.Missing, row.Bonus)

	res := match.New(row.CandidateID, row.JobID, row.FinalScore, breakdown, skills, row.DegradedReason)
	return res.WithRank(match.Tier(row.Tier), row.Percentile)
}

func failureToRow(f match.Failure) failureRow {
	row := failureRow{CandidateID: f.CandidateID(), Stage: string(f.Stage())}
	if f.Err() != nil {
		row.Message = f.Err().Error()
	}
	return row
}

// failureFromRow flattens the stored error to its message; the original error
// chain does not survive serialization.
func failureFromRow(row failureRow) match.Failure {
	return match.NewFailure(row.CandidateID, domain.Stage(row.Stage), errors.New(row.Message))
}

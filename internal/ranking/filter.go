package ranking

import (
	"fmt"

	"github.com/hirelens/matchdex/internal/domain"
	"github.com/hirelens/matchdex/internal/domain/match"
	"github.com/hirelens/matchdex/internal/skills"
)

// Filter narrows a ranked report. Conditions combine with AND; unset fields
// pass everything. A nil *Filter matches every result.
type Filter struct {
	MinScore        *float64
	MaxScore        *float64
	Tiers           []match.Tier
	MatchedSkills   []string // required skill names that must have matched
	MinYears        *float64
	MaxYears        *float64
	MinEducation    *domain.EducationLevel
	ExcludeDegraded bool
}

// Validate checks ranges and tier names.
func (f *Filter) Validate() error {
	if f == nil {
		return nil
	}
	if f.MinScore != nil && (*f.MinScore < 0 || *f.MinScore > 100) {
		return fmt.Errorf("filter min score %v outside [0,100]: %w", *f.MinScore, domain.ErrValidation)
	}
	if f.MaxScore != nil && (*f.MaxScore < 0 || *f.MaxScore > 100) {
		return fmt.Errorf("filter max score %v outside [0,100]: %w", *f.MaxScore, domain.ErrValidation)
	}
	if f.MinScore != nil && f.MaxScore != nil && *f.MinScore > *f.MaxScore {
		return fmt.Errorf("filter min score %v above max %v: %w", *f.MinScore, *f.MaxScore, domain.ErrValidation)
	}
	if f.MinYears != nil && *f.MinYears < 0 {
		return fmt.Errorf("filter min years %v is negative: %w", *f.MinYears, domain.ErrValidation)
	}
	if f.MinYears != nil && f.MaxYears != nil && *f.MinYears > *f.MaxYears {
		return fmt.Errorf("filter min years %v above max %v: %w", *f.MinYears, *f.MaxYears, domain.ErrValidation)
	}
	for _, tier := range f.Tiers {
		switch tier {
		case match.TierS, match.TierA, match.TierB, match.TierC, match.TierD:
		default:
			return fmt.Errorf("unknown tier %q: %w", tier, domain.ErrValidation)
		}
	}
	return nil
}

// Matches reports whether a result passes every set condition. Candidates
// with unknown experience durations fail year bounds; they cannot be proven
// inside the range.
func (f *Filter) Matches(res match.Result, cand *domain.CandidateProfile) bool {
	if f == nil {
		return true
	}
	if f.MinScore != nil && res.FinalScore() < *f.MinScore {
		return false
	}
	if f.MaxScore != nil && res.FinalScore() > *f.MaxScore {
		return false
	}
	if len(f.Tiers) > 0 && !containsTier(f.Tiers, res.Tier()) {
		return false
	}
	if f.ExcludeDegraded && res.Degraded() {
		return false
	}
	if len(f.MatchedSkills) > 0 && !hasMatchedSkills(res, f.MatchedSkills) {
		return false
	}
	if f.MinYears != nil || f.MaxYears != nil {
		years, known := cand.YearsExperience()
		if !known {
			return false
		}
		if f.MinYears != nil && years < *f.MinYears {
			return false
		}
		if f.MaxYears != nil && years > *f.MaxYears {
			return false
		}
	}
	if f.MinEducation != nil && cand.HighestEducation() < *f.MinEducation {
		return false
	}
	return true
}

func containsTier(tiers []match.Tier, t match.Tier) bool {
	for _, have := range tiers {
		if have == t {
			return true
		}
	}
	return false
}

func hasMatchedSkills(res match.Result, wanted []string) bool {
	matched := make(map[string]bool, len(res.Skills().Matched()))
	for _, sm := range res.Skills().Matched() {
		matched[skills.Normalize(sm.Required())] = true
	}
	for _, name := range wanted {
		if !matched[skills.Normalize(name)] {
			return false
		}
	}
	return true
}

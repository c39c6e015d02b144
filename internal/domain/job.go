package domain

import "fmt"

// RequiredSkill is one job requirement. Must-have skills carry full weight
// in the skill score denominator, nice-to-have skills half weight.
type RequiredSkill struct {
	Name     string
	MustHave bool
}

// Weight returns the denominator weight for this requirement.
func (s RequiredSkill) Weight() float64 {
	if s.MustHave {
		return 1.0
	}
	return 0.5
}

// JobRequirement is an immutable job record supplied by the upstream layer.
type JobRequirement struct {
	ID        string
	Skills    []RequiredSkill
	MinYears  float64
	Seniority Seniority
	Education EducationLevel
	Embedding []float32
}

// Validate checks the job record at the ingestion boundary.
func (j *JobRequirement) Validate() error {
	if j.ID == "" {
		return fmt.Errorf("job id is required: %w", ErrValidation)
	}
	if j.MinYears < 0 {
		return fmt.Errorf("job %s: min years %.2f is negative: %w", j.ID, j.MinYears, ErrValidation)
	}
	seen := make(map[string]bool, len(j.Skills))
	for i, s := range j.Skills {
		if s.Name == "" {
			return fmt.Errorf("job %s: required skill[%d] name is empty: %w", j.ID, i, ErrValidation)
		}
		if seen[s.Name] {
			return fmt.Errorf("job %s: required skill %q listed twice: %w", j.ID, s.Name, ErrValidation)
		}
		seen[s.Name] = true
	}
	return nil
}

// MustHaves returns the must-have subset in declaration order.
func (j *JobRequirement) MustHaves() []RequiredSkill {
	out := make([]RequiredSkill, 0, len(j.Skills))
	for _, s := range j.Skills {
		if s.MustHave {
			out = append(out, s)
		}
	}
	return out
}

package domain

import "fmt"

// Skill is one normalized candidate skill.
type Skill struct {
	Name        string
	Proficiency float64 // 0..1, 0 = unknown
	Confidence  float64 // 0..1 extraction confidence, 0 = unknown
}

// Experience is one employment entry. Months may be absent upstream;
// HasMonths distinguishes "0 months" from "unknown".
type Experience struct {
	Title     string
	Company   string
	Months    int
	HasMonths bool
}

// EducationEntry is one degree entry.
type EducationEntry struct {
	Level EducationLevel
	Field string
}

// CandidateProfile is an immutable candidate record supplied by the upstream
// parsing layer. The engine never mutates a profile after Validate.
type CandidateProfile struct {
	ID         string
	Skills     []Skill
	Experience []Experience
	Education  []EducationEntry
	Embedding  []float32
	Quality    float64
}

// Validate checks the profile at the ingestion boundary.
func (c *CandidateProfile) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("candidate id is required: %w", ErrValidation)
	}
	for i, s := range c.Skills {
		if s.Name == "" {
			return fmt.Errorf("candidate %s: skill[%d] name is empty: %w", c.ID, i, ErrValidation)
		}
		if s.Proficiency < 0 || s.Proficiency > 1 {
			return fmt.Errorf("candidate %s: skill %q proficiency %.3f outside [0,1]: %w",
				c.ID, s.Name, s.Proficiency, ErrValidation)
		}
		if s.Confidence < 0 || s.Confidence > 1 {
			return fmt.Errorf("candidate %s: skill %q confidence %.3f outside [0,1]: %w",
				c.ID, s.Name, s.Confidence, ErrValidation)
		}
	}
	for i, e := range c.Experience {
		if e.Title == "" && e.Company == "" {
			return fmt.Errorf("candidate %s: experience[%d] has neither title nor company: %w",
				c.ID, i, ErrValidation)
		}
		if e.HasMonths && e.Months < 0 {
			return fmt.Errorf("candidate %s: experience[%d] months %d is negative: %w",
				c.ID, i, e.Months, ErrValidation)
		}
	}
	if c.Quality < 0 || c.Quality > 100 {
		return fmt.Errorf("candidate %s: quality %.3f outside [0,100]: %w", c.ID, c.Quality, ErrValidation)
	}
	return nil
}

// TotalMonths sums known experience durations.
// The second return reports whether any entry carried a duration at all.
func (c *CandidateProfile) TotalMonths() (int, bool) {
	total, known := 0, false
	for _, e := range c.Experience {
		if e.HasMonths {
			total += e.Months
			known = true
		}
	}
	return total, known
}

// YearsExperience converts total known months to years.
func (c *CandidateProfile) YearsExperience() (float64, bool) {
	months, known := c.TotalMonths()
	return float64(months) / 12.0, known
}

// SeniorityLevel infers the candidate's level from experience titles,
// keeping the most senior inference across entries.
func (c *CandidateProfile) SeniorityLevel() Seniority {
	best := SeniorityUnknown
	for _, e := range c.Experience {
		if lvl := InferSeniority(e.Title); lvl > best {
			best = lvl
		}
	}
	return best
}

// HighestEducation returns the candidate's best degree level.
func (c *CandidateProfile) HighestEducation() EducationLevel {
	best := EducationNone
	for _, e := range c.Education {
		if e.Level > best {
			best = e.Level
		}
	}
	return best
}

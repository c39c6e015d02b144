package scoring

import (
	"testing"

	"github.com/hirelens/matchdex/internal/domain"
)

func TestEducationScore(t *testing.T) {
	cases := []struct {
		name string
		req  domain.EducationLevel
		cand domain.EducationLevel
		want float64
	}{
		{"job requires none", domain.EducationNone, domain.EducationNone, 100},
		{"job requires none, candidate has degree", domain.EducationNone, domain.EducationDoctorate, 100},
		{"meets", domain.EducationBachelor, domain.EducationBachelor, 100},
		{"exceeds", domain.EducationBachelor, domain.EducationMaster, 100},
		{"one short", domain.EducationMaster, domain.EducationBachelor, 60},
		{"two short", domain.EducationMaster, domain.EducationAssociate, 30},
		{"three short", domain.EducationDoctorate, domain.EducationAssociate, 30},
		{"candidate has none", domain.EducationBachelor, domain.EducationNone, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			job := &domain.JobRequirement{ID: "job", Education: tc.req}
			cand := &domain.CandidateProfile{ID: "cand"}
			if tc.cand != domain.EducationNone {
				cand.Education = []domain.EducationEntry{{Level: tc.cand, Field: "cs"}}
			}
			if got := EducationScore(job, cand); got != tc.want {
				t.Errorf("EducationScore = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestEducationHighestDegreeWins(t *testing.T) {
	job := &domain.JobRequirement{ID: "job", Education: domain.EducationMaster}
	cand := &domain.CandidateProfile{
		ID: "cand",
		Education: []domain.EducationEntry{
			{Level: domain.EducationHighSchool},
			{Level: domain.EducationMaster, Field: "cs"},
			{Level: domain.EducationBachelor, Field: "math"},
		},
	}
	if got := EducationScore(job, cand); got != 100 {
		t.Errorf("EducationScore = %v, want 100 via highest degree", got)
	}
}

package scoring

import "github.com/hirelens/matchdex/internal/domain"

// EducationScore compares the candidate's best degree to the job
// requirement. A job without an education requirement scores 100 for
// everyone; a candidate with no recorded education against a real
// requirement scores 0. Otherwise: meets or exceeds 100, one level short
// 60, two or more short 30.
func EducationScore(job *domain.JobRequirement, cand *domain.CandidateProfile) float64 {
	if job.Education == domain.EducationNone {
		return 100
	}
	best := cand.HighestEducation()
	if best == domain.EducationNone {
		return 0
	}

	switch short := int(job.Education) - int(best); {
	case short <= 0:
		return 100
	case short == 1:
		return 60
	default:
		return 30
	}
}

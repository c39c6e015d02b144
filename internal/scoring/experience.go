package scoring

import "github.com/hirelens/matchdex/internal/domain"

// neutralScore stands in when a factor cannot be judged either way.
const neutralScore = 50.0

// Overqualification decay anchors for the years component, as ratios of
// candidate years to required years. Between anchors the score is linear.
var yearsAnchors = []struct {
	ratio, score float64
}{
	{1.5, 100},
	{2.0, 85},
	{3.0, 70},
	{4.0, 40},
}

// ExperienceScore averages a years-of-experience component and a seniority
// component.
//
// Years: a job asking zero years scores 100; a candidate at or above the
// requirement starts at 100 and decays along yearsAnchors as the surplus
// grows; under-qualified candidates score 70 × candidate/required. Unknown
// durations are neutral.
//
// Seniority: the candidate level is inferred from experience titles and
// compared to the job level; exact 100, one over 85, two+ over 70, one under
// 70, two+ under 30. A job without a stated level scores 100, a candidate
// without inferable level is neutral.
func ExperienceScore(job *domain.JobRequirement, cand *domain.CandidateProfile) float64 {
	return (yearsComponent(job, cand) + seniorityComponent(job, cand)) / 2
}

func yearsComponent(job *domain.JobRequirement, cand *domain.CandidateProfile) float64 {
	if job.MinYears == 0 {
		return 100
	}
	years, known := cand.YearsExperience()
	if !known {
		return neutralScore
	}

	ratio := years / job.MinYears
	if ratio < 1 {
		return 70 * ratio
	}
	if ratio <= yearsAnchors[0].ratio {
		return 100
	}
	for i := 1; i < len(yearsAnchors); i++ {
		prev, cur := yearsAnchors[i-1], yearsAnchors[i]
		if ratio <= cur.ratio {
			t := (ratio - prev.ratio) / (cur.ratio - prev.ratio)
			return prev.score + t*(cur.score-prev.score)
		}
	}
	return yearsAnchors[len(yearsAnchors)-1].score
}

func seniorityComponent(job *domain.JobRequirement, cand *domain.CandidateProfile) float64 {
	if job.Seniority == domain.SeniorityUnknown {
		return 100
	}
	level := cand.SeniorityLevel()
	if level == domain.SeniorityUnknown {
		return neutralScore
	}

	switch diff := int(level) - int(job.Seniority); {
	case diff == 0:
		return 100
	case diff == 1:
		return 85
	case diff >= 2:
		return 70
	case diff == -1:
		return 70
	default: // two or more levels under
		return 30
	}
}

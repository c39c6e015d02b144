package matchdex

import (
	"fmt"

	"github.com/hirelens/matchdex/internal/cache"
	"github.com/hirelens/matchdex/internal/domain"
	dommatch "github.com/hirelens/matchdex/internal/domain/match"
	"github.com/hirelens/matchdex/internal/domain/weights"
	"github.com/hirelens/matchdex/internal/index"
	"github.com/hirelens/matchdex/internal/ranking"
	"github.com/hirelens/matchdex/internal/usecase/stats"
)

// toDomainCandidate translates one public candidate, parsing degree level
// names. Parse failures carry ErrValidation.
func toDomainCandidate(c *Candidate) (domain.CandidateProfile, error) {
	out := domain.CandidateProfile{
		ID:        c.ID,
		Embedding: c.Embedding,
		Quality:   c.Quality,
	}
	if len(c.Skills) > 0 {
		out.Skills = make([]domain.Skill, len(c.Skills))
		for i, s := range c.Skills {
			out.Skills[i] = domain.Skill{
				Name:        s.Name,
				Proficiency: s.Proficiency,
				Confidence:  s.Confidence,
			}
		}
	}
	if len(c.Experience) > 0 {
		out.Experience = make([]domain.Experience, len(c.Experience))
		for i, e := range c.Experience {
			exp := domain.Experience{Title: e.Title, Company: e.Company}
			if e.Months != nil {
				exp.Months = *e.Months
				exp.HasMonths = true
			}
			out.Experience[i] = exp
		}
	}
	if len(c.Education) > 0 {
		out.Education = make([]domain.EducationEntry, len(c.Education))
		for i, e := range c.Education {
			level, err := domain.ParseEducationLevel(e.Level)
			if err != nil {
				return domain.CandidateProfile{}, fmt.Errorf("candidate %s: education[%d]: %w", c.ID, i, err)
			}
			out.Education[i] = domain.EducationEntry{Level: level, Field: e.Field}
		}
	}
	return out, nil
}

// toDomainJob translates one public job, parsing the seniority and degree
// level names.
func toDomainJob(j *Job) (*domain.JobRequirement, error) {
	seniority, err := domain.ParseSeniority(j.Seniority)
	if err != nil {
		return nil, fmt.Errorf("job %s: %w", j.ID, err)
	}
	education, err := domain.ParseEducationLevel(j.Education)
	if err != nil {
		return nil, fmt.Errorf("job %s: %w", j.ID, err)
	}

	out := &domain.JobRequirement{
		ID:        j.ID,
		MinYears:  j.MinYears,
		Seniority: seniority,
		Education: education,
		Embedding: j.Embedding,
	}
	if len(j.Skills) > 0 {
		out.Skills = make([]domain.RequiredSkill, len(j.Skills))
		for i, s := range j.Skills {
			out.Skills[i] = domain.RequiredSkill{Name: s.Name, MustHave: s.MustHave}
		}
	}
	return out, nil
}

func toDomainWeights(w Weights) weights.Weights {
	return weights.Weights{
		Version:    w.Version,
		Skill:      w.Skill,
		Experience: w.Experience,
		Education:  w.Education,
		Semantic:   w.Semantic,
	}
}

func fromDomainWeights(w weights.Weights) Weights {
	return Weights{
		Version:    w.Version,
		Skill:      w.Skill,
		Experience: w.Experience,
		Education:  w.Education,
		Semantic:   w.Semantic,
	}
}

// toRankingFilter translates a public filter, parsing the education bound.
// A nil filter stays nil and matches everything.
func toRankingFilter(f *Filter) (*ranking.Filter, error) {
	if f == nil {
		return nil, nil
	}
	out := &ranking.Filter{
		MinScore:        f.MinScore,
		MaxScore:        f.MaxScore,
		MatchedSkills:   f.RequiredSkills,
		MinYears:        f.MinYears,
		MaxYears:        f.MaxYears,
		ExcludeDegraded: f.ExcludeDegraded,
	}
	if len(f.Tiers) > 0 {
		out.Tiers = make([]dommatch.Tier, len(f.Tiers))
		for i, t := range f.Tiers {
			out.Tiers[i] = dommatch.Tier(t)
		}
	}
	if f.MinEducation != "" {
		level, err := domain.ParseEducationLevel(f.MinEducation)
		if err != nil {
			return nil, fmt.Errorf("filter: %w", err)
		}
		out.MinEducation = &level
	}
	return out, nil
}

func fromReport(rep dommatch.Report) *Report {
	out := &Report{
		JobID:       rep.JobID(),
		Results:     make([]MatchResult, 0, len(rep.Results())),
		Fingerprint: rep.Fingerprint(),
		CacheHit:    rep.CacheHit(),
	}
	for _, res := range rep.Results() {
		out.Results = append(out.Results, fromResult(res))
	}
	for _, f := range rep.Failures() {
		out.Failures = append(out.Failures, fromFailure(f))
	}
	return out
}

func fromResult(res dommatch.Result) MatchResult {
	out := MatchResult{
		CandidateID:    res.CandidateID(),
		JobID:          res.JobID(),
		Score:          res.FinalScore(),
		Tier:           Tier(res.Tier()),
		Percentile:     res.Percentile(),
		MissingSkills:  res.Skills().Missing(),
		BonusSkills:    res.Skills().Bonus(),
		Degraded:       res.Degraded(),
		DegradedReason: res.DegradedReason(),
	}
	if rows := res.Breakdown(); len(rows) > 0 {
		out.Factors = make([]FactorScore, len(rows))
		for i, b := range rows {
			out.Factors[i] = FactorScore{
				Factor:       string(b.Factor()),
				Score:        b.Score(),
				Weight:       b.Weight(),
				Contribution: b.Contribution(),
			}
		}
	}
	if matched := res.Skills().Matched(); len(matched) > 0 {
		out.MatchedSkills = make([]SkillMatch, len(matched))
		for i, m := range matched {
			out.MatchedSkills[i] = SkillMatch{
				Required:  m.Required(),
				Candidate: m.Candidate(),
				Tier:      string(m.Tier()),
				Strength:  m.Strength(),
				MustHave:  m.MustHave(),
			}
		}
	}
	return out
}

func fromFailure(f dommatch.Failure) Failure {
	msg := ""
	if f.Err() != nil {
		msg = f.Err().Error()
	}
	return Failure{CandidateID: f.CandidateID(), Stage: f.Stage(), Error: msg}
}

func fromHits(hits []index.Hit) []Hit {
	if len(hits) == 0 {
		return nil
	}
	out := make([]Hit, len(hits))
	for i, h := range hits {
		out[i] = Hit{CandidateID: h.ID, Similarity: h.Similarity}
	}
	return out
}

func fromCacheStats(s cache.Stats) CacheStats {
	return CacheStats{
		Hits:        s.Hits,
		Misses:      s.Misses,
		Evictions:   s.Evictions,
		Expirations: s.Expirations,
		Entries:     s.Entries,
		Capacity:    s.Capacity,
		HitRate:     s.HitRate(),
	}
}

func fromSnapshot(s stats.Snapshot) Stats {
	return Stats{
		EmbeddingCache: fromCacheStats(s.EmbeddingCache()),
		ResultCache:    fromCacheStats(s.ResultCache()),
		IndexSize:      s.IndexSize(),
		IndexDim:       s.IndexDim(),
		IndexMode:      IndexMode(s.IndexMode()),
		Workers:        s.Workers(),
		WeightsVersion: s.WeightsVersion(),
	}
}

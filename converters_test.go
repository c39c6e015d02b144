package matchdex

import (
	"errors"
	"reflect"
	"testing"

	"github.com/hirelens/matchdex/internal/cache"
	"github.com/hirelens/matchdex/internal/domain"
	dommatch "github.com/hirelens/matchdex/internal/domain/match"
)

func TestToDomainCandidate(t *testing.T) {
	months := 36
	c := Candidate{
		ID:     "cand-1",
		Skills: []CandidateSkill{{Name: "Go", Proficiency: 0.9, Confidence: 0.8}},
		Experience: []ExperienceEntry{
			{Title: "Engineer", Company: "Acme", Months: &months},
			{Title: "Intern", Company: "Initech"},
		},
		Education: []EducationEntry{{Level: "Masters", Field: "CS"}},
		Embedding: []float32{1, 0},
		Quality:   70,
	}

	got, err := toDomainCandidate(&c)
	if err != nil {
		t.Fatalf("toDomainCandidate: %v", err)
	}
	if got.ID != "cand-1" || got.Quality != 70 {
		t.Errorf("identity = %s/%v, want cand-1/70", got.ID, got.Quality)
	}
	if got.Skills[0].Name != "Go" || got.Skills[0].Proficiency != 0.9 || got.Skills[0].Confidence != 0.8 {
		t.Errorf("skill = %+v", got.Skills[0])
	}
	if !got.Experience[0].HasMonths || got.Experience[0].Months != 36 {
		t.Errorf("experience[0] = %+v, want 36 known months", got.Experience[0])
	}
	if got.Experience[1].HasMonths {
		t.Error("nil months must stay unknown")
	}
	if got.Education[0].Level != domain.EducationMaster || got.Education[0].Field != "CS" {
		t.Errorf("education = %+v, want master/CS", got.Education[0])
	}
}

func TestToDomainCandidate_BadEducation(t *testing.T) {
	c := Candidate{ID: "cand-1", Education: []EducationEntry{{Level: "alchemy"}}}
	if _, err := toDomainCandidate(&c); !errors.Is(err, ErrValidation) {
		t.Errorf("error = %v, want ErrValidation", err)
	}
}

func TestToDomainJob(t *testing.T) {
	got, err := toDomainJob(testJob())
	if err != nil {
		t.Fatalf("toDomainJob: %v", err)
	}
	if got.ID != "job-1" || got.MinYears != 2 {
		t.Errorf("identity = %s/%v, want job-1/2", got.ID, got.MinYears)
	}
	if got.Seniority != domain.SeniorityMid || got.Education != domain.EducationBachelor {
		t.Errorf("levels = %v/%v, want mid/bachelor", got.Seniority, got.Education)
	}
	want := []domain.RequiredSkill{{Name: "Go", MustHave: true}, {Name: "Docker"}}
	if !reflect.DeepEqual(got.Skills, want) {
		t.Errorf("skills = %+v, want %+v", got.Skills, want)
	}

	t.Run("bad seniority", func(t *testing.T) {
		j := testJob()
		j.Seniority = "wizard"
		if _, err := toDomainJob(j); !errors.Is(err, ErrValidation) {
			t.Errorf("error = %v, want ErrValidation", err)
		}
	})
	t.Run("bad education", func(t *testing.T) {
		j := testJob()
		j.Education = "alchemy"
		if _, err := toDomainJob(j); !errors.Is(err, ErrValidation) {
			t.Errorf("error = %v, want ErrValidation", err)
		}
	})
}

func TestToRankingFilter(t *testing.T) {
	rf, err := toRankingFilter(nil)
	if err != nil || rf != nil {
		t.Errorf("nil filter = %v/%v, want nil/nil", rf, err)
	}

	f := NewFilter().
		MinScore(60).
		Tiers(TierS, TierB).
		RequireSkill("go").
		MinEducation("phd").
		ExcludeDegraded().
		Build()
	rf, err = toRankingFilter(f)
	if err != nil {
		t.Fatalf("toRankingFilter: %v", err)
	}
	if *rf.MinScore != 60 || !rf.ExcludeDegraded {
		t.Errorf("bounds = %+v", rf)
	}
	if !reflect.DeepEqual(rf.Tiers, []dommatch.Tier{dommatch.TierS, dommatch.TierB}) {
		t.Errorf("tiers = %v", rf.Tiers)
	}
	if !reflect.DeepEqual(rf.MatchedSkills, []string{"go"}) {
		t.Errorf("matched skills = %v", rf.MatchedSkills)
	}
	if rf.MinEducation == nil || *rf.MinEducation != domain.EducationDoctorate {
		t.Errorf("education bound = %v, want doctorate", rf.MinEducation)
	}

	t.Run("bad education bound", func(t *testing.T) {
		_, err := toRankingFilter(NewFilter().MinEducation("alchemy").Build())
		if !errors.Is(err, ErrValidation) {
			t.Errorf("error = %v, want ErrValidation", err)
		}
	})
}

func TestWeightsPresets(t *testing.T) {
	w := DefaultWeights()
	if w.Version != "v1" || w.Skill != 0.40 || w.Experience != 0.30 || w.Education != 0.10 || w.Semantic != 0.20 {
		t.Errorf("default preset = %+v", w)
	}
	ne := NoEducationWeights()
	if ne.Version != "v1-noedu" || ne.Education != 0 {
		t.Errorf("no-education preset = %+v", ne)
	}

	round := fromDomainWeights(toDomainWeights(w))
	if !reflect.DeepEqual(round, w) {
		t.Errorf("round trip = %+v, want %+v", round, w)
	}
}

func TestFromResult(t *testing.T) {
	rows := []dommatch.Breakdown{
		dommatch.NewBreakdown(dommatch.FactorSkill, 100, 0.4),
		dommatch.NewBreakdown(dommatch.FactorSemantic, 80, 0.2),
	}
	skills := dommatch.NewSkillReport(
		[]dommatch.SkillMatch{dommatch.NewSkillMatch("Go", "Golang", dommatch.MatchAlias, 1, true)},
		[]string{"Kubernetes"},
		[]string{"Rust"},
	)
	res := dommatch.New("cand-1", "job-1", 88, rows, skills, "").
		WithRank(dommatch.TierS, 75)

	out := fromResult(res)
	if out.CandidateID != "cand-1" || out.JobID != "job-1" {
		t.Errorf("identity = %s/%s", out.CandidateID, out.JobID)
	}
	if out.Score != 88 || out.Tier != TierS || out.Percentile != 75 {
		t.Errorf("rank = %v/%s/%v, want 88/S/75", out.Score, out.Tier, out.Percentile)
	}
	if out.Degraded || out.DegradedReason != "" {
		t.Errorf("degraded = %v %q, want clean", out.Degraded, out.DegradedReason)
	}
	if len(out.Factors) != 2 {
		t.Fatalf("factors = %d, want 2", len(out.Factors))
	}
	if out.Factors[0].Factor != FactorSkill || out.Factors[0].Contribution != 40 {
		t.Errorf("skill factor = %+v, want contribution 40", out.Factors[0])
	}
	if out.Factors[1].Weight != 0.2 || out.Factors[1].Contribution != 16 {
		t.Errorf("semantic factor = %+v, want 80×0.2", out.Factors[1])
	}
	wantMatch := SkillMatch{Required: "Go", Candidate: "Golang", Tier: MatchAlias, Strength: 1, MustHave: true}
	if !reflect.DeepEqual(out.MatchedSkills, []SkillMatch{wantMatch}) {
		t.Errorf("matched = %+v, want %+v", out.MatchedSkills, wantMatch)
	}
	if !reflect.DeepEqual(out.MissingSkills, []string{"Kubernetes"}) ||
		!reflect.DeepEqual(out.BonusSkills, []string{"Rust"}) {
		t.Errorf("missing/bonus = %v/%v", out.MissingSkills, out.BonusSkills)
	}
}

func TestFromReport(t *testing.T) {
	res := dommatch.New("cand-1", "job-1", 88, nil, dommatch.SkillReport{}, "")
	failures := []dommatch.Failure{
		dommatch.NewFailure("cand-x", domain.StageValidate, errors.New("boom")),
	}
	rep := dommatch.NewReport("job-1", []dommatch.Result{res}, failures, "abc123", true)

	out := fromReport(rep)
	if out.JobID != "job-1" || out.Fingerprint != "abc123" || !out.CacheHit {
		t.Errorf("report header = %+v", out)
	}
	if len(out.Results) != 1 || out.Results[0].CandidateID != "cand-1" {
		t.Errorf("results = %+v", out.Results)
	}
	wantFailure := Failure{CandidateID: "cand-x", Stage: StageValidate, Error: "boom"}
	if !reflect.DeepEqual(out.Failures, []Failure{wantFailure}) {
		t.Errorf("failures = %+v, want %+v", out.Failures, wantFailure)
	}
}

func TestFromCacheStats(t *testing.T) {
	out := fromCacheStats(cache.Stats{
		Hits: 3, Misses: 1, Evictions: 2, Expirations: 4, Entries: 5, Capacity: 100,
	})
	if out.Hits != 3 || out.Misses != 1 || out.Evictions != 2 || out.Expirations != 4 {
		t.Errorf("counters = %+v", out)
	}
	if out.Entries != 5 || out.Capacity != 100 {
		t.Errorf("occupancy = %d/%d, want 5/100", out.Entries, out.Capacity)
	}
	if out.HitRate != 0.75 {
		t.Errorf("hit rate = %v, want 0.75", out.HitRate)
	}

	if idle := fromCacheStats(cache.Stats{}); idle.HitRate != 0 {
		t.Errorf("idle hit rate = %v, want 0", idle.HitRate)
	}
}

package scoring

import (
	"math"
	"testing"

	"github.com/hirelens/matchdex/internal/domain"
	"github.com/hirelens/matchdex/internal/domain/match"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestSkillScoreMustHaveCoverage(t *testing.T) {
	// Must-have matched, nice-to-have missing, one bonus without semantic
	// context: 100×1.0/(1.0+0.5) = 66.67.
	required := []domain.RequiredSkill{
		{Name: "Python", MustHave: true},
		{Name: "Docker", MustHave: false},
	}
	report := match.NewSkillReport(
		[]match.SkillMatch{match.NewSkillMatch("Python", "Python", match.MatchExact, 1.0, true)},
		[]string{"Docker"},
		[]string{"Kubernetes"},
	)

	got := SkillScore(required, report, 0)
	want := 100.0 / 1.5
	if !almostEqual(got, want) {
		t.Errorf("SkillScore = %v, want %v", got, want)
	}
}

func TestSkillScoreFullMatch(t *testing.T) {
	required := []domain.RequiredSkill{
		{Name: "go", MustHave: true},
		{Name: "docker", MustHave: false},
	}
	report := match.NewSkillReport(
		[]match.SkillMatch{
			match.NewSkillMatch("go", "go", match.MatchExact, 1.0, true),
			match.NewSkillMatch("docker", "docker", match.MatchExact, 1.0, false),
		},
		nil, nil,
	)

	if got := SkillScore(required, report, 0); !almostEqual(got, 100) {
		t.Errorf("SkillScore = %v, want 100", got)
	}
}

func TestSkillScorePartialStrength(t *testing.T) {
	// Fuzzy match at 0.9 on the only requirement: 90.
	required := []domain.RequiredSkill{{Name: "postgresql", MustHave: true}}
	report := match.NewSkillReport(
		[]match.SkillMatch{match.NewSkillMatch("postgresql", "postgresq", match.MatchFuzzy, 0.9, true)},
		nil, nil,
	)

	if got := SkillScore(required, report, 0); !almostEqual(got, 90) {
		t.Errorf("SkillScore = %v, want 90", got)
	}
}

func TestSkillScoreEmptyRequirements(t *testing.T) {
	report := match.NewSkillReport(nil, nil, []string{"anything"})
	if got := SkillScore(nil, report, 3); got != 100 {
		t.Errorf("SkillScore with no requirements = %v, want 100", got)
	}
}

func TestSkillScoreBonus(t *testing.T) {
	required := []domain.RequiredSkill{{Name: "go", MustHave: true}}
	report := match.NewSkillReport(
		[]match.SkillMatch{match.NewSkillMatch("go", "go", match.MatchExact, 0.5, true)},
		nil,
		[]string{"a", "b", "c", "d", "e"},
	)

	// base 50, two relevant extras: +5.
	if got := SkillScore(required, report, 2); !almostEqual(got, 55) {
		t.Errorf("SkillScore = %v, want 55", got)
	}
	// Five relevant extras would add 12.5; cap holds at +10.
	if got := SkillScore(required, report, 5); !almostEqual(got, 60) {
		t.Errorf("SkillScore = %v, want capped 60", got)
	}
}

func TestSkillScoreBonusNeverExceeds100(t *testing.T) {
	required := []domain.RequiredSkill{{Name: "go", MustHave: true}}
	report := match.NewSkillReport(
		[]match.SkillMatch{match.NewSkillMatch("go", "go", match.MatchExact, 1.0, true)},
		nil,
		[]string{"extra"},
	)

	if got := SkillScore(required, report, 4); got != 100 {
		t.Errorf("SkillScore = %v, want clamped 100", got)
	}
}

package resultcache

import (
	"context"
	"path"
	"sort"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/hirelens/matchdex/internal/domain/match"
	"github.com/hirelens/matchdex/internal/store"
)

// memKV is a map-backed store double.
type memKV struct {
	m      map[string][]byte
	getErr error
}

func newMemKV() *memKV {
	return &memKV{m: make(map[string][]byte)}
}

func (s *memKV) Get(_ context.Context, key string) ([]byte, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	v, ok := s.m[key]
	if !ok {
		return nil, store.ErrKeyNotFound
	}
	return v, nil
}

func (s *memKV) SetWithTTL(_ context.Context, key string, value []byte, _ time.Duration) error {
	s.m[key] = value
	return nil
}

func (s *memKV) Del(_ context.Context, key string) error {
	delete(s.m, key)
	return nil
}

func (s *memKV) Scan(_ context.Context, pattern string) ([]string, error) {
	var keys []string
	for k := range s.m {
		if ok, _ := path.Match(pattern, k); ok {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func newTestCache(t *testing.T) (*Cache, *memKV) {
	t.Helper()
	ms := newMemKV()
	return New(ms, 0, nil, zap.NewNop()), ms
}

func sampleResult(id string, score float64) match.Result {
	breakdown := []match.Breakdown{
		match.NewBreakdown(match.FactorSkill, 80.5, 0.4),
		match.NewBreakdown(match.FactorExperience, 70, 0.3),
		match.NewBreakdown(match.FactorEducation, 100, 0.1),
		match.NewBreakdown(match.FactorSemantic, 66.12345678912345, 0.2),
	}
	skills := match.NewSkillReport(
		[]match.SkillMatch{
			match.NewSkillMatch("Go", "Golang", match.MatchAlias, 1.0, true),
			match.NewSkillMatch("PostgreSQL", "postgres", match.MatchFuzzy, 0.87, false),
		},
		[]string{"Kubernetes"},
		[]string{"Terraform"},
	)
	res := match.New(id, "job-1", score, breakdown, skills, "")
	return res.WithRank(match.TierA, 75.5)
}

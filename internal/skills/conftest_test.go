package skills

import (
	"context"
	"testing"

	"github.com/hirelens/matchdex/internal/domain"
)

// mockEncoder implements domain.Encoder for tests.
type mockEncoder struct {
	encodeFn func(ctx context.Context, text string) (domain.EncodeResult, error)
	calls    int
}

func (m *mockEncoder) Encode(ctx context.Context, text string) (domain.EncodeResult, error) {
	m.calls++
	if m.encodeFn != nil {
		return m.encodeFn(ctx, text)
	}
	return domain.EncodeResult{Vector: []float32{1, 0}}, nil
}

// vectorEncoder returns an encoder serving fixed unit vectors per text and
// an orthogonal default for everything else.
func vectorEncoder(vectors map[string][]float32) *mockEncoder {
	return &mockEncoder{
		encodeFn: func(_ context.Context, text string) (domain.EncodeResult, error) {
			if v, ok := vectors[text]; ok {
				return domain.EncodeResult{Vector: v}, nil
			}
			return domain.EncodeResult{Vector: []float32{0, 1}}, nil
		},
	}
}

func newTestMatcher(t *testing.T, enc domain.Encoder) *Matcher {
	t.Helper()
	m, err := NewMatcher(DefaultAliases(), DefaultConfig(), enc)
	if err != nil {
		t.Fatalf("NewMatcher: %v", err)
	}
	return m
}

func reqSkills(names ...string) []domain.RequiredSkill {
	out := make([]domain.RequiredSkill, len(names))
	for i, n := range names {
		out[i] = domain.RequiredSkill{Name: n, MustHave: true}
	}
	return out
}

func candSkills(names ...string) []domain.Skill {
	out := make([]domain.Skill, len(names))
	for i, n := range names {
		out[i] = domain.Skill{Name: n, Proficiency: 0.8, Confidence: 1}
	}
	return out
}

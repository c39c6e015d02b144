package scoring

import (
	"context"
	"errors"
	"testing"

	"github.com/hirelens/matchdex/internal/domain"
)

func TestSemanticScore(t *testing.T) {
	cases := []struct {
		name string
		cand []float32
		job  []float32
		want float64
	}{
		{"identical", []float32{1, 0}, []float32{1, 0}, 100},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"opposed clamps to zero", []float32{1, 0}, []float32{-1, 0}, 0},
		{"partial", []float32{0.6, 0.8}, []float32{1, 0}, 60},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := SemanticScore(tc.cand, tc.job)
			if err != nil {
				t.Fatalf("SemanticScore: %v", err)
			}
			if !almostEqual(got, tc.want) {
				t.Errorf("SemanticScore = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestSemanticScoreDimensionMismatch(t *testing.T) {
	_, err := SemanticScore([]float32{1, 0, 0}, []float32{1, 0})
	if err == nil {
		t.Fatal("expected dimension mismatch error")
	}
	if !errors.Is(err, domain.ErrInvalidDimension) {
		t.Errorf("err = %v, want ErrInvalidDimension in chain", err)
	}
}

type fixedEncoder struct {
	vectors map[string][]float32
	err     error
}

func (f *fixedEncoder) Encode(_ context.Context, text string) (domain.EncodeResult, error) {
	if f.err != nil {
		return domain.EncodeResult{}, f.err
	}
	if v, ok := f.vectors[text]; ok {
		return domain.EncodeResult{Vector: v}, nil
	}
	return domain.EncodeResult{Vector: []float32{0, 1}}, nil
}

func TestCountRelevantBonus(t *testing.T) {
	enc := &fixedEncoder{vectors: map[string][]float32{
		"kubernetes": {0.8, 0.6}, // cos 0.8 vs job
		"cooking":    {0, 1},     // cos 0
	}}
	job := []float32{1, 0}

	got, err := CountRelevantBonus(context.Background(), enc, []string{"kubernetes", "cooking"}, job)
	if err != nil {
		t.Fatalf("CountRelevantBonus: %v", err)
	}
	if got != 1 {
		t.Errorf("relevant = %d, want 1", got)
	}
}

func TestCountRelevantBonusEmptyInputs(t *testing.T) {
	if got, err := CountRelevantBonus(context.Background(), nil, []string{"x"}, []float32{1}); err != nil || got != 0 {
		t.Errorf("nil encoder: got %d, %v; want 0, nil", got, err)
	}
	enc := &fixedEncoder{}
	if got, err := CountRelevantBonus(context.Background(), enc, nil, []float32{1}); err != nil || got != 0 {
		t.Errorf("no bonus skills: got %d, %v; want 0, nil", got, err)
	}
	if got, err := CountRelevantBonus(context.Background(), enc, []string{"x"}, nil); err != nil || got != 0 {
		t.Errorf("no job embedding: got %d, %v; want 0, nil", got, err)
	}
}

func TestCountRelevantBonusEncoderError(t *testing.T) {
	enc := &fixedEncoder{err: domain.ErrEncoder}
	_, err := CountRelevantBonus(context.Background(), enc, []string{"x"}, []float32{1, 0})
	if !errors.Is(err, domain.ErrEncoder) {
		t.Errorf("err = %v, want ErrEncoder in chain", err)
	}
}

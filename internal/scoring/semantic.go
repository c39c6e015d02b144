package scoring

import (
	"context"
	"fmt"

	"github.com/hirelens/matchdex/internal/domain"
)

// SemanticScore maps the cosine similarity of the candidate and job
// embeddings to [0,100]. Negative similarity clamps to 0; a dimension
// mismatch surfaces ErrInvalidDimension.
func SemanticScore(candidate, job []float32) (float64, error) {
	cos, err := domain.CosineSimilarity(candidate, job)
	if err != nil {
		return 0, fmt.Errorf("semantic factor: %w", err)
	}
	return 100 * Clamp(cos, 0, 1), nil
}

// CountRelevantBonus embeds each bonus skill name and counts those whose
// cosine similarity to the job embedding reaches BonusRelevanceMin. Callers
// must invoke it without holding engine locks; the encoder can block.
func CountRelevantBonus(ctx context.Context, enc domain.Encoder, bonus []string, jobEmbedding []float32) (int, error) {
	if enc == nil || len(bonus) == 0 || len(jobEmbedding) == 0 {
		return 0, nil
	}

	var res domain.BatchEncodeResult
	var err error
	if be, ok := enc.(domain.BatchEncoder); ok {
		res, err = be.BatchEncode(ctx, bonus)
	} else {
		res, err = domain.BatchFallback(ctx, enc, bonus)
	}
	if err != nil {
		return 0, fmt.Errorf("embed bonus skills: %w", err)
	}

	count := 0
	for _, vec := range res.Vectors {
		cos, cerr := domain.CosineSimilarity(vec, jobEmbedding)
		if cerr != nil {
			return 0, cerr
		}
		if cos >= BonusRelevanceMin {
			count++
		}
	}
	return count, nil
}

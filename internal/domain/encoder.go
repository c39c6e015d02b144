package domain

import (
	"context"
	"fmt"
)

// Encoder is the shared text vectorization contract between layers.
// Implementations are assumed deterministic for identical input.
type Encoder interface {
	Encode(ctx context.Context, text string) (EncodeResult, error)
}

// BatchEncoder vectorizes multiple texts in a single provider call.
type BatchEncoder interface {
	BatchEncode(ctx context.Context, texts []string) (BatchEncodeResult, error)
}

// EncodeResult carries the vector and token usage through the decorator chain.
type EncodeResult struct {
	Vector       []float32
	PromptTokens int
	TotalTokens  int
}

// BatchEncodeResult carries multiple vectors and aggregate token usage.
type BatchEncodeResult struct {
	Vectors      [][]float32
	PromptTokens int
	TotalTokens  int
}

// BatchFallback calls Encode once per text. Safety net for providers
// without a native batch endpoint.
func BatchFallback(ctx context.Context, e Encoder, texts []string) (BatchEncodeResult, error) {
	vectors := make([][]float32, len(texts))
	var totalPrompt, totalTokens int

	for i, text := range texts {
		res, err := e.Encode(ctx, text)
		if err != nil {
			return BatchEncodeResult{}, fmt.Errorf("fallback encode [%d]: %w", i, err)
		}
		vectors[i] = res.Vector
		totalPrompt += res.PromptTokens
		totalTokens += res.TotalTokens
	}

	return BatchEncodeResult{
		Vectors:      vectors,
		PromptTokens: totalPrompt,
		TotalTokens:  totalTokens,
	}, nil
}

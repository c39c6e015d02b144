package domain

import (
	"fmt"
	"math"
)

// Dot returns the dot product of two equal-length vectors.
// Accumulates in float64 to keep long sums stable.
func Dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

// Norm returns the L2 norm of v.
func Norm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

// Normalize returns an L2-normalized copy of v. Zero vectors come back zero.
func Normalize(v []float32) []float32 {
	out := make([]float32, len(v))
	n := Norm(v)
	if n == 0 {
		copy(out, v)
		return out
	}
	for i, x := range v {
		out[i] = float32(float64(x) / n)
	}
	return out
}

// CosineSimilarity returns cos(a, b) in [-1, 1].
// Zero-norm inputs yield 0. Length mismatch fails with ErrInvalidDimension.
func CosineSimilarity(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("cosine: got %d and %d dimensions: %w", len(a), len(b), ErrInvalidDimension)
	}
	if len(a) == 0 {
		return 0, nil
	}
	na, nb := Norm(a), Norm(b)
	if na == 0 || nb == 0 {
		return 0, nil
	}
	return Dot(a, b) / (na * nb), nil
}

// CopyVector returns a copy of v, or nil for nil input.
func CopyVector(v []float32) []float32 {
	if v == nil {
		return nil
	}
	out := make([]float32, len(v))
	copy(out, v)
	return out
}

package stats

import (
	"github.com/hirelens/matchdex/internal/cache"
	"github.com/hirelens/matchdex/internal/domain/weights"
	"github.com/hirelens/matchdex/internal/index"
)

// CounterSource reports point-in-time cache counters. The in-process store
// implements it; remote drivers that cannot count locally are wired as nil
// and their section reads zero.
type CounterSource interface {
	Stats() cache.Stats
}

// IndexReader provides read-only access to the candidate index.
type IndexReader interface {
	Len() int
	Dim() int
	Mode() index.Mode
}

// WeightsReader reports the active weight preset.
type WeightsReader interface {
	CurrentWeights() weights.Weights
}

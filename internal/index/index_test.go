package index

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"testing"

	"github.com/hirelens/matchdex/internal/domain"
)

func newExact(t *testing.T, dim int) *Index {
	t.Helper()
	x, err := New(Config{Dim: dim})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return x
}

func mustAdd(t *testing.T, x *Index, id string, vec []float32) {
	t.Helper()
	if err := x.Add(id, vec); err != nil {
		t.Fatalf("Add(%s): %v", id, err)
	}
}

func TestNewValidation(t *testing.T) {
	if _, err := New(Config{Dim: 0}); !errors.Is(err, domain.ErrConfiguration) {
		t.Errorf("zero dim: err = %v, want ErrConfiguration", err)
	}
	if _, err := New(Config{Dim: 4, Mode: "fancy"}); !errors.Is(err, domain.ErrConfiguration) {
		t.Errorf("bad mode: err = %v, want ErrConfiguration", err)
	}
}

func TestAddDimensionMismatch(t *testing.T) {
	x := newExact(t, 4)
	err := x.Add("c1", []float32{1, 0})
	if !errors.Is(err, domain.ErrInvalidDimension) {
		t.Errorf("err = %v, want ErrInvalidDimension", err)
	}
}

func TestAddEmptyID(t *testing.T) {
	x := newExact(t, 2)
	if err := x.Add("", []float32{1, 0}); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("err = %v, want ErrValidation", err)
	}
}

func TestSearchExactOrdering(t *testing.T) {
	x := newExact(t, 2)
	mustAdd(t, x, "far", []float32{0, 1})
	mustAdd(t, x, "near", []float32{1, 0})
	mustAdd(t, x, "mid", []float32{1, 1})

	hits, err := x.Search([]float32{1, 0}, 3)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}

	wantOrder := []string{"near", "mid", "far"}
	for i, want := range wantOrder {
		if hits[i].ID != want {
			t.Errorf("hit[%d] = %s, want %s", i, hits[i].ID, want)
		}
	}
	if !almostEqual(hits[0].Similarity, 1) {
		t.Errorf("top similarity = %v, want 1", hits[0].Similarity)
	}
	if !almostEqual(hits[1].Similarity, math.Sqrt2/2) {
		t.Errorf("mid similarity = %v, want %v", hits[1].Similarity, math.Sqrt2/2)
	}
}

func TestSearchTiesBreakByAscendingID(t *testing.T) {
	x := newExact(t, 2)
	same := []float32{1, 0}
	mustAdd(t, x, "zeta", same)
	mustAdd(t, x, "alpha", same)
	mustAdd(t, x, "mike", same)

	hits, err := x.Search(same, 3)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	wantOrder := []string{"alpha", "mike", "zeta"}
	for i, want := range wantOrder {
		if hits[i].ID != want {
			t.Errorf("hit[%d] = %s, want %s (ascending id on ties)", i, hits[i].ID, want)
		}
	}
}

func TestSearchKClamping(t *testing.T) {
	x := newExact(t, 2)
	mustAdd(t, x, "a", []float32{1, 0})
	mustAdd(t, x, "b", []float32{0, 1})

	hits, err := x.Search([]float32{1, 0}, 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 2 {
		t.Errorf("got %d hits, want all 2", len(hits))
	}

	hits, err = x.Search([]float32{1, 0}, 1)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 1 || hits[0].ID != "a" {
		t.Errorf("top-1 = %v, want just a", hits)
	}
}

func TestSearchInvalidK(t *testing.T) {
	x := newExact(t, 2)
	if _, err := x.Search([]float32{1, 0}, 0); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("k=0: err = %v, want ErrValidation", err)
	}
}

func TestSearchQueryDimensionMismatch(t *testing.T) {
	x := newExact(t, 2)
	if _, err := x.Search([]float32{1, 0, 0}, 1); !errors.Is(err, domain.ErrInvalidDimension) {
		t.Errorf("err = %v, want ErrInvalidDimension", err)
	}
}

func TestAddIsIdempotentUpsert(t *testing.T) {
	x := newExact(t, 2)
	mustAdd(t, x, "c", []float32{1, 0})
	mustAdd(t, x, "c", []float32{1, 0})
	if x.Len() != 1 {
		t.Errorf("Len = %d after double add, want 1", x.Len())
	}

	// Upsert moves the vector.
	mustAdd(t, x, "c", []float32{0, 1})
	hits, err := x.Search([]float32{0, 1}, 1)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if !almostEqual(hits[0].Similarity, 1) {
		t.Errorf("similarity after upsert = %v, want 1", hits[0].Similarity)
	}
}

func TestVectorsNormalizedOnInsert(t *testing.T) {
	x := newExact(t, 2)
	mustAdd(t, x, "long", []float32{30, 0})
	mustAdd(t, x, "unit", []float32{0.999, 0.0447})

	hits, err := x.Search([]float32{1, 0}, 2)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	// Magnitude must not matter: the aligned long vector scores a full 1.
	if hits[0].ID != "long" || !almostEqual(hits[0].Similarity, 1) {
		t.Errorf("top hit = %+v, want long at similarity 1", hits[0])
	}
}

func TestRemove(t *testing.T) {
	x := newExact(t, 2)
	mustAdd(t, x, "a", []float32{1, 0})
	mustAdd(t, x, "b", []float32{0, 1})

	if !x.Remove("a") {
		t.Error("Remove(a) = false, want true")
	}
	if x.Remove("a") {
		t.Error("second Remove(a) = true, want false")
	}
	if x.Contains("a") {
		t.Error("removed id still reported present")
	}

	hits, err := x.Search([]float32{1, 0}, 5)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 1 || hits[0].ID != "b" {
		t.Errorf("hits after remove = %v, want only b", hits)
	}
}

// clusteredIndex fills an approximate index with two well-separated clusters
// around the first two axes.
func clusteredIndex(t *testing.T, perCluster int) *Index {
	t.Helper()
	x, err := New(Config{Dim: 4, Mode: ModeApprox, ApproxMinSize: 10, NProbe: 3, Seed: 7})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for i := 0; i < perCluster; i++ {
		jitter := float32(i) * 0.002
		mustAdd(t, x, fmt.Sprintf("a%03d", i), []float32{1, jitter, 0, 0})
		mustAdd(t, x, fmt.Sprintf("b%03d", i), []float32{jitter, 0, 1, 0})
	}
	return x
}

func TestApproxSearchFindsCluster(t *testing.T) {
	x := clusteredIndex(t, 20)

	hits, err := x.Search([]float32{1, 0, 0, 0}, 5)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 5 {
		t.Fatalf("got %d hits, want 5", len(hits))
	}
	for _, h := range hits {
		if h.ID[0] != 'a' {
			t.Errorf("hit %s from the wrong cluster", h.ID)
		}
	}
	if hits[0].ID != "a000" {
		t.Errorf("top hit = %s, want the unjittered a000", hits[0].ID)
	}
}

func TestApproxFallsBackToExactWhenSmall(t *testing.T) {
	x, err := New(Config{Dim: 2, Mode: ModeApprox, ApproxMinSize: 100})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	mustAdd(t, x, "a", []float32{1, 0})
	mustAdd(t, x, "b", []float32{0, 1})

	hits, err := x.Search([]float32{1, 0}, 2)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 2 || hits[0].ID != "a" {
		t.Errorf("hits = %v, want exact results under the size floor", hits)
	}
}

func TestApproxDeterministicAcrossRebuilds(t *testing.T) {
	query := []float32{1, 0.001, 0, 0}
	first := clusteredIndex(t, 25)
	second := clusteredIndex(t, 25)

	h1, err := first.Search(query, 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	h2, err := second.Search(query, 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}

	if len(h1) != len(h2) {
		t.Fatalf("hit counts differ: %d vs %d", len(h1), len(h2))
	}
	for i := range h1 {
		if h1[i] != h2[i] {
			t.Errorf("hit[%d] differs across identical builds: %+v vs %+v", i, h1[i], h2[i])
		}
	}
}

func TestApproxSeesWritesAfterBuild(t *testing.T) {
	x := clusteredIndex(t, 20)

	// Force the clustering to exist.
	if _, err := x.Search([]float32{1, 0, 0, 0}, 1); err != nil {
		t.Fatalf("Search: %v", err)
	}

	query := []float32{1, 0, 0, 0.05}
	mustAdd(t, x, "late", query)
	hits, err := x.Search(query, 1)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if hits[0].ID != "late" {
		t.Errorf("top hit = %s, want the vector added after the build", hits[0].ID)
	}

	x.Remove("late")
	hits, err = x.Search(query, 1)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if hits[0].ID == "late" {
		t.Error("removed vector still surfaced by approximate search")
	}
}

func TestConcurrentReadersAndWriter(t *testing.T) {
	x := newExact(t, 2)
	for i := 0; i < 64; i++ {
		mustAdd(t, x, fmt.Sprintf("c%02d", i), []float32{float32(i), 1})
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			_ = x.Add(fmt.Sprintf("w%03d", i), []float32{1, float32(i)})
			x.Remove(fmt.Sprintf("w%03d", i-100))
		}
	}()
	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				if _, err := x.Search([]float32{1, 0}, 10); err != nil {
					t.Errorf("Search: %v", err)
					return
				}
			}
		}()
	}
	wg.Wait()
}

// Vectors are stored as float32, so comparisons tolerate single-precision error.
func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

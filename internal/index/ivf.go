package index

import (
	"math"
	"math/rand"
	"sort"

	"github.com/hirelens/matchdex/internal/domain"
)

// kmeansMaxIterations bounds the clustering pass; assignments usually
// stabilize far earlier.
const kmeansMaxIterations = 10

// ivfState is an inverted-file clustering over the stored vectors. Centroids
// come from spherical k-means, so nearest-centroid assignment uses the same
// dot product as the search itself. Incremental writes keep assignments
// usable between full rebuilds.
type ivfState struct {
	builtLen  int
	centroids [][]float32
	assign    []int   // position -> centroid
	lists     [][]int // centroid -> positions
}

// buildIVF clusters vecs into ~sqrt(N) centroids with a seeded, bounded
// k-means so identical input always yields identical clustering.
func buildIVF(vecs [][]float32, seed int64) *ivfState {
	n := len(vecs)
	k := int(math.Round(math.Sqrt(float64(n))))
	if k < 1 {
		k = 1
	}
	if k > n {
		k = n
	}

	rng := rand.New(rand.NewSource(seed))
	perm := rng.Perm(n)
	centroids := make([][]float32, k)
	for i := 0; i < k; i++ {
		centroids[i] = domain.CopyVector(vecs[perm[i]])
	}

	assign := make([]int, n)
	for i := range assign {
		assign[i] = -1
	}

	for iter := 0; iter < kmeansMaxIterations; iter++ {
		changed := false
		for p, vec := range vecs {
			best := nearestTo(vec, centroids)
			if best != assign[p] {
				assign[p] = best
				changed = true
			}
		}
		if !changed {
			break
		}
		recenter(centroids, vecs, assign)
	}

	lists := make([][]int, k)
	for p, c := range assign {
		lists[c] = append(lists[c], p)
	}
	return &ivfState{builtLen: n, centroids: centroids, assign: assign, lists: lists}
}

// recenter replaces each centroid with the normalized mean of its members.
// A cluster that lost every member keeps its previous centroid.
func recenter(centroids [][]float32, vecs [][]float32, assign []int) {
	dim := len(centroids[0])
	sums := make([][]float64, len(centroids))
	counts := make([]int, len(centroids))
	for i := range sums {
		sums[i] = make([]float64, dim)
	}
	for p, c := range assign {
		counts[c]++
		for d, x := range vecs[p] {
			sums[c][d] += float64(x)
		}
	}
	for c := range centroids {
		if counts[c] == 0 {
			continue
		}
		mean := make([]float32, dim)
		for d := range mean {
			mean[d] = float32(sums[c][d] / float64(counts[c]))
		}
		centroids[c] = domain.Normalize(mean)
	}
}

func nearestTo(vec []float32, centroids [][]float32) int {
	best, bestDot := 0, math.Inf(-1)
	for c, centroid := range centroids {
		if d := domain.Dot(vec, centroid); d > bestDot {
			best, bestDot = c, d
		}
	}
	return best
}

// nearestCentroids returns the nprobe closest centroid indexes to q,
// closest first, ties by ascending index.
func (s *ivfState) nearestCentroids(q []float32, nprobe int) []int {
	type scored struct {
		c   int
		dot float64
	}
	all := make([]scored, len(s.centroids))
	for c, centroid := range s.centroids {
		all[c] = scored{c: c, dot: domain.Dot(q, centroid)}
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].dot != all[j].dot {
			return all[i].dot > all[j].dot
		}
		return all[i].c < all[j].c
	})
	if nprobe > len(all) {
		nprobe = len(all)
	}
	out := make([]int, nprobe)
	for i := 0; i < nprobe; i++ {
		out[i] = all[i].c
	}
	return out
}

// insertPos assigns a new position to its nearest centroid.
func (s *ivfState) insertPos(p int, vec []float32) {
	c := nearestTo(vec, s.centroids)
	if p == len(s.assign) {
		s.assign = append(s.assign, c)
	} else {
		s.assign[p] = c
	}
	s.lists[c] = append(s.lists[c], p)
}

// updatePos reassigns an existing position after its vector changed.
func (s *ivfState) updatePos(p int, vec []float32) {
	s.dropFromList(p)
	c := nearestTo(vec, s.centroids)
	s.assign[p] = c
	s.lists[c] = append(s.lists[c], p)
}

// removeSwap mirrors the index's swap-delete: position p is removed and the
// element formerly at position last now lives at p.
func (s *ivfState) removeSwap(p, last int) {
	s.dropFromList(p)
	if p != last {
		c := s.assign[last]
		for i, member := range s.lists[c] {
			if member == last {
				s.lists[c][i] = p
				break
			}
		}
		s.assign[p] = c
	}
	s.assign = s.assign[:last]
}

func (s *ivfState) dropFromList(p int) {
	c := s.assign[p]
	members := s.lists[c]
	for i, member := range members {
		if member == p {
			members[i] = members[len(members)-1]
			s.lists[c] = members[:len(members)-1]
			return
		}
	}
}

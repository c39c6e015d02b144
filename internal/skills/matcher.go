package skills

import (
	"context"
	"fmt"
	"sort"

	"github.com/hirelens/matchdex/internal/domain"
	"github.com/hirelens/matchdex/internal/domain/match"
	"github.com/hirelens/matchdex/internal/metrics"
)

// Config holds the cascade thresholds.
type Config struct {
	// FuzzyThreshold is the minimum Ratio (0..100] for a fuzzy match.
	FuzzyThreshold float64
	// SemanticThreshold is the minimum cosine similarity (0..1] for a
	// semantic match.
	SemanticThreshold float64
}

// DefaultConfig returns the standard thresholds.
func DefaultConfig() Config {
	return Config{FuzzyThreshold: 85, SemanticThreshold: 0.70}
}

// Validate checks threshold ranges.
func (c Config) Validate() error {
	if c.FuzzyThreshold <= 0 || c.FuzzyThreshold > 100 {
		return fmt.Errorf("fuzzy threshold %v out of (0,100]: %w", c.FuzzyThreshold, domain.ErrConfiguration)
	}
	if c.SemanticThreshold <= 0 || c.SemanticThreshold > 1 {
		return fmt.Errorf("semantic threshold %v out of (0,1]: %w", c.SemanticThreshold, domain.ErrConfiguration)
	}
	return nil
}

// Matcher resolves required skills against a candidate's skill set.
// A nil encoder disables the semantic tier.
type Matcher struct {
	aliases *Aliases
	cfg     Config
	enc     domain.Encoder
}

// NewMatcher creates a matcher. aliases may be nil for identity
// canonicalization, enc may be nil to run a three-tier cascade.
func NewMatcher(aliases *Aliases, cfg Config, enc domain.Encoder) (*Matcher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Matcher{aliases: aliases, cfg: cfg, enc: enc}, nil
}

// candidateSkill pairs a candidate skill with its precomputed forms.
type candidateSkill struct {
	original   string
	normalized string
	canonical  string
}

// MatchSkills resolves required skills in declaration order through the
// cascade. Each candidate skill satisfies at most one requirement; leftover
// candidate skills land in the deduplicated, sorted bonus list.
//
// When semantic is true and the encoder fails mid-cascade, the remaining
// requirements are resolved without the semantic tier and the encoder error
// is returned alongside a still-valid report. Context cancellation aborts
// with a zero report.
func (m *Matcher) MatchSkills(ctx context.Context, required []domain.RequiredSkill, candidate []domain.Skill, semantic bool) (match.SkillReport, error) {
	cands := prepare(candidate, m.aliases)
	used := make([]bool, len(cands))

	var (
		matched []match.SkillMatch
		missing []string
		pending []int // indexes into required that tiers 1-3 did not resolve
	)

	for i, req := range required {
		nr := Normalize(req.Name)
		if sm, ci, ok := m.matchLexical(req, nr, cands, used); ok {
			matched = append(matched, sm)
			used[ci] = true
			metrics.SkillMatchTierTotal.WithLabelValues(string(sm.Tier())).Inc()
			continue
		}
		pending = append(pending, i)
	}

	var degraded error
	if len(pending) > 0 && semantic && m.enc != nil {
		semMatched, still, usedOut, err := m.matchSemantic(ctx, required, pending, cands, used)
		switch {
		case err != nil && ctx.Err() != nil:
			return match.SkillReport{}, err
		case err != nil:
			degraded = err
		default:
			used = usedOut
			for _, sm := range semMatched {
				matched = append(matched, sm)
				metrics.SkillMatchTierTotal.WithLabelValues(string(sm.Tier())).Inc()
			}
			pending = still
		}
	}
	// Only unmatched must-haves count as gaps; an unmatched nice-to-have
	// already costs its share of the skill score denominator.
	for _, i := range pending {
		if required[i].MustHave {
			missing = append(missing, required[i].Name)
		}
	}

	// Lexical and semantic passes each keep declaration order, but their
	// interleaving is lost; restore it for a stable report.
	order := make(map[string]int, len(required))
	for i, r := range required {
		order[r.Name] = i
	}
	sort.SliceStable(matched, func(a, b int) bool {
		return order[matched[a].Required()] < order[matched[b].Required()]
	})

	return match.NewSkillReport(matched, missing, bonusSkills(cands, used)), degraded
}

// matchLexical runs the exact, alias and fuzzy tiers for one requirement
// over the not-yet-consumed candidate skills.
func (m *Matcher) matchLexical(req domain.RequiredSkill, nr string, cands []candidateSkill, used []bool) (match.SkillMatch, int, bool) {
	for i, c := range cands {
		if !used[i] && c.normalized == nr {
			return match.NewSkillMatch(req.Name, c.original, match.MatchExact, 1.0, req.MustHave), i, true
		}
	}

	canon := m.aliases.Canonical(nr)
	for i, c := range cands {
		if !used[i] && c.canonical == canon {
			return match.NewSkillMatch(req.Name, c.original, match.MatchAlias, 1.0, req.MustHave), i, true
		}
	}

	// cands is sorted by normalized name, so keeping only strict
	// improvements resolves ratio ties toward the smaller name.
	bestRatio := 0.0
	bestIdx := -1
	for i, c := range cands {
		if used[i] {
			continue
		}
		r := Ratio(nr, c.normalized)
		if r < m.cfg.FuzzyThreshold {
			continue
		}
		if r > bestRatio {
			bestRatio = r
			bestIdx = i
		}
	}
	if bestIdx >= 0 {
		return match.NewSkillMatch(req.Name, cands[bestIdx].original, match.MatchFuzzy, bestRatio/100, req.MustHave), bestIdx, true
	}

	return match.SkillMatch{}, -1, false
}

// matchSemantic embeds the pending requirement names and every candidate
// skill name, then resolves pending requirements in order by cosine
// similarity over the not-yet-consumed candidates, consuming each winner.
// The consumed set is returned rather than mutated so a mid-pass failure
// leaves the caller's state untouched.
func (m *Matcher) matchSemantic(ctx context.Context, required []domain.RequiredSkill, pending []int, cands []candidateSkill, used []bool) ([]match.SkillMatch, []int, []bool, error) {
	free := 0
	for i := range cands {
		if !used[i] {
			free++
		}
	}
	if free == 0 {
		return nil, pending, used, nil
	}

	texts := make([]string, 0, len(pending)+len(cands))
	for _, i := range pending {
		texts = append(texts, Normalize(required[i].Name))
	}
	for _, c := range cands {
		texts = append(texts, c.normalized)
	}

	vectors, err := embedAll(ctx, m.enc, texts)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("embed skill names: %w", err)
	}
	reqVecs := vectors[:len(pending)]
	candVecs := vectors[len(pending):]

	consumed := make([]bool, len(used))
	copy(consumed, used)

	var matched []match.SkillMatch
	var still []int
	for pi, ri := range pending {
		// Similarity ties resolve toward the smaller name via sort order.
		bestCos := 0.0
		bestIdx := -1
		for ci, cv := range candVecs {
			if consumed[ci] {
				continue
			}
			cos, cerr := domain.CosineSimilarity(reqVecs[pi], cv)
			if cerr != nil {
				return nil, nil, nil, cerr
			}
			if cos < m.cfg.SemanticThreshold {
				continue
			}
			if cos > bestCos {
				bestCos = cos
				bestIdx = ci
			}
		}
		if bestIdx < 0 {
			still = append(still, ri)
			continue
		}
		consumed[bestIdx] = true
		req := required[ri]
		matched = append(matched, match.NewSkillMatch(req.Name, cands[bestIdx].original, match.MatchSemantic, bestCos, req.MustHave))
	}
	return matched, still, consumed, nil
}

func embedAll(ctx context.Context, enc domain.Encoder, texts []string) ([][]float32, error) {
	if be, ok := enc.(domain.BatchEncoder); ok {
		res, err := be.BatchEncode(ctx, texts)
		if err != nil {
			return nil, err
		}
		return res.Vectors, nil
	}
	res, err := domain.BatchFallback(ctx, enc, texts)
	if err != nil {
		return nil, err
	}
	return res.Vectors, nil
}

func prepare(candidate []domain.Skill, aliases *Aliases) []candidateSkill {
	out := make([]candidateSkill, 0, len(candidate))
	seen := make(map[string]bool, len(candidate))
	for _, s := range candidate {
		n := Normalize(s.Name)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, candidateSkill{
			original:   s.Name,
			normalized: n,
			canonical:  aliases.Canonical(n),
		})
	}
	// Stable scan order regardless of profile ordering.
	sort.Slice(out, func(i, j int) bool { return out[i].normalized < out[j].normalized })
	return out
}

func bonusSkills(cands []candidateSkill, used []bool) []string {
	var bonus []string
	for i, c := range cands {
		if !used[i] {
			bonus = append(bonus, c.original)
		}
	}
	sort.Strings(bonus)
	return bonus
}

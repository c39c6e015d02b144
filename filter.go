package matchdex

// Filter narrows a ranked report. Conditions combine with AND; zero fields
// pass everything. Tier and percentile stay as computed over the full pool,
// so filtering never reshuffles ranks. A nil *Filter keeps every result.
type Filter struct {
	MinScore *float64 `json:"min_score,omitempty"`
	MaxScore *float64 `json:"max_score,omitempty"`
	Tiers    []Tier   `json:"tiers,omitempty"`
	// RequiredSkills keeps results whose skill report matched every named
	// requirement.
	RequiredSkills []string `json:"required_skills,omitempty"`
	// MinYears and MaxYears bound total known experience. Candidates whose
	// duration is unknown fail the bound: they cannot be proven inside it.
	MinYears *float64 `json:"min_years,omitempty"`
	MaxYears *float64 `json:"max_years,omitempty"`
	// MinEducation is a degree level name, same names as
	// EducationEntry.Level. Empty means no bound.
	MinEducation    string `json:"min_education,omitempty"`
	ExcludeDegraded bool   `json:"exclude_degraded,omitempty"`
}

// FilterBuilder assembles a Filter fluently:
//
//	f := matchdex.NewFilter().
//		MinScore(50).
//		Tiers(matchdex.TierS, matchdex.TierA).
//		RequireSkill("go").
//		Build()
type FilterBuilder struct {
	f Filter
}

// NewFilter starts an empty filter builder.
func NewFilter() *FilterBuilder {
	return &FilterBuilder{}
}

// MinScore keeps results scoring at least v.
func (b *FilterBuilder) MinScore(v float64) *FilterBuilder {
	b.f.MinScore = &v
	return b
}

// MaxScore keeps results scoring at most v.
func (b *FilterBuilder) MaxScore(v float64) *FilterBuilder {
	b.f.MaxScore = &v
	return b
}

// Tiers keeps results in any of the given tiers, replacing an earlier set.
func (b *FilterBuilder) Tiers(tiers ...Tier) *FilterBuilder {
	b.f.Tiers = append([]Tier(nil), tiers...)
	return b
}

// RequireSkill keeps results whose skill report matched the named
// requirement. Repeated calls accumulate.
func (b *FilterBuilder) RequireSkill(name string) *FilterBuilder {
	b.f.RequiredSkills = append(b.f.RequiredSkills, name)
	return b
}

// MinYears keeps candidates with at least v years of known experience.
func (b *FilterBuilder) MinYears(v float64) *FilterBuilder {
	b.f.MinYears = &v
	return b
}

// MaxYears keeps candidates with at most v years of known experience.
func (b *FilterBuilder) MaxYears(v float64) *FilterBuilder {
	b.f.MaxYears = &v
	return b
}

// MinEducation keeps candidates holding at least the named degree level.
func (b *FilterBuilder) MinEducation(level string) *FilterBuilder {
	b.f.MinEducation = level
	return b
}

// ExcludeDegraded drops results scored without the semantic factor.
func (b *FilterBuilder) ExcludeDegraded() *FilterBuilder {
	b.f.ExcludeDegraded = true
	return b
}

// Build returns the assembled filter. The builder stays usable; Build
// returns a copy.
func (b *FilterBuilder) Build() *Filter {
	f := b.f
	return &f
}

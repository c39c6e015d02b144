package skills

import (
	"fmt"
	"sort"

	"github.com/hirelens/matchdex/internal/domain"
)

// Aliases maps skill name variants to one canonical form. Lookup is
// symmetric: two names are alias-equal when they resolve to the same
// canonical name.
type Aliases struct {
	canonical map[string]string // normalized variant -> canonical
}

// NewAliases builds an alias table from canonical -> variants. Variant names
// are normalized before insertion. A variant claimed by two different
// canonicals is a configuration error.
func NewAliases(table map[string][]string) (*Aliases, error) {
	a := &Aliases{canonical: make(map[string]string)}

	// Deterministic insertion order so conflict errors are stable.
	canons := make([]string, 0, len(table))
	for canon := range table {
		canons = append(canons, canon)
	}
	sort.Strings(canons)

	for _, canon := range canons {
		nc := Normalize(canon)
		if nc == "" {
			return nil, fmt.Errorf("empty canonical skill name: %w", domain.ErrConfiguration)
		}
		if err := a.add(nc, nc); err != nil {
			return nil, err
		}
		for _, variant := range table[canon] {
			nv := Normalize(variant)
			if nv == "" {
				return nil, fmt.Errorf("empty alias for %q: %w", canon, domain.ErrConfiguration)
			}
			if err := a.add(nv, nc); err != nil {
				return nil, err
			}
		}
	}
	return a, nil
}

func (a *Aliases) add(variant, canon string) error {
	if existing, ok := a.canonical[variant]; ok && existing != canon {
		return fmt.Errorf("alias %q maps to both %q and %q: %w",
			variant, existing, canon, domain.ErrConfiguration)
	}
	a.canonical[variant] = canon
	return nil
}

// Canonical resolves a normalized name to its canonical form. Names outside
// the table canonicalize to themselves.
func (a *Aliases) Canonical(normalized string) string {
	if a == nil {
		return normalized
	}
	if canon, ok := a.canonical[normalized]; ok {
		return canon
	}
	return normalized
}

// FromPairs builds an alias table from flat variant -> canonical pairs, the
// shape alias configuration arrives in.
func FromPairs(pairs map[string]string) (*Aliases, error) {
	table := make(map[string][]string, len(pairs))
	for variant, canon := range pairs {
		table[canon] = append(table[canon], variant)
	}
	return NewAliases(table)
}

// Merge overlays other on top of a, returning a new table. Conflicting
// variants are an error, mirroring NewAliases.
func (a *Aliases) Merge(other *Aliases) (*Aliases, error) {
	merged := &Aliases{canonical: make(map[string]string, len(a.canonical)+len(other.canonical))}
	for v, c := range a.canonical {
		merged.canonical[v] = c
	}

	variants := make([]string, 0, len(other.canonical))
	for v := range other.canonical {
		variants = append(variants, v)
	}
	sort.Strings(variants)

	for _, v := range variants {
		if err := merged.add(v, other.canonical[v]); err != nil {
			return nil, err
		}
	}
	return merged, nil
}

// DefaultAliases returns the built-in alias table covering common skill name
// variants seen in resumes and vacancy texts.
func DefaultAliases() *Aliases {
	a, err := NewAliases(map[string][]string{
		"javascript":    {"js", "ecmascript"},
		"typescript":    {"ts"},
		"python":        {"py", "python3"},
		"go":            {"golang"},
		"c#":            {"csharp", "c sharp"},
		"c++":           {"cpp", "cplusplus"},
		"kubernetes":    {"k8s"},
		"postgresql":    {"postgres", "pgsql"},
		"mysql":         {"my sql"},
		"mongodb":       {"mongo"},
		"elasticsearch": {"elastic search", "es"},
		"amazon web services": {"aws"},
		"google cloud platform": {"gcp", "google cloud"},
		"microsoft azure":       {"azure"},
		"machine learning":      {"ml"},
		"natural language processing": {"nlp"},
		"continuous integration":      {"ci", "ci/cd", "cicd"},
		"infrastructure as code":      {"iac"},
		"react":      {"reactjs", "react.js"},
		"vue":        {"vuejs", "vue.js"},
		"angular":    {"angularjs"},
		"node.js":    {"node", "nodejs"},
		"ruby on rails": {"rails", "ror"},
		".net":       {"dotnet", "dot net"},
		"html":       {"html5"},
		"css":        {"css3"},
		"sql server": {"mssql", "ms sql"},
		"terraform":  {"tf"},
		"docker":     {"docker engine"},
	})
	if err != nil {
		// The built-in table is static and conflict-free.
		panic(fmt.Sprintf("skills: default alias table invalid: %v", err))
	}
	return a
}

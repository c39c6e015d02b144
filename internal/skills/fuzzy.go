package skills

import (
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// Ratio scores the similarity of two normalized names on a 0..100 scale:
// 100*(1 - distance/longest). Two empty strings score 100.
func Ratio(a, b string) float64 {
	if a == b {
		return 100
	}
	longest := utf8.RuneCountInString(a)
	if n := utf8.RuneCountInString(b); n > longest {
		longest = n
	}
	if longest == 0 {
		return 100
	}
	d := levenshtein.ComputeDistance(a, b)
	return 100 * (1 - float64(d)/float64(longest))
}

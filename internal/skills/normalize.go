// Package skills resolves required skills against candidate skills through
// a four-tier cascade: exact, alias, fuzzy, then semantic. Higher tiers are
// cheaper and more precise; the first tier producing a match wins.
package skills

import "strings"

// edgePunct is trimmed from name boundaries. Symbols that carry meaning in
// technology names (#, +, ., /) stay untouched.
const edgePunct = ",;:!?\"'()[]{}"

// Normalize folds a skill name to its comparison form: lowercase, repeated
// inner whitespace collapsed, stray punctuation trimmed from the edges.
func Normalize(name string) string {
	n := strings.Join(strings.Fields(strings.ToLower(name)), " ")
	return strings.Trim(n, edgePunct)
}

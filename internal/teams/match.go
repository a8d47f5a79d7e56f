package teams

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// NormalizeName folds a display name for comparison: NFKC-normalized,
// trimmed, lower-cased.
func NormalizeName(s string) string {
	return strings.ToLower(strings.TrimSpace(norm.NFKC.String(s)))
}

// MatchName finds the first candidate matching the query. Comparison is
// against the normalized form; substring unless exact is requested. The
// first match in enumeration order wins.
func MatchName(candidates []string, query string, exact bool) (string, bool) {
	q := NormalizeName(query)
	if q == "" {
		return "", false
	}
	for _, name := range candidates {
		n := NormalizeName(name)
		if exact {
			if n == q {
				return name, true
			}
			continue
		}
		if strings.Contains(n, q) {
			return name, true
		}
	}
	return "", false
}

// Dedupe returns the names with duplicates removed, preserving
// first-seen order.
func Dedupe(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, name := range names {
		key := NormalizeName(name)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, name)
	}
	return out
}

package indexing

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fold normalizes text for matching: lower case, diacritics stripped and
// final sigma mapped to σ. "Φέτα" and "φετα" fold to the same string.
func Fold(s string) string {
	// transform chains carry state and are not safe for concurrent use
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	folded = strings.ToLower(folded)
	return strings.ReplaceAll(folded, "ς", "σ")
}

// Matches reports whether any search field of e contains the already
// folded query. The empty query matches every entry.
func Matches(e Entry, foldedQuery string) bool {
	if foldedQuery == "" {
		return true
	}
	for _, field := range e.SearchFields() {
		if field != "" && strings.Contains(Fold(field), foldedQuery) {
			return true
		}
	}
	return false
}

// Filter returns the entries matching query, in their original order.
func Filter(entries []Entry, query string) []Entry {
	q := Fold(query)
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if Matches(e, q) {
			out = append(out, e)
		}
	}
	return out
}

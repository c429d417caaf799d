// Package textnorm folds user text into the lowercase, accent-free form used
// for region and trigger word lookups.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize lowercases s and strips diacritics (á→a, ç→c, ...) by NFKD
// decomposition followed by removal of combining marks.
func Normalize(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, strings.ToLower(s))
	if err != nil {
		return strings.ToLower(s)
	}
	return folded
}

// Fields splits lowercased s on whitespace and returns the distinct words
func Fields(s string) map[string]struct{} {
	words := strings.Fields(strings.ToLower(s))
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

// Title upper-cases the first letter of every word, treating any
// non-letter as a word boundary ("riacho fundo ii" → "Riacho Fundo Ii").
func Title(s string) string {
	// Casers keep state, so one is built per call
	return cases.Title(language.BrazilianPortuguese).String(s)
}

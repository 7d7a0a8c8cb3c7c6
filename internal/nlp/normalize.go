// Package nlp contains the pure text-processing pieces of the decision
// engine: normalization, intent detection and product matching. Nothing
// here performs I/O.
package nlp

import (
	"regexp"
	"strings"
)

var (
	nonAlnumRe    = regexp.MustCompile(`[^a-zа-я0-9\s]+`)
	whitespaceRe  = regexp.MustCompile(`\s+`)
	numberTokenRe = regexp.MustCompile(`\b\d{1,4}\b`)
	numberWideRe  = regexp.MustCompile(`\b\d{1,6}\b`)
)

// Normalize lowercases the input, folds ё to е, collapses everything
// outside the latin/cyrillic/digit alphabet into single spaces and
// trims the result. Idempotent.
func Normalize(s string) string {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, "ё", "е")
	s = nonAlnumRe.ReplaceAllString(s, " ")
	s = whitespaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// Tokenize splits normalized text into word-like units, dropping
// anything shorter than two characters.
func Tokenize(s string) []string {
	var out []string
	for _, p := range strings.Split(Normalize(s), " ") {
		if len([]rune(p)) >= 2 {
			out = append(out, p)
		}
	}
	return out
}

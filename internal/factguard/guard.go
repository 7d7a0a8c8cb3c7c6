// Package factguard vets externally generated answers against known
// facts before they may replace a template answer. It exists to stop a
// generator from fabricating stock numbers.
package factguard

import (
	"regexp"
	"strings"

	"go.uber.org/zap"
)

var numberRe = regexp.MustCompile(`\d+(?:[.,]\d+)?`)

// Hedging language that disqualifies a generated answer outright.
var defaultBanned = []string{"возможно", "примерно", "скорее всего"}

// ExtractNumbers returns every numeric substring, decimal fractions
// included, in order of appearance.
func ExtractNumbers(text string) []string {
	return numberRe.FindAllString(text, -1)
}

// Guard validates candidate answers.
type Guard struct {
	banned []string
	logger *zap.Logger
}

// New builds a guard with the default banned-phrase list.
func New(logger *zap.Logger) *Guard {
	return &Guard{banned: defaultBanned, logger: logger}
}

// Vet returns the candidate if it passes every check, otherwise the
// fallback verbatim. A candidate fails when it introduces a number
// absent from the facts, contains a banned phrase, or is empty.
func (g *Guard) Vet(candidate, facts, fallback string) string {
	known := make(map[string]struct{})
	for _, n := range ExtractNumbers(facts) {
		known[n] = struct{}{}
	}
	for _, n := range ExtractNumbers(candidate) {
		if _, ok := known[n]; !ok {
			g.logger.Warn("generated answer introduced an unknown number", zap.String("number", n))
			return fallback
		}
	}

	low := strings.ToLower(candidate)
	for _, w := range g.banned {
		if strings.Contains(low, w) {
			g.logger.Warn("generated answer used banned phrasing", zap.String("phrase", w))
			return fallback
		}
	}

	trimmed := strings.TrimSpace(candidate)
	if trimmed == "" {
		g.logger.Warn("generated answer was empty")
		return fallback
	}
	return trimmed
}

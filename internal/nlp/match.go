package nlp

import (
	"sort"
	"strings"

	"github.com/spec-kit/support-bot/internal/domain"
)

// Scoring weights for ranking catalog candidates against a query.
const (
	scoreWholeQueryInName = 60
	scoreTokenOverlap     = 12
	scoreTokenSubstring   = 4
)

const shortlistSize = 5

// BestMatch scores and ranks candidate products against the raw query.
// It returns the best candidate and up to five ranked alternatives for
// disambiguation. Ties keep the store's original ordering. When the
// query yields no tokens the store order is trusted as-is.
func BestMatch(q string, rows []domain.Product) (*domain.Product, []domain.Product) {
	if len(rows) == 0 {
		return nil, nil
	}

	qt := Tokenize(q)
	if len(qt) == 0 {
		best := rows[0]
		return &best, shortlist(rows)
	}

	qn := Normalize(q)
	qset := make(map[string]struct{}, len(qt))
	for _, t := range qt {
		qset[t] = struct{}{}
	}

	scored := make([]domain.Product, len(rows))
	copy(scored, rows)
	scores := make(map[string]int, len(rows))
	for _, r := range scored {
		scores[r.SKU] = scoreProduct(qn, qset, qt, r)
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scores[scored[i].SKU] > scores[scored[j].SKU]
	})

	best := scored[0]
	return &best, shortlist(scored)
}

// NeedsDisambiguation implements the clarifying-question rule: short or
// vague queries are unreliable discriminators against a catalog, so two
// or more surviving candidates force a question instead of an answer.
func NeedsDisambiguation(q string, shortlist []domain.Product, intent domain.Intent) bool {
	if len(shortlist) < 2 {
		return false
	}
	if len([]rune(Normalize(q))) <= 4 {
		return true
	}
	return intent == domain.IntentGeneral || intent == domain.IntentPolicy
}

// ExpandQueries derives up to eight sub-queries from text that produced
// no direct catalog hits: the joined token set, each token on its own
// (first five) and up to three standalone numeric substrings.
func ExpandQueries(q string) []string {
	var toks []string
	for _, t := range Tokenize(q) {
		if len([]rune(t)) >= 3 {
			toks = append(toks, t)
		}
	}

	var out []string
	if len(toks) > 0 {
		out = append(out, strings.Join(toks, " "))
		n := len(toks)
		if n > 5 {
			n = 5
		}
		out = append(out, toks[:n]...)
	}

	nums := numberWideRe.FindAllString(Normalize(q), -1)
	if len(nums) > 3 {
		nums = nums[:3]
	}
	out = append(out, nums...)

	seen := make(map[string]struct{}, len(out))
	res := make([]string, 0, len(out))
	for _, s := range out {
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		res = append(res, s)
	}
	if len(res) > 8 {
		res = res[:8]
	}
	return res
}

func scoreProduct(qn string, qset map[string]struct{}, qt []string, r domain.Product) int {
	nn := Normalize(r.Name)
	score := 0

	if qn != "" && strings.Contains(nn, qn) {
		score += scoreWholeQueryInName
	}

	nset := make(map[string]struct{})
	for _, t := range Tokenize(r.Name) {
		nset[t] = struct{}{}
	}
	for t := range qset {
		if _, ok := nset[t]; ok {
			score += scoreTokenOverlap
		}
	}

	for _, t := range qt {
		if strings.Contains(nn, t) {
			score += scoreTokenSubstring
		}
	}
	return score
}

func shortlist(rows []domain.Product) []domain.Product {
	n := len(rows)
	if n > shortlistSize {
		n = shortlistSize
	}
	return append([]domain.Product{}, rows[:n]...)
}

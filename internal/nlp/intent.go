package nlp

import (
	"strconv"
	"strings"

	"github.com/spec-kit/support-bot/internal/domain"
)

var greetingWords = []string{
	"привет", "здравствуйте", "добрый", "доброго", "доброе", "хай", "hello",
	"спасибо", "благодарю",
}

// Keyword groups checked in priority order. The first group with a hit
// wins; need_qty is special-cased because it also requires a parsed
// quantity.
var (
	qtyWords      = []string{"сколько", "количество", "ск-ко"}
	inStockWords  = []string{"есть", "налич", "в наличии", "есть ли"}
	priceWords    = []string{"цена", "сто", "сколько стоит", "почем"}
	deliveryWords = []string{"доставка", "когда придет", "когда будет", "привез", "срок", "приход"}
	policyWords   = []string{"гарант", "возврат", "обмен", "брак", "не работает", "полом"}
	acquireWords  = []string{"надо", "нужно", "хочу", "возьму", "беру", "закажу", "заказать", "куплю", "купить"}
)

// IsGreeting recognizes greetings and thanks so they can short-circuit
// to a canned reply before classification runs.
func IsGreeting(q string) bool {
	return containsAny(Normalize(q), greetingWords)
}

// RequestedQty extracts the first positive integer quantity from the
// text. The second return value is false when no usable number exists.
func RequestedQty(q string) (int, bool) {
	m := numberTokenRe.FindString(Normalize(q))
	if m == "" {
		return 0, false
	}
	n, err := strconv.Atoi(m)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// DetectIntent maps free text onto one of the fixed intents using
// ordered keyword matching.
func DetectIntent(q string) domain.Intent {
	qn := Normalize(q)

	switch {
	case containsAny(qn, qtyWords):
		return domain.IntentQty
	case containsAny(qn, inStockWords):
		return domain.IntentInStock
	case containsAny(qn, priceWords):
		return domain.IntentPrice
	case containsAny(qn, deliveryWords):
		return domain.IntentDelivery
	case containsAny(qn, policyWords):
		return domain.IntentPolicy
	}

	if _, ok := RequestedQty(q); ok && containsAny(qn, acquireWords) {
		return domain.IntentNeedQty
	}
	return domain.IntentGeneral
}

func containsAny(haystack string, needles []string) bool {
	for _, w := range needles {
		if strings.Contains(haystack, w) {
			return true
		}
	}
	return false
}

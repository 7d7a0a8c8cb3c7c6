package nlp

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spec-kit/support-bot/internal/domain"
)

func TestDetectIntent(t *testing.T) {
	cases := []struct {
		in   string
		want domain.Intent
	}{
		{"сколько осталось на складе", domain.IntentQty},
		{"есть ли в наличии nokia", domain.IntentInStock},
		{"цена на чехол", domain.IntentPrice},
		{"почем зарядка", domain.IntentPrice},
		{"когда придет товар", domain.IntentDelivery},
		{"какой срок поставки", domain.IntentDelivery},
		{"какая гарантия", domain.IntentPolicy},
		{"хочу вернуть, брак", domain.IntentPolicy},
		{"надо 5 штук", domain.IntentNeedQty},
		{"куплю 20", domain.IntentNeedQty},
		{"nokia 1280", domain.IntentGeneral},
		{"чехол синий", domain.IntentGeneral},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, DetectIntent(tc.in), "input %q", tc.in)
	}
}

func TestDetectIntentKeywordPriority(t *testing.T) {
	// "сколько стоит" carries both a quantity and a price keyword; the
	// quantity group is checked first and wins.
	assert.Equal(t, domain.IntentQty, DetectIntent("сколько стоит айфон"))
}

func TestDetectIntentNeedQtyRequiresBothSignals(t *testing.T) {
	// Acquisition wording without a number is a generic question.
	assert.Equal(t, domain.IntentGeneral, DetectIntent("надо много"))
	// A number without acquisition wording is a generic question too.
	assert.Equal(t, domain.IntentGeneral, DetectIntent("5 синих"))
}

func TestRequestedQty(t *testing.T) {
	n, ok := RequestedQty("надо 15 шт")
	assert.True(t, ok)
	assert.Equal(t, 15, n)

	n, ok = RequestedQty("возьму 2 или 3")
	assert.True(t, ok)
	assert.Equal(t, 2, n)

	_, ok = RequestedQty("без числа")
	assert.False(t, ok)

	// Five digits and more look like model numbers, not quantities.
	_, ok = RequestedQty("закажу 12345")
	assert.False(t, ok)
}

func TestIsGreeting(t *testing.T) {
	assert.True(t, IsGreeting("Здравствуйте!"))
	assert.True(t, IsGreeting("привет, бот"))
	assert.True(t, IsGreeting("Спасибо"))
	assert.False(t, IsGreeting("цена nokia"))
	assert.False(t, IsGreeting(""))
}

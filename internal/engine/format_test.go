package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spec-kit/support-bot/internal/domain"
)

func price(v float64) *float64 { return &v }

func TestFormatPrice(t *testing.T) {
	assert.Equal(t, "нет", FormatPrice(nil))
	assert.Equal(t, "1100 гр.", FormatPrice(price(1100)))
	assert.Equal(t, "99,50 гр.", FormatPrice(price(99.5)))
	assert.Equal(t, "0 гр.", FormatPrice(price(0)))
	// Sub-cent noise rounds away before formatting.
	assert.Equal(t, "10 гр.", FormatPrice(price(10.004)))
	assert.Equal(t, "10,01 гр.", FormatPrice(price(10.006)))
}

func TestProductLine(t *testing.T) {
	p := domain.Product{Name: "Nokia 1280", Price: price(1100)}
	assert.Equal(t, "Nokia 1280 - 1100 гр.", ProductLine(p))

	p.Price = nil
	assert.Equal(t, "Nokia 1280 - нет", ProductLine(p))
}

func TestPublicQty(t *testing.T) {
	assert.Equal(t, "0", PublicQty(-2))
	assert.Equal(t, "0", PublicQty(0))
	assert.Equal(t, "7", PublicQty(7))
	assert.Equal(t, "10", PublicQty(10))
	assert.Equal(t, "Больше 10", PublicQty(11))
	assert.Equal(t, "Больше 10", PublicQty(5000))
}

func TestTicketSummary(t *testing.T) {
	found := []domain.Product{{Name: "Nokia 1280", Price: price(1100), Qty: 3, InTransit: 2, LeadTimeDays: 7}}

	s := TicketSummary("telegram", "почем nokia", found, "Nokia 1280 - 1100 гр.")
	assert.Contains(t, s, "Help,telegram, вопрос клиента: почем nokia")
	assert.Contains(t, s, "- Nokia 1280 - 1100 гр.; остаток 3; в пути 2; lead 7")
	assert.Contains(t, s, "Ответ бота клиенту: Nokia 1280 - 1100 гр.")
	assert.Contains(t, s, "Поставьте + если берете в работу.")

	s = TicketSummary("telegram", "странный вопрос", nil, "ответ")
	assert.Contains(t, s, "В базе не найдено совпадений.")
}

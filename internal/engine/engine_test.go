package engine

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/support-bot/internal/domain"
	"github.com/spec-kit/support-bot/internal/settings"
)

type fakeCatalog struct {
	rows    []domain.Product
	err     error
	queries []string
}

func (f *fakeCatalog) Search(_ context.Context, query string, _ bool, _ int) ([]domain.Product, error) {
	f.queries = append(f.queries, query)
	if f.err != nil {
		return nil, f.err
	}
	return f.rows, nil
}

type fakeGenerator struct {
	text string
	err  error
}

func (f fakeGenerator) Generate(context.Context, string, string) (string, error) {
	return f.text, f.err
}

var noonUTC = time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

func newTestEngine(cat Catalog, values map[string]string, gen Generator, now time.Time) *Engine {
	svc := settings.NewService(settings.NewMemoryStore(values), zap.NewNop())
	return New(Dependencies{
		Catalog:   cat,
		Settings:  svc,
		Generator: gen,
		Logger:    zap.NewNop(),
		Now:       func() time.Time { return now },
	})
}

func nokia(qty int) domain.Product {
	return domain.Product{SKU: "N1280", Name: "Nokia 1280", Qty: qty, Price: price(1100)}
}

func TestHandleEmptyText(t *testing.T) {
	e := newTestEngine(&fakeCatalog{}, nil, nil, noonUTC)

	d := e.Handle(context.Background(), "telegram", "   ", domain.ModeAI)
	assert.True(t, d.Empty())
}

func TestHandleGreeting(t *testing.T) {
	e := newTestEngine(&fakeCatalog{}, nil, nil, noonUTC)

	d := e.Handle(context.Background(), "telegram", "Здравствуйте!", domain.ModeAI)
	assert.Equal(t, ReplyGreeting, d.ReplyText)
	assert.False(t, d.TicketNeeded)
}

func TestHandleOperatorModeAlwaysEscalates(t *testing.T) {
	e := newTestEngine(&fakeCatalog{rows: []domain.Product{nokia(3)}}, nil, nil, noonUTC)

	d := e.Handle(context.Background(), "telegram", "почем nokia 1280", domain.ModeOperator)
	assert.Equal(t, ReplyForwarded, d.ReplyText)
	assert.True(t, d.TicketNeeded)
	assert.Contains(t, d.TicketSummary, "вопрос клиента: почем nokia 1280")
}

func TestHandleUniqueMatchAnswersPrice(t *testing.T) {
	cat := &fakeCatalog{rows: []domain.Product{nokia(3)}}
	e := newTestEngine(cat, nil, nil, noonUTC)

	d := e.Handle(context.Background(), "telegram", "nokia 1280", domain.ModeAI)
	assert.Equal(t, "Nokia 1280 - 1100 гр.", d.ReplyText)
	assert.False(t, d.TicketNeeded)
	assert.False(t, d.NotifyMain)
	assert.False(t, d.NotifyAdmin)
}

func TestHandleNoMatchEscalates(t *testing.T) {
	cat := &fakeCatalog{}
	e := newTestEngine(cat, nil, nil, noonUTC)

	d := e.Handle(context.Background(), "telegram", "чехол nokia", domain.ModeAI)
	assert.Equal(t, ReplyForwarded, d.ReplyText)
	assert.True(t, d.TicketNeeded)
	assert.Contains(t, d.TicketSummary, "В базе не найдено совпадений.")
	// The lookup widened: name-only, everywhere, then derived sub-queries.
	assert.GreaterOrEqual(t, len(cat.queries), 3)
}

func TestHandleCatalogFaultEscalates(t *testing.T) {
	cat := &fakeCatalog{err: errors.New("connection refused")}
	e := newTestEngine(cat, nil, nil, noonUTC)

	d := e.Handle(context.Background(), "telegram", "nokia 1280", domain.ModeAI)
	assert.Equal(t, ReplyForwarded, d.ReplyText)
	assert.True(t, d.TicketNeeded)
}

func TestHandleShortQueryAsksToClarify(t *testing.T) {
	cat := &fakeCatalog{rows: []domain.Product{
		{SKU: "A", Name: "Зарядка micro-USB", Price: price(120)},
		{SKU: "B", Name: "Зарядка type-C", Price: price(150)},
		{SKU: "C", Name: "Зарядка магнитная", Price: price(300)},
	}}
	e := newTestEngine(cat, nil, nil, noonUTC)

	d := e.Handle(context.Background(), "telegram", "зу", domain.ModeAI)
	assert.Contains(t, d.ReplyText, "Уточните")
	assert.Contains(t, d.ReplyText, "1. ")
	assert.Contains(t, d.ReplyText, "3. ")
	assert.True(t, d.NotifyMain)
	assert.NotEmpty(t, d.MainMessage)
	assert.False(t, d.TicketNeeded)
}

func TestHandlePolicyOffHoursEscalates(t *testing.T) {
	threeAM := time.Date(2026, 8, 28, 3, 0, 0, 0, time.UTC)
	cat := &fakeCatalog{rows: []domain.Product{nokia(3)}}
	e := newTestEngine(cat, nil, nil, threeAM)

	d := e.Handle(context.Background(), "telegram", "какая гарантия на nokia 1280", domain.ModeAI)
	assert.Equal(t, ReplyPolicyOffHours, d.ReplyText)
	assert.True(t, d.TicketNeeded)
	assert.Contains(t, d.TicketSummary, "Nokia 1280")
}

func TestHandlePolicyWithinHoursAnswers(t *testing.T) {
	cat := &fakeCatalog{rows: []domain.Product{nokia(3)}}
	e := newTestEngine(cat, nil, nil, noonUTC)

	d := e.Handle(context.Background(), "telegram", "какая гарантия на nokia 1280", domain.ModeAI)
	assert.Equal(t, "Nokia 1280 - 1100 гр.", d.ReplyText)
	assert.False(t, d.TicketNeeded)
}

func TestHandleInStock(t *testing.T) {
	e := newTestEngine(&fakeCatalog{rows: []domain.Product{nokia(3)}}, nil, nil, noonUTC)
	d := e.Handle(context.Background(), "telegram", "есть ли nokia 1280 в наличии", domain.ModeAI)
	assert.Equal(t, ReplyInStockYes, d.ReplyText)

	e = newTestEngine(&fakeCatalog{rows: []domain.Product{nokia(0)}}, nil, nil, noonUTC)
	d = e.Handle(context.Background(), "telegram", "есть ли nokia 1280 в наличии", domain.ModeAI)
	assert.Equal(t, ReplyInStockNo, d.ReplyText)
}

func TestHandleQtyCapsPublicCount(t *testing.T) {
	e := newTestEngine(&fakeCatalog{rows: []domain.Product{nokia(25)}}, nil, nil, noonUTC)

	d := e.Handle(context.Background(), "telegram", "сколько осталось nokia 1280", domain.ModeAI)
	assert.Equal(t, "Больше 10", d.ReplyText)
}

func TestHandleNeedQtySufficient(t *testing.T) {
	e := newTestEngine(&fakeCatalog{rows: []domain.Product{nokia(5)}}, nil, nil, noonUTC)

	d := e.Handle(context.Background(), "telegram", "надо 3 штуки nokia 1280", domain.ModeAI)
	assert.Equal(t, ReplyQtyAvailable, d.ReplyText)
	assert.False(t, d.NotifyAdmin)
}

func TestHandleNeedQtyInsufficientPagesAdmin(t *testing.T) {
	e := newTestEngine(&fakeCatalog{rows: []domain.Product{nokia(3)}}, nil, nil, noonUTC)

	d := e.Handle(context.Background(), "telegram", "надо 15 штук nokia 1280", domain.ModeAI)
	assert.Equal(t, "К сожалению, такого количества нет. В наличии 3.", d.ReplyText)
	require.True(t, d.NotifyAdmin)
	assert.Contains(t, d.AdminMessage, "крупный запрос")
	assert.Contains(t, d.AdminMessage, "Клиент хочет: 15 шт.")
	assert.Contains(t, d.AdminMessage, "Nokia 1280")
}

func TestHandleNeedQtyBelowThresholdSkipsAdmin(t *testing.T) {
	values := map[string]string{settings.KeyLargeOrderQty: "50"}
	e := newTestEngine(&fakeCatalog{rows: []domain.Product{nokia(3)}}, values, nil, noonUTC)

	d := e.Handle(context.Background(), "telegram", "надо 15 штук nokia 1280", domain.ModeAI)
	assert.False(t, d.NotifyAdmin)
}

func TestHandleDelivery(t *testing.T) {
	inStock := nokia(3)
	e := newTestEngine(&fakeCatalog{rows: []domain.Product{inStock}}, nil, nil, noonUTC)
	d := e.Handle(context.Background(), "telegram", "когда придет nokia 1280", domain.ModeAI)
	assert.Equal(t, ReplyDeliveryInStock, d.ReplyText)

	incoming := nokia(0)
	incoming.InTransit = 2
	incoming.LeadTimeDays = 7
	e = newTestEngine(&fakeCatalog{rows: []domain.Product{incoming}}, nil, nil, noonUTC)
	d = e.Handle(context.Background(), "telegram", "когда придет nokia 1280", domain.ModeAI)
	assert.Contains(t, d.ReplyText, "через 7,10 дней")

	gone := nokia(0)
	e = newTestEngine(&fakeCatalog{rows: []domain.Product{gone}}, nil, nil, noonUTC)
	d = e.Handle(context.Background(), "telegram", "когда придет nokia 1280", domain.ModeAI)
	assert.Equal(t, ReplyRestockUnknown, d.ReplyText)
}

func TestHandleGeneratorRephraseVetted(t *testing.T) {
	cat := &fakeCatalog{rows: []domain.Product{nokia(3)}}

	// Grounded rephrase passes the guard and replaces the template.
	gen := fakeGenerator{text: "Nokia 1280 стоит 1100 гр., берите."}
	e := newTestEngine(cat, nil, gen, noonUTC)
	d := e.Handle(context.Background(), "telegram", "nokia 1280", domain.ModeAI)
	assert.Equal(t, "Nokia 1280 стоит 1100 гр., берите.", d.ReplyText)

	// A fabricated number falls back to the template verbatim.
	gen = fakeGenerator{text: "Nokia 1280 стоит 999 гр."}
	e = newTestEngine(cat, nil, gen, noonUTC)
	d = e.Handle(context.Background(), "telegram", "nokia 1280", domain.ModeAI)
	assert.Equal(t, "Nokia 1280 - 1100 гр.", d.ReplyText)

	// Hedging language falls back too.
	gen = fakeGenerator{text: "Возможно, Nokia 1280 есть"}
	e = newTestEngine(cat, nil, gen, noonUTC)
	d = e.Handle(context.Background(), "telegram", "nokia 1280", domain.ModeAI)
	assert.Equal(t, "Nokia 1280 - 1100 гр.", d.ReplyText)
}

func TestHandleGeneratorFaultKeepsTemplate(t *testing.T) {
	cat := &fakeCatalog{rows: []domain.Product{nokia(3)}}
	gen := fakeGenerator{err: errors.New("timeout")}
	e := newTestEngine(cat, nil, gen, noonUTC)

	d := e.Handle(context.Background(), "telegram", "nokia 1280", domain.ModeAI)
	assert.Equal(t, "Nokia 1280 - 1100 гр.", d.ReplyText)
}

func TestHandleClarifyListIsNumbered(t *testing.T) {
	cat := &fakeCatalog{rows: []domain.Product{
		{SKU: "A", Name: "Зарядка micro-USB", Price: price(120)},
		{SKU: "B", Name: "Зарядка type-C", Price: price(150)},
	}}
	e := newTestEngine(cat, nil, nil, noonUTC)

	d := e.Handle(context.Background(), "telegram", "зу", domain.ModeAI)
	lines := strings.Split(d.ReplyText, "\n")
	require.GreaterOrEqual(t, len(lines), 3)
	assert.True(t, strings.HasPrefix(lines[1], "1. "))
	assert.True(t, strings.HasPrefix(lines[2], "2. "))
}

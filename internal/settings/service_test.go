package settings

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/support-bot/internal/domain"
)

func newService(values map[string]string) *Service {
	return NewService(NewMemoryStore(values), zap.NewNop())
}

func TestReplyMode(t *testing.T) {
	ctx := context.Background()

	assert.Equal(t, domain.ModeAI, newService(nil).ReplyMode(ctx))
	assert.Equal(t, domain.ModeOperator, newService(map[string]string{KeyReplyMode: "operator"}).ReplyMode(ctx))
	assert.Equal(t, domain.ModeTriggers, newService(map[string]string{KeyReplyMode: " Triggers "}).ReplyMode(ctx))
	assert.Equal(t, domain.ModeAI, newService(map[string]string{KeyReplyMode: "whatever"}).ReplyMode(ctx))
}

func TestLargeOrderThreshold(t *testing.T) {
	ctx := context.Background()

	assert.Equal(t, 10, newService(nil).LargeOrderThreshold(ctx))
	assert.Equal(t, 25, newService(map[string]string{KeyLargeOrderQty: "25"}).LargeOrderThreshold(ctx))
	assert.Equal(t, 10, newService(map[string]string{KeyLargeOrderQty: "abc"}).LargeOrderThreshold(ctx))
	assert.Equal(t, 10, newService(map[string]string{KeyLargeOrderQty: "-5"}).LargeOrderThreshold(ctx))
}

func TestWithinWorkHours(t *testing.T) {
	ctx := context.Background()
	at := func(hh, mm int) time.Time {
		return time.Date(2026, 8, 28, hh, mm, 0, 0, time.UTC)
	}

	svc := newService(nil) // defaults 09:00-18:00
	assert.True(t, svc.WithinWorkHours(ctx, at(12, 0)))
	assert.True(t, svc.WithinWorkHours(ctx, at(9, 0)))
	assert.True(t, svc.WithinWorkHours(ctx, at(18, 0)))
	assert.False(t, svc.WithinWorkHours(ctx, at(3, 0)))
	assert.False(t, svc.WithinWorkHours(ctx, at(18, 1)))

	night := newService(map[string]string{KeyWorkStart: "22:00", KeyWorkEnd: "06:00"})
	assert.True(t, night.WithinWorkHours(ctx, at(23, 0)))
	assert.True(t, night.WithinWorkHours(ctx, at(5, 30)))
	assert.False(t, night.WithinWorkHours(ctx, at(12, 0)))

	// Unparseable bounds never block the bot.
	broken := newService(map[string]string{KeyWorkStart: "9am"})
	assert.True(t, broken.WithinWorkHours(ctx, at(3, 0)))
}

func TestRosterParsing(t *testing.T) {
	ctx := context.Background()

	svc := newService(map[string]string{
		KeyOpsMain:  `[111, "222", "oops", true]`,
		KeyOpsAll:   `[333]`,
		KeyOpsAdmin: `not json`,
	})

	roster := svc.Roster(ctx)
	assert.Equal(t, []int64{111, 222}, roster.Main)
	assert.Equal(t, []int64{333}, roster.All)
	assert.Empty(t, roster.Admin)

	assert.True(t, roster.Contains(222))
	assert.True(t, roster.Contains(333))
	assert.False(t, roster.Contains(999))
}

func TestTriggers(t *testing.T) {
	ctx := context.Background()

	svc := newService(map[string]string{
		KeyTriggers: `[
			{"triggers": "Доставка, Оплата", "answer": "Доставка по городу бесплатно"},
			{"triggers": "ЁЛКА", "answer": "Сезонный товар"},
			{"triggers": "", "answer": "нет ключей"},
			{"triggers": "что-то", "answer": ""}
		]`,
	})

	rules := svc.Triggers(ctx)
	require.Len(t, rules, 2)
	assert.Equal(t, []string{"доставка", "оплата"}, rules[0].Triggers)
	assert.Equal(t, "Доставка по городу бесплатно", rules[0].Answer)
	assert.Equal(t, []string{"елка"}, rules[1].Triggers)
}

func TestTriggersMalformedJSON(t *testing.T) {
	svc := newService(map[string]string{KeyTriggers: `{broken`})
	assert.Empty(t, svc.Triggers(context.Background()))
}

func TestRawAndPut(t *testing.T) {
	ctx := context.Background()
	svc := newService(nil)

	assert.Equal(t, "fallback", svc.Raw(ctx, "missing", "fallback"))

	require.NoError(t, svc.Put(ctx, KeyReplyMode, "operator"))
	assert.Equal(t, "operator", svc.Raw(ctx, KeyReplyMode, "ai"))
}

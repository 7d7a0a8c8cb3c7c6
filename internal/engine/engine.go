// Package engine turns one inbound customer message into one
// Decision. It is deliberately pure with respect to transport: the only
// I/O happens through the injected catalog and settings capabilities,
// and no code path raises an error toward the caller. Ambiguous or
// unmatched input degrades to the canned escalation reply.
package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/support-bot/internal/domain"
	"github.com/spec-kit/support-bot/internal/factguard"
	"github.com/spec-kit/support-bot/internal/nlp"
	"github.com/spec-kit/support-bot/internal/settings"
)

// Reply templates.
const (
	ReplyGreeting = "Здравствуйте. Напишите название товара или модель. Я подскажу цену и наличие."

	ReplyForwarded = "Я бот программы автоответов. К сожалению, не могу дать ответ на ваш вопрос. " +
		"Я уже отправил ваш вопрос оператору, он ответит в рабочее время."

	ReplyPolicyOffHours = "Я бот программы автоответов. Я передал ваш вопрос оператору, он ответит в рабочее время."

	ReplyQtyAvailable = "Да, такое количество есть"

	ReplyInStockYes = "Да"
	ReplyInStockNo  = "Нет"

	ReplyDeliveryInStock = "Есть в наличии"
	ReplyRestockUnknown  = "Извините, товара нет в наличии. К сожалению, сейчас не могу сказать, будет ли он еще."

	clarifyHeader = "Уточните, какой вариант нужен. Ответьте номером из списка."
)

const searchLimit = 30

// Catalog is the read-only product store surface the engine consumes.
type Catalog interface {
	Search(ctx context.Context, query string, everywhere bool, limit int) ([]domain.Product, error)
}

// Generator produces a natural-language answer from prompts. Optional;
// answers pass the fact guard before reaching a customer.
type Generator interface {
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Engine is the decision builder.
type Engine struct {
	catalog  Catalog
	settings *settings.Service
	guard    *factguard.Guard
	gen      Generator
	logger   *zap.Logger
	now      func() time.Time
}

// Dependencies bundles engine collaborators.
type Dependencies struct {
	Catalog   Catalog
	Settings  *settings.Service
	Guard     *factguard.Guard
	Generator Generator
	Logger    *zap.Logger
	Now       func() time.Time
}

// New constructs the engine. Generator may be nil; Now defaults to
// time.Now.
func New(deps Dependencies) *Engine {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	guard := deps.Guard
	if guard == nil {
		guard = factguard.New(deps.Logger)
	}
	return &Engine{
		catalog:  deps.Catalog,
		settings: deps.Settings,
		guard:    guard,
		gen:      deps.Generator,
		logger:   deps.Logger,
		now:      now,
	}
}

// Handle produces the decision for one customer message.
func (e *Engine) Handle(ctx context.Context, platform, customerText string, mode domain.ReplyMode) domain.Decision {
	q := strings.TrimSpace(customerText)
	if q == "" {
		return domain.Decision{}
	}

	if nlp.IsGreeting(q) {
		return domain.Decision{ReplyText: ReplyGreeting}
	}

	if mode == domain.ModeOperator {
		return e.escalate(platform, q, nil)
	}

	within := e.settings.WithinWorkHours(ctx, e.now())
	intent := nlp.DetectIntent(q)
	requestedQty, hasQty := 0, false
	if intent == domain.IntentNeedQty {
		requestedQty, hasQty = nlp.RequestedQty(q)
	}

	rows := e.search(ctx, q)
	if len(rows) == 0 {
		return e.escalate(platform, q, nil)
	}

	best, top := nlp.BestMatch(q, rows)
	if best == nil {
		return e.escalate(platform, q, nil)
	}

	if nlp.NeedsDisambiguation(q, top, intent) {
		opts := make([]string, 0, len(top))
		for i, p := range top {
			opts = append(opts, fmt.Sprintf("%d. %s", i+1, ProductLine(p)))
		}
		txt := clarifyHeader + "\n" + strings.Join(opts, "\n")
		return domain.Decision{
			ReplyText:   txt,
			NotifyMain:  true,
			MainMessage: TicketSummary(platform, q, top, txt),
		}
	}

	if intent == domain.IntentPolicy && !within {
		return domain.Decision{
			ReplyText:     ReplyPolicyOffHours,
			TicketNeeded:  true,
			TicketSummary: TicketSummary(platform, q, []domain.Product{*best}, ReplyPolicyOffHours),
		}
	}

	txt := e.answer(intent, *best, requestedQty, hasQty)
	txt = e.maybeRephrase(ctx, mode, q, *best, txt)

	out := domain.Decision{ReplyText: txt}

	if intent == domain.IntentNeedQty && hasQty {
		if requestedQty >= e.settings.LargeOrderThreshold(ctx) {
			out.NotifyAdmin = true
			out.AdminMessage = AdminLargeOrder(platform, q, best, requestedQty, e.now())
		}
	}
	return out
}

// answer renders the intent-specific templated reply.
func (e *Engine) answer(intent domain.Intent, best domain.Product, requestedQty int, hasQty bool) string {
	switch intent {
	case domain.IntentPrice:
		return ProductLine(best)

	case domain.IntentInStock:
		if best.Qty > 0 {
			return ReplyInStockYes
		}
		return ReplyInStockNo

	case domain.IntentQty:
		return PublicQty(best.Qty)

	case domain.IntentNeedQty:
		switch {
		case hasQty && best.Qty >= requestedQty:
			return ReplyQtyAvailable
		case hasQty:
			return fmt.Sprintf("К сожалению, такого количества нет. В наличии %s.", PublicQty(best.Qty))
		default:
			return ProductLine(best)
		}

	case domain.IntentDelivery:
		if best.Qty > 0 {
			return ReplyDeliveryInStock
		}
		if best.InTransit > 0 && best.LeadTimeDays > 0 {
			return fmt.Sprintf(
				"Сейчас товара нет. Ориентировочно следующий приход через %d,%d дней. Напишите, я сообщу, когда появится.",
				best.LeadTimeDays, best.LeadTimeDays+3)
		}
		return ReplyRestockUnknown

	default:
		return ProductLine(best)
	}
}

// maybeRephrase lets the optional generator restate the template
// answer. The fact guard keeps fabricated numbers and hedging language
// out; on any violation or transport fault the template wins verbatim.
func (e *Engine) maybeRephrase(ctx context.Context, mode domain.ReplyMode, q string, best domain.Product, template string) string {
	if e.gen == nil || mode != domain.ModeAI {
		return template
	}

	facts := fmt.Sprintf("%s\nостаток %d, в пути %d, lead %d",
		ProductLine(best), best.Qty, best.InTransit, best.LeadTimeDays)
	system := "Ты оператор магазина. Перефразируй ответ вежливо, ничего не добавляя. " +
		"Используй только факты ниже.\n" + facts
	generated, err := e.gen.Generate(ctx, system, q+"\n\nОтвет: "+template)
	if err != nil {
		e.logger.Warn("generator failed, using template answer", zap.Error(err))
		return template
	}
	return e.guard.Vet(generated, facts+"\n"+template, template)
}

// escalate is the safe degradation path: a canned reply plus an
// escalation request carrying the full summary.
func (e *Engine) escalate(platform, q string, found []domain.Product) domain.Decision {
	return domain.Decision{
		ReplyText:     ReplyForwarded,
		TicketNeeded:  true,
		TicketSummary: TicketSummary(platform, q, found, ReplyForwarded),
	}
}

// search runs the widening catalog lookup: name-only first, then all
// fields, then up to eight derived sub-queries. Store faults degrade to
// an empty result so the caller escalates instead of failing.
func (e *Engine) search(ctx context.Context, q string) []domain.Product {
	rows := e.tryQuery(ctx, q, false)
	if len(rows) == 0 {
		rows = e.tryQuery(ctx, q, true)
	}
	if len(rows) == 0 {
		for _, qq := range nlp.ExpandQueries(q) {
			if rows = e.tryQuery(ctx, qq, true); len(rows) > 0 {
				break
			}
		}
	}
	return rows
}

func (e *Engine) tryQuery(ctx context.Context, q string, everywhere bool) []domain.Product {
	rows, err := e.catalog.Search(ctx, q, everywhere, searchLimit)
	if err != nil {
		e.logger.Error("catalog search failed", zap.String("query", q), zap.Error(err))
		return nil
	}
	return rows
}

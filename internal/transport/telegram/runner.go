package telegram

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/support-bot/internal/domain"
	"github.com/spec-kit/support-bot/internal/engine"
	"github.com/spec-kit/support-bot/internal/escalation"
	"github.com/spec-kit/support-bot/internal/observability"
	"github.com/spec-kit/support-bot/internal/settings"
)

const platformName = "telegram"

// Operator replies.
const (
	replyNoOpenTickets = "Нет активных запросов"
	replyClaimed       = "Взято в работу. Ticket %s. Платформа: %s"
)

// Gateway is the platform surface the runner drives.
type Gateway interface {
	Poll(ctx context.Context, offset int64) ([]Update, error)
	Send(ctx context.Context, chatID int64, text string) error
}

// Runner is the single background worker per bot instance: it polls
// for messages, routes operator claims, dispatches engine decisions
// and runs one escalation pass per cycle. No fault terminates the
// loop; it runs until Stop.
type Runner struct {
	gateway   Gateway
	engine    *engine.Engine
	store     *escalation.Store
	scheduler *escalation.Scheduler
	settings  *settings.Service
	cursor    CursorStore
	metrics   *observability.Metrics
	logger    *zap.Logger

	pollTimeout time.Duration
	idleSleep   time.Duration

	mu     sync.Mutex
	stopCh chan struct{}
	doneCh chan struct{}
	offset int64
}

// RunnerDependencies bundles runner collaborators.
type RunnerDependencies struct {
	Gateway     Gateway
	Engine      *engine.Engine
	Store       *escalation.Store
	Scheduler   *escalation.Scheduler
	Settings    *settings.Service
	Cursor      CursorStore
	Metrics     *observability.Metrics
	Logger      *zap.Logger
	PollTimeout time.Duration
	IdleSleep   time.Duration
}

// NewRunner constructs the runner. Cursor may be nil, in which case
// polling starts from offset zero every run.
func NewRunner(deps RunnerDependencies) *Runner {
	pollTimeout := deps.PollTimeout
	if pollTimeout <= 0 {
		pollTimeout = 25 * time.Second
	}
	idle := deps.IdleSleep
	if idle <= 0 {
		idle = 300 * time.Millisecond
	}
	return &Runner{
		gateway:     deps.Gateway,
		engine:      deps.Engine,
		store:       deps.Store,
		scheduler:   deps.Scheduler,
		settings:    deps.Settings,
		cursor:      deps.Cursor,
		metrics:     deps.Metrics,
		logger:      deps.Logger,
		pollTimeout: pollTimeout,
		idleSleep:   idle,
	}
}

// Start launches the loop on its own goroutine. Starting a running
// runner is a no-op.
func (r *Runner) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stopCh != nil {
		r.logger.Warn("transport loop already running")
		return
	}
	r.stopCh = make(chan struct{})
	r.doneCh = make(chan struct{})
	go r.loop(r.stopCh, r.doneCh)
	r.logger.Info("transport loop started")
}

// Stop requests a cooperative shutdown and waits for the loop to
// observe it. Shutdown latency is bounded by one poll timeout; an
// in-flight send is allowed to complete.
func (r *Runner) Stop() {
	r.mu.Lock()
	stopCh, doneCh := r.stopCh, r.doneCh
	r.stopCh, r.doneCh = nil, nil
	r.mu.Unlock()

	if stopCh == nil {
		return
	}
	close(stopCh)
	<-doneCh
	r.logger.Info("transport loop stopped")
}

// Running reports whether the loop is active.
func (r *Runner) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stopCh != nil
}

func (r *Runner) loop(stopCh <-chan struct{}, doneCh chan<- struct{}) {
	defer close(doneCh)

	ctx := context.Background()
	if r.cursor != nil {
		offset, err := r.cursor.Load(ctx)
		if err != nil {
			r.logger.Warn("poll cursor load failed, starting from zero", zap.Error(err))
		} else {
			r.offset = offset
		}
	}

	for {
		select {
		case <-stopCh:
			return
		default:
		}

		r.cycle(ctx)

		select {
		case <-stopCh:
			return
		case <-time.After(r.idleSleep):
		}
	}
}

// cycle performs one poll, processes every message, then runs the
// escalation pass regardless of whether anything arrived.
func (r *Runner) cycle(ctx context.Context) {
	pollCtx, cancel := context.WithTimeout(ctx, r.pollTimeout+10*time.Second)
	updates, err := r.gateway.Poll(pollCtx, r.offset)
	cancel()
	if err != nil {
		r.logger.Error("poll failed", zap.Error(err))
		r.metrics.RecordTransportFault("poll")
	}

	for _, u := range updates {
		if u.UpdateID >= r.offset {
			r.offset = u.UpdateID + 1
		}
		r.handleUpdate(ctx, u)
	}

	if len(updates) > 0 && r.cursor != nil {
		if err := r.cursor.Save(ctx, r.offset); err != nil {
			r.logger.Warn("poll cursor save failed", zap.Error(err))
		}
	}

	r.scheduler.Pass(ctx)
}

func (r *Runner) handleUpdate(ctx context.Context, u Update) {
	if u.Message == nil || u.Message.Chat.ID == 0 {
		return
	}
	chatID := u.Message.Chat.ID
	text := u.Message.Text

	if r.settings.Roster(ctx).Contains(chatID) {
		r.handleOperator(ctx, chatID, text)
		return
	}

	r.logger.Info("inbound customer message",
		zap.Int64("chat_id", chatID),
		zap.String("text", text))
	r.handleCustomer(ctx, chatID, text)
}

// handleOperator processes messages from roster chats: a bare "+"
// claims the oldest open ticket, anything else is ignored.
func (r *Runner) handleOperator(ctx context.Context, chatID int64, text string) {
	if strings.TrimSpace(text) != "+" {
		return
	}

	t := r.store.Claim(ctx, chatID)
	if t == nil {
		r.send(ctx, chatID, replyNoOpenTickets)
		return
	}
	r.send(ctx, chatID, fmt.Sprintf(replyClaimed, t.ID, t.Platform))
	r.logger.Info("ticket claimed",
		zap.String("ticket_id", t.ID),
		zap.Int64("operator_chat_id", chatID))
}

func (r *Runner) handleCustomer(ctx context.Context, chatID int64, text string) {
	mode := r.settings.ReplyMode(ctx)

	if mode == domain.ModeTriggers {
		r.answerFromTriggers(ctx, chatID, text)
		return
	}

	decision := r.engine.Handle(ctx, platformName, text, mode)

	if decision.ReplyText != "" {
		r.send(ctx, chatID, domain.BotPrefix(decision.ReplyText))
		r.metrics.RecordReply(string(mode))
	}

	roster := r.settings.Roster(ctx)

	if decision.NotifyAdmin && decision.AdminMessage != "" {
		r.sendAll(ctx, roster.Admin, decision.AdminMessage)
		r.logger.Info("admin notice sent")
	}

	if decision.NotifyMain && decision.MainMessage != "" {
		r.sendAll(ctx, roster.Main, decision.MainMessage)
		r.logger.Info("main operator notice sent without ticket")
	}

	if decision.TicketNeeded && decision.TicketSummary != "" {
		id := r.store.Create(ctx, platformName, chatID, text, decision.TicketSummary)
		r.logger.Warn("escalation ticket created", zap.String("ticket_id", id))
	}
}

// answerFromTriggers is the parallel reply mode: answers come from the
// configured keyword table only, escalating when nothing matches.
func (r *Runner) answerFromTriggers(ctx context.Context, chatID int64, text string) {
	if answer, ok := r.matchTrigger(ctx, text); ok {
		r.send(ctx, chatID, domain.BotPrefix(answer))
		r.metrics.RecordReply(string(domain.ModeTriggers))
		return
	}

	r.send(ctx, chatID, domain.BotPrefix(engine.ReplyForwarded))
	r.metrics.RecordReply(string(domain.ModeTriggers))

	summary := fmt.Sprintf(
		"Help,%s, триггеры не сработали. Вопрос клиента: %s\nОтвет бота клиенту: %s\nПоставьте + если берете в работу.",
		platformName, text, engine.ReplyForwarded)
	id := r.store.Create(ctx, platformName, chatID, text, summary)
	r.logger.Warn("escalation ticket created", zap.String("ticket_id", id))
}

func (r *Runner) matchTrigger(ctx context.Context, text string) (string, bool) {
	q := strings.ReplaceAll(strings.ToLower(text), "ё", "е")
	for _, rule := range r.settings.Triggers(ctx) {
		for _, key := range rule.Triggers {
			if strings.Contains(q, key) {
				return rule.Answer, true
			}
		}
	}
	return "", false
}

func (r *Runner) send(ctx context.Context, chatID int64, text string) {
	if err := r.gateway.Send(ctx, chatID, text); err != nil {
		r.logger.Error("send failed", zap.Int64("chat_id", chatID), zap.Error(err))
		r.metrics.RecordTransportFault("send")
	}
}

func (r *Runner) sendAll(ctx context.Context, chatIDs []int64, text string) {
	for _, id := range chatIDs {
		r.send(ctx, id, text)
	}
}

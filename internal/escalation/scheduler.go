package escalation

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/support-bot/internal/domain"
	"github.com/spec-kit/support-bot/internal/events"
	"github.com/spec-kit/support-bot/internal/settings"
)

// Escalation timing thresholds. Ages are measured from ticket
// creation, cooldowns from the last sent notification.
const (
	stage2Age      = 60 * time.Second
	stage2Cooldown = 60 * time.Second
	stage3Age      = 240 * time.Second
	stage3Cooldown = 180 * time.Second
	stage4Age      = 660 * time.Second
	giveUpAge      = 3600 * time.Second
)

// FinalCustomerNotice is the stage-4 message sent directly to the
// customer, guaranteeing a last reply within the escalation window.
const FinalCustomerNotice = "Извините, сейчас оператор занят. Как освободится главный оператор, он вам напишет."

// Messenger sends a message to one conversation, best effort.
type Messenger interface {
	Send(ctx context.Context, chatID int64, text string) error
}

// notification describes what a single stage transition wants sent.
// Empty Targets means the roster subset was empty: nothing is sent but
// the stage still advanced so the ticket cannot stall.
type notification struct {
	stage         int
	targets       []int64
	customerChat  int64
	toCustomer    bool
	text          string
	forceResolved bool
	ageSeconds    int64
}

// Scheduler runs the escalation pass. The roster is re-read from
// settings on every pass so membership edits apply immediately.
type Scheduler struct {
	store      *Store
	settings   *settings.Service
	messenger  Messenger
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        func() time.Time
}

// SchedulerDependencies bundles scheduler collaborators.
type SchedulerDependencies struct {
	Store      *Store
	Settings   *settings.Service
	Messenger  Messenger
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
	Now        func() time.Time
}

// NewScheduler constructs the scheduler. Now defaults to time.Now.
func NewScheduler(deps SchedulerDependencies) *Scheduler {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &Scheduler{
		store:      deps.Store,
		settings:   deps.Settings,
		messenger:  deps.Messenger,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
		now:        now,
	}
}

// Pass evaluates every open ticket against the timing schedule,
// applying at most one stage transition per ticket. Stage and
// timestamps are advanced under the store lock before anything is
// sent, so a stage can never fire twice within its cooldown window.
func (s *Scheduler) Pass(ctx context.Context) {
	roster := s.settings.Roster(ctx)
	now := s.now()

	for _, id := range s.store.OpenIDs() {
		n, ok := s.advance(id, roster, now)
		if !ok {
			continue
		}
		s.deliver(ctx, id, n)
	}
}

// advance applies the stage ladder to one ticket inside the store's
// critical section and reports what to send.
func (s *Scheduler) advance(id string, roster domain.Roster, now time.Time) (notification, bool) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	t, ok := s.store.tickets[id]
	if !ok || !t.Open() {
		return notification{}, false
	}

	age := now.Sub(t.CreatedAt)
	sinceLast := now.Sub(t.LastNotifiedAt)

	switch {
	case t.Stage == domain.StageNew && t.LastNotifiedAt.IsZero():
		return s.transition(t, domain.StageNotifiedMain, roster.Main, now), true

	case t.Stage == domain.StageNotifiedMain && age >= stage2Age && sinceLast >= stage2Cooldown:
		return s.transition(t, domain.StageNotifiedAll, roster.Broadcast(), now), true

	case t.Stage == domain.StageNotifiedAll && age >= stage3Age && sinceLast >= stage3Cooldown:
		return s.transition(t, domain.StageNotifiedAgain, roster.Broadcast(), now), true

	case t.Stage == domain.StageNotifiedAgain && age >= stage4Age:
		t.Stage = domain.StageCustomerFinal
		return notification{
			stage:        domain.StageCustomerFinal,
			toCustomer:   true,
			customerChat: t.CustomerChatID,
			text:         domain.BotPrefix(FinalCustomerNotice),
		}, true

	case age >= giveUpAge:
		t.Resolved = true
		return notification{
			stage:         t.Stage,
			targets:       roster.Admin,
			text:          t.Summary,
			forceResolved: true,
			ageSeconds:    int64(age.Seconds()),
		}, true
	}

	return notification{}, false
}

func (s *Scheduler) transition(t *domain.Ticket, stage int, targets []int64, now time.Time) notification {
	t.Stage = stage
	if len(targets) > 0 {
		t.LastNotifiedAt = now
	}
	return notification{stage: stage, targets: targets, text: t.Summary}
}

func (s *Scheduler) deliver(ctx context.Context, ticketID string, n notification) {
	for _, chatID := range n.targets {
		if err := s.messenger.Send(ctx, chatID, n.text); err != nil {
			s.logger.Error("escalation notification failed",
				zap.String("ticket_id", ticketID),
				zap.Int64("chat_id", chatID),
				zap.Error(err))
		}
	}
	if n.toCustomer {
		if err := s.messenger.Send(ctx, n.customerChat, n.text); err != nil {
			s.logger.Error("final customer notice failed",
				zap.String("ticket_id", ticketID),
				zap.Error(err))
		}
	}

	switch {
	case n.forceResolved:
		s.logger.Error("ticket force-resolved without reaction",
			zap.String("ticket_id", ticketID),
			zap.Int64("age_seconds", n.ageSeconds))
		s.publish(ctx, events.Event{
			Type:     events.EventTicketForceResolved,
			TicketID: ticketID,
			Payload:  events.TicketForceResolvedPayload{AgeSeconds: n.ageSeconds},
		})
	case n.toCustomer:
		s.logger.Error("ticket escalated to final customer notice",
			zap.String("ticket_id", ticketID))
		s.publish(ctx, events.Event{
			Type:     events.EventTicketEscalated,
			TicketID: ticketID,
			Payload:  events.TicketEscalatedPayload{Stage: n.stage, Targets: 1},
		})
	default:
		s.logger.Warn("ticket escalated",
			zap.String("ticket_id", ticketID),
			zap.Int("stage", n.stage),
			zap.Int("targets", len(n.targets)))
		s.publish(ctx, events.Event{
			Type:     events.EventTicketEscalated,
			TicketID: ticketID,
			Payload:  events.TicketEscalatedPayload{Stage: n.stage, Targets: len(n.targets)},
		})
	}
}

func (s *Scheduler) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, event)
}

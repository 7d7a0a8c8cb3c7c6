// Package escalation holds open tickets in memory and advances them
// through the timed notification schedule. Tickets do not survive a
// restart; resolution is a logical end-of-life, not deletion.
package escalation

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/support-bot/internal/domain"
	"github.com/spec-kit/support-bot/internal/events"
)

// Store owns all ticket state. Every mutation happens inside its
// mutex; Create, Claim and the scheduler's Advance are the only
// writers, so the critical sections below are the complete list of
// places ticket state can change.
type Store struct {
	mu         sync.Mutex
	tickets    map[string]*domain.Ticket
	dispatcher events.Dispatcher
	now        func() time.Time
}

// NewStore constructs the store. Dispatcher may be nil; Now defaults
// to time.Now.
func NewStore(dispatcher events.Dispatcher, now func() time.Time) *Store {
	if now == nil {
		now = time.Now
	}
	return &Store{
		tickets:    make(map[string]*domain.Ticket),
		dispatcher: dispatcher,
		now:        now,
	}
}

// Create registers a new unclaimed ticket and returns its id. It
// always succeeds.
func (s *Store) Create(ctx context.Context, platform string, customerChatID int64, customerText, summary string) string {
	now := s.now()
	id := fmt.Sprintf("%d-%s", now.Unix(), strings.ToUpper(uuid.NewString()[:8]))

	t := &domain.Ticket{
		ID:             id,
		Platform:       platform,
		CustomerChatID: customerChatID,
		CustomerText:   customerText,
		Summary:        summary,
		CreatedAt:      now,
		Stage:          domain.StageNew,
	}

	s.mu.Lock()
	s.tickets[id] = t
	s.mu.Unlock()

	s.publish(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: id,
		Payload: events.TicketCreatedPayload{
			Platform:       platform,
			SummaryPreview: preview(summary, 120),
		},
	})
	return id
}

// Claim atomically assigns the oldest unresolved, unclaimed ticket to
// the operator and returns a copy of it. A nil result means no
// eligible ticket exists, which is a normal empty outcome. A claimed
// ticket is excluded from all further escalation and future claims.
func (s *Store) Claim(ctx context.Context, operatorChatID int64) *domain.Ticket {
	s.mu.Lock()
	var oldest *domain.Ticket
	for _, t := range s.tickets {
		if !t.Open() {
			continue
		}
		if oldest == nil || t.CreatedAt.Before(oldest.CreatedAt) {
			oldest = t
		}
	}
	if oldest == nil {
		s.mu.Unlock()
		return nil
	}
	op := operatorChatID
	oldest.ClaimedBy = &op
	claimed := *oldest
	s.mu.Unlock()

	s.publish(ctx, events.Event{
		Type:     events.EventTicketClaimed,
		TicketID: claimed.ID,
		Payload:  events.TicketClaimedPayload{OperatorChatID: operatorChatID},
	})
	return &claimed
}

// OpenIDs returns ids of unresolved, unclaimed tickets ordered by
// creation time.
func (s *Store) OpenIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	open := make([]*domain.Ticket, 0, len(s.tickets))
	for _, t := range s.tickets {
		if t.Open() {
			open = append(open, t)
		}
	}
	sort.Slice(open, func(i, j int) bool {
		return open[i].CreatedAt.Before(open[j].CreatedAt)
	})

	ids := make([]string, len(open))
	for i, t := range open {
		ids[i] = t.ID
	}
	return ids
}

// Snapshot returns copies of all tickets ordered by creation time.
// Used by the ops surface; never hands out live pointers.
func (s *Store) Snapshot() []domain.Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.Ticket, 0, len(s.tickets))
	for _, t := range s.tickets {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// Get returns a copy of one ticket.
func (s *Store) Get(id string) (domain.Ticket, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tickets[id]
	if !ok {
		return domain.Ticket{}, false
	}
	return *t, true
}

func (s *Store) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func preview(body string, max int) string {
	body = strings.TrimSpace(body)
	runes := []rune(body)
	if len(runes) <= max {
		return body
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}

package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/support-bot/internal/events"
	"github.com/spec-kit/support-bot/internal/observability"
)

// AuditService records the ticket lifecycle: every created, claimed,
// escalated and force-resolved ticket lands in the structured log and
// the in-memory counters.
type AuditService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	metrics    *observability.Metrics
}

// NewAuditService creates the service.
func NewAuditService(dispatcher events.Dispatcher, logger *zap.Logger, metrics *observability.Metrics) *AuditService {
	return &AuditService{
		dispatcher: dispatcher,
		logger:     logger,
		metrics:    metrics,
	}
}

// RegisterHandlers subscribes to ticket lifecycle events.
func (a *AuditService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	a.dispatcher.Subscribe(events.EventTicketCreated, a.handleCreated)
	a.dispatcher.Subscribe(events.EventTicketClaimed, a.handleClaimed)
	a.dispatcher.Subscribe(events.EventTicketEscalated, a.handleEscalated)
	a.dispatcher.Subscribe(events.EventTicketForceResolved, a.handleForceResolved)
}

func (a *AuditService) handleCreated(_ context.Context, event events.Event) error {
	a.logger.Info("TicketCreated", zap.String("ticket_id", event.TicketID), zap.Any("payload", event.Payload))
	a.metrics.RecordTicketCreated()
	return nil
}

func (a *AuditService) handleClaimed(_ context.Context, event events.Event) error {
	a.logger.Info("TicketClaimed", zap.String("ticket_id", event.TicketID), zap.Any("payload", event.Payload))
	a.metrics.RecordClaim()
	return nil
}

func (a *AuditService) handleEscalated(_ context.Context, event events.Event) error {
	a.logger.Warn("TicketEscalated", zap.String("ticket_id", event.TicketID), zap.Any("payload", event.Payload))
	if payload, ok := event.Payload.(events.TicketEscalatedPayload); ok {
		a.metrics.RecordEscalation(payload.Stage)
	}
	return nil
}

func (a *AuditService) handleForceResolved(_ context.Context, event events.Event) error {
	a.logger.Error("TicketForceResolved", zap.String("ticket_id", event.TicketID), zap.Any("payload", event.Payload))
	a.metrics.RecordForceResolved()
	return nil
}

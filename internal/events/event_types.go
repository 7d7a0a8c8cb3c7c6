package events

import "time"

// EventType enumerates ticket lifecycle event identifiers.
type EventType string

const (
	EventTicketCreated       EventType = "ticket_created"
	EventTicketClaimed       EventType = "ticket_claimed"
	EventTicketEscalated     EventType = "ticket_escalated"
	EventTicketForceResolved EventType = "ticket_force_resolved"
)

// Event represents a ticket lifecycle event emitted by the escalation
// subsystem.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	Platform       string `json:"platform"`
	SummaryPreview string `json:"summary_preview"`
}

// TicketClaimedPayload payload.
type TicketClaimedPayload struct {
	OperatorChatID int64 `json:"operator_chat_id"`
}

// TicketEscalatedPayload payload.
type TicketEscalatedPayload struct {
	Stage   int `json:"stage"`
	Targets int `json:"targets"`
}

// TicketForceResolvedPayload payload.
type TicketForceResolvedPayload struct {
	AgeSeconds int64 `json:"age_seconds"`
}

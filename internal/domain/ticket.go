package domain

import "time"

// Escalation stage markers. A ticket moves strictly forward through
// these until it is claimed or resolved.
const (
	StageNew           = 0
	StageNotifiedMain  = 1
	StageNotifiedAll   = 2
	StageNotifiedAgain = 3
	StageCustomerFinal = 4
)

// Ticket is an unclaimed customer request awaiting human attention.
type Ticket struct {
	ID             string
	Platform       string
	CustomerChatID int64
	CustomerText   string
	Summary        string
	CreatedAt      time.Time
	ClaimedBy      *int64
	LastNotifiedAt time.Time
	Stage          int
	Resolved       bool
}

// Open reports whether the ticket is still eligible for escalation.
func (t *Ticket) Open() bool {
	return !t.Resolved && t.ClaimedBy == nil
}

// Age returns how long the ticket has existed at the given instant.
func (t *Ticket) Age(now time.Time) time.Duration {
	return now.Sub(t.CreatedAt)
}

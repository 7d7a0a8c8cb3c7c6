package observability

import (
	"strconv"
	"sync"
)

// Metrics provides basic in-memory counters for the bot lifecycle.
type Metrics struct {
	mu       sync.Mutex
	counters map[string]int64
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{counters: make(map[string]int64)}
}

// RecordReply counts one outbound customer reply per mode.
func (m *Metrics) RecordReply(mode string) {
	m.inc("replies|" + mode)
}

// RecordTicketCreated counts one escalation ticket.
func (m *Metrics) RecordTicketCreated() {
	m.inc("tickets_created")
}

// RecordClaim counts one successful operator claim.
func (m *Metrics) RecordClaim() {
	m.inc("tickets_claimed")
}

// RecordEscalation counts one stage notification.
func (m *Metrics) RecordEscalation(stage int) {
	m.inc("escalations|stage_" + strconv.Itoa(stage))
}

// RecordForceResolved counts one age-based force resolution.
func (m *Metrics) RecordForceResolved() {
	m.inc("tickets_force_resolved")
}

// RecordTransportFault counts one failed platform call per operation.
func (m *Metrics) RecordTransportFault(op string) {
	m.inc("transport_faults|" + op)
}

// Snapshot returns a copy of all counters.
func (m *Metrics) Snapshot() map[string]int64 {
	if m == nil {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]int64, len(m.counters))
	for k, v := range m.counters {
		out[k] = v
	}
	return out
}

func (m *Metrics) inc(key string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters[key]++
}

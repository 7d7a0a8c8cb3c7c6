package handlers

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-bot/internal/escalation"
	"github.com/spec-kit/support-bot/internal/observability"
	"github.com/spec-kit/support-bot/internal/settings"
	"github.com/spec-kit/support-bot/pkg/util"
)

// OpsHandler exposes the read/tune surface for operators: ticket
// snapshot, counters and the settings table. It never mutates ticket
// state.
type OpsHandler struct {
	store    *escalation.Store
	metrics  *observability.Metrics
	settings *settings.Service
}

// NewOpsHandler returns a new handler instance.
func NewOpsHandler(store *escalation.Store, metrics *observability.Metrics, settings *settings.Service) *OpsHandler {
	return &OpsHandler{store: store, metrics: metrics, settings: settings}
}

type ticketView struct {
	ID             string     `json:"id"`
	Platform       string     `json:"platform"`
	CustomerChatID int64      `json:"customer_chat_id"`
	CreatedAt      time.Time  `json:"created_at"`
	Stage          int        `json:"stage"`
	ClaimedBy      *int64     `json:"claimed_by,omitempty"`
	Resolved       bool       `json:"resolved"`
	LastNotifiedAt *time.Time `json:"last_notified_at,omitempty"`
}

// Tickets returns a snapshot of all tickets in creation order.
func (h *OpsHandler) Tickets(c *fiber.Ctx) error {
	snapshot := h.store.Snapshot()
	out := make([]ticketView, 0, len(snapshot))
	for _, t := range snapshot {
		view := ticketView{
			ID:             t.ID,
			Platform:       t.Platform,
			CustomerChatID: t.CustomerChatID,
			CreatedAt:      t.CreatedAt,
			Stage:          t.Stage,
			ClaimedBy:      t.ClaimedBy,
			Resolved:       t.Resolved,
		}
		if !t.LastNotifiedAt.IsZero() {
			ts := t.LastNotifiedAt
			view.LastNotifiedAt = &ts
		}
		out = append(out, view)
	}
	return c.JSON(fiber.Map{"tickets": out})
}

// Metrics returns the counter snapshot.
func (h *OpsHandler) Metrics(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"counters": h.metrics.Snapshot()})
}

// GetSetting returns one raw setting value.
func (h *OpsHandler) GetSetting(c *fiber.Ctx) error {
	key := strings.TrimSpace(c.Params("key"))
	if key == "" {
		return util.NewValidationError("setting key required", nil)
	}
	value := h.settings.Raw(c.UserContext(), key, c.Query("fallback"))
	return c.JSON(fiber.Map{"key": key, "value": value})
}

// PutSetting stores one raw setting value.
func (h *OpsHandler) PutSetting(c *fiber.Ctx) error {
	key := strings.TrimSpace(c.Params("key"))
	if key == "" {
		return util.NewValidationError("setting key required", nil)
	}

	var body struct {
		Value string `json:"value"`
	}
	if err := c.BodyParser(&body); err != nil {
		return util.NewValidationError("malformed body", nil)
	}
	if err := h.settings.Put(c.UserContext(), key, body.Value); err != nil {
		return util.NewInternalError(err)
	}
	return c.JSON(fiber.Map{"key": key, "value": body.Value})
}

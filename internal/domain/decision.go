package domain

import "strings"

// Intent classifies what the customer is asking about.
type Intent string

const (
	IntentQty      Intent = "qty"
	IntentInStock  Intent = "in_stock"
	IntentPrice    Intent = "price"
	IntentDelivery Intent = "delivery"
	IntentPolicy   Intent = "policy"
	IntentNeedQty  Intent = "need_qty"
	IntentGeneral  Intent = "general"
)

// ReplyMode selects how inbound customer messages are answered.
type ReplyMode string

const (
	ModeOperator ReplyMode = "operator"
	ModeTriggers ReplyMode = "triggers"
	ModeAI       ReplyMode = "ai"
)

// ParseReplyMode maps a raw settings value onto a known mode,
// defaulting to ModeAI.
func ParseReplyMode(raw string) ReplyMode {
	switch ReplyMode(raw) {
	case ModeOperator, ModeTriggers, ModeAI:
		return ReplyMode(raw)
	default:
		return ModeAI
	}
}

// Decision is the single output of the decision engine for one inbound
// message. Produced once, consumed once by the transport loop.
type Decision struct {
	ReplyText     string
	TicketNeeded  bool
	TicketSummary string
	NotifyMain    bool
	MainMessage   string
	NotifyAdmin   bool
	AdminMessage  string
}

// Empty reports whether the decision carries no action at all.
func (d Decision) Empty() bool {
	return d.ReplyText == "" && !d.TicketNeeded && !d.NotifyMain && !d.NotifyAdmin
}

// BotPrefix marks outbound customer text as coming from the bot.
// Empty text stays empty so nothing is sent.
func BotPrefix(text string) string {
	t := strings.TrimSpace(text)
	if t == "" {
		return ""
	}
	return "Bot:\n" + t
}

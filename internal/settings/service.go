// Package settings exposes typed access to the flat key/value
// configuration store. Values are re-read on every call, trading a
// small latency cost for immediate effect of configuration edits.
package settings

import (
	"context"
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/support-bot/internal/domain"
)

// Store is the narrow persistence surface the service consumes.
type Store interface {
	GetSetting(ctx context.Context, key, fallback string) (string, error)
	SetSetting(ctx context.Context, key, value string) error
}

// Setting keys shared with the inventory application.
const (
	KeyReplyMode     = "bot_answer_mode"
	KeyWorkStart     = "work_start_hhmm"
	KeyWorkEnd       = "work_end_hhmm"
	KeyLargeOrderQty = "large_order_qty"
	KeyOpsMain       = "ops_main_ids"
	KeyOpsAll        = "ops_all_ids"
	KeyOpsAdmin      = "ops_admin_ids"
	KeyTriggers      = "bot_triggers_json"
)

const defaultLargeOrderQty = 10

var hhmmRe = regexp.MustCompile(`^(\d{1,2}):(\d{2})$`)

// Service resolves bot settings. Malformed values are treated as
// defaults or empty collections, never as errors, so a bad edit in the
// settings table cannot take the bot down.
type Service struct {
	store  Store
	logger *zap.Logger
}

// NewService constructs the service.
func NewService(store Store, logger *zap.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// Raw fetches a raw value with a fallback.
func (s *Service) Raw(ctx context.Context, key, fallback string) string {
	val, err := s.store.GetSetting(ctx, key, fallback)
	if err != nil {
		s.logger.Warn("setting read failed", zap.String("key", key), zap.Error(err))
		return fallback
	}
	return val
}

// Put stores a raw value.
func (s *Service) Put(ctx context.Context, key, value string) error {
	return s.store.SetSetting(ctx, key, value)
}

// ReplyMode returns the configured answer mode.
func (s *Service) ReplyMode(ctx context.Context) domain.ReplyMode {
	return domain.ParseReplyMode(strings.ToLower(strings.TrimSpace(s.Raw(ctx, KeyReplyMode, "ai"))))
}

// LargeOrderThreshold returns the quantity at which a need_qty request
// additionally pages the admin roster.
func (s *Service) LargeOrderThreshold(ctx context.Context) int {
	raw := strings.TrimSpace(s.Raw(ctx, KeyLargeOrderQty, strconv.Itoa(defaultLargeOrderQty)))
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return defaultLargeOrderQty
	}
	return n
}

// WithinWorkHours reports whether the given instant falls inside the
// configured working window. Overnight windows (start after end) wrap
// midnight. Unparseable bounds count as always-inside.
func (s *Service) WithinWorkHours(ctx context.Context, now time.Time) bool {
	start, okStart := parseHHMM(s.Raw(ctx, KeyWorkStart, "09:00"))
	end, okEnd := parseHHMM(s.Raw(ctx, KeyWorkEnd, "18:00"))
	if !okStart || !okEnd {
		return true
	}

	minute := now.Hour()*60 + now.Minute()
	if start <= end {
		return start <= minute && minute <= end
	}
	return minute >= start || minute <= end
}

// Roster loads the three operator groups. Entries that are not integers
// are dropped.
func (s *Service) Roster(ctx context.Context) domain.Roster {
	return domain.Roster{
		Main:  s.chatIDs(ctx, KeyOpsMain),
		All:   s.chatIDs(ctx, KeyOpsAll),
		Admin: s.chatIDs(ctx, KeyOpsAdmin),
	}
}

// Triggers loads the keyword-to-answer table used in triggers mode.
// Invalid rows are dropped at this boundary and never reach the engine.
func (s *Service) Triggers(ctx context.Context) []domain.TriggerRule {
	raw := s.Raw(ctx, KeyTriggers, "[]")

	var rows []struct {
		Triggers string `json:"triggers"`
		Answer   string `json:"answer"`
	}
	if err := json.Unmarshal([]byte(raw), &rows); err != nil {
		s.logger.Warn("malformed trigger table", zap.Error(err))
		return nil
	}

	var out []domain.TriggerRule
	for _, row := range rows {
		answer := strings.TrimSpace(row.Answer)
		var keys []string
		for _, k := range strings.Split(row.Triggers, ",") {
			if k = strings.TrimSpace(k); k != "" {
				keys = append(keys, strings.ReplaceAll(strings.ToLower(k), "ё", "е"))
			}
		}
		if len(keys) == 0 || answer == "" {
			continue
		}
		out = append(out, domain.TriggerRule{Triggers: keys, Answer: answer})
	}
	return out
}

func (s *Service) chatIDs(ctx context.Context, key string) []int64 {
	raw := s.Raw(ctx, key, "[]")

	var entries []any
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		s.logger.Warn("malformed operator list", zap.String("key", key), zap.Error(err))
		return nil
	}

	var out []int64
	for _, e := range entries {
		switch v := e.(type) {
		case float64:
			out = append(out, int64(v))
		case string:
			if id, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64); err == nil {
				out = append(out, id)
			}
		}
	}
	return out
}

func parseHHMM(raw string) (minuteOfDay int, ok bool) {
	m := hhmmRe.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return 0, false
	}
	hh, _ := strconv.Atoi(m[1])
	mm, _ := strconv.Atoi(m[2])
	if hh > 23 || mm > 59 {
		return 0, false
	}
	return hh*60 + mm, true
}

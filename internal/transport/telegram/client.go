// Package telegram is the platform transport: a thin Bot API client,
// the long-poll runner that drives the decision engine and the
// escalation scheduler, and a redis-backed poll cursor.
package telegram

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/support-bot/internal/config"
)

const apiBase = "https://api.telegram.org/bot"

// Chat identifies a conversation.
type Chat struct {
	ID int64 `json:"id"`
}

// Message is an inbound message.
type Message struct {
	Chat Chat   `json:"chat"`
	Text string `json:"text"`
}

// Update is one entry from getUpdates.
type Update struct {
	UpdateID int64    `json:"update_id"`
	Message  *Message `json:"message"`
}

// Client calls the Telegram Bot API. All calls are synchronous with a
// bounded timeout and are never retried; failures are reported to the
// caller and logged there.
type Client struct {
	httpClient  *http.Client
	base        string
	pollTimeout int
	sendTimeout time.Duration
	logger      *zap.Logger
}

// NewClient builds the client for the configured bot token.
func NewClient(cfg config.TelegramConfig, logger *zap.Logger) *Client {
	return &Client{
		// Per-call deadlines are applied below; the poll deadline must
		// exceed the server-side long-poll timeout.
		httpClient:  &http.Client{},
		base:        apiBase + cfg.Token,
		pollTimeout: cfg.PollTimeoutSeconds,
		sendTimeout: cfg.SendTimeout(),
		logger:      logger,
	}
}

// Send posts one message to a conversation. Empty text is a no-op.
func (c *Client) Send(ctx context.Context, chatID int64, text string) error {
	if text == "" {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, c.sendTimeout)
	defer cancel()

	form := url.Values{}
	form.Set("chat_id", strconv.FormatInt(chatID, 10))
	form.Set("text", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/sendMessage",
		strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sendMessage: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 200))
		return fmt.Errorf("sendMessage HTTP %d: %s", resp.StatusCode, snippet)
	}
	return nil
}

// Poll long-polls for updates past the cursor offset.
func (c *Client) Poll(ctx context.Context, offset int64) ([]Update, error) {
	q := url.Values{}
	q.Set("timeout", strconv.Itoa(c.pollTimeout))
	q.Set("offset", strconv.FormatInt(offset, 10))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/getUpdates?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("getUpdates: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 200))
		return nil, fmt.Errorf("getUpdates HTTP %d: %s", resp.StatusCode, snippet)
	}

	var payload struct {
		OK     bool     `json:"ok"`
		Result []Update `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("getUpdates decode: %w", err)
	}
	if !payload.OK {
		return nil, fmt.Errorf("getUpdates ok=false")
	}
	return payload.Result, nil
}

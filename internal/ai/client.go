// Package ai is a minimal OpenAI-compatible chat-completions client
// used as the optional answer generator.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/support-bot/internal/config"
)

// Sentinel errors for the generator fault taxonomy.
var (
	ErrTimeout   = errors.New("generator request timed out")
	ErrMalformed = errors.New("generator returned a malformed payload")
)

// StatusError reports a non-success HTTP status from the provider.
type StatusError struct {
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("generator returned HTTP %d", e.Status)
}

// Client calls a chat-completions endpoint.
type Client struct {
	httpClient *http.Client
	apiKey     string
	baseURL    string
	model      string
	logger     *zap.Logger
}

// NewClient builds the client. Returns nil when no API key is
// configured so callers can treat the generator as absent.
func NewClient(cfg config.AIConfig, logger *zap.Logger) *Client {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil
	}
	timeout := cfg.RequestTimeout()
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		model:      cfg.Model,
		logger:     logger,
	}
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Generate sends the prompts and returns the first completion.
func (c *Client) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature: 0.2,
		MaxTokens:   500,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		var netErr interface{ Timeout() bool }
		if errors.As(err, &netErr) && netErr.Timeout() {
			return "", ErrTimeout
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return "", ErrTimeout
		}
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 280))
		c.logger.Error("generator request failed",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", snippet))
		return "", &StatusError{Status: resp.StatusCode}
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", ErrMalformed
	}
	if len(parsed.Choices) == 0 {
		return "", ErrMalformed
	}
	return parsed.Choices[0].Message.Content, nil
}

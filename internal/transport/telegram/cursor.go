package telegram

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

const cursorKey = "support_bot:telegram:offset"

// CursorStore persists the poll offset so a restart resumes from the
// last confirmed update instead of replaying the backlog.
type CursorStore interface {
	Load(ctx context.Context) (int64, error)
	Save(ctx context.Context, offset int64) error
}

// RedisCursor keeps the offset in Redis.
type RedisCursor struct {
	client *redis.Client
}

// NewRedisCursor builds a cursor store over the shared client.
func NewRedisCursor(client *redis.Client) *RedisCursor {
	return &RedisCursor{client: client}
}

// Load returns the saved offset, or zero when none exists.
func (c *RedisCursor) Load(ctx context.Context) (int64, error) {
	offset, err := c.client.Get(ctx, cursorKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return offset, nil
}

// Save stores the offset.
func (c *RedisCursor) Save(ctx context.Context, offset int64) error {
	return c.client.Set(ctx, cursorKey, offset, 0).Err()
}

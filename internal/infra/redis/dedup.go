package redis

import (
	"context"
	"fmt"
	"time"
)

// DefaultDedupTTL covers Telegram's redelivery window for unacknowledged updates.
const DefaultDedupTTL = 10 * time.Minute

// UpdateDeduper remembers processed update ids.
type UpdateDeduper struct {
	client RedisClient
	ttl    time.Duration
}

func NewUpdateDeduper(client RedisClient, ttl time.Duration) *UpdateDeduper {
	if ttl <= 0 {
		ttl = DefaultDedupTTL
	}
	return &UpdateDeduper{client: client, ttl: ttl}
}

// Seen marks updateID and reports whether it had been marked before.
func (d *UpdateDeduper) Seen(ctx context.Context, updateID int) (bool, error) {
	fresh, err := d.client.SetNX(ctx, fmt.Sprintf("tg_update:%d", updateID), 1, d.ttl)
	if err != nil {
		return false, err
	}
	return !fresh, nil
}

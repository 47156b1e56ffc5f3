package pocketbase

import (
	"context"
	"fmt"
	"strconv"

	"telegram-registration-bot/internal/domain"
	"telegram-registration-bot/internal/domain/model"
	"telegram-registration-bot/internal/domain/ports/repository"
)

const collCounters = "counters"

// Ensure interface compliance
var _ repository.CounterRepository = (*CounterRepo)(nil)

// CounterRepo keeps counter values string-encoded, as the store has always held them.
type CounterRepo struct {
	client *Client
}

func NewCounterRepo(client *Client) *CounterRepo {
	return &CounterRepo{client: client}
}

type counterRecord struct {
	ID    string  `json:"id,omitempty"`
	Key   string  `json:"key"`
	Value flexInt `json:"value"`
}

type counterWrite struct {
	Key   string `json:"key,omitempty"`
	Value string `json:"value"`
}

func (r *CounterRepo) Get(ctx context.Context, key string) (*model.Counter, error) {
	var items []counterRecord
	if err := r.client.List(ctx, collCounters, Eq("key", key), &items); err != nil {
		return nil, fmt.Errorf("Get counter %s: %w", key, err)
	}
	if len(items) == 0 {
		return nil, domain.ErrNotFound
	}
	return &model.Counter{ID: items[0].ID, Key: items[0].Key, Value: int64(items[0].Value)}, nil
}

func (r *CounterRepo) Create(ctx context.Context, c *model.Counter) error {
	var out createdRecord
	body := counterWrite{Key: c.Key, Value: strconv.FormatInt(c.Value, 10)}
	if err := r.client.Create(ctx, collCounters, body, &out); err != nil {
		return fmt.Errorf("Create counter %s: %w", c.Key, err)
	}
	c.ID = out.ID
	return nil
}

func (r *CounterRepo) Update(ctx context.Context, c *model.Counter) error {
	body := counterWrite{Value: strconv.FormatInt(c.Value, 10)}
	if err := r.client.Update(ctx, collCounters, c.ID, body, nil); err != nil {
		return fmt.Errorf("Update counter %s: %w", c.Key, err)
	}
	return nil
}

package repository

import (
	"context"

	"telegram-registration-bot/internal/domain/model"
)

// CounterRepository stores named sequences. Get returns domain.ErrNotFound for unknown keys.
type CounterRepository interface {
	Get(ctx context.Context, key string) (*model.Counter, error)
	Create(ctx context.Context, c *model.Counter) error
	Update(ctx context.Context, c *model.Counter) error
}

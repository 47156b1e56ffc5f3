package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"telegram-registration-bot/internal/domain"
	"telegram-registration-bot/internal/domain/model"
	"telegram-registration-bot/internal/domain/ports/repository"
	"telegram-registration-bot/internal/infra/logging"
)

const (
	orderLockKey    = "lock:order_counter"
	minOrderLockTTL = 10 * time.Second
	orderLockRetry  = 50 * time.Millisecond
)

// OrderLockTTL sizes the counter lock for one read and one write against a store
// whose calls may each take up to storeTimeout.
func OrderLockTTL(storeTimeout time.Duration) time.Duration {
	if ttl := 3 * storeTimeout; ttl > minOrderLockTTL {
		return ttl
	}
	return minOrderLockTTL
}

// OrderNumberAllocator hands out human-readable order ids.
type OrderNumberAllocator interface {
	Next(ctx context.Context, prefix string) (string, error)
}

// Compile-time check
var _ OrderNumberAllocator = (*OrderAllocator)(nil)

// OrderAllocator serializes the read-increment-write of the shared order counter.
// The optional locker extends the exclusion across processes.
type OrderAllocator struct {
	mu       sync.Mutex
	counters repository.CounterRepository
	locker   repository.Locker
	lockTTL  time.Duration
	log      *zerolog.Logger
}

// NewOrderAllocator builds an allocator. lockTTL <= 0 falls back to the minimum lock TTL.
func NewOrderAllocator(counters repository.CounterRepository, locker repository.Locker, lockTTL time.Duration, logger *zerolog.Logger) *OrderAllocator {
	if lockTTL < minOrderLockTTL {
		lockTTL = minOrderLockTTL
	}
	return &OrderAllocator{counters: counters, locker: locker, lockTTL: lockTTL, log: logger}
}

// Next returns CD-<prefix>-<n>, where n is one past the last number handed out for any prefix.
func (a *OrderAllocator) Next(ctx context.Context, prefix string) (string, error) {
	defer logging.TraceDuration(a.log, "OrderAllocator.Next")()

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.locker != nil {
		token, err := a.acquire(ctx)
		if err != nil {
			return "", fmt.Errorf("order counter lock: %w", err)
		}
		defer func() {
			if err := a.locker.Unlock(context.WithoutCancel(ctx), orderLockKey, token); err != nil {
				a.log.Warn().Err(err).Msg("failed to release order counter lock")
			}
		}()

		// The counter read and write must finish while the lock is still held.
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.lockTTL*4/5)
		defer cancel()
	}

	c, err := a.counters.Get(ctx, model.OrderCounterKey)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		c = &model.Counter{Key: model.OrderCounterKey, Value: model.FirstOrderNumber}
		if err := a.counters.Create(ctx, c); err != nil {
			return "", fmt.Errorf("create order counter: %w", err)
		}
	case err != nil:
		return "", fmt.Errorf("read order counter: %w", err)
	default:
		c.Value++
		if err := a.counters.Update(ctx, c); err != nil {
			return "", fmt.Errorf("update order counter: %w", err)
		}
	}
	return model.FormatOrderID(prefix, c.Value), nil
}

func (a *OrderAllocator) acquire(ctx context.Context) (string, error) {
	ticker := time.NewTicker(orderLockRetry)
	defer ticker.Stop()
	for {
		token, err := a.locker.TryLock(ctx, orderLockKey, a.lockTTL)
		if err == nil {
			return token, nil
		}
		if !errors.Is(err, domain.ErrLockNotAcquired) {
			return "", err
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-ticker.C:
		}
	}
}

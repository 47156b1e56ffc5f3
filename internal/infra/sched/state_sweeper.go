package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"telegram-registration-bot/internal/infra/metrics"
)

// Sweeper removes conversation states that have outlived their TTL.
type Sweeper interface {
	Sweep(ctx context.Context) (int, error)
}

// StateSweeper periodically evicts abandoned conversations from the in-memory store.
type StateSweeper struct {
	interval time.Duration
	store    Sweeper
	log      *zerolog.Logger
}

func NewStateSweeper(interval time.Duration, store Sweeper, logger *zerolog.Logger) *StateSweeper {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	sweepLog := logger.With().Str("component", "StateSweeper").Logger()
	return &StateSweeper{
		interval: interval,
		store:    store,
		log:      &sweepLog,
	}
}

func (w *StateSweeper) Run(ctx context.Context) error {
	w.log.Info().Dur("interval", w.interval).Msg("Starting state sweeper")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping state sweeper")
			return ctx.Err()
		case <-ticker.C:
			w.SweepOnce(ctx)
		}
	}
}

// SweepOnce runs a single eviction pass and returns the number of states removed.
func (w *StateSweeper) SweepOnce(ctx context.Context) int {
	n, err := w.store.Sweep(ctx)
	if err != nil {
		w.log.Error().Err(err).Msg("state sweep error")
	}
	if n > 0 {
		metrics.AddStatesExpired(n)
		w.log.Info().Int("count", n).Msg("expired conversation states removed")
	}
	return n
}

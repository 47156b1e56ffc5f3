package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"

	"telegram-registration-bot/internal/domain/model"
	"telegram-registration-bot/internal/domain/ports/repository"
	"telegram-registration-bot/internal/infra/metrics"
)

var _ repository.PlanRepository = (*planRepoCacheDecorator)(nil)

// planRepoCacheDecorator caches plan lookups. Misses (ErrPlanNotFound) are not cached.
type planRepoCacheDecorator struct {
	inner repository.PlanRepository
	cache RedisClient
	ttl   time.Duration
	log   *zerolog.Logger
}

func NewPlanRepoCacheDecorator(inner repository.PlanRepository, cache RedisClient, ttl time.Duration, logger *zerolog.Logger) repository.PlanRepository {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &planRepoCacheDecorator{inner: inner, cache: cache, ttl: ttl, log: logger}
}

func (d *planRepoCacheDecorator) FindByID(ctx context.Context, category model.PlanCategory, id string) (*model.PlanOffering, error) {
	key := fmt.Sprintf("plan:%s:id:%s", category, id)
	return d.cached(ctx, key, func() (*model.PlanOffering, error) {
		return d.inner.FindByID(ctx, category, id)
	})
}

func (d *planRepoCacheDecorator) FindActive(ctx context.Context, category model.PlanCategory, planType model.PlanType) (*model.PlanOffering, error) {
	key := fmt.Sprintf("plan:%s:type:%s", category, planType)
	return d.cached(ctx, key, func() (*model.PlanOffering, error) {
		return d.inner.FindActive(ctx, category, planType)
	})
}

func (d *planRepoCacheDecorator) cached(ctx context.Context, key string, load func() (*model.PlanOffering, error)) (*model.PlanOffering, error) {
	val, err := d.cache.Get(ctx, key)
	if err == nil {
		var plan model.PlanOffering
		if json.Unmarshal([]byte(val), &plan) == nil {
			metrics.IncCacheRequest("plan", "hit")
			return &plan, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		d.log.Warn().Err(err).Str("key", key).Msg("plan cache read failed")
	}

	metrics.IncCacheRequest("plan", "miss")
	plan, err := load()
	if err != nil {
		return nil, err
	}
	if b, err := json.Marshal(plan); err == nil {
		if err := d.cache.Set(ctx, key, b, d.ttl); err != nil {
			d.log.Warn().Err(err).Str("key", key).Msg("plan cache write failed")
		}
	}
	return plan, nil
}

package telegram

import (
	"context"
	"errors"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"telegram-registration-bot/internal/domain"
	"telegram-registration-bot/internal/domain/model"
	"telegram-registration-bot/internal/infra/logging"
	"telegram-registration-bot/internal/infra/metrics"
	"telegram-registration-bot/internal/infra/worker"
	"telegram-registration-bot/internal/usecase"
)

const (
	kindMessage  = "message"
	kindCallback = "callback"
	kindOther    = "other"
)

// Submitter queues work keyed by chat so one chat's events never run concurrently.
type Submitter interface {
	Submit(key int64, task worker.Task) error
}

type CallbackAnswerer interface {
	AnswerCallback(ctx context.Context, callbackID string) error
}

type Deduper interface {
	Seen(ctx context.Context, updateID int) (bool, error)
}

type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// UpdateHandler turns webhook updates into use case calls on the per-chat worker pool.
type UpdateHandler struct {
	uc       usecase.RegistrationUseCase
	pool     Submitter
	answerer CallbackAnswerer
	timeout  time.Duration
	dev      bool
	log      *zerolog.Logger

	dedup     Deduper
	limiter   RateLimiter
	limit     int
	limitKey  func(chatID int64) string
	limitSpan time.Duration
}

type UpdateHandlerOption func(*UpdateHandler)

// WithDevMode logs user text unredacted.
func WithDevMode(dev bool) UpdateHandlerOption {
	return func(h *UpdateHandler) { h.dev = dev }
}

// WithDeduper drops updates whose update_id was already accepted.
func WithDeduper(d Deduper) UpdateHandlerOption {
	return func(h *UpdateHandler) { h.dedup = d }
}

// WithRateLimiter drops events beyond perMinute per chat. keyFn builds the limiter key.
func WithRateLimiter(l RateLimiter, perMinute int, keyFn func(chatID int64) string) UpdateHandlerOption {
	return func(h *UpdateHandler) {
		if perMinute <= 0 || l == nil {
			return
		}
		h.limiter, h.limit, h.limitKey, h.limitSpan = l, perMinute, keyFn, time.Minute
	}
}

func NewUpdateHandler(uc usecase.RegistrationUseCase, pool Submitter, answerer CallbackAnswerer, timeout time.Duration, logger *zerolog.Logger, opts ...UpdateHandlerOption) *UpdateHandler {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	hLog := logger.With().Str("component", "UpdateHandler").Logger()
	h := &UpdateHandler{
		uc:       uc,
		pool:     pool,
		answerer: answerer,
		timeout:  timeout,
		log:      &hLog,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Accept classifies an update and queues it. It never waits for the event to be processed.
func (h *UpdateHandler) Accept(ctx context.Context, update tgbotapi.Update) {
	kind, chatID := classify(update)
	metrics.IncWebhookUpdate(kind)
	if kind == kindOther {
		return
	}
	log := logging.With(ctx, h.log)

	if h.dedup != nil {
		seen, err := h.dedup.Seen(ctx, update.UpdateID)
		if err != nil {
			log.Warn().Err(err).Int("update_id", update.UpdateID).Msg("dedup check failed")
		} else if seen {
			metrics.IncUpdateDropped("duplicate")
			log.Debug().Int("update_id", update.UpdateID).Msg("duplicate update dropped")
			return
		}
	}

	if h.limiter != nil {
		allowed, err := h.limiter.Allow(ctx, h.limitKey(chatID), h.limit, h.limitSpan)
		if err != nil {
			log.Warn().Err(err).Msg("rate limit check failed")
		} else if !allowed {
			metrics.IncUpdateDropped("rate_limited")
			log.Info().Int64("chat_id", chatID).Msg("update dropped by rate limit")
			return
		}
	}

	eventID := ulid.Make().String()
	traceID := logging.TraceID(ctx)
	task := func(base context.Context) error {
		evCtx, cancel := context.WithTimeout(base, h.timeout)
		defer cancel()
		evCtx = logging.WithTraceID(evCtx, traceID)
		evCtx = logging.WithEventID(evCtx, eventID)
		evCtx = logging.WithTgID(evCtx, chatID)
		h.report(evCtx, kind, h.dispatch(evCtx, update))
		return nil
	}

	if err := h.pool.Submit(chatID, task); err != nil {
		reason := "queue_full"
		if errors.Is(err, worker.ErrPoolStopped) {
			reason = "stopped"
		}
		metrics.IncUpdateDropped(reason)
		log.Warn().Err(err).Int64("chat_id", chatID).Str("event_id", eventID).Msg("update dropped")
	}
}

func (h *UpdateHandler) dispatch(ctx context.Context, update tgbotapi.Update) error {
	if q := update.CallbackQuery; q != nil {
		return h.handleCallback(ctx, q)
	}
	m := update.Message
	ev := usecase.Event{Text: m.Text, FileID: mediaFileID(m)}
	if ev.Text == "" && !ev.HasMedia() {
		return nil
	}
	logging.With(ctx, h.log).Debug().
		Str("text", logging.Redact(ev.Text, h.dev)).
		Bool("media", ev.HasMedia()).
		Msg("message received")
	return h.uc.HandleMessage(ctx, m.Chat.ID, ev)
}

func (h *UpdateHandler) handleCallback(ctx context.Context, q *tgbotapi.CallbackQuery) error {
	defer func() {
		if err := h.answerer.AnswerCallback(context.WithoutCancel(ctx), q.ID); err != nil {
			logging.With(ctx, h.log).Debug().Err(err).Msg("answer callback failed")
		}
	}()

	chatID := q.Message.Chat.ID
	switch {
	case model.IsPlanToken(q.Data):
		return h.uc.SelectPlan(ctx, chatID, q.Data)
	case model.IsAdminToken(q.Data):
		decision, regID, err := model.ParseAdminToken(q.Data)
		if err != nil {
			return err
		}
		return h.uc.HandleAdminAction(ctx, model.AdminAction{
			ChatID:         chatID,
			MessageID:      q.Message.MessageID,
			Decision:       decision,
			RegistrationID: regID,
		})
	default:
		logging.With(ctx, h.log).Debug().Str("data", q.Data).Msg("unknown callback data")
		return nil
	}
}

func (h *UpdateHandler) report(ctx context.Context, kind string, err error) {
	if err == nil {
		return
	}
	log := logging.With(ctx, h.log)
	switch {
	case errors.Is(err, domain.ErrStaleSelection),
		errors.Is(err, domain.ErrUnauthorizedAdmin),
		errors.Is(err, domain.ErrInvalidArgument):
		log.Warn().Err(err).Str("kind", kind).Msg("event rejected")
	default:
		metrics.IncEventFailure(kind)
		log.Error().Err(err).Str("kind", kind).Msg("event failed")
	}
}

// classify returns the update kind and the chat it belongs to.
func classify(update tgbotapi.Update) (string, int64) {
	switch {
	case update.CallbackQuery != nil:
		q := update.CallbackQuery
		if q.Message == nil || q.Message.Chat == nil {
			return kindOther, 0
		}
		return kindCallback, q.Message.Chat.ID
	case update.Message != nil && update.Message.Chat != nil:
		return kindMessage, update.Message.Chat.ID
	default:
		return kindOther, 0
	}
}

// mediaFileID picks the largest photo size, or the document.
func mediaFileID(m *tgbotapi.Message) string {
	if n := len(m.Photo); n > 0 {
		return m.Photo[n-1].FileID
	}
	if m.Document != nil {
		return m.Document.FileID
	}
	return ""
}

//go:build !integration

package telegram

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"telegram-registration-bot/internal/domain"
	"telegram-registration-bot/internal/domain/model"
	"telegram-registration-bot/internal/domain/ports/adapter"
	"telegram-registration-bot/internal/infra/worker"
	"telegram-registration-bot/internal/usecase"
)

type messageCall struct {
	ChatID int64
	Event  usecase.Event
}

type fakeRegistrationUC struct {
	mu        sync.Mutex
	messages  []messageCall
	plans     []string
	admin     []model.AdminAction
	err       error
	deadlines bool
}

func (f *fakeRegistrationUC) HandleMessage(ctx context.Context, chatID int64, ev usecase.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, f.deadlines = ctx.Deadline()
	f.messages = append(f.messages, messageCall{ChatID: chatID, Event: ev})
	return f.err
}

func (f *fakeRegistrationUC) SelectPlan(ctx context.Context, chatID int64, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.plans = append(f.plans, token)
	return f.err
}

func (f *fakeRegistrationUC) HandleAdminAction(ctx context.Context, action model.AdminAction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.admin = append(f.admin, action)
	return f.err
}

// inlinePool runs tasks synchronously on Submit.
type inlinePool struct {
	keys []int64
	err  error
}

func (p *inlinePool) Submit(key int64, task worker.Task) error {
	if p.err != nil {
		return p.err
	}
	p.keys = append(p.keys, key)
	return task(context.Background())
}

type fakeAnswerer struct{ ids []string }

func (a *fakeAnswerer) AnswerCallback(ctx context.Context, id string) error {
	a.ids = append(a.ids, id)
	return nil
}

type fakeDeduper struct{ seen map[int]bool }

func (d *fakeDeduper) Seen(ctx context.Context, id int) (bool, error) {
	if d.seen[id] {
		return true, nil
	}
	d.seen[id] = true
	return false, nil
}

type fakeLimiter struct {
	count map[string]int
	keys  []string
}

func (l *fakeLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	l.count[key]++
	l.keys = append(l.keys, key)
	return l.count[key] <= limit, nil
}

type handlerHarness struct {
	uc       *fakeRegistrationUC
	pool     *inlinePool
	answerer *fakeAnswerer
	h        *UpdateHandler
}

func newHandlerHarness(opts ...UpdateHandlerOption) *handlerHarness {
	logger := zerolog.Nop()
	hh := &handlerHarness{uc: &fakeRegistrationUC{}, pool: &inlinePool{}, answerer: &fakeAnswerer{}}
	hh.h = NewUpdateHandler(hh.uc, hh.pool, hh.answerer, time.Second, &logger, opts...)
	return hh
}

func textUpdate(id int, chatID int64, text string) tgbotapi.Update {
	return tgbotapi.Update{UpdateID: id, Message: &tgbotapi.Message{
		MessageID: id,
		Chat:      &tgbotapi.Chat{ID: chatID},
		Text:      text,
	}}
}

func callbackUpdate(id int, chatID int64, messageID int, data string) tgbotapi.Update {
	return tgbotapi.Update{UpdateID: id, CallbackQuery: &tgbotapi.CallbackQuery{
		ID:      "cb-" + data,
		Data:    data,
		Message: &tgbotapi.Message{MessageID: messageID, Chat: &tgbotapi.Chat{ID: chatID}},
	}}
}

func TestUpdateHandler_TextMessage(t *testing.T) {
	// --- Arrange ---
	hh := newHandlerHarness()

	// --- Act ---
	hh.h.Accept(context.Background(), textUpdate(1, 77, "Ali Rezaei"))

	// --- Assert ---
	if len(hh.uc.messages) != 1 {
		t.Fatalf("expected one message call, got %d", len(hh.uc.messages))
	}
	got := hh.uc.messages[0]
	if got.ChatID != 77 || got.Event.Text != "Ali Rezaei" || got.Event.HasMedia() {
		t.Errorf("unexpected call %+v", got)
	}
	if !hh.uc.deadlines {
		t.Error("expected the event context to carry a deadline")
	}
	if len(hh.pool.keys) != 1 || hh.pool.keys[0] != 77 {
		t.Errorf("expected task keyed by chat 77, got %v", hh.pool.keys)
	}
}

func TestUpdateHandler_MediaPicksLargestPhoto(t *testing.T) {
	hh := newHandlerHarness()
	up := textUpdate(2, 77, "")
	up.Message.Photo = []tgbotapi.PhotoSize{{FileID: "small"}, {FileID: "medium"}, {FileID: "large"}}

	hh.h.Accept(context.Background(), up)

	if len(hh.uc.messages) != 1 || hh.uc.messages[0].Event.FileID != "large" {
		t.Fatalf("expected largest photo, got %+v", hh.uc.messages)
	}
}

func TestUpdateHandler_Document(t *testing.T) {
	hh := newHandlerHarness()
	up := textUpdate(3, 77, "")
	up.Message.Document = &tgbotapi.Document{FileID: "doc-1"}

	hh.h.Accept(context.Background(), up)

	if len(hh.uc.messages) != 1 || hh.uc.messages[0].Event.FileID != "doc-1" {
		t.Fatalf("expected document file id, got %+v", hh.uc.messages)
	}
}

func TestUpdateHandler_IgnoresEmptyAndOtherUpdates(t *testing.T) {
	hh := newHandlerHarness()

	hh.h.Accept(context.Background(), textUpdate(4, 77, ""))
	hh.h.Accept(context.Background(), tgbotapi.Update{UpdateID: 5, EditedMessage: &tgbotapi.Message{Text: "edited"}})

	if len(hh.uc.messages) != 0 {
		t.Errorf("expected no use case calls, got %+v", hh.uc.messages)
	}
	if len(hh.pool.keys) != 1 {
		t.Errorf("only the empty message should reach the pool, got %v", hh.pool.keys)
	}
}

func TestUpdateHandler_PlanCallback(t *testing.T) {
	hh := newHandlerHarness()

	hh.h.Accept(context.Background(), callbackUpdate(6, 77, 10, "plan:Mobile:first"))

	if len(hh.uc.plans) != 1 || hh.uc.plans[0] != "plan:Mobile:first" {
		t.Fatalf("unexpected plan calls %v", hh.uc.plans)
	}
	if len(hh.answerer.ids) != 1 || hh.answerer.ids[0] != "cb-plan:Mobile:first" {
		t.Errorf("callback was not answered: %v", hh.answerer.ids)
	}
}

func TestUpdateHandler_AdminCallback(t *testing.T) {
	hh := newHandlerHarness()

	hh.h.Accept(context.Background(), callbackUpdate(7, -100500, 33, "admin_reject:reg-9"))

	if len(hh.uc.admin) != 1 {
		t.Fatalf("expected one admin action, got %d", len(hh.uc.admin))
	}
	want := model.AdminAction{ChatID: -100500, MessageID: 33, Decision: model.DecisionReject, RegistrationID: "reg-9"}
	if hh.uc.admin[0] != want {
		t.Errorf("expected %+v, got %+v", want, hh.uc.admin[0])
	}
}

func TestUpdateHandler_MalformedAndUnknownCallbacks(t *testing.T) {
	hh := newHandlerHarness()

	hh.h.Accept(context.Background(), callbackUpdate(8, -100500, 1, "admin_explode:reg-1"))
	hh.h.Accept(context.Background(), callbackUpdate(9, 77, 1, "something:else"))

	if len(hh.uc.admin) != 0 || len(hh.uc.plans) != 0 {
		t.Errorf("expected no use case calls, got admin=%v plans=%v", hh.uc.admin, hh.uc.plans)
	}
	if len(hh.answerer.ids) != 2 {
		t.Errorf("every callback should be answered, got %v", hh.answerer.ids)
	}
}

func TestUpdateHandler_Dedup(t *testing.T) {
	hh := newHandlerHarness(WithDeduper(&fakeDeduper{seen: map[int]bool{}}))

	hh.h.Accept(context.Background(), textUpdate(10, 77, "hi"))
	hh.h.Accept(context.Background(), textUpdate(10, 77, "hi"))
	hh.h.Accept(context.Background(), textUpdate(11, 77, "hi"))

	if len(hh.uc.messages) != 2 {
		t.Errorf("expected the redelivered update to be dropped, got %d calls", len(hh.uc.messages))
	}
}

func TestUpdateHandler_RateLimit(t *testing.T) {
	limiter := &fakeLimiter{count: map[string]int{}}
	hh := newHandlerHarness(WithRateLimiter(limiter, 2, func(id int64) string { return "rl:" + strconv.FormatInt(id, 10) }))

	for i := 0; i < 4; i++ {
		hh.h.Accept(context.Background(), textUpdate(20+i, 1, "hi"))
	}
	if len(hh.uc.messages) != 2 {
		t.Errorf("expected 2 events through the limiter, got %d", len(hh.uc.messages))
	}
	if limiter.keys[0] != "rl:1" {
		t.Errorf("unexpected limiter key %q", limiter.keys[0])
	}
}

func TestUpdateHandler_RateLimitDisabled(t *testing.T) {
	limiter := &fakeLimiter{count: map[string]int{}}
	hh := newHandlerHarness(WithRateLimiter(limiter, 0, nil))

	hh.h.Accept(context.Background(), textUpdate(30, 1, "hi"))
	if len(limiter.keys) != 0 || len(hh.uc.messages) != 1 {
		t.Errorf("limiter should be disabled, keys=%v calls=%d", limiter.keys, len(hh.uc.messages))
	}
}

func TestUpdateHandler_PoolRejection(t *testing.T) {
	hh := newHandlerHarness()
	hh.pool.err = worker.ErrQueueFull

	hh.h.Accept(context.Background(), textUpdate(40, 77, "hi"))

	if len(hh.uc.messages) != 0 {
		t.Errorf("dropped update reached the use case")
	}
}

func TestUpdateHandler_UseCaseErrorsDoNotPropagate(t *testing.T) {
	hh := newHandlerHarness()
	hh.uc.err = errors.Join(domain.ErrUpstream, errors.New("store down"))

	hh.h.Accept(context.Background(), textUpdate(50, 77, "hi"))
	hh.uc.err = domain.ErrStaleSelection
	hh.h.Accept(context.Background(), callbackUpdate(51, 77, 1, "plan:Trial:first"))

	if len(hh.uc.messages) != 1 || len(hh.uc.plans) != 1 {
		t.Errorf("expected both events to be dispatched")
	}
}

func TestNoopBotAdapter(t *testing.T) {
	logger := zerolog.Nop()
	b := NewNoopBotAdapter(&logger)
	ctx := context.Background()
	if err := b.SendMessage(ctx, adapter.SendMessageParams{ChatID: 1, Text: "hi"}); err != nil {
		t.Fatal(err)
	}
	url, err := b.FileURL(ctx, "f1")
	if err != nil || url != "noop://file/f1" {
		t.Errorf("got %q, %v", url, err)
	}
}

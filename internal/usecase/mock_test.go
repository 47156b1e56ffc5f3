//go:build !integration

package usecase

import (
	"context"
	"errors"
	"io"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"telegram-registration-bot/internal/domain"
	"telegram-registration-bot/internal/domain/ports/adapter"
)

// =============================
// Adapters
// =============================

type editedMessage struct {
	ChatID    int64
	MessageID int
	Text      string
}

// MockTelegramBot captures outgoing messages and edits.
type MockTelegramBot struct {
	mu    sync.Mutex
	Sent  []adapter.SendMessageParams
	Edits []editedMessage

	SendMessageFunc     func(ctx context.Context, params adapter.SendMessageParams) error
	EditMessageTextFunc func(ctx context.Context, chatID int64, messageID int, text string) error
	FileURLFunc         func(ctx context.Context, fileID string) (string, error)
}

var _ adapter.TelegramBotAdapter = (*MockTelegramBot)(nil)

func (m *MockTelegramBot) SendMessage(ctx context.Context, params adapter.SendMessageParams) error {
	if m.SendMessageFunc != nil {
		if err := m.SendMessageFunc(ctx, params); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sent = append(m.Sent, params)
	return nil
}

func (m *MockTelegramBot) EditMessageText(ctx context.Context, chatID int64, messageID int, text string) error {
	if m.EditMessageTextFunc != nil {
		if err := m.EditMessageTextFunc(ctx, chatID, messageID, text); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Edits = append(m.Edits, editedMessage{ChatID: chatID, MessageID: messageID, Text: text})
	return nil
}

func (m *MockTelegramBot) FileURL(ctx context.Context, fileID string) (string, error) {
	if m.FileURLFunc != nil {
		return m.FileURLFunc(ctx, fileID)
	}
	return "https://files.example/" + fileID, nil
}

// Last returns the most recent message sent to chatID.
func (m *MockTelegramBot) Last(chatID int64) (adapter.SendMessageParams, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.Sent) - 1; i >= 0; i-- {
		if m.Sent[i].ChatID == chatID {
			return m.Sent[i], true
		}
	}
	return adapter.SendMessageParams{}, false
}

func (m *MockTelegramBot) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Sent)
}

// =============================
// Locker
// =============================

// MockLocker grants one holder per key.
type MockLocker struct {
	mu    sync.Mutex
	held    map[string]string
	calls   int
	lastTTL time.Duration
}

func NewMockLocker() *MockLocker { return &MockLocker{held: map[string]string{}} }

func (l *MockLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls++
	l.lastTTL = ttl
	if _, ok := l.held[key]; ok {
		return "", domain.ErrLockNotAcquired
	}
	tok := uuid.NewString()
	l.held[key] = tok
	return tok, nil
}

func (l *MockLocker) Unlock(ctx context.Context, key, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[key] == token {
		delete(l.held, key)
		return nil
	}
	return errors.New("unlock token mismatch")
}

// =============================
// Helpers
// =============================

// newTestLogger creates a silent zerolog.Logger for use in tests.
func newTestLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard)
	return &logger
}

// mapCatalog is a fixed text catalog.
type mapCatalog map[string]string

func (c mapCatalog) Lookup(key string) (string, bool) {
	v, ok := c[key]
	return v, ok
}

func itoa(n int) string { return strconv.Itoa(n) }

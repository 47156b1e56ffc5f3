package telegram

import (
	"context"

	"github.com/rs/zerolog"

	"telegram-registration-bot/internal/domain/ports/adapter"
)

var _ adapter.TelegramBotAdapter = (*NoopBotAdapter)(nil)

// NoopBotAdapter logs outgoing calls instead of reaching Telegram. Used in dev mode without a token.
type NoopBotAdapter struct {
	log *zerolog.Logger
}

func NewNoopBotAdapter(logger *zerolog.Logger) *NoopBotAdapter {
	noopLog := logger.With().Str("component", "NoopBot").Logger()
	return &NoopBotAdapter{log: &noopLog}
}

func (b *NoopBotAdapter) SendMessage(ctx context.Context, params adapter.SendMessageParams) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	ev := b.log.Info().Int64("chat_id", params.ChatID).Str("text", params.Text)
	if params.ReplyMarkup != nil {
		ev = ev.Interface("buttons", params.ReplyMarkup.Buttons).Bool("inline", params.ReplyMarkup.IsInline)
	}
	ev.Msg("send message")
	return nil
}

func (b *NoopBotAdapter) EditMessageText(ctx context.Context, chatID int64, messageID int, text string) error {
	b.log.Info().Int64("chat_id", chatID).Int("message_id", messageID).Str("text", text).Msg("edit message")
	return nil
}

func (b *NoopBotAdapter) FileURL(ctx context.Context, fileID string) (string, error) {
	return "noop://file/" + fileID, nil
}

func (b *NoopBotAdapter) AnswerCallback(ctx context.Context, callbackID string) error {
	return nil
}

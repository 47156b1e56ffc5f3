package telegram

import (
	"context"
	"errors"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"telegram-registration-bot/internal/config"
	"telegram-registration-bot/internal/domain/ports/adapter"
)

var _ adapter.TelegramBotAdapter = (*RealTelegramBotAdapter)(nil)

// RealTelegramBotAdapter talks to the Bot API through tgbotapi. Updates arrive via the webhook server.
type RealTelegramBotAdapter struct {
	bot *tgbotapi.BotAPI
	log *zerolog.Logger
}

// NewRealTelegramBotAdapter validates token with getMe before returning.
func NewRealTelegramBotAdapter(cfg *config.BotConfig, token string, logger *zerolog.Logger) (*RealTelegramBotAdapter, error) {
	if cfg == nil {
		return nil, errors.New("bot config is nil")
	}
	if strings.TrimSpace(token) == "" {
		return nil, errors.New("bot token is empty")
	}
	endpoint := cfg.APIEndpoint
	if endpoint == "" {
		endpoint = tgbotapi.APIEndpoint
	}

	bot, err := tgbotapi.NewBotAPIWithAPIEndpoint(token, endpoint)
	if err != nil {
		return nil, err
	}
	botLog := logger.With().Str("component", "TelegramBot").Logger()
	botLog.Info().Str("username", bot.Self.UserName).Msg("authorized on telegram")

	return &RealTelegramBotAdapter{bot: bot, log: &botLog}, nil
}

func (r *RealTelegramBotAdapter) Username() string { return r.bot.Self.UserName }

func (r *RealTelegramBotAdapter) SendMessage(ctx context.Context, params adapter.SendMessageParams) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(params.ChatID, params.Text)
	if markup := buildMarkup(params.ReplyMarkup); markup != nil {
		msg.ReplyMarkup = markup
	}
	_, err := r.bot.Send(msg)
	return err
}

func (r *RealTelegramBotAdapter) EditMessageText(ctx context.Context, chatID int64, messageID int, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := r.bot.Request(tgbotapi.NewEditMessageText(chatID, messageID, text))
	return err
}

func (r *RealTelegramBotAdapter) FileURL(ctx context.Context, fileID string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return r.bot.GetFileDirectURL(fileID)
}

// AnswerCallback stops the loading spinner on the pressed button.
func (r *RealTelegramBotAdapter) AnswerCallback(ctx context.Context, callbackID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := r.bot.Request(tgbotapi.NewCallback(callbackID, ""))
	return err
}

func buildMarkup(m *adapter.ReplyMarkup) interface{} {
	if m == nil || len(m.Buttons) == 0 {
		return nil
	}
	if m.IsInline {
		rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(m.Buttons))
		for _, row := range m.Buttons {
			if len(row) == 0 {
				continue
			}
			kbRow := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
			for _, btn := range row {
				label := strings.TrimSpace(btn.Text)
				if label == "" {
					label = "•"
				}
				switch {
				case btn.URL != "":
					kbRow = append(kbRow, tgbotapi.NewInlineKeyboardButtonURL(label, btn.URL))
				case btn.Data != "":
					kbRow = append(kbRow, tgbotapi.NewInlineKeyboardButtonData(label, btn.Data))
				default:
					kbRow = append(kbRow, tgbotapi.NewInlineKeyboardButtonData(label, label))
				}
			}
			rows = append(rows, kbRow)
		}
		return tgbotapi.NewInlineKeyboardMarkup(rows...)
	}

	rows := make([][]tgbotapi.KeyboardButton, 0, len(m.Buttons))
	for _, row := range m.Buttons {
		if len(row) == 0 {
			continue
		}
		kbRow := make([]tgbotapi.KeyboardButton, 0, len(row))
		for _, btn := range row {
			kbRow = append(kbRow, tgbotapi.NewKeyboardButton(btn.Text))
		}
		rows = append(rows, kbRow)
	}
	return tgbotapi.NewReplyKeyboard(rows...)
}

// File: internal/domain/ports/adapter/telegram.go
package adapter

import "context"

type Button struct {
	Text string
	Data string
	URL  string
}

// ReplyMarkup is rendered as an inline keyboard when IsInline is set,
// otherwise as a resized reply keyboard whose buttons send their Text.
type ReplyMarkup struct {
	Buttons  [][]Button
	IsInline bool
}

type SendMessageParams struct {
	ChatID      int64
	Text        string
	ReplyMarkup *ReplyMarkup
}

type TelegramBotAdapter interface {
	SendMessage(ctx context.Context, params SendMessageParams) error
	EditMessageText(ctx context.Context, chatID int64, messageID int, text string) error
	// FileURL resolves an uploaded file id to a downloadable URL.
	FileURL(ctx context.Context, fileID string) (string, error)
}

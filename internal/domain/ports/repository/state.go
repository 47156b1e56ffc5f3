package repository

import (
	"context"

	"telegram-registration-bot/internal/domain/model"
)

// ConversationStateRepository is the port for per-chat conversation state.
// GetState returns domain.ErrNotFound when the chat has no (unexpired) state.
type ConversationStateRepository interface {
	SetState(ctx context.Context, chatID int64, state *model.ConversationState) error
	GetState(ctx context.Context, chatID int64) (*model.ConversationState, error)
	ClearState(ctx context.Context, chatID int64) error
}

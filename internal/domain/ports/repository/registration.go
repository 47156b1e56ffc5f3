package repository

import (
	"context"

	"telegram-registration-bot/internal/domain/model"
)

// RegistrationRepository appends and patches registrations. Create sets reg.ID.
type RegistrationRepository interface {
	Create(ctx context.Context, reg *model.Registration) error
	Patch(ctx context.Context, id string, patch model.RegistrationPatch) error
}

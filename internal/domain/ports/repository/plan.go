package repository

import (
	"context"

	"telegram-registration-bot/internal/domain/model"
)

// PlanRepository reads plan offerings. Both lookups return domain.ErrPlanNotFound on a miss.
type PlanRepository interface {
	FindByID(ctx context.Context, category model.PlanCategory, id string) (*model.PlanOffering, error)
	FindActive(ctx context.Context, category model.PlanCategory, planType model.PlanType) (*model.PlanOffering, error)
}

package pocketbase

import (
	"context"
	"fmt"
	"regexp"

	"telegram-registration-bot/internal/domain"
	"telegram-registration-bot/internal/domain/model"
	"telegram-registration-bot/internal/domain/ports/repository"
)

// Ensure interface compliance
var _ repository.PlanRepository = (*PlanRepo)(nil)

var categoryPattern = regexp.MustCompile(`^[a-z0-9_]+$`)

// PlanRepo reads offerings from the plans_<category> collections.
type PlanRepo struct {
	client *Client
}

func NewPlanRepo(client *Client) *PlanRepo {
	return &PlanRepo{client: client}
}

type planRecord struct {
	ID       string  `json:"id"`
	Key      string  `json:"key"`
	Label    string  `json:"label"`
	PlanType string  `json:"plan_type"`
	Category string  `json:"category"`
	Days     flexInt `json:"days"`
	Price    flexInt `json:"price"`
	Active   bool    `json:"active"`
}

func (p planRecord) toModel(fallback model.PlanCategory) *model.PlanOffering {
	category := model.PlanCategory(p.Category)
	if category == "" {
		category = fallback
	}
	return &model.PlanOffering{
		ID:       p.ID,
		Key:      p.Key,
		Label:    p.Label,
		PlanType: model.PlanType(p.PlanType),
		Category: category,
		Days:     int(p.Days),
		Price:    int64(p.Price),
		Active:   p.Active,
	}
}

func PlansCollection(category model.PlanCategory) (string, error) {
	if !categoryPattern.MatchString(string(category)) {
		return "", fmt.Errorf("plan category %q: %w", category, domain.ErrInvalidArgument)
	}
	return "plans_" + string(category), nil
}

func (r *PlanRepo) FindByID(ctx context.Context, category model.PlanCategory, id string) (*model.PlanOffering, error) {
	return r.findOne(ctx, category, Eq("id", id))
}

func (r *PlanRepo) FindActive(ctx context.Context, category model.PlanCategory, planType model.PlanType) (*model.PlanOffering, error) {
	return r.findOne(ctx, category, And(
		Eq("plan_type", string(planType)),
		Eq("category", string(category)),
		EqBool("active", true),
	))
}

func (r *PlanRepo) findOne(ctx context.Context, category model.PlanCategory, filter string) (*model.PlanOffering, error) {
	coll, err := PlansCollection(category)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPlanNotFound, err)
	}
	var items []planRecord
	if err := r.client.List(ctx, coll, filter, &items); err != nil {
		return nil, fmt.Errorf("find plan in %s: %w", coll, err)
	}
	if len(items) == 0 {
		return nil, domain.ErrPlanNotFound
	}
	return items[0].toModel(category), nil
}

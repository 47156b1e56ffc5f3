package model

import (
	"fmt"
	"strings"

	"telegram-registration-bot/internal/domain"
)

type PlanType string

const (
	PlanTrial  PlanType = "Trial"
	PlanMobile PlanType = "Mobile"
	PlanLaptop PlanType = "Laptop"
	PlanVip    PlanType = "Vip"
)

// MenuPlanTypes are offered, in order, when the user reaches the plan step.
var MenuPlanTypes = []PlanType{PlanTrial, PlanMobile, PlanLaptop, PlanVip}

type PlanCategory string

const (
	CategoryFirst   PlanCategory = "first"
	CategoryRenewal PlanCategory = "renewal"
)

// OrderPrefix is N for first-time purchases and R for everything else.
func (c PlanCategory) OrderPrefix() string {
	if c == CategoryFirst {
		return "N"
	}
	return "R"
}

// PlanOffering is a purchasable tier read from the record store.
type PlanOffering struct {
	ID       string
	Key      string
	Label    string
	PlanType PlanType
	Category PlanCategory
	Days     int
	Price    int64
	Active   bool
}

func (p *PlanOffering) IsTrial() bool { return p != nil && p.PlanType == PlanTrial }

const planTokenPrefix = "plan:"

// PlanSelection is the payload carried by a plan button: plan:<Type>:<category>[:<id>].
type PlanSelection struct {
	Type     PlanType
	Category PlanCategory
	ID       string
}

func (s PlanSelection) Token() string {
	tok := planTokenPrefix + string(s.Type) + ":" + string(s.Category)
	if s.ID != "" {
		tok += ":" + s.ID
	}
	return tok
}

// IsPlanToken reports whether callback data belongs to a plan button.
func IsPlanToken(data string) bool { return strings.HasPrefix(data, planTokenPrefix) }

func ParsePlanToken(data string) (PlanSelection, error) {
	if !IsPlanToken(data) {
		return PlanSelection{}, fmt.Errorf("plan token %q: %w", data, domain.ErrInvalidArgument)
	}
	parts := strings.Split(strings.TrimPrefix(data, planTokenPrefix), ":")
	if len(parts) < 2 || len(parts) > 3 || parts[0] == "" || parts[1] == "" {
		return PlanSelection{}, fmt.Errorf("plan token %q: %w", data, domain.ErrInvalidArgument)
	}
	sel := PlanSelection{Type: PlanType(parts[0]), Category: PlanCategory(parts[1])}
	if len(parts) == 3 {
		sel.ID = parts[2]
	}
	return sel, nil
}

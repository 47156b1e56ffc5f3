package pocketbase

import (
	"context"
	"fmt"

	"telegram-registration-bot/internal/domain/model"
	"telegram-registration-bot/internal/domain/ports/repository"
)

const collRegistrations = "registrations"

// Ensure interface compliance
var _ repository.RegistrationRepository = (*RegistrationRepo)(nil)

type RegistrationRepo struct {
	client *Client
}

func NewRegistrationRepo(client *Client) *RegistrationRepo {
	return &RegistrationRepo{client: client}
}

type registrationRecord struct {
	ID            string `json:"id,omitempty"`
	ChatID        int64  `json:"chat_id"`
	FullName      string `json:"full_name"`
	Company       string `json:"company"`
	Phone         string `json:"phone"`
	Province      string `json:"province"`
	Email         string `json:"email"`
	PlanKey       string `json:"plan_key"`
	PlanLabel     string `json:"plan_label"`
	Amount        int64  `json:"amount"`
	DaysLeft      int    `json:"days_left"`
	OrderID       string `json:"order_id"`
	StartDate     string `json:"start_date"`
	EndDate       string `json:"end_date"`
	PaidCount     int    `json:"paid_count"`
	ReceiptStatus string `json:"receipt_status"`
	Status        string `json:"status"`
	ReceiptURL    string `json:"receipt_url,omitempty"`
}

type registrationPatch struct {
	ReceiptURL    string `json:"receipt_url,omitempty"`
	ReceiptStatus string `json:"receipt_status,omitempty"`
	Status        string `json:"status,omitempty"`
}

type createdRecord struct {
	ID string `json:"id"`
}

func (r *RegistrationRepo) Create(ctx context.Context, reg *model.Registration) error {
	rec := registrationRecord{
		ChatID:        reg.ChatID,
		FullName:      reg.FullName,
		Company:       reg.Company,
		Phone:         reg.Phone,
		Province:      reg.Province,
		Email:         reg.Email,
		PlanKey:       reg.PlanKey,
		PlanLabel:     reg.PlanLabel,
		Amount:        reg.Amount,
		DaysLeft:      reg.DaysLeft,
		OrderID:       reg.OrderID,
		StartDate:     reg.StartDate,
		EndDate:       reg.EndDate,
		PaidCount:     reg.PaidCount,
		ReceiptStatus: string(reg.ReceiptStatus),
		Status:        string(reg.Status),
		ReceiptURL:    reg.ReceiptURL,
	}
	var out createdRecord
	if err := r.client.Create(ctx, collRegistrations, rec, &out); err != nil {
		return fmt.Errorf("Create registration: %w", err)
	}
	reg.ID = out.ID
	return nil
}

func (r *RegistrationRepo) Patch(ctx context.Context, id string, patch model.RegistrationPatch) error {
	body := registrationPatch{
		ReceiptURL:    patch.ReceiptURL,
		ReceiptStatus: string(patch.ReceiptStatus),
		Status:        string(patch.Status),
	}
	if err := r.client.Update(ctx, collRegistrations, id, body, nil); err != nil {
		return fmt.Errorf("Patch registration %s: %w", id, err)
	}
	return nil
}

package model

import (
	"strings"
	"time"

	"telegram-registration-bot/internal/domain"
)

type ReceiptStatus string

const (
	ReceiptSuccessful ReceiptStatus = "Successful"
	ReceiptPending    ReceiptStatus = "Pending"
	ReceiptFailed     ReceiptStatus = "Failed"
)

type RegistrationStatus string

const (
	RegistrationActive  RegistrationStatus = "active"
	RegistrationPending RegistrationStatus = "pending"
)

// DateLayout is the on-store format of start/end dates.
const DateLayout = "2006-01-02"

// Registration is one enrollment attempt. Once created it is owned by the record store;
// the bot only patches receipt and approval fields.
type Registration struct {
	ID       string
	ChatID   int64
	FullName string
	Company  string
	Phone    string
	Province string
	Email    string

	PlanKey   string
	PlanLabel string
	PlanType  PlanType
	Amount    int64
	DaysLeft  int

	OrderID       string
	StartDate     string
	EndDate       string
	PaidCount     int
	ReceiptStatus ReceiptStatus
	Status        RegistrationStatus
	ReceiptURL    string
}

// NewRegistration builds a registration from collected identity fields.
// Trial plans start active and settled; every other plan starts pending a receipt.
func NewRegistration(chatID int64, st ConversationState, plan *PlanOffering, orderID string, now time.Time) (*Registration, error) {
	if chatID == 0 || plan == nil || strings.TrimSpace(orderID) == "" || plan.Days < 0 {
		return nil, domain.ErrInvalidArgument
	}
	start := now
	reg := &Registration{
		ChatID:    chatID,
		FullName:  st.Field(FieldFullName),
		Company:   st.Field(FieldCompany),
		Phone:     st.Field(FieldPhone),
		Province:  st.Field(FieldProvince),
		Email:     st.Field(FieldEmail),
		PlanKey:   plan.Key,
		PlanLabel: plan.Label,
		PlanType:  plan.PlanType,
		Amount:    plan.Price,
		DaysLeft:  plan.Days,
		OrderID:   orderID,
		StartDate: start.Format(DateLayout),
		EndDate:   start.AddDate(0, 0, plan.Days).Format(DateLayout),
	}
	if plan.IsTrial() {
		reg.Status = RegistrationActive
		reg.ReceiptStatus = ReceiptSuccessful
		reg.PaidCount = 0
	} else {
		reg.Status = RegistrationPending
		reg.ReceiptStatus = ReceiptPending
		reg.PaidCount = 1
	}
	return reg, nil
}

// RegistrationPatch carries the fields the bot is allowed to change. Empty fields are left untouched.
type RegistrationPatch struct {
	ReceiptURL    string
	ReceiptStatus ReceiptStatus
	Status        RegistrationStatus
}

// ReceiptPatch attaches an uploaded receipt and puts it back in the review queue.
func ReceiptPatch(url string) RegistrationPatch {
	return RegistrationPatch{ReceiptURL: url, ReceiptStatus: ReceiptPending}
}

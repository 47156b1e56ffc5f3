package model

import (
	"fmt"
	"strings"

	"telegram-registration-bot/internal/domain"
)

type AdminDecision string

const (
	DecisionApprove AdminDecision = "approve"
	DecisionReject  AdminDecision = "reject"
)

const adminTokenPrefix = "admin_"

// AdminAction is an approve/reject button press in the admin chat.
type AdminAction struct {
	ChatID         int64
	MessageID      int
	Decision       AdminDecision
	RegistrationID string
}

// AdminToken renders the callback data of an approve/reject button.
func AdminToken(d AdminDecision, registrationID string) string {
	return adminTokenPrefix + string(d) + ":" + registrationID
}

func IsAdminToken(data string) bool { return strings.HasPrefix(data, adminTokenPrefix) }

// ParseAdminToken reads admin_approve:<id> and admin_reject:<id>.
func ParseAdminToken(data string) (AdminDecision, string, error) {
	rest := strings.TrimPrefix(data, adminTokenPrefix)
	action, id, ok := strings.Cut(rest, ":")
	if !IsAdminToken(data) || !ok || strings.TrimSpace(id) == "" {
		return "", "", fmt.Errorf("admin token %q: %w", data, domain.ErrInvalidArgument)
	}
	switch d := AdminDecision(action); d {
	case DecisionApprove, DecisionReject:
		return d, id, nil
	default:
		return "", "", fmt.Errorf("admin token %q: unknown action: %w", data, domain.ErrInvalidArgument)
	}
}

// ApprovalPatch is absolute, so repeating the same decision leaves the record unchanged.
func ApprovalPatch(d AdminDecision) RegistrationPatch {
	if d == DecisionApprove {
		return RegistrationPatch{ReceiptStatus: ReceiptSuccessful, Status: RegistrationActive}
	}
	return RegistrationPatch{ReceiptStatus: ReceiptFailed, Status: RegistrationPending}
}

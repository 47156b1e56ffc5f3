//go:build !integration

package model

import (
	"errors"
	"testing"
	"time"

	"telegram-registration-bot/internal/domain"
)

func collectedState() ConversationState {
	return ConversationState{
		Step: StepPlan,
		Collected: map[string]string{
			FieldFullName: "Reza Karimi",
			FieldCompany:  "Acme",
			FieldPhone:    "09123456789",
			FieldProvince: "Tehran",
			FieldEmail:    "reza@gmail.com",
		},
	}
}

// --- Registration Model Tests ---

func TestNewRegistration(t *testing.T) {
	now := time.Date(2024, 3, 20, 10, 0, 0, 0, time.UTC)

	t.Run("trial plan starts active and settled", func(t *testing.T) {
		plan := &PlanOffering{Key: "trial", Label: "Trial", PlanType: PlanTrial, Category: CategoryFirst, Days: 7, Price: 0}
		reg, err := NewRegistration(42, collectedState(), plan, "CD-N-1001", now)
		if err != nil {
			t.Fatalf("expected no error, but got: %v", err)
		}
		if reg.Status != RegistrationActive {
			t.Errorf("expected status active, got %s", reg.Status)
		}
		if reg.ReceiptStatus != ReceiptSuccessful {
			t.Errorf("expected receipt status Successful, got %s", reg.ReceiptStatus)
		}
		if reg.PaidCount != 0 {
			t.Errorf("expected paid_count 0, got %d", reg.PaidCount)
		}
		if reg.DaysLeft != 7 {
			t.Errorf("expected days_left 7, got %d", reg.DaysLeft)
		}
		if reg.StartDate != "2024-03-20" || reg.EndDate != "2024-03-27" {
			t.Errorf("unexpected dates %s..%s", reg.StartDate, reg.EndDate)
		}
		if reg.FullName != "Reza Karimi" || reg.Email != "reza@gmail.com" {
			t.Errorf("identity fields not copied: %+v", reg)
		}
	})

	t.Run("paid plan starts pending a receipt", func(t *testing.T) {
		plan := &PlanOffering{Key: "mobile", Label: "Mobile", PlanType: PlanMobile, Category: CategoryFirst, Days: 30, Price: 150000}
		reg, err := NewRegistration(42, collectedState(), plan, "CD-N-1002", now)
		if err != nil {
			t.Fatalf("expected no error, but got: %v", err)
		}
		if reg.Status != RegistrationPending || reg.ReceiptStatus != ReceiptPending || reg.PaidCount != 1 {
			t.Errorf("unexpected lifecycle fields: %+v", reg)
		}
		if reg.Amount != 150000 {
			t.Errorf("expected amount 150000, got %d", reg.Amount)
		}
		if reg.EndDate != "2024-04-19" {
			t.Errorf("expected end date 2024-04-19, got %s", reg.EndDate)
		}
	})

	t.Run("should fail without an order id", func(t *testing.T) {
		_, err := NewRegistration(42, collectedState(), &PlanOffering{PlanType: PlanTrial}, "", now)
		if !errors.Is(err, domain.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})
}

// --- Conversation State Tests ---

func TestConversationState_Invariant(t *testing.T) {
	st := IdleState()
	if err := st.Validate(); err != nil {
		t.Fatalf("idle state should be valid: %v", err)
	}

	receipt := collectedState().AwaitReceipt("reg-1")
	if err := receipt.Validate(); err != nil {
		t.Fatalf("receipt state should be valid: %v", err)
	}

	broken := ConversationState{Step: StepReceipt}
	if err := broken.Validate(); err == nil {
		t.Error("expected error for RECEIPT without pending id")
	}
	broken = ConversationState{Step: StepPlan, PendingRegistrationID: "x"}
	if err := broken.Validate(); err == nil {
		t.Error("expected error for pending id outside RECEIPT")
	}

	back := receipt.Advance("", "", StepPlan)
	if back.PendingRegistrationID != "" {
		t.Error("Advance should drop the pending registration")
	}
}

func TestConversationState_AdvanceDoesNotMutate(t *testing.T) {
	st := IdleState()
	next := st.Advance(FieldFullName, "Ali Rezaei", StepCompany)
	if st.Field(FieldFullName) != "" {
		t.Error("original state was mutated")
	}
	if next.Field(FieldFullName) != "Ali Rezaei" || next.Step != StepCompany {
		t.Errorf("unexpected next state: %+v", next)
	}
}

// --- Token Tests ---

func TestParsePlanToken(t *testing.T) {
	sel, err := ParsePlanToken("plan:Mobile:first")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sel.Type != PlanMobile || sel.Category != CategoryFirst || sel.ID != "" {
		t.Errorf("unexpected selection: %+v", sel)
	}
	sel, err = ParsePlanToken("plan:Vip:renewal:abc123")
	if err != nil || sel.ID != "abc123" || sel.Category.OrderPrefix() != "R" {
		t.Errorf("unexpected selection %+v, err %v", sel, err)
	}
	if got := (PlanSelection{Type: PlanTrial, Category: CategoryFirst}).Token(); got != "plan:Trial:first" {
		t.Errorf("unexpected token %q", got)
	}
	for _, bad := range []string{"plan:", "plan:Mobile", "buy:1", "plan:a:b:c:d"} {
		if _, err := ParsePlanToken(bad); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Errorf("%q: expected ErrInvalidArgument, got %v", bad, err)
		}
	}
}

func TestParseAdminToken(t *testing.T) {
	d, id, err := ParseAdminToken(AdminToken(DecisionApprove, "rec1"))
	if err != nil || d != DecisionApprove || id != "rec1" {
		t.Errorf("got %s %s %v", d, id, err)
	}
	d, id, err = ParseAdminToken("admin_reject:rec2")
	if err != nil || d != DecisionReject || id != "rec2" {
		t.Errorf("got %s %s %v", d, id, err)
	}
	for _, bad := range []string{"admin_approve", "admin_delete:x", "admin_reject:", "plan:x"} {
		if _, _, err := ParseAdminToken(bad); err == nil {
			t.Errorf("%q: expected error", bad)
		}
	}
}

func TestApprovalPatch(t *testing.T) {
	p := ApprovalPatch(DecisionApprove)
	if p.ReceiptStatus != ReceiptSuccessful || p.Status != RegistrationActive {
		t.Errorf("unexpected approve patch: %+v", p)
	}
	p = ApprovalPatch(DecisionReject)
	if p.ReceiptStatus != ReceiptFailed || p.Status != RegistrationPending {
		t.Errorf("unexpected reject patch: %+v", p)
	}
}

func TestFormatOrderID(t *testing.T) {
	if got := FormatOrderID("N", FirstOrderNumber); got != "CD-N-1001" {
		t.Errorf("got %q", got)
	}
}

package model

import (
	"fmt"
	"strings"
	"time"
)

// Step is the position of a chat inside the registration sequence.
type Step string

const (
	StepIdle     Step = ""
	StepName     Step = "NAME"
	StepCompany  Step = "COMPANY"
	StepPhone    Step = "PHONE"
	StepProvince Step = "PROVINCE"
	StepEmail    Step = "EMAIL"
	StepPlan     Step = "PLAN"
	StepReceipt  Step = "RECEIPT"
)

func (s Step) String() string {
	if s == StepIdle {
		return "IDLE"
	}
	return string(s)
}

// Collected field names, in the order they are asked.
const (
	FieldFullName = "full_name"
	FieldCompany  = "company"
	FieldPhone    = "phone"
	FieldProvince = "province"
	FieldEmail    = "email"
)

// IdentityFields are required before a plan can be chosen.
var IdentityFields = []string{FieldFullName, FieldCompany, FieldPhone, FieldProvince, FieldEmail}

// ConversationState is the per-chat progress of the registration flow.
// PendingRegistrationID is only meaningful while Step is StepReceipt.
type ConversationState struct {
	Step                  Step              `json:"step"`
	Collected             map[string]string `json:"collected"`
	PendingRegistrationID string            `json:"pending_registration_id,omitempty"`
	UpdatedAt             time.Time         `json:"updated_at"`
}

// IdleState returns an empty state with no active flow.
func IdleState() ConversationState {
	return ConversationState{Step: StepIdle, Collected: map[string]string{}}
}

func (s ConversationState) IsIdle() bool { return s.Step == StepIdle }

// Field returns a collected value or "".
func (s ConversationState) Field(name string) string {
	if s.Collected == nil {
		return ""
	}
	return s.Collected[name]
}

// HasIdentity reports whether every identity field has a non-empty value.
func (s ConversationState) HasIdentity() bool {
	for _, f := range IdentityFields {
		if strings.TrimSpace(s.Field(f)) == "" {
			return false
		}
	}
	return true
}

// Advance stores value under field and moves to next. The receiver is not mutated.
func (s ConversationState) Advance(field, value string, next Step) ConversationState {
	out := s.clone()
	if field != "" {
		out.Collected[field] = value
	}
	out.Step = next
	out.PendingRegistrationID = ""
	return out
}

// AwaitReceipt moves to StepReceipt and remembers the registration waiting for proof of payment.
func (s ConversationState) AwaitReceipt(registrationID string) ConversationState {
	out := s.clone()
	out.Step = StepReceipt
	out.PendingRegistrationID = registrationID
	return out
}

// Validate checks the pending-registration invariant.
func (s ConversationState) Validate() error {
	switch {
	case s.Step == StepReceipt && s.PendingRegistrationID == "":
		return fmt.Errorf("state %s without pending registration", s.Step)
	case s.Step != StepReceipt && s.PendingRegistrationID != "":
		return fmt.Errorf("pending registration %q outside %s (step %s)", s.PendingRegistrationID, StepReceipt, s.Step)
	}
	return nil
}

func (s ConversationState) clone() ConversationState {
	out := s
	out.Collected = make(map[string]string, len(s.Collected)+1)
	for k, v := range s.Collected {
		out.Collected[k] = v
	}
	return out
}

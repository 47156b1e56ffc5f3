package usecase

import (
	"strings"

	"telegram-registration-bot/internal/domain/model"
)

// CommandStart resets any flow and shows the main menu.
const CommandStart = "/start"

// Message keys resolved through the settings resolver.
const (
	MsgWelcomeStart   = "welcome_start"
	MsgAskFullName    = "ask_fullname"
	MsgNameInvalid    = "name_invalid"
	MsgAskCompany     = "ask_company"
	MsgAskPhone       = "ask_phone"
	MsgPhoneInvalid   = "phone_invalid"
	MsgAskProvince    = "ask_province"
	MsgAskEmail       = "ask_email"
	MsgEmailInvalid   = "email_invalid"
	MsgAskPlan        = "ask_plan"
	MsgTrialSuccess   = "trial_success"
	MsgPayment        = "pay_msg"
	MsgReceiptInvalid = "receipt_invalid"
	MsgReceiptWaiting = "receipt_waiting"
	MsgInvalidOption  = "invalid_option"

	MsgAdminNewReceipt    = "admin_new_receipt"
	MsgAdminApproveButton = "admin_approve_button"
	MsgAdminRejectButton  = "admin_reject_button"
	MsgAdminApproved      = "admin_approved"
	MsgAdminRejected      = "admin_rejected"
)

// rejections are the prompts sent when input fails a step's validation.
var rejections = map[string]model.Step{
	MsgNameInvalid:    model.StepName,
	MsgPhoneInvalid:   model.StepPhone,
	MsgEmailInvalid:   model.StepEmail,
	MsgReceiptInvalid: model.StepReceipt,
}

// Keyboard selects the reply markup attached to a prompt.
type Keyboard int

const (
	KeyboardNone Keyboard = iota
	KeyboardMainMenu
	KeyboardProvinces
	KeyboardPlans
)

// Event is an inbound chat message. FileID is set for photos and documents.
type Event struct {
	Text   string
	FileID string
}

func (e Event) HasMedia() bool { return e.FileID != "" }

// Effect is an action decided by the machine and carried out by the executor.
type Effect interface {
	effect()
}

// SendPrompt sends the message stored under Key to the user.
type SendPrompt struct {
	Key      string
	Keyboard Keyboard
}

// SubmitReceipt attaches an uploaded receipt to a pending registration
// and hands it to the admin chat for review.
type SubmitReceipt struct {
	RegistrationID string
	FileID         string
	FullName       string
}

func (SendPrompt) effect()    {}
func (SubmitReceipt) effect() {}

// Machine holds the transition rules of the registration flow. It performs no I/O.
type Machine struct {
	triggers map[string]struct{}
}

// NewMachine builds a machine that starts registration on any of triggers.
func NewMachine(triggers ...string) *Machine {
	m := &Machine{triggers: make(map[string]struct{}, len(triggers))}
	for _, t := range triggers {
		if t = strings.TrimSpace(t); t != "" {
			m.triggers[t] = struct{}{}
		}
	}
	return m
}

func (m *Machine) isTrigger(text string) bool {
	_, ok := m.triggers[text]
	return ok
}

// Next computes the state following ev and the effects to run. st is not mutated.
func (m *Machine) Next(st model.ConversationState, ev Event) (model.ConversationState, []Effect) {
	text := strings.TrimSpace(ev.Text)

	switch {
	case text == CommandStart:
		return model.IdleState(), prompt(MsgWelcomeStart, KeyboardMainMenu)
	case m.isTrigger(text):
		return model.IdleState().Advance("", "", model.StepName), prompt(MsgAskFullName, KeyboardNone)
	}

	switch st.Step {
	case model.StepName:
		if !ValidFullName(text) {
			return st, prompt(MsgNameInvalid, KeyboardNone)
		}
		return st.Advance(model.FieldFullName, text, model.StepCompany), prompt(MsgAskCompany, KeyboardNone)

	case model.StepCompany:
		if text == "" {
			return st, prompt(MsgAskCompany, KeyboardNone)
		}
		return st.Advance(model.FieldCompany, text, model.StepPhone), prompt(MsgAskPhone, KeyboardNone)

	case model.StepPhone:
		if !ValidPhone(text) {
			return st, prompt(MsgPhoneInvalid, KeyboardNone)
		}
		return st.Advance(model.FieldPhone, text, model.StepProvince), prompt(MsgAskProvince, KeyboardProvinces)

	case model.StepProvince:
		if text == "" {
			return st, prompt(MsgAskProvince, KeyboardProvinces)
		}
		return st.Advance(model.FieldProvince, text, model.StepEmail), prompt(MsgAskEmail, KeyboardNone)

	case model.StepEmail:
		if !ValidGmail(text) {
			return st, prompt(MsgEmailInvalid, KeyboardNone)
		}
		return st.Advance(model.FieldEmail, text, model.StepPlan), prompt(MsgAskPlan, KeyboardPlans)

	case model.StepPlan:
		// plans are chosen with the inline buttons
		return st, prompt(MsgAskPlan, KeyboardPlans)

	case model.StepReceipt:
		if !ev.HasMedia() {
			return st, prompt(MsgReceiptInvalid, KeyboardNone)
		}
		return model.IdleState(), []Effect{SubmitReceipt{
			RegistrationID: st.PendingRegistrationID,
			FileID:         ev.FileID,
			FullName:       st.Field(model.FieldFullName),
		}}

	default:
		return model.IdleState(), prompt(MsgInvalidOption, KeyboardNone)
	}
}

// Rejected reports the step whose validation failed, if any effect is a rejection prompt.
func Rejected(effects []Effect) (model.Step, bool) {
	for _, e := range effects {
		if p, ok := e.(SendPrompt); ok {
			if step, ok := rejections[p.Key]; ok {
				return step, true
			}
		}
	}
	return model.StepIdle, false
}

func prompt(key string, kb Keyboard) []Effect {
	return []Effect{SendPrompt{Key: key, Keyboard: kb}}
}

// File: internal/usecase/registration_uc.go
package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"telegram-registration-bot/internal/domain"
	"telegram-registration-bot/internal/domain/model"
	"telegram-registration-bot/internal/domain/ports/adapter"
	"telegram-registration-bot/internal/domain/ports/repository"
	"telegram-registration-bot/internal/infra/logging"
	"telegram-registration-bot/internal/infra/metrics"
)

// Compile-time check
var _ RegistrationUseCase = (*registrationUC)(nil)

// RegistrationUseCase drives the registration flow. Calls for the same chat must not run concurrently.
type RegistrationUseCase interface {
	// HandleMessage advances the conversation with a text, photo or document message.
	HandleMessage(ctx context.Context, chatID int64, ev Event) error
	// SelectPlan handles a plan button press (plan:<Type>:<category>[:<id>]).
	SelectPlan(ctx context.Context, chatID int64, token string) error
	// HandleAdminAction applies an approve/reject decision from the admin chat.
	HandleAdminAction(ctx context.Context, action model.AdminAction) error
}

type registrationUC struct {
	machine  *Machine
	states   repository.ConversationStateRepository
	plans    repository.PlanRepository
	regs     repository.RegistrationRepository
	orders   OrderNumberAllocator
	settings *SettingsResolver
	bot      adapter.TelegramBotAdapter
	log      *zerolog.Logger
	now      func() time.Time
}

func NewRegistrationUseCase(
	machine *Machine,
	states repository.ConversationStateRepository,
	plans repository.PlanRepository,
	regs repository.RegistrationRepository,
	orders OrderNumberAllocator,
	settings *SettingsResolver,
	bot adapter.TelegramBotAdapter,
	logger *zerolog.Logger,
) *registrationUC {
	return &registrationUC{
		machine:  machine,
		states:   states,
		plans:    plans,
		regs:     regs,
		orders:   orders,
		settings: settings,
		bot:      bot,
		log:      logger,
		now:      time.Now,
	}
}

func (u *registrationUC) HandleMessage(ctx context.Context, chatID int64, ev Event) error {
	defer logging.TraceDuration(u.log, "RegistrationUC.HandleMessage")()

	st, err := u.loadState(ctx, chatID)
	if err != nil {
		return err
	}

	next, effects := u.machine.Next(*st, ev)
	if err := next.Validate(); err != nil {
		return fmt.Errorf("transition from %s: %w", st.Step, err)
	}

	// Store writes happen before the state moves on so a failed write leaves the user at the same step.
	for _, e := range effects {
		if sub, ok := e.(SubmitReceipt); ok {
			if err := u.attachReceipt(ctx, sub); err != nil {
				return err
			}
		}
	}

	if err := u.saveState(ctx, chatID, next); err != nil {
		return err
	}
	if st.Step != next.Step {
		metrics.IncTransition(st.Step.String(), next.Step.String())
	}
	if step, ok := Rejected(effects); ok {
		metrics.IncValidationFailure(step.String())
	}

	for _, e := range effects {
		switch eff := e.(type) {
		case SendPrompt:
			if err := u.sendPrompt(ctx, chatID, eff.Key, eff.Keyboard); err != nil {
				return err
			}
		case SubmitReceipt:
			if err := u.sendPrompt(ctx, chatID, MsgReceiptWaiting, KeyboardNone); err != nil {
				return err
			}
			if err := u.notifyAdmin(ctx, eff); err != nil {
				return err
			}
		}
	}
	return nil
}

func (u *registrationUC) SelectPlan(ctx context.Context, chatID int64, token string) error {
	defer logging.TraceDuration(u.log, "RegistrationUC.SelectPlan")()

	st, err := u.loadState(ctx, chatID)
	if err != nil {
		return err
	}
	if st.Step != model.StepPlan || !st.HasIdentity() {
		if err := u.sendPrompt(ctx, chatID, MsgInvalidOption, KeyboardNone); err != nil {
			return err
		}
		return fmt.Errorf("plan button at step %s: %w", st.Step, domain.ErrStaleSelection)
	}

	sel, err := model.ParsePlanToken(token)
	if err != nil {
		return err
	}
	plan, err := u.resolvePlan(ctx, sel)
	if errors.Is(err, domain.ErrPlanNotFound) {
		if sendErr := u.sendPrompt(ctx, chatID, MsgInvalidOption, KeyboardNone); sendErr != nil {
			return sendErr
		}
	}
	if err != nil {
		return err
	}

	orderID, err := u.orders.Next(ctx, sel.Category.OrderPrefix())
	if err != nil {
		return err
	}

	now := u.now().In(IranTime)
	reg, err := model.NewRegistration(chatID, *st, plan, orderID, now)
	if err != nil {
		return fmt.Errorf("build registration: %w", err)
	}
	if err := u.regs.Create(ctx, reg); err != nil {
		return fmt.Errorf("create registration: %w", err)
	}
	metrics.IncRegistrationCreated(string(plan.PlanType))
	u.log.Info().Int64("tg_id", chatID).Str("order_id", orderID).Str("plan_type", string(plan.PlanType)).
		Str("registration_id", reg.ID).Msg("registration created")

	if plan.IsTrial() {
		if err := u.saveState(ctx, chatID, model.IdleState()); err != nil {
			return err
		}
		metrics.IncTransition(st.Step.String(), model.StepIdle.String())
		return u.sendPrompt(ctx, chatID, MsgTrialSuccess, KeyboardNone)
	}

	next := st.AwaitReceipt(reg.ID)
	if err := next.Validate(); err != nil {
		return fmt.Errorf("registration %s: %w: %w", orderID, domain.ErrUpstream, err)
	}
	text, err := u.paymentText(ctx, reg, now)
	if err != nil {
		return err
	}
	if err := u.saveState(ctx, chatID, next); err != nil {
		return err
	}
	metrics.IncTransition(st.Step.String(), model.StepReceipt.String())
	return u.bot.SendMessage(ctx, adapter.SendMessageParams{ChatID: chatID, Text: text})
}

func (u *registrationUC) HandleAdminAction(ctx context.Context, action model.AdminAction) error {
	defer logging.TraceDuration(u.log, "RegistrationUC.HandleAdminAction")()

	adminID, err := u.settings.AdminChatID(ctx)
	if err != nil {
		return err
	}
	if action.ChatID != adminID {
		metrics.IncAdminDecision("unauthorized")
		return fmt.Errorf("chat %d: %w", action.ChatID, domain.ErrUnauthorizedAdmin)
	}

	if err := u.regs.Patch(ctx, action.RegistrationID, model.ApprovalPatch(action.Decision)); err != nil {
		return fmt.Errorf("patch registration %s: %w", action.RegistrationID, err)
	}
	metrics.IncAdminDecision(string(action.Decision))
	u.log.Info().Str("registration_id", action.RegistrationID).Str("decision", string(action.Decision)).Msg("receipt reviewed")

	key := MsgAdminRejected
	if action.Decision == model.DecisionApprove {
		key = MsgAdminApproved
	}
	text, err := u.settings.Message(ctx, key)
	if err != nil {
		return err
	}
	return u.bot.EditMessageText(ctx, action.ChatID, action.MessageID, text)
}

func (u *registrationUC) loadState(ctx context.Context, chatID int64) (*model.ConversationState, error) {
	st, err := u.states.GetState(ctx, chatID)
	if errors.Is(err, domain.ErrNotFound) {
		idle := model.IdleState()
		return &idle, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load state: %w", err)
	}
	return st, nil
}

func (u *registrationUC) saveState(ctx context.Context, chatID int64, st model.ConversationState) error {
	if st.IsIdle() {
		if err := u.states.ClearState(ctx, chatID); err != nil {
			return fmt.Errorf("clear state: %w", err)
		}
		return nil
	}
	st.UpdatedAt = u.now()
	if err := u.states.SetState(ctx, chatID, &st); err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	return nil
}

func (u *registrationUC) resolvePlan(ctx context.Context, sel model.PlanSelection) (*model.PlanOffering, error) {
	var (
		plan *model.PlanOffering
		err  error
	)
	if sel.ID != "" {
		plan, err = u.plans.FindByID(ctx, sel.Category, sel.ID)
	} else {
		plan, err = u.plans.FindActive(ctx, sel.Category, sel.Type)
	}
	if err != nil {
		return nil, fmt.Errorf("resolve plan %s: %w", sel.Token(), err)
	}
	if !plan.Active {
		return nil, fmt.Errorf("plan %s is inactive: %w", plan.ID, domain.ErrPlanNotFound)
	}
	return plan, nil
}

func (u *registrationUC) attachReceipt(ctx context.Context, sub SubmitReceipt) error {
	if sub.RegistrationID == "" {
		return domain.ErrNoPendingRegistration
	}
	url, err := u.bot.FileURL(ctx, sub.FileID)
	if err != nil {
		return fmt.Errorf("resolve receipt file: %w", err)
	}
	if err := u.regs.Patch(ctx, sub.RegistrationID, model.ReceiptPatch(url)); err != nil {
		return fmt.Errorf("attach receipt to %s: %w", sub.RegistrationID, err)
	}
	return nil
}

func (u *registrationUC) notifyAdmin(ctx context.Context, sub SubmitReceipt) error {
	adminID, err := u.settings.AdminChatID(ctx)
	if err != nil {
		return err
	}
	tpl, err := u.settings.Message(ctx, MsgAdminNewReceipt)
	if err != nil {
		return err
	}
	approve, err := u.settings.Message(ctx, MsgAdminApproveButton)
	if err != nil {
		return err
	}
	reject, err := u.settings.Message(ctx, MsgAdminRejectButton)
	if err != nil {
		return err
	}

	return u.bot.SendMessage(ctx, adapter.SendMessageParams{
		ChatID: adminID,
		Text:   renderTemplate(tpl, map[string]string{"full_name": sub.FullName}),
		ReplyMarkup: &adapter.ReplyMarkup{
			Buttons: [][]adapter.Button{{
				{Text: approve, Data: model.AdminToken(model.DecisionApprove, sub.RegistrationID)},
				{Text: reject, Data: model.AdminToken(model.DecisionReject, sub.RegistrationID)},
			}},
			IsInline: true,
		},
	})
}

func (u *registrationUC) paymentText(ctx context.Context, reg *model.Registration, at time.Time) (string, error) {
	tpl, err := u.settings.Message(ctx, MsgPayment)
	if err != nil {
		return "", err
	}
	cardNumber, err := u.settings.Config(ctx, ConfigCardNumber)
	if err != nil {
		return "", err
	}
	cardName, err := u.settings.Config(ctx, ConfigCardName)
	if err != nil {
		return "", err
	}
	return RenderPaymentMessage(tpl, PaymentDetails{
		FullName:   reg.FullName,
		PlanLabel:  reg.PlanLabel,
		OrderID:    reg.OrderID,
		Price:      reg.Amount,
		CardNumber: cardNumber,
		CardName:   cardName,
		At:         at,
	}), nil
}

func (u *registrationUC) sendPrompt(ctx context.Context, chatID int64, key string, kb Keyboard) error {
	text, err := u.settings.Message(ctx, key)
	if err != nil {
		return err
	}
	markup, err := u.keyboard(ctx, kb)
	if err != nil {
		return err
	}
	return u.bot.SendMessage(ctx, adapter.SendMessageParams{ChatID: chatID, Text: text, ReplyMarkup: markup})
}

func (u *registrationUC) keyboard(ctx context.Context, kb Keyboard) (*adapter.ReplyMarkup, error) {
	switch kb {
	case KeyboardMainMenu:
		labels, err := u.settings.UILabels(ctx)
		if err != nil {
			return nil, err
		}
		rows := make([][]adapter.Button, 0, len(MainMenuLabels))
		for _, keys := range MainMenuLabels {
			row := make([]adapter.Button, 0, len(keys))
			for _, k := range keys {
				row = append(row, adapter.Button{Text: labels[k]})
			}
			rows = append(rows, row)
		}
		return &adapter.ReplyMarkup{Buttons: rows}, nil

	case KeyboardProvinces:
		provinces, err := u.settings.Provinces(ctx)
		if err != nil {
			return nil, err
		}
		rows := make([][]adapter.Button, 0, len(provinces))
		for _, p := range provinces {
			rows = append(rows, []adapter.Button{{Text: p}})
		}
		return &adapter.ReplyMarkup{Buttons: rows}, nil

	case KeyboardPlans:
		rows := make([][]adapter.Button, 0, len(model.MenuPlanTypes))
		for _, pt := range model.MenuPlanTypes {
			label, err := u.settings.Message(ctx, "plan_button_"+string(pt))
			if err != nil {
				return nil, err
			}
			if label == "" {
				label = string(pt)
			}
			sel := model.PlanSelection{Type: pt, Category: model.CategoryFirst}
			rows = append(rows, []adapter.Button{{Text: label, Data: sel.Token()}})
		}
		return &adapter.ReplyMarkup{Buttons: rows, IsInline: true}, nil
	}
	return nil, nil
}

//go:build !integration

package usecase

import (
	"context"
	"sync"

	"telegram-registration-bot/internal/domain"
	"telegram-registration-bot/internal/domain/model"
)

func collectedPlanState() model.ConversationState {
	return model.IdleState().
		Advance(model.FieldFullName, "Reza Karimi", model.StepCompany).
		Advance(model.FieldCompany, "Acme", model.StepPhone).
		Advance(model.FieldPhone, "09123456789", model.StepProvince).
		Advance(model.FieldProvince, "Tehran", model.StepEmail).
		Advance(model.FieldEmail, "reza@gmail.com", model.StepPlan)
}

// memStateRepo is a small in-memory state store used by unit tests.
type memStateRepo struct {
	mu     sync.Mutex
	states map[int64]model.ConversationState
	setErr error
}

func newMemStateRepo() *memStateRepo {
	return &memStateRepo{states: map[int64]model.ConversationState{}}
}

func (m *memStateRepo) SetState(ctx context.Context, chatID int64, st *model.ConversationState) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[chatID] = *st
	return nil
}

func (m *memStateRepo) GetState(ctx context.Context, chatID int64) (*model.ConversationState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.states[chatID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &st, nil
}

func (m *memStateRepo) ClearState(ctx context.Context, chatID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.states, chatID)
	return nil
}

// memPlanRepo holds offerings per category.
type memPlanRepo struct {
	plans map[model.PlanCategory][]*model.PlanOffering
}

func newMemPlanRepo(plans ...*model.PlanOffering) *memPlanRepo {
	r := &memPlanRepo{plans: map[model.PlanCategory][]*model.PlanOffering{}}
	for _, p := range plans {
		r.plans[p.Category] = append(r.plans[p.Category], p)
	}
	return r
}

func (r *memPlanRepo) FindByID(ctx context.Context, category model.PlanCategory, id string) (*model.PlanOffering, error) {
	for _, p := range r.plans[category] {
		if p.ID == id {
			cp := *p
			return &cp, nil
		}
	}
	return nil, domain.ErrPlanNotFound
}

func (r *memPlanRepo) FindActive(ctx context.Context, category model.PlanCategory, planType model.PlanType) (*model.PlanOffering, error) {
	for _, p := range r.plans[category] {
		if p.PlanType == planType && p.Active {
			cp := *p
			return &cp, nil
		}
	}
	return nil, domain.ErrPlanNotFound
}

// memRegistrationRepo assigns sequential ids.
type memRegistrationRepo struct {
	mu        sync.Mutex
	regs      map[string]*model.Registration
	seq       int
	patches   int
	createErr error
	patchErr  error
	omitID    bool
}

func newMemRegistrationRepo() *memRegistrationRepo {
	return &memRegistrationRepo{regs: map[string]*model.Registration{}}
}

func (r *memRegistrationRepo) Create(ctx context.Context, reg *model.Registration) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	if r.omitID {
		return nil
	}
	reg.ID = "reg-" + itoa(r.seq)
	cp := *reg
	r.regs[reg.ID] = &cp
	return nil
}

func (r *memRegistrationRepo) Patch(ctx context.Context, id string, patch model.RegistrationPatch) error {
	if r.patchErr != nil {
		return r.patchErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	reg, ok := r.regs[id]
	if !ok {
		return domain.ErrNotFound
	}
	r.patches++
	if patch.ReceiptURL != "" {
		reg.ReceiptURL = patch.ReceiptURL
	}
	if patch.ReceiptStatus != "" {
		reg.ReceiptStatus = patch.ReceiptStatus
	}
	if patch.Status != "" {
		reg.Status = patch.Status
	}
	return nil
}

func (r *memRegistrationRepo) get(id string) model.Registration {
	r.mu.Lock()
	defer r.mu.Unlock()
	if reg, ok := r.regs[id]; ok {
		return *reg
	}
	return model.Registration{}
}

func (r *memRegistrationRepo) only() model.Registration {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, reg := range r.regs {
		return *reg
	}
	return model.Registration{}
}

// memCounterRepo stores counters by key.
type memCounterRepo struct {
	mu       sync.Mutex
	counters map[string]model.Counter
	creates  int
	updates  int
}

func newMemCounterRepo() *memCounterRepo {
	return &memCounterRepo{counters: map[string]model.Counter{}}
}

func (r *memCounterRepo) Get(ctx context.Context, key string) (*model.Counter, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.counters[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &c, nil
}

func (r *memCounterRepo) Create(ctx context.Context, c *model.Counter) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.creates++
	c.ID = "ctr-" + c.Key
	r.counters[c.Key] = *c
	return nil
}

func (r *memCounterRepo) Update(ctx context.Context, c *model.Counter) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updates++
	r.counters[c.Key] = *c
	return nil
}

// memSettingsRepo answers from fixed maps.
type memSettingsRepo struct {
	config    map[string]string
	messages  map[string]string
	ui        map[string]string
	provinces []string
	err       error
}

func newMemSettingsRepo() *memSettingsRepo {
	return &memSettingsRepo{
		config: map[string]string{
			"admin_group_id": "-100500",
			"card_number":    "6037-9911-0000-0000",
			"card_name":      "Acme Co",
		},
		messages: map[string]string{
			"welcome_start":   "welcome",
			"ask_fullname":    "your full name?",
			"name_invalid":    "bad name",
			"ask_company":     "company?",
			"ask_phone":       "phone?",
			"phone_invalid":   "bad phone",
			"ask_province":    "province?",
			"ask_email":       "email?",
			"email_invalid":   "bad email",
			"ask_plan":        "pick a plan",
			"trial_success":   "trial active",
			"pay_msg":         "{full_name} {plan_label} {order_id} {price} {card_number} {card_name}",
			"receipt_invalid": "send a photo",
			"receipt_waiting": "under review",
			"invalid_option":  "invalid option",
		},
		ui: map[string]string{
			"label_start":  "📝 شروع ثبت‌نام",
			"label_info":   "info",
			"label_status": "status",
		},
		provinces: []string{"Tehran", "Fars", "Gilan"},
	}
}

func (r *memSettingsRepo) Config(ctx context.Context, key string) (string, error) {
	return r.config[key], r.err
}

func (r *memSettingsRepo) Message(ctx context.Context, key string) (string, error) {
	return r.messages[key], r.err
}

func (r *memSettingsRepo) UILabels(ctx context.Context) (map[string]string, error) {
	return r.ui, r.err
}

func (r *memSettingsRepo) Provinces(ctx context.Context) ([]string, error) {
	return r.provinces, r.err
}

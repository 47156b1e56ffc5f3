package memory

import (
	"context"
	"sync"
	"time"

	"telegram-registration-bot/internal/domain"
	"telegram-registration-bot/internal/domain/model"
	"telegram-registration-bot/internal/domain/ports/repository"
)

var _ repository.ConversationStateRepository = (*StateRepo)(nil)

// StateRepo is the single-process conversation state store.
// Entries older than ttl read as missing and are removed by Sweep.
type StateRepo struct {
	mu     sync.Mutex
	states map[int64]model.ConversationState
	ttl    time.Duration
	now    func() time.Time
}

func NewStateRepo(ttl time.Duration) *StateRepo {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &StateRepo{
		states: make(map[int64]model.ConversationState),
		ttl:    ttl,
		now:    time.Now,
	}
}

func (r *StateRepo) SetState(ctx context.Context, chatID int64, state *model.ConversationState) error {
	if state == nil {
		return domain.ErrInvalidArgument
	}
	st := *state
	st.Collected = make(map[string]string, len(state.Collected))
	for k, v := range state.Collected {
		st.Collected[k] = v
	}
	st.UpdatedAt = r.now()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.states[chatID] = st
	return nil
}

func (r *StateRepo) GetState(ctx context.Context, chatID int64) (*model.ConversationState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	st, ok := r.states[chatID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if r.expired(st, r.now()) {
		delete(r.states, chatID)
		return nil, domain.ErrNotFound
	}
	out := st
	out.Collected = make(map[string]string, len(st.Collected))
	for k, v := range st.Collected {
		out.Collected[k] = v
	}
	return &out, nil
}

func (r *StateRepo) ClearState(ctx context.Context, chatID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.states, chatID)
	return nil
}

// Sweep drops every state that has outlived the TTL and returns how many were removed.
func (r *StateRepo) Sweep(ctx context.Context) (int, error) {
	now := r.now()
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for id, st := range r.states {
		if err := ctx.Err(); err != nil {
			return n, err
		}
		if r.expired(st, now) {
			delete(r.states, id)
			n++
		}
	}
	return n, nil
}

func (r *StateRepo) expired(st model.ConversationState, now time.Time) bool {
	return now.Sub(st.UpdatedAt) > r.ttl
}

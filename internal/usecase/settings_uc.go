package usecase

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"telegram-registration-bot/internal/domain"
	"telegram-registration-bot/internal/domain/ports/repository"
)

// Config keys read from the record store.
const (
	ConfigTelegramToken = "telegram_token"
	ConfigAdminGroupID  = "admin_group_id"
	ConfigCardNumber    = "card_number"
	ConfigCardName      = "card_name"
)

// MainMenuLabels are the ui keys of the main menu, one slice per keyboard row.
var MainMenuLabels = [][]string{
	{"label_start"},
	{"label_info", "label_status"},
	{"label_about"},
	{"label_channel", "label_support"},
}

// Catalog is a read-only source of default texts.
type Catalog interface {
	Lookup(key string) (string, bool)
}

// SettingsResolver reads settings from the record store and falls back to the
// built-in catalog for texts the store does not define.
type SettingsResolver struct {
	repo    repository.SettingsRepository
	catalog Catalog
}

func NewSettingsResolver(repo repository.SettingsRepository, catalog Catalog) *SettingsResolver {
	return &SettingsResolver{repo: repo, catalog: catalog}
}

func (r *SettingsResolver) Config(ctx context.Context, key string) (string, error) {
	v, err := r.repo.Config(ctx, key)
	if err != nil {
		return "", fmt.Errorf("config %q: %w", key, err)
	}
	return strings.TrimSpace(v), nil
}

// Message returns the prompt stored under key.
func (r *SettingsResolver) Message(ctx context.Context, key string) (string, error) {
	v, err := r.repo.Message(ctx, key)
	if err != nil {
		return "", fmt.Errorf("message %q: %w", key, err)
	}
	if v != "" {
		return v, nil
	}
	return r.fallback(key), nil
}

// UILabels returns every ui label the store defines, completed with catalog defaults for the main menu.
func (r *SettingsResolver) UILabels(ctx context.Context) (map[string]string, error) {
	labels, err := r.repo.UILabels(ctx)
	if err != nil {
		return nil, fmt.Errorf("ui labels: %w", err)
	}
	out := make(map[string]string, len(labels)+6)
	for k, v := range labels {
		out[k] = v
	}
	for _, row := range MainMenuLabels {
		for _, key := range row {
			if out[key] == "" {
				out[key] = r.fallback(key)
			}
		}
	}
	return out, nil
}

func (r *SettingsResolver) Provinces(ctx context.Context) ([]string, error) {
	ps, err := r.repo.Provinces(ctx)
	if err != nil {
		return nil, fmt.Errorf("provinces: %w", err)
	}
	return ps, nil
}

// AdminChatID parses the admin_group_id setting.
func (r *SettingsResolver) AdminChatID(ctx context.Context) (int64, error) {
	v, err := r.Config(ctx, ConfigAdminGroupID)
	if err != nil {
		return 0, err
	}
	if v == "" {
		return 0, fmt.Errorf("config %q: %w", ConfigAdminGroupID, domain.ErrNotFound)
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("config %q=%q: %w", ConfigAdminGroupID, v, domain.ErrInvalidArgument)
	}
	return id, nil
}

func (r *SettingsResolver) fallback(key string) string {
	if r.catalog == nil {
		return ""
	}
	v, _ := r.catalog.Lookup(key)
	return v
}

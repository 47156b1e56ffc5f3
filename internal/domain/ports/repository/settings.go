package repository

import "context"

// SettingsRepository resolves operational settings, prompt texts and UI labels.
// Unknown keys resolve to "" without error.
type SettingsRepository interface {
	Config(ctx context.Context, key string) (string, error)
	Message(ctx context.Context, key string) (string, error)
	UILabels(ctx context.Context) (map[string]string, error)
	Provinces(ctx context.Context) ([]string, error)
}

package pocketbase

import (
	"context"
	"fmt"

	"telegram-registration-bot/internal/domain/ports/repository"
)

const (
	collConfig    = "config"
	collMessages  = "messages"
	collUI        = "ui"
	collProvinces = "provinces"
)

// Ensure interface compliance
var _ repository.SettingsRepository = (*SettingsRepo)(nil)

// SettingsRepo reads the key/value collections. Nothing is cached.
type SettingsRepo struct {
	client *Client
}

func NewSettingsRepo(client *Client) *SettingsRepo {
	return &SettingsRepo{client: client}
}

type keyValueRecord struct {
	Key   string     `json:"key"`
	Value flexString `json:"value"`
}

type messageRecord struct {
	Key  string `json:"key"`
	Text string `json:"text"`
}

type provinceRecord struct {
	Name string `json:"name"`
}

func (r *SettingsRepo) Config(ctx context.Context, key string) (string, error) {
	var items []keyValueRecord
	if err := r.client.List(ctx, collConfig, Eq("key", key), &items); err != nil {
		return "", fmt.Errorf("Config %s: %w", key, err)
	}
	if len(items) == 0 {
		return "", nil
	}
	return string(items[0].Value), nil
}

func (r *SettingsRepo) Message(ctx context.Context, key string) (string, error) {
	var items []messageRecord
	if err := r.client.List(ctx, collMessages, Eq("key", key), &items); err != nil {
		return "", fmt.Errorf("Message %s: %w", key, err)
	}
	if len(items) == 0 {
		return "", nil
	}
	return items[0].Text, nil
}

func (r *SettingsRepo) UILabels(ctx context.Context) (map[string]string, error) {
	var items []keyValueRecord
	if err := r.client.List(ctx, collUI, "", &items); err != nil {
		return nil, fmt.Errorf("UILabels: %w", err)
	}
	out := make(map[string]string, len(items))
	for _, it := range items {
		out[it.Key] = string(it.Value)
	}
	return out, nil
}

func (r *SettingsRepo) Provinces(ctx context.Context) ([]string, error) {
	var items []provinceRecord
	if err := r.client.List(ctx, collProvinces, "", &items); err != nil {
		return nil, fmt.Errorf("Provinces: %w", err)
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		if it.Name != "" {
			out = append(out, it.Name)
		}
	}
	return out, nil
}

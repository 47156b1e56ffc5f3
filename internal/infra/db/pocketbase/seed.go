package pocketbase

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"telegram-registration-bot/internal/domain/model"
)

// SeedPlan is created in plans_<Category> unless a record with the same key exists.
type SeedPlan struct {
	Key      string
	Label    string
	PlanType model.PlanType
	Category model.PlanCategory
	Days     int
	Price    int64
}

type SeedData struct {
	Config    map[string]string
	Messages  map[string]string
	UI        map[string]string
	Provinces []string
	Plans     []SeedPlan
}

type SeedReport struct {
	Created int
	Skipped int
}

// Seeder fills an empty store with defaults. Existing records are never modified.
type Seeder struct {
	client *Client
	log    *zerolog.Logger
}

func NewSeeder(client *Client, logger *zerolog.Logger) *Seeder {
	seedLog := logger.With().Str("component", "Seeder").Logger()
	return &Seeder{client: client, log: &seedLog}
}

func (s *Seeder) Seed(ctx context.Context, data SeedData) (SeedReport, error) {
	var rep SeedReport

	for _, k := range sortedKeys(data.Config) {
		if err := s.ensure(ctx, collConfig, "key", k, keyValueBody{Key: k, Value: data.Config[k]}, &rep); err != nil {
			return rep, err
		}
	}
	for _, k := range sortedKeys(data.Messages) {
		if err := s.ensure(ctx, collMessages, "key", k, messageRecord{Key: k, Text: data.Messages[k]}, &rep); err != nil {
			return rep, err
		}
	}
	for _, k := range sortedKeys(data.UI) {
		if err := s.ensure(ctx, collUI, "key", k, keyValueBody{Key: k, Value: data.UI[k]}, &rep); err != nil {
			return rep, err
		}
	}
	for _, name := range data.Provinces {
		if err := s.ensure(ctx, collProvinces, "name", name, provinceRecord{Name: name}, &rep); err != nil {
			return rep, err
		}
	}
	for _, p := range data.Plans {
		coll, err := PlansCollection(p.Category)
		if err != nil {
			return rep, err
		}
		body := planBody{
			Key:      p.Key,
			Label:    p.Label,
			PlanType: string(p.PlanType),
			Category: string(p.Category),
			Days:     p.Days,
			Price:    p.Price,
			Active:   true,
		}
		if err := s.ensure(ctx, coll, "key", p.Key, body, &rep); err != nil {
			return rep, err
		}
	}
	return rep, nil
}

type keyValueBody struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type planBody struct {
	Key      string `json:"key"`
	Label    string `json:"label"`
	PlanType string `json:"plan_type"`
	Category string `json:"category"`
	Days     int    `json:"days"`
	Price    int64  `json:"price"`
	Active   bool   `json:"active"`
}

func (s *Seeder) ensure(ctx context.Context, coll, field, value string, body any, rep *SeedReport) error {
	var existing []json.RawMessage
	if err := s.client.List(ctx, coll, Eq(field, value), &existing); err != nil {
		return fmt.Errorf("seed %s %s: %w", coll, value, err)
	}
	if len(existing) > 0 {
		rep.Skipped++
		return nil
	}
	if err := s.client.Create(ctx, coll, body, nil); err != nil {
		return fmt.Errorf("seed %s %s: %w", coll, value, err)
	}
	rep.Created++
	s.log.Debug().Str("collection", coll).Str(field, value).Msg("seeded")
	return nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"telegram-registration-bot/internal/config"
	"telegram-registration-bot/internal/domain/model"
	pb "telegram-registration-bot/internal/infra/db/pocketbase"
	"telegram-registration-bot/internal/infra/i18n"
	"telegram-registration-bot/internal/infra/logging"
	"telegram-registration-bot/internal/usecase"
)

var provinces = []string{
	"آذربایجان شرقی", "آذربایجان غربی", "اردبیل", "اصفهان", "البرز", "ایلام", "بوشهر", "تهران",
	"چهارمحال و بختیاری", "خراسان جنوبی", "خراسان رضوی", "خراسان شمالی", "خوزستان", "زنجان",
	"سمنان", "سیستان و بلوچستان", "فارس", "قزوین", "قم", "کردستان", "کرمان", "کرمانشاه",
	"کهگیلویه و بویراحمد", "گلستان", "گیلان", "لرستان", "مازندران", "مرکزی", "هرمزگان", "همدان", "یزد",
}

var samplePlans = []pb.SeedPlan{
	{Key: "trial_3", Label: "Trial", PlanType: model.PlanTrial, Category: model.CategoryFirst, Days: 3},
	{Key: "mobile_30", Label: "Mobile", PlanType: model.PlanMobile, Category: model.CategoryFirst, Days: 30, Price: 250_000},
	{Key: "laptop_30", Label: "Laptop", PlanType: model.PlanLaptop, Category: model.CategoryFirst, Days: 30, Price: 350_000},
	{Key: "vip_30", Label: "Vip", PlanType: model.PlanVip, Category: model.CategoryFirst, Days: 30, Price: 500_000},
	{Key: "mobile_30", Label: "Mobile", PlanType: model.PlanMobile, Category: model.CategoryRenewal, Days: 30, Price: 220_000},
	{Key: "laptop_30", Label: "Laptop", PlanType: model.PlanLaptop, Category: model.CategoryRenewal, Days: 30, Price: 320_000},
	{Key: "vip_30", Label: "Vip", PlanType: model.PlanVip, Category: model.CategoryRenewal, Days: 30, Price: 450_000},
}

// Seeds an empty record store with the default catalog, provinces and sample plans.
// Records that already exist are left untouched.
func main() {
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	adminGroup := flag.String("admin-group", "", "admin_group_id to store when missing")
	cardNumber := flag.String("card-number", "", "card_number to store when missing")
	cardName := flag.String("card-name", "", "card_name to store when missing")
	withPlans := flag.Bool("plans", true, "seed sample plan offerings")
	flag.Parse()

	_ = godotenv.Load()

	// ---- Config ----
	cfg, err := config.LoadConfig(*cfgPath, true)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger := logging.New(cfg.Log, true)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	catalog, err := i18n.NewTranslator(i18n.LocalesFS, "fa")
	if err != nil {
		log.Fatalf("catalog: %v", err)
	}

	data := pb.SeedData{
		Config:    map[string]string{},
		Messages:  map[string]string{},
		UI:        map[string]string{},
		Provinces: provinces,
	}
	for k, v := range catalog.Entries() {
		if strings.HasPrefix(k, "label_") {
			data.UI[k] = v
			continue
		}
		data.Messages[k] = v
	}
	for key, v := range map[string]string{
		usecase.ConfigAdminGroupID: *adminGroup,
		usecase.ConfigCardNumber:   *cardNumber,
		usecase.ConfigCardName:     *cardName,
	} {
		if v != "" {
			data.Config[key] = v
		}
	}
	if *withPlans {
		data.Plans = samplePlans
	}

	seeder := pb.NewSeeder(pb.NewClient(cfg.RecordStore, logger), logger)
	rep, err := seeder.Seed(ctx, data)
	if err != nil {
		log.Fatalf("seed: %v", err)
	}
	fmt.Printf("✅ Seeding complete: %d created, %d already present.\n", rep.Created, rep.Skipped)
}

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"

	"telegram-registration-bot/internal/config"
	"telegram-registration-bot/internal/infra/api"
	pb "telegram-registration-bot/internal/infra/db/pocketbase"
	"telegram-registration-bot/internal/infra/logging"
	"telegram-registration-bot/internal/usecase"
)

// Registers (or removes) the bot's webhook so Telegram delivers updates to the app.
func main() {
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	baseURL := flag.String("url", "", "public base URL of the app, e.g. https://bot.example.com")
	remove := flag.Bool("delete", false, "delete the webhook instead of setting it")
	dropPending := flag.Bool("drop-pending", false, "drop updates queued while no webhook was set")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.LoadConfig(*cfgPath, false)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger := logging.New(cfg.Log, true)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	token := cfg.Bot.Token
	if token == "" {
		settings := usecase.NewSettingsResolver(pb.NewSettingsRepo(pb.NewClient(cfg.RecordStore, logger)), nil)
		if token, err = settings.Config(ctx, usecase.ConfigTelegramToken); err != nil {
			log.Fatalf("resolve bot token: %v", err)
		}
	}
	if token == "" {
		log.Fatal("bot token is not configured")
	}

	endpoint := cfg.Bot.APIEndpoint
	if endpoint == "" {
		endpoint = tgbotapi.APIEndpoint
	}
	bot, err := tgbotapi.NewBotAPIWithAPIEndpoint(token, endpoint)
	if err != nil {
		log.Fatalf("telegram: %v", err)
	}

	params := tgbotapi.Params{"drop_pending_updates": strconv.FormatBool(*dropPending)}
	if *remove {
		if _, err := bot.MakeRequest("deleteWebhook", params); err != nil {
			log.Fatalf("deleteWebhook: %v", err)
		}
		fmt.Println("🗑 webhook deleted")
		return
	}

	if *baseURL == "" {
		log.Fatal("-url is required")
	}
	params["url"] = strings.TrimRight(*baseURL, "/") + api.WebhookPath
	if cfg.Bot.WebhookSecret != "" {
		params["secret_token"] = cfg.Bot.WebhookSecret
	}
	if _, err := bot.MakeRequest("setWebhook", params); err != nil {
		log.Fatalf("setWebhook: %v", err)
	}

	info, err := bot.GetWebhookInfo()
	if err != nil {
		log.Fatalf("getWebhookInfo: %v", err)
	}
	fmt.Printf("✅ webhook set for @%s: %s (pending=%d)\n", bot.Self.UserName, info.URL, info.PendingUpdateCount)
	if info.LastErrorMessage != "" {
		fmt.Printf("last delivery error: %s\n", info.LastErrorMessage)
	}
}

// File: cmd/app/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"telegram-registration-bot/internal/config"
	"telegram-registration-bot/internal/domain/ports/adapter"
	"telegram-registration-bot/internal/domain/ports/repository"
	tele "telegram-registration-bot/internal/infra/adapters/telegram"
	"telegram-registration-bot/internal/infra/api"
	pb "telegram-registration-bot/internal/infra/db/pocketbase"
	"telegram-registration-bot/internal/infra/i18n"
	"telegram-registration-bot/internal/infra/logging"
	"telegram-registration-bot/internal/infra/memory"
	"telegram-registration-bot/internal/infra/metrics"
	red "telegram-registration-bot/internal/infra/redis"
	"telegram-registration-bot/internal/infra/sched"
	"telegram-registration-bot/internal/infra/worker"
	"telegram-registration-bot/internal/usecase"
)

var (
	version = "dev"
	commit  = "none"
)

const shutdownTimeout = 15 * time.Second

type botClient interface {
	adapter.TelegramBotAdapter
	tele.CallbackAnswerer
}

func main() {
	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs, noop bot without token)")
	flag.Parse()

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("dotenv: %v", err)
	}

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Warn().Msg("[DEV MODE] Enabled")
	}

	if err := run(cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("app stopped")
	}
}

func run(cfg *config.Config, logger *zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics.MustRegister()
	metrics.SetBuildInfo(version, commit)

	// ---- Record store ----
	store := pb.NewClient(cfg.RecordStore, logger)
	var plans repository.PlanRepository = pb.NewPlanRepo(store)
	regs := pb.NewRegistrationRepo(store)
	counters := pb.NewCounterRepo(store)

	catalog, err := i18n.NewTranslator(i18n.LocalesFS, "fa")
	if err != nil {
		return fmt.Errorf("message catalog: %w", err)
	}
	settings := usecase.NewSettingsResolver(pb.NewSettingsRepo(store), catalog)

	// ---- Redis (optional) ----
	var (
		redisClient *red.Client
		locker      repository.Locker
		handlerOpts = []tele.UpdateHandlerOption{tele.WithDevMode(cfg.Runtime.Dev)}
	)
	if cfg.Redis.URL != "" {
		redisClient, err = red.NewClient(ctx, &cfg.Redis)
		if err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		defer redisClient.Close()

		plans = red.NewPlanRepoCacheDecorator(plans, redisClient, cfg.Redis.TTL, logger)
		locker = red.NewLocker(redisClient)
		handlerOpts = append(handlerOpts,
			tele.WithDeduper(red.NewUpdateDeduper(redisClient, red.DefaultDedupTTL)),
			tele.WithRateLimiter(red.NewRateLimiter(redisClient), cfg.Bot.RateLimitPerMinute, red.ChatKey),
		)
		logger.Info().Msg("redis enabled: plan cache, order lock, update dedup")
	}

	// ---- Conversation state ----
	var (
		states  repository.ConversationStateRepository
		sweeper *sched.StateSweeper
	)
	switch cfg.State.Backend {
	case config.StateBackendRedis:
		states = red.NewStateRepo(redisClient, cfg.State.TTL)
	default:
		mem := memory.NewStateRepo(cfg.State.TTL)
		states = mem
		sweeper = sched.NewStateSweeper(cfg.State.SweepInterval, mem, logger)
	}
	logger.Info().Str("backend", cfg.State.Backend).Dur("ttl", cfg.State.TTL).Msg("conversation state store ready")

	// ---- Telegram ----
	bot, err := newBot(ctx, cfg, settings, logger)
	if err != nil {
		return err
	}
	if _, err := settings.AdminChatID(ctx); err != nil {
		logger.Warn().Err(err).Msg("admin_group_id is not usable; receipts cannot be reviewed")
	}

	// ---- Use case ----
	machine := usecase.NewMachine(cfg.Bot.RegisterTriggers...)
	orders := usecase.NewOrderAllocator(counters, locker, usecase.OrderLockTTL(cfg.RecordStore.Timeout), logger)
	regUC := usecase.NewRegistrationUseCase(machine, states, plans, regs, orders, settings, bot, logger)

	// ---- Dispatch ----
	pool := worker.NewKeyedPool(cfg.Bot.Workers, cfg.Bot.QueueSize, logger)
	pool.Start(context.WithoutCancel(ctx))
	handler := tele.NewUpdateHandler(regUC, pool, bot, cfg.Bot.EventTimeout, logger, handlerOpts...)

	// ---- HTTP ----
	srv := api.NewServer(&cfg.Bot, handler, logger)
	errc := make(chan error, 1)
	go func() { errc <- srv.Start() }()

	if sweeper != nil {
		go func() { _ = sweeper.Run(ctx) }()
	}

	// ---- Graceful shutdown ----
	var runErr error
	select {
	case <-ctx.Done():
		logger.Info().Msg("shutdown requested")
	case err := <-errc:
		if err != nil {
			runErr = fmt.Errorf("http server: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}
	pool.Stop()
	logger.Info().Msg("stopped")
	return runErr
}

// newBot prefers the configured token and falls back to the record store.
func newBot(ctx context.Context, cfg *config.Config, settings *usecase.SettingsResolver, logger *zerolog.Logger) (botClient, error) {
	token := cfg.Bot.Token
	if token == "" {
		stored, err := settings.Config(ctx, usecase.ConfigTelegramToken)
		if err != nil && !cfg.Runtime.Dev {
			return nil, fmt.Errorf("resolve bot token: %w", err)
		}
		token = stored
	}
	if token == "" {
		if cfg.Runtime.Dev {
			logger.Warn().Msg("no bot token; using noop telegram adapter")
			return tele.NewNoopBotAdapter(logger), nil
		}
		return nil, errors.New("bot token is not configured")
	}

	bot, err := tele.NewRealTelegramBotAdapter(&cfg.Bot, token, logger)
	if err != nil {
		return nil, fmt.Errorf("telegram: %w", err)
	}
	logger.Info().Str("username", bot.Username()).Msg("telegram bot authorized")
	return bot, nil
}

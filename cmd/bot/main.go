package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/support-bot/internal/ai"
	httptransport "github.com/spec-kit/support-bot/internal/api/http"
	"github.com/spec-kit/support-bot/internal/api/http/handlers"
	"github.com/spec-kit/support-bot/internal/config"
	"github.com/spec-kit/support-bot/internal/engine"
	"github.com/spec-kit/support-bot/internal/escalation"
	"github.com/spec-kit/support-bot/internal/events"
	"github.com/spec-kit/support-bot/internal/factguard"
	"github.com/spec-kit/support-bot/internal/observability"
	"github.com/spec-kit/support-bot/internal/persistence"
	"github.com/spec-kit/support-bot/internal/repository"
	"github.com/spec-kit/support-bot/internal/service"
	"github.com/spec-kit/support-bot/internal/settings"
	"github.com/spec-kit/support-bot/internal/transport/telegram"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	productRepo := repository.NewProductRepository(pool)
	settingRepo := repository.NewSettingRepository(pool)

	settingsService := settings.NewService(settingRepo, logger)

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()
	auditService := service.NewAuditService(dispatcher, logger, metrics)
	auditService.RegisterHandlers()

	var generator engine.Generator
	if client := ai.NewClient(cfg.AI, logger); client != nil {
		generator = client
		logger.Info("answer generator enabled", zap.String("model", cfg.AI.Model))
	} else {
		logger.Info("answer generator disabled, template answers only")
	}

	decisionEngine := engine.New(engine.Dependencies{
		Catalog:   productRepo,
		Settings:  settingsService,
		Guard:     factguard.New(logger),
		Generator: generator,
		Logger:    logger,
	})

	store := escalation.NewStore(dispatcher, nil)
	gateway := telegram.NewClient(cfg.Telegram, logger)
	scheduler := escalation.NewScheduler(escalation.SchedulerDependencies{
		Store:      store,
		Settings:   settingsService,
		Messenger:  gateway,
		Dispatcher: dispatcher,
		Logger:     logger,
	})

	runner := telegram.NewRunner(telegram.RunnerDependencies{
		Gateway:     gateway,
		Engine:      decisionEngine,
		Store:       store,
		Scheduler:   scheduler,
		Settings:    settingsService,
		Cursor:      telegram.NewRedisCursor(redis.Client),
		Metrics:     metrics,
		Logger:      logger,
		PollTimeout: cfg.Telegram.PollTimeout(),
		IdleSleep:   cfg.Telegram.IdleSleep(),
	})

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger)
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health: handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Ops:    handlers.NewOpsHandler(store, metrics, settingsService),
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	runner.Start()

	waitForShutdown(logger)

	runner.Stop()
	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}

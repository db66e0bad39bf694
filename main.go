package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gofiber/fiber/v2"

	"guildgate/config"
	controller "guildgate/controllers"
	"guildgate/gate"
	"guildgate/middleware"
	"guildgate/registry"
	"guildgate/rollout"
	"guildgate/routes"
	"guildgate/store"
	"guildgate/utils"
	"guildgate/worker"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		utils.NewLogger("development", "info").Fatalf("Failed to load configuration: %v", err)
	}
	logger := utils.NewLogger(cfg.Environment, cfg.LogLevel)

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{Dsn: cfg.SentryDSN, Environment: cfg.Environment}); err != nil {
			logger.Warnf("Sentry initialization failed: %v", err)
		}
		defer sentry.Flush(2 * time.Second)
	}

	db, err := config.ConnectDB(cfg)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}

	features := registry.Default()
	logger.WithField("features", len(features.List())).Info("Feature registry loaded")

	overrides := store.NewGuildFeatureStore(db, features)
	rolloutStore := store.NewRolloutStore(db)
	engine := rollout.NewEngine(rolloutStore, features, rollout.WithCompletionWindow(cfg.Rollout.CompletionWindow))
	evaluator := gate.NewEvaluator(features, overrides, rolloutStore)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rolloutWorker := worker.NewRolloutWorker(engine, cfg.Rollout.TickInterval, logger)
	workerDone := make(chan struct{})
	go func() {
		rolloutWorker.Start(ctx)
		close(workerDone)
	}()

	rateStore := middleware.NewRateLimitStorage(cfg.Redis)

	app := fiber.New(fiber.Config{DisableStartupMessage: cfg.Environment == "production"})
	app.Use(middleware.CORS(cfg.CORSAllowedOrigins))

	routes.SetupRoutes(app, routes.Dependencies{
		Features:   controller.NewFeatureController(features, overrides, evaluator, logger.WithField("component", "features")),
		Rollouts:   controller.NewRolloutController(engine, rolloutWorker, logger.WithField("component", "rollouts")),
		JWTSecret:  cfg.JWTSecret,
		RateLimit:  cfg.AdminRateLimit,
		RateStore:  rateStore,
		Logger:     logger,
		LogRequest: true,
	})

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig
		logger.Info("Shutting down...")
		cancel()
		<-workerDone
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			logger.Errorf("Server shutdown failed: %v", err)
		}
	}()

	logger.Infof("🚀 Server starting on port %s", cfg.ServerPort)
	if err := app.Listen(":" + cfg.ServerPort); err != nil {
		logger.Fatalf("Failed to start server: %v", err)
	}
	if rateStore != nil {
		_ = rateStore.Close()
	}
}

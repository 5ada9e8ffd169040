package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/offerhive/offerhive-backend/api/routes"
	"github.com/offerhive/offerhive-backend/internal/fees"
	"github.com/offerhive/offerhive-backend/internal/forms"
	"github.com/offerhive/offerhive-backend/internal/merchants"
	"github.com/offerhive/offerhive-backend/internal/notifications"
	"github.com/offerhive/offerhive-backend/internal/offers"
	squarewebhook "github.com/offerhive/offerhive-backend/internal/webhooks/square"
	"github.com/offerhive/offerhive-backend/pkg/config"
	"github.com/offerhive/offerhive-backend/pkg/db"
	"github.com/offerhive/offerhive-backend/pkg/logger"
	"github.com/offerhive/offerhive-backend/pkg/metrics"
	"github.com/offerhive/offerhive-backend/pkg/migrate"
	"github.com/offerhive/offerhive-backend/pkg/redis"
	"github.com/offerhive/offerhive-backend/pkg/square"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	registry := prometheus.NewRegistry()
	gatewayMetrics := metrics.NewGatewayMetrics(registry)
	webhookMetrics := metrics.NewWebhookMetrics(registry)

	squareClient, err := square.NewClient(context.Background(), cfg.Square, cfg.Gateway, logg, gatewayMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap square client", err)
		os.Exit(1)
	}

	merchantsRepo := merchants.NewRepository(dbClient.DB())
	merchantsService, err := merchants.NewService(merchants.ServiceParams{
		Repo:           merchantsRepo,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create merchants service", err)
		os.Exit(1)
	}

	formsRepo := forms.NewRepository(dbClient.DB())
	formsService, err := forms.NewService(forms.ServiceParams{
		Repo:      formsRepo,
		Merchants: merchantsRepo,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create forms service", err)
		os.Exit(1)
	}

	notificationsRepo := notifications.NewRepository(dbClient.DB())
	notificationsService, err := notifications.NewService(notificationsRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create notifications service", err)
		os.Exit(1)
	}
	dispatcher, err := notifications.NewDispatcher(notificationsRepo, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create notifications dispatcher", err)
		os.Exit(1)
	}

	offersService, err := offers.NewService(offers.ServiceParams{
		Repo:      offers.NewRepository(dbClient.DB()),
		Forms:     formsRepo,
		Merchants: merchantsRepo,
		Gateway:   squareClient,
		Fees:      fees.NewCalculator(),
		Notifier:  dispatcher,
		Tx:        dbClient,
		Logger:    logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create offers service", err)
		os.Exit(1)
	}

	webhookService, err := squarewebhook.NewService(squarewebhook.ServiceParams{
		Ledger: offersService,
		Logger: logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create webhook service", err)
		os.Exit(1)
	}
	webhookGuard, err := squarewebhook.NewIdempotencyGuard(redisClient, cfg.Webhook.IdempotencyTTL, "square")
	if err != nil {
		logg.Error(context.Background(), "failed to create webhook guard", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:        cfg,
			Logger:        logg,
			DB:            dbClient,
			Redis:         redisClient,
			Square:        squareClient,
			Merchants:     merchantsService,
			Forms:         formsService,
			Offers:        offersService,
			Notifications: notificationsService,
			WebhookSvc:    webhookService,
			WebhookGuard:  webhookGuard,
			WebhookMx:     webhookMetrics,
			PromRegistry:  registry,
		}),
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case sig := <-shutdown:
		logg.Info(logg.WithFields(ctx, map[string]any{"signal": sig.String()}), "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
			_ = server.Close()
		}
	}
}

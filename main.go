package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"

	"promptgate/internal/config"
	"promptgate/internal/handler"
	"promptgate/internal/llm"
	"promptgate/internal/logging"
	"promptgate/internal/middleware"
	"promptgate/internal/ratelimit"
	memorystorage "promptgate/internal/storage/memory"
	postgresstorage "promptgate/internal/storage/postgres"
	redisstorage "promptgate/internal/storage/redis"
	"promptgate/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("failed to load config: %v", err)
	}
	logging.Init(cfg.Logging)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeFn, err := initStorage(ctx, cfg.Storage)
	if err != nil {
		logrus.Fatalf("failed to init storage: %v", err)
	}
	defer closeFn()

	limiter, err := ratelimit.NewService(store, ratelimit.Config{
		PerDay:    cfg.RateLimit.PerDay,
		PerHour:   cfg.RateLimit.PerHour,
		PerMinute: cfg.RateLimit.PerMinute,
		Overrides: cfg.RateLimit.Overrides,
	})
	if err != nil {
		logrus.Fatalf("failed to create limiter: %v", err)
	}

	gemini := llm.NewGeminiClient(llm.GeminiConfig{
		BaseURL:         cfg.Provider.BaseURL,
		APIKey:          cfg.Provider.APIKey,
		Model:           cfg.Provider.Model,
		MaxOutputTokens: cfg.Provider.MaxOutputTokens,
		HTTPClient:      &http.Client{Timeout: cfg.Provider.Timeout},
	})

	generator := usecase.NewGenerator(gemini)
	h := handler.NewGenerateHandler(generator)
	rateLimitMW := middleware.NewRateLimitMiddleware(limiter, cfg.Server.TrustProxyHeaders)

	app := fiber.New(fiber.Config{ErrorHandler: handler.ErrorHandler})
	app.Use(middleware.RequestID())
	app.Use(middleware.AccessLog())
	app.Use(handler.WithCORS())

	app.Get("/health", handler.HandleHealth)

	api := app.Group(cfg.Server.BasePath, rateLimitMW.Handler())
	api.Post("/generate/text", h.HandleText)
	api.Post("/generate/code", h.HandleCode)
	api.Post("/classify/text", h.HandleClassify)

	errCh := make(chan error, 1)
	go func() {
		logrus.Infof("listening on %s", cfg.Server.Addr)
		errCh <- app.Listen(cfg.Server.Addr)
	}()

	select {
	case err := <-errCh:
		logrus.Fatalf("server error: %v", err)
	case <-ctx.Done():
		logrus.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logrus.Errorf("graceful shutdown failed: %v", err)
	}
}

func initStorage(ctx context.Context, cfg config.StorageConfig) (ratelimit.CounterStore, func(), error) {
	switch cfg.Type {
	case "memory":
		store := memorystorage.New()
		store.StartJanitor(ctx)
		return store, func() {}, nil

	case "redis":
		store, err := redisstorage.New(redisstorage.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return nil, nil, err
		}
		return store, func() {
			if err := store.Close(); err != nil {
				logrus.Errorf("failed to close redis storage: %v", err)
			}
		}, nil

	case "postgres":
		store, err := postgresstorage.New(ctx, cfg.PostgresURL)
		if err != nil {
			return nil, nil, err
		}
		if err := store.Migrate(); err != nil {
			store.Close()
			return nil, nil, err
		}
		store.StartJanitor(ctx)
		return store, store.Close, nil

	default:
		return nil, nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}
}

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	httpapi "github.com/i474232898/weather-analytics/internal/api/http"
	"github.com/i474232898/weather-analytics/internal/bot"
	"github.com/i474232898/weather-analytics/internal/config"
	"github.com/i474232898/weather-analytics/internal/report"
	"github.com/i474232898/weather-analytics/internal/scheduler"
	"github.com/i474232898/weather-analytics/internal/store"
	"github.com/i474232898/weather-analytics/internal/weather"
	"github.com/i474232898/weather-analytics/internal/weather/providers"
)

const usage = `usage: weather-analytics <command> [flags]

commands:
  report   collect all cities once, print the summary and write CSV + charts
  serve    run the HTTP API, the periodic collector and the chat bot
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	// Provider with resilience (backoff + circuit breaker).
	provider, err := providers.FromConfig(cfg, httpClient)
	if err != nil {
		log.Fatalf("failed to create provider: %v", err)
	}

	// In-memory store with configured retention.
	memStore := store.NewMemoryStore(cfg.StoreMaxHistory, cfg.StoreMaxAge)
	service := weather.NewService(memStore, provider, cfg.FetchConcurrency)

	switch os.Args[1] {
	case "report":
		err = runReport(cfg, service, os.Args[2:])
	case "serve":
		err = runServe(cfg, service)
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		log.Fatalf("ERROR: %v", err)
	}
}

func runReport(cfg *config.AppConfig, service *weather.Service, args []string) error {
	fs := flag.NewFlagSet("report", flag.ExitOnError)
	outDir := fs.String("out", cfg.OutputDir, "directory for the CSV table and charts")
	timeout := fs.Duration("timeout", 2*time.Minute, "overall collection timeout")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	log.Printf("INFO: collecting %d cities from %s", len(cfg.Cities), service.ProviderName())
	batch, err := service.Collect(ctx, cfg.Cities)
	if err != nil {
		return fmt.Errorf("collect: %w", err)
	}
	for _, f := range batch.Failures {
		log.Printf("INFO: skipped %s: %s", f.City, f.Err)
	}

	rep, err := report.Build(batch.Records)
	if err != nil {
		return err
	}
	if err := rep.WriteText(os.Stdout); err != nil {
		return err
	}

	paths, err := report.Artifacts(*outDir, batch.Records)
	if err != nil {
		return err
	}
	for _, p := range paths {
		log.Printf("INFO: wrote %s", p)
	}
	return nil
}

func runServe(cfg *config.AppConfig, service *weather.Service) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Scheduler that periodically fetches and stores data.
	sched := scheduler.New(cfg.Cities, cfg.FetchInterval, service)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	defer sched.Stop()

	if cfg.TelegramToken != "" {
		api, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
		if err != nil {
			return fmt.Errorf("failed to start telegram bot: %w", err)
		}
		log.Printf("INFO: authorized telegram bot %s", api.Self.UserName)

		u := tgbotapi.NewUpdate(0)
		u.Timeout = 60
		updates := api.GetUpdatesChan(u)
		defer api.StopReceivingUpdates()

		go bot.New(api, service, cfg.Cities).Run(ctx, updates)
	} else {
		log.Printf("INFO: TELEGRAM_TOKEN not set; chat bot disabled")
	}

	// Basic app configuration
	app := fiber.New(fiber.Config{
		AppName:               "weather-analytics",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          90 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":   "ok",
			"service":  "weather-analytics",
			"provider": service.ProviderName(),
		})
	})

	httpapi.RegisterRoutes(app, service, cfg.Cities)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("fiber server stopped: %v", err)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
	return nil
}

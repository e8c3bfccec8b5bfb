package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/ratelimit"

	"telegram-files-client/config"
	"telegram-files-client/internal/api"
	"telegram-files-client/internal/app"
	"telegram-files-client/internal/locales"
	"telegram-files-client/internal/prompt"
	"telegram-files-client/internal/reporting"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	// Initialize localization bundle
	if err := locales.Init(cfg.Language); err != nil {
		log.Fatalf("Localization error: %v", err)
	}

	// Initialize Sentry (if DSN is provided)
	reporter, err := reporting.NewSentryReporter(reporting.Options{
		DSN:         cfg.SentryDSN,
		Environment: cfg.AppEnv,
		Release:     cfg.Version,
		Debug:       cfg.Debug,
	})
	if err != nil {
		log.Fatalf("Error tracking setup failed: %v", err)
	}
	defer reporter.Flush(2 * time.Second)

	limiter := ratelimit.NewUnlimited()
	if cfg.RequestsPerSecond > 0 {
		limiter = ratelimit.New(cfg.RequestsPerSecond)
	}
	client, err := api.New(cfg.ServerURL,
		api.WithRateLimiter(limiter),
		api.WithTimeout(cfg.RequestTimeout),
		api.WithRequestLogging(cfg.RequestLog),
	)
	if err != nil {
		reporter.CaptureException(err)
		log.Fatalf("Failed to create API client: %v", err)
	}

	// Ctrl+C cancels a waiting prompt or an in-flight request
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runner := &app.Runner{
		Client:      client,
		Prompter:    prompt.NewConsole(os.Stdin, os.Stdout),
		Reporter:    reporter,
		Out:         os.Stdout,
		Localizer:   locales.NewLocalizer(cfg.Language),
		OutputDir:   cfg.OutputDir,
		CheckAccess: cfg.CheckFileAccess,
	}
	if err := runner.Run(ctx); err != nil {
		log.Printf("Run finished with error: %v", err)
	}
}

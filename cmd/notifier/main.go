package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/magabrotheeeer/contrarian-report/internal/app/notifier"
	"github.com/magabrotheeeer/contrarian-report/internal/config"
	"github.com/magabrotheeeer/contrarian-report/internal/lib/logger"
	"github.com/magabrotheeeer/contrarian-report/internal/lib/sl"
)

func main() {
	cfg := config.MustLoad()
	log := logger.New(os.Stdout, cfg.IsLocal())

	log.Info("starting notifier", slog.String("env", cfg.Env))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := notifier.New(ctx, cfg, log)
	if err != nil {
		log.Error("failed to initialize notifier", sl.Err(err))
		os.Exit(1)
	}

	if err := app.Run(ctx); err != nil {
		log.Error("notifier stopped with error", sl.Err(err))
		os.Exit(1)
	}
	log.Info("notifier stopped gracefully")
}

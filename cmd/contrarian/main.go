// Package main The Contrarian Report API
//
// @title           The Contrarian Report API
// @version         1.0
// @description     Сайт с платной подпиской на статьи.

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the session token.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/magabrotheeeer/contrarian-report/internal/app/contrarian"
	"github.com/magabrotheeeer/contrarian-report/internal/config"
	"github.com/magabrotheeeer/contrarian-report/internal/lib/logger"
	"github.com/magabrotheeeer/contrarian-report/internal/lib/sl"
)

func main() {
	cfg := config.MustLoad()
	log := logger.New(os.Stdout, cfg.IsLocal())

	log.Info("starting contrarian", slog.String("env", cfg.Env))
	log.Debug("config loaded", slog.String("config", cfg.String()))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := contrarian.New(ctx, cfg, log)
	if err != nil {
		log.Error("failed to initialize app", sl.Err(err))
		os.Exit(1)
	}

	if err := app.Run(ctx); err != nil {
		log.Error("app stopped with error", sl.Err(err))
		os.Exit(1)
	}

	log.Info("contrarian stopped gracefully")
}

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/phone-storefront/app/internal/app"
	"github.com/phone-storefront/app/internal/config"
	"github.com/phone-storefront/app/internal/logging"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	logger := logging.New(os.Stdout, logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error(err, "starting storefront")
		return err
	}

	if err := a.Run(ctx); err != nil {
		logger.Error(err, "server stopped with error")
		return err
	}
	logger.Info("server stopped")
	return nil
}

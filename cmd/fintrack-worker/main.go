package main

import (
	"context"
	"errors"
	"os"
	"time"

	"fintrack/internal/budget"
	"fintrack/internal/cli"
	"fintrack/internal/ledger"
	"fintrack/internal/log"
	"fintrack/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	cfg, logger := cli.LoadAndValidateConfig(log.ComponentWorker)
	logger.Info("Starting fintrack-worker",
		"sqlite", cfg.SQLiteDBPath,
		"interval", cfg.MirrorInterval)

	mirror := cli.OpenMirror(logger, cfg.SQLiteDBPath)
	defer mirror.Close()

	w := worker.NewMirrorWorker(
		ledger.NewStore(cfg.LedgerFile),
		budget.NewStore(cfg.BudgetFile),
		mirror,
		cfg.MirrorInterval)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := w.Stop(ctx); err != nil {
			logger.Warn("Mirror worker stop failed", log.FieldError, err)
		}
	})

	if err := w.Start(ctx); err != nil {
		logger.Error("Failed to start mirror worker", log.FieldError, err)
		os.Exit(1)
	}

	client, err := cli.ConnectAMQP(cfg)
	switch {
	case err != nil:
		logger.Error("Failed to connect to AMQP, running periodic sync only", log.FieldError, err)
	case client == nil:
		logger.Info("AMQP disabled, running periodic sync only")
	default:
		defer client.Close()
		go func() {
			err := client.ConsumeTransactionRecorded(ctx, w.HandleTransactionRecorded)
			if err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("Message consumption failed", log.FieldError, err)
			}
		}()
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker stopped")
}

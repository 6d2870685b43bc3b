package main

import (
	"os"
	"time"

	"fintrack/internal/cli"
	"fintrack/internal/log"
)

func main() {
	cli.LoadEnvFile()
	cfg, logger := cli.LoadAndValidateConfig(log.ComponentDashboard)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, nil)

	logger.Info("Starting fintrack dashboard",
		"port", cfg.Port,
		"ledger", cfg.LedgerFile,
		"snapshot_ttl", cfg.SnapshotTTL)

	if err := cli.RunDashboard(ctx, cfg, logger, ":"+cfg.Port, time.Now); err != nil {
		logger.Error("Dashboard failed", log.FieldError, err)
		os.Exit(1)
	}
	cli.WaitForShutdown(ctx, done)
	logger.Info("Dashboard stopped")
}

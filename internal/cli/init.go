// Package cli holds the start-up steps shared by the fintrack binaries and
// the fintrack command-line application itself.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"fintrack/internal/amqp"
	"fintrack/internal/config"
	"fintrack/internal/log"
	"fintrack/internal/storage"
)

// LoadEnvFile loads .env (or the given files) for local development.
// Missing files are ignored; variables already set win.
func LoadEnvFile(files ...string) {
	_ = godotenv.Load(files...)
}

// SetupLogger builds the process logger for component at levelName and
// installs it as the slog default. An unknown level falls back to info.
func SetupLogger(levelName, component string) *log.Logger {
	cfg := log.DefaultConfig()
	cfg.Component = component
	level, err := log.ParseLevel(levelName)
	if err == nil {
		cfg.Level = level
	}
	logger := log.New(cfg)
	log.SetDefault(logger)
	if err != nil {
		logger.Warn("Unknown log level, using info", "level", levelName)
	}
	return logger
}

// LoadConfig loads the environment configuration, sets up logging for
// component and validates the result.
func LoadConfig(component string) (*config.Config, *log.Logger, error) {
	cfg := config.Load()
	logger := SetupLogger(cfg.LogLevel, component)
	if err := cfg.Validate(); err != nil {
		return nil, logger, err
	}
	return cfg, logger, nil
}

// LoadAndValidateConfig is LoadConfig for daemons: it exits the process on
// validation failure.
func LoadAndValidateConfig(component string) (*config.Config, *log.Logger) {
	cfg, logger, err := LoadConfig(component)
	if err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}
	return cfg, logger
}

// OpenMirror opens the SQLite mirror or exits the process.
func OpenMirror(logger *log.Logger, dbPath string) *storage.Mirror {
	m, err := storage.NewMirror(dbPath)
	if err != nil {
		logger.Error("Failed to open SQLite mirror", log.FieldError, err, log.FieldFile, dbPath)
		os.Exit(1)
	}
	return m
}

// ConnectAMQP returns a client when AMQP is configured, nil otherwise.
func ConnectAMQP(cfg *config.Config) (*amqp.Client, error) {
	if cfg.AMQPURL == "" {
		return nil, nil
	}
	c, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		return nil, fmt.Errorf("connect to AMQP: %w", err)
	}
	return c, nil
}

// GracefulShutdown returns a context cancelled on SIGINT or SIGTERM, and a
// channel closed once cleanup has run or timeout has passed.
func GracefulShutdown(logger *log.Logger, timeout time.Duration, cleanup func(context.Context)) (context.Context, <-chan struct{}) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		defer close(done)
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigChan)

		select {
		case sig := <-sigChan:
			logger.Info("Shutdown signal received", "signal", sig.String())
		case <-ctx.Done():
		}
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
		defer shutdownCancel()

		finished := make(chan struct{})
		go func() {
			if cleanup != nil {
				cleanup(shutdownCtx)
			}
			close(finished)
		}()

		select {
		case <-finished:
			logger.Info("Shutdown complete")
		case <-shutdownCtx.Done():
			logger.Warn("Shutdown timeout reached")
		}
	}()

	return ctx, done
}

// WaitForShutdown blocks until the context is cancelled.
func WaitForShutdown(ctx context.Context, done <-chan struct{}) {
	<-ctx.Done()
	<-done
}

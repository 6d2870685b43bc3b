package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"fintrack/internal/cli"
	"fintrack/internal/log"
)

func main() {
	cli.LoadEnvFile()

	cfg, logger, err := cli.LoadConfig(log.ComponentCLI)
	if err != nil {
		fmt.Fprintln(os.Stderr, "fintrack:", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app := &cli.App{Config: cfg, Out: os.Stdout, Logger: logger}

	publisher, err := cli.ConnectAMQP(cfg)
	if err != nil {
		// Recording still works without events; the worker's periodic sync
		// catches up.
		logger.Warn("AMQP unavailable, events disabled", log.FieldError, err)
	} else if publisher != nil {
		defer publisher.Close()
		app.Publisher = publisher
	}

	if err := app.Run(ctx, os.Args[1:]); err != nil {
		if errors.Is(err, cli.ErrUsage) {
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, "fintrack:", err)
		os.Exit(1)
	}
}

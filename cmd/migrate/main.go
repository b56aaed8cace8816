// Package main applies database migrations.
//
// Usage:
//
//	migrate [up|down|status|version|reset|redo]
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/sqlarena/sqlarena/internal/config"
	"github.com/sqlarena/sqlarena/internal/logging"
	"github.com/sqlarena/sqlarena/migrations"
)

func main() {
	flag.Parse()

	command := "up"
	if flag.NArg() > 0 {
		command = flag.Arg(0)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := logging.New(os.Stdout, cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dsn := cfg.DSN()
	db, err := migrations.Open(dsn)
	if err != nil {
		logger.Error("failed to open database",
			slog.String("error", logging.SanitizeError(err, dsn)),
			slog.String("database_url", logging.RedactURL(dsn)),
		)
		os.Exit(1)
	}
	defer db.Close()

	logger.Info("running migrations", slog.String("command", command))

	if err := migrations.Run(ctx, db, command, flag.Args()[min(1, flag.NArg()):]...); err != nil {
		logger.Error("migration failed",
			slog.String("command", command),
			slog.String("error", logging.SanitizeError(err, dsn)),
		)
		os.Exit(1)
	}

	logger.Info("migrations complete", slog.String("command", command))
}

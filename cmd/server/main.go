// Package main implements the entry point for the Voca API server, which
// serves vocabulary decks, quiz sessions and generated pronunciation audio
// and association images.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/phrazzld/voca-api/internal/config"
	"github.com/phrazzld/voca-api/internal/platform/logger"
	"github.com/phrazzld/voca-api/internal/platform/migrate"
)

func main() {
	migrateCmd := flag.String("migrate", "", "run a migration command (up, down, status, version) and exit")
	verbose := flag.Bool("verbose", false, "enable verbose migration output")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *migrateCmd, *verbose); err != nil {
		slog.Error("voca-api exited with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// run loads configuration, prepares the database and either executes a
// single migration command or serves until ctx is cancelled.
func run(ctx context.Context, migrateCmd string, verbose bool) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	l, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}
	l.Info("Server configuration loaded",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Server.LogLevel),
		slog.String("database_driver", cfg.Database.Driver))

	db, src, err := openDatabase(ctx, cfg.Database, l)
	if err != nil {
		return err
	}

	if migrateCmd != "" {
		defer func() { _ = db.Close() }()
		return migrate.Run(ctx, db, src, migrateCmd, l, verbose)
	}

	if err := migrate.Up(ctx, db, src, l); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	app, err := newApplication(ctx, cfg, l, db)
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	return app.Run(ctx)
}

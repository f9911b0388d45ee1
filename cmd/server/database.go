package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/phrazzld/voca-api/internal/config"
	"github.com/phrazzld/voca-api/internal/platform/migrate"
	"github.com/phrazzld/voca-api/internal/platform/postgres"
	"github.com/phrazzld/voca-api/internal/platform/sqlite"
)

// openDatabase connects to the configured backend and returns the
// connection together with that backend's migrations.
func openDatabase(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (*sql.DB, migrate.Source, error) {
	switch cfg.Driver {
	case "postgres":
		db, err := postgres.Open(ctx, cfg.URL, logger)
		if err != nil {
			return nil, migrate.Source{}, err
		}
		return db, postgres.Migrations(), nil
	case "sqlite":
		db, err := sqlite.Open(ctx, cfg.URL, logger)
		if err != nil {
			return nil, migrate.Source{}, err
		}
		return db, sqlite.Migrations(), nil
	default:
		return nil, migrate.Source{}, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

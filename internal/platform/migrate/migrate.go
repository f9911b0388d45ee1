// Package migrate runs embedded goose migrations against either storage
// backend. Each backend package exposes its dialect and migration files;
// this package only drives goose.
package migrate

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/pressly/goose/v3"
	"github.com/pressly/goose/v3/database"
)

// TableName is the table goose uses to track applied versions.
const TableName = "schema_migrations"

// Supported commands.
const (
	CommandUp      = "up"
	CommandDown    = "down"
	CommandStatus  = "status"
	CommandVersion = "version"
)

// ErrUnknownCommand is returned for commands other than the supported ones.
var ErrUnknownCommand = errors.New("unknown migration command")

// Source describes the migrations of one backend.
type Source struct {
	Dialect goose.Dialect
	Files   fs.FS
}

// slogGooseLogger adapts slog to goose's logger interface.
// Fatalf logs at error level instead of exiting.
type slogGooseLogger struct {
	log *slog.Logger
}

func (l slogGooseLogger) Printf(format string, v ...interface{}) {
	l.log.Info(fmt.Sprintf(format, v...))
}

func (l slogGooseLogger) Fatalf(format string, v ...interface{}) {
	l.log.Error(fmt.Sprintf(format, v...))
}

// NewProvider builds a goose provider for src over db.
// The provider must not be closed by the caller since that would close db.
func NewProvider(db *sql.DB, src Source, log *slog.Logger, verbose bool) (*goose.Provider, error) {
	if log == nil {
		log = slog.Default()
	}
	versionStore, err := database.NewStore(src.Dialect, TableName)
	if err != nil {
		return nil, fmt.Errorf("failed to create version store: %w", err)
	}
	return goose.NewProvider("", db, src.Files,
		goose.WithStore(versionStore),
		goose.WithLogger(slogGooseLogger{log: log}),
		goose.WithVerbose(verbose),
	)
}

// Run executes command ("up", "down", "status" or "version") and logs the
// outcome. Status entries are logged one per migration.
func Run(ctx context.Context, db *sql.DB, src Source, command string, log *slog.Logger, verbose bool) error {
	if log == nil {
		log = slog.Default()
	}
	log = log.With(
		slog.String("component", "migrations"),
		slog.String("correlation_id", uuid.New().String()),
		slog.String("command", command),
		slog.String("dialect", string(src.Dialect)),
	)

	provider, err := NewProvider(db, src, log, verbose)
	if err != nil {
		log.Error("failed to create migration provider", slog.String("error", err.Error()))
		return err
	}

	start := time.Now()
	before, versionErr := provider.GetDBVersion(ctx)
	if versionErr != nil {
		log.Warn("failed to read current migration version", slog.String("error", versionErr.Error()))
	}

	switch command {
	case CommandUp:
		var results []*goose.MigrationResult
		results, err = provider.Up(ctx)
		for _, r := range results {
			log.Info("applied migration",
				slog.String("path", r.Source.Path),
				slog.Int64("duration_ms", r.Duration.Milliseconds()))
		}
	case CommandDown:
		var result *goose.MigrationResult
		result, err = provider.Down(ctx)
		if result != nil {
			log.Info("rolled back migration", slog.String("path", result.Source.Path))
		}
	case CommandStatus:
		var statuses []*goose.MigrationStatus
		statuses, err = provider.Status(ctx)
		for _, s := range statuses {
			log.Info("migration status",
				slog.Int64("version", s.Source.Version),
				slog.String("path", s.Source.Path),
				slog.String("state", string(s.State)),
				slog.Time("applied_at", s.AppliedAt))
		}
	case CommandVersion:
		log.Info("current migration version", slog.Int64("version", before))
		return versionErr
	default:
		return fmt.Errorf("%w: %s (expected up, down, status or version)", ErrUnknownCommand, command)
	}

	if err != nil {
		log.Error("migration command failed",
			slog.String("error", err.Error()),
			slog.Int64("duration_ms", time.Since(start).Milliseconds()))
		return fmt.Errorf("migration command '%s' failed: %w", command, err)
	}

	after, _ := provider.GetDBVersion(ctx)
	log.Info("migration command completed",
		slog.Int64("previous_version", before),
		slog.Int64("version", after),
		slog.Int64("duration_ms", time.Since(start).Milliseconds()))
	return nil
}

// Up applies every pending migration.
func Up(ctx context.Context, db *sql.DB, src Source, log *slog.Logger) error {
	return Run(ctx, db, src, CommandUp, log, false)
}

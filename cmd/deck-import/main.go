// Command deck-import loads a CSV or XLSX word list into the configured
// database as a new deck.
//
// Usage:
//
//	deck-import -file day1.csv [-name "Day 1"] [-description "..."] [-user <uuid>]
package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/google/uuid"
	"github.com/phrazzld/voca-api/internal/config"
	"github.com/phrazzld/voca-api/internal/platform/logger"
	"github.com/phrazzld/voca-api/internal/platform/migrate"
	"github.com/phrazzld/voca-api/internal/platform/postgres"
	"github.com/phrazzld/voca-api/internal/platform/sqlite"
	"github.com/phrazzld/voca-api/internal/service"
	"github.com/phrazzld/voca-api/internal/store"
)

type options struct {
	file        string
	name        string
	description string
	user        string
}

func main() {
	var opts options
	flag.StringVar(&opts.file, "file", "", "path to a .csv or .xlsx deck file (required)")
	flag.StringVar(&opts.name, "name", "", "deck name (defaults to the file name)")
	flag.StringVar(&opts.description, "description", "", "deck description")
	flag.StringVar(&opts.user, "user", "", "owner user ID; empty imports an anonymous deck")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "deck-import: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options, out io.Writer) error {
	if opts.file == "" {
		return errors.New("-file is required")
	}
	var userID *uuid.UUID
	if opts.user != "" {
		id, err := uuid.Parse(opts.user)
		if err != nil {
			return fmt.Errorf("invalid -user: %w", err)
		}
		userID = &id
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	l, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	db, decks, src, err := openDeckStore(ctx, cfg.Database, l)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			l.Error("Error closing database connection", slog.String("error", err.Error()))
		}
	}()

	if err := migrate.Up(ctx, db, src, l); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	svc, err := service.NewDeckService(decks, l)
	if err != nil {
		return err
	}
	return importDeck(ctx, svc, opts, userID, out)
}

// importDeck uploads the file through svc and writes the new deck as JSON.
func importDeck(ctx context.Context, svc service.DeckService, opts options, userID *uuid.UUID, out io.Writer) error {
	f, err := os.Open(opts.file)
	if err != nil {
		return fmt.Errorf("failed to open deck file: %w", err)
	}
	defer func() { _ = f.Close() }()

	deck, err := svc.Upload(ctx, service.UploadInput{
		Filename:    filepath.Base(opts.file),
		Name:        opts.name,
		Description: opts.description,
		Data:        f,
		UserID:      userID,
	})
	if err != nil {
		return fmt.Errorf("failed to import %s: %w", opts.file, err)
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(deck)
}

func openDeckStore(ctx context.Context, cfg config.DatabaseConfig, l *slog.Logger) (*sql.DB, store.DeckStore, migrate.Source, error) {
	switch cfg.Driver {
	case "postgres":
		db, err := postgres.Open(ctx, cfg.URL, l)
		if err != nil {
			return nil, nil, migrate.Source{}, err
		}
		return db, postgres.NewPostgresDeckStore(db, l), postgres.Migrations(), nil
	case "sqlite":
		db, err := sqlite.Open(ctx, cfg.URL, l)
		if err != nil {
			return nil, nil, migrate.Source{}, err
		}
		return db, sqlite.NewSQLiteDeckStore(db, l), sqlite.Migrations(), nil
	default:
		return nil, nil, migrate.Source{}, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

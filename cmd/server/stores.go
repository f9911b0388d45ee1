package main

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/phrazzld/voca-api/internal/platform/postgres"
	"github.com/phrazzld/voca-api/internal/platform/sqlite"
	"github.com/phrazzld/voca-api/internal/store"
)

// stores groups the store implementations of one backend.
type stores struct {
	users      store.UserStore
	decks      store.DeckStore
	sessions   store.SessionStore
	answers    store.AnswerStore
	wrongStats store.WrongStatStore
	cache      store.CacheStore
}

func newStores(driver string, db *sql.DB, logger *slog.Logger) (*stores, error) {
	switch driver {
	case "postgres":
		return &stores{
			users:      postgres.NewPostgresUserStore(db, logger),
			decks:      postgres.NewPostgresDeckStore(db, logger),
			sessions:   postgres.NewPostgresSessionStore(db, logger),
			answers:    postgres.NewPostgresAnswerStore(db, logger),
			wrongStats: postgres.NewPostgresWrongStatStore(db, logger),
			cache:      postgres.NewPostgresCacheStore(db, logger),
		}, nil
	case "sqlite":
		return &stores{
			users:      sqlite.NewSQLiteUserStore(db, logger),
			decks:      sqlite.NewSQLiteDeckStore(db, logger),
			sessions:   sqlite.NewSQLiteSessionStore(db, logger),
			answers:    sqlite.NewSQLiteAnswerStore(db, logger),
			wrongStats: sqlite.NewSQLiteWrongStatStore(db, logger),
			cache:      sqlite.NewSQLiteCacheStore(db, logger),
		}, nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}

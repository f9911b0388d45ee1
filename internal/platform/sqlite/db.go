package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/reflectx"
	_ "github.com/mattn/go-sqlite3" // registers the "sqlite3" driver
	"github.com/phrazzld/voca-api/internal/platform/migrate"
	"github.com/pressly/goose/v3"
)

// DriverName is the database/sql driver registered by go-sqlite3.
const DriverName = "sqlite3"

// connParams enables foreign keys, waits on locks instead of failing and
// starts write transactions with BEGIN IMMEDIATE.
const connParams = "_foreign_keys=on&_busy_timeout=5000&_journal_mode=WAL&_txlock=immediate"

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Migrations returns the SQLite schema migrations.
func Migrations() migrate.Source {
	sub, err := fs.Sub(migrationFiles, "migrations")
	if err != nil {
		// ALLOW-PANIC: the embedded directory is fixed at build time
		panic(fmt.Sprintf("embedded migrations: %v", err))
	}
	return migrate.Source{Dialect: goose.DialectSQLite3, Files: sub}
}

// DSN turns a database file path into a connection string carrying the
// connection parameters. Values that already contain parameters are
// returned unchanged.
func DSN(path string) string {
	if strings.Contains(path, "?") {
		return path
	}
	if !strings.HasPrefix(path, "file:") {
		path = "file:" + path
	}
	return path + "?" + connParams
}

// Open opens the SQLite database at path and verifies it is usable.
// The pool holds a single connection since SQLite allows one writer.
func Open(ctx context.Context, path string, log *slog.Logger) (*sql.DB, error) {
	db, err := sql.Open(DriverName, DSN(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if log != nil {
		log.Info("database connection established",
			slog.String("driver", DriverName),
			slog.String("path", path))
	}
	return db, nil
}

// Queryer is the subset of sqlx used by the stores. It is satisfied by
// *sqlx.DB and *sqlx.Tx.
type Queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	GetContext(ctx context.Context, dest any, query string, args ...any) error
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
}

// conn is the handle shared by every store. db is nil once the store is
// bound to a transaction.
type conn struct {
	db     *sqlx.DB
	q      Queryer
	mapper *reflectx.Mapper
}

func newConn(db *sql.DB) conn {
	if db == nil {
		panic("db cannot be nil")
	}
	x := sqlx.NewDb(db, DriverName)
	return conn{db: x, q: x, mapper: x.Mapper}
}

func (c conn) withTx(tx *sql.Tx) conn {
	return conn{q: &sqlx.Tx{Tx: tx, Mapper: c.mapper}, mapper: c.mapper}
}

package testdb

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/phrazzld/voca-api/internal/platform/migrate"
	"github.com/phrazzld/voca-api/internal/platform/sqlite"
)

// OpenSQLite creates a migrated SQLite database file in a temporary
// directory owned by t. Each call returns an independent database.
func OpenSQLite(t *testing.T) *sql.DB {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), TestTimeout)
	defer cancel()

	path := filepath.Join(t.TempDir(), "voca_test.db")
	db, err := sqlite.Open(ctx, path, discardLogger())
	if err != nil {
		t.Fatalf("failed to open sqlite database: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Logf("warning: failed to close sqlite database: %v", err)
		}
	})

	if err := migrate.Up(ctx, db, sqlite.Migrations(), discardLogger()); err != nil {
		t.Fatalf("failed to apply sqlite migrations: %v", err)
	}
	return db
}

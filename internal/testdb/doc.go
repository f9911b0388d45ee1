// Package testdb provides database helpers for store and service tests.
//
// Tests run against two backends:
//
//   - SQLite: OpenSQLite creates a migrated database in a temporary
//     directory. It needs no external services and is used by default.
//   - PostgreSQL: GetTestDBWithT connects to the database named by
//     VOCA_TEST_DB_URL or DATABASE_URL, applies migrations and skips the
//     test when neither variable is set. These tests carry the
//     "integration" build tag.
//
// WithTx runs a test body inside a transaction that is always rolled back,
// which keeps tests sharing one database independent of each other:
//
//	func TestDeckStore(t *testing.T) {
//	    db := testdb.GetTestDBWithT(t)
//	    testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
//	        decks := postgres.NewPostgresDeckStore(tx, nil)
//	        ...
//	    })
//	}
package testdb

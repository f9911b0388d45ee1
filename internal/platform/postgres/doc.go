// Package postgres provides PostgreSQL implementations of the persistence
// interfaces defined in internal/store, together with the embedded goose
// migrations for the PostgreSQL schema.
//
// Stores accept a store.DBTX so the same code runs against a *sql.DB or,
// through WithTx, inside a caller-managed transaction.
package postgres

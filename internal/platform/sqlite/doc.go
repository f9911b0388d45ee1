// Package sqlite provides SQLite implementations of the persistence
// interfaces defined in internal/store. It is the default backend for local
// development and the backend used by most tests.
//
// Stores query through sqlx and scan into row structs tagged with column
// names. The schema mirrors the PostgreSQL one: UUIDs are stored as TEXT,
// word indices as a JSON array in TEXT, and BOOLEAN/TIMESTAMP declared
// types let the driver convert values on read.
package sqlite

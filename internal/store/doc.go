// Package store defines the persistence interfaces used by the services and
// the error categories every backend maps its driver errors to. The
// PostgreSQL and SQLite implementations live under internal/platform.
package store

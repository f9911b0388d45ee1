package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/mattn/go-sqlite3"
	"github.com/phrazzld/voca-api/internal/store"
)

// MapError maps a database error to a store error category, wrapping the
// original so callers can still inspect it. Errors without a mapping are
// returned unchanged.
func MapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %w", store.ErrNotFound, err)
	}

	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return err
	}

	switch sqliteErr.ExtendedCode {
	case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
		return fmt.Errorf("%w: %w", store.ErrDuplicate, err)
	case sqlite3.ErrConstraintForeignKey:
		return fmt.Errorf("%w: foreign key violation: %w", store.ErrInvalidEntity, err)
	case sqlite3.ErrConstraintCheck:
		return fmt.Errorf("%w: check constraint violation: %w", store.ErrInvalidEntity, err)
	case sqlite3.ErrConstraintNotNull:
		return fmt.Errorf("%w: not null violation: %w", store.ErrInvalidEntity, err)
	}
	return err
}

// IsUniqueViolation checks if the given error is a unique or primary key
// constraint violation.
func IsUniqueViolation(err error) bool {
	code, ok := extendedCode(err)
	return ok && (code == sqlite3.ErrConstraintUnique || code == sqlite3.ErrConstraintPrimaryKey)
}

// IsForeignKeyViolation checks if the given error is a foreign key violation.
func IsForeignKeyViolation(err error) bool {
	code, ok := extendedCode(err)
	return ok && code == sqlite3.ErrConstraintForeignKey
}

// ViolatesColumn reports whether a constraint error names table.column,
// e.g. "users.email". SQLite reports columns instead of constraint names.
func ViolatesColumn(err error, column string) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && strings.Contains(sqliteErr.Error(), column)
}

func extendedCode(err error) (sqlite3.ErrNoExtended, bool) {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return 0, false
	}
	return sqliteErr.ExtendedCode, true
}

// CheckRowsAffected returns notFound when an UPDATE or DELETE touched no rows.
func CheckRowsAffected(result sql.Result, notFound error) error {
	if result == nil {
		return fmt.Errorf("nil result provided to CheckRowsAffected")
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		if notFound == nil {
			return store.ErrNotFound
		}
		return notFound
	}
	return nil
}

// nullString stores empty optional strings as NULL.
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

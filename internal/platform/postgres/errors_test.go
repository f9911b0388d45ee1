package postgres_test

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/phrazzld/voca-api/internal/platform/postgres"
	"github.com/phrazzld/voca-api/internal/store"
	"github.com/stretchr/testify/assert"
)

func pgError(code, constraint, column string) error {
	return fmt.Errorf("exec failed: %w", &pgconn.PgError{
		Code:           code,
		Message:        "constraint failed",
		TableName:      "words",
		ConstraintName: constraint,
		ColumnName:     column,
	})
}

func TestMapError(t *testing.T) {
	plain := errors.New("connection reset")

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"nil", nil, nil},
		{"no rows", sql.ErrNoRows, store.ErrNotFound},
		{"duplicate username", pgError("23505", "users_username_key", ""), store.ErrDuplicate},
		{"missing deck", pgError("23503", "words_deck_id_fkey", ""), store.ErrInvalidEntity},
		{"negative count", pgError("23514", "wrong_stats_count_check", ""), store.ErrInvalidEntity},
		{"null meaning", pgError("23502", "", "meaning"), store.ErrInvalidEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := postgres.MapError(tt.err)
			if tt.want == nil {
				assert.NoError(t, got)
				return
			}
			assert.ErrorIs(t, got, tt.want)
			assert.ErrorIs(t, got, tt.err, "original error stays inspectable")
		})
	}

	t.Run("unmapped errors pass through", func(t *testing.T) {
		assert.Same(t, plain, postgres.MapError(plain))

		serialization := pgError("40001", "", "")
		assert.Equal(t, serialization, postgres.MapError(serialization))
	})
}

func TestViolationHelpers(t *testing.T) {
	unique := pgError("23505", "users_email_key", "")
	fk := pgError("23503", "answers_session_id_fkey", "")

	assert.True(t, postgres.IsUniqueViolation(unique))
	assert.False(t, postgres.IsUniqueViolation(fk))
	assert.False(t, postgres.IsUniqueViolation(errors.New("23505")))

	assert.True(t, postgres.IsForeignKeyViolation(fk))
	assert.False(t, postgres.IsForeignKeyViolation(unique))
	assert.False(t, postgres.IsForeignKeyViolation(nil))

	assert.Equal(t, "users_email_key", postgres.ConstraintName(unique))
	assert.Equal(t, "", postgres.ConstraintName(errors.New("plain")))
}

func TestCheckRowsAffected(t *testing.T) {
	driverErr := errors.New("rows affected unavailable")

	tests := []struct {
		name     string
		result   sql.Result
		notFound error
		want     error
	}{
		{"one row", sqlmock.NewResult(0, 1), store.ErrDeckNotFound, nil},
		{"no rows with entity error", sqlmock.NewResult(0, 0), store.ErrDeckNotFound, store.ErrDeckNotFound},
		{"no rows without entity error", sqlmock.NewResult(0, 0), nil, store.ErrNotFound},
		{"driver error", sqlmock.NewErrorResult(driverErr), store.ErrDeckNotFound, driverErr},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := postgres.CheckRowsAffected(tt.result, tt.notFound)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}

	assert.Error(t, postgres.CheckRowsAffected(nil, nil))
}

package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunInTransaction(t *testing.T) {
	errBody := errors.New("word not found")
	errDriver := errors.New("driver: bad connection")

	tests := []struct {
		name   string
		expect func(mock sqlmock.Sqlmock)
		body   TxFn
		check  func(t *testing.T, err error)
	}{
		{
			name: "commits when body succeeds",
			expect: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec("UPDATE quiz_sessions").WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectCommit()
			},
			body: func(ctx context.Context, tx *sql.Tx) error {
				_, err := tx.ExecContext(ctx, "UPDATE quiz_sessions SET current_index = 1")
				return err
			},
			check: func(t *testing.T, err error) { assert.NoError(t, err) },
		},
		{
			name: "rolls back and returns body error unchanged",
			expect: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectRollback()
			},
			body: func(ctx context.Context, tx *sql.Tx) error { return errBody },
			check: func(t *testing.T, err error) { assert.Same(t, errBody, err) },
		},
		{
			name: "begin failure",
			expect: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin().WillReturnError(errDriver)
			},
			body: func(ctx context.Context, tx *sql.Tx) error {
				t.Fatal("body must not run without a transaction")
				return nil
			},
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, errDriver)
				assert.Contains(t, err.Error(), "failed to begin transaction")
			},
		},
		{
			name: "commit failure",
			expect: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectCommit().WillReturnError(errDriver)
			},
			body: func(ctx context.Context, tx *sql.Tx) error { return nil },
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, errDriver)
				assert.Contains(t, err.Error(), "failed to commit transaction")
			},
		},
		{
			name: "rollback failure is joined",
			expect: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectRollback().WillReturnError(errDriver)
			},
			body: func(ctx context.Context, tx *sql.Tx) error { return errBody },
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, errBody)
				assert.ErrorIs(t, err, errDriver)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer func() { _ = db.Close() }()

			tt.expect(mock)
			tt.check(t, RunInTransaction(context.Background(), db, tt.body))
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRunInTransaction_PanicRollsBack(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectBegin()
	mock.ExpectRollback()

	assert.PanicsWithValue(t, "boom", func() {
		_ = RunInTransaction(context.Background(), db, func(ctx context.Context, tx *sql.Tx) error {
			panic("boom")
		})
	})
	assert.NoError(t, mock.ExpectationsWereMet())
}

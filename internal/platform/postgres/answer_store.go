package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/voca-api/internal/domain"
	"github.com/phrazzld/voca-api/internal/platform/logger"
	"github.com/phrazzld/voca-api/internal/store"
)

// PostgresAnswerStore implements the store.AnswerStore interface
// using a PostgreSQL database as the storage backend.
type PostgresAnswerStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresAnswerStore creates a new PostgreSQL implementation of the AnswerStore interface.
func NewPostgresAnswerStore(db store.DBTX, logger *slog.Logger) *PostgresAnswerStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresAnswerStore{
		db:     db,
		logger: logger.With(slog.String("component", "answer_store")),
	}
}

// Ensure PostgresAnswerStore implements store.AnswerStore interface
var _ store.AnswerStore = (*PostgresAnswerStore)(nil)

// WithTx implements store.AnswerStore.WithTx
func (s *PostgresAnswerStore) WithTx(tx *sql.Tx) store.AnswerStore {
	return &PostgresAnswerStore{db: tx, logger: s.logger}
}

// Create implements store.AnswerStore.Create
func (s *PostgresAnswerStore) Create(ctx context.Context, answer *domain.Answer) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO answers (id, session_id, word_id, position, user_answer, is_correct, hints_used, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`,
		answer.ID,
		answer.SessionID,
		answer.WordID,
		answer.Position,
		answer.UserAnswer,
		answer.IsCorrect,
		answer.HintsUsed,
		answer.CreatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return fmt.Errorf("%w: answer at position %d", store.ErrConcurrentUpdate, answer.Position)
		}
		log.Error("failed to create answer",
			slog.String("error", err.Error()),
			slog.String("session_id", answer.SessionID.String()))
		return MapError(err)
	}
	return nil
}

// ListBySession implements store.AnswerStore.ListBySession
func (s *PostgresAnswerStore) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]*domain.Answer, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, session_id, word_id, position, user_answer, is_correct, hints_used, created_at
		FROM answers
		WHERE session_id = $1
		ORDER BY position
	`, sessionID)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var answers []*domain.Answer
	for rows.Next() {
		var a domain.Answer
		if err := rows.Scan(&a.ID, &a.SessionID, &a.WordID, &a.Position, &a.UserAnswer,
			&a.IsCorrect, &a.HintsUsed, &a.CreatedAt); err != nil {
			return nil, MapError(err)
		}
		answers = append(answers, &a)
	}
	return answers, MapError(rows.Err())
}

// ListIncorrectWords implements store.AnswerStore.ListIncorrectWords
func (s *PostgresAnswerStore) ListIncorrectWords(ctx context.Context, sessionID uuid.UUID) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT w.word
		FROM answers a
		JOIN words w ON w.id = a.word_id
		WHERE a.session_id = $1 AND NOT a.is_correct
		ORDER BY a.position
	`, sessionID)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var words []string
	for rows.Next() {
		var w string
		if err := rows.Scan(&w); err != nil {
			return nil, MapError(err)
		}
		words = append(words, w)
	}
	return words, MapError(rows.Err())
}

package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/voca-api/internal/domain"
	"github.com/phrazzld/voca-api/internal/platform/logger"
	"github.com/phrazzld/voca-api/internal/store"
)

// SQLiteSessionStore implements store.SessionStore on SQLite.
type SQLiteSessionStore struct {
	conn
	logger *slog.Logger
}

// NewSQLiteSessionStore creates a session store over db.
func NewSQLiteSessionStore(db *sql.DB, logger *slog.Logger) *SQLiteSessionStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &SQLiteSessionStore{
		conn:   newConn(db),
		logger: logger.With(slog.String("component", "session_store")),
	}
}

var _ store.SessionStore = (*SQLiteSessionStore)(nil)

// WithTx implements store.SessionStore.WithTx
func (s *SQLiteSessionStore) WithTx(tx *sql.Tx) store.SessionStore {
	return &SQLiteSessionStore{conn: s.withTx(tx), logger: s.logger}
}

// Create implements store.SessionStore.Create
func (s *SQLiteSessionStore) Create(ctx context.Context, session *domain.QuizSession) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := session.Validate(); err != nil {
		return err
	}

	indices, err := json.Marshal(session.WordIndices)
	if err != nil {
		return fmt.Errorf("failed to encode word indices: %w", err)
	}

	_, err = s.q.ExecContext(ctx, `
		INSERT INTO quiz_sessions (id, deck_id, user_id, word_indices, current_index, score,
			total_questions, is_completed, is_wrong_only, created_at, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		session.ID,
		session.DeckID,
		session.UserID,
		string(indices),
		session.CurrentIndex,
		session.Score,
		session.TotalQuestions,
		session.IsCompleted,
		session.IsWrongOnly,
		session.CreatedAt,
		session.CompletedAt,
	)
	if err != nil {
		if IsForeignKeyViolation(err) {
			return fmt.Errorf("%w: deck with ID %s not found", store.ErrInvalidEntity, session.DeckID)
		}
		log.Error("failed to create session",
			slog.String("error", err.Error()),
			slog.String("session_id", session.ID.String()))
		return MapError(err)
	}

	log.Info("session created successfully",
		slog.String("session_id", session.ID.String()),
		slog.String("deck_id", session.DeckID.String()),
		slog.Int("total_questions", session.TotalQuestions))
	return nil
}

// GetByID implements store.SessionStore.GetByID
func (s *SQLiteSessionStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.QuizSession, error) {
	var row sessionRow
	err := s.q.GetContext(ctx, &row, `
		SELECT id, deck_id, user_id, word_indices, current_index, score, total_questions,
			is_completed, is_wrong_only, created_at, completed_at
		FROM quiz_sessions
		WHERE id = ?
	`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrSessionNotFound
		}
		return nil, MapError(err)
	}
	return row.toDomain()
}

// UpdateProgress implements store.SessionStore.UpdateProgress
func (s *SQLiteSessionStore) UpdateProgress(ctx context.Context, session *domain.QuizSession, expectedIndex int) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.q.ExecContext(ctx, `
		UPDATE quiz_sessions
		SET current_index = ?, score = ?, is_completed = ?, completed_at = ?
		WHERE id = ? AND current_index = ? AND NOT is_completed
	`,
		session.CurrentIndex,
		session.Score,
		session.IsCompleted,
		session.CompletedAt,
		session.ID,
		expectedIndex,
	)
	if err != nil {
		log.Error("failed to update session progress",
			slog.String("error", err.Error()),
			slog.String("session_id", session.ID.String()))
		return MapError(err)
	}

	err = CheckRowsAffected(result, store.ErrConcurrentUpdate)
	if err == nil || !errors.Is(err, store.ErrConcurrentUpdate) {
		return err
	}

	var exists int
	if err := s.q.GetContext(ctx, &exists,
		`SELECT COUNT(*) FROM quiz_sessions WHERE id = ?`, session.ID); err != nil {
		return MapError(err)
	}
	if exists == 0 {
		return store.ErrSessionNotFound
	}
	log.Warn("session progress changed concurrently",
		slog.String("session_id", session.ID.String()),
		slog.Int("expected_index", expectedIndex))
	return store.ErrConcurrentUpdate
}

// SQLiteAnswerStore implements store.AnswerStore on SQLite.
type SQLiteAnswerStore struct {
	conn
	logger *slog.Logger
}

// NewSQLiteAnswerStore creates an answer store over db.
func NewSQLiteAnswerStore(db *sql.DB, logger *slog.Logger) *SQLiteAnswerStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &SQLiteAnswerStore{
		conn:   newConn(db),
		logger: logger.With(slog.String("component", "answer_store")),
	}
}

var _ store.AnswerStore = (*SQLiteAnswerStore)(nil)

// WithTx implements store.AnswerStore.WithTx
func (s *SQLiteAnswerStore) WithTx(tx *sql.Tx) store.AnswerStore {
	return &SQLiteAnswerStore{conn: s.withTx(tx), logger: s.logger}
}

// Create implements store.AnswerStore.Create
func (s *SQLiteAnswerStore) Create(ctx context.Context, answer *domain.Answer) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO answers (id, session_id, word_id, position, user_answer, is_correct, hints_used, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
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
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to create answer",
			slog.String("error", err.Error()),
			slog.String("session_id", answer.SessionID.String()))
		return MapError(err)
	}
	return nil
}

// ListBySession implements store.AnswerStore.ListBySession
func (s *SQLiteAnswerStore) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]*domain.Answer, error) {
	var rows []answerRow
	err := s.q.SelectContext(ctx, &rows, `
		SELECT id, session_id, word_id, position, user_answer, is_correct, hints_used, created_at
		FROM answers
		WHERE session_id = ?
		ORDER BY position
	`, sessionID)
	if err != nil {
		return nil, MapError(err)
	}

	answers := make([]*domain.Answer, 0, len(rows))
	for _, r := range rows {
		answers = append(answers, r.toDomain())
	}
	return answers, nil
}

// ListIncorrectWords implements store.AnswerStore.ListIncorrectWords
func (s *SQLiteAnswerStore) ListIncorrectWords(ctx context.Context, sessionID uuid.UUID) ([]string, error) {
	var words []string
	err := s.q.SelectContext(ctx, &words, `
		SELECT w.word
		FROM answers a
		JOIN words w ON w.id = a.word_id
		WHERE a.session_id = ? AND NOT a.is_correct
		ORDER BY a.position
	`, sessionID)
	if err != nil {
		return nil, MapError(err)
	}
	return words, nil
}

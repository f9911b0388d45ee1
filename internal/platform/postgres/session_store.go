package postgres

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

// PostgresSessionStore implements the store.SessionStore interface
// using a PostgreSQL database as the storage backend.
type PostgresSessionStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresSessionStore creates a new PostgreSQL implementation of the SessionStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresSessionStore(db store.DBTX, logger *slog.Logger) *PostgresSessionStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresSessionStore{
		db:     db,
		logger: logger.With(slog.String("component", "session_store")),
	}
}

// Ensure PostgresSessionStore implements store.SessionStore interface
var _ store.SessionStore = (*PostgresSessionStore)(nil)

// WithTx implements store.SessionStore.WithTx
func (s *PostgresSessionStore) WithTx(tx *sql.Tx) store.SessionStore {
	return &PostgresSessionStore{db: tx, logger: s.logger}
}

// Create implements store.SessionStore.Create
func (s *PostgresSessionStore) Create(ctx context.Context, session *domain.QuizSession) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := session.Validate(); err != nil {
		log.Warn("session validation failed during create",
			slog.String("error", err.Error()),
			slog.String("session_id", session.ID.String()))
		return err
	}

	indices, err := json.Marshal(session.WordIndices)
	if err != nil {
		return fmt.Errorf("failed to encode word indices: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO quiz_sessions (id, deck_id, user_id, word_indices, current_index, score,
			total_questions, is_completed, is_wrong_only, created_at, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
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
func (s *PostgresSessionStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.QuizSession, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var (
		session domain.QuizSession
		indices []byte
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, deck_id, user_id, word_indices, current_index, score, total_questions,
			is_completed, is_wrong_only, created_at, completed_at
		FROM quiz_sessions
		WHERE id = $1
	`, id).Scan(
		&session.ID,
		&session.DeckID,
		&session.UserID,
		&indices,
		&session.CurrentIndex,
		&session.Score,
		&session.TotalQuestions,
		&session.IsCompleted,
		&session.IsWrongOnly,
		&session.CreatedAt,
		&session.CompletedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("session not found", slog.String("session_id", id.String()))
			return nil, store.ErrSessionNotFound
		}
		log.Error("failed to get session",
			slog.String("error", err.Error()),
			slog.String("session_id", id.String()))
		return nil, MapError(err)
	}

	if err := json.Unmarshal(indices, &session.WordIndices); err != nil {
		return nil, fmt.Errorf("failed to decode word indices: %w", err)
	}
	return &session, nil
}

// UpdateProgress implements store.SessionStore.UpdateProgress
func (s *PostgresSessionStore) UpdateProgress(ctx context.Context, session *domain.QuizSession, expectedIndex int) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `
		UPDATE quiz_sessions
		SET current_index = $1, score = $2, is_completed = $3, completed_at = $4
		WHERE id = $5 AND current_index = $6 AND NOT is_completed
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

	if err := CheckRowsAffected(result, store.ErrConcurrentUpdate); err != nil {
		if !errors.Is(err, store.ErrConcurrentUpdate) {
			return err
		}
		var exists bool
		if qErr := s.db.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM quiz_sessions WHERE id = $1)`, session.ID,
		).Scan(&exists); qErr != nil {
			return MapError(qErr)
		}
		if !exists {
			return store.ErrSessionNotFound
		}
		log.Warn("session progress changed concurrently",
			slog.String("session_id", session.ID.String()),
			slog.Int("expected_index", expectedIndex))
		return store.ErrConcurrentUpdate
	}
	return nil
}

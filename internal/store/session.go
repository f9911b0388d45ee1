package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/voca-api/internal/domain"
)

// SessionStore defines the interface for quiz session persistence.
type SessionStore interface {
	// Create saves a new session.
	Create(ctx context.Context, session *domain.QuizSession) error

	// GetByID retrieves a session.
	// Returns ErrSessionNotFound if the session does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.QuizSession, error)

	// UpdateProgress writes the cursor, score and completion fields of
	// session, but only while the stored cursor still equals expectedIndex.
	// Returns ErrConcurrentUpdate when the guard does not hold and
	// ErrSessionNotFound when the session does not exist.
	UpdateProgress(ctx context.Context, session *domain.QuizSession, expectedIndex int) error

	// WithTx returns a new SessionStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) SessionStore
}

// AnswerStore defines the interface for the append-only answer log.
type AnswerStore interface {
	// Create appends an answer.
	Create(ctx context.Context, answer *domain.Answer) error

	// ListBySession returns the session's answers ordered by position.
	ListBySession(ctx context.Context, sessionID uuid.UUID) ([]*domain.Answer, error)

	// ListIncorrectWords returns the word text of each incorrect answer,
	// ordered by answer position. Duplicates are kept.
	ListIncorrectWords(ctx context.Context, sessionID uuid.UUID) ([]string, error)

	// WithTx returns a new AnswerStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) AnswerStore
}

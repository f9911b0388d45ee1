// Package quiz runs vocabulary quiz sessions over a deck.
package quiz

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/voca-api/internal/domain"
	"github.com/phrazzld/voca-api/internal/store"
)

// StartRequest describes a new session.
type StartRequest struct {
	DeckID uuid.UUID `json:"deck_id" validate:"required"`
	// WordIndices selects deck positions to ask, in order. Nil asks every
	// word of the deck in ascending order.
	WordIndices []int      `json:"word_indices,omitempty"`
	IsWrongOnly bool       `json:"is_wrong_only"`
	UserID      *uuid.UUID `json:"-"`
}

// SubmitRequest is one answer to the current question.
type SubmitRequest struct {
	Answer    string `json:"answer"`
	HintsUsed int    `json:"hint_used" validate:"gte=0"`
}

// Prompt is the question under the session cursor.
type Prompt struct {
	Word     string `json:"word"`
	Index    int    `json:"index"`
	Progress string `json:"progress"`
	Total    int    `json:"total"`
	Current  int    `json:"current"`
}

// SubmitResult reports the outcome of SubmitAnswer.
type SubmitResult struct {
	IsCorrect bool `json:"is_correct"`
	// CorrectAnswer is the meaning string exactly as stored.
	CorrectAnswer string `json:"correct_answer"`
	Score         int    `json:"score"`
	Progress      string `json:"progress"`
	IsCompleted   bool   `json:"is_completed"`
}

// Summary aggregates the answers of a session. It is available at any
// point, not only after completion.
type Summary struct {
	SessionID   uuid.UUID  `json:"session_id"`
	DeckName    string     `json:"deck_name"`
	Score       int        `json:"score"`
	Total       int        `json:"total_questions"`
	Answered    int        `json:"answered"`
	Percentage  float64    `json:"percentage"`
	WrongWords  []string   `json:"wrong_words"`
	IsCompleted bool       `json:"is_completed"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// SessionEngine drives the quiz session state machine.
//
// A session is Active while its cursor is below the number of questions and
// becomes Completed, permanently, when a submit moves the cursor to the end.
type SessionEngine interface {
	// StartSession creates an active session over the requested words.
	// A nil or empty WordIndices selects every word in deck order.
	//
	// Returns:
	//   - ErrDeckNotFound when the deck does not exist
	//   - ErrInvalidWordIndices (a validation error) for an index outside
	//     the deck
	StartSession(ctx context.Context, req StartRequest) (*domain.QuizSession, error)

	// GetPrompt returns the word under the cursor.
	//
	// Returns:
	//   - ErrSessionNotFound when the session does not exist
	//   - ErrSessionCompleted or ErrCursorOutOfRange (both ErrInvalidState)
	//   - ErrWordNotFound when the deck no longer has the indexed word
	GetPrompt(ctx context.Context, sessionID uuid.UUID) (*Prompt, error)

	// SubmitAnswer scores the answer to the current question and advances
	// the cursor by one. Answer, score, cursor and wrong-answer counter are
	// written in one transaction.
	//
	// Fails like GetPrompt, and with ErrConcurrentSubmit when another submit
	// for the same session committed first.
	SubmitAnswer(ctx context.Context, sessionID uuid.UUID, req SubmitRequest) (*SubmitResult, error)

	// GetSummary aggregates the session's answers.
	GetSummary(ctx context.Context, sessionID uuid.UUID) (*Summary, error)

	// GetWrongWords lists the deck's words answered wrongly at least
	// minWrongCount times. uuid.Nil as userID covers every user.
	GetWrongWords(ctx context.Context, deckID, userID uuid.UUID, minWrongCount int) ([]string, error)

	// GetSessionWrongWords is GetWrongWords for the deck and user of a session.
	GetSessionWrongWords(ctx context.Context, sessionID uuid.UUID, minWrongCount int) ([]string, error)
}

var (
	// ErrSessionNotFound indicates that the session does not exist.
	ErrSessionNotFound = fmt.Errorf("%w: session", store.ErrNotFound)

	// ErrDeckNotFound indicates that the deck does not exist.
	ErrDeckNotFound = fmt.Errorf("%w: deck", store.ErrNotFound)

	// ErrWordNotFound indicates that the session points at a word the deck
	// does not have.
	ErrWordNotFound = fmt.Errorf("%w: word", store.ErrNotFound)

	// ErrInvalidState is the category of operations refused because of the
	// session's state.
	ErrInvalidState = errors.New("invalid session state")

	// ErrSessionCompleted indicates that the session has already ended.
	ErrSessionCompleted = fmt.Errorf("%w: session is completed", ErrInvalidState)

	// ErrCursorOutOfRange indicates that the cursor is past the last question.
	ErrCursorOutOfRange = fmt.Errorf("%w: cursor out of range", ErrInvalidState)

	// ErrConcurrentSubmit indicates that another submit for the same
	// question won the race.
	ErrConcurrentSubmit = fmt.Errorf("%w: concurrent submit", ErrInvalidState)

	// ErrInvalidWordIndices indicates an unusable word selection.
	ErrInvalidWordIndices = errors.New("invalid word indices")
)

// ServiceError wraps unexpected failures of the session engine with the
// operation that failed.
type ServiceError struct {
	// Operation is the operation that failed (e.g., "start_session", "submit_answer")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s operation failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s operation failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

func newServiceError(operation, message string, err error) *ServiceError {
	return &ServiceError{Operation: operation, Message: message, Err: err}
}

package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Session validation errors
var (
	ErrEmptySessionID      = errors.New("session ID cannot be empty")
	ErrNegativeWordIndex   = errors.New("word indices cannot be negative")
	ErrSessionAlreadyEnded = errors.New("session is already completed")
)

// QuizSession is one pass over an ordered selection of a deck's words.
//
// WordIndices is fixed at creation. CurrentIndex only moves forward, Score
// never decreases, and IsCompleted flips to true exactly once, when
// CurrentIndex reaches TotalQuestions.
type QuizSession struct {
	ID             uuid.UUID  `json:"id"`
	DeckID         uuid.UUID  `json:"deck_id"`
	UserID         *uuid.UUID `json:"user_id,omitempty"`
	WordIndices    []int      `json:"word_indices"`
	CurrentIndex   int        `json:"current_index"`
	Score          int        `json:"score"`
	TotalQuestions int        `json:"total_questions"`
	IsCompleted    bool       `json:"is_completed"`
	IsWrongOnly    bool       `json:"is_wrong_only"`
	CreatedAt      time.Time  `json:"created_at"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
}

// NewQuizSession creates an active session over wordIndices.
// The slice is copied so later changes by the caller do not leak in.
func NewQuizSession(deckID uuid.UUID, userID *uuid.UUID, wordIndices []int, isWrongOnly bool) (*QuizSession, error) {
	indices := make([]int, len(wordIndices))
	copy(indices, wordIndices)

	s := &QuizSession{
		ID:             uuid.New(),
		DeckID:         deckID,
		UserID:         userID,
		WordIndices:    indices,
		TotalQuestions: len(indices),
		IsWrongOnly:    isWrongOnly,
		CreatedAt:      time.Now().UTC(),
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks the structural invariants of the session.
func (s *QuizSession) Validate() error {
	if s.ID == uuid.Nil {
		return ErrEmptySessionID
	}
	if s.DeckID == uuid.Nil {
		return ErrEmptyDeckID
	}
	for _, idx := range s.WordIndices {
		if idx < 0 {
			return ErrNegativeWordIndex
		}
	}
	if s.TotalQuestions != len(s.WordIndices) {
		return fmt.Errorf("%w: total questions does not match word indices", ErrValidation)
	}
	if s.CurrentIndex < 0 || s.CurrentIndex > s.TotalQuestions {
		return fmt.Errorf("%w: current index out of range", ErrValidation)
	}
	return nil
}

// CurrentWordIndex returns the deck position of the word under the cursor.
// ok is false when the cursor has run past the index sequence.
func (s *QuizSession) CurrentWordIndex() (index int, ok bool) {
	if s.CurrentIndex < 0 || s.CurrentIndex >= len(s.WordIndices) {
		return 0, false
	}
	return s.WordIndices[s.CurrentIndex], true
}

// Advance records the outcome of the current question: the score grows by
// one when correct, the cursor moves forward by one, and the session
// completes when the cursor reaches the end.
func (s *QuizSession) Advance(correct bool, now time.Time) error {
	if s.IsCompleted {
		return ErrSessionAlreadyEnded
	}
	if s.CurrentIndex >= s.TotalQuestions {
		return fmt.Errorf("%w: cursor at end of session", ErrValidation)
	}

	if correct {
		s.Score++
	}
	s.CurrentIndex++
	if s.CurrentIndex == s.TotalQuestions {
		s.IsCompleted = true
		completedAt := now.UTC()
		s.CompletedAt = &completedAt
	}
	return nil
}

// Progress formats the cursor as "answered/total".
func (s *QuizSession) Progress() string {
	return fmt.Sprintf("%d/%d", s.CurrentIndex, s.TotalQuestions)
}

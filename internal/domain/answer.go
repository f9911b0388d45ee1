package domain

import (
	"time"

	"github.com/google/uuid"
)

// Answer is the immutable record of one submitted response.
// Position is the session cursor at the time of submission.
type Answer struct {
	ID         uuid.UUID `json:"id"`
	SessionID  uuid.UUID `json:"session_id"`
	WordID     uuid.UUID `json:"word_id"`
	Position   int       `json:"position"`
	UserAnswer string    `json:"user_answer"`
	IsCorrect  bool      `json:"is_correct"`
	HintsUsed  int       `json:"hints_used"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewAnswer creates an answer record for the question at position.
func NewAnswer(sessionID, wordID uuid.UUID, position int, userAnswer string, isCorrect bool, hintsUsed int) *Answer {
	return &Answer{
		ID:         uuid.New(),
		SessionID:  sessionID,
		WordID:     wordID,
		Position:   position,
		UserAnswer: userAnswer,
		IsCorrect:  isCorrect,
		HintsUsed:  hintsUsed,
		CreatedAt:  time.Now().UTC(),
	}
}

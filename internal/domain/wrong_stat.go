package domain

import (
	"time"

	"github.com/google/uuid"
)

// WrongStat counts incorrect answers for a word within a deck.
// UserID is uuid.Nil for answers given without an authenticated user.
type WrongStat struct {
	ID          uuid.UUID `json:"id"`
	Word        string    `json:"word"`
	DeckID      uuid.UUID `json:"deck_id"`
	UserID      uuid.UUID `json:"user_id"`
	WrongCount  int       `json:"wrong_count"`
	LastWrongAt time.Time `json:"last_wrong_at"`
}

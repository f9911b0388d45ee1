package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Deck validation errors
var (
	ErrEmptyDeckID    = errors.New("deck ID cannot be empty")
	ErrEmptyDeckName  = errors.New("deck name cannot be empty")
	ErrDeckNameLength = errors.New("deck name must be at most 200 characters")
	ErrEmptyWordText  = errors.New("word cannot be empty")
	ErrEmptyMeaning   = errors.New("meaning cannot be empty")
	ErrNegativeIndex  = errors.New("index in deck cannot be negative")
	ErrNoWords        = errors.New("deck must contain at least one word")
)

const maxDeckNameLength = 200

// Deck is a named, ordered collection of words.
// UserID is nil for decks uploaded without an authenticated user.
type Deck struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	SourceFile  string     `json:"source_file,omitempty"`
	UserID      *uuid.UUID `json:"user_id,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// DeckSummary is a deck together with its word count, as returned by listings.
type DeckSummary struct {
	Deck
	WordCount int `json:"word_count"`
}

// Word is one entry of a deck. Meaning holds one or more accepted meanings
// separated by commas. IndexInDeck is assigned at creation and never renumbered.
type Word struct {
	ID          uuid.UUID `json:"id"`
	DeckID      uuid.UUID `json:"deck_id"`
	Text        string    `json:"word"`
	Meaning     string    `json:"meaning"`
	IndexInDeck int       `json:"index_in_deck"`
}

// NewDeck creates a deck with a fresh ID.
func NewDeck(name, description, sourceFile string, userID *uuid.UUID) (*Deck, error) {
	deck := &Deck{
		ID:          uuid.New(),
		Name:        strings.TrimSpace(name),
		Description: strings.TrimSpace(description),
		SourceFile:  sourceFile,
		UserID:      userID,
		CreatedAt:   time.Now().UTC(),
	}

	if err := deck.Validate(); err != nil {
		return nil, err
	}
	return deck, nil
}

// Validate checks if the Deck has valid data.
func (d *Deck) Validate() error {
	if d.ID == uuid.Nil {
		return ErrEmptyDeckID
	}
	if d.Name == "" {
		return ErrEmptyDeckName
	}
	if len([]rune(d.Name)) > maxDeckNameLength {
		return ErrDeckNameLength
	}
	return nil
}

// NewWord creates a word belonging to deckID at the given position.
func NewWord(deckID uuid.UUID, text, meaning string, index int) (*Word, error) {
	word := &Word{
		ID:          uuid.New(),
		DeckID:      deckID,
		Text:        strings.TrimSpace(text),
		Meaning:     strings.TrimSpace(meaning),
		IndexInDeck: index,
	}

	if err := word.Validate(); err != nil {
		return nil, err
	}
	return word, nil
}

// Validate checks if the Word has valid data.
func (w *Word) Validate() error {
	if w.DeckID == uuid.Nil {
		return ErrEmptyDeckID
	}
	if w.Text == "" {
		return ErrEmptyWordText
	}
	if w.Meaning == "" {
		return ErrEmptyMeaning
	}
	if w.IndexInDeck < 0 {
		return ErrNegativeIndex
	}
	return nil
}

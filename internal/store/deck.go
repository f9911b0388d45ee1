package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/voca-api/internal/domain"
)

// DeckStore defines the interface for deck and word persistence.
// Words are only ever written together with their deck.
type DeckStore interface {
	// Create saves a deck and all of its words atomically.
	// Word positions must be unique within the deck.
	Create(ctx context.Context, deck *domain.Deck, words []*domain.Word) error

	// GetByID retrieves a deck without its words.
	// Returns ErrDeckNotFound if the deck does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Deck, error)

	// List returns every deck with its word count, newest first.
	List(ctx context.Context) ([]*domain.DeckSummary, error)

	// Delete removes a deck. Words, sessions, answers and wrong stats of the
	// deck are removed by cascade.
	// Returns ErrDeckNotFound if the deck does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// GetWord retrieves the word at indexInDeck.
	// Returns ErrWordNotFound if the deck has no word at that position.
	GetWord(ctx context.Context, deckID uuid.UUID, indexInDeck int) (*domain.Word, error)

	// ListWords returns the deck's words ordered by position.
	ListWords(ctx context.Context, deckID uuid.UUID) ([]*domain.Word, error)

	// CountWords returns the number of words in the deck.
	CountWords(ctx context.Context, deckID uuid.UUID) (int, error)

	// WithTx returns a new DeckStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) DeckStore
}

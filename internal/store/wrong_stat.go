package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/voca-api/internal/domain"
)

// WrongStatStore defines the interface for wrong-answer counters.
type WrongStatStore interface {
	// Increment adds one to the counter for (word, deckID, userID) in a
	// single atomic upsert, creating the row with a count of one when absent,
	// and returns the updated row.
	Increment(ctx context.Context, word string, deckID, userID uuid.UUID) (*domain.WrongStat, error)

	// ListWords returns the words of deckID whose count is at least
	// minCount, ordered alphabetically. A nil userID sums counts across
	// every user.
	ListWords(ctx context.Context, deckID, userID uuid.UUID, minCount int) ([]string, error)

	// WithTx returns a new WrongStatStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) WrongStatStore
}

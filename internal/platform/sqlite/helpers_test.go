package sqlite_test

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/voca-api/internal/domain"
	"github.com/phrazzld/voca-api/internal/platform/sqlite"
	"github.com/phrazzld/voca-api/internal/testdb"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// createDeck stores a deck holding the given word/meaning pairs.
func createDeck(t *testing.T, db *sql.DB, pairs ...[2]string) (*domain.Deck, []*domain.Word) {
	t.Helper()

	deck, err := domain.NewDeck("test deck", "", "test.csv", nil)
	require.NoError(t, err)

	words := make([]*domain.Word, 0, len(pairs))
	for i, p := range pairs {
		w, err := domain.NewWord(deck.ID, p[0], p[1], i)
		require.NoError(t, err)
		words = append(words, w)
	}

	decks := sqlite.NewSQLiteDeckStore(db, testLogger())
	require.NoError(t, decks.Create(context.Background(), deck, words))
	return deck, words
}

func newDB(t *testing.T) *sql.DB {
	t.Helper()
	return testdb.OpenSQLite(t)
}

func ptr(id uuid.UUID) *uuid.UUID { return &id }

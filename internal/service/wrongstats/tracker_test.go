package wrongstats_test

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/voca-api/internal/domain"
	"github.com/phrazzld/voca-api/internal/platform/sqlite"
	"github.com/phrazzld/voca-api/internal/service/wrongstats"
	"github.com/phrazzld/voca-api/internal/store"
	"github.com/phrazzld/voca-api/internal/testdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (*sql.DB, wrongstats.Tracker, uuid.UUID) {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	db := testdb.OpenSQLite(t)

	deck, err := domain.NewDeck("deck", "", "", nil)
	require.NoError(t, err)
	var words []*domain.Word
	for i, w := range []string{"escape", "abandon", "achieve"} {
		word, err := domain.NewWord(deck.ID, w, "meaning", i)
		require.NoError(t, err)
		words = append(words, word)
	}
	require.NoError(t, sqlite.NewSQLiteDeckStore(db, log).Create(context.Background(), deck, words))

	return db, wrongstats.NewTracker(sqlite.NewSQLiteWrongStatStore(db, log), log), deck.ID
}

func TestRecordWrongCreatesThenIncrements(t *testing.T) {
	_, tracker, deckID := setup(t)
	ctx := context.Background()

	first, err := tracker.RecordWrong(ctx, "abandon", deckID, uuid.Nil)
	require.NoError(t, err)
	assert.Equal(t, 1, first.WrongCount)

	second, err := tracker.RecordWrong(ctx, "abandon", deckID, uuid.Nil)
	require.NoError(t, err)
	assert.Equal(t, 2, second.WrongCount)
	assert.Equal(t, first.ID, second.ID)
}

func TestRecordWrongConcurrentIncrementsAreNotLost(t *testing.T) {
	_, tracker, deckID := setup(t)
	ctx := context.Background()

	const n = 20
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := tracker.RecordWrong(ctx, "escape", deckID, uuid.Nil)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	words, err := tracker.GetWrongWords(ctx, deckID, uuid.Nil, n)
	require.NoError(t, err)
	assert.Equal(t, []string{"escape"}, words)

	words, err = tracker.GetWrongWords(ctx, deckID, uuid.Nil, n+1)
	require.NoError(t, err)
	assert.Empty(t, words)
}

func TestGetWrongWords(t *testing.T) {
	_, tracker, deckID := setup(t)
	ctx := context.Background()
	user := uuid.New()

	record := func(word string, userID uuid.UUID, times int) {
		for i := 0; i < times; i++ {
			_, err := tracker.RecordWrong(ctx, word, deckID, userID)
			require.NoError(t, err)
		}
	}
	record("escape", uuid.Nil, 1)
	record("escape", user, 1)
	record("abandon", uuid.Nil, 3)
	record("achieve", user, 2)

	tests := []struct {
		name   string
		userID uuid.UUID
		min    int
		want   []string
	}{
		{"all users min 1 sorted", uuid.Nil, 1, []string{"abandon", "achieve", "escape"}},
		{"all users sums across users", uuid.Nil, 2, []string{"abandon", "achieve", "escape"}},
		{"all users min 3", uuid.Nil, 3, []string{"abandon"}},
		{"single user", user, 1, []string{"achieve", "escape"}},
		{"single user min 2", user, 2, []string{"achieve"}},
		{"threshold above every count", uuid.Nil, 10, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tracker.GetWrongWords(ctx, deckID, tt.userID, tt.min)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidation(t *testing.T) {
	_, tracker, deckID := setup(t)
	ctx := context.Background()

	_, err := tracker.RecordWrong(ctx, "  ", deckID, uuid.Nil)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = tracker.RecordWrong(ctx, "escape", uuid.Nil, uuid.Nil)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = tracker.GetWrongWords(ctx, deckID, uuid.Nil, 0)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestWithTxRollsBack(t *testing.T) {
	db, tracker, deckID := setup(t)
	ctx := context.Background()

	errBoom := assert.AnError
	err := store.RunInTransaction(ctx, db, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tracker.WithTx(tx).RecordWrong(ctx, "achieve", deckID, uuid.Nil); err != nil {
			return err
		}
		return errBoom
	})
	require.ErrorIs(t, err, errBoom)

	words, err := tracker.GetWrongWords(ctx, deckID, uuid.Nil, 1)
	require.NoError(t, err)
	assert.Empty(t, words)
}

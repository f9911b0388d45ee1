package sqlite

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/voca-api/internal/domain"
	"github.com/phrazzld/voca-api/internal/platform/logger"
	"github.com/phrazzld/voca-api/internal/store"
)

// SQLiteWrongStatStore implements store.WrongStatStore on SQLite.
type SQLiteWrongStatStore struct {
	conn
	logger *slog.Logger
}

// NewSQLiteWrongStatStore creates a wrong-stat store over db.
func NewSQLiteWrongStatStore(db *sql.DB, logger *slog.Logger) *SQLiteWrongStatStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &SQLiteWrongStatStore{
		conn:   newConn(db),
		logger: logger.With(slog.String("component", "wrong_stat_store")),
	}
}

var _ store.WrongStatStore = (*SQLiteWrongStatStore)(nil)

// WithTx implements store.WrongStatStore.WithTx
func (s *SQLiteWrongStatStore) WithTx(tx *sql.Tx) store.WrongStatStore {
	return &SQLiteWrongStatStore{conn: s.withTx(tx), logger: s.logger}
}

// Increment implements store.WrongStatStore.Increment.
// The upsert is a single statement, so concurrent increments cannot lose updates.
func (s *SQLiteWrongStatStore) Increment(
	ctx context.Context,
	word string,
	deckID, userID uuid.UUID,
) (*domain.WrongStat, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	now := time.Now().UTC()
	var row wrongStatRow
	// RETURNING columns carry no declared type, so last_wrong_at is taken
	// from the bound value instead of being read back.
	err := s.q.GetContext(ctx, &row, `
		INSERT INTO wrong_stats (id, word, deck_id, user_id, wrong_count, last_wrong_at)
		VALUES (?, ?, ?, ?, 1, ?)
		ON CONFLICT (word, deck_id, user_id) DO UPDATE
		SET wrong_count = wrong_count + 1,
			last_wrong_at = excluded.last_wrong_at
		RETURNING id, word, deck_id, user_id, wrong_count
	`, uuid.New(), word, deckID, userID, now)
	if err != nil {
		log.Error("failed to increment wrong stat",
			slog.String("error", err.Error()),
			slog.String("deck_id", deckID.String()))
		return nil, MapError(err)
	}
	row.LastWrongAt = now

	log.Debug("wrong stat incremented",
		slog.String("deck_id", deckID.String()),
		slog.Int("wrong_count", row.WrongCount))
	return row.toDomain(), nil
}

// ListWords implements store.WrongStatStore.ListWords.
// A nil userID sums the counts of every user.
func (s *SQLiteWrongStatStore) ListWords(
	ctx context.Context,
	deckID, userID uuid.UUID,
	minCount int,
) ([]string, error) {
	words := []string{}
	var err error
	if userID == uuid.Nil {
		err = s.q.SelectContext(ctx, &words, `
			SELECT word
			FROM wrong_stats
			WHERE deck_id = ?
			GROUP BY word
			HAVING SUM(wrong_count) >= ?
			ORDER BY word
		`, deckID, minCount)
	} else {
		err = s.q.SelectContext(ctx, &words, `
			SELECT word
			FROM wrong_stats
			WHERE deck_id = ? AND user_id = ? AND wrong_count >= ?
			ORDER BY word
		`, deckID, userID, minCount)
	}
	if err != nil {
		return nil, MapError(err)
	}
	return words, nil
}


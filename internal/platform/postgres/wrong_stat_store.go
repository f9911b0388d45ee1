package postgres

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

// PostgresWrongStatStore implements the store.WrongStatStore interface
// using a PostgreSQL database as the storage backend.
type PostgresWrongStatStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresWrongStatStore creates a new PostgreSQL implementation of the WrongStatStore interface.
func NewPostgresWrongStatStore(db store.DBTX, logger *slog.Logger) *PostgresWrongStatStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresWrongStatStore{
		db:     db,
		logger: logger.With(slog.String("component", "wrong_stat_store")),
	}
}

// Ensure PostgresWrongStatStore implements store.WrongStatStore interface
var _ store.WrongStatStore = (*PostgresWrongStatStore)(nil)

// WithTx implements store.WrongStatStore.WithTx
func (s *PostgresWrongStatStore) WithTx(tx *sql.Tx) store.WrongStatStore {
	return &PostgresWrongStatStore{db: tx, logger: s.logger}
}

// Increment implements store.WrongStatStore.Increment.
// The upsert takes the row lock, so concurrent increments serialize in the database.
func (s *PostgresWrongStatStore) Increment(
	ctx context.Context,
	word string,
	deckID, userID uuid.UUID,
) (*domain.WrongStat, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var stat domain.WrongStat
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO wrong_stats (id, word, deck_id, user_id, wrong_count, last_wrong_at)
		VALUES ($1, $2, $3, $4, 1, $5)
		ON CONFLICT (word, deck_id, user_id) DO UPDATE
		SET wrong_count = wrong_stats.wrong_count + 1,
			last_wrong_at = EXCLUDED.last_wrong_at
		RETURNING id, word, deck_id, user_id, wrong_count, last_wrong_at
	`, uuid.New(), word, deckID, userID, time.Now().UTC()).Scan(
		&stat.ID,
		&stat.Word,
		&stat.DeckID,
		&stat.UserID,
		&stat.WrongCount,
		&stat.LastWrongAt,
	)
	if err != nil {
		log.Error("failed to increment wrong stat",
			slog.String("error", err.Error()),
			slog.String("deck_id", deckID.String()))
		return nil, MapError(err)
	}

	log.Debug("wrong stat incremented",
		slog.String("deck_id", deckID.String()),
		slog.Int("wrong_count", stat.WrongCount))
	return &stat, nil
}

// ListWords implements store.WrongStatStore.ListWords
func (s *PostgresWrongStatStore) ListWords(
	ctx context.Context,
	deckID, userID uuid.UUID,
	minCount int,
) ([]string, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if userID == uuid.Nil {
		rows, err = s.db.QueryContext(ctx, `
			SELECT word
			FROM wrong_stats
			WHERE deck_id = $1
			GROUP BY word
			HAVING SUM(wrong_count) >= $2
			ORDER BY word
		`, deckID, minCount)
	} else {
		rows, err = s.db.QueryContext(ctx, `
			SELECT word
			FROM wrong_stats
			WHERE deck_id = $1 AND user_id = $2 AND wrong_count >= $3
			ORDER BY word
		`, deckID, userID, minCount)
	}
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	words := []string{}
	for rows.Next() {
		var w string
		if err := rows.Scan(&w); err != nil {
			return nil, MapError(err)
		}
		words = append(words, w)
	}
	return words, MapError(rows.Err())
}


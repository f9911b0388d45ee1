// Package wrongstats keeps durable per-word counts of incorrect answers.
package wrongstats

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/phrazzld/voca-api/internal/domain"
	"github.com/phrazzld/voca-api/internal/platform/logger"
	"github.com/phrazzld/voca-api/internal/store"
)

// Tracker records and queries wrong-answer counters.
//
// Counters are keyed by (word, deck, user); uuid.Nil stands for answers
// given without an authenticated user. Increments are delegated to the
// store's atomic upsert, so concurrent sessions never lose a count and the
// tracker holds no state of its own.
type Tracker interface {
	// RecordWrong adds one to the counter for word and returns the updated row.
	RecordWrong(ctx context.Context, word string, deckID, userID uuid.UUID) (*domain.WrongStat, error)

	// GetWrongWords returns the words of deckID answered wrongly at least
	// minWrongCount times, ordered alphabetically. uuid.Nil as userID
	// aggregates the counts of every user.
	GetWrongWords(ctx context.Context, deckID, userID uuid.UUID, minWrongCount int) ([]string, error)

	// WithTx returns a tracker whose writes join tx.
	WithTx(tx *sql.Tx) Tracker
}

type tracker struct {
	stats  store.WrongStatStore
	logger *slog.Logger
}

var _ Tracker = (*tracker)(nil)

// NewTracker creates a Tracker backed by stats.
func NewTracker(stats store.WrongStatStore, logger *slog.Logger) Tracker {
	if stats == nil {
		panic("stats store cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &tracker{
		stats:  stats,
		logger: logger.With(slog.String("component", "wrong_stats")),
	}
}

func (t *tracker) WithTx(tx *sql.Tx) Tracker {
	return &tracker{stats: t.stats.WithTx(tx), logger: t.logger}
}

func (t *tracker) RecordWrong(
	ctx context.Context,
	word string,
	deckID, userID uuid.UUID,
) (*domain.WrongStat, error) {
	log := logger.FromContextOrDefault(ctx, t.logger)

	word = strings.TrimSpace(word)
	if word == "" {
		return nil, domain.NewValidationError("word", "cannot be empty", domain.ErrEmptyWordText)
	}
	if deckID == uuid.Nil {
		return nil, domain.NewValidationError("deck_id", "cannot be empty", domain.ErrEmptyDeckID)
	}

	stat, err := t.stats.Increment(ctx, word, deckID, userID)
	if err != nil {
		log.Error("failed to record wrong answer",
			slog.String("error", err.Error()),
			slog.String("word", word),
			slog.String("deck_id", deckID.String()))
		return nil, fmt.Errorf("failed to record wrong answer: %w", err)
	}

	log.Debug("wrong answer recorded",
		slog.String("word", word),
		slog.String("deck_id", deckID.String()),
		slog.Int("wrong_count", stat.WrongCount))
	return stat, nil
}

func (t *tracker) GetWrongWords(
	ctx context.Context,
	deckID, userID uuid.UUID,
	minWrongCount int,
) ([]string, error) {
	if minWrongCount < 1 {
		return nil, domain.NewValidationError("min_wrong_count", "must be at least 1", domain.ErrValidation)
	}

	words, err := t.stats.ListWords(ctx, deckID, userID, minWrongCount)
	if err != nil {
		return nil, fmt.Errorf("failed to list wrong words: %w", err)
	}
	if words == nil {
		words = []string{}
	}
	return words, nil
}

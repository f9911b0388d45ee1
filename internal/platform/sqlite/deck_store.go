package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/voca-api/internal/domain"
	"github.com/phrazzld/voca-api/internal/platform/logger"
	"github.com/phrazzld/voca-api/internal/store"
)

// SQLiteDeckStore implements store.DeckStore on SQLite.
type SQLiteDeckStore struct {
	conn
	logger *slog.Logger
}

// NewSQLiteDeckStore creates a deck store over db.
func NewSQLiteDeckStore(db *sql.DB, logger *slog.Logger) *SQLiteDeckStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &SQLiteDeckStore{
		conn:   newConn(db),
		logger: logger.With(slog.String("component", "deck_store")),
	}
}

var _ store.DeckStore = (*SQLiteDeckStore)(nil)

// WithTx implements store.DeckStore.WithTx
func (s *SQLiteDeckStore) WithTx(tx *sql.Tx) store.DeckStore {
	return &SQLiteDeckStore{conn: s.withTx(tx), logger: s.logger}
}

// Create implements store.DeckStore.Create.
// Outside a transaction the deck and its words are written inside one.
func (s *SQLiteDeckStore) Create(ctx context.Context, deck *domain.Deck, words []*domain.Word) error {
	if err := deck.Validate(); err != nil {
		return err
	}
	for _, w := range words {
		if err := w.Validate(); err != nil {
			return err
		}
	}

	if s.db != nil {
		return store.RunInTransaction(ctx, s.db.DB, func(ctx context.Context, tx *sql.Tx) error {
			return s.create(ctx, s.withTx(tx).q, deck, words)
		})
	}
	return s.create(ctx, s.q, deck, words)
}

func (s *SQLiteDeckStore) create(ctx context.Context, q Queryer, deck *domain.Deck, words []*domain.Word) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	_, err := q.ExecContext(ctx, `
		INSERT INTO decks (id, name, description, source_file, user_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, deck.ID, deck.Name, deck.Description, deck.SourceFile, deck.UserID, deck.CreatedAt)
	if err != nil {
		log.Error("failed to create deck",
			slog.String("error", err.Error()),
			slog.String("deck_id", deck.ID.String()))
		return MapError(err)
	}

	for _, w := range words {
		_, err := q.ExecContext(ctx, `
			INSERT INTO words (id, deck_id, word, meaning, index_in_deck)
			VALUES (?, ?, ?, ?, ?)
		`, w.ID, deck.ID, w.Text, w.Meaning, w.IndexInDeck)
		if err != nil {
			log.Error("failed to insert word",
				slog.String("error", err.Error()),
				slog.String("deck_id", deck.ID.String()),
				slog.Int("index_in_deck", w.IndexInDeck))
			return MapError(err)
		}
	}

	log.Info("deck created successfully",
		slog.String("deck_id", deck.ID.String()),
		slog.Int("word_count", len(words)))
	return nil
}

// GetByID implements store.DeckStore.GetByID
func (s *SQLiteDeckStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Deck, error) {
	var row deckRow
	err := s.q.GetContext(ctx, &row, `
		SELECT id, name, description, source_file, user_id, created_at
		FROM decks
		WHERE id = ?
	`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrDeckNotFound
		}
		return nil, MapError(err)
	}
	return row.toDomain(), nil
}

// List implements store.DeckStore.List
func (s *SQLiteDeckStore) List(ctx context.Context) ([]*domain.DeckSummary, error) {
	var rows []deckRow
	err := s.q.SelectContext(ctx, &rows, `
		SELECT d.id, d.name, d.description, d.source_file, d.user_id, d.created_at,
			(SELECT COUNT(*) FROM words w WHERE w.deck_id = d.id) AS word_count
		FROM decks d
		ORDER BY d.created_at DESC, d.id
	`)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list decks",
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}

	decks := make([]*domain.DeckSummary, 0, len(rows))
	for _, r := range rows {
		decks = append(decks, &domain.DeckSummary{Deck: *r.toDomain(), WordCount: r.WordCount})
	}
	return decks, nil
}

// Delete implements store.DeckStore.Delete
func (s *SQLiteDeckStore) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := s.q.ExecContext(ctx, `DELETE FROM decks WHERE id = ?`, id)
	if err != nil {
		return MapError(err)
	}
	if err := CheckRowsAffected(result, store.ErrDeckNotFound); err != nil {
		return err
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("deck deleted successfully",
		slog.String("deck_id", id.String()))
	return nil
}

// GetWord implements store.DeckStore.GetWord
func (s *SQLiteDeckStore) GetWord(ctx context.Context, deckID uuid.UUID, indexInDeck int) (*domain.Word, error) {
	var row wordRow
	err := s.q.GetContext(ctx, &row, `
		SELECT id, deck_id, word, meaning, index_in_deck
		FROM words
		WHERE deck_id = ? AND index_in_deck = ?
	`, deckID, indexInDeck)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrWordNotFound
		}
		return nil, MapError(err)
	}
	return row.toDomain(), nil
}

// ListWords implements store.DeckStore.ListWords
func (s *SQLiteDeckStore) ListWords(ctx context.Context, deckID uuid.UUID) ([]*domain.Word, error) {
	var rows []wordRow
	err := s.q.SelectContext(ctx, &rows, `
		SELECT id, deck_id, word, meaning, index_in_deck
		FROM words
		WHERE deck_id = ?
		ORDER BY index_in_deck
	`, deckID)
	if err != nil {
		return nil, MapError(err)
	}

	words := make([]*domain.Word, 0, len(rows))
	for _, r := range rows {
		words = append(words, r.toDomain())
	}
	return words, nil
}

// CountWords implements store.DeckStore.CountWords
func (s *SQLiteDeckStore) CountWords(ctx context.Context, deckID uuid.UUID) (int, error) {
	var n int
	if err := s.q.GetContext(ctx, &n, `SELECT COUNT(*) FROM words WHERE deck_id = ?`, deckID); err != nil {
		return 0, MapError(err)
	}
	return n, nil
}

package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/voca-api/internal/domain"
	"github.com/phrazzld/voca-api/internal/platform/logger"
	"github.com/phrazzld/voca-api/internal/store"
)

// PostgresDeckStore implements the store.DeckStore interface
// using a PostgreSQL database as the storage backend.
type PostgresDeckStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresDeckStore creates a new PostgreSQL implementation of the DeckStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresDeckStore(db store.DBTX, logger *slog.Logger) *PostgresDeckStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresDeckStore{
		db:     db,
		logger: logger.With(slog.String("component", "deck_store")),
	}
}

// Ensure PostgresDeckStore implements store.DeckStore interface
var _ store.DeckStore = (*PostgresDeckStore)(nil)

// WithTx implements store.DeckStore.WithTx
func (s *PostgresDeckStore) WithTx(tx *sql.Tx) store.DeckStore {
	return &PostgresDeckStore{db: tx, logger: s.logger}
}

// Create implements store.DeckStore.Create.
// When the store is not bound to a transaction the deck and its words are
// written inside one.
func (s *PostgresDeckStore) Create(ctx context.Context, deck *domain.Deck, words []*domain.Word) error {
	if err := deck.Validate(); err != nil {
		return err
	}
	for _, w := range words {
		if err := w.Validate(); err != nil {
			return err
		}
	}

	if db, ok := s.db.(*sql.DB); ok {
		return store.RunInTransaction(ctx, db, func(ctx context.Context, tx *sql.Tx) error {
			return s.create(ctx, tx, deck, words)
		})
	}
	return s.create(ctx, s.db, deck, words)
}

func (s *PostgresDeckStore) create(ctx context.Context, db store.DBTX, deck *domain.Deck, words []*domain.Word) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	_, err := db.ExecContext(ctx, `
		INSERT INTO decks (id, name, description, source_file, user_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, deck.ID, deck.Name, deck.Description, deck.SourceFile, deck.UserID, deck.CreatedAt)
	if err != nil {
		log.Error("failed to create deck",
			slog.String("error", err.Error()),
			slog.String("deck_id", deck.ID.String()))
		return MapError(err)
	}

	stmt, err := db.PrepareContext(ctx, `
		INSERT INTO words (id, deck_id, word, meaning, index_in_deck)
		VALUES ($1, $2, $3, $4, $5)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare word insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, w := range words {
		if _, err := stmt.ExecContext(ctx, w.ID, deck.ID, w.Text, w.Meaning, w.IndexInDeck); err != nil {
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
func (s *PostgresDeckStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Deck, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var deck domain.Deck
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, description, source_file, user_id, created_at
		FROM decks
		WHERE id = $1
	`, id).Scan(&deck.ID, &deck.Name, &deck.Description, &deck.SourceFile, &deck.UserID, &deck.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("deck not found", slog.String("deck_id", id.String()))
			return nil, store.ErrDeckNotFound
		}
		log.Error("failed to get deck",
			slog.String("error", err.Error()),
			slog.String("deck_id", id.String()))
		return nil, MapError(err)
	}
	return &deck, nil
}

// List implements store.DeckStore.List
func (s *PostgresDeckStore) List(ctx context.Context) ([]*domain.DeckSummary, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, `
		SELECT d.id, d.name, d.description, d.source_file, d.user_id, d.created_at,
			COUNT(w.id) AS word_count
		FROM decks d
		LEFT JOIN words w ON w.deck_id = d.id
		GROUP BY d.id
		ORDER BY d.created_at DESC, d.id
	`)
	if err != nil {
		log.Error("failed to list decks", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var decks []*domain.DeckSummary
	for rows.Next() {
		var d domain.DeckSummary
		if err := rows.Scan(&d.ID, &d.Name, &d.Description, &d.SourceFile, &d.UserID, &d.CreatedAt, &d.WordCount); err != nil {
			return nil, MapError(err)
		}
		decks = append(decks, &d)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return decks, nil
}

// Delete implements store.DeckStore.Delete
func (s *PostgresDeckStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM decks WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete deck",
			slog.String("error", err.Error()),
			slog.String("deck_id", id.String()))
		return MapError(err)
	}
	if err := CheckRowsAffected(result, store.ErrDeckNotFound); err != nil {
		return err
	}

	log.Info("deck deleted successfully", slog.String("deck_id", id.String()))
	return nil
}

// GetWord implements store.DeckStore.GetWord
func (s *PostgresDeckStore) GetWord(ctx context.Context, deckID uuid.UUID, indexInDeck int) (*domain.Word, error) {
	var w domain.Word
	err := s.db.QueryRowContext(ctx, `
		SELECT id, deck_id, word, meaning, index_in_deck
		FROM words
		WHERE deck_id = $1 AND index_in_deck = $2
	`, deckID, indexInDeck).Scan(&w.ID, &w.DeckID, &w.Text, &w.Meaning, &w.IndexInDeck)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrWordNotFound
		}
		return nil, MapError(err)
	}
	return &w, nil
}

// ListWords implements store.DeckStore.ListWords
func (s *PostgresDeckStore) ListWords(ctx context.Context, deckID uuid.UUID) ([]*domain.Word, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, deck_id, word, meaning, index_in_deck
		FROM words
		WHERE deck_id = $1
		ORDER BY index_in_deck
	`, deckID)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var words []*domain.Word
	for rows.Next() {
		var w domain.Word
		if err := rows.Scan(&w.ID, &w.DeckID, &w.Text, &w.Meaning, &w.IndexInDeck); err != nil {
			return nil, MapError(err)
		}
		words = append(words, &w)
	}
	return words, MapError(rows.Err())
}

// CountWords implements store.DeckStore.CountWords
func (s *PostgresDeckStore) CountWords(ctx context.Context, deckID uuid.UUID) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM words WHERE deck_id = $1`, deckID).Scan(&n)
	if err != nil {
		return 0, MapError(err)
	}
	return n, nil
}

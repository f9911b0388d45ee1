package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/voca-api/internal/deckfile"
	"github.com/phrazzld/voca-api/internal/domain"
	"github.com/phrazzld/voca-api/internal/platform/logger"
	"github.com/phrazzld/voca-api/internal/store"
)

// UploadInput describes a deck file upload.
// Name falls back to the file name without its extension.
type UploadInput struct {
	Filename    string
	Name        string
	Description string
	Data        io.Reader
	UserID      *uuid.UUID
}

// DeckWithWords is a deck together with its ordered words.
type DeckWithWords struct {
	domain.Deck
	Words []*domain.Word `json:"words"`
}

// DeckService manages decks and their words.
type DeckService interface {
	// Upload parses a CSV or XLSX file and stores it as a new deck.
	Upload(ctx context.Context, in UploadInput) (*domain.DeckSummary, error)

	// List returns every deck with its word count, newest first.
	List(ctx context.Context) ([]*domain.DeckSummary, error)

	// Get returns a deck with its words in deck order.
	Get(ctx context.Context, deckID uuid.UUID) (*DeckWithWords, error)

	// ListWords returns the words of a deck in deck order.
	ListWords(ctx context.Context, deckID uuid.UUID) ([]*domain.Word, error)

	// Delete removes a deck. Decks uploaded by a signed-in user can only
	// be deleted by that user; anonymous decks can be deleted by anyone.
	Delete(ctx context.Context, deckID uuid.UUID, userID *uuid.UUID) error
}

type deckServiceImpl struct {
	decks  store.DeckStore
	logger *slog.Logger
}

var _ DeckService = (*deckServiceImpl)(nil)

// NewDeckService creates a DeckService.
func NewDeckService(decks store.DeckStore, logger *slog.Logger) (DeckService, error) {
	if decks == nil {
		return nil, domain.NewValidationError("decks", "cannot be nil", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &deckServiceImpl{
		decks:  decks,
		logger: logger.With(slog.String("component", "deck_service")),
	}, nil
}

func (s *deckServiceImpl) Upload(ctx context.Context, in UploadInput) (*domain.DeckSummary, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	entries, err := deckfile.Parse(in.Filename, in.Data)
	if err != nil {
		if errors.Is(err, deckfile.ErrUnsupportedFormat) ||
			errors.Is(err, deckfile.ErrInvalidEncoding) ||
			errors.Is(err, deckfile.ErrMalformed) {
			return nil, domain.NewValidationError("file", err.Error(), err)
		}
		return nil, NewServiceError("deck", "upload", err)
	}
	if len(entries) == 0 {
		return nil, domain.NewValidationError("file", "no valid words found", ErrEmptyDeck)
	}

	name := in.Name
	if name == "" {
		name = deckfile.DeckName(in.Filename)
	}
	deck, err := domain.NewDeck(name, in.Description, in.Filename, in.UserID)
	if err != nil {
		return nil, domain.NewValidationError("name", err.Error(), err)
	}

	words := make([]*domain.Word, 0, len(entries))
	for i, entry := range entries {
		word, err := domain.NewWord(deck.ID, entry.Word, entry.Meaning, i)
		if err != nil {
			return nil, domain.NewValidationError("file", fmt.Sprintf("row %d: %v", i+1, err), err)
		}
		words = append(words, word)
	}

	if err := s.decks.Create(ctx, deck, words); err != nil {
		log.Error("failed to store deck",
			slog.String("error", err.Error()),
			slog.String("deck_name", deck.Name))
		return nil, NewServiceError("deck", "upload", err)
	}

	log.Info("deck uploaded",
		slog.String("deck_id", deck.ID.String()),
		slog.String("source_file", in.Filename),
		slog.Int("word_count", len(words)))
	return &domain.DeckSummary{Deck: *deck, WordCount: len(words)}, nil
}

func (s *deckServiceImpl) List(ctx context.Context) ([]*domain.DeckSummary, error) {
	decks, err := s.decks.List(ctx)
	if err != nil {
		return nil, NewServiceError("deck", "list", err)
	}
	return decks, nil
}

func (s *deckServiceImpl) Get(ctx context.Context, deckID uuid.UUID) (*DeckWithWords, error) {
	deck, err := s.decks.GetByID(ctx, deckID)
	if err != nil {
		return nil, s.lookupError("get", err)
	}
	words, err := s.decks.ListWords(ctx, deckID)
	if err != nil {
		return nil, NewServiceError("deck", "get", err)
	}
	return &DeckWithWords{Deck: *deck, Words: words}, nil
}

func (s *deckServiceImpl) ListWords(ctx context.Context, deckID uuid.UUID) ([]*domain.Word, error) {
	if _, err := s.decks.GetByID(ctx, deckID); err != nil {
		return nil, s.lookupError("list_words", err)
	}
	words, err := s.decks.ListWords(ctx, deckID)
	if err != nil {
		return nil, NewServiceError("deck", "list_words", err)
	}
	return words, nil
}

func (s *deckServiceImpl) Delete(ctx context.Context, deckID uuid.UUID, userID *uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	deck, err := s.decks.GetByID(ctx, deckID)
	if err != nil {
		return s.lookupError("delete", err)
	}
	if deck.UserID != nil && (userID == nil || *userID != *deck.UserID) {
		log.Warn("deck delete rejected: not owner", slog.String("deck_id", deckID.String()))
		return ErrNotOwned
	}

	if err := s.decks.Delete(ctx, deckID); err != nil {
		return s.lookupError("delete", err)
	}
	log.Info("deck deleted", slog.String("deck_id", deckID.String()))
	return nil
}

func (s *deckServiceImpl) lookupError(op string, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return store.ErrDeckNotFound
	}
	return NewServiceError("deck", op, err)
}

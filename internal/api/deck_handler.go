package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/phrazzld/voca-api/internal/api/shared"
	"github.com/phrazzld/voca-api/internal/domain"
	"github.com/phrazzld/voca-api/internal/platform/logger"
	"github.com/phrazzld/voca-api/internal/service"
	"github.com/phrazzld/voca-api/internal/service/quiz"
)

// MaxUploadBytes bounds the size of an uploaded deck file.
const MaxUploadBytes = 10 << 20

// DeckHandler handles deck-related HTTP requests
type DeckHandler struct {
	decks  service.DeckService
	engine quiz.SessionEngine
	logger *slog.Logger
}

// NewDeckHandler creates a new DeckHandler
func NewDeckHandler(decks service.DeckService, engine quiz.SessionEngine, logger *slog.Logger) *DeckHandler {
	if decks == nil || engine == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("deck service and session engine cannot be nil for DeckHandler")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &DeckHandler{
		decks:  decks,
		engine: engine,
		logger: logger.With(slog.String("component", "deck_handler")),
	}
}

// ListDecks handles GET /decks
func (h *DeckHandler) ListDecks(w http.ResponseWriter, r *http.Request) {
	decks, err := h.decks.List(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list decks")
		return
	}
	if decks == nil {
		decks = []*domain.DeckSummary{}
	}
	shared.RespondWithJSON(w, r, http.StatusOK, decks)
}

// UploadDeck handles POST /decks/upload with a multipart form carrying
// file, and optionally name and description.
func (h *DeckHandler) UploadDeck(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadBytes)
	if err := r.ParseMultipartForm(MaxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			shared.RespondWithErrorAndLog(w, r, http.StatusRequestEntityTooLarge, "Deck file is too large", err)
			return
		}
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid multipart form", err)
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	file, header, err := r.FormFile("file")
	if err != nil {
		HandleAPIError(w, r, domain.NewValidationError("file", "is required", domain.ErrValidation), "")
		return
	}
	defer func() { _ = file.Close() }()

	deck, err := h.decks.Upload(r.Context(), service.UploadInput{
		Filename:    header.Filename,
		Name:        r.FormValue("name"),
		Description: r.FormValue("description"),
		Data:        file,
		UserID:      optionalUserID(r),
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to upload deck")
		return
	}

	log.Debug("deck uploaded via api",
		slog.String("deck_id", deck.ID.String()),
		slog.Int("word_count", deck.WordCount))
	shared.RespondWithJSON(w, r, http.StatusCreated, deck)
}

// GetDeck handles GET /decks/{id}
func (h *DeckHandler) GetDeck(w http.ResponseWriter, r *http.Request) {
	deckID, ok := handlePathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	deck, err := h.decks.Get(r.Context(), deckID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get deck")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, deck)
}

// DeleteDeck handles DELETE /decks/{id}
func (h *DeckHandler) DeleteDeck(w http.ResponseWriter, r *http.Request) {
	deckID, ok := handlePathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	if err := h.decks.Delete(r.Context(), deckID, optionalUserID(r)); err != nil {
		HandleAPIError(w, r, err, "Failed to delete deck")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListWords handles GET /decks/{id}/words
func (h *DeckHandler) ListWords(w http.ResponseWriter, r *http.Request) {
	deckID, ok := handlePathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	words, err := h.decks.ListWords(r.Context(), deckID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list words")
		return
	}
	if words == nil {
		words = []*domain.Word{}
	}
	shared.RespondWithJSON(w, r, http.StatusOK, words)
}

// WrongWords handles GET /decks/{id}/wrong?min=N. Signed-in users see their
// own counters; anonymous requests see counters summed over all users.
func (h *DeckHandler) WrongWords(w http.ResponseWriter, r *http.Request) {
	deckID, ok := handlePathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}
	minCount, err := queryInt(r, "min", 1)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	userID := uuid.Nil
	if id, ok := getUserIDFromContext(r); ok {
		userID = id
	}

	words, err := h.engine.GetWrongWords(r.Context(), deckID, userID, minCount)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get wrong words")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, WrongWordsResponse{WrongWords: nonNil(words)})
}

func nonNil(words []string) []string {
	if words == nil {
		return []string{}
	}
	return words
}

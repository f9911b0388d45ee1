package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/voca-api/internal/api/shared"
	"github.com/phrazzld/voca-api/internal/platform/logger"
	"github.com/phrazzld/voca-api/internal/service/quiz"
)

// SessionHandler exposes the quiz session engine over HTTP.
type SessionHandler struct {
	engine quiz.SessionEngine
	logger *slog.Logger
}

// NewSessionHandler creates a new SessionHandler
func NewSessionHandler(engine quiz.SessionEngine, logger *slog.Logger) *SessionHandler {
	if engine == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("engine cannot be nil for SessionHandler")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionHandler{
		engine: engine,
		logger: logger.With(slog.String("component", "session_handler")),
	}
}

// StartSession handles POST /session/start. The session belongs to the
// signed-in user when the request carries a valid token.
func (h *SessionHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	var req StartSessionRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	session, err := h.engine.StartSession(r.Context(), quiz.StartRequest{
		DeckID:      req.DeckID,
		WordIndices: req.WordIndices,
		IsWrongOnly: req.IsWrongOnly,
		UserID:      optionalUserID(r),
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to start session")
		return
	}

	logger.FromContextOrDefault(r.Context(), h.logger).Debug("session started",
		slog.String("session_id", session.ID.String()),
		slog.Int("total_questions", session.TotalQuestions))
	shared.RespondWithJSON(w, r, http.StatusCreated, session)
}

// GetPrompt handles GET /session/{id}/prompt
func (h *SessionHandler) GetPrompt(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := handlePathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	prompt, err := h.engine.GetPrompt(r.Context(), sessionID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get prompt")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, prompt)
}

// SubmitAnswer handles POST /session/{id}/submit
func (h *SessionHandler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := handlePathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	var req SubmitAnswerRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	result, err := h.engine.SubmitAnswer(r.Context(), sessionID, quiz.SubmitRequest{
		Answer:    req.Answer,
		HintsUsed: req.HintUsed,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to submit answer")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, result)
}

// GetSummary handles GET /session/{id}/summary
func (h *SessionHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := handlePathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	summary, err := h.engine.GetSummary(r.Context(), sessionID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get summary")
		return
	}
	if summary.WrongWords == nil {
		summary.WrongWords = []string{}
	}
	shared.RespondWithJSON(w, r, http.StatusOK, summary)
}

// GetWrongWords handles GET /session/{id}/wrong
func (h *SessionHandler) GetWrongWords(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := handlePathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}
	minCount, err := queryInt(r, "min", 1)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	words, err := h.engine.GetSessionWrongWords(r.Context(), sessionID, minCount)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get wrong words")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, WrongWordsResponse{WrongWords: nonNil(words)})
}

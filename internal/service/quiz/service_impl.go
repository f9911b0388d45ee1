package quiz

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/voca-api/internal/config"
	"github.com/phrazzld/voca-api/internal/domain"
	"github.com/phrazzld/voca-api/internal/domain/matching"
	"github.com/phrazzld/voca-api/internal/platform/logger"
	"github.com/phrazzld/voca-api/internal/service/wrongstats"
	"github.com/phrazzld/voca-api/internal/store"
)

// unknownDeckName is reported by GetSummary when the deck has gone away.
const unknownDeckName = "Unknown"

// Verify interface compliance at compile time
var _ SessionEngine = (*sessionEngine)(nil)

type sessionEngine struct {
	db            *sql.DB
	decks         store.DeckStore
	sessions      store.SessionStore
	answers       store.AnswerStore
	tracker       wrongstats.Tracker
	matcher       matching.Matcher
	hintThreshold int
	now           func() time.Time
	logger        *slog.Logger
}

// NewSessionEngine creates a SessionEngine. Every submit runs in a
// transaction on db, so the stores must be bound to the same database.
func NewSessionEngine(
	db *sql.DB,
	decks store.DeckStore,
	sessions store.SessionStore,
	answers store.AnswerStore,
	tracker wrongstats.Tracker,
	matcher matching.Matcher,
	cfg config.QuizConfig,
	logger *slog.Logger,
) (SessionEngine, error) {
	switch {
	case db == nil:
		return nil, domain.NewValidationError("db", "cannot be nil", domain.ErrValidation)
	case decks == nil:
		return nil, domain.NewValidationError("decks", "cannot be nil", domain.ErrValidation)
	case sessions == nil:
		return nil, domain.NewValidationError("sessions", "cannot be nil", domain.ErrValidation)
	case answers == nil:
		return nil, domain.NewValidationError("answers", "cannot be nil", domain.ErrValidation)
	case tracker == nil:
		return nil, domain.NewValidationError("tracker", "cannot be nil", domain.ErrValidation)
	case matcher == nil:
		return nil, domain.NewValidationError("matcher", "cannot be nil", domain.ErrValidation)
	case cfg.HintForfeitThreshold < 1:
		return nil, domain.NewValidationError("hint_forfeit_threshold", "must be at least 1", domain.ErrValidation)
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &sessionEngine{
		db:            db,
		decks:         decks,
		sessions:      sessions,
		answers:       answers,
		tracker:       tracker,
		matcher:       matcher,
		hintThreshold: cfg.HintForfeitThreshold,
		now:           time.Now,
		logger:        logger.With(slog.String("component", "session_engine")),
	}, nil
}

func (s *sessionEngine) StartSession(ctx context.Context, req StartRequest) (*domain.QuizSession, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if _, err := s.decks.GetByID(ctx, req.DeckID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrDeckNotFound
		}
		return nil, newServiceError("start_session", "failed to load deck", err)
	}

	count, err := s.decks.CountWords(ctx, req.DeckID)
	if err != nil {
		return nil, newServiceError("start_session", "failed to count words", err)
	}

	indices, err := selectIndices(req.WordIndices, count)
	if err != nil {
		return nil, err
	}

	session, err := domain.NewQuizSession(req.DeckID, req.UserID, indices, req.IsWrongOnly)
	if err != nil {
		return nil, err
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, newServiceError("start_session", "failed to create session", err)
	}

	log.Info("quiz session started",
		slog.String("session_id", session.ID.String()),
		slog.String("deck_id", req.DeckID.String()),
		slog.Int("total_questions", session.TotalQuestions),
		slog.Bool("wrong_only", req.IsWrongOnly))
	return session, nil
}

// selectIndices returns the question order for a deck of count words.
// An empty selection covers the whole deck.
func selectIndices(requested []int, count int) ([]int, error) {
	if len(requested) == 0 {
		indices := make([]int, count)
		for i := range indices {
			indices[i] = i
		}
		return indices, nil
	}

	for _, idx := range requested {
		if idx < 0 || idx >= count {
			return nil, domain.NewValidationError("word_indices",
				fmt.Sprintf("index %d is outside the deck (0..%d)", idx, count-1), ErrInvalidWordIndices)
		}
	}
	return requested, nil
}

func (s *sessionEngine) GetPrompt(ctx context.Context, sessionID uuid.UUID) (*Prompt, error) {
	session, err := s.loadSession(ctx, s.sessions, sessionID)
	if err != nil {
		return nil, err
	}
	wordIndex, err := activeWordIndex(session)
	if err != nil {
		return nil, err
	}
	word, err := s.loadWord(ctx, s.decks, session.DeckID, wordIndex)
	if err != nil {
		return nil, err
	}

	return &Prompt{
		Word:     word.Text,
		Index:    session.CurrentIndex,
		Progress: fmt.Sprintf("%d/%d", session.CurrentIndex+1, session.TotalQuestions),
		Total:    session.TotalQuestions,
		Current:  session.CurrentIndex + 1,
	}, nil
}

func (s *sessionEngine) SubmitAnswer(
	ctx context.Context,
	sessionID uuid.UUID,
	req SubmitRequest,
) (*SubmitResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if req.HintsUsed < 0 {
		return nil, domain.NewValidationError("hint_used", "cannot be negative", domain.ErrValidation)
	}

	var result *SubmitResult
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		sessions := s.sessions.WithTx(tx)

		session, err := s.loadSession(ctx, sessions, sessionID)
		if err != nil {
			return err
		}
		wordIndex, err := activeWordIndex(session)
		if err != nil {
			return err
		}
		word, err := s.loadWord(ctx, s.decks.WithTx(tx), session.DeckID, wordIndex)
		if err != nil {
			return err
		}

		correct := s.matcher.IsCorrect(req.Answer, word.Meaning)
		if req.HintsUsed >= s.hintThreshold {
			correct = false
		}

		position := session.CurrentIndex
		answer := domain.NewAnswer(session.ID, word.ID, position, req.Answer, correct, req.HintsUsed)
		if err := s.answers.WithTx(tx).Create(ctx, answer); err != nil {
			if errors.Is(err, store.ErrConcurrentUpdate) {
				return ErrConcurrentSubmit
			}
			return fmt.Errorf("failed to record answer: %w", err)
		}

		if !correct {
			if _, err := s.tracker.WithTx(tx).RecordWrong(ctx, word.Text, session.DeckID, ownerOrNil(session.UserID)); err != nil {
				return err
			}
		}

		if err := session.Advance(correct, s.now()); err != nil {
			return fmt.Errorf("%w: %v", ErrSessionCompleted, err)
		}
		if err := sessions.UpdateProgress(ctx, session, position); err != nil {
			if errors.Is(err, store.ErrConcurrentUpdate) {
				return ErrConcurrentSubmit
			}
			return fmt.Errorf("failed to update session: %w", err)
		}

		result = &SubmitResult{
			IsCorrect:     correct,
			CorrectAnswer: word.Meaning,
			Score:         session.Score,
			Progress:      session.Progress(),
			IsCompleted:   session.IsCompleted,
		}
		return nil
	})
	if err != nil {
		if isExpected(err) {
			log.Debug("answer rejected",
				slog.String("session_id", sessionID.String()),
				slog.String("reason", err.Error()))
			return nil, err
		}
		log.Error("failed to submit answer",
			slog.String("error", err.Error()),
			slog.String("session_id", sessionID.String()))
		return nil, newServiceError("submit_answer", "failed to submit answer", err)
	}

	log.Debug("answer submitted",
		slog.String("session_id", sessionID.String()),
		slog.Bool("correct", result.IsCorrect),
		slog.String("progress", result.Progress),
		slog.Bool("completed", result.IsCompleted))
	return result, nil
}

func (s *sessionEngine) GetSummary(ctx context.Context, sessionID uuid.UUID) (*Summary, error) {
	session, err := s.loadSession(ctx, s.sessions, sessionID)
	if err != nil {
		return nil, err
	}

	deckName := unknownDeckName
	deck, err := s.decks.GetByID(ctx, session.DeckID)
	switch {
	case err == nil:
		deckName = deck.Name
	case !errors.Is(err, store.ErrNotFound):
		return nil, newServiceError("get_summary", "failed to load deck", err)
	}

	answers, err := s.answers.ListBySession(ctx, session.ID)
	if err != nil {
		return nil, newServiceError("get_summary", "failed to list answers", err)
	}
	wrong, err := s.answers.ListIncorrectWords(ctx, session.ID)
	if err != nil {
		return nil, newServiceError("get_summary", "failed to list incorrect words", err)
	}

	return &Summary{
		SessionID:   session.ID,
		DeckName:    deckName,
		Score:       session.Score,
		Total:       session.TotalQuestions,
		Answered:    len(answers),
		Percentage:  percentage(session.Score, session.TotalQuestions),
		WrongWords:  distinct(wrong),
		IsCompleted: session.IsCompleted,
		CreatedAt:   session.CreatedAt,
		CompletedAt: session.CompletedAt,
	}, nil
}

func (s *sessionEngine) GetWrongWords(
	ctx context.Context,
	deckID, userID uuid.UUID,
	minWrongCount int,
) ([]string, error) {
	if _, err := s.decks.GetByID(ctx, deckID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrDeckNotFound
		}
		return nil, newServiceError("get_wrong_words", "failed to load deck", err)
	}
	return s.tracker.GetWrongWords(ctx, deckID, userID, minWrongCount)
}

func (s *sessionEngine) GetSessionWrongWords(
	ctx context.Context,
	sessionID uuid.UUID,
	minWrongCount int,
) ([]string, error) {
	session, err := s.loadSession(ctx, s.sessions, sessionID)
	if err != nil {
		return nil, err
	}
	return s.tracker.GetWrongWords(ctx, session.DeckID, ownerOrNil(session.UserID), minWrongCount)
}

func (s *sessionEngine) loadSession(
	ctx context.Context,
	sessions store.SessionStore,
	id uuid.UUID,
) (*domain.QuizSession, error) {
	session, err := sessions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	return session, nil
}

func (s *sessionEngine) loadWord(
	ctx context.Context,
	decks store.DeckStore,
	deckID uuid.UUID,
	index int,
) (*domain.Word, error) {
	word, err := decks.GetWord(ctx, deckID, index)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrWordNotFound
		}
		return nil, fmt.Errorf("failed to load word: %w", err)
	}
	return word, nil
}

// activeWordIndex returns the deck index under the cursor of an active session.
func activeWordIndex(session *domain.QuizSession) (int, error) {
	if session.IsCompleted {
		return 0, ErrSessionCompleted
	}
	idx, ok := session.CurrentWordIndex()
	if !ok {
		return 0, ErrCursorOutOfRange
	}
	return idx, nil
}

func isExpected(err error) bool {
	return errors.Is(err, store.ErrNotFound) ||
		errors.Is(err, ErrInvalidState) ||
		errors.Is(err, domain.ErrValidation)
}

func ownerOrNil(id *uuid.UUID) uuid.UUID {
	if id == nil {
		return uuid.Nil
	}
	return *id
}

// percentage returns score/total as a percentage rounded to two decimals.
func percentage(score, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(score)/float64(total)*100*100) / 100
}

// distinct drops repeated words, keeping the first occurrence.
func distinct(words []string) []string {
	seen := make(map[string]struct{}, len(words))
	out := make([]string, 0, len(words))
	for _, w := range words {
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
	}
	return out
}

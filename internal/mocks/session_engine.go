package mocks

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/voca-api/internal/domain"
	"github.com/phrazzld/voca-api/internal/service/quiz"
)

// MockSessionEngine implements quiz.SessionEngine for testing
type MockSessionEngine struct {
	StartSessionFn         func(ctx context.Context, req quiz.StartRequest) (*domain.QuizSession, error)
	GetPromptFn            func(ctx context.Context, sessionID uuid.UUID) (*quiz.Prompt, error)
	SubmitAnswerFn         func(ctx context.Context, sessionID uuid.UUID, req quiz.SubmitRequest) (*quiz.SubmitResult, error)
	GetSummaryFn           func(ctx context.Context, sessionID uuid.UUID) (*quiz.Summary, error)
	GetWrongWordsFn        func(ctx context.Context, deckID, userID uuid.UUID, minWrongCount int) ([]string, error)
	GetSessionWrongWordsFn func(ctx context.Context, sessionID uuid.UUID, minWrongCount int) ([]string, error)

	mu            sync.Mutex
	startRequests []quiz.StartRequest
	submits       []quiz.SubmitRequest
}

var _ quiz.SessionEngine = (*MockSessionEngine)(nil)

// StartSession implements quiz.SessionEngine
func (m *MockSessionEngine) StartSession(ctx context.Context, req quiz.StartRequest) (*domain.QuizSession, error) {
	m.mu.Lock()
	m.startRequests = append(m.startRequests, req)
	m.mu.Unlock()
	if m.StartSessionFn != nil {
		return m.StartSessionFn(ctx, req)
	}
	return &domain.QuizSession{ID: uuid.New(), DeckID: req.DeckID, UserID: req.UserID}, nil
}

// GetPrompt implements quiz.SessionEngine
func (m *MockSessionEngine) GetPrompt(ctx context.Context, sessionID uuid.UUID) (*quiz.Prompt, error) {
	if m.GetPromptFn != nil {
		return m.GetPromptFn(ctx, sessionID)
	}
	return &quiz.Prompt{}, nil
}

// SubmitAnswer implements quiz.SessionEngine
func (m *MockSessionEngine) SubmitAnswer(
	ctx context.Context,
	sessionID uuid.UUID,
	req quiz.SubmitRequest,
) (*quiz.SubmitResult, error) {
	m.mu.Lock()
	m.submits = append(m.submits, req)
	m.mu.Unlock()
	if m.SubmitAnswerFn != nil {
		return m.SubmitAnswerFn(ctx, sessionID, req)
	}
	return &quiz.SubmitResult{}, nil
}

// GetSummary implements quiz.SessionEngine
func (m *MockSessionEngine) GetSummary(ctx context.Context, sessionID uuid.UUID) (*quiz.Summary, error) {
	if m.GetSummaryFn != nil {
		return m.GetSummaryFn(ctx, sessionID)
	}
	return &quiz.Summary{SessionID: sessionID}, nil
}

// GetWrongWords implements quiz.SessionEngine
func (m *MockSessionEngine) GetWrongWords(
	ctx context.Context,
	deckID, userID uuid.UUID,
	minWrongCount int,
) ([]string, error) {
	if m.GetWrongWordsFn != nil {
		return m.GetWrongWordsFn(ctx, deckID, userID, minWrongCount)
	}
	return nil, nil
}

// GetSessionWrongWords implements quiz.SessionEngine
func (m *MockSessionEngine) GetSessionWrongWords(
	ctx context.Context,
	sessionID uuid.UUID,
	minWrongCount int,
) ([]string, error) {
	if m.GetSessionWrongWordsFn != nil {
		return m.GetSessionWrongWordsFn(ctx, sessionID, minWrongCount)
	}
	return nil, nil
}

// StartRequests returns the requests passed to StartSession.
func (m *MockSessionEngine) StartRequests() []quiz.StartRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]quiz.StartRequest(nil), m.startRequests...)
}

// Submits returns the requests passed to SubmitAnswer.
func (m *MockSessionEngine) Submits() []quiz.SubmitRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]quiz.SubmitRequest(nil), m.submits...)
}

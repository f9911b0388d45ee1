package quiz_test

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/voca-api/internal/config"
	"github.com/phrazzld/voca-api/internal/domain"
	"github.com/phrazzld/voca-api/internal/domain/matching"
	"github.com/phrazzld/voca-api/internal/platform/sqlite"
	"github.com/phrazzld/voca-api/internal/service/quiz"
	"github.com/phrazzld/voca-api/internal/service/wrongstats"
	"github.com/phrazzld/voca-api/internal/testdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	db      *sql.DB
	engine  quiz.SessionEngine
	tracker wrongstats.Tracker
	decks   *sqlite.SQLiteDeckStore
	users   *sqlite.SQLiteUserStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	db := testdb.OpenSQLite(t)

	decks := sqlite.NewSQLiteDeckStore(db, log)
	tracker := wrongstats.NewTracker(sqlite.NewSQLiteWrongStatStore(db, log), log)
	engine, err := quiz.NewSessionEngine(
		db,
		decks,
		sqlite.NewSQLiteSessionStore(db, log),
		sqlite.NewSQLiteAnswerStore(db, log),
		tracker,
		matching.NewDefaultMatcher(),
		config.QuizConfig{HintForfeitThreshold: 2},
		log,
	)
	require.NoError(t, err)
	return &fixture{db: db, engine: engine, tracker: tracker, decks: decks, users: sqlite.NewSQLiteUserStore(db, log)}
}

func (f *fixture) createUser(t *testing.T, username string) uuid.UUID {
	t.Helper()
	user, err := domain.NewUser(username, "", "password123")
	require.NoError(t, err)
	user.HashedPassword = "not-a-real-hash"
	require.NoError(t, f.users.Create(context.Background(), user))
	return user.ID
}

func (f *fixture) createDeck(t *testing.T, name string, pairs ...[2]string) uuid.UUID {
	t.Helper()
	deck, err := domain.NewDeck(name, "", "", nil)
	require.NoError(t, err)
	words := make([]*domain.Word, 0, len(pairs))
	for i, p := range pairs {
		w, err := domain.NewWord(deck.ID, p[0], p[1], i)
		require.NoError(t, err)
		words = append(words, w)
	}
	require.NoError(t, f.decks.Create(context.Background(), deck, words))
	return deck.ID
}

var sampleWords = [][2]string{
	{"escape", "탈출하다"},
	{"abandon", "버리다"},
	{"achieve", "성취하다"},
}

func TestEndToEndSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	deckID := f.createDeck(t, "TOEIC", sampleWords...)

	session, err := f.engine.StartSession(ctx, quiz.StartRequest{DeckID: deckID})
	require.NoError(t, err)
	assert.Equal(t, 3, session.TotalQuestions)
	assert.Equal(t, []int{0, 1, 2}, session.WordIndices)
	assert.False(t, session.IsCompleted)

	prompt, err := f.engine.GetPrompt(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, &quiz.Prompt{Word: "escape", Index: 0, Progress: "1/3", Total: 3, Current: 1}, prompt)

	res, err := f.engine.SubmitAnswer(ctx, session.ID, quiz.SubmitRequest{Answer: "탈출하다"})
	require.NoError(t, err)
	assert.True(t, res.IsCorrect)
	assert.Equal(t, 1, res.Score)
	assert.Equal(t, "1/3", res.Progress)
	assert.Equal(t, "탈출하다", res.CorrectAnswer)

	res, err = f.engine.SubmitAnswer(ctx, session.ID, quiz.SubmitRequest{Answer: "wrong"})
	require.NoError(t, err)
	assert.False(t, res.IsCorrect)
	assert.Equal(t, 1, res.Score)
	assert.Equal(t, "2/3", res.Progress)

	wrong, err := f.engine.GetWrongWords(ctx, deckID, uuid.Nil, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"abandon"}, wrong)

	res, err = f.engine.SubmitAnswer(ctx, session.ID, quiz.SubmitRequest{Answer: "성취하다"})
	require.NoError(t, err)
	assert.True(t, res.IsCorrect)
	assert.Equal(t, 2, res.Score)
	assert.True(t, res.IsCompleted)
	assert.Equal(t, "3/3", res.Progress)

	summary, err := f.engine.GetSummary(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, "TOEIC", summary.DeckName)
	assert.Equal(t, 2, summary.Score)
	assert.Equal(t, 3, summary.Total)
	assert.Equal(t, 3, summary.Answered)
	assert.InDelta(t, 66.67, summary.Percentage, 1e-9)
	assert.Equal(t, []string{"abandon"}, summary.WrongWords)
	assert.True(t, summary.IsCompleted)
	require.NotNil(t, summary.CompletedAt)

	_, err = f.engine.GetPrompt(ctx, session.ID)
	assert.ErrorIs(t, err, quiz.ErrSessionCompleted)
	assert.ErrorIs(t, err, quiz.ErrInvalidState)

	_, err = f.engine.SubmitAnswer(ctx, session.ID, quiz.SubmitRequest{Answer: "x"})
	assert.ErrorIs(t, err, quiz.ErrInvalidState)
}

func TestStartSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	deckID := f.createDeck(t, "deck", sampleWords...)

	tests := []struct {
		name        string
		indices     []int
		wantTotal   int
		wantIndices []int
		wantErr     error
	}{
		{"explicit subset", []int{0, 2}, 2, []int{0, 2}, nil},
		{"explicit order is kept", []int{2, 0, 1}, 3, []int{2, 0, 1}, nil},
		{"omitted means all", nil, 3, []int{0, 1, 2}, nil},
		{"empty means all", []int{}, 3, []int{0, 1, 2}, nil},
		{"index past end", []int{0, 3}, 0, nil, quiz.ErrInvalidWordIndices},
		{"negative index", []int{-1}, 0, nil, quiz.ErrInvalidWordIndices},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session, err := f.engine.StartSession(ctx, quiz.StartRequest{DeckID: deckID, WordIndices: tt.indices})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.ErrorIs(t, err, domain.ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantTotal, session.TotalQuestions)
			assert.Zero(t, session.CurrentIndex)
			assert.Zero(t, session.Score)
			assert.Equal(t, tt.wantIndices, session.WordIndices)
		})
	}

	t.Run("missing deck", func(t *testing.T) {
		_, err := f.engine.StartSession(ctx, quiz.StartRequest{DeckID: uuid.New()})
		assert.ErrorIs(t, err, quiz.ErrDeckNotFound)
	})
}

func TestPromptFollowsWordIndices(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	deckID := f.createDeck(t, "deck", sampleWords...)

	session, err := f.engine.StartSession(ctx, quiz.StartRequest{DeckID: deckID, WordIndices: []int{2, 0}})
	require.NoError(t, err)

	prompt, err := f.engine.GetPrompt(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, "achieve", prompt.Word)
	assert.Equal(t, "1/2", prompt.Progress)

	_, err = f.engine.SubmitAnswer(ctx, session.ID, quiz.SubmitRequest{Answer: "성취하다"})
	require.NoError(t, err)

	prompt, err = f.engine.GetPrompt(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, "escape", prompt.Word)
	assert.Equal(t, 1, prompt.Index)
	assert.Equal(t, "2/2", prompt.Progress)
}

func TestHintsForfeitCredit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	deckID := f.createDeck(t, "deck", sampleWords...)

	session, err := f.engine.StartSession(ctx, quiz.StartRequest{DeckID: deckID})
	require.NoError(t, err)

	res, err := f.engine.SubmitAnswer(ctx, session.ID, quiz.SubmitRequest{Answer: "탈출하다", HintsUsed: 1})
	require.NoError(t, err)
	assert.True(t, res.IsCorrect, "one hint keeps credit")

	res, err = f.engine.SubmitAnswer(ctx, session.ID, quiz.SubmitRequest{Answer: "버리다", HintsUsed: 2})
	require.NoError(t, err)
	assert.False(t, res.IsCorrect)
	assert.Equal(t, 1, res.Score)
	assert.Equal(t, "2/3", res.Progress)

	wrong, err := f.tracker.GetWrongWords(ctx, deckID, uuid.Nil, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"abandon"}, wrong)

	_, err = f.engine.SubmitAnswer(ctx, session.ID, quiz.SubmitRequest{Answer: "x", HintsUsed: -1})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestAnswerMatchingVariants(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	deckID := f.createDeck(t, "deck",
		[2]string{"flee", "escape, FLEE "},
		[2]string{"run", "달리다"},
	)

	session, err := f.engine.StartSession(ctx, quiz.StartRequest{DeckID: deckID})
	require.NoError(t, err)

	res, err := f.engine.SubmitAnswer(ctx, session.ID, quiz.SubmitRequest{Answer: "  Flee"})
	require.NoError(t, err)
	assert.True(t, res.IsCorrect)
	assert.Equal(t, "escape, FLEE", res.CorrectAnswer, "meaning is returned as stored")

	res, err = f.engine.SubmitAnswer(ctx, session.ID, quiz.SubmitRequest{Answer: "달리"})
	require.NoError(t, err)
	assert.False(t, res.IsCorrect, "partial answers are wrong")
}

func TestSummaryBeforeCompletion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	deckID := f.createDeck(t, "deck", sampleWords...)

	session, err := f.engine.StartSession(ctx, quiz.StartRequest{DeckID: deckID, WordIndices: []int{1, 1, 0, 1}})
	require.NoError(t, err)

	for _, answer := range []string{"x", "y", "탈출하다"} {
		_, err := f.engine.SubmitAnswer(ctx, session.ID, quiz.SubmitRequest{Answer: answer})
		require.NoError(t, err)
	}

	summary, err := f.engine.GetSummary(ctx, session.ID)
	require.NoError(t, err)
	assert.False(t, summary.IsCompleted)
	assert.Nil(t, summary.CompletedAt)
	assert.Equal(t, 3, summary.Answered)
	assert.Equal(t, 1, summary.Score)
	assert.InDelta(t, 25.0, summary.Percentage, 1e-9)
	assert.Equal(t, []string{"abandon"}, summary.WrongWords, "wrong words are distinct")

	wrong, err := f.engine.GetSessionWrongWords(ctx, session.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"abandon"}, wrong)
}

func TestSummaryForEmptySession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	deckID := f.createDeck(t, "deck", sampleWords...)

	session, err := f.engine.StartSession(ctx, quiz.StartRequest{DeckID: deckID})
	require.NoError(t, err)

	summary, err := f.engine.GetSummary(ctx, session.ID)
	require.NoError(t, err)
	assert.Zero(t, summary.Answered)
	assert.Zero(t, summary.Percentage)
	assert.Empty(t, summary.WrongWords)
	assert.NotNil(t, summary.WrongWords)
}

func TestUnknownSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := uuid.New()

	_, err := f.engine.GetPrompt(ctx, id)
	assert.ErrorIs(t, err, quiz.ErrSessionNotFound)

	_, err = f.engine.SubmitAnswer(ctx, id, quiz.SubmitRequest{Answer: "x"})
	assert.ErrorIs(t, err, quiz.ErrSessionNotFound)

	_, err = f.engine.GetSummary(ctx, id)
	assert.ErrorIs(t, err, quiz.ErrSessionNotFound)

	_, err = f.engine.GetSessionWrongWords(ctx, id, 1)
	assert.ErrorIs(t, err, quiz.ErrSessionNotFound)
}

func TestWrongWordsScopedToUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	deckID := f.createDeck(t, "deck", sampleWords...)
	userID := f.createUser(t, "learner")

	mine, err := f.engine.StartSession(ctx, quiz.StartRequest{DeckID: deckID, WordIndices: []int{0}, UserID: &userID})
	require.NoError(t, err)
	_, err = f.engine.SubmitAnswer(ctx, mine.ID, quiz.SubmitRequest{Answer: "nope"})
	require.NoError(t, err)

	anon, err := f.engine.StartSession(ctx, quiz.StartRequest{DeckID: deckID, WordIndices: []int{1}})
	require.NoError(t, err)
	_, err = f.engine.SubmitAnswer(ctx, anon.ID, quiz.SubmitRequest{Answer: "nope"})
	require.NoError(t, err)

	words, err := f.engine.GetSessionWrongWords(ctx, mine.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"escape"}, words)

	words, err = f.engine.GetWrongWords(ctx, deckID, uuid.Nil, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"abandon", "escape"}, words)

	_, err = f.engine.GetWrongWords(ctx, uuid.New(), uuid.Nil, 1)
	assert.ErrorIs(t, err, quiz.ErrDeckNotFound)
}

func TestDeletedDeckWordIsReported(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	deckID := f.createDeck(t, "deck", sampleWords...)

	session, err := f.engine.StartSession(ctx, quiz.StartRequest{DeckID: deckID})
	require.NoError(t, err)

	_, err = f.db.ExecContext(ctx, `DELETE FROM words WHERE deck_id = ? AND index_in_deck = 0`, deckID)
	require.NoError(t, err)

	_, err = f.engine.GetPrompt(ctx, session.ID)
	assert.ErrorIs(t, err, quiz.ErrWordNotFound)
}

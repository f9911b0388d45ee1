package task

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/phrazzld/voca-api/internal/service/content"
)

func setupTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// funcTask runs fn when executed.
type funcTask struct {
	id uuid.UUID
	fn func(ctx context.Context) error
}

func newFuncTask(fn func(ctx context.Context) error) *funcTask {
	return &funcTask{id: uuid.New(), fn: fn}
}

func (t *funcTask) ID() uuid.UUID                     { return t.id }
func (t *funcTask) Type() string                      { return "test" }
func (t *funcTask) Execute(ctx context.Context) error { return t.fn(ctx) }

// fakePublisher records published words.
type fakePublisher struct {
	mu    sync.Mutex
	words []string
	err   error
}

func (p *fakePublisher) Publish(ctx context.Context, word string) (*content.PublishResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return nil, p.err
	}
	p.words = append(p.words, word)
	return &content.PublishResult{Word: word, URL: "https://github.com/o/r/blob/main/images/" + word + ".png"}, nil
}

func (p *fakePublisher) published() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.words...)
}

// fakeSweeper counts sweeps.
type fakeSweeper struct {
	calls atomic.Int32
	limit atomic.Int32
}

func (s *fakeSweeper) SweepUnpublished(ctx context.Context, limit int) (int, error) {
	s.calls.Add(1)
	s.limit.Store(int32(limit))
	return 0, nil
}

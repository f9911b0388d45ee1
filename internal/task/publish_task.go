package task

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/voca-api/internal/service/content"
)

// ImagePublisher commits the cached image for a word.
type ImagePublisher interface {
	Publish(ctx context.Context, word string) (*content.PublishResult, error)
}

// PublishImageTask publishes one cached image.
type PublishImageTask struct {
	id        uuid.UUID
	word      string
	publisher ImagePublisher
	logger    *slog.Logger
}

var _ Task = (*PublishImageTask)(nil)

// NewPublishImageTask creates a task that publishes the image cached for word.
func NewPublishImageTask(word string, publisher ImagePublisher, logger *slog.Logger) (*PublishImageTask, error) {
	if word == "" {
		return nil, fmt.Errorf("word cannot be empty")
	}
	if publisher == nil {
		return nil, fmt.Errorf("publisher cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	id := uuid.New()
	return &PublishImageTask{
		id:        id,
		word:      word,
		publisher: publisher,
		logger: logger.With(
			slog.String("task_id", id.String()),
			slog.String("word", word)),
	}, nil
}

// ID returns the task's unique identifier
func (t *PublishImageTask) ID() uuid.UUID {
	return t.id
}

// Type returns TaskTypePublishImage
func (t *PublishImageTask) Type() string {
	return TaskTypePublishImage
}

// Word returns the word whose image is published.
func (t *PublishImageTask) Word() string {
	return t.word
}

// Execute publishes the image.
func (t *PublishImageTask) Execute(ctx context.Context) error {
	result, err := t.publisher.Publish(ctx, t.word)
	if err != nil {
		return fmt.Errorf("failed to publish image for %q: %w", t.word, err)
	}
	t.logger.Debug("publish task finished",
		slog.String("url", result.URL),
		slog.Bool("attached", result.Attached))
	return nil
}

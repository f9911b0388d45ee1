package task

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phrazzld/voca-api/internal/events"
)

// PublishEventHandler turns image.generated events into publish tasks.
type PublishEventHandler struct {
	publisher ImagePublisher
	submitter Submitter
	logger    *slog.Logger
}

var _ events.EventHandler = (*PublishEventHandler)(nil)

// NewPublishEventHandler creates a handler that queues a PublishImageTask on
// submitter for every generated image.
func NewPublishEventHandler(publisher ImagePublisher, submitter Submitter, logger *slog.Logger) *PublishEventHandler {
	if publisher == nil {
		panic("publisher cannot be nil")
	}
	if submitter == nil {
		panic("submitter cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PublishEventHandler{
		publisher: publisher,
		submitter: submitter,
		logger:    logger.With(slog.String("component", "publish_event_handler")),
	}
}

// HandleEvent queues a publish task. Events of other types are ignored.
func (h *PublishEventHandler) HandleEvent(ctx context.Context, event *events.Event) error {
	if event.Type != events.TypeImageGenerated {
		return nil
	}

	var payload events.ImageGeneratedPayload
	if err := event.UnmarshalPayload(&payload); err != nil {
		return fmt.Errorf("failed to decode %s payload: %w", event.Type, err)
	}

	t, err := NewPublishImageTask(payload.Word, h.publisher, h.logger)
	if err != nil {
		return fmt.Errorf("failed to create publish task: %w", err)
	}
	if err := h.submitter.Submit(ctx, t); err != nil {
		return err
	}

	h.logger.Debug("publish task queued",
		slog.String("event_id", event.ID.String()),
		slog.String("task_id", t.ID().String()),
		slog.String("word", payload.Word))
	return nil
}

package task

import (
	"context"
	"errors"
	"testing"

	"github.com/phrazzld/voca-api/internal/config"
	"github.com/phrazzld/voca-api/internal/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPublishImageTask(t *testing.T) {
	_, err := NewPublishImageTask("", &fakePublisher{}, nil)
	assert.Error(t, err)

	_, err = NewPublishImageTask("apple", nil, nil)
	assert.Error(t, err)

	task, err := NewPublishImageTask("apple", &fakePublisher{}, nil)
	require.NoError(t, err)
	assert.Equal(t, TaskTypePublishImage, task.Type())
	assert.Equal(t, "apple", task.Word())
}

func TestPublishImageTaskExecute(t *testing.T) {
	publisher := &fakePublisher{}
	task, err := NewPublishImageTask("apple", publisher, setupTestLogger())
	require.NoError(t, err)

	require.NoError(t, task.Execute(context.Background()))
	assert.Equal(t, []string{"apple"}, publisher.published())

	publisher.err = errors.New("github down")
	err = task.Execute(context.Background())
	assert.ErrorIs(t, err, publisher.err)
}

func TestPublishEventHandler(t *testing.T) {
	publisher := &fakePublisher{}
	runner := NewTaskRunner(config.TaskConfig{WorkerCount: 1, QueueSize: 4}, setupTestLogger())
	runner.Start()

	emitter := events.NewInMemoryEventEmitter(setupTestLogger())
	emitter.RegisterHandler(events.TypeImageGenerated, NewPublishEventHandler(publisher, runner, setupTestLogger()))

	event, err := events.NewEvent(events.TypeImageGenerated, events.ImageGeneratedPayload{Word: "apple", ContentType: "image/png", Size: 3})
	require.NoError(t, err)
	require.NoError(t, emitter.EmitEvent(context.Background(), event))

	require.NoError(t, runner.Stop(context.Background()))
	assert.Equal(t, []string{"apple"}, publisher.published())
}

func TestPublishEventHandlerErrors(t *testing.T) {
	runner := NewTaskRunner(config.TaskConfig{WorkerCount: 1, QueueSize: 1}, setupTestLogger())
	handler := NewPublishEventHandler(&fakePublisher{}, runner, setupTestLogger())

	t.Run("other event types are ignored", func(t *testing.T) {
		event, err := events.NewEvent("deck.uploaded", map[string]string{"id": "x"})
		require.NoError(t, err)
		assert.NoError(t, handler.HandleEvent(context.Background(), event))
	})

	t.Run("malformed payload", func(t *testing.T) {
		event := &events.Event{Type: events.TypeImageGenerated, Payload: []byte("not json")}
		assert.Error(t, handler.HandleEvent(context.Background(), event))
	})

	t.Run("empty word", func(t *testing.T) {
		event, err := events.NewEvent(events.TypeImageGenerated, events.ImageGeneratedPayload{})
		require.NoError(t, err)
		assert.Error(t, handler.HandleEvent(context.Background(), event))
	})

	t.Run("full queue", func(t *testing.T) {
		event, err := events.NewEvent(events.TypeImageGenerated, events.ImageGeneratedPayload{Word: "a"})
		require.NoError(t, err)
		require.NoError(t, handler.HandleEvent(context.Background(), event))
		assert.ErrorIs(t, handler.HandleEvent(context.Background(), event), ErrQueueFull)
	})
}

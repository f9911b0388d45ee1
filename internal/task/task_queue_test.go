package task

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskQueue(t *testing.T) {
	noop := func(ctx context.Context) error { return nil }

	t.Run("enqueue and read", func(t *testing.T) {
		q := NewTaskQueue(2, setupTestLogger())
		task := newFuncTask(noop)

		require.NoError(t, q.Enqueue(task))

		got := <-q.GetChannel()
		assert.Equal(t, task.ID(), got.ID())
	})

	t.Run("full queue rejects", func(t *testing.T) {
		q := NewTaskQueue(1, setupTestLogger())
		require.NoError(t, q.Enqueue(newFuncTask(noop)))

		err := q.Enqueue(newFuncTask(noop))
		assert.ErrorIs(t, err, ErrQueueFull)
	})

	t.Run("closed queue rejects and drains", func(t *testing.T) {
		q := NewTaskQueue(2, setupTestLogger())
		task := newFuncTask(noop)
		require.NoError(t, q.Enqueue(task))

		q.Close()
		q.Close()

		assert.ErrorIs(t, q.Enqueue(newFuncTask(noop)), ErrQueueClosed)

		got, ok := <-q.GetChannel()
		require.True(t, ok)
		assert.Equal(t, task.ID(), got.ID())

		_, ok = <-q.GetChannel()
		assert.False(t, ok)
	})

	t.Run("non-positive size falls back to one", func(t *testing.T) {
		q := NewTaskQueue(0, nil)
		assert.Equal(t, 1, cap(q.GetChannel()))
	})
}

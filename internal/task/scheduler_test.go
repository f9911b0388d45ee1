package task

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSweepSchedulerValidation(t *testing.T) {
	_, err := NewSweepScheduler(nil, time.Minute, 10, nil)
	assert.Error(t, err)

	_, err = NewSweepScheduler(&fakeSweeper{}, 0, 10, nil)
	assert.Error(t, err)
}

func TestSweepSchedulerRunsImmediately(t *testing.T) {
	sweeper := &fakeSweeper{}
	s, err := NewSweepScheduler(sweeper, time.Hour, 0, setupTestLogger())
	require.NoError(t, err)

	s.Start()
	defer s.Stop()

	assert.Eventually(t, func() bool { return sweeper.calls.Load() >= 1 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, int32(DefaultSweepBatch), sweeper.limit.Load())
}

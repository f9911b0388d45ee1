package task

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"
)

// DefaultSweepBatch bounds how many images one sweep publishes.
const DefaultSweepBatch = 50

// Sweeper publishes cached images that were never published.
type Sweeper interface {
	SweepUnpublished(ctx context.Context, limit int) (int, error)
}

// SweepScheduler runs a Sweeper on a fixed interval. The first sweep runs
// as soon as the scheduler starts.
type SweepScheduler struct {
	scheduler *gocron.Scheduler
	sweeper   Sweeper
	batch     int
	timeout   time.Duration
	logger    *slog.Logger
}

// NewSweepScheduler creates a scheduler that sweeps every interval.
func NewSweepScheduler(sweeper Sweeper, interval time.Duration, batch int, logger *slog.Logger) (*SweepScheduler, error) {
	if sweeper == nil {
		return nil, fmt.Errorf("sweeper cannot be nil")
	}
	if interval <= 0 {
		return nil, fmt.Errorf("sweep interval must be positive, got %s", interval)
	}
	if batch <= 0 {
		batch = DefaultSweepBatch
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &SweepScheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		sweeper:   sweeper,
		batch:     batch,
		timeout:   interval,
		logger:    logger.With(slog.String("component", "sweep_scheduler")),
	}

	s.scheduler.SingletonModeAll()
	if _, err := s.scheduler.Every(interval).Do(s.sweep); err != nil {
		return nil, fmt.Errorf("failed to schedule sweep: %w", err)
	}
	return s, nil
}

// Start begins running sweeps in the background.
func (s *SweepScheduler) Start() {
	s.scheduler.StartAsync()
	s.logger.Info("sweep scheduler started", slog.Int("batch", s.batch))
}

// Stop halts the scheduler. A sweep already in progress finishes.
func (s *SweepScheduler) Stop() {
	s.scheduler.Stop()
	s.logger.Info("sweep scheduler stopped")
}

func (s *SweepScheduler) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	published, err := s.sweeper.SweepUnpublished(ctx, s.batch)
	if err != nil {
		s.logger.Warn("sweep finished with errors",
			slog.Int("published", published),
			slog.String("error", err.Error()))
		return
	}
	if published > 0 {
		s.logger.Info("sweep published images", slog.Int("published", published))
	}
}

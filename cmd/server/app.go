package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/voca-api/internal/config"
	"github.com/phrazzld/voca-api/internal/domain/matching"
	"github.com/phrazzld/voca-api/internal/events"
	"github.com/phrazzld/voca-api/internal/generation"
	"github.com/phrazzld/voca-api/internal/platform/elevenlabs"
	"github.com/phrazzld/voca-api/internal/platform/gemini"
	"github.com/phrazzld/voca-api/internal/platform/github"
	"github.com/phrazzld/voca-api/internal/platform/huggingface"
	"github.com/phrazzld/voca-api/internal/service"
	"github.com/phrazzld/voca-api/internal/service/auth"
	"github.com/phrazzld/voca-api/internal/service/content"
	"github.com/phrazzld/voca-api/internal/service/quiz"
	"github.com/phrazzld/voca-api/internal/service/wrongstats"
	"github.com/phrazzld/voca-api/internal/task"
)

// application holds all the shared application dependencies to simplify management
// and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB
	stores *stores

	jwtService  auth.JWTService
	userService service.UserService
	deckService service.DeckService
	engine      quiz.SessionEngine
	audio       content.Cache
	images      content.Cache

	// publisher is nil when GitHub publishing is not configured.
	publisher *content.Publisher

	// Background processing, only set up with auto publishing or sweeping.
	taskRunner *task.TaskRunner
	scheduler  *task.SweepScheduler
}

// newApplication creates a new application instance with all dependencies initialized.
// The database must already be migrated.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	var err error
	app.stores, err = newStores(cfg.Database.Driver, db, logger)
	if err != nil {
		return nil, err
	}

	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		slog.Int("token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes))

	app.userService, err = service.NewUserService(
		app.stores.users,
		db,
		auth.NewBcryptHasher(cfg.Auth.BCryptCost),
		app.jwtService,
		cfg.Auth,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create user service: %w", err)
	}

	app.deckService, err = service.NewDeckService(app.stores.decks, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create deck service: %w", err)
	}

	app.engine, err = quiz.NewSessionEngine(
		db,
		app.stores.decks,
		app.stores.sessions,
		app.stores.answers,
		wrongstats.NewTracker(app.stores.wrongStats, logger),
		matching.NewDefaultMatcher(),
		cfg.Quiz,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create session engine: %w", err)
	}

	if err := app.setupContent(ctx); err != nil {
		return nil, err
	}

	logger.Info("Application initialized successfully")
	return app, nil
}

// setupContent builds the media caches and, when GitHub is configured,
// the publisher with its background processing.
func (app *application) setupContent(ctx context.Context) error {
	cfg := app.config
	logger := app.logger

	app.audio = content.NewAudioCache(app.stores.cache, newSpeechGenerator(cfg.TTS, logger), cfg.TTS.MaxTextLength, logger)

	imageGenerator, err := newImageGenerator(ctx, cfg.Image, logger)
	if err != nil {
		return err
	}

	committer, err := github.NewCommitter(cfg.GitHub, nil, logger)
	if err != nil {
		logger.Info("GitHub publishing disabled", slog.String("reason", err.Error()))
		app.images = content.NewImageCache(app.stores.cache, imageGenerator, cfg.Image.MaxWordLength, nil, logger)
		return nil
	}

	var emitter *events.InMemoryEventEmitter
	var onStored content.StoredHook
	if cfg.GitHub.AutoPublish {
		emitter = events.NewInMemoryEventEmitter(logger)
		onStored = events.ImageStoredEmitter(emitter, logger)
	}

	app.images = content.NewImageCache(app.stores.cache, imageGenerator, cfg.Image.MaxWordLength, onStored, logger)
	app.publisher = content.NewPublisher(app.images, app.stores.cache, committer, logger)

	if emitter != nil {
		app.taskRunner = task.NewTaskRunner(cfg.Task, logger)
		app.taskRunner.SetErrorHandler(task.PublishFailureHandler(logger))
		emitter.RegisterHandler(events.TypeImageGenerated,
			task.NewPublishEventHandler(app.publisher, app.taskRunner, logger))
		logger.Info("automatic image publishing enabled",
			slog.Int("worker_count", cfg.Task.WorkerCount),
			slog.Int("queue_size", cfg.Task.QueueSize))
	}

	if cfg.GitHub.SweepIntervalMinutes > 0 {
		interval := time.Duration(cfg.GitHub.SweepIntervalMinutes) * time.Minute
		app.scheduler, err = task.NewSweepScheduler(app.publisher, interval, task.DefaultSweepBatch, logger)
		if err != nil {
			return fmt.Errorf("failed to create sweep scheduler: %w", err)
		}
	}
	return nil
}

// newSpeechGenerator returns the ElevenLabs client, or a stand-in that
// reports the missing key on every request.
func newSpeechGenerator(cfg config.TTSConfig, logger *slog.Logger) generation.ContentGenerator {
	client, err := elevenlabs.NewClient(cfg, nil, logger)
	if err != nil {
		logger.Warn("text-to-speech not configured", slog.String("reason", err.Error()))
		return generation.NotConfigured("elevenlabs", "api key not set")
	}
	return client
}

func newImageGenerator(ctx context.Context, cfg config.ImageConfig, logger *slog.Logger) (generation.ContentGenerator, error) {
	switch cfg.Provider {
	case "gemini":
		if cfg.GeminiAPIKey == "" {
			logger.Warn("image generation not configured", slog.String("provider", cfg.Provider))
			return generation.NotConfigured("gemini", "api key not set"), nil
		}
		g, err := gemini.NewImageGenerator(ctx, logger, cfg, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize gemini image generator: %w", err)
		}
		return g, nil
	default:
		client, err := huggingface.NewClient(cfg, nil, logger)
		if err != nil {
			logger.Warn("image generation not configured",
				slog.String("provider", cfg.Provider),
				slog.String("reason", err.Error()))
			return generation.NotConfigured("huggingface", "api key not set"), nil
		}
		return client, nil
	}
}

// startBackground starts the task runner and the sweep scheduler when
// they are configured.
func (app *application) startBackground() {
	if app.taskRunner != nil {
		app.taskRunner.Start()
	}
	if app.scheduler != nil {
		app.scheduler.Start()
	}
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.scheduler != nil {
		app.scheduler.Stop()
	}

	if app.taskRunner != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := app.taskRunner.Stop(ctx); err != nil {
			app.logger.Warn("task runner did not drain before shutdown", slog.String("error", err.Error()))
		}
		cancel()
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Error closing database connection", slog.String("error", err.Error()))
		}
	}

	app.logger.Info("Application shutdown completed")
}

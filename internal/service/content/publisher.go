package content

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/phrazzld/voca-api/internal/domain"
	"github.com/phrazzld/voca-api/internal/platform/github"
	"github.com/phrazzld/voca-api/internal/platform/logger"
	"github.com/phrazzld/voca-api/internal/store"
)

// Committer stores an image in a remote repository.
type Committer interface {
	CommitImage(ctx context.Context, word string, data []byte) (*github.CommitResult, error)
}

// PublishResult describes a published image.
type PublishResult struct {
	Word string `json:"word"`
	URL  string `json:"url"`
	Path string `json:"path"`
	// Attached is false when the word had no cached image to annotate.
	Attached bool `json:"attached"`
}

// Publisher commits cached images to GitHub and records the resulting URL
// on the cache entry.
type Publisher struct {
	images    Cache
	entries   store.CacheStore
	committer Committer
	logger    *slog.Logger
}

// NewPublisher creates a Publisher. images must be the image cache.
func NewPublisher(images Cache, entries store.CacheStore, committer Committer, logger *slog.Logger) *Publisher {
	if images == nil || entries == nil || committer == nil {
		panic("publisher dependencies cannot be nil")
	}
	if images.Kind() != domain.CacheKindImage {
		panic("publisher requires the image cache")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{
		images:    images,
		entries:   entries,
		committer: committer,
		logger:    logger.With(slog.String("component", "image_publisher")),
	}
}

// Publish commits the cached image for word and attaches the URL.
// Returns ErrEntryNotFound when nothing is cached for word.
func (p *Publisher) Publish(ctx context.Context, word string) (*PublishResult, error) {
	entry, err := p.images.Lookup(ctx, word)
	if err != nil {
		return nil, err
	}
	return p.publish(ctx, entry.Key, entry.Data)
}

// PublishBytes commits caller-supplied image bytes for word. The URL is
// attached to the cache entry when one exists.
func (p *Publisher) PublishBytes(ctx context.Context, word string, data []byte) (*PublishResult, error) {
	key, err := p.images.NormalizeKey(word)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, domain.NewValidationError("image", "cannot be empty", domain.ErrEmptyContent)
	}
	return p.publish(ctx, key, data)
}

func (p *Publisher) publish(ctx context.Context, key string, data []byte) (*PublishResult, error) {
	log := logger.FromContextOrDefault(ctx, p.logger)

	commit, err := p.committer.CommitImage(ctx, key, data)
	if err != nil {
		log.Warn("image commit failed",
			slog.String("word", key),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: %w", ErrExternalService, err)
	}

	result := &PublishResult{Word: key, URL: commit.HTMLURL, Path: commit.Path}
	err = p.images.AttachMetadata(ctx, key, commit.HTMLURL)
	switch {
	case err == nil:
		result.Attached = true
	case errors.Is(err, ErrEntryNotFound):
		log.Debug("published image has no cache entry", slog.String("word", key))
	default:
		return nil, err
	}

	log.Info("image published",
		slog.String("word", key),
		slog.String("url", commit.HTMLURL))
	return result, nil
}

// SweepUnpublished publishes up to limit cached images that still lack a
// source URL. It keeps going past individual failures and returns how many
// were published together with the joined errors.
func (p *Publisher) SweepUnpublished(ctx context.Context, limit int) (int, error) {
	keys, err := p.entries.ListMissingSource(ctx, domain.CacheKindImage, limit)
	if err != nil {
		return 0, fmt.Errorf("failed to list unpublished images: %w", err)
	}

	var errs []error
	published := 0
	for _, key := range keys {
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}
		if _, err := p.Publish(ctx, key); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
			continue
		}
		published++
	}
	return published, errors.Join(errs...)
}

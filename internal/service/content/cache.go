package content

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/phrazzld/voca-api/internal/domain"
	"github.com/phrazzld/voca-api/internal/generation"
	"github.com/phrazzld/voca-api/internal/platform/logger"
	"github.com/phrazzld/voca-api/internal/store"
)

// Cache is a cache-aside front for one kind of generated content.
type Cache interface {
	// Kind reports which partition of the content store the cache serves.
	Kind() domain.CacheKind

	// NormalizeKey validates rawKey and returns the key it is stored under.
	NormalizeKey(rawKey string) (string, error)

	// GetOrGenerate returns the cached entry for rawKey, generating and
	// storing it first on a miss.
	GetOrGenerate(ctx context.Context, rawKey string) (*domain.CacheEntry, error)

	// Lookup returns the cached entry for rawKey without generating.
	Lookup(ctx context.Context, rawKey string) (*domain.CacheEntry, error)

	// AttachMetadata records the provenance URL of a cached entry. The
	// payload is left untouched.
	AttachMetadata(ctx context.Context, rawKey, sourceURL string) error
}

// StoredHook is called after a freshly generated entry has been stored.
// It runs on the request path and must not block.
type StoredHook func(ctx context.Context, entry *domain.CacheEntry)

// Config describes one cache instance.
type Config struct {
	Kind         domain.CacheKind
	MaxKeyLength int
	// Normalize maps a trimmed key to its stored form. Nil keeps it as is.
	Normalize func(string) string
	OnStored  StoredHook
}

type cache struct {
	cfg       Config
	entries   store.CacheStore
	generator generation.ContentGenerator
	logger    *slog.Logger
}

var _ Cache = (*cache)(nil)

// NewCache creates a Cache over entries that fills misses from generator.
func NewCache(
	cfg Config,
	entries store.CacheStore,
	generator generation.ContentGenerator,
	logger *slog.Logger,
) Cache {
	if entries == nil {
		panic("cache store cannot be nil")
	}
	if generator == nil {
		panic("content generator cannot be nil")
	}
	if !cfg.Kind.Valid() {
		panic(fmt.Sprintf("invalid cache kind %q", cfg.Kind))
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &cache{
		cfg:       cfg,
		entries:   entries,
		generator: generator,
		logger: logger.With(
			slog.String("component", "content_cache"),
			slog.String("kind", string(cfg.Kind))),
	}
}

// NewAudioCache creates the speech cache. Keys are free text and are only
// trimmed.
func NewAudioCache(
	entries store.CacheStore,
	generator generation.ContentGenerator,
	maxKeyLength int,
	logger *slog.Logger,
) Cache {
	return NewCache(Config{
		Kind:         domain.CacheKindAudio,
		MaxKeyLength: maxKeyLength,
	}, entries, generator, logger)
}

// NewImageCache creates the image cache. Keys are single words and are
// trimmed and lowercased.
func NewImageCache(
	entries store.CacheStore,
	generator generation.ContentGenerator,
	maxKeyLength int,
	onStored StoredHook,
	logger *slog.Logger,
) Cache {
	return NewCache(Config{
		Kind:         domain.CacheKindImage,
		MaxKeyLength: maxKeyLength,
		Normalize:    strings.ToLower,
		OnStored:     onStored,
	}, entries, generator, logger)
}

func (c *cache) Kind() domain.CacheKind {
	return c.cfg.Kind
}

func (c *cache) NormalizeKey(rawKey string) (string, error) {
	key := strings.TrimSpace(rawKey)
	if key == "" {
		return "", domain.NewValidationError("key", "cannot be empty", ErrInvalidKey)
	}
	if c.cfg.MaxKeyLength > 0 && utf8.RuneCountInString(key) > c.cfg.MaxKeyLength {
		return "", domain.NewValidationError("key",
			fmt.Sprintf("must be at most %d characters", c.cfg.MaxKeyLength), ErrInvalidKey)
	}
	if c.cfg.Normalize != nil {
		key = c.cfg.Normalize(key)
	}
	return key, nil
}

func (c *cache) GetOrGenerate(ctx context.Context, rawKey string) (*domain.CacheEntry, error) {
	log := logger.FromContextOrDefault(ctx, c.logger)

	key, err := c.NormalizeKey(rawKey)
	if err != nil {
		return nil, err
	}

	entry, err := c.entries.Get(ctx, c.cfg.Kind, key)
	if err == nil {
		log.Debug("content cache hit", slog.String("key", key))
		return entry, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up cached content: %w", err)
	}

	log.Info("content cache miss, generating", slog.String("key", key))
	content, err := c.generator.Generate(ctx, key)
	if err != nil {
		log.Warn("content generation failed",
			slog.String("key", key),
			slog.String("error", err.Error()))
		if errors.Is(err, generation.ErrInvalidConfig) {
			return nil, fmt.Errorf("%w: %w", ErrGeneratorNotConfigured, err)
		}
		return nil, fmt.Errorf("%w: %w", ErrExternalService, err)
	}

	entry, err = domain.NewCacheEntry(c.cfg.Kind, key, content.Data, content.ContentType)
	if err != nil {
		return nil, fmt.Errorf("%w: %w: %w", ErrExternalService, generation.ErrInvalidResponse, err)
	}

	if err := c.entries.Create(ctx, entry); err != nil {
		if !errors.Is(err, store.ErrDuplicate) {
			return nil, fmt.Errorf("failed to store generated content: %w", err)
		}
		// Another request stored this key first; its row is authoritative.
		stored, getErr := c.entries.Get(ctx, c.cfg.Kind, key)
		if getErr != nil {
			return nil, fmt.Errorf("failed to re-read cached content: %w", getErr)
		}
		log.Info("content stored concurrently, returning existing entry", slog.String("key", key))
		return stored, nil
	}

	if c.cfg.OnStored != nil {
		c.cfg.OnStored(ctx, entry)
	}
	return entry, nil
}

func (c *cache) Lookup(ctx context.Context, rawKey string) (*domain.CacheEntry, error) {
	key, err := c.NormalizeKey(rawKey)
	if err != nil {
		return nil, err
	}
	entry, err := c.entries.Get(ctx, c.cfg.Kind, key)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrEntryNotFound
		}
		return nil, fmt.Errorf("failed to look up cached content: %w", err)
	}
	return entry, nil
}

func (c *cache) AttachMetadata(ctx context.Context, rawKey, sourceURL string) error {
	key, err := c.NormalizeKey(rawKey)
	if err != nil {
		return err
	}
	if err := c.entries.UpdateSourceURL(ctx, c.cfg.Kind, key, sourceURL); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrEntryNotFound
		}
		return fmt.Errorf("failed to attach metadata: %w", err)
	}
	logger.FromContextOrDefault(ctx, c.logger).Info("content metadata attached",
		slog.String("key", key),
		slog.String("source_url", sourceURL))
	return nil
}

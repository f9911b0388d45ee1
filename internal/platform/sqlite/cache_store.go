package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/phrazzld/voca-api/internal/domain"
	"github.com/phrazzld/voca-api/internal/platform/logger"
	"github.com/phrazzld/voca-api/internal/store"
)

// SQLiteCacheStore implements store.CacheStore on SQLite.
type SQLiteCacheStore struct {
	conn
	logger *slog.Logger
}

// NewSQLiteCacheStore creates a content cache store over db.
func NewSQLiteCacheStore(db *sql.DB, logger *slog.Logger) *SQLiteCacheStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &SQLiteCacheStore{
		conn:   newConn(db),
		logger: logger.With(slog.String("component", "cache_store")),
	}
}

var _ store.CacheStore = (*SQLiteCacheStore)(nil)

// WithTx implements store.CacheStore.WithTx
func (s *SQLiteCacheStore) WithTx(tx *sql.Tx) store.CacheStore {
	return &SQLiteCacheStore{conn: s.withTx(tx), logger: s.logger}
}

// Get implements store.CacheStore.Get
func (s *SQLiteCacheStore) Get(ctx context.Context, kind domain.CacheKind, key string) (*domain.CacheEntry, error) {
	var row cacheRow
	err := s.q.GetContext(ctx, &row, `
		SELECT id, kind, cache_key, data, content_type, source_url, created_at, updated_at
		FROM content_cache
		WHERE kind = ? AND cache_key = ?
	`, string(kind), key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrCacheEntryNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to get cache entry",
			slog.String("error", err.Error()),
			slog.String("kind", string(kind)))
		return nil, MapError(err)
	}
	return row.toDomain(), nil
}

// Create implements store.CacheStore.Create
func (s *SQLiteCacheStore) Create(ctx context.Context, entry *domain.CacheEntry) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := entry.Validate(); err != nil {
		return err
	}

	_, err := s.q.ExecContext(ctx, `
		INSERT INTO content_cache (id, kind, cache_key, data, content_type, source_url, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		entry.ID,
		string(entry.Kind),
		entry.Key,
		entry.Data,
		entry.ContentType,
		nullString(entry.SourceURL),
		entry.CreatedAt,
		entry.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			log.Debug("cache entry already exists",
				slog.String("kind", string(entry.Kind)),
				slog.String("key", entry.Key))
			return store.ErrCacheKeyExists
		}
		log.Error("failed to create cache entry",
			slog.String("error", err.Error()),
			slog.String("kind", string(entry.Kind)))
		return MapError(err)
	}

	log.Info("cache entry stored",
		slog.String("kind", string(entry.Kind)),
		slog.String("key", entry.Key),
		slog.Int("bytes", len(entry.Data)))
	return nil
}

// UpdateSourceURL implements store.CacheStore.UpdateSourceURL
func (s *SQLiteCacheStore) UpdateSourceURL(ctx context.Context, kind domain.CacheKind, key, sourceURL string) error {
	result, err := s.q.ExecContext(ctx, `
		UPDATE content_cache
		SET source_url = ?, updated_at = ?
		WHERE kind = ? AND cache_key = ?
	`, nullString(sourceURL), time.Now().UTC(), string(kind), key)
	if err != nil {
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrCacheEntryNotFound)
}

// ListMissingSource implements store.CacheStore.ListMissingSource
func (s *SQLiteCacheStore) ListMissingSource(ctx context.Context, kind domain.CacheKind, limit int) ([]string, error) {
	var keys []string
	err := s.q.SelectContext(ctx, &keys, `
		SELECT cache_key
		FROM content_cache
		WHERE kind = ? AND source_url IS NULL
		ORDER BY created_at, cache_key
		LIMIT ?
	`, string(kind), limit)
	if err != nil {
		return nil, MapError(err)
	}
	return keys, nil
}

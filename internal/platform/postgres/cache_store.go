package postgres

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

// PostgresCacheStore implements the store.CacheStore interface
// using a PostgreSQL database as the storage backend.
type PostgresCacheStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresCacheStore creates a new PostgreSQL implementation of the CacheStore interface.
func NewPostgresCacheStore(db store.DBTX, logger *slog.Logger) *PostgresCacheStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresCacheStore{
		db:     db,
		logger: logger.With(slog.String("component", "cache_store")),
	}
}

// Ensure PostgresCacheStore implements store.CacheStore interface
var _ store.CacheStore = (*PostgresCacheStore)(nil)

// WithTx implements store.CacheStore.WithTx
func (s *PostgresCacheStore) WithTx(tx *sql.Tx) store.CacheStore {
	return &PostgresCacheStore{db: tx, logger: s.logger}
}

// Get implements store.CacheStore.Get
func (s *PostgresCacheStore) Get(ctx context.Context, kind domain.CacheKind, key string) (*domain.CacheEntry, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var (
		e         domain.CacheEntry
		kindValue string
		sourceURL sql.NullString
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, kind, cache_key, data, content_type, source_url, created_at, updated_at
		FROM content_cache
		WHERE kind = $1 AND cache_key = $2
	`, string(kind), key).Scan(
		&e.ID, &kindValue, &e.Key, &e.Data, &e.ContentType, &sourceURL, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrCacheEntryNotFound
		}
		log.Error("failed to get cache entry",
			slog.String("error", err.Error()),
			slog.String("kind", string(kind)))
		return nil, MapError(err)
	}

	e.Kind = domain.CacheKind(kindValue)
	e.SourceURL = sourceURL.String
	return &e, nil
}

// Create implements store.CacheStore.Create
func (s *PostgresCacheStore) Create(ctx context.Context, entry *domain.CacheEntry) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := entry.Validate(); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO content_cache (id, kind, cache_key, data, content_type, source_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
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
func (s *PostgresCacheStore) UpdateSourceURL(ctx context.Context, kind domain.CacheKind, key, sourceURL string) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE content_cache
		SET source_url = $1, updated_at = $2
		WHERE kind = $3 AND cache_key = $4
	`, nullString(sourceURL), time.Now().UTC(), string(kind), key)
	if err != nil {
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrCacheEntryNotFound)
}

// ListMissingSource implements store.CacheStore.ListMissingSource
func (s *PostgresCacheStore) ListMissingSource(ctx context.Context, kind domain.CacheKind, limit int) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT cache_key
		FROM content_cache
		WHERE kind = $1 AND source_url IS NULL
		ORDER BY created_at, cache_key
		LIMIT $2
	`, string(kind), limit)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, MapError(err)
		}
		keys = append(keys, k)
	}
	return keys, MapError(rows.Err())
}

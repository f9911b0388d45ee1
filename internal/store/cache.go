package store

import (
	"context"
	"database/sql"

	"github.com/phrazzld/voca-api/internal/domain"
)

// CacheStore defines the interface for generated content persistence.
// (kind, key) is unique across the store.
type CacheStore interface {
	// Get retrieves an entry by kind and normalized key.
	// Returns ErrCacheEntryNotFound if there is none.
	Get(ctx context.Context, kind domain.CacheKind, key string) (*domain.CacheEntry, error)

	// Create saves a new entry.
	// Returns ErrCacheKeyExists when an entry with the same kind and key exists.
	Create(ctx context.Context, entry *domain.CacheEntry) error

	// UpdateSourceURL sets the provenance URL of an entry without touching its payload.
	// Returns ErrCacheEntryNotFound if there is none.
	UpdateSourceURL(ctx context.Context, kind domain.CacheKind, key, sourceURL string) error

	// ListMissingSource returns up to limit keys of the given kind that have no
	// source URL yet, oldest first.
	ListMissingSource(ctx context.Context, kind domain.CacheKind, limit int) ([]string, error)

	// WithTx returns a new CacheStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) CacheStore
}

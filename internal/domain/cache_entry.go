package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// CacheKind partitions the content cache.
type CacheKind string

// Known cache kinds.
const (
	CacheKindAudio CacheKind = "audio"
	CacheKindImage CacheKind = "image"
)

// Cache entry validation errors
var (
	ErrInvalidCacheKind = errors.New("invalid cache kind")
	ErrEmptyCacheKey    = errors.New("cache key cannot be empty")
	ErrEmptyCacheData   = errors.New("cached content cannot be empty")
)

// Valid reports whether k is a known kind.
func (k CacheKind) Valid() bool {
	return k == CacheKindAudio || k == CacheKindImage
}

// CacheEntry holds generated content under a normalized key.
// Data and ContentType never change after creation; SourceURL may be
// attached later.
type CacheEntry struct {
	ID          uuid.UUID `json:"id"`
	Kind        CacheKind `json:"kind"`
	Key         string    `json:"key"`
	Data        []byte    `json:"-"`
	ContentType string    `json:"content_type"`
	SourceURL   string    `json:"source_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewCacheEntry creates an entry for freshly generated content.
func NewCacheEntry(kind CacheKind, key string, data []byte, contentType string) (*CacheEntry, error) {
	now := time.Now().UTC()
	e := &CacheEntry{
		ID:          uuid.New(),
		Kind:        kind,
		Key:         key,
		Data:        data,
		ContentType: contentType,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := e.Validate(); err != nil {
		return nil, err
	}
	return e, nil
}

// Validate checks if the CacheEntry has valid data.
func (e *CacheEntry) Validate() error {
	if !e.Kind.Valid() {
		return ErrInvalidCacheKind
	}
	if e.Key == "" {
		return ErrEmptyCacheKey
	}
	if len(e.Data) == 0 {
		return ErrEmptyCacheData
	}
	return nil
}

package content_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/phrazzld/voca-api/internal/domain"
	"github.com/phrazzld/voca-api/internal/generation"
	"github.com/phrazzld/voca-api/internal/platform/sqlite"
	"github.com/phrazzld/voca-api/internal/service/content"
	"github.com/phrazzld/voca-api/internal/store"
	"github.com/phrazzld/voca-api/internal/testdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// countingGenerator returns "<key>-bytes" and records every call.
type countingGenerator struct {
	mu    sync.Mutex
	calls []string
	err   error
}

func (g *countingGenerator) Generate(ctx context.Context, key string) (*generation.Content, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, key)
	if g.err != nil {
		return nil, g.err
	}
	return &generation.Content{Data: []byte(key + "-bytes"), ContentType: "audio/mpeg"}, nil
}

func (g *countingGenerator) Calls() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.calls...)
}

func newStore(t *testing.T) store.CacheStore {
	t.Helper()
	return sqlite.NewSQLiteCacheStore(testdb.OpenSQLite(t), discardLogger())
}

func TestGetOrGenerateGeneratesOncePerKey(t *testing.T) {
	gen := &countingGenerator{}
	cache := content.NewAudioCache(newStore(t), gen, 100, discardLogger())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		entry, err := cache.GetOrGenerate(ctx, "hello")
		require.NoError(t, err)
		assert.Equal(t, []byte("hello-bytes"), entry.Data)
		assert.Equal(t, "audio/mpeg", entry.ContentType)
	}
	_, err := cache.GetOrGenerate(ctx, "world")
	require.NoError(t, err)

	assert.Equal(t, []string{"hello", "world"}, gen.Calls())
}

func TestKeyNormalization(t *testing.T) {
	t.Run("audio keys are trimmed only", func(t *testing.T) {
		gen := &countingGenerator{}
		cache := content.NewAudioCache(newStore(t), gen, 100, discardLogger())

		_, err := cache.GetOrGenerate(context.Background(), "  Hello there ")
		require.NoError(t, err)
		_, err = cache.GetOrGenerate(context.Background(), "Hello there")
		require.NoError(t, err)
		_, err = cache.GetOrGenerate(context.Background(), "hello there")
		require.NoError(t, err)

		assert.Equal(t, []string{"Hello there", "hello there"}, gen.Calls())
	})

	t.Run("image keys are trimmed and lowercased", func(t *testing.T) {
		gen := &countingGenerator{}
		cache := content.NewImageCache(newStore(t), gen, 50, nil, discardLogger())

		_, err := cache.GetOrGenerate(context.Background(), " Escape ")
		require.NoError(t, err)
		entry, err := cache.GetOrGenerate(context.Background(), "ESCAPE")
		require.NoError(t, err)

		assert.Equal(t, "escape", entry.Key)
		assert.Equal(t, []string{"escape"}, gen.Calls())
	})
}

func TestInvalidKeys(t *testing.T) {
	gen := &countingGenerator{}
	cache := content.NewImageCache(newStore(t), gen, 5, nil, discardLogger())

	tests := []struct {
		name string
		key  string
	}{
		{"empty", ""},
		{"whitespace", "   \t"},
		{"too long", "abcdef"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := cache.GetOrGenerate(context.Background(), tt.key)
			assert.ErrorIs(t, err, content.ErrInvalidKey)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}

	t.Run("length counts runes", func(t *testing.T) {
		_, err := cache.GetOrGenerate(context.Background(), "탈출하다")
		assert.NoError(t, err)
	})

	assert.Equal(t, []string{"탈출하다"}, gen.Calls())
}

func TestGeneratorFailuresLeaveCacheUntouched(t *testing.T) {
	tests := []struct {
		name    string
		genErr  error
		wantErr error
	}{
		{"timeout", fmt.Errorf("%w: timed out", generation.ErrTransientFailure), content.ErrExternalService},
		{"blocked", generation.ErrContentBlocked, content.ErrExternalService},
		{"missing key", fmt.Errorf("%w: no key", generation.ErrInvalidConfig), content.ErrGeneratorNotConfigured},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries := newStore(t)
			cache := content.NewAudioCache(entries, &countingGenerator{err: tt.genErr}, 100, discardLogger())

			_, err := cache.GetOrGenerate(context.Background(), "hello")
			assert.ErrorIs(t, err, tt.wantErr)
			assert.ErrorIs(t, err, tt.genErr)

			_, err = cache.Lookup(context.Background(), "hello")
			assert.ErrorIs(t, err, content.ErrEntryNotFound)
		})
	}

	t.Run("retry after failure generates again", func(t *testing.T) {
		entries := newStore(t)
		gen := &countingGenerator{err: generation.ErrTransientFailure}
		cache := content.NewAudioCache(entries, gen, 100, discardLogger())

		_, err := cache.GetOrGenerate(context.Background(), "hello")
		require.Error(t, err)

		gen.mu.Lock()
		gen.err = nil
		gen.mu.Unlock()

		entry, err := cache.GetOrGenerate(context.Background(), "hello")
		require.NoError(t, err)
		assert.Equal(t, []byte("hello-bytes"), entry.Data)
		assert.Len(t, gen.Calls(), 2)
	})
}

func TestEmptyGeneratedContentIsRejected(t *testing.T) {
	gen := generation.GeneratorFunc(func(ctx context.Context, key string) (*generation.Content, error) {
		return &generation.Content{ContentType: "audio/mpeg"}, nil
	})
	cache := content.NewAudioCache(newStore(t), gen, 100, discardLogger())

	_, err := cache.GetOrGenerate(context.Background(), "hello")
	assert.ErrorIs(t, err, content.ErrExternalService)
	assert.ErrorIs(t, err, generation.ErrInvalidResponse)
}

func TestConcurrentMissLoserReadsStoredRow(t *testing.T) {
	entries := newStore(t)

	var calls atomic.Int32
	arrived := make(chan struct{}, 2)
	release := make(chan struct{})
	gen := generation.GeneratorFunc(func(ctx context.Context, key string) (*generation.Content, error) {
		n := calls.Add(1)
		arrived <- struct{}{}
		select {
		case <-release:
		case <-time.After(5 * time.Second):
			return nil, errors.New("barrier timed out")
		}
		return &generation.Content{Data: []byte(fmt.Sprintf("version-%d", n)), ContentType: "image/png"}, nil
	})
	cache := content.NewImageCache(entries, gen, 50, nil, discardLogger())

	results := make([]*domain.CacheEntry, 2)
	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = cache.GetOrGenerate(context.Background(), "race")
		}(i)
	}

	<-arrived
	<-arrived
	close(release)
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])
	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, results[0].ID, results[1].ID)
	assert.Equal(t, results[0].Data, results[1].Data)

	stored, err := cache.Lookup(context.Background(), "race")
	require.NoError(t, err)
	assert.Equal(t, results[0].Data, stored.Data)
}

func TestOnStoredHook(t *testing.T) {
	var stored []string
	hook := func(ctx context.Context, entry *domain.CacheEntry) {
		stored = append(stored, entry.Key)
	}
	cache := content.NewImageCache(newStore(t), &countingGenerator{}, 50, hook, discardLogger())

	_, err := cache.GetOrGenerate(context.Background(), "Serene")
	require.NoError(t, err)
	_, err = cache.GetOrGenerate(context.Background(), "serene")
	require.NoError(t, err)

	assert.Equal(t, []string{"serene"}, stored, "hook only fires for freshly generated entries")
}

func TestLookupAndAttachMetadata(t *testing.T) {
	gen := &countingGenerator{}
	cache := content.NewImageCache(newStore(t), gen, 50, nil, discardLogger())
	ctx := context.Background()

	_, err := cache.Lookup(ctx, "absent")
	assert.ErrorIs(t, err, content.ErrEntryNotFound)
	assert.ErrorIs(t, err, store.ErrNotFound)

	err = cache.AttachMetadata(ctx, "absent", "https://example.com/x.png")
	assert.ErrorIs(t, err, content.ErrEntryNotFound)

	original, err := cache.GetOrGenerate(ctx, "Luminous")
	require.NoError(t, err)
	assert.Empty(t, original.SourceURL)

	url := "https://github.com/someone/voca-images/blob/main/docs/images/luminous.png"
	require.NoError(t, cache.AttachMetadata(ctx, "LUMINOUS", url))

	entry, err := cache.Lookup(ctx, "luminous")
	require.NoError(t, err)
	assert.Equal(t, url, entry.SourceURL)
	assert.Equal(t, original.Data, entry.Data)
	assert.Len(t, gen.Calls(), 1)
	assert.True(t, strings.HasSuffix(entry.SourceURL, "luminous.png"))
}

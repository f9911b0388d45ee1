package generation_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/phrazzld/voca-api/internal/generation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeneratorFunc(t *testing.T) {
	t.Parallel()

	var gotKey string
	gen := generation.GeneratorFunc(func(ctx context.Context, key string) (*generation.Content, error) {
		gotKey = key
		return &generation.Content{Data: []byte("x"), ContentType: "audio/mpeg"}, nil
	})

	content, err := gen.Generate(context.Background(), "apple")
	require.NoError(t, err)
	assert.Equal(t, "apple", gotKey)
	assert.Equal(t, "audio/mpeg", content.ContentType)
}

func TestNotConfigured(t *testing.T) {
	t.Parallel()

	_, err := generation.NotConfigured("elevenlabs", "API key not set").Generate(context.Background(), "apple")
	require.Error(t, err)
	assert.ErrorIs(t, err, generation.ErrInvalidConfig)
	assert.Contains(t, err.Error(), "elevenlabs")
}

func TestStatusError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status int
		want   error
	}{
		{http.StatusUnauthorized, generation.ErrInvalidConfig},
		{http.StatusForbidden, generation.ErrInvalidConfig},
		{http.StatusTooManyRequests, generation.ErrTransientFailure},
		{http.StatusServiceUnavailable, generation.ErrTransientFailure},
		{http.StatusInternalServerError, generation.ErrTransientFailure},
		{http.StatusBadRequest, generation.ErrGenerationFailed},
		{http.StatusNotFound, generation.ErrGenerationFailed},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			t.Parallel()
			err := generation.StatusError("provider", tt.status)
			assert.ErrorIs(t, err, tt.want)
			for _, other := range []error{generation.ErrInvalidConfig, generation.ErrTransientFailure, generation.ErrGenerationFailed} {
				if !errors.Is(tt.want, other) {
					assert.NotErrorIs(t, err, other)
				}
			}
		})
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("connection reset") }

func TestReadBody(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		body    io.Reader
		want    string
		wantErr error
	}{
		{"under limit", strings.NewReader("abc"), "abc", nil},
		{"exactly at limit", strings.NewReader("abcd"), "abcd", nil},
		{"empty", strings.NewReader(""), "", nil},
		{"over limit", strings.NewReader("abcde"), "", generation.ErrInvalidResponse},
		{"read failure", failingReader{}, "", generation.ErrTransientFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			data, err := generation.ReadBody("provider", tt.body, 4)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, data)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(data))
		})
	}
}

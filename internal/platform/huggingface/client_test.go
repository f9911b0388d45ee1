package huggingface_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/phrazzld/voca-api/internal/config"
	"github.com/phrazzld/voca-api/internal/generation"
	"github.com/phrazzld/voca-api/internal/platform/huggingface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(baseURL string) config.ImageConfig {
	return config.ImageConfig{
		Provider:           "huggingface",
		HuggingFaceAPIKey:  "hf-key",
		HuggingFaceModel:   "runwayml/stable-diffusion-v1-5",
		HuggingFaceBaseURL: baseURL,
		TimeoutSeconds:     2,
		MaxWordLength:      50,
	}
}

func newClient(t *testing.T, cfg config.ImageConfig) *huggingface.Client {
	t.Helper()
	c, err := huggingface.NewClient(cfg, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	return c
}

func TestGenerateSendsPrompt(t *testing.T) {
	t.Parallel()

	var got map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models/runwayml/stable-diffusion-v1-5", r.URL.Path)
		assert.Equal(t, "Bearer hf-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte("\x89PNG"))
	}))
	defer server.Close()

	content, err := newClient(t, testConfig(server.URL)).Generate(context.Background(), "ephemeral")
	require.NoError(t, err)
	assert.Equal(t, []byte("\x89PNG"), content.Data)
	assert.Equal(t, "image/png", content.ContentType)

	assert.Equal(t, huggingface.Prompt("ephemeral"), got["inputs"])
	assert.Contains(t, got["inputs"], "'ephemeral'")
	params, ok := got["parameters"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, params["negative_prompt"], "watermark")
	assert.EqualValues(t, 25, params["num_inference_steps"])
	assert.EqualValues(t, 512, params["width"])
	opts, ok := got["options"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, true, opts["wait_for_model"])
}

func TestGenerateErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		status      int
		contentType string
		body        string
		wantErr     error
	}{
		{"model loading", http.StatusServiceUnavailable, "", "", generation.ErrTransientFailure},
		{"forbidden", http.StatusForbidden, "", "", generation.ErrInvalidConfig},
		{"not found", http.StatusNotFound, "", "", generation.ErrGenerationFailed},
		{"empty image", http.StatusOK, "image/png", "", generation.ErrInvalidResponse},
		{"json error document", http.StatusOK, "application/json", `{"error":"x"}`, generation.ErrInvalidResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if tt.contentType != "" {
					w.Header().Set("Content-Type", tt.contentType)
				}
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := newClient(t, testConfig(server.URL)).Generate(context.Background(), "word")
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestGenerateRejectsOversizedBody(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(bytes.Repeat([]byte{0xff}, huggingface.MaxImageBytes+1))
	}))
	defer server.Close()

	content, err := newClient(t, testConfig(server.URL)).Generate(context.Background(), "word")
	assert.ErrorIs(t, err, generation.ErrInvalidResponse)
	assert.Nil(t, content)
}

func TestNewClientRequiresKey(t *testing.T) {
	t.Parallel()

	cfg := testConfig("http://localhost")
	cfg.HuggingFaceAPIKey = ""
	_, err := huggingface.NewClient(cfg, nil, nil)
	assert.ErrorIs(t, err, generation.ErrInvalidConfig)
}

// Package huggingface generates association images with a Stable Diffusion
// model hosted on the Hugging Face inference router.
package huggingface

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/phrazzld/voca-api/internal/config"
	"github.com/phrazzld/voca-api/internal/generation"
	"github.com/phrazzld/voca-api/internal/platform/logger"
)

// ContentType is the media type of generated images.
const ContentType = "image/png"

const (
	promptTemplate = "Surreal educational illustration representing '%s', vibrant colors, " +
		"conceptual art, symbolic imagery, high quality, detailed. No text, no letters, no words."
	negativePrompt = "text, letters, words, writing, numbers, watermark, signature, logo, blurry, low quality"
)

// MaxImageBytes bounds the response body read from the API.
const MaxImageBytes = 20 << 20

type parameters struct {
	NegativePrompt    string  `json:"negative_prompt"`
	NumInferenceSteps int     `json:"num_inference_steps"`
	GuidanceScale     float64 `json:"guidance_scale"`
	Width             int     `json:"width"`
	Height            int     `json:"height"`
}

type options struct {
	WaitForModel bool `json:"wait_for_model"`
}

type inferenceRequest struct {
	Inputs     string     `json:"inputs"`
	Parameters parameters `json:"parameters"`
	Options    options    `json:"options"`
}

// Prompt returns the text prompt used to illustrate word.
func Prompt(word string) string {
	return fmt.Sprintf(promptTemplate, word)
}

// Client implements generation.ContentGenerator for images.
type Client struct {
	cfg        config.ImageConfig
	httpClient *http.Client
	logger     *slog.Logger
}

var _ generation.ContentGenerator = (*Client)(nil)

// NewClient creates a Hugging Face inference client.
func NewClient(cfg config.ImageConfig, httpClient *http.Client, logger *slog.Logger) (*Client, error) {
	if cfg.HuggingFaceAPIKey == "" {
		return nil, fmt.Errorf("%w: huggingface API key cannot be empty", generation.ErrInvalidConfig)
	}
	if logger == nil {
		logger = slog.Default()
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout()}
	}
	return &Client{
		cfg:        cfg,
		httpClient: httpClient,
		logger:     logger.With(slog.String("component", "huggingface")),
	}, nil
}

// Generate produces a PNG illustration for word.
// A 503 response means the model is still loading and is reported as
// a transient failure.
func (c *Client) Generate(ctx context.Context, word string) (*generation.Content, error) {
	log := logger.FromContextOrDefault(ctx, c.logger)

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout())
	defer cancel()

	body, err := json.Marshal(inferenceRequest{
		Inputs: Prompt(word),
		Parameters: parameters{
			NegativePrompt:    negativePrompt,
			NumInferenceSteps: 25,
			GuidanceScale:     7.5,
			Width:             512,
			Height:            512,
		},
		Options: options{WaitForModel: true},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode inference request: %w", err)
	}

	endpoint := strings.TrimRight(c.cfg.HuggingFaceBaseURL, "/") + "/models/" + c.cfg.HuggingFaceModel
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build inference request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.HuggingFaceAPIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", ContentType)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Warn("huggingface request failed",
			slog.String("error", err.Error()),
			slog.Duration("elapsed", time.Since(start)))
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: huggingface request timed out", generation.ErrTransientFailure)
		}
		return nil, fmt.Errorf("%w: huggingface request: %v", generation.ErrGenerationFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		log.Warn("huggingface returned an error status",
			slog.Int("status", resp.StatusCode),
			slog.String("model", c.cfg.HuggingFaceModel))
		return nil, generation.StatusError("huggingface", resp.StatusCode)
	}

	data, err := generation.ReadBody("huggingface", resp.Body, MaxImageBytes)
	if err != nil {
		log.Warn("unusable huggingface response", slog.String("error", err.Error()))
		return nil, err
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty image body", generation.ErrInvalidResponse)
	}
	// The router answers some failures with 200 and a JSON error document.
	if ct := resp.Header.Get("Content-Type"); strings.HasPrefix(ct, "application/json") {
		return nil, fmt.Errorf("%w: expected image, got %s", generation.ErrInvalidResponse, ct)
	}

	log.Info("image generated",
		slog.String("word", word),
		slog.Int("bytes", len(data)),
		slog.Duration("elapsed", time.Since(start)))
	return &generation.Content{Data: data, ContentType: ContentType}, nil
}

// Package elevenlabs generates pronunciation audio with the ElevenLabs
// text-to-speech API.
package elevenlabs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/phrazzld/voca-api/internal/config"
	"github.com/phrazzld/voca-api/internal/generation"
	"github.com/phrazzld/voca-api/internal/platform/logger"
)

// ContentType is the media type of generated audio.
const ContentType = "audio/mpeg"

// MaxAudioBytes bounds the response body read from the API.
const MaxAudioBytes = 10 << 20

type voiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
}

type speechRequest struct {
	Text          string        `json:"text"`
	ModelID       string        `json:"model_id"`
	VoiceSettings voiceSettings `json:"voice_settings"`
}

// Client implements generation.ContentGenerator for speech audio.
type Client struct {
	cfg        config.TTSConfig
	httpClient *http.Client
	logger     *slog.Logger
}

var _ generation.ContentGenerator = (*Client)(nil)

// NewClient creates an ElevenLabs client. It returns an error wrapping
// generation.ErrInvalidConfig when no API key is configured.
// If httpClient is nil, one bounded by the configured timeout is used.
func NewClient(cfg config.TTSConfig, httpClient *http.Client, logger *slog.Logger) (*Client, error) {
	if cfg.ElevenLabsAPIKey == "" {
		return nil, fmt.Errorf("%w: elevenlabs API key cannot be empty", generation.ErrInvalidConfig)
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
		logger:     logger.With(slog.String("component", "elevenlabs")),
	}, nil
}

// Generate converts text to speech. A single request is made, bounded by
// the configured timeout.
func (c *Client) Generate(ctx context.Context, text string) (*generation.Content, error) {
	log := logger.FromContextOrDefault(ctx, c.logger)

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout())
	defer cancel()

	body, err := json.Marshal(speechRequest{
		Text:    text,
		ModelID: c.cfg.ModelID,
		VoiceSettings: voiceSettings{
			Stability:       0.5,
			SimilarityBoost: 0.75,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode speech request: %w", err)
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/v1/text-to-speech/" + url.PathEscape(c.cfg.VoiceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build speech request: %w", err)
	}
	req.Header.Set("Accept", ContentType)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("xi-api-key", c.cfg.ElevenLabsAPIKey)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Warn("elevenlabs request failed",
			slog.String("error", err.Error()),
			slog.Duration("elapsed", time.Since(start)))
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: elevenlabs request timed out", generation.ErrTransientFailure)
		}
		return nil, fmt.Errorf("%w: elevenlabs request: %v", generation.ErrGenerationFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Warn("elevenlabs returned an error status", slog.Int("status", resp.StatusCode))
		return nil, generation.StatusError("elevenlabs", resp.StatusCode)
	}

	data, err := generation.ReadBody("elevenlabs", resp.Body, MaxAudioBytes)
	if err != nil {
		log.Warn("unusable elevenlabs response", slog.String("error", err.Error()))
		return nil, err
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty audio body", generation.ErrInvalidResponse)
	}

	log.Info("speech generated",
		slog.Int("bytes", len(data)),
		slog.Duration("elapsed", time.Since(start)))
	return &generation.Content{Data: data, ContentType: ContentType}, nil
}

package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/phrazzld/voca-api/internal/config"
	"github.com/phrazzld/voca-api/internal/generation"
	"github.com/phrazzld/voca-api/internal/platform/huggingface"
	"github.com/phrazzld/voca-api/internal/platform/logger"
	"google.golang.org/genai"
)

// DefaultContentType is used when the API does not report a MIME type.
const DefaultContentType = "image/png"

const negativePrompt = "text, letters, words, writing, numbers, watermark, signature, logo, blurry, low quality"

// imageModel is the subset of *genai.Models used by ImageGenerator.
type imageModel interface {
	GenerateImages(
		ctx context.Context,
		model, prompt string,
		cfg *genai.GenerateImagesConfig,
	) (*genai.GenerateImagesResponse, error)
}

// ImageGenerator implements generation.ContentGenerator using the Imagen
// image generation endpoint of the Gemini API.
type ImageGenerator struct {
	// logger is used for structured logging
	logger *slog.Logger

	// models issues the image generation requests
	models imageModel

	// model is the name of the Imagen model to use
	model string

	timeout time.Duration
}

var _ generation.ContentGenerator = (*ImageGenerator)(nil)

// NewImageGenerator creates a new ImageGenerator from the image configuration.
//
// Parameters:
//   - ctx: Context for client initialization
//   - logger: A structured logger for operation logging
//   - cfg: Image configuration carrying the API key and model name
//   - httpClient: Optional HTTP client; nil uses the genai default
//
// Returns:
//   - A ready ImageGenerator, or an error wrapping generation.ErrInvalidConfig
func NewImageGenerator(
	ctx context.Context,
	logger *slog.Logger,
	cfg config.ImageConfig,
	httpClient *http.Client,
) (*ImageGenerator, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", generation.ErrInvalidConfig)
	}
	if cfg.GeminiModel == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", generation.ErrInvalidConfig)
	}

	timeout := cfg.Timeout()
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      cfg.GeminiAPIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPClient:  httpClient,
		HTTPOptions: genai.HTTPOptions{Timeout: &timeout},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v", generation.ErrInvalidConfig, err)
	}

	return newImageGenerator(logger, client.Models, cfg.GeminiModel, timeout), nil
}

func newImageGenerator(logger *slog.Logger, models imageModel, model string, timeout time.Duration) *ImageGenerator {
	return &ImageGenerator{
		logger:  logger.With(slog.String("component", "gemini")),
		models:  models,
		model:   model,
		timeout: timeout,
	}
}

// Generate produces a single illustration for word.
//
// Returns:
//   - The first image returned by the API
//   - generation.ErrContentBlocked when every image was filtered
//   - generation.ErrInvalidResponse when no image data came back
func (g *ImageGenerator) Generate(ctx context.Context, word string) (*generation.Content, error) {
	if word == "" {
		return nil, ErrEmptyWord
	}
	log := logger.FromContextOrDefault(ctx, g.logger)

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	start := time.Now()
	resp, err := g.models.GenerateImages(ctx, g.model, huggingface.Prompt(word), &genai.GenerateImagesConfig{
		NegativePrompt:   negativePrompt,
		NumberOfImages:   1,
		AspectRatio:      "1:1",
		IncludeRAIReason: true,
	})
	if err != nil {
		log.WarnContext(ctx, "Imagen request failed",
			"error", err,
			"model", g.model,
			"elapsed", time.Since(start))
		return nil, mapAPIError(err)
	}

	if resp == nil || len(resp.GeneratedImages) == 0 {
		return nil, fmt.Errorf("%w: no images generated", generation.ErrInvalidResponse)
	}

	var filtered string
	for _, img := range resp.GeneratedImages {
		if img == nil {
			continue
		}
		if img.Image != nil && len(img.Image.ImageBytes) > 0 {
			contentType := img.Image.MIMEType
			if contentType == "" {
				contentType = DefaultContentType
			}
			log.InfoContext(ctx, "Imagen image generated",
				"word", word,
				"bytes", len(img.Image.ImageBytes),
				"elapsed", time.Since(start))
			return &generation.Content{Data: img.Image.ImageBytes, ContentType: contentType}, nil
		}
		if img.RAIFilteredReason != "" {
			filtered = img.RAIFilteredReason
		}
	}

	if filtered != "" {
		log.WarnContext(ctx, "Imagen output filtered", "word", word, "reason", filtered)
		return nil, fmt.Errorf("%w: %s", generation.ErrContentBlocked, filtered)
	}
	return nil, fmt.Errorf("%w: empty image data", generation.ErrInvalidResponse)
}

package api

import (
	"context"
	"encoding/base64"
	"errors"
	"log/slog"
	"net/http"

	"github.com/phrazzld/voca-api/internal/api/shared"
	"github.com/phrazzld/voca-api/internal/domain"
	"github.com/phrazzld/voca-api/internal/platform/logger"
	"github.com/phrazzld/voca-api/internal/redact"
	"github.com/phrazzld/voca-api/internal/service/content"
)

// ImmutableCacheControl marks generated media as cacheable forever; cached
// content for a key never changes.
const ImmutableCacheControl = "public, max-age=31536000, immutable"

// GitHubURLHeader carries the published location of an image, empty when
// the image has not been published.
const GitHubURLHeader = "X-GitHub-URL"

// ImageBytesPublisher publishes caller-supplied image bytes.
type ImageBytesPublisher interface {
	PublishBytes(ctx context.Context, word string, data []byte) (*content.PublishResult, error)
}

// MediaHandler serves generated speech and images.
type MediaHandler struct {
	audio     content.Cache
	images    content.Cache
	publisher ImageBytesPublisher
	logger    *slog.Logger
}

// NewMediaHandler creates a MediaHandler. publisher may be nil when GitHub
// publishing is disabled.
func NewMediaHandler(audio, images content.Cache, publisher ImageBytesPublisher, logger *slog.Logger) *MediaHandler {
	if audio == nil || images == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("audio and image caches cannot be nil for MediaHandler")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &MediaHandler{
		audio:     audio,
		images:    images,
		publisher: publisher,
		logger:    logger.With(slog.String("component", "media_handler")),
	}
}

// TTS handles POST /tts and returns audio/mpeg bytes.
func (h *MediaHandler) TTS(w http.ResponseWriter, r *http.Request) {
	var req TTSRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	entry, err := h.audio.GetOrGenerate(r.Context(), req.Text)
	if err != nil {
		HandleAPIError(w, r, err, "TTS generation failed")
		return
	}

	shared.RespondWithBinary(w, r, entry.ContentType, entry.Data, map[string]string{
		"Cache-Control": ImmutableCacheControl,
	})
}

// Image handles POST /image and returns the image bytes.
func (h *MediaHandler) Image(w http.ResponseWriter, r *http.Request) {
	var req ImageRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	entry, err := h.images.GetOrGenerate(r.Context(), req.Word)
	if err != nil {
		HandleAPIError(w, r, err, "Image generation failed")
		return
	}

	shared.RespondWithBinary(w, r, entry.ContentType, entry.Data, map[string]string{
		"Cache-Control": ImmutableCacheControl,
		GitHubURLHeader: entry.SourceURL,
	})
}

// PublishImage handles POST /image/github. Validation failures are 400s;
// publishing failures are reported in the body with success=false.
func (h *MediaHandler) PublishImage(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req GitHubCommitRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if h.publisher == nil {
		shared.RespondWithJSON(w, r, http.StatusServiceUnavailable, GitHubCommitResponse{
			Error: "GitHub publishing is not configured",
		})
		return
	}

	data, err := base64.StdEncoding.DecodeString(req.ImageBase64)
	if err != nil {
		HandleAPIError(w, r, domain.NewValidationError("image_base64", "is not valid base64", domain.ErrInvalidFormat), "")
		return
	}

	result, err := h.publisher.PublishBytes(r.Context(), req.Word, data)
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			HandleAPIError(w, r, err, "")
			return
		}
		log.Warn("image publish failed",
			slog.String("word", req.Word),
			slog.String("error", redact.Error(err)))
		shared.RespondWithJSON(w, r, http.StatusOK, GitHubCommitResponse{
			Error: "GitHub commit failed",
		})
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, GitHubCommitResponse{
		Success: true,
		URL:     result.URL,
		Path:    result.Path,
	})
}

// Health handles GET /health.
func Health(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, map[string]string{"status": "healthy"})
}

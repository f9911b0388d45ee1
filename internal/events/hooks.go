package events

import (
	"context"
	"log/slog"

	"github.com/phrazzld/voca-api/internal/domain"
)

// ImageStoredEmitter returns a callback that announces a newly stored
// image entry as a TypeImageGenerated event. Emission failures are logged
// and never reach the caller.
func ImageStoredEmitter(emitter EventEmitter, logger *slog.Logger) func(ctx context.Context, entry *domain.CacheEntry) {
	if logger == nil {
		logger = slog.Default()
	}
	return func(ctx context.Context, entry *domain.CacheEntry) {
		if entry == nil || entry.Kind != domain.CacheKindImage {
			return
		}
		event, err := NewEvent(TypeImageGenerated, ImageGeneratedPayload{
			Word:        entry.Key,
			ContentType: entry.ContentType,
			Size:        len(entry.Data),
		})
		if err != nil {
			logger.Error("failed to build image event",
				slog.String("word", entry.Key),
				slog.String("error", err.Error()))
			return
		}
		if err := emitter.EmitEvent(ctx, event); err != nil {
			logger.Warn("image event not handled",
				slog.String("word", entry.Key),
				slog.String("error", err.Error()))
		}
	}
}

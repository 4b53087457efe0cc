package collections

import (
	"context"

	"github.com/motoshop/backend/internal/domain/collections"
	"github.com/motoshop/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// SummaryInvalidationHandler drops cached summaries whenever an event changes
// what the summary counts
type SummaryInvalidationHandler struct {
	cache  SummaryCache
	logger *zap.Logger
}

// NewSummaryInvalidationHandler creates a new SummaryInvalidationHandler
func NewSummaryInvalidationHandler(cache SummaryCache, logger *zap.Logger) *SummaryInvalidationHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SummaryInvalidationHandler{cache: cache, logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *SummaryInvalidationHandler) EventTypes() []string {
	return []string{
		collections.EventTypeInstallmentPaymentApplied,
		collections.EventTypeInstallmentUpdated,
		collections.EventTypeScheduleGenerated,
		collections.EventTypeAlertRaised,
		collections.EventTypeAlertStatusChanged,
	}
}

// Handle invalidates the cache. A failed invalidation is logged; the entry
// still expires on its TTL.
func (h *SummaryInvalidationHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	if err := h.cache.Invalidate(ctx); err != nil {
		h.logger.Warn("Failed to invalidate summary cache",
			zap.String("event_type", event.EventType()),
			zap.String("event_id", event.EventID().String()),
			zap.Error(err),
		)
		return err
	}
	return nil
}

var _ shared.EventHandler = (*SummaryInvalidationHandler)(nil)

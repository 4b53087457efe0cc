package event

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	appcollections "github.com/motoshop/backend/internal/application/collections"
	"github.com/motoshop/backend/internal/domain/collections"
	"github.com/motoshop/backend/internal/domain/shared"
	"github.com/motoshop/backend/internal/infrastructure/cache"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testEvent struct {
	shared.BaseDomainEvent
}

func newTestEvent(eventType string) *testEvent {
	return &testEvent{BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "Installment", uuid.New())}
}

type testHandler struct {
	eventTypes []string
	handled    []shared.DomainEvent
	err        error
	panics     bool
	mu         sync.Mutex
}

func newTestHandler(eventTypes ...string) *testHandler {
	return &testHandler{eventTypes: eventTypes}
}

func (h *testHandler) Handle(_ context.Context, event shared.DomainEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.panics {
		panic("boom")
	}
	h.handled = append(h.handled, event)
	return h.err
}

func (h *testHandler) EventTypes() []string {
	return h.eventTypes
}

func (h *testHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.handled)
}

func TestInMemoryEventBus_Publish(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	handler := newTestHandler(collections.EventTypeInstallmentPaymentApplied)
	bus.Subscribe(handler)

	require.NoError(t, bus.Publish(context.Background(),
		newTestEvent(collections.EventTypeInstallmentPaymentApplied),
		newTestEvent(collections.EventTypeAlertRaised),
	))

	assert.Equal(t, 1, handler.count())
	delivered, failed := bus.Stats()
	assert.Equal(t, int64(1), delivered)
	assert.Equal(t, int64(0), failed)
}

func TestInMemoryEventBus_WildcardAndExplicitTypes(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	wildcard := newTestHandler()
	explicit := newTestHandler("ignored")
	bus.Subscribe(wildcard)
	bus.Subscribe(explicit, collections.EventTypeAlertRaised)

	require.NoError(t, bus.Publish(context.Background(),
		newTestEvent(collections.EventTypeAlertRaised),
		newTestEvent(collections.EventTypeInstallmentSettled),
	))

	assert.Equal(t, 2, wildcard.count())
	assert.Equal(t, 1, explicit.count())
}

func TestInMemoryEventBus_FailuresDoNotStopDelivery(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	failing := newTestHandler("T")
	failing.err = errors.New("cache down")
	panicking := newTestHandler("T")
	panicking.panics = true
	healthy := newTestHandler("T")
	bus.Subscribe(failing)
	bus.Subscribe(panicking)
	bus.Subscribe(healthy)

	err := bus.Publish(context.Background(), newTestEvent("T"))

	assert.NoError(t, err)
	assert.Equal(t, 1, healthy.count())
	delivered, failed := bus.Stats()
	assert.Equal(t, int64(1), delivered)
	assert.Equal(t, int64(2), failed)
}

func TestInMemoryEventBus_Unsubscribe(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	handler := newTestHandler("A", "B")
	bus.Subscribe(handler)
	bus.Unsubscribe(handler)

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("A"), newTestEvent("B")))
	assert.Equal(t, 0, handler.count())
	assert.Empty(t, bus.registry.GetAllHandlers())
}

func TestInMemoryEventBus_StartStop(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	require.NoError(t, bus.Start(context.Background()))
	assert.True(t, bus.running.Load())
	require.NoError(t, bus.Stop(context.Background()))
	assert.False(t, bus.running.Load())
}

func TestHandlerRegistry(t *testing.T) {
	r := NewHandlerRegistry()
	a := newTestHandler()
	b := newTestHandler()

	r.Register(a, "X", "Y")
	r.Register(a, "X")
	r.Register(b)

	assert.Len(t, r.GetHandlers("X"), 2, "duplicate registration ignored")
	assert.Equal(t, []shared.EventHandler{a, b}, r.GetHandlers("Y"))
	assert.Equal(t, []shared.EventHandler{b}, r.GetHandlers("Z"))
	assert.Len(t, r.GetAllHandlers(), 2)

	r.Unregister(a)
	assert.Equal(t, []shared.EventHandler{b}, r.GetHandlers("X"))
}

// A recorded payment must drop cached summaries through the bus.
func TestInMemoryEventBus_InvalidatesSummaryCache(t *testing.T) {
	ctx := context.Background()
	bus := NewInMemoryEventBus(zap.NewNop())
	summaries := cache.NewInMemorySummaryCache()
	bus.Subscribe(appcollections.NewSummaryInvalidationHandler(summaries, zap.NewNop()))

	cutoff := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	require.NoError(t, summaries.Set(ctx, collections.CollectionSummary{CutoffDate: cutoff}, 0, time.Hour))

	inst, err := collections.NewInstallment(uuid.New(), 1, decimal.NewFromInt(500000), cutoff.AddDate(0, 1, 0))
	require.NoError(t, err)
	require.NoError(t, inst.ApplyPayment(decimal.NewFromInt(100000), cutoff))
	require.NoError(t, bus.Publish(ctx, inst.GetDomainEvents()...))

	_, ok, err := summaries.Get(ctx, cutoff)
	require.NoError(t, err)
	assert.False(t, ok)
}

package telemetry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/motoshop/backend/internal/domain/collections"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Aggregation {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	out := make(map[string]metricdata.Aggregation)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m.Data
		}
	}
	return out
}

func sumOf(t *testing.T, data metricdata.Aggregation) int64 {
	t.Helper()
	sum, ok := data.(metricdata.Sum[int64])
	require.True(t, ok, "expected int64 sum, got %T", data)
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

func TestNewTracerProvider_Disabled(t *testing.T) {
	tp, err := NewTracerProvider(context.Background(), Config{Enabled: false}, zap.NewNop())
	require.NoError(t, err)

	assert.False(t, tp.IsEnabled())
	assert.NotNil(t, tp.Tracer("test"))
	assert.NoError(t, tp.ForceFlush(context.Background()))
	assert.NoError(t, tp.Shutdown(context.Background()))
}

func TestNewMeterProvider_Disabled(t *testing.T) {
	mp, err := NewMeterProvider(context.Background(), MetricsConfig{Enabled: false}, zap.NewNop())
	require.NoError(t, err)

	assert.False(t, mp.IsEnabled())
	assert.NotNil(t, mp.Meter("test"))
	assert.NoError(t, mp.Shutdown(context.Background()))
}

func TestSamplerFor(t *testing.T) {
	assert.Contains(t, samplerFor(1).Description(), "AlwaysOn")
	assert.Contains(t, samplerFor(0).Description(), "AlwaysOff")
	assert.Contains(t, samplerFor(0.25).Description(), "TraceIDRatioBased")
}

func TestStartServiceSpan(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := NewTracerProviderWithExporter(exporter, Config{SamplingRatio: 1}, zap.NewNop())
	defer tp.Shutdown(context.Background())

	ctx, span := StartServiceSpan(context.Background(), "cuotas", "registrar_pago")
	assert.NotEmpty(t, GetTraceID(ctx))
	SetAttributes(span, "cuota_id", "abc", "numero", 3, 42, "skipped")
	EndSpan(span, errors.New("boom"))

	_, other := StartServiceSpan(context.Background(), "alertas", "generar")
	EndSpan(other, nil)

	spans := exporter.GetSpans()
	require.Len(t, spans, 2)
	assert.Equal(t, "cuotas.registrar_pago", spans[0].Name)
	assert.Equal(t, codes.Error, spans[0].Status.Code)
	assert.Len(t, spans[0].Attributes, 2)
	assert.Equal(t, codes.Ok, spans[1].Status.Code)
}

func TestGetTraceID_NoSpan(t *testing.T) {
	assert.Empty(t, GetTraceID(context.Background()))
}

func TestCollectionsMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := NewMeterProviderWithReader(reader, zap.NewNop())
	m, err := NewCollectionsMetrics(mp.Meter(CollectionsMeterName), zap.NewNop())
	require.NoError(t, err)
	ctx := context.Background()

	due := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	inst, err := collections.NewInstallment(uuid.New(), 1, decimal.NewFromInt(300000), due)
	require.NoError(t, err)
	require.NoError(t, inst.ApplyPayment(decimal.NewFromInt(300000), due))
	for _, e := range inst.GetDomainEvents() {
		require.NoError(t, m.Handle(ctx, e))
	}

	alert, err := collections.NewAlert(inst.SaleID, &inst.ID, collections.AlertTypeOverdue, "Cuota vencida", due)
	require.NoError(t, err)
	require.NoError(t, m.Handle(ctx, collections.NewAlertRaisedEvent(alert)))

	m.ObserveScan(ctx, 250*time.Millisecond, nil, nil)
	m.ObserveScan(ctx, time.Second, nil, errors.New("db down"))

	data := collect(t, reader)
	assert.Equal(t, int64(1), sumOf(t, data["motoshop.collections.payments_applied"]))
	assert.Equal(t, int64(1), sumOf(t, data["motoshop.collections.installments_settled"]))
	assert.Equal(t, int64(1), sumOf(t, data["motoshop.collections.alerts_raised"]))

	amount, ok := data["motoshop.collections.payment_amount"].(metricdata.Sum[float64])
	require.True(t, ok)
	require.Len(t, amount.DataPoints, 1)
	assert.InDelta(t, 300000, amount.DataPoints[0].Value, 0.001)

	hist, ok := data["motoshop.collections.scan_duration"].(metricdata.Histogram[float64])
	require.True(t, ok)
	assert.Len(t, hist.DataPoints, 2, "one series per outcome")
}

func TestNewCollectionsMetrics_NilMeter(t *testing.T) {
	_, err := NewCollectionsMetrics(nil, nil)
	assert.ErrorIs(t, err, ErrMeterNil)
}

type tracedRow struct {
	ID   uint
	Name string
}

func TestDBTracingPlugin(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := NewTracerProviderWithExporter(exporter, Config{SamplingRatio: 1}, zap.NewNop())
	defer tp.Shutdown(context.Background())

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&tracedRow{}))

	cfg := DefaultDBTracingConfig()
	cfg.Enabled = true
	cfg.SlowQueryThresh = 0
	require.NoError(t, NewDBTracingPlugin(cfg, zap.NewNop()).Register(db))

	ctx, span := StartServiceSpan(context.Background(), "test", "db")
	require.NoError(t, db.WithContext(ctx).Create(&tracedRow{Name: "a"}).Error)
	span.End()

	var names []string
	for _, s := range exporter.GetSpans() {
		names = append(names, s.Name)
	}
	assert.Contains(t, names, "test.db")
	assert.Greater(t, len(names), 1, "otelgorm span recorded")
}

func TestDBTracingPlugin_Disabled(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	assert.NoError(t, NewDBTracingPlugin(DefaultDBTracingConfig(), zap.NewNop()).Register(db))
}

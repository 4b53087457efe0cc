package telemetry

import (
	"context"
	"time"

	appcollections "github.com/motoshop/backend/internal/application/collections"
	"github.com/motoshop/backend/internal/domain/collections"
	"github.com/motoshop/backend/internal/domain/shared"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// CollectionsMeterName is the meter the collections instruments live on
const CollectionsMeterName = "motoshop/collections"

// CollectionsMetrics records payment, alert and scan activity. It is fed by
// the event bus and by the alert scan trigger.
type CollectionsMetrics struct {
	logger *zap.Logger

	paymentsApplied   *Counter
	paymentAmount     *FloatCounter
	installmentsPaid  *Counter
	schedulesCreated  *Counter
	alertsRaised      *Counter
	alertsTransitions *Counter
	scanDuration      *Histogram
}

// NewCollectionsMetrics registers the collections instruments on meter
func NewCollectionsMetrics(meter metric.Meter, logger *zap.Logger) (*CollectionsMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &CollectionsMetrics{logger: logger}

	var err error
	if m.paymentsApplied, err = NewCounter(meter, "motoshop.collections.payments_applied",
		"Payments applied to installments", "{payment}"); err != nil {
		return nil, err
	}
	if m.paymentAmount, err = NewFloatCounter(meter, "motoshop.collections.payment_amount",
		"Money applied to installments", "COP"); err != nil {
		return nil, err
	}
	if m.installmentsPaid, err = NewCounter(meter, "motoshop.collections.installments_settled",
		"Installments that reached a zero balance", "{installment}"); err != nil {
		return nil, err
	}
	if m.schedulesCreated, err = NewCounter(meter, "motoshop.collections.schedules_generated",
		"Installment schedules generated", "{schedule}"); err != nil {
		return nil, err
	}
	if m.alertsRaised, err = NewCounter(meter, "motoshop.collections.alerts_raised",
		"Alerts created by the scan", "{alert}"); err != nil {
		return nil, err
	}
	if m.alertsTransitions, err = NewCounter(meter, "motoshop.collections.alert_transitions",
		"Alerts marked read or resolved", "{alert}"); err != nil {
		return nil, err
	}
	if m.scanDuration, err = NewHistogram(meter, HistogramOpts{
		Name:        "motoshop.collections.scan_duration",
		Description: "Alert scan duration",
		Unit:        "s",
		Boundaries:  ScanDurationBuckets,
	}); err != nil {
		return nil, err
	}
	return m, nil
}

// EventTypes implements shared.EventHandler
func (m *CollectionsMetrics) EventTypes() []string {
	return []string{
		collections.EventTypeInstallmentPaymentApplied,
		collections.EventTypeInstallmentSettled,
		collections.EventTypeScheduleGenerated,
		collections.EventTypeAlertRaised,
		collections.EventTypeAlertStatusChanged,
	}
}

// Handle implements shared.EventHandler
func (m *CollectionsMetrics) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *collections.InstallmentPaymentAppliedEvent:
		m.paymentsApplied.Inc(ctx, AttrInstallmentStatus.String(string(e.Status)))
		m.paymentAmount.Add(ctx, e.Amount.InexactFloat64())
	case *collections.InstallmentSettledEvent:
		m.installmentsPaid.Inc(ctx)
	case *collections.ScheduleGeneratedEvent:
		m.schedulesCreated.Inc(ctx)
	case *collections.AlertRaisedEvent:
		m.alertsRaised.Inc(ctx, AttrAlertType.String(string(e.AlertType)))
	case *collections.AlertStatusChangedEvent:
		m.alertsTransitions.Inc(ctx,
			AttrAlertType.String(string(e.AlertType)),
			AttrAlertStatus.String(string(e.To)),
		)
	default:
		m.logger.Debug("Unhandled event in collections metrics", zap.String("event_type", event.EventType()))
	}
	return nil
}

// ObserveScan records one alert scan run
func (m *CollectionsMetrics) ObserveScan(ctx context.Context, elapsed time.Duration, _ *appcollections.ScanResponse, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.scanDuration.RecordDuration(ctx, elapsed, AttrOutcome.String(outcome))
}

var _ shared.EventHandler = (*CollectionsMetrics)(nil)

// MetricsError describes a failed instrument setup.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}

// ErrMeterNil is returned when no meter is given.
var ErrMeterNil = &MetricsError{Op: "NewCollectionsMetrics", Err: "meter cannot be nil"}

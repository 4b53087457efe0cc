package collections

import (
	"time"

	"github.com/google/uuid"
	"github.com/motoshop/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Event type names
const (
	EventTypeInstallmentPaymentApplied = "InstallmentPaymentApplied"
	EventTypeInstallmentSettled        = "InstallmentSettled"
	EventTypeInstallmentUpdated        = "InstallmentUpdated"
	EventTypeScheduleGenerated         = "ScheduleGenerated"
	EventTypeAlertRaised               = "AlertRaised"
	EventTypeAlertStatusChanged        = "AlertStatusChanged"
)

const (
	aggregateTypeInstallment = "Installment"
	aggregateTypeAlert       = "Alert"
	aggregateTypeSale        = "FinancedSale"
)

// InstallmentPaymentAppliedEvent is raised when money is applied to an installment
type InstallmentPaymentAppliedEvent struct {
	shared.BaseDomainEvent
	InstallmentID uuid.UUID         `json:"installment_id"`
	SaleID        uuid.UUID         `json:"sale_id"`
	Number        int               `json:"number"`
	Amount        decimal.Decimal   `json:"amount"`
	Outstanding   decimal.Decimal   `json:"outstanding"`
	Status        InstallmentStatus `json:"status"`
	PaidAt        time.Time         `json:"paid_at"`
}

// NewInstallmentPaymentAppliedEvent creates a new InstallmentPaymentAppliedEvent
func NewInstallmentPaymentAppliedEvent(i *Installment, amount decimal.Decimal, paidAt time.Time) *InstallmentPaymentAppliedEvent {
	return &InstallmentPaymentAppliedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInstallmentPaymentApplied, aggregateTypeInstallment, i.ID),
		InstallmentID:   i.ID,
		SaleID:          i.SaleID,
		Number:          i.Number,
		Amount:          amount,
		Outstanding:     i.Outstanding(),
		Status:          i.Status,
		PaidAt:          paidAt,
	}
}

// InstallmentSettledEvent is raised when an installment's balance reaches zero
type InstallmentSettledEvent struct {
	shared.BaseDomainEvent
	InstallmentID uuid.UUID       `json:"installment_id"`
	SaleID        uuid.UUID       `json:"sale_id"`
	Number        int             `json:"number"`
	Amount        decimal.Decimal `json:"amount"`
}

// NewInstallmentSettledEvent creates a new InstallmentSettledEvent
func NewInstallmentSettledEvent(i *Installment) *InstallmentSettledEvent {
	return &InstallmentSettledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInstallmentSettled, aggregateTypeInstallment, i.ID),
		InstallmentID:   i.ID,
		SaleID:          i.SaleID,
		Number:          i.Number,
		Amount:          i.Amount,
	}
}

// InstallmentUpdatedEvent is raised when an installment is edited directly
type InstallmentUpdatedEvent struct {
	shared.BaseDomainEvent
	InstallmentID uuid.UUID         `json:"installment_id"`
	SaleID        uuid.UUID         `json:"sale_id"`
	Number        int               `json:"number"`
	Status        InstallmentStatus `json:"status"`
}

// NewInstallmentUpdatedEvent creates a new InstallmentUpdatedEvent
func NewInstallmentUpdatedEvent(i *Installment) *InstallmentUpdatedEvent {
	return &InstallmentUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInstallmentUpdated, aggregateTypeInstallment, i.ID),
		InstallmentID:   i.ID,
		SaleID:          i.SaleID,
		Number:          i.Number,
		Status:          i.Status,
	}
}

// ScheduleGeneratedEvent is raised when a sale gets its installment schedule
type ScheduleGeneratedEvent struct {
	shared.BaseDomainEvent
	SaleID       uuid.UUID       `json:"sale_id"`
	Installments int             `json:"installments"`
	Total        decimal.Decimal `json:"total"`
}

// NewScheduleGeneratedEvent creates a new ScheduleGeneratedEvent
func NewScheduleGeneratedEvent(saleID uuid.UUID, schedule []*Installment) *ScheduleGeneratedEvent {
	total := decimal.Zero
	for _, inst := range schedule {
		total = total.Add(inst.Amount)
	}
	return &ScheduleGeneratedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeScheduleGenerated, aggregateTypeSale, saleID),
		SaleID:          saleID,
		Installments:    len(schedule),
		Total:           total,
	}
}

// AlertRaisedEvent is raised when the generator creates an alert
type AlertRaisedEvent struct {
	shared.BaseDomainEvent
	AlertID       uuid.UUID  `json:"alert_id"`
	SaleID        uuid.UUID  `json:"sale_id"`
	InstallmentID *uuid.UUID `json:"installment_id,omitempty"`
	AlertType     AlertType  `json:"alert_type"`
}

// NewAlertRaisedEvent creates a new AlertRaisedEvent
func NewAlertRaisedEvent(a *Alert) *AlertRaisedEvent {
	return &AlertRaisedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeAlertRaised, aggregateTypeAlert, a.ID),
		AlertID:         a.ID,
		SaleID:          a.SaleID,
		InstallmentID:   a.InstallmentID,
		AlertType:       a.Type,
	}
}

// AlertStatusChangedEvent is raised on read/resolve transitions
type AlertStatusChangedEvent struct {
	shared.BaseDomainEvent
	AlertID   uuid.UUID   `json:"alert_id"`
	SaleID    uuid.UUID   `json:"sale_id"`
	AlertType AlertType   `json:"alert_type"`
	From      AlertStatus `json:"from"`
	To        AlertStatus `json:"to"`
}

// NewAlertStatusChangedEvent creates a new AlertStatusChangedEvent
func NewAlertStatusChangedEvent(a *Alert, from AlertStatus) *AlertStatusChangedEvent {
	return &AlertStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeAlertStatusChanged, aggregateTypeAlert, a.ID),
		AlertID:         a.ID,
		SaleID:          a.SaleID,
		AlertType:       a.Type,
		From:            from,
		To:              a.Status,
	}
}

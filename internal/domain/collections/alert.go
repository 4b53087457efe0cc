package collections

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/motoshop/backend/internal/domain/shared"
)

// AlertType is the risk condition an alert reports
type AlertType string

const (
	AlertTypeUpcoming        AlertType = "proximo_vencer"
	AlertTypeOverdue         AlertType = "vencida"
	AlertTypeMultipleOverdue AlertType = "multiple_vencidas"
)

// IsValid checks if the type is known
func (t AlertType) IsValid() bool {
	switch t {
	case AlertTypeUpcoming, AlertTypeOverdue, AlertTypeMultipleOverdue:
		return true
	}
	return false
}

// String returns the string representation of AlertType
func (t AlertType) String() string {
	return string(t)
}

// IsSaleLevel reports whether the alert concerns a whole sale rather than one installment
func (t AlertType) IsSaleLevel() bool {
	return t == AlertTypeMultipleOverdue
}

// AlertStatus is the lifecycle state of an alert
type AlertStatus string

const (
	AlertStatusActive   AlertStatus = "activa"
	AlertStatusRead     AlertStatus = "leida"
	AlertStatusResolved AlertStatus = "resuelta"
)

// IsValid checks if the status is known
func (s AlertStatus) IsValid() bool {
	switch s {
	case AlertStatusActive, AlertStatusRead, AlertStatusResolved:
		return true
	}
	return false
}

// String returns the string representation of AlertStatus
func (s AlertStatus) String() string {
	return string(s)
}

// IsTerminal returns true for resolved alerts
func (s AlertStatus) IsTerminal() bool {
	return s == AlertStatusResolved
}

// Alert (alerta de pago) is a generated payment-risk notice.
// States only move forward: activa -> leida -> resuelta, with leida optional.
type Alert struct {
	shared.BaseAggregateRoot
	SaleID        uuid.UUID
	InstallmentID *uuid.UUID
	Type          AlertType
	Status        AlertStatus
	Message       string
	ReadAt        *time.Time
	ResolvedAt    *time.Time
}

// AlertKey identifies the subject of an alert for de-duplication.
// InstallmentID is uuid.Nil for sale-level alerts.
type AlertKey struct {
	SaleID        uuid.UUID
	InstallmentID uuid.UUID
	Type          AlertType
}

// NewAlert creates an active alert
func NewAlert(saleID uuid.UUID, installmentID *uuid.UUID, alertType AlertType, message string, now time.Time) (*Alert, error) {
	if saleID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SALE", "Sale ID cannot be empty")
	}
	if !alertType.IsValid() {
		return nil, shared.NewDomainError("INVALID_ALERT_TYPE", fmt.Sprintf("Unknown alert type: %s", alertType))
	}
	if alertType.IsSaleLevel() {
		installmentID = nil
	} else if installmentID == nil || *installmentID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INSTALLMENT", fmt.Sprintf("Alert type %s requires an installment", alertType))
	}

	a := &Alert{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		SaleID:            saleID,
		InstallmentID:     installmentID,
		Type:              alertType,
		Status:            AlertStatusActive,
		Message:           message,
	}
	a.CreatedAt = now
	a.Touch(now)
	a.AddDomainEvent(NewAlertRaisedEvent(a))
	return a, nil
}

// Key returns the de-duplication key of the alert
func (a *Alert) Key() AlertKey {
	k := AlertKey{SaleID: a.SaleID, Type: a.Type}
	if a.InstallmentID != nil && !a.Type.IsSaleLevel() {
		k.InstallmentID = *a.InstallmentID
	}
	return k
}

// IsActive reports whether the alert is still activa
func (a *Alert) IsActive() bool {
	return a.Status == AlertStatusActive
}

// MarkRead moves an active alert to leida. Reading a leida alert again is a no-op.
func (a *Alert) MarkRead(now time.Time) error {
	switch a.Status {
	case AlertStatusResolved:
		return shared.NewDomainError(ErrInvalidTransition.Code, "Cannot mark a resolved alert as read")
	case AlertStatusRead:
		return nil
	}
	a.Status = AlertStatusRead
	a.stampRead(now)
	a.AddDomainEvent(NewAlertStatusChangedEvent(a, AlertStatusActive))
	a.Touch(now)
	a.IncrementVersion()
	return nil
}

// MarkResolved moves an active or read alert to resuelta
func (a *Alert) MarkResolved(now time.Time) error {
	if a.Status.IsTerminal() {
		return shared.NewDomainError(ErrInvalidTransition.Code, "Alert is already resolved")
	}
	from := a.Status
	a.Status = AlertStatusResolved
	a.stampRead(now)
	resolved := now
	a.ResolvedAt = &resolved
	a.AddDomainEvent(NewAlertStatusChangedEvent(a, from))
	a.Touch(now)
	a.IncrementVersion()
	return nil
}

// RefreshMessage replaces the message of an active alert and reports whether it changed
func (a *Alert) RefreshMessage(message string, now time.Time) bool {
	if !a.IsActive() || a.Message == message {
		return false
	}
	a.Message = message
	a.Touch(now)
	a.IncrementVersion()
	return true
}

// stampRead sets fecha_lectura on the first transition out of activa
func (a *Alert) stampRead(now time.Time) {
	if a.ReadAt == nil {
		read := now
		a.ReadAt = &read
	}
}

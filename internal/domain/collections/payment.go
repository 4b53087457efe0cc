package collections

import (
	"time"

	"github.com/google/uuid"
	"github.com/motoshop/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// PaymentMethod is how a client paid
type PaymentMethod string

const (
	PaymentMethodCash     PaymentMethod = "efectivo"
	PaymentMethodTransfer PaymentMethod = "transferencia"
	PaymentMethodCard     PaymentMethod = "tarjeta"
	PaymentMethodCheck    PaymentMethod = "cheque"
)

// IsValid checks if the method is known
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodTransfer, PaymentMethodCard, PaymentMethodCheck:
		return true
	}
	return false
}

// Payment is an append-only record of money received against an installment
type Payment struct {
	shared.BaseEntity
	SaleID        uuid.UUID
	InstallmentID uuid.UUID
	Amount        decimal.Decimal
	PaidAt        time.Time
	Method        PaymentMethod
	Reference     string
}

// NewPayment creates a payment record for inst
func NewPayment(inst *Installment, amount decimal.Decimal, paidAt time.Time, method PaymentMethod, reference string) (*Payment, error) {
	if inst == nil {
		return nil, shared.ErrNotFound
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError(ErrInvalidAmount.Code, "Payment amount must be positive")
	}
	if paidAt.IsZero() {
		return nil, shared.NewDomainError(ErrInvalidDate.Code, "Payment date is required")
	}
	if method == "" {
		method = PaymentMethodCash
	}
	if !method.IsValid() {
		return nil, shared.NewDomainError("INVALID_PAYMENT_METHOD", "Unknown payment method: "+string(method))
	}
	return &Payment{
		BaseEntity:    shared.NewBaseEntity(),
		SaleID:        inst.SaleID,
		InstallmentID: inst.ID,
		Amount:        amount,
		PaidAt:        paidAt,
		Method:        method,
		Reference:     reference,
	}, nil
}

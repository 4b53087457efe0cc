package collections

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/motoshop/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// InstallmentStatus represents the status of an installment (cuota)
type InstallmentStatus string

const (
	InstallmentStatusPending InstallmentStatus = "pendiente" // Nothing paid, not yet due
	InstallmentStatusPartial InstallmentStatus = "parcial"   // Partially paid, not yet due
	InstallmentStatusPaid    InstallmentStatus = "pagada"    // Balance is zero
	InstallmentStatusOverdue InstallmentStatus = "vencida"   // Past due with a balance
)

// IsValid checks if the status is a valid InstallmentStatus
func (s InstallmentStatus) IsValid() bool {
	switch s {
	case InstallmentStatusPending, InstallmentStatusPartial, InstallmentStatusPaid, InstallmentStatusOverdue:
		return true
	}
	return false
}

// String returns the string representation of InstallmentStatus
func (s InstallmentStatus) String() string {
	return string(s)
}

// IsTerminal returns true once nothing more can be paid
func (s InstallmentStatus) IsTerminal() bool {
	return s == InstallmentStatusPaid
}

// Installment is one scheduled payment of a financed sale
type Installment struct {
	shared.BaseAggregateRoot
	SaleID     uuid.UUID
	Number     int
	Amount     decimal.Decimal
	PaidAmount decimal.Decimal
	DueDate    time.Time
	Status     InstallmentStatus
	LateFee    decimal.Decimal
	PaidAt     *time.Time
}

// InstallmentPatch carries the optional fields of a partial update
type InstallmentPatch struct {
	Amount     *decimal.Decimal
	PaidAmount *decimal.Decimal
	DueDate    *time.Time
	LateFee    *decimal.Decimal
}

// IsEmpty reports whether the patch changes nothing
func (p InstallmentPatch) IsEmpty() bool {
	return p.Amount == nil && p.PaidAmount == nil && p.DueDate == nil && p.LateFee == nil
}

// NewInstallment creates a pending installment for a sale
func NewInstallment(saleID uuid.UUID, number int, amount decimal.Decimal, dueDate time.Time) (*Installment, error) {
	if saleID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SALE", "Sale ID cannot be empty")
	}
	if number < 1 {
		return nil, shared.NewDomainError("INVALID_NUMBER", "Installment number must start at 1")
	}
	if amount.IsNegative() {
		return nil, shared.NewDomainError(ErrInvalidAmount.Code, "Installment amount cannot be negative")
	}
	if dueDate.IsZero() {
		return nil, shared.NewDomainError(ErrInvalidDate.Code, "Due date is required")
	}

	inst := &Installment{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		SaleID:            saleID,
		Number:            number,
		Amount:            amount,
		PaidAmount:        decimal.Zero,
		DueDate:           DateOf(dueDate),
		Status:            InstallmentStatusPending,
		LateFee:           decimal.Zero,
	}
	if amount.IsZero() {
		inst.Status = InstallmentStatusPaid
	}
	return inst, nil
}

// Outstanding returns monto_cuota - monto_pagado
func (i *Installment) Outstanding() decimal.Decimal {
	return i.Amount.Sub(i.PaidAmount)
}

// Classify derives the installment's status as of today
func (i *Installment) Classify(today time.Time) (Classification, error) {
	return Classify(i.Amount, i.PaidAmount, i.DueDate, today)
}

// Refresh stores the status derived for today and reports whether it changed
func (i *Installment) Refresh(today time.Time) (bool, error) {
	c, err := i.Classify(today)
	if err != nil {
		return false, err
	}
	if c.Status == i.Status {
		return false, nil
	}
	i.Status = c.Status
	i.Touch(time.Now())
	i.IncrementVersion()
	return true, nil
}

// ApplyPayment adds amount to monto_pagado.
// Overpayment is rejected; routing the excess to later installments is left to the caller.
func (i *Installment) ApplyPayment(amount decimal.Decimal, paidAt time.Time) error {
	if i.Status.IsTerminal() || i.Outstanding().IsZero() {
		return shared.NewDomainError(shared.ErrInvalidState.Code, fmt.Sprintf("Installment %d is already paid", i.Number))
	}
	if !amount.IsPositive() {
		return shared.NewDomainError(ErrInvalidAmount.Code, "Payment amount must be positive")
	}
	if amount.GreaterThan(i.Outstanding()) {
		return shared.NewDomainError(ErrExceedsOutstanding.Code, fmt.Sprintf("Payment amount %s exceeds outstanding amount %s", amount.StringFixed(2), i.Outstanding().StringFixed(2)))
	}
	if paidAt.IsZero() {
		return shared.NewDomainError(ErrInvalidDate.Code, "Payment date is required")
	}

	i.PaidAmount = i.PaidAmount.Add(amount)
	c, err := i.Classify(paidAt)
	if err != nil {
		return err
	}
	i.Status = c.Status
	i.AddDomainEvent(NewInstallmentPaymentAppliedEvent(i, amount, paidAt))
	if c.Status == InstallmentStatusPaid {
		settled := paidAt
		i.PaidAt = &settled
		i.AddDomainEvent(NewInstallmentSettledEvent(i))
	}

	i.Touch(time.Now())
	i.IncrementVersion()
	return nil
}

// Update applies a partial update and reclassifies as of today
func (i *Installment) Update(patch InstallmentPatch, today time.Time) error {
	if patch.IsEmpty() {
		return shared.NewDomainError(shared.ErrInvalidInput.Code, "No fields to update")
	}

	amount, paid, due, fee := i.Amount, i.PaidAmount, i.DueDate, i.LateFee
	if patch.Amount != nil {
		amount = *patch.Amount
	}
	if patch.PaidAmount != nil {
		paid = *patch.PaidAmount
	}
	if patch.DueDate != nil {
		due = DateOf(*patch.DueDate)
	}
	if patch.LateFee != nil {
		if patch.LateFee.IsNegative() {
			return shared.NewDomainError(ErrInvalidAmount.Code, "Late fee cannot be negative")
		}
		fee = *patch.LateFee
	}

	c, err := Classify(amount, paid, due, today)
	if err != nil {
		return err
	}

	i.Amount, i.PaidAmount, i.DueDate, i.LateFee = amount, paid, due, fee
	i.Status = c.Status
	if c.Status == InstallmentStatusPaid {
		if i.PaidAt == nil {
			now := time.Now()
			i.PaidAt = &now
		}
	} else {
		i.PaidAt = nil
	}
	i.AddDomainEvent(NewInstallmentUpdatedEvent(i))

	i.Touch(time.Now())
	i.IncrementVersion()
	return nil
}

// AccrueLateFee raises monto_mora to what policy charges for today's lateness.
// Mora never decreases; it reports whether the fee changed.
func (i *Installment) AccrueLateFee(policy LateFeePolicy, today time.Time) (bool, error) {
	if !policy.Enabled() {
		return false, nil
	}
	c, err := i.Classify(today)
	if err != nil {
		return false, err
	}
	if !c.IsOverdue {
		return false, nil
	}
	fee := policy.Compute(c.Outstanding, c.DaysOverdue)
	if !fee.GreaterThan(i.LateFee) {
		return false, nil
	}
	i.LateFee = fee
	i.Touch(time.Now())
	i.IncrementVersion()
	return true, nil
}
